package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/media-shelf/backend/config"
	"github.com/media-shelf/backend/internal/integration/persistence/model"
)

func TestNewConnection_SQLite(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Driver: config.DriverSQLite,
		URL:    filepath.Join(t.TempDir(), "shelf.db"),
	}

	database, err := NewConnection(cfg)
	require.NoError(t, err)

	assert.Equal(t, config.DriverSQLite, database.Driver())
	assert.True(t, database.HealthCheck())
	require.NoError(t, database.AutoMigrate(model.AllModels()...))

	for _, m := range model.AllModels() {
		assert.True(t, database.DB().Migrator().HasTable(m), "%T", m)
	}
	assert.True(t, database.DB().Migrator().HasIndex(&model.CategoryModel{}, "idx_categories_owner_path"))

	require.NoError(t, database.Close())
	assert.False(t, database.HealthCheck())
}

func TestNewConnection_UnsupportedDriver(t *testing.T) {
	_, err := NewConnection(&config.DatabaseConfig{Driver: "oracle"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}
