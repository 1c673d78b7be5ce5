// Package testutil provides shared helpers for package tests.
package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/media-shelf/backend/config"
	"github.com/media-shelf/backend/internal/domain/entity"
	"github.com/media-shelf/backend/internal/infra/db"
	"github.com/media-shelf/backend/internal/integration/persistence/model"
)

// NewTestDB opens a migrated in-memory SQLite database that is closed when the
// test ends.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	database, err := db.NewSQLiteConnection(&config.DatabaseConfig{
		Driver: config.DriverSQLite,
		URL:    ":memory:",
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := database.AutoMigrate(model.AllModels()...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		_ = database.Close()
	})

	return database.DB()
}

// NewPostgresTestDB connects to the Postgres database named by TEST_DATABASE_URL
// with a multi-connection pool, migrating it first. The test is skipped when the
// variable is unset. Callers scope their rows by fresh owner IDs.
func NewPostgresTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}

	database, err := db.NewPostgresConnection(&config.DatabaseConfig{
		Driver:          config.DriverPostgres,
		URL:             url,
		MaxOpenConns:    8,
		MaxIdleConns:    8,
		ConnMaxLifetime: time.Minute,
	})
	if err != nil {
		t.Fatalf("failed to open postgres test database: %v", err)
	}

	if err := database.AutoMigrate(model.AllModels()...); err != nil {
		t.Fatalf("failed to migrate postgres test database: %v", err)
	}

	t.Cleanup(func() {
		_ = database.Close()
	})

	return database.DB()
}

// AssignMedia files a media item of the given kind under categoryID.
func AssignMedia(t *testing.T, gdb *gorm.DB, kind entity.MediaKind, ownerID, categoryID uuid.UUID, title string) {
	t.Helper()

	row := model.NewMediaModel(kind, ownerID, &categoryID, title)
	if err := gdb.WithContext(context.Background()).Create(row).Error; err != nil {
		t.Fatalf("failed to insert %s %q: %v", kind, title, err)
	}
}

// CountRows counts the rows of a table.
func CountRows(t *testing.T, gdb *gorm.DB, table string) int64 {
	t.Helper()

	var count int64
	if err := gdb.Table(table).Count(&count).Error; err != nil {
		t.Fatalf("failed to count %s: %v", table, err)
	}
	return count
}
