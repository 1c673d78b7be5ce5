package db

import (
	"database/sql"
	"log/slog"

	"gorm.io/driver/postgres"

	"github.com/media-shelf/backend/config"
)

// NewPostgresConnection opens a pooled PostgreSQL store. Concurrent tree mutations
// only serialize here through the per-owner lock row.
func NewPostgresConnection(cfg *config.DatabaseConfig) (*Database, error) {
	database, err := open(config.DriverPostgres, postgres.Open(cfg.URL), func(sqlDB *sql.DB) {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Database connection established",
		"driver", config.DriverPostgres,
		"max_open_conns", cfg.MaxOpenConns,
		"max_idle_conns", cfg.MaxIdleConns,
	)
	return database, nil
}
