package db

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/glebarez/sqlite"

	"github.com/media-shelf/backend/config"
)

// NewSQLiteConnection opens an embedded SQLite store. cfg.URL is a file path or
// ":memory:". The pool is pinned to one connection: SQLite has a single writer and
// every in-memory connection would otherwise see its own empty database.
func NewSQLiteConnection(cfg *config.DatabaseConfig) (*Database, error) {
	sqlDB, err := sql.Open("sqlite", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	database, err := open(config.DriverSQLite, sqlite.Dialector{Conn: sqlDB}, nil)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	if err := database.db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	slog.Info("Database connection established",
		"driver", config.DriverSQLite,
		"path", cfg.URL,
	)
	return database, nil
}
