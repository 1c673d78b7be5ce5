// Package db opens and manages the relational store behind the category tree.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/media-shelf/backend/config"
)

const (
	connectTimeout = 5 * time.Second
	healthTimeout  = 2 * time.Second
)

// Database is an open store plus the driver it was opened with.
type Database struct {
	db     *gorm.DB
	driver string
}

// NewConnection opens the store selected by cfg.Driver; an empty driver means Postgres.
func NewConnection(cfg *config.DatabaseConfig) (*Database, error) {
	switch cfg.Driver {
	case config.DriverPostgres, "":
		return NewPostgresConnection(cfg)
	case config.DriverSQLite:
		return NewSQLiteConnection(cfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// open hands dialector to gorm, lets tune size the pool and verifies the store answers.
func open(driver string, dialector gorm.Dialector, tune func(*sql.DB)) (*Database, error) {
	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if tune != nil {
		tune(sqlDB)
	}

	database := &Database{db: gdb, driver: driver}
	if err := database.ping(connectTimeout); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to reach %s database: %w", driver, err)
	}
	return database, nil
}

// DB returns the gorm handle.
func (d *Database) DB() *gorm.DB {
	return d.db
}

// Driver names the backing store.
func (d *Database) Driver() string {
	return d.driver
}

func (d *Database) ping(timeout time.Duration) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

// HealthCheck reports whether the store still answers a ping.
func (d *Database) HealthCheck() bool {
	if err := d.ping(healthTimeout); err != nil {
		slog.Error("Database health check failed", "driver", d.driver, "error", err)
		return false
	}
	return true
}

// Close releases every pooled connection.
func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB for closing: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close %s database: %w", d.driver, err)
	}

	slog.Info("Database connection closed", "driver", d.driver)
	return nil
}

// AutoMigrate creates or alters the tables behind models.
func (d *Database) AutoMigrate(models ...interface{}) error {
	if err := d.db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to run auto-migration: %w", err)
	}
	return nil
}
