package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/media-shelf/backend/config"
	"github.com/media-shelf/backend/internal/application/adapter"
	"github.com/media-shelf/backend/internal/infra/db"
	"github.com/media-shelf/backend/internal/infra/dependency"
	"github.com/media-shelf/backend/internal/integration/cache"
)

// app holds the lazily opened dependencies shared by subcommands.
type app struct {
	envFile  string
	cfg      *config.Config
	database *db.Database
	redis    *redis.Client
	injector *dependency.Injector
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "categoryctl",
		Short:         "Inspect and seed media shelf category trees",
		Long:          `categoryctl runs the category tree engine against the configured store.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if err := godotenv.Load(a.envFile); err != nil {
				slog.Debug("No env file loaded", "path", a.envFile, "error", err)
			}
			a.cfg = config.Load()
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return a.close()
		},
	}

	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file to load before reading the environment")

	root.AddCommand(migrateCmd(a))
	root.AddCommand(createCmd(a))
	root.AddCommand(treeCmd(a))
	root.AddCommand(pathCmd(a))
	root.AddCommand(tokenCmd(a))

	return root
}

// connect opens the store, and the tree cache when enabled, on first use.
func (a *app) connect() (*dependency.Injector, error) {
	if a.injector != nil {
		return a.injector, nil
	}

	database, err := db.NewConnection(&a.cfg.Database)
	if err != nil {
		return nil, err
	}
	a.database = database

	var treeCache adapter.CategoryTreeCache
	if a.cfg.Redis.Enabled {
		client, err := cache.NewRedisClient(&a.cfg.Redis)
		if err != nil {
			slog.Warn("Redis unavailable, tree cache will not be invalidated", "error", err)
		} else {
			a.redis = client
			treeCache = cache.NewCategoryTreeCache(client, a.cfg.Redis.TreeTTL)
		}
	}

	a.injector = dependency.NewInjector(a.cfg, database.DB(), treeCache, dependency.Checks{
		Database: database.HealthCheck,
	})
	return a.injector, nil
}

func (a *app) close() error {
	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
		a.redis = nil
	}
	if a.database != nil {
		if err := a.database.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
		a.database = nil
	}
	a.injector = nil
	return errors.Join(errs...)
}
