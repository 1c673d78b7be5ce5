// Package main is the entry point for the Media Shelf API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/media-shelf/backend/config"
	"github.com/media-shelf/backend/internal/application/adapter"
	"github.com/media-shelf/backend/internal/infra/db"
	"github.com/media-shelf/backend/internal/infra/dependency"
	"github.com/media-shelf/backend/internal/infra/server/router"
	"github.com/media-shelf/backend/internal/integration/cache"
	"github.com/media-shelf/backend/internal/integration/entrypoint/controller"
	"github.com/media-shelf/backend/internal/integration/entrypoint/middleware"
	"github.com/media-shelf/backend/internal/integration/persistence/model"
)

func main() {
	// Load .env file if it exists (development only)
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.Load()

	slog.Info("Starting Media Shelf API",
		"environment", cfg.Server.Environment,
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"db_driver", cfg.Database.Driver,
	)

	var treeCache adapter.CategoryTreeCache
	var cacheHealthChecker func() bool
	if cfg.Redis.Enabled {
		client, err := cache.NewRedisClient(&cfg.Redis)
		if err != nil {
			slog.Warn("Redis connection failed, category tree cache disabled", "error", err)
		} else {
			treeCache = cache.NewCategoryTreeCache(client, cfg.Redis.TreeTTL)
			cacheHealthChecker = redisHealthChecker(client)
			defer func() {
				if err := client.Close(); err != nil {
					slog.Error("Failed to close Redis connection", "error", err)
				}
			}()
		}
	}

	var engine http.Handler
	database, err := db.NewConnection(&cfg.Database)
	if err != nil {
		slog.Warn("Database connection failed, running without database",
			"error", err,
		)
		healthController := controller.NewHealthController(func() bool { return false }, cacheHealthChecker)
		engine = router.NewRouter(healthController, nil, nil, nil).Setup(cfg.Server.Environment)
	} else {
		if err := database.AutoMigrate(model.AllModels()...); err != nil {
			slog.Error("Failed to run database migrations", "error", err)
			os.Exit(1)
		}
		slog.Info("Database migrations completed successfully")

		defer func() {
			if err := database.Close(); err != nil {
				slog.Error("Failed to close database connection", "error", err)
			}
		}()

		injector := dependency.NewInjector(cfg, database.DB(), treeCache, dependency.Checks{
			Database: database.HealthCheck,
			Cache:    cacheHealthChecker,
		})
		engine = injector.Router.Setup(cfg.Server.Environment)
		go sweepRateLimiter(injector.WriteRateLimiter, cfg.RateLimit.WriteWindow)
		slog.Info("Category tree engine initialized", "tree_cache", treeCache != nil)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		slog.Info("Server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited properly")
}

func redisHealthChecker(client *redis.Client) func() bool {
	return func() bool {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return client.Ping(ctx).Err() == nil
	}
}

// sweepRateLimiter drops expired rate limit windows for the life of the process.
func sweepRateLimiter(rl *middleware.RateLimiter, every time.Duration) {
	if every <= 0 {
		every = time.Minute
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for range ticker.C {
		rl.Cleanup()
	}
}
