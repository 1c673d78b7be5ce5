// Package router sets up the HTTP routing for the application.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/media-shelf/backend/internal/integration/entrypoint/controller"
	"github.com/media-shelf/backend/internal/integration/entrypoint/middleware"
)

// Router holds the Gin engine and controller dependencies.
type Router struct {
	engine             *gin.Engine
	healthController   *controller.HealthController
	categoryController *controller.CategoryController
	writeRateLimiter   *middleware.RateLimiter
	authMiddleware     *middleware.AuthMiddleware
}

// NewRouter creates a new router instance with all dependencies.
// categoryController may be nil when the database is unavailable.
func NewRouter(
	healthController *controller.HealthController,
	categoryController *controller.CategoryController,
	writeRateLimiter *middleware.RateLimiter,
	authMiddleware *middleware.AuthMiddleware,
) *Router {
	return &Router{
		healthController:   healthController,
		categoryController: categoryController,
		writeRateLimiter:   writeRateLimiter,
		authMiddleware:     authMiddleware,
	}
}

// Setup configures and returns the Gin engine with all routes.
func (r *Router) Setup(environment string) *gin.Engine {
	switch environment {
	case "production":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	}

	r.engine = gin.New()
	r.engine.Use(gin.Recovery())
	if environment != "test" {
		r.engine.Use(gin.Logger())
	}

	r.setupHealthRoutes()
	r.setupAPIRoutes()

	return r.engine
}

// setupHealthRoutes configures health check endpoints.
func (r *Router) setupHealthRoutes() {
	r.engine.GET("/health", r.healthController.Check)
}

// setupAPIRoutes configures the main API routes.
func (r *Router) setupAPIRoutes() {
	v1 := r.engine.Group("/api/v1")

	if r.categoryController == nil || r.authMiddleware == nil {
		return
	}

	write := r.writeRateLimiter
	if write == nil {
		write = middleware.NewRateLimiter()
	}

	categories := v1.Group("/categories")
	categories.Use(r.authMiddleware.Authenticate())
	{
		categories.GET("", r.categoryController.List)
		categories.GET("/children", r.categoryController.Children)
		categories.GET("/tree", r.categoryController.Tree)
		categories.GET("/:id/path", r.categoryController.Path)
		categories.POST("/paths", r.categoryController.Paths)

		categories.POST("", write.Middleware(), r.categoryController.Create)
		categories.PATCH("/:id", write.Middleware(), r.categoryController.Update)
		categories.DELETE("/:id", write.Middleware(), r.categoryController.Delete)
	}
}
