// Package dependency provides dependency injection for the application.
package dependency

import (
	"gorm.io/gorm"

	"github.com/media-shelf/backend/config"
	"github.com/media-shelf/backend/internal/application/adapter"
	"github.com/media-shelf/backend/internal/application/usecase/category"
	"github.com/media-shelf/backend/internal/infra/server/router"
	"github.com/media-shelf/backend/internal/integration/adapters"
	"github.com/media-shelf/backend/internal/integration/entrypoint/controller"
	"github.com/media-shelf/backend/internal/integration/entrypoint/middleware"
	"github.com/media-shelf/backend/internal/integration/persistence"
)

// CategoryUseCases groups the category tree operations.
type CategoryUseCases struct {
	List   *category.ListCategoriesUseCase
	Tree   *category.GetCategoryTreeUseCase
	Path   *category.GetCategoryPathUseCase
	Paths  *category.GetCategoryPathsUseCase
	Create *category.CreateCategoryUseCase
	Update *category.UpdateCategoryUseCase
	Delete *category.DeleteCategoryUseCase
}

// Injector holds all application dependencies.
type Injector struct {
	Config           *config.Config
	DB               *gorm.DB
	TokenService     adapter.TokenService
	Categories       CategoryUseCases
	WriteRateLimiter *middleware.RateLimiter
	Router           *router.Router
}

// Checks reports the health of external dependencies. Nil checks report as down.
type Checks struct {
	Database func() bool
	Cache    func() bool
}

// NewInjector creates a new dependency injector with all dependencies wired.
// treeCache may be nil, in which case trees are always rebuilt from the store.
func NewInjector(cfg *config.Config, db *gorm.DB, treeCache adapter.CategoryTreeCache, checks Checks) *Injector {
	categoryRepo := persistence.NewCategoryRepository(db)
	tokenService := adapters.NewTokenService(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)

	useCases := CategoryUseCases{
		List:   category.NewListCategoriesUseCase(categoryRepo),
		Tree:   category.NewGetCategoryTreeUseCase(categoryRepo, treeCache),
		Path:   category.NewGetCategoryPathUseCase(categoryRepo),
		Paths:  category.NewGetCategoryPathsUseCase(categoryRepo),
		Create: category.NewCreateCategoryUseCase(categoryRepo, treeCache),
		Update: category.NewUpdateCategoryUseCase(categoryRepo, treeCache),
		Delete: category.NewDeleteCategoryUseCase(categoryRepo, treeCache),
	}

	healthController := controller.NewHealthController(checks.Database, checks.Cache)
	categoryController := controller.NewCategoryController(
		useCases.List,
		useCases.Tree,
		useCases.Path,
		useCases.Paths,
		useCases.Create,
		useCases.Update,
		useCases.Delete,
	)

	writeRateLimiter := middleware.NewRateLimiterWithConfig(cfg.RateLimit.WriteMaxAttempts, cfg.RateLimit.WriteWindow)
	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	r := router.NewRouter(healthController, categoryController, writeRateLimiter, authMiddleware)

	return &Injector{
		Config:           cfg,
		DB:               db,
		TokenService:     tokenService,
		Categories:       useCases,
		WriteRateLimiter: writeRateLimiter,
		Router:           r,
	}
}
