package category

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/media-shelf/backend/internal/application/adapter"
	"github.com/media-shelf/backend/internal/domain/entity"
	domainerror "github.com/media-shelf/backend/internal/domain/error"
	"github.com/media-shelf/backend/internal/domain/valueobject"
)

// GetCategoryPathInput represents the input for resolving a category's ancestry.
type GetCategoryPathInput struct {
	OwnerID    uuid.UUID
	CategoryID uuid.UUID
}

// GetCategoryPathOutput holds the categories from the root down to the target.
type GetCategoryPathOutput struct {
	Categories []*entity.Category
}

// GetCategoryPathUseCase resolves the root-to-node chain of a category.
type GetCategoryPathUseCase struct {
	categoryRepo adapter.CategoryRepository
}

// NewGetCategoryPathUseCase creates a new GetCategoryPathUseCase instance.
func NewGetCategoryPathUseCase(categoryRepo adapter.CategoryRepository) *GetCategoryPathUseCase {
	return &GetCategoryPathUseCase{
		categoryRepo: categoryRepo,
	}
}

// Execute returns the ancestors of the category followed by the category itself.
// A category that does not exist yields an empty chain rather than an error.
func (uc *GetCategoryPathUseCase) Execute(ctx context.Context, input GetCategoryPathInput) (*GetCategoryPathOutput, error) {
	target, err := uc.categoryRepo.FindByID(ctx, input.CategoryID)
	if err != nil {
		if errors.Is(err, domainerror.ErrCategoryNotFound) {
			return &GetCategoryPathOutput{Categories: []*entity.Category{}}, nil
		}
		return nil, fmt.Errorf("failed to find category: %w", err)
	}

	if !target.BelongsTo(input.OwnerID) {
		return nil, domainerror.NewCategoryError(
			domainerror.ErrCodeNotAuthorizedCategory,
			"not authorized to access this category",
			domainerror.ErrNotAuthorizedToAccessCategory,
		)
	}

	chain, err := uc.categoryRepo.FindByPaths(ctx, input.OwnerID, valueobject.PathPrefixes(target.Path))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve category path: %w", err)
	}

	valueobject.SortCategoriesByPath(chain)

	return &GetCategoryPathOutput{
		Categories: chain,
	}, nil
}
