package category

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/media-shelf/backend/internal/application/adapter"
	"github.com/media-shelf/backend/internal/domain/entity"
	domainerror "github.com/media-shelf/backend/internal/domain/error"
)

// DeleteCategoryInput represents the input for category deletion.
type DeleteCategoryInput struct {
	CategoryID uuid.UUID
	OwnerID    uuid.UUID
}

// DeleteCategoryOutput represents the output of category deletion.
type DeleteCategoryOutput struct {
	Category *entity.Category
}

// DeleteCategoryUseCase removes a leaf category that no item references.
type DeleteCategoryUseCase struct {
	categoryRepo adapter.CategoryRepository
	treeCache    adapter.CategoryTreeCache
}

// NewDeleteCategoryUseCase creates a new DeleteCategoryUseCase instance.
func NewDeleteCategoryUseCase(categoryRepo adapter.CategoryRepository, treeCache adapter.CategoryTreeCache) *DeleteCategoryUseCase {
	return &DeleteCategoryUseCase{
		categoryRepo: categoryRepo,
		treeCache:    treeCache,
	}
}

// Execute performs the category deletion.
func (uc *DeleteCategoryUseCase) Execute(ctx context.Context, input DeleteCategoryInput) (*DeleteCategoryOutput, error) {
	var deleted *entity.Category
	err := uc.categoryRepo.Transaction(ctx, func(repo adapter.CategoryRepository) error {
		if err := repo.LockOwnerTree(ctx, input.OwnerID); err != nil {
			return fmt.Errorf("failed to lock category tree: %w", err)
		}

		category, err := loadOwnedCategory(ctx, repo, input.CategoryID, input.OwnerID, domainerror.ErrCodeCategoryNotFound)
		if err != nil {
			return err
		}

		children, err := repo.CountChildren(ctx, category.ID)
		if err != nil {
			return fmt.Errorf("failed to count subcategories: %w", err)
		}
		if children > 0 {
			return domainerror.NewCategoryError(
				domainerror.ErrCodeCategoryHasChildren,
				"cannot delete a category that has subcategories",
				domainerror.ErrCategoryHasChildren,
			)
		}

		items, err := repo.CountAssignedMedia(ctx, category.ID, input.OwnerID)
		if err != nil {
			return fmt.Errorf("failed to count assigned items: %w", err)
		}
		if items > 0 {
			return domainerror.NewCategoryError(
				domainerror.ErrCodeCategoryHasMedia,
				fmt.Sprintf("cannot delete a category with %d items assigned", items),
				domainerror.ErrCategoryHasMedia,
			)
		}

		if err := repo.Delete(ctx, category.ID); err != nil {
			return fmt.Errorf("failed to delete category: %w", err)
		}

		deleted = category
		return nil
	})
	if err != nil {
		return nil, err
	}

	invalidateTree(ctx, uc.treeCache, input.OwnerID)

	return &DeleteCategoryOutput{
		Category: deleted,
	}, nil
}
