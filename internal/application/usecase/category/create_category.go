package category

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/media-shelf/backend/internal/application/adapter"
	"github.com/media-shelf/backend/internal/domain/entity"
	domainerror "github.com/media-shelf/backend/internal/domain/error"
)

// CreateCategoryInput represents the input for category creation.
type CreateCategoryInput struct {
	OwnerID  uuid.UUID
	Name     string
	ParentID *uuid.UUID // Optional, nil creates a root
}

// CreateCategoryOutput represents the output of category creation.
type CreateCategoryOutput struct {
	Category *entity.Category
}

// CreateCategoryUseCase appends a new category as the last child of its parent.
type CreateCategoryUseCase struct {
	categoryRepo adapter.CategoryRepository
	treeCache    adapter.CategoryTreeCache
}

// NewCreateCategoryUseCase creates a new CreateCategoryUseCase instance.
func NewCreateCategoryUseCase(categoryRepo adapter.CategoryRepository, treeCache adapter.CategoryTreeCache) *CreateCategoryUseCase {
	return &CreateCategoryUseCase{
		categoryRepo: categoryRepo,
		treeCache:    treeCache,
	}
}

// Execute performs the category creation.
func (uc *CreateCategoryUseCase) Execute(ctx context.Context, input CreateCategoryInput) (*CreateCategoryOutput, error) {
	name, err := normalizeName(input.Name)
	if err != nil {
		return nil, err
	}

	var created *entity.Category
	err = uc.categoryRepo.Transaction(ctx, func(repo adapter.CategoryRepository) error {
		if err := repo.LockOwnerTree(ctx, input.OwnerID); err != nil {
			return fmt.Errorf("failed to lock category tree: %w", err)
		}

		var parent *entity.Category
		if input.ParentID != nil {
			found, err := loadOwnedCategory(ctx, repo, *input.ParentID, input.OwnerID, domainerror.ErrCodeParentCategoryNotFound)
			if err != nil {
				return err
			}
			parent = found
		}

		place, err := appendPlacement(ctx, repo, input.OwnerID, parent)
		if err != nil {
			return err
		}

		category := entity.NewCategory(name, input.OwnerID, input.ParentID, place.Path, place.Level, place.SortOrder)
		if err := repo.Create(ctx, category); err != nil {
			return fmt.Errorf("failed to create category: %w", err)
		}

		created = category
		return nil
	})
	if err != nil {
		return nil, err
	}

	invalidateTree(ctx, uc.treeCache, input.OwnerID)

	return &CreateCategoryOutput{
		Category: created,
	}, nil
}
