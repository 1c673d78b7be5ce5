package category

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/media-shelf/backend/internal/application/adapter"
	"github.com/media-shelf/backend/internal/domain/entity"
	domainerror "github.com/media-shelf/backend/internal/domain/error"
	"github.com/media-shelf/backend/internal/domain/valueobject"
)

// ParentChange requests a re-parent. A nil ParentID moves the category to the roots.
type ParentChange struct {
	ParentID *uuid.UUID
}

// UpdateCategoryInput represents the input for renaming or re-parenting a category.
type UpdateCategoryInput struct {
	CategoryID uuid.UUID
	OwnerID    uuid.UUID
	Name       string
	Parent     *ParentChange // Optional, nil renames only
}

// UpdateCategoryOutput represents the output of category update.
type UpdateCategoryOutput struct {
	Category *entity.Category
	// MovedDescendants is the number of descendant rows rewritten by a re-parent.
	MovedDescendants int64
}

// UpdateCategoryUseCase renames a category and optionally moves its subtree.
type UpdateCategoryUseCase struct {
	categoryRepo adapter.CategoryRepository
	treeCache    adapter.CategoryTreeCache
}

// NewUpdateCategoryUseCase creates a new UpdateCategoryUseCase instance.
func NewUpdateCategoryUseCase(categoryRepo adapter.CategoryRepository, treeCache adapter.CategoryTreeCache) *UpdateCategoryUseCase {
	return &UpdateCategoryUseCase{
		categoryRepo: categoryRepo,
		treeCache:    treeCache,
	}
}

// Execute performs the category update.
func (uc *UpdateCategoryUseCase) Execute(ctx context.Context, input UpdateCategoryInput) (*UpdateCategoryOutput, error) {
	name, err := normalizeName(input.Name)
	if err != nil {
		return nil, err
	}

	output := &UpdateCategoryOutput{}
	err = uc.categoryRepo.Transaction(ctx, func(repo adapter.CategoryRepository) error {
		if err := repo.LockOwnerTree(ctx, input.OwnerID); err != nil {
			return fmt.Errorf("failed to lock category tree: %w", err)
		}

		category, err := loadOwnedCategory(ctx, repo, input.CategoryID, input.OwnerID, domainerror.ErrCodeCategoryNotFound)
		if err != nil {
			return err
		}

		category.Name = name
		category.UpdatedAt = time.Now().UTC()

		if input.Parent == nil {
			if err := repo.Rename(ctx, category.ID, category.OwnerID, category.Name, category.UpdatedAt); err != nil {
				if errors.Is(err, domainerror.ErrCategoryNotFound) {
					return notFoundError(domainerror.ErrCodeCategoryNotFound)
				}
				return fmt.Errorf("failed to rename category: %w", err)
			}
			output.Category = category
			return nil
		}

		moved, err := uc.reparent(ctx, repo, category, input.Parent.ParentID)
		if err != nil {
			return err
		}
		output.Category = category
		output.MovedDescendants = moved
		return nil
	})
	if err != nil {
		return nil, err
	}

	invalidateTree(ctx, uc.treeCache, input.OwnerID)

	return output, nil
}

// reparent appends category as the last child of newParentID and rewrites the
// paths and levels of its whole subtree.
func (uc *UpdateCategoryUseCase) reparent(ctx context.Context, repo adapter.CategoryRepository, category *entity.Category, newParentID *uuid.UUID) (int64, error) {
	var parent *entity.Category
	if newParentID != nil {
		if *newParentID == category.ID {
			return 0, domainerror.NewCategoryError(
				domainerror.ErrCodeCategoryOwnParent,
				"a category cannot be its own parent",
				domainerror.ErrCategoryCannotBeOwnParent,
			)
		}

		var err error
		parent, err = loadOwnedCategory(ctx, repo, *newParentID, category.OwnerID, domainerror.ErrCodeParentCategoryNotFound)
		if err != nil {
			return 0, err
		}

		if valueobject.IsDescendantPath(parent.Path, category.Path) {
			return 0, domainerror.NewCategoryError(
				domainerror.ErrCodeCategoryIntoDescendant,
				"a category cannot be moved into one of its subcategories",
				domainerror.ErrCategoryMoveIntoDescendant,
			)
		}
	}

	place, err := appendPlacement(ctx, repo, category.OwnerID, parent)
	if err != nil {
		return 0, err
	}

	oldPath := category.Path
	levelDelta := place.Level - category.Level

	category.ParentID = newParentID
	category.Path = place.Path
	category.Level = place.Level
	category.SortOrder = place.SortOrder

	if err := repo.Move(ctx, category); err != nil {
		if errors.Is(err, domainerror.ErrCategoryNotFound) {
			return 0, notFoundError(domainerror.ErrCodeCategoryNotFound)
		}
		return 0, fmt.Errorf("failed to move category: %w", err)
	}

	moved, err := repo.RebaseDescendants(ctx, category.OwnerID, oldPath, place.Path, levelDelta)
	if err != nil {
		return 0, fmt.Errorf("failed to move subcategories: %w", err)
	}

	slog.Info("Category re-parented",
		"category_id", category.ID,
		"owner_id", category.OwnerID,
		"old_path", oldPath,
		"new_path", place.Path,
		"descendants", moved,
	)

	return moved, nil
}
