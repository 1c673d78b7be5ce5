package category

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/media-shelf/backend/internal/application/adapter"
	"github.com/media-shelf/backend/internal/domain/entity"
	domainerror "github.com/media-shelf/backend/internal/domain/error"
	"github.com/media-shelf/backend/internal/domain/valueobject"
)

// ListCategoriesInput represents the input for listing categories.
type ListCategoriesInput struct {
	OwnerID uuid.UUID
}

// ListChildrenInput represents the input for listing one level of the tree.
type ListChildrenInput struct {
	OwnerID  uuid.UUID
	ParentID *uuid.UUID // Optional, nil lists the roots
}

// ListCategoriesOutput represents the output of listing categories.
type ListCategoriesOutput struct {
	Categories []*entity.Category
}

// ListCategoriesUseCase returns categories in numeric path order.
type ListCategoriesUseCase struct {
	categoryRepo adapter.CategoryRepository
}

// NewListCategoriesUseCase creates a new ListCategoriesUseCase instance.
func NewListCategoriesUseCase(categoryRepo adapter.CategoryRepository) *ListCategoriesUseCase {
	return &ListCategoriesUseCase{
		categoryRepo: categoryRepo,
	}
}

// Execute lists every category of the owner.
func (uc *ListCategoriesUseCase) Execute(ctx context.Context, input ListCategoriesInput) (*ListCategoriesOutput, error) {
	categories, err := uc.categoryRepo.FindByOwner(ctx, input.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	valueobject.SortCategoriesByPath(categories)

	return &ListCategoriesOutput{
		Categories: categories,
	}, nil
}

// Children lists the direct children of a category, or the roots.
func (uc *ListCategoriesUseCase) Children(ctx context.Context, input ListChildrenInput) (*ListCategoriesOutput, error) {
	if input.ParentID != nil {
		if _, err := loadOwnedCategory(ctx, uc.categoryRepo, *input.ParentID, input.OwnerID, domainerror.ErrCodeParentCategoryNotFound); err != nil {
			return nil, err
		}
	}

	categories, err := uc.categoryRepo.FindChildren(ctx, input.OwnerID, input.ParentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subcategories: %w", err)
	}

	valueobject.SortCategoriesByPath(categories)

	return &ListCategoriesOutput{
		Categories: categories,
	}, nil
}
