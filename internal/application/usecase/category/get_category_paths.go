package category

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/media-shelf/backend/internal/application/adapter"
	"github.com/media-shelf/backend/internal/domain/entity"
)

// GetCategoryPathsInput represents a batch lookup of categories by ID.
type GetCategoryPathsInput struct {
	OwnerID     uuid.UUID
	CategoryIDs []uuid.UUID
}

// GetCategoryPathsOutput maps each found ID to its category. IDs that are missing
// or owned by someone else are absent.
type GetCategoryPathsOutput struct {
	Categories map[uuid.UUID]*entity.Category
}

// GetCategoryPathsUseCase resolves many categories in one round trip.
type GetCategoryPathsUseCase struct {
	categoryRepo adapter.CategoryRepository
}

// NewGetCategoryPathsUseCase creates a new GetCategoryPathsUseCase instance.
func NewGetCategoryPathsUseCase(categoryRepo adapter.CategoryRepository) *GetCategoryPathsUseCase {
	return &GetCategoryPathsUseCase{
		categoryRepo: categoryRepo,
	}
}

// Execute performs the batch lookup.
func (uc *GetCategoryPathsUseCase) Execute(ctx context.Context, input GetCategoryPathsInput) (*GetCategoryPathsOutput, error) {
	ids := dedupeIDs(input.CategoryIDs)

	categories, err := uc.categoryRepo.FindByIDs(ctx, input.OwnerID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to find categories: %w", err)
	}

	byID := make(map[uuid.UUID]*entity.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	return &GetCategoryPathsOutput{
		Categories: byID,
	}, nil
}

func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
