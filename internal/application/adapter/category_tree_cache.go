package adapter

import (
	"context"

	"github.com/google/uuid"

	"github.com/media-shelf/backend/internal/domain/entity"
)

// CategoryTreeCache stores assembled category forests per owner.
//
// Every owner has a generation that Invalidate advances. A forest is stored with
// the generation observed before it was loaded and is only served while that
// generation is still current, so a load that overlaps a mutation never sticks.
type CategoryTreeCache interface {
	// Get returns the cached forest and true on a hit. It always returns the
	// owner's current generation, which a caller loading the forest hands to Set.
	Get(ctx context.Context, ownerID uuid.UUID) ([]*entity.CategoryNode, int64, bool, error)

	// Set stores the forest for an owner as loaded at generation.
	Set(ctx context.Context, ownerID uuid.UUID, generation int64, tree []*entity.CategoryNode) error

	// Invalidate advances the owner's generation and drops the cached forest.
	Invalidate(ctx context.Context, ownerID uuid.UUID) error
}
