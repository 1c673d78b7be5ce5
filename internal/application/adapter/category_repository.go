// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/media-shelf/backend/internal/domain/entity"
)

// CategoryRepository defines the interface for category persistence operations.
// Reads are not owner-filtered unless the method says so; callers compare OwnerID
// themselves so that NotFound and Forbidden stay distinguishable.
type CategoryRepository interface {
	// Transaction runs fn against a repository bound to a single database transaction.
	// The transaction commits when fn returns nil and rolls back otherwise.
	Transaction(ctx context.Context, fn func(repo CategoryRepository) error) error

	// LockOwnerTree serializes mutations of one owner's forest for the rest of the
	// current transaction.
	LockOwnerTree(ctx context.Context, ownerID uuid.UUID) error

	// FindByID retrieves a category by its ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Category, error)

	// FindByIDs retrieves the owner's categories among the given IDs.
	FindByIDs(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]*entity.Category, error)

	// FindByPaths retrieves the owner's categories whose path is one of paths, ordered by level.
	FindByPaths(ctx context.Context, ownerID uuid.UUID, paths []string) ([]*entity.Category, error)

	// FindByOwner retrieves all categories for an owner ordered by level.
	FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]*entity.Category, error)

	// FindChildren retrieves the direct children of parentID, or the roots when parentID is nil.
	FindChildren(ctx context.Context, ownerID uuid.UUID, parentID *uuid.UUID) ([]*entity.Category, error)

	// MaxSiblingSortOrder returns the highest sort order under parentID (roots when nil), or 0.
	MaxSiblingSortOrder(ctx context.Context, ownerID uuid.UUID, parentID *uuid.UUID) (int, error)

	// CountChildren counts the direct children of a category.
	CountChildren(ctx context.Context, id uuid.UUID) (int64, error)

	// CountAssignedMedia counts the owner's books, movies and TV shows filed under a category.
	CountAssignedMedia(ctx context.Context, categoryID, ownerID uuid.UUID) (int64, error)

	// Create creates a new category in the database.
	Create(ctx context.Context, category *entity.Category) error

	// Rename writes only the name of the owner's category. It returns
	// ErrCategoryNotFound when no such row exists.
	Rename(ctx context.Context, id, ownerID uuid.UUID, name string, updatedAt time.Time) error

	// Move writes the name, parent, path, level and sort order of an existing
	// category. It returns ErrCategoryNotFound when no such row exists.
	Move(ctx context.Context, category *entity.Category) error

	// RebaseDescendants rewrites every descendant of oldPath to live under newPath,
	// shifting levels by levelDelta.
	RebaseDescendants(ctx context.Context, ownerID uuid.UUID, oldPath, newPath string, levelDelta int) (int64, error)

	// Delete removes a category from the database.
	Delete(ctx context.Context, id uuid.UUID) error
}
