// Package category contains category tree use cases.
package category

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/media-shelf/backend/internal/application/adapter"
	"github.com/media-shelf/backend/internal/domain/entity"
	domainerror "github.com/media-shelf/backend/internal/domain/error"
	"github.com/media-shelf/backend/internal/domain/valueobject"
)

// MaxCategoryNameLength is the maximum allowed length for category names, in runes.
const MaxCategoryNameLength = 100

// normalizeName trims the name and checks its shape.
func normalizeName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", domainerror.NewCategoryError(
			domainerror.ErrCodeCategoryNameRequired,
			"category name is required",
			domainerror.ErrCategoryNameRequired,
		)
	}
	if utf8.RuneCountInString(trimmed) > MaxCategoryNameLength {
		return "", domainerror.NewCategoryError(
			domainerror.ErrCodeCategoryNameTooLong,
			fmt.Sprintf("category name must not exceed %d characters", MaxCategoryNameLength),
			domainerror.ErrCategoryNameTooLong,
		)
	}
	return trimmed, nil
}

// loadOwnedCategory fetches a category and checks that ownerID owns it.
// notFoundCode lets callers report a missing parent differently from a missing target.
func loadOwnedCategory(ctx context.Context, repo adapter.CategoryRepository, id, ownerID uuid.UUID, notFoundCode domainerror.CategoryErrorCode) (*entity.Category, error) {
	category, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domainerror.ErrCategoryNotFound) {
			return nil, notFoundError(notFoundCode)
		}
		return nil, fmt.Errorf("failed to find category: %w", err)
	}

	if !category.BelongsTo(ownerID) {
		return nil, domainerror.NewCategoryError(
			domainerror.ErrCodeNotAuthorizedCategory,
			"not authorized to access this category",
			domainerror.ErrNotAuthorizedToAccessCategory,
		)
	}

	return category, nil
}

func notFoundError(code domainerror.CategoryErrorCode) *domainerror.CategoryError {
	if code == domainerror.ErrCodeParentCategoryNotFound {
		return domainerror.NewCategoryError(code, "parent category not found", domainerror.ErrParentCategoryNotFound)
	}
	return domainerror.NewCategoryError(domainerror.ErrCodeCategoryNotFound, "category not found", domainerror.ErrCategoryNotFound)
}

// placement is where a node lands when appended under a parent.
type placement struct {
	Path      string
	Level     int
	SortOrder int
}

// invalidateTree drops the owner's cached tree after a committed mutation.
// A failure only means a stale read until the TTL expires.
func invalidateTree(ctx context.Context, cache adapter.CategoryTreeCache, ownerID uuid.UUID) {
	if cache == nil {
		return
	}
	if err := cache.Invalidate(ctx, ownerID); err != nil {
		slog.Warn("Failed to invalidate category tree cache",
			"owner_id", ownerID,
			"error", err,
		)
	}
}

// appendPlacement computes the path, level and sort order of a node appended as the
// last child of parent (or as the last root when parent is nil). It must run inside
// the transaction that writes the node.
func appendPlacement(ctx context.Context, repo adapter.CategoryRepository, ownerID uuid.UUID, parent *entity.Category) (placement, error) {
	var parentID *uuid.UUID
	if parent != nil {
		parentID = &parent.ID
	}

	maxOrder, err := repo.MaxSiblingSortOrder(ctx, ownerID, parentID)
	if err != nil {
		return placement{}, fmt.Errorf("failed to compute sibling order: %w", err)
	}
	sortOrder := maxOrder + 1

	if parent == nil {
		return placement{
			Path:      valueobject.RootPath(sortOrder),
			Level:     0,
			SortOrder: sortOrder,
		}, nil
	}

	return placement{
		Path:      valueobject.ChildPath(parent.Path, sortOrder),
		Level:     parent.Level + 1,
		SortOrder: sortOrder,
	}, nil
}
