package category

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/media-shelf/backend/internal/application/adapter"
	"github.com/media-shelf/backend/internal/domain/entity"
	"github.com/media-shelf/backend/internal/domain/valueobject"
)

// GetCategoryTreeInput represents the input for retrieving an owner's forest.
type GetCategoryTreeInput struct {
	OwnerID uuid.UUID
}

// GetCategoryTreeOutput represents the assembled forest.
type GetCategoryTreeOutput struct {
	Roots  []*entity.CategoryNode
	Cached bool
}

// GetCategoryTreeUseCase assembles an owner's categories into nested nodes.
type GetCategoryTreeUseCase struct {
	categoryRepo adapter.CategoryRepository
	treeCache    adapter.CategoryTreeCache
}

// NewGetCategoryTreeUseCase creates a new GetCategoryTreeUseCase instance.
func NewGetCategoryTreeUseCase(categoryRepo adapter.CategoryRepository, treeCache adapter.CategoryTreeCache) *GetCategoryTreeUseCase {
	return &GetCategoryTreeUseCase{
		categoryRepo: categoryRepo,
		treeCache:    treeCache,
	}
}

// Execute returns the owner's forest, from cache when available. The cache
// generation is read before the forest is loaded.
func (uc *GetCategoryTreeUseCase) Execute(ctx context.Context, input GetCategoryTreeInput) (*GetCategoryTreeOutput, error) {
	var generation int64
	cacheable := false
	if uc.treeCache != nil {
		roots, current, ok, err := uc.treeCache.Get(ctx, input.OwnerID)
		switch {
		case err != nil:
			slog.Warn("Failed to read category tree cache", "owner_id", input.OwnerID, "error", err)
		case ok:
			return &GetCategoryTreeOutput{Roots: roots, Cached: true}, nil
		default:
			generation = current
			cacheable = true
		}
	}

	categories, err := uc.categoryRepo.FindByOwner(ctx, input.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	roots := BuildCategoryTree(categories)

	if cacheable {
		if err := uc.treeCache.Set(ctx, input.OwnerID, generation, roots); err != nil {
			slog.Warn("Failed to store category tree cache", "owner_id", input.OwnerID, "error", err)
		}
	}

	return &GetCategoryTreeOutput{Roots: roots}, nil
}

// BuildCategoryTree assembles a forest from a flat list of one owner's categories.
//
// Nodes are grouped by level, each level sorted by numeric path, then bucketed by
// parent and expanded recursively from the roots. A node whose parent is missing
// from the input is unreachable and left out; no node is emitted twice.
func BuildCategoryTree(categories []*entity.Category) []*entity.CategoryNode {
	levels := make(map[int][]*entity.Category)
	maxLevel := -1
	for _, c := range categories {
		levels[c.Level] = append(levels[c.Level], c)
		if c.Level > maxLevel {
			maxLevel = c.Level
		}
	}

	ordered := make([]*entity.Category, 0, len(categories))
	for level := 0; level <= maxLevel; level++ {
		group := levels[level]
		valueobject.SortCategoriesByPath(group)
		ordered = append(ordered, group...)
	}

	rootKey := uuid.Nil
	buckets := make(map[uuid.UUID][]*entity.Category)
	for _, c := range ordered {
		key := rootKey
		if c.ParentID != nil {
			key = *c.ParentID
		}
		buckets[key] = append(buckets[key], c)
	}

	visited := make(map[uuid.UUID]bool, len(ordered))
	var expand func(parentKey uuid.UUID) []*entity.CategoryNode
	expand = func(parentKey uuid.UUID) []*entity.CategoryNode {
		bucket := buckets[parentKey]
		nodes := make([]*entity.CategoryNode, 0, len(bucket))
		for _, c := range bucket {
			if visited[c.ID] {
				continue
			}
			visited[c.ID] = true
			nodes = append(nodes, &entity.CategoryNode{
				Category: *c,
				Children: expand(c.ID),
			})
		}
		return nodes
	}

	return expand(rootKey)
}
