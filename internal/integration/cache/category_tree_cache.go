package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/media-shelf/backend/internal/application/adapter"
	"github.com/media-shelf/backend/internal/domain/entity"
)

const (
	categoryTreeKeyPrefix           = "category-tree:"
	categoryTreeGenerationKeyPrefix = "category-tree-gen:"

	// generationTTLFactor keeps a generation counter alive well past any forest
	// stored under it.
	generationTTLFactor = 6

	// DefaultCategoryTreeTTL bounds how long a stale tree can be served when an
	// invalidation is lost.
	DefaultCategoryTreeTTL = 10 * time.Minute
)

// cachedTree is the stored value: a forest and the generation it was loaded at.
type cachedTree struct {
	Generation int64         `json:"generation"`
	Roots      []*cachedNode `json:"roots"`
}

// cachedNode is the stored form of a CategoryNode.
type cachedNode struct {
	ID        uuid.UUID     `json:"id"`
	Name      string        `json:"name"`
	Path      string        `json:"path"`
	Level     int           `json:"level"`
	SortOrder int           `json:"sortOrder"`
	ParentID  *uuid.UUID    `json:"parentId"`
	OwnerID   uuid.UUID     `json:"ownerId"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
	Children  []*cachedNode `json:"children"`
}

// categoryTreeCache implements adapter.CategoryTreeCache on Redis.
type categoryTreeCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewCategoryTreeCache creates a Redis-backed category tree cache.
func NewCategoryTreeCache(client redis.UniversalClient, ttl time.Duration) adapter.CategoryTreeCache {
	if ttl <= 0 {
		ttl = DefaultCategoryTreeTTL
	}
	return &categoryTreeCache{
		client: client,
		ttl:    ttl,
	}
}

// CategoryTreeKey returns the Redis key holding an owner's forest.
func CategoryTreeKey(ownerID uuid.UUID) string {
	return categoryTreeKeyPrefix + ownerID.String()
}

// CategoryTreeGenerationKey returns the Redis key counting an owner's invalidations.
func CategoryTreeGenerationKey(ownerID uuid.UUID) string {
	return categoryTreeGenerationKeyPrefix + ownerID.String()
}

// Get returns the cached forest for an owner when it was stored under the
// current generation.
func (c *categoryTreeCache) Get(ctx context.Context, ownerID uuid.UUID) ([]*entity.CategoryNode, int64, bool, error) {
	values, err := c.client.MGet(ctx, CategoryTreeKey(ownerID), CategoryTreeGenerationKey(ownerID)).Result()
	if err != nil {
		return nil, 0, false, fmt.Errorf("failed to read category tree: %w", err)
	}

	generation, err := parseGeneration(values[1])
	if err != nil {
		return nil, 0, false, err
	}

	raw, ok := values[0].(string)
	if !ok {
		return nil, generation, false, nil
	}

	var stored cachedTree
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return nil, generation, false, fmt.Errorf("failed to decode category tree: %w", err)
	}
	if stored.Generation != generation {
		return nil, generation, false, nil
	}

	return fromCached(stored.Roots), generation, true, nil
}

// Set stores the forest for an owner with the configured TTL.
func (c *categoryTreeCache) Set(ctx context.Context, ownerID uuid.UUID, generation int64, tree []*entity.CategoryNode) error {
	raw, err := json.Marshal(cachedTree{Generation: generation, Roots: toCached(tree)})
	if err != nil {
		return fmt.Errorf("failed to encode category tree: %w", err)
	}

	if err := c.client.Set(ctx, CategoryTreeKey(ownerID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store category tree: %w", err)
	}
	return nil
}

// Invalidate advances the owner's generation and removes the forest atomically.
func (c *categoryTreeCache) Invalidate(ctx context.Context, ownerID uuid.UUID) error {
	generationKey := CategoryTreeGenerationKey(ownerID)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey)
		pipe.Expire(ctx, generationKey, c.ttl*generationTTLFactor)
		pipe.Del(ctx, CategoryTreeKey(ownerID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to invalidate category tree: %w", err)
	}
	return nil
}

func parseGeneration(value interface{}) (int64, error) {
	raw, ok := value.(string)
	if !ok {
		return 0, nil
	}
	generation, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid category tree generation %q: %w", raw, err)
	}
	return generation, nil
}

func toCached(nodes []*entity.CategoryNode) []*cachedNode {
	out := make([]*cachedNode, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, &cachedNode{
			ID:        n.ID,
			Name:      n.Name,
			Path:      n.Path,
			Level:     n.Level,
			SortOrder: n.SortOrder,
			ParentID:  n.ParentID,
			OwnerID:   n.OwnerID,
			CreatedAt: n.CreatedAt,
			UpdatedAt: n.UpdatedAt,
			Children:  toCached(n.Children),
		})
	}
	return out
}

func fromCached(nodes []*cachedNode) []*entity.CategoryNode {
	out := make([]*entity.CategoryNode, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, &entity.CategoryNode{
			Category: entity.Category{
				ID:        n.ID,
				Name:      n.Name,
				Path:      n.Path,
				Level:     n.Level,
				SortOrder: n.SortOrder,
				ParentID:  n.ParentID,
				OwnerID:   n.OwnerID,
				CreatedAt: n.CreatedAt,
				UpdatedAt: n.UpdatedAt,
			},
			Children: fromCached(n.Children),
		})
	}
	return out
}
