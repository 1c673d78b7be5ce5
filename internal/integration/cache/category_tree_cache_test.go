package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/media-shelf/backend/internal/domain/entity"
)

func newTestCache(t *testing.T, ttl time.Duration) (*miniredis.Miniredis, *categoryTreeCache) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return server, NewCategoryTreeCache(client, ttl).(*categoryTreeCache)
}

func sampleTree(ownerID uuid.UUID) []*entity.CategoryNode {
	rootID := uuid.New()
	now := time.Now().UTC().Truncate(time.Second)
	return []*entity.CategoryNode{
		{
			Category: entity.Category{ID: rootID, Name: "Fiction", Path: "1", SortOrder: 1, OwnerID: ownerID, CreatedAt: now, UpdatedAt: now},
			Children: []*entity.CategoryNode{
				{
					Category: entity.Category{ID: uuid.New(), Name: "Fantasy", Path: "1.1", Level: 1, SortOrder: 1, ParentID: &rootID, OwnerID: ownerID, CreatedAt: now, UpdatedAt: now},
					Children: []*entity.CategoryNode{},
				},
			},
		},
	}
}

func TestCategoryTreeCache_Miss(t *testing.T) {
	_, c := newTestCache(t, time.Minute)

	tree, generation, ok, err := c.Get(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, tree)
	assert.Zero(t, generation)
}

func TestCategoryTreeCache_SetGetInvalidate(t *testing.T) {
	server, c := newTestCache(t, time.Minute)
	ctx := context.Background()
	ownerID := uuid.New()
	tree := sampleTree(ownerID)

	require.NoError(t, c.Set(ctx, ownerID, 0, tree))
	assert.True(t, server.Exists(CategoryTreeKey(ownerID)))
	assert.Equal(t, time.Minute, server.TTL(CategoryTreeKey(ownerID)))

	got, generation, ok, err := c.Get(ctx, ownerID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, tree, got)
	assert.Zero(t, generation)

	require.NoError(t, c.Invalidate(ctx, ownerID))
	assert.False(t, server.Exists(CategoryTreeKey(ownerID)))
	_, generation, ok, err = c.Get(ctx, ownerID)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int64(1), generation)
	assert.Equal(t, 6*time.Minute, server.TTL(CategoryTreeGenerationKey(ownerID)))
}

func TestCategoryTreeCache_OwnersAreSeparate(t *testing.T) {
	_, c := newTestCache(t, time.Minute)
	ctx := context.Background()
	owner1, owner2 := uuid.New(), uuid.New()

	require.NoError(t, c.Set(ctx, owner1, 0, sampleTree(owner1)))
	require.NoError(t, c.Invalidate(ctx, owner2))

	_, _, ok, err := c.Get(ctx, owner1)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCategoryTreeCache_Expires(t *testing.T) {
	server, c := newTestCache(t, time.Minute)
	ctx := context.Background()
	ownerID := uuid.New()

	require.NoError(t, c.Set(ctx, ownerID, 0, sampleTree(ownerID)))
	server.FastForward(2 * time.Minute)

	_, _, ok, err := c.Get(ctx, ownerID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCategoryTreeCache_EmptyForestIsAHit(t *testing.T) {
	_, c := newTestCache(t, 0)
	ctx := context.Background()
	ownerID := uuid.New()

	require.NoError(t, c.Set(ctx, ownerID, 0, []*entity.CategoryNode{}))

	got, _, ok, err := c.Get(ctx, ownerID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, got)
	assert.Equal(t, DefaultCategoryTreeTTL, c.ttl)
}

func TestCategoryTreeCache_CorruptValue(t *testing.T) {
	server, c := newTestCache(t, time.Minute)
	ownerID := uuid.New()
	require.NoError(t, server.Set(CategoryTreeKey(ownerID), "not json"))

	_, _, ok, err := c.Get(context.Background(), ownerID)
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestCategoryTreeCache_Unavailable(t *testing.T) {
	server, c := newTestCache(t, time.Minute)
	server.SetError("LOADING server is loading")

	_, _, _, err := c.Get(context.Background(), uuid.New())
	assert.Error(t, err)
	assert.Error(t, c.Invalidate(context.Background(), uuid.New()))
}

func TestCategoryTreeCache_LoadOverlappingInvalidationIsNotServed(t *testing.T) {
	_, c := newTestCache(t, time.Minute)
	ctx := context.Background()
	ownerID := uuid.New()

	_, loadedAt, ok, err := c.Get(ctx, ownerID)
	require.NoError(t, err)
	require.False(t, ok)

	// A mutation commits while the forest is being loaded.
	require.NoError(t, c.Invalidate(ctx, ownerID))
	require.NoError(t, c.Set(ctx, ownerID, loadedAt, sampleTree(ownerID)))

	_, current, ok, err := c.Get(ctx, ownerID)
	require.NoError(t, err)
	assert.False(t, ok, "forest loaded before the invalidation was served")
	assert.Equal(t, loadedAt+1, current)

	require.NoError(t, c.Set(ctx, ownerID, current, sampleTree(ownerID)))
	_, _, ok, err = c.Get(ctx, ownerID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCategoryTreeCache_CorruptGeneration(t *testing.T) {
	server, c := newTestCache(t, time.Minute)
	ownerID := uuid.New()
	require.NoError(t, server.Set(CategoryTreeGenerationKey(ownerID), "many"))

	_, _, ok, err := c.Get(context.Background(), ownerID)
	assert.Error(t, err)
	assert.False(t, ok)
}
