package category

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/media-shelf/backend/internal/application/adapter"
	"github.com/media-shelf/backend/internal/domain/entity"
	domainerror "github.com/media-shelf/backend/internal/domain/error"
	"github.com/media-shelf/backend/internal/integration/persistence"
	"github.com/media-shelf/backend/internal/testutil"
)

type fixture struct {
	db    *gorm.DB
	repo  adapter.CategoryRepository
	cache *memoryTreeCache

	create *CreateCategoryUseCase
	update *UpdateCategoryUseCase
	delete *DeleteCategoryUseCase
	list   *ListCategoriesUseCase
	tree   *GetCategoryTreeUseCase
	path   *GetCategoryPathUseCase
	paths  *GetCategoryPathsUseCase

	ownerID    uuid.UUID
	strangerID uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	return newFixtureOn(t, testutil.NewTestDB(t))
}

func newFixtureOn(t *testing.T, gdb *gorm.DB) *fixture {
	t.Helper()

	repo := persistence.NewCategoryRepository(gdb)
	cache := newMemoryTreeCache()

	return &fixture{
		db:         gdb,
		repo:       repo,
		cache:      cache,
		create:     NewCreateCategoryUseCase(repo, cache),
		update:     NewUpdateCategoryUseCase(repo, cache),
		delete:     NewDeleteCategoryUseCase(repo, cache),
		list:       NewListCategoriesUseCase(repo),
		tree:       NewGetCategoryTreeUseCase(repo, cache),
		path:       NewGetCategoryPathUseCase(repo),
		paths:      NewGetCategoryPathsUseCase(repo),
		ownerID:    uuid.New(),
		strangerID: uuid.New(),
	}
}

func (f *fixture) mustCreate(t *testing.T, ownerID uuid.UUID, name string, parent *entity.Category) *entity.Category {
	t.Helper()

	input := CreateCategoryInput{OwnerID: ownerID, Name: name}
	if parent != nil {
		input.ParentID = &parent.ID
	}

	output, err := f.create.Execute(context.Background(), input)
	require.NoError(t, err)
	return output.Category
}

func (f *fixture) reload(t *testing.T, id uuid.UUID) *entity.Category {
	t.Helper()

	category, err := f.repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	return category
}

func (f *fixture) all(t *testing.T, ownerID uuid.UUID) []*entity.Category {
	t.Helper()

	output, err := f.list.Execute(context.Background(), ListCategoriesInput{OwnerID: ownerID})
	require.NoError(t, err)
	return output.Categories
}

func requireKind(t *testing.T, err error, kind domainerror.CategoryErrorKind) {
	t.Helper()

	require.Error(t, err)
	require.Equal(t, kind, domainerror.CategoryErrorKindOf(err), "unexpected error: %v", err)
}

func paths(categories []*entity.Category) []string {
	out := make([]string, len(categories))
	for i, c := range categories {
		out[i] = c.Path
	}
	return out
}

func names(categories []*entity.Category) []string {
	out := make([]string, len(categories))
	for i, c := range categories {
		out[i] = c.Name
	}
	return out
}

// memoryTreeCache is an in-process adapter.CategoryTreeCache that counts invalidations.
type memoryTreeCache struct {
	mu            sync.Mutex
	trees         map[uuid.UUID]memoryTree
	invalidations map[uuid.UUID]int
}

type memoryTree struct {
	generation int64
	roots      []*entity.CategoryNode
}

func newMemoryTreeCache() *memoryTreeCache {
	return &memoryTreeCache{
		trees:         make(map[uuid.UUID]memoryTree),
		invalidations: make(map[uuid.UUID]int),
	}
}

func (c *memoryTreeCache) Get(_ context.Context, ownerID uuid.UUID) ([]*entity.CategoryNode, int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	generation := int64(c.invalidations[ownerID])
	tree, ok := c.trees[ownerID]
	if !ok || tree.generation != generation {
		return nil, generation, false, nil
	}
	return tree.roots, generation, true, nil
}

func (c *memoryTreeCache) Set(_ context.Context, ownerID uuid.UUID, generation int64, roots []*entity.CategoryNode) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.trees[ownerID] = memoryTree{generation: generation, roots: roots}
	return nil
}

func (c *memoryTreeCache) Invalidate(_ context.Context, ownerID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.trees, ownerID)
	c.invalidations[ownerID]++
	return nil
}

func (c *memoryTreeCache) invalidationCount(ownerID uuid.UUID) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.invalidations[ownerID]
}
