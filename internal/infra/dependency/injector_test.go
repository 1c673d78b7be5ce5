package dependency

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/media-shelf/backend/config"
	"github.com/media-shelf/backend/internal/domain/entity"
	domainerror "github.com/media-shelf/backend/internal/domain/error"
	"github.com/media-shelf/backend/internal/integration/cache"
	"github.com/media-shelf/backend/internal/integration/entrypoint/dto"
	"github.com/media-shelf/backend/internal/testutil"
)

type apiClient struct {
	t      *testing.T
	engine *gin.Engine
	token  string
}

func newAPI(t *testing.T, writeLimit int) (*apiClient, *Injector, *miniredis.Miniredis) {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{Environment: "test"},
		JWT: config.JWTConfig{
			Secret:            "injector-test-secret",
			AccessTokenExpiry: time.Hour,
		},
		RateLimit: config.RateLimitConfig{
			WriteMaxAttempts: writeLimit,
			WriteWindow:      time.Minute,
		},
	}

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	gdb := testutil.NewTestDB(t)
	injector := NewInjector(cfg, gdb, cache.NewCategoryTreeCache(client, time.Minute), Checks{
		Database: func() bool { return true },
		Cache:    func() bool { return client.Ping(context.Background()).Err() == nil },
	})

	return &apiClient{t: t, engine: injector.Router.Setup("test")}, injector, server
}

func (c *apiClient) as(injector *Injector, ownerID uuid.UUID) *apiClient {
	token, err := injector.TokenService.GenerateAccessToken(context.Background(), ownerID, "reader@example.com")
	require.NoError(c.t, err)
	return &apiClient{t: c.t, engine: c.engine, token: token}
}

func (c *apiClient) do(method, path string, body any, out any) int {
	c.t.Helper()

	var payload bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&payload).Encode(body))
	}
	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	rec := httptest.NewRecorder()
	c.engine.ServeHTTP(rec, req)

	if out != nil && rec.Body.Len() > 0 {
		require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
	}
	return rec.Code
}

func (c *apiClient) create(name string, parentID *string) dto.CategoryResponse {
	c.t.Helper()

	body := map[string]any{"name": name}
	if parentID != nil {
		body["parent_id"] = *parentID
	}
	var created dto.CategoryResponse
	require.Equal(c.t, http.StatusCreated, c.do(http.MethodPost, "/api/v1/categories", body, &created))
	return created
}

func TestHealth(t *testing.T) {
	api, _, _ := newAPI(t, 0)

	var health map[string]string
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/health", nil, &health))
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, "connected", health["database"])
	assert.Equal(t, "connected", health["cache"])
}

func TestCategoriesRequireAuthentication(t *testing.T) {
	api, _, _ := newAPI(t, 0)

	var body dto.ErrorResponse
	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, "/api/v1/categories/tree", nil, &body))
	assert.Equal(t, string(domainerror.ErrCodeMissingToken), body.Code)
}

func TestCategoryLifecycleOverHTTP(t *testing.T) {
	anon, injector, server := newAPI(t, 0)
	api := anon.as(injector, uuid.New())

	fiction := api.create("Fiction", nil)
	nonFiction := api.create("Non-fiction", nil)
	fantasy := api.create("Fantasy", &fiction.ID)
	high := api.create("High Fantasy", &fantasy.ID)

	assert.Equal(t, "1", fiction.Path)
	assert.Equal(t, "2", nonFiction.Path)
	assert.Equal(t, "1.1", fantasy.Path)
	assert.Equal(t, "1.1.1", high.Path)
	assert.Equal(t, 2, high.Level)
	require.NotNil(t, high.ParentID)
	assert.Equal(t, fantasy.ID, *high.ParentID)

	var tree dto.CategoryTreeResponse
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/v1/categories/tree", nil, &tree))
	require.Len(t, tree.Categories, 2)
	assert.Equal(t, "Fiction", tree.Categories[0].Name)
	require.Len(t, tree.Categories[0].Children, 1)
	assert.Equal(t, "High Fantasy", tree.Categories[0].Children[0].Children[0].Name)
	assert.NotNil(t, tree.Categories[1].Children, "leaves carry an empty children list")
	assert.Empty(t, tree.Categories[1].Children)
	assert.Len(t, server.Keys(), 1, "tree is cached after a read")

	// Move Fantasy under Non-fiction; its subtree follows.
	var moved dto.CategoryResponse
	status := api.do(http.MethodPatch, "/api/v1/categories/"+fantasy.ID, map[string]any{
		"name":      "Fantasy",
		"parent_id": nonFiction.ID,
	}, &moved)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "2.1", moved.Path)
	assert.Empty(t, server.Keys(), "mutation invalidates the cached tree")

	var chain dto.CategoryPathResponse
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/v1/categories/"+high.ID+"/path", nil, &chain))
	require.Len(t, chain.Path, 3)
	assert.Equal(t, []string{"2", "2.1", "2.1.1"}, []string{chain.Path[0].Path, chain.Path[1].Path, chain.Path[2].Path})

	// Rename only; omitting parent_id keeps the placement.
	var renamed dto.CategoryResponse
	require.Equal(t, http.StatusOK, api.do(http.MethodPatch, "/api/v1/categories/"+fantasy.ID, map[string]any{
		"name": "  Fantasy & Myth ",
	}, &renamed))
	assert.Equal(t, "Fantasy & Myth", renamed.Name)
	assert.Equal(t, "2.1", renamed.Path)

	// Explicit null moves to the roots.
	require.Equal(t, http.StatusOK, api.do(http.MethodPatch, "/api/v1/categories/"+fantasy.ID, map[string]any{
		"name":      "Fantasy & Myth",
		"parent_id": nil,
	}, &renamed))
	assert.Equal(t, "3", renamed.Path)
	assert.Nil(t, renamed.ParentID)

	var roots dto.CategoryListResponse
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/v1/categories/children", nil, &roots))
	assert.Len(t, roots.Categories, 3)

	var children dto.CategoryListResponse
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/v1/categories/children?parent_id="+fantasy.ID, nil, &children))
	require.Len(t, children.Categories, 1)
	assert.Equal(t, "3.1", children.Categories[0].Path)

	var batch dto.CategoryPathsResponse
	require.Equal(t, http.StatusOK, api.do(http.MethodPost, "/api/v1/categories/paths", map[string]any{
		"ids": []string{fiction.ID, high.ID, uuid.NewString()},
	}, &batch))
	assert.Len(t, batch.Categories, 2)
	assert.Equal(t, "3.1", batch.Categories[high.ID].Path)

	var conflict dto.ErrorResponse
	require.Equal(t, http.StatusConflict, api.do(http.MethodDelete, "/api/v1/categories/"+fantasy.ID, nil, &conflict))
	assert.NotEmpty(t, conflict.Code)

	assert.Equal(t, http.StatusNoContent, api.do(http.MethodDelete, "/api/v1/categories/"+high.ID, nil, nil))
	assert.Equal(t, http.StatusNoContent, api.do(http.MethodDelete, "/api/v1/categories/"+fantasy.ID, nil, nil))

	var list dto.CategoryListResponse
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/v1/categories", nil, &list))
	assert.Equal(t, []string{"1", "2"}, []string{list.Categories[0].Path, list.Categories[1].Path})
}

func TestCategoryErrorsOverHTTP(t *testing.T) {
	anon, injector, _ := newAPI(t, 0)
	owner := anon.as(injector, uuid.New())
	stranger := anon.as(injector, uuid.New())

	fiction := owner.create("Fiction", nil)
	fantasy := owner.create("Fantasy", &fiction.ID)

	tests := []struct {
		name   string
		client *apiClient
		method string
		path   string
		body   any
		status int
	}{
		{"blank name", owner, http.MethodPost, "/api/v1/categories", map[string]any{"name": "   "}, http.StatusBadRequest},
		{"missing name", owner, http.MethodPost, "/api/v1/categories", map[string]any{}, http.StatusBadRequest},
		{"unknown parent", owner, http.MethodPost, "/api/v1/categories", map[string]any{"name": "X", "parent_id": uuid.NewString()}, http.StatusNotFound},
		{"foreign parent", stranger, http.MethodPost, "/api/v1/categories", map[string]any{"name": "X", "parent_id": fiction.ID}, http.StatusForbidden},
		{"malformed id", owner, http.MethodDelete, "/api/v1/categories/not-a-uuid", nil, http.StatusBadRequest},
		{"unknown category", owner, http.MethodDelete, "/api/v1/categories/" + uuid.NewString(), nil, http.StatusNotFound},
		{"foreign path", stranger, http.MethodGet, "/api/v1/categories/" + fantasy.ID + "/path", nil, http.StatusForbidden},
		{"own parent", owner, http.MethodPatch, "/api/v1/categories/" + fiction.ID, map[string]any{"name": "Fiction", "parent_id": fiction.ID}, http.StatusConflict},
		{"into descendant", owner, http.MethodPatch, "/api/v1/categories/" + fiction.ID, map[string]any{"name": "Fiction", "parent_id": fantasy.ID}, http.StatusConflict},
		{"paths without ids", owner, http.MethodPost, "/api/v1/categories/paths", map[string]any{}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body dto.ErrorResponse
			assert.Equal(t, tt.status, tt.client.do(tt.method, tt.path, tt.body, &body))
			assert.NotEmpty(t, body.Error)
		})
	}

	var chain dto.CategoryPathResponse
	require.Equal(t, http.StatusOK, owner.do(http.MethodGet, "/api/v1/categories/"+uuid.NewString()+"/path", nil, &chain))
	assert.Empty(t, chain.Path)
}

func TestWriteRateLimit(t *testing.T) {
	anon, injector, _ := newAPI(t, 2)
	api := anon.as(injector, uuid.New())

	api.create("One", nil)
	api.create("Two", nil)

	var body dto.ErrorResponse
	assert.Equal(t, http.StatusTooManyRequests, api.do(http.MethodPost, "/api/v1/categories", map[string]any{"name": "Three"}, &body))

	var tree dto.CategoryTreeResponse
	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/v1/categories/tree", nil, &tree), "reads are not limited")

	injector.WriteRateLimiter.Reset()
	api.create("Three", nil)
}

func TestMediaBlocksDeleteOverHTTP(t *testing.T) {
	anon, injector, _ := newAPI(t, 0)
	ownerID := uuid.New()
	api := anon.as(injector, ownerID)

	shelf := api.create("Shelf", nil)
	testutil.AssignMedia(t, injector.DB, entity.MediaKindMovie, ownerID, uuid.MustParse(shelf.ID), "Alien")

	var body dto.ErrorResponse
	assert.Equal(t, http.StatusConflict, api.do(http.MethodDelete, "/api/v1/categories/"+shelf.ID, nil, &body))
}
