package dto

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/media-shelf/backend/internal/domain/entity"
)

func TestUpdateCategoryRequest_ParentID(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name    string
		body    string
		set     bool
		value   *uuid.UUID
		wantErr bool
	}{
		{name: "absent renames only", body: `{"name":"Fantasy"}`, set: false},
		{name: "null moves to root", body: `{"name":"Fantasy","parent_id":null}`, set: true},
		{name: "id moves under parent", body: `{"name":"Fantasy","parent_id":"` + id.String() + `"}`, set: true, value: &id},
		{name: "malformed id", body: `{"name":"Fantasy","parent_id":"nope"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req UpdateCategoryRequest
			err := json.Unmarshal([]byte(tt.body), &req)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.set, req.ParentID.Set)
			assert.Equal(t, tt.value, req.ParentID.Value)
		})
	}
}

func TestToCategoryTreeResponse_LeavesHaveEmptyChildren(t *testing.T) {
	rootID := uuid.New()
	roots := []*entity.CategoryNode{
		{
			Category: entity.Category{ID: rootID, Name: "Fiction", Path: "1", SortOrder: 1},
			Children: []*entity.CategoryNode{
				{Category: entity.Category{ID: uuid.New(), Name: "Fantasy", Path: "1.1", Level: 1, SortOrder: 1, ParentID: &rootID}, Children: []*entity.CategoryNode{}},
			},
		},
	}

	raw, err := json.Marshal(ToCategoryTreeResponse(roots))
	require.NoError(t, err)

	var decoded struct {
		Categories []struct {
			Name     string  `json:"name"`
			ParentID *string `json:"parent_id"`
			Children []struct {
				Name     string            `json:"name"`
				ParentID *string           `json:"parent_id"`
				Children []json.RawMessage `json:"children"`
			} `json:"children"`
		} `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	require.Len(t, decoded.Categories, 1)
	assert.Nil(t, decoded.Categories[0].ParentID)
	require.Len(t, decoded.Categories[0].Children, 1)
	assert.Equal(t, rootID.String(), *decoded.Categories[0].Children[0].ParentID)
	assert.NotNil(t, decoded.Categories[0].Children[0].Children)
	assert.Contains(t, string(raw), `"children":[]`)
}
