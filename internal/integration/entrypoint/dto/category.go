package dto

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/media-shelf/backend/internal/domain/entity"
)

// OptionalUUID distinguishes an absent JSON key from an explicit null.
// Set is true whenever the key was present; Value is nil for null.
type OptionalUUID struct {
	Set   bool
	Value *uuid.UUID
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *OptionalUUID) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(data, []byte("null")) {
		o.Value = nil
		return nil
	}

	var id uuid.UUID
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	o.Value = &id
	return nil
}

// CreateCategoryRequest represents the request body for category creation.
type CreateCategoryRequest struct {
	Name     string     `json:"name" binding:"required,max=100"`
	ParentID *uuid.UUID `json:"parent_id,omitempty"`
}

// UpdateCategoryRequest represents the request body for renaming or moving a
// category. Omitting parent_id renames only; null moves the category to the roots.
type UpdateCategoryRequest struct {
	Name     string       `json:"name" binding:"required,max=100"`
	ParentID OptionalUUID `json:"parent_id"`
}

// CategoryPathsRequest represents a batch lookup by category ID.
type CategoryPathsRequest struct {
	IDs []uuid.UUID `json:"ids" binding:"required,max=500"`
}

// CategoryResponse represents a single category in API responses.
type CategoryResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Level     int       `json:"level"`
	SortOrder int       `json:"sort_order"`
	ParentID  *string   `json:"parent_id"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CategoryNodeResponse is a category with its nested children.
type CategoryNodeResponse struct {
	CategoryResponse
	Children []CategoryNodeResponse `json:"children"`
}

// CategoryListResponse represents the response for listing categories.
type CategoryListResponse struct {
	Categories []CategoryResponse `json:"categories"`
}

// CategoryTreeResponse represents the owner's forest.
type CategoryTreeResponse struct {
	Categories []CategoryNodeResponse `json:"categories"`
}

// CategoryPathResponse lists the categories from the root down to a category.
type CategoryPathResponse struct {
	Path []CategoryResponse `json:"path"`
}

// CategoryPathsResponse maps category IDs to categories.
type CategoryPathsResponse struct {
	Categories map[string]CategoryResponse `json:"categories"`
}

// ToCategoryResponse converts a domain Category entity to a CategoryResponse DTO.
func ToCategoryResponse(cat *entity.Category) CategoryResponse {
	var parentID *string
	if cat.ParentID != nil {
		id := cat.ParentID.String()
		parentID = &id
	}

	return CategoryResponse{
		ID:        cat.ID.String(),
		Name:      cat.Name,
		Path:      cat.Path,
		Level:     cat.Level,
		SortOrder: cat.SortOrder,
		ParentID:  parentID,
		OwnerID:   cat.OwnerID.String(),
		CreatedAt: cat.CreatedAt,
		UpdatedAt: cat.UpdatedAt,
	}
}

// ToCategoryListResponse converts a list of categories to a CategoryListResponse.
func ToCategoryListResponse(categories []*entity.Category) CategoryListResponse {
	return CategoryListResponse{
		Categories: toCategoryResponses(categories),
	}
}

// ToCategoryTreeResponse converts a forest to a CategoryTreeResponse.
func ToCategoryTreeResponse(roots []*entity.CategoryNode) CategoryTreeResponse {
	return CategoryTreeResponse{
		Categories: toNodeResponses(roots),
	}
}

// ToCategoryPathResponse converts an ancestry chain to a CategoryPathResponse.
func ToCategoryPathResponse(chain []*entity.Category) CategoryPathResponse {
	return CategoryPathResponse{
		Path: toCategoryResponses(chain),
	}
}

// ToCategoryPathsResponse converts a batch lookup result to a CategoryPathsResponse.
func ToCategoryPathsResponse(byID map[uuid.UUID]*entity.Category) CategoryPathsResponse {
	categories := make(map[string]CategoryResponse, len(byID))
	for id, cat := range byID {
		categories[id.String()] = ToCategoryResponse(cat)
	}
	return CategoryPathsResponse{
		Categories: categories,
	}
}

func toCategoryResponses(categories []*entity.Category) []CategoryResponse {
	out := make([]CategoryResponse, len(categories))
	for i, cat := range categories {
		out[i] = ToCategoryResponse(cat)
	}
	return out
}

func toNodeResponses(nodes []*entity.CategoryNode) []CategoryNodeResponse {
	out := make([]CategoryNodeResponse, len(nodes))
	for i, node := range nodes {
		out[i] = CategoryNodeResponse{
			CategoryResponse: ToCategoryResponse(&node.Category),
			Children:         toNodeResponses(node.Children),
		}
	}
	return out
}
