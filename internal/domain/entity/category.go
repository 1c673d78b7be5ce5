// Package entity defines the core business entities for the domain layer.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Category is a node of an owner's category forest.
//
// Path is a materialized path of 1-based sibling orders ("3", "3.1", "3.1.2").
// Level is the depth (0 for roots) and SortOrder equals the last path segment.
type Category struct {
	ID        uuid.UUID
	Name      string
	Path      string
	Level     int
	SortOrder int
	ParentID  *uuid.UUID
	OwnerID   uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewCategory creates a new Category entity.
// Placement (path, level, sort order) is computed by the caller inside the
// transaction that inserts it.
func NewCategory(name string, ownerID uuid.UUID, parentID *uuid.UUID, path string, level, sortOrder int) *Category {
	now := time.Now().UTC()

	return &Category{
		ID:        uuid.New(),
		Name:      name,
		Path:      path,
		Level:     level,
		SortOrder: sortOrder,
		ParentID:  parentID,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsRoot reports whether the category has no parent.
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}

// BelongsTo reports whether the category is part of the given owner's forest.
func (c *Category) BelongsTo(ownerID uuid.UUID) bool {
	return c.OwnerID == ownerID
}

// CategoryNode is a category with its nested children, as returned by the tree view.
// Children is never nil; leaves carry an empty slice.
type CategoryNode struct {
	Category
	Children []*CategoryNode
}
