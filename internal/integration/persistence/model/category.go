// Package model defines database models for persistence layer.
package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/media-shelf/backend/internal/domain/entity"
)

// CategoryModel represents the categories table in the database.
// Deletion is physical; there is no soft-delete column.
type CategoryModel struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Name      string     `gorm:"type:varchar(100);not null"`
	Path      string     `gorm:"type:text;not null;uniqueIndex:idx_categories_owner_path,priority:2"`
	Level     int        `gorm:"not null;default:0;index"`
	SortOrder int        `gorm:"not null"`
	ParentID  *uuid.UUID `gorm:"type:uuid;index"`
	OwnerID   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_categories_owner_path,priority:1"`
	CreatedAt time.Time  `gorm:"not null"`
	UpdatedAt time.Time  `gorm:"not null"`
}

// TableName returns the table name for the CategoryModel.
func (CategoryModel) TableName() string {
	return "categories"
}

// ToEntity converts a CategoryModel to a domain Category entity.
func (m *CategoryModel) ToEntity() *entity.Category {
	return &entity.Category{
		ID:        m.ID,
		Name:      m.Name,
		Path:      m.Path,
		Level:     m.Level,
		SortOrder: m.SortOrder,
		ParentID:  m.ParentID,
		OwnerID:   m.OwnerID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// CategoryFromEntity creates a CategoryModel from a domain Category entity.
func CategoryFromEntity(category *entity.Category) *CategoryModel {
	return &CategoryModel{
		ID:        category.ID,
		Name:      category.Name,
		Path:      category.Path,
		Level:     category.Level,
		SortOrder: category.SortOrder,
		ParentID:  category.ParentID,
		OwnerID:   category.OwnerID,
		CreatedAt: category.CreatedAt,
		UpdatedAt: category.UpdatedAt,
	}
}

// CategoryTreeLockModel holds one row per owner; selecting it FOR UPDATE
// serializes concurrent mutations of that owner's forest.
type CategoryTreeLockModel struct {
	OwnerID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the CategoryTreeLockModel.
func (CategoryTreeLockModel) TableName() string {
	return "category_tree_locks"
}
