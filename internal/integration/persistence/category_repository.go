// Package persistence implements repository interfaces for database operations.
package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/media-shelf/backend/internal/application/adapter"
	"github.com/media-shelf/backend/internal/domain/entity"
	domainerror "github.com/media-shelf/backend/internal/domain/error"
	"github.com/media-shelf/backend/internal/integration/persistence/model"
)

// categoryRepository implements the adapter.CategoryRepository interface.
// Inside Transaction, db is the transaction handle.
type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new category repository instance.
func NewCategoryRepository(db *gorm.DB) adapter.CategoryRepository {
	return &categoryRepository{
		db: db,
	}
}

// Transaction runs fn inside a database transaction.
func (r *categoryRepository) Transaction(ctx context.Context, fn func(repo adapter.CategoryRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&categoryRepository{db: tx})
	})
}

// LockOwnerTree upserts the owner's lock row and selects it FOR UPDATE.
// SQLite ignores the locking clause; its single writer already serializes.
func (r *categoryRepository) LockOwnerTree(ctx context.Context, ownerID uuid.UUID) error {
	lock := model.CategoryTreeLockModel{OwnerID: ownerID, UpdatedAt: time.Now().UTC()}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&lock)
	if result.Error != nil {
		return result.Error
	}

	result = r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("owner_id = ?", ownerID).
		First(&lock)
	if result.Error != nil {
		return result.Error
	}
	return nil
}

// FindByID retrieves a category by its ID.
func (r *categoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	var categoryModel model.CategoryModel
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&categoryModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domainerror.ErrCategoryNotFound
		}
		return nil, result.Error
	}
	return categoryModel.ToEntity(), nil
}

// FindByIDs retrieves the owner's categories among the given IDs.
func (r *categoryRepository) FindByIDs(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]*entity.Category, error) {
	if len(ids) == 0 {
		return []*entity.Category{}, nil
	}

	var categoryModels []model.CategoryModel
	result := r.db.WithContext(ctx).
		Where("owner_id = ? AND id IN ?", ownerID, ids).
		Find(&categoryModels)
	if result.Error != nil {
		return nil, result.Error
	}
	return toEntities(categoryModels), nil
}

// FindByPaths retrieves the owner's categories matching any of the paths, shallowest first.
func (r *categoryRepository) FindByPaths(ctx context.Context, ownerID uuid.UUID, paths []string) ([]*entity.Category, error) {
	if len(paths) == 0 {
		return []*entity.Category{}, nil
	}

	var categoryModels []model.CategoryModel
	result := r.db.WithContext(ctx).
		Where("owner_id = ? AND path IN ?", ownerID, paths).
		Order("level ASC").
		Find(&categoryModels)
	if result.Error != nil {
		return nil, result.Error
	}
	return toEntities(categoryModels), nil
}

// FindByOwner retrieves all categories for a given owner, ordered by level.
func (r *categoryRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]*entity.Category, error) {
	var categoryModels []model.CategoryModel
	result := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("level ASC").
		Find(&categoryModels)
	if result.Error != nil {
		return nil, result.Error
	}
	return toEntities(categoryModels), nil
}

// FindChildren retrieves the direct children of a category, or the roots.
func (r *categoryRepository) FindChildren(ctx context.Context, ownerID uuid.UUID, parentID *uuid.UUID) ([]*entity.Category, error) {
	var categoryModels []model.CategoryModel
	result := siblingScope(r.db.WithContext(ctx), ownerID, parentID).
		Order("sort_order ASC").
		Find(&categoryModels)
	if result.Error != nil {
		return nil, result.Error
	}
	return toEntities(categoryModels), nil
}

// MaxSiblingSortOrder returns the highest sort order among the siblings under parentID.
func (r *categoryRepository) MaxSiblingSortOrder(ctx context.Context, ownerID uuid.UUID, parentID *uuid.UUID) (int, error) {
	var maxOrder sql.NullInt64
	row := siblingScope(r.db.WithContext(ctx).Model(&model.CategoryModel{}), ownerID, parentID).
		Select("MAX(sort_order)").
		Row()
	if err := row.Scan(&maxOrder); err != nil {
		return 0, err
	}
	if !maxOrder.Valid {
		return 0, nil
	}
	return int(maxOrder.Int64), nil
}

// CountChildren counts the direct children of a category.
func (r *categoryRepository) CountChildren(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).
		Model(&model.CategoryModel{}).
		Where("parent_id = ?", id).
		Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}
	return count, nil
}

// CountAssignedMedia counts the owner's media items filed under a category.
func (r *categoryRepository) CountAssignedMedia(ctx context.Context, categoryID, ownerID uuid.UUID) (int64, error) {
	var total int64
	for _, kind := range entity.MediaKinds {
		var count int64
		result := r.db.WithContext(ctx).
			Table(model.MediaTables[kind]).
			Where("category_id = ? AND user_id = ?", categoryID, ownerID).
			Count(&count)
		if result.Error != nil {
			return 0, fmt.Errorf("failed to count %s items: %w", kind, result.Error)
		}
		total += count
	}
	return total, nil
}

// Create creates a new category in the database.
func (r *categoryRepository) Create(ctx context.Context, category *entity.Category) error {
	categoryModel := model.CategoryFromEntity(category)
	result := r.db.WithContext(ctx).Create(categoryModel)
	if result.Error != nil {
		return result.Error
	}
	return nil
}

// Rename updates the name column of one category and never inserts.
func (r *categoryRepository) Rename(ctx context.Context, id, ownerID uuid.UUID, name string, updatedAt time.Time) error {
	return r.updateColumns(ctx, id, ownerID, map[string]interface{}{
		"name":       name,
		"updated_at": updatedAt,
	})
}

// Move updates the placement columns of one category and never inserts.
func (r *categoryRepository) Move(ctx context.Context, category *entity.Category) error {
	return r.updateColumns(ctx, category.ID, category.OwnerID, map[string]interface{}{
		"name":       category.Name,
		"parent_id":  category.ParentID,
		"path":       category.Path,
		"level":      category.Level,
		"sort_order": category.SortOrder,
		"updated_at": category.UpdatedAt,
	})
}

func (r *categoryRepository) updateColumns(ctx context.Context, id, ownerID uuid.UUID, columns map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&model.CategoryModel{}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Updates(columns)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerror.ErrCategoryNotFound
	}
	return nil
}

// RebaseDescendants replaces the oldPath prefix of every descendant with newPath
// in a single statement. Paths never contain LIKE wildcards.
func (r *categoryRepository) RebaseDescendants(ctx context.Context, ownerID uuid.UUID, oldPath, newPath string, levelDelta int) (int64, error) {
	oldPrefix := oldPath + "."
	result := r.db.WithContext(ctx).
		Model(&model.CategoryModel{}).
		Where("owner_id = ? AND path LIKE ?", ownerID, oldPrefix+"%").
		Updates(map[string]interface{}{
			"path":       gorm.Expr("CAST(? AS TEXT) || SUBSTR(path, ?)", newPath+".", len(oldPrefix)+1),
			"level":      gorm.Expr("level + ?", levelDelta),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// Delete removes a category from the database.
func (r *categoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.CategoryModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	return nil
}

// siblingScope filters the owner's categories sharing parentID; nil selects roots.
func siblingScope(db *gorm.DB, ownerID uuid.UUID, parentID *uuid.UUID) *gorm.DB {
	if parentID == nil {
		return db.Where("owner_id = ? AND parent_id IS NULL", ownerID)
	}
	return db.Where("owner_id = ? AND parent_id = ?", ownerID, *parentID)
}

func toEntities(categoryModels []model.CategoryModel) []*entity.Category {
	categories := make([]*entity.Category, len(categoryModels))
	for i := range categoryModels {
		categories[i] = categoryModels[i].ToEntity()
	}
	return categories
}
