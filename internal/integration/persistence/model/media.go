package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/media-shelf/backend/internal/domain/entity"
)

// MediaColumns are the columns every collection item table shares.
// Only what the category engine needs is mapped here.
type MediaColumns struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	CategoryID *uuid.UUID `gorm:"type:uuid;index"`
	Title      string     `gorm:"type:varchar(255);not null"`
	CreatedAt  time.Time  `gorm:"not null"`
	UpdatedAt  time.Time  `gorm:"not null"`
}

// BookModel represents the books table in the database.
type BookModel struct {
	MediaColumns `gorm:"embedded"`
}

// TableName returns the table name for the BookModel.
func (BookModel) TableName() string {
	return "books"
}

// MovieModel represents the movies table in the database.
type MovieModel struct {
	MediaColumns `gorm:"embedded"`
}

// TableName returns the table name for the MovieModel.
func (MovieModel) TableName() string {
	return "movies"
}

// TvShowModel represents the tv_shows table in the database.
type TvShowModel struct {
	MediaColumns `gorm:"embedded"`
}

// TableName returns the table name for the TvShowModel.
func (TvShowModel) TableName() string {
	return "tv_shows"
}

// MediaTables maps each media kind to the table holding its items.
var MediaTables = map[entity.MediaKind]string{
	entity.MediaKindBook:   BookModel{}.TableName(),
	entity.MediaKindMovie:  MovieModel{}.TableName(),
	entity.MediaKindTvShow: TvShowModel{}.TableName(),
}

// NewMediaModel builds a row for the given kind. It is used by seeding and tests;
// media CRUD itself lives outside this service.
func NewMediaModel(kind entity.MediaKind, ownerID uuid.UUID, categoryID *uuid.UUID, title string) any {
	now := time.Now().UTC()
	cols := MediaColumns{
		ID:         uuid.New(),
		UserID:     ownerID,
		CategoryID: categoryID,
		Title:      title,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	switch kind {
	case entity.MediaKindMovie:
		return &MovieModel{MediaColumns: cols}
	case entity.MediaKindTvShow:
		return &TvShowModel{MediaColumns: cols}
	default:
		return &BookModel{MediaColumns: cols}
	}
}

// AllModels lists every model that AutoMigrate must create.
func AllModels() []any {
	return []any{
		&CategoryModel{},
		&CategoryTreeLockModel{},
		&BookModel{},
		&MovieModel{},
		&TvShowModel{},
	}
}
