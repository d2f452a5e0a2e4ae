package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Book is a catalog title together with its copy counts.
// 0 <= AvailableCopies <= TotalCopies always holds.
type Book struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Title           string          `gorm:"column:title;not null"`
	Author          string          `gorm:"column:author;not null"`
	Genre           string          `gorm:"column:genre;not null;index:books_genre_idx"`
	ISBN            *string         `gorm:"column:isbn;uniqueIndex"`
	Publisher       *string         `gorm:"column:publisher"`
	PublishedYear   *int            `gorm:"column:published_year"`
	Description     *string         `gorm:"column:description"`
	CoverURL        *string         `gorm:"column:cover_url"`
	Rating          decimal.Decimal `gorm:"column:rating;type:numeric(3,2);not null;default:0"`
	TotalCopies     int             `gorm:"column:total_copies;not null"`
	AvailableCopies int             `gorm:"column:available_copies;not null"`
	IsActive        bool            `gorm:"column:is_active;not null"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (b *Book) BeforeCreate(*gorm.DB) error {
	assignID(&b.ID)
	return nil
}
