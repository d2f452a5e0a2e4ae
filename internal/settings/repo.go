package settings

import (
	"context"

	"github.com/campusshelf/library-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists system_configs rows.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a settings repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Find loads a setting by key.
func (r *Repository) Find(ctx context.Context, key string) (*models.SystemConfig, error) {
	var row models.SystemConfig
	if err := r.db.WithContext(ctx).Where("key = ?", key).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// Upsert writes the row, replacing value, description and updated_by on conflict.
func (r *Repository) Upsert(ctx context.Context, row *models.SystemConfig) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "description", "updated_by", "updated_at"}),
		}).
		Create(row).
		Error
}
