package reviews

import (
	"context"

	"github.com/campusshelf/library-backend/pkg/db/models"
	"github.com/campusshelf/library-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func (r *Repository) Create(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Create(review).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	var review models.Review
	if err := r.db.WithContext(ctx).Preload("User").First(&review, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

// Update writes rating and comment back for an existing review.
func (r *Repository) Update(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("id = ?", review.ID).
		Updates(map[string]any{
			"rating":  review.Rating,
			"comment": review.Comment,
		}).Error
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Review{})
	return res.RowsAffected == 1, res.Error
}

// ListByBook returns one buffered page of a book's reviews, newest first.
func (r *Repository) ListByBook(ctx context.Context, bookID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Review, error) {
	query := r.db.WithContext(ctx).
		Preload("User").
		Where("book_id = ?", bookID)
	var rows []models.Review
	err := query.
		Scopes(pagination.Keyset(cursor, limit)).
		Find(&rows).Error
	return rows, err
}

// AverageRating returns the mean review rating of a book, zero when it has none.
func (r *Repository) AverageRating(ctx context.Context, bookID uuid.UUID) (decimal.Decimal, error) {
	var out struct {
		Average decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS average").
		Where("book_id = ?", bookID).
		Scan(&out).Error
	return out.Average.Round(2), err
}
