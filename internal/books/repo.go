package books

import (
	"context"
	"strings"

	"github.com/campusshelf/library-backend/pkg/db/models"
	"github.com/campusshelf/library-backend/pkg/enums"
	"github.com/campusshelf/library-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository encapsulates book persistence, including the guarded copy counters
// the borrow lifecycle relies on.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a book repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func (r *Repository) Create(ctx context.Context, book *models.Book) error {
	return r.db.WithContext(ctx).Create(book).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	var book models.Book
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&book).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

// FindForUpdate loads the book and holds its row lock until the surrounding
// transaction ends. SQLite ignores the locking clause.
func (r *Repository) FindForUpdate(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	var book models.Book
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Where("id = ?", id).
		First(&book).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// UpdateFields writes only the given columns.
func (r *Repository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Book{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// availableAfterResize is the SQL for total minus the copies on loan at write
// time, so a loan committed after the caller's read is still counted.
func availableAfterResize(bookID uuid.UUID, total int) clause.Expr {
	return gorm.Expr(
		"? - (SELECT COUNT(*) FROM borrow_records WHERE book_id = ? AND status = ?)",
		total, bookID, enums.BorrowStatusBorrowed,
	)
}

// List returns one page (plus one buffered row) ordered newest first.
func (r *Repository) List(ctx context.Context, input ListBooksInput, cursor *pagination.Cursor) ([]models.Book, error) {
	query := r.db.WithContext(ctx).Model(&models.Book{})
	if !input.IncludeInactive {
		query = query.Where("is_active = ?", true)
	}
	if q := strings.ToLower(strings.TrimSpace(input.Query)); q != "" {
		like := "%" + q + "%"
		query = query.Where("(LOWER(title) LIKE ? OR LOWER(author) LIKE ? OR LOWER(COALESCE(isbn, '')) LIKE ?)", like, like, like)
	}
	if genre := strings.TrimSpace(input.Genre); genre != "" {
		query = query.Where("LOWER(genre) = ?", strings.ToLower(genre))
	}
	if input.AvailableOnly {
		query = query.Where("available_copies > 0")
	}
	var rows []models.Book
	err := query.
		Scopes(pagination.Keyset(cursor, input.Limit)).
		Find(&rows).Error
	return rows, err
}

// CountBorrowed returns how many copies of the book are currently out on loan.
func (r *Repository) CountBorrowed(ctx context.Context, bookID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.BorrowRecord{}).
		Where("book_id = ? AND status = ?", bookID, enums.BorrowStatusBorrowed).
		Count(&count).Error
	return count, err
}

// ReserveCopy takes one available copy. It reports false when none is left,
// leaving the row untouched.
func (r *Repository) ReserveCopy(ctx context.Context, bookID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Book{}).
		Where("id = ? AND available_copies > 0", bookID).
		Update("available_copies", gorm.Expr("available_copies - 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ReleaseCopy returns one copy to the shelf without exceeding total_copies.
func (r *Repository) ReleaseCopy(ctx context.Context, bookID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Book{}).
		Where("id = ? AND available_copies < total_copies", bookID).
		Update("available_copies", gorm.Expr("available_copies + 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// UpdateRating stores the averaged review rating.
func (r *Repository) UpdateRating(ctx context.Context, bookID uuid.UUID, rating decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&models.Book{}).
		Where("id = ?", bookID).
		Update("rating", rating.Round(2)).Error
}

// Genres lists the distinct genres of active books.
func (r *Repository) Genres(ctx context.Context) ([]string, error) {
	var genres []string
	err := r.db.WithContext(ctx).
		Model(&models.Book{}).
		Where("is_active = ?", true).
		Distinct("genre").
		Order("genre").
		Pluck("genre", &genres).Error
	return genres, err
}
