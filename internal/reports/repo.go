package reports

import (
	"context"
	"time"

	"github.com/campusshelf/library-backend/pkg/db/models"
	"github.com/campusshelf/library-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var lentStatuses = []enums.BorrowStatus{enums.BorrowStatusBorrowed, enums.BorrowStatusReturned}

// Repository runs read-only aggregate queries.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type inventoryTotals struct {
	Books     int64
	Copies    int64
	Available int64
}

func (r *Repository) Inventory(ctx context.Context) (inventoryTotals, error) {
	var out inventoryTotals
	err := r.db.WithContext(ctx).
		Model(&models.Book{}).
		Select("COUNT(*) AS books, COALESCE(SUM(total_copies), 0) AS copies, COALESCE(SUM(available_copies), 0) AS available").
		Where("is_active = ?", true).
		Scan(&out).Error
	return out, err
}

func (r *Repository) CountUsers(ctx context.Context, status enums.UserStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

func (r *Repository) CountRecords(ctx context.Context, status enums.BorrowStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.BorrowRecord{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

func (r *Repository) CountOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.BorrowRecord{}).
		Where("status = ? AND due_date < ?", enums.BorrowStatusBorrowed, asOf).
		Count(&count).Error
	return count, err
}

// SumFines totals fine_amount over records in the given status.
func (r *Repository) SumFines(ctx context.Context, status enums.BorrowStatus) (decimal.Decimal, error) {
	var out struct {
		Total decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Model(&models.BorrowRecord{}).
		Select("COALESCE(SUM(fine_amount), 0) AS total").
		Where("status = ?", status).
		Scan(&out).Error
	return out.Total, err
}

func (r *Repository) PopularBooks(ctx context.Context, limit int) ([]PopularBookDTO, error) {
	var rows []PopularBookDTO
	err := r.db.WithContext(ctx).
		Table("borrow_records").
		Select("books.id AS book_id, books.title, books.author, books.genre, COUNT(borrow_records.id) AS borrow_count").
		Joins("JOIN books ON books.id = borrow_records.book_id").
		Where("borrow_records.status IN ?", lentStatuses).
		Group("books.id, books.title, books.author, books.genre").
		Order("borrow_count DESC").
		Order("books.title ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *Repository) GenreBreakdown(ctx context.Context) ([]GenreStatDTO, error) {
	var rows []GenreStatDTO
	err := r.db.WithContext(ctx).
		Table("books").
		Select("books.genre, COUNT(DISTINCT books.id) AS book_count, COUNT(borrow_records.id) AS borrow_count").
		Joins("LEFT JOIN borrow_records ON borrow_records.book_id = books.id AND borrow_records.status IN ?", lentStatuses).
		Group("books.genre").
		Order("borrow_count DESC").
		Order("books.genre ASC").
		Scan(&rows).Error
	return rows, err
}

// TopGenresFor returns the genres the user borrows most, most frequent first.
func (r *Repository) TopGenresFor(ctx context.Context, userID uuid.UUID, limit int) ([]string, error) {
	var genres []string
	err := r.db.WithContext(ctx).
		Table("borrow_records").
		Select("books.genre").
		Joins("JOIN books ON books.id = borrow_records.book_id").
		Where("borrow_records.user_id = ? AND borrow_records.status IN ?", userID, lentStatuses).
		Group("books.genre").
		Order("COUNT(borrow_records.id) DESC").
		Order("books.genre ASC").
		Limit(limit).
		Pluck("books.genre", &genres).Error
	return genres, err
}

// Recommend lists active, available books the user has never requested,
// restricted to genres when given, best rated first.
func (r *Repository) Recommend(ctx context.Context, userID uuid.UUID, genres []string, limit int) ([]models.Book, error) {
	history := r.db.
		Model(&models.BorrowRecord{}).
		Select("book_id").
		Where("user_id = ?", userID)

	query := r.db.WithContext(ctx).
		Where("is_active = ? AND available_copies > 0", true).
		Where("id NOT IN (?)", history)
	if len(genres) > 0 {
		query = query.Where("genre IN ?", genres)
	}
	var rows []models.Book
	err := query.
		Order("rating DESC").
		Order("title ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// ExportRecords loads borrow records with their user and book, oldest first.
func (r *Repository) ExportRecords(ctx context.Context, filter ExportFilter) ([]models.BorrowRecord, error) {
	query := r.db.WithContext(ctx).
		Preload("User").
		Preload("Book")
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.From != nil {
		query = query.Where("borrow_date >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		query = query.Where("borrow_date < ?", filter.To.UTC())
	}
	var rows []models.BorrowRecord
	err := query.
		Order("borrow_date ASC").
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}
