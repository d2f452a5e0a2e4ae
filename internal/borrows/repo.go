package borrows

import (
	"context"
	"time"

	"github.com/campusshelf/library-backend/pkg/db/models"
	"github.com/campusshelf/library-backend/pkg/enums"
	"github.com/campusshelf/library-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository persists borrow records. Every state transition is a conditional
// update keyed on the expected current status; callers read RowsAffected to
// learn whether the transition won.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a borrow repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func (r *Repository) Create(ctx context.Context, rec *models.BorrowRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.BorrowRecord, error) {
	var rec models.BorrowRecord
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

// FindDetailed loads a record with its book and user.
func (r *Repository) FindDetailed(ctx context.Context, id uuid.UUID) (*models.BorrowRecord, error) {
	var rec models.BorrowRecord
	err := r.db.WithContext(ctx).
		Preload("Book").
		Preload("User").
		Where("id = ?", id).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// HasOpen reports whether the user holds a PENDING or BORROWED record for the book.
func (r *Repository) HasOpen(ctx context.Context, userID, bookID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.BorrowRecord{}).
		Where("user_id = ? AND book_id = ? AND status IN ?", userID, bookID,
			[]enums.BorrowStatus{enums.BorrowStatusPending, enums.BorrowStatusBorrowed}).
		Count(&count).Error
	return count > 0, err
}

// HasReturned reports whether the user has returned the book at least once.
func (r *Repository) HasReturned(ctx context.Context, userID, bookID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.BorrowRecord{}).
		Where("user_id = ? AND book_id = ? AND status = ?", userID, bookID, enums.BorrowStatusReturned).
		Count(&count).Error
	return count > 0, err
}

// MarkBorrowed moves a PENDING record to BORROWED.
func (r *Repository) MarkBorrowed(ctx context.Context, id, adminID uuid.UUID, at, due time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.BorrowRecord{}).
		Where("id = ? AND status = ?", id, enums.BorrowStatusPending).
		Updates(map[string]any{
			"status":      enums.BorrowStatusBorrowed,
			"borrow_date": at,
			"due_date":    due,
			"borrowed_by": adminID,
			"updated_by":  adminID,
		})
	return res.RowsAffected == 1, res.Error
}

// DeletePending removes a record that is still PENDING.
func (r *Repository) DeletePending(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, enums.BorrowStatusPending).
		Delete(&models.BorrowRecord{})
	return res.RowsAffected == 1, res.Error
}

// MarkReturned moves a BORROWED record to RETURNED with its final fine.
func (r *Repository) MarkReturned(ctx context.Context, id, actorID uuid.UUID, at time.Time, fine decimal.Decimal) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.BorrowRecord{}).
		Where("id = ? AND status = ?", id, enums.BorrowStatusBorrowed).
		Updates(map[string]any{
			"status":      enums.BorrowStatusReturned,
			"return_date": at,
			"fine_amount": fine,
			"returned_by": actorID,
			"updated_by":  actorID,
		})
	return res.RowsAffected == 1, res.Error
}

// ExtendDue pushes the due date of a BORROWED record. expectedRenewals guards
// against two renewals racing on the same record.
func (r *Repository) ExtendDue(ctx context.Context, id, actorID uuid.UUID, due time.Time, expectedRenewals int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.BorrowRecord{}).
		Where("id = ? AND status = ? AND renewal_count = ?", id, enums.BorrowStatusBorrowed, expectedRenewals).
		Updates(map[string]any{
			"due_date":      due,
			"renewal_count": gorm.Expr("renewal_count + 1"),
			"updated_by":    actorID,
		})
	return res.RowsAffected == 1, res.Error
}

// ListOverdue returns BORROWED records whose due date is before asOf.
func (r *Repository) ListOverdue(ctx context.Context, asOf time.Time) ([]models.BorrowRecord, error) {
	var rows []models.BorrowRecord
	err := r.db.WithContext(ctx).
		Where("status = ? AND due_date IS NOT NULL AND due_date < ?", enums.BorrowStatusBorrowed, asOf).
		Order("due_date ASC").
		Find(&rows).Error
	return rows, err
}

// ListDueBy returns BORROWED records due on or before cutoff, with user and book loaded.
func (r *Repository) ListDueBy(ctx context.Context, cutoff time.Time) ([]models.BorrowRecord, error) {
	var rows []models.BorrowRecord
	err := r.db.WithContext(ctx).
		Preload("Book").
		Preload("User").
		Where("status = ? AND due_date IS NOT NULL AND due_date <= ?", enums.BorrowStatusBorrowed, cutoff).
		Order("due_date ASC").
		Find(&rows).Error
	return rows, err
}

// UpdateFine overwrites the stored fine of a record that is still BORROWED.
func (r *Repository) UpdateFine(ctx context.Context, id uuid.UUID, fine decimal.Decimal) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.BorrowRecord{}).
		Where("id = ? AND status = ?", id, enums.BorrowStatusBorrowed).
		Update("fine_amount", fine)
	return res.RowsAffected == 1, res.Error
}

// MarkReminderSent stamps last_reminder_sent.
func (r *Repository) MarkReminderSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.BorrowRecord{}).
		Where("id = ?", id).
		UpdateColumn("last_reminder_sent", at).Error
}

// List returns one buffered page of records, newest first.
func (r *Repository) List(ctx context.Context, input ListInput, cursor *pagination.Cursor) ([]models.BorrowRecord, error) {
	query := r.db.WithContext(ctx).
		Model(&models.BorrowRecord{}).
		Preload("Book").
		Preload("User")
	if input.UserID != nil {
		query = query.Where("user_id = ?", *input.UserID)
	}
	if input.BookID != nil {
		query = query.Where("book_id = ?", *input.BookID)
	}
	if input.Status != nil {
		query = query.Where("status = ?", *input.Status)
	}
	var rows []models.BorrowRecord
	err := query.
		Scopes(pagination.Keyset(cursor, input.Limit)).
		Find(&rows).Error
	return rows, err
}
