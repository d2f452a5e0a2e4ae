package models

import (
	"time"

	"github.com/campusshelf/library-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BorrowRecord tracks one user's request, loan and return of one book copy.
type BorrowRecord struct {
	ID               uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	UserID           uuid.UUID          `gorm:"column:user_id;type:uuid;not null;index:borrow_records_user_book_idx"`
	BookID           uuid.UUID          `gorm:"column:book_id;type:uuid;not null;index:borrow_records_user_book_idx"`
	Status           enums.BorrowStatus `gorm:"column:status;type:text;not null;default:PENDING;index:borrow_records_status_due_idx"`
	BorrowDate       time.Time          `gorm:"column:borrow_date;not null"`
	DueDate          *time.Time         `gorm:"column:due_date;index:borrow_records_status_due_idx"`
	ReturnDate       *time.Time         `gorm:"column:return_date"`
	FineAmount       decimal.Decimal    `gorm:"column:fine_amount;type:numeric(10,2);not null;default:0"`
	RenewalCount     int                `gorm:"column:renewal_count;not null;default:0"`
	BorrowedBy       *uuid.UUID         `gorm:"column:borrowed_by;type:uuid"`
	ReturnedBy       *uuid.UUID         `gorm:"column:returned_by;type:uuid"`
	UpdatedBy        *uuid.UUID         `gorm:"column:updated_by;type:uuid"`
	LastReminderSent *time.Time         `gorm:"column:last_reminder_sent"`
	CreatedAt        time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time          `gorm:"column:updated_at;autoUpdateTime"`

	User *User `gorm:"foreignKey:UserID"`
	Book *Book `gorm:"foreignKey:BookID"`
}

func (r *BorrowRecord) BeforeCreate(*gorm.DB) error {
	assignID(&r.ID)
	return nil
}
