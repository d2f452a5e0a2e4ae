package borrows

import (
	"time"

	"github.com/campusshelf/library-backend/pkg/db/models"
	"github.com/campusshelf/library-backend/pkg/enums"
	"github.com/campusshelf/library-backend/pkg/types"
	"github.com/google/uuid"
)

// Eligibility is the outcome of the borrow precondition checks.
type Eligibility struct {
	Eligible bool   `json:"eligible"`
	Reason   string `json:"reason,omitempty"`
}

// Reasons surfaced to the borrower when a request is refused.
const (
	ReasonBookInactive     = "this book is not available for borrowing"
	ReasonNoCopies         = "no copies are currently available"
	ReasonAccountPending   = "your account is awaiting approval"
	ReasonAccountInactive  = "your account is not allowed to borrow"
	ReasonAlreadyRequested = "you already have a pending or active borrow for this book"
)

func eligible() Eligibility {
	return Eligibility{Eligible: true}
}

func ineligible(reason string) Eligibility {
	return Eligibility{Reason: reason}
}

// Actor identifies who is performing a lifecycle transition.
type Actor struct {
	ID    uuid.UUID
	Admin bool
}

type BookSummaryDTO struct {
	ID     uuid.UUID `json:"id"`
	Title  string    `json:"title"`
	Author string    `json:"author"`
	Genre  string    `json:"genre"`
}

type UserSummaryDTO struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// BorrowRecordDTO is the transport shape of a borrow record.
type BorrowRecordDTO struct {
	ID               uuid.UUID          `json:"id"`
	UserID           uuid.UUID          `json:"user_id"`
	BookID           uuid.UUID          `json:"book_id"`
	Status           enums.BorrowStatus `json:"status"`
	BorrowDate       time.Time          `json:"borrow_date"`
	DueDate          *time.Time         `json:"due_date,omitempty"`
	ReturnDate       *time.Time         `json:"return_date,omitempty"`
	FineAmount       types.Money        `json:"fine_amount"`
	RenewalCount     int                `json:"renewal_count"`
	BorrowedBy       *uuid.UUID         `json:"borrowed_by,omitempty"`
	ReturnedBy       *uuid.UUID         `json:"returned_by,omitempty"`
	UpdatedBy        *uuid.UUID         `json:"updated_by,omitempty"`
	LastReminderSent *time.Time         `json:"last_reminder_sent,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
	Book             *BookSummaryDTO    `json:"book,omitempty"`
	User             *UserSummaryDTO    `json:"user,omitempty"`
}

func NewBorrowRecordDTO(rec *models.BorrowRecord) BorrowRecordDTO {
	dto := BorrowRecordDTO{
		ID:               rec.ID,
		UserID:           rec.UserID,
		BookID:           rec.BookID,
		Status:           rec.Status,
		BorrowDate:       rec.BorrowDate,
		DueDate:          rec.DueDate,
		ReturnDate:       rec.ReturnDate,
		FineAmount:       types.NewMoney(rec.FineAmount),
		RenewalCount:     rec.RenewalCount,
		BorrowedBy:       rec.BorrowedBy,
		ReturnedBy:       rec.ReturnedBy,
		UpdatedBy:        rec.UpdatedBy,
		LastReminderSent: rec.LastReminderSent,
		CreatedAt:        rec.CreatedAt,
		UpdatedAt:        rec.UpdatedAt,
	}
	if rec.Book != nil {
		dto.Book = &BookSummaryDTO{ID: rec.Book.ID, Title: rec.Book.Title, Author: rec.Book.Author, Genre: rec.Book.Genre}
	}
	if rec.User != nil {
		dto.User = &UserSummaryDTO{ID: rec.User.ID, Name: rec.User.Name, Email: rec.User.Email}
	}
	return dto
}

// ReturnResult reports the fine assessed when a book comes back.
type ReturnResult struct {
	Record      BorrowRecordDTO `json:"record"`
	IsOverdue   bool            `json:"is_overdue"`
	DaysOverdue int             `json:"days_overdue"`
	FineAmount  types.Money     `json:"fine_amount"`
}

// FineRecalculation is one row of an overdue-fine recompute.
type FineRecalculation struct {
	RecordID    uuid.UUID   `json:"recordId"`
	DaysOverdue int         `json:"daysOverdue"`
	FineAmount  types.Money `json:"fineAmount"`
	Updated     bool        `json:"updated"`
}

// ListInput filters record listings.
type ListInput struct {
	UserID *uuid.UUID
	BookID *uuid.UUID
	Status *enums.BorrowStatus
	Cursor string
	Limit  int
}
