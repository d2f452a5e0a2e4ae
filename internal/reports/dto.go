package reports

import (
	"strings"
	"time"

	"github.com/campusshelf/library-backend/pkg/enums"
	"github.com/campusshelf/library-backend/pkg/types"
	"github.com/google/uuid"
)

// SummaryDTO is the admin dashboard snapshot.
type SummaryDTO struct {
	TotalBooks       int64       `json:"total_books"`
	TotalCopies      int64       `json:"total_copies"`
	AvailableCopies  int64       `json:"available_copies"`
	ActiveUsers      int64       `json:"active_users"`
	PendingUsers     int64       `json:"pending_users"`
	PendingRequests  int64       `json:"pending_requests"`
	ActiveLoans      int64       `json:"active_loans"`
	OverdueLoans     int64       `json:"overdue_loans"`
	OutstandingFines types.Money `json:"outstanding_fines"`
	AssessedFines    types.Money `json:"assessed_fines"`
	GeneratedAt      time.Time   `json:"generated_at"`
}

type PopularBookDTO struct {
	BookID      uuid.UUID `json:"book_id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Genre       string    `json:"genre"`
	BorrowCount int64     `json:"borrow_count"`
}

type GenreStatDTO struct {
	Genre       string `json:"genre"`
	BookCount   int64  `json:"book_count"`
	BorrowCount int64  `json:"borrow_count"`
}

// Format is an export encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

func ParseFormat(value string) (Format, bool) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case FormatCSV, "":
		return FormatCSV, true
	case FormatJSON:
		return FormatJSON, true
	}
	return "", false
}

func (f Format) ContentType() string {
	if f == FormatJSON {
		return "application/json"
	}
	return "text/csv; charset=utf-8"
}

// ExportFilter narrows the exported borrow records. From/To bound borrow_date.
type ExportFilter struct {
	Status *enums.BorrowStatus
	From   *time.Time
	To     *time.Time
}

// ExportRow is one borrow record flattened for spreadsheets.
type ExportRow struct {
	RecordID     uuid.UUID          `json:"record_id"`
	UserEmail    string             `json:"user_email"`
	UserName     string             `json:"user_name"`
	BookTitle    string             `json:"book_title"`
	BookAuthor   string             `json:"book_author"`
	Status       enums.BorrowStatus `json:"status"`
	BorrowDate   time.Time          `json:"borrow_date"`
	DueDate      *time.Time         `json:"due_date,omitempty"`
	ReturnDate   *time.Time         `json:"return_date,omitempty"`
	FineAmount   types.Money        `json:"fine_amount"`
	RenewalCount int                `json:"renewal_count"`
}

var csvHeader = []string{
	"record_id", "user_email", "user_name", "book_title", "book_author",
	"status", "borrow_date", "due_date", "return_date", "fine_amount", "renewal_count",
}
