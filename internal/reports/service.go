package reports

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/campusshelf/library-backend/internal/books"
	"github.com/campusshelf/library-backend/pkg/db/models"
	"github.com/campusshelf/library-backend/pkg/enums"
	pkgerrors "github.com/campusshelf/library-backend/pkg/errors"
	"github.com/campusshelf/library-backend/pkg/types"
	"github.com/google/uuid"
)

const (
	defaultTopN          = 10
	maxTopN              = 100
	recommendationGenres = 3
)

// Service answers read-only reporting queries.
type Service interface {
	Summary(ctx context.Context) (*SummaryDTO, error)
	PopularBooks(ctx context.Context, limit int) ([]PopularBookDTO, error)
	GenreBreakdown(ctx context.Context) ([]GenreStatDTO, error)
	Recommendations(ctx context.Context, userID uuid.UUID, limit int) ([]books.BookDTO, error)
	Export(ctx context.Context, w io.Writer, format Format, filter ExportFilter) (int, error)
}

type service struct {
	repo *Repository
	now  func() time.Time
}

func NewService(repo *Repository, now func() time.Time) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reports repo is required")
	}
	if now == nil {
		now = time.Now
	}
	return &service{repo: repo, now: now}, nil
}

func (s *service) Summary(ctx context.Context) (*SummaryDTO, error) {
	now := s.now().UTC()
	inv, err := s.repo.Inventory(ctx)
	if err != nil {
		return nil, dependency(err, "inventory totals")
	}
	out := &SummaryDTO{
		TotalBooks:      inv.Books,
		TotalCopies:     inv.Copies,
		AvailableCopies: inv.Available,
		GeneratedAt:     now,
	}

	counts := []struct {
		dst   *int64
		count func() (int64, error)
		what  string
	}{
		{&out.ActiveUsers, func() (int64, error) { return s.repo.CountUsers(ctx, enums.UserStatusApproved) }, "count approved users"},
		{&out.PendingUsers, func() (int64, error) { return s.repo.CountUsers(ctx, enums.UserStatusPending) }, "count pending users"},
		{&out.PendingRequests, func() (int64, error) { return s.repo.CountRecords(ctx, enums.BorrowStatusPending) }, "count pending requests"},
		{&out.ActiveLoans, func() (int64, error) { return s.repo.CountRecords(ctx, enums.BorrowStatusBorrowed) }, "count active loans"},
		{&out.OverdueLoans, func() (int64, error) { return s.repo.CountOverdue(ctx, now) }, "count overdue loans"},
	}
	for _, c := range counts {
		n, err := c.count()
		if err != nil {
			return nil, dependency(err, c.what)
		}
		*c.dst = n
	}

	outstanding, err := s.repo.SumFines(ctx, enums.BorrowStatusBorrowed)
	if err != nil {
		return nil, dependency(err, "sum outstanding fines")
	}
	assessed, err := s.repo.SumFines(ctx, enums.BorrowStatusReturned)
	if err != nil {
		return nil, dependency(err, "sum assessed fines")
	}
	out.OutstandingFines = types.NewMoney(outstanding)
	out.AssessedFines = types.NewMoney(assessed)
	return out, nil
}

func (s *service) PopularBooks(ctx context.Context, limit int) ([]PopularBookDTO, error) {
	rows, err := s.repo.PopularBooks(ctx, clampTopN(limit))
	if err != nil {
		return nil, dependency(err, "popular books")
	}
	if rows == nil {
		rows = []PopularBookDTO{}
	}
	return rows, nil
}

func (s *service) GenreBreakdown(ctx context.Context) ([]GenreStatDTO, error) {
	rows, err := s.repo.GenreBreakdown(ctx)
	if err != nil {
		return nil, dependency(err, "genre breakdown")
	}
	if rows == nil {
		rows = []GenreStatDTO{}
	}
	return rows, nil
}

// Recommendations suggests unread, available books from the user's favourite
// genres. Users without history get the best rated books overall.
func (s *service) Recommendations(ctx context.Context, userID uuid.UUID, limit int) ([]books.BookDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	limit = clampTopN(limit)
	genres, err := s.repo.TopGenresFor(ctx, userID, recommendationGenres)
	if err != nil {
		return nil, dependency(err, "favourite genres")
	}
	rows, err := s.repo.Recommend(ctx, userID, genres, limit)
	if err != nil {
		return nil, dependency(err, "recommend books")
	}
	if len(rows) == 0 && len(genres) > 0 {
		rows, err = s.repo.Recommend(ctx, userID, nil, limit)
		if err != nil {
			return nil, dependency(err, "recommend books")
		}
	}
	out := make([]books.BookDTO, len(rows))
	for i := range rows {
		out[i] = books.NewBookDTO(&rows[i])
	}
	return out, nil
}

// Export writes borrow records to w and returns how many were written.
func (s *service) Export(ctx context.Context, w io.Writer, format Format, filter ExportFilter) (int, error) {
	if filter.Status != nil && !filter.Status.IsValid() {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
	}
	if filter.From != nil && filter.To != nil && !filter.From.Before(*filter.To) {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "from must be before to")
	}
	records, err := s.repo.ExportRecords(ctx, filter)
	if err != nil {
		return 0, dependency(err, "load export records")
	}
	rows := make([]ExportRow, len(records))
	for i := range records {
		rows[i] = newExportRow(&records[i])
	}

	switch format {
	case FormatJSON:
		err = json.NewEncoder(w).Encode(rows)
	case FormatCSV:
		err = writeCSV(w, rows)
	default:
		return 0, pkgerrors.Newf(pkgerrors.CodeValidation, "unsupported export format %q", format)
	}
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write export")
	}
	return len(rows), nil
}

func newExportRow(rec *models.BorrowRecord) ExportRow {
	row := ExportRow{
		RecordID:     rec.ID,
		Status:       rec.Status,
		BorrowDate:   rec.BorrowDate.UTC(),
		DueDate:      rec.DueDate,
		ReturnDate:   rec.ReturnDate,
		FineAmount:   types.NewMoney(rec.FineAmount),
		RenewalCount: rec.RenewalCount,
	}
	if rec.User != nil {
		row.UserEmail = rec.User.Email
		row.UserName = rec.User.Name
	}
	if rec.Book != nil {
		row.BookTitle = rec.Book.Title
		row.BookAuthor = rec.Book.Author
	}
	return row
}

func writeCSV(w io.Writer, rows []ExportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			row.RecordID.String(),
			row.UserEmail,
			row.UserName,
			row.BookTitle,
			row.BookAuthor,
			row.Status.String(),
			row.BorrowDate.Format(time.RFC3339),
			formatOptionalTime(row.DueDate),
			formatOptionalTime(row.ReturnDate),
			row.FineAmount.String(),
			strconv.Itoa(row.RenewalCount),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func clampTopN(limit int) int {
	if limit <= 0 {
		return defaultTopN
	}
	if limit > maxTopN {
		return maxTopN
	}
	return limit
}

func dependency(err error, what string) error {
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, what)
}
