package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/campusshelf/library-backend/pkg/db/dbtest"
	"github.com/campusshelf/library-backend/pkg/db/models"
	"github.com/campusshelf/library-backend/pkg/enums"
	pkgerrors "github.com/campusshelf/library-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var reportAt = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type seeder struct {
	t    *testing.T
	conn *gorm.DB
}

func (s seeder) user(name string, status enums.UserStatus) uuid.UUID {
	s.t.Helper()
	u := &models.User{Email: uuid.NewString() + "@campus.edu", Name: name, PasswordHash: "x", Role: enums.UserRoleStudent, Status: status}
	require.NoError(s.t, s.conn.Create(u).Error)
	return u.ID
}

func (s seeder) book(title, genre string, total, available int, rating string) uuid.UUID {
	s.t.Helper()
	b := &models.Book{
		Title:           title,
		Author:          "Author",
		Genre:           genre,
		Rating:          decimal.RequireFromString(rating),
		TotalCopies:     total,
		AvailableCopies: available,
		IsActive:        true,
	}
	require.NoError(s.t, s.conn.Create(b).Error)
	return b.ID
}

func (s seeder) record(userID, bookID uuid.UUID, status enums.BorrowStatus, borrowed time.Time, fine string) uuid.UUID {
	s.t.Helper()
	due := borrowed.Add(7 * 24 * time.Hour)
	rec := &models.BorrowRecord{
		UserID:     userID,
		BookID:     bookID,
		Status:     status,
		BorrowDate: borrowed,
		FineAmount: decimal.RequireFromString(fine),
	}
	if status != enums.BorrowStatusPending {
		rec.DueDate = &due
	}
	if status == enums.BorrowStatusReturned {
		returned := due.Add(24 * time.Hour)
		rec.ReturnDate = &returned
	}
	require.NoError(s.t, s.conn.Create(rec).Error)
	return rec.ID
}

func newReports(t *testing.T) (Service, seeder) {
	t.Helper()
	conn := dbtest.Open(t)
	svc, err := NewService(NewRepository(conn), func() time.Time { return reportAt })
	require.NoError(t, err)
	return svc, seeder{t: t, conn: conn}
}

func TestSummaryAggregates(t *testing.T) {
	svc, seed := newReports(t)
	ctx := context.Background()
	ada := seed.user("Ada", enums.UserStatusApproved)
	seed.user("Pat", enums.UserStatusPending)
	dune := seed.book("Dune", "Sci-Fi", 3, 1, "4.50")
	emma := seed.book("Emma", "Classic", 2, 2, "3.00")

	seed.record(ada, dune, enums.BorrowStatusBorrowed, reportAt.Add(-10*24*time.Hour), "3.00")
	seed.record(ada, dune, enums.BorrowStatusBorrowed, reportAt.Add(-2*24*time.Hour), "0")
	seed.record(ada, emma, enums.BorrowStatusReturned, reportAt.Add(-30*24*time.Hour), "1.50")
	seed.record(ada, emma, enums.BorrowStatusPending, reportAt, "0")

	summary, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.TotalBooks)
	assert.Equal(t, int64(5), summary.TotalCopies)
	assert.Equal(t, int64(3), summary.AvailableCopies)
	assert.Equal(t, int64(1), summary.ActiveUsers)
	assert.Equal(t, int64(1), summary.PendingUsers)
	assert.Equal(t, int64(1), summary.PendingRequests)
	assert.Equal(t, int64(2), summary.ActiveLoans)
	assert.Equal(t, int64(1), summary.OverdueLoans)
	assert.Equal(t, "3.00", summary.OutstandingFines.String())
	assert.Equal(t, "1.50", summary.AssessedFines.String())
}

func TestPopularBooksAndGenres(t *testing.T) {
	svc, seed := newReports(t)
	ctx := context.Background()
	reader := seed.user("Ada", enums.UserStatusApproved)
	other := seed.user("Bob", enums.UserStatusApproved)
	dune := seed.book("Dune", "Sci-Fi", 3, 3, "4.00")
	emma := seed.book("Emma", "Classic", 1, 1, "3.00")
	seed.book("Quiet", "Classic", 1, 1, "0")

	seed.record(reader, dune, enums.BorrowStatusReturned, reportAt.Add(-40*24*time.Hour), "0")
	seed.record(other, dune, enums.BorrowStatusBorrowed, reportAt.Add(-3*24*time.Hour), "0")
	seed.record(reader, emma, enums.BorrowStatusReturned, reportAt.Add(-20*24*time.Hour), "0")
	seed.record(other, emma, enums.BorrowStatusPending, reportAt, "0")

	popular, err := svc.PopularBooks(ctx, 5)
	require.NoError(t, err)
	require.Len(t, popular, 2)
	assert.Equal(t, dune, popular[0].BookID)
	assert.Equal(t, int64(2), popular[0].BorrowCount)
	assert.Equal(t, "Emma", popular[1].Title)
	assert.Equal(t, int64(1), popular[1].BorrowCount)

	genres, err := svc.GenreBreakdown(ctx)
	require.NoError(t, err)
	require.Len(t, genres, 2)
	assert.Equal(t, GenreStatDTO{Genre: "Sci-Fi", BookCount: 1, BorrowCount: 2}, genres[0])
	assert.Equal(t, GenreStatDTO{Genre: "Classic", BookCount: 2, BorrowCount: 1}, genres[1])
}

func TestRecommendationsPreferFavouriteGenres(t *testing.T) {
	svc, seed := newReports(t)
	ctx := context.Background()
	reader := seed.user("Ada", enums.UserStatusApproved)
	read := seed.book("Dune", "Sci-Fi", 1, 1, "4.00")
	seed.record(reader, read, enums.BorrowStatusReturned, reportAt.Add(-20*24*time.Hour), "0")

	best := seed.book("Foundation", "Sci-Fi", 1, 1, "4.80")
	seed.book("Hyperion", "Sci-Fi", 1, 1, "4.20")
	seed.book("Out", "Sci-Fi", 1, 0, "5.00")
	seed.book("Emma", "Classic", 1, 1, "4.90")

	recs, err := svc.Recommendations(ctx, reader, 5)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, best, recs[0].ID)
	for _, b := range recs {
		assert.Equal(t, "Sci-Fi", b.Genre)
		assert.NotEqual(t, read, b.ID)
	}

	newcomer := seed.user("New", enums.UserStatusApproved)
	recs, err = svc.Recommendations(ctx, newcomer, 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "Emma", recs[0].Title)
}

func TestExportCSVAndJSON(t *testing.T) {
	svc, seed := newReports(t)
	ctx := context.Background()
	ada := seed.user("Ada", enums.UserStatusApproved)
	dune := seed.book("Dune", "Sci-Fi", 2, 1, "0")
	first := seed.record(ada, dune, enums.BorrowStatusReturned, reportAt.Add(-20*24*time.Hour), "2")
	seed.record(ada, dune, enums.BorrowStatusBorrowed, reportAt.Add(-2*24*time.Hour), "0")

	var buf bytes.Buffer
	n, err := svc.Export(ctx, &buf, FormatCSV, ExportFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	lines, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, lines, 3)
	assert.Equal(t, csvHeader, lines[0])
	assert.Equal(t, first.String(), lines[1][0])
	assert.Equal(t, "Dune", lines[1][3])
	assert.Equal(t, "RETURNED", lines[1][5])
	assert.Equal(t, "2.00", lines[1][9])
	assert.Empty(t, lines[2][8], "open loans have no return date")

	returned := enums.BorrowStatusReturned
	buf.Reset()
	n, err = svc.Export(ctx, &buf, FormatJSON, ExportFilter{Status: &returned})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	var rows []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "2.00", rows[0]["fine_amount"])
	assert.Equal(t, "Ada", rows[0]["user_name"])
}

func TestExportValidatesInput(t *testing.T) {
	svc, _ := newReports(t)
	var buf bytes.Buffer

	_, err := svc.Export(context.Background(), &buf, Format("xml"), ExportFilter{})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	from, to := reportAt, reportAt.Add(-time.Hour)
	_, err = svc.Export(context.Background(), &buf, FormatCSV, ExportFilter{From: &from, To: &to})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	format, ok := ParseFormat(" JSON ")
	assert.True(t, ok)
	assert.Equal(t, FormatJSON, format)
	_, ok = ParseFormat("pdf")
	assert.False(t, ok)
}

