package borrows

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/campusshelf/library-backend/internal/books"
	"github.com/campusshelf/library-backend/internal/settings"
	"github.com/campusshelf/library-backend/internal/users"
	"github.com/campusshelf/library-backend/pkg/db"
	"github.com/campusshelf/library-backend/pkg/db/dbtest"
	"github.com/campusshelf/library-backend/pkg/db/models"
	"github.com/campusshelf/library-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type fixture struct {
	svc      Service
	conn     *gorm.DB
	clock    *testClock
	settings settings.Service
	admin    uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn := dbtest.Open(t)
	clock := &testClock{now: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}

	settingsSvc, err := settings.NewService(settings.NewRepository(conn), decimal.RequireFromString("1.00"))
	require.NoError(t, err)

	svc, err := NewService(ServiceParams{
		Repo:        NewRepository(conn),
		Books:       books.NewRepository(conn),
		Users:       users.NewRepository(conn),
		Rates:       settingsSvc,
		Tx:          db.NewFromGorm(conn),
		LoanPeriod:  7 * 24 * time.Hour,
		MaxRenewals: 2,
		Now:         clock.Now,
	})
	require.NoError(t, err)

	return &fixture{svc: svc, conn: conn, clock: clock, settings: settingsSvc, admin: uuid.New()}
}

func (f *fixture) user(t *testing.T, status enums.UserStatus) uuid.UUID {
	t.Helper()
	u := &models.User{
		Email:        uuid.NewString() + "@campus.edu",
		Name:         "Reader",
		PasswordHash: "hash",
		Role:         enums.UserRoleStudent,
		Status:       status,
	}
	require.NoError(t, f.conn.Create(u).Error)
	return u.ID
}

func (f *fixture) book(t *testing.T, total, available int) uuid.UUID {
	t.Helper()
	b := &models.Book{
		Title:           "Book " + uuid.NewString()[:8],
		Author:          "Author",
		Genre:           "General",
		TotalCopies:     total,
		AvailableCopies: available,
		IsActive:        true,
	}
	require.NoError(t, f.conn.Create(b).Error)
	return b.ID
}

// borrowed inserts a BORROWED record directly and takes a copy from the book.
func (f *fixture) borrowed(t *testing.T, userID, bookID uuid.UUID, due time.Time) uuid.UUID {
	t.Helper()
	rec := &models.BorrowRecord{
		UserID:     userID,
		BookID:     bookID,
		Status:     enums.BorrowStatusBorrowed,
		BorrowDate: due.Add(-7 * 24 * time.Hour),
		DueDate:    &due,
		FineAmount: decimal.Zero,
	}
	require.NoError(t, f.conn.Create(rec).Error)
	require.NoError(t, f.conn.Model(&models.Book{}).Where("id = ?", bookID).
		Update("available_copies", gorm.Expr("available_copies - 1")).Error)
	return rec.ID
}

func (f *fixture) loadBook(t *testing.T, id uuid.UUID) models.Book {
	t.Helper()
	var b models.Book
	require.NoError(t, f.conn.First(&b, "id = ?", id).Error)
	return b
}

func (f *fixture) loadRecord(t *testing.T, id uuid.UUID) *models.BorrowRecord {
	t.Helper()
	var rec models.BorrowRecord
	err := f.conn.First(&rec, "id = ?", id).Error
	if db.IsNotFound(err) {
		return nil
	}
	require.NoError(t, err)
	return &rec
}

// assertInventory checks 0 <= available <= total for every book.
func (f *fixture) assertInventory(t *testing.T) {
	t.Helper()
	var all []models.Book
	require.NoError(t, f.conn.Find(&all).Error)
	for _, b := range all {
		assert.GreaterOrEqual(t, b.AvailableCopies, 0, "book %s", b.ID)
		assert.LessOrEqual(t, b.AvailableCopies, b.TotalCopies, "book %s", b.ID)
	}
}

func (f *fixture) setRate(t *testing.T, rate string) {
	t.Helper()
	_, err := f.settings.SetDailyFineRate(context.Background(), decimal.RequireFromString(rate), nil)
	require.NoError(t, err)
}

func utc(y int, m time.Month, d, h, min int) time.Time {
	return time.Date(y, m, d, h, min, 0, 0, time.UTC)
}

func strPtr(v string) *string { return &v }
func intPtr(v int) *int       { return &v }
