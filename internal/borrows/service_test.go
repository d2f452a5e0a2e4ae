package borrows

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/campusshelf/library-backend/internal/books"
	"github.com/campusshelf/library-backend/internal/fines"
	"github.com/campusshelf/library-backend/pkg/db"
	"github.com/campusshelf/library-backend/pkg/db/models"
	"github.com/campusshelf/library-backend/pkg/enums"
	pkgerrors "github.com/campusshelf/library-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestBorrowCreatesPendingWithoutReservingCopy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := f.user(t, enums.UserStatusApproved)
	bookID := f.book(t, 1, 1)

	rec, check, err := f.svc.RequestBorrow(ctx, userID, bookID)
	require.NoError(t, err)
	assert.True(t, check.Eligible)
	assert.Equal(t, enums.BorrowStatusPending, rec.Status)
	assert.Nil(t, rec.DueDate)
	assert.Equal(t, "0.00", rec.FineAmount.String())
	assert.Equal(t, 1, f.loadBook(t, bookID).AvailableCopies)
}

func TestRequestBorrowRejectsDuplicateOpenRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := f.user(t, enums.UserStatusApproved)
	bookID := f.book(t, 2, 2)

	_, _, err := f.svc.RequestBorrow(ctx, userID, bookID)
	require.NoError(t, err)

	rec, check, err := f.svc.RequestBorrow(ctx, userID, bookID)
	require.Error(t, err)
	assert.Nil(t, rec)
	assert.False(t, check.Eligible)
	assert.Equal(t, ReasonAlreadyRequested, check.Reason)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict))

	// also refused while the first loan is out
	borrowedBook := f.book(t, 2, 2)
	f.borrowed(t, userID, borrowedBook, utc(2024, 3, 8, 23, 59))
	_, check, err = f.svc.RequestBorrow(ctx, userID, borrowedBook)
	require.Error(t, err)
	assert.Equal(t, ReasonAlreadyRequested, check.Reason)
}

func TestRequestBorrowAllowedAgainAfterReturn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := f.user(t, enums.UserStatusApproved)
	bookID := f.book(t, 1, 1)

	recID := f.borrowed(t, userID, bookID, utc(2024, 3, 8, 23, 59))
	_, err := f.svc.Return(ctx, recID, Actor{ID: userID})
	require.NoError(t, err)

	_, check, err := f.svc.RequestBorrow(ctx, userID, bookID)
	require.NoError(t, err)
	assert.True(t, check.Eligible)
}

func TestEligibilityReasons(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	approved := f.user(t, enums.UserStatusApproved)

	inactive := f.book(t, 1, 1)
	require.NoError(t, f.conn.Exec("UPDATE books SET is_active = ? WHERE id = ?", false, inactive).Error)
	empty := f.book(t, 1, 0)
	open := f.book(t, 1, 1)

	tests := []struct {
		name   string
		user   uuid.UUID
		book   uuid.UUID
		reason string
		code   pkgerrors.Code
	}{
		{name: "inactive book", user: approved, book: inactive, reason: ReasonBookInactive, code: pkgerrors.CodeIneligible},
		{name: "no copies", user: approved, book: empty, reason: ReasonNoCopies, code: pkgerrors.CodeIneligible},
		{name: "pending account", user: f.user(t, enums.UserStatusPending), book: open, reason: ReasonAccountPending, code: pkgerrors.CodeIneligible},
		{name: "suspended account", user: f.user(t, enums.UserStatusSuspended), book: open, reason: ReasonAccountInactive, code: pkgerrors.CodeIneligible},
		{name: "rejected account", user: f.user(t, enums.UserStatusRejected), book: open, reason: ReasonAccountInactive, code: pkgerrors.CodeIneligible},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check, err := f.svc.CheckEligibility(ctx, tt.user, tt.book)
			require.NoError(t, err)
			assert.False(t, check.Eligible)
			assert.Equal(t, tt.reason, check.Reason)

			_, _, err = f.svc.RequestBorrow(ctx, tt.user, tt.book)
			require.Error(t, err)
			assert.True(t, pkgerrors.HasCode(err, tt.code))
		})
	}

	_, err := f.svc.CheckEligibility(ctx, approved, uuid.New())
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestApproveSetsDueDateAndTakesCopy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := f.user(t, enums.UserStatusApproved)
	bookID := f.book(t, 2, 2)

	req, _, err := f.svc.RequestBorrow(ctx, userID, bookID)
	require.NoError(t, err)

	approvedAt := utc(2024, 3, 2, 9, 15)
	f.clock.Set(approvedAt)
	rec, err := f.svc.Approve(ctx, req.ID, f.admin)
	require.NoError(t, err)

	assert.Equal(t, enums.BorrowStatusBorrowed, rec.Status)
	require.NotNil(t, rec.DueDate)
	assert.True(t, fines.DueDate(approvedAt, 7*24*time.Hour).Equal(*rec.DueDate))
	assert.True(t, utc(2024, 3, 9, 23, 59).Add(59*time.Second).Equal(*rec.DueDate))
	require.NotNil(t, rec.BorrowedBy)
	assert.Equal(t, f.admin, *rec.BorrowedBy)
	assert.Equal(t, 1, f.loadBook(t, bookID).AvailableCopies)
	f.assertInventory(t)
}

func TestApproveWithoutCopiesLeavesRecordPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bookID := f.book(t, 1, 1)
	first := f.user(t, enums.UserStatusApproved)
	second := f.user(t, enums.UserStatusApproved)

	reqA, _, err := f.svc.RequestBorrow(ctx, first, bookID)
	require.NoError(t, err)
	reqB, _, err := f.svc.RequestBorrow(ctx, second, bookID)
	require.NoError(t, err)

	_, err = f.svc.Approve(ctx, reqA.ID, f.admin)
	require.NoError(t, err)

	_, err = f.svc.Approve(ctx, reqB.ID, f.admin)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))

	stored := f.loadRecord(t, reqB.ID)
	require.NotNil(t, stored)
	assert.Equal(t, enums.BorrowStatusPending, stored.Status)
	assert.Nil(t, stored.DueDate)
	assert.Nil(t, stored.BorrowedBy)
	assert.Equal(t, 0, f.loadBook(t, bookID).AvailableCopies)
	f.assertInventory(t)
}

func TestConcurrentApprovalsForLastCopy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bookID := f.book(t, 1, 1)

	const requests = 4
	ids := make([]uuid.UUID, requests)
	for i := range ids {
		rec, _, err := f.svc.RequestBorrow(ctx, f.user(t, enums.UserStatusApproved), bookID)
		require.NoError(t, err)
		ids[i] = rec.ID
	}

	var wg sync.WaitGroup
	errs := make([]error, requests)
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id uuid.UUID) {
			defer wg.Done()
			_, errs[i] = f.svc.Approve(ctx, id, f.admin)
		}(i, id)
	}
	wg.Wait()

	succeeded := 0
	for i, err := range errs {
		rec := f.loadRecord(t, ids[i])
		require.NotNil(t, rec)
		if err == nil {
			succeeded++
			assert.Equal(t, enums.BorrowStatusBorrowed, rec.Status)
			continue
		}
		assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict), "unexpected error %v", err)
		assert.Equal(t, enums.BorrowStatusPending, rec.Status)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 0, f.loadBook(t, bookID).AvailableCopies)
	f.assertInventory(t)
}

func TestBookEditsRacingApproveAndReturn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bookID := f.book(t, 3, 3)
	catalog, err := books.NewService(books.NewRepository(f.conn), db.NewFromGorm(f.conn))
	require.NoError(t, err)

	onLoan := f.borrowed(t, f.user(t, enums.UserStatusApproved), bookID, utc(2024, 3, 5, 10, 0))
	pending := make([]uuid.UUID, 2)
	for i := range pending {
		rec, _, err := f.svc.RequestBorrow(ctx, f.user(t, enums.UserStatusApproved), bookID)
		require.NoError(t, err)
		pending[i] = rec.ID
	}

	edits := []books.UpdateBookInput{
		{Title: strPtr("Edited A")},
		{Description: strPtr("new blurb")},
		{TotalCopies: intPtr(4)},
		{Title: strPtr("Edited B")},
	}

	var wg sync.WaitGroup
	loanErrs := make([]error, len(pending)+1)
	editErrs := make([]error, len(edits))
	for i, id := range pending {
		wg.Add(1)
		go func(i int, id uuid.UUID) {
			defer wg.Done()
			_, loanErrs[i] = f.svc.Approve(ctx, id, f.admin)
		}(i, id)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, loanErrs[len(pending)] = f.svc.Return(ctx, onLoan, Actor{ID: f.admin, Admin: true})
	}()
	for i, edit := range edits {
		wg.Add(1)
		go func(i int, edit books.UpdateBookInput) {
			defer wg.Done()
			_, editErrs[i] = catalog.UpdateBook(ctx, bookID, edit)
		}(i, edit)
	}
	wg.Wait()

	for _, err := range loanErrs {
		require.NoError(t, err)
	}
	for _, err := range editErrs {
		if err != nil {
			assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict), "unexpected error %v", err)
		}
	}

	var borrowed int64
	require.NoError(t, f.conn.Model(&models.BorrowRecord{}).
		Where("book_id = ? AND status = ?", bookID, enums.BorrowStatusBorrowed).
		Count(&borrowed).Error)
	assert.Equal(t, int64(2), borrowed)

	book := f.loadBook(t, bookID)
	assert.Equal(t, book.TotalCopies-int(borrowed), book.AvailableCopies, "available must equal total minus copies on loan")
	assert.Contains(t, []string{"Edited A", "Edited B"}, book.Title)
	f.assertInventory(t)
}

func TestApproveTwiceIsStateConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req, _, err := f.svc.RequestBorrow(ctx, f.user(t, enums.UserStatusApproved), f.book(t, 3, 3))
	require.NoError(t, err)

	_, err = f.svc.Approve(ctx, req.ID, f.admin)
	require.NoError(t, err)
	_, err = f.svc.Approve(ctx, req.ID, f.admin)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))

	_, err = f.svc.Approve(ctx, uuid.New(), f.admin)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestRejectDeletesPendingOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bookID := f.book(t, 2, 2)
	userID := f.user(t, enums.UserStatusApproved)

	req, _, err := f.svc.RequestBorrow(ctx, userID, bookID)
	require.NoError(t, err)
	require.NoError(t, f.svc.Reject(ctx, req.ID, f.admin))
	assert.Nil(t, f.loadRecord(t, req.ID))
	assert.Equal(t, 2, f.loadBook(t, bookID).AvailableCopies)

	recID := f.borrowed(t, f.user(t, enums.UserStatusApproved), bookID, utc(2024, 3, 8, 23, 59))
	err = f.svc.Reject(ctx, recID, f.admin)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))
	assert.NotNil(t, f.loadRecord(t, recID))
}

func TestReturnThreeDaysLate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := f.user(t, enums.UserStatusApproved)
	bookID := f.book(t, 1, 1)
	recID := f.borrowed(t, userID, bookID, utc(2024, 1, 1, 0, 0))

	f.clock.Set(utc(2024, 1, 4, 0, 0))
	res, err := f.svc.Return(ctx, recID, Actor{ID: userID})
	require.NoError(t, err)

	assert.True(t, res.IsOverdue)
	assert.Equal(t, 3, res.DaysOverdue)
	assert.Equal(t, "3.00", res.FineAmount.String())
	assert.Equal(t, enums.BorrowStatusReturned, res.Record.Status)
	assert.Equal(t, "3.00", res.Record.FineAmount.String())
	require.NotNil(t, res.Record.ReturnedBy)
	assert.Equal(t, userID, *res.Record.ReturnedBy)
	assert.Equal(t, 1, f.loadBook(t, bookID).AvailableCopies)
}

func TestReturnOnTimeHasNoFine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := f.user(t, enums.UserStatusApproved)
	bookID := f.book(t, 1, 1)
	due := utc(2024, 3, 10, 23, 59)

	for _, at := range []time.Time{utc(2024, 3, 5, 12, 0), due} {
		recID := f.borrowed(t, userID, bookID, due)
		f.clock.Set(at)
		res, err := f.svc.Return(ctx, recID, Actor{ID: f.admin, Admin: true})
		require.NoError(t, err)
		assert.False(t, res.IsOverdue)
		assert.Equal(t, 0, res.DaysOverdue)
		assert.Equal(t, "0.00", res.FineAmount.String())
	}
	f.assertInventory(t)
}

func TestBorrowLifecycleScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := f.user(t, enums.UserStatusApproved)
	bookID := f.book(t, 1, 1)

	req, _, err := f.svc.RequestBorrow(ctx, userID, bookID)
	require.NoError(t, err)
	assert.Equal(t, enums.BorrowStatusPending, req.Status)

	approvedAt := utc(2024, 4, 1, 14, 30)
	f.clock.Set(approvedAt)
	loan, err := f.svc.Approve(ctx, req.ID, f.admin)
	require.NoError(t, err)
	assert.Equal(t, enums.BorrowStatusBorrowed, loan.Status)
	assert.Equal(t, 0, f.loadBook(t, bookID).AvailableCopies)
	require.NotNil(t, loan.DueDate)
	assert.True(t, fines.EndOfDay(approvedAt.Add(7*24*time.Hour)).Equal(*loan.DueDate))

	f.clock.Set(loan.DueDate.Add(2 * 24 * time.Hour))
	res, err := f.svc.Return(ctx, req.ID, Actor{ID: userID})
	require.NoError(t, err)
	assert.Equal(t, "2.00", res.FineAmount.String())
	assert.Equal(t, 2, res.DaysOverdue)
	assert.Equal(t, 1, f.loadBook(t, bookID).AvailableCopies)
	f.assertInventory(t)
}

func TestReturnUsesCurrentRate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := f.user(t, enums.UserStatusApproved)
	recID := f.borrowed(t, userID, f.book(t, 1, 1), utc(2024, 2, 1, 0, 0))
	f.setRate(t, "0.50")

	f.clock.Set(utc(2024, 2, 5, 6, 0))
	res, err := f.svc.Return(ctx, recID, Actor{ID: userID})
	require.NoError(t, err)
	assert.Equal(t, "2.00", res.FineAmount.String())
}

func TestReturnGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, enums.UserStatusApproved)
	bookID := f.book(t, 2, 2)

	req, _, err := f.svc.RequestBorrow(ctx, owner, bookID)
	require.NoError(t, err)
	_, err = f.svc.Return(ctx, req.ID, Actor{ID: owner})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict), "pending records cannot be returned")

	recID := f.borrowed(t, f.user(t, enums.UserStatusApproved), bookID, utc(2024, 3, 8, 23, 59))
	_, err = f.svc.Return(ctx, recID, Actor{ID: owner})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeForbidden))

	_, err = f.svc.Return(ctx, recID, Actor{ID: f.admin, Admin: true})
	require.NoError(t, err)
	_, err = f.svc.Return(ctx, recID, Actor{ID: f.admin, Admin: true})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict), "double return")
	f.assertInventory(t)
}

func TestReturnNeverExceedsTotalCopies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := f.user(t, enums.UserStatusApproved)
	bookID := f.book(t, 1, 1)
	recID := f.borrowed(t, userID, bookID, utc(2024, 3, 8, 23, 59))

	// an admin edit already restored the copy
	require.NoError(t, f.conn.Exec("UPDATE books SET available_copies = total_copies WHERE id = ?", bookID).Error)

	_, err := f.svc.Return(ctx, recID, Actor{ID: userID})
	require.NoError(t, err)
	assert.Equal(t, 1, f.loadBook(t, bookID).AvailableCopies)
	f.assertInventory(t)
}

func TestRenewExtendsDueDateUpToLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := f.user(t, enums.UserStatusApproved)
	due := utc(2024, 3, 8, 23, 59).Add(59 * time.Second)
	recID := f.borrowed(t, userID, f.book(t, 1, 1), due)

	f.clock.Set(utc(2024, 3, 6, 8, 0))
	rec, err := f.svc.Renew(ctx, recID, Actor{ID: userID})
	require.NoError(t, err)
	assert.Equal(t, 1, rec.RenewalCount)
	assert.True(t, utc(2024, 3, 15, 23, 59).Add(59*time.Second).Equal(*rec.DueDate))

	_, err = f.svc.Renew(ctx, recID, Actor{ID: userID})
	require.NoError(t, err)

	_, err = f.svc.Renew(ctx, recID, Actor{ID: userID})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))

	_, err = f.svc.Renew(ctx, recID, Actor{ID: uuid.New()})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeForbidden))
}

func TestRenewRefusedWhenOverdue(t *testing.T) {
	f := newFixture(t)
	userID := f.user(t, enums.UserStatusApproved)
	recID := f.borrowed(t, userID, f.book(t, 1, 1), utc(2024, 2, 20, 23, 59))

	_, err := f.svc.Renew(context.Background(), recID, Actor{ID: userID})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))
}

func TestRecalculateOverdueFinesIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bookID := f.book(t, 5, 5)
	f.clock.Set(utc(2024, 3, 10, 12, 0))

	late := f.borrowed(t, f.user(t, enums.UserStatusApproved), bookID, utc(2024, 3, 5, 12, 0))
	later := f.borrowed(t, f.user(t, enums.UserStatusApproved), bookID, utc(2024, 3, 1, 12, 0))
	f.borrowed(t, f.user(t, enums.UserStatusApproved), bookID, utc(2024, 3, 20, 12, 0))

	first, err := f.svc.RecalculateOverdueFines(ctx, nil)
	require.NoError(t, err)
	require.Len(t, first, 2)
	byID := map[uuid.UUID]FineRecalculation{}
	for _, r := range first {
		byID[r.RecordID] = r
		assert.True(t, r.Updated)
	}
	assert.Equal(t, 5, byID[late].DaysOverdue)
	assert.Equal(t, "5.00", byID[late].FineAmount.String())
	assert.Equal(t, 9, byID[later].DaysOverdue)
	assert.Equal(t, "9.00", byID[later].FineAmount.String())

	second, err := f.svc.RecalculateOverdueFines(ctx, nil)
	require.NoError(t, err)
	require.Len(t, second, 2)
	for _, r := range second {
		assert.False(t, r.Updated, "same rate and instant must not change stored fines")
		assert.True(t, byID[r.RecordID].FineAmount.Equal(r.FineAmount.Decimal))
	}
	assert.Equal(t, "5.00", f.loadRecord(t, late).FineAmount.StringFixed(2))
}

func TestRecalculateOverwritesWhenRateChanges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.clock.Set(utc(2024, 3, 10, 12, 0))
	recID := f.borrowed(t, f.user(t, enums.UserStatusApproved), f.book(t, 1, 1), utc(2024, 3, 6, 12, 0))

	_, err := f.svc.RecalculateOverdueFines(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "4.00", f.loadRecord(t, recID).FineAmount.StringFixed(2))

	override := decimal.RequireFromString("0.25")
	results, err := f.svc.RecalculateOverdueFines(ctx, &override)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Updated)
	assert.Equal(t, "1.00", results[0].FineAmount.String())
	assert.Equal(t, "1.00", f.loadRecord(t, recID).FineAmount.StringFixed(2))

	stored, err := f.settings.DailyFineRate(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1.00", stored.StringFixed(2), "an override applies to one run only")

	negative := decimal.NewFromInt(-1)
	_, err = f.svc.RecalculateOverdueFines(ctx, &negative)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestListRecordsScopesByUserAndStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userA := f.user(t, enums.UserStatusApproved)
	userB := f.user(t, enums.UserStatusApproved)
	bookID := f.book(t, 5, 5)

	_, _, err := f.svc.RequestBorrow(ctx, userA, bookID)
	require.NoError(t, err)
	f.borrowed(t, userA, f.book(t, 1, 1), utc(2024, 3, 8, 23, 59))
	_, _, err = f.svc.RequestBorrow(ctx, userB, bookID)
	require.NoError(t, err)

	mine, err := f.svc.ListRecords(ctx, ListInput{UserID: &userA})
	require.NoError(t, err)
	assert.Len(t, mine.Items, 2)
	for _, rec := range mine.Items {
		assert.Equal(t, userA, rec.UserID)
		require.NotNil(t, rec.Book)
	}

	pending := enums.BorrowStatusPending
	queue, err := f.svc.ListRecords(ctx, ListInput{Status: &pending})
	require.NoError(t, err)
	assert.Len(t, queue.Items, 2)

	bogus := enums.BorrowStatus("LOST")
	_, err = f.svc.ListRecords(ctx, ListInput{Status: &bogus})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestGetRecordHidesOtherUsersRecords(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, enums.UserStatusApproved)
	recID := f.borrowed(t, owner, f.book(t, 1, 1), utc(2024, 3, 8, 23, 59))

	rec, err := f.svc.GetRecord(ctx, recID, Actor{ID: owner})
	require.NoError(t, err)
	assert.Equal(t, recID, rec.ID)

	_, err = f.svc.GetRecord(ctx, recID, Actor{ID: uuid.New()})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))

	_, err = f.svc.GetRecord(ctx, recID, Actor{ID: f.admin, Admin: true})
	require.NoError(t, err)
}
