package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/campusshelf/library-backend/api/middleware"
	"github.com/campusshelf/library-backend/internal/books"
	"github.com/campusshelf/library-backend/internal/borrows"
	"github.com/campusshelf/library-backend/internal/reports"
	"github.com/campusshelf/library-backend/internal/reviews"
	"github.com/campusshelf/library-backend/pkg/enums"
	"github.com/campusshelf/library-backend/pkg/logger"
	"github.com/campusshelf/library-backend/pkg/pagination"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

// asUser attaches the authenticated identity the Auth middleware would set.
func asUser(req *http.Request, userID uuid.UUID, role enums.UserRole) *http.Request {
	ctx := middleware.WithUserID(req.Context(), userID.String())
	ctx = middleware.WithRole(ctx, string(role))
	return req.WithContext(ctx)
}

func withURLParams(req *http.Request, params map[string]string) *http.Request {
	routeCtx := chi.NewRouteContext()
	for k, v := range params {
		routeCtx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details any    `json:"details"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, resp *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(resp.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body=%s)", err, resp.Body.String())
	}
	return env
}

type fakeBorrowService struct {
	eligibilityFn func(ctx context.Context, userID, bookID uuid.UUID) (borrows.Eligibility, error)
	requestFn     func(ctx context.Context, userID, bookID uuid.UUID) (*borrows.BorrowRecordDTO, borrows.Eligibility, error)
	approveFn     func(ctx context.Context, recordID, adminID uuid.UUID) (*borrows.BorrowRecordDTO, error)
	rejectFn      func(ctx context.Context, recordID, adminID uuid.UUID) error
	returnFn      func(ctx context.Context, recordID uuid.UUID, actor borrows.Actor) (*borrows.ReturnResult, error)
	renewFn       func(ctx context.Context, recordID uuid.UUID, actor borrows.Actor) (*borrows.BorrowRecordDTO, error)
	recalcFn      func(ctx context.Context, rate *decimal.Decimal) ([]borrows.FineRecalculation, error)
	getFn         func(ctx context.Context, recordID uuid.UUID, actor borrows.Actor) (*borrows.BorrowRecordDTO, error)
	listFn        func(ctx context.Context, input borrows.ListInput) (pagination.Page[borrows.BorrowRecordDTO], error)
}

func (f *fakeBorrowService) CheckEligibility(ctx context.Context, userID, bookID uuid.UUID) (borrows.Eligibility, error) {
	return f.eligibilityFn(ctx, userID, bookID)
}

func (f *fakeBorrowService) RequestBorrow(ctx context.Context, userID, bookID uuid.UUID) (*borrows.BorrowRecordDTO, borrows.Eligibility, error) {
	return f.requestFn(ctx, userID, bookID)
}

func (f *fakeBorrowService) Approve(ctx context.Context, recordID, adminID uuid.UUID) (*borrows.BorrowRecordDTO, error) {
	return f.approveFn(ctx, recordID, adminID)
}

func (f *fakeBorrowService) Reject(ctx context.Context, recordID, adminID uuid.UUID) error {
	return f.rejectFn(ctx, recordID, adminID)
}

func (f *fakeBorrowService) Return(ctx context.Context, recordID uuid.UUID, actor borrows.Actor) (*borrows.ReturnResult, error) {
	return f.returnFn(ctx, recordID, actor)
}

func (f *fakeBorrowService) Renew(ctx context.Context, recordID uuid.UUID, actor borrows.Actor) (*borrows.BorrowRecordDTO, error) {
	return f.renewFn(ctx, recordID, actor)
}

func (f *fakeBorrowService) RecalculateOverdueFines(ctx context.Context, rate *decimal.Decimal) ([]borrows.FineRecalculation, error) {
	return f.recalcFn(ctx, rate)
}

func (f *fakeBorrowService) GetRecord(ctx context.Context, recordID uuid.UUID, actor borrows.Actor) (*borrows.BorrowRecordDTO, error) {
	return f.getFn(ctx, recordID, actor)
}

func (f *fakeBorrowService) ListRecords(ctx context.Context, input borrows.ListInput) (pagination.Page[borrows.BorrowRecordDTO], error) {
	return f.listFn(ctx, input)
}

type fakeSettingsService struct {
	rate    decimal.Decimal
	setErr  error
	setRate decimal.Decimal
	setBy   *uuid.UUID
}

func (f *fakeSettingsService) DailyFineRate(context.Context) (decimal.Decimal, error) {
	return f.rate, nil
}

func (f *fakeSettingsService) SetDailyFineRate(_ context.Context, rate decimal.Decimal, updatedBy *uuid.UUID) (decimal.Decimal, error) {
	if f.setErr != nil {
		return decimal.Zero, f.setErr
	}
	f.setRate = rate
	f.setBy = updatedBy
	f.rate = rate
	return rate, nil
}

type fakeReviewService struct {
	createFn func(ctx context.Context, userID, bookID uuid.UUID, input reviews.ReviewInput) (*reviews.ReviewDTO, error)
	deleteFn func(ctx context.Context, reviewID uuid.UUID, actor reviews.Actor) error
}

func (f *fakeReviewService) ListForBook(context.Context, uuid.UUID, string, int) (pagination.Page[reviews.ReviewDTO], error) {
	return pagination.Page[reviews.ReviewDTO]{Items: []reviews.ReviewDTO{}}, nil
}

func (f *fakeReviewService) CanReview(context.Context, uuid.UUID, uuid.UUID) (bool, error) {
	return true, nil
}

func (f *fakeReviewService) Create(ctx context.Context, userID, bookID uuid.UUID, input reviews.ReviewInput) (*reviews.ReviewDTO, error) {
	return f.createFn(ctx, userID, bookID, input)
}

func (f *fakeReviewService) Update(context.Context, uuid.UUID, reviews.Actor, reviews.ReviewInput) (*reviews.ReviewDTO, error) {
	return &reviews.ReviewDTO{}, nil
}

func (f *fakeReviewService) Delete(ctx context.Context, reviewID uuid.UUID, actor reviews.Actor) error {
	return f.deleteFn(ctx, reviewID, actor)
}

type fakeReportService struct {
	exportFn func(ctx context.Context, w io.Writer, format reports.Format, filter reports.ExportFilter) (int, error)
}

func (f *fakeReportService) Summary(context.Context) (*reports.SummaryDTO, error) {
	return &reports.SummaryDTO{TotalBooks: 3}, nil
}

func (f *fakeReportService) PopularBooks(context.Context, int) ([]reports.PopularBookDTO, error) {
	return []reports.PopularBookDTO{}, nil
}

func (f *fakeReportService) GenreBreakdown(context.Context) ([]reports.GenreStatDTO, error) {
	return []reports.GenreStatDTO{}, nil
}

func (f *fakeReportService) Recommendations(context.Context, uuid.UUID, int) ([]books.BookDTO, error) {
	return []books.BookDTO{}, nil
}

func (f *fakeReportService) Export(ctx context.Context, w io.Writer, format reports.Format, filter reports.ExportFilter) (int, error) {
	return f.exportFn(ctx, w, format, filter)
}
