package borrows

import (
	"context"
	"strings"
	"time"

	"github.com/campusshelf/library-backend/internal/books"
	"github.com/campusshelf/library-backend/internal/fines"
	"github.com/campusshelf/library-backend/internal/settings"
	"github.com/campusshelf/library-backend/pkg/db"
	"github.com/campusshelf/library-backend/pkg/db/models"
	"github.com/campusshelf/library-backend/pkg/enums"
	pkgerrors "github.com/campusshelf/library-backend/pkg/errors"
	"github.com/campusshelf/library-backend/pkg/logger"
	"github.com/campusshelf/library-backend/pkg/metrics"
	"github.com/campusshelf/library-backend/pkg/pagination"
	"github.com/campusshelf/library-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

const (
	defaultLoanPeriod  = 7 * 24 * time.Hour
	defaultMaxRenewals = 2
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type userLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// ServiceParams groups dependencies for the borrow service.
type ServiceParams struct {
	Repo        *Repository
	Books       *books.Repository
	Users       userLoader
	Rates       settings.RateSource
	Tx          txRunner
	Logger      *logger.Logger
	Metrics     *metrics.LendingMetrics
	LoanPeriod  time.Duration
	MaxRenewals int
	Now         func() time.Time
}

// Service enforces the borrow state machine PENDING -> BORROWED -> RETURNED
// (PENDING -> deleted on rejection) and keeps available_copies consistent.
type Service interface {
	CheckEligibility(ctx context.Context, userID, bookID uuid.UUID) (Eligibility, error)
	RequestBorrow(ctx context.Context, userID, bookID uuid.UUID) (*BorrowRecordDTO, Eligibility, error)
	Approve(ctx context.Context, recordID, adminID uuid.UUID) (*BorrowRecordDTO, error)
	Reject(ctx context.Context, recordID, adminID uuid.UUID) error
	Return(ctx context.Context, recordID uuid.UUID, actor Actor) (*ReturnResult, error)
	Renew(ctx context.Context, recordID uuid.UUID, actor Actor) (*BorrowRecordDTO, error)
	RecalculateOverdueFines(ctx context.Context, rateOverride *decimal.Decimal) ([]FineRecalculation, error)
	GetRecord(ctx context.Context, recordID uuid.UUID, actor Actor) (*BorrowRecordDTO, error)
	ListRecords(ctx context.Context, input ListInput) (pagination.Page[BorrowRecordDTO], error)
}

type service struct {
	repo        *Repository
	books       *books.Repository
	users       userLoader
	rates       settings.RateSource
	tx          txRunner
	logg        *logger.Logger
	metrics     *metrics.LendingMetrics
	loanPeriod  time.Duration
	maxRenewals int
	now         func() time.Time
}

// NewService builds a borrow service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "borrow repo is required")
	}
	if params.Books == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "book repo is required")
	}
	if params.Users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user loader is required")
	}
	if params.Rates == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "fine rate source is required")
	}
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction runner is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	loan := params.LoanPeriod
	if loan <= 0 {
		loan = defaultLoanPeriod
	}
	maxRenewals := params.MaxRenewals
	if maxRenewals < 0 {
		maxRenewals = defaultMaxRenewals
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:        params.Repo,
		books:       params.Books,
		users:       params.Users,
		rates:       params.Rates,
		tx:          params.Tx,
		logg:        logg,
		metrics:     params.Metrics,
		loanPeriod:  loan,
		maxRenewals: maxRenewals,
		now:         now,
	}, nil
}

func (s *service) CheckEligibility(ctx context.Context, userID, bookID uuid.UUID) (Eligibility, error) {
	if userID == uuid.Nil || bookID == uuid.Nil {
		return Eligibility{}, pkgerrors.New(pkgerrors.CodeValidation, "user id and book id are required")
	}

	book, err := s.books.FindByID(ctx, bookID)
	if err != nil {
		if db.IsNotFound(err) {
			return Eligibility{}, pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
		}
		return Eligibility{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load book")
	}
	if !book.IsActive {
		return ineligible(ReasonBookInactive), nil
	}
	if book.AvailableCopies <= 0 {
		return ineligible(ReasonNoCopies), nil
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if db.IsNotFound(err) {
			return Eligibility{}, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return Eligibility{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	switch user.Status {
	case enums.UserStatusApproved:
	case enums.UserStatusPending:
		return ineligible(ReasonAccountPending), nil
	default:
		return ineligible(ReasonAccountInactive), nil
	}

	open, err := s.repo.HasOpen(ctx, userID, bookID)
	if err != nil {
		return Eligibility{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check open borrows")
	}
	if open {
		return ineligible(ReasonAlreadyRequested), nil
	}
	return eligible(), nil
}

// RequestBorrow creates a PENDING record. No copy is reserved until approval.
func (s *service) RequestBorrow(ctx context.Context, userID, bookID uuid.UUID) (*BorrowRecordDTO, Eligibility, error) {
	check, err := s.CheckEligibility(ctx, userID, bookID)
	if err != nil {
		return nil, Eligibility{}, err
	}
	if !check.Eligible {
		return nil, check, refusal(check)
	}

	rec := &models.BorrowRecord{
		UserID:     userID,
		BookID:     bookID,
		Status:     enums.BorrowStatusPending,
		BorrowDate: s.now().UTC(),
		FineAmount: decimal.Zero,
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		if db.IsUniqueViolation(err, "borrow_records_open_user_book_key") {
			dup := ineligible(ReasonAlreadyRequested)
			return nil, dup, refusal(dup)
		}
		if db.IsForeignKeyViolation(err) {
			return nil, Eligibility{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "book not found")
		}
		return nil, Eligibility{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create borrow record")
	}

	s.metrics.IncTransition(metrics.TransitionRequest)
	s.logg.Info(s.recordCtx(ctx, rec), "borrow requested")
	dto := NewBorrowRecordDTO(rec)
	return &dto, check, nil
}

// Approve marks the record BORROWED and takes one copy in a single
// transaction. When no copy is left the transaction rolls back and the record
// stays PENDING.
func (s *service) Approve(ctx context.Context, recordID, adminID uuid.UUID) (*BorrowRecordDTO, error) {
	var approved *models.BorrowRecord
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		rec, err := loadRecord(ctx, repo, recordID)
		if err != nil {
			return err
		}
		if rec.Status != enums.BorrowStatusPending {
			return stateConflict("only pending requests can be approved", rec.Status)
		}

		at := s.now().UTC()
		due := fines.DueDate(at, s.loanPeriod)
		ok, err := repo.MarkBorrowed(ctx, rec.ID, adminID, at, due)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark borrowed")
		}
		if !ok {
			return stateConflict("request is no longer pending", "")
		}

		reserved, err := s.books.WithTx(tx).ReserveCopy(ctx, rec.BookID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve copy")
		}
		if !reserved {
			return pkgerrors.New(pkgerrors.CodeStateConflict, ReasonNoCopies).
				WithDetails(map[string]any{"reason": ReasonNoCopies, "status": enums.BorrowStatusPending})
		}

		approved, err = repo.FindDetailed(ctx, rec.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload record")
		}
		return nil
	})
	if err != nil {
		return nil, s.transitionFailed(ctx, metrics.TransitionApprove, recordID, err)
	}

	s.metrics.IncTransition(metrics.TransitionApprove)
	logCtx := s.logg.WithField(s.recordCtx(ctx, approved), "admin_id", adminID.String())
	s.logg.Info(logCtx, "borrow approved")
	dto := NewBorrowRecordDTO(approved)
	return &dto, nil
}

// Reject deletes a PENDING request. The audit trail is the log line.
func (s *service) Reject(ctx context.Context, recordID, adminID uuid.UUID) error {
	rec, err := loadRecord(ctx, s.repo, recordID)
	if err != nil {
		return err
	}
	if rec.Status != enums.BorrowStatusPending {
		return s.transitionFailed(ctx, metrics.TransitionReject, recordID,
			stateConflict("only pending requests can be rejected", rec.Status))
	}
	deleted, err := s.repo.DeletePending(ctx, recordID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete borrow request")
	}
	if !deleted {
		return s.transitionFailed(ctx, metrics.TransitionReject, recordID,
			stateConflict("request is no longer pending", ""))
	}

	s.metrics.IncTransition(metrics.TransitionReject)
	logCtx := s.logg.WithField(s.recordCtx(ctx, rec), "admin_id", adminID.String())
	s.logg.Info(logCtx, "borrow request rejected")
	return nil
}

// Return closes a BORROWED record, assesses the fine at the current daily rate
// and puts the copy back on the shelf, all in one transaction.
func (s *service) Return(ctx context.Context, recordID uuid.UUID, actor Actor) (*ReturnResult, error) {
	rate, err := s.rates.DailyFineRate(ctx)
	if err != nil {
		return nil, err
	}

	var (
		returned   *models.BorrowRecord
		assessment fines.Assessment
	)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		rec, err := loadRecord(ctx, repo, recordID)
		if err != nil {
			return err
		}
		if !actor.Admin && rec.UserID != actor.ID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "record belongs to another user")
		}
		if rec.Status != enums.BorrowStatusBorrowed {
			return stateConflict("only borrowed books can be returned", rec.Status)
		}

		at := s.now().UTC()
		assessment = fines.Assess(rec.DueDate, at, rate)
		ok, err := repo.MarkReturned(ctx, rec.ID, actor.ID, at, assessment.FineAmount)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark returned")
		}
		if !ok {
			return stateConflict("record is no longer borrowed", "")
		}

		released, err := s.books.WithTx(tx).ReleaseCopy(ctx, rec.BookID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "release copy")
		}
		if !released {
			s.logg.Warn(s.recordCtx(ctx, rec), "book already at total copies; available count left unchanged")
		}

		returned, err = repo.FindDetailed(ctx, rec.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload record")
		}
		return nil
	})
	if err != nil {
		return nil, s.transitionFailed(ctx, metrics.TransitionReturn, recordID, err)
	}

	s.metrics.IncTransition(metrics.TransitionReturn)
	logCtx := s.logg.WithFields(s.recordCtx(ctx, returned), map[string]any{
		"returned_by":  actor.ID.String(),
		"days_overdue": assessment.DaysOverdue,
		"fine_amount":  assessment.FineAmount.StringFixed(2),
	})
	s.logg.Info(logCtx, "book returned")
	return &ReturnResult{
		Record:      NewBorrowRecordDTO(returned),
		IsOverdue:   assessment.IsOverdue,
		DaysOverdue: assessment.DaysOverdue,
		FineAmount:  types.NewMoney(assessment.FineAmount),
	}, nil
}

// Renew extends the due date by one loan period. Only the borrower may renew,
// never once overdue, and at most maxRenewals times.
func (s *service) Renew(ctx context.Context, recordID uuid.UUID, actor Actor) (*BorrowRecordDTO, error) {
	rec, err := loadRecord(ctx, s.repo, recordID)
	if err != nil {
		return nil, err
	}
	if rec.UserID != actor.ID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the borrower can renew")
	}
	if rec.Status != enums.BorrowStatusBorrowed || rec.DueDate == nil {
		return nil, s.transitionFailed(ctx, metrics.TransitionRenew, recordID,
			stateConflict("only borrowed books can be renewed", rec.Status))
	}
	now := s.now().UTC()
	if now.After(*rec.DueDate) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "overdue books cannot be renewed").
			WithDetails(map[string]any{"reason": "overdue"})
	}
	if rec.RenewalCount >= s.maxRenewals {
		return nil, pkgerrors.Newf(pkgerrors.CodeStateConflict, "renewal limit of %d reached", s.maxRenewals).
			WithDetails(map[string]any{"reason": "renewal_limit", "max_renewals": s.maxRenewals})
	}

	due := fines.EndOfDay(rec.DueDate.Add(s.loanPeriod))
	ok, err := s.repo.ExtendDue(ctx, rec.ID, actor.ID, due, rec.RenewalCount)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "extend due date")
	}
	if !ok {
		return nil, s.transitionFailed(ctx, metrics.TransitionRenew, recordID,
			stateConflict("record changed while renewing", ""))
	}

	renewed, err := s.repo.FindDetailed(ctx, rec.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload record")
	}
	s.metrics.IncTransition(metrics.TransitionRenew)
	s.logg.Info(s.recordCtx(ctx, renewed), "loan renewed")
	dto := NewBorrowRecordDTO(renewed)
	return &dto, nil
}

// RecalculateOverdueFines recomputes the fine of every overdue BORROWED record
// and overwrites the stored amount. Updated reports whether the stored value
// changed, so a second run at the same instant and rate updates nothing.
// Per-record write failures are collected and do not stop the scan.
func (s *service) RecalculateOverdueFines(ctx context.Context, rateOverride *decimal.Decimal) ([]FineRecalculation, error) {
	source := s.rates
	if rateOverride != nil {
		if rateOverride.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "fine amount must be zero or greater")
		}
		source = settings.Static(*rateOverride)
	}
	rate, err := source.DailyFineRate(ctx)
	if err != nil {
		return nil, err
	}

	asOf := s.now().UTC()
	overdue, err := s.repo.ListOverdue(ctx, asOf)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list overdue records")
	}

	results := make([]FineRecalculation, 0, len(overdue))
	var errs error
	changed := 0
	for i := range overdue {
		rec := &overdue[i]
		assessment := fines.Assess(rec.DueDate, asOf, rate)
		result := FineRecalculation{
			RecordID:    rec.ID,
			DaysOverdue: assessment.DaysOverdue,
			FineAmount:  types.NewMoney(assessment.FineAmount),
		}
		if !rec.FineAmount.Equal(assessment.FineAmount) {
			ok, err := s.repo.UpdateFine(ctx, rec.ID, assessment.FineAmount)
			if err != nil {
				errs = multierr.Append(errs, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update fine for "+rec.ID.String()))
				continue
			}
			if !ok {
				// returned between the scan and the write
				continue
			}
			result.Updated = true
			changed++
		}
		results = append(results, result)
	}

	s.metrics.AddFinesUpdated(changed)
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"rate":     rate.StringFixed(2),
		"scanned":  len(overdue),
		"updated":  changed,
		"failures": len(multierr.Errors(errs)),
	})
	s.logg.Info(logCtx, "overdue fines recalculated")
	if errs != nil {
		return results, pkgerrors.Wrap(pkgerrors.CodeDependency, errs, "some fines could not be updated")
	}
	return results, nil
}

func (s *service) GetRecord(ctx context.Context, recordID uuid.UUID, actor Actor) (*BorrowRecordDTO, error) {
	if recordID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "record id is required")
	}
	rec, err := s.repo.FindDetailed(ctx, recordID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "borrow record not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load borrow record")
	}
	if !actor.Admin && rec.UserID != actor.ID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "borrow record not found")
	}
	dto := NewBorrowRecordDTO(rec)
	return &dto, nil
}

func (s *service) ListRecords(ctx context.Context, input ListInput) (pagination.Page[BorrowRecordDTO], error) {
	if input.Status != nil && !input.Status.IsValid() {
		return pagination.Page[BorrowRecordDTO]{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
	}
	cursor, err := pagination.ParseCursor(strings.TrimSpace(input.Cursor))
	if err != nil {
		return pagination.Page[BorrowRecordDTO]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.List(ctx, input, cursor)
	if err != nil {
		return pagination.Page[BorrowRecordDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list borrow records")
	}
	dtos := make([]BorrowRecordDTO, len(rows))
	for i := range rows {
		dtos[i] = NewBorrowRecordDTO(&rows[i])
	}
	return pagination.BuildPage(dtos, input.Limit, func(r BorrowRecordDTO) pagination.Cursor {
		return pagination.Cursor{CreatedAt: r.CreatedAt, ID: r.ID}
	}), nil
}

func (s *service) recordCtx(ctx context.Context, rec *models.BorrowRecord) context.Context {
	return s.logg.WithFields(s.logg.WithBorrowRecordID(ctx, rec.ID.String()), map[string]any{
		"user_id": rec.UserID.String(),
		"book_id": rec.BookID.String(),
	})
}

// transitionFailed normalizes an error from a lifecycle transition and counts
// state conflicts.
func (s *service) transitionFailed(ctx context.Context, transition string, recordID uuid.UUID, err error) error {
	typed := pkgerrors.As(err)
	if typed == nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, transition+" borrow record")
	}
	if typed.Code() == pkgerrors.CodeStateConflict {
		s.metrics.IncConflict(transition)
		logCtx := s.logg.WithFields(s.logg.WithBorrowRecordID(ctx, recordID.String()), map[string]any{
			"transition": transition,
			"reason":     typed.Message(),
		})
		s.logg.Warn(logCtx, "borrow transition refused")
	}
	return err
}

func loadRecord(ctx context.Context, repo *Repository, id uuid.UUID) (*models.BorrowRecord, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "record id is required")
	}
	rec, err := repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "borrow record not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load borrow record")
	}
	return rec, nil
}

func stateConflict(message string, current enums.BorrowStatus) error {
	details := map[string]any{}
	if current != "" {
		details["status"] = current
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict, message).WithDetails(details)
}

// refusal converts a failed eligibility check into the typed error callers see.
func refusal(check Eligibility) error {
	code := pkgerrors.CodeIneligible
	if check.Reason == ReasonAlreadyRequested {
		code = pkgerrors.CodeConflict
	}
	return pkgerrors.New(code, check.Reason).WithDetails(check)
}
