package reminders

import (
	"context"
	"fmt"
	"time"

	"github.com/campusshelf/library-backend/internal/fines"
	"github.com/campusshelf/library-backend/internal/settings"
	"github.com/campusshelf/library-backend/pkg/db/models"
	pkgerrors "github.com/campusshelf/library-backend/pkg/errors"
	"github.com/campusshelf/library-backend/pkg/logger"
	"github.com/campusshelf/library-backend/pkg/mailer"
	"github.com/campusshelf/library-backend/pkg/metrics"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
)

const (
	outcomeSent    = "sent"
	outcomeSkipped = "skipped"
	outcomeFailed  = "failed"

	defaultDueSoonWindow = 48 * time.Hour
)

type recordStore interface {
	ListDueBy(ctx context.Context, cutoff time.Time) ([]models.BorrowRecord, error)
	MarkReminderSent(ctx context.Context, id uuid.UUID, at time.Time) error
}

// Options tunes which records get a reminder.
type Options struct {
	DueSoonWindow time.Duration
	// MinInterval suppresses a second reminder for the same record within the
	// window. Zero sends on every run.
	MinInterval time.Duration
	Now           func() time.Time
}

// Summary reports what one dispatch run did.
type Summary struct {
	Scanned int `json:"scanned"`
	DueSoon int `json:"dueSoon"`
	Overdue int `json:"overdue"`
	Sent    int `json:"sent"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// Dispatcher emails borrowers whose loans are due soon or overdue.
type Dispatcher interface {
	Run(ctx context.Context) (Summary, error)
}

type dispatcher struct {
	records recordStore
	sender  mailer.Sender
	rates   settings.RateSource
	logg    *logger.Logger
	metrics *metrics.LendingMetrics
	opts    Options
}

func NewDispatcher(records recordStore, sender mailer.Sender, rates settings.RateSource, logg *logger.Logger, m *metrics.LendingMetrics, opts Options) (Dispatcher, error) {
	if records == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "borrow records store is required")
	}
	if sender == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "mail sender is required")
	}
	if rates == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "fine rate source is required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	if opts.DueSoonWindow <= 0 {
		opts.DueSoonWindow = defaultDueSoonWindow
	}
	if opts.MinInterval < 0 {
		opts.MinInterval = 0
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &dispatcher{records: records, sender: sender, rates: rates, logg: logg, metrics: m, opts: opts}, nil
}

// Run sends one reminder per BORROWED record due within the window. A failed
// send is collected and the loop moves on; there is no retry.
func (d *dispatcher) Run(ctx context.Context) (Summary, error) {
	now := d.opts.Now().UTC()
	rate, err := d.rates.DailyFineRate(ctx)
	if err != nil {
		return Summary{}, err
	}
	rows, err := d.records.ListDueBy(ctx, now.Add(d.opts.DueSoonWindow))
	if err != nil {
		return Summary{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list records due for reminder")
	}

	var (
		summary = Summary{Scanned: len(rows)}
		errs    error
	)
	for i := range rows {
		if err := ctx.Err(); err != nil {
			errs = multierr.Append(errs, err)
			break
		}
		rec := &rows[i]
		kind := kindFor(*rec.DueDate, now)
		if kind == KindOverdue {
			summary.Overdue++
		} else {
			summary.DueSoon++
		}

		if d.recentlyReminded(rec, now) {
			summary.Skipped++
			d.metrics.IncReminder(kind, outcomeSkipped)
			continue
		}

		if err := d.send(ctx, rec, kind, now, rate); err != nil {
			summary.Failed++
			d.metrics.IncReminder(kind, outcomeFailed)
			errs = multierr.Append(errs, fmt.Errorf("reminder for %s: %w", rec.ID, err))
			logCtx := d.logg.WithFields(d.logg.WithBorrowRecordID(ctx, rec.ID.String()), map[string]any{"kind": kind})
			d.logg.Error(logCtx, "reminder failed", err)
			continue
		}
		summary.Sent++
		d.metrics.IncReminder(kind, outcomeSent)
	}

	logCtx := d.logg.WithFields(ctx, map[string]any{
		"scanned":  summary.Scanned,
		"due_soon": summary.DueSoon,
		"overdue":  summary.Overdue,
		"sent":     summary.Sent,
		"skipped":  summary.Skipped,
		"failed":   summary.Failed,
	})
	d.logg.Info(logCtx, "reminder run complete")

	if errs != nil {
		return summary, pkgerrors.Wrap(pkgerrors.CodeDependency, errs, "some reminders could not be sent")
	}
	return summary, nil
}

func (d *dispatcher) recentlyReminded(rec *models.BorrowRecord, now time.Time) bool {
	if d.opts.MinInterval == 0 || rec.LastReminderSent == nil {
		return false
	}
	return now.Sub(*rec.LastReminderSent) < d.opts.MinInterval
}

func (d *dispatcher) send(ctx context.Context, rec *models.BorrowRecord, kind string, now time.Time, rate decimal.Decimal) error {
	assessment := fines.Assess(rec.DueDate, now, rate)
	msg, err := buildMessage(rec, kind, now, assessment.DaysOverdue, assessment.FineAmount)
	if err != nil {
		return err
	}
	if err := d.sender.Send(ctx, msg); err != nil {
		return err
	}
	if err := d.records.MarkReminderSent(ctx, rec.ID, now); err != nil {
		return fmt.Errorf("stamp last_reminder_sent: %w", err)
	}
	return nil
}
