package cron

import (
	"context"
	"fmt"

	"github.com/campusshelf/library-backend/internal/reminders"
	"github.com/campusshelf/library-backend/pkg/logger"
)

type ReminderJobParams struct {
	Logger     *logger.Logger
	Dispatcher reminders.Dispatcher
}

// NewReminderJob emails due-soon and overdue borrowers once per cycle.
func NewReminderJob(params ReminderJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Dispatcher == nil {
		return nil, fmt.Errorf("reminder dispatcher required")
	}
	return &reminderJob{logg: params.Logger, dispatcher: params.Dispatcher}, nil
}

type reminderJob struct {
	logg       *logger.Logger
	dispatcher reminders.Dispatcher
}

func (j *reminderJob) Name() string { return "borrow-reminders" }

func (j *reminderJob) Run(ctx context.Context) error {
	summary, err := j.dispatcher.Run(ctx)
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"scanned": summary.Scanned,
		"sent":    summary.Sent,
		"skipped": summary.Skipped,
		"failed":  summary.Failed,
	})
	if err != nil {
		return fmt.Errorf("borrow reminders: %w", err)
	}
	j.logg.Info(logCtx, "borrow reminders complete")
	return nil
}
