package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/campusshelf/library-backend/internal/borrows"
	"github.com/campusshelf/library-backend/internal/reminders"
	"github.com/campusshelf/library-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDispatcher struct {
	summary reminders.Summary
	err     error
	calls   int
}

func (s *stubDispatcher) Run(context.Context) (reminders.Summary, error) {
	s.calls++
	return s.summary, s.err
}

type stubFines struct {
	results  []borrows.FineRecalculation
	err      error
	override *decimal.Decimal
	calls    int
}

func (s *stubFines) RecalculateOverdueFines(_ context.Context, rate *decimal.Decimal) ([]borrows.FineRecalculation, error) {
	s.calls++
	s.override = rate
	return s.results, s.err
}

func TestReminderJobRunsDispatcher(t *testing.T) {
	dispatcher := &stubDispatcher{summary: reminders.Summary{Scanned: 3, Sent: 2, Skipped: 1}}
	job, err := NewReminderJob(ReminderJobParams{Logger: logger.Nop(), Dispatcher: dispatcher})
	require.NoError(t, err)
	assert.Equal(t, "borrow-reminders", job.Name())

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 1, dispatcher.calls)
}

func TestReminderJobPropagatesFailure(t *testing.T) {
	dispatcher := &stubDispatcher{err: errors.New("smtp down")}
	job, err := NewReminderJob(ReminderJobParams{Logger: logger.Nop(), Dispatcher: dispatcher})
	require.NoError(t, err)

	err = job.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp down")
}

func TestOverdueFineJobUsesCurrentRate(t *testing.T) {
	fines := &stubFines{results: []borrows.FineRecalculation{{Updated: true}, {Updated: false}}}
	job, err := NewOverdueFineJob(OverdueFineJobParams{Logger: logger.Nop(), Fines: fines})
	require.NoError(t, err)
	assert.Equal(t, "overdue-fines", job.Name())

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 1, fines.calls)
	assert.Nil(t, fines.override)
}

func TestOverdueFineJobPropagatesFailure(t *testing.T) {
	fines := &stubFines{err: errors.New("db gone")}
	job, err := NewOverdueFineJob(OverdueFineJobParams{Logger: logger.Nop(), Fines: fines})
	require.NoError(t, err)
	require.Error(t, job.Run(context.Background()))
}

func TestJobConstructorsRequireDependencies(t *testing.T) {
	_, err := NewReminderJob(ReminderJobParams{Dispatcher: &stubDispatcher{}})
	assert.Error(t, err)
	_, err = NewReminderJob(ReminderJobParams{Logger: logger.Nop()})
	assert.Error(t, err)
	_, err = NewOverdueFineJob(OverdueFineJobParams{Fines: &stubFines{}})
	assert.Error(t, err)
	_, err = NewOverdueFineJob(OverdueFineJobParams{Logger: logger.Nop()})
	assert.Error(t, err)
}
