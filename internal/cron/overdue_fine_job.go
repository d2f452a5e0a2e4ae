package cron

import (
	"context"
	"fmt"

	"github.com/campusshelf/library-backend/internal/borrows"
	"github.com/campusshelf/library-backend/pkg/logger"
	"github.com/shopspring/decimal"
)

type fineRecalculator interface {
	RecalculateOverdueFines(ctx context.Context, rateOverride *decimal.Decimal) ([]borrows.FineRecalculation, error)
}

type OverdueFineJobParams struct {
	Logger *logger.Logger
	Fines  fineRecalculator
}

// NewOverdueFineJob refreshes the stored fine of every overdue loan at the
// current daily rate.
func NewOverdueFineJob(params OverdueFineJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Fines == nil {
		return nil, fmt.Errorf("fine recalculator required")
	}
	return &overdueFineJob{logg: params.Logger, fines: params.Fines}, nil
}

type overdueFineJob struct {
	logg  *logger.Logger
	fines fineRecalculator
}

func (j *overdueFineJob) Name() string { return "overdue-fines" }

func (j *overdueFineJob) Run(ctx context.Context) error {
	results, err := j.fines.RecalculateOverdueFines(ctx, nil)
	updated := 0
	for _, r := range results {
		if r.Updated {
			updated++
		}
	}
	if err != nil {
		return fmt.Errorf("overdue fines: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"overdue_records": len(results),
		"fines_updated":   updated,
	})
	j.logg.Info(logCtx, "overdue fines recalculated")
	return nil
}
