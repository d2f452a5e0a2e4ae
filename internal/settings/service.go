package settings

import (
	"context"
	"strings"

	"github.com/campusshelf/library-backend/pkg/db"
	"github.com/campusshelf/library-backend/pkg/db/models"
	pkgerrors "github.com/campusshelf/library-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// KeyDailyFineAmount stores the per-day overdue fine.
	KeyDailyFineAmount = "daily_fine_amount"

	dailyFineDescription = "Fine charged per day a book is overdue"
)

// RateSource supplies the current daily fine rate to the lending flows.
type RateSource interface {
	DailyFineRate(ctx context.Context) (decimal.Decimal, error)
}

// Service exposes typed access to system settings.
type Service interface {
	RateSource
	SetDailyFineRate(ctx context.Context, rate decimal.Decimal, updatedBy *uuid.UUID) (decimal.Decimal, error)
}

type service struct {
	repo        *Repository
	defaultRate decimal.Decimal
}

// NewService builds the settings service. defaultRate is returned while no
// row has been stored yet.
func NewService(repo *Repository, defaultRate decimal.Decimal) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "settings repo is required")
	}
	if defaultRate.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "default fine rate must not be negative")
	}
	return &service{repo: repo, defaultRate: defaultRate}, nil
}

func (s *service) DailyFineRate(ctx context.Context) (decimal.Decimal, error) {
	row, err := s.repo.Find(ctx, KeyDailyFineAmount)
	if err != nil {
		if db.IsNotFound(err) {
			return s.defaultRate, nil
		}
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load daily fine amount")
	}
	rate, err := decimal.NewFromString(strings.TrimSpace(row.Value))
	if err != nil || rate.IsNegative() {
		return s.defaultRate, nil
	}
	return rate, nil
}

func (s *service) SetDailyFineRate(ctx context.Context, rate decimal.Decimal, updatedBy *uuid.UUID) (decimal.Decimal, error) {
	if rate.IsNegative() {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "fine amount must be zero or greater")
	}
	rate = rate.Round(2)
	desc := dailyFineDescription
	row := &models.SystemConfig{
		Key:         KeyDailyFineAmount,
		Value:       rate.StringFixed(2),
		Description: &desc,
		UpdatedBy:   updatedBy,
	}
	if err := s.repo.Upsert(ctx, row); err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store daily fine amount")
	}
	return rate, nil
}

// Static is a fixed RateSource. RecalculateOverdueFines uses it for an admin
// supplied rate; tests use it to pin the rate.
type Static decimal.Decimal

func (s Static) DailyFineRate(context.Context) (decimal.Decimal, error) {
	return decimal.Decimal(s), nil
}
