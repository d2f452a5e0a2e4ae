// Package fines computes overdue fines. Everything here is pure: callers supply
// the due date, the observation date and the daily rate.
package fines

import (
	"time"

	"github.com/shopspring/decimal"
)

const day = 24 * time.Hour

// Assessment is the outcome of evaluating one loan at a point in time.
type Assessment struct {
	IsOverdue   bool            `json:"isOverdue"`
	DaysOverdue int             `json:"daysOverdue"`
	FineAmount  decimal.Decimal `json:"fineAmount"`
}

// DaysOverdue returns max(0, floor((asOf - due) / 24h)).
func DaysOverdue(due, asOf time.Time) int {
	elapsed := asOf.Sub(due)
	if elapsed <= 0 {
		return 0
	}
	return int(elapsed / day)
}

// Calculate returns days overdue times rate, rounded to two decimals.
// A negative rate is treated as zero.
func Calculate(due, asOf time.Time, rate decimal.Decimal) decimal.Decimal {
	if rate.IsNegative() {
		rate = decimal.Zero
	}
	days := DaysOverdue(due, asOf)
	return rate.Mul(decimal.NewFromInt(int64(days))).Round(2)
}

// Assess evaluates a loan. A nil due date never accrues a fine.
func Assess(due *time.Time, asOf time.Time, rate decimal.Decimal) Assessment {
	if due == nil {
		return Assessment{FineAmount: decimal.Zero.Round(2)}
	}
	days := DaysOverdue(*due, asOf)
	return Assessment{
		IsOverdue:   days > 0,
		DaysOverdue: days,
		FineAmount:  Calculate(*due, asOf, rate),
	}
}

// EndOfDay normalizes t to 23:59:59 UTC on the same calendar day.
func EndOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 23, 59, 59, 0, time.UTC)
}

// DueDate returns the end-of-day due date for a loan approved at approvedAt.
func DueDate(approvedAt time.Time, loanPeriod time.Duration) time.Time {
	return EndOfDay(approvedAt.Add(loanPeriod))
}
