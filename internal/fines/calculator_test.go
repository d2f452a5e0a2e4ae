package fines

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCalculateThreeDaysLate(t *testing.T) {
	due := date(2024, 1, 1)
	returned := date(2024, 1, 4)

	assert.Equal(t, 3, DaysOverdue(due, returned))
	assert.Equal(t, "3.00", Calculate(due, returned, decimal.RequireFromString("1.00")).StringFixed(2))
}

func TestOnTimeReturnHasNoFine(t *testing.T) {
	due := date(2024, 1, 10)

	for _, asOf := range []time.Time{date(2024, 1, 5), due} {
		got := Assess(&due, asOf, decimal.NewFromInt(1))
		assert.False(t, got.IsOverdue)
		assert.Equal(t, 0, got.DaysOverdue)
		assert.Equal(t, "0.00", got.FineAmount.StringFixed(2))
	}
}

func TestPartialDaysAreFloored(t *testing.T) {
	due := date(2024, 3, 1)
	asOf := due.Add(47 * time.Hour)

	assert.Equal(t, 1, DaysOverdue(due, asOf))
	assert.Equal(t, "0.75", Calculate(due, asOf, decimal.RequireFromString("0.75")).StringFixed(2))
}

func TestCalculateRoundsToCents(t *testing.T) {
	due := date(2024, 3, 1)
	asOf := date(2024, 3, 4)

	got := Calculate(due, asOf, decimal.RequireFromString("0.333"))
	assert.True(t, got.Equal(decimal.RequireFromString("1.00")), "got %s", got)
}

func TestNegativeRateTreatedAsZero(t *testing.T) {
	due := date(2024, 3, 1)
	got := Calculate(due, date(2024, 3, 9), decimal.NewFromInt(-5))
	assert.True(t, got.IsZero())
}

func TestAssessWithoutDueDate(t *testing.T) {
	got := Assess(nil, time.Now(), decimal.NewFromInt(3))
	assert.False(t, got.IsOverdue)
	assert.True(t, got.FineAmount.IsZero())
}

func TestDueDateIsEndOfDay(t *testing.T) {
	approved := time.Date(2024, 5, 2, 9, 30, 0, 0, time.UTC)
	due := DueDate(approved, 7*24*time.Hour)

	require.Equal(t, time.Date(2024, 5, 9, 23, 59, 59, 0, time.UTC), due)
}

func TestEndOfDayConvertsToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	local := time.Date(2024, 5, 3, 2, 0, 0, 0, loc)

	assert.Equal(t, time.Date(2024, 5, 2, 23, 59, 59, 0, time.UTC), EndOfDay(local))
}

func TestCalculateIsDeterministic(t *testing.T) {
	due := date(2024, 2, 1)
	asOf := date(2024, 2, 20)
	rate := decimal.RequireFromString("1.25")

	first := Calculate(due, asOf, rate)
	second := Calculate(due, asOf, rate)
	assert.True(t, first.Equal(second))
	assert.Equal(t, "23.75", first.StringFixed(2))
}
