package types

import (
	"github.com/shopspring/decimal"
)

// Money is a decimal amount that always serializes with two fractional digits.
// It decodes from either a JSON number or a JSON string.
type Money struct {
	decimal.Decimal
}

func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d.Round(2)}
}

// MarshalJSON renders the amount as a quoted fixed-point string, e.g. "2.00".
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.StringFixed(2) + `"`), nil
}

func (m Money) String() string {
	return m.StringFixed(2)
}
