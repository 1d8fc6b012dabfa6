// Package variance computes labelled comparisons between two report values.
package variance

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Entry is one comparison row. Difference is ValueA - ValueB and
// PercentDifference is Difference / |ValueB| * 100, or zero when ValueB is
// zero. The sign is reported raw; good/bad semantics belong to the caller.
type Entry struct {
	Label             string          `json:"label"`
	ValueA            decimal.Decimal `json:"value_a"`
	ValueB            decimal.Decimal `json:"value_b"`
	Difference        decimal.Decimal `json:"difference"`
	PercentDifference decimal.Decimal `json:"percent_difference"`
}

// Compute builds an Entry applying the division-by-zero guard.
func Compute(label string, a, b decimal.Decimal) Entry {
	diff := a.Sub(b)
	pct := decimal.Zero
	if !b.IsZero() {
		pct = diff.Div(b.Abs()).Mul(hundred).Round(2)
	}
	return Entry{
		Label:             label,
		ValueA:            a,
		ValueB:            b,
		Difference:        diff,
		PercentDifference: pct,
	}
}
