package http

import (
	"strings"

	"github.com/shopspring/decimal"
)

// formatAmount renders v the way the back-office users read numbers: pt-BR
// separators, two decimal places. It works on the decimal's own digits so
// amounts never round-trip through float64.
func formatAmount(v decimal.Decimal) string {
	s := v.StringFixed(2)
	negative := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, fracPart, _ := strings.Cut(s, ".")

	var b strings.Builder
	b.Grow(len(s) + len(intPart)/3 + 1)
	if negative {
		b.WriteByte('-')
	}
	for i := 0; i < len(intPart); i++ {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteByte(intPart[i])
	}
	b.WriteByte(',')
	b.WriteString(fracPart)
	return b.String()
}
