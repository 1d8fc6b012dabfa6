package dre

import (
	"github.com/financo-app/financo/internal/variance"
)

// Comparison row labels, in statement order.
const (
	LabelRevenue         = "Receitas"
	LabelCost            = "Custos"
	LabelExpense         = "Despesas"
	LabelOperatingProfit = "Resultado Operacional"
	LabelNetResult       = "Resultado Líquido"
)

// Compare lines up the totals of two periods and returns one variance row
// per figure. Cost and Expense carry the positive-magnitude convention, so
// a negative difference there means the figure shrank; the rows report raw
// signed numbers and leave good/bad colouring to the presentation layer.
func Compare(periodA, periodB Statement) []variance.Entry {
	a, b := periodA.Totals, periodB.Totals
	return []variance.Entry{
		variance.Compute(LabelRevenue, a.Revenue, b.Revenue),
		variance.Compute(LabelCost, a.Cost, b.Cost),
		variance.Compute(LabelExpense, a.Expense, b.Expense),
		variance.Compute(LabelOperatingProfit, a.OperatingProfit, b.OperatingProfit),
		variance.Compute(LabelNetResult, a.NetResult, b.NetResult),
	}
}
