package reports

import (
	"github.com/financo-app/financo/internal/cashflow"
	"github.com/financo-app/financo/internal/dre"
	"github.com/financo-app/financo/internal/variance"
)

// TimingNote is the mandatory explanation attached to every accrual-vs-cash
// comparison. The gap between the two bases is a timing artefact, not an
// inconsistency, and the output must say so.
const TimingNote = "As diferenças decorrem do regime de apuração: o DRE reconhece " +
	"receitas e despesas por competência, enquanto o fluxo de caixa considera o " +
	"momento da liquidação."

// Accrual-vs-cash row labels.
const (
	LabelRevenueVsInflow = "Receitas (competência) vs Entradas realizadas"
	LabelSpendVsOutflow  = "Custos e Despesas (competência) vs Saídas realizadas"
	LabelResultVsBalance = "Resultado Líquido vs Saldo final realizado"
)

// CompareAccrualToCash aligns the accrual-basis statement against the
// cash-basis timeline for the same period: revenue vs realized inflow,
// cost plus expense vs realized outflow, net result vs final realized
// balance. Returns the rows plus the timing note.
func CompareAccrualToCash(accrual dre.Statement, cash cashflow.Statement) ([]variance.Entry, string) {
	spend := accrual.Totals.Cost.Add(accrual.Totals.Expense)
	rows := []variance.Entry{
		variance.Compute(LabelRevenueVsInflow, accrual.Totals.Revenue, cash.TotalInflowRealized),
		variance.Compute(LabelSpendVsOutflow, spend, cash.TotalOutflowRealized),
		variance.Compute(LabelResultVsBalance, accrual.Totals.NetResult, cash.FinalRealized),
	}
	return rows, TimingNote
}
