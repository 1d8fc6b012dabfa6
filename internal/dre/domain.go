// Package dre builds the income statement (Demonstrativo de Resultado do
// Exercício) from classified ledger entries.
package dre

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/financo-app/financo/internal/ledger"
)

// Line is one rendered statement row. Value follows the display
// convention: Revenue rows keep the signed sum of their postings, Cost and
// Expense rows carry positive magnitudes, Other rows stay signed.
type Line struct {
	AccountCode string             `json:"account_code"`
	Description string             `json:"description"`
	Type        ledger.AccountType `json:"type"`
	Level       int                `json:"level"`
	Value       decimal.Decimal    `json:"value"`
}

// Totals holds the statement roll-up. Cost and Expense are stored as
// positive magnitudes and applied as subtractions:
//
//	OperatingProfit = Revenue - Cost - Expense
//	NetResult       = OperatingProfit + Other
type Totals struct {
	Revenue         decimal.Decimal `json:"total_revenue"`
	Cost            decimal.Decimal `json:"total_cost"`
	Expense         decimal.Decimal `json:"total_expense"`
	Other           decimal.Decimal `json:"total_other"`
	OperatingProfit decimal.Decimal `json:"operating_profit"`
	NetResult       decimal.Decimal `json:"net_result"`
}

// Add sums another Totals into the receiver, field by field. Used by the
// consolidator; addition keeps the operation order-independent.
func (t Totals) Add(other Totals) Totals {
	return Totals{
		Revenue:         t.Revenue.Add(other.Revenue),
		Cost:            t.Cost.Add(other.Cost),
		Expense:         t.Expense.Add(other.Expense),
		Other:           t.Other.Add(other.Other),
		OperatingProfit: t.OperatingProfit.Add(other.OperatingProfit),
		NetResult:       t.NetResult.Add(other.NetResult),
	}
}

// Statement is the aggregator output for one company and period. Rows are
// structural: every account in the chart appears in its section even with
// zero postings.
type Statement struct {
	CompanyID         int64         `json:"company_id"`
	Period            ledger.Period `json:"period"`
	Revenue           []Line        `json:"revenue"`
	Cost              []Line        `json:"cost"`
	Expense           []Line        `json:"expense"`
	Other             []Line        `json:"other"`
	Totals            Totals        `json:"totals"`
	UnclassifiedCount int           `json:"unclassified_count"`
}

var (
	// ErrCompanyRequired rejects an aggregation without a company filter.
	ErrCompanyRequired = errors.New("dre: empresa obrigatória")
	// ErrInvalidPeriod rejects an inverted or empty date range.
	ErrInvalidPeriod = errors.New("dre: período inválido")
)

// zeroTotals returns Totals with every field initialised. decimal.Decimal's
// zero value marshals as 0 already; this keeps explicit zeros in place for
// arithmetic clarity.
func zeroTotals() Totals {
	return Totals{
		Revenue:         decimal.Zero,
		Cost:            decimal.Zero,
		Expense:         decimal.Zero,
		Other:           decimal.Zero,
		OperatingProfit: decimal.Zero,
		NetResult:       decimal.Zero,
	}
}
