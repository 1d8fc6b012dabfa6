package dre

import (
	"github.com/shopspring/decimal"

	"github.com/financo-app/financo/internal/coa"
	"github.com/financo-app/financo/internal/ledger"
)

// Options narrows the aggregation beyond the period filter.
type Options struct {
	CompanyID    int64
	CostCenterID *int64
}

// Aggregate sums ledger entries into the income statement for one company
// and period. Entries are filtered (company, optional cost center, date
// range, cancelled excluded), classified against the chart, summed per
// analytic account and rolled up parent by parent. Every chart account
// produces a row; empty categories render as zero instead of disappearing.
func Aggregate(lines []ledger.LedgerLine, tree *coa.Tree, period ledger.Period, opts Options) (Statement, error) {
	if opts.CompanyID <= 0 {
		return Statement{}, ErrCompanyRequired
	}
	if err := period.Validate(); err != nil {
		return Statement{}, ErrInvalidPeriod
	}

	filtered := make([]ledger.LedgerLine, 0, len(lines))
	for _, line := range lines {
		if line.CompanyID != opts.CompanyID {
			continue
		}
		if !period.Contains(line.Date) {
			continue
		}
		if opts.CostCenterID != nil {
			if line.CostCenterID == nil || *line.CostCenterID != *opts.CostCenterID {
				continue
			}
		}
		filtered = append(filtered, line)
	}

	cls := coa.Classify(filtered, tree)

	// Signed sum per account, postings first, then roll up to ancestors.
	sums := make(map[int64]decimal.Decimal, tree.Len())
	for accountID, entries := range cls.ByAccount {
		var sum decimal.Decimal
		for _, entry := range entries {
			sum = sum.Add(entry.Amount)
		}
		sums[accountID] = sums[accountID].Add(sum)
		for _, ancestor := range tree.Ancestors(accountID) {
			sums[ancestor] = sums[ancestor].Add(sum)
		}
	}

	st := Statement{
		CompanyID:         opts.CompanyID,
		Period:            period,
		Revenue:           []Line{},
		Cost:              []Line{},
		Expense:           []Line{},
		Other:             []Line{},
		Totals:            zeroTotals(),
		UnclassifiedCount: cls.Unclassified,
	}

	appendLine := func(acc ledger.ChartAccount, sum decimal.Decimal) {
		row := Line{
			AccountCode: acc.Code,
			Description: acc.Description,
			Type:        acc.Type,
			Level:       acc.Level,
			Value:       sectionValue(acc.Type, sum),
		}
		switch acc.Type {
		case ledger.TypeRevenue:
			st.Revenue = append(st.Revenue, row)
		case ledger.TypeCost:
			st.Cost = append(st.Cost, row)
		case ledger.TypeExpense:
			st.Expense = append(st.Expense, row)
		default:
			st.Other = append(st.Other, row)
		}
		if acc.ParentID == nil {
			switch acc.Type {
			case ledger.TypeRevenue:
				st.Totals.Revenue = st.Totals.Revenue.Add(row.Value)
			case ledger.TypeCost:
				st.Totals.Cost = st.Totals.Cost.Add(row.Value)
			case ledger.TypeExpense:
				st.Totals.Expense = st.Totals.Expense.Add(row.Value)
			default:
				st.Totals.Other = st.Totals.Other.Add(row.Value)
			}
		}
	}

	for _, id := range tree.Ordered() {
		acc, _ := tree.Account(id)
		appendLine(acc, sums[id])
	}
	if sum, ok := sums[coa.UnclassifiedID]; ok {
		appendLine(coa.UnclassifiedAccount(), sum)
	}

	st.Totals.OperatingProfit = st.Totals.Revenue.Sub(st.Totals.Cost).Sub(st.Totals.Expense)
	st.Totals.NetResult = st.Totals.OperatingProfit.Add(st.Totals.Other)
	return st, nil
}

// sectionValue applies the display convention: outflow sections flip the
// signed sum into a positive magnitude.
func sectionValue(accType ledger.AccountType, sum decimal.Decimal) decimal.Decimal {
	switch accType {
	case ledger.TypeCost, ledger.TypeExpense:
		return sum.Neg()
	default:
		return sum
	}
}
