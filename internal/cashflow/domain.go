// Package cashflow buckets bank movements into a daily timeline with
// realized and forecast running balances.
package cashflow

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/financo-app/financo/internal/ledger"
)

// Line is one day of the timeline. Realized columns only receive entries
// whose cash actually moved; everything else lands in the forecast
// columns. Daily balance is inflow minus outflow for the day; cumulative
// balances chain day over day, seeded from the opening balance.
type Line struct {
	Date               time.Time       `json:"date"`
	InflowRealized     decimal.Decimal `json:"inflow_realized"`
	InflowForecast     decimal.Decimal `json:"inflow_forecast"`
	OutflowRealized    decimal.Decimal `json:"outflow_realized"`
	OutflowForecast    decimal.Decimal `json:"outflow_forecast"`
	DailyRealized      decimal.Decimal `json:"daily_balance_realized"`
	DailyForecast      decimal.Decimal `json:"daily_balance_forecast"`
	CumulativeRealized decimal.Decimal `json:"cumulative_balance_realized"`
	CumulativeForecast decimal.Decimal `json:"cumulative_balance_forecast"`
}

// Statement is the aggregator output: the full daily timeline plus the
// totals downstream consumers read without re-deriving anything.
type Statement struct {
	Period               ledger.Period   `json:"period"`
	OpeningBalance       decimal.Decimal `json:"opening_balance"`
	Lines                []Line          `json:"lines"`
	TotalInflowRealized  decimal.Decimal `json:"total_inflow_realized"`
	TotalOutflowRealized decimal.Decimal `json:"total_outflow_realized"`
	TotalInflowForecast  decimal.Decimal `json:"total_inflow_forecast"`
	TotalOutflowForecast decimal.Decimal `json:"total_outflow_forecast"`
	FinalRealized        decimal.Decimal `json:"final_balance_realized"`
	FinalForecast        decimal.Decimal `json:"final_balance_forecast"`
}

// Options filters the movements feeding the timeline.
type Options struct {
	// CompanyID narrows to one company; nil means all companies.
	CompanyID *int64
	// BankAccountID narrows to one bank account. Required unless
	// Consolidated merges all accounts into a single timeline.
	BankAccountID *int64
	// Consolidated merges movements from every bank account of the
	// filtered companies before bucketing.
	Consolidated bool
	// OpeningBalance seeds the cumulative balances; zero when absent.
	OpeningBalance decimal.Decimal
}

var (
	// ErrInvalidPeriod rejects an inverted or empty date range.
	ErrInvalidPeriod = errors.New("cashflow: período inválido")
	// ErrBankAccountRequired rejects a non-consolidated timeline without a
	// bank account filter.
	ErrBankAccountRequired = errors.New("cashflow: conta bancária obrigatória quando não consolidado")
)
