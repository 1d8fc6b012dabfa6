package cashflow

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/financo-app/financo/internal/ledger"
)

type dayBucket struct {
	inflowRealized  decimal.Decimal
	inflowForecast  decimal.Decimal
	outflowRealized decimal.Decimal
	outflowForecast decimal.Decimal
}

// Aggregate buckets movements by calendar date and walks the period once,
// carrying two accumulators (realized, forecast). Cost is O(n) in
// movements plus O(d) in days spanned. Days without activity still emit a
// line carrying the cumulative balances forward, so the timeline has no
// gaps.
func Aggregate(movements []ledger.LedgerLine, period ledger.Period, opts Options) (Statement, error) {
	if err := period.Validate(); err != nil {
		return Statement{}, ErrInvalidPeriod
	}
	if !opts.Consolidated && opts.BankAccountID == nil {
		return Statement{}, ErrBankAccountRequired
	}

	buckets := make(map[time.Time]*dayBucket)
	for _, mv := range movements {
		if mv.Cancelled() {
			continue
		}
		if opts.CompanyID != nil && mv.CompanyID != *opts.CompanyID {
			continue
		}
		if !opts.Consolidated && (mv.BankAccountID == nil || *mv.BankAccountID != *opts.BankAccountID) {
			continue
		}
		if !period.Contains(mv.Date) {
			continue
		}
		day := ledger.DateOnly(mv.Date)
		bucket := buckets[day]
		if bucket == nil {
			bucket = &dayBucket{}
			buckets[day] = bucket
		}
		switch {
		case mv.Realized && mv.Amount.IsNegative():
			bucket.outflowRealized = bucket.outflowRealized.Add(mv.Amount.Neg())
		case mv.Realized:
			bucket.inflowRealized = bucket.inflowRealized.Add(mv.Amount)
		case mv.Amount.IsNegative():
			bucket.outflowForecast = bucket.outflowForecast.Add(mv.Amount.Neg())
		default:
			bucket.inflowForecast = bucket.inflowForecast.Add(mv.Amount)
		}
	}

	st := Statement{
		Period:               period,
		OpeningBalance:       opts.OpeningBalance,
		Lines:                make([]Line, 0, period.Days()),
		TotalInflowRealized:  decimal.Zero,
		TotalOutflowRealized: decimal.Zero,
		TotalInflowForecast:  decimal.Zero,
		TotalOutflowForecast: decimal.Zero,
	}

	cumulativeRealized := opts.OpeningBalance
	cumulativeForecast := opts.OpeningBalance
	for day := period.Start; !day.After(period.End); day = day.AddDate(0, 0, 1) {
		bucket := buckets[day]
		if bucket == nil {
			bucket = &dayBucket{}
		}
		dailyRealized := bucket.inflowRealized.Sub(bucket.outflowRealized)
		dailyForecast := bucket.inflowForecast.Sub(bucket.outflowForecast)
		cumulativeRealized = cumulativeRealized.Add(dailyRealized)
		cumulativeForecast = cumulativeForecast.Add(dailyForecast)
		st.Lines = append(st.Lines, Line{
			Date:               day,
			InflowRealized:     bucket.inflowRealized,
			InflowForecast:     bucket.inflowForecast,
			OutflowRealized:    bucket.outflowRealized,
			OutflowForecast:    bucket.outflowForecast,
			DailyRealized:      dailyRealized,
			DailyForecast:      dailyForecast,
			CumulativeRealized: cumulativeRealized,
			CumulativeForecast: cumulativeForecast,
		})
		st.TotalInflowRealized = st.TotalInflowRealized.Add(bucket.inflowRealized)
		st.TotalOutflowRealized = st.TotalOutflowRealized.Add(bucket.outflowRealized)
		st.TotalInflowForecast = st.TotalInflowForecast.Add(bucket.inflowForecast)
		st.TotalOutflowForecast = st.TotalOutflowForecast.Add(bucket.outflowForecast)
	}
	st.FinalRealized = cumulativeRealized
	st.FinalForecast = cumulativeForecast
	return st, nil
}
