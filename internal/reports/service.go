// Package reports orchestrates upstream fetches and the pure aggregation
// core into the report payloads served over HTTP and CSV.
package reports

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/financo-app/financo/internal/cashflow"
	"github.com/financo-app/financo/internal/coa"
	"github.com/financo-app/financo/internal/dre"
	"github.com/financo-app/financo/internal/ledger"
	"github.com/financo-app/financo/internal/observability"
	"github.com/financo-app/financo/internal/variance"
)

// Meta accompanies every report payload. ReportID identifies one generated
// artifact so clients can discard stale responses after a filter change.
type Meta struct {
	ReportID    string    `json:"report_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Warnings    []string  `json:"warnings"`
}

// DREReport is the income statement payload.
type DREReport struct {
	Meta      Meta          `json:"meta"`
	Statement dre.Statement `json:"statement"`
}

// ConsolidatedReport merges the statements of several companies.
type ConsolidatedReport struct {
	Meta   Meta             `json:"meta"`
	Report dre.Consolidated `json:"report"`
}

// ComparisonReport holds period-over-period variance rows.
type ComparisonReport struct {
	Meta    Meta             `json:"meta"`
	PeriodA ledger.Period    `json:"period_a"`
	PeriodB ledger.Period    `json:"period_b"`
	Rows    []variance.Entry `json:"rows"`
}

// CashFlowReport is the daily timeline payload.
type CashFlowReport struct {
	Meta      Meta               `json:"meta"`
	Statement cashflow.Statement `json:"statement"`
}

// AccrualCashReport aligns the accrual statement against the cash
// timeline. Note always carries the timing explanation; it is part of the
// output, not presentation copy.
type AccrualCashReport struct {
	Meta    Meta             `json:"meta"`
	Period  ledger.Period    `json:"period"`
	Accrual dre.Totals       `json:"accrual_totals"`
	Rows    []variance.Entry `json:"rows"`
	Note    string           `json:"note"`
}

// Service builds reports from upstream data. Aggregation itself is pure;
// the service owns the impure edges: fetching, caching, logging, metrics.
type Service struct {
	fetcher  ledger.Fetcher
	cache    *Cache
	validate *validator.Validate
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewService wires the report service.
func NewService(fetcher ledger.Fetcher, cache *Cache, logger *slog.Logger, metrics *observability.Metrics) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		fetcher:  fetcher,
		cache:    cache,
		validate: newValidator(),
		logger:   logger,
		metrics:  metrics,
	}
}

// DRE builds the income statement for one company and period.
func (s *Service) DRE(ctx context.Context, filters DREFilters) (DREReport, error) {
	if err := s.validateFilters(filters); err != nil {
		return DREReport{}, err
	}
	period := ledger.NewPeriod(filters.Start, filters.End)
	if err := period.Validate(); err != nil {
		return DREReport{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	key, err := s.cache.BuildKey(ctx, keyDRE(filters.CompanyID, period, filters.CostCenterID)...)
	if err != nil {
		return DREReport{}, err
	}
	var report DREReport
	loader := func(ctx context.Context) (interface{}, error) {
		return s.buildDRE(ctx, filters, period)
	}
	if err := s.cache.FetchJSON(ctx, key, &report, loader); err != nil {
		return DREReport{}, err
	}
	return report, nil
}

func (s *Service) buildDRE(ctx context.Context, filters DREFilters, period ledger.Period) (DREReport, error) {
	defer s.observe("dre", time.Now())
	lines, tree, err := s.fetchEntries(ctx, filters.CompanyID, period, filters.CostCenterID)
	if err != nil {
		return DREReport{}, err
	}
	st, err := dre.Aggregate(lines, tree, period, dre.Options{
		CompanyID:    filters.CompanyID,
		CostCenterID: filters.CostCenterID,
	})
	if err != nil {
		return DREReport{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return DREReport{
		Meta:      s.newMeta(s.dataQualityWarnings(filters.CompanyID, st.UnclassifiedCount)),
		Statement: st,
	}, nil
}

// ConsolidatedDRE aggregates each member company concurrently and merges
// the totals. Aggregation only starts once every fetch resolved.
func (s *Service) ConsolidatedDRE(ctx context.Context, filters ConsolidatedFilters) (ConsolidatedReport, error) {
	if err := s.validateFilters(filters); err != nil {
		return ConsolidatedReport{}, err
	}
	period := ledger.NewPeriod(filters.Start, filters.End)
	if err := period.Validate(); err != nil {
		return ConsolidatedReport{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	key, err := s.cache.BuildKey(ctx, keyConsolidated(filters.CompanyIDs, period)...)
	if err != nil {
		return ConsolidatedReport{}, err
	}
	var report ConsolidatedReport
	loader := func(ctx context.Context) (interface{}, error) {
		return s.buildConsolidated(ctx, filters, period)
	}
	if err := s.cache.FetchJSON(ctx, key, &report, loader); err != nil {
		return ConsolidatedReport{}, err
	}
	return report, nil
}

func (s *Service) buildConsolidated(ctx context.Context, filters ConsolidatedFilters, period ledger.Period) (ConsolidatedReport, error) {
	defer s.observe("dre_consolidated", time.Now())
	subReports := make([]DREReport, len(filters.CompanyIDs))
	g, gctx := errgroup.WithContext(ctx)
	for i, companyID := range filters.CompanyIDs {
		g.Go(func() error {
			sub, err := s.buildDRE(gctx, DREFilters{CompanyID: companyID, Start: period.Start, End: period.End}, period)
			if err != nil {
				return err
			}
			subReports[i] = sub
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ConsolidatedReport{}, err
	}
	var warnings []string
	statements := make([]dre.Statement, len(subReports))
	for i, sub := range subReports {
		statements[i] = sub.Statement
		warnings = append(warnings, sub.Meta.Warnings...)
	}
	return ConsolidatedReport{
		Meta:   s.newMeta(warnings),
		Report: dre.Consolidate(statements),
	}, nil
}

// CompareDRE aggregates the same company over two periods, fetched in
// parallel, and returns one variance row per statement figure.
func (s *Service) CompareDRE(ctx context.Context, filters ComparisonFilters) (ComparisonReport, error) {
	if err := s.validateFilters(filters); err != nil {
		return ComparisonReport{}, err
	}
	periodA := ledger.NewPeriod(filters.StartA, filters.EndA)
	periodB := ledger.NewPeriod(filters.StartB, filters.EndB)
	for _, p := range []ledger.Period{periodA, periodB} {
		if err := p.Validate(); err != nil {
			return ComparisonReport{}, fmt.Errorf("%w: %v", ErrValidation, err)
		}
	}
	key, err := s.cache.BuildKey(ctx, keyComparison(filters.CompanyID, periodA, periodB, filters.CostCenterID)...)
	if err != nil {
		return ComparisonReport{}, err
	}
	var report ComparisonReport
	loader := func(ctx context.Context) (interface{}, error) {
		return s.buildComparison(ctx, filters, periodA, periodB)
	}
	if err := s.cache.FetchJSON(ctx, key, &report, loader); err != nil {
		return ComparisonReport{}, err
	}
	return report, nil
}

func (s *Service) buildComparison(ctx context.Context, filters ComparisonFilters, periodA, periodB ledger.Period) (ComparisonReport, error) {
	defer s.observe("dre_comparison", time.Now())
	var subA, subB DREReport
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sub, err := s.buildDRE(gctx, DREFilters{CompanyID: filters.CompanyID, Start: periodA.Start, End: periodA.End, CostCenterID: filters.CostCenterID}, periodA)
		if err == nil {
			subA = sub
		}
		return err
	})
	g.Go(func() error {
		sub, err := s.buildDRE(gctx, DREFilters{CompanyID: filters.CompanyID, Start: periodB.Start, End: periodB.End, CostCenterID: filters.CostCenterID}, periodB)
		if err == nil {
			subB = sub
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return ComparisonReport{}, err
	}
	warnings := append(append([]string{}, subA.Meta.Warnings...), subB.Meta.Warnings...)
	return ComparisonReport{
		Meta:    s.newMeta(warnings),
		PeriodA: periodA,
		PeriodB: periodB,
		Rows:    dre.Compare(subA.Statement, subB.Statement),
	}, nil
}

// CashFlow builds the daily movement timeline.
func (s *Service) CashFlow(ctx context.Context, filters CashFlowFilters) (CashFlowReport, error) {
	if err := s.validateFilters(filters); err != nil {
		return CashFlowReport{}, err
	}
	period := ledger.NewPeriod(filters.Start, filters.End)
	if err := period.Validate(); err != nil {
		return CashFlowReport{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	key, err := s.cache.BuildKey(ctx, keyCashFlow(filters.CompanyID, filters.BankAccountID, period, filters.Consolidated, filters.OpeningBalance)...)
	if err != nil {
		return CashFlowReport{}, err
	}
	var report CashFlowReport
	loader := func(ctx context.Context) (interface{}, error) {
		return s.buildCashFlow(ctx, filters, period)
	}
	if err := s.cache.FetchJSON(ctx, key, &report, loader); err != nil {
		return CashFlowReport{}, err
	}
	return report, nil
}

func (s *Service) buildCashFlow(ctx context.Context, filters CashFlowFilters, period ledger.Period) (CashFlowReport, error) {
	defer s.observe("cashflow", time.Now())
	query := ledger.Query{Period: period, BankAccountID: filters.BankAccountID}
	if filters.CompanyID != nil {
		query.CompanyID = *filters.CompanyID
	}
	movements, err := s.fetcher.Movements(ctx, query)
	if err != nil {
		return CashFlowReport{}, err
	}
	st, err := cashflow.Aggregate(movements, period, cashflow.Options{
		CompanyID:      filters.CompanyID,
		BankAccountID:  filters.BankAccountID,
		Consolidated:   filters.Consolidated,
		OpeningBalance: filters.OpeningBalance,
	})
	if err != nil {
		return CashFlowReport{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return CashFlowReport{Meta: s.newMeta(nil), Statement: st}, nil
}

// AccrualVsCash builds the DRE and the cash-flow timeline for the same
// period in parallel, joins them, and compares the two bases.
func (s *Service) AccrualVsCash(ctx context.Context, filters AccrualCashFilters) (AccrualCashReport, error) {
	if err := s.validateFilters(filters); err != nil {
		return AccrualCashReport{}, err
	}
	period := ledger.NewPeriod(filters.Start, filters.End)
	if err := period.Validate(); err != nil {
		return AccrualCashReport{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	key, err := s.cache.BuildKey(ctx, keyAccrualCash(filters.CompanyID, period, filters.BankAccountID, filters.OpeningBalance)...)
	if err != nil {
		return AccrualCashReport{}, err
	}
	var report AccrualCashReport
	loader := func(ctx context.Context) (interface{}, error) {
		return s.buildAccrualVsCash(ctx, filters, period)
	}
	if err := s.cache.FetchJSON(ctx, key, &report, loader); err != nil {
		return AccrualCashReport{}, err
	}
	return report, nil
}

func (s *Service) buildAccrualVsCash(ctx context.Context, filters AccrualCashFilters, period ledger.Period) (AccrualCashReport, error) {
	defer s.observe("dre_vs_cashflow", time.Now())
	var accrualReport DREReport
	var cash cashflow.Statement
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sub, err := s.buildDRE(gctx, DREFilters{CompanyID: filters.CompanyID, Start: period.Start, End: period.End}, period)
		if err == nil {
			accrualReport = sub
		}
		return err
	})
	g.Go(func() error {
		sub, err := s.buildCashFlow(gctx, CashFlowFilters{
			CompanyID:      &filters.CompanyID,
			BankAccountID:  filters.BankAccountID,
			Consolidated:   filters.BankAccountID == nil,
			OpeningBalance: filters.OpeningBalance,
			Start:          period.Start,
			End:            period.End,
		}, period)
		if err == nil {
			cash = sub.Statement
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return AccrualCashReport{}, err
	}
	rows, note := CompareAccrualToCash(accrualReport.Statement, cash)
	return AccrualCashReport{
		Meta:    s.newMeta(accrualReport.Meta.Warnings),
		Period:  period,
		Accrual: accrualReport.Statement.Totals,
		Rows:    rows,
		Note:    note,
	}, nil
}

// fetchEntries loads payables, receivables and the chart of accounts in
// parallel and joins before any aggregation begins. Each fetch is
// independent; the join is an ordering convenience, not coordination.
func (s *Service) fetchEntries(ctx context.Context, companyID int64, period ledger.Period, costCenterID *int64) ([]ledger.LedgerLine, *coa.Tree, error) {
	query := ledger.Query{CompanyID: companyID, Period: period, CostCenterID: costCenterID}
	var payables, receivables []ledger.LedgerLine
	var accounts []ledger.ChartAccount
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		payables, err = s.fetcher.Payables(gctx, query)
		return err
	})
	g.Go(func() error {
		var err error
		receivables, err = s.fetcher.Receivables(gctx, query)
		return err
	})
	g.Go(func() error {
		var err error
		accounts, err = s.fetcher.ChartOfAccounts(gctx, companyID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	lines := make([]ledger.LedgerLine, 0, len(payables)+len(receivables))
	lines = append(lines, payables...)
	lines = append(lines, receivables...)
	return lines, coa.NewTree(accounts), nil
}

func (s *Service) newMeta(warnings []string) Meta {
	if warnings == nil {
		warnings = []string{}
	}
	return Meta{
		ReportID:    uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Warnings:    warnings,
	}
}

func (s *Service) dataQualityWarnings(companyID int64, unclassified int) []string {
	if unclassified == 0 {
		return nil
	}
	s.logger.Warn("lançamentos sem classificação",
		slog.Int64("empresa", companyID),
		slog.Int("quantidade", unclassified))
	s.metrics.RecordUnclassified(companyID, unclassified)
	return []string{fmt.Sprintf("%d lançamento(s) da empresa %d sem conta classificada", unclassified, companyID)}
}

func (s *Service) observe(report string, start time.Time) {
	s.metrics.ObserveReportBuild(report, time.Since(start))
}
