package ledger

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// LineStatus enumerates settlement states of a ledger entry.
type LineStatus string

const (
	// StatusPending indicates the entry is due but not settled.
	StatusPending LineStatus = "PENDING"
	// StatusSettled indicates the entry was paid or received in full.
	StatusSettled LineStatus = "SETTLED"
	// StatusOverdue indicates the entry passed its due date without settlement.
	StatusOverdue LineStatus = "OVERDUE"
	// StatusPartial indicates a partial payment or receipt.
	StatusPartial LineStatus = "PARTIAL"
	// StatusCancelled indicates the entry was voided. Cancelled entries never
	// contribute to any aggregation.
	StatusCancelled LineStatus = "CANCELLED"
)

// ParseLineStatus normalises upstream status values, including the pt-BR
// spellings the legacy API emits.
func ParseLineStatus(raw string) (LineStatus, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "PENDING", "PENDENTE":
		return StatusPending, nil
	case "SETTLED", "PAID", "RECEIVED", "PAGO", "RECEBIDO", "LIQUIDADO":
		return StatusSettled, nil
	case "OVERDUE", "VENCIDO":
		return StatusOverdue, nil
	case "PARTIAL", "PAGO_PARCIAL", "PARCIAL":
		return StatusPartial, nil
	case "CANCELLED", "CANCELADO":
		return StatusCancelled, nil
	}
	return "", errors.New("ledger: unknown status " + raw)
}

// AccountType classifies a chart-of-accounts node by nature.
type AccountType string

const (
	TypeRevenue AccountType = "REVENUE"
	TypeCost    AccountType = "COST"
	TypeExpense AccountType = "EXPENSE"
	TypeOther   AccountType = "OTHER"
)

// ParseAccountType maps upstream account natures onto the four DRE sections.
func ParseAccountType(raw string) (AccountType, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "REVENUE", "RECEITA":
		return TypeRevenue, nil
	case "COST", "CUSTO":
		return TypeCost, nil
	case "EXPENSE", "DESPESA":
		return TypeExpense, nil
	case "OTHER", "OUTROS", "OUTRAS":
		return TypeOther, nil
	}
	return "", errors.New("ledger: unknown account type " + raw)
}

// LedgerLine is a single payable, receivable or bank movement entry.
// Amount is signed: positive means inflow/revenue, negative outflow/expense.
type LedgerLine struct {
	ID            int64
	CompanyID     int64
	AccountID     int64 // chart-of-accounts reference, 0 when unassigned
	CostCenterID  *int64
	BankAccountID *int64
	Description   string
	Amount        decimal.Decimal
	Date          time.Time
	Status        LineStatus
	Realized      bool
}

// Cancelled reports whether the line must be excluded from every aggregation.
func (l LedgerLine) Cancelled() bool {
	return l.Status == StatusCancelled
}

// ChartAccount is a node in the chart-of-accounts hierarchy.
type ChartAccount struct {
	ID            int64
	Code          string // dotted hierarchical code, e.g. "3.1.01"
	Description   string
	Type          AccountType
	Level         int
	ParentID      *int64
	AllowsPosting bool // only analytic (leaf) accounts receive postings
	Active        bool
}

// Period is an inclusive calendar date range.
type Period struct {
	Start time.Time
	End   time.Time
}

// NewPeriod builds a period truncated to calendar dates in UTC.
func NewPeriod(start, end time.Time) Period {
	return Period{Start: DateOnly(start), End: DateOnly(end)}
}

// Validate rejects inverted ranges.
func (p Period) Validate() error {
	if p.Start.IsZero() || p.End.IsZero() {
		return errors.New("ledger: period start and end required")
	}
	if p.Start.After(p.End) {
		return errors.New("ledger: period start after end")
	}
	return nil
}

// Contains reports whether t falls within the period, bounds inclusive.
func (p Period) Contains(t time.Time) bool {
	d := DateOnly(t)
	return !d.Before(p.Start) && !d.After(p.End)
}

// Days returns the number of calendar days spanned, bounds inclusive.
func (p Period) Days() int {
	return int(p.End.Sub(p.Start).Hours()/24) + 1
}

// DateOnly truncates a timestamp to its calendar date in UTC.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
