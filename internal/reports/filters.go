package reports

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ErrValidation marks a report request rejected before any aggregation
// runs. No partial totals are ever returned alongside it.
var ErrValidation = errors.New("reports: filtros inválidos")

// DREFilters selects one company and period for the income statement.
type DREFilters struct {
	CompanyID    int64     `validate:"required,gt=0"`
	Start        time.Time `validate:"required"`
	End          time.Time `validate:"required"`
	CostCenterID *int64    `validate:"omitempty,gt=0"`
}

// ConsolidatedFilters selects the member companies of a consolidation. An
// empty company list is a valid degenerate report.
type ConsolidatedFilters struct {
	CompanyIDs []int64   `validate:"dive,gt=0"`
	Start      time.Time `validate:"required"`
	End        time.Time `validate:"required"`
}

// ComparisonFilters selects one company and two periods.
type ComparisonFilters struct {
	CompanyID    int64     `validate:"required,gt=0"`
	StartA       time.Time `validate:"required"`
	EndA         time.Time `validate:"required"`
	StartB       time.Time `validate:"required"`
	EndB         time.Time `validate:"required"`
	CostCenterID *int64    `validate:"omitempty,gt=0"`
}

// CashFlowFilters selects the movement timeline. CompanyID is optional
// ("all companies"); BankAccountID is required unless Consolidated.
type CashFlowFilters struct {
	CompanyID      *int64    `validate:"omitempty,gt=0"`
	BankAccountID  *int64    `validate:"omitempty,gt=0"`
	Consolidated   bool
	OpeningBalance decimal.Decimal
	Start          time.Time `validate:"required"`
	End            time.Time `validate:"required"`
}

// AccrualCashFilters drives the accrual-vs-cash comparison: one company,
// one period, applied to both bases.
type AccrualCashFilters struct {
	CompanyID      int64     `validate:"required,gt=0"`
	Start          time.Time `validate:"required"`
	End            time.Time `validate:"required"`
	BankAccountID  *int64    `validate:"omitempty,gt=0"`
	OpeningBalance decimal.Decimal
}

func (s *Service) validateFilters(filters any) error {
	if err := s.validate.Struct(filters); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

func newValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}
