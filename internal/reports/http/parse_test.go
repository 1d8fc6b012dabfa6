package http

import (
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func decimalFromString(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	v, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return v
}

func TestParseDREFilters(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/reports/dre?empresaId=3&dataInicio=2025-01-01&dataFim=2025-01-31&centroCustoId=7", nil)
	filters, parseErrors := parseDREFilters(r)
	require.Empty(t, parseErrors)
	require.Equal(t, int64(3), filters.CompanyID)
	require.Equal(t, int64(7), *filters.CostCenterID)
	require.Equal(t, "2025-01-01", filters.Start.Format("2006-01-02"))
	require.Equal(t, "2025-01-31", filters.End.Format("2006-01-02"))
}

func TestParseDREFiltersRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"missing company": "dataInicio=2025-01-01&dataFim=2025-01-31",
		"bad company":     "empresaId=abc&dataInicio=2025-01-01&dataFim=2025-01-31",
		"bad date":        "empresaId=1&dataInicio=01/01/2025&dataFim=2025-01-31",
		"bad cost center": "empresaId=1&dataInicio=2025-01-01&dataFim=2025-01-31&centroCustoId=-2",
	}
	for name, query := range cases {
		t.Run(name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/api/reports/dre?"+query, nil)
			_, parseErrors := parseDREFilters(r)
			require.NotEmpty(t, parseErrors)
		})
	}
}

func TestParseOptionalBlankMeansAbsent(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/reports/dre?empresaId=1&dataInicio=2025-01-01&dataFim=2025-01-31&centroCustoId=", nil)
	filters, parseErrors := parseDREFilters(r)
	require.Empty(t, parseErrors)
	require.Nil(t, filters.CostCenterID)
}

func TestParseConsolidatedFilters(t *testing.T) {
	r := httptest.NewRequest("GET", "/x?empresaIds=1,2,2,3&dataInicio=2025-01-01&dataFim=2025-01-31", nil)
	filters, parseErrors := parseConsolidatedFilters(r)
	require.Empty(t, parseErrors)
	require.Equal(t, []int64{1, 2, 3}, filters.CompanyIDs, "duplicates collapse")

	bad := httptest.NewRequest("GET", "/x?empresaIds=1,zero&dataInicio=2025-01-01&dataFim=2025-01-31", nil)
	_, parseErrors = parseConsolidatedFilters(bad)
	require.NotEmpty(t, parseErrors)
}

func TestParseComparisonFilters(t *testing.T) {
	r := httptest.NewRequest("GET", "/x?empresaId=1&dataInicioA=2025-01-01&dataFimA=2025-01-31&dataInicioB=2024-12-01&dataFimB=2024-12-31", nil)
	filters, parseErrors := parseComparisonFilters(r)
	require.Empty(t, parseErrors)
	require.Equal(t, "2025-01-01", filters.StartA.Format("2006-01-02"))
	require.Equal(t, "2024-12-31", filters.EndB.Format("2006-01-02"))
}

func TestParseCashFlowFilters(t *testing.T) {
	r := httptest.NewRequest("GET", "/x?dataInicio=2025-03-01&dataFim=2025-03-31&contaBancariaId=9&saldoInicial=1500.50", nil)
	filters, parseErrors := parseCashFlowFilters(r)
	require.Empty(t, parseErrors)
	require.Nil(t, filters.CompanyID)
	require.Equal(t, int64(9), *filters.BankAccountID)
	require.False(t, filters.Consolidated)
	require.Equal(t, "1500.5", filters.OpeningBalance.String())

	consolidated := httptest.NewRequest("GET", "/x?dataInicio=2025-03-01&dataFim=2025-03-31&consolidado=true", nil)
	filters, parseErrors = parseCashFlowFilters(consolidated)
	require.Empty(t, parseErrors)
	require.True(t, filters.Consolidated)

	badBool := httptest.NewRequest("GET", "/x?dataInicio=2025-03-01&dataFim=2025-03-31&consolidado=yes", nil)
	_, parseErrors = parseCashFlowFilters(badBool)
	require.NotEmpty(t, parseErrors)

	badAmount := httptest.NewRequest("GET", "/x?dataInicio=2025-03-01&dataFim=2025-03-31&consolidado=true&saldoInicial=mil", nil)
	_, parseErrors = parseCashFlowFilters(badAmount)
	require.NotEmpty(t, parseErrors)
}

func TestFormatAmount(t *testing.T) {
	require.Equal(t, "1.234,50", formatAmount(decimalFromString(t, "1234.5")))
	require.Equal(t, "-0,25", formatAmount(decimalFromString(t, "-0.249")))
	require.Equal(t, "0,00", formatAmount(decimalFromString(t, "0")))
	require.Equal(t, "100,00", formatAmount(decimalFromString(t, "100")))
	require.Equal(t, "-1.000.000,01", formatAmount(decimalFromString(t, "-1000000.009")))

	// Amounts wider than float64's 15-16 significant digits keep every digit.
	require.Equal(t, "12.345.678.901.234.567,89",
		formatAmount(decimalFromString(t, "12345678901234567.89")))
}
