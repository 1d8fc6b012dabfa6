package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/financo-app/financo/internal/reports"
)

// Query parameter parsing for the report endpoints. Parameter names follow
// the legacy API (dataInicio, dataFim, empresaId, contaBancariaId,
// centroCustoId, consolidado). Blank or whitespace-only optional values
// mean "absent"; present-but-invalid values are rejected.

func parseDate(q string) (time.Time, bool) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(q))
	return t, err == nil
}

func parseRange(r *http.Request, startKey, endKey string, errors map[string]string) (time.Time, time.Time) {
	q := r.URL.Query()
	start, ok := parseDate(q.Get(startKey))
	if !ok {
		errors[startKey] = "Data inválida ou ausente"
	}
	end, ok := parseDate(q.Get(endKey))
	if !ok {
		errors[endKey] = "Data inválida ou ausente"
	}
	return start, end
}

func parseRequiredID(r *http.Request, key string, errors map[string]string) int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(r.URL.Query().Get(key)), 10, 64)
	if err != nil || id <= 0 {
		errors[key] = "Identificador inválido"
		return 0
	}
	return id
}

func parseOptionalID(r *http.Request, key string, errors map[string]string) *int64 {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		errors[key] = "Identificador inválido"
		return nil
	}
	return &id
}

func parseIDList(r *http.Request, key string, errors map[string]string) []int64 {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil
	}
	seen := make(map[int64]struct{})
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			errors[key] = "Lista de empresas inválida"
			return nil
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

func parseBool(r *http.Request, key string, errors map[string]string) bool {
	switch strings.ToLower(strings.TrimSpace(r.URL.Query().Get(key))) {
	case "", "false", "0":
		return false
	case "true", "1":
		return true
	default:
		errors[key] = "Valor booleano inválido"
		return false
	}
}

func parseAmount(r *http.Request, key string, errors map[string]string) decimal.Decimal {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return decimal.Zero
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		errors[key] = "Valor inválido"
		return decimal.Zero
	}
	return v
}

func parseDREFilters(r *http.Request) (reports.DREFilters, map[string]string) {
	errors := make(map[string]string)
	start, end := parseRange(r, "dataInicio", "dataFim", errors)
	filters := reports.DREFilters{
		CompanyID:    parseRequiredID(r, "empresaId", errors),
		Start:        start,
		End:          end,
		CostCenterID: parseOptionalID(r, "centroCustoId", errors),
	}
	return filters, errors
}

func parseConsolidatedFilters(r *http.Request) (reports.ConsolidatedFilters, map[string]string) {
	errors := make(map[string]string)
	start, end := parseRange(r, "dataInicio", "dataFim", errors)
	filters := reports.ConsolidatedFilters{
		CompanyIDs: parseIDList(r, "empresaIds", errors),
		Start:      start,
		End:        end,
	}
	return filters, errors
}

func parseComparisonFilters(r *http.Request) (reports.ComparisonFilters, map[string]string) {
	errors := make(map[string]string)
	startA, endA := parseRange(r, "dataInicioA", "dataFimA", errors)
	startB, endB := parseRange(r, "dataInicioB", "dataFimB", errors)
	filters := reports.ComparisonFilters{
		CompanyID:    parseRequiredID(r, "empresaId", errors),
		StartA:       startA,
		EndA:         endA,
		StartB:       startB,
		EndB:         endB,
		CostCenterID: parseOptionalID(r, "centroCustoId", errors),
	}
	return filters, errors
}

func parseCashFlowFilters(r *http.Request) (reports.CashFlowFilters, map[string]string) {
	errors := make(map[string]string)
	start, end := parseRange(r, "dataInicio", "dataFim", errors)
	filters := reports.CashFlowFilters{
		CompanyID:      parseOptionalID(r, "empresaId", errors),
		BankAccountID:  parseOptionalID(r, "contaBancariaId", errors),
		Consolidated:   parseBool(r, "consolidado", errors),
		OpeningBalance: parseAmount(r, "saldoInicial", errors),
		Start:          start,
		End:            end,
	}
	return filters, errors
}

func parseAccrualCashFilters(r *http.Request) (reports.AccrualCashFilters, map[string]string) {
	errors := make(map[string]string)
	start, end := parseRange(r, "dataInicio", "dataFim", errors)
	filters := reports.AccrualCashFilters{
		CompanyID:      parseRequiredID(r, "empresaId", errors),
		Start:          start,
		End:            end,
		BankAccountID:  parseOptionalID(r, "contaBancariaId", errors),
		OpeningBalance: parseAmount(r, "saldoInicial", errors),
	}
	return filters, errors
}

func mapValues(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for key, value := range m {
		out = append(out, key+": "+value)
	}
	return out
}
