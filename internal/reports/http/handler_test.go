package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/financo-app/financo/internal/ledger"
	"github.com/financo-app/financo/internal/platform/httpx"
	"github.com/financo-app/financo/internal/reports"
)

func ptr(v int64) *int64 { return &v }

type stubFetcher struct {
	receivables []ledger.LedgerLine
	payables    []ledger.LedgerLine
	movements   []ledger.LedgerLine
	accounts    []ledger.ChartAccount
	err         error
}

func (s *stubFetcher) Payables(ctx context.Context, q ledger.Query) ([]ledger.LedgerLine, error) {
	return s.payables, s.err
}

func (s *stubFetcher) Receivables(ctx context.Context, q ledger.Query) ([]ledger.LedgerLine, error) {
	return s.receivables, s.err
}

func (s *stubFetcher) Movements(ctx context.Context, q ledger.Query) ([]ledger.LedgerLine, error) {
	return s.movements, s.err
}

func (s *stubFetcher) ChartOfAccounts(ctx context.Context, companyID int64) ([]ledger.ChartAccount, error) {
	return s.accounts, s.err
}

func newTestRouter(t *testing.T, fetcher ledger.Fetcher) http.Handler {
	t.Helper()
	service := reports.NewService(fetcher, reports.NewCache(nil, 0), nil, nil)
	handler := NewHandler(nil, service)
	r := chi.NewRouter()
	handler.MountRoutes(r)
	return r
}

func defaultFetcher() *stubFetcher {
	return &stubFetcher{
		receivables: []ledger.LedgerLine{{
			CompanyID: 1, AccountID: 2, Amount: decimal.RequireFromString("1000"),
			Date:   time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
			Status: ledger.StatusSettled, Realized: true,
		}},
		payables: []ledger.LedgerLine{{
			CompanyID: 1, AccountID: 4, Amount: decimal.RequireFromString("-400"),
			Date:   time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC),
			Status: ledger.StatusSettled, Realized: true,
		}},
		movements: []ledger.LedgerLine{{
			CompanyID: 1, BankAccountID: ptr(10), Amount: decimal.RequireFromString("700"),
			Date:   time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
			Status: ledger.StatusSettled, Realized: true,
		}},
		accounts: []ledger.ChartAccount{
			{ID: 1, Code: "3", Description: "Receitas", Type: ledger.TypeRevenue, Level: 1, Active: true},
			{ID: 2, Code: "3.1", Description: "Vendas", Type: ledger.TypeRevenue, Level: 2, ParentID: ptr(1), AllowsPosting: true, Active: true},
			{ID: 3, Code: "4", Description: "Custos", Type: ledger.TypeCost, Level: 1, Active: true},
			{ID: 4, Code: "4.1", Description: "CMV", Type: ledger.TypeCost, Level: 2, ParentID: ptr(3), AllowsPosting: true, Active: true},
		},
	}
}

func get(t *testing.T, router http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHandleDRE(t *testing.T) {
	router := newTestRouter(t, defaultFetcher())

	rec := get(t, router, "/api/reports/dre?empresaId=1&dataInicio=2025-01-01&dataFim=2025-01-31")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	var payload struct {
		Meta struct {
			ReportID string `json:"report_id"`
		} `json:"meta"`
		Statement struct {
			Totals struct {
				NetResult string `json:"net_result"`
			} `json:"totals"`
		} `json:"statement"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.NotEmpty(t, payload.Meta.ReportID)
	require.Equal(t, "600", payload.Statement.Totals.NetResult)
}

func TestHandleDRERejectsBadFilters(t *testing.T) {
	router := newTestRouter(t, defaultFetcher())

	rec := get(t, router, "/api/reports/dre?empresaId=abc&dataInicio=2025-01-01&dataFim=2025-01-31")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var problem struct {
		Type   string `json:"type"`
		Title  string `json:"title"`
		Status int    `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	require.Equal(t, httpx.TypeInvalidFilters, problem.Type)
	require.Equal(t, "Filtros inválidos", problem.Title)
	require.Equal(t, http.StatusBadRequest, problem.Status)
}

func TestHandleDREUpstreamFailure(t *testing.T) {
	fetcher := &stubFetcher{err: &ledger.UpstreamError{Endpoint: "/contas-receber", StatusCode: 503}}
	router := newTestRouter(t, fetcher)

	rec := get(t, router, "/api/reports/dre?empresaId=1&dataInicio=2025-01-01&dataFim=2025-01-31")
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Contains(t, rec.Body.String(), "Origem indisponível")
	require.Contains(t, rec.Body.String(), httpx.TypeUpstream)
}

func TestHandleCashFlowRequiresBankAccount(t *testing.T) {
	router := newTestRouter(t, defaultFetcher())

	rec := get(t, router, "/api/reports/fluxo-caixa?dataInicio=2025-01-01&dataFim=2025-01-31")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = get(t, router, "/api/reports/fluxo-caixa?dataInicio=2025-01-01&dataFim=2025-01-31&consolidado=true")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleAccrualVsCash(t *testing.T) {
	router := newTestRouter(t, defaultFetcher())

	rec := get(t, router, "/api/reports/dre-vs-fluxo?empresaId=1&dataInicio=2025-01-01&dataFim=2025-01-31")
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Note string           `json:"note"`
		Rows []map[string]any `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, reports.TimingNote, payload.Note)
	require.Len(t, payload.Rows, 3)
}

func TestHandleDRECSVExport(t *testing.T) {
	router := newTestRouter(t, defaultFetcher())

	rec := get(t, router, "/api/reports/dre/export.csv?empresaId=1&dataInicio=2025-01-01&dataFim=2025-01-31")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	require.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")

	body := rec.Body.String()
	require.True(t, strings.HasPrefix(body, "# Relatório: DRE"), "metadata comment first, got %q", body[:40])
	require.Contains(t, body, "Seção,Conta,Descrição,Nível,Valor")
	require.Contains(t, body, "Resultado Líquido")
	require.Contains(t, body, "600,00")
}

func TestHandleComparisonCSVExport(t *testing.T) {
	router := newTestRouter(t, defaultFetcher())

	rec := get(t, router, "/api/reports/dre/comparativo/export.csv?empresaId=1&dataInicioA=2025-01-01&dataFimA=2025-01-31&dataInicioB=2024-12-01&dataFimB=2024-12-31")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Indicador,Período A,Período B,Diferença,Variação %")
}
