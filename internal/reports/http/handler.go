// Package http serves the report endpoints as JSON and CSV.
package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/financo-app/financo/internal/ledger"
	"github.com/financo-app/financo/internal/platform/httpx"
	"github.com/financo-app/financo/internal/reports"
)

// Handler wires HTTP interactions for the report endpoints.
type Handler struct {
	logger      *slog.Logger
	service     *reports.Service
	exportLimit func(http.Handler) http.Handler
}

// NewHandler constructs the report handler. CSV exports get a tighter
// rate limit than the JSON endpoints.
func NewHandler(logger *slog.Logger, service *reports.Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:      logger,
		service:     service,
		exportLimit: httprate.Limit(10, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)),
	}
}

// MountRoutes registers the report endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/api/reports", func(r chi.Router) {
		r.Get("/dre", h.HandleDRE)
		r.Get("/dre/consolidado", h.HandleConsolidated)
		r.Get("/dre/comparativo", h.HandleComparison)
		r.Get("/fluxo-caixa", h.HandleCashFlow)
		r.Get("/dre-vs-fluxo", h.HandleAccrualVsCash)
		r.Group(func(r chi.Router) {
			r.Use(h.exportLimit)
			r.Get("/dre/export.csv", h.HandleDRECSV)
			r.Get("/dre/consolidado/export.csv", h.HandleConsolidatedCSV)
			r.Get("/dre/comparativo/export.csv", h.HandleComparisonCSV)
			r.Get("/fluxo-caixa/export.csv", h.HandleCashFlowCSV)
			r.Get("/dre-vs-fluxo/export.csv", h.HandleAccrualVsCashCSV)
		})
	})
}

// HandleDRE serves the income statement as JSON.
func (h *Handler) HandleDRE(w http.ResponseWriter, r *http.Request) {
	filters, parseErrors := parseDREFilters(r)
	if len(parseErrors) > 0 {
		h.respondParseErrors(w, parseErrors)
		return
	}
	report, err := h.buildShared(r.Context(), "dre:"+canonicalQuery(r), func(ctx context.Context) (interface{}, error) {
		return h.service.DRE(ctx, filters)
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

// HandleConsolidated serves the multi-company consolidation as JSON.
func (h *Handler) HandleConsolidated(w http.ResponseWriter, r *http.Request) {
	filters, parseErrors := parseConsolidatedFilters(r)
	if len(parseErrors) > 0 {
		h.respondParseErrors(w, parseErrors)
		return
	}
	report, err := h.buildShared(r.Context(), "dre_consol:"+canonicalQuery(r), func(ctx context.Context) (interface{}, error) {
		return h.service.ConsolidatedDRE(ctx, filters)
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

// HandleComparison serves the period-over-period variance rows as JSON.
func (h *Handler) HandleComparison(w http.ResponseWriter, r *http.Request) {
	filters, parseErrors := parseComparisonFilters(r)
	if len(parseErrors) > 0 {
		h.respondParseErrors(w, parseErrors)
		return
	}
	report, err := h.buildShared(r.Context(), "dre_comp:"+canonicalQuery(r), func(ctx context.Context) (interface{}, error) {
		return h.service.CompareDRE(ctx, filters)
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

// HandleCashFlow serves the daily timeline as JSON.
func (h *Handler) HandleCashFlow(w http.ResponseWriter, r *http.Request) {
	filters, parseErrors := parseCashFlowFilters(r)
	if len(parseErrors) > 0 {
		h.respondParseErrors(w, parseErrors)
		return
	}
	report, err := h.buildShared(r.Context(), "cashflow:"+canonicalQuery(r), func(ctx context.Context) (interface{}, error) {
		return h.service.CashFlow(ctx, filters)
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

// HandleAccrualVsCash serves the accrual-vs-cash comparison as JSON.
func (h *Handler) HandleAccrualVsCash(w http.ResponseWriter, r *http.Request) {
	filters, parseErrors := parseAccrualCashFilters(r)
	if len(parseErrors) > 0 {
		h.respondParseErrors(w, parseErrors)
		return
	}
	report, err := h.buildShared(r.Context(), "dre_vs_fluxo:"+canonicalQuery(r), func(ctx context.Context) (interface{}, error) {
		return h.service.AccrualVsCash(ctx, filters)
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) buildShared(ctx context.Context, key string, fn func(context.Context) (interface{}, error)) (interface{}, error) {
	result, err, _ := singleflightBuild(ctx, key, fn)
	return result, err
}

func (h *Handler) respondParseErrors(w http.ResponseWriter, parseErrors map[string]string) {
	httpx.Problem(w, http.StatusBadRequest, httpx.TypeInvalidFilters, "Filtros inválidos", strings.Join(mapValues(parseErrors), "; "))
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	var upstream *ledger.UpstreamError
	switch {
	case errors.Is(err, reports.ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, httpx.TypeInvalidFilters, "Filtros inválidos", err.Error())
	case errors.As(err, &upstream):
		h.logger.Error("upstream fetch failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, httpx.TypeUpstream, "Origem indisponível", upstream.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		httpx.Problem(w, http.StatusGatewayTimeout, httpx.TypeTimeout, "Tempo esgotado", "")
	default:
		h.logger.Error("report build failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, httpx.TypeInternal, "Internal Error", "")
	}
}

// canonicalQuery flattens the query string into a stable singleflight key.
func canonicalQuery(r *http.Request) string {
	q := r.URL.Query()
	keys := make([]string, 0, len(q))
	for key := range q {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+"="+strings.Join(q[key], ","))
	}
	return strings.Join(parts, "&")
}
