// Package observability exposes the Prometheus metrics of the service.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects the application's Prometheus metrics. All record
// methods are nil-safe so wiring stays optional in tests.
type Metrics struct {
	registry          *prometheus.Registry
	handler           http.Handler
	requestsTotal     *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	reportBuild       *prometheus.HistogramVec
	unclassifiedLines *prometheus.CounterVec
}

// NewMetrics initialises the registry and base metrics.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "financo_http_requests_total",
		Help: "Number of HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "financo_http_request_duration_seconds",
		Help:    "HTTP request duration per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	reportBuild := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "financo_report_build_duration_seconds",
		Help:    "Time spent fetching and aggregating each report type.",
		Buckets: prometheus.DefBuckets,
	}, []string{"report"})
	unclassified := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "financo_unclassified_lines_total",
		Help: "Ledger entries routed to the unclassified bucket, by company.",
	}, []string{"company"})
	registry.MustRegister(requests, duration, reportBuild, unclassified)
	return &Metrics{
		registry:          registry,
		handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:     requests,
		requestDuration:   duration,
		reportBuild:       reportBuild,
		unclassifiedLines: unclassified,
	}
}

// Handler returns the http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records request metrics for every HTTP request.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// ObserveReportBuild records the duration of one report computation.
func (m *Metrics) ObserveReportBuild(report string, d time.Duration) {
	if m == nil {
		return
	}
	m.reportBuild.WithLabelValues(report).Observe(d.Seconds())
}

// RecordUnclassified counts entries that drifted into the unclassified
// bucket, feeding data-quality monitoring.
func (m *Metrics) RecordUnclassified(companyID int64, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.unclassifiedLines.WithLabelValues(strconv.FormatInt(companyID, 10)).Add(float64(count))
}

// Registerer exposes the registry for custom metric registration.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
