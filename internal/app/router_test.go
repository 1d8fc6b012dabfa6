package app

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/financo-app/financo/internal/observability"
)

func testConfig() *Config {
	return &Config{
		AppEnv:       "test",
		AppAddr:      ":0",
		LedgerAPIURL: "http://localhost:9",
	}
}

func TestRouterHealthz(t *testing.T) {
	router := NewRouter(RouterParams{
		Logger: slog.New(slog.NewTextHandler(os.Stderr, nil)),
		Config: testConfig(),
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRouterExposesMetrics(t *testing.T) {
	router := NewRouter(RouterParams{
		Logger:  slog.New(slog.NewTextHandler(os.Stderr, nil)),
		Config:  testConfig(),
		Metrics: observability.NewMetrics(),
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterSetsSecurityHeaders(t *testing.T) {
	router := NewRouter(RouterParams{
		Logger: slog.New(slog.NewTextHandler(os.Stderr, nil)),
		Config: testConfig(),
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	require.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("LEDGER_API_URL", "http://api.local")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.AppAddr)
	require.Equal(t, "http://api.local", cfg.LedgerAPIURL)
	require.False(t, cfg.IsProduction())

	t.Setenv("APP_ENV", "production")
	cfg, err = LoadConfig()
	require.NoError(t, err)
	require.True(t, cfg.IsProduction())
}
