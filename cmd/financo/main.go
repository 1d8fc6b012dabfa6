package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/financo-app/financo/internal/app"
	"github.com/financo-app/financo/internal/ledger"
	"github.com/financo-app/financo/internal/observability"
	"github.com/financo-app/financo/internal/reports"
	reporthttp "github.com/financo-app/financo/internal/reports/http"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	ledgerClient, err := ledger.NewClient(cfg.LedgerAPIURL, cfg.LedgerAPIToken, cfg.LedgerAPITimeout)
	if err != nil {
		logger.Error("ledger client", slog.Any("error", err))
		os.Exit(1)
	}

	cache := reports.NewCache(redisClient, cfg.ReportCacheTTL)
	if err := cache.ListenForInvalidation(ctx, ""); err != nil {
		logger.Warn("cache invalidation subscribe", slog.Any("error", err))
	}

	metrics := observability.NewMetrics()
	reportService := reports.NewService(ledgerClient, cache, logger, metrics)
	reportsHandler := reporthttp.NewHandler(logger, reportService)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		ReportsHandler: reportsHandler,
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
