package app

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewLoggerHonorsLevel(t *testing.T) {
	ctx := context.Background()

	quiet := NewLogger(&Config{LogLevel: "warn"})
	require.False(t, quiet.Enabled(ctx, slog.LevelInfo))
	require.True(t, quiet.Enabled(ctx, slog.LevelWarn))

	verbose := NewLogger(&Config{LogLevel: "debug", LogFormat: "json"})
	require.True(t, verbose.Enabled(ctx, slog.LevelDebug))

	fallback := NewLogger(nil)
	require.True(t, fallback.Enabled(ctx, slog.LevelInfo))
	require.False(t, fallback.Enabled(ctx, slog.LevelDebug))
}

func TestLogLevelParsing(t *testing.T) {
	require.Equal(t, slog.LevelDebug, logLevel(&Config{LogLevel: "DEBUG"}))
	require.Equal(t, slog.LevelError, logLevel(&Config{LogLevel: "error"}))
	require.Equal(t, slog.LevelInfo, logLevel(&Config{LogLevel: "verbose"}))
	require.Equal(t, slog.LevelInfo, logLevel(nil))
}
