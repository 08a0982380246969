package astrocache

import (
	"context"
	"log/slog"
	"os"

	"github.com/hupe1980/astrocache/memory"
)

// Logger wraps slog.Logger with astrocache-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithComponent tags every record with the emitting component.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("component", name),
	}
}

// LogCleanup logs a sweep of expired cache entries.
func (l *Logger) LogCleanup(ctx context.Context, dir string, removed int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "cache cleanup failed",
			"dir", dir,
			"removed", removed,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "cache cleanup completed",
			"dir", dir,
			"removed", removed,
		)
	}
}

// LogClear logs the removal of every variant of a cache entry name.
// An empty name means the whole directory.
func (l *Logger) LogClear(ctx context.Context, name string, removed int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "cache clear failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "cache cleared",
			"name", name,
			"removed", removed,
		)
	}
}

// LogMemory logs a memory snapshot, at WARN when above the warning threshold.
func (l *Logger) LogMemory(ctx context.Context, st memory.Stats) {
	level := slog.LevelInfo
	if st.AboveWarning {
		level = slog.LevelWarn
	}
	l.Log(ctx, level, "memory usage",
		"rss", st.RSS,
		"budget", st.Budget.MaxBytes,
		"percent_of_budget", st.PercentOfBudget,
		"tracked", st.TrackedKeys,
	)
}
