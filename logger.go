package sparsego

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/hupe1980/sparsego/krylov"
)

// Logger wraps slog.Logger with sparsego-specific context.
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

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// LogConvert logs one step of the format fallback chain.
func (l *Logger) LogConvert(ctx context.Context, from, to string, d time.Duration, err error) {
	if err != nil {
		l.WarnContext(ctx, "format conversion refused",
			"from", from,
			"to", to,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "format conversion completed",
			"from", from,
			"to", to,
			"duration", d,
		)
	}
}

// LogSpMV logs one matrix-vector product.
func (l *Logger) LogSpMV(ctx context.Context, format string, d time.Duration) {
	l.DebugContext(ctx, "spmv completed",
		"format", format,
		"duration", d,
	)
}

// LogSolve logs the outcome of a solver run.
func (l *Logger) LogSolve(ctx context.Context, res krylov.Result, err error) {
	switch {
	case err != nil:
		l.ErrorContext(ctx, "solve failed",
			"iterations", res.Iterations,
			"residual", res.Residual,
			"error", err,
		)
	case !res.Converged:
		l.WarnContext(ctx, "solve hit the iteration limit",
			"iterations", res.Iterations,
			"residual", res.Residual,
			"duration", res.Duration,
		)
	default:
		l.InfoContext(ctx, "solve converged",
			"iterations", res.Iterations,
			"residual", res.Residual,
			"duration", res.Duration,
		)
	}
}

// LogTransfer logs a bulk data movement (corpus fetch or space copy).
func (l *Logger) LogTransfer(ctx context.Context, name string, bytes int64, d time.Duration) {
	l.DebugContext(ctx, "transfer completed",
		"name", name,
		"bytes", bytes,
		"duration", d,
	)
}
