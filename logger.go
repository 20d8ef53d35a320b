package manifold

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with manifold-specific context.
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
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithK adds a k (cluster count) field to the logger.
func (l *Logger) WithK(k int) *Logger {
	return &Logger{
		Logger: l.Logger.With("k", k),
	}
}

// WithDimension adds a dimension field to the logger.
func (l *Logger) WithDimension(dim int) *Logger {
	return &Logger{
		Logger: l.Logger.With("dimension", dim),
	}
}

// WithJob adds a job name field to the logger.
func (l *Logger) WithJob(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("job", name),
	}
}

// LogCluster logs a clustering run.
func (l *Logger) LogCluster(ctx context.Context, k, samples int, res *Result, err error) {
	if err != nil {
		l.ErrorContext(ctx, "cluster failed",
			"k", k,
			"samples", samples,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "cluster completed",
		"k", k,
		"samples", samples,
		"iterations", res.Iterations,
		"state", res.State.String(),
		"inertia", res.Inertia,
	)
	if res.Repairs > 0 {
		l.DebugContext(ctx, "empty clusters repaired",
			"k", k,
			"repairs", res.Repairs,
		)
	}
	if res.State == StateMaxIterationsReached {
		l.InfoContext(ctx, "cluster stopped before convergence",
			"k", k,
			"iterations", res.Iterations,
		)
	}
}

// LogBatch logs a ClusterAll call.
func (l *Logger) LogBatch(ctx context.Context, count, failed int) {
	if failed > 0 {
		l.WarnContext(ctx, "batch cluster completed with failures",
			"total", count,
			"failed", failed,
		)
	} else {
		l.InfoContext(ctx, "batch cluster completed",
			"count", count,
		)
	}
}

// LogRejected logs a run refused by the resource controller.
func (l *Logger) LogRejected(ctx context.Context, k, samples int, err error) {
	l.WarnContext(ctx, "cluster rejected",
		"k", k,
		"samples", samples,
		"error", err,
	)
}
