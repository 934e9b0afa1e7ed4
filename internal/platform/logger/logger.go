package logger

import (
	"context"
	"log/slog"
	"strings"
)

// LevelCritical sits above slog.LevelError for failures that need a human.
const LevelCritical = slog.LevelError + 4

type contextKey struct{}

// ParseLevel converts a configured level name (case-insensitive) to a slog
// level. The second result is false for unknown names, in which case info is
// returned.
func ParseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	case "critical":
		return LevelCritical, true
	default:
		return slog.LevelInfo, false
	}
}

// Setup builds the application logger on top of an initialized facade and
// installs it as the slog default.
func Setup(f *Facade, level string) *slog.Logger {
	lvl, ok := ParseLevel(level)
	logger := slog.New(f.Handler(lvl))
	slog.SetDefault(logger)

	if !ok {
		logger.Warn("invalid log level configured, using default level",
			slog.String("configured_level", level),
			slog.String("default_level", "info"))
	}
	return logger
}

// WithLogger returns a copy of ctx carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	if logger == nil {
		panic("logger cannot be nil")
	}
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext returns the logger stored in ctx, or slog.Default.
func FromContext(ctx context.Context) *slog.Logger {
	return FromContextOrDefault(ctx, slog.Default())
}

// FromContextOrDefault returns the logger stored in ctx, or def when ctx has
// none. A request-scoped logger carries the trace id, so it wins over a
// component logger.
func FromContextOrDefault(ctx context.Context, def *slog.Logger) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(contextKey{}).(*slog.Logger); ok && l != nil {
			return l
		}
	}
	if def == nil {
		return slog.Default()
	}
	return def
}
