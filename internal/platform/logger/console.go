package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/phrazzld/tasker-api/internal/config"
)

// consoleTransport writes JSON lines through a slog JSON handler.
type consoleTransport struct {
	logger *slog.Logger
}

// NewConsoleTransport creates a console transport writing to out, or stdout
// when out is nil. Level filtering happens in the facade handler, so the
// transport accepts everything.
func NewConsoleTransport(out io.Writer) Transport {
	if out == nil {
		out = os.Stdout
	}
	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: slog.LevelDebug,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey && len(groups) == 0 {
				if lvl, ok := a.Value.Any().(slog.Level); ok {
					a.Value = slog.StringValue(levelName(lvl))
				}
			}
			return a
		},
	})
	return &consoleTransport{logger: slog.New(handler)}
}

func consoleFactory(out io.Writer) Factory {
	return Factory{
		Build: func(config.Provider) (Transport, error) {
			return NewConsoleTransport(out), nil
		},
	}
}

func (t *consoleTransport) Kind() Kind { return KindConsole }

func (t *consoleTransport) log(level slog.Level, msg string, attrs []slog.Attr) {
	t.logger.LogAttrs(context.Background(), level, msg, attrs...)
}

func (t *consoleTransport) Debug(msg string, attrs ...slog.Attr) { t.log(slog.LevelDebug, msg, attrs) }
func (t *consoleTransport) Info(msg string, attrs ...slog.Attr)  { t.log(slog.LevelInfo, msg, attrs) }
func (t *consoleTransport) Warn(msg string, attrs ...slog.Attr)  { t.log(slog.LevelWarn, msg, attrs) }
func (t *consoleTransport) Error(msg string, attrs ...slog.Attr) { t.log(slog.LevelError, msg, attrs) }
func (t *consoleTransport) Critical(msg string, attrs ...slog.Attr) {
	t.log(LevelCritical, msg, attrs)
}

func (t *consoleTransport) Close() error { return nil }
