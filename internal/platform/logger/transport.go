package logger

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/tasker-api/internal/config"
)

// Kind identifies a log transport.
type Kind string

// Known transport kinds.
const (
	KindConsole Kind = "console"
	KindDatadog Kind = "datadog"
	KindKafka   Kind = "kafka"
)

// Transport is one logging backend.
type Transport interface {
	Kind() Kind
	Debug(msg string, attrs ...slog.Attr)
	Info(msg string, attrs ...slog.Attr)
	Warn(msg string, attrs ...slog.Attr)
	Error(msg string, attrs ...slog.Attr)
	Critical(msg string, attrs ...slog.Attr)
	// Close flushes buffered entries and releases resources.
	Close() error
}

// Factory knows how to check for and build one kind of transport.
type Factory struct {
	// Probe reports whether the transport's required configuration is
	// present. A nil Probe means always available.
	Probe func(p config.Provider) bool
	// Build constructs the transport.
	Build func(p config.Provider) (Transport, error)
}

// ParseKinds converts configured names to kinds, preserving order and
// dropping blanks and duplicates.
func ParseKinds(names []string) []Kind {
	seen := make(map[Kind]bool, len(names))
	kinds := make([]Kind, 0, len(names))
	for _, n := range names {
		k := Kind(strings.ToLower(strings.TrimSpace(n)))
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		kinds = append(kinds, k)
	}
	return kinds
}

// levelMethod returns the transport method matching a slog level.
func levelMethod(t Transport, level slog.Level) func(string, ...slog.Attr) {
	switch {
	case level >= LevelCritical:
		return t.Critical
	case level >= slog.LevelError:
		return t.Error
	case level >= slog.LevelWarn:
		return t.Warn
	case level >= slog.LevelInfo:
		return t.Info
	default:
		return t.Debug
	}
}

// levelName is the text used for a level by the console and kafka transports.
func levelName(level slog.Level) string {
	if level >= LevelCritical {
		return "CRITICAL"
	}
	return level.String()
}

// attrsToMap flattens attributes into a JSON-friendly map. Groups become
// nested maps, and groups sharing a key are merged.
func attrsToMap(attrs []slog.Attr) map[string]any {
	m := make(map[string]any, len(attrs))
	for _, a := range attrs {
		v := a.Value.Resolve()
		if v.Kind() == slog.KindGroup {
			if a.Key == "" {
				for k, gv := range attrsToMap(v.Group()) {
					m[k] = gv
				}
				continue
			}
			group := attrsToMap(v.Group())
			if existing, ok := m[a.Key].(map[string]any); ok {
				for k, gv := range group {
					existing[k] = gv
				}
				continue
			}
			m[a.Key] = group
			continue
		}
		if a.Key == "" {
			continue
		}
		switch v.Kind() {
		case slog.KindAny:
			if err, ok := v.Any().(error); ok {
				m[a.Key] = err.Error()
				continue
			}
			if s, ok := v.Any().(fmt.Stringer); ok {
				m[a.Key] = s.String()
				continue
			}
			m[a.Key] = v.Any()
		case slog.KindDuration:
			m[a.Key] = v.Duration().String()
		default:
			m[a.Key] = v.Any()
		}
	}
	return m
}
