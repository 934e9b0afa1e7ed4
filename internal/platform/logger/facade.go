package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/phrazzld/tasker-api/internal/config"
)

// Facade fans log calls out to an ordered set of transports. The set is
// built once by Initialize and is read-only afterwards.
type Facade struct {
	provider  config.Provider
	factories map[Kind]Factory
	onFailure func(kind Kind, err error)

	once       sync.Once
	transports []Transport
	failures   atomic.Int64
}

// Option configures a Facade.
type Option func(*Facade)

// WithFactory registers or replaces the factory for kind.
func WithFactory(kind Kind, f Factory) Option {
	return func(fc *Facade) {
		fc.factories[kind] = f
	}
}

// WithConsoleWriter sends console output to w instead of stdout.
func WithConsoleWriter(w io.Writer) Option {
	return WithFactory(KindConsole, consoleFactory(w))
}

// WithFailureHook is called after a transport call panics and is recovered.
func WithFailureHook(hook func(kind Kind, err error)) Option {
	return func(fc *Facade) {
		fc.onFailure = hook
	}
}

// NewFacade creates a facade with the console, datadog and kafka factories
// registered. Nothing is built until Initialize.
func NewFacade(p config.Provider, opts ...Option) *Facade {
	if p == nil {
		p = config.MapProvider{}
	}
	f := &Facade{
		provider: p,
		factories: map[Kind]Factory{
			KindConsole: consoleFactory(nil),
			KindDatadog: DatadogFactory(),
			KindKafka:   KafkaFactory(),
		},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Initialize builds the transports for kinds, in order. Console is always
// built. Other kinds are built only when their probe succeeds, and a kind
// whose constructor fails is left out. Unknown kinds are ignored.
// Initialize never fails and only the first call has any effect.
func (f *Facade) Initialize(kinds []Kind) {
	f.once.Do(func() {
		for _, kind := range kinds {
			if t := f.build(kind); t != nil {
				f.transports = append(f.transports, t)
			}
		}
	})
}

func (f *Facade) build(kind Kind) (t Transport) {
	factory, ok := f.factories[kind]
	if !ok || factory.Build == nil {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			t = nil
		}
	}()

	if kind != KindConsole && factory.Probe != nil && !factory.Probe(f.provider) {
		return nil
	}
	t, err := factory.Build(f.provider)
	if err != nil {
		return nil
	}
	return t
}

// Kinds lists the active transports in registration order.
func (f *Facade) Kinds() []Kind {
	kinds := make([]Kind, len(f.transports))
	for i, t := range f.transports {
		kinds[i] = t.Kind()
	}
	return kinds
}

// Failures is the number of transport calls that panicked.
func (f *Facade) Failures() int64 {
	return f.failures.Load()
}

// Debug logs at debug level on every transport.
func (f *Facade) Debug(msg string, attrs ...slog.Attr) { f.dispatch(slog.LevelDebug, msg, attrs) }

// Info logs at info level on every transport.
func (f *Facade) Info(msg string, attrs ...slog.Attr) { f.dispatch(slog.LevelInfo, msg, attrs) }

// Warn logs at warn level on every transport.
func (f *Facade) Warn(msg string, attrs ...slog.Attr) { f.dispatch(slog.LevelWarn, msg, attrs) }

// Error logs at error level on every transport.
func (f *Facade) Error(msg string, attrs ...slog.Attr) { f.dispatch(slog.LevelError, msg, attrs) }

// Critical logs at critical level on every transport.
func (f *Facade) Critical(msg string, attrs ...slog.Attr) { f.dispatch(LevelCritical, msg, attrs) }

func (f *Facade) dispatch(level slog.Level, msg string, attrs []slog.Attr) {
	for _, t := range f.transports {
		f.call(t, level, msg, attrs)
	}
}

// call runs one transport method, containing any panic it raises.
func (f *Facade) call(t Transport, level slog.Level, msg string, attrs []slog.Attr) {
	defer func() {
		if r := recover(); r != nil {
			f.failures.Add(1)
			if f.onFailure != nil {
				f.onFailure(t.Kind(), fmt.Errorf("transport panic: %v", r))
			}
		}
	}()
	levelMethod(t, level)(msg, attrs...)
}

// Close closes every transport, flushing buffered entries.
func (f *Facade) Close() error {
	var errs []error
	for _, t := range f.transports {
		if err := t.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s transport: %w", t.Kind(), err))
		}
	}
	return errors.Join(errs...)
}

// Handler returns a slog.Handler that forwards records at or above level to
// the facade.
func (f *Facade) Handler(level slog.Leveler) slog.Handler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &facadeHandler{facade: f, level: level}
}

// facadeHandler adapts the facade to slog. Attributes added with WithAttrs
// are wrapped in the groups open at that point.
type facadeHandler struct {
	facade *Facade
	level  slog.Leveler
	attrs  []slog.Attr
	groups []string
}

func (h *facadeHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *facadeHandler) Handle(_ context.Context, r slog.Record) error {
	recAttrs := make([]slog.Attr, 0, r.NumAttrs())
	r.Attrs(func(a slog.Attr) bool {
		recAttrs = append(recAttrs, a)
		return true
	})

	attrs := make([]slog.Attr, 0, len(h.attrs)+1)
	attrs = append(attrs, h.attrs...)
	if len(recAttrs) > 0 {
		attrs = append(attrs, nest(h.groups, recAttrs)...)
	}

	h.facade.dispatch(r.Level, r.Message, attrs)
	return nil
}

func (h *facadeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	next := h.clone()
	next.attrs = append(next.attrs, nest(h.groups, attrs)...)
	return next
}

func (h *facadeHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := h.clone()
	next.groups = append(next.groups, name)
	return next
}

func (h *facadeHandler) clone() *facadeHandler {
	return &facadeHandler{
		facade: h.facade,
		level:  h.level,
		attrs:  append([]slog.Attr(nil), h.attrs...),
		groups: append([]string(nil), h.groups...),
	}
}

// nest wraps attrs in groups, innermost last.
func nest(groups []string, attrs []slog.Attr) []slog.Attr {
	for i := len(groups) - 1; i >= 0; i-- {
		attrs = []slog.Attr{{Key: groups[i], Value: slog.GroupValue(attrs...)}}
	}
	return attrs
}

// Fallback is a console-only facade for code paths that run before
// configuration is loaded.
func Fallback() *Facade {
	f := NewFacade(nil, WithConsoleWriter(os.Stderr))
	f.Initialize([]Kind{KindConsole})
	return f
}
