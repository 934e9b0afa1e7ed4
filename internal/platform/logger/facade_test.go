package logger

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/phrazzld/tasker-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	kind  Kind
	level string
	msg   string
	attrs map[string]any
}

// recorder collects calls from every fake transport in order.
type recorder struct {
	mu    sync.Mutex
	calls []call
}

func (r *recorder) add(c call) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
}

func (r *recorder) all() []call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]call(nil), r.calls...)
}

type fakeTransport struct {
	kind     Kind
	rec      *recorder
	panics   bool
	closeErr error
	closed   bool
}

func (f *fakeTransport) Kind() Kind { return f.kind }

func (f *fakeTransport) record(level, msg string, attrs []slog.Attr) {
	if f.panics {
		panic("transport exploded")
	}
	f.rec.add(call{kind: f.kind, level: level, msg: msg, attrs: attrsToMap(attrs)})
}

func (f *fakeTransport) Debug(msg string, attrs ...slog.Attr)    { f.record("debug", msg, attrs) }
func (f *fakeTransport) Info(msg string, attrs ...slog.Attr)     { f.record("info", msg, attrs) }
func (f *fakeTransport) Warn(msg string, attrs ...slog.Attr)     { f.record("warn", msg, attrs) }
func (f *fakeTransport) Error(msg string, attrs ...slog.Attr)    { f.record("error", msg, attrs) }
func (f *fakeTransport) Critical(msg string, attrs ...slog.Attr) { f.record("critical", msg, attrs) }

func (f *fakeTransport) Close() error {
	f.closed = true
	return f.closeErr
}

func fakeFactory(t Transport) Factory {
	return Factory{
		Build: func(config.Provider) (Transport, error) { return t, nil },
	}
}

func TestFacadeInitialize(t *testing.T) {
	t.Run("console_only", func(t *testing.T) {
		rec := &recorder{}
		f := NewFacade(nil, WithFactory(KindConsole, fakeFactory(&fakeTransport{kind: KindConsole, rec: rec})))
		f.Initialize([]Kind{KindConsole})

		assert.Equal(t, []Kind{KindConsole}, f.Kinds())
	})

	t.Run("empty_list_gives_no_transports", func(t *testing.T) {
		f := NewFacade(nil)
		f.Initialize(nil)

		assert.Empty(t, f.Kinds())
		assert.NotPanics(t, func() { f.Info("dropped") })
	})

	t.Run("remote_without_configuration_is_skipped", func(t *testing.T) {
		rec := &recorder{}
		f := NewFacade(config.MapProvider{},
			WithFactory(KindConsole, fakeFactory(&fakeTransport{kind: KindConsole, rec: rec})))
		f.Initialize([]Kind{KindConsole, KindDatadog, KindKafka})

		assert.Equal(t, []Kind{KindConsole}, f.Kinds())
	})

	t.Run("probe_false_is_skipped", func(t *testing.T) {
		rec := &recorder{}
		built := false
		f := NewFacade(nil, WithFactory(KindDatadog, Factory{
			Probe: func(config.Provider) bool { return false },
			Build: func(config.Provider) (Transport, error) {
				built = true
				return &fakeTransport{kind: KindDatadog, rec: rec}, nil
			},
		}))
		f.Initialize([]Kind{KindDatadog})

		assert.False(t, built)
		assert.Empty(t, f.Kinds())
	})

	t.Run("build_error_is_skipped_and_rest_continue", func(t *testing.T) {
		rec := &recorder{}
		f := NewFacade(nil,
			WithFactory(KindConsole, fakeFactory(&fakeTransport{kind: KindConsole, rec: rec})),
			WithFactory(KindDatadog, Factory{
				Probe: func(config.Provider) bool { return true },
				Build: func(config.Provider) (Transport, error) { return nil, errors.New("bad credentials") },
			}),
			WithFactory(KindKafka, Factory{
				Probe: func(config.Provider) bool { return true },
				Build: func(config.Provider) (Transport, error) {
					return &fakeTransport{kind: KindKafka, rec: rec}, nil
				},
			}),
		)
		f.Initialize([]Kind{KindConsole, KindDatadog, KindKafka})

		assert.Equal(t, []Kind{KindConsole, KindKafka}, f.Kinds())
	})

	t.Run("panicking_probe_is_skipped", func(t *testing.T) {
		f := NewFacade(nil, WithFactory(KindKafka, Factory{
			Probe: func(config.Provider) bool { panic("probe exploded") },
			Build: func(config.Provider) (Transport, error) { return nil, nil },
		}))
		assert.NotPanics(t, func() { f.Initialize([]Kind{KindKafka}) })
		assert.Empty(t, f.Kinds())
	})

	t.Run("unknown_kind_is_ignored", func(t *testing.T) {
		rec := &recorder{}
		f := NewFacade(nil, WithFactory(KindConsole, fakeFactory(&fakeTransport{kind: KindConsole, rec: rec})))
		f.Initialize([]Kind{"carrier-pigeon", KindConsole})

		assert.Equal(t, []Kind{KindConsole}, f.Kinds())
	})

	t.Run("only_first_call_counts", func(t *testing.T) {
		rec := &recorder{}
		f := NewFacade(nil,
			WithFactory(KindConsole, fakeFactory(&fakeTransport{kind: KindConsole, rec: rec})),
			WithFactory(KindKafka, fakeFactory(&fakeTransport{kind: KindKafka, rec: rec})),
		)
		f.Initialize([]Kind{KindConsole})
		f.Initialize([]Kind{KindConsole, KindKafka})

		assert.Equal(t, []Kind{KindConsole}, f.Kinds())
	})
}

func TestFacadeDispatch(t *testing.T) {
	rec := &recorder{}
	f := NewFacade(nil,
		WithFactory(KindConsole, fakeFactory(&fakeTransport{kind: KindConsole, rec: rec})),
		WithFactory(KindKafka, fakeFactory(&fakeTransport{kind: KindKafka, rec: rec})),
	)
	f.Initialize([]Kind{KindConsole, KindKafka})

	f.Debug("d")
	f.Info("i", slog.String("k", "v"))
	f.Warn("w")
	f.Error("e")
	f.Critical("c")

	calls := rec.all()
	require.Len(t, calls, 10)

	levels := []string{"debug", "info", "warn", "error", "critical"}
	for i, level := range levels {
		assert.Equal(t, KindConsole, calls[2*i].kind)
		assert.Equal(t, KindKafka, calls[2*i+1].kind)
		assert.Equal(t, level, calls[2*i].level)
		assert.Equal(t, level, calls[2*i+1].level)
	}
	assert.Equal(t, "v", calls[2].attrs["k"])
}

func TestFacadeIsolatesPanickingTransport(t *testing.T) {
	rec := &recorder{}
	var hooked []Kind
	f := NewFacade(nil,
		WithFactory(KindConsole, fakeFactory(&fakeTransport{kind: KindConsole, rec: rec, panics: true})),
		WithFactory(KindKafka, fakeFactory(&fakeTransport{kind: KindKafka, rec: rec})),
		WithFailureHook(func(kind Kind, err error) {
			hooked = append(hooked, kind)
			assert.Contains(t, err.Error(), "transport exploded")
		}),
	)
	f.Initialize([]Kind{KindConsole, KindKafka})

	assert.NotPanics(t, func() { f.Error("still delivered") })

	calls := rec.all()
	require.Len(t, calls, 1)
	assert.Equal(t, KindKafka, calls[0].kind)
	assert.Equal(t, "still delivered", calls[0].msg)
	assert.Equal(t, int64(1), f.Failures())
	assert.Equal(t, []Kind{KindConsole}, hooked)
}

func TestFacadeClose(t *testing.T) {
	rec := &recorder{}
	console := &fakeTransport{kind: KindConsole, rec: rec}
	kafka := &fakeTransport{kind: KindKafka, rec: rec, closeErr: errors.New("broker gone")}
	f := NewFacade(nil,
		WithFactory(KindConsole, fakeFactory(console)),
		WithFactory(KindKafka, fakeFactory(kafka)),
	)
	f.Initialize([]Kind{KindConsole, KindKafka})

	err := f.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kafka")
	assert.True(t, console.closed)
	assert.True(t, kafka.closed)
}

func TestFacadeHandler(t *testing.T) {
	rec := &recorder{}
	f := NewFacade(nil, WithFactory(KindConsole, fakeFactory(&fakeTransport{kind: KindConsole, rec: rec})))
	f.Initialize([]Kind{KindConsole})

	t.Run("filters_below_level", func(t *testing.T) {
		l := slog.New(f.Handler(slog.LevelInfo))
		assert.False(t, l.Enabled(context.Background(), slog.LevelDebug))
		assert.True(t, l.Enabled(context.Background(), slog.LevelWarn))
	})

	t.Run("maps_levels", func(t *testing.T) {
		rec.calls = nil
		l := slog.New(f.Handler(slog.LevelDebug))
		l.Debug("d")
		l.Info("i")
		l.Warn("w")
		l.Error("e")
		l.Log(context.Background(), LevelCritical, "c")

		calls := rec.all()
		require.Len(t, calls, 5)
		for i, level := range []string{"debug", "info", "warn", "error", "critical"} {
			assert.Equal(t, level, calls[i].level)
		}
	})

	t.Run("with_attrs_and_groups", func(t *testing.T) {
		rec.calls = nil
		l := slog.New(f.Handler(slog.LevelDebug)).
			With(slog.String("component", "task_service")).
			WithGroup("req").
			With(slog.String("id", "r1"))
		l.Info("handled", slog.Int("status", 200))

		calls := rec.all()
		require.Len(t, calls, 1)
		attrs := calls[0].attrs
		assert.Equal(t, "task_service", attrs["component"])
		req, ok := attrs["req"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "r1", req["id"])
		assert.Equal(t, int64(200), req["status"])
	})
}

func TestParseKinds(t *testing.T) {
	assert.Equal(t,
		[]Kind{KindConsole, KindDatadog},
		ParseKinds([]string{" Console", "datadog", "", "console"}))
	assert.Empty(t, ParseKinds(nil))
}
