package logger

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/phrazzld/tasker-api/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	defaultDatadogSite    = "datadoghq.com"
	defaultDatadogService = "tasker-api"
	defaultDatadogLevel   = "INFO"
	datadogFlushInterval  = 5 * time.Second
	datadogQueueSize      = 64
)

// errDatadogQueueFull is returned when a batch is dropped because the
// intake has not kept up.
var errDatadogQueueFull = errors.New("datadog queue full, batch dropped")

// DatadogFactory returns the factory for the datadog transport. The probe
// requires datadog.api_key and a parseable datadog.log_level (default INFO).
func DatadogFactory() Factory {
	return Factory{
		Probe: func(p config.Provider) bool {
			key, err := config.ValueOr(p, "datadog.api_key", "")
			if err != nil || key == "" {
				return false
			}
			level, err := config.ValueOr(p, "datadog.log_level", defaultDatadogLevel)
			if err != nil {
				return false
			}
			_, err = zapcore.ParseLevel(strings.ToLower(level))
			return err == nil
		},
		Build: func(p config.Provider) (Transport, error) {
			key, err := config.Value[string](p, "datadog.api_key")
			if err != nil {
				return nil, err
			}
			site, err := config.ValueOr(p, "datadog.site", defaultDatadogSite)
			if err != nil {
				return nil, err
			}
			service, err := config.ValueOr(p, "datadog.service", defaultDatadogService)
			if err != nil {
				return nil, err
			}
			levelName, err := config.ValueOr(p, "datadog.log_level", defaultDatadogLevel)
			if err != nil {
				return nil, err
			}
			level, err := zapcore.ParseLevel(strings.ToLower(levelName))
			if err != nil {
				return nil, fmt.Errorf("invalid datadog.log_level %q: %w", levelName, err)
			}

			sink, err := newDatadogSink(datadogIntakeURL(site), key, nil)
			if err != nil {
				return nil, err
			}
			return NewDatadogTransport(sink, level, service), nil
		},
	}
}

// datadogTransport encodes entries with zap and ships them in batches.
type datadogTransport struct {
	logger *zap.Logger
	ws     *zapcore.BufferedWriteSyncer
	queue  *asyncWriter
}

// NewDatadogTransport creates a transport that writes JSON entries to sink,
// buffered and flushed periodically. Flushed batches are handed to a single
// background writer through a queue of datadogQueueSize batches; logging
// never waits on sink, and batches arriving while the queue is full are
// dropped.
func NewDatadogTransport(sink io.Writer, level zapcore.Level, service string) Transport {
	encCfg := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "status",
		MessageKey:     "message",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeLevel:    datadogLevelEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
	queue := newAsyncWriter(sink, datadogQueueSize)
	ws := &zapcore.BufferedWriteSyncer{
		WS:            zapcore.AddSync(queue),
		FlushInterval: datadogFlushInterval,
	}
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), ws, level)
	logger := zap.New(core).With(
		zap.String("service", service),
		zap.String("ddsource", "go"),
	)
	return &datadogTransport{logger: logger, ws: ws, queue: queue}
}

// datadogLevelEncoder writes Datadog status names. DPanic carries critical
// entries.
func datadogLevelEncoder(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	switch l {
	case zapcore.DebugLevel:
		enc.AppendString("debug")
	case zapcore.InfoLevel:
		enc.AppendString("info")
	case zapcore.WarnLevel:
		enc.AppendString("warn")
	case zapcore.ErrorLevel:
		enc.AppendString("error")
	default:
		enc.AppendString("critical")
	}
}

func (t *datadogTransport) Kind() Kind { return KindDatadog }

func (t *datadogTransport) Debug(msg string, attrs ...slog.Attr) {
	t.logger.Debug(msg, zapFields(attrs)...)
}

func (t *datadogTransport) Info(msg string, attrs ...slog.Attr) {
	t.logger.Info(msg, zapFields(attrs)...)
}

func (t *datadogTransport) Warn(msg string, attrs ...slog.Attr) {
	t.logger.Warn(msg, zapFields(attrs)...)
}

func (t *datadogTransport) Error(msg string, attrs ...slog.Attr) {
	t.logger.Error(msg, zapFields(attrs)...)
}

// Critical logs at DPanic, which does not panic outside development mode.
func (t *datadogTransport) Critical(msg string, attrs ...slog.Attr) {
	t.logger.DPanic(msg, zapFields(attrs)...)
}

func (t *datadogTransport) Close() error {
	return errors.Join(t.logger.Sync(), t.ws.Stop(), t.queue.Close())
}

// asyncWriter hands writes to a goroutine that forwards them to w in order.
type asyncWriter struct {
	w     io.Writer
	queue chan []byte
	done  chan struct{}

	mu     sync.RWMutex
	closed bool
	err    error // first forwarding error, read after done is closed
}

func newAsyncWriter(w io.Writer, size int) *asyncWriter {
	a := &asyncWriter{
		w:     w,
		queue: make(chan []byte, size),
		done:  make(chan struct{}),
	}
	go a.run()
	return a
}

func (a *asyncWriter) run() {
	defer close(a.done)
	for batch := range a.queue {
		if _, err := a.w.Write(batch); err != nil && a.err == nil {
			a.err = err
		}
	}
}

// Write queues a copy of p. It never blocks; a full queue drops p and
// returns errDatadogQueueFull.
func (a *asyncWriter) Write(p []byte) (int, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return 0, errors.New("datadog writer closed")
	}
	batch := make([]byte, len(p))
	copy(batch, p)
	select {
	case a.queue <- batch:
		return len(p), nil
	default:
		return 0, errDatadogQueueFull
	}
}

// Close stops accepting writes and waits for queued batches to be sent.
func (a *asyncWriter) Close() error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.mu.Unlock()
	<-a.done
	return a.err
}

func zapFields(attrs []slog.Attr) []zap.Field {
	if len(attrs) == 0 {
		return nil
	}
	m := attrsToMap(attrs)
	fields := make([]zap.Field, 0, len(m))
	for k, v := range m {
		fields = append(fields, zap.Any(k, v))
	}
	return fields
}

func datadogIntakeURL(site string) string {
	return "https://http-intake.logs." + site + "/api/v2/logs"
}

// datadogSink posts newline-delimited JSON entries to the Datadog intake as
// a JSON array.
type datadogSink struct {
	url    string
	apiKey string
	client *http.Client
}

func newDatadogSink(url, apiKey string, client *http.Client) (*datadogSink, error) {
	if url == "" {
		return nil, errors.New("datadog intake url cannot be empty")
	}
	if apiKey == "" {
		return nil, errors.New("datadog api key cannot be empty")
	}
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &datadogSink{url: url, apiKey: apiKey, client: client}, nil
}

// Write implements io.Writer. p holds one or more encoded entries.
func (s *datadogSink) Write(p []byte) (int, error) {
	lines := bytes.Split(bytes.TrimSpace(p), []byte("\n"))
	var body bytes.Buffer
	body.WriteByte('[')
	n := 0
	for _, line := range lines {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		if n > 0 {
			body.WriteByte(',')
		}
		body.Write(line)
		n++
	}
	body.WriteByte(']')
	if n == 0 {
		return len(p), nil
	}

	req, err := http.NewRequest(http.MethodPost, s.url, &body)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("DD-API-KEY", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("datadog intake request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return 0, fmt.Errorf("datadog intake returned status %d", resp.StatusCode)
	}
	return len(p), nil
}
