package logger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/phrazzld/tasker-api/internal/config"
	"github.com/segmentio/kafka-go"
)

const defaultKafkaTopic = "tasker-logs"

// messageWriter is the part of *kafka.Writer the transport uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaFactory returns the factory for the kafka transport. The probe
// requires at least one entry in kafka.brokers.
func KafkaFactory() Factory {
	return Factory{
		Probe: func(p config.Provider) bool {
			brokers, err := config.ValueOr[[]string](p, "kafka.brokers", nil)
			return err == nil && len(brokers) > 0
		},
		Build: func(p config.Provider) (Transport, error) {
			brokers, err := config.Value[[]string](p, "kafka.brokers")
			if err != nil {
				return nil, err
			}
			if len(brokers) == 0 {
				return nil, errors.New("kafka.brokers cannot be empty")
			}
			topic, err := config.ValueOr(p, "kafka.topic", defaultKafkaTopic)
			if err != nil {
				return nil, err
			}
			service, err := config.ValueOr(p, "datadog.service", defaultDatadogService)
			if err != nil {
				return nil, err
			}

			w := &kafka.Writer{
				Addr:         kafka.TCP(brokers...),
				Topic:        topic,
				Balancer:     &kafka.LeastBytes{},
				BatchTimeout: 50 * time.Millisecond,
				RequiredAcks: kafka.RequireOne,
				Async:        true,
				// The writer must not log through slog, which would loop back here.
				ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
					fmt.Fprintf(os.Stderr, "kafka log transport: "+msg+"\n", args...)
				}),
			}
			return NewKafkaTransport(w, service), nil
		},
	}
}

// kafkaTransport produces one JSON message per entry, keyed by service.
type kafkaTransport struct {
	writer  messageWriter
	service string
	now     func() time.Time
}

// NewKafkaTransport wraps w, which should be an async writer so logging
// never waits on the broker.
func NewKafkaTransport(w messageWriter, service string) Transport {
	return &kafkaTransport{writer: w, service: service, now: time.Now}
}

func (t *kafkaTransport) Kind() Kind { return KindKafka }

func (t *kafkaTransport) send(level slog.Level, msg string, attrs []slog.Attr) {
	entry := attrsToMap(attrs)
	entry["time"] = t.now().UTC().Format(time.RFC3339Nano)
	entry["level"] = levelName(level)
	entry["msg"] = msg
	entry["service"] = t.service

	value, err := json.Marshal(entry)
	if err != nil {
		value, _ = json.Marshal(map[string]any{
			"time":  entry["time"],
			"level": entry["level"],
			"msg":   msg,
			"error": "unencodable attributes: " + err.Error(),
		})
	}

	if err := t.writer.WriteMessages(context.Background(), kafka.Message{
		Key:   []byte(t.service),
		Value: value,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "kafka log transport: %v\n", err)
	}
}

func (t *kafkaTransport) Debug(msg string, attrs ...slog.Attr) { t.send(slog.LevelDebug, msg, attrs) }
func (t *kafkaTransport) Info(msg string, attrs ...slog.Attr)  { t.send(slog.LevelInfo, msg, attrs) }
func (t *kafkaTransport) Warn(msg string, attrs ...slog.Attr)  { t.send(slog.LevelWarn, msg, attrs) }
func (t *kafkaTransport) Error(msg string, attrs ...slog.Attr) { t.send(slog.LevelError, msg, attrs) }
func (t *kafkaTransport) Critical(msg string, attrs ...slog.Attr) {
	t.send(LevelCritical, msg, attrs)
}

func (t *kafkaTransport) Close() error { return t.writer.Close() }
