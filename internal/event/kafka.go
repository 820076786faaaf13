package event

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"idatech-backoffice/internal/observability"
)

// MessageWriter is the subset of *kafka.Writer the forwarder needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewKafkaWriter builds a synchronous writer for one topic.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Compression:  kafka.Snappy,
		Async:        false,
	}
}

// Forwarder copies every bus event to Kafka, keyed by event type.
type Forwarder struct {
	bus          Bus
	writer       MessageWriter
	writeTimeout time.Duration
}

func NewForwarder(bus Bus, writer MessageWriter, writeTimeout time.Duration) *Forwarder {
	if writeTimeout <= 0 {
		writeTimeout = 5 * time.Second
	}
	return &Forwarder{bus: bus, writer: writer, writeTimeout: writeTimeout}
}

// Run forwards events until ctx is cancelled. Failed writes are logged and skipped.
func (f *Forwarder) Run(ctx context.Context) {
	events, unsubscribe := f.bus.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			f.forward(ctx, e)
		}
	}
}

func (f *Forwarder) forward(ctx context.Context, e Event) {
	value, err := json.Marshal(e)
	if err != nil {
		slog.Error("failed to marshal event for kafka", "error", err, "type", e.Type)
		return
	}

	writeCtx, cancel := context.WithTimeout(ctx, f.writeTimeout)
	defer cancel()

	err = f.writer.WriteMessages(writeCtx, kafka.Message{
		Key:   []byte(e.Type),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(e.ID)},
		},
	})
	if err != nil {
		observability.RecordEventForwardFailed()
		slog.Warn("failed to forward event to kafka", "error", err, "type", e.Type, "event_id", e.ID)
	}
}

func (f *Forwarder) Close() error {
	return f.writer.Close()
}
