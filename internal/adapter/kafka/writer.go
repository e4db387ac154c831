package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/sardis-lake-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// messageWriter is the subset of *kafkago.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes conditions snapshots to a Kafka topic.
// It implements dashboard.Publisher.
type Writer struct {
	writer messageWriter
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the given brokers and topic.
func NewWriter(brokers []string, topic string, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.LeastBytes{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish serializes one snapshot and writes it keyed by its ID.
func (w *Writer) Publish(ctx context.Context, c domain.Conditions) error {
	msg, err := serializeToMessage(c)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish conditions %s: %w", c.ID, err)
	}
	w.logger.Debug("conditions published", "id", c.ID)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a Conditions snapshot into a Kafka message.
func serializeToMessage(c domain.Conditions) (kafkago.Message, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize conditions: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(c.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "lake", Value: []byte(c.Lake)},
			{Key: "generated_at", Value: []byte(c.GeneratedAt.Format(time.RFC3339))},
			{Key: "approximate", Value: []byte(fmt.Sprint(c.Elevation.Approximate || c.Weather.Approximate))},
		},
	}, nil
}
