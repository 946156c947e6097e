package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"reviewdesk/contexts/listing-moderation/review-service/ports"

	"github.com/cenkalti/backoff/v4"
	"github.com/segmentio/kafka-go"
)

// Kafka is the event bus adapter used by the outbox relay. Each publish is
// retried with exponential backoff before the relay gives up on the cycle.
type Kafka struct {
	writer     messageWriter
	maxRetries uint64
	maxElapsed time.Duration
	logger     *slog.Logger
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

func NewKafka(brokers []string, logger *slog.Logger) (*Kafka, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka brokers are required")
	}
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return newKafka(writer, logger), nil
}

func newKafka(writer messageWriter, logger *slog.Logger) *Kafka {
	if logger == nil {
		logger = slog.Default()
	}
	return &Kafka{
		writer:     writer,
		maxRetries: 3,
		maxElapsed: 30 * time.Second,
		logger:     logger,
	}
}

func (k *Kafka) Publish(ctx context.Context, topic string, event ports.EventEnvelope) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	message := kafka.Message{
		Topic: topic,
		Key:   []byte(event.PartitionKey),
		Value: payload,
		Time:  event.OccurredAt.UTC(),
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "schema_version", Value: []byte(strconv.Itoa(event.SchemaVersion))},
		},
	}

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = 100 * time.Millisecond
	expBackoff.MaxElapsedTime = k.maxElapsed
	policy := backoff.WithContext(backoff.WithMaxRetries(expBackoff, k.maxRetries), ctx)

	attempt := 0
	err = backoff.Retry(func() error {
		attempt++
		writeErr := k.writer.WriteMessages(ctx, message)
		if writeErr != nil {
			k.logger.Warn("event publish attempt failed",
				"event", "kafka_publish_retry",
				"module", "internal/platform/messaging",
				"layer", "platform",
				"topic", topic,
				"event_id", event.EventID,
				"attempt", attempt,
				"error", writeErr.Error(),
			)
		}
		return writeErr
	}, policy)
	if err != nil {
		return err
	}

	k.logger.Info("event published",
		"event", "kafka_publish",
		"module", "internal/platform/messaging",
		"layer", "platform",
		"topic", topic,
		"event_id", event.EventID,
		"event_type", event.EventType,
	)
	return nil
}

func (k *Kafka) Close() error {
	if k == nil || k.writer == nil {
		return nil
	}
	return k.writer.Close()
}
