package messaging

import (
	"context"
	"errors"
	"testing"
	"time"

	"reviewdesk/contexts/listing-moderation/review-service/ports"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	failures int
	calls    int
	written  []kafka.Message
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.calls++
	if w.calls <= w.failures {
		return errors.New("broker unavailable")
	}
	w.written = append(w.written, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func testEnvelope() ports.EventEnvelope {
	return ports.EventEnvelope{
		EventID:       "evt-1",
		EventType:     "review.submission.approved",
		OccurredAt:    time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		SourceService: "review-service",
		SchemaVersion: 1,
		PartitionKey:  "sub-1",
		Data:          []byte(`{"submission_id":"sub-1"}`),
	}
}

func TestPublishWritesKeyedMessage(t *testing.T) {
	writer := &fakeWriter{}
	bus := newKafka(writer, nil)

	err := bus.Publish(context.Background(), "review.submission.approved", testEnvelope())
	require.NoError(t, err)
	require.Len(t, writer.written, 1)

	msg := writer.written[0]
	assert.Equal(t, "review.submission.approved", msg.Topic)
	assert.Equal(t, []byte("sub-1"), msg.Key)
	assert.Contains(t, string(msg.Value), `"event_id":"evt-1"`)
}

func TestPublishRetriesTransientFailures(t *testing.T) {
	writer := &fakeWriter{failures: 2}
	bus := newKafka(writer, nil)

	err := bus.Publish(context.Background(), "review.submission.approved", testEnvelope())
	require.NoError(t, err)
	assert.Equal(t, 3, writer.calls)
	assert.Len(t, writer.written, 1)
}

func TestPublishGivesUpAfterMaxRetries(t *testing.T) {
	writer := &fakeWriter{failures: 10}
	bus := newKafka(writer, nil)
	bus.maxRetries = 1

	err := bus.Publish(context.Background(), "review.submission.approved", testEnvelope())
	require.Error(t, err)
	assert.Equal(t, 2, writer.calls)
	assert.Empty(t, writer.written)
}

func TestNewKafkaRequiresBrokers(t *testing.T) {
	_, err := NewKafka(nil, nil)
	require.Error(t, err)
}
