package commands

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"reviewdesk/contexts/listing-moderation/review-service/ports"
)

const (
	eventFieldDecided        = "review.submission.field_decided"
	eventVideoDecided        = "review.submission.video_decided"
	eventSubmissionApproved  = "review.submission.approved"
	eventSubmissionResubmit  = "review.submission.resubmitted"
	eventFeedbackSent        = "review.submission.feedback_sent"
	eventSubmissionSaved     = "review.submission.saved"
	eventChangeSetCreated    = "review.change_set.created"
	eventChangeSetReviewed   = "review.change_set.reviewed"
	eventBulkApproveFinished = "review.bulk_approve.completed"
)

func newReviewEnvelope(
	eventID string,
	eventType string,
	partitionKeyPath string,
	partitionKey string,
	occurredAt time.Time,
	data map[string]any,
) (ports.EventEnvelope, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    "review-service",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: partitionKeyPath,
		PartitionKey:     partitionKey,
		Data:             payload,
	}, nil
}

// eventEmitter appends integration events after a state change has been
// committed. The decision is already durable at that point, so failures are
// logged rather than returned.
type eventEmitter struct {
	outbox ports.OutboxWriter
	idGen  ports.IDGenerator
	logger *slog.Logger
}

func (e eventEmitter) emit(
	ctx context.Context,
	eventType string,
	partitionKeyPath string,
	partitionKey string,
	occurredAt time.Time,
	data map[string]any,
) {
	if e.outbox == nil || e.idGen == nil {
		return
	}
	eventID, err := e.idGen.NewID(ctx)
	if err == nil {
		var envelope ports.EventEnvelope
		envelope, err = newReviewEnvelope(eventID, eventType, partitionKeyPath, partitionKey, occurredAt, data)
		if err == nil {
			err = e.outbox.AppendOutbox(ctx, envelope)
		}
	}
	if err != nil {
		e.logger.Error("review outbox append failed",
			"event", "review_outbox_append_failed",
			"module", "listing-moderation/review-service",
			"layer", "application",
			"event_type", eventType,
			"partition_key", partitionKey,
			"error", err.Error(),
		)
	}
}
