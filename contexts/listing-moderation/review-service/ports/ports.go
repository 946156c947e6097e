package ports

import (
	"context"
	"time"

	"reviewdesk/contexts/listing-moderation/review-service/domain/entities"
	contractsv1 "reviewdesk/contracts/gen/events/v1"
)

type SubmissionFilter struct {
	EntityType  entities.EntityType
	SubmittedBy string
}

// SubmissionRepository is the local store of submissions awaiting review.
// ApplySubmission runs mutate against the stored row and writes the result
// atomically, so concurrent decisions on different items of one submission
// are all kept. It fails with ErrSubmissionNotFound when the submission has
// been archived or removed; it never recreates a row.
type SubmissionRepository interface {
	UpsertSubmission(ctx context.Context, submission entities.Submission) error
	ApplySubmission(ctx context.Context, submissionID string, mutate SubmissionMutation) (entities.Submission, error)
	GetSubmission(ctx context.Context, submissionID string) (entities.Submission, error)
	ListSubmissions(ctx context.Context, filter SubmissionFilter) ([]entities.Submission, error)
	ArchiveSubmission(ctx context.Context, submissionID string) error
}

// SubmissionMutation derives the next state from the currently stored one.
type SubmissionMutation func(stored entities.Submission) (entities.Submission, error)

type ChangeSetFilter struct {
	Status         entities.ChangeSetStatus
	TargetEntityID string
}

// ChangeSetRepository stores change sets. UpdateChangeSet only succeeds while
// the stored row is still pending.
type ChangeSetRepository interface {
	CreateChangeSet(ctx context.Context, changeSet entities.ChangeSet) error
	UpdateChangeSet(ctx context.Context, changeSet entities.ChangeSet) error
	GetChangeSet(ctx context.Context, changeSetID string) (entities.ChangeSet, error)
	ListChangeSets(ctx context.Context, filter ChangeSetFilter) ([]entities.ChangeSet, error)
}

type ResubmissionPayload struct {
	Fields     []entities.ReviewableField
	Videos     []entities.VideoItem
	ResetItems []entities.ItemRef
}

// ReviewAPI is the external listing API. Its wire format is owned remotely.
type ReviewAPI interface {
	FetchPendingSubmissions(ctx context.Context) ([]entities.Submission, error)
	PersistFieldDecision(ctx context.Context, submissionID string, fieldKey string, status entities.ItemStatus) error
	PersistVideoDecision(ctx context.Context, submissionID string, videoID string, status entities.ItemStatus) error
	PersistResubmission(ctx context.Context, submissionID string, payload ResubmissionPayload) error
	PersistChangeDecision(ctx context.Context, changeSetID string, reviewerID string, status entities.ChangeSetStatus, notes string) error
	NotifyFeedback(ctx context.Context, submissionID string, comment string) error
	ActivateSubmission(ctx context.Context, submissionID string) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

type IdempotencyRecord struct {
	Key         string
	RequestHash string
	Payload     []byte
	ExpiresAt   time.Time
}

type IdempotencyStore interface {
	Get(ctx context.Context, key string, now time.Time) (IdempotencyRecord, bool, error)
	Put(ctx context.Context, record IdempotencyRecord) error
}

// DecisionMetrics counts decision outcomes per operation.
type DecisionMetrics interface {
	ObserveDecision(operation string, outcome string)
}

type EventEnvelope = contractsv1.Envelope

type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}
