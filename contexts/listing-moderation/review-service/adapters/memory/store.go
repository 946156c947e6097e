package memory

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"reviewdesk/contexts/listing-moderation/review-service/domain/entities"
	domainerrors "reviewdesk/contexts/listing-moderation/review-service/domain/errors"
	"reviewdesk/contexts/listing-moderation/review-service/ports"

	"github.com/google/uuid"
)

// APICall records one ReviewAPI invocation against the in-memory fake.
type APICall struct {
	Method   string
	TargetID string
	ItemKey  string
	Status   string
	Actor    string
	Note     string
}

type outboxRow struct {
	message     ports.OutboxMessage
	publishedAt *time.Time
}

// Store is the in-process adapter for every review-service port. It doubles
// as a scriptable ReviewAPI for tests and local runs.
type Store struct {
	mu sync.RWMutex

	submissions map[string]entities.Submission
	archived    map[string]entities.Submission
	changeSets  map[string]entities.ChangeSet
	idempotency map[string]ports.IdempotencyRecord
	outbox      []outboxRow

	remotePending []entities.Submission
	failures      map[string]error
	itemFailures  map[string]error
	persistHook   func(targetID string)
	calls         []APICall
	now           func() time.Time
}

func NewStore(seed []entities.Submission, changeSets []entities.ChangeSet) *Store {
	submissions := make(map[string]entities.Submission, len(seed))
	for _, item := range seed {
		submissions[item.ID] = item.Clone()
	}
	sets := make(map[string]entities.ChangeSet, len(changeSets))
	for _, item := range changeSets {
		sets[item.ID] = item.Clone()
	}
	return &Store{
		submissions:  submissions,
		archived:     make(map[string]entities.Submission),
		changeSets:   sets,
		idempotency:  make(map[string]ports.IdempotencyRecord),
		failures:     make(map[string]error),
		itemFailures: make(map[string]error),
	}
}

func (s *Store) UpsertSubmission(_ context.Context, submission entities.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, archived := s.archived[submission.ID]; archived {
		return nil
	}
	s.submissions[submission.ID] = submission.Clone()
	return nil
}

func (s *Store) ApplySubmission(
	_ context.Context,
	submissionID string,
	mutate ports.SubmissionMutation,
) (entities.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	submissionID = strings.TrimSpace(submissionID)
	stored, exists := s.submissions[submissionID]
	if !exists {
		return entities.Submission{}, domainerrors.ErrSubmissionNotFound
	}
	next, err := mutate(stored.Clone())
	if err != nil {
		return entities.Submission{}, err
	}
	s.submissions[submissionID] = next.Clone()
	return next, nil
}

func (s *Store) GetSubmission(_ context.Context, submissionID string) (entities.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, exists := s.submissions[strings.TrimSpace(submissionID)]
	if !exists {
		return entities.Submission{}, domainerrors.ErrSubmissionNotFound
	}
	return item.Clone(), nil
}

func (s *Store) ListSubmissions(_ context.Context, filter ports.SubmissionFilter) ([]entities.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Submission, 0, len(s.submissions))
	for _, item := range s.submissions {
		if filter.EntityType != "" && item.EntityType != filter.EntityType {
			continue
		}
		if strings.TrimSpace(filter.SubmittedBy) != "" && item.SubmittedBy != strings.TrimSpace(filter.SubmittedBy) {
			continue
		}
		items = append(items, item.Clone())
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].SubmittedAt.Equal(items[j].SubmittedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].SubmittedAt.Before(items[j].SubmittedAt)
	})
	return items, nil
}

func (s *Store) ArchiveSubmission(_ context.Context, submissionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	submissionID = strings.TrimSpace(submissionID)
	item, exists := s.submissions[submissionID]
	if !exists {
		return domainerrors.ErrSubmissionNotFound
	}
	delete(s.submissions, submissionID)
	s.archived[submissionID] = item
	return nil
}

// RemoveSubmission drops a submission without archiving it, as when the
// owning view discards it.
func (s *Store) RemoveSubmission(submissionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.submissions, strings.TrimSpace(submissionID))
}

func (s *Store) ArchivedSubmission(submissionID string) (entities.Submission, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.archived[strings.TrimSpace(submissionID)]
	return item.Clone(), ok
}

func (s *Store) CreateChangeSet(_ context.Context, changeSet entities.ChangeSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.changeSets[changeSet.ID]; exists {
		return domainerrors.ErrInvalidInput
	}
	s.changeSets[changeSet.ID] = changeSet.Clone()
	return nil
}

func (s *Store) UpdateChangeSet(_ context.Context, changeSet entities.ChangeSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.changeSets[changeSet.ID]
	if !exists {
		return domainerrors.ErrChangeSetNotFound
	}
	if existing.IsReviewed() {
		return domainerrors.ErrChangeSetAlreadyReviewed
	}
	s.changeSets[changeSet.ID] = changeSet.Clone()
	return nil
}

func (s *Store) GetChangeSet(_ context.Context, changeSetID string) (entities.ChangeSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, exists := s.changeSets[strings.TrimSpace(changeSetID)]
	if !exists {
		return entities.ChangeSet{}, domainerrors.ErrChangeSetNotFound
	}
	return item.Clone(), nil
}

func (s *Store) ListChangeSets(_ context.Context, filter ports.ChangeSetFilter) ([]entities.ChangeSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.ChangeSet, 0, len(s.changeSets))
	for _, item := range s.changeSets {
		if filter.Status != "" && item.Status != filter.Status {
			continue
		}
		if strings.TrimSpace(filter.TargetEntityID) != "" && item.TargetEntityID != strings.TrimSpace(filter.TargetEntityID) {
			continue
		}
		items = append(items, item.Clone())
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) Get(_ context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.idempotency[key]
	if !ok {
		return ports.IdempotencyRecord{}, false, nil
	}
	if !record.ExpiresAt.IsZero() && now.After(record.ExpiresAt) {
		delete(s.idempotency, key)
		return ports.IdempotencyRecord{}, false, nil
	}
	return record, true, nil
}

func (s *Store) Put(_ context.Context, record ports.IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.idempotency[record.Key]; ok && existing.RequestHash != record.RequestHash {
		return domainerrors.ErrIdempotencyConflict
	}
	s.idempotency[record.Key] = record
	return nil
}

func (s *Store) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.outbox = append(s.outbox, outboxRow{message: ports.OutboxMessage{
		OutboxID:     envelope.EventID,
		EventType:    envelope.EventType,
		PartitionKey: envelope.PartitionKey,
		Payload:      payload,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}})
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	items := make([]ports.OutboxMessage, 0, limit)
	for _, row := range s.outbox {
		if row.publishedAt != nil {
			continue
		}
		items = append(items, row.message)
		if len(items) == limit {
			break
		}
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, publishedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.outbox {
		if s.outbox[i].message.OutboxID == outboxID {
			at := publishedAt.UTC()
			s.outbox[i].publishedAt = &at
			return nil
		}
	}
	return domainerrors.ErrInvalidInput
}

// OutboxEventTypes lists every appended event type in append order.
func (s *Store) OutboxEventTypes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]string, 0, len(s.outbox))
	for _, row := range s.outbox {
		items = append(items, row.message.EventType)
	}
	return items
}

func (s *Store) Now() time.Time {
	s.mu.RLock()
	now := s.now
	s.mu.RUnlock()
	if now != nil {
		return now().UTC()
	}
	return time.Now().UTC()
}

func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.now = now
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

// FailPersistenceFor makes every ReviewAPI call targeting id fail with err.
// A nil err clears the failure.
func (s *Store) FailPersistenceFor(id string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err == nil {
		delete(s.failures, id)
		return
	}
	s.failures[id] = err
}

// FailItemPersistence makes ReviewAPI decision calls for one item of id fail
// with err. A nil err clears the failure.
func (s *Store) FailItemPersistence(id string, itemKey string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := id + "/" + itemKey
	if err == nil {
		delete(s.itemFailures, key)
		return
	}
	s.itemFailures[key] = err
}

// SetPersistHook runs fn inside every ReviewAPI persistence call, before it
// returns, to simulate work that happens while a call is outstanding.
func (s *Store) SetPersistHook(fn func(targetID string)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.persistHook = fn
}

func (s *Store) SetRemotePending(items []entities.Submission) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.remotePending = make([]entities.Submission, 0, len(items))
	for _, item := range items {
		s.remotePending = append(s.remotePending, item.Clone())
	}
}

func (s *Store) Calls() []APICall {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]APICall(nil), s.calls...)
}

func (s *Store) FetchPendingSubmissions(_ context.Context) ([]entities.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Submission, 0, len(s.remotePending))
	for _, item := range s.remotePending {
		items = append(items, item.Clone())
	}
	return items, nil
}

func (s *Store) PersistFieldDecision(_ context.Context, submissionID string, fieldKey string, status entities.ItemStatus) error {
	return s.recordCall(APICall{Method: "PersistFieldDecision", TargetID: submissionID, ItemKey: fieldKey, Status: string(status)})
}

func (s *Store) PersistVideoDecision(_ context.Context, submissionID string, videoID string, status entities.ItemStatus) error {
	return s.recordCall(APICall{Method: "PersistVideoDecision", TargetID: submissionID, ItemKey: videoID, Status: string(status)})
}

func (s *Store) PersistResubmission(_ context.Context, submissionID string, payload ports.ResubmissionPayload) error {
	return s.recordCall(APICall{Method: "PersistResubmission", TargetID: submissionID, Note: resetSummary(payload.ResetItems)})
}

func (s *Store) PersistChangeDecision(
	_ context.Context,
	changeSetID string,
	reviewerID string,
	status entities.ChangeSetStatus,
	notes string,
) error {
	return s.recordCall(APICall{Method: "PersistChangeDecision", TargetID: changeSetID, Status: string(status), Actor: reviewerID, Note: notes})
}

func (s *Store) NotifyFeedback(_ context.Context, submissionID string, comment string) error {
	return s.recordCall(APICall{Method: "NotifyFeedback", TargetID: submissionID, Note: comment})
}

func (s *Store) ActivateSubmission(_ context.Context, submissionID string) error {
	return s.recordCall(APICall{Method: "ActivateSubmission", TargetID: submissionID})
}

func (s *Store) recordCall(call APICall) error {
	s.mu.Lock()
	hook := s.persistHook
	failure := s.failures[call.TargetID]
	if failure == nil && call.ItemKey != "" {
		failure = s.itemFailures[call.TargetID+"/"+call.ItemKey]
	}
	s.mu.Unlock()

	if hook != nil {
		hook(call.TargetID)
	}
	if failure != nil {
		return failure
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
	return nil
}

func resetSummary(items []entities.ItemRef) string {
	keys := make([]string, 0, len(items))
	for _, item := range items {
		keys = append(keys, string(item.Kind)+":"+item.Key)
	}
	return strings.Join(keys, ",")
}
