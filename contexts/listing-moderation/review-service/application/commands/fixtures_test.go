package commands_test

import (
	"testing"
	"time"

	"reviewdesk/contexts/listing-moderation/review-service/adapters/memory"
	"reviewdesk/contexts/listing-moderation/review-service/application/commands"
	"reviewdesk/contexts/listing-moderation/review-service/domain/entities"

	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

func pendingListing(t *testing.T, id string) entities.Submission {
	t.Helper()
	item, err := entities.NewSubmission(entities.Submission{
		ID:         id,
		EntityType: entities.EntityTypeLocation,
		Title:      "Harbor Noodle Bar",
		Fields: []entities.ReviewableField{
			{Key: entities.FieldKeyAddress, Value: entities.Value{Text: "place-123", Display: "12 Harbor St"}, Status: entities.ItemStatusPending, Required: true},
			{Key: entities.FieldKeyMenu, Value: entities.TextValue("https://example.com/menu.pdf"), Status: entities.ItemStatusPending, Required: true},
			{Key: entities.FieldKeyReservation, Value: entities.TextValue("https://book.example.com"), Status: entities.ItemStatusPending, Required: true},
		},
		Videos: []entities.VideoItem{
			{ID: "v1", URL: "https://cdn.example.com/v1.mp4", Tags: []string{"food"}, Status: entities.ItemStatusPending},
		},
		SubmittedBy: "owner-1",
		SubmittedAt: fixedNow.Add(-time.Hour),
	})
	require.NoError(t, err, "build submission %s", id)
	return item
}

func newStore(seed []entities.Submission, changeSets []entities.ChangeSet) *memory.Store {
	store := memory.NewStore(seed, changeSets)
	store.SetClock(func() time.Time { return fixedNow })
	return store
}

func newProcessor(store *memory.Store) commands.DecisionProcessor {
	return commands.DecisionProcessor{
		Submissions: store,
		API:         store,
		Outbox:      store,
		Clock:       store,
		IDGen:       store,
	}
}

func newChangeSetReview(store *memory.Store) commands.ChangeSetReviewUseCase {
	return commands.ChangeSetReviewUseCase{
		ChangeSets: store,
		API:        store,
		Outbox:     store,
		Clock:      store,
		IDGen:      store,
	}
}

func fieldStatus(t *testing.T, submission entities.Submission, key string) entities.ItemStatus {
	t.Helper()
	field, ok := submission.Field(key)
	require.True(t, ok, "field %s missing from submission %s", key, submission.ID)
	return field.Status
}

type recordingMetrics struct {
	observed []string
}

func (m *recordingMetrics) ObserveDecision(operation string, outcome string) {
	m.observed = append(m.observed, operation+":"+outcome)
}
