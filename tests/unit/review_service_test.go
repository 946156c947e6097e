package unit

import (
	"context"
	"testing"
	"time"

	reviewservice "reviewdesk/contexts/listing-moderation/review-service"
	"reviewdesk/contexts/listing-moderation/review-service/domain/entities"
	domainerrors "reviewdesk/contexts/listing-moderation/review-service/domain/errors"
	httptransport "reviewdesk/contexts/listing-moderation/review-service/transport/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reviewSeed(t *testing.T, id string) entities.Submission {
	t.Helper()
	item, err := entities.NewSubmission(entities.Submission{
		ID:         id,
		EntityType: entities.EntityTypeLocation,
		Title:      "Harbor Noodle Bar",
		Fields: []entities.ReviewableField{
			{Key: entities.FieldKeyAddress, Value: entities.Value{Text: "place-123", Display: "12 Harbor St"}, Required: true},
			{Key: entities.FieldKeyMenu, Value: entities.TextValue("https://example.com/menu.pdf"), Required: true},
			{Key: entities.FieldKeyReservation, Value: entities.TextValue("https://book.example.com"), Required: true},
		},
		Videos: []entities.VideoItem{
			{ID: "v1", URL: "https://cdn.example.com/v1.mp4", Tags: []string{"food"}},
		},
		SubmittedBy: "owner-1",
		SubmittedAt: time.Date(2026, 5, 4, 11, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return item
}

func TestReviewServiceFullCycle(t *testing.T) {
	module := reviewservice.NewInMemoryModule([]entities.Submission{reviewSeed(t, "S1")}, nil, nil)
	ctx := context.Background()

	declined, err := module.Handler.DeclineFieldHandler(ctx, "rev-1", "S1", "menu")
	require.NoError(t, err)
	assert.Equal(t, "declined", declined.Submission.CompositeStatus)

	_, err = module.Handler.SendFeedbackHandler(ctx, "rev-1", "S1", httptransport.FeedbackRequest{Comment: "menu link is broken"})
	require.NoError(t, err)

	resubmitted, err := module.Handler.ResubmitHandler(ctx, "owner-1", "S1", httptransport.ResubmitRequest{
		Fields: map[string]httptransport.ValueDTO{"menu": {Text: "https://example.com/menu-v2.pdf"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "pending", resubmitted.Submission.CompositeStatus)
	assert.Empty(t, resubmitted.Submission.FeedbackComment)

	bulk, err := module.Handler.BulkApproveSubmissionsHandler(ctx, "rev-1", "bulk-S1", httptransport.BulkApproveRequest{IDs: []string{"S1"}})
	require.NoError(t, err)
	assert.Len(t, bulk.Succeeded, 1)
	assert.Empty(t, bulk.Failed)

	saved, err := module.Handler.SaveSubmissionHandler(ctx, "rev-1", "S1")
	require.NoError(t, err)
	assert.Equal(t, "approved", saved.Submission.CompositeStatus)

	_, err = module.Handler.GetSubmissionHandler(ctx, "S1")
	assert.ErrorIs(t, err, domainerrors.ErrSubmissionNotFound)
}

func TestReviewServicePendingSyncFeedsQueue(t *testing.T) {
	module := reviewservice.NewInMemoryModule(nil, nil, nil)
	module.Store.SetRemotePending([]entities.Submission{reviewSeed(t, "S7")})

	synced, err := module.PendingSync.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, synced)

	list, err := module.Handler.ListSubmissionsHandler(context.Background(), "location", "pending", "")
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "S7", list.Items[0].SubmissionID)
}

func TestReviewServiceStaleDecisionIsDropped(t *testing.T) {
	module := reviewservice.NewInMemoryModule([]entities.Submission{reviewSeed(t, "S1")}, nil, nil)
	module.Store.SetPersistHook(func(targetID string) {
		module.Store.RemoveSubmission(targetID)
	})

	_, err := module.Handler.ApproveVideoHandler(context.Background(), "rev-1", "S1", "v1")
	assert.ErrorIs(t, err, domainerrors.ErrStaleEntity)
}

func TestReviewServiceOverlappingDecisionsOnOneSubmission(t *testing.T) {
	module := reviewservice.NewInMemoryModule([]entities.Submission{reviewSeed(t, "S1")}, nil, nil)
	ctx := context.Background()

	fired := false
	var nestedErr error
	module.Store.SetPersistHook(func(targetID string) {
		if fired {
			return
		}
		fired = true
		_, nestedErr = module.Handler.ApproveFieldHandler(ctx, "rev-2", targetID, "menu")
	})

	_, err := module.Handler.ApproveFieldHandler(ctx, "rev-1", "S1", "address")
	require.NoError(t, err)
	require.NoError(t, nestedErr)

	got, err := module.Handler.GetSubmissionHandler(ctx, "S1")
	require.NoError(t, err)
	statuses := make(map[string]string, len(got.Submission.Fields))
	for _, field := range got.Submission.Fields {
		statuses[field.Key] = field.Status
	}
	assert.Equal(t, "approved", statuses["address"])
	assert.Equal(t, "approved", statuses["menu"])
}

func TestReviewServiceEmitsCanonicalEvents(t *testing.T) {
	module := reviewservice.NewInMemoryModule([]entities.Submission{reviewSeed(t, "S1")}, nil, nil)
	ctx := context.Background()

	_, err := module.Handler.ApproveFieldHandler(ctx, "rev-1", "S1", "address")
	require.NoError(t, err)
	_, err = module.Handler.DeclineVideoHandler(ctx, "rev-1", "S1", "v1")
	require.NoError(t, err)
	created, err := module.Handler.CreateChangeSetHandler(ctx, "owner-1", httptransport.CreateChangeSetRequest{
		TargetEntityID: "loc-1",
		Proposed:       []httptransport.FieldValueDTO{{Key: "phone", Value: httptransport.ValueDTO{Text: "555"}}},
	})
	require.NoError(t, err)
	_, err = module.Handler.RejectChangeSetHandler(ctx, "rev-1", created.ChangeSet.ChangeSetID, httptransport.ReviewChangeSetRequest{})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"review.submission.field_decided",
		"review.submission.video_decided",
		"review.change_set.created",
		"review.change_set.reviewed",
	}, module.Store.OutboxEventTypes())
}
