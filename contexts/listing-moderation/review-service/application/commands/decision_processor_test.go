package commands_test

import (
	"context"
	"errors"
	"testing"

	"reviewdesk/contexts/listing-moderation/review-service/application/commands"
	"reviewdesk/contexts/listing-moderation/review-service/domain/entities"
	domainerrors "reviewdesk/contexts/listing-moderation/review-service/domain/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecisionProcessorDeclineThenFeedbackFlow(t *testing.T) {
	store := newStore([]entities.Submission{pendingListing(t, "S1")}, nil)
	processor := newProcessor(store)
	ctx := context.Background()

	_, err := processor.ApproveField(ctx, commands.FieldDecisionCommand{SubmissionID: "S1", FieldKey: "address", ActorID: "rev-1"})
	require.NoError(t, err)
	_, err = processor.ApproveField(ctx, commands.FieldDecisionCommand{SubmissionID: "S1", FieldKey: "reservation", ActorID: "rev-1"})
	require.NoError(t, err)
	afterVideo, err := processor.ApproveVideo(ctx, commands.VideoDecisionCommand{SubmissionID: "S1", VideoID: "v1", ActorID: "rev-1"})
	require.NoError(t, err)
	assert.Equal(t, entities.ItemStatusPending, afterVideo.CompositeStatus())
	assert.Empty(t, afterVideo.EnabledActions())

	declined, err := processor.DeclineField(ctx, commands.FieldDecisionCommand{SubmissionID: "S1", FieldKey: "menu", ActorID: "rev-1"})
	require.NoError(t, err)
	assert.Equal(t, entities.ItemStatusDeclined, declined.CompositeStatus())
	assert.True(t, entities.HasAction(declined.EnabledActions(), entities.ActionSendFeedback))

	withFeedback, err := processor.SendFeedback(ctx, commands.SendFeedbackCommand{SubmissionID: "S1", ActorID: "rev-1", Comment: "broken link"})
	require.NoError(t, err)
	assert.Equal(t, "broken link", withFeedback.FeedbackComment)

	stored, err := store.GetSubmission(ctx, "S1")
	require.NoError(t, err)
	assert.Equal(t, entities.ItemStatusDeclined, fieldStatus(t, stored, "menu"))
	assert.Equal(t, entities.ItemStatusApproved, fieldStatus(t, stored, "address"))

	calls := store.Calls()
	require.Len(t, calls, 5)
	assert.Equal(t, "NotifyFeedback", calls[4].Method)
	assert.Equal(t, "broken link", calls[4].Note)
}

func TestDecisionProcessorRepeatedDecisionIsNoOp(t *testing.T) {
	store := newStore([]entities.Submission{pendingListing(t, "S1")}, nil)
	processor := newProcessor(store)
	cmd := commands.FieldDecisionCommand{SubmissionID: "S1", FieldKey: "address", ActorID: "rev-1"}

	first, err := processor.ApproveField(context.Background(), cmd)
	require.NoError(t, err)
	second, err := processor.ApproveField(context.Background(), cmd)
	require.NoError(t, err)

	assert.Equal(t, entities.ItemStatusApproved, fieldStatus(t, second, "address"))
	assert.True(t, second.UpdatedAt.Equal(first.UpdatedAt))
	assert.Len(t, store.Calls(), 1)
}

func TestDecisionProcessorPersistenceFailureLeavesStoreUnchanged(t *testing.T) {
	store := newStore([]entities.Submission{pendingListing(t, "S1")}, nil)
	store.FailPersistenceFor("S1", errors.New("listing api unavailable"))
	metrics := &recordingMetrics{}
	processor := newProcessor(store)
	processor.Metrics = metrics

	_, err := processor.DeclineVideo(context.Background(), commands.VideoDecisionCommand{SubmissionID: "S1", VideoID: "v1", ActorID: "rev-1"})
	require.ErrorIs(t, err, domainerrors.ErrPersistence)

	stored, err := store.GetSubmission(context.Background(), "S1")
	require.NoError(t, err)
	video, _ := stored.Video("v1")
	assert.Equal(t, entities.ItemStatusPending, video.Status)
	assert.Empty(t, store.OutboxEventTypes())
	assert.Equal(t, []string{"video_decision:persistence_failed"}, metrics.observed)
}

func TestDecisionProcessorDropsDecisionForRemovedSubmission(t *testing.T) {
	store := newStore([]entities.Submission{pendingListing(t, "S1")}, nil)
	store.SetPersistHook(func(targetID string) {
		store.RemoveSubmission(targetID)
	})
	processor := newProcessor(store)

	_, err := processor.ApproveField(context.Background(), commands.FieldDecisionCommand{SubmissionID: "S1", FieldKey: "menu", ActorID: "rev-1"})
	require.ErrorIs(t, err, domainerrors.ErrStaleEntity)

	_, err = store.GetSubmission(context.Background(), "S1")
	assert.ErrorIs(t, err, domainerrors.ErrSubmissionNotFound)
}

func TestDecisionProcessorKeepsDecisionCommittedWhileCallInFlight(t *testing.T) {
	store := newStore([]entities.Submission{pendingListing(t, "S1")}, nil)
	processor := newProcessor(store)
	ctx := context.Background()

	// The hook fires again for the nested call, so it only acts once.
	fired := false
	var nestedErr error
	store.SetPersistHook(func(targetID string) {
		if fired {
			return
		}
		fired = true
		_, nestedErr = processor.ApproveField(ctx, commands.FieldDecisionCommand{SubmissionID: targetID, FieldKey: "menu", ActorID: "rev-2"})
	})

	result, err := processor.ApproveField(ctx, commands.FieldDecisionCommand{SubmissionID: "S1", FieldKey: "address", ActorID: "rev-1"})
	require.NoError(t, err)
	require.NoError(t, nestedErr)

	assert.Equal(t, entities.ItemStatusApproved, fieldStatus(t, result, "address"))
	assert.Equal(t, entities.ItemStatusApproved, fieldStatus(t, result, "menu"))

	stored, err := store.GetSubmission(ctx, "S1")
	require.NoError(t, err)
	assert.Equal(t, entities.ItemStatusApproved, fieldStatus(t, stored, "address"))
	assert.Equal(t, entities.ItemStatusApproved, fieldStatus(t, stored, "menu"))
	assert.Equal(t, entities.ItemStatusPending, fieldStatus(t, stored, "reservation"))
	assert.Len(t, store.Calls(), 2)
}

func TestDecisionProcessorConcurrentVideoAndFieldDecisionsBothLand(t *testing.T) {
	store := newStore([]entities.Submission{pendingListing(t, "S1")}, nil)
	processor := newProcessor(store)
	ctx := context.Background()

	// The hook fires again for the nested call, so it only acts once.
	fired := false
	var nestedErr error
	store.SetPersistHook(func(targetID string) {
		if fired {
			return
		}
		fired = true
		_, nestedErr = processor.ApproveVideo(ctx, commands.VideoDecisionCommand{SubmissionID: targetID, VideoID: "v1", ActorID: "rev-2"})
	})

	_, err := processor.DeclineField(ctx, commands.FieldDecisionCommand{SubmissionID: "S1", FieldKey: "menu", ActorID: "rev-1"})
	require.NoError(t, err)
	require.NoError(t, nestedErr)

	stored, err := store.GetSubmission(ctx, "S1")
	require.NoError(t, err)
	video, _ := stored.Video("v1")
	assert.Equal(t, entities.ItemStatusApproved, video.Status)
	assert.Equal(t, entities.ItemStatusDeclined, fieldStatus(t, stored, "menu"))
}

func TestDecisionProcessorUnknownItems(t *testing.T) {
	store := newStore([]entities.Submission{pendingListing(t, "S1")}, nil)
	processor := newProcessor(store)
	ctx := context.Background()

	_, err := processor.ApproveField(ctx, commands.FieldDecisionCommand{SubmissionID: "S1", FieldKey: "website"})
	assert.ErrorIs(t, err, domainerrors.ErrFieldNotFound)
	_, err = processor.DeclineVideo(ctx, commands.VideoDecisionCommand{SubmissionID: "S1", VideoID: "v9"})
	assert.ErrorIs(t, err, domainerrors.ErrVideoNotFound)
	_, err = processor.ApproveField(ctx, commands.FieldDecisionCommand{SubmissionID: "missing", FieldKey: "menu"})
	assert.ErrorIs(t, err, domainerrors.ErrSubmissionNotFound)
	assert.Empty(t, store.Calls())
}

func TestDecisionProcessorRequiresReviewAPI(t *testing.T) {
	store := newStore([]entities.Submission{pendingListing(t, "S1")}, nil)
	processor := newProcessor(store)
	processor.API = nil

	_, err := processor.ApproveField(context.Background(), commands.FieldDecisionCommand{SubmissionID: "S1", FieldKey: "menu"})
	assert.ErrorIs(t, err, domainerrors.ErrDependencyMissing)
}

func TestDecisionProcessorSendFeedbackRequiresDeclinedComposite(t *testing.T) {
	store := newStore([]entities.Submission{pendingListing(t, "S1")}, nil)
	processor := newProcessor(store)
	ctx := context.Background()

	_, err := processor.SendFeedback(ctx, commands.SendFeedbackCommand{SubmissionID: "S1", Comment: "fix it"})
	assert.ErrorIs(t, err, domainerrors.ErrSubmissionNotDeclined)

	_, err = processor.DeclineField(ctx, commands.FieldDecisionCommand{SubmissionID: "S1", FieldKey: "menu"})
	require.NoError(t, err)
	_, err = processor.SendFeedback(ctx, commands.SendFeedbackCommand{SubmissionID: "S1", Comment: "   "})
	assert.ErrorIs(t, err, domainerrors.ErrFeedbackRequired)
}

func TestDecisionProcessorSendFeedbackRejectsBlankCommentOnPendingAsNotDeclined(t *testing.T) {
	store := newStore([]entities.Submission{pendingListing(t, "S1")}, nil)
	processor := newProcessor(store)

	_, err := processor.SendFeedback(context.Background(), commands.SendFeedbackCommand{SubmissionID: "S1", Comment: " "})
	require.ErrorIs(t, err, domainerrors.ErrSubmissionNotDeclined)
	assert.NotErrorIs(t, err, domainerrors.ErrFeedbackRequired)
	assert.Empty(t, store.Calls())
}

func TestDecisionProcessorResubmitResetsDeclinedItems(t *testing.T) {
	store := newStore([]entities.Submission{pendingListing(t, "S1")}, nil)
	processor := newProcessor(store)
	ctx := context.Background()

	_, err := processor.ApproveField(ctx, commands.FieldDecisionCommand{SubmissionID: "S1", FieldKey: "address"})
	require.NoError(t, err)
	_, err = processor.DeclineField(ctx, commands.FieldDecisionCommand{SubmissionID: "S1", FieldKey: "menu"})
	require.NoError(t, err)
	_, err = processor.SendFeedback(ctx, commands.SendFeedbackCommand{SubmissionID: "S1", Comment: "broken link"})
	require.NoError(t, err)

	next, err := processor.Resubmit(ctx, commands.ResubmitCommand{
		SubmissionID: "S1",
		ActorID:      "owner-1",
		Values: entities.ResubmitValues{Fields: map[string]entities.Value{
			"menu":    entities.TextValue("https://example.com/menu-v2.pdf"),
			"address": entities.TextValue("ignored"),
		}},
	})
	require.NoError(t, err)

	menu, _ := next.Field("menu")
	assert.Equal(t, entities.ItemStatusPending, menu.Status)
	assert.Equal(t, "https://example.com/menu-v2.pdf", menu.Value.Text)
	address, _ := next.Field("address")
	assert.Equal(t, entities.ItemStatusApproved, address.Status)
	assert.Equal(t, "place-123", address.Value.Text)
	assert.Empty(t, next.FeedbackComment)

	calls := store.Calls()
	last := calls[len(calls)-1]
	assert.Equal(t, "PersistResubmission", last.Method)
	assert.Equal(t, "field:menu", last.Note)
}

func TestDecisionProcessorSaveArchivesApprovedSubmission(t *testing.T) {
	store := newStore([]entities.Submission{pendingListing(t, "S1")}, nil)
	processor := newProcessor(store)
	ctx := context.Background()

	_, err := processor.Save(ctx, commands.SaveSubmissionCommand{SubmissionID: "S1"})
	require.ErrorIs(t, err, domainerrors.ErrSubmissionNotApproved)
	_, err = processor.ApproveSubmission(ctx, commands.ApproveSubmissionCommand{SubmissionID: "S1", ActorID: "rev-1"})
	require.NoError(t, err)

	saved, err := processor.Save(ctx, commands.SaveSubmissionCommand{SubmissionID: "S1", ActorID: "rev-1"})
	require.NoError(t, err)
	assert.Equal(t, entities.ItemStatusApproved, saved.CompositeStatus())
	_, ok := store.ArchivedSubmission("S1")
	assert.True(t, ok)

	_, err = processor.DeclineField(ctx, commands.FieldDecisionCommand{SubmissionID: "S1", FieldKey: "menu"})
	assert.ErrorIs(t, err, domainerrors.ErrSubmissionNotFound)

	events := store.OutboxEventTypes()
	require.NotEmpty(t, events)
	assert.Equal(t, "review.submission.saved", events[len(events)-1])
}

func TestDecisionProcessorApproveSubmissionSkipsApprovedItems(t *testing.T) {
	store := newStore([]entities.Submission{pendingListing(t, "S1")}, nil)
	processor := newProcessor(store)
	ctx := context.Background()

	_, err := processor.ApproveField(ctx, commands.FieldDecisionCommand{SubmissionID: "S1", FieldKey: "address"})
	require.NoError(t, err)
	next, err := processor.ApproveSubmission(ctx, commands.ApproveSubmissionCommand{SubmissionID: "S1", ActorID: "rev-1"})
	require.NoError(t, err)

	assert.Equal(t, entities.ItemStatusApproved, next.CompositeStatus())
	assert.True(t, entities.HasAction(next.EnabledActions(), entities.ActionSave))
	// address once, then menu, reservation and v1.
	assert.Len(t, store.Calls(), 4)
}

func TestDecisionProcessorApproveSubmissionKeepsItemsPersistedBeforeFailure(t *testing.T) {
	store := newStore([]entities.Submission{pendingListing(t, "S1")}, nil)
	store.FailItemPersistence("S1", "menu", errors.New("listing api unavailable"))
	metrics := &recordingMetrics{}
	processor := newProcessor(store)
	processor.Metrics = metrics

	_, err := processor.ApproveSubmission(context.Background(), commands.ApproveSubmissionCommand{SubmissionID: "S1", ActorID: "rev-1"})
	require.ErrorIs(t, err, domainerrors.ErrPersistence)
	assert.Contains(t, err.Error(), "persisted before failure: field:address")

	stored, err := store.GetSubmission(context.Background(), "S1")
	require.NoError(t, err)
	assert.Equal(t, entities.ItemStatusApproved, fieldStatus(t, stored, "address"))
	assert.Equal(t, entities.ItemStatusPending, fieldStatus(t, stored, "menu"))
	assert.Equal(t, entities.ItemStatusPending, fieldStatus(t, stored, "reservation"))
	video, _ := stored.Video("v1")
	assert.Equal(t, entities.ItemStatusPending, video.Status)

	calls := store.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "address", calls[0].ItemKey)
	assert.Empty(t, store.OutboxEventTypes())
	assert.Equal(t, []string{"approve_submission:persistence_failed"}, metrics.observed)
}

func TestDecisionProcessorApproveSubmissionFirstItemFailureChangesNothing(t *testing.T) {
	store := newStore([]entities.Submission{pendingListing(t, "S1")}, nil)
	store.FailItemPersistence("S1", "address", errors.New("listing api unavailable"))
	processor := newProcessor(store)

	_, err := processor.ApproveSubmission(context.Background(), commands.ApproveSubmissionCommand{SubmissionID: "S1", ActorID: "rev-1"})
	require.ErrorIs(t, err, domainerrors.ErrPersistence)
	assert.NotContains(t, err.Error(), "persisted before failure")

	stored, err := store.GetSubmission(context.Background(), "S1")
	require.NoError(t, err)
	assert.Equal(t, entities.ItemStatusPending, stored.CompositeStatus())
	assert.True(t, stored.UpdatedAt.IsZero() || stored.UpdatedAt.Before(fixedNow))
}
