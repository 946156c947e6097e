package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	application "reviewdesk/contexts/listing-moderation/review-service/application"
	"reviewdesk/contexts/listing-moderation/review-service/domain/entities"
	domainerrors "reviewdesk/contexts/listing-moderation/review-service/domain/errors"
	"reviewdesk/contexts/listing-moderation/review-service/ports"
)

type FieldDecisionCommand struct {
	SubmissionID string
	FieldKey     string
	ActorID      string
}

type VideoDecisionCommand struct {
	SubmissionID string
	VideoID      string
	ActorID      string
}

type ApproveSubmissionCommand struct {
	SubmissionID string
	ActorID      string
}

type ResubmitCommand struct {
	SubmissionID string
	ActorID      string
	Values       entities.ResubmitValues
}

type SendFeedbackCommand struct {
	SubmissionID string
	ActorID      string
	Comment      string
}

type SaveSubmissionCommand struct {
	SubmissionID string
	ActorID      string
}

// DecisionProcessor applies reviewer decisions to submissions. Every
// operation computes the next state with a pure transition, persists it
// through the ReviewAPI, and only then commits it to the local store, so a
// failed collaborator call leaves the stored submission untouched. The commit
// replays only the decided items against the row as stored at that moment,
// so decisions on other items that landed meanwhile are kept.
type DecisionProcessor struct {
	Submissions ports.SubmissionRepository
	API         ports.ReviewAPI
	Outbox      ports.OutboxWriter
	Metrics     ports.DecisionMetrics
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	Logger      *slog.Logger
}

func (p DecisionProcessor) ApproveField(ctx context.Context, cmd FieldDecisionCommand) (entities.Submission, error) {
	return p.decideField(ctx, cmd, entities.ItemStatusApproved)
}

func (p DecisionProcessor) DeclineField(ctx context.Context, cmd FieldDecisionCommand) (entities.Submission, error) {
	return p.decideField(ctx, cmd, entities.ItemStatusDeclined)
}

func (p DecisionProcessor) ApproveVideo(ctx context.Context, cmd VideoDecisionCommand) (entities.Submission, error) {
	return p.decideVideo(ctx, cmd, entities.ItemStatusApproved)
}

func (p DecisionProcessor) DeclineVideo(ctx context.Context, cmd VideoDecisionCommand) (entities.Submission, error) {
	return p.decideVideo(ctx, cmd, entities.ItemStatusDeclined)
}

// ApproveSubmission approves every reviewable item of one submission.
func (p DecisionProcessor) ApproveSubmission(ctx context.Context, cmd ApproveSubmissionCommand) (entities.Submission, error) {
	const operation = "approve_submission"
	current, err := p.Submissions.GetSubmission(ctx, strings.TrimSpace(cmd.SubmissionID))
	if err != nil {
		return entities.Submission{}, err
	}
	now := p.now()
	_, changed := entities.ApproveAll(current, now)
	if len(changed) == 0 {
		return current, nil
	}
	api, err := p.requireAPI()
	if err != nil {
		return entities.Submission{}, err
	}
	persisted := make([]entities.ItemRef, 0, len(changed))
	for _, item := range changed {
		var persistErr error
		switch item.Kind {
		case entities.ItemKindField:
			persistErr = api.PersistFieldDecision(ctx, current.ID, item.Key, entities.ItemStatusApproved)
		case entities.ItemKindVideo:
			persistErr = api.PersistVideoDecision(ctx, current.ID, item.Key, entities.ItemStatusApproved)
		}
		if persistErr != nil {
			return entities.Submission{}, p.partiallyApproved(ctx, operation, current.ID, persisted, now, persistErr)
		}
		persisted = append(persisted, item)
	}
	committed, err := p.commit(ctx, operation, current.ID, approveItems(persisted, now))
	if err != nil {
		return entities.Submission{}, err
	}
	p.emitter().emit(ctx, eventSubmissionApproved, "submission_id", committed.ID, committed.UpdatedAt, map[string]any{
		"submission_id":  committed.ID,
		"actor_id":       strings.TrimSpace(cmd.ActorID),
		"approved_items": len(persisted),
	})
	return committed, nil
}

// partiallyApproved keeps the items the collaborator already accepted before
// one of them failed, then reports the failure naming those items.
func (p DecisionProcessor) partiallyApproved(
	ctx context.Context,
	operation string,
	submissionID string,
	persisted []entities.ItemRef,
	now time.Time,
	cause error,
) error {
	if len(persisted) == 0 {
		return p.persistenceFailed(operation, submissionID, cause)
	}
	logger := application.ResolveLogger(p.Logger)
	if _, err := p.apply(ctx, operation, submissionID, approveItems(persisted, now)); err != nil {
		logger.Warn("could not keep partially approved items",
			"event", "review_partial_commit_failed",
			"module", "listing-moderation/review-service",
			"layer", "application",
			"operation", operation,
			"submission_id", submissionID,
			"error", err.Error(),
		)
	} else {
		logger.Info("partially approved items committed",
			"event", "review_partial_commit",
			"module", "listing-moderation/review-service",
			"layer", "application",
			"operation", operation,
			"submission_id", submissionID,
			"items", itemSummary(persisted),
		)
	}
	return p.persistenceFailed(operation, submissionID, fmt.Errorf("%w (persisted before failure: %s)", cause, itemSummary(persisted)))
}

// Resubmit returns declined items to pending with the submitter's new
// values and clears the reviewer feedback.
func (p DecisionProcessor) Resubmit(ctx context.Context, cmd ResubmitCommand) (entities.Submission, error) {
	const operation = "resubmit"
	current, err := p.Submissions.GetSubmission(ctx, strings.TrimSpace(cmd.SubmissionID))
	if err != nil {
		return entities.Submission{}, err
	}
	next, reset, err := entities.Resubmit(current, cmd.Values, p.now())
	if err != nil {
		return entities.Submission{}, err
	}
	api, err := p.requireAPI()
	if err != nil {
		return entities.Submission{}, err
	}
	if err := api.PersistResubmission(ctx, current.ID, ports.ResubmissionPayload{
		Fields:     next.Fields,
		Videos:     next.Videos,
		ResetItems: reset,
	}); err != nil {
		return entities.Submission{}, p.persistenceFailed(operation, current.ID, err)
	}
	committed, err := p.commit(ctx, operation, current.ID, func(stored entities.Submission) (entities.Submission, error) {
		merged, err := entities.MergeItems(stored, next, reset, next.UpdatedAt)
		if err != nil {
			return entities.Submission{}, err
		}
		merged.FeedbackComment = ""
		merged.UpdatedAt = next.UpdatedAt
		return merged, nil
	})
	if err != nil {
		return entities.Submission{}, err
	}
	p.emitter().emit(ctx, eventSubmissionResubmit, "submission_id", committed.ID, committed.UpdatedAt, map[string]any{
		"submission_id": committed.ID,
		"actor_id":      strings.TrimSpace(cmd.ActorID),
		"reset_items":   len(reset),
	})
	return committed, nil
}

// SendFeedback is only available while the composite status is declined.
func (p DecisionProcessor) SendFeedback(ctx context.Context, cmd SendFeedbackCommand) (entities.Submission, error) {
	const operation = "send_feedback"
	current, err := p.Submissions.GetSubmission(ctx, strings.TrimSpace(cmd.SubmissionID))
	if err != nil {
		return entities.Submission{}, err
	}
	next, err := entities.WithFeedback(current, cmd.Comment, p.now())
	if err != nil {
		p.observe(operation, "rejected")
		return entities.Submission{}, err
	}
	api, err := p.requireAPI()
	if err != nil {
		return entities.Submission{}, err
	}
	if err := api.NotifyFeedback(ctx, current.ID, next.FeedbackComment); err != nil {
		return entities.Submission{}, p.persistenceFailed(operation, current.ID, err)
	}
	committed, err := p.commit(ctx, operation, current.ID, func(stored entities.Submission) (entities.Submission, error) {
		out := stored.Clone()
		out.FeedbackComment = next.FeedbackComment
		out.UpdatedAt = next.UpdatedAt
		return out, nil
	})
	if err != nil {
		return entities.Submission{}, err
	}
	p.emitter().emit(ctx, eventFeedbackSent, "submission_id", committed.ID, committed.UpdatedAt, map[string]any{
		"submission_id": committed.ID,
		"actor_id":      strings.TrimSpace(cmd.ActorID),
		"submitted_by":  committed.SubmittedBy,
	})
	return committed, nil
}

// Save activates an approved submission and removes it from the pending
// store.
func (p DecisionProcessor) Save(ctx context.Context, cmd SaveSubmissionCommand) (entities.Submission, error) {
	const operation = "save"
	logger := application.ResolveLogger(p.Logger)
	current, err := p.Submissions.GetSubmission(ctx, strings.TrimSpace(cmd.SubmissionID))
	if err != nil {
		return entities.Submission{}, err
	}
	if err := entities.RequireSavable(current); err != nil {
		p.observe(operation, "rejected")
		return entities.Submission{}, err
	}
	api, err := p.requireAPI()
	if err != nil {
		return entities.Submission{}, err
	}
	if err := api.ActivateSubmission(ctx, current.ID); err != nil {
		return entities.Submission{}, p.persistenceFailed(operation, current.ID, err)
	}
	if err := p.Submissions.ArchiveSubmission(ctx, current.ID); err != nil {
		if errors.Is(err, domainerrors.ErrSubmissionNotFound) {
			return entities.Submission{}, p.stale(operation, current.ID)
		}
		return entities.Submission{}, err
	}
	p.observe(operation, "succeeded")
	p.emitter().emit(ctx, eventSubmissionSaved, "submission_id", current.ID, p.now(), map[string]any{
		"submission_id": current.ID,
		"entity_type":   string(current.EntityType),
		"actor_id":      strings.TrimSpace(cmd.ActorID),
	})
	logger.Info("submission saved",
		"event", "review_submission_saved",
		"module", "listing-moderation/review-service",
		"layer", "application",
		"submission_id", current.ID,
	)
	return current, nil
}

func (p DecisionProcessor) decideField(ctx context.Context, cmd FieldDecisionCommand, status entities.ItemStatus) (entities.Submission, error) {
	const operation = "field_decision"
	current, err := p.Submissions.GetSubmission(ctx, strings.TrimSpace(cmd.SubmissionID))
	if err != nil {
		return entities.Submission{}, err
	}
	field, ok := current.Field(cmd.FieldKey)
	if !ok {
		return entities.Submission{}, domainerrors.ErrFieldNotFound
	}
	if field.Status == status {
		return current, nil
	}

	var transition itemTransition
	switch status {
	case entities.ItemStatusApproved:
		transition = entities.ApproveField
	case entities.ItemStatusDeclined:
		transition = entities.DeclineField
	default:
		return entities.Submission{}, domainerrors.ErrInvalidStatus
	}
	now := p.now()
	if _, err := transition(current, field.Key, now); err != nil {
		return entities.Submission{}, err
	}

	api, err := p.requireAPI()
	if err != nil {
		return entities.Submission{}, err
	}
	if err := api.PersistFieldDecision(ctx, current.ID, field.Key, status); err != nil {
		return entities.Submission{}, p.persistenceFailed(operation, current.ID, err)
	}
	committed, err := p.commit(ctx, operation, current.ID, transition.on(field.Key, now))
	if err != nil {
		return entities.Submission{}, err
	}
	p.emitter().emit(ctx, eventFieldDecided, "submission_id", committed.ID, committed.UpdatedAt, map[string]any{
		"submission_id":    committed.ID,
		"field_key":        field.Key,
		"status":           string(status),
		"composite_status": string(committed.CompositeStatus()),
		"actor_id":         strings.TrimSpace(cmd.ActorID),
	})
	return committed, nil
}

func (p DecisionProcessor) decideVideo(ctx context.Context, cmd VideoDecisionCommand, status entities.ItemStatus) (entities.Submission, error) {
	const operation = "video_decision"
	current, err := p.Submissions.GetSubmission(ctx, strings.TrimSpace(cmd.SubmissionID))
	if err != nil {
		return entities.Submission{}, err
	}
	video, ok := current.Video(cmd.VideoID)
	if !ok {
		return entities.Submission{}, domainerrors.ErrVideoNotFound
	}
	if video.Status == status {
		return current, nil
	}

	var transition itemTransition
	switch status {
	case entities.ItemStatusApproved:
		transition = entities.ApproveVideo
	case entities.ItemStatusDeclined:
		transition = entities.DeclineVideo
	default:
		return entities.Submission{}, domainerrors.ErrInvalidStatus
	}
	now := p.now()
	if _, err := transition(current, video.ID, now); err != nil {
		return entities.Submission{}, err
	}

	api, err := p.requireAPI()
	if err != nil {
		return entities.Submission{}, err
	}
	if err := api.PersistVideoDecision(ctx, current.ID, video.ID, status); err != nil {
		return entities.Submission{}, p.persistenceFailed(operation, current.ID, err)
	}
	committed, err := p.commit(ctx, operation, current.ID, transition.on(video.ID, now))
	if err != nil {
		return entities.Submission{}, err
	}
	p.emitter().emit(ctx, eventVideoDecided, "submission_id", committed.ID, committed.UpdatedAt, map[string]any{
		"submission_id":    committed.ID,
		"video_id":         video.ID,
		"status":           string(status),
		"composite_status": string(committed.CompositeStatus()),
		"actor_id":         strings.TrimSpace(cmd.ActorID),
	})
	return committed, nil
}

// itemTransition is one of the single-item decisions in entities.
type itemTransition func(s entities.Submission, key string, now time.Time) (entities.Submission, error)

func (t itemTransition) on(key string, now time.Time) ports.SubmissionMutation {
	return func(stored entities.Submission) (entities.Submission, error) {
		return t(stored, key, now)
	}
}

func approveItems(refs []entities.ItemRef, now time.Time) ports.SubmissionMutation {
	return func(stored entities.Submission) (entities.Submission, error) {
		next := stored
		for _, ref := range refs {
			var err error
			switch ref.Kind {
			case entities.ItemKindField:
				next, err = entities.ApproveField(next, ref.Key, now)
			case entities.ItemKindVideo:
				next, err = entities.ApproveVideo(next, ref.Key, now)
			default:
				err = domainerrors.ErrInvalidInput
			}
			if err != nil {
				return entities.Submission{}, err
			}
		}
		return next, nil
	}
}

func itemSummary(refs []entities.ItemRef) string {
	keys := make([]string, 0, len(refs))
	for _, ref := range refs {
		keys = append(keys, string(ref.Kind)+":"+ref.Key)
	}
	return strings.Join(keys, ",")
}

// commit applies mutate to the stored submission unless it left the store
// while the collaborator call was in flight.
func (p DecisionProcessor) commit(
	ctx context.Context,
	operation string,
	submissionID string,
	mutate ports.SubmissionMutation,
) (entities.Submission, error) {
	committed, err := p.apply(ctx, operation, submissionID, mutate)
	if err != nil {
		return entities.Submission{}, err
	}
	p.observe(operation, "succeeded")
	application.ResolveLogger(p.Logger).Info("submission decision committed",
		"event", "review_decision_committed",
		"module", "listing-moderation/review-service",
		"layer", "application",
		"operation", operation,
		"submission_id", committed.ID,
		"composite_status", string(committed.CompositeStatus()),
	)
	return committed, nil
}

func (p DecisionProcessor) apply(
	ctx context.Context,
	operation string,
	submissionID string,
	mutate ports.SubmissionMutation,
) (entities.Submission, error) {
	committed, err := p.Submissions.ApplySubmission(ctx, submissionID, mutate)
	if err != nil {
		if errors.Is(err, domainerrors.ErrSubmissionNotFound) {
			return entities.Submission{}, p.stale(operation, submissionID)
		}
		return entities.Submission{}, err
	}
	return committed, nil
}

func (p DecisionProcessor) stale(operation string, submissionID string) error {
	p.observe(operation, "stale")
	application.ResolveLogger(p.Logger).Warn("dropping decision for removed submission",
		"event", "review_decision_stale",
		"module", "listing-moderation/review-service",
		"layer", "application",
		"operation", operation,
		"submission_id", submissionID,
	)
	return domainerrors.ErrStaleEntity
}

func (p DecisionProcessor) persistenceFailed(operation string, submissionID string, cause error) error {
	p.observe(operation, "persistence_failed")
	application.ResolveLogger(p.Logger).Error("review api call failed",
		"event", "review_persistence_failed",
		"module", "listing-moderation/review-service",
		"layer", "application",
		"operation", operation,
		"submission_id", submissionID,
		"error", cause.Error(),
	)
	return domainerrors.Persistence(operation, cause)
}

func (p DecisionProcessor) requireAPI() (ports.ReviewAPI, error) {
	if p.API == nil {
		return nil, domainerrors.ErrDependencyMissing
	}
	return p.API, nil
}

func (p DecisionProcessor) observe(operation string, outcome string) {
	if p.Metrics != nil {
		p.Metrics.ObserveDecision(operation, outcome)
	}
}

func (p DecisionProcessor) emitter() eventEmitter {
	return eventEmitter{
		outbox: p.Outbox,
		idGen:  p.IDGen,
		logger: application.ResolveLogger(p.Logger),
	}
}

func (p DecisionProcessor) now() time.Time {
	if p.Clock != nil {
		return p.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
