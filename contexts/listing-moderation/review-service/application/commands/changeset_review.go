package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	application "reviewdesk/contexts/listing-moderation/review-service/application"
	"reviewdesk/contexts/listing-moderation/review-service/domain/entities"
	domainerrors "reviewdesk/contexts/listing-moderation/review-service/domain/errors"
	"reviewdesk/contexts/listing-moderation/review-service/ports"
)

type CreateChangeSetCommand struct {
	TargetEntityID string
	SubmitterID    string
	Live           []entities.FieldValue
	Proposed       []entities.FieldValue
}

type ReviewChangeSetCommand struct {
	ChangeSetID string
	ReviewerID  string
	Notes       string
}

type ChangeSetReviewUseCase struct {
	ChangeSets ports.ChangeSetRepository
	API        ports.ReviewAPI
	Outbox     ports.OutboxWriter
	Metrics    ports.DecisionMetrics
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

func (uc ChangeSetReviewUseCase) Create(ctx context.Context, cmd CreateChangeSetCommand) (entities.ChangeSet, error) {
	logger := application.ResolveLogger(uc.Logger)
	if strings.TrimSpace(cmd.SubmitterID) == "" {
		return entities.ChangeSet{}, domainerrors.ErrUnauthorizedActor
	}
	if uc.IDGen == nil {
		return entities.ChangeSet{}, domainerrors.ErrDependencyMissing
	}
	changeSetID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.ChangeSet{}, err
	}
	changeSet, err := entities.NewChangeSet(changeSetID, cmd.TargetEntityID, cmd.SubmitterID, cmd.Live, cmd.Proposed, uc.now())
	if err != nil {
		return entities.ChangeSet{}, err
	}
	if err := uc.ChangeSets.CreateChangeSet(ctx, changeSet); err != nil {
		return entities.ChangeSet{}, err
	}
	uc.emitter().emit(ctx, eventChangeSetCreated, "change_set_id", changeSet.ID, changeSet.CreatedAt, map[string]any{
		"change_set_id":    changeSet.ID,
		"target_entity_id": changeSet.TargetEntityID,
		"submitter_id":     changeSet.SubmitterID,
		"change_count":     len(changeSet.Changes),
	})
	logger.Info("change set created",
		"event", "review_change_set_created",
		"module", "listing-moderation/review-service",
		"layer", "application",
		"change_set_id", changeSet.ID,
		"change_count", len(changeSet.Changes),
	)
	return changeSet, nil
}

func (uc ChangeSetReviewUseCase) Approve(ctx context.Context, cmd ReviewChangeSetCommand) (entities.ChangeSet, error) {
	return uc.review(ctx, cmd, entities.ChangeSetStatusApproved)
}

func (uc ChangeSetReviewUseCase) Reject(ctx context.Context, cmd ReviewChangeSetCommand) (entities.ChangeSet, error) {
	return uc.review(ctx, cmd, entities.ChangeSetStatusRejected)
}

func (uc ChangeSetReviewUseCase) review(ctx context.Context, cmd ReviewChangeSetCommand, status entities.ChangeSetStatus) (entities.ChangeSet, error) {
	const operation = "change_set_review"
	logger := application.ResolveLogger(uc.Logger)
	current, err := uc.ChangeSets.GetChangeSet(ctx, strings.TrimSpace(cmd.ChangeSetID))
	if err != nil {
		return entities.ChangeSet{}, err
	}

	var next entities.ChangeSet
	switch status {
	case entities.ChangeSetStatusApproved:
		next, err = current.Approve(cmd.ReviewerID, cmd.Notes, uc.now())
	case entities.ChangeSetStatusRejected:
		next, err = current.Reject(cmd.ReviewerID, cmd.Notes, uc.now())
	default:
		err = domainerrors.ErrInvalidStatus
	}
	if err != nil {
		uc.observe(operation, "rejected")
		return entities.ChangeSet{}, err
	}

	if uc.API == nil {
		return entities.ChangeSet{}, domainerrors.ErrDependencyMissing
	}
	if err := uc.API.PersistChangeDecision(ctx, next.ID, next.ReviewerID, next.Status, next.Notes); err != nil {
		uc.observe(operation, "persistence_failed")
		logger.Error("change set decision persistence failed",
			"event", "review_change_set_persistence_failed",
			"module", "listing-moderation/review-service",
			"layer", "application",
			"change_set_id", next.ID,
			"error", err.Error(),
		)
		return entities.ChangeSet{}, domainerrors.Persistence(operation, err)
	}
	if err := uc.ChangeSets.UpdateChangeSet(ctx, next); err != nil {
		if errors.Is(err, domainerrors.ErrChangeSetNotFound) {
			uc.observe(operation, "stale")
			return entities.ChangeSet{}, domainerrors.ErrStaleEntity
		}
		return entities.ChangeSet{}, err
	}

	uc.observe(operation, "succeeded")
	uc.emitter().emit(ctx, eventChangeSetReviewed, "change_set_id", next.ID, *next.ReviewedAt, map[string]any{
		"change_set_id":    next.ID,
		"target_entity_id": next.TargetEntityID,
		"status":           string(next.Status),
		"reviewer_id":      next.ReviewerID,
	})
	logger.Info("change set reviewed",
		"event", "review_change_set_reviewed",
		"module", "listing-moderation/review-service",
		"layer", "application",
		"change_set_id", next.ID,
		"status", string(next.Status),
	)
	return next, nil
}

func (uc ChangeSetReviewUseCase) observe(operation string, outcome string) {
	if uc.Metrics != nil {
		uc.Metrics.ObserveDecision(operation, outcome)
	}
}

func (uc ChangeSetReviewUseCase) emitter() eventEmitter {
	return eventEmitter{
		outbox: uc.Outbox,
		idGen:  uc.IDGen,
		logger: application.ResolveLogger(uc.Logger),
	}
}

func (uc ChangeSetReviewUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
