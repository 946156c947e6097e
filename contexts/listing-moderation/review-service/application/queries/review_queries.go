package queries

import (
	"context"
	"log/slog"
	"strings"

	"reviewdesk/contexts/listing-moderation/review-service/domain/entities"
	domainerrors "reviewdesk/contexts/listing-moderation/review-service/domain/errors"
	"reviewdesk/contexts/listing-moderation/review-service/ports"
)

// SubmissionView is a submission together with the labels derived from it
// for the presentation layer.
type SubmissionView struct {
	Submission       entities.Submission
	CompositeStatus  entities.ItemStatus
	EnabledActions   []entities.Action
	SubmitterActions []entities.Action
}

type ListSubmissionsQuery struct {
	EntityType      string
	CompositeStatus string
	SubmittedBy     string
}

type ListChangeSetsQuery struct {
	Status         string
	TargetEntityID string
}

type QueryUseCase struct {
	Submissions ports.SubmissionRepository
	ChangeSets  ports.ChangeSetRepository
	Logger      *slog.Logger
}

func (uc QueryUseCase) GetSubmission(ctx context.Context, submissionID string) (SubmissionView, error) {
	item, err := uc.Submissions.GetSubmission(ctx, strings.TrimSpace(submissionID))
	if err != nil {
		return SubmissionView{}, err
	}
	return NewSubmissionView(item), nil
}

func (uc QueryUseCase) CompositeStatus(ctx context.Context, submissionID string) (entities.ItemStatus, error) {
	item, err := uc.Submissions.GetSubmission(ctx, strings.TrimSpace(submissionID))
	if err != nil {
		return "", err
	}
	return item.CompositeStatus(), nil
}

func (uc QueryUseCase) EnabledActions(ctx context.Context, submissionID string) ([]entities.Action, error) {
	item, err := uc.Submissions.GetSubmission(ctx, strings.TrimSpace(submissionID))
	if err != nil {
		return nil, err
	}
	return item.EnabledActions(), nil
}

// ListPendingSubmissions filters on the composite status after loading,
// because the composite is never stored.
func (uc QueryUseCase) ListPendingSubmissions(ctx context.Context, query ListSubmissionsQuery) ([]SubmissionView, error) {
	filter := ports.SubmissionFilter{
		SubmittedBy: strings.TrimSpace(query.SubmittedBy),
	}
	if raw := strings.TrimSpace(query.EntityType); raw != "" {
		entityType := entities.EntityType(strings.ToLower(raw))
		if !entityType.Valid() {
			return nil, domainerrors.ErrInvalidInput
		}
		filter.EntityType = entityType
	}
	var composite entities.ItemStatus
	if raw := strings.TrimSpace(query.CompositeStatus); raw != "" {
		status, err := entities.ParseItemStatus(raw)
		if err != nil {
			return nil, err
		}
		composite = status
	}

	items, err := uc.Submissions.ListSubmissions(ctx, filter)
	if err != nil {
		return nil, err
	}
	views := make([]SubmissionView, 0, len(items))
	for _, item := range items {
		view := NewSubmissionView(item)
		if composite != "" && view.CompositeStatus != composite {
			continue
		}
		views = append(views, view)
	}
	return views, nil
}

func (uc QueryUseCase) GetChangeSet(ctx context.Context, changeSetID string) (entities.ChangeSet, error) {
	return uc.ChangeSets.GetChangeSet(ctx, strings.TrimSpace(changeSetID))
}

func (uc QueryUseCase) DiffView(ctx context.Context, changeSetID string) ([]entities.Change, error) {
	changeSet, err := uc.ChangeSets.GetChangeSet(ctx, strings.TrimSpace(changeSetID))
	if err != nil {
		return nil, err
	}
	return changeSet.DiffView(), nil
}

func (uc QueryUseCase) ListChangeSets(ctx context.Context, query ListChangeSetsQuery) ([]entities.ChangeSet, error) {
	filter := ports.ChangeSetFilter{
		TargetEntityID: strings.TrimSpace(query.TargetEntityID),
	}
	if raw := strings.TrimSpace(query.Status); raw != "" {
		status, err := entities.ParseChangeSetStatus(raw)
		if err != nil {
			return nil, err
		}
		filter.Status = status
	}
	return uc.ChangeSets.ListChangeSets(ctx, filter)
}

func NewSubmissionView(item entities.Submission) SubmissionView {
	composite := item.CompositeStatus()
	return SubmissionView{
		Submission:       item,
		CompositeStatus:  composite,
		EnabledActions:   entities.EnabledActions(composite),
		SubmitterActions: entities.SubmitterActions(item),
	}
}
