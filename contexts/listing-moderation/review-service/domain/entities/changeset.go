package entities

import (
	"strings"
	"time"

	domainerrors "reviewdesk/contexts/listing-moderation/review-service/domain/errors"
)

// ChangeSet is a batch of proposed field changes to a live entity awaiting a
// single approve or reject. Review fields are written once, together with the
// only status transition.
type ChangeSet struct {
	ID             string
	TargetEntityID string
	SubmitterID    string
	Changes        []Change
	Status         ChangeSetStatus
	ReviewerID     string
	ReviewedAt     *time.Time
	Notes          string
	CreatedAt      time.Time
}

// NewChangeSet diffs the proposed values against the live ones and keeps only
// real changes, in proposed field order.
func NewChangeSet(id string, targetEntityID string, submitterID string, live []FieldValue, proposed []FieldValue, now time.Time) (ChangeSet, error) {
	id = strings.TrimSpace(id)
	targetEntityID = strings.TrimSpace(targetEntityID)
	submitterID = strings.TrimSpace(submitterID)
	if id == "" || targetEntityID == "" || submitterID == "" {
		return ChangeSet{}, domainerrors.ErrInvalidInput
	}
	changes := DiffAll(live, proposed)
	if len(changes) == 0 {
		return ChangeSet{}, domainerrors.ErrEmptyChangeSet
	}
	return ChangeSet{
		ID:             id,
		TargetEntityID: targetEntityID,
		SubmitterID:    submitterID,
		Changes:        changes,
		Status:         ChangeSetStatusPending,
		CreatedAt:      now.UTC(),
	}, nil
}

func (c ChangeSet) IsReviewed() bool {
	return c.Status != ChangeSetStatusPending
}

func (c ChangeSet) Approve(reviewerID string, notes string, now time.Time) (ChangeSet, error) {
	return c.review(ChangeSetStatusApproved, reviewerID, notes, now)
}

func (c ChangeSet) Reject(reviewerID string, notes string, now time.Time) (ChangeSet, error) {
	return c.review(ChangeSetStatusRejected, reviewerID, notes, now)
}

// DiffView returns the changes in presentation order.
func (c ChangeSet) DiffView() []Change {
	items := make([]Change, 0, len(c.Changes))
	for _, change := range c.Changes {
		change.OldValue = change.OldValue.clone()
		change.NewValue = change.NewValue.clone()
		items = append(items, change)
	}
	return items
}

func (c ChangeSet) Clone() ChangeSet {
	out := c
	out.Changes = c.DiffView()
	if c.ReviewedAt != nil {
		reviewedAt := *c.ReviewedAt
		out.ReviewedAt = &reviewedAt
	}
	return out
}

func (c ChangeSet) review(status ChangeSetStatus, reviewerID string, notes string, now time.Time) (ChangeSet, error) {
	if c.IsReviewed() {
		return ChangeSet{}, domainerrors.ErrChangeSetAlreadyReviewed
	}
	reviewerID = strings.TrimSpace(reviewerID)
	if reviewerID == "" {
		return ChangeSet{}, domainerrors.ErrUnauthorizedActor
	}
	next := c.Clone()
	reviewedAt := now.UTC()
	next.Status = status
	next.ReviewerID = reviewerID
	next.ReviewedAt = &reviewedAt
	next.Notes = strings.TrimSpace(notes)
	return next, nil
}
