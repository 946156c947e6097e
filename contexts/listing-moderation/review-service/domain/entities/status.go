package entities

import (
	"strings"

	domainerrors "reviewdesk/contexts/listing-moderation/review-service/domain/errors"
)

// ItemStatus is the review status of a field, a video, and the composite
// status of a submission.
type ItemStatus string

const (
	ItemStatusPending  ItemStatus = "pending"
	ItemStatusApproved ItemStatus = "approved"
	ItemStatusDeclined ItemStatus = "declined"
)

func (s ItemStatus) Valid() bool {
	switch s {
	case ItemStatusPending, ItemStatusApproved, ItemStatusDeclined:
		return true
	default:
		return false
	}
}

func ParseItemStatus(raw string) (ItemStatus, error) {
	status := ItemStatus(strings.TrimSpace(strings.ToLower(raw)))
	if !status.Valid() {
		return "", domainerrors.ErrInvalidStatus
	}
	return status, nil
}

// ChangeSetStatus is deliberately a separate vocabulary from ItemStatus:
// change sets are rejected, items are declined.
type ChangeSetStatus string

const (
	ChangeSetStatusPending  ChangeSetStatus = "pending"
	ChangeSetStatusApproved ChangeSetStatus = "approved"
	ChangeSetStatusRejected ChangeSetStatus = "rejected"
)

func (s ChangeSetStatus) Valid() bool {
	switch s {
	case ChangeSetStatusPending, ChangeSetStatusApproved, ChangeSetStatusRejected:
		return true
	default:
		return false
	}
}

func ParseChangeSetStatus(raw string) (ChangeSetStatus, error) {
	status := ChangeSetStatus(strings.TrimSpace(strings.ToLower(raw)))
	if !status.Valid() {
		return "", domainerrors.ErrInvalidStatus
	}
	return status, nil
}

type EntityType string

const (
	EntityTypeLocation EntityType = "location"
	EntityTypePost     EntityType = "post"
)

func (t EntityType) Valid() bool {
	return t == EntityTypeLocation || t == EntityTypePost
}

type Action string

const (
	ActionSave         Action = "save"
	ActionSendFeedback Action = "send_feedback"
	ActionResubmit     Action = "resubmit"
)
