package errors

import (
	"errors"
	"fmt"
)

// Taxonomy roots. The specific errors below wrap one of them with %w so
// callers can branch with errors.Is on the category.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	ErrPersistence  = errors.New("persistence failed")
	ErrInvalidInput = errors.New("invalid input")
)

var (
	ErrSubmissionNotFound = fmt.Errorf("submission %w", ErrNotFound)
	ErrFieldNotFound      = fmt.Errorf("field %w", ErrNotFound)
	ErrVideoNotFound      = fmt.Errorf("video %w", ErrNotFound)
	ErrChangeSetNotFound  = fmt.Errorf("change set %w", ErrNotFound)
	ErrStaleEntity        = fmt.Errorf("entity removed while decision was in flight: %w", ErrNotFound)

	ErrSubmissionNotDeclined    = fmt.Errorf("submission is not declined: %w", ErrInvalidState)
	ErrSubmissionNotApproved    = fmt.Errorf("submission is not approved: %w", ErrInvalidState)
	ErrChangeSetAlreadyReviewed = fmt.Errorf("change set already reviewed: %w", ErrInvalidState)

	ErrInvalidSubmission   = fmt.Errorf("submission: %w", ErrInvalidInput)
	ErrNoReviewableItems   = fmt.Errorf("submission has no reviewable items: %w", ErrInvalidInput)
	ErrDuplicateFieldKey   = fmt.Errorf("duplicate field key: %w", ErrInvalidInput)
	ErrDuplicateVideoID    = fmt.Errorf("duplicate video id: %w", ErrInvalidInput)
	ErrUntaggedVideo       = fmt.Errorf("video requires at least one tag: %w", ErrInvalidInput)
	ErrInvalidStatus       = fmt.Errorf("unknown status: %w", ErrInvalidInput)
	ErrEmptyChangeSet      = fmt.Errorf("change set has no changes: %w", ErrInvalidInput)
	ErrFeedbackRequired    = fmt.Errorf("feedback comment is required: %w", ErrInvalidInput)
	ErrEmptyBulkSelection  = fmt.Errorf("bulk selection is empty: %w", ErrInvalidInput)
	ErrUnauthorizedActor   = errors.New("actor is not authorized")
	ErrDependencyMissing   = errors.New("review api dependency is not configured")
	ErrIdempotencyConflict = errors.New("idempotency key conflict")
)

// Persistence wraps a collaborator failure so it matches ErrPersistence while
// keeping the cause inspectable.
func Persistence(op string, cause error) error {
	if cause == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrPersistence, cause)
}
