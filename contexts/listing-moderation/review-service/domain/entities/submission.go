package entities

import (
	"strings"
	"time"

	domainerrors "reviewdesk/contexts/listing-moderation/review-service/domain/errors"
)

// Submission bundles the independently reviewable parts of a listing or a
// post. Its field key set is fixed by NewSubmission.
type Submission struct {
	ID              string
	EntityType      EntityType
	Title           string
	Fields          []ReviewableField
	Videos          []VideoItem
	SubmittedBy     string
	SubmittedAt     time.Time
	FeedbackComment string
	UpdatedAt       time.Time
}

// NewSubmission validates and normalizes a submission assembled by a caller.
func NewSubmission(input Submission) (Submission, error) {
	item := input.Clone()
	item.ID = strings.TrimSpace(item.ID)
	item.SubmittedBy = strings.TrimSpace(item.SubmittedBy)
	item.FeedbackComment = strings.TrimSpace(item.FeedbackComment)
	if item.ID == "" || !item.EntityType.Valid() {
		return Submission{}, domainerrors.ErrInvalidSubmission
	}

	keys := make(map[string]struct{}, len(item.Fields))
	for i := range item.Fields {
		field := &item.Fields[i]
		field.Key = strings.TrimSpace(field.Key)
		if field.Key == "" {
			return Submission{}, domainerrors.ErrInvalidSubmission
		}
		if _, exists := keys[field.Key]; exists {
			return Submission{}, domainerrors.ErrDuplicateFieldKey
		}
		keys[field.Key] = struct{}{}
		if field.Status == "" {
			field.Status = ItemStatusPending
		}
		if !field.Status.Valid() {
			return Submission{}, domainerrors.ErrInvalidStatus
		}
	}

	videoIDs := make(map[string]struct{}, len(item.Videos))
	for i := range item.Videos {
		video := &item.Videos[i]
		video.ID = strings.TrimSpace(video.ID)
		video.Tags = normalizeTags(video.Tags)
		if video.Status == "" {
			video.Status = ItemStatusPending
		}
		if err := video.Validate(); err != nil {
			return Submission{}, err
		}
		if _, exists := videoIDs[video.ID]; exists {
			return Submission{}, domainerrors.ErrDuplicateVideoID
		}
		videoIDs[video.ID] = struct{}{}
	}

	if len(item.reviewableStatuses()) == 0 {
		return Submission{}, domainerrors.ErrNoReviewableItems
	}
	if item.SubmittedAt.IsZero() {
		item.SubmittedAt = time.Now().UTC()
	}
	if item.UpdatedAt.IsZero() {
		item.UpdatedAt = item.SubmittedAt
	}
	return item, nil
}

// CompositeStatus is recomputed from the current item statuses on every call.
func (s Submission) CompositeStatus() ItemStatus {
	return Aggregate(s.reviewableStatuses())
}

func (s Submission) EnabledActions() []Action {
	return EnabledActions(s.CompositeStatus())
}

func (s Submission) Field(key string) (ReviewableField, bool) {
	idx := s.fieldIndex(key)
	if idx < 0 {
		return ReviewableField{}, false
	}
	return s.Fields[idx], true
}

func (s Submission) Video(videoID string) (VideoItem, bool) {
	idx := s.videoIndex(videoID)
	if idx < 0 {
		return VideoItem{}, false
	}
	return s.Videos[idx], true
}

// FieldValues returns the current field contents in field order.
func (s Submission) FieldValues() []FieldValue {
	items := make([]FieldValue, 0, len(s.Fields))
	for _, field := range s.Fields {
		items = append(items, FieldValue{Key: field.Key, Value: field.Value.clone()})
	}
	return items
}

func (s Submission) Clone() Submission {
	out := s
	if s.Fields != nil {
		out.Fields = make([]ReviewableField, len(s.Fields))
		for i, field := range s.Fields {
			field.Value = field.Value.clone()
			out.Fields[i] = field
		}
	}
	if s.Videos != nil {
		out.Videos = make([]VideoItem, len(s.Videos))
		for i, video := range s.Videos {
			out.Videos[i] = video.clone()
		}
	}
	return out
}

func (s Submission) reviewableStatuses() []ItemStatus {
	statuses := make([]ItemStatus, 0, len(s.Fields)+len(s.Videos))
	for _, field := range s.Fields {
		if field.Required {
			statuses = append(statuses, field.Status)
		}
	}
	for _, video := range s.Videos {
		statuses = append(statuses, video.Status)
	}
	return statuses
}

func (s Submission) fieldIndex(key string) int {
	key = strings.TrimSpace(key)
	for i, field := range s.Fields {
		if field.Key == key {
			return i
		}
	}
	return -1
}

func (s Submission) videoIndex(videoID string) int {
	videoID = strings.TrimSpace(videoID)
	for i, video := range s.Videos {
		if video.ID == videoID {
			return i
		}
	}
	return -1
}
