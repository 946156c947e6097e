package entities

import (
	"strings"
	"time"

	domainerrors "reviewdesk/contexts/listing-moderation/review-service/domain/errors"
)

type ItemKind string

const (
	ItemKindField ItemKind = "field"
	ItemKindVideo ItemKind = "video"
)

// ItemRef names one reviewable item of a submission.
type ItemRef struct {
	Kind ItemKind
	Key  string
}

// VideoUpdate carries resubmitted video content. Zero values keep the current
// content.
type VideoUpdate struct {
	URL                    string
	ThumbnailURL           string
	Tags                   []string
	IsFoodVisible          *bool
	VisibleFoodDescription *string
}

type ResubmitValues struct {
	Fields map[string]Value
	Videos map[string]VideoUpdate
}

// The transitions below never mutate their input: they return a new state.

func ApproveField(s Submission, key string, now time.Time) (Submission, error) {
	return decideField(s, key, ItemStatusApproved, now)
}

func DeclineField(s Submission, key string, now time.Time) (Submission, error) {
	return decideField(s, key, ItemStatusDeclined, now)
}

func ApproveVideo(s Submission, videoID string, now time.Time) (Submission, error) {
	return decideVideo(s, videoID, ItemStatusApproved, now)
}

func DeclineVideo(s Submission, videoID string, now time.Time) (Submission, error) {
	return decideVideo(s, videoID, ItemStatusDeclined, now)
}

// ApproveAll approves every reviewable item and reports which ones changed.
func ApproveAll(s Submission, now time.Time) (Submission, []ItemRef) {
	next := s.Clone()
	var changed []ItemRef
	for i := range next.Fields {
		field := &next.Fields[i]
		if !field.Required || field.Status == ItemStatusApproved {
			continue
		}
		field.Approve()
		changed = append(changed, ItemRef{Kind: ItemKindField, Key: field.Key})
	}
	for i := range next.Videos {
		video := &next.Videos[i]
		if video.Status == ItemStatusApproved {
			continue
		}
		video.Approve()
		changed = append(changed, ItemRef{Kind: ItemKindVideo, Key: video.ID})
	}
	if len(changed) > 0 {
		next.UpdatedAt = now.UTC()
	}
	return next, changed
}

// Resubmit resets every declined item to pending, taking the supplied value
// when there is one. Approved and pending items keep value and status; values
// supplied for them are ignored. Keys that do not exist are an error.
func Resubmit(s Submission, values ResubmitValues, now time.Time) (Submission, []ItemRef, error) {
	for key := range values.Fields {
		if s.fieldIndex(key) < 0 {
			return Submission{}, nil, domainerrors.ErrFieldNotFound
		}
	}
	for videoID := range values.Videos {
		if s.videoIndex(videoID) < 0 {
			return Submission{}, nil, domainerrors.ErrVideoNotFound
		}
	}

	next := s.Clone()
	var reset []ItemRef
	for i := range next.Fields {
		field := &next.Fields[i]
		if field.Status != ItemStatusDeclined {
			continue
		}
		if value, ok := values.Fields[field.Key]; ok {
			field.Value = value.clone()
		}
		field.Status = ItemStatusPending
		reset = append(reset, ItemRef{Kind: ItemKindField, Key: field.Key})
	}
	for i := range next.Videos {
		video := &next.Videos[i]
		if video.Status != ItemStatusDeclined {
			continue
		}
		if update, ok := values.Videos[video.ID]; ok {
			applyVideoUpdate(video, update)
		}
		video.Status = ItemStatusPending
		if err := video.Validate(); err != nil {
			return Submission{}, nil, err
		}
		reset = append(reset, ItemRef{Kind: ItemKindVideo, Key: video.ID})
	}
	next.FeedbackComment = ""
	next.UpdatedAt = now.UTC()
	return next, reset, nil
}

// WithFeedback records the reviewer's comment on a declined submission. The
// state check comes first: a submission that is not declined rejects the
// action whatever the comment.
func WithFeedback(s Submission, comment string, now time.Time) (Submission, error) {
	if s.CompositeStatus() != ItemStatusDeclined {
		return Submission{}, domainerrors.ErrSubmissionNotDeclined
	}
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return Submission{}, domainerrors.ErrFeedbackRequired
	}
	next := s.Clone()
	next.FeedbackComment = comment
	next.UpdatedAt = now.UTC()
	return next, nil
}

// MergeItems copies the referenced items, value and status, from source into
// target and leaves every other item of target as it is.
func MergeItems(target Submission, source Submission, refs []ItemRef, now time.Time) (Submission, error) {
	next := target.Clone()
	for _, ref := range refs {
		switch ref.Kind {
		case ItemKindField:
			from, to := source.fieldIndex(ref.Key), next.fieldIndex(ref.Key)
			if from < 0 || to < 0 {
				return Submission{}, domainerrors.ErrFieldNotFound
			}
			next.Fields[to] = source.Fields[from]
			next.Fields[to].Value = source.Fields[from].Value.clone()
		case ItemKindVideo:
			from, to := source.videoIndex(ref.Key), next.videoIndex(ref.Key)
			if from < 0 || to < 0 {
				return Submission{}, domainerrors.ErrVideoNotFound
			}
			next.Videos[to] = source.Videos[from].clone()
		default:
			return Submission{}, domainerrors.ErrInvalidInput
		}
	}
	if len(refs) > 0 {
		next.UpdatedAt = now.UTC()
	}
	return next, nil
}

// RequireSavable reports whether the submission may be activated.
func RequireSavable(s Submission) error {
	if s.CompositeStatus() != ItemStatusApproved {
		return domainerrors.ErrSubmissionNotApproved
	}
	return nil
}

func decideField(s Submission, key string, status ItemStatus, now time.Time) (Submission, error) {
	idx := s.fieldIndex(key)
	if idx < 0 {
		return Submission{}, domainerrors.ErrFieldNotFound
	}
	next := s.Clone()
	if next.Fields[idx].Status == status {
		return next, nil
	}
	switch status {
	case ItemStatusApproved:
		next.Fields[idx].Approve()
	case ItemStatusDeclined:
		next.Fields[idx].Decline()
	default:
		return Submission{}, domainerrors.ErrInvalidStatus
	}
	next.UpdatedAt = now.UTC()
	return next, nil
}

func decideVideo(s Submission, videoID string, status ItemStatus, now time.Time) (Submission, error) {
	idx := s.videoIndex(videoID)
	if idx < 0 {
		return Submission{}, domainerrors.ErrVideoNotFound
	}
	next := s.Clone()
	if next.Videos[idx].Status == status {
		return next, nil
	}
	switch status {
	case ItemStatusApproved:
		next.Videos[idx].Approve()
	case ItemStatusDeclined:
		next.Videos[idx].Decline()
	default:
		return Submission{}, domainerrors.ErrInvalidStatus
	}
	next.UpdatedAt = now.UTC()
	return next, nil
}

func applyVideoUpdate(video *VideoItem, update VideoUpdate) {
	if url := strings.TrimSpace(update.URL); url != "" {
		video.URL = url
	}
	if thumbnail := strings.TrimSpace(update.ThumbnailURL); thumbnail != "" {
		video.ThumbnailURL = thumbnail
	}
	if update.Tags != nil {
		video.Tags = normalizeTags(update.Tags)
	}
	if update.IsFoodVisible != nil {
		video.IsFoodVisible = *update.IsFoodVisible
	}
	if update.VisibleFoodDescription != nil {
		video.VisibleFoodDescription = strings.TrimSpace(*update.VisibleFoodDescription)
	}
}
