package entities

import (
	"strings"

	domainerrors "reviewdesk/contexts/listing-moderation/review-service/domain/errors"
)

const (
	FieldKeyAddress     = "address"
	FieldKeyMenu        = "menu"
	FieldKeyReservation = "reservation"
)

type ReviewableField struct {
	Key      string
	Value    Value
	Status   ItemStatus
	Required bool
}

// Approve and Decline are last-write-wins; any status may move to any other.
func (f *ReviewableField) Approve() {
	f.Status = ItemStatusApproved
}

func (f *ReviewableField) Decline() {
	f.Status = ItemStatusDeclined
}

type VideoItem struct {
	ID                     string
	URL                    string
	ThumbnailURL           string
	Tags                   []string
	IsFoodVisible          bool
	VisibleFoodDescription string
	Status                 ItemStatus
}

func (v *VideoItem) Approve() {
	v.Status = ItemStatusApproved
}

func (v *VideoItem) Decline() {
	v.Status = ItemStatusDeclined
}

func (v VideoItem) Validate() error {
	if strings.TrimSpace(v.ID) == "" || strings.TrimSpace(v.URL) == "" {
		return domainerrors.ErrInvalidSubmission
	}
	if !v.Status.Valid() {
		return domainerrors.ErrInvalidStatus
	}
	if len(normalizeTags(v.Tags)) == 0 {
		return domainerrors.ErrUntaggedVideo
	}
	return nil
}

func (v VideoItem) clone() VideoItem {
	v.Tags = append([]string(nil), v.Tags...)
	return v
}

func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	items := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		items = append(items, tag)
	}
	return items
}
