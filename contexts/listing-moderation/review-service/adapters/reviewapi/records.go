package reviewapi

import (
	"time"

	"reviewdesk/contexts/listing-moderation/review-service/domain/entities"
	"reviewdesk/contexts/listing-moderation/review-service/ports"
)

type valueRecord struct {
	Text    string   `json:"text,omitempty"`
	Items   []string `json:"items,omitempty"`
	Display string   `json:"display,omitempty"`
}

type fieldRecord struct {
	Key      string      `json:"key"`
	Value    valueRecord `json:"value"`
	Status   string      `json:"status,omitempty"`
	Required bool        `json:"required"`
}

type videoRecord struct {
	ID                     string   `json:"id"`
	URL                    string   `json:"url"`
	ThumbnailURL           string   `json:"thumbnail_url,omitempty"`
	Tags                   []string `json:"tags"`
	IsFoodVisible          bool     `json:"is_food_visible"`
	VisibleFoodDescription string   `json:"visible_food_description,omitempty"`
	Status                 string   `json:"status,omitempty"`
}

type submissionRecord struct {
	ID              string        `json:"id"`
	EntityType      string        `json:"entity_type"`
	Title           string        `json:"title"`
	Fields          []fieldRecord `json:"fields"`
	Videos          []videoRecord `json:"videos"`
	SubmittedBy     string        `json:"submitted_by"`
	SubmittedAt     time.Time     `json:"submitted_at"`
	FeedbackComment string        `json:"feedback_comment,omitempty"`
}

type pendingSubmissionsResponse struct {
	Items []submissionRecord `json:"items"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type itemRefRecord struct {
	Kind string `json:"kind"`
	Key  string `json:"key"`
}

type resubmissionRequest struct {
	Fields     []fieldRecord   `json:"fields"`
	Videos     []videoRecord   `json:"videos"`
	ResetItems []itemRefRecord `json:"reset_items"`
}

type changeDecisionRequest struct {
	ReviewerID string `json:"reviewer_id"`
	Status     string `json:"status"`
	Notes      string `json:"notes,omitempty"`
}

type feedbackRequest struct {
	Comment string `json:"comment"`
}

// toEntity maps a remote record through NewSubmission so malformed records
// never reach the local store.
func (r submissionRecord) toEntity() (entities.Submission, error) {
	input := entities.Submission{
		ID:              r.ID,
		EntityType:      entities.EntityType(r.EntityType),
		Title:           r.Title,
		Fields:          make([]entities.ReviewableField, 0, len(r.Fields)),
		Videos:          make([]entities.VideoItem, 0, len(r.Videos)),
		SubmittedBy:     r.SubmittedBy,
		SubmittedAt:     r.SubmittedAt.UTC(),
		FeedbackComment: r.FeedbackComment,
	}
	for _, field := range r.Fields {
		input.Fields = append(input.Fields, entities.ReviewableField{
			Key:      field.Key,
			Value:    field.Value.toEntity(),
			Status:   entities.ItemStatus(field.Status),
			Required: field.Required,
		})
	}
	for _, video := range r.Videos {
		input.Videos = append(input.Videos, entities.VideoItem{
			ID:                     video.ID,
			URL:                    video.URL,
			ThumbnailURL:           video.ThumbnailURL,
			Tags:                   video.Tags,
			IsFoodVisible:          video.IsFoodVisible,
			VisibleFoodDescription: video.VisibleFoodDescription,
			Status:                 entities.ItemStatus(video.Status),
		})
	}
	return entities.NewSubmission(input)
}

func (r valueRecord) toEntity() entities.Value {
	return entities.Value{Text: r.Text, Items: r.Items, Display: r.Display}
}

func valueRecordFromEntity(value entities.Value) valueRecord {
	return valueRecord{Text: value.Text, Items: value.Items, Display: value.Display}
}

func resubmissionRequestFromPayload(payload ports.ResubmissionPayload) resubmissionRequest {
	request := resubmissionRequest{
		Fields:     make([]fieldRecord, 0, len(payload.Fields)),
		Videos:     make([]videoRecord, 0, len(payload.Videos)),
		ResetItems: make([]itemRefRecord, 0, len(payload.ResetItems)),
	}
	for _, field := range payload.Fields {
		request.Fields = append(request.Fields, fieldRecord{
			Key:      field.Key,
			Value:    valueRecordFromEntity(field.Value),
			Status:   string(field.Status),
			Required: field.Required,
		})
	}
	for _, video := range payload.Videos {
		request.Videos = append(request.Videos, videoRecord{
			ID:                     video.ID,
			URL:                    video.URL,
			ThumbnailURL:           video.ThumbnailURL,
			Tags:                   video.Tags,
			IsFoodVisible:          video.IsFoodVisible,
			VisibleFoodDescription: video.VisibleFoodDescription,
			Status:                 string(video.Status),
		})
	}
	for _, ref := range payload.ResetItems {
		request.ResetItems = append(request.ResetItems, itemRefRecord{
			Kind: string(ref.Kind),
			Key:  ref.Key,
		})
	}
	return request
}
