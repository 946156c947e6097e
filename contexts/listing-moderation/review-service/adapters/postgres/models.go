package postgresadapter

import (
	"encoding/json"
	"time"

	"reviewdesk/contexts/listing-moderation/review-service/domain/entities"
)

type submissionModel struct {
	SubmissionID    string     `gorm:"column:submission_id;primaryKey"`
	EntityType      string     `gorm:"column:entity_type"`
	Title           string     `gorm:"column:title"`
	Fields          []byte     `gorm:"column:fields;type:jsonb"`
	Videos          []byte     `gorm:"column:videos;type:jsonb"`
	SubmittedBy     string     `gorm:"column:submitted_by"`
	SubmittedAt     time.Time  `gorm:"column:submitted_at"`
	FeedbackComment string     `gorm:"column:feedback_comment"`
	UpdatedAt       time.Time  `gorm:"column:updated_at"`
	ArchivedAt      *time.Time `gorm:"column:archived_at"`
}

func (submissionModel) TableName() string {
	return "review_submissions"
}

type changeSetModel struct {
	ChangeSetID    string     `gorm:"column:change_set_id;primaryKey"`
	TargetEntityID string     `gorm:"column:target_entity_id"`
	SubmitterID    string     `gorm:"column:submitter_id"`
	Changes        []byte     `gorm:"column:changes;type:jsonb"`
	Status         string     `gorm:"column:status"`
	ReviewerID     string     `gorm:"column:reviewer_id"`
	ReviewedAt     *time.Time `gorm:"column:reviewed_at"`
	Notes          string     `gorm:"column:notes"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
}

func (changeSetModel) TableName() string {
	return "review_change_sets"
}

type idempotencyModel struct {
	Key         string    `gorm:"column:key;primaryKey"`
	RequestHash string    `gorm:"column:request_hash"`
	Payload     []byte    `gorm:"column:payload"`
	ExpiresAt   time.Time `gorm:"column:expires_at"`
}

func (idempotencyModel) TableName() string {
	return "review_idempotency"
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "review_outbox"
}

type valueDoc struct {
	Text    string   `json:"text,omitempty"`
	Items   []string `json:"items,omitempty"`
	Display string   `json:"display,omitempty"`
}

type fieldDoc struct {
	Key      string   `json:"key"`
	Value    valueDoc `json:"value"`
	Status   string   `json:"status"`
	Required bool     `json:"required"`
}

type videoDoc struct {
	ID                     string   `json:"id"`
	URL                    string   `json:"url"`
	ThumbnailURL           string   `json:"thumbnail_url,omitempty"`
	Tags                   []string `json:"tags"`
	IsFoodVisible          bool     `json:"is_food_visible"`
	VisibleFoodDescription string   `json:"visible_food_description,omitempty"`
	Status                 string   `json:"status"`
}

type changeDoc struct {
	Field      string   `json:"field"`
	OldValue   valueDoc `json:"old_value"`
	NewValue   valueDoc `json:"new_value"`
	ChangeType string   `json:"change_type"`
}

func submissionModelFromEntity(item entities.Submission) (submissionModel, error) {
	fields := make([]fieldDoc, 0, len(item.Fields))
	for _, field := range item.Fields {
		fields = append(fields, fieldDoc{
			Key:      field.Key,
			Value:    valueDocFromEntity(field.Value),
			Status:   string(field.Status),
			Required: field.Required,
		})
	}
	videos := make([]videoDoc, 0, len(item.Videos))
	for _, video := range item.Videos {
		videos = append(videos, videoDoc{
			ID:                     video.ID,
			URL:                    video.URL,
			ThumbnailURL:           video.ThumbnailURL,
			Tags:                   append([]string(nil), video.Tags...),
			IsFoodVisible:          video.IsFoodVisible,
			VisibleFoodDescription: video.VisibleFoodDescription,
			Status:                 string(video.Status),
		})
	}
	fieldsRaw, err := json.Marshal(fields)
	if err != nil {
		return submissionModel{}, err
	}
	videosRaw, err := json.Marshal(videos)
	if err != nil {
		return submissionModel{}, err
	}
	return submissionModel{
		SubmissionID:    item.ID,
		EntityType:      string(item.EntityType),
		Title:           item.Title,
		Fields:          fieldsRaw,
		Videos:          videosRaw,
		SubmittedBy:     item.SubmittedBy,
		SubmittedAt:     item.SubmittedAt.UTC(),
		FeedbackComment: item.FeedbackComment,
		UpdatedAt:       item.UpdatedAt.UTC(),
	}, nil
}

func (m submissionModel) toEntity() (entities.Submission, error) {
	var fields []fieldDoc
	if len(m.Fields) > 0 {
		if err := json.Unmarshal(m.Fields, &fields); err != nil {
			return entities.Submission{}, err
		}
	}
	var videos []videoDoc
	if len(m.Videos) > 0 {
		if err := json.Unmarshal(m.Videos, &videos); err != nil {
			return entities.Submission{}, err
		}
	}
	item := entities.Submission{
		ID:              m.SubmissionID,
		EntityType:      entities.EntityType(m.EntityType),
		Title:           m.Title,
		Fields:          make([]entities.ReviewableField, 0, len(fields)),
		Videos:          make([]entities.VideoItem, 0, len(videos)),
		SubmittedBy:     m.SubmittedBy,
		SubmittedAt:     m.SubmittedAt.UTC(),
		FeedbackComment: m.FeedbackComment,
		UpdatedAt:       m.UpdatedAt.UTC(),
	}
	for _, field := range fields {
		item.Fields = append(item.Fields, entities.ReviewableField{
			Key:      field.Key,
			Value:    field.Value.toEntity(),
			Status:   entities.ItemStatus(field.Status),
			Required: field.Required,
		})
	}
	for _, video := range videos {
		item.Videos = append(item.Videos, entities.VideoItem{
			ID:                     video.ID,
			URL:                    video.URL,
			ThumbnailURL:           video.ThumbnailURL,
			Tags:                   video.Tags,
			IsFoodVisible:          video.IsFoodVisible,
			VisibleFoodDescription: video.VisibleFoodDescription,
			Status:                 entities.ItemStatus(video.Status),
		})
	}
	return item, nil
}

func changeSetModelFromEntity(item entities.ChangeSet) (changeSetModel, error) {
	changes := make([]changeDoc, 0, len(item.Changes))
	for _, change := range item.Changes {
		changes = append(changes, changeDoc{
			Field:      change.Field,
			OldValue:   valueDocFromEntity(change.OldValue),
			NewValue:   valueDocFromEntity(change.NewValue),
			ChangeType: string(change.ChangeType),
		})
	}
	raw, err := json.Marshal(changes)
	if err != nil {
		return changeSetModel{}, err
	}
	return changeSetModel{
		ChangeSetID:    item.ID,
		TargetEntityID: item.TargetEntityID,
		SubmitterID:    item.SubmitterID,
		Changes:        raw,
		Status:         string(item.Status),
		ReviewerID:     item.ReviewerID,
		ReviewedAt:     normalizeOptionalTime(item.ReviewedAt),
		Notes:          item.Notes,
		CreatedAt:      item.CreatedAt.UTC(),
	}, nil
}

func (m changeSetModel) toEntity() (entities.ChangeSet, error) {
	var changes []changeDoc
	if len(m.Changes) > 0 {
		if err := json.Unmarshal(m.Changes, &changes); err != nil {
			return entities.ChangeSet{}, err
		}
	}
	item := entities.ChangeSet{
		ID:             m.ChangeSetID,
		TargetEntityID: m.TargetEntityID,
		SubmitterID:    m.SubmitterID,
		Changes:        make([]entities.Change, 0, len(changes)),
		Status:         entities.ChangeSetStatus(m.Status),
		ReviewerID:     m.ReviewerID,
		ReviewedAt:     normalizeOptionalTime(m.ReviewedAt),
		Notes:          m.Notes,
		CreatedAt:      m.CreatedAt.UTC(),
	}
	for _, change := range changes {
		item.Changes = append(item.Changes, entities.Change{
			Field:      change.Field,
			OldValue:   change.OldValue.toEntity(),
			NewValue:   change.NewValue.toEntity(),
			ChangeType: entities.ChangeType(change.ChangeType),
		})
	}
	return item, nil
}

func valueDocFromEntity(value entities.Value) valueDoc {
	return valueDoc{
		Text:    value.Text,
		Items:   append([]string(nil), value.Items...),
		Display: value.Display,
	}
}

func (d valueDoc) toEntity() entities.Value {
	return entities.Value{
		Text:    d.Text,
		Items:   d.Items,
		Display: d.Display,
	}
}

func normalizeOptionalTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	timestamp := value.UTC()
	return &timestamp
}
