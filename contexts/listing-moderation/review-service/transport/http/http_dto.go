package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValueDTO struct {
	Text    string   `json:"text,omitempty"`
	Items   []string `json:"items,omitempty"`
	Display string   `json:"display,omitempty"`
}

type FieldDTO struct {
	Key      string   `json:"key"`
	Value    ValueDTO `json:"value"`
	Status   string   `json:"status"`
	Required bool     `json:"required"`
}

type VideoDTO struct {
	VideoID                string   `json:"video_id"`
	URL                    string   `json:"url"`
	ThumbnailURL           string   `json:"thumbnail_url,omitempty"`
	Tags                   []string `json:"tags"`
	IsFoodVisible          bool     `json:"is_food_visible"`
	VisibleFoodDescription string   `json:"visible_food_description,omitempty"`
	Status                 string   `json:"status"`
}

type SubmissionDTO struct {
	SubmissionID     string     `json:"submission_id"`
	EntityType       string     `json:"entity_type"`
	Title            string     `json:"title"`
	Fields           []FieldDTO `json:"fields"`
	Videos           []VideoDTO `json:"videos"`
	SubmittedBy      string     `json:"submitted_by"`
	SubmittedAt      string     `json:"submitted_at"`
	UpdatedAt        string     `json:"updated_at"`
	FeedbackComment  string     `json:"feedback_comment,omitempty"`
	CompositeStatus  string     `json:"composite_status"`
	EnabledActions   []string   `json:"enabled_actions"`
	SubmitterActions []string   `json:"submitter_actions"`
}

type GetSubmissionResponse struct {
	Submission SubmissionDTO `json:"submission"`
}

type ListSubmissionsResponse struct {
	Items []SubmissionDTO `json:"items"`
}

type DecisionResponse struct {
	Submission SubmissionDTO `json:"submission"`
}

type VideoUpdateDTO struct {
	URL                    string   `json:"url,omitempty"`
	ThumbnailURL           string   `json:"thumbnail_url,omitempty"`
	Tags                   []string `json:"tags,omitempty"`
	IsFoodVisible          *bool    `json:"is_food_visible,omitempty"`
	VisibleFoodDescription *string  `json:"visible_food_description,omitempty"`
}

type ResubmitRequest struct {
	Fields map[string]ValueDTO       `json:"fields"`
	Videos map[string]VideoUpdateDTO `json:"videos"`
}

type FeedbackRequest struct {
	Comment string `json:"comment"`
}

type BulkApproveRequest struct {
	IDs   []string `json:"ids"`
	Notes string   `json:"notes,omitempty"`
}

type BulkFailureDTO struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

type BulkApproveResponse struct {
	Succeeded []string         `json:"succeeded"`
	Failed    []BulkFailureDTO `json:"failed"`
}

type FieldValueDTO struct {
	Key   string   `json:"key"`
	Value ValueDTO `json:"value"`
}

type CreateChangeSetRequest struct {
	TargetEntityID string          `json:"target_entity_id"`
	Live           []FieldValueDTO `json:"live"`
	Proposed       []FieldValueDTO `json:"proposed"`
}

type ReviewChangeSetRequest struct {
	Notes string `json:"notes,omitempty"`
}

type ChangeDTO struct {
	Field      string   `json:"field"`
	OldValue   ValueDTO `json:"old_value"`
	NewValue   ValueDTO `json:"new_value"`
	ChangeType string   `json:"change_type"`
}

type ChangeSetDTO struct {
	ChangeSetID    string      `json:"change_set_id"`
	TargetEntityID string      `json:"target_entity_id"`
	SubmitterID    string      `json:"submitter_id"`
	Changes        []ChangeDTO `json:"changes"`
	Status         string      `json:"status"`
	ReviewerID     string      `json:"reviewer_id,omitempty"`
	ReviewedAt     string      `json:"reviewed_at,omitempty"`
	Notes          string      `json:"notes,omitempty"`
	CreatedAt      string      `json:"created_at"`
}

type ChangeSetResponse struct {
	ChangeSet ChangeSetDTO `json:"change_set"`
}

type ListChangeSetsResponse struct {
	Items []ChangeSetDTO `json:"items"`
}

type DiffViewResponse struct {
	ChangeSetID string      `json:"change_set_id"`
	Changes     []ChangeDTO `json:"changes"`
}
