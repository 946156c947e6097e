package httpadapter

import (
	"context"
	"log/slog"
	"time"

	application "reviewdesk/contexts/listing-moderation/review-service/application"
	"reviewdesk/contexts/listing-moderation/review-service/application/commands"
	"reviewdesk/contexts/listing-moderation/review-service/application/queries"
	"reviewdesk/contexts/listing-moderation/review-service/domain/entities"
	httptransport "reviewdesk/contexts/listing-moderation/review-service/transport/http"
)

type Handler struct {
	Decisions   commands.DecisionProcessor
	ChangeSets  commands.ChangeSetReviewUseCase
	BulkApprove commands.BulkApproveUseCase
	Queries     queries.QueryUseCase
	Logger      *slog.Logger
}

func (h Handler) GetSubmissionHandler(ctx context.Context, submissionID string) (httptransport.GetSubmissionResponse, error) {
	view, err := h.Queries.GetSubmission(ctx, submissionID)
	if err != nil {
		return httptransport.GetSubmissionResponse{}, err
	}
	return httptransport.GetSubmissionResponse{Submission: mapSubmissionView(view)}, nil
}

func (h Handler) ListSubmissionsHandler(
	ctx context.Context,
	entityType string,
	compositeStatus string,
	submittedBy string,
) (httptransport.ListSubmissionsResponse, error) {
	views, err := h.Queries.ListPendingSubmissions(ctx, queries.ListSubmissionsQuery{
		EntityType:      entityType,
		CompositeStatus: compositeStatus,
		SubmittedBy:     submittedBy,
	})
	if err != nil {
		return httptransport.ListSubmissionsResponse{}, err
	}
	items := make([]httptransport.SubmissionDTO, 0, len(views))
	for _, view := range views {
		items = append(items, mapSubmissionView(view))
	}
	return httptransport.ListSubmissionsResponse{Items: items}, nil
}

func (h Handler) ApproveFieldHandler(ctx context.Context, actorID string, submissionID string, fieldKey string) (httptransport.DecisionResponse, error) {
	return h.decisionResponse(h.Decisions.ApproveField(ctx, commands.FieldDecisionCommand{
		SubmissionID: submissionID,
		FieldKey:     fieldKey,
		ActorID:      actorID,
	}))
}

func (h Handler) DeclineFieldHandler(ctx context.Context, actorID string, submissionID string, fieldKey string) (httptransport.DecisionResponse, error) {
	return h.decisionResponse(h.Decisions.DeclineField(ctx, commands.FieldDecisionCommand{
		SubmissionID: submissionID,
		FieldKey:     fieldKey,
		ActorID:      actorID,
	}))
}

func (h Handler) ApproveVideoHandler(ctx context.Context, actorID string, submissionID string, videoID string) (httptransport.DecisionResponse, error) {
	return h.decisionResponse(h.Decisions.ApproveVideo(ctx, commands.VideoDecisionCommand{
		SubmissionID: submissionID,
		VideoID:      videoID,
		ActorID:      actorID,
	}))
}

func (h Handler) DeclineVideoHandler(ctx context.Context, actorID string, submissionID string, videoID string) (httptransport.DecisionResponse, error) {
	return h.decisionResponse(h.Decisions.DeclineVideo(ctx, commands.VideoDecisionCommand{
		SubmissionID: submissionID,
		VideoID:      videoID,
		ActorID:      actorID,
	}))
}

func (h Handler) ResubmitHandler(
	ctx context.Context,
	actorID string,
	submissionID string,
	req httptransport.ResubmitRequest,
) (httptransport.DecisionResponse, error) {
	values := entities.ResubmitValues{
		Fields: make(map[string]entities.Value, len(req.Fields)),
		Videos: make(map[string]entities.VideoUpdate, len(req.Videos)),
	}
	for key, value := range req.Fields {
		values.Fields[key] = mapValueDTO(value)
	}
	for videoID, update := range req.Videos {
		values.Videos[videoID] = entities.VideoUpdate{
			URL:                    update.URL,
			ThumbnailURL:           update.ThumbnailURL,
			Tags:                   update.Tags,
			IsFoodVisible:          update.IsFoodVisible,
			VisibleFoodDescription: update.VisibleFoodDescription,
		}
	}
	return h.decisionResponse(h.Decisions.Resubmit(ctx, commands.ResubmitCommand{
		SubmissionID: submissionID,
		ActorID:      actorID,
		Values:       values,
	}))
}

func (h Handler) SendFeedbackHandler(
	ctx context.Context,
	actorID string,
	submissionID string,
	req httptransport.FeedbackRequest,
) (httptransport.DecisionResponse, error) {
	return h.decisionResponse(h.Decisions.SendFeedback(ctx, commands.SendFeedbackCommand{
		SubmissionID: submissionID,
		ActorID:      actorID,
		Comment:      req.Comment,
	}))
}

func (h Handler) SaveSubmissionHandler(ctx context.Context, actorID string, submissionID string) (httptransport.DecisionResponse, error) {
	return h.decisionResponse(h.Decisions.Save(ctx, commands.SaveSubmissionCommand{
		SubmissionID: submissionID,
		ActorID:      actorID,
	}))
}

func (h Handler) BulkApproveSubmissionsHandler(
	ctx context.Context,
	actorID string,
	idempotencyKey string,
	req httptransport.BulkApproveRequest,
) (httptransport.BulkApproveResponse, error) {
	result, err := h.BulkApprove.ApproveSubmissions(ctx, commands.BulkApproveCommand{
		IdempotencyKey: idempotencyKey,
		ReviewerID:     actorID,
		IDs:            req.IDs,
		Notes:          req.Notes,
	})
	if err != nil {
		return httptransport.BulkApproveResponse{}, err
	}
	return mapBulkResult(result), nil
}

func (h Handler) ListChangeSetsHandler(ctx context.Context, status string, targetEntityID string) (httptransport.ListChangeSetsResponse, error) {
	if status == "" {
		status = string(entities.ChangeSetStatusPending)
	}
	items, err := h.Queries.ListChangeSets(ctx, queries.ListChangeSetsQuery{
		Status:         status,
		TargetEntityID: targetEntityID,
	})
	if err != nil {
		return httptransport.ListChangeSetsResponse{}, err
	}
	result := make([]httptransport.ChangeSetDTO, 0, len(items))
	for _, item := range items {
		result = append(result, mapChangeSet(item))
	}
	return httptransport.ListChangeSetsResponse{Items: result}, nil
}

func (h Handler) CreateChangeSetHandler(
	ctx context.Context,
	submitterID string,
	req httptransport.CreateChangeSetRequest,
) (httptransport.ChangeSetResponse, error) {
	item, err := h.ChangeSets.Create(ctx, commands.CreateChangeSetCommand{
		TargetEntityID: req.TargetEntityID,
		SubmitterID:    submitterID,
		Live:           mapFieldValueDTOs(req.Live),
		Proposed:       mapFieldValueDTOs(req.Proposed),
	})
	if err != nil {
		return httptransport.ChangeSetResponse{}, err
	}
	return httptransport.ChangeSetResponse{ChangeSet: mapChangeSet(item)}, nil
}

func (h Handler) DiffViewHandler(ctx context.Context, changeSetID string) (httptransport.DiffViewResponse, error) {
	changes, err := h.Queries.DiffView(ctx, changeSetID)
	if err != nil {
		return httptransport.DiffViewResponse{}, err
	}
	return httptransport.DiffViewResponse{
		ChangeSetID: changeSetID,
		Changes:     mapChanges(changes),
	}, nil
}

func (h Handler) ApproveChangeSetHandler(
	ctx context.Context,
	reviewerID string,
	changeSetID string,
	req httptransport.ReviewChangeSetRequest,
) (httptransport.ChangeSetResponse, error) {
	item, err := h.ChangeSets.Approve(ctx, commands.ReviewChangeSetCommand{
		ChangeSetID: changeSetID,
		ReviewerID:  reviewerID,
		Notes:       req.Notes,
	})
	if err != nil {
		return httptransport.ChangeSetResponse{}, err
	}
	return httptransport.ChangeSetResponse{ChangeSet: mapChangeSet(item)}, nil
}

func (h Handler) RejectChangeSetHandler(
	ctx context.Context,
	reviewerID string,
	changeSetID string,
	req httptransport.ReviewChangeSetRequest,
) (httptransport.ChangeSetResponse, error) {
	item, err := h.ChangeSets.Reject(ctx, commands.ReviewChangeSetCommand{
		ChangeSetID: changeSetID,
		ReviewerID:  reviewerID,
		Notes:       req.Notes,
	})
	if err != nil {
		return httptransport.ChangeSetResponse{}, err
	}
	return httptransport.ChangeSetResponse{ChangeSet: mapChangeSet(item)}, nil
}

func (h Handler) BulkApproveChangeSetsHandler(
	ctx context.Context,
	actorID string,
	idempotencyKey string,
	req httptransport.BulkApproveRequest,
) (httptransport.BulkApproveResponse, error) {
	result, err := h.BulkApprove.ApproveChangeSets(ctx, commands.BulkApproveCommand{
		IdempotencyKey: idempotencyKey,
		ReviewerID:     actorID,
		IDs:            req.IDs,
		Notes:          req.Notes,
	})
	if err != nil {
		return httptransport.BulkApproveResponse{}, err
	}
	return mapBulkResult(result), nil
}

func (h Handler) decisionResponse(item entities.Submission, err error) (httptransport.DecisionResponse, error) {
	if err != nil {
		h.logDebug("review decision rejected", err)
		return httptransport.DecisionResponse{}, err
	}
	return httptransport.DecisionResponse{
		Submission: mapSubmissionView(queries.NewSubmissionView(item)),
	}, nil
}

func mapSubmissionView(view queries.SubmissionView) httptransport.SubmissionDTO {
	item := view.Submission
	dto := httptransport.SubmissionDTO{
		SubmissionID:     item.ID,
		EntityType:       string(item.EntityType),
		Title:            item.Title,
		Fields:           make([]httptransport.FieldDTO, 0, len(item.Fields)),
		Videos:           make([]httptransport.VideoDTO, 0, len(item.Videos)),
		SubmittedBy:      item.SubmittedBy,
		SubmittedAt:      item.SubmittedAt.Format(time.RFC3339),
		UpdatedAt:        item.UpdatedAt.Format(time.RFC3339),
		FeedbackComment:  item.FeedbackComment,
		CompositeStatus:  string(view.CompositeStatus),
		EnabledActions:   mapActions(view.EnabledActions),
		SubmitterActions: mapActions(view.SubmitterActions),
	}
	for _, field := range item.Fields {
		dto.Fields = append(dto.Fields, httptransport.FieldDTO{
			Key:      field.Key,
			Value:    mapValue(field.Value),
			Status:   string(field.Status),
			Required: field.Required,
		})
	}
	for _, video := range item.Videos {
		dto.Videos = append(dto.Videos, httptransport.VideoDTO{
			VideoID:                video.ID,
			URL:                    video.URL,
			ThumbnailURL:           video.ThumbnailURL,
			Tags:                   append([]string{}, video.Tags...),
			IsFoodVisible:          video.IsFoodVisible,
			VisibleFoodDescription: video.VisibleFoodDescription,
			Status:                 string(video.Status),
		})
	}
	return dto
}

func mapChangeSet(item entities.ChangeSet) httptransport.ChangeSetDTO {
	dto := httptransport.ChangeSetDTO{
		ChangeSetID:    item.ID,
		TargetEntityID: item.TargetEntityID,
		SubmitterID:    item.SubmitterID,
		Changes:        mapChanges(item.Changes),
		Status:         string(item.Status),
		ReviewerID:     item.ReviewerID,
		Notes:          item.Notes,
		CreatedAt:      item.CreatedAt.Format(time.RFC3339),
	}
	if item.ReviewedAt != nil {
		dto.ReviewedAt = item.ReviewedAt.Format(time.RFC3339)
	}
	return dto
}

func mapChanges(changes []entities.Change) []httptransport.ChangeDTO {
	result := make([]httptransport.ChangeDTO, 0, len(changes))
	for _, change := range changes {
		result = append(result, httptransport.ChangeDTO{
			Field:      change.Field,
			OldValue:   mapValue(change.OldValue),
			NewValue:   mapValue(change.NewValue),
			ChangeType: string(change.ChangeType),
		})
	}
	return result
}

func mapBulkResult(result commands.BulkResult) httptransport.BulkApproveResponse {
	response := httptransport.BulkApproveResponse{
		Succeeded: append([]string{}, result.Succeeded...),
		Failed:    make([]httptransport.BulkFailureDTO, 0, len(result.Failed)),
	}
	for _, failure := range result.Failed {
		response.Failed = append(response.Failed, httptransport.BulkFailureDTO{
			ID:     failure.ID,
			Reason: failure.Reason,
		})
	}
	return response
}

func mapActions(actions []entities.Action) []string {
	result := make([]string, 0, len(actions))
	for _, action := range actions {
		result = append(result, string(action))
	}
	return result
}

func mapValue(value entities.Value) httptransport.ValueDTO {
	return httptransport.ValueDTO{
		Text:    value.Text,
		Items:   append([]string(nil), value.Items...),
		Display: value.Display,
	}
}

func mapValueDTO(value httptransport.ValueDTO) entities.Value {
	return entities.Value{
		Text:    value.Text,
		Items:   append([]string(nil), value.Items...),
		Display: value.Display,
	}
}

func mapFieldValueDTOs(values []httptransport.FieldValueDTO) []entities.FieldValue {
	result := make([]entities.FieldValue, 0, len(values))
	for _, value := range values {
		result = append(result, entities.FieldValue{
			Key:   value.Key,
			Value: mapValueDTO(value.Value),
		})
	}
	return result
}

func (h Handler) logDebug(message string, err error) {
	application.ResolveLogger(h.Logger).Debug(message,
		"event", "review_transport_debug",
		"module", "listing-moderation/review-service",
		"layer", "transport",
		"error", err.Error(),
	)
}
