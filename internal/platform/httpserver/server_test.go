package httpserver

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	reviewservice "reviewdesk/contexts/listing-moderation/review-service"
	"reviewdesk/contexts/listing-moderation/review-service/domain/entities"
	reviewhttp "reviewdesk/contexts/listing-moderation/review-service/transport/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedSubmission(t *testing.T, id string) entities.Submission {
	t.Helper()
	item, err := entities.NewSubmission(entities.Submission{
		ID:         id,
		EntityType: entities.EntityTypeLocation,
		Title:      "Harbor Noodle Bar",
		Fields: []entities.ReviewableField{
			{Key: entities.FieldKeyAddress, Value: entities.Value{Text: "place-123", Display: "12 Harbor St"}, Required: true},
			{Key: entities.FieldKeyMenu, Value: entities.TextValue("https://example.com/menu.pdf"), Required: true},
		},
		Videos: []entities.VideoItem{
			{ID: "v1", URL: "https://cdn.example.com/v1.mp4", Tags: []string{"food"}},
		},
		SubmittedBy: "owner-1",
		SubmittedAt: time.Date(2026, 5, 4, 11, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return item
}

func newTestServer(t *testing.T, seed ...entities.Submission) (*Server, reviewservice.Module) {
	t.Helper()
	module := reviewservice.NewInMemoryModule(seed, nil, nil)
	return New(module, nil, nil, ""), module
}

func doRequest(t *testing.T, handler http.Handler, method string, path string, body any, userID string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if userID != "" {
		req.Header.Set("X-User-Id", userID)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestReviewRoutesDeclineAndFeedback(t *testing.T) {
	server, _ := newTestServer(t, seedSubmission(t, "S1"))
	handler := server.Handler()

	rec := doRequest(t, handler, http.MethodPost, "/api/review/v1/submissions/S1/fields/menu/decline", nil, "rev-1")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var decision reviewhttp.DecisionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decision))
	assert.Equal(t, "declined", decision.Submission.CompositeStatus)
	assert.Equal(t, []string{"send_feedback"}, decision.Submission.EnabledActions)

	rec = doRequest(t, handler, http.MethodPost, "/api/review/v1/submissions/S1/feedback", reviewhttp.FeedbackRequest{Comment: "broken link"}, "rev-1")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doRequest(t, handler, http.MethodGet, "/api/review/v1/submissions/S1", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got reviewhttp.GetSubmissionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "broken link", got.Submission.FeedbackComment)
	assert.Equal(t, []string{"resubmit"}, got.Submission.SubmitterActions)
}

func TestReviewRoutesRequireUserHeader(t *testing.T) {
	server, _ := newTestServer(t, seedSubmission(t, "S1"))

	rec := doRequest(t, server.Handler(), http.MethodPost, "/api/review/v1/submissions/S1/fields/menu/approve", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestReviewRoutesMapDomainErrors(t *testing.T) {
	server, module := newTestServer(t, seedSubmission(t, "S1"))
	handler := server.Handler()

	rec := doRequest(t, handler, http.MethodGet, "/api/review/v1/submissions/missing", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, handler, http.MethodPost, "/api/review/v1/submissions/S1/save", nil, "rev-1")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doRequest(t, handler, http.MethodPost, "/api/review/v1/submissions/S1/feedback", reviewhttp.FeedbackRequest{}, "rev-1")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doRequest(t, handler, http.MethodPost, "/api/review/v1/submissions/S1/fields/menu/decline", nil, "rev-1")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = doRequest(t, handler, http.MethodPost, "/api/review/v1/submissions/S1/feedback", reviewhttp.FeedbackRequest{}, "rev-1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	module.Store.FailPersistenceFor("S1", errors.New("listing api unavailable"))
	rec = doRequest(t, handler, http.MethodPost, "/api/review/v1/submissions/S1/videos/v1/approve", nil, "rev-1")
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	var body reviewhttp.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "persistence_failed", body.Code)
}

func TestBulkApproveRouteReportsPartialFailure(t *testing.T) {
	server, module := newTestServer(t, seedSubmission(t, "a"), seedSubmission(t, "b"), seedSubmission(t, "c"))
	module.Store.FailPersistenceFor("b", errors.New("listing api unavailable"))

	rec := doRequest(t, server.Handler(), http.MethodPost, "/api/review/v1/submissions/bulk-approve", reviewhttp.BulkApproveRequest{IDs: []string{"a", "b", "c"}}, "rev-1")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp reviewhttp.BulkApproveResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"a", "c"}, resp.Succeeded)
	require.Len(t, resp.Failed, 1)
	assert.Equal(t, "b", resp.Failed[0].ID)
}

func TestChangeSetRoutes(t *testing.T) {
	server, _ := newTestServer(t)
	handler := server.Handler()

	rec := doRequest(t, handler, http.MethodPost, "/api/review/v1/change-sets", reviewhttp.CreateChangeSetRequest{
		TargetEntityID: "loc-9",
		Live:           []reviewhttp.FieldValueDTO{{Key: "name", Value: reviewhttp.ValueDTO{Text: "Old"}}},
		Proposed:       []reviewhttp.FieldValueDTO{{Key: "name", Value: reviewhttp.ValueDTO{Text: "New"}}},
	}, "owner-1")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created reviewhttp.ChangeSetResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	changeSetID := created.ChangeSet.ChangeSetID
	require.NotEmpty(t, changeSetID)

	rec = doRequest(t, handler, http.MethodGet, "/api/review/v1/change-sets/"+changeSetID+"/diff", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var diff reviewhttp.DiffViewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &diff))
	require.Len(t, diff.Changes, 1)
	assert.Equal(t, "update", diff.Changes[0].ChangeType)

	rec = doRequest(t, handler, http.MethodPost, "/api/review/v1/change-sets/"+changeSetID+"/approve", nil, "rev-1")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doRequest(t, handler, http.MethodPost, "/api/review/v1/change-sets/"+changeSetID+"/reject", reviewhttp.ReviewChangeSetRequest{Notes: "late"}, "rev-2")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doRequest(t, handler, http.MethodGet, "/api/review/v1/change-sets", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var pending reviewhttp.ListChangeSetsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pending))
	assert.Empty(t, pending.Items)
}
