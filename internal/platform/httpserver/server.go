package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	reviewservice "reviewdesk/contexts/listing-moderation/review-service"
	domainerrors "reviewdesk/contexts/listing-moderation/review-service/domain/errors"
	reviewhttp "reviewdesk/contexts/listing-moderation/review-service/transport/http"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "reviewdesk/internal/platform/httpserver/docs"
)

type Server struct {
	mux     *http.ServeMux
	server  *http.Server
	logger  *slog.Logger
	addr    string
	review  reviewservice.Module
	metrics http.Handler
}

func New(review reviewservice.Module, metrics http.Handler, logger *slog.Logger, addr string) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:     http.NewServeMux(),
		logger:  logger,
		addr:    addr,
		review:  review,
		metrics: metrics,
	}
	s.registerRoutes()
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	if s.metrics != nil {
		s.mux.Handle("GET /metrics", s.metrics)
	}

	s.mux.HandleFunc("GET /api/review/v1/submissions", s.handleListSubmissions)
	s.mux.HandleFunc("GET /api/review/v1/submissions/{submission_id}", s.handleGetSubmission)
	s.mux.HandleFunc("POST /api/review/v1/submissions/{submission_id}/fields/{field_key}/approve", s.handleApproveField)
	s.mux.HandleFunc("POST /api/review/v1/submissions/{submission_id}/fields/{field_key}/decline", s.handleDeclineField)
	s.mux.HandleFunc("POST /api/review/v1/submissions/{submission_id}/videos/{video_id}/approve", s.handleApproveVideo)
	s.mux.HandleFunc("POST /api/review/v1/submissions/{submission_id}/videos/{video_id}/decline", s.handleDeclineVideo)
	s.mux.HandleFunc("POST /api/review/v1/submissions/{submission_id}/resubmit", s.handleResubmit)
	s.mux.HandleFunc("POST /api/review/v1/submissions/{submission_id}/feedback", s.handleSendFeedback)
	s.mux.HandleFunc("POST /api/review/v1/submissions/{submission_id}/save", s.handleSaveSubmission)
	s.mux.HandleFunc("POST /api/review/v1/submissions/bulk-approve", s.handleBulkApproveSubmissions)

	s.mux.HandleFunc("GET /api/review/v1/change-sets", s.handleListChangeSets)
	s.mux.HandleFunc("POST /api/review/v1/change-sets", s.handleCreateChangeSet)
	s.mux.HandleFunc("GET /api/review/v1/change-sets/{change_set_id}/diff", s.handleDiffView)
	s.mux.HandleFunc("POST /api/review/v1/change-sets/{change_set_id}/approve", s.handleApproveChangeSet)
	s.mux.HandleFunc("POST /api/review/v1/change-sets/{change_set_id}/reject", s.handleRejectChangeSet)
	s.mux.HandleFunc("POST /api/review/v1/change-sets/bulk-approve", s.handleBulkApproveChangeSets)
}

func (s *Server) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	resp, err := s.review.Handler.ListSubmissionsHandler(
		r.Context(),
		query.Get("entity_type"),
		query.Get("composite_status"),
		query.Get("submitted_by"),
	)
	if err != nil {
		writeReviewDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetSubmission(w http.ResponseWriter, r *http.Request) {
	resp, err := s.review.Handler.GetSubmissionHandler(r.Context(), r.PathValue("submission_id"))
	if err != nil {
		writeReviewDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleApproveField(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	resp, err := s.review.Handler.ApproveFieldHandler(r.Context(), userID, r.PathValue("submission_id"), r.PathValue("field_key"))
	if err != nil {
		writeReviewDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeclineField(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	resp, err := s.review.Handler.DeclineFieldHandler(r.Context(), userID, r.PathValue("submission_id"), r.PathValue("field_key"))
	if err != nil {
		writeReviewDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleApproveVideo(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	resp, err := s.review.Handler.ApproveVideoHandler(r.Context(), userID, r.PathValue("submission_id"), r.PathValue("video_id"))
	if err != nil {
		writeReviewDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeclineVideo(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	resp, err := s.review.Handler.DeclineVideoHandler(r.Context(), userID, r.PathValue("submission_id"), r.PathValue("video_id"))
	if err != nil {
		writeReviewDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleResubmit(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req reviewhttp.ResubmitRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}
	resp, err := s.review.Handler.ResubmitHandler(r.Context(), userID, r.PathValue("submission_id"), req)
	if err != nil {
		writeReviewDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSendFeedback(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req reviewhttp.FeedbackRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}
	resp, err := s.review.Handler.SendFeedbackHandler(r.Context(), userID, r.PathValue("submission_id"), req)
	if err != nil {
		writeReviewDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSaveSubmission(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	resp, err := s.review.Handler.SaveSubmissionHandler(r.Context(), userID, r.PathValue("submission_id"))
	if err != nil {
		writeReviewDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBulkApproveSubmissions(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req reviewhttp.BulkApproveRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}
	resp, err := s.review.Handler.BulkApproveSubmissionsHandler(r.Context(), userID, r.Header.Get("Idempotency-Key"), req)
	if err != nil {
		writeReviewDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListChangeSets(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	resp, err := s.review.Handler.ListChangeSetsHandler(r.Context(), query.Get("status"), query.Get("target_entity_id"))
	if err != nil {
		writeReviewDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateChangeSet(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req reviewhttp.CreateChangeSetRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}
	resp, err := s.review.Handler.CreateChangeSetHandler(r.Context(), userID, req)
	if err != nil {
		writeReviewDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleDiffView(w http.ResponseWriter, r *http.Request) {
	resp, err := s.review.Handler.DiffViewHandler(r.Context(), r.PathValue("change_set_id"))
	if err != nil {
		writeReviewDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleApproveChangeSet(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req reviewhttp.ReviewChangeSetRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	resp, err := s.review.Handler.ApproveChangeSetHandler(r.Context(), userID, r.PathValue("change_set_id"), req)
	if err != nil {
		writeReviewDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRejectChangeSet(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req reviewhttp.ReviewChangeSetRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	resp, err := s.review.Handler.RejectChangeSetHandler(r.Context(), userID, r.PathValue("change_set_id"), req)
	if err != nil {
		writeReviewDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBulkApproveChangeSets(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req reviewhttp.BulkApproveRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}
	resp, err := s.review.Handler.BulkApproveChangeSetsHandler(r.Context(), userID, r.Header.Get("Idempotency-Key"), req)
	if err != nil {
		writeReviewDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if userID == "" {
		writeReviewError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return "", false
	}
	return userID, true
}

// decodeJSON reports whether the handler may continue. An empty body is
// accepted when required is false.
func decodeJSON(w http.ResponseWriter, r *http.Request, target any, required bool) bool {
	err := json.NewDecoder(r.Body).Decode(target)
	if err == nil || (!required && errors.Is(err, io.EOF)) {
		return true
	}
	writeReviewError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
	return false
}

func writeReviewDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domainerrors.ErrIdempotencyConflict):
		writeReviewError(w, http.StatusConflict, "idempotency_conflict", err.Error())
	case errors.Is(err, domainerrors.ErrUnauthorizedActor):
		writeReviewError(w, http.StatusUnauthorized, "unauthorized_actor", err.Error())
	case errors.Is(err, domainerrors.ErrStaleEntity):
		writeReviewError(w, http.StatusNotFound, "stale_entity", err.Error())
	case errors.Is(err, domainerrors.ErrNotFound):
		writeReviewError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domainerrors.ErrInvalidState):
		writeReviewError(w, http.StatusConflict, "invalid_state", err.Error())
	case errors.Is(err, domainerrors.ErrInvalidInput):
		writeReviewError(w, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, domainerrors.ErrPersistence):
		writeReviewError(w, http.StatusBadGateway, "persistence_failed", err.Error())
	case errors.Is(err, domainerrors.ErrDependencyMissing):
		writeReviewError(w, http.StatusServiceUnavailable, "dependency_missing", err.Error())
	default:
		writeReviewError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeReviewError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, reviewhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
