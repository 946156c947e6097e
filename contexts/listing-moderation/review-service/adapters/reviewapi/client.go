package reviewapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"reviewdesk/contexts/listing-moderation/review-service/domain/entities"
	domainerrors "reviewdesk/contexts/listing-moderation/review-service/domain/errors"
	"reviewdesk/contexts/listing-moderation/review-service/ports"

	"github.com/sony/gobreaker"
)

type Config struct {
	BaseURL          string
	Timeout          time.Duration
	BreakerFailures  uint32
	BreakerOpenDelay time.Duration
}

// Client talks to the external listing API. Calls go through a circuit
// breaker so a failing upstream is not hammered by bulk runs.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     *slog.Logger
}

type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("review api %s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

func NewClient(cfg Config, httpClient *http.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}
	openDelay := cfg.BreakerOpenDelay
	if openDelay <= 0 {
		openDelay = 30 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "review-api",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     openDelay,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var statusErr *StatusError
			return errors.As(err, &statusErr) && statusErr.StatusCode < http.StatusInternalServerError
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("review api circuit breaker state changed",
				"event", "review_api_breaker_state_changed",
				"module", "listing-moderation/review-service",
				"layer", "adapter",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})

	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		httpClient: httpClient,
		breaker:    breaker,
		logger:     logger,
	}
}

func (c *Client) FetchPendingSubmissions(ctx context.Context) ([]entities.Submission, error) {
	var response pendingSubmissionsResponse
	if err := c.do(ctx, http.MethodGet, "/submissions/pending", nil, &response); err != nil {
		return nil, err
	}

	items := make([]entities.Submission, 0, len(response.Items))
	for _, record := range response.Items {
		item, err := record.toEntity()
		if err != nil {
			c.logger.Warn("skipping malformed pending submission",
				"event", "review_api_submission_rejected",
				"module", "listing-moderation/review-service",
				"layer", "adapter",
				"submission_id", record.ID,
				"error", err.Error(),
			)
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func (c *Client) PersistFieldDecision(ctx context.Context, submissionID string, fieldKey string, status entities.ItemStatus) error {
	path := "/submissions/" + url.PathEscape(submissionID) + "/fields/" + url.PathEscape(fieldKey) + "/status"
	return c.do(ctx, http.MethodPost, path, statusRequest{Status: string(status)}, nil)
}

func (c *Client) PersistVideoDecision(ctx context.Context, submissionID string, videoID string, status entities.ItemStatus) error {
	path := "/submissions/" + url.PathEscape(submissionID) + "/videos/" + url.PathEscape(videoID) + "/status"
	return c.do(ctx, http.MethodPost, path, statusRequest{Status: string(status)}, nil)
}

func (c *Client) PersistResubmission(ctx context.Context, submissionID string, payload ports.ResubmissionPayload) error {
	path := "/submissions/" + url.PathEscape(submissionID) + "/resubmission"
	return c.do(ctx, http.MethodPost, path, resubmissionRequestFromPayload(payload), nil)
}

func (c *Client) PersistChangeDecision(
	ctx context.Context,
	changeSetID string,
	reviewerID string,
	status entities.ChangeSetStatus,
	notes string,
) error {
	path := "/change-sets/" + url.PathEscape(changeSetID) + "/decision"
	return c.do(ctx, http.MethodPost, path, changeDecisionRequest{
		ReviewerID: reviewerID,
		Status:     string(status),
		Notes:      notes,
	}, nil)
}

func (c *Client) NotifyFeedback(ctx context.Context, submissionID string, comment string) error {
	path := "/submissions/" + url.PathEscape(submissionID) + "/feedback"
	return c.do(ctx, http.MethodPost, path, feedbackRequest{Comment: comment}, nil)
}

func (c *Client) ActivateSubmission(ctx context.Context, submissionID string) error {
	path := "/submissions/" + url.PathEscape(submissionID) + "/activate"
	return c.do(ctx, http.MethodPost, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method string, path string, body any, out any) error {
	if c.baseURL == "" {
		return domainerrors.ErrDependencyMissing
	}
	var payload []byte
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		payload = encoded
	}

	_, err := c.breaker.Execute(func() (interface{}, error) {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return nil, &StatusError{
				Method:     method,
				Path:       path,
				StatusCode: resp.StatusCode,
				Body:       strings.TrimSpace(string(snippet)),
			}
		}
		if out == nil {
			return nil, nil
		}
		return nil, json.NewDecoder(resp.Body).Decode(out)
	})
	return err
}
