package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveDecisionCountsPerLabel(t *testing.T) {
	metrics := NewDecisionMetrics(prometheus.NewRegistry())

	metrics.ObserveDecision("approve_field", "succeeded")
	metrics.ObserveDecision("approve_field", "succeeded")
	metrics.ObserveDecision("approve_field", "persistence_failed")

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.decisions.WithLabelValues("approve_field", "succeeded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.decisions.WithLabelValues("approve_field", "persistence_failed")))
}

func TestHandlerExposesCounters(t *testing.T) {
	metrics := NewDecisionMetrics(nil)
	metrics.ObserveDecision("bulk_approve_submissions", "succeeded")

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `reviewdesk_review_decisions_total{operation="bulk_approve_submissions",outcome="succeeded"} 1`)
}

func TestNilMetricsIgnoresObservations(t *testing.T) {
	var metrics *DecisionMetrics
	assert.NotPanics(t, func() { metrics.ObserveDecision("save", "succeeded") })
}
