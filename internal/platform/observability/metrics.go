package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DecisionMetrics counts review decisions by operation and outcome.
type DecisionMetrics struct {
	decisions *prometheus.CounterVec
	gatherer  prometheus.Gatherer
}

func NewDecisionMetrics(registry *prometheus.Registry) *DecisionMetrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	factory := promauto.With(registry)
	return &DecisionMetrics{
		decisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "reviewdesk",
				Name:      "review_decisions_total",
				Help:      "Review decisions processed, by operation and outcome.",
			},
			[]string{"operation", "outcome"},
		),
		gatherer: registry,
	}
}

func (m *DecisionMetrics) ObserveDecision(operation string, outcome string) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(operation, outcome).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *DecisionMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
