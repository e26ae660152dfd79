// Package metrics exposes Prometheus instrumentation for the engine.
package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "polycontent"

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeDropped = "dropped"
	OutcomeHit     = "hit"
	OutcomeMiss    = "miss"
)

// Metrics holds the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	OperationsTotal   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	VersionsAppended  *prometheus.CounterVec
	ResolutionsTotal  *prometheus.CounterVec
	OverlaysApplied   *prometheus.CounterVec
	EventsTotal       *prometheus.CounterVec
	ValidationErrors  *prometheus.CounterVec
}

// New registers the collectors on reg. Passing a dedicated registry keeps
// tests and embedded uses away from the global default registry.
func New(reg prometheus.Registerer, namespace string) *Metrics {
	namespace = strings.TrimSpace(namespace)
	if namespace == "" {
		namespace = DefaultNamespace
	}
	factory := promauto.With(reg)

	return &Metrics{
		OperationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Service operations by name and outcome.",
		}, []string{"operation", "outcome"}),
		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of service operations in seconds.",
			Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),
		VersionsAppended: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "versions_appended_total",
			Help:      "Ledger entries appended by entity type.",
		}, []string{"entity_type"}),
		ResolutionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolutions_total",
			Help:      "Resolution requests by result.",
		}, []string{"result"}),
		OverlaysApplied: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "overlays_applied_total",
			Help:      "Overlay layers merged during resolution.",
		}, []string{"layer"}),
		EventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Lifecycle events by name and delivery outcome.",
		}, []string{"event", "outcome"}),
		ValidationErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_failures_total",
			Help:      "Rejected writes due to field validation, by content type.",
		}, []string{"content_type"}),
	}
}

// ObserveOperation records the outcome and duration of a service operation.
func (m *Metrics) ObserveOperation(operation string, started time.Time, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	m.OperationsTotal.WithLabelValues(operation, outcome).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

func (m *Metrics) VersionAppended(entityType string) {
	if m == nil {
		return
	}
	m.VersionsAppended.WithLabelValues(entityType).Inc()
}

func (m *Metrics) ValidationFailed(contentTypeID string) {
	if m == nil {
		return
	}
	m.ValidationErrors.WithLabelValues(contentTypeID).Inc()
}

// Resolved records a resolution and the overlay layers it applied.
func (m *Metrics) Resolved(found bool, layers ...string) {
	if m == nil {
		return
	}
	if !found {
		m.ResolutionsTotal.WithLabelValues(OutcomeMiss).Inc()
		return
	}
	m.ResolutionsTotal.WithLabelValues(OutcomeHit).Inc()
	for _, layer := range layers {
		m.OverlaysApplied.WithLabelValues(layer).Inc()
	}
}

// ObserveEvent records an event delivery outcome.
func (m *Metrics) ObserveEvent(name, outcome string) {
	if m == nil {
		return
	}
	m.EventsTotal.WithLabelValues(name, outcome).Inc()
}
