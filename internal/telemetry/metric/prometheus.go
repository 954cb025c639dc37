// Package metric provides Prometheus metrics for Trainly clients.
package metric

import (
	"io"
	"net/http"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"
)

const namespace = "trainly"

// Outcome labels for session operations.
const (
	OutcomeSuccess    = "success"
	OutcomeFailure    = "failure"
	OutcomeNoop       = "noop"
	OutcomeSuperseded = "superseded"
)

// Registry holds all client metrics.
type Registry struct {
	registry *prometheus.Registry

	sessionOps       *prometheus.CounterVec
	identityRequests *prometheus.CounterVec
	identityDuration *prometheus.HistogramVec
	tokenStoreErrors *prometheus.CounterVec
}

// NewRegistry creates a new metrics registry.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
		sessionOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "operations_total",
			Help:      "Session manager operations by outcome.",
		}, []string{"op", "outcome"}),
		identityRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "identity",
			Name:      "requests_total",
			Help:      "Identity service requests by endpoint and status.",
		}, []string{"endpoint", "status"}),
		identityDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "identity",
			Name:      "request_duration_seconds",
			Help:      "Identity service request latency.",
			Buckets:   []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"endpoint"}),
		tokenStoreErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "token_store",
			Name:      "errors_total",
			Help:      "Token store backend failures that were degraded to absent/no-op.",
		}, []string{"backend", "op"}),
	}

	r.registry.MustRegister(
		r.sessionOps,
		r.identityRequests,
		r.identityDuration,
		r.tokenStoreErrors,
	)

	return r
}

// Register adds an extra collector (e.g. a SessionCollector) to the registry.
func (r *Registry) Register(c prometheus.Collector) error {
	return r.registry.Register(c)
}

// RecordSessionOp counts a session manager operation.
func (r *Registry) RecordSessionOp(op, outcome string) {
	if r == nil {
		return
	}
	r.sessionOps.WithLabelValues(op, outcome).Inc()
}

// ObserveIdentityRequest records one identity service round trip.
// status is the HTTP status code as text, or "error" for transport failures.
func (r *Registry) ObserveIdentityRequest(endpoint, status string, seconds float64) {
	if r == nil {
		return
	}
	r.identityRequests.WithLabelValues(endpoint, status).Inc()
	r.identityDuration.WithLabelValues(endpoint).Observe(seconds)
}

// RecordTokenStoreError counts a degraded token store failure.
func (r *Registry) RecordTokenStoreError(backend, op string) {
	if r == nil {
		return
	}
	r.tokenStoreErrors.WithLabelValues(backend, op).Inc()
}

// Handler returns an HTTP handler serving this registry.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// WriteText writes every metric family in text exposition format, sorted
// by name.
func (r *Registry) WriteText(w io.Writer) error {
	families, err := r.registry.Gather()
	if err != nil {
		return err
	}
	sort.Slice(families, func(i, j int) bool {
		return families[i].GetName() < families[j].GetName()
	})
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
