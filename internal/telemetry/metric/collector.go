// Package metric provides Prometheus metrics for Trainly clients.
package metric

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/trainly-go/internal/core/domain"
)

// StateSource exposes the current session snapshot.
type StateSource interface {
	State() domain.SessionState
}

// SessionCollector reports the session state at scrape time.
type SessionCollector struct {
	source        StateSource
	initialized   *prometheus.Desc
	authenticated *prometheus.Desc
	loading       *prometheus.Desc
}

// NewSessionCollector creates a collector reading from source.
func NewSessionCollector(source StateSource) *SessionCollector {
	return &SessionCollector{
		source: source,
		initialized: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "session", "initialized"),
			"1 once startup reconciliation has completed.", nil, nil),
		authenticated: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "session", "authenticated"),
			"1 while a resolved identity is present.", nil, nil),
		loading: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "session", "loading"),
			"1 while a session operation is in flight.", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *SessionCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.initialized
	ch <- c.authenticated
	ch <- c.loading
}

// Collect implements prometheus.Collector.
func (c *SessionCollector) Collect(ch chan<- prometheus.Metric) {
	st := c.source.State()
	ch <- prometheus.MustNewConstMetric(c.initialized, prometheus.GaugeValue, boolValue(st.IsInitialized))
	ch <- prometheus.MustNewConstMetric(c.authenticated, prometheus.GaugeValue, boolValue(st.IsAuthenticated()))
	ch <- prometheus.MustNewConstMetric(c.loading, prometheus.GaugeValue, boolValue(st.IsLoading))
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
