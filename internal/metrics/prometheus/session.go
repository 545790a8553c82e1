// Package prometheus implements the target core's Prometheus
// collectors: session/connect/poll counters and gauges gated behind
// metrics.IsEnabled(), grounded on the teacher's
// pkg/metrics/prometheus/badger.go shape (promauto.With(reg), nil-safe
// Record methods).
package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/liujun01203/spdk/internal/metrics"
)

// SessionMetrics tracks Connect admission outcomes, live session/
// connection counts, and poll-driven evictions.
type SessionMetrics struct {
	connectsTotal    *prometheus.CounterVec
	sessionsActive   prometheus.Gauge
	connectionsActive prometheus.Gauge
	evictionsTotal   prometheus.Counter
	propertySetTotal *prometheus.CounterVec
}

// NewSessionMetrics creates the session collectors, or returns nil if
// metrics.InitRegistry has not been called -- every method on a nil
// *SessionMetrics is a no-op, so callers never need to branch on
// whether metrics are enabled.
func NewSessionMetrics() *SessionMetrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &SessionMetrics{
		connectsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "nvmf_connects_total",
				Help: "Total Fabrics Connect requests by queue type and outcome",
			},
			[]string{"queue_type", "outcome"}, // queue_type: admin|io, outcome: success|error
		),
		sessionsActive: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "nvmf_sessions_active",
				Help: "Number of currently live sessions",
			},
		),
		connectionsActive: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "nvmf_connections_active",
				Help: "Number of currently bound connections across all sessions",
			},
		),
		evictionsTotal: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "nvmf_poll_evictions_total",
				Help: "Total connections evicted by the poll driver due to transport failure",
			},
		),
		propertySetTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "nvmf_property_set_total",
				Help: "Total Property-Set requests by register and outcome",
			},
			[]string{"register", "outcome"},
		),
	}
}

// RecordConnect records a Connect outcome for the given queue type.
func (m *SessionMetrics) RecordConnect(queueType string, success bool) {
	if m == nil {
		return
	}
	outcome := "success"
	if !success {
		outcome = "error"
	}
	m.connectsTotal.WithLabelValues(queueType, outcome).Inc()
}

// SetSessionsActive sets the current live session count.
func (m *SessionMetrics) SetSessionsActive(n int) {
	if m == nil {
		return
	}
	m.sessionsActive.Set(float64(n))
}

// SetConnectionsActive sets the current bound connection count.
func (m *SessionMetrics) SetConnectionsActive(n int) {
	if m == nil {
		return
	}
	m.connectionsActive.Set(float64(n))
}

// RecordEviction records one poll-driven connection eviction.
func (m *SessionMetrics) RecordEviction() {
	if m == nil {
		return
	}
	m.evictionsTotal.Inc()
}

// RecordPropertySet records a Property-Set outcome for a register.
func (m *SessionMetrics) RecordPropertySet(register string, success bool) {
	if m == nil {
		return
	}
	outcome := "success"
	if !success {
		outcome = "error"
	}
	m.propertySetTotal.WithLabelValues(register, outcome).Inc()
}
