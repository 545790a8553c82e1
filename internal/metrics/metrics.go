// Package metrics provides the registry-gate used by the NVMe-oF
// target core's metrics: a process-wide Prometheus registry that
// per-component metrics constructors check before allocating any
// collector, so the target runs at zero metrics overhead until
// InitRegistry is called.
//
// Grounded on the teacher's pkg/metrics registry-gate pattern
// (IsEnabled/GetRegistry, nil-safe constructors returning typed nils
// that no-op on every Record call).
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	registry *prometheus.Registry
	enabled  bool
)

// InitRegistry creates the process-wide Prometheus registry and marks
// metrics as enabled. Must be called before any NewXMetrics
// constructor for that constructor to allocate real collectors.
func InitRegistry() *prometheus.Registry {
	registry = prometheus.NewRegistry()
	enabled = true
	return registry
}

// IsEnabled reports whether InitRegistry has been called.
func IsEnabled() bool {
	return enabled
}

// GetRegistry returns the process-wide registry, or nil if metrics are
// not enabled.
func GetRegistry() *prometheus.Registry {
	return registry
}
