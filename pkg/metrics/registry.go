// Package metrics defines the metrics surfaces the runtime's components
// emit against (PolicyMetrics, LookupMetrics, ChannelMetrics) and an
// enable/disable gate consulted by every constructor. It imports the
// Prometheus client only for the shared *prometheus.Registry; the metric
// implementations live in pkg/metrics/prometheus, which registers its
// constructors here, the same
// indirection the teacher's pkg/metrics/pkg/metrics/prometheus split uses to
// avoid a cycle between the interface package and its backing
// implementation.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	mu       sync.Mutex
	enabled  bool
	registry *prometheus.Registry
)

// InitRegistry enables metrics collection and creates the Prometheus
// registry every constructor in this package registers against. Call once
// at process startup when Config.Metrics.Enabled is true.
func InitRegistry() *prometheus.Registry {
	mu.Lock()
	defer mu.Unlock()
	registry = prometheus.NewRegistry()
	enabled = true
	return registry
}

// IsEnabled reports whether InitRegistry has been called.
func IsEnabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

// GetRegistry returns the active registry, or nil if metrics are disabled.
func GetRegistry() *prometheus.Registry {
	mu.Lock()
	defer mu.Unlock()
	return registry
}
