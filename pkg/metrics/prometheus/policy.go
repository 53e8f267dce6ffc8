package prometheus

import (
	"time"

	"github.com/marmos91/oakd/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type policyMetrics struct {
	outcomes        *prometheus.CounterVec
	shapedDuration  *prometheus.HistogramVec
	preShapedLength prometheus.Histogram
}

func newPolicyMetrics() metrics.PolicyMetrics {
	reg := metrics.GetRegistry()
	return &policyMetrics{
		outcomes: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "oakd_policy_shaped_responses_total",
				Help: "Total shaped responses by final status",
			},
			[]string{"status"},
		),
		shapedDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "oakd_policy_shaped_duration_milliseconds",
				Help:    "Wall time the Shaper spent before emitting a response, by status",
				Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 5000},
			},
			[]string{"status"},
		),
		preShapedLength: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "oakd_policy_pre_shaped_response_bytes",
				Help:    "Shaped response Length field: the body length before padding, after any size-violation replacement",
				Buckets: prometheus.ExponentialBuckets(8, 4, 10),
			},
		),
	}
}

func (p *policyMetrics) ObserveShaped(status string, elapsed time.Duration, preShapedLength int) {
	p.outcomes.WithLabelValues(status).Inc()
	p.shapedDuration.WithLabelValues(status).Observe(float64(elapsed.Milliseconds()))
	p.preShapedLength.Observe(float64(preShapedLength))
}

func init() {
	metrics.RegisterPolicyMetricsConstructor(newPolicyMetrics)
}
