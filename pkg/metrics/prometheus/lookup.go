package prometheus

import (
	"github.com/marmos91/oakd/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type lookupMetrics struct {
	updates         *prometheus.CounterVec
	updateEntries   prometheus.Histogram
	snapshotHandout prometheus.Counter
}

func newLookupMetrics() metrics.LookupMetrics {
	reg := metrics.GetRegistry()
	return &lookupMetrics{
		updates: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "oakd_lookup_updates_total",
				Help: "Total UpdateData calls by result",
			},
			[]string{"result"},
		),
		updateEntries: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "oakd_lookup_update_entries",
				Help:    "Number of entries in each non-empty lookup data update, finished or aborted",
				Buckets: prometheus.ExponentialBuckets(16, 8, 8),
			},
		),
		snapshotHandout: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "oakd_lookup_snapshot_handouts_total",
				Help: "Total CreateLookupData calls",
			},
		),
	}
}

func (l *lookupMetrics) ObserveUpdate(result string, entries int) {
	l.updates.WithLabelValues(result).Inc()
	if entries > 0 {
		l.updateEntries.Observe(float64(entries))
	}
}

func (l *lookupMetrics) ObserveSnapshotHandout() {
	l.snapshotHandout.Inc()
}

func init() {
	metrics.RegisterLookupMetricsConstructor(newLookupMetrics)
}
