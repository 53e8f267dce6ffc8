package prometheus

import (
	"github.com/marmos91/oakd/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type channelMetrics struct {
	sends *prometheus.CounterVec
	recvs *prometheus.CounterVec
}

func newChannelMetrics() metrics.ChannelMetrics {
	reg := metrics.GetRegistry()
	return &channelMetrics{
		sends: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "oakd_channel_sends_total",
				Help: "Total Endpoint.Send calls by outcome",
			},
			[]string{"outcome"},
		),
		recvs: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "oakd_channel_recvs_total",
				Help: "Total Endpoint.TryRecv calls by outcome",
			},
			[]string{"outcome"},
		),
	}
}

func (c *channelMetrics) ObserveSend(outcome string) {
	c.sends.WithLabelValues(outcome).Inc()
}

func (c *channelMetrics) ObserveRecv(outcome string) {
	c.recvs.WithLabelValues(outcome).Inc()
}

func init() {
	metrics.RegisterChannelMetricsConstructor(newChannelMetrics)
}
