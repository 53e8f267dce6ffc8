package metrics

// newPrometheusPolicyMetrics, newPrometheusLookupMetrics and
// newPrometheusChannelMetrics are populated by pkg/metrics/prometheus's
// init(), via the Register*Constructor calls below. The indirection keeps
// the metric implementations out of this package while still handing
// callers a concrete implementation when metrics are enabled.
var (
	newPrometheusPolicyMetrics  func() PolicyMetrics
	newPrometheusLookupMetrics  func() LookupMetrics
	newPrometheusChannelMetrics func() ChannelMetrics
)

// RegisterPolicyMetricsConstructor is called by pkg/metrics/prometheus's
// init() to install the Prometheus-backed PolicyMetrics constructor.
func RegisterPolicyMetricsConstructor(constructor func() PolicyMetrics) {
	newPrometheusPolicyMetrics = constructor
}

// RegisterLookupMetricsConstructor is called by pkg/metrics/prometheus's
// init() to install the Prometheus-backed LookupMetrics constructor.
func RegisterLookupMetricsConstructor(constructor func() LookupMetrics) {
	newPrometheusLookupMetrics = constructor
}

// RegisterChannelMetricsConstructor is called by pkg/metrics/prometheus's
// init() to install the Prometheus-backed ChannelMetrics constructor.
func RegisterChannelMetricsConstructor(constructor func() ChannelMetrics) {
	newPrometheusChannelMetrics = constructor
}

// NewPolicyMetrics returns a Prometheus-backed PolicyMetrics, or nil when
// metrics are disabled. Every caller that accepts a PolicyMetrics is
// required to treat nil as "collect nothing."
func NewPolicyMetrics() PolicyMetrics {
	if !IsEnabled() || newPrometheusPolicyMetrics == nil {
		return nil
	}
	return newPrometheusPolicyMetrics()
}

// NewLookupMetrics returns a Prometheus-backed LookupMetrics, or nil when
// metrics are disabled.
func NewLookupMetrics() LookupMetrics {
	if !IsEnabled() || newPrometheusLookupMetrics == nil {
		return nil
	}
	return newPrometheusLookupMetrics()
}

// NewChannelMetrics returns a Prometheus-backed ChannelMetrics, or nil when
// metrics are disabled.
func NewChannelMetrics() ChannelMetrics {
	if !IsEnabled() || newPrometheusChannelMetrics == nil {
		return nil
	}
	return newPrometheusChannelMetrics()
}
