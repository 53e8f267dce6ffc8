package config

import (
	"strings"
	"time"
)

// ApplyDefaults fills unspecified fields with sensible defaults. Explicit
// values are preserved; zero values are replaced.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyMetricsDefaults(&cfg.Metrics)
	applyPolicyDefaults(&cfg.Policy)

	if cfg.HTTPListenPort == 0 {
		cfg.HTTPListenPort = 8833
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)
	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}
	if cfg.Profiling.Endpoint == "" {
		cfg.Profiling.Endpoint = "http://localhost:4040"
	}
	if len(cfg.Profiling.ProfileTypes) == 0 {
		cfg.Profiling.ProfileTypes = []string{"cpu", "alloc_objects", "alloc_space", "inuse_objects", "inuse_space", "goroutines"}
	}
}

func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Port == 0 {
		cfg.Port = 9090
	}
}

func applyPolicyDefaults(cfg *PolicyConfig) {
	if cfg.ConstantResponseSizeBytes == 0 {
		cfg.ConstantResponseSizeBytes = 1024
	}
	if cfg.ConstantProcessingTime == 0 {
		cfg.ConstantProcessingTime = 100 * time.Millisecond
	}
}

// GetDefaultConfig returns a Config populated entirely with defaults. A
// caller still needs to set WasmPath and LookupData — there is no sane
// default for either.
func GetDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
