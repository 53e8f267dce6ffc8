package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/tetratelabs/wazero"

	"github.com/marmos91/oakd/internal/logger"
	"github.com/marmos91/oakd/internal/telemetry"
	"github.com/marmos91/oakd/pkg/config"
	"github.com/marmos91/oakd/pkg/lookup"
	"github.com/marmos91/oakd/pkg/lookupsource"
	"github.com/marmos91/oakd/pkg/metrics"
	"github.com/marmos91/oakd/pkg/policy"
	"github.com/marmos91/oakd/pkg/server"
	"github.com/marmos91/oakd/pkg/wasmhost"

	// Import the Prometheus backend for its init() constructor registrations.
	_ "github.com/marmos91/oakd/pkg/metrics/prometheus"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the oakd server",
	Long: `Start oakd: load the configured guest Wasm module, acquire its
lookup data, and serve requests behind the constant-time, constant-size
response policy.

Use --config to specify a custom configuration file, or it will use the
default location at $XDG_CONFIG_HOME/oakd/config.yaml.

Examples:
  # Start with the default config
  oakd start

  # Start with a custom config file
  oakd start --config /etc/oakd/config.yaml

  # Start with environment variable overrides
  OAKD_LOGGING_LEVEL=DEBUG oakd start`,
	RunE: runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return err
	}

	if err := InitLogger(cfg); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "oakd",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := telemetryShutdown(ctx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}()

	profilingShutdown, err := telemetry.InitProfiling(telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    "oakd",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
		ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize profiling: %w", err)
	}
	defer func() {
		if err := profilingShutdown(); err != nil {
			logger.Error("profiling shutdown error", "error", err)
		}
	}()

	logger.Info("oakd starting",
		"version", Version,
		"config_source", getConfigSource(GetConfigFile()),
		"log_level", cfg.Logging.Level)
	if telemetry.IsEnabled() {
		logger.Info("telemetry enabled", "endpoint", cfg.Telemetry.Endpoint, "sample_rate", cfg.Telemetry.SampleRate)
	}
	if telemetry.IsProfilingEnabled() {
		logger.Info("profiling enabled", "endpoint", cfg.Telemetry.Profiling.Endpoint)
	}

	if cfg.WorkerThreads > 0 {
		runtime.GOMAXPROCS(cfg.WorkerThreads)
		logger.Info("GOMAXPROCS set", "threads", cfg.WorkerThreads)
	}

	metricsServer, err := startMetricsServer(cfg.Metrics)
	if err != nil {
		return fmt.Errorf("failed to start metrics server: %w", err)
	}
	if metricsServer != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = metricsServer.Shutdown(shutdownCtx)
		}()
	}

	wasmBytes, err := os.ReadFile(cfg.WasmPath)
	if err != nil {
		return fmt.Errorf("failed to read guest module %q: %w", cfg.WasmPath, err)
	}

	rt := wazero.NewRuntime(ctx)
	defer func() { _ = rt.Close(ctx) }()

	compiled, err := wasmhost.Load(ctx, rt, wasmBytes)
	if err != nil {
		return fmt.Errorf("failed to load guest module: %w", err)
	}
	defer func() { _ = compiled.Close(ctx) }()
	logger.Info("guest module loaded", "path", cfg.WasmPath)

	authSource := lookupsource.NewTokenSource(cfg.LookupDataAuth)
	initialData, err := lookupsource.Fetch(ctx, cfg.LookupData, authSource)
	if err != nil {
		return fmt.Errorf("failed to acquire initial lookup data: %w", err)
	}
	logger.Info("lookup data acquired", "source", cfg.LookupData, "entries", len(initialData))

	lookupManager := lookup.NewManager(initialData, metrics.NewLookupMetrics())
	refresher := lookupsource.NewRefresher(cfg.LookupData, authSource, lookupManager, cfg.LookupDataDownloadPeriod)

	shaperPolicy := policy.Policy{
		ConstantResponseSizeBytes: cfg.Policy.ConstantResponseSizeBytes,
		ConstantProcessingTime:    cfg.Policy.ConstantProcessingTime,
	}
	if err := shaperPolicy.Validate(); err != nil {
		return fmt.Errorf("invalid policy configuration: %w", err)
	}
	shaper := policy.NewShaper(shaperPolicy, metrics.NewPolicyMetrics())

	handler := server.NewHandler(compiled, lookupManager, shaper)
	router := server.NewRouter(handler, lookupManager)
	srv := server.NewServer(fmt.Sprintf(":%d", cfg.HTTPListenPort), router, cfg.ShutdownTimeout)

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("oakd listening", "port", cfg.HTTPListenPort)
	err = server.Run(sigCtx, srv, refresher, cfg.ShutdownTimeout)
	if err != nil {
		logger.Error("oakd exited with error", "error", err)
		return err
	}
	logger.Info("oakd stopped gracefully")
	return nil
}

// startMetricsServer starts the Prometheus metrics HTTP server when
// cfg.Enabled is true. A nil *http.Server return with a nil error means
// metrics collection is disabled.
func startMetricsServer(cfg config.MetricsConfig) (*http.Server, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	registry := metrics.InitRegistry()
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: mux,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()
	logger.Info("metrics server listening", "port", cfg.Port)
	return srv, nil
}
