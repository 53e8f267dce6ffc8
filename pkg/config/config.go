// Package config loads oakd's static configuration: where to find the
// guest Wasm module, the response-shaping policy, how to acquire lookup
// data, and the ambient logging/telemetry/metrics knobs.
//
// Configuration sources (in order of precedence):
//  1. Environment variables (OAKD_*), for keys the configuration file sets
//  2. Configuration file (YAML, or TOML via pkg/configsource)
//  3. Default values (lowest priority)
//
// No command-line flag other than the config file path feeds into Config.
// When no configuration file is found, Load returns GetDefaultConfig()
// without reading the environment and without validating it.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/marmos91/oakd/internal/bytesize"
	"github.com/marmos91/oakd/pkg/configsource"
)

// Config is oakd's complete static configuration.
type Config struct {
	// WasmPath is the filesystem path to the guest Wasm module this
	// instance serves.
	WasmPath string `mapstructure:"wasm_path" validate:"required" yaml:"wasm_path"`

	// HTTPListenPort is the port the reference /invoke transport binding
	// (and the operational health/admin surface) listens on.
	HTTPListenPort int `mapstructure:"http_listen_port" validate:"required,min=1,max=65535" yaml:"http_listen_port"`

	// WorkerThreads advises runtime.GOMAXPROCS at startup. Zero means
	// "leave GOMAXPROCS at its Go-runtime default".
	WorkerThreads int `mapstructure:"worker_threads" validate:"gte=0" yaml:"worker_threads"`

	// ShutdownTimeout bounds how long graceful shutdown waits for
	// in-flight requests before forcing the listener closed.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0" yaml:"shutdown_timeout"`

	// Policy configures the Shaper's constant-time, constant-size
	// response contract.
	Policy PolicyConfig `mapstructure:"policy" yaml:"policy"`

	// LookupData names where lookup data is acquired from: a filesystem
	// path, an http(s):// URL, or an s3:// URI.
	LookupData string `mapstructure:"lookup_data" validate:"required" yaml:"lookup_data"`

	// LookupDataDownloadPeriod is the ticker interval for re-fetching
	// LookupData. Zero means "no ticker" — a filesystem LookupData falls
	// back to an fsnotify watch instead; a remote LookupData is fetched
	// once at startup and never refreshed.
	LookupDataDownloadPeriod time.Duration `mapstructure:"lookup_data_download_period" yaml:"lookup_data_download_period"`

	// LookupDataAuth configures the bearer token source used when
	// fetching LookupData from an authenticated http(s) endpoint.
	LookupDataAuth LookupDataAuthConfig `mapstructure:"lookup_data_auth" yaml:"lookup_data_auth"`

	// Logging controls log output behavior.
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Telemetry controls OpenTelemetry distributed tracing and Pyroscope
	// profiling.
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`

	// Metrics configures the Prometheus metrics HTTP server.
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// PolicyConfig mirrors pkg/policy.Policy with mapstructure/yaml tags; Load
// converts it into a policy.Policy once validated.
type PolicyConfig struct {
	// ConstantResponseSizeBytes is the fixed wire size every response is
	// shaped to.
	ConstantResponseSizeBytes uint32 `mapstructure:"constant_response_size_bytes" validate:"min=50" yaml:"constant_response_size_bytes"`

	// ConstantProcessingTime is the fixed latency every response waits
	// out before being returned.
	ConstantProcessingTime time.Duration `mapstructure:"constant_processing_time" validate:"min=1ms" yaml:"constant_processing_time"`
}

// LookupDataAuthConfig selects how a bearer token is obtained for
// authenticated lookup-data fetches. An empty Strategy means no
// authentication is attempted.
type LookupDataAuthConfig struct {
	// Strategy selects the token source: "" (none), "static" (Token used
	// verbatim), or "metadata" (fetched from a cloud metadata service).
	Strategy string `mapstructure:"strategy" validate:"omitempty,oneof=static metadata" yaml:"strategy"`

	// Token is the bearer token used verbatim when Strategy is "static".
	Token string `mapstructure:"token" yaml:"token,omitempty"`

	// MetadataURL is the metadata-service endpoint queried for a token
	// when Strategy is "metadata".
	MetadataURL string `mapstructure:"metadata_url" yaml:"metadata_url,omitempty"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output.
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// Format specifies the log output format: text or json.
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output specifies where logs are written: stdout, stderr, or a file
	// path.
	Output string `mapstructure:"output" validate:"required" yaml:"output"`

	// LogSensitiveContent gates logger.DebugSensitive output — guest log
	// messages and lookup values are only logged when this is true.
	LogSensitiveContent bool `mapstructure:"log_sensitive_content" yaml:"log_sensitive_content"`
}

// TelemetryConfig controls OpenTelemetry distributed tracing.
type TelemetryConfig struct {
	// Enabled controls whether distributed tracing is enabled.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the OTLP collector endpoint (host:port).
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// Insecure controls whether to use a non-TLS connection to Endpoint.
	Insecure bool `mapstructure:"insecure" yaml:"insecure"`

	// SampleRate controls the trace sampling rate, 0.0 to 1.0.
	SampleRate float64 `mapstructure:"sample_rate" validate:"omitempty,gte=0,lte=1" yaml:"sample_rate"`

	// Profiling contains Pyroscope continuous profiling configuration.
	Profiling ProfilingConfig `mapstructure:"profiling" yaml:"profiling"`
}

// ProfilingConfig controls Pyroscope continuous profiling of the worker
// pool.
type ProfilingConfig struct {
	// Enabled controls whether continuous profiling is enabled.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the Pyroscope server endpoint.
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// ProfileTypes selects which profile types to collect.
	ProfileTypes []string `mapstructure:"profile_types" yaml:"profile_types"`
}

// MetricsConfig configures the Prometheus metrics HTTP server. When
// Enabled is false, no metrics are collected.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	Port    int  `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`
}

// Load loads configuration from file, environment, and defaults.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	found, err := readConfigFile(v, configPath)
	if err != nil {
		return nil, err
	}

	cfg := GetDefaultConfig()
	if !found {
		return cfg, nil
	}

	if err := v.Unmarshal(cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate runs struct-tag validation over cfg.
func Validate(cfg *Config) error {
	return validator.New().Struct(cfg)
}

// SaveConfig writes cfg to path in YAML, respecting yaml tags.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("OAKD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if isTOML(configPath) {
		// TOML files are read through pkg/configsource, not viper's own
		// file reader; nothing more to set up here.
		return
	}
	if configPath != "" {
		v.SetConfigFile(configPath)
		return
	}
	configDir := getConfigDir()
	v.AddConfigPath(configDir)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
}

// readConfigFile loads configPath into v. A ".toml" file (named explicitly,
// or found at the default config directory when configPath is empty) is
// parsed with pkg/configsource.LoadTOML and merged into v as a config map;
// every other case goes through viper's own YAML reader.
func readConfigFile(v *viper.Viper, configPath string) (bool, error) {
	if isTOML(configPath) {
		return readTOMLConfigFile(v, configPath)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if configPath == "" {
				return readTOMLConfigFile(v, filepath.Join(getConfigDir(), "config.toml"))
			}
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

func readTOMLConfigFile(v *viper.Viper, path string) (bool, error) {
	raw, err := configsource.LoadTOML(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read TOML config file: %w", err)
	}
	if err := v.MergeConfigMap(raw); err != nil {
		return false, fmt.Errorf("failed to merge TOML config: %w", err)
	}
	return true, nil
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// configDecodeHooks combines the custom decode hooks for ByteSize and
// time.Duration fields.
func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		byteSizeDecodeHook(),
		durationDecodeHook(),
	)
}

func byteSizeDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(bytesize.ByteSize(0)) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return bytesize.ParseByteSize(v)
		case int:
			return bytesize.ByteSize(v), nil
		case int64:
			return bytesize.ByteSize(v), nil
		case uint64:
			return bytesize.ByteSize(v), nil
		case float64:
			return bytesize.ByteSize(v), nil
		default:
			return data, nil
		}
	}
}

func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "oakd")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "oakd")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists reports whether a config file exists at the default
// location.
func DefaultConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}

// GetConfigDir returns the configuration directory path.
func GetConfigDir() string {
	return getConfigDir()
}
