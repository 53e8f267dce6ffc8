package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func validConfig() *Config {
	cfg := GetDefaultConfig()
	cfg.WasmPath = "/var/lib/oakd/guest.wasm"
	cfg.LookupData = "/var/lib/oakd/lookup.bin"
	return cfg
}

func TestValidateAcceptsDefaultsPlusRequiredFields(t *testing.T) {
	if err := Validate(validConfig()); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateRejectsMissingWasmPath(t *testing.T) {
	cfg := validConfig()
	cfg.WasmPath = ""
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for missing wasm_path")
	}
}

func TestValidateRejectsMissingLookupData(t *testing.T) {
	cfg := validConfig()
	cfg.LookupData = ""
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for missing lookup_data")
	}
}

func TestValidateRejectsPolicyBelowMinimums(t *testing.T) {
	cfg := validConfig()
	cfg.Policy.ConstantResponseSizeBytes = 10
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for response size below 50")
	}

	cfg = validConfig()
	cfg.Policy.ConstantProcessingTime = 0
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for processing time below 1ms")
	}
}

func TestValidateRejectsBadLoggingLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "VERBOSE"
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for unrecognized logging level")
	}
}

func TestValidateRejectsBadLookupDataAuthStrategy(t *testing.T) {
	cfg := validConfig()
	cfg.LookupDataAuth.Strategy = "oauth2"
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for unsupported lookup_data_auth strategy")
	}
}

func TestApplyDefaultsFillsZeroValuesOnly(t *testing.T) {
	cfg := &Config{}
	cfg.Policy.ConstantResponseSizeBytes = 200
	cfg.HTTPListenPort = 9999

	ApplyDefaults(cfg)

	if cfg.Policy.ConstantResponseSizeBytes != 200 {
		t.Fatalf("expected explicit value preserved, got %d", cfg.Policy.ConstantResponseSizeBytes)
	}
	if cfg.HTTPListenPort != 9999 {
		t.Fatalf("expected explicit port preserved, got %d", cfg.HTTPListenPort)
	}
	if cfg.Policy.ConstantProcessingTime != 100*time.Millisecond {
		t.Fatalf("expected default processing time, got %v", cfg.Policy.ConstantProcessingTime)
	}
	if cfg.Logging.Level != "INFO" {
		t.Fatalf("expected default logging level INFO, got %q", cfg.Logging.Level)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Fatalf("expected default shutdown timeout, got %v", cfg.ShutdownTimeout)
	}
}

func TestGetDefaultConfigPathUsesXDGConfigHome(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-test")
	path := GetDefaultConfigPath()
	if path != "/tmp/xdg-test/oakd/config.yaml" {
		t.Fatalf("got %q, want /tmp/xdg-test/oakd/config.yaml", path)
	}
}

func TestLoadReadsExplicitTOMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "oakd.toml")
	contents := "wasm_path = \"/opt/oakd/guest.wasm\"\nlookup_data = \"/opt/oakd/lookup.bin\"\n\n[policy]\nconstant_response_size_bytes = 512\nconstant_processing_time = \"5ms\"\n"
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.WasmPath != "/opt/oakd/guest.wasm" {
		t.Fatalf("got wasm_path %q, want /opt/oakd/guest.wasm", cfg.WasmPath)
	}
	if cfg.Policy.ConstantResponseSizeBytes != 512 {
		t.Fatalf("got response size %d, want 512", cfg.Policy.ConstantResponseSizeBytes)
	}
}

func TestLoadFallsBackToTOMLInDefaultConfigDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	configDir := filepath.Join(dir, "oakd")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	contents := "wasm_path = \"/opt/oakd/guest.wasm\"\nlookup_data = \"/opt/oakd/lookup.bin\"\n"
	if err := os.WriteFile(filepath.Join(configDir, "config.toml"), []byte(contents), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.WasmPath != "/opt/oakd/guest.wasm" {
		t.Fatalf("got wasm_path %q, want /opt/oakd/guest.wasm", cfg.WasmPath)
	}
}
