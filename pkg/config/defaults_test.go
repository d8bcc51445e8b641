package config

import (
	"reflect"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Gateway.BaseURL != DefaultGatewayBaseURL {
		t.Errorf("expected base URL %q, got %q", DefaultGatewayBaseURL, cfg.Gateway.BaseURL)
	}
	if cfg.Gateway.MaxRetries != DefaultGatewayMaxRetries {
		t.Errorf("expected max retries %d, got %d", DefaultGatewayMaxRetries, cfg.Gateway.MaxRetries)
	}
	if !cfg.History.Enabled {
		t.Error("expected history enabled")
	}
	if !cfg.History.SQLite.WALMode {
		t.Error("expected WAL mode enabled")
	}
	if !cfg.Telemetry.Logging.Redact {
		t.Error("expected log redaction enabled")
	}
	if !cfg.Telemetry.Tracing.Insecure {
		t.Error("expected insecure tracing transport by default")
	}
	if cfg.Telemetry.Tracing.SampleRatio != DefaultTracingSampleRatio {
		t.Errorf("expected sample ratio %v, got %v", DefaultTracingSampleRatio, cfg.Telemetry.Tracing.SampleRatio)
	}
}

func TestApplyDefaults_Idempotent(t *testing.T) {
	cfg := Default()
	snapshot := *cfg

	ApplyDefaults(cfg)

	if !reflect.DeepEqual(snapshot, *cfg) {
		t.Error("ApplyDefaults changed an already-defaulted config")
	}
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Gateway.BaseURL = "https://gw.example.com"
	cfg.History.Backend = "memory"
	cfg.Telemetry.Logging.Level = "error"

	ApplyDefaults(cfg)

	if cfg.Gateway.BaseURL != "https://gw.example.com" {
		t.Errorf("explicit base URL overridden: %q", cfg.Gateway.BaseURL)
	}
	if cfg.History.Backend != "memory" {
		t.Errorf("explicit backend overridden: %q", cfg.History.Backend)
	}
	if cfg.Telemetry.Logging.Level != "error" {
		t.Errorf("explicit level overridden: %q", cfg.Telemetry.Logging.Level)
	}
	if cfg.Gateway.Timeout != DefaultGatewayTimeout {
		t.Errorf("unset timeout not defaulted: %v", cfg.Gateway.Timeout)
	}
}
