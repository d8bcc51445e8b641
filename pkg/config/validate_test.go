package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	return Default()
}

func fieldErrors(t *testing.T, cfg *Config) map[string]string {
	t.Helper()
	err := Validate(cfg)
	if err == nil {
		return nil
	}
	verr, ok := err.(ValidationError)
	if !ok {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}
	fields := make(map[string]string, len(verr.Errors))
	for _, fe := range verr.Errors {
		fields[fe.Field] = fe.Message
	}
	return fields
}

func TestValidate_DefaultsAreValid(t *testing.T) {
	if err := Validate(validConfig()); err != nil {
		t.Fatalf("default config should validate, got: %v", err)
	}
}

func TestValidate_Gateway(t *testing.T) {
	cfg := validConfig()
	cfg.Gateway.BaseURL = ""
	if fields := fieldErrors(t, cfg); fields["gateway.base_url"] == "" {
		t.Errorf("expected gateway.base_url error, got %v", fields)
	}

	cfg = validConfig()
	cfg.Gateway.BaseURL = "ftp://gateway.internal"
	if fields := fieldErrors(t, cfg); !strings.Contains(fields["gateway.base_url"], "scheme") {
		t.Errorf("expected scheme error, got %v", fields)
	}

	cfg = validConfig()
	cfg.Gateway.MaxRetries = -1
	if fields := fieldErrors(t, cfg); fields["gateway.max_retries"] == "" {
		t.Errorf("expected gateway.max_retries error, got %v", fields)
	}

	cfg = validConfig()
	cfg.Gateway.MaxRetries = 50
	if fields := fieldErrors(t, cfg); !strings.Contains(fields["gateway.max_retries"], "reasonable limit") {
		t.Errorf("expected reasonable-limit error, got %v", fields)
	}

	cfg = validConfig()
	cfg.Gateway.Timeout = -1
	if fields := fieldErrors(t, cfg); fields["gateway.timeout"] == "" {
		t.Errorf("expected gateway.timeout error, got %v", fields)
	}
}

func TestValidate_History(t *testing.T) {
	cfg := validConfig()
	cfg.History.Backend = "postgres"
	if fields := fieldErrors(t, cfg); !strings.Contains(fields["history.backend"], "postgres") {
		t.Errorf("expected history.backend error, got %v", fields)
	}

	cfg = validConfig()
	cfg.History.Backend = "sqlite"
	cfg.History.SQLite.Path = ""
	if fields := fieldErrors(t, cfg); fields["history.sqlite.path"] == "" {
		t.Errorf("expected history.sqlite.path error, got %v", fields)
	}

	cfg = validConfig()
	cfg.History.Retention.Days = -1
	if fields := fieldErrors(t, cfg); fields["history.retention.days"] == "" {
		t.Errorf("expected history.retention.days error, got %v", fields)
	}

	cfg = validConfig()
	cfg.History.Retention.PruneSchedule = "every day at three"
	if fields := fieldErrors(t, cfg); !strings.Contains(fields["history.retention.prune_schedule"], "cron") {
		t.Errorf("expected cron error, got %v", fields)
	}

	cfg = validConfig()
	cfg.History.Retention.ArchiveBeforeDelete = true
	cfg.History.Retention.ArchivePath = ""
	if fields := fieldErrors(t, cfg); fields["history.retention.archive_path"] == "" {
		t.Errorf("expected history.retention.archive_path error, got %v", fields)
	}

	// A disabled journal skips history validation entirely.
	cfg = validConfig()
	cfg.History.Enabled = false
	cfg.History.Backend = "postgres"
	cfg.History.Retention.Days = -5
	if err := Validate(cfg); err != nil {
		t.Errorf("disabled history should not be validated, got: %v", err)
	}
}

func TestValidate_Telemetry(t *testing.T) {
	cfg := validConfig()
	cfg.Telemetry.Logging.Level = "loud"
	if fields := fieldErrors(t, cfg); !strings.Contains(fields["telemetry.logging.level"], "loud") {
		t.Errorf("expected logging level error, got %v", fields)
	}

	cfg = validConfig()
	cfg.Telemetry.Logging.Format = "xml"
	if fields := fieldErrors(t, cfg); !strings.Contains(fields["telemetry.logging.format"], "xml") {
		t.Errorf("expected logging format error, got %v", fields)
	}

	cfg = validConfig()
	cfg.Telemetry.Metrics.Namespace = ""
	if fields := fieldErrors(t, cfg); fields["telemetry.metrics.namespace"] == "" {
		t.Errorf("expected metrics namespace error, got %v", fields)
	}

	cfg = validConfig()
	cfg.Telemetry.Tracing.Enabled = true
	cfg.Telemetry.Tracing.Endpoint = ""
	if fields := fieldErrors(t, cfg); fields["telemetry.tracing.endpoint"] == "" {
		t.Errorf("expected tracing endpoint error, got %v", fields)
	}

	cfg = validConfig()
	cfg.Telemetry.Tracing.SampleRatio = 1.5
	if fields := fieldErrors(t, cfg); fields["telemetry.tracing.sample_ratio"] == "" {
		t.Errorf("expected sample ratio error, got %v", fields)
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Gateway.BaseURL = ""
	cfg.Gateway.MaxRetries = -1
	cfg.Telemetry.Logging.Level = "loud"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	verr := err.(ValidationError)
	if len(verr.Errors) != 3 {
		t.Fatalf("expected 3 errors collected, got %d: %v", len(verr.Errors), verr)
	}
	if !strings.Contains(verr.Error(), "3 errors") {
		t.Errorf("expected error count in message, got: %v", verr.Error())
	}
}

func TestFieldError_Message(t *testing.T) {
	fe := FieldError{Field: "gateway.timeout", Message: "timeout must be non-negative"}
	want := "gateway.timeout: timeout must be non-negative"
	if fe.Error() != want {
		t.Errorf("expected %q, got %q", want, fe.Error())
	}
}
