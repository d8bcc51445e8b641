package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/tensorzero/tensorzero-go/pkg/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:    "valid JSON config",
			config:  Config{Level: "info", Format: "json"},
			wantErr: false,
		},
		{
			name:    "valid text config",
			config:  Config{Level: "debug", Format: "text"},
			wantErr: false,
		},
		{
			name:    "valid console config",
			config:  Config{Level: "warn", Format: "console"},
			wantErr: false,
		},
		{
			name:    "defaults for empty level and format",
			config:  Config{},
			wantErr: false,
		},
		{
			name:    "invalid log level",
			config:  Config{Level: "loud", Format: "json"},
			wantErr: true,
		},
		{
			name:    "invalid format",
			config:  Config{Level: "info", Format: "xml"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			tt.config.Writer = buf

			_, err := New(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(Config{Writer: buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if logger.Format() != FormatConsole {
		t.Errorf("default format = %q, want %q", logger.Format(), FormatConsole)
	}

	logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug entry emitted at default info level: %q", buf.String())
	}
	logger.Info("visible")
	if buf.Len() == 0 {
		t.Error("info entry not emitted at default info level")
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		name      string
		logLevel  string
		logMethod func(*Logger, string)
		wantLog   bool
	}{
		{
			name:      "debug level logs debug",
			logLevel:  "debug",
			logMethod: func(l *Logger, msg string) { l.Debug(msg) },
			wantLog:   true,
		},
		{
			name:      "info level filters debug",
			logLevel:  "info",
			logMethod: func(l *Logger, msg string) { l.Debug(msg) },
			wantLog:   false,
		},
		{
			name:      "warn level filters info",
			logLevel:  "warn",
			logMethod: func(l *Logger, msg string) { l.Info(msg) },
			wantLog:   false,
		},
		{
			name:      "error level logs error",
			logLevel:  "error",
			logMethod: func(l *Logger, msg string) { l.Error(msg) },
			wantLog:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger, err := New(Config{Level: tt.logLevel, Format: "json", Writer: buf})
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}

			tt.logMethod(logger, "test message")

			gotLog := strings.Contains(buf.String(), "test message")
			if gotLog != tt.wantLog {
				t.Errorf("logged = %v, want %v (output: %q)", gotLog, tt.wantLog, buf.String())
			}
		})
	}
}

func TestLogger_JSONFields(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(Config{Level: "info", Format: "json", Writer: buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Info("inference complete", "function", "extract_entities", "duration_ms", 840)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (output: %q)", err, buf.String())
	}
	if entry["msg"] != "inference complete" {
		t.Errorf("msg = %v, want %q", entry["msg"], "inference complete")
	}
	if entry["function"] != "extract_entities" {
		t.Errorf("function = %v, want %q", entry["function"], "extract_entities")
	}
	if entry["duration_ms"] != float64(840) {
		t.Errorf("duration_ms = %v, want 840", entry["duration_ms"])
	}
}

func TestLogger_With(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(Config{Level: "info", Format: "json", Writer: buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.WithComponent("history").Info("pruning complete")

	if !strings.Contains(buf.String(), `"component":"history"`) {
		t.Errorf("bound component missing from output: %q", buf.String())
	}
}

func TestLogger_SlogRedacts(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(Config{Level: "info", Format: "json", Redact: true, Writer: buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	// Redaction lives in the handler, so the raw slog.Logger masks too.
	logger.Slog().Info("authenticating", "api_key", "sk-abcdef1234567890")

	out := buf.String()
	if strings.Contains(out, "sk-abcdef1234567890") {
		t.Errorf("credential leaked through Slog(): %q", out)
	}
	if !strings.Contains(out, "sk-a***") {
		t.Errorf("expected prefix hint in output: %q", out)
	}
}

func TestFromConfig(t *testing.T) {
	logger, err := FromConfig(&config.LoggingConfig{
		Level:  "debug",
		Format: "text",
		Redact: true,
	})
	if err != nil {
		t.Fatalf("FromConfig() error = %v", err)
	}
	if logger.Format() != FormatText {
		t.Errorf("format = %q, want %q", logger.Format(), FormatText)
	}

	if _, err := FromConfig(nil); err != nil {
		t.Errorf("FromConfig(nil) error = %v, want defaults", err)
	}
}
