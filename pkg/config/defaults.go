package config

import "time"

// Default values for configuration fields.
const (
	// Gateway defaults
	DefaultGatewayBaseURL             = "http://localhost:3000"
	DefaultGatewayTimeout             = 2 * time.Minute
	DefaultGatewayMaxRetries          = 0
	DefaultGatewayMaxIdleConns        = 100
	DefaultGatewayMaxIdleConnsPerHost = 10
	DefaultGatewayIdleConnTimeout     = 90 * time.Second

	// History defaults
	DefaultHistoryBackend            = "sqlite"
	DefaultHistorySQLitePath         = "data/history.db"
	DefaultHistorySQLiteMaxOpenConns = 10
	DefaultHistorySQLiteMaxIdleConns = 5
	DefaultHistorySQLiteBusyTimeout  = 5 * time.Second
	DefaultHistoryRetentionDays      = 90
	DefaultHistoryRetentionSchedule  = "0 3 * * *"
	DefaultHistoryArchivePath        = "data/archives/"

	// Telemetry defaults
	DefaultLoggingLevel       = "info"
	DefaultLoggingFormat      = "console"
	DefaultMetricsNamespace   = "tensorzero"
	DefaultMetricsSubsystem   = "client"
	DefaultTracingServiceName = "tensorzero-client"
	DefaultTracingSampleRatio = 1.0
	DefaultTracingTimeout     = 10 * time.Second
)

// Default returns a configuration with every default applied, the same state
// Load produces for an empty file.
func Default() *Config {
	cfg := &Config{}
	seedTrueDefaults(cfg)
	ApplyDefaults(cfg)
	return cfg
}

// seedTrueDefaults sets the booleans whose default is true. Load calls it
// before unmarshaling so a file that sets any of them to false still wins.
func seedTrueDefaults(cfg *Config) {
	cfg.History.Enabled = true
	cfg.History.SQLite.WALMode = true
	cfg.Telemetry.Logging.Redact = true
	cfg.Telemetry.Metrics.Enabled = true
	cfg.Telemetry.Tracing.Insecure = true
}

// ApplyDefaults fills zero-valued fields with their defaults. Booleans whose
// default is true (history.enabled, sqlite.wal_mode, logging.redact,
// metrics.enabled, tracing.insecure) are handled by the YAML layer in Load,
// which seeds them before unmarshaling; calling ApplyDefaults directly on a
// hand-built Config leaves explicit false values alone.
// This function is idempotent.
func ApplyDefaults(cfg *Config) {
	// Gateway defaults
	if cfg.Gateway.BaseURL == "" {
		cfg.Gateway.BaseURL = DefaultGatewayBaseURL
	}
	if cfg.Gateway.Timeout == 0 {
		cfg.Gateway.Timeout = DefaultGatewayTimeout
	}
	if cfg.Gateway.MaxIdleConns == 0 {
		cfg.Gateway.MaxIdleConns = DefaultGatewayMaxIdleConns
	}
	if cfg.Gateway.MaxIdleConnsPerHost == 0 {
		cfg.Gateway.MaxIdleConnsPerHost = DefaultGatewayMaxIdleConnsPerHost
	}
	if cfg.Gateway.IdleConnTimeout == 0 {
		cfg.Gateway.IdleConnTimeout = DefaultGatewayIdleConnTimeout
	}

	// History defaults
	if cfg.History.Backend == "" {
		cfg.History.Backend = DefaultHistoryBackend
	}
	if cfg.History.SQLite.Path == "" {
		cfg.History.SQLite.Path = DefaultHistorySQLitePath
	}
	if cfg.History.SQLite.MaxOpenConns == 0 {
		cfg.History.SQLite.MaxOpenConns = DefaultHistorySQLiteMaxOpenConns
	}
	if cfg.History.SQLite.MaxIdleConns == 0 {
		cfg.History.SQLite.MaxIdleConns = DefaultHistorySQLiteMaxIdleConns
	}
	if cfg.History.SQLite.BusyTimeout == 0 {
		cfg.History.SQLite.BusyTimeout = DefaultHistorySQLiteBusyTimeout
	}
	if cfg.History.Retention.Days == 0 {
		cfg.History.Retention.Days = DefaultHistoryRetentionDays
	}
	if cfg.History.Retention.PruneSchedule == "" {
		cfg.History.Retention.PruneSchedule = DefaultHistoryRetentionSchedule
	}
	if cfg.History.Retention.ArchivePath == "" {
		cfg.History.Retention.ArchivePath = DefaultHistoryArchivePath
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingServiceName
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 {
		cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if cfg.Telemetry.Tracing.Timeout == 0 {
		cfg.Telemetry.Tracing.Timeout = DefaultTracingTimeout
	}
}
