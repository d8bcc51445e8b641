package config

import "time"

// Config is the root configuration for the TensorZero client toolkit. It
// covers the gateway connection, the local call history journal, telemetry,
// and per-invocation defaults.
type Config struct {
	// Gateway contains the connection settings for the TensorZero gateway.
	Gateway GatewayConfig `yaml:"gateway"`

	// History contains settings for the local journal of inference and
	// feedback calls.
	History HistoryConfig `yaml:"history"`

	// Telemetry contains observability settings: logging, metrics, and
	// distributed tracing.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Defaults contains values applied to requests that do not specify them.
	Defaults DefaultsConfig `yaml:"defaults"`
}

// GatewayConfig contains connection settings for the TensorZero gateway.
type GatewayConfig struct {
	// BaseURL is the gateway base URL, for example "http://localhost:3000".
	// Default: "http://localhost:3000"
	BaseURL string `yaml:"base_url"`

	// APIKey is sent as a bearer token when the gateway requires
	// authentication. This should typically be loaded from an environment
	// variable. Empty means no Authorization header.
	APIKey string `yaml:"api_key"`

	// Timeout is the maximum duration of a non-streaming request.
	// Streaming requests are not bounded by it.
	// Default: 2m
	Timeout time.Duration `yaml:"timeout"`

	// MaxRetries is the number of retry attempts for retryable failures
	// (429, 5xx, transport errors) on non-streaming requests.
	// Default: 0 (disabled)
	MaxRetries int `yaml:"max_retries"`

	// MaxIdleConns is the connection pool size across all hosts.
	// Default: 100
	MaxIdleConns int `yaml:"max_idle_conns"`

	// MaxIdleConnsPerHost is the connection pool size per host.
	// Default: 10
	MaxIdleConnsPerHost int `yaml:"max_idle_conns_per_host"`

	// IdleConnTimeout is how long idle connections are kept open.
	// Default: 90s
	IdleConnTimeout time.Duration `yaml:"idle_conn_timeout"`
}

// HistoryConfig contains settings for the local call history journal.
type HistoryConfig struct {
	// Enabled controls whether calls are recorded.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Backend selects the journal storage backend.
	// Options: "memory", "sqlite"
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLite contains SQLite-specific settings.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// Retention contains journal retention settings.
	Retention RetentionConfig `yaml:"retention"`
}

// SQLiteConfig contains SQLite-specific settings for the history journal.
type SQLiteConfig struct {
	// Path is the file path for the SQLite database.
	// Default: "data/history.db"
	Path string `yaml:"path"`

	// MaxOpenConns is the maximum number of open database connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle database connections.
	// Default: 5
	MaxIdleConns int `yaml:"max_idle_conns"`

	// WALMode enables write-ahead logging for better concurrency.
	// Default: true
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// RetentionConfig contains retention settings for the history journal.
type RetentionConfig struct {
	// Days is the number of days to retain records. Records older than this
	// are eligible for pruning. 0 means keep records forever.
	// Default: 90
	Days int `yaml:"days"`

	// MaxRecords is the maximum number of records to keep; the oldest
	// records are pruned first. 0 means unlimited.
	// Default: 0
	MaxRecords int64 `yaml:"max_records"`

	// PruneSchedule is a cron expression for scheduling pruning.
	// Default: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string `yaml:"prune_schedule"`

	// ArchiveBeforeDelete exports records to JSON before pruning them.
	// Default: false
	ArchiveBeforeDelete bool `yaml:"archive_before_delete"`

	// ArchivePath is the directory archived records are written to.
	// Default: "data/archives/"
	ArchivePath string `yaml:"archive_path"`
}

// TelemetryConfig contains observability settings.
type TelemetryConfig struct {
	// Logging contains logging settings.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection settings.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing settings.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format. "console" is colorized and
	// meant for terminals; "json" and "text" are slog's standard handlers.
	// Options: "json", "text", "console"
	// Default: "console"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// Redact masks API keys and bearer tokens in log output.
	// Default: true
	Redact bool `yaml:"redact"`
}

// MetricsConfig contains metrics collection settings.
type MetricsConfig struct {
	// Enabled controls whether client metrics are collected.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Namespace is the metric name prefix.
	// Default: "tensorzero"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "client"
	Subsystem string `yaml:"subsystem"`
}

// TracingConfig contains distributed tracing settings.
type TracingConfig struct {
	// Enabled controls whether spans are exported.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Endpoint is the OTLP gRPC collector endpoint.
	// Example: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service name attached to exported spans.
	// Default: "tensorzero-client"
	ServiceName string `yaml:"service_name"`

	// SampleRatio is the fraction of root traces to sample (0.0 to 1.0).
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// Insecure disables TLS on the collector connection.
	// Default: true
	Insecure bool `yaml:"insecure"`

	// Timeout is the timeout for span exports.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// DefaultsConfig contains values applied to requests that do not set them.
type DefaultsConfig struct {
	// FunctionName is the function used when a request names none.
	FunctionName string `yaml:"function_name"`

	// VariantName pins a variant on requests that name none.
	VariantName string `yaml:"variant_name"`

	// Tags are merged into every request's tags; request tags win on
	// conflict.
	Tags map[string]string `yaml:"tags"`
}
