package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/tensorzero/tensorzero-go/pkg/config"

	"github.com/lmittmann/tint"
)

// LogFormat is the output format of a logger.
type LogFormat string

const (
	// FormatJSON emits one JSON object per line.
	FormatJSON LogFormat = "json"

	// FormatText emits slog's key=value text format.
	FormatText LogFormat = "text"

	// FormatConsole emits a colorized, human-oriented format for
	// terminals.
	FormatConsole LogFormat = "console"
)

// Config configures a Logger.
type Config struct {
	// Level is the minimum level to emit: "debug", "info", "warn", or
	// "error". Defaults to "info".
	Level string

	// Format selects the output format: "json", "text", or "console".
	// Defaults to "console".
	Format string

	// AddSource includes the file and line of the logging call.
	AddSource bool

	// Redact masks credentials before they reach the handler.
	Redact bool

	// Writer receives the output. Defaults to os.Stderr.
	Writer io.Writer
}

// Logger is a structured logger. It wraps slog with format selection and
// credential redaction; the zero value is not usable, construct with New.
type Logger struct {
	slogger *slog.Logger
	level   slog.Level
	format  LogFormat
}

// New creates a Logger from cfg. Unknown levels and formats are errors.
func New(cfg Config) (*Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	format, err := parseFormat(cfg.Format)
	if err != nil {
		return nil, err
	}

	writer := cfg.Writer
	if writer == nil {
		writer = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	switch format {
	case FormatText:
		handler = slog.NewTextHandler(writer, opts)
	case FormatConsole:
		handler = tint.NewHandler(writer, &tint.Options{
			Level:      level,
			AddSource:  cfg.AddSource,
			TimeFormat: "15:04:05.000",
		})
	default:
		handler = slog.NewJSONHandler(writer, opts)
	}

	if cfg.Redact {
		handler = newRedactHandler(handler, NewRedactor())
	}

	return &Logger{
		slogger: slog.New(handler),
		level:   level,
		format:  format,
	}, nil
}

// FromConfig creates a Logger from the telemetry section of a client
// configuration file.
func FromConfig(cfg *config.LoggingConfig) (*Logger, error) {
	if cfg == nil {
		return New(Config{})
	}
	return New(Config{
		Level:     cfg.Level,
		Format:    cfg.Format,
		AddSource: cfg.AddSource,
		Redact:    cfg.Redact,
	})
}

// parseLevel converts a level name to a slog.Level. The empty string means
// info.
func parseLevel(level string) (slog.Level, error) {
	switch level {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level: %q (valid: debug, info, warn, error)", level)
	}
}

// parseFormat converts a format name to a LogFormat. The empty string means
// console.
func parseFormat(format string) (LogFormat, error) {
	switch format {
	case "json":
		return FormatJSON, nil
	case "text":
		return FormatText, nil
	case "console", "":
		return FormatConsole, nil
	default:
		return "", fmt.Errorf("unknown log format: %q (valid: json, text, console)", format)
	}
}

// Debug logs at debug level.
func (l *Logger) Debug(msg string, args ...any) {
	l.slogger.Debug(msg, args...)
}

// Info logs at info level.
func (l *Logger) Info(msg string, args ...any) {
	l.slogger.Info(msg, args...)
}

// Warn logs at warn level.
func (l *Logger) Warn(msg string, args ...any) {
	l.slogger.Warn(msg, args...)
}

// Error logs at error level.
func (l *Logger) Error(msg string, args ...any) {
	l.slogger.Error(msg, args...)
}

// DebugContext logs at debug level with a context.
func (l *Logger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.slogger.DebugContext(ctx, msg, args...)
}

// InfoContext logs at info level with a context.
func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.slogger.InfoContext(ctx, msg, args...)
}

// WarnContext logs at warn level with a context.
func (l *Logger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.slogger.WarnContext(ctx, msg, args...)
}

// ErrorContext logs at error level with a context.
func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.slogger.ErrorContext(ctx, msg, args...)
}

// With returns a Logger with the given key-value pairs bound to every entry.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		slogger: l.slogger.With(args...),
		level:   l.level,
		format:  l.format,
	}
}

// WithComponent returns a Logger bound to a component name, the convention
// used throughout the client for per-package loggers.
func (l *Logger) WithComponent(name string) *Logger {
	return l.With("component", name)
}

// WithContext returns a Logger with the call metadata carried by ctx bound
// as fields. See the WithEpisodeID family of functions.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	fields := extractContextFields(ctx)
	if len(fields) == 0 {
		return l
	}
	return l.With(fields...)
}

// Slog returns the underlying slog.Logger for APIs that take one, such as
// gateway.Config.Logger. Redaction still applies, it lives in the handler.
func (l *Logger) Slog() *slog.Logger {
	return l.slogger
}

// Level returns the minimum level this logger emits.
func (l *Logger) Level() slog.Level {
	return l.level
}

// Format returns the logger's output format.
func (l *Logger) Format() LogFormat {
	return l.format
}

// Enabled reports whether the logger emits at the given level.
func (l *Logger) Enabled(ctx context.Context, level slog.Level) bool {
	return l.slogger.Enabled(ctx, level)
}
