package logging

import (
	"context"
)

// Context keys for call metadata carried alongside gateway requests.
type contextKey string

const (
	// EpisodeIDKey is the context key for episode identifiers.
	EpisodeIDKey contextKey = "episode_id"

	// InferenceIDKey is the context key for inference identifiers.
	InferenceIDKey contextKey = "inference_id"

	// FunctionKey is the context key for function names.
	FunctionKey contextKey = "function"

	// VariantKey is the context key for variant names.
	VariantKey contextKey = "variant"

	// ModelKey is the context key for model names.
	ModelKey contextKey = "model"
)

// WithEpisodeID adds an episode ID to the context.
func WithEpisodeID(ctx context.Context, episodeID string) context.Context {
	return context.WithValue(ctx, EpisodeIDKey, episodeID)
}

// GetEpisodeID retrieves the episode ID from the context.
func GetEpisodeID(ctx context.Context) string {
	if episodeID, ok := ctx.Value(EpisodeIDKey).(string); ok {
		return episodeID
	}
	return ""
}

// WithInferenceID adds an inference ID to the context.
func WithInferenceID(ctx context.Context, inferenceID string) context.Context {
	return context.WithValue(ctx, InferenceIDKey, inferenceID)
}

// GetInferenceID retrieves the inference ID from the context.
func GetInferenceID(ctx context.Context) string {
	if inferenceID, ok := ctx.Value(InferenceIDKey).(string); ok {
		return inferenceID
	}
	return ""
}

// WithFunction adds a function name to the context.
func WithFunction(ctx context.Context, function string) context.Context {
	return context.WithValue(ctx, FunctionKey, function)
}

// GetFunction retrieves the function name from the context.
func GetFunction(ctx context.Context) string {
	if function, ok := ctx.Value(FunctionKey).(string); ok {
		return function
	}
	return ""
}

// WithVariant adds a variant name to the context.
func WithVariant(ctx context.Context, variant string) context.Context {
	return context.WithValue(ctx, VariantKey, variant)
}

// GetVariant retrieves the variant name from the context.
func GetVariant(ctx context.Context) string {
	if variant, ok := ctx.Value(VariantKey).(string); ok {
		return variant
	}
	return ""
}

// WithModel adds a model name to the context.
func WithModel(ctx context.Context, model string) context.Context {
	return context.WithValue(ctx, ModelKey, model)
}

// GetModel retrieves the model name from the context.
func GetModel(ctx context.Context) string {
	if model, ok := ctx.Value(ModelKey).(string); ok {
		return model
	}
	return ""
}

// extractContextFields collects the call metadata present in ctx as
// key-value pairs for Logger.With.
func extractContextFields(ctx context.Context) []any {
	var fields []any

	if episodeID := GetEpisodeID(ctx); episodeID != "" {
		fields = append(fields, "episode_id", episodeID)
	}
	if inferenceID := GetInferenceID(ctx); inferenceID != "" {
		fields = append(fields, "inference_id", inferenceID)
	}
	if function := GetFunction(ctx); function != "" {
		fields = append(fields, "function", function)
	}
	if variant := GetVariant(ctx); variant != "" {
		fields = append(fields, "variant", variant)
	}
	if model := GetModel(ctx); model != "" {
		fields = append(fields, "model", model)
	}

	return fields
}

// ContextLogger binds a context to a Logger so every entry carries the
// context's call metadata.
type ContextLogger struct {
	logger *Logger
	ctx    context.Context
}

// NewContextLogger creates a ContextLogger over logger and ctx.
func NewContextLogger(logger *Logger, ctx context.Context) *ContextLogger {
	return &ContextLogger{
		logger: logger.WithContext(ctx),
		ctx:    ctx,
	}
}

// Debug logs a debug message with the bound context fields.
func (cl *ContextLogger) Debug(msg string, args ...any) {
	cl.logger.DebugContext(cl.ctx, msg, args...)
}

// Info logs an info message with the bound context fields.
func (cl *ContextLogger) Info(msg string, args ...any) {
	cl.logger.InfoContext(cl.ctx, msg, args...)
}

// Warn logs a warning with the bound context fields.
func (cl *ContextLogger) Warn(msg string, args ...any) {
	cl.logger.WarnContext(cl.ctx, msg, args...)
}

// Error logs an error with the bound context fields.
func (cl *ContextLogger) Error(msg string, args ...any) {
	cl.logger.ErrorContext(cl.ctx, msg, args...)
}

// With returns a ContextLogger with additional bound fields.
func (cl *ContextLogger) With(args ...any) *ContextLogger {
	return &ContextLogger{
		logger: cl.logger.With(args...),
		ctx:    cl.ctx,
	}
}
