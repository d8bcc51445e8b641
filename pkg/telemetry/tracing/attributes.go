package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys. HTTP attributes follow OpenTelemetry semantic
// conventions; everything domain-specific sits under the "tensorzero."
// namespace.
const (
	AttrFunction    = "tensorzero.function"
	AttrVariant     = "tensorzero.variant"
	AttrModel       = "tensorzero.model"
	AttrEpisodeID   = "tensorzero.episode_id"
	AttrInferenceID = "tensorzero.inference_id"
	AttrStreamed    = "tensorzero.stream"

	AttrTokensInput  = "tensorzero.tokens.input"
	AttrTokensOutput = "tensorzero.tokens.output"
	AttrTokensTotal  = "tensorzero.tokens.total"

	AttrFeedbackMetric = "tensorzero.feedback.metric"
	AttrErrorType      = "tensorzero.error.type"
)

// SetInferenceAttributes sets the call identity on a span. Empty values
// are skipped; a request pins a variant or model only sometimes.
func SetInferenceAttributes(span trace.Span, function, variant, model string) {
	attrs := make([]attribute.KeyValue, 0, 3)
	if function != "" {
		attrs = append(attrs, attribute.String(AttrFunction, function))
	}
	if variant != "" {
		attrs = append(attrs, attribute.String(AttrVariant, variant))
	}
	if model != "" {
		attrs = append(attrs, attribute.String(AttrModel, model))
	}
	span.SetAttributes(attrs...)
}

// SetEpisodeID sets the episode identifier on a span.
func SetEpisodeID(span trace.Span, episodeID string) {
	if episodeID != "" {
		span.SetAttributes(attribute.String(AttrEpisodeID, episodeID))
	}
}

// SetInferenceID sets the inference identifier returned by the gateway.
func SetInferenceID(span trace.Span, inferenceID string) {
	if inferenceID != "" {
		span.SetAttributes(attribute.String(AttrInferenceID, inferenceID))
	}
}

// SetStreamed marks whether the call was streaming.
func SetStreamed(span trace.Span, streamed bool) {
	span.SetAttributes(attribute.Bool(AttrStreamed, streamed))
}

// SetTokenAttributes sets reported token usage on a span.
func SetTokenAttributes(span trace.Span, inputTokens, outputTokens int) {
	span.SetAttributes(
		attribute.Int(AttrTokensInput, inputTokens),
		attribute.Int(AttrTokensOutput, outputTokens),
		attribute.Int(AttrTokensTotal, inputTokens+outputTokens),
	)
}

// SetErrorAttributes records err on the span with a coarse error type
// ("auth", "rate_limit", "server_error", ...) and marks the status.
func SetErrorAttributes(span trace.Span, err error, errorType string) {
	if err == nil {
		return
	}
	span.SetAttributes(attribute.String(AttrErrorType, errorType))
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// AddEvent adds a named point-in-time event to the span, such as
// "first_chunk" on a stream.
func AddEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
