package tracing

import (
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// newSampler maps the configured sample ratio onto a sampler. A ratio of 0
// or less samples nothing, 1 or more samples everything, and anything in
// between samples by trace-ID hash so every service in a distributed trace
// reaches the same decision for the same trace.
//
// The result is wrapped in ParentBased: when a request arrives with an
// upstream sampling decision, that decision wins, keeping traces whole
// across service boundaries. The ratio only governs root spans.
func newSampler(ratio float64) sdktrace.Sampler {
	var base sdktrace.Sampler
	switch {
	case ratio <= 0:
		base = sdktrace.NeverSample()
	case ratio >= 1:
		base = sdktrace.AlwaysSample()
	default:
		base = sdktrace.TraceIDRatioBased(ratio)
	}
	return sdktrace.ParentBased(base)
}
