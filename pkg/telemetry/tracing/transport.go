package tracing

import (
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// Transport is an http.RoundTripper that opens a client span for each
// request and injects W3C trace context headers, so the gateway joins the
// caller's trace. Chain it into the client:
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
//	client, err := gateway.NewClient(gateway.Config{
//	    BaseURL:   cfg.Gateway.URL,
//	    Transport: tracing.NewTransport(tracer, nil),
//	})
//
// The span covers the exchange up to the response headers. Body reads,
// including SSE streams, happen after it ends.
type Transport struct {
	base   http.RoundTripper
	tracer *Tracer
}

// NewTransport wraps base with tracing. A nil base uses
// http.DefaultTransport.
func NewTransport(tracer *Tracer, base http.RoundTripper) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{base: base, tracer: tracer}
}

// RoundTrip implements http.RoundTripper. With tracing disabled the
// request passes through untouched.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.tracer == nil || !t.tracer.Enabled() {
		return t.base.RoundTrip(req)
	}

	ctx, span := t.tracer.Start(req.Context(),
		fmt.Sprintf("%s %s", req.Method, req.URL.Path),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			semconv.HTTPMethod(req.Method),
			semconv.HTTPURL(req.URL.Redacted()),
		),
	)
	defer span.End()

	// RoundTrippers must not mutate the caller's request.
	req = req.Clone(ctx)
	Inject(ctx, req.Header)

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return resp, err
	}

	span.SetAttributes(semconv.HTTPStatusCode(resp.StatusCode))
	if resp.StatusCode >= 400 {
		span.SetStatus(codes.Error, resp.Status)
	}
	return resp, nil
}
