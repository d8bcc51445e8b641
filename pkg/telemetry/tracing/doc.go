// Package tracing provides OpenTelemetry tracing for gateway calls.
//
// # Overview
//
// The package wires up the OpenTelemetry SDK (OTLP gRPC export, ratio
// sampling, W3C trace context propagation) and provides Transport, an
// http.RoundTripper that opens a client span per gateway request and
// injects the traceparent header. The gateway propagates trace context to
// model providers, so a single trace spans the caller, the gateway, and
// the provider call.
//
// # Usage
//
//	tracer, err := tracing.New(&config.TracingConfig{
//	    Enabled:     true,
//	    Endpoint:    "localhost:4317",
//	    ServiceName: "my-service",
//	    SampleRatio: 0.1,
//	    Insecure:    true,
//	})
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	client, err := gateway.NewClient(gateway.Config{
//	    BaseURL:   "http://localhost:3000",
//	    Transport: tracing.NewTransport(tracer, nil),
//	})
//
// Wrap application operations in their own spans to group gateway calls:
//
//	ctx, span := tracer.Start(ctx, "handle_ticket")
//	defer span.End()
//	tracing.SetInferenceAttributes(span, "classify_ticket", "", "")
//
// # Sampling
//
// SampleRatio controls root sampling: 0 samples nothing, 1 everything,
// anything between samples by trace-ID hash. Requests arriving with an
// upstream sampling decision keep it regardless of the ratio.
//
// # Propagation
//
// Transport injects headers automatically. For hand-built requests or
// non-HTTP carriers, Inject, Extract, and their map variants expose the
// propagator directly, and the traceparent helpers (ValidateTraceParent,
// ParseTraceParent, IsSampledFromTraceParent) parse the header format.
package tracing
