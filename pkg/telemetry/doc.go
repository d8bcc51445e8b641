// Package telemetry groups the observability subpackages of the TensorZero
// client.
//
// # Components
//
//   - logging: structured slog logging with credential redaction
//   - metrics: Prometheus metrics for gateway calls
//   - tracing: OpenTelemetry spans and trace propagation
//
// # Usage
//
//	logger, err := logging.FromConfig(&cfg.Telemetry.Logging)
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	collector.RecordInference("extract_entities", "baseline", "ok", elapsed)
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
//	defer tracer.Shutdown(ctx)
//	ctx, span := tracer.Start(ctx, "inference")
//	defer span.End()
//
// Each subpackage is usable on its own; nothing here requires the others.
//
// # Credential redaction
//
// Loggers built with redaction enabled mask credentials before they reach a
// handler: vendor-style secret keys (sk-...), bearer and basic-auth values,
// key=value pairs whose key names a secret, and the values of log fields
// with credential-like names (api_key, token, authorization). See
// logging.NewRedactor for the built-in patterns.
package telemetry
