// Package metrics provides client-side Prometheus instrumentation.
//
// # Overview
//
// The package records what the client observes of its gateway calls:
// inference counts and latencies, token usage, streaming behavior, and
// feedback submissions. Metrics live on a private registry so embedding a
// client never pollutes the process's default registry.
//
// # Metrics
//
//	inferences_total{function, variant, status}            counter
//	inference_duration_seconds{function, variant}          histogram
//	tokens_total{function, direction}                      counter
//	stream_time_to_first_token_seconds{function}           histogram
//	stream_chunks_total{function}                          counter
//	feedback_total{metric, status}                         counter
//
// All names carry the configured namespace and subsystem prefix,
// "tensorzero_client" by default.
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//
//	start := time.Now()
//	resp, err := client.Inference(ctx, req)
//	status := "ok"
//	if err != nil {
//	    status = "error"
//	}
//	collector.RecordInference("extract_entities", "baseline", status, time.Since(start))
//
// Embedders that expose a /metrics endpoint mount the handler:
//
//	http.Handle("/metrics", collector.Handler())
//
// # Cardinality
//
// Function, variant, and metric names come from configuration and are
// unbounded in principle. A limiter caps the total number of label sets;
// past the cap, new values collapse into the "other" label so a
// misbehaving caller degrades aggregation instead of memory.
package metrics
