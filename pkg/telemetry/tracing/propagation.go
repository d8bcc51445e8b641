package tracing

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// W3C trace context travels in the traceparent header:
//
//	traceparent: 00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01
//	             ^version ^trace_id (32 hex)        ^parent_id (16)  ^flags
//
// Bit 0 of the flags byte marks the trace as sampled. The optional
// tracestate header carries vendor data and is passed through untouched.

// Propagator returns the process-global text map propagator. New installs
// a composite of W3C trace context and baggage.
func Propagator() propagation.TextMapPropagator {
	return otel.GetTextMapPropagator()
}

// Inject writes the trace context from ctx into HTTP headers. Transport
// does this automatically; call it directly when building requests by
// hand:
//
//	req, _ := http.NewRequestWithContext(ctx, "POST", url, body)
//	tracing.Inject(ctx, req.Header)
func Inject(ctx context.Context, headers http.Header) {
	Propagator().Inject(ctx, propagation.HeaderCarrier(headers))
}

// Extract returns a context carrying the trace context found in HTTP
// headers, for embedders that are themselves servers. Without trace
// headers the original context is returned.
func Extract(ctx context.Context, headers http.Header) context.Context {
	return Propagator().Extract(ctx, propagation.HeaderCarrier(headers))
}

// InjectToMap writes the trace context from ctx into a string map, for
// non-HTTP carriers such as job payloads.
func InjectToMap(ctx context.Context, carrier map[string]string) {
	Propagator().Inject(ctx, propagation.MapCarrier(carrier))
}

// ExtractFromMap returns a context carrying the trace context found in a
// string map.
func ExtractFromMap(ctx context.Context, carrier map[string]string) context.Context {
	return Propagator().Extract(ctx, propagation.MapCarrier(carrier))
}

// ValidateTraceParent reports whether a traceparent header is well formed:
// four hex fields of sizes 2, 32, 16, and 2, with nonzero trace and parent
// IDs.
func ValidateTraceParent(traceparent string) bool {
	parts := strings.Split(traceparent, "-")
	if len(parts) != 4 {
		return false
	}
	if len(parts[0]) != 2 || !isHexString(parts[0]) {
		return false
	}
	if len(parts[1]) != 32 || !isHexString(parts[1]) {
		return false
	}
	if len(parts[2]) != 16 || !isHexString(parts[2]) {
		return false
	}
	if len(parts[3]) != 2 || !isHexString(parts[3]) {
		return false
	}
	if parts[1] == strings.Repeat("0", 32) {
		return false
	}
	if parts[2] == strings.Repeat("0", 16) {
		return false
	}
	return true
}

// ParseTraceParent splits a traceparent header into its fields. valid is
// false, with empty fields, when the header is malformed.
func ParseTraceParent(traceparent string) (version, traceID, parentID, flags string, valid bool) {
	if !ValidateTraceParent(traceparent) {
		return "", "", "", "", false
	}
	parts := strings.Split(traceparent, "-")
	return parts[0], parts[1], parts[2], parts[3], true
}

// IsSampledFromTraceParent reports whether a traceparent header has the
// sampled flag set. Malformed headers read as not sampled.
func IsSampledFromTraceParent(traceparent string) bool {
	_, _, _, flags, valid := ParseTraceParent(traceparent)
	if !valid {
		return false
	}
	value, err := strconv.ParseUint(flags, 16, 8)
	if err != nil {
		return false
	}
	return value&0x01 == 0x01
}

func isHexString(s string) bool {
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}
