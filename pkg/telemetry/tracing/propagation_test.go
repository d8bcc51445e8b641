package tracing

import (
	"context"
	"net/http"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

func TestValidateTraceParent(t *testing.T) {
	tests := []struct {
		name        string
		traceparent string
		want        bool
	}{
		{
			name:        "valid sampled header",
			traceparent: "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01",
			want:        true,
		},
		{
			name:        "valid unsampled header",
			traceparent: "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-00",
			want:        true,
		},
		{
			name:        "wrong field count",
			traceparent: "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7",
			want:        false,
		},
		{
			name:        "short trace ID",
			traceparent: "00-4bf92f3577b34da6-00f067aa0ba902b7-01",
			want:        false,
		},
		{
			name:        "non-hex trace ID",
			traceparent: "00-4bf92f3577b34da6a3ce929d0e0e473z-00f067aa0ba902b7-01",
			want:        false,
		},
		{
			name:        "all-zero trace ID",
			traceparent: "00-00000000000000000000000000000000-00f067aa0ba902b7-01",
			want:        false,
		},
		{
			name:        "all-zero parent ID",
			traceparent: "00-4bf92f3577b34da6a3ce929d0e0e4736-0000000000000000-01",
			want:        false,
		},
		{
			name:        "empty string",
			traceparent: "",
			want:        false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateTraceParent(tt.traceparent); got != tt.want {
				t.Errorf("ValidateTraceParent(%q) = %v, want %v", tt.traceparent, got, tt.want)
			}
		})
	}
}

func TestParseTraceParent(t *testing.T) {
	version, traceID, parentID, flags, valid := ParseTraceParent(
		"00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")

	if !valid {
		t.Fatal("ParseTraceParent() valid = false for well-formed header")
	}
	if version != "00" {
		t.Errorf("version = %q, want %q", version, "00")
	}
	if traceID != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Errorf("traceID = %q", traceID)
	}
	if parentID != "00f067aa0ba902b7" {
		t.Errorf("parentID = %q", parentID)
	}
	if flags != "01" {
		t.Errorf("flags = %q, want %q", flags, "01")
	}

	if _, _, _, _, valid := ParseTraceParent("garbage"); valid {
		t.Error("ParseTraceParent() valid = true for malformed header")
	}
}

func TestIsSampledFromTraceParent(t *testing.T) {
	tests := []struct {
		name        string
		traceparent string
		want        bool
	}{
		{
			name:        "sampled",
			traceparent: "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01",
			want:        true,
		},
		{
			name:        "not sampled",
			traceparent: "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-00",
			want:        false,
		},
		{
			name:        "sampled with extra flags",
			traceparent: "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-03",
			want:        true,
		},
		{
			name:        "malformed",
			traceparent: "not-a-header",
			want:        false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSampledFromTraceParent(tt.traceparent); got != tt.want {
				t.Errorf("IsSampledFromTraceParent(%q) = %v, want %v", tt.traceparent, got, tt.want)
			}
		})
	}
}

func TestInjectExtract_RoundTrip(t *testing.T) {
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	)

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	headers := http.Header{}
	Inject(ctx, headers)

	traceparent := headers.Get("traceparent")
	if traceparent == "" {
		t.Fatal("Inject() wrote no traceparent header")
	}
	if !ValidateTraceParent(traceparent) {
		t.Fatalf("injected traceparent is malformed: %q", traceparent)
	}
	if !IsSampledFromTraceParent(traceparent) {
		t.Errorf("injected traceparent lost the sampled flag: %q", traceparent)
	}

	extracted := Extract(context.Background(), headers)
	got := trace.SpanFromContext(extracted).SpanContext()
	if got.TraceID() != traceID {
		t.Errorf("extracted trace ID = %s, want %s", got.TraceID(), traceID)
	}
	if !got.IsSampled() {
		t.Error("extracted context lost the sampled flag")
	}
}

func TestInjectToMap_RoundTrip(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})

	traceID, _ := trace.TraceIDFromHex("a3ce929d0e0e47364bf92f3577b34da6")
	spanID, _ := trace.SpanIDFromHex("0ba902b700f067aa")
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	carrier := map[string]string{}
	InjectToMap(ctx, carrier)
	if carrier["traceparent"] == "" {
		t.Fatal("InjectToMap() wrote no traceparent entry")
	}

	extracted := ExtractFromMap(context.Background(), carrier)
	if got := trace.SpanFromContext(extracted).SpanContext().TraceID(); got != traceID {
		t.Errorf("extracted trace ID = %s, want %s", got, traceID)
	}
}
