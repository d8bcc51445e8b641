package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tensorzero/tensorzero-go/pkg/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// newTestTracer builds an enabled Tracer over an exporter-less provider so
// transports can be exercised without a collector.
func newTestTracer(t *testing.T) *Tracer {
	t.Helper()

	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
	})

	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	t.Cleanup(func() {
		otel.SetTextMapPropagator(prev)
	})

	return &Tracer{
		tracer:   tp.Tracer("test"),
		provider: tp,
		enabled:  true,
	}
}

func TestTransport_InjectsTraceParent(t *testing.T) {
	var captured string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r.Header.Get("traceparent")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	tracer := newTestTracer(t)
	client := &http.Client{Transport: NewTransport(tracer, nil)}

	resp, err := client.Get(server.URL + "/inference")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	resp.Body.Close()

	if captured == "" {
		t.Fatal("server received no traceparent header")
	}
	if !ValidateTraceParent(captured) {
		t.Errorf("ValidateTraceParent(%q) = false, want true", captured)
	}
	if !IsSampledFromTraceParent(captured) {
		t.Errorf("traceparent %q not sampled under the default sampler", captured)
	}
}

func TestTransport_JoinsCallerTrace(t *testing.T) {
	var captured string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r.Header.Get("traceparent")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	tracer := newTestTracer(t)
	client := &http.Client{Transport: NewTransport(tracer, nil)}

	ctx, parent := tracer.Start(context.Background(), "caller")
	defer parent.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/inference", nil)
	if err != nil {
		t.Fatalf("NewRequestWithContext() error = %v", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	resp.Body.Close()

	_, traceID, parentID, _, valid := ParseTraceParent(captured)
	if !valid {
		t.Fatalf("ParseTraceParent(%q) valid = false", captured)
	}
	if want := TraceID(ctx); traceID != want {
		t.Errorf("propagated trace ID = %s, want caller trace ID %s", traceID, want)
	}
	if parentID == SpanID(ctx) {
		t.Error("propagated span ID matches the caller span, want the transport's child span")
	}
}

func TestTransport_DoesNotMutateRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	tracer := newTestTracer(t)
	client := &http.Client{Transport: NewTransport(tracer, nil)}

	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	resp.Body.Close()

	if got := req.Header.Get("traceparent"); got != "" {
		t.Errorf("caller request header mutated, traceparent = %q", got)
	}
}

func TestTransport_Disabled(t *testing.T) {
	var sawHeader bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawHeader = r.Header.Get("traceparent") != ""
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	tracer, err := New(&config.TracingConfig{Enabled: false})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	client := &http.Client{Transport: NewTransport(tracer, nil)}

	resp, err := client.Get(server.URL)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	resp.Body.Close()

	if sawHeader {
		t.Error("disabled transport injected a traceparent header")
	}
}

type errorRoundTripper struct {
	err error
}

func (rt *errorRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, rt.err
}

func TestTransport_PropagatesBaseError(t *testing.T) {
	wantErr := errors.New("connection refused")
	tracer := newTestTracer(t)
	transport := NewTransport(tracer, &errorRoundTripper{err: wantErr})

	req, err := http.NewRequest(http.MethodPost, "http://gateway.invalid/inference", nil)
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	_, err = transport.RoundTrip(req)
	if !errors.Is(err, wantErr) {
		t.Errorf("RoundTrip() error = %v, want %v", err, wantErr)
	}
}

func TestNewTransport_DefaultBase(t *testing.T) {
	transport := NewTransport(newTestTracer(t), nil)
	if transport.base != http.DefaultTransport {
		t.Error("NewTransport(tracer, nil) did not fall back to http.DefaultTransport")
	}
}
