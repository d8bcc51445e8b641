package main

import (
	"math"
	"testing"
	"time"

	"github.com/tensorzero/tensorzero-go/pkg/gateway"
)

// saveBenchFlags snapshots the bench flag variables so tests can mutate
// them freely.
func saveBenchFlags(t *testing.T) {
	t.Helper()
	orig := benchFlags
	t.Cleanup(func() { benchFlags = orig })
}

func TestPercentileEmpty(t *testing.T) {
	if got := percentile(nil, 50); got != 0 {
		t.Errorf("percentile(nil, 50) = %v, want 0", got)
	}
}

func TestPercentileSingle(t *testing.T) {
	sorted := []time.Duration{42 * time.Millisecond}
	for _, p := range []float64{50, 95, 99} {
		if got := percentile(sorted, p); got != 42*time.Millisecond {
			t.Errorf("percentile(single, %v) = %v, want 42ms", p, got)
		}
	}
}

func TestPercentileDistribution(t *testing.T) {
	// 1ms..100ms, so the nearest-rank percentile is the value itself.
	sorted := make([]time.Duration, 100)
	for i := range sorted {
		sorted[i] = time.Duration(i+1) * time.Millisecond
	}

	cases := []struct {
		p    float64
		want time.Duration
	}{
		{50, 50 * time.Millisecond},
		{95, 95 * time.Millisecond},
		{99, 99 * time.Millisecond},
		{100, 100 * time.Millisecond},
	}
	for _, tc := range cases {
		if got := percentile(sorted, tc.p); got != tc.want {
			t.Errorf("percentile(1..100ms, %v) = %v, want %v", tc.p, got, tc.want)
		}
	}
}

func TestBuildBenchReport(t *testing.T) {
	saveBenchFlags(t)
	benchFlags.rate = 10
	benchFlags.concurrency = 4

	req := &gateway.InferenceRequest{FunctionName: "chat"}
	// Unsorted on purpose; the report sorts before ranking.
	latencies := []time.Duration{
		30 * time.Millisecond,
		10 * time.Millisecond,
		40 * time.Millisecond,
		20 * time.Millisecond,
	}

	report := buildBenchReport(req, latencies, 1, time.Second)

	if report.Target != "chat" {
		t.Errorf("Target = %q, want %q", report.Target, "chat")
	}
	if report.Requests != 5 {
		t.Errorf("Requests = %d, want 5", report.Requests)
	}
	if report.Failures != 1 {
		t.Errorf("Failures = %d, want 1", report.Failures)
	}
	if math.Abs(report.Throughput-5.0) > 0.01 {
		t.Errorf("Throughput = %v, want 5.0", report.Throughput)
	}
	if report.MinMS != 10 {
		t.Errorf("MinMS = %v, want 10", report.MinMS)
	}
	if report.MaxMS != 40 {
		t.Errorf("MaxMS = %v, want 40", report.MaxMS)
	}
	if report.MeanMS != 25 {
		t.Errorf("MeanMS = %v, want 25", report.MeanMS)
	}
	if report.P50MS != 20 {
		t.Errorf("P50MS = %v, want 20", report.P50MS)
	}
	if report.P95MS != 40 {
		t.Errorf("P95MS = %v, want 40", report.P95MS)
	}
}

func TestBuildBenchReportAllFailures(t *testing.T) {
	saveBenchFlags(t)
	benchFlags.rate = 10
	benchFlags.concurrency = 4

	req := &gateway.InferenceRequest{ModelName: "openai::gpt-4o-mini"}
	report := buildBenchReport(req, nil, 3, time.Second)

	if report.Requests != 3 {
		t.Errorf("Requests = %d, want 3", report.Requests)
	}
	if report.Failures != 3 {
		t.Errorf("Failures = %d, want 3", report.Failures)
	}
	if report.P50MS != 0 {
		t.Errorf("P50MS = %v, want 0 with no successful requests", report.P50MS)
	}
}

func TestDurationMS(t *testing.T) {
	if got := durationMS(1500 * time.Millisecond); got != 1500 {
		t.Errorf("durationMS(1.5s) = %v, want 1500", got)
	}
	if got := durationMS(250 * time.Microsecond); got != 0.25 {
		t.Errorf("durationMS(250µs) = %v, want 0.25", got)
	}
}
