package metrics

import (
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tensorzero/tensorzero-go/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func testConfig() *config.MetricsConfig {
	return &config.MetricsConfig{
		Enabled:   true,
		Namespace: "test",
		Subsystem: "client",
	}
}

func TestNewCollector(t *testing.T) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()

	collector := NewCollector(cfg, registry)

	if collector == nil {
		t.Fatal("NewCollector() = nil")
	}
	if !collector.Enabled() {
		t.Error("Enabled() = false for enabled config")
	}
	if collector.Registry() != registry {
		t.Error("Registry() does not return the provided registry")
	}
}

func TestNewCollector_PrivateRegistry(t *testing.T) {
	collector := NewCollector(testConfig(), nil)

	if collector.Registry() == nil {
		t.Fatal("Registry() = nil, want a private registry")
	}
	if collector.Registry() == prometheus.DefaultRegisterer {
		t.Error("collector registered on the global default registry")
	}
}

func TestCollector_RecordInference(t *testing.T) {
	collector := NewCollector(testConfig(), nil)

	tests := []struct {
		name     string
		function string
		variant  string
		status   string
		duration time.Duration
	}{
		{
			name:     "successful call",
			function: "extract_entities",
			variant:  "baseline",
			status:   "ok",
			duration: 1200 * time.Millisecond,
		},
		{
			name:     "failed call",
			function: "extract_entities",
			variant:  "baseline",
			status:   "error",
			duration: 30 * time.Millisecond,
		},
		{
			name:     "model shorthand function",
			function: "tensorzero::model_name::gpt-4o-mini",
			variant:  "",
			status:   "ok",
			duration: 800 * time.Millisecond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			collector.RecordInference(tt.function, tt.variant, tt.status, tt.duration)

			count := testutil.ToFloat64(
				collector.inference.inferencesTotal.WithLabelValues(tt.function, tt.variant, tt.status))
			if count < 1 {
				t.Errorf("inference counter = %f, want >= 1", count)
			}
		})
	}

	// Three calls over two function/variant pairs.
	series := testutil.CollectAndCount(collector.inference.inferenceDuration)
	if series != 2 {
		t.Errorf("duration histogram series = %d, want 2", series)
	}
}

func TestCollector_RecordTokens(t *testing.T) {
	collector := NewCollector(testConfig(), nil)

	collector.RecordTokens("summarize", 1500, 300)
	collector.RecordTokens("summarize", 500, 0)

	input := testutil.ToFloat64(collector.inference.tokensTotal.WithLabelValues("summarize", "input"))
	if input != 2000 {
		t.Errorf("input tokens = %f, want 2000", input)
	}
	output := testutil.ToFloat64(collector.inference.tokensTotal.WithLabelValues("summarize", "output"))
	if output != 300 {
		t.Errorf("output tokens = %f, want 300", output)
	}
}

func TestCollector_RecordStream(t *testing.T) {
	collector := NewCollector(testConfig(), nil)

	collector.RecordTimeToFirstToken("chat", 150*time.Millisecond)
	collector.RecordChunks("chat", 42)
	collector.RecordChunks("chat", 0) // skipped

	if n := testutil.CollectAndCount(collector.stream.timeToFirstToken); n != 1 {
		t.Errorf("TTFT histogram series = %d, want 1", n)
	}
	chunks := testutil.ToFloat64(collector.stream.chunksTotal.WithLabelValues("chat"))
	if chunks != 42 {
		t.Errorf("chunk counter = %f, want 42", chunks)
	}
}

func TestCollector_RecordFeedback(t *testing.T) {
	collector := NewCollector(testConfig(), nil)

	collector.RecordFeedback("task_success", "ok")
	collector.RecordFeedback("task_success", "ok")
	collector.RecordFeedback("task_success", "error")

	ok := testutil.ToFloat64(collector.feedback.feedbackTotal.WithLabelValues("task_success", "ok"))
	if ok != 2 {
		t.Errorf("ok feedback counter = %f, want 2", ok)
	}
	failed := testutil.ToFloat64(collector.feedback.feedbackTotal.WithLabelValues("task_success", "error"))
	if failed != 1 {
		t.Errorf("error feedback counter = %f, want 1", failed)
	}
}

func TestCollector_Disabled(t *testing.T) {
	collector := NewCollector(&config.MetricsConfig{Enabled: false}, nil)

	// All record methods must be safe no-ops.
	collector.RecordInference("f", "v", "ok", time.Second)
	collector.RecordTokens("f", 100, 100)
	collector.RecordTimeToFirstToken("f", time.Millisecond)
	collector.RecordChunks("f", 1)
	collector.RecordFeedback("m", "ok")

	families, err := collector.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	if len(families) != 0 {
		t.Errorf("disabled collector registered %d metric families, want 0", len(families))
	}
}

func TestCollector_NilConfig(t *testing.T) {
	collector := NewCollector(nil, nil)

	if collector.Enabled() {
		t.Error("Enabled() = true for nil config")
	}
	collector.RecordInference("f", "v", "ok", time.Second)
}

func TestCardinalityLimiter(t *testing.T) {
	limiter := NewCardinalityLimiter(3)

	for i := 0; i < 3; i++ {
		if !limiter.Allow(fmt.Sprintf("set-%d", i)) {
			t.Errorf("Allow(set-%d) = false within limit", i)
		}
	}
	if limiter.Allow("set-3") {
		t.Error("Allow() = true past the limit")
	}
	// Known sets stay allowed after the limit is hit.
	if !limiter.Allow("set-0") {
		t.Error("Allow() = false for an admitted set")
	}
	if limiter.Count() != 3 {
		t.Errorf("Count() = %d, want 3", limiter.Count())
	}
}

func TestCollector_CardinalityOverflow(t *testing.T) {
	collector := NewCollector(testConfig(), nil)
	collector.cardinality = NewCardinalityLimiter(1)

	collector.RecordInference("first", "a", "ok", time.Second)
	collector.RecordInference("second", "b", "ok", time.Second)

	// The second call's variant collapses into the overflow label.
	count := testutil.ToFloat64(
		collector.inference.inferencesTotal.WithLabelValues("second", Overflow, "ok"))
	if count != 1 {
		t.Errorf("overflow counter = %f, want 1", count)
	}
}

func TestCollector_Handler(t *testing.T) {
	collector := NewCollector(testConfig(), nil)
	collector.RecordInference("extract_entities", "baseline", "ok", time.Second)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("scrape status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "test_client_inferences_total") {
		t.Errorf("exposition missing inference counter:\n%s", body)
	}
	if !strings.Contains(body, `function="extract_entities"`) {
		t.Errorf("exposition missing function label:\n%s", body)
	}
}
