package metrics

import (
	"testing"
	"time"
)

func BenchmarkCollector_RecordInference(b *testing.B) {
	collector := NewCollector(testConfig(), nil)

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		collector.RecordInference("extract_entities", "baseline", "ok", time.Second)
	}
}

func BenchmarkCollector_RecordInference_Disabled(b *testing.B) {
	collector := NewCollector(nil, nil)

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		collector.RecordInference("extract_entities", "baseline", "ok", time.Second)
	}
}

func BenchmarkCardinalityLimiter_Allow(b *testing.B) {
	limiter := NewCardinalityLimiter(maxCardinality)
	limiter.Allow("inference:f:v:ok")

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		limiter.Allow("inference:f:v:ok")
	}
}
