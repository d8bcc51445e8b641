package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StreamMetrics instruments streaming inference calls.
//
// Metrics:
//   - stream_time_to_first_token_seconds{function}: wait for the first
//     chunk, the latency a user actually perceives
//   - stream_chunks_total{function}: delivered chunk counter
type StreamMetrics struct {
	timeToFirstToken *prometheus.HistogramVec
	chunksTotal      *prometheus.CounterVec
}

// NewStreamMetrics creates and registers the streaming metrics.
func NewStreamMetrics(namespace, subsystem string, registry *prometheus.Registry) *StreamMetrics {
	m := &StreamMetrics{
		timeToFirstToken: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "stream_time_to_first_token_seconds",
				Help:      "Time from stream start to the first received chunk, in seconds.",
				Buckets:   defaultTTFTBuckets,
			},
			[]string{"function"},
		),
		chunksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "stream_chunks_total",
				Help:      "Total chunks delivered on inference streams.",
			},
			[]string{"function"},
		),
	}

	registry.MustRegister(m.timeToFirstToken, m.chunksTotal)

	return m
}

// RecordTimeToFirstToken records the first-chunk wait of one stream.
func (m *StreamMetrics) RecordTimeToFirstToken(function string, wait time.Duration) {
	m.timeToFirstToken.WithLabelValues(function).Observe(wait.Seconds())
}

// RecordChunks adds delivered chunks to the counter.
func (m *StreamMetrics) RecordChunks(function string, count int) {
	if count > 0 {
		m.chunksTotal.WithLabelValues(function).Add(float64(count))
	}
}
