package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// InferenceMetrics instruments inference calls against the gateway.
//
// Metrics:
//   - inferences_total{function, variant, status}: call counter
//   - inference_duration_seconds{function, variant}: latency histogram
//   - tokens_total{function, direction}: token counter, direction is
//     "input" or "output"
type InferenceMetrics struct {
	inferencesTotal   *prometheus.CounterVec
	inferenceDuration *prometheus.HistogramVec
	tokensTotal       *prometheus.CounterVec
}

// NewInferenceMetrics creates and registers the inference metrics.
func NewInferenceMetrics(namespace, subsystem string, registry *prometheus.Registry) *InferenceMetrics {
	m := &InferenceMetrics{
		inferencesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "inferences_total",
				Help:      "Total number of inference calls by function, variant, and status.",
			},
			[]string{"function", "variant", "status"},
		),
		inferenceDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "inference_duration_seconds",
				Help:      "Inference call duration in seconds.",
				Buckets:   defaultDurationBuckets,
			},
			[]string{"function", "variant"},
		),
		tokensTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "tokens_total",
				Help:      "Total tokens reported by the gateway, by function and direction.",
			},
			[]string{"function", "direction"},
		),
	}

	registry.MustRegister(m.inferencesTotal, m.inferenceDuration, m.tokensTotal)

	return m
}

// RecordInference records one call's outcome and duration.
func (m *InferenceMetrics) RecordInference(function, variant, status string, duration time.Duration) {
	m.inferencesTotal.WithLabelValues(function, variant, status).Inc()
	m.inferenceDuration.WithLabelValues(function, variant).Observe(duration.Seconds())
}

// RecordTokens adds reported token usage. Zero counts are skipped so calls
// without usage data do not create series.
func (m *InferenceMetrics) RecordTokens(function string, inputTokens, outputTokens int) {
	if inputTokens > 0 {
		m.tokensTotal.WithLabelValues(function, "input").Add(float64(inputTokens))
	}
	if outputTokens > 0 {
		m.tokensTotal.WithLabelValues(function, "output").Add(float64(outputTokens))
	}
}
