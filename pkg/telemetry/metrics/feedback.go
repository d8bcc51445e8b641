package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// FeedbackMetrics instruments feedback submissions.
//
// Metrics:
//   - feedback_total{metric, status}: submission counter by feedback
//     metric name and outcome
type FeedbackMetrics struct {
	feedbackTotal *prometheus.CounterVec
}

// NewFeedbackMetrics creates and registers the feedback metrics.
func NewFeedbackMetrics(namespace, subsystem string, registry *prometheus.Registry) *FeedbackMetrics {
	m := &FeedbackMetrics{
		feedbackTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "feedback_total",
				Help:      "Total feedback submissions by metric name and status.",
			},
			[]string{"metric", "status"},
		),
	}

	registry.MustRegister(m.feedbackTotal)

	return m
}

// RecordFeedback records one feedback submission.
func (m *FeedbackMetrics) RecordFeedback(metric, status string) {
	m.feedbackTotal.WithLabelValues(metric, status).Inc()
}
