package metrics

import (
	"fmt"
	"sync"
	"time"

	"github.com/tensorzero/tensorzero-go/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Default histogram buckets. The configuration carries no bucket settings,
// so these cover the ranges typical of gateway calls: latencies from tens
// of milliseconds to a minute, first-token waits well under that.
var (
	defaultDurationBuckets = []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}
	defaultTTFTBuckets     = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}
)

// maxCardinality bounds the number of unique label sets across all metrics.
const maxCardinality = 10000

// Overflow is the label value that absorbs new series once the cardinality
// limit is reached.
const Overflow = "other"

// Collector owns the client's Prometheus metrics. All Record methods are
// safe for concurrent use and are no-ops when metrics are disabled.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry
	enabled  bool

	inference *InferenceMetrics
	stream    *StreamMetrics
	feedback  *FeedbackMetrics

	cardinality *CardinalityLimiter
}

// NewCollector creates a Collector from cfg, registering every metric on
// registry. A nil registry gets a fresh private one, keeping client metrics
// out of the global default registry of the embedding process.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := &Collector{
		config:      cfg,
		registry:    registry,
		enabled:     cfg != nil && cfg.Enabled,
		cardinality: NewCardinalityLimiter(maxCardinality),
	}
	if !c.enabled {
		return c
	}

	namespace := cfg.Namespace
	if namespace == "" {
		namespace = "tensorzero"
	}
	subsystem := cfg.Subsystem
	if subsystem == "" {
		subsystem = "client"
	}

	c.inference = NewInferenceMetrics(namespace, subsystem, registry)
	c.stream = NewStreamMetrics(namespace, subsystem, registry)
	c.feedback = NewFeedbackMetrics(namespace, subsystem, registry)

	return c
}

// RecordInference records one inference call: its count by status and its
// duration. Status is "ok" or "error".
func (c *Collector) RecordInference(function, variant, status string, duration time.Duration) {
	if !c.enabled {
		return
	}

	labelSet := fmt.Sprintf("inference:%s:%s:%s", function, variant, status)
	if !c.cardinality.Allow(labelSet) {
		variant = Overflow
	}

	c.inference.RecordInference(function, variant, status, duration)
}

// RecordTokens records token usage reported by the gateway for one call.
func (c *Collector) RecordTokens(function string, inputTokens, outputTokens int) {
	if !c.enabled {
		return
	}

	if !c.cardinality.Allow("tokens:" + function) {
		function = Overflow
	}

	c.inference.RecordTokens(function, inputTokens, outputTokens)
}

// RecordTimeToFirstToken records how long a streaming call waited for its
// first chunk.
func (c *Collector) RecordTimeToFirstToken(function string, wait time.Duration) {
	if !c.enabled {
		return
	}

	if !c.cardinality.Allow("stream:" + function) {
		function = Overflow
	}

	c.stream.RecordTimeToFirstToken(function, wait)
}

// RecordChunks adds to the chunk counter of a streaming call.
func (c *Collector) RecordChunks(function string, count int) {
	if !c.enabled {
		return
	}

	if !c.cardinality.Allow("stream:" + function) {
		function = Overflow
	}

	c.stream.RecordChunks(function, count)
}

// RecordFeedback records one feedback submission. Status is "ok" or
// "error".
func (c *Collector) RecordFeedback(metric, status string) {
	if !c.enabled {
		return
	}

	labelSet := fmt.Sprintf("feedback:%s:%s", metric, status)
	if !c.cardinality.Allow(labelSet) {
		metric = Overflow
	}

	c.feedback.RecordFeedback(metric, status)
}

// Enabled reports whether the collector records anything.
func (c *Collector) Enabled() bool {
	return c.enabled
}

// Registry returns the collector's registry, for embedders that mount their
// own promhttp handler or register additional metrics beside the client's.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter bounds the number of unique label sets so unchecked
// function or metric names cannot grow the series count without limit.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a limiter that admits up to maxCardinality
// distinct label sets.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow reports whether labelSet may be recorded as-is. Known sets are
// always allowed; new sets are admitted until the limit is reached.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	// Double-check after acquiring the write lock.
	if _, exists := cl.current[labelSet]; exists {
		return true
	}

	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current number of admitted label sets.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
