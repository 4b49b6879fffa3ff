package telemetry

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/statetrack/pkg/reactive"
)

// MetricsConfig configures the Prometheus hooks.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "statetrack").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for recompute duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus hooks.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "statetrack",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// PrometheusHooks records tracker activity as Prometheus metrics.
type PrometheusHooks struct {
	recomputes        *prometheus.CounterVec
	recomputeDuration *prometheus.HistogramVec
	batches           *prometheus.CounterVec
	batchRecomputes   prometheus.Histogram
	disposed          prometheus.Counter
	cascadeOverflows  *prometheus.CounterVec
}

// Prometheus creates hooks that register their collectors with the
// configured registry.
//
// Metrics collected:
//   - statetrack_recomputes_total: Counter of recomputations by selector and whether the value changed
//   - statetrack_recompute_duration_seconds: Histogram of recompute duration by selector
//   - statetrack_batches_total: Counter of flushed batches by store ("" for Tracker.Batch)
//   - statetrack_batch_recomputes: Histogram of recomputations per flushed batch
//   - statetrack_disposed_total: Counter of disposed or collected selectors
//   - statetrack_cascade_overflows_total: Counter of cascade limit violations by selector
//
// Registering twice with the same registry panics, as with promauto.
func Prometheus(opts ...MetricsOption) *PrometheusHooks {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &PrometheusHooks{
		recomputes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "recomputes_total",
			Help:        "Total number of selector recomputations",
			ConstLabels: config.ConstLabels,
		}, []string{"selector", "changed"}),

		recomputeDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "recompute_duration_seconds",
			Help:        "Selector recomputation duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"selector"}),

		batches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "batches_total",
			Help:        "Total number of flushed batches",
			ConstLabels: config.ConstLabels,
		}, []string{"store"}),

		batchRecomputes: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "batch_recomputes",
			Help:        "Number of recomputations per flushed batch",
			ConstLabels: config.ConstLabels,
			Buckets:     []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}),

		disposed: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "disposed_total",
			Help:        "Total number of disposed or collected selectors",
			ConstLabels: config.ConstLabels,
		}),

		cascadeOverflows: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "cascade_overflows_total",
			Help:        "Total number of flushes aborted by the cascade limit",
			ConstLabels: config.ConstLabels,
		}, []string{"selector"}),
	}
}

// FlushStarted implements reactive.Hooks.
func (p *PrometheusHooks) FlushStarted(scope string) func(int) {
	return func(recomputed int) {
		p.batches.WithLabelValues(scope).Inc()
		p.batchRecomputes.Observe(float64(recomputed))
	}
}

// Recomputed implements reactive.Hooks.
func (p *PrometheusHooks) Recomputed(selector string, elapsed time.Duration, changed bool) {
	p.recomputes.WithLabelValues(selector, strconv.FormatBool(changed)).Inc()
	p.recomputeDuration.WithLabelValues(selector).Observe(elapsed.Seconds())
}

// Disposed implements reactive.Hooks.
func (p *PrometheusHooks) Disposed(string) {
	p.disposed.Inc()
}

// CascadeExceeded implements reactive.Hooks.
func (p *PrometheusHooks) CascadeExceeded(selector string, _ int) {
	p.cascadeOverflows.WithLabelValues(selector).Inc()
}

var _ reactive.Hooks = (*PrometheusHooks)(nil)
