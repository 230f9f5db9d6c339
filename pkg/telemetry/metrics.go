package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/reactor/pkg/reactive"
)

// MetricsConfig configures the Prometheus collectors.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "reactor").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for flush and watcher durations.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus collectors.
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
		Namespace: "reactor",
		// 10µs to ~2.6s
		Buckets:  prometheus.ExponentialBuckets(0.00001, 4, 10),
		Registry: prometheus.DefaultRegisterer,
	}
}

// Metrics records runtime activity as Prometheus metrics:
//
//   - reactor_flushes_total: Counter of completed scheduler flushes
//   - reactor_flush_duration_seconds: Histogram of flush duration
//   - reactor_flush_watchers: Histogram of distinct watchers per flush
//   - reactor_watcher_runs_total: Counter of watcher runs by mode
//   - reactor_watcher_duration_seconds: Histogram of watcher run time by mode
//   - reactor_update_loops_total: Counter of watchers suppressed by the update bound
//   - reactor_updated_hooks_total: Counter of updated hooks fired
//   - reactor_errors_total: Counter of reported errors by kind and code
//   - reactor_host_operations_total: Counter of host operations by op (see Host)
type Metrics struct {
	flushes         prometheus.Counter
	flushDuration   prometheus.Histogram
	flushWatchers   prometheus.Histogram
	watcherRuns     *prometheus.CounterVec
	watcherDuration *prometheus.HistogramVec
	updateLoops     prometheus.Counter
	updatedHooks    prometheus.Counter
	errors          *prometheus.CounterVec
	hostOps         *prometheus.CounterVec
}

var _ reactive.Instrumentation = (*Metrics)(nil)

// NewMetrics registers the collectors and returns them.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		flushes: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flushes_total",
			Help:        "Total number of completed scheduler flushes",
			ConstLabels: config.ConstLabels,
		}),

		flushDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flush_duration_seconds",
			Help:        "Scheduler flush duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		flushWatchers: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flush_watchers",
			Help:        "Distinct watchers run per flush",
			ConstLabels: config.ConstLabels,
			Buckets:     []float64{1, 2, 5, 10, 25, 50, 100, 250, 1000},
		}),

		watcherRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "watcher_runs_total",
			Help:        "Total number of scheduled watcher runs",
			ConstLabels: config.ConstLabels,
		}, []string{"mode"}),

		watcherDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "watcher_duration_seconds",
			Help:        "Watcher run duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"mode"}),

		updateLoops: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "update_loops_total",
			Help:        "Total number of watchers suppressed as infinite update loops",
			ConstLabels: config.ConstLabels,
		}),

		updatedHooks: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "updated_hooks_total",
			Help:        "Total number of updated hooks fired after flushes",
			ConstLabels: config.ConstLabels,
		}),

		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "errors_total",
			Help:        "Total reported errors and warnings by kind and code",
			ConstLabels: config.ConstLabels,
		}, []string{"kind", "code"}),

		hostOps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "host_operations_total",
			Help:        "Total host tree operations performed by the patcher",
			ConstLabels: config.ConstLabels,
		}, []string{"op"}),
	}
}

// Flushed implements reactive.Instrumentation.
func (m *Metrics) Flushed(stats reactive.FlushStats) {
	m.flushes.Inc()
	m.flushDuration.Observe(stats.Duration.Seconds())
	m.flushWatchers.Observe(float64(stats.Queued))
	if stats.Loops > 0 {
		m.updateLoops.Add(float64(stats.Loops))
	}
	if stats.Updated > 0 {
		m.updatedHooks.Add(float64(stats.Updated))
	}
}

// WatcherRan implements reactive.Instrumentation.
func (m *Metrics) WatcherRan(mode reactive.Mode, d time.Duration) {
	label := mode.String()
	m.watcherRuns.WithLabelValues(label).Inc()
	m.watcherDuration.WithLabelValues(label).Observe(d.Seconds())
}

// Reported implements reactive.Instrumentation.
func (m *Metrics) Reported(err *reactive.Error) {
	m.errors.WithLabelValues(err.Kind.String(), err.Code).Inc()
}
