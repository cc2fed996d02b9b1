package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsConfig configures the Prometheus collectors.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "vrt").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for flush duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry receives the collectors. Default: a fresh registry owned
	// by the Metrics value, so several runtimes can coexist in one process.
	Registry *prometheus.Registry
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

// WithBuckets sets the flush duration histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry *prometheus.Registry) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "vrt",
		Buckets:   prometheus.DefBuckets,
	}
}

// Metrics collects runtime counters. It satisfies the Recorder interfaces
// of reactivity, scheduler, memdom and renderer, so one value can be
// handed to every layer:
//
//	m := telemetry.NewMetrics(telemetry.WithNamespace("app"))
//	rt := reactivity.New(reactivity.WithRecorder(m))
//	q := scheduler.NewQueue(loop, scheduler.WithRecorder(m))
//	doc := memdom.New(memdom.WithRecorder(m))
//	r := renderer.New(doc, rt, q, renderer.WithRecorder(m))
//	http.Handle("/metrics", m.Handler())
//
// Metrics collected:
//   - vrt_effect_runs_total: effect executions
//   - vrt_flushes_total: scheduler flushes
//   - vrt_flush_duration_seconds: time spent per flush
//   - vrt_flush_jobs: jobs run per flush
//   - vrt_host_ops_total: host operations by op
//   - vrt_component_renders_total: component renders by component name
//   - vrt_warnings_total: diagnostics by code
type Metrics struct {
	registry *prometheus.Registry

	effectRuns       prometheus.Counter
	flushes          prometheus.Counter
	flushDuration    prometheus.Histogram
	flushJobs        prometheus.Histogram
	hostOps          *prometheus.CounterVec
	componentRenders *prometheus.CounterVec
	warnings         *prometheus.CounterVec
}

// NewMetrics registers the runtime collectors.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.Registry == nil {
		config.Registry = prometheus.NewRegistry()
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		registry: config.Registry,

		effectRuns: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "effect_runs_total",
			Help:        "Total number of reactive effect executions",
			ConstLabels: config.ConstLabels,
		}),

		flushes: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flushes_total",
			Help:        "Total number of scheduler flushes",
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

		flushJobs: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flush_jobs",
			Help:        "Number of jobs run per scheduler flush",
			ConstLabels: config.ConstLabels,
			Buckets:     []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}),

		hostOps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "host_ops_total",
			Help:        "Total host tree operations by type",
			ConstLabels: config.ConstLabels,
		}, []string{"op"}),

		componentRenders: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "component_renders_total",
			Help:        "Total component renders by component name",
			ConstLabels: config.ConstLabels,
		}, []string{"component"}),

		warnings: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "warnings_total",
			Help:        "Total diagnostics reported by code",
			ConstLabels: config.ConstLabels,
		}, []string{"code"}),
	}
}

// EffectRun records one effect execution.
func (m *Metrics) EffectRun() {
	m.effectRuns.Inc()
}

// Flush records a completed scheduler flush.
func (m *Metrics) Flush(jobs int, d time.Duration) {
	m.flushes.Inc()
	m.flushJobs.Observe(float64(jobs))
	m.flushDuration.Observe(d.Seconds())
}

// HostOp records a host tree operation such as "create" or "insert".
func (m *Metrics) HostOp(op string) {
	m.hostOps.WithLabelValues(op).Inc()
}

// ComponentRender records a render of the named component.
func (m *Metrics) ComponentRender(name string) {
	m.componentRenders.WithLabelValues(name).Inc()
}

// Warning records a diagnostic by code.
func (m *Metrics) Warning(code string) {
	m.warnings.WithLabelValues(code).Inc()
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
