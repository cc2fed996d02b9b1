package vrt

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/vrt/internal/config"
	"github.com/vango-dev/vrt/pkg/scheduler"
	"github.com/vango-dev/vrt/pkg/telemetry"
)

// Config wires the runtime layers of an App.
type Config struct {
	// Logger receives diagnostics from every layer.
	// If nil, slog.Default() is used.
	Logger *slog.Logger

	// RecursionLimit bounds how often one job may run in a single flush.
	// Default: scheduler.DefaultRecursionLimit.
	RecursionLimit int

	// QueueSize is the capacity of the loop's posted task channel.
	// Default: scheduler.DefaultQueueSize.
	QueueSize int

	// Clock stamps host events and listener attachment.
	// If nil, time.Now is used.
	Clock func() time.Time

	// Metrics, when set, records effect runs, flushes, host operations,
	// component renders and warnings.
	Metrics *telemetry.Metrics

	// Tracer receives one span per flush and per component render.
	// If nil, the global OpenTelemetry tracer is used.
	Tracer trace.Tracer
}

// DefaultConfig returns a Config with every default filled in.
func DefaultConfig() Config {
	return Config{
		Logger:         slog.Default(),
		RecursionLimit: scheduler.DefaultRecursionLimit,
		QueueSize:      scheduler.DefaultQueueSize,
		Clock:          time.Now,
	}
}

// FromFile translates a vrt.json configuration. Metrics are created when
// enabled; tracing is left to the caller because its provider outlives
// the App.
func FromFile(fc *config.Config, logger *slog.Logger) Config {
	cfg := DefaultConfig()
	if logger != nil {
		cfg.Logger = logger
	}
	if fc.Scheduler.RecursionLimit > 0 {
		cfg.RecursionLimit = fc.Scheduler.RecursionLimit
	}
	if fc.Metrics.Enabled {
		cfg.Metrics = telemetry.NewMetrics(telemetry.WithNamespace(fc.Metrics.Namespace))
	}
	return cfg
}

func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.Logger == nil {
		c.Logger = def.Logger
	}
	if c.RecursionLimit <= 0 {
		c.RecursionLimit = def.RecursionLimit
	}
	if c.QueueSize <= 0 {
		c.QueueSize = def.QueueSize
	}
	if c.Clock == nil {
		c.Clock = def.Clock
	}
}
