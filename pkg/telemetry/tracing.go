package telemetry

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// DefaultTracerName is used when no tracer name is configured.
const DefaultTracerName = "vrt"

// Tracer returns a tracer from the global provider.
func Tracer(name string) trace.Tracer {
	if name == "" {
		name = DefaultTracerName
	}
	return otel.Tracer(name)
}

// Tracing holds an SDK tracer provider installed as the global provider.
type Tracing struct {
	provider *sdktrace.TracerProvider
	previous trace.TracerProvider
	name     string
}

// SetupTracing installs an SDK tracer provider exporting synchronously to
// the given exporters. Call Shutdown to flush and restore the previous
// global provider.
func SetupTracing(name string, exporters ...sdktrace.SpanExporter) *Tracing {
	if name == "" {
		name = DefaultTracerName
	}
	opts := make([]sdktrace.TracerProviderOption, 0, len(exporters))
	for _, exp := range exporters {
		opts = append(opts, sdktrace.WithSyncer(exp))
	}
	tp := sdktrace.NewTracerProvider(opts...)

	t := &Tracing{provider: tp, previous: otel.GetTracerProvider(), name: name}
	otel.SetTracerProvider(tp)
	return t
}

// Tracer returns the configured tracer.
func (t *Tracing) Tracer() trace.Tracer {
	return t.provider.Tracer(t.name)
}

// Shutdown flushes pending spans and restores the previous global provider.
func (t *Tracing) Shutdown(ctx context.Context) error {
	otel.SetTracerProvider(t.previous)
	return t.provider.Shutdown(ctx)
}

// LogExporter writes finished spans to a slog logger at DEBUG.
type LogExporter struct {
	logger *slog.Logger
}

// NewLogExporter creates a span exporter backed by logger.
func NewLogExporter(logger *slog.Logger) *LogExporter {
	if logger == nil {
		logger = slog.Default().With("component", "tracing")
	}
	return &LogExporter{logger: logger}
}

// ExportSpans logs each span with its duration and attributes.
func (e *LogExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, s := range spans {
		attrs := []any{
			slog.String("span", s.Name()),
			slog.Duration("duration", s.EndTime().Sub(s.StartTime()).Round(time.Microsecond)),
		}
		for _, kv := range s.Attributes() {
			attrs = append(attrs, slog.Any(string(kv.Key), attrValue(kv)))
		}
		e.logger.DebugContext(ctx, "span", attrs...)
	}
	return nil
}

// Shutdown implements sdktrace.SpanExporter.
func (e *LogExporter) Shutdown(context.Context) error { return nil }

func attrValue(kv attribute.KeyValue) any {
	switch kv.Value.Type() {
	case attribute.BOOL:
		return kv.Value.AsBool()
	case attribute.INT64:
		return kv.Value.AsInt64()
	case attribute.FLOAT64:
		return kv.Value.AsFloat64()
	default:
		return kv.Value.Emit()
	}
}
