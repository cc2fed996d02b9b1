// Package telemetry exports runtime metrics to Prometheus and wires
// OpenTelemetry tracing.
//
// A *Metrics value implements the recorder hooks of every runtime layer.
// SetupTracing installs an SDK tracer provider whose tracer can be passed
// to scheduler.WithTracer and renderer.WithTracer to get one span per
// flush and per component render.
package telemetry
