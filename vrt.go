// Package vrt assembles the runtime layers into a ready-to-use App.
//
// The layers live in their own packages and can be used separately:
//
//   - pkg/reactivity: dependency tracking, effects, computed values, proxies, refs
//   - pkg/scheduler: event loop with microtasks and the deduplicating job queue
//   - pkg/vdom: virtual node constructors
//   - pkg/renderer: reconciliation, components, slots, async components
//   - pkg/host/memdom: in-memory host tree with events and HTML output
//   - pkg/telemetry: Prometheus collectors and OpenTelemetry tracing
//
// App wires them together the way most programs need: one loop, one
// runtime, one queue and one document with a root container.
package vrt

// Version is the release of the runtime.
const Version = "0.3.0"
