// Package reactivity provides the dependency-tracking core of the runtime.
//
// Reads of reactive state performed while an effect runs are recorded in a
// dependency store keyed by (target, key). Writes look up the effects
// subscribed to the written key and run them again, or hand them to their
// scheduler.
//
// # Core Types
//
// Reactive containers wrap an *Object or *Array behind a *Proxy that
// intercepts Get, Set, Has, Keys and Delete:
//
//	rt := reactivity.New()
//	state := rt.Reactive(reactivity.NewObject("count", 0)).(*reactivity.Proxy)
//	rt.Effect(func() {
//	    fmt.Println("count is", state.Get("count"))
//	})
//	state.Set("count", 1) // effect re-runs
//
// Refs hold a single value:
//
//	n := rt.Ref(1)
//	n.Set(2)
//
// Computed values are cached until one of their dependencies changes:
//
//	doubled := reactivity.NewComputed(rt, func() int {
//	    return n.Get().(int) * 2
//	})
//	doubled.Value()
//
// # Concurrency
//
// A Runtime is not safe for concurrent use. All reads and writes of state
// owned by a Runtime must happen on one goroutine, normally the event loop
// from package scheduler.
package reactivity
