// Package vtest provides testing helpers for components.
//
// The vtest package reduces boilerplate when testing components by
// wiring a loop, a job queue, a reactive runtime, an in-memory document
// and a renderer together, and by offering render assertions.
//
// # Quick Start
//
//	func TestCounter(t *testing.T) {
//	    h := vtest.NewHarness(t)
//	    h.Mount(Counter, vdom.Props{"start": 1})
//	    h.Click("button")
//	    vtest.ExpectContains(t, h, "2")
//	}
//
// # Fluent Builder
//
// The builder allows chaining setup options:
//
//	h := vtest.New().
//	    WithRecursionLimit(10).
//	    WithRendererOption(renderer.WithRecorder(rec)).
//	    Build(t)
//
// # Tasks and Flushes
//
// Mount, Render, Click, Input and Act each run as one loop task; the
// microtasks they queue, including the scheduler flush, have run by the
// time they return. Use Act to batch several writes into one task:
//
//	h.Act(func() {
//	    inst.State().Set("a", 1)
//	    inst.State().Set("b", 2)
//	})
//
// # Render Assertions
//
// Assert on the mounted HTML:
//
//	vtest.ExpectHTML(t, h, `<button>2</button>`)
//	vtest.ExpectElement(t, h, "li.done")
//	vtest.ExpectAttribute(t, h, "input", "type", "text")
//	vtest.ExpectWarning(t, h, "C003")
package vtest
