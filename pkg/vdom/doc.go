// Package vdom defines the virtual node tree consumed by the renderer.
//
// # Core Types
//
// VNode is a tagged variant with one Kind per node shape: host elements,
// text, comments, fragments and components. Props holds attributes, DOM
// properties and event handlers. Slots holds the content a parent passes
// to a component.
//
// # Element API
//
// Elements are created with variadic factories:
//
//	Ul(Class("todos"),
//	    Li(Key(1), "first"),
//	    Li(Key(2), "second"),
//	)
//
// A single string argument becomes the element's text content; strings
// mixed with other children become text nodes.
//
// # Components
//
// Comp builds a component vnode from anything implementing Component,
// normally *renderer.Definition:
//
//	Comp(counter, Props{"start": 3}, Text("label"))
package vdom
