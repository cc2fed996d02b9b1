// Package errors provides coded diagnostics for the vrt runtime.
//
// Most authoring mistakes in a reactive UI are not fatal: writing through a
// readonly wrapper, reading a binding the component never declared, emitting
// an event nobody listens to. The runtime logs these as warnings and carries
// on. Every such condition has a registered code so logs, metrics and docs
// can refer to it by name.
//
// # Categories
//
//   - reactivity: misuse of reactive wrappers, refs and computed values
//   - component: props, render context, emit and async component problems
//   - scheduler: job failures and runaway update loops
//   - hydration: server-rendered markup adoption (unsupported)
//   - config: vrt.json problems
//
// # Usage
//
//	d := errors.New("R002").WithDetail(`key "count"`)
//	logger.Warn(d.Message, d.Attrs()...)
//
//	fmt.Println(d.Format())
//	// WARN R002: Write through readonly wrapper
//	//
//	//   key "count"
//	//
//	//   Learn more: https://vango.dev/docs/vrt/diagnostics/R002
package errors
