package renderer

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/vango-dev/vrt/pkg/reactivity"
	"github.com/vango-dev/vrt/pkg/vdom"
)

// AsyncOptions configures DefineAsyncComponent.
type AsyncOptions struct {
	Name string

	// Loader resolves the real definition. It runs on its own goroutine;
	// ctx is cancelled when the component unmounts.
	Loader func(ctx context.Context) (*Definition, error)

	// Timeout, when positive, renders ErrorComponent with a *TimeoutError
	// if Loader has not returned in time. A later successful load still
	// replaces the error.
	Timeout time.Duration

	// Delay postpones the loading placeholder.
	Delay time.Duration

	// LoadingComponent replaces the default "loading" text.
	LoadingComponent *Definition

	// ErrorComponent receives the failure as its "error" prop.
	ErrorComponent *Definition
}

// TimeoutError reports an async component that did not load in time.
type TimeoutError struct {
	Name  string
	After time.Duration
}

func (e *TimeoutError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("Async component timed out after %d ms", e.After.Milliseconds())
	}
	return fmt.Sprintf("Async component %s timed out after %d ms", e.Name, e.After.Milliseconds())
}

// DefineAsyncComponent returns a wrapper definition that renders a
// placeholder until opts.Loader resolves. The resolved definition is
// cached and reused by later instances. Results are delivered through the
// renderer's loop (see WithLoop); without one the loader never runs and
// the component fails with ErrNoLoop.
func DefineAsyncComponent(opts AsyncOptions) *Definition {
	var resolved atomic.Pointer[Definition]

	def := &Definition{Name: opts.Name}
	if def.Name == "" {
		def.Name = "AsyncComponentWrapper"
	}

	def.Setup = func(_ *reactivity.Proxy, sc *SetupContext) any {
		inst := sc.inst
		r := inst.r
		rt := r.rt

		loaded := rt.Ref(resolved.Load())
		failure := rt.Ref(nil)
		delayed := rt.Ref(opts.Delay > 0)

		if resolved.Load() == nil && r.loop == nil {
			r.warn("C008", "no loop configured", "component", def.Name)
			failure.Set(ErrNoLoop)
		} else if resolved.Load() == nil {
			ctx, cancel := context.WithCancel(context.Background())
			settled := false

			var timers []*time.Timer
			inst.cleanup = append(inst.cleanup, func() {
				cancel()
				for _, t := range timers {
					t.Stop()
				}
			})

			if opts.Delay > 0 {
				timers = append(timers, time.AfterFunc(opts.Delay, func() {
					r.post(func() { delayed.Set(false) })
				}))
			}

			if opts.Timeout > 0 {
				timers = append(timers, time.AfterFunc(opts.Timeout, func() {
					r.post(func() {
						if settled || inst.isUnmounted {
							return
						}
						err := &TimeoutError{Name: opts.Name, After: opts.Timeout}
						r.warn("C005", err.Error(), "component", def.Name)
						failure.Set(err)
					})
				}))
			}

			go func() {
				comp, err := opts.Loader(ctx)
				r.post(func() {
					settled = true
					if inst.isUnmounted {
						return
					}
					if err != nil {
						r.warn("C004", err.Error(), "component", def.Name)
						failure.Set(err)
						return
					}
					resolved.Store(comp)
					loaded.Set(comp)
				})
			}()
		}

		return func(c *RenderContext) *vdom.VNode {
			if comp, _ := loaded.Get().(*Definition); comp != nil {
				return vdom.Comp(comp, c.forwardedProps(), c.Slots())
			}
			if err, _ := failure.Get().(error); err != nil {
				if opts.ErrorComponent != nil {
					return vdom.Comp(opts.ErrorComponent, vdom.Props{"error": err})
				}
				return vdom.Comment("")
			}
			if wait, _ := delayed.Get().(bool); wait {
				return vdom.Comment("")
			}
			if opts.LoadingComponent != nil {
				return vdom.Comp(opts.LoadingComponent)
			}
			return vdom.Text("loading")
		}
	}
	return def
}

// forwardedProps merges props and attrs for passing through to a child.
func (c *RenderContext) forwardedProps() vdom.Props {
	out := make(vdom.Props, len(c.inst.attrs))
	for k, v := range c.inst.attrs {
		out[k] = v
	}
	for _, k := range c.inst.props.Keys() {
		out[k.(string)] = c.inst.props.Get(k)
	}
	return out
}
