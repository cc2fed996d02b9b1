package renderer

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/vango-dev/vrt/pkg/reactivity"
	"github.com/vango-dev/vrt/pkg/vdom"
)

// RenderContext resolves names for render functions and hooks. Reads look
// at props, then state, then setup bindings; writes go to whichever of
// those owns the key. It implements reactivity.Accessor.
//
// The public properties $el, $props, $attrs and $slots are also readable.
type RenderContext struct {
	inst *Instance
}

// owner returns the accessor holding key, or nil.
func (c *RenderContext) owner(key string) reactivity.Accessor {
	inst := c.inst
	if inst.rawProps != nil && inst.rawProps.Has(key) {
		return inst.props
	}
	if inst.rawState != nil && inst.rawState.Has(key) {
		return inst.state
	}
	if inst.setupState != nil && inst.setupState.Has(key) {
		return inst.setupState
	}
	return nil
}

func (c *RenderContext) Get(key any) any {
	name, ok := key.(string)
	if !ok {
		name = fmt.Sprint(key)
	}
	switch name {
	case "$el":
		return c.inst.vnode.El
	case "$props":
		return c.inst.props
	case "$attrs":
		return c.inst.attrs
	case "$slots":
		return c.inst.slots
	}
	if o := c.owner(name); o != nil {
		return o.Get(name)
	}
	c.inst.r.warn("C001", fmt.Sprintf("%q was read during render but is not defined", name),
		"component", c.inst.Name(), "key", name)
	return nil
}

func (c *RenderContext) Set(key any, value any) bool {
	name, ok := key.(string)
	if !ok {
		name = fmt.Sprint(key)
	}
	if o := c.owner(name); o != nil {
		return o.Set(name, value)
	}
	c.inst.r.warn("C002", fmt.Sprintf("cannot assign %q", name),
		"component", c.inst.Name(), "key", name)
	return false
}

func (c *RenderContext) Has(key any) bool {
	name, ok := key.(string)
	return ok && c.owner(name) != nil
}

// Keys lists props, state and setup bindings in that order.
func (c *RenderContext) Keys() []any {
	var keys []any
	seen := make(map[any]bool)
	for _, src := range []reactivity.Accessor{c.inst.rawProps, c.inst.rawState, c.inst.setupState} {
		if src == nil || reflect.ValueOf(src).IsNil() {
			continue
		}
		for _, k := range src.Keys() {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	return keys
}

// Delete is not supported on a render context.
func (c *RenderContext) Delete(any) bool { return false }

// String returns the named binding as a string; nil becomes "".
func (c *RenderContext) String(key string) string {
	switch v := c.Get(key).(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// Int returns the named binding as an int.
func (c *RenderContext) Int(key string) int {
	switch v := c.Get(key).(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(v)
		return n
	}
	return 0
}

// Bool returns the truthiness of the named binding.
func (c *RenderContext) Bool(key string) bool {
	return vdom.Truthy(c.Get(key))
}

// Instance returns the component instance.
func (c *RenderContext) Instance() *Instance { return c.inst }

// Props returns the reactive props object.
func (c *RenderContext) Props() *reactivity.Proxy { return c.inst.props }

// State returns the reactive state object.
func (c *RenderContext) State() *reactivity.Proxy { return c.inst.state }

// Attrs returns the fallthrough attributes.
func (c *RenderContext) Attrs() vdom.Props { return c.inst.attrs }

// Slots returns the slots passed by the parent.
func (c *RenderContext) Slots() vdom.Slots { return c.inst.slots }

// Slot returns the named slot, or nil.
func (c *RenderContext) Slot(name string) vdom.Slot { return c.inst.slots[name] }

// RenderSlot renders the named slot into a fragment. When the slot is
// missing, fallback becomes the fragment content.
func (c *RenderContext) RenderSlot(name string, props vdom.Props, fallback ...*vdom.VNode) *vdom.VNode {
	if slot := c.inst.slots[name]; slot != nil {
		return vdom.Fragment(slot(props))
	}
	return vdom.Fragment(fallback)
}

// Emit calls the parent's handler for event.
func (c *RenderContext) Emit(event string, args ...any) {
	c.inst.emit(event, args...)
}

// SetupContext is passed to Definition.Setup.
type SetupContext struct {
	inst *Instance
}

// Attrs returns the fallthrough attributes.
func (sc *SetupContext) Attrs() vdom.Props { return sc.inst.attrs }

// Slots returns the slots passed by the parent.
func (sc *SetupContext) Slots() vdom.Slots { return sc.inst.slots }

// Emit calls the parent's handler for event.
func (sc *SetupContext) Emit(event string, args ...any) {
	sc.inst.emit(event, args...)
}

// Runtime returns the reactive runtime of the renderer.
func (sc *SetupContext) Runtime() *reactivity.Runtime { return sc.inst.r.rt }

// OnBeforeMount registers a hook run before the first render is mounted.
func (sc *SetupContext) OnBeforeMount(fn func()) { sc.on(hookBeforeMount, fn) }

// OnMounted registers a hook run after the first render is mounted.
func (sc *SetupContext) OnMounted(fn func()) { sc.on(hookMounted, fn) }

// OnBeforeUpdate registers a hook run before each re-render.
func (sc *SetupContext) OnBeforeUpdate(fn func()) { sc.on(hookBeforeUpdate, fn) }

// OnUpdated registers a hook run after each re-render is patched.
func (sc *SetupContext) OnUpdated(fn func()) { sc.on(hookUpdated, fn) }

// OnBeforeUnmount registers a hook run before teardown.
func (sc *SetupContext) OnBeforeUnmount(fn func()) { sc.on(hookBeforeUnmount, fn) }

// OnUnmounted registers a hook run after teardown.
func (sc *SetupContext) OnUnmounted(fn func()) { sc.on(hookUnmounted, fn) }

func (sc *SetupContext) on(kind hookKind, fn func()) {
	sc.inst.hooks[kind] = append(sc.inst.hooks[kind], fn)
}

// emit looks up the handler prop for event, first under the name as given
// and then as its "on" handler key.
func (inst *Instance) emit(event string, args ...any) {
	var handler any
	for _, key := range []string{event, vdom.HandlerKey(event)} {
		if v, ok := inst.rawProps.Lookup(key); ok && v != nil {
			handler = v
			break
		}
	}
	if handler == nil {
		inst.r.warn("C003", fmt.Sprintf("event %q has no handler", event),
			"component", inst.Name(), "event", event)
		return
	}
	invoke(handler, args)
}

// invoke calls fn with args, converting or zero-filling them to match its
// parameters. A slice of handlers calls each in turn.
func invoke(fn any, args []any) {
	switch h := fn.(type) {
	case func():
		h()
		return
	case func(...any):
		h(args...)
		return
	case func(any):
		var a any
		if len(args) > 0 {
			a = args[0]
		}
		h(a)
		return
	case []any:
		for _, item := range h {
			invoke(item, args)
		}
		return
	}

	rv := reflect.ValueOf(fn)
	if rv.Kind() == reflect.Slice {
		for i := 0; i < rv.Len(); i++ {
			invoke(rv.Index(i).Interface(), args)
		}
		return
	}
	if rv.Kind() != reflect.Func || rv.IsNil() {
		return
	}

	t := rv.Type()
	n := t.NumIn()
	in := make([]reflect.Value, 0, len(args))
	for i := 0; i < n; i++ {
		if t.IsVariadic() && i == n-1 {
			elem := t.In(i).Elem()
			for j := i; j < len(args); j++ {
				in = append(in, argValue(args[j], elem))
			}
			break
		}
		var a any
		if i < len(args) {
			a = args[i]
		}
		in = append(in, argValue(a, t.In(i)))
	}
	rv.Call(in)
}

func argValue(a any, t reflect.Type) reflect.Value {
	if a == nil {
		return reflect.Zero(t)
	}
	v := reflect.ValueOf(a)
	switch {
	case v.Type().AssignableTo(t):
		return v
	case v.Type().ConvertibleTo(t):
		return v.Convert(t)
	}
	return reflect.Zero(t)
}

func typeName(v any) string {
	return fmt.Sprintf("%T", v)
}
