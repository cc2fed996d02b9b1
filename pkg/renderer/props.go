package renderer

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/vango-dev/vrt/pkg/reactivity"
	"github.com/vango-dev/vrt/pkg/vdom"
)

// PropOption declares one component prop.
type PropOption struct {
	// Type is the expected kind of the value. reflect.Invalid accepts anything.
	Type reflect.Kind
	// Required props missing from the vnode produce a warning.
	Required bool
	// Default is used when the prop is absent. A func() any is called once
	// per instance.
	Default any
}

func (o PropOption) defaultValue() any {
	if fn, ok := o.Default.(func() any); ok {
		return fn()
	}
	return o.Default
}

// resolveProps splits raw vnode props into declared props and fallthrough
// attrs. Handler-shaped keys are always props.
func (inst *Instance) resolveProps(raw vdom.Props) (map[string]any, vdom.Props) {
	def := inst.def
	props := make(map[string]any, len(def.Props))
	attrs := make(vdom.Props)

	for key, value := range raw {
		if _, declared := def.Props[key]; declared || vdom.IsOn(key) {
			props[key] = value
		} else {
			attrs[key] = value
		}
	}

	names := make([]string, 0, len(def.Props))
	for name := range def.Props {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		opt := def.Props[name]
		value, ok := props[name]
		if !ok || value == nil {
			if opt.Required {
				inst.r.warn("C007", fmt.Sprintf("prop %q", name), "component", def.Name)
			}
			if !ok {
				props[name] = opt.defaultValue()
			}
			continue
		}
		if opt.Type != reflect.Invalid && reflect.TypeOf(value).Kind() != opt.Type {
			inst.r.warn("C006",
				fmt.Sprintf("prop %q: expected %s, got %T", name, opt.Type, value),
				"component", def.Name)
		}
	}
	return props, attrs
}

// updateProps writes freshly resolved props into the reactive props
// object. Changed keys trigger the component's own render effect.
func (inst *Instance) updateProps(raw vdom.Props) {
	props, attrs := inst.resolveProps(raw)
	inst.attrs = attrs

	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		inst.props.Set(k, props[k])
	}

	for _, k := range inst.rawProps.Keys() {
		if _, ok := props[k.(string)]; !ok {
			inst.props.Delete(k)
		}
	}
}

func hasPropsChanged(prev, next vdom.Props) bool {
	if len(prev) != len(next) {
		return true
	}
	for k, v := range next {
		old, ok := prev[k]
		if !ok || reactivity.HasChanged(old, v) {
			return true
		}
	}
	return false
}
