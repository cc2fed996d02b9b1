package memdom

import (
	"reflect"
	"strings"
	"time"

	"github.com/vango-dev/vrt/pkg/vdom"
)

// Event is dispatched through the tree by Dispatch.
type Event struct {
	Type          string
	Target        *Node
	CurrentTarget *Node
	TimeStamp     time.Time
	Detail        any

	stopped bool
}

// StopPropagation prevents the event from reaching further ancestors.
func (e *Event) StopPropagation() { e.stopped = true }

// Invoker is the listener attached for one event name. Replacing a
// handler only swaps Value; the listener itself stays attached.
type Invoker struct {
	Value    any
	Attached time.Time
}

// Listener returns the invoker attached for event, or nil.
func (n *Node) Listener(event string) *Invoker {
	return n.invokers[event]
}

func (d *Document) patchEvent(el *Node, key string, next any) {
	name := strings.ToLower(vdom.EventName(key))
	inv := el.invokers[name]

	if isHandler(next) {
		if inv != nil {
			inv.Value = next
			return
		}
		if el.invokers == nil {
			el.invokers = make(map[string]*Invoker)
		}
		el.invokers[name] = &Invoker{Value: next, Attached: d.now()}
		return
	}
	if inv != nil {
		delete(el.invokers, name)
	}
}

func isHandler(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Func, reflect.Slice:
		return !rv.IsNil()
	}
	return false
}

// Dispatch fires an event at target and bubbles it to the root. Listeners
// attached after the event was created are skipped, so a handler added by
// a re-render triggered from a descendant's listener does not see the
// same event.
func (d *Document) Dispatch(target *Node, eventType string, detail any) *Event {
	e := &Event{
		Type:      eventType,
		Target:    target,
		TimeStamp: d.now(),
		Detail:    detail,
	}

	var path []*Node
	for n := target; n != nil; n = n.Parent {
		path = append(path, n)
	}

	for _, n := range path {
		inv := n.invokers[eventType]
		if inv == nil {
			continue
		}
		e.CurrentTarget = n
		if e.TimeStamp.Before(inv.Attached) {
			continue
		}
		call(inv.Value, e)
		if d.checkpoint != nil {
			d.checkpoint()
		}
		if e.stopped {
			break
		}
	}
	return e
}

// Click dispatches a click event at target.
func (d *Document) Click(target *Node) *Event {
	return d.Dispatch(target, "click", nil)
}

// Input sets the value property of target and dispatches an input event.
func (d *Document) Input(target *Node, value string) *Event {
	if target.props == nil {
		target.props = make(map[string]any)
	}
	target.props["value"] = value
	return d.Dispatch(target, "input", value)
}

func call(handler any, e *Event) {
	switch h := handler.(type) {
	case func():
		h()
	case func(*Event):
		h(e)
	case func(any):
		h(e)
	case func(...any):
		h(e)
	case []any:
		for _, item := range h {
			call(item, e)
		}
	default:
		rv := reflect.ValueOf(handler)
		switch rv.Kind() {
		case reflect.Slice:
			for i := 0; i < rv.Len(); i++ {
				call(rv.Index(i).Interface(), e)
			}
		case reflect.Func:
			rv.Call(eventArgs(rv.Type(), e))
		}
	}
}

// eventArgs passes e as the first argument when its type accepts an
// *Event and zero values for the rest. A variadic tail only receives e
// when there are no fixed parameters.
func eventArgs(typ reflect.Type, e *Event) []reflect.Value {
	fixed := typ.NumIn()
	if typ.IsVariadic() {
		fixed--
	}
	args := make([]reflect.Value, fixed)
	for i := range args {
		args[i] = reflect.Zero(typ.In(i))
	}

	ev := reflect.ValueOf(e)
	switch {
	case fixed > 0 && ev.Type().AssignableTo(typ.In(0)):
		args[0] = ev
	case fixed == 0 && typ.IsVariadic() && ev.Type().AssignableTo(typ.In(0).Elem()):
		args = append(args, ev)
	}
	return args
}
