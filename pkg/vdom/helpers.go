package vdom

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Text creates a text node.
func Text(content string) *VNode {
	return &VNode{
		Kind: KindText,
		Text: content,
	}
}

// Textf creates a formatted text node.
func Textf(format string, args ...any) *VNode {
	return Text(fmt.Sprintf(format, args...))
}

// Comment creates a comment placeholder node.
func Comment(content string) *VNode {
	return &VNode{
		Kind: KindComment,
		Text: content,
	}
}

// Fragment groups children without a wrapper element.
func Fragment(children ...any) *VNode {
	node := &VNode{
		Kind:  KindFragment,
		Shape: ShapeArrayChildren,
	}
	node.Children = collectChildren(children)
	return node
}

// KeyedFragment is Fragment with a reconciliation key.
func KeyedFragment(key any, children ...any) *VNode {
	node := Fragment(children...)
	node.Key = key
	return node
}

func collectChildren(args []any) []*VNode {
	children := make([]*VNode, 0, len(args))
	for _, child := range args {
		switch v := child.(type) {
		case nil:
			continue
		case *VNode:
			if v != nil {
				children = append(children, v)
			}
		case []*VNode:
			for _, c := range v {
				if c != nil {
					children = append(children, c)
				}
			}
		case string:
			children = append(children, Text(v))
		}
	}
	return children
}

// Comp creates a component vnode. Arguments can be: Props, Attr, Slots,
// Slot (the default slot), *VNode, []*VNode or string. Plain children are
// collected into the default slot.
func Comp(c Component, args ...any) *VNode {
	node := &VNode{
		Kind:  KindComponent,
		Comp:  c,
		Props: make(Props),
		Shape: ShapeComponent,
	}

	var children []any
	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			continue
		case Props:
			for key, value := range v {
				node.setProp(key, value)
			}
		case Attr:
			if !v.IsEmpty() {
				node.setProp(v.Key, v.Value)
			}
		case Slots:
			if node.Slots == nil {
				node.Slots = make(Slots, len(v))
			}
			for name, slot := range v {
				node.Slots[name] = slot
			}
		case Slot:
			node.setSlot(DefaultSlot, v)
		case func(Props) []*VNode:
			node.setSlot(DefaultSlot, v)
		default:
			children = append(children, v)
		}
	}

	if content := collectChildren(children); len(content) > 0 {
		node.setSlot(DefaultSlot, func(Props) []*VNode { return content })
	}
	if len(node.Slots) > 0 {
		node.Shape |= ShapeSlotsChildren
	}
	return node
}

func (v *VNode) setSlot(name string, slot Slot) {
	if v.Slots == nil {
		v.Slots = make(Slots)
	}
	v.Slots[name] = slot
}

// If returns the node if condition is true, nil otherwise.
func If(condition bool, node *VNode) *VNode {
	if condition {
		return node
	}
	return nil
}

// When is like If but with lazy evaluation.
// The function is only called if condition is true.
func When(condition bool, fn func() *VNode) *VNode {
	if condition {
		return fn()
	}
	return nil
}

// Range maps a slice to VNodes.
func Range[T any](items []T, fn func(item T, index int) *VNode) []*VNode {
	result := make([]*VNode, 0, len(items))
	for i, item := range items {
		node := fn(item, i)
		if node != nil {
			result = append(result, node)
		}
	}
	return result
}

// Key creates a key attribute for reconciliation.
func Key(key any) Attr {
	return Attr{Key: "key", Value: key}
}

// ID sets the id attribute.
func ID(id string) Attr { return Attr{Key: "id", Value: id} }

// Class sets the class prop. Any form accepted by NormalizeClass works.
func Class(value any) Attr { return Attr{Key: "class", Value: value} }

// On attaches an event handler, e.g. On("click", fn) sets "onClick".
func On(event string, handler any) Attr {
	return Attr{Key: HandlerKey(event), Value: handler}
}

// OnClick attaches a click handler.
func OnClick(handler any) Attr { return On("click", handler) }

// IsOn reports whether key names an event handler: "on" followed by an
// upper-case letter.
func IsOn(key string) bool {
	if len(key) < 3 || !strings.HasPrefix(key, "on") {
		return false
	}
	r, _ := utf8.DecodeRuneInString(key[2:])
	return unicode.IsUpper(r)
}

// EventName converts a handler key into its event name: "onClick" becomes
// "click".
func EventName(key string) string {
	if !IsOn(key) {
		return key
	}
	return strings.ToLower(key[2:3]) + key[3:]
}

// HandlerKey converts an event name into its handler key: "update:foo"
// becomes "onUpdate:foo".
func HandlerKey(event string) string {
	if event == "" {
		return ""
	}
	return "on" + Capitalize(event)
}

// Capitalize upper-cases the first letter of s.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
