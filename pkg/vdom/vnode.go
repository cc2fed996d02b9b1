package vdom

import (
	"fmt"
	"reflect"
	"strings"
)

// Kind is the node type discriminator.
type Kind uint8

const (
	KindElement   Kind = iota // <div>, <button>, etc.
	KindText                  // Plain text node
	KindComment               // Comment placeholder
	KindFragment              // Grouping without wrapper
	KindComponent             // Component instance
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindComment:
		return "Comment"
	case KindFragment:
		return "Fragment"
	case KindComponent:
		return "Component"
	default:
		return "Unknown"
	}
}

// ShapeFlag describes a vnode and the shape of its children.
type ShapeFlag uint8

const (
	ShapeElement ShapeFlag = 1 << iota
	ShapeComponent
	ShapeTextChildren
	ShapeArrayChildren
	ShapeSlotsChildren
)

// Has reports whether all bits of flag are set.
func (s ShapeFlag) Has(flag ShapeFlag) bool {
	return s&flag == flag
}

// Props holds attributes, DOM properties and event handlers.
type Props map[string]any

// Slot renders slot content with the props supplied by the child.
type Slot func(props Props) []*VNode

// Slots maps slot names to slot functions.
type Slots map[string]Slot

// DefaultSlot is the slot receiving a component vnode's plain children.
const DefaultSlot = "default"

// Component is implemented by component definitions. Two component vnodes
// have the same type when their Comp values are identical.
type Component interface {
	ComponentName() string
}

// VNode is the virtual DOM node.
type VNode struct {
	Kind     Kind      // Node type
	Tag      string    // Element tag name (e.g., "div")
	Comp     Component // For KindComponent
	Props    Props     // Attributes and event handlers
	Key      any       // Reconciliation key, nil when unkeyed
	Text     string    // Text/comment content, or an element's text children
	Children []*VNode  // Element and fragment children
	Slots    Slots     // Component children
	Shape    ShapeFlag

	// Set by the renderer.
	El       any // Host node; the start anchor for fragments
	Anchor   any // End anchor for fragments
	Instance any // Component instance for KindComponent
}

// Attr represents a single attribute.
type Attr struct {
	Key   string
	Value any
}

// IsEmpty returns true if this is an empty/nil attribute.
func (a Attr) IsEmpty() bool {
	return a.Key == ""
}

// SameType reports whether a and b can be patched in place: same kind,
// same tag or component, same key.
func SameType(a, b *VNode) bool {
	if a == nil || b == nil {
		return false
	}
	return a.Kind == b.Kind &&
		a.Tag == b.Tag &&
		a.Comp == b.Comp &&
		sameKey(a.Key, b.Key)
}

// validKey reports whether k can serve as a reconciliation key. Keys are
// compared with == and used as map keys, so they must be comparable.
func validKey(k any) bool {
	return k != nil && reflect.ValueOf(k).Comparable()
}

// sameKey treats a non-comparable key like a missing one.
func sameKey(a, b any) bool {
	va, vb := validKey(a), validKey(b)
	if !va || !vb {
		return va == vb
	}
	return a == b
}

// HasKey reports whether the node carries a reconciliation key. A key
// that is not comparable (a slice, map or func) is ignored.
func (v *VNode) HasKey() bool {
	return v != nil && validKey(v.Key)
}

// String renders a compact description for logs and test failures.
func (v *VNode) String() string {
	if v == nil {
		return "<nil>"
	}
	var b strings.Builder
	switch v.Kind {
	case KindText:
		fmt.Fprintf(&b, "%q", v.Text)
		return b.String()
	case KindComment:
		fmt.Fprintf(&b, "<!--%s-->", v.Text)
		return b.String()
	case KindComponent:
		b.WriteString("<" + v.Comp.ComponentName())
	case KindFragment:
		b.WriteString("<>")
	default:
		b.WriteString("<" + v.Tag)
	}
	if v.Key != nil {
		fmt.Fprintf(&b, " key=%v", v.Key)
	}
	if v.Kind != KindFragment {
		b.WriteString(">")
	}
	if v.Shape.Has(ShapeTextChildren) {
		b.WriteString(v.Text)
	}
	for _, c := range v.Children {
		b.WriteString(c.String())
	}
	return b.String()
}
