package vdom

import "fmt"

// voidElements are elements that cannot have children.
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// IsVoidElement returns true if the tag is a void element.
func IsVoidElement(tag string) bool {
	return voidElements[tag]
}

// H creates an element from a tag, its props and children.
func H(tag string, props Props, children ...any) *VNode {
	args := make([]any, 0, len(children)+1)
	if props != nil {
		args = append(args, props)
	}
	return createElement(tag, append(args, children...))
}

// createElement creates a new VNode with the given tag and arguments.
// Arguments can be: nil, Props, Attr, []Attr, *VNode, []*VNode, string,
// fmt.Stringer or a number.
func createElement(tag string, args []any) *VNode {
	node := &VNode{
		Kind:  KindElement,
		Tag:   tag,
		Props: make(Props),
		Shape: ShapeElement,
	}

	var children []*VNode
	texts := 0
	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			// Ignore nil (allows conditional attributes)
			continue

		case Props:
			for key, value := range v {
				node.setProp(key, value)
			}

		case Attr:
			if !v.IsEmpty() {
				node.setProp(v.Key, v.Value)
			}

		case []Attr:
			for _, attr := range v {
				if !attr.IsEmpty() {
					node.setProp(attr.Key, attr.Value)
				}
			}

		case *VNode:
			if v != nil {
				children = append(children, v)
			}

		case []*VNode:
			for _, child := range v {
				if child != nil {
					children = append(children, child)
				}
			}

		case string:
			children = append(children, Text(v))
			texts++

		case fmt.Stringer:
			children = append(children, Text(v.String()))
			texts++

		case int, int64, float64, bool:
			children = append(children, Text(fmt.Sprint(v)))
			texts++
		}
	}

	switch {
	case len(children) == 1 && texts == 1:
		node.Text = children[0].Text
		node.Shape |= ShapeTextChildren
	case len(children) > 0:
		node.Children = children
		node.Shape |= ShapeArrayChildren
	}
	return node
}

func (v *VNode) setProp(key string, value any) {
	if key == "key" {
		v.Key = value
		return
	}
	if v.Props == nil {
		v.Props = make(Props)
	}
	v.Props[key] = value
}

// Document structure elements

func Div(args ...any) *VNode     { return createElement("div", args) }
func P(args ...any) *VNode       { return createElement("p", args) }
func Span(args ...any) *VNode    { return createElement("span", args) }
func Section(args ...any) *VNode { return createElement("section", args) }
func Header(args ...any) *VNode  { return createElement("header", args) }
func Footer(args ...any) *VNode  { return createElement("footer", args) }
func H1(args ...any) *VNode      { return createElement("h1", args) }
func H2(args ...any) *VNode      { return createElement("h2", args) }

// Lists

func Ul(args ...any) *VNode { return createElement("ul", args) }
func Ol(args ...any) *VNode { return createElement("ol", args) }
func Li(args ...any) *VNode { return createElement("li", args) }

// Forms

func Button(args ...any) *VNode   { return createElement("button", args) }
func Input(args ...any) *VNode    { return createElement("input", args) }
func Label(args ...any) *VNode    { return createElement("label", args) }
func Textarea(args ...any) *VNode { return createElement("textarea", args) }
func Form(args ...any) *VNode     { return createElement("form", args) }
