// Package memdom is an in-memory host tree for the renderer. It models the
// subset of the DOM the renderer drives: elements with attributes and
// properties, text and comment nodes, insertion with an anchor, event
// listeners with bubbling, and HTML serialization.
package memdom

import "strings"

// NodeType identifies the kind of host node.
type NodeType uint8

const (
	ElementNode NodeType = iota + 1
	TextNode
	CommentNode
)

func (t NodeType) String() string {
	switch t {
	case ElementNode:
		return "element"
	case TextNode:
		return "text"
	case CommentNode:
		return "comment"
	default:
		return "unknown"
	}
}

type attribute struct {
	name  string
	value string
}

// Node is a host node.
type Node struct {
	ID       uint64
	Type     NodeType
	Tag      string
	Data     string // text or comment content
	Parent   *Node
	Children []*Node

	attrs    []attribute
	props    map[string]any
	invokers map[string]*Invoker
}

// Attr returns the value of an attribute.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.attrs {
		if a.name == name {
			return a.value, true
		}
	}
	return "", false
}

// SetAttr sets an attribute, keeping the position of an existing one.
func (n *Node) SetAttr(name, value string) {
	for i, a := range n.attrs {
		if a.name == name {
			n.attrs[i].value = value
			return
		}
	}
	n.attrs = append(n.attrs, attribute{name: name, value: value})
}

// RemoveAttr deletes an attribute.
func (n *Node) RemoveAttr(name string) {
	for i, a := range n.attrs {
		if a.name == name {
			n.attrs = append(n.attrs[:i], n.attrs[i+1:]...)
			return
		}
	}
}

// AttrNames returns attribute names in insertion order.
func (n *Node) AttrNames() []string {
	names := make([]string, len(n.attrs))
	for i, a := range n.attrs {
		names[i] = a.name
	}
	return names
}

// Prop returns a DOM property value.
func (n *Node) Prop(name string) any {
	if name == "className" {
		v, _ := n.Attr("class")
		return v
	}
	return n.props[name]
}

// TextContent returns the concatenated text of the subtree.
func (n *Node) TextContent() string {
	if n.Type != ElementNode {
		return n.Data
	}
	var b strings.Builder
	for _, c := range n.Children {
		if c.Type != CommentNode {
			b.WriteString(c.TextContent())
		}
	}
	return b.String()
}

// Index returns the position of n among its parent's children, or -1.
func (n *Node) Index() int {
	if n.Parent == nil {
		return -1
	}
	for i, c := range n.Parent.Children {
		if c == n {
			return i
		}
	}
	return -1
}

// NextSibling returns the node following n, or nil.
func (n *Node) NextSibling() *Node {
	i := n.Index()
	if i < 0 || i+1 >= len(n.Parent.Children) {
		return nil
	}
	return n.Parent.Children[i+1]
}

// FirstElementChild returns the first element child, or nil.
func (n *Node) FirstElementChild() *Node {
	for _, c := range n.Children {
		if c.Type == ElementNode {
			return c
		}
	}
	return nil
}

// ElementChildren returns the element children of n.
func (n *Node) ElementChildren() []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Type == ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// Query returns the first element in the subtree, n included, matching a
// selector of the form "tag", "#id", ".class" or "tag.class".
func (n *Node) Query(selector string) *Node {
	if n.Type == ElementNode && n.matches(selector) {
		return n
	}
	for _, c := range n.Children {
		if found := c.Query(selector); found != nil {
			return found
		}
	}
	return nil
}

// QueryAll returns every element in the subtree matching selector.
func (n *Node) QueryAll(selector string) []*Node {
	var out []*Node
	if n.Type == ElementNode && n.matches(selector) {
		out = append(out, n)
	}
	for _, c := range n.Children {
		out = append(out, c.QueryAll(selector)...)
	}
	return out
}

func (n *Node) matches(selector string) bool {
	switch {
	case strings.HasPrefix(selector, "#"):
		id, _ := n.Attr("id")
		return id == selector[1:]
	case strings.Contains(selector, "."):
		tag, class, _ := strings.Cut(selector, ".")
		if tag != "" && tag != n.Tag {
			return false
		}
		classes, _ := n.Attr("class")
		for _, c := range strings.Fields(classes) {
			if c == class {
				return true
			}
		}
		return false
	default:
		return n.Tag == selector
	}
}

// At walks child indices from n and returns the node reached, or nil.
func (n *Node) At(path ...int) *Node {
	cur := n
	for _, i := range path {
		if cur == nil || i < 0 || i >= len(cur.Children) {
			return nil
		}
		cur = cur.Children[i]
	}
	return cur
}

func (n *Node) removeChild(child *Node) {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			child.Parent = nil
			return
		}
	}
}

func (n *Node) insertBefore(child, anchor *Node) {
	if anchor == nil || anchor.Parent != n {
		n.Children = append(n.Children, child)
		child.Parent = n
		return
	}
	i := anchor.Index()
	n.Children = append(n.Children, nil)
	copy(n.Children[i+1:], n.Children[i:])
	n.Children[i] = child
	child.Parent = n
}
