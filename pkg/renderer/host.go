package renderer

// Host creates and mutates the real node tree. Nodes are opaque to the
// renderer; a nil anchor or parent is passed as an untyped nil.
type Host interface {
	CreateElement(tag string) any
	CreateText(text string) any
	CreateComment(text string) any

	// SetText replaces the content of a text or comment node.
	SetText(node any, text string)
	// SetElementText replaces all children of an element with text.
	SetElementText(node any, text string)

	// Insert places node into parent before anchor, or last when anchor
	// is nil. Inserting an attached node moves it.
	Insert(node, parent, anchor any)
	Remove(node any)
	Parent(node any) any
	NextSibling(node any) any

	// PatchProp applies a prop change; next is nil when the prop is removed.
	PatchProp(node any, key string, prev, next any)
}
