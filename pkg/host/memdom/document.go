package memdom

import (
	"log/slog"
	"time"
)

// Recorder receives host operation counters.
type Recorder interface {
	HostOp(op string)
}

// Stats counts host operations since the last ResetStats.
type Stats struct {
	Creates     int
	Inserts     int
	Moves       int
	Removes     int
	TextUpdates int
	PropPatches int
}

// Document creates and mutates host nodes. It implements the renderer's
// host interface; node arguments must be *Node values it created.
type Document struct {
	clock      func() time.Time
	checkpoint func()
	logger     *slog.Logger
	recorder   Recorder

	nextID uint64
	stats  Stats
}

// Option configures a Document.
type Option func(*Document)

// WithClock sets the time source used for event and listener timestamps.
func WithClock(clock func() time.Time) Option {
	return func(d *Document) {
		if clock != nil {
			d.clock = clock
		}
	}
}

// WithCheckpoint sets a callback run after every listener during
// dispatch, normally the event loop's microtask checkpoint.
func WithCheckpoint(fn func()) Option {
	return func(d *Document) {
		d.checkpoint = fn
	}
}

// WithLogger sets the document logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Document) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithRecorder attaches a host operation recorder.
func WithRecorder(r Recorder) Option {
	return func(d *Document) {
		d.recorder = r
	}
}

// New creates an empty document.
func New(opts ...Option) *Document {
	d := &Document{
		clock:  time.Now,
		logger: slog.Default().With("component", "memdom"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NewRoot creates a detached <div id="app"> container.
func (d *Document) NewRoot() *Node {
	root := d.newNode(ElementNode)
	root.Tag = "div"
	root.SetAttr("id", "app")
	return root
}

// Stats returns the operation counters.
func (d *Document) Stats() Stats {
	return d.stats
}

// ResetStats zeroes the operation counters.
func (d *Document) ResetStats() {
	d.stats = Stats{}
}

func (d *Document) now() time.Time {
	return d.clock()
}

func (d *Document) count(op string) {
	switch op {
	case "create":
		d.stats.Creates++
	case "insert":
		d.stats.Inserts++
	case "move":
		d.stats.Moves++
	case "remove":
		d.stats.Removes++
	case "text":
		d.stats.TextUpdates++
	case "prop":
		d.stats.PropPatches++
	}
	if d.recorder != nil {
		d.recorder.HostOp(op)
	}
}

func (d *Document) newNode(typ NodeType) *Node {
	d.nextID++
	d.count("create")
	return &Node{ID: d.nextID, Type: typ}
}

func asNode(v any) *Node {
	n, _ := v.(*Node)
	return n
}

func (d *Document) CreateElement(tag string) any {
	n := d.newNode(ElementNode)
	n.Tag = tag
	return n
}

func (d *Document) CreateText(text string) any {
	n := d.newNode(TextNode)
	n.Data = text
	return n
}

func (d *Document) CreateComment(text string) any {
	n := d.newNode(CommentNode)
	n.Data = text
	return n
}

// SetText replaces the content of a text or comment node.
func (d *Document) SetText(node any, text string) {
	n := asNode(node)
	n.Data = text
	d.count("text")
}

// SetElementText replaces every child of an element with a single text
// node, or with nothing when text is empty.
func (d *Document) SetElementText(node any, text string) {
	el := asNode(node)
	for _, c := range el.Children {
		c.Parent = nil
	}
	el.Children = nil
	if text != "" {
		t := d.newNode(TextNode)
		t.Data = text
		el.insertBefore(t, nil)
	}
	d.count("text")
}

// Insert places node into parent before anchor, or at the end when anchor
// is nil. A node that already has a parent is moved.
func (d *Document) Insert(node, parent, anchor any) {
	n, p, a := asNode(node), asNode(parent), asNode(anchor)
	op := "insert"
	if n.Parent != nil {
		n.Parent.removeChild(n)
		op = "move"
	}
	p.insertBefore(n, a)
	d.count(op)
}

// Remove detaches node from its parent.
func (d *Document) Remove(node any) {
	n := asNode(node)
	if n == nil || n.Parent == nil {
		return
	}
	n.Parent.removeChild(n)
	d.count("remove")
}

// Parent returns the parent of node, or nil.
func (d *Document) Parent(node any) any {
	n := asNode(node)
	if n == nil || n.Parent == nil {
		return nil
	}
	return n.Parent
}

// NextSibling returns the node after node, or nil.
func (d *Document) NextSibling(node any) any {
	n := asNode(node)
	if n == nil {
		return nil
	}
	if next := n.NextSibling(); next != nil {
		return next
	}
	return nil
}
