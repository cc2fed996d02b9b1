package renderer

import (
	"fmt"
	"log/slog"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/vrt/internal/errors"
	"github.com/vango-dev/vrt/pkg/reactivity"
	"github.com/vango-dev/vrt/pkg/scheduler"
	"github.com/vango-dev/vrt/pkg/vdom"
)

// ErrHydrationUnsupported is returned by Hydrate.
var ErrHydrationUnsupported error = errors.New("H001")

// ErrNoLoop is rendered by async components when the renderer has no loop
// to deliver load results through (see WithLoop).
var ErrNoLoop error = errors.New("C008")

// Recorder receives renderer counters.
type Recorder interface {
	ComponentRender(name string)
	Warning(code string)
}

// Poster delivers callbacks onto the event loop from other goroutines.
// *scheduler.Loop implements it.
type Poster interface {
	Post(fn func()) error
}

// Renderer reconciles vnode trees against a Host.
type Renderer struct {
	host     Host
	rt       *reactivity.Runtime
	queue    *scheduler.Queue
	loop     Poster
	logger   *slog.Logger
	recorder Recorder
	tracer   trace.Tracer

	roots   map[any]*vdom.VNode
	nextUID uint64
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the renderer logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(rec Recorder) Option {
	return func(r *Renderer) {
		r.recorder = rec
	}
}

// WithTracer sets the tracer used for component render spans.
func WithTracer(t trace.Tracer) Option {
	return func(r *Renderer) {
		if t != nil {
			r.tracer = t
		}
	}
}

// WithLoop sets the loop async components post their results to.
func WithLoop(p Poster) Option {
	return func(r *Renderer) {
		r.loop = p
	}
}

// New creates a renderer. Component update jobs go through queue; all
// reactive state belongs to rt.
func New(host Host, rt *reactivity.Runtime, queue *scheduler.Queue, opts ...Option) *Renderer {
	r := &Renderer{
		host:   host,
		rt:     rt,
		queue:  queue,
		logger: slog.Default().With("component", "renderer"),
		tracer: otel.Tracer("github.com/vango-dev/vrt/renderer"),
		roots:  make(map[any]*vdom.VNode),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Runtime returns the reactive runtime.
func (r *Renderer) Runtime() *reactivity.Runtime { return r.rt }

// Queue returns the job queue.
func (r *Renderer) Queue() *scheduler.Queue { return r.queue }

// Host returns the host adapter.
func (r *Renderer) Host() Host { return r.host }

// Render patches vnode into container against whatever was rendered there
// before. A nil vnode unmounts the previous tree.
func (r *Renderer) Render(vnode *vdom.VNode, container any) {
	prev := r.roots[container]
	if vnode == nil {
		if prev != nil {
			r.unmount(prev, nil, true)
		}
		delete(r.roots, container)
		return
	}
	r.patch(prev, vnode, container, nil, nil)
	r.roots[container] = vnode
}

// Root returns the tree last rendered into container.
func (r *Renderer) Root(container any) *vdom.VNode {
	return r.roots[container]
}

// Hydrate is not supported.
func (r *Renderer) Hydrate(*vdom.VNode, any) error {
	return ErrHydrationUnsupported
}

func (r *Renderer) warn(code, detail string, attrs ...any) {
	errors.New(code).WithDetail(detail).Log(r.logger, attrs...)
	if r.recorder != nil {
		r.recorder.Warning(code)
	}
}

// post hands fn to the loop. Without a loop fn is dropped; running it on
// the calling goroutine would touch reactive state off the loop.
func (r *Renderer) post(fn func()) {
	if r.loop == nil {
		r.warn("C008", "callback dropped")
		return
	}
	if err := r.loop.Post(fn); err != nil {
		r.logger.Debug("dropped posted callback", "error", err)
	}
}

// patch reconciles n1 (possibly nil) into n2.
func (r *Renderer) patch(n1, n2 *vdom.VNode, container, anchor any, parent *Instance) {
	if n1 == n2 {
		return
	}
	if n1 != nil && !vdom.SameType(n1, n2) {
		anchor = r.nextHostNode(n1)
		r.unmount(n1, parent, true)
		n1 = nil
	}

	switch n2.Kind {
	case vdom.KindText:
		r.processLeaf(n1, n2, container, anchor, r.host.CreateText)
	case vdom.KindComment:
		r.processLeaf(n1, n2, container, anchor, r.host.CreateComment)
	case vdom.KindFragment:
		r.processFragment(n1, n2, container, anchor, parent)
	case vdom.KindElement:
		if n1 == nil {
			r.mountElement(n2, container, anchor, parent)
		} else {
			r.patchElement(n1, n2, parent)
		}
	case vdom.KindComponent:
		if n1 == nil {
			r.mountComponent(n2, container, anchor, parent)
		} else {
			r.updateComponent(n1, n2)
		}
	default:
		r.logger.Error("unknown vnode kind", "kind", n2.Kind.String())
	}
}

func (r *Renderer) processLeaf(n1, n2 *vdom.VNode, container, anchor any, create func(string) any) {
	if n1 == nil {
		n2.El = create(n2.Text)
		r.host.Insert(n2.El, container, anchor)
		return
	}
	n2.El = n1.El
	if n2.Text != n1.Text {
		r.host.SetText(n2.El, n2.Text)
	}
}

// Fragments are delimited by two empty text nodes so their children can
// be patched and moved without a wrapper element.
func (r *Renderer) processFragment(n1, n2 *vdom.VNode, container, anchor any, parent *Instance) {
	if n1 == nil {
		n2.El = r.host.CreateText("")
		n2.Anchor = r.host.CreateText("")
		r.host.Insert(n2.El, container, anchor)
		r.host.Insert(n2.Anchor, container, anchor)
		r.mountChildren(n2.Children, container, n2.Anchor, parent)
		return
	}
	n2.El, n2.Anchor = n1.El, n1.Anchor
	r.patchChildren(n1, n2, container, n2.Anchor, parent)
}

func (r *Renderer) mountElement(vnode *vdom.VNode, container, anchor any, parent *Instance) {
	el := r.host.CreateElement(vnode.Tag)
	vnode.El = el

	switch {
	case vnode.Shape.Has(vdom.ShapeTextChildren):
		r.host.SetElementText(el, vnode.Text)
	case vnode.Shape.Has(vdom.ShapeArrayChildren):
		r.mountChildren(vnode.Children, el, nil, parent)
	}

	for _, key := range sortedKeys(vnode.Props) {
		r.host.PatchProp(el, key, nil, vnode.Props[key])
	}
	r.host.Insert(el, container, anchor)
}

func (r *Renderer) patchElement(n1, n2 *vdom.VNode, parent *Instance) {
	el := n1.El
	n2.El = el

	oldProps, newProps := n1.Props, n2.Props
	for _, key := range sortedKeys(newProps) {
		prev, next := oldProps[key], newProps[key]
		if reactivity.HasChanged(prev, next) {
			r.host.PatchProp(el, key, prev, next)
		}
	}
	for _, key := range sortedKeys(oldProps) {
		if _, ok := newProps[key]; !ok {
			r.host.PatchProp(el, key, oldProps[key], nil)
		}
	}

	r.patchChildren(n1, n2, el, nil, parent)
}

// unmount tears down vnode. Host nodes are only detached when doRemove is
// set; descendants of a removed element go away with it.
func (r *Renderer) unmount(vnode *vdom.VNode, parent *Instance, doRemove bool) {
	switch vnode.Kind {
	case vdom.KindComponent:
		if inst, ok := vnode.Instance.(*Instance); ok {
			r.unmountComponent(inst, doRemove)
		}
	case vdom.KindFragment:
		for _, c := range vnode.Children {
			r.unmount(c, parent, doRemove)
		}
		if doRemove {
			r.host.Remove(vnode.El)
			r.host.Remove(vnode.Anchor)
		}
	case vdom.KindElement:
		for _, c := range vnode.Children {
			r.unmount(c, parent, false)
		}
		if doRemove {
			r.host.Remove(vnode.El)
		}
	default:
		if doRemove {
			r.host.Remove(vnode.El)
		}
	}
}

// move reinserts the host nodes of vnode before anchor.
func (r *Renderer) move(vnode *vdom.VNode, container, anchor any) {
	switch vnode.Kind {
	case vdom.KindComponent:
		if inst, ok := vnode.Instance.(*Instance); ok && inst.subTree != nil {
			r.move(inst.subTree, container, anchor)
		}
	case vdom.KindFragment:
		r.host.Insert(vnode.El, container, anchor)
		for _, c := range vnode.Children {
			r.move(c, container, anchor)
		}
		r.host.Insert(vnode.Anchor, container, anchor)
	default:
		r.host.Insert(vnode.El, container, anchor)
	}
}

// nextHostNode returns the host node following everything vnode renders.
func (r *Renderer) nextHostNode(vnode *vdom.VNode) any {
	switch vnode.Kind {
	case vdom.KindComponent:
		if inst, ok := vnode.Instance.(*Instance); ok && inst.subTree != nil {
			return r.nextHostNode(inst.subTree)
		}
		return nil
	case vdom.KindFragment:
		return r.host.NextSibling(vnode.Anchor)
	default:
		return r.host.NextSibling(vnode.El)
	}
}

// cloneIfMounted copies a vnode that is already part of a mounted tree so
// mounting it again does not clobber its host references.
func cloneIfMounted(v *vdom.VNode) *vdom.VNode {
	if v == nil || (v.El == nil && v.Instance == nil) {
		return v
	}
	cp := *v
	cp.El, cp.Anchor, cp.Instance = nil, nil, nil
	if len(v.Children) > 0 {
		cp.Children = make([]*vdom.VNode, len(v.Children))
		for i, c := range v.Children {
			cp.Children[i] = cloneIfMounted(c)
		}
	}
	return &cp
}

func sortedKeys(props vdom.Props) []string {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func describe(v *vdom.VNode) string {
	if v == nil {
		return "<nil>"
	}
	switch v.Kind {
	case vdom.KindComponent:
		return fmt.Sprintf("component %s", v.Comp.ComponentName())
	case vdom.KindElement:
		return fmt.Sprintf("element %s", v.Tag)
	default:
		return v.Kind.String()
	}
}
