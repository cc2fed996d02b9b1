package renderer

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/vrt/pkg/reactivity"
	"github.com/vango-dev/vrt/pkg/scheduler"
	"github.com/vango-dev/vrt/pkg/vdom"
)

// RenderFunc produces the subtree of a component.
type RenderFunc func(c *RenderContext) *vdom.VNode

// Hook is a lifecycle callback.
type Hook func(c *RenderContext)

// Definition describes a component. A *Definition is used directly as the
// Comp of a component vnode.
type Definition struct {
	Name  string
	Props map[string]PropOption

	// Data returns the initial reactive state of an instance.
	Data func() map[string]any

	// Setup runs once per instance after props and state exist. It may
	// return a map or reactivity.Accessor of bindings exposed to the
	// render context, or a RenderFunc that replaces Render.
	Setup func(props *reactivity.Proxy, ctx *SetupContext) any

	Render RenderFunc

	BeforeCreate  Hook
	Created       Hook
	BeforeMount   Hook
	Mounted       Hook
	BeforeUpdate  Hook
	Updated       Hook
	BeforeUnmount Hook
	Unmounted     Hook
}

// ComponentName implements vdom.Component.
func (d *Definition) ComponentName() string {
	if d.Name == "" {
		return "Anonymous"
	}
	return d.Name
}

type hookKind uint8

const (
	hookBeforeMount hookKind = iota
	hookMounted
	hookBeforeUpdate
	hookUpdated
	hookBeforeUnmount
	hookUnmounted
	hookCount
)

// Instance is a mounted component.
type Instance struct {
	uid    uint64
	r      *Renderer
	def    *Definition
	vnode  *vdom.VNode
	parent *Instance

	rawProps   *reactivity.Object
	props      *reactivity.Proxy
	attrs      vdom.Props
	rawState   *reactivity.Object
	state      *reactivity.Proxy
	setupState reactivity.Accessor
	slots      vdom.Slots

	render  RenderFunc
	ctx     *RenderContext
	subTree *vdom.VNode
	effect  *reactivity.Effect
	scope   []*reactivity.Effect
	job     *scheduler.Job
	hooks   [hookCount][]func()
	cleanup []func()

	isMounted   bool
	isUnmounted bool
	renders     int
}

// UID returns the instance number, unique per renderer.
func (inst *Instance) UID() uint64 { return inst.uid }

// Name returns the component name.
func (inst *Instance) Name() string { return inst.def.ComponentName() }

// Definition returns the component definition.
func (inst *Instance) Definition() *Definition { return inst.def }

// Parent returns the parent instance, nil for a root component.
func (inst *Instance) Parent() *Instance { return inst.parent }

// Props returns the shallow-reactive props object.
func (inst *Instance) Props() *reactivity.Proxy { return inst.props }

// State returns the reactive state built from Data.
func (inst *Instance) State() *reactivity.Proxy { return inst.state }

// Context returns the render context.
func (inst *Instance) Context() *RenderContext { return inst.ctx }

// SubTree returns the vnode tree from the latest render.
func (inst *Instance) SubTree() *vdom.VNode { return inst.subTree }

// Effect returns the render effect.
func (inst *Instance) Effect() *reactivity.Effect { return inst.effect }

// Job returns the update job queued when dependencies change.
func (inst *Instance) Job() *scheduler.Job { return inst.job }

// Renders counts executions of the render function.
func (inst *Instance) Renders() int { return inst.renders }

// IsMounted reports whether the first render has been mounted.
func (inst *Instance) IsMounted() bool { return inst.isMounted }

// IsUnmounted reports whether the instance has been torn down.
func (inst *Instance) IsUnmounted() bool { return inst.isUnmounted }

func (r *Renderer) mountComponent(vnode *vdom.VNode, container, anchor any, parent *Instance) {
	def, ok := vnode.Comp.(*Definition)
	if !ok {
		r.logger.Error("unsupported component type", "component", describe(vnode))
		return
	}

	r.nextUID++
	inst := &Instance{
		uid:    r.nextUID,
		r:      r,
		def:    def,
		vnode:  vnode,
		parent: parent,
		slots:  vnode.Slots,
	}
	vnode.Instance = inst
	inst.ctx = &RenderContext{inst: inst}

	inst.setup()
	r.setupRenderEffect(inst, container, anchor)
}

func (inst *Instance) setup() {
	r, rt := inst.r, inst.r.rt
	def := inst.def

	props, attrs := inst.resolveProps(inst.vnode.Props)
	inst.attrs = attrs
	inst.rawProps = reactivity.ObjectFrom(props)
	inst.props = rt.ShallowReactive(inst.rawProps).(*reactivity.Proxy)

	if def.BeforeCreate != nil {
		rt.Untracked(func() { def.BeforeCreate(inst.ctx) })
	}

	var data map[string]any
	if def.Data != nil {
		rt.Untracked(func() { data = def.Data() })
	}
	inst.rawState = reactivity.ObjectFrom(data)
	inst.state = rt.Reactive(inst.rawState).(*reactivity.Proxy)

	inst.render = def.Render
	if def.Setup != nil {
		sc := &SetupContext{inst: inst}
		var result any
		inst.scope = rt.CollectEffects(func() {
			rt.Untracked(func() { result = def.Setup(inst.props, sc) })
		})

		switch v := result.(type) {
		case nil:
		case RenderFunc:
			inst.render = v
		case func(*RenderContext) *vdom.VNode:
			inst.render = v
		case map[string]any:
			inst.setupState = reactivity.ProxyRefs(reactivity.ObjectFrom(v))
		case reactivity.Accessor:
			inst.setupState = reactivity.ProxyRefs(v)
		default:
			r.logger.Warn("setup returned an unsupported value",
				"component", def.ComponentName(), "type", typeName(v))
		}
	}

	if def.Created != nil {
		rt.Untracked(func() { def.Created(inst.ctx) })
	}

	for kind, h := range map[hookKind]Hook{
		hookBeforeMount:   def.BeforeMount,
		hookMounted:       def.Mounted,
		hookBeforeUpdate:  def.BeforeUpdate,
		hookUpdated:       def.Updated,
		hookBeforeUnmount: def.BeforeUnmount,
		hookUnmounted:     def.Unmounted,
	} {
		if h != nil {
			inst.hooks[kind] = append(inst.hooks[kind], func() { h(inst.ctx) })
		}
	}
}

func (inst *Instance) callHook(kind hookKind) {
	for _, fn := range inst.hooks[kind] {
		inst.r.rt.Untracked(fn)
	}
}

// setupRenderEffect wraps the render in an effect whose reruns are queued
// as the instance's update job. The first run mounts synchronously.
func (r *Renderer) setupRenderEffect(inst *Instance, container, anchor any) {
	inst.job = scheduler.NewJob(inst.Name(), func() {
		if !inst.isUnmounted {
			inst.effect.Run()
		}
	})
	inst.effect = r.rt.NewEffect(func() any {
		r.updateInstance(inst, container, anchor)
		return nil
	}, reactivity.WithScheduler(func(*reactivity.Effect) {
		r.queue.QueueJob(inst.job)
	}))
}

func (r *Renderer) updateInstance(inst *Instance, container, anchor any) {
	_, span := r.tracer.Start(context.Background(), "component.render",
		trace.WithAttributes(
			attribute.String("vrt.component", inst.Name()),
			attribute.Bool("vrt.mounted", inst.isMounted),
		))
	defer span.End()

	if r.recorder != nil {
		r.recorder.ComponentRender(inst.Name())
	}

	if !inst.isMounted {
		inst.callHook(hookBeforeMount)
		tree := inst.renderRoot()
		inst.subTree = tree
		r.patch(nil, tree, container, anchor, inst)
		inst.vnode.El = tree.El
		inst.isMounted = true
		inst.callHook(hookMounted)
		return
	}

	inst.callHook(hookBeforeUpdate)
	prev := inst.subTree
	next := inst.renderRoot()
	inst.subTree = next
	r.patch(prev, next, r.host.Parent(r.firstHostNode(prev)), nil, inst)
	inst.vnode.El = next.El
	inst.updateAncestorEl(next.El)
	inst.callHook(hookUpdated)
}

// updateAncestorEl hands el to every ancestor whose root is this
// component, so wrappers do not keep a replaced host node.
func (inst *Instance) updateAncestorEl(el any) {
	child := inst
	for p := inst.parent; p != nil && p.subTree == child.vnode; p = p.parent {
		p.vnode.El = el
		child = p
	}
}

func (inst *Instance) renderRoot() *vdom.VNode {
	inst.renders++
	var tree *vdom.VNode
	if inst.render != nil {
		tree = inst.render(inst.ctx)
	} else {
		inst.r.logger.Warn("component has no render function", "component", inst.Name())
	}
	if tree == nil {
		return vdom.Comment("")
	}
	if tree != inst.subTree {
		tree = cloneIfMounted(tree)
	}
	return tree
}

// updateComponent patches a component vnode of the same definition. New
// props are written into the instance's props object, which queues the
// update through the instance's own dependencies.
func (r *Renderer) updateComponent(n1, n2 *vdom.VNode) {
	inst, _ := n1.Instance.(*Instance)
	n2.Instance = inst
	n2.El = n1.El
	if inst == nil {
		return
	}
	inst.vnode = n2

	hadSlots := len(inst.slots) > 0
	inst.slots = n2.Slots

	if hasPropsChanged(n1.Props, n2.Props) {
		inst.updateProps(n2.Props)
	}
	if hadSlots || len(n2.Slots) > 0 {
		r.queue.QueueJob(inst.job)
	}
}

func (r *Renderer) unmountComponent(inst *Instance, doRemove bool) {
	inst.callHook(hookBeforeUnmount)

	inst.effect.Stop()
	for _, e := range inst.scope {
		e.Stop()
	}
	inst.scope = nil
	inst.job.Disable()
	r.queue.Invalidate(inst.job)
	for _, fn := range inst.cleanup {
		fn()
	}
	inst.cleanup = nil

	if inst.subTree != nil {
		r.unmount(inst.subTree, inst, doRemove)
	}
	inst.isUnmounted = true
	inst.callHook(hookUnmounted)
	r.rt.Release(inst.rawProps, inst.rawState)
}
