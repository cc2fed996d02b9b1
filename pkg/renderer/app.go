package renderer

import (
	"github.com/vango-dev/vrt/pkg/vdom"
)

// App is a root component bound to a renderer.
type App struct {
	r         *Renderer
	def       *Definition
	props     vdom.Props
	container any
	vnode     *vdom.VNode
}

// CreateApp prepares def as a root component with the given props.
func (r *Renderer) CreateApp(def *Definition, props vdom.Props) *App {
	return &App{r: r, def: def, props: props}
}

// Mount renders the app into container and returns the root instance.
// Mounting an already mounted app returns the existing instance.
func (a *App) Mount(container any) *Instance {
	if a.vnode != nil {
		a.r.logger.Warn("app is already mounted", "component", a.def.ComponentName())
		return a.Instance()
	}
	a.container = container
	a.vnode = vdom.Comp(a.def, a.props)
	a.r.Render(a.vnode, container)
	return a.Instance()
}

// Unmount tears the app down and empties its container.
func (a *App) Unmount() {
	if a.vnode == nil {
		return
	}
	a.r.Render(nil, a.container)
	a.vnode = nil
}

// Instance returns the root component instance, or nil before Mount.
func (a *App) Instance() *Instance {
	if a.vnode == nil {
		return nil
	}
	inst, _ := a.vnode.Instance.(*Instance)
	return inst
}

// Renderer returns the renderer the app mounts with.
func (a *App) Renderer() *Renderer { return a.r }
