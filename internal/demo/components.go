package demo

import (
	"context"
	"reflect"
	"time"

	"github.com/vango-dev/vrt/pkg/host/memdom"
	"github.com/vango-dev/vrt/pkg/reactivity"
	"github.com/vango-dev/vrt/pkg/renderer"
	"github.com/vango-dev/vrt/pkg/vdom"
)

// Todo is one entry of the todo list.
type Todo struct {
	ID    int
	Title string
	Done  bool
}

// Counter shows a number with decrement and increment buttons and emits
// "change" with the new value.
var Counter = &renderer.Definition{
	Name: "Counter",
	Props: map[string]renderer.PropOption{
		"start": {Type: reflect.Int, Default: 0},
		"step":  {Type: reflect.Int, Default: 1},
	},
	Setup: func(props *reactivity.Proxy, sc *renderer.SetupContext) any {
		count := sc.Runtime().Ref(props.Get("start"))
		add := func(sign int) func() {
			return func() {
				next := count.Get().(int) + sign*props.Get("step").(int)
				count.Set(next)
				sc.Emit("change", next)
			}
		}
		return map[string]any{
			"count": count,
			"inc":   add(1),
			"dec":   add(-1),
		}
	},
	Render: func(c *renderer.RenderContext) *vdom.VNode {
		return vdom.Div(vdom.Class("counter"),
			vdom.Button(vdom.Class("dec"), vdom.OnClick(c.Get("dec")), "-"),
			vdom.Span(vdom.Class("value"), c.String("count")),
			vdom.Button(vdom.Class("inc"), vdom.OnClick(c.Get("inc")), "+"),
		)
	},
}

// TodoItem renders one todo and emits "toggle" and "remove" with its ID.
var TodoItem = &renderer.Definition{
	Name: "TodoItem",
	Props: map[string]renderer.PropOption{
		"todo": {Required: true},
	},
	Render: func(c *renderer.RenderContext) *vdom.VNode {
		todo, _ := c.Get("todo").(Todo)
		return vdom.Li(vdom.Class(map[string]bool{"todo": true, "done": todo.Done}),
			vdom.Span(vdom.Class("title"), vdom.OnClick(func() { c.Emit("toggle", todo.ID) }), todo.Title),
			vdom.Button(vdom.Class("remove"), vdom.OnClick(func() { c.Emit("remove", todo.ID) }), "x"),
		)
	},
}

// TodoList keeps its entries in a ref holding an immutable slice; every
// edit stores a fresh copy so the write counts as a change.
var TodoList = &renderer.Definition{
	Name: "TodoList",
	Props: map[string]renderer.PropOption{
		"initial": {Default: func() any { return []string(nil) }},
	},
	Setup: func(props *reactivity.Proxy, sc *renderer.SetupContext) any {
		rt := sc.Runtime()
		nextID := 1
		var seed []Todo
		initial, _ := props.Get("initial").([]string)
		for _, title := range initial {
			seed = append(seed, Todo{ID: nextID, Title: title})
			nextID++
		}
		todos := rt.Ref(seed)
		draft := rt.Ref("")

		list := func() []Todo {
			items, _ := todos.Get().([]Todo)
			return append([]Todo(nil), items...)
		}

		return map[string]any{
			"todos": todos,
			"draft": draft,
			"setDraft": func(e *memdom.Event) {
				s, _ := e.Detail.(string)
				draft.Set(s)
			},
			"add": func() {
				title, _ := draft.Get().(string)
				if title == "" {
					return
				}
				todos.Set(append(list(), Todo{ID: nextID, Title: title}))
				nextID++
				draft.Set("")
			},
			"toggle": func(id int) {
				items := list()
				for i := range items {
					if items[i].ID == id {
						items[i].Done = !items[i].Done
					}
				}
				todos.Set(items)
			},
			"remove": func(id int) {
				items := list()
				out := items[:0]
				for _, t := range items {
					if t.ID != id {
						out = append(out, t)
					}
				}
				todos.Set(out)
			},
			"reverse": func() {
				items := list()
				for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
					items[i], items[j] = items[j], items[i]
				}
				todos.Set(items)
			},
		}
	},
	Render: func(c *renderer.RenderContext) *vdom.VNode {
		todos, _ := c.Get("todos").([]Todo)
		left := 0
		for _, t := range todos {
			if !t.Done {
				left++
			}
		}
		return vdom.Section(vdom.Class("todos"),
			vdom.Input(vdom.Class("new-todo"), vdom.On("input", c.Get("setDraft"))),
			vdom.Button(vdom.Class("add"), vdom.OnClick(c.Get("add")), "add"),
			vdom.Button(vdom.Class("reverse"), vdom.OnClick(c.Get("reverse")), "reverse"),
			vdom.Ul(vdom.Range(todos, func(t Todo, _ int) *vdom.VNode {
				return vdom.Comp(TodoItem, vdom.Key(t.ID), vdom.Props{
					"todo":     t,
					"onToggle": c.Get("toggle"),
					"onRemove": c.Get("remove"),
				})
			})),
			vdom.Footer(vdom.Textf("%d left", left)),
		)
	},
}

// Card lays out a "header" slot above its default slot.
var Card = &renderer.Definition{
	Name: "Card",
	Render: func(c *renderer.RenderContext) *vdom.VNode {
		return vdom.Div(vdom.Class("card"),
			vdom.Header(c.RenderSlot("header", nil, vdom.Text("untitled"))),
			c.RenderSlot(vdom.DefaultSlot, nil),
		)
	},
}

// Panel is the component the async panel resolves to.
var Panel = &renderer.Definition{
	Name: "Panel",
	Render: func(*renderer.RenderContext) *vdom.VNode {
		return vdom.P(vdom.Class("panel"), "loaded")
	},
}

// Spinner is shown while the async panel loads.
var Spinner = &renderer.Definition{
	Name: "Spinner",
	Render: func(*renderer.RenderContext) *vdom.VNode {
		return vdom.P(vdom.Class("spinner"), "loading...")
	},
}

// Failure renders the error of a failed async load.
var Failure = &renderer.Definition{
	Name:  "Failure",
	Props: map[string]renderer.PropOption{"error": {}},
	Render: func(c *renderer.RenderContext) *vdom.VNode {
		err, _ := c.Get("error").(error)
		msg := "unknown error"
		if err != nil {
			msg = err.Error()
		}
		return vdom.P(vdom.Class("error"), msg)
	},
}

// AsyncPanel returns an async component that resolves to Panel after
// latency, or fails with a timeout error once timeout elapses first.
func AsyncPanel(latency, timeout time.Duration) *renderer.Definition {
	return renderer.DefineAsyncComponent(renderer.AsyncOptions{
		Name: "AsyncPanel",
		Loader: func(ctx context.Context) (*renderer.Definition, error) {
			select {
			case <-time.After(latency):
				return Panel, nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		},
		Timeout:          timeout,
		LoadingComponent: Spinner,
		ErrorComponent:   Failure,
	})
}

// KeyedList renders the "items" prop as keyed list entries. It is the
// workload of the reorder benchmark.
var KeyedList = &renderer.Definition{
	Name:  "KeyedList",
	Props: map[string]renderer.PropOption{"items": {Required: true}},
	Render: func(c *renderer.RenderContext) *vdom.VNode {
		items, _ := c.Get("items").([]int)
		return vdom.Ul(vdom.Range(items, func(item int, _ int) *vdom.VNode {
			return vdom.Li(vdom.Key(item), vdom.Textf("%d", item))
		}))
	},
}
