package vtest_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/vango-dev/vrt/pkg/host/memdom"
	"github.com/vango-dev/vrt/pkg/reactivity"
	"github.com/vango-dev/vrt/pkg/renderer"
	"github.com/vango-dev/vrt/pkg/vdom"
	"github.com/vango-dev/vrt/pkg/vtest"
)

var counter = &renderer.Definition{
	Name:  "Counter",
	Props: map[string]renderer.PropOption{"start": {}},
	Setup: func(props *reactivity.Proxy, sc *renderer.SetupContext) any {
		start, _ := props.Get("start").(int)
		return map[string]any{"count": sc.Runtime().Ref(start)}
	},
	Render: func(c *renderer.RenderContext) *vdom.VNode {
		return vdom.Button(
			vdom.Class("primary"),
			vdom.OnClick(func() { c.Set("count", c.Int("count")+1) }),
			vdom.Textf("%d", c.Int("count")),
		)
	},
}

func TestHarnessMountAndClick(t *testing.T) {
	h := vtest.NewHarness(t)
	inst := h.Mount(counter, vdom.Props{"start": 1})

	vtest.ExpectHTML(t, h, `<button class="primary">1</button>`)

	h.Click("button")
	h.Click("button.primary")

	vtest.ExpectHTML(t, h, `<button class="primary">3</button>`)
	if inst.Renders() != 3 {
		t.Errorf("expected 3 renders, got %d", inst.Renders())
	}
}

func TestHarnessActBatches(t *testing.T) {
	h := vtest.NewHarness(t)
	inst := h.Mount(counter, nil)

	h.Act(func() {
		ctx := inst.Context()
		ctx.Set("count", 5)
		ctx.Set("count", 6)
	})

	vtest.ExpectContains(t, h, "6")
	if inst.Renders() != 2 {
		t.Errorf("expected one re-render, got %d renders", inst.Renders())
	}
}

func TestHarnessInput(t *testing.T) {
	h := vtest.NewHarness(t)
	echo := &renderer.Definition{
		Name: "Echo",
		Data: func() map[string]any { return map[string]any{"text": ""} },
		Render: func(c *renderer.RenderContext) *vdom.VNode {
			return vdom.Div(
				vdom.Input(vdom.Props{"type": "text", "onInput": func(e *memdom.Event) { c.Set("text", e.Detail) }}),
				vdom.P(c.String("text")),
			)
		},
	}
	h.Mount(echo, nil)

	h.Input("input", "hello")

	vtest.ExpectContains(t, h, "<p>hello</p>")
	vtest.ExpectAttribute(t, h, "input", "type", "text")
}

func TestHarnessWarnings(t *testing.T) {
	h := vtest.NewHarness(t)
	h.Mount(&renderer.Definition{
		Name:   "Broken",
		Render: func(c *renderer.RenderContext) *vdom.VNode { return vdom.Div(c.String("missing")) },
	}, nil)

	vtest.ExpectWarning(t, h, "C001")
	h.ResetWarnings()
	if len(h.Warnings()) != 0 {
		t.Errorf("warnings not reset: %v", h.Warnings())
	}
}

func TestBuilderOptions(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	h := vtest.New().
		WithLogger(logger).
		WithRecursionLimit(3).
		Build(t)
	h.Mount(&renderer.Definition{
		Name:   "Broken",
		Render: func(c *renderer.RenderContext) *vdom.VNode { return vdom.Div(c.String("missing")) },
	}, nil)

	vtest.ExpectWarning(t, h, "C001")
	if !strings.Contains(buf.String(), "C001") {
		t.Errorf("expected warning in the extra logger, got %q", buf.String())
	}
}

func TestUnmount(t *testing.T) {
	h := vtest.NewHarness(t)
	inst := h.Mount(counter, nil)
	h.Unmount()

	if h.HTML() != "" {
		t.Errorf("expected empty root, got %q", h.HTML())
	}
	if !inst.IsUnmounted() {
		t.Error("instance not unmounted")
	}
}

func TestRenderToString(t *testing.T) {
	node := vdom.Div(
		vdom.Class("container"),
		vdom.H1(vdom.Text("Hello")),
		vdom.P(vdom.Text("World")),
	)

	html := vtest.RenderToString(node)

	want := `<div class="container"><h1>Hello</h1><p>World</p></div>`
	if html != want {
		t.Errorf("RenderToString = %q, want %q", html, want)
	}
}

func TestExpectContains_Pass(t *testing.T) {
	h := vtest.NewHarness(t)
	h.Render(vdom.Div(vdom.Text("Hello World")))

	// This should pass (no error)
	mockT := &testing.T{}
	vtest.ExpectContains(mockT, h, "Hello")
	vtest.ExpectNotContains(mockT, h, "Goodbye")
	vtest.ExpectElement(mockT, h, "div")

	if mockT.Failed() {
		t.Error("assertions should have passed")
	}
}

func TestTickingClock(t *testing.T) {
	clock := vtest.TickingClock()
	a, b := clock(), clock()
	if !a.Before(b) {
		t.Errorf("clock did not advance: %v, %v", a, b)
	}
}
