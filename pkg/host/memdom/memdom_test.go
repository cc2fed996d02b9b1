package memdom

import (
	"testing"
	"time"
)

func tickingClock() func() time.Time {
	now := time.Unix(0, 0)
	return func() time.Time {
		now = now.Add(time.Millisecond)
		return now
	}
}

func TestInsertAndSerialize(t *testing.T) {
	d := New()
	root := d.NewRoot()

	ul := d.CreateElement("ul")
	d.Insert(ul, root, nil)
	for _, s := range []string{"a", "c"} {
		li := d.CreateElement("li")
		d.SetElementText(li, s)
		d.Insert(li, ul, nil)
	}
	b := d.CreateElement("li")
	d.SetElementText(b, "b & <b>")
	d.Insert(b, ul, ul.(*Node).Children[1])
	d.Insert(d.CreateComment("end"), root, nil)

	want := `<ul><li>a</li><li>b &amp; &lt;b&gt;</li><li>c</li></ul><!--end-->`
	if got := InnerHTML(root); got != want {
		t.Errorf("InnerHTML = %q, want %q", got, want)
	}
	if got := OuterHTML(root); got != `<div id="app">`+want+`</div>` {
		t.Errorf("OuterHTML = %q", got)
	}
}

func TestInsertExistingNodeIsMove(t *testing.T) {
	d := New()
	root := d.NewRoot()
	a := d.CreateText("a")
	b := d.CreateText("b")
	d.Insert(a, root, nil)
	d.Insert(b, root, nil)
	d.ResetStats()

	d.Insert(b, root, a)

	if got := root.TextContent(); got != "ba" {
		t.Errorf("TextContent = %q, want ba", got)
	}
	stats := d.Stats()
	if stats.Moves != 1 || stats.Inserts != 0 {
		t.Errorf("stats = %+v, want one move", stats)
	}

	d.Remove(a)
	d.Remove(a)
	if d.Stats().Removes != 1 || len(root.Children) != 1 {
		t.Errorf("remove: stats=%+v children=%d", d.Stats(), len(root.Children))
	}
	if d.Parent(a) != nil || d.NextSibling(b) != nil {
		t.Error("detached node still linked")
	}
}

func TestPatchPropClassAndAttributes(t *testing.T) {
	d := New()
	el := d.CreateElement("div").(*Node)

	d.PatchProp(el, "class", nil, []any{"a", map[string]bool{"b": true, "c": false}})
	d.PatchProp(el, "data-x", nil, 1)
	d.PatchProp(el, "aria-hidden", nil, false)

	if got := OuterHTML(el); got != `<div class="a b" data-x="1"></div>` {
		t.Errorf("OuterHTML = %q", got)
	}
	if el.Prop("className") != "a b" {
		t.Errorf("className = %v", el.Prop("className"))
	}

	d.PatchProp(el, "class", "a b", nil)
	d.PatchProp(el, "data-x", 1, nil)
	if got := OuterHTML(el); got != `<div></div>` {
		t.Errorf("OuterHTML after removal = %q", got)
	}
}

func TestPatchPropDOMProperties(t *testing.T) {
	d := New()
	input := d.CreateElement("input").(*Node)

	tests := []struct {
		key  string
		next any
		want any
	}{
		{"disabled", "", true},
		{"disabled", false, false},
		{"checked", true, true},
		{"value", "hello", "hello"},
		{"id", "name", "name"},
	}
	for _, tt := range tests {
		d.PatchProp(input, tt.key, nil, tt.next)
		if got := input.Prop(tt.key); got != tt.want {
			t.Errorf("%s = %v, want %v", tt.key, got, tt.want)
		}
	}

	if got := OuterHTML(input); got != `<input checked="" id="name">` {
		t.Errorf("OuterHTML = %q", got)
	}

	// input.form is read-only and always set as an attribute.
	d.PatchProp(input, "form", nil, "f1")
	if v, ok := input.Attr("form"); !ok || v != "f1" {
		t.Errorf("form attr = %q, %v", v, ok)
	}
	if input.Prop("form") != nil {
		t.Error("form must not be stored as a property")
	}
}

func TestInvokerSwapsHandlerInPlace(t *testing.T) {
	d := New(WithClock(tickingClock()))
	btn := d.CreateElement("button").(*Node)

	var got []string
	d.PatchProp(btn, "onClick", nil, func() { got = append(got, "first") })
	inv := btn.Listener("click")
	if inv == nil {
		t.Fatal("listener not attached")
	}

	d.PatchProp(btn, "onClick", nil, func(e *Event) { got = append(got, "second:"+e.Type) })
	if btn.Listener("click") != inv {
		t.Error("replacing a handler must keep the invoker")
	}

	d.Click(btn)
	if len(got) != 1 || got[0] != "second:click" {
		t.Errorf("handlers called = %v", got)
	}

	d.PatchProp(btn, "onClick", nil, nil)
	if btn.Listener("click") != nil {
		t.Error("listener not removed")
	}
}

func TestVariadicHandlers(t *testing.T) {
	d := New(WithClock(tickingClock()))
	btn := d.CreateElement("button").(*Node)

	var got []string
	handlers := []any{
		func(args ...any) {
			if len(args) == 1 {
				if e, ok := args[0].(*Event); ok {
					got = append(got, "any:"+e.Type)
				}
			}
		},
		func(events ...*Event) { got = append(got, "events:"+events[0].Type) },
		func(e *Event, rest ...string) { got = append(got, "fixed:"+e.Type+":"+string(rune('0'+len(rest)))) },
		func(n int, rest ...int) { got = append(got, "zero:"+string(rune('0'+n+len(rest)))) },
	}
	d.PatchProp(btn, "onClick", nil, handlers)

	d.Click(btn)
	want := []string{"any:click", "events:click", "fixed:click:0", "zero:0"}
	if len(got) != len(want) {
		t.Fatalf("handlers called = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDispatchBubblesAndStops(t *testing.T) {
	d := New(WithClock(tickingClock()))
	root := d.NewRoot()
	outer := d.CreateElement("div").(*Node)
	inner := d.CreateElement("p").(*Node)
	d.Insert(outer, root, nil)
	d.Insert(inner, outer, nil)

	var order []string
	d.PatchProp(outer, "onClick", nil, func() { order = append(order, "outer") })
	d.PatchProp(inner, "onClick", nil, []any{
		func() { order = append(order, "inner1") },
		func(e *Event) { order = append(order, "inner2") },
	})

	d.Click(inner)
	if want := "inner1,inner2,outer"; join(order) != want {
		t.Errorf("order = %v, want %s", order, want)
	}

	order = nil
	d.PatchProp(inner, "onClick", nil, func(e *Event) {
		order = append(order, "inner")
		e.StopPropagation()
	})
	d.Click(inner)
	if join(order) != "inner" {
		t.Errorf("order after stop = %v", order)
	}
}

func TestDispatchSkipsListenersAttachedDuringDispatch(t *testing.T) {
	d := New(WithClock(tickingClock()))
	root := d.NewRoot()
	outer := d.CreateElement("div").(*Node)
	inner := d.CreateElement("p").(*Node)
	d.Insert(outer, root, nil)
	d.Insert(inner, outer, nil)

	outerCalled := false
	d.PatchProp(inner, "onClick", nil, func() {
		// Simulates a synchronous re-render attaching a parent handler.
		d.PatchProp(outer, "onClick", nil, func() { outerCalled = true })
	})

	d.Click(inner)
	if outerCalled {
		t.Error("listener attached after the event fired must not run")
	}

	d.Click(inner)
	if !outerCalled {
		t.Error("listener should run for later events")
	}
}

func TestCheckpointRunsAfterEachListener(t *testing.T) {
	checkpoints := 0
	d := New(WithCheckpoint(func() { checkpoints++ }))
	root := d.NewRoot()
	el := d.CreateElement("div").(*Node)
	d.Insert(el, root, nil)
	d.PatchProp(el, "onClick", nil, func() {})
	d.PatchProp(root, "onClick", nil, func() {})

	d.Click(el)
	if checkpoints != 2 {
		t.Errorf("checkpoints = %d, want 2", checkpoints)
	}
}

func TestInputSetsValue(t *testing.T) {
	d := New()
	input := d.CreateElement("input").(*Node)
	var seen any
	d.PatchProp(input, "onInput", nil, func(e *Event) { seen = e.Detail })

	d.Input(input, "typed")
	if seen != "typed" || input.Prop("value") != "typed" {
		t.Errorf("seen=%v value=%v", seen, input.Prop("value"))
	}
}

func TestQuery(t *testing.T) {
	d := New()
	root := d.NewRoot()
	ul := d.CreateElement("ul").(*Node)
	d.Insert(ul, root, nil)
	for i, cls := range []string{"item", "item done", "item"} {
		li := d.CreateElement("li").(*Node)
		d.PatchProp(li, "class", nil, cls)
		d.SetElementText(li, string(rune('a'+i)))
		d.Insert(li, ul, nil)
	}

	if got := root.Query("#app"); got != root {
		t.Error("#app should match the root")
	}
	if got := root.Query("li.done"); got == nil || got.TextContent() != "b" {
		t.Errorf("li.done = %v", got)
	}
	if got := len(root.QueryAll(".item")); got != 3 {
		t.Errorf("QueryAll(.item) = %d", got)
	}
	if got := root.At(0, 2); got == nil || got.TextContent() != "c" {
		t.Errorf("At(0, 2) = %v", got)
	}
	if root.At(5) != nil {
		t.Error("At out of range should be nil")
	}
}

func join(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ","
		}
		out += p
	}
	return out
}
