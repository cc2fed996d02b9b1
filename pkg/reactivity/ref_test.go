package reactivity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefTriggersOnChange(t *testing.T) {
	rt := New()
	r := rt.Ref("a")

	var seen []any
	rt.Effect(func() { seen = append(seen, r.Get()) })

	r.Set("b")
	r.Set("b")
	assert.Equal(t, []any{"a", "b"}, seen)
}

func TestRefNaNIsUnchanged(t *testing.T) {
	rt := New()
	r := rt.Ref(math.NaN())

	runs := 0
	rt.Effect(func() {
		runs++
		r.Get()
	})
	r.Set(math.NaN())
	assert.Equal(t, 1, runs)
}

func TestRefIsIdempotent(t *testing.T) {
	rt := New()
	r := rt.Ref(1)
	assert.Same(t, r, rt.Ref(r))
	assert.True(t, IsRef(r))
	assert.False(t, IsRef(1))
	assert.Equal(t, 1, Unref(r))
	assert.Equal(t, 2, Unref(2))
}

func TestRefWrapsObjects(t *testing.T) {
	rt := New()
	obj := NewObject("x", 1)
	r := rt.Ref(obj)

	inner := r.Get()
	require.True(t, IsReactive(inner))

	runs := 0
	rt.Effect(func() {
		runs++
		r.Get().(*Proxy).Get("x")
	})
	inner.(*Proxy).Set("x", 2)
	assert.Equal(t, 2, runs)

	// Assigning the proxy of the stored object is not a change.
	r.Set(inner)
	assert.Equal(t, 2, runs)
}

func TestToRef(t *testing.T) {
	rt := New()
	state := rt.State(map[string]any{"count": 1})
	count := ToRef(state, "count")

	var seen []any
	rt.Effect(func() { seen = append(seen, count.Get()) })

	state.Set("count", 2)
	count.Set(3)
	assert.Equal(t, []any{1, 2, 3}, seen)
	assert.Equal(t, 3, state.Get("count"))
}

func TestToRefFallbackAndExistingRef(t *testing.T) {
	rt := New()
	inner := rt.Ref(1)
	obj := NewObject("r", inner)

	assert.Same(t, inner, ToRef(obj, "r"))
	assert.Equal(t, "none", ToRef(obj, "missing", "none").Get())
}

func TestToRefs(t *testing.T) {
	rt := New()
	state := rt.State(map[string]any{"a": 1, "b": 2})

	refs := ToRefs(state)
	assert.Equal(t, []any{"a", "b"}, refs.Keys())

	b := refs.Get("b").(Reference)
	b.Set(20)
	assert.Equal(t, 20, state.Get("b"))

	list := rt.Reactive(NewArray("x", "y"))
	arrRefs := ToRefs(list.(Accessor))
	_, isArray := arrRefs.(*Array)
	require.True(t, isArray)
	assert.Equal(t, "y", arrRefs.Get(1).(Reference).Get())
}

func TestProxyRefs(t *testing.T) {
	rt := New()
	n := rt.Ref(1)
	obj := NewObject("n", n, "plain", "p")
	view := ProxyRefs(obj)

	assert.Equal(t, 1, view.Get("n"))
	assert.Equal(t, "p", view.Get("plain"))

	view.Set("n", 5)
	assert.Same(t, n, obj.Get("n"))
	assert.Equal(t, 5, n.Get())

	replacement := rt.Ref(9)
	view.Set("n", replacement)
	assert.Same(t, replacement, obj.Get("n"))

	view.Set("plain", "q")
	assert.Equal(t, "q", obj.Get("plain"))
	assert.Same(t, view, ProxyRefs(view))
}
