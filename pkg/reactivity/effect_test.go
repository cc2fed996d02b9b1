package reactivity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectRerunsOnChange(t *testing.T) {
	rt := New()
	state := rt.State(map[string]any{"count": 0})

	var seen []any
	rt.Effect(func() {
		seen = append(seen, state.Get("count"))
	})

	state.Set("count", 1)
	state.Set("count", 1)
	state.Set("count", 2)

	assert.Equal(t, []any{0, 1, 2}, seen)
}

func TestEffectCleanupDropsStaleBranches(t *testing.T) {
	rt := New()
	state := rt.State(map[string]any{"ok": true, "a": "A", "b": "B"})

	runs := 0
	rt.Effect(func() {
		runs++
		if state.Get("ok").(bool) {
			state.Get("a")
		} else {
			state.Get("b")
		}
	})
	require.Equal(t, 1, runs)

	state.Set("ok", false)
	assert.Equal(t, 2, runs)

	// "a" is no longer read, so writing it must not re-run the effect.
	state.Set("a", "A2")
	assert.Equal(t, 2, runs)
	assert.Equal(t, 0, rt.subscriberCount(ToRaw(state), "a"))

	state.Set("b", "B2")
	assert.Equal(t, 3, runs)
}

func TestNestedEffectsRestoreOuter(t *testing.T) {
	rt := New()
	state := rt.State(map[string]any{"a": 1, "b": 1})

	outer, inner := 0, 0
	rt.Effect(func() {
		outer++
		rt.Effect(func() {
			inner++
			state.Get("b")
		})
		state.Get("a")
	})
	require.Equal(t, 1, outer)
	require.Equal(t, 1, inner)

	state.Set("a", 2)
	assert.Equal(t, 2, outer)
	assert.Equal(t, 2, inner)

	state.Set("b", 2)
	assert.Equal(t, 2, outer)
	assert.Equal(t, 4, inner)
	assert.Nil(t, rt.ActiveEffect())
}

func TestEffectSelfWriteDoesNotLoop(t *testing.T) {
	rt := New()
	state := rt.State(map[string]any{"n": 0})

	runs := 0
	rt.Effect(func() {
		runs++
		state.Set("n", state.Get("n").(int)+1)
	})

	assert.Equal(t, 1, runs)
	assert.Equal(t, 1, state.Get("n"))
}

func TestEffectScheduler(t *testing.T) {
	rt := New()
	state := rt.State(map[string]any{"n": 0})

	runs := 0
	var scheduled []*Effect
	e := rt.Effect(func() {
		runs++
		state.Get("n")
	}, WithScheduler(func(e *Effect) {
		scheduled = append(scheduled, e)
	}))

	state.Set("n", 1)
	assert.Equal(t, 1, runs)
	require.Len(t, scheduled, 1)
	assert.Same(t, e, scheduled[0])

	scheduled[0].Run()
	assert.Equal(t, 2, runs)
}

func TestLazyEffect(t *testing.T) {
	rt := New()
	runs := 0
	e := rt.NewEffect(func() any {
		runs++
		return "done"
	}, Lazy())

	assert.Equal(t, 0, runs)
	assert.Equal(t, "done", e.Run())
	assert.Equal(t, 1, runs)
}

func TestEffectStop(t *testing.T) {
	rt := New()
	state := rt.State(map[string]any{"n": 0})

	runs, stops := 0, 0
	e := rt.Effect(func() {
		runs++
		state.Get("n")
	}, OnStop(func() { stops++ }))

	e.Stop()
	e.Stop()
	assert.Equal(t, 1, stops)
	assert.False(t, e.Active())
	assert.Equal(t, 0, e.DepCount())

	state.Set("n", 1)
	assert.Equal(t, 1, runs)

	// Calling a stopped effect re-executes and re-subscribes it.
	e.Run()
	assert.Equal(t, 2, runs)
	state.Set("n", 2)
	assert.Equal(t, 3, runs)
}

func TestEffectPanicRestoresActiveEffect(t *testing.T) {
	rt := New()
	require.Panics(t, func() {
		rt.Effect(func() { panic("boom") })
	})
	assert.Nil(t, rt.ActiveEffect())
	assert.Empty(t, rt.effectStack)
}

func TestEffectsRunInCreationOrder(t *testing.T) {
	rt := New()
	state := rt.State(map[string]any{"n": 0})

	var order []string
	for _, name := range []string{"first", "second", "third"} {
		rt.Effect(func() {
			state.Get("n")
			order = append(order, name)
		})
	}
	order = nil

	state.Set("n", 1)
	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestUntracked(t *testing.T) {
	rt := New()
	state := rt.State(map[string]any{"n": 0})

	runs := 0
	rt.Effect(func() {
		runs++
		rt.Untracked(func() { state.Get("n") })
	})

	state.Set("n", 1)
	assert.Equal(t, 1, runs)
}

func TestResetDropsSubscriptions(t *testing.T) {
	rt := New()
	state := rt.State(map[string]any{"n": 0})

	runs := 0
	rt.Effect(func() {
		runs++
		state.Get("n")
	})

	rt.Reset()
	// The old proxy is no longer the cached wrapper for its target.
	state.Set("n", 1)
	assert.Equal(t, 1, runs)
	assert.NotSame(t, state, rt.Reactive(ToRaw(state)))
}

func TestEffectStopPrunesStore(t *testing.T) {
	rt := New()
	state := rt.State(map[string]any{"a": 1, "b": 2})
	count := rt.Ref(0)

	e := rt.Effect(func() {
		state.Get("a")
		state.Get("b")
		count.Get()
	})
	other := rt.Effect(func() { state.Get("a") })
	assert.Equal(t, 2, rt.TrackedTargets())

	e.Stop()
	assert.Equal(t, 1, rt.TrackedTargets())
	assert.Equal(t, 1, rt.subscriberCount(ToRaw(state), "a"))
	assert.Equal(t, 0, rt.subscriberCount(ToRaw(state), "b"))

	other.Stop()
	assert.Equal(t, 0, rt.TrackedTargets())
}

func TestRelease(t *testing.T) {
	rt := New()
	raw := ObjectFrom(map[string]any{"n": 0})
	state := rt.Reactive(raw).(*Proxy)
	view := rt.Readonly(state)
	rt.ShallowReactive(raw)
	assert.Equal(t, 3, rt.CachedProxies())

	runs := 0
	rt.Effect(func() {
		runs++
		state.Get("n")
	})
	require.Equal(t, 1, rt.TrackedTargets())

	rt.Release(state)
	assert.Equal(t, 0, rt.TrackedTargets())
	assert.Equal(t, 0, rt.CachedProxies())

	state.Set("n", 1)
	assert.Equal(t, 1, runs)
	assert.NotSame(t, view, rt.Readonly(rt.Reactive(raw)))

	rt.Release(nil, 42, []int{1})
}

func TestCollectEffects(t *testing.T) {
	rt := New()
	state := rt.State(map[string]any{"n": 1})

	var double *Computed[int]
	effects := rt.CollectEffects(func() {
		double = NewComputed(rt, func() int { return state.Get("n").(int) * 2 })
		rt.Effect(func() { double.Value() })
	})
	outside := rt.Effect(func() { state.Get("n") })

	require.Len(t, effects, 2)
	assert.Same(t, double.Effect(), effects[0])
	assert.NotContains(t, effects, outside)

	for _, e := range effects {
		e.Stop()
	}
	assert.Equal(t, 1, rt.TrackedTargets())
	assert.Equal(t, 1, rt.subscriberCount(ToRaw(state), "n"))
}
