package reactivity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/vrt/internal/logtest"
)

func TestComputedIsLazyAndCached(t *testing.T) {
	rt := New()
	n := rt.Ref(1)

	calls := 0
	double := NewComputed(rt, func() int {
		calls++
		return n.Get().(int) * 2
	})
	assert.Equal(t, 0, calls)
	assert.True(t, double.Dirty())

	assert.Equal(t, 2, double.Value())
	assert.Equal(t, 2, double.Value())
	assert.Equal(t, 1, calls)

	n.Set(2)
	assert.Equal(t, 1, calls, "invalidation must not recompute eagerly")
	assert.True(t, double.Dirty())

	assert.Equal(t, 4, double.Value())
	assert.Equal(t, 2, calls)
}

func TestComputedPropagatesToEffects(t *testing.T) {
	rt := New()
	n := rt.Ref(2)
	double := NewComputed(rt, func() int { return n.Get().(int) * 2 })

	var seen []int
	rt.Effect(func() { seen = append(seen, double.Value()) })

	n.Set(3)
	n.Set(3)
	assert.Equal(t, []int{4, 6}, seen)
}

func TestComputedChain(t *testing.T) {
	rt := New()
	state := rt.State(map[string]any{"first": "Ada", "last": "Lovelace"})

	full := NewComputed(rt, func() string {
		return state.Get("first").(string) + " " + state.Get("last").(string)
	})
	upper := NewComputed(rt, func() int { return len(full.Value()) })

	assert.Equal(t, 12, upper.Value())
	state.Set("first", "Augusta Ada")
	assert.Equal(t, 20, upper.Value())
}

func TestComputedWriteWarns(t *testing.T) {
	logger, logs := logtest.New()
	rt := New(WithLogger(logger))
	c := NewComputed(rt, func() int { return 1 })

	c.Set(5)
	assert.Equal(t, 1, c.Get())
	assert.Equal(t, []string{"R004"}, logs.Codes())
	assert.True(t, IsRef(c))
}

func TestComputedStop(t *testing.T) {
	rt := New()
	n := rt.Ref(1)
	c := NewComputed(rt, func() int { return n.Get().(int) })
	require.Equal(t, 1, c.Value())

	c.Stop()
	n.Set(2)
	assert.False(t, c.Dirty())
	assert.Equal(t, 1, c.Value())
}
