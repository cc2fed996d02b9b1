package reactivity

import "fmt"

// ValueKey is the key tracked for refs and computed values.
const ValueKey = "value"

// Computed is a lazily evaluated derived value. The getter runs on first
// read and again only after a dependency has changed.
type Computed[T any] struct {
	rt     *Runtime
	effect *Effect
	value  T
	dirty  bool
}

// NewComputed creates a computed value backed by getter.
func NewComputed[T any](rt *Runtime, getter func() T) *Computed[T] {
	c := &Computed[T]{rt: rt, dirty: true}
	c.effect = rt.NewEffect(
		func() any { return getter() },
		Lazy(),
		WithScheduler(func(*Effect) {
			if !c.dirty {
				c.dirty = true
				rt.Trigger(c, ValueKey, OpSet, nil)
			}
		}),
	)
	c.effect.computed = true
	return c
}

// Value returns the cached value, recomputing it when dirty. Reading
// subscribes the active effect to the computed value.
func (c *Computed[T]) Value() T {
	if c.dirty {
		v, _ := c.effect.Run().(T)
		c.value = v
		c.dirty = false
	}
	c.rt.Track(c, ValueKey)
	return c.value
}

// Get implements Reference.
func (c *Computed[T]) Get() any {
	return c.Value()
}

// Set implements Reference. Computed values are read-only, so the write is
// reported and dropped.
func (c *Computed[T]) Set(value any) {
	c.rt.warn("R004", fmt.Sprintf("value %v", value))
}

// Dirty reports whether the next read recomputes.
func (c *Computed[T]) Dirty() bool { return c.dirty }

// Effect returns the underlying lazy effect.
func (c *Computed[T]) Effect() *Effect { return c.effect }

// Stop detaches the computed value from its dependencies.
func (c *Computed[T]) Stop() { c.effect.Stop() }

func (c *Computed[T]) isRef() {}
