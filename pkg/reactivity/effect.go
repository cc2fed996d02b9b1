package reactivity

// Effect is a re-runnable callback whose dependencies are recorded on
// every run.
type Effect struct {
	id        uint64
	rt        *Runtime
	fn        func() any
	scheduler func(*Effect)
	onStop    func()
	deps      []depLink
	active    bool
	lazy      bool
	computed  bool
}

// EffectOption configures an effect.
type EffectOption interface {
	applyEffect(*Effect)
}

type effectOptionFunc func(*Effect)

func (f effectOptionFunc) applyEffect(e *Effect) { f(e) }

// Lazy defers the first run until Run is called.
func Lazy() EffectOption {
	return effectOptionFunc(func(e *Effect) {
		e.lazy = true
	})
}

// WithScheduler hands triggered runs to fn instead of running immediately.
func WithScheduler(fn func(*Effect)) EffectOption {
	return effectOptionFunc(func(e *Effect) {
		e.scheduler = fn
	})
}

// OnStop registers a callback invoked by Stop.
func OnStop(fn func()) EffectOption {
	return effectOptionFunc(func(e *Effect) {
		e.onStop = fn
	})
}

// Effect creates an effect around fn and runs it unless Lazy is given.
func (rt *Runtime) Effect(fn func(), opts ...EffectOption) *Effect {
	return rt.NewEffect(func() any {
		fn()
		return nil
	}, opts...)
}

// NewEffect is like Effect for callbacks that produce a value. Run returns
// the value of the latest execution.
func (rt *Runtime) NewEffect(fn func() any, opts ...EffectOption) *Effect {
	rt.nextID++
	e := &Effect{
		id:     rt.nextID,
		rt:     rt,
		fn:     fn,
		active: true,
	}
	for _, opt := range opts {
		opt.applyEffect(e)
	}
	if rt.collecting != nil {
		*rt.collecting = append(*rt.collecting, e)
	}
	if !e.lazy {
		e.Run()
	}
	return e
}

// Run clears the previous dependencies, executes the callback with this
// effect active and returns its result. Calling Run on a stopped effect
// subscribes it again.
func (e *Effect) Run() any {
	rt := e.rt
	for _, running := range rt.effectStack {
		if running == e {
			return nil
		}
	}

	e.cleanup()
	e.active = true

	prev := rt.activeEffect
	rt.effectStack = append(rt.effectStack, e)
	rt.activeEffect = e
	defer func() {
		rt.effectStack = rt.effectStack[:len(rt.effectStack)-1]
		rt.activeEffect = prev
	}()

	if rt.recorder != nil {
		rt.recorder.EffectRun()
	}
	return e.fn()
}

// Stop unsubscribes the effect and calls its OnStop callback.
func (e *Effect) Stop() {
	if !e.active {
		return
	}
	e.cleanup()
	e.active = false
	if e.onStop != nil {
		e.onStop()
	}
}

// depLink records where a subscription lives so an emptied dependency set
// can be dropped from the store.
type depLink struct {
	target any
	key    any
	dep    Dep
}

func (e *Effect) cleanup() {
	for _, link := range e.deps {
		link.dep.Remove(e)
		if link.dep.Cardinality() == 0 {
			e.rt.prune(link)
		}
	}
	e.deps = e.deps[:0]
}

// ID returns the creation-ordered identifier of the effect.
func (e *Effect) ID() uint64 { return e.id }

// Active reports whether the effect is subscribed to triggers.
func (e *Effect) Active() bool { return e.active }

// DepCount returns the number of dependency sets the effect belongs to.
func (e *Effect) DepCount() int { return len(e.deps) }

// Scheduler returns the scheduler configured for the effect, if any.
func (e *Effect) Scheduler() func(*Effect) { return e.scheduler }
