package reactivity

import (
	"log/slog"

	"github.com/vango-dev/vrt/internal/errors"
)

// Recorder receives runtime counters. The telemetry package provides a
// Prometheus-backed implementation.
type Recorder interface {
	EffectRun()
	Warning(code string)
}

// Runtime owns the dependency store, the effect stack and the proxy caches.
// Independent runtimes share nothing, so tests can create one per case.
type Runtime struct {
	logger   *slog.Logger
	recorder Recorder

	targets map[any]map[any]Dep

	activeEffect *Effect
	effectStack  []*Effect
	pauseDepth   int

	proxies [kindCount]map[any]*Proxy

	collecting *[]*Effect

	nextID uint64
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the logger used for runtime warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(rt *Runtime) {
		if logger != nil {
			rt.logger = logger
		}
	}
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(rt *Runtime) {
		rt.recorder = r
	}
}

// New creates an empty runtime.
func New(opts ...Option) *Runtime {
	rt := &Runtime{
		logger: slog.Default().With("component", "reactivity"),
	}
	for _, opt := range opts {
		opt(rt)
	}
	rt.Reset()
	return rt
}

// Reset drops every subscription, cached proxy and the effect stack.
// Effects created before Reset keep their callbacks but are no longer
// subscribed to anything.
func (rt *Runtime) Reset() {
	rt.targets = make(map[any]map[any]Dep)
	rt.activeEffect = nil
	rt.effectStack = nil
	rt.pauseDepth = 0
	rt.collecting = nil
	for kind := range rt.proxies {
		rt.proxies[kind] = make(map[any]*Proxy)
	}
}

// Release forgets targets: their subscriptions and every cached proxy of
// them. Call it when the owner of the objects goes away; effects still
// subscribed to a released target are no longer triggered by it.
func (rt *Runtime) Release(targets ...any) {
	for _, target := range targets {
		raw := ToRaw(target)
		if !isObject(raw) {
			continue
		}
		delete(rt.targets, raw)
		for kind := range rt.proxies {
			p, ok := rt.proxies[kind][raw]
			if !ok {
				continue
			}
			delete(rt.proxies[kind], raw)
			// readonly views of a mutable proxy are cached under the proxy
			for k := range rt.proxies {
				delete(rt.proxies[k], p)
			}
		}
	}
}

// CollectEffects runs fn and returns every effect created while it ran,
// computed values included.
func (rt *Runtime) CollectEffects(fn func()) []*Effect {
	prev := rt.collecting
	var effects []*Effect
	rt.collecting = &effects
	defer func() { rt.collecting = prev }()
	fn()
	return effects
}

// TrackedTargets returns the number of targets with at least one
// subscription.
func (rt *Runtime) TrackedTargets() int { return len(rt.targets) }

// CachedProxies returns the number of cached proxies across all kinds.
func (rt *Runtime) CachedProxies() int {
	n := 0
	for _, cache := range rt.proxies {
		n += len(cache)
	}
	return n
}

// Logger returns the runtime logger.
func (rt *Runtime) Logger() *slog.Logger {
	return rt.logger
}

// ActiveEffect returns the effect currently executing, or nil.
func (rt *Runtime) ActiveEffect() *Effect {
	return rt.activeEffect
}

// Untracked runs fn without recording any dependency for the active effect.
func (rt *Runtime) Untracked(fn func()) {
	rt.pauseDepth++
	defer func() { rt.pauseDepth-- }()
	fn()
}

func (rt *Runtime) warn(code, detail string, attrs ...any) {
	errors.New(code).WithDetail(detail).Log(rt.logger, attrs...)
	if rt.recorder != nil {
		rt.recorder.Warning(code)
	}
}
