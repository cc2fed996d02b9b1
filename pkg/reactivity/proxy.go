package reactivity

import "fmt"

// Kind selects the interception behavior of a proxy.
type Kind uint8

const (
	KindReactive Kind = iota
	KindShallowReactive
	KindReadonly
	KindShallowReadonly
	kindCount
)

func (k Kind) String() string {
	switch k {
	case KindReactive:
		return "reactive"
	case KindShallowReactive:
		return "shallowReactive"
	case KindReadonly:
		return "readonly"
	case KindShallowReadonly:
		return "shallowReadonly"
	default:
		return "unknown"
	}
}

func (k Kind) readonly() bool {
	return k == KindReadonly || k == KindShallowReadonly
}

func (k Kind) shallow() bool {
	return k == KindShallowReactive || k == KindShallowReadonly
}

// Marker keys answered by every proxy without tracking.
const (
	FlagIsReactive = "__v_isReactive"
	FlagIsReadonly = "__v_isReadonly"
	FlagIsShallow  = "__v_isShallow"
	FlagRaw        = "__v_raw"
)

// Proxy intercepts access to a raw *Object or *Array, or to another proxy
// when a readonly view is taken of mutable state.
type Proxy struct {
	rt     *Runtime
	target Accessor
	kind   Kind
}

// Reactive returns the deep mutable proxy for target.
func (rt *Runtime) Reactive(target any) any {
	return rt.wrap(target, KindReactive)
}

// ShallowReactive returns a mutable proxy that tracks only top-level keys.
func (rt *Runtime) ShallowReactive(target any) any {
	return rt.wrap(target, KindShallowReactive)
}

// Readonly returns a deep read-only view of target.
func (rt *Runtime) Readonly(target any) any {
	return rt.wrap(target, KindReadonly)
}

// ShallowReadonly returns a read-only view whose nested values are
// returned unwrapped.
func (rt *Runtime) ShallowReadonly(target any) any {
	return rt.wrap(target, KindShallowReadonly)
}

// State wraps a fresh object built from m in a reactive proxy.
func (rt *Runtime) State(m map[string]any) *Proxy {
	return rt.Reactive(ObjectFrom(m)).(*Proxy)
}

func (rt *Runtime) wrap(target any, kind Kind) any {
	if !isObject(target) {
		rt.warn("R001", fmt.Sprintf("%s(%T)", kind, target))
		return target
	}
	if p, ok := target.(*Proxy); ok {
		upgrade := kind.readonly() && !p.kind.readonly()
		if !upgrade {
			return p
		}
	}

	cache := rt.proxies[kind]
	if existing, ok := cache[target]; ok {
		return existing
	}
	p := &Proxy{rt: rt, target: target.(Accessor), kind: kind}
	cache[target] = p
	return p
}

func (rt *Runtime) toReactive(v any) any {
	if isObject(v) {
		return rt.Reactive(v)
	}
	return v
}

// Kind returns the proxy kind.
func (p *Proxy) Kind() Kind { return p.kind }

// Runtime returns the runtime that owns the proxy.
func (p *Proxy) Runtime() *Runtime { return p.rt }

func (p *Proxy) normalize(key any) any {
	if _, ok := p.target.(*Array); ok && key != LengthKey {
		if idx, ok := arrayIndex(key); ok {
			return idx
		}
	}
	return key
}

func (p *Proxy) canonical() bool {
	return p.rt.proxies[p.kind][p.target] == p
}

func (p *Proxy) Get(key any) any {
	switch key {
	case FlagIsReactive:
		return !p.kind.readonly()
	case FlagIsReadonly:
		return p.kind.readonly()
	case FlagIsShallow:
		return p.kind.shallow()
	case FlagRaw:
		return p.target
	}

	key = p.normalize(key)
	res := p.target.Get(key)
	if !p.kind.readonly() {
		p.rt.Track(p.target, key)
	}
	if p.kind.shallow() || !isObject(res) {
		return res
	}
	if p.kind.readonly() {
		return p.rt.Readonly(res)
	}
	return p.rt.Reactive(res)
}

// Set writes through to the target and triggers subscribers when the value
// changed. Writes through a read-only proxy are reported and dropped.
func (p *Proxy) Set(key any, value any) bool {
	if p.kind.readonly() {
		p.rt.warn("R002", fmt.Sprintf("key %v", key), "kind", p.kind.String())
		return true
	}

	key = p.normalize(key)
	if !p.kind.shallow() {
		value = ToRaw(value)
	}

	target := p.target
	oldValue := target.Get(key)
	op := OpSet
	if arr, ok := target.(*Array); ok {
		if idx, isIndex := key.(int); isIndex && idx >= arr.Len() {
			op = OpAdd
		}
	} else if !target.Has(key) {
		op = OpAdd
	}

	ok := target.Set(key, value)
	if ok && p.canonical() && HasChanged(oldValue, value) {
		p.rt.Trigger(target, key, op, value)
	}
	return ok
}

func (p *Proxy) Has(key any) bool {
	key = p.normalize(key)
	res := p.target.Has(key)
	if !p.kind.readonly() {
		p.rt.Track(p.target, key)
	}
	return res
}

func (p *Proxy) Keys() []any {
	if !p.kind.readonly() {
		if _, ok := p.target.(*Array); ok {
			p.rt.Track(p.target, LengthKey)
		} else {
			p.rt.Track(p.target, IterateKey)
		}
	}
	return p.target.Keys()
}

func (p *Proxy) Delete(key any) bool {
	if p.kind.readonly() {
		p.rt.warn("R003", fmt.Sprintf("key %v", key), "kind", p.kind.String())
		return true
	}

	key = p.normalize(key)
	had := p.target.Has(key)
	ok := p.target.Delete(key)
	if ok && had {
		p.rt.Trigger(p.target, key, OpDelete, nil)
	}
	return ok
}

// Len returns the length of an array target or the field count of an
// object target. Both forms are tracked.
func (p *Proxy) Len() int {
	if _, ok := p.target.(*Array); ok {
		n, _ := p.Get(LengthKey).(int)
		return n
	}
	return len(p.Keys())
}

// Push appends values to an array target. It reports false for objects.
func (p *Proxy) Push(values ...any) bool {
	arr, ok := ToRaw(p.target).(*Array)
	if !ok {
		return false
	}
	for _, v := range values {
		p.Set(arr.Len(), v)
	}
	return true
}

// IsProxy reports whether v is any kind of proxy.
func IsProxy(v any) bool {
	_, ok := v.(*Proxy)
	return ok
}

// IsReactive reports whether v is a mutable proxy, looking through
// read-only views of mutable state.
func IsReactive(v any) bool {
	p, ok := v.(*Proxy)
	if !ok {
		return false
	}
	if p.kind.readonly() {
		return IsReactive(p.target)
	}
	return true
}

// IsReadonly reports whether v is a read-only proxy.
func IsReadonly(v any) bool {
	p, ok := v.(*Proxy)
	return ok && p.kind.readonly()
}

// IsShallow reports whether v is a shallow proxy.
func IsShallow(v any) bool {
	p, ok := v.(*Proxy)
	return ok && p.kind.shallow()
}

// ToRaw strips every proxy layer from v.
func ToRaw(v any) any {
	for {
		p, ok := v.(*Proxy)
		if !ok {
			return v
		}
		v = p.target
	}
}
