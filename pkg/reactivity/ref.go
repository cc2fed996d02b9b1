package reactivity

// Reference is a single-value reactive cell. *Ref, *ObjectRef and
// *Computed implement it.
type Reference interface {
	Get() any
	Set(value any)
	isRef()
}

// Ref is a mutable reactive cell. Object values are stored behind a
// reactive proxy.
type Ref struct {
	rt    *Runtime
	raw   any
	value any
}

// Ref creates a reactive cell holding value. Passing an existing
// Reference returns it unchanged.
func (rt *Runtime) Ref(value any) Reference {
	if r, ok := value.(Reference); ok {
		return r
	}
	return &Ref{
		rt:    rt,
		raw:   ToRaw(value),
		value: rt.toReactive(value),
	}
}

func (r *Ref) Get() any {
	r.rt.Track(r, ValueKey)
	return r.value
}

func (r *Ref) Set(value any) {
	value = ToRaw(value)
	if !HasChanged(value, r.raw) {
		return
	}
	r.raw = value
	r.value = r.rt.toReactive(value)
	r.rt.Trigger(r, ValueKey, OpSet, value)
}

func (r *Ref) isRef() {}

// ObjectRef forwards to one key of an object. Reactivity comes from the
// object itself.
type ObjectRef struct {
	object   Accessor
	key      any
	fallback any
}

func (r *ObjectRef) Get() any {
	v := r.object.Get(r.key)
	if v == nil {
		return r.fallback
	}
	return v
}

func (r *ObjectRef) Set(value any) {
	r.object.Set(r.key, value)
}

func (r *ObjectRef) isRef() {}

// ToRef returns a reference bound to obj[key]. When the field already
// holds a reference, that reference is returned. The optional fallback is
// returned by Get while the field is nil.
func ToRef(obj Accessor, key any, fallback ...any) Reference {
	if r, ok := obj.Get(key).(Reference); ok {
		return r
	}
	ref := &ObjectRef{object: obj, key: key}
	if len(fallback) > 0 {
		ref.fallback = fallback[0]
	}
	return ref
}

// ToRefs converts every key of obj into an ObjectRef. Arrays produce an
// *Array of refs, everything else an *Object.
func ToRefs(obj Accessor) Accessor {
	keys := obj.Keys()
	if _, ok := ToRaw(obj).(*Array); ok {
		refs := make([]any, len(keys))
		for i, k := range keys {
			refs[i] = ToRef(obj, k)
		}
		return NewArray(refs...)
	}
	out := NewObject()
	for _, k := range keys {
		out.Set(k, ToRef(obj, k))
	}
	return out
}

// IsRef reports whether v is a Reference.
func IsRef(v any) bool {
	_, ok := v.(Reference)
	return ok
}

// Unref returns the inner value of a reference, or v itself.
func Unref(v any) any {
	if r, ok := v.(Reference); ok {
		return r.Get()
	}
	return v
}

// ProxyRefs returns a view of obj that unwraps references on read and
// writes through them on assignment of a plain value.
func ProxyRefs(obj Accessor) Accessor {
	if v, ok := obj.(*refsView); ok {
		return v
	}
	return &refsView{obj: obj}
}

type refsView struct {
	obj Accessor
}

func (v *refsView) Get(key any) any {
	return Unref(v.obj.Get(key))
}

func (v *refsView) Set(key any, value any) bool {
	old := peek(v.obj, key)
	if r, ok := old.(Reference); ok && !IsRef(value) {
		r.Set(value)
		return true
	}
	return v.obj.Set(key, value)
}

func (v *refsView) Has(key any) bool { return v.obj.Has(key) }

func (v *refsView) Keys() []any { return v.obj.Keys() }

func (v *refsView) Delete(key any) bool { return v.obj.Delete(key) }

// peek reads key without tracking.
func peek(obj Accessor, key any) any {
	if p, ok := obj.(*Proxy); ok {
		return peek(p.target, p.normalize(key))
	}
	return obj.Get(key)
}
