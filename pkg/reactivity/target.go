package reactivity

import (
	"fmt"
	"sort"
	"strconv"
)

// LengthKey is the pseudo-key holding an array's length.
const LengthKey = "length"

// Accessor is the keyed interface shared by raw containers, proxies and
// the render context.
type Accessor interface {
	Get(key any) any
	Set(key any, value any) bool
	Has(key any) bool
	Keys() []any
	Delete(key any) bool
}

// Object is a raw keyed record. Keys keep insertion order.
type Object struct {
	keys   []string
	values map[string]any
}

// NewObject creates an object from alternating key/value arguments.
//
//	NewObject("a", 1, "b", "two")
func NewObject(kv ...any) *Object {
	o := &Object{values: make(map[string]any, len(kv)/2)}
	for i := 0; i < len(kv); i += 2 {
		var v any
		if i+1 < len(kv) {
			v = kv[i+1]
		}
		o.Set(kv[i], v)
	}
	return o
}

// ObjectFrom copies m into a new object with keys in sorted order.
func ObjectFrom(m map[string]any) *Object {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	o := &Object{values: make(map[string]any, len(m))}
	for _, k := range keys {
		o.Set(k, m[k])
	}
	return o
}

func objectKey(key any) string {
	if s, ok := key.(string); ok {
		return s
	}
	return fmt.Sprint(key)
}

func (o *Object) Get(key any) any {
	return o.values[objectKey(key)]
}

// Lookup reports the value stored under key and whether it exists.
func (o *Object) Lookup(key string) (any, bool) {
	v, ok := o.values[key]
	return v, ok
}

func (o *Object) Set(key any, value any) bool {
	k := objectKey(key)
	if _, ok := o.values[k]; !ok {
		o.keys = append(o.keys, k)
	}
	o.values[k] = value
	return true
}

func (o *Object) Has(key any) bool {
	_, ok := o.values[objectKey(key)]
	return ok
}

func (o *Object) Keys() []any {
	keys := make([]any, len(o.keys))
	for i, k := range o.keys {
		keys[i] = k
	}
	return keys
}

func (o *Object) Delete(key any) bool {
	k := objectKey(key)
	if _, ok := o.values[k]; !ok {
		return true
	}
	delete(o.values, k)
	for i, existing := range o.keys {
		if existing == k {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
	return true
}

// Len returns the number of fields.
func (o *Object) Len() int {
	return len(o.keys)
}

// Map returns a shallow copy of the fields.
func (o *Object) Map() map[string]any {
	m := make(map[string]any, len(o.values))
	for k, v := range o.values {
		m[k] = v
	}
	return m
}

// Array is a raw indexed list. Index keys are ints; LengthKey reads and
// writes the length.
type Array struct {
	items []any
}

// NewArray creates an array holding items.
func NewArray(items ...any) *Array {
	return &Array{items: append([]any(nil), items...)}
}

// arrayIndex converts an int or numeric string key to an index.
func arrayIndex(key any) (int, bool) {
	switch k := key.(type) {
	case int:
		return k, true
	case string:
		n, err := strconv.Atoi(k)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

func (a *Array) Get(key any) any {
	if key == LengthKey {
		return len(a.items)
	}
	idx, ok := arrayIndex(key)
	if !ok || idx < 0 || idx >= len(a.items) {
		return nil
	}
	return a.items[idx]
}

func (a *Array) Set(key any, value any) bool {
	if key == LengthKey {
		n, ok := value.(int)
		if !ok || n < 0 {
			return false
		}
		a.setLength(n)
		return true
	}
	idx, ok := arrayIndex(key)
	if !ok || idx < 0 {
		return false
	}
	if idx >= len(a.items) {
		a.setLength(idx + 1)
	}
	a.items[idx] = value
	return true
}

func (a *Array) setLength(n int) {
	if n <= len(a.items) {
		clear(a.items[n:])
		a.items = a.items[:n]
		return
	}
	a.items = append(a.items, make([]any, n-len(a.items))...)
}

func (a *Array) Has(key any) bool {
	if key == LengthKey {
		return true
	}
	idx, ok := arrayIndex(key)
	return ok && idx >= 0 && idx < len(a.items)
}

func (a *Array) Keys() []any {
	keys := make([]any, len(a.items))
	for i := range a.items {
		keys[i] = i
	}
	return keys
}

// Delete clears the slot at key without shrinking the array.
func (a *Array) Delete(key any) bool {
	idx, ok := arrayIndex(key)
	if ok && idx >= 0 && idx < len(a.items) {
		a.items[idx] = nil
	}
	return true
}

// Len returns the array length.
func (a *Array) Len() int {
	return len(a.items)
}

// Slice returns a copy of the items.
func (a *Array) Slice() []any {
	return append([]any(nil), a.items...)
}

// isObject reports whether v can be wrapped by a proxy.
func isObject(v any) bool {
	switch v.(type) {
	case *Object, *Array, *Proxy:
		return true
	}
	return false
}
