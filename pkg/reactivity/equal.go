package reactivity

import (
	"math"
	"reflect"
)

// HasChanged reports whether a write of next over prev is a change.
// NaN equals NaN, maps and slices compare by identity, and functions
// always count as changed.
func HasChanged(prev, next any) bool {
	return !sameValue(prev, next)
}

func sameValue(a, b any) (same bool) {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	switch av := a.(type) {
	case float64:
		if bv, ok := b.(float64); ok && math.IsNaN(av) && math.IsNaN(bv) {
			return true
		}
	case float32:
		if bv, ok := b.(float32); ok && av != av && bv != bv {
			return true
		}
	}

	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch va.Kind() {
	case reflect.Func:
		return va.IsNil() && vb.IsNil()
	case reflect.Map:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	}

	if !ta.Comparable() {
		return reflect.DeepEqual(a, b)
	}
	defer func() {
		if recover() != nil {
			same = reflect.DeepEqual(a, b)
		}
	}()
	return a == b
}
