package vdom

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// NormalizeClass flattens a class value into one space-separated string.
// Strings are used as is, slices are flattened recursively and maps
// contribute their keys with truthy values, in sorted order.
func NormalizeClass(value any) string {
	var parts []string
	appendClass(&parts, value)
	return strings.Join(parts, " ")
}

func appendClass(parts *[]string, value any) {
	switch v := value.(type) {
	case nil:
		return
	case string:
		if s := strings.TrimSpace(v); s != "" {
			*parts = append(*parts, s)
		}
	case []string:
		for _, s := range v {
			appendClass(parts, s)
		}
	case []any:
		for _, item := range v {
			appendClass(parts, item)
		}
	case map[string]bool:
		for _, k := range sortedKeys(v) {
			if v[k] {
				*parts = append(*parts, k)
			}
		}
	case map[string]any:
		for _, k := range sortedKeys(v) {
			if Truthy(v[k]) {
				*parts = append(*parts, k)
			}
		}
	case fmt.Stringer:
		appendClass(parts, v.String())
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Truthy reports whether v counts as set: non-nil, not false, not a zero
// number and not an empty string.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case int:
		return x != 0
	case int64:
		return x != 0
	case float64:
		return x != 0 && x == x
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Func, reflect.Map, reflect.Slice, reflect.Chan:
		return !rv.IsNil()
	}
	return true
}
