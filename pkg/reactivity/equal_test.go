package reactivity

import (
	"math"
	"testing"
)

func TestHasChanged(t *testing.T) {
	shared := []int{1, 2}
	m := map[string]int{"a": 1}
	type point struct{ X, Y int }

	tests := []struct {
		name string
		prev any
		next any
		want bool
	}{
		{"equal ints", 1, 1, false},
		{"different ints", 1, 2, true},
		{"different types", 1, int64(1), true},
		{"both nil", nil, nil, false},
		{"nil to zero", nil, 0, true},
		{"NaN", math.NaN(), math.NaN(), false},
		{"same slice", shared, shared, false},
		{"equal contents new slice", shared, []int{1, 2}, true},
		{"same map", m, m, false},
		{"new map", m, map[string]int{"a": 1}, true},
		{"structs", point{1, 2}, point{1, 2}, false},
		{"funcs", func() {}, func() {}, true},
		{"strings", "a", "a", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasChanged(tt.prev, tt.next); got != tt.want {
				t.Errorf("HasChanged(%v, %v) = %v, want %v", tt.prev, tt.next, got, tt.want)
			}
		})
	}
}
