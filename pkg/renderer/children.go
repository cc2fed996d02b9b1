package renderer

import (
	"github.com/vango-dev/vrt/pkg/vdom"
)

func (r *Renderer) mountChildren(children []*vdom.VNode, container, anchor any, parent *Instance) {
	for i := range children {
		children[i] = cloneIfMounted(children[i])
		r.patch(nil, children[i], container, anchor, parent)
	}
}

func (r *Renderer) unmountChildren(children []*vdom.VNode, parent *Instance) {
	for _, c := range children {
		r.unmount(c, parent, true)
	}
}

// patchChildren reconciles the children of n1 into n2. Children are either
// a text string, a list of vnodes, or absent.
func (r *Renderer) patchChildren(n1, n2 *vdom.VNode, container, anchor any, parent *Instance) {
	oldList := n1.Shape.Has(vdom.ShapeArrayChildren)
	oldText := n1.Shape.Has(vdom.ShapeTextChildren)

	switch {
	case n2.Shape.Has(vdom.ShapeTextChildren):
		if oldList {
			r.unmountChildren(n1.Children, parent)
		}
		if !oldText || n1.Text != n2.Text {
			r.host.SetElementText(container, n2.Text)
		}

	case n2.Shape.Has(vdom.ShapeArrayChildren):
		switch {
		case oldList:
			r.patchKeyedChildren(n1.Children, n2.Children, container, anchor, parent)
		case oldText:
			r.host.SetElementText(container, "")
			r.mountChildren(n2.Children, container, anchor, parent)
		default:
			r.mountChildren(n2.Children, container, anchor, parent)
		}

	default:
		switch {
		case oldList:
			r.unmountChildren(n1.Children, parent)
		case oldText:
			r.host.SetElementText(container, "")
		}
	}
}

// patchKeyedChildren diffs two child lists. Common prefix and suffix are
// patched in place; the remaining middle section is matched by key (or by
// type for unkeyed children) and nodes outside the longest increasing
// subsequence of old positions are moved.
func (r *Renderer) patchKeyedChildren(c1, c2 []*vdom.VNode, container, parentAnchor any, parent *Instance) {
	i := 0
	l2 := len(c2)
	e1, e2 := len(c1)-1, l2-1

	for i <= e1 && i <= e2 {
		if !vdom.SameType(c1[i], c2[i]) {
			break
		}
		r.patch(c1[i], c2[i], container, nil, parent)
		i++
	}

	for i <= e1 && i <= e2 {
		if !vdom.SameType(c1[e1], c2[e2]) {
			break
		}
		r.patch(c1[e1], c2[e2], container, nil, parent)
		e1--
		e2--
	}

	if i > e1 {
		if i <= e2 {
			anchor := parentAnchor
			if e2+1 < l2 {
				anchor = r.firstHostNode(c2[e2+1])
			}
			for ; i <= e2; i++ {
				c2[i] = cloneIfMounted(c2[i])
				r.patch(nil, c2[i], container, anchor, parent)
			}
		}
		return
	}

	if i > e2 {
		for ; i <= e1; i++ {
			r.unmount(c1[i], parent, true)
		}
		return
	}

	s1, s2 := i, i
	keyToNewIndex := make(map[any]int)
	for j := s2; j <= e2; j++ {
		if c2[j].HasKey() {
			keyToNewIndex[c2[j].Key] = j
		}
	}

	toBePatched := e2 - s2 + 1
	patched := 0
	moved := false
	maxNewIndexSoFar := 0

	// source[k] is the old index of c2[s2+k], or -1 for a new node.
	source := make([]int, toBePatched)
	for k := range source {
		source[k] = -1
	}

	for j := s1; j <= e1; j++ {
		prev := c1[j]
		if patched >= toBePatched {
			r.unmount(prev, parent, true)
			continue
		}

		newIndex := -1
		if prev.HasKey() {
			if n, ok := keyToNewIndex[prev.Key]; ok && source[n-s2] == -1 {
				newIndex = n
			}
		} else {
			for n := s2; n <= e2; n++ {
				if source[n-s2] == -1 && !c2[n].HasKey() && vdom.SameType(prev, c2[n]) {
					newIndex = n
					break
				}
			}
		}

		if newIndex < 0 {
			r.unmount(prev, parent, true)
			continue
		}
		source[newIndex-s2] = j
		if newIndex >= maxNewIndexSoFar {
			maxNewIndexSoFar = newIndex
		} else {
			moved = true
		}
		r.patch(prev, c2[newIndex], container, nil, parent)
		patched++
	}

	var stable []int
	if moved {
		stable = GetSequence(source)
	}
	last := len(stable) - 1

	for k := toBePatched - 1; k >= 0; k-- {
		idx := s2 + k
		anchor := parentAnchor
		if idx+1 < l2 {
			anchor = r.firstHostNode(c2[idx+1])
		}

		switch {
		case source[k] == -1:
			c2[idx] = cloneIfMounted(c2[idx])
			r.patch(nil, c2[idx], container, anchor, parent)
		case moved:
			if last < 0 || k != stable[last] {
				r.move(c2[idx], container, anchor)
			} else {
				last--
			}
		}
	}
}

// firstHostNode returns the first host node vnode renders.
func (r *Renderer) firstHostNode(vnode *vdom.VNode) any {
	if vnode.Kind == vdom.KindComponent {
		if inst, ok := vnode.Instance.(*Instance); ok && inst.subTree != nil {
			return r.firstHostNode(inst.subTree)
		}
		return nil
	}
	return vnode.El
}

// GetSequence returns the indices of a longest strictly increasing
// subsequence of arr. Entries equal to -1 are ignored.
func GetSequence(arr []int) []int {
	p := make([]int, len(arr))
	result := make([]int, 0, len(arr))

	for i, v := range arr {
		if v == -1 {
			continue
		}
		if n := len(result); n == 0 || arr[result[n-1]] < v {
			if n > 0 {
				p[i] = result[n-1]
			}
			result = append(result, i)
			continue
		}

		lo, hi := 0, len(result)-1
		for lo < hi {
			mid := (lo + hi) / 2
			if arr[result[mid]] < v {
				lo = mid + 1
			} else {
				hi = mid
			}
		}
		if v < arr[result[lo]] {
			if lo > 0 {
				p[i] = result[lo-1]
			}
			result[lo] = i
		}
	}

	u := len(result)
	if u == 0 {
		return result
	}
	v := result[u-1]
	for u > 0 {
		u--
		result[u] = v
		v = p[v]
	}
	return result
}
