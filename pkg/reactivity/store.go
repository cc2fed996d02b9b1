package reactivity

import (
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
)

// Dep is the set of effects subscribed to one (target, key) pair.
type Dep = mapset.Set[*Effect]

// OpType classifies a write.
type OpType uint8

const (
	OpSet OpType = iota
	OpAdd
	OpDelete
)

func (o OpType) String() string {
	switch o {
	case OpSet:
		return "set"
	case OpAdd:
		return "add"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

type iterateKey struct{}

// IterateKey is the pseudo-key recorded when an object's key list is read.
var IterateKey any = iterateKey{}

// Track records that the active effect depends on (target, key).
// It is a no-op when no effect is running or tracking is paused.
func (rt *Runtime) Track(target, key any) {
	e := rt.activeEffect
	if e == nil || rt.pauseDepth > 0 {
		return
	}

	depsMap, ok := rt.targets[target]
	if !ok {
		depsMap = make(map[any]Dep)
		rt.targets[target] = depsMap
	}
	dep, ok := depsMap[key]
	if !ok {
		dep = mapset.NewThreadUnsafeSet[*Effect]()
		depsMap[key] = dep
	}
	if dep.Contains(e) {
		return
	}
	dep.Add(e)
	e.deps = append(e.deps, depLink{target: target, key: key, dep: dep})
}

// prune removes an empty dependency set, and the target's entry once it
// has no keys left.
func (rt *Runtime) prune(link depLink) {
	depsMap, ok := rt.targets[link.target]
	if !ok || depsMap[link.key] != link.dep {
		return
	}
	delete(depsMap, link.key)
	if len(depsMap) == 0 {
		delete(rt.targets, link.target)
	}
}

// Trigger re-runs the effects subscribed to (target, key). newValue is
// only consulted for array length writes.
func (rt *Runtime) Trigger(target, key any, op OpType, newValue any) {
	depsMap, ok := rt.targets[target]
	if !ok {
		return
	}

	var deps []Dep
	add := func(k any) {
		if dep, ok := depsMap[k]; ok {
			deps = append(deps, dep)
		}
	}

	_, isArray := target.(*Array)
	if isArray && key == LengthKey {
		newLen, _ := newValue.(int)
		for k, dep := range depsMap {
			if k == LengthKey {
				deps = append(deps, dep)
				continue
			}
			if idx, ok := k.(int); ok && idx >= newLen {
				deps = append(deps, dep)
			}
		}
	} else {
		if key != nil {
			add(key)
		}
		switch op {
		case OpAdd:
			if !isArray {
				add(IterateKey)
			} else if _, ok := key.(int); ok {
				add(LengthKey)
			}
		case OpDelete:
			if !isArray {
				add(IterateKey)
			}
		}
	}

	rt.runEffects(deps)
}

// runEffects runs each subscribed effect once. Computed effects go first
// so derived values are marked dirty before plain effects read them;
// otherwise effects run in creation order.
func (rt *Runtime) runEffects(deps []Dep) {
	if len(deps) == 0 {
		return
	}

	seen := make(map[*Effect]struct{})
	var effects []*Effect
	for _, dep := range deps {
		for _, e := range dep.ToSlice() {
			if e == rt.activeEffect || !e.active {
				continue
			}
			if _, dup := seen[e]; dup {
				continue
			}
			seen[e] = struct{}{}
			effects = append(effects, e)
		}
	}

	sort.Slice(effects, func(i, j int) bool {
		if effects[i].computed != effects[j].computed {
			return effects[i].computed
		}
		return effects[i].id < effects[j].id
	})

	for _, e := range effects {
		if e.scheduler != nil {
			e.scheduler(e)
		} else {
			e.Run()
		}
	}
}

// subscriberCount reports how many effects are subscribed to (target, key).
func (rt *Runtime) subscriberCount(target, key any) int {
	if dep, ok := rt.targets[target][key]; ok {
		return dep.Cardinality()
	}
	return 0
}
