package reactive

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// traverse reads every tracked value reachable from v so the current
// target depends on all of them. Each observer is visited once, which
// also stops cycles.
func (rt *Runtime) traverse(v any) {
	seen := mapset.NewThreadUnsafeSet[uint64]()
	traverseValue(v, seen)
}

func traverseValue(v any, seen mapset.Set[uint64]) {
	ob := observerOf(v)
	if ob == nil {
		return
	}
	if seen.Contains(ob.dep.id) {
		return
	}
	seen.Add(ob.dep.id)
	ob.dep.Depend()

	switch t := v.(type) {
	case *Object:
		for _, k := range t.keys {
			traverseValue(t.Get(k), seen)
		}
	case *Array:
		for _, item := range t.items {
			traverseValue(item, seen)
		}
	}
}
