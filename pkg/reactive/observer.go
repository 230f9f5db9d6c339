package reactive

import (
	"reflect"
	"sort"

	rerrors "github.com/vango-dev/reactor/internal/errors"
)

// Observer is attached to every tracked Object and Array. Its dep fires
// on structural changes: keys added or removed, array mutations.
type Observer struct {
	rt      *Runtime
	dep     *Dep
	value   any
	vmCount int
}

// Dep returns the structural dep.
func (ob *Observer) Dep() *Dep {
	return ob.dep
}

// Value returns the *Object or *Array the observer belongs to.
func (ob *Observer) Value() any {
	return ob.value
}

// AttachRoot marks the value as some component's root data. Reactive
// adds to root data are refused.
func (ob *Observer) AttachRoot() {
	ob.vmCount++
}

// DetachRoot undoes AttachRoot.
func (ob *Observer) DetachRoot() {
	if ob.vmCount > 0 {
		ob.vmCount--
	}
}

// RootCount returns how many components use the value as root data.
func (ob *Observer) RootCount() int {
	return ob.vmCount
}

// raw wraps a value that must never be converted.
type raw struct {
	value any
}

// MarkRaw returns a wrapper that Observe, Set and the Object/Array
// mutators store as-is. Unwrap it with Raw.
func MarkRaw(v any) any {
	return raw{value: v}
}

// Raw returns the value wrapped by MarkRaw, or v itself.
func Raw(v any) any {
	if r, ok := v.(raw); ok {
		return r.value
	}
	return v
}

// IsTracked reports whether v is a tracked Object or Array.
func IsTracked(v any) bool {
	return observerOf(v) != nil
}

// ObserverOf returns the observer attached to v, or nil.
func ObserverOf(v any) *Observer {
	return observerOf(v)
}

func observerOf(v any) *Observer {
	switch t := v.(type) {
	case *Object:
		if t != nil {
			return t.ob
		}
	case *Array:
		if t != nil {
			return t.ob
		}
	}
	return nil
}

// isObject reports whether v is a reference-like value whose identity
// can stay the same while its content changes.
func isObject(v any) bool {
	switch v.(type) {
	case *Object, *Array, map[string]any, []any:
		return true
	}
	return false
}

// Observe converts value into its tracked form and returns the attached
// observer. Maps with string keys become *Object, []any becomes *Array,
// recursively. Values that are already tracked are returned unchanged.
// Primitives and raw values return nil.
func (rt *Runtime) Observe(value any) *Observer {
	return observerOf(rt.convert(value))
}

// Reactive converts m into a tracked Object. Keys are defined in sorted
// order.
func (rt *Runtime) Reactive(m map[string]any) *Object {
	if m == nil {
		return rt.NewObject()
	}
	return rt.convert(m).(*Object)
}

// ReactiveArray converts items into a tracked Array.
func (rt *Runtime) ReactiveArray(items []any) *Array {
	if items == nil {
		items = []any{}
	}
	return rt.convert(items).(*Array)
}

// convert returns the tracked form of v. Cyclic maps and slices map to
// the same tracked value.
func (rt *Runtime) convert(v any) any {
	c := converter{rt: rt}
	return c.convert(v)
}

type sliceID struct {
	ptr uintptr
	n   int
}

type converter struct {
	rt     *Runtime
	maps   map[uintptr]*Object
	slices map[sliceID]*Array
}

func (c *converter) convert(v any) any {
	switch t := v.(type) {
	case map[string]any:
		if t == nil {
			return v
		}
		id := reflect.ValueOf(t).Pointer()
		if obj, ok := c.maps[id]; ok {
			return obj
		}
		if c.maps == nil {
			c.maps = make(map[uintptr]*Object)
		}
		obj := c.rt.NewObject()
		c.maps[id] = obj
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			obj.define(k, c.convert(t[k]), fieldConfig{})
		}
		return obj
	case []any:
		if t == nil {
			return v
		}
		id := sliceID{n: len(t)}
		if len(t) > 0 {
			id.ptr = reflect.ValueOf(t).Pointer()
			if arr, ok := c.slices[id]; ok {
				return arr
			}
		}
		if c.slices == nil {
			c.slices = make(map[sliceID]*Array)
		}
		arr := c.rt.newArray()
		if id.ptr != 0 {
			c.slices[id] = arr
		}
		arr.items = make([]any, len(t))
		for i, item := range t {
			arr.items[i] = c.convert(item)
		}
		return arr
	}
	return v
}

// sameValue reports whether an assignment of b over a is a no-op. Values
// of uncomparable types always count as changed.
func sameValue(a, b any) (same bool) {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	if a == b {
		return true
	}
	switch x := a.(type) {
	case float64:
		y := b.(float64)
		return x != x && y != y
	case float32:
		y := b.(float32)
		return x != x && y != y
	}
	return false
}

// dependArray registers the observers of every tracked element, so a
// watcher that read an array reacts to structural changes of nested
// values.
func dependArray(a *Array) {
	for _, item := range a.items {
		if ob := observerOf(item); ob != nil {
			ob.dep.Depend()
			if nested, ok := item.(*Array); ok {
				dependArray(nested)
			}
		}
	}
}

// Set assigns key on target. On an Object, an absent key is added
// reactively and the object's structural dep fires; on an Array, key is
// an index and the write goes through Splice. Adding to a component's
// root data is refused with a warning.
func (rt *Runtime) Set(target any, key any, value any) any {
	switch t := target.(type) {
	case *Array:
		idx, ok := key.(int)
		if !ok || idx < 0 {
			rt.Warn(rerrors.CodeUntrackedTarget, "", "array index must be a non-negative int, got %v", key)
			return value
		}
		for len(t.items) < idx {
			t.items = append(t.items, nil)
		}
		t.Splice(idx, 1, value)
		return value
	case *Object:
		k, ok := key.(string)
		if !ok {
			rt.Warn(rerrors.CodeUntrackedTarget, "", "object key must be a string, got %T", key)
			return value
		}
		if b, ok := t.fields[k]; ok {
			t.assign(b, value)
			return value
		}
		if t.ob.vmCount > 0 {
			rt.Warn(rerrors.CodeRootDataAdd, "", "cannot add %q to root data", k)
			return value
		}
		t.define(k, rt.convert(value), fieldConfig{})
		t.ob.dep.Notify()
		return value
	}
	rt.Warn(rerrors.CodeUntrackedTarget, "", "cannot set %v on %T", key, target)
	return value
}

// Delete removes key from target and fires the structural dep if
// something was removed.
func (rt *Runtime) Delete(target any, key any) {
	switch t := target.(type) {
	case *Array:
		idx, ok := key.(int)
		if !ok || idx < 0 || idx >= len(t.items) {
			return
		}
		t.Splice(idx, 1)
	case *Object:
		k, ok := key.(string)
		if !ok {
			return
		}
		if t.ob.vmCount > 0 {
			rt.Warn(rerrors.CodeRootDataAdd, "", "cannot delete %q from root data", k)
			return
		}
		if _, ok := t.fields[k]; !ok {
			return
		}
		t.remove(k)
		t.ob.dep.Notify()
	default:
		rt.Warn(rerrors.CodeUntrackedTarget, "", "cannot delete %v on %T", key, target)
	}
}
