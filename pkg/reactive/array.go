package reactive

import "sort"

// Array is a tracked list. Any read inside an evaluation subscribes to
// the array as a whole; every mutator notifies it.
type Array struct {
	ob    *Observer
	items []any
}

func (rt *Runtime) newArray() *Array {
	arr := &Array{}
	arr.ob = &Observer{rt: rt, dep: rt.NewDep(), value: arr}
	return arr
}

// Observer returns the attached observer.
func (a *Array) Observer() *Observer {
	return a.ob
}

func (a *Array) depend() {
	if a.ob.rt.target == nil {
		return
	}
	a.ob.dep.Depend()
	dependArray(a)
}

func (a *Array) notify() {
	a.ob.dep.Notify()
}

func (a *Array) convertAll(vals []any) []any {
	out := make([]any, len(vals))
	for i, v := range vals {
		out[i] = a.ob.rt.convert(v)
	}
	return out
}

// Len returns the length.
func (a *Array) Len() int {
	a.depend()
	return len(a.items)
}

// At returns the element at i, or nil when i is out of range.
func (a *Array) At(i int) any {
	a.depend()
	if i < 0 || i >= len(a.items) {
		return nil
	}
	return a.items[i]
}

// Items returns a copy of the elements.
func (a *Array) Items() []any {
	a.depend()
	out := make([]any, len(a.items))
	copy(out, a.items)
	return out
}

// Each calls fn for every element until fn returns false.
func (a *Array) Each(fn func(i int, v any) bool) {
	a.depend()
	for i, v := range a.items {
		if !fn(i, v) {
			return
		}
	}
}

// Push appends values and returns the new length.
func (a *Array) Push(vals ...any) int {
	a.items = append(a.items, a.convertAll(vals)...)
	a.notify()
	return len(a.items)
}

// Pop removes and returns the last element.
func (a *Array) Pop() any {
	if len(a.items) == 0 {
		return nil
	}
	last := a.items[len(a.items)-1]
	a.items[len(a.items)-1] = nil
	a.items = a.items[:len(a.items)-1]
	a.notify()
	return last
}

// Shift removes and returns the first element.
func (a *Array) Shift() any {
	if len(a.items) == 0 {
		return nil
	}
	first := a.items[0]
	a.items = append(a.items[:0:0], a.items[1:]...)
	a.notify()
	return first
}

// Unshift prepends values and returns the new length.
func (a *Array) Unshift(vals ...any) int {
	a.items = append(a.convertAll(vals), a.items...)
	a.notify()
	return len(a.items)
}

// Splice removes deleteCount elements at start, inserts vals there and
// returns the removed elements. A negative start counts from the end.
func (a *Array) Splice(start, deleteCount int, vals ...any) []any {
	n := len(a.items)
	if start < 0 {
		start += n
		if start < 0 {
			start = 0
		}
	}
	if start > n {
		start = n
	}
	if deleteCount < 0 {
		deleteCount = 0
	}
	if start+deleteCount > n {
		deleteCount = n - start
	}

	removed := make([]any, deleteCount)
	copy(removed, a.items[start:start+deleteCount])

	inserted := a.convertAll(vals)
	next := make([]any, 0, n-deleteCount+len(inserted))
	next = append(next, a.items[:start]...)
	next = append(next, inserted...)
	next = append(next, a.items[start+deleteCount:]...)
	a.items = next

	a.notify()
	return removed
}

// Sort orders the elements in place using less. A nil less keeps the
// current order but still notifies.
func (a *Array) Sort(less func(x, y any) bool) {
	if less == nil {
		a.notify()
		return
	}
	sort.SliceStable(a.items, func(i, j int) bool {
		return less(a.items[i], a.items[j])
	})
	a.notify()
}

// Reverse reverses the elements in place.
func (a *Array) Reverse() {
	for i, j := 0, len(a.items)-1; i < j; i, j = i+1, j-1 {
		a.items[i], a.items[j] = a.items[j], a.items[i]
	}
	a.notify()
}

// ToSlice returns an untracked deep copy with nested values turned back
// into maps and slices.
func (a *Array) ToSlice() []any {
	return toPlain(a, map[*Observer]any{}).([]any)
}
