package reactive

import "reflect"

// Ref is a single tracked value.
type Ref[T any] struct {
	dep    *Dep
	value  T
	equals func(a, b T) bool
}

// NewRef creates a Ref holding initial.
func NewRef[T any](rt *Runtime, initial T) *Ref[T] {
	return &Ref[T]{
		dep:    rt.NewDep(),
		value:  initial,
		equals: defaultEquals[T],
	}
}

// WithEquals replaces the equality used to suppress no-op writes.
func (r *Ref[T]) WithEquals(eq func(a, b T) bool) *Ref[T] {
	r.equals = eq
	return r
}

// Get returns the value and subscribes the current target.
func (r *Ref[T]) Get() T {
	r.dep.Depend()
	return r.value
}

// Peek returns the value without tracking.
func (r *Ref[T]) Peek() T {
	return r.value
}

// Set stores v and notifies subscribers if it differs from the current
// value.
func (r *Ref[T]) Set(v T) {
	if r.equals != nil && r.equals(r.value, v) {
		return
	}
	r.value = v
	r.dep.Notify()
}

// Update sets the result of fn applied to the current value.
func (r *Ref[T]) Update(fn func(T) T) {
	r.Set(fn(r.value))
}

// Dep returns the ref's dep.
func (r *Ref[T]) Dep() *Dep {
	return r.dep
}

func defaultEquals[T any](a, b T) bool {
	va, vb := any(a), any(b)
	if va == nil || vb == nil {
		return va == nil && vb == nil
	}
	if reflect.TypeOf(va).Comparable() {
		return sameValue(va, vb)
	}
	return false
}

// Computed is a cached derivation. It recomputes lazily: a change in a
// dependency only marks it dirty.
type Computed[T any] struct {
	w *Watcher
}

// NewComputed creates a computed value from fn.
func NewComputed[T any](rt *Runtime, name string, fn func() T) *Computed[T] {
	w := rt.NewWatcher(func() any { return fn() }, nil, WatcherOptions{
		Mode:       ModeComputed,
		Expression: name,
	})
	return &Computed[T]{w: w}
}

// Get returns the cached value, recomputing it when dirty, and
// subscribes the current target to the computed's dependencies.
func (c *Computed[T]) Get() T {
	v, _ := c.w.ComputedValue().(T)
	return v
}

// Watcher returns the underlying lazy watcher.
func (c *Computed[T]) Watcher() *Watcher {
	return c.w
}

// Dispose tears the computed down.
func (c *Computed[T]) Dispose() {
	c.w.Teardown()
}
