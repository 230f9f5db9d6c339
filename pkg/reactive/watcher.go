package reactive

import (
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
)

// Mode selects how a watcher reacts to a change.
type Mode uint8

const (
	// ModeRender re-runs through the scheduler. The getter has side
	// effects (render and patch); there is no callback.
	ModeRender Mode = iota + 1
	// ModeComputed is lazy: a change only marks it dirty, and the value
	// is recomputed on the next read.
	ModeComputed
	// ModeUser runs through the scheduler and invokes its callback with
	// the new and old value.
	ModeUser
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeRender:
		return "render"
	case ModeComputed:
		return "computed"
	case ModeUser:
		return "user"
	default:
		return "unknown"
	}
}

// WatcherOptions configures NewWatcher.
type WatcherOptions struct {
	Mode Mode
	// Deep subscribes to every tracked value nested in the result.
	Deep bool
	// Sync runs the watcher immediately on change instead of queuing it.
	Sync bool
	// Component names the owner for error reports.
	Component string
	// Expression describes the getter for error reports.
	Expression string
	// OnUpdated is called after a flush that ran this watcher.
	OnUpdated func()
	// OnTeardown is called once when the watcher is torn down.
	OnTeardown func(w *Watcher)
}

// Watcher evaluates a getter while recording which deps it read, and
// re-evaluates when any of them notifies.
type Watcher struct {
	rt *Runtime
	id uint64

	mode   Mode
	deep   bool
	sync   bool
	lazy   bool
	dirty  bool
	active bool

	deps      []*Dep
	newDeps   []*Dep
	depIDs    mapset.Set[uint64]
	newDepIDs mapset.Set[uint64]

	getter func() any
	cb     func(newValue, oldValue any)
	value  any

	component  string
	expression string
	onUpdated  func()
	onTeardown func(w *Watcher)
}

// NewWatcher creates a watcher and, unless it is computed, evaluates it
// immediately. Ids increase in creation order, so parents sort before
// the children they create.
func (rt *Runtime) NewWatcher(getter func() any, cb func(newValue, oldValue any), opts WatcherOptions) *Watcher {
	rt.watcherUID++
	if opts.Mode == 0 {
		opts.Mode = ModeUser
	}
	if getter == nil {
		getter = func() any { return nil }
	}
	w := &Watcher{
		rt:         rt,
		id:         rt.watcherUID,
		mode:       opts.Mode,
		deep:       opts.Deep,
		sync:       opts.Sync,
		lazy:       opts.Mode == ModeComputed,
		active:     true,
		depIDs:     mapset.NewThreadUnsafeSet[uint64](),
		newDepIDs:  mapset.NewThreadUnsafeSet[uint64](),
		getter:     getter,
		cb:         cb,
		component:  opts.Component,
		expression: opts.Expression,
		onUpdated:  opts.OnUpdated,
		onTeardown: opts.OnTeardown,
	}
	w.dirty = w.lazy
	if !w.lazy {
		w.value = w.get()
	}
	return w
}

// ID returns the watcher's creation-ordered id.
func (w *Watcher) ID() uint64 { return w.id }

// Mode returns the watcher mode.
func (w *Watcher) Mode() Mode { return w.mode }

// Value returns the last evaluated value without tracking.
func (w *Watcher) Value() any { return w.value }

// Dirty reports whether a computed watcher needs re-evaluation.
func (w *Watcher) Dirty() bool { return w.dirty }

// Active reports whether the watcher is still subscribed.
func (w *Watcher) Active() bool { return w.active }

// Deps returns the deps recorded by the last evaluation.
func (w *Watcher) Deps() []*Dep {
	out := make([]*Dep, len(w.deps))
	copy(out, w.deps)
	return out
}

func (w *Watcher) info() string {
	switch w.mode {
	case ModeRender:
		return "render function"
	case ModeComputed:
		return fmt.Sprintf("getter for computed %q", w.expression)
	default:
		return fmt.Sprintf("getter for watcher %q", w.expression)
	}
}

// get evaluates the getter with w as the target. A panic is reported
// and the previous value is kept.
func (w *Watcher) get() (value any) {
	rt := w.rt
	rt.pushTarget(w)
	defer func() {
		if r := recover(); r != nil {
			rt.Report(&Error{Kind: KindEvaluation, Component: w.component, Info: w.info(), Err: panicError(r)})
			value = w.value
		}
		if w.deep {
			rt.traverse(value)
		}
		rt.popTarget()
		w.cleanupDeps()
	}()
	return w.getter()
}

func (w *Watcher) addDep(d *Dep) {
	if w.newDepIDs.Contains(d.id) {
		return
	}
	w.newDepIDs.Add(d.id)
	w.newDeps = append(w.newDeps, d)
	if !w.depIDs.Contains(d.id) {
		d.Subscribe(w)
	}
}

// cleanupDeps drops subscriptions the last evaluation did not renew and
// makes the new set current.
func (w *Watcher) cleanupDeps() {
	if !w.active {
		for _, d := range w.newDeps {
			d.Unsubscribe(w)
		}
		w.newDeps = w.newDeps[:0]
		w.newDepIDs.Clear()
		return
	}
	for i := len(w.deps) - 1; i >= 0; i-- {
		if d := w.deps[i]; !w.newDepIDs.Contains(d.id) {
			d.Unsubscribe(w)
		}
	}
	w.depIDs, w.newDepIDs = w.newDepIDs, w.depIDs
	w.newDepIDs.Clear()
	w.deps, w.newDeps = w.newDeps, w.deps[:0]
}

// Update is called by a dep when it changes.
func (w *Watcher) Update() {
	switch {
	case w.lazy:
		w.dirty = true
	case w.sync:
		w.Run()
	default:
		w.rt.scheduler.Enqueue(w)
	}
}

// Run re-evaluates and invokes the callback when the value changed, when
// it is a reference-like value, or when the watcher is deep.
func (w *Watcher) Run() {
	if !w.active {
		return
	}
	value := w.get()
	if sameValue(value, w.value) && !isObject(value) && !w.deep {
		return
	}
	old := w.value
	w.value = value
	if w.cb == nil {
		return
	}
	if w.mode == ModeUser {
		w.rt.Try(KindUserCallback, w.component, fmt.Sprintf("callback for watcher %q", w.expression), func() {
			w.cb(value, old)
		})
		return
	}
	w.cb(value, old)
}

// Evaluate recomputes a lazy watcher and clears its dirty flag.
func (w *Watcher) Evaluate() {
	w.value = w.get()
	w.dirty = false
}

// Depend makes the current target depend on everything w depends on.
func (w *Watcher) Depend() {
	for i := len(w.deps) - 1; i >= 0; i-- {
		w.deps[i].Depend()
	}
}

// ComputedValue returns the cached value of a computed watcher,
// re-evaluating it first when dirty, and forwards its deps to the
// current target.
func (w *Watcher) ComputedValue() any {
	if w.dirty {
		w.Evaluate()
	}
	if w.rt.target != nil {
		w.Depend()
	}
	return w.value
}

// Teardown unsubscribes w from every dep. It is idempotent and safe to
// call from the watcher's own callback.
func (w *Watcher) Teardown() {
	if !w.active {
		return
	}
	if w.onTeardown != nil {
		w.onTeardown(w)
	}
	for i := len(w.deps) - 1; i >= 0; i-- {
		w.deps[i].Unsubscribe(w)
	}
	w.active = false
}
