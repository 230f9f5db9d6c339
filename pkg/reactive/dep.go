package reactive

// Dep is an observable source: a set of watchers to notify when the
// value it guards changes. Every tracked property, array and Ref owns
// one.
type Dep struct {
	rt   *Runtime
	id   uint64
	subs []*Watcher
}

// NewDep creates a Dep with the next id from rt.
func (rt *Runtime) NewDep() *Dep {
	rt.depUID++
	return &Dep{rt: rt, id: rt.depUID}
}

// ID returns the dep's unique id.
func (d *Dep) ID() uint64 {
	return d.id
}

// Subscribe adds w to the subscriber list.
func (d *Dep) Subscribe(w *Watcher) {
	d.subs = append(d.subs, w)
}

// Unsubscribe removes w, keeping the order of the rest.
func (d *Dep) Unsubscribe(w *Watcher) {
	for i, s := range d.subs {
		if s == w {
			d.subs = append(d.subs[:i], d.subs[i+1:]...)
			return
		}
	}
}

// Depend registers d with the watcher currently evaluating, if any.
func (d *Dep) Depend() {
	if t := d.rt.target; t != nil {
		t.addDep(d)
	}
}

// Notify calls Update on a snapshot of the subscribers. Subscribers
// added or removed during the pass do not affect it.
func (d *Dep) Notify() {
	if len(d.subs) == 0 {
		return
	}
	subs := make([]*Watcher, len(d.subs))
	copy(subs, d.subs)
	for _, w := range subs {
		w.Update()
	}
}

// Subscribers returns how many watchers are subscribed.
func (d *Dep) Subscribers() int {
	return len(d.subs)
}
