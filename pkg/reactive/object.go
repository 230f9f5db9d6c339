package reactive

// Object is a tracked string-keyed record. Reading a key inside an
// evaluation subscribes the watcher to that key; writing a different
// value notifies it.
type Object struct {
	ob     *Observer
	keys   []string
	fields map[string]*binding
}

type binding struct {
	key     string
	dep     *Dep
	value   any
	childOb *Observer
	cfg     fieldConfig
}

type fieldConfig struct {
	noConvert bool
	onSet     func(key string, value any)
}

// FieldOption configures a property defined with DefineReactive.
type FieldOption func(*fieldConfig)

// NoConvert stores assigned values as given instead of converting maps
// and slices. Values that are already tracked still propagate their
// structural dep.
func NoConvert() FieldOption {
	return func(c *fieldConfig) {
		c.noConvert = true
	}
}

// OnSet registers a hook called before each effective write.
func OnSet(fn func(key string, value any)) FieldOption {
	return func(c *fieldConfig) {
		c.onSet = fn
	}
}

// NewObject returns an empty tracked Object.
func (rt *Runtime) NewObject() *Object {
	obj := &Object{fields: make(map[string]*binding)}
	obj.ob = &Observer{rt: rt, dep: rt.NewDep(), value: obj}
	return obj
}

// DefineReactive installs key on obj with an initial value, replacing
// any previous definition. It does not notify.
func (rt *Runtime) DefineReactive(obj *Object, key string, value any, opts ...FieldOption) {
	var cfg fieldConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if !cfg.noConvert {
		value = rt.convert(value)
	}
	if _, ok := obj.fields[key]; ok {
		obj.remove(key)
	}
	obj.define(key, value, cfg)
}

func (o *Object) define(key string, value any, cfg fieldConfig) {
	b := &binding{key: key, dep: o.ob.rt.NewDep(), value: value, cfg: cfg}
	b.childOb = observerOf(value)
	o.fields[key] = b
	o.keys = append(o.keys, key)
}

func (o *Object) remove(key string) {
	delete(o.fields, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			return
		}
	}
}

func (o *Object) assign(b *binding, value any) {
	if sameValue(b.value, value) {
		return
	}
	if b.cfg.onSet != nil {
		b.cfg.onSet(b.key, value)
	}
	if !b.cfg.noConvert {
		value = o.ob.rt.convert(value)
	}
	b.value = value
	b.childOb = observerOf(value)
	b.dep.Notify()
}

// Observer returns the attached observer.
func (o *Object) Observer() *Observer {
	return o.ob
}

// Get returns the value under key. Inside an evaluation it subscribes
// the watcher to the key, and to the nested value's structure when that
// value is tracked. Reading an absent key subscribes to the object's
// structure so a later Set of the key is seen.
func (o *Object) Get(key string) any {
	b, ok := o.fields[key]
	if !ok {
		o.ob.dep.Depend()
		return nil
	}
	if o.ob.rt.target != nil {
		b.dep.Depend()
		if b.childOb != nil {
			b.childOb.dep.Depend()
			if arr, ok := b.value.(*Array); ok {
				dependArray(arr)
			}
		}
	}
	return b.value
}

// Peek returns the value under key without tracking.
func (o *Object) Peek(key string) any {
	if b, ok := o.fields[key]; ok {
		return b.value
	}
	return nil
}

// Has reports whether key is defined. It tracks the object's structure.
func (o *Object) Has(key string) bool {
	o.ob.dep.Depend()
	_, ok := o.fields[key]
	return ok
}

// Contains reports whether key is defined, without tracking.
func (o *Object) Contains(key string) bool {
	_, ok := o.fields[key]
	return ok
}

// Set writes key. An absent key is added reactively.
func (o *Object) Set(key string, value any) {
	o.ob.rt.Set(o, key, value)
}

// Delete removes key reactively.
func (o *Object) Delete(key string) {
	o.ob.rt.Delete(o, key)
}

// Keys returns the keys in definition order. It tracks the object's
// structure.
func (o *Object) Keys() []string {
	o.ob.dep.Depend()
	keys := make([]string, len(o.keys))
	copy(keys, o.keys)
	return keys
}

// Len returns the number of keys. It tracks the object's structure.
func (o *Object) Len() int {
	o.ob.dep.Depend()
	return len(o.keys)
}

// KeyDep returns the dep guarding key, or nil.
func (o *Object) KeyDep(key string) *Dep {
	if b, ok := o.fields[key]; ok {
		return b.dep
	}
	return nil
}

// ToMap returns an untracked deep copy with nested Objects and Arrays
// turned back into maps and slices.
func (o *Object) ToMap() map[string]any {
	return toPlain(o, map[*Observer]any{}).(map[string]any)
}

func toPlain(v any, seen map[*Observer]any) any {
	switch t := v.(type) {
	case *Object:
		if p, ok := seen[t.ob]; ok {
			return p
		}
		m := make(map[string]any, len(t.keys))
		seen[t.ob] = m
		for _, k := range t.keys {
			m[k] = toPlain(t.fields[k].value, seen)
		}
		return m
	case *Array:
		if p, ok := seen[t.ob]; ok {
			return p
		}
		s := make([]any, len(t.items))
		seen[t.ob] = s
		for i, item := range t.items {
			s[i] = toPlain(item, seen)
		}
		return s
	case raw:
		return t.value
	}
	return v
}
