package component

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	rerrors "github.com/vango-dev/reactor/internal/errors"
	"github.com/vango-dev/reactor/pkg/reactive"
	"github.com/vango-dev/reactor/pkg/vdom"
)

type activity uint8

const (
	activityUnknown activity = iota
	activityActive
	activityInactive
)

// Listener handles an emitted event.
type Listener func(args ...any)

type computedEntry struct {
	def ComputedDef
	w   *reactive.Watcher
}

type cacheKey struct {
	def *Options
	key any
}

// Instance is a live component: its props, data, computed values and
// watchers, the tree it last rendered, and its place in the component
// tree.
type Instance struct {
	app     *App
	uid     int
	name    string
	options *Options

	parent   *Instance
	root     *Instance
	children []*Instance

	props    *reactive.Object
	data     *reactive.Object
	computed map[string]*computedEntry

	watchers      []*reactive.Watcher
	renderWatcher *reactive.Watcher

	placeholder *vdom.VNode
	vnode       *vdom.VNode
	slot        []*vdom.VNode
	elm         vdom.Node
	mountParent vdom.Node
	mountRef    vdom.Node

	events map[string][]Listener
	cache  map[cacheKey]*Instance

	mounted        bool
	beingDestroyed bool
	destroyed      bool
	activity       activity
	directInactive bool
	updatingProps  bool
}

func (a *App) newInstance(def *Options, parent *Instance, placeholder *vdom.VNode, props map[string]any) *Instance {
	a.uid++
	vm := &Instance{
		app:         a,
		uid:         a.uid,
		options:     def,
		parent:      parent,
		placeholder: placeholder,
		computed:    make(map[string]*computedEntry),
	}
	vm.name = def.Name
	if vm.name == "" && placeholder != nil && placeholder.Component != nil {
		vm.name = placeholder.Component.Name
	}
	if vm.name == "" {
		vm.name = "Anonymous"
	}
	vm.root = vm
	if parent != nil {
		vm.root = parent.root
		parent.children = append(parent.children, vm)
	}
	if placeholder != nil && placeholder.Component != nil {
		vm.slot = placeholder.Component.Children
	}

	a.rt.Untracked(func() {
		vm.callHook(BeforeCreate)
		vm.initProps(props)
		vm.initData()
		vm.initComputed()
		vm.initWatch()
		vm.callHook(Created)
	})

	a.logger.Debug("component created", slog.String("component", vm.name), slog.Int("uid", vm.uid))
	return vm
}

func (vm *Instance) rt() *reactive.Runtime {
	return vm.app.rt
}

func (vm *Instance) initProps(values map[string]any) {
	rt := vm.rt()
	vm.props = rt.NewObject()
	for _, p := range vm.options.Props {
		opts := []reactive.FieldOption{reactive.OnSet(vm.onPropSet)}
		if vm.parent != nil {
			opts = append(opts, reactive.NoConvert())
		}
		rt.DefineReactive(vm.props, p.Name, propValue(p, values), opts...)
	}
}

func propValue(p Prop, values map[string]any) any {
	if v, ok := values[p.Name]; ok {
		return v
	}
	if fn, ok := p.Default.(func() any); ok {
		return fn()
	}
	return p.Default
}

func (vm *Instance) onPropSet(key string, _ any) {
	if vm.parent != nil && !vm.updatingProps {
		vm.Warn(rerrors.CodePropMutation, "avoid mutating prop %q directly", key)
	}
}

func (vm *Instance) initData() {
	rt := vm.rt()
	var m map[string]any
	if vm.options.Data != nil {
		ok := rt.Try(reactive.KindUserCallback, vm.name, "data()", func() {
			rt.Untracked(func() { m = vm.options.Data(vm) })
		})
		if !ok {
			m = nil
		}
	}
	vm.data = rt.Reactive(m)
	for _, key := range vm.data.Keys() {
		if vm.props.Contains(key) {
			vm.Warn(rerrors.CodeDuplicateField, "data property %q is already declared as a prop", key)
		}
	}
	vm.data.Observer().AttachRoot()
}

func (vm *Instance) initComputed() {
	rt := vm.rt()
	names := make([]string, 0, len(vm.options.Computed))
	for name := range vm.options.Computed {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		def := vm.options.Computed[name]
		if vm.props.Contains(name) || vm.data.Contains(name) {
			vm.Warn(rerrors.CodeDuplicateField, "computed property %q is already defined in data or props", name)
			continue
		}
		if def.Get == nil {
			vm.Warn(rerrors.CodeDuplicateField, "computed property %q has no getter", name)
			continue
		}
		get := def.Get
		w := rt.NewWatcher(func() any { return get(vm) }, nil, reactive.WatcherOptions{
			Mode:       reactive.ModeComputed,
			Component:  vm.name,
			Expression: name,
		})
		vm.computed[name] = &computedEntry{def: def, w: w}
		vm.watchers = append(vm.watchers, w)
	}
}

func (vm *Instance) initWatch() {
	paths := make([]string, 0, len(vm.options.Watch))
	for path := range vm.options.Watch {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		for _, def := range vm.options.Watch[path] {
			handler := def.Handler
			if handler == nil {
				continue
			}
			vm.Watch(path, func(n, o any) { handler(vm, n, o) }, reactive.WatchOptions{
				Deep:      def.Deep,
				Immediate: def.Immediate,
				Sync:      def.Sync,
			})
		}
	}
}

// Watch observes a dot-delimited path whose first segment is a prop,
// data or computed name. The watcher is torn down with the instance.
func (vm *Instance) Watch(path string, cb func(newValue, oldValue any), opts reactive.WatchOptions) (unwatch func()) {
	getter, ok := vm.pathGetter(path)
	if !ok {
		vm.Warn(rerrors.CodeBadWatchPath, "failed watching path %q", path)
		getter = func() any { return nil }
	}
	opts.Expression = path
	return vm.WatchFunc(getter, cb, opts)
}

// WatchFunc observes the value returned by fn.
func (vm *Instance) WatchFunc(fn func() any, cb func(newValue, oldValue any), opts reactive.WatchOptions) (unwatch func()) {
	opts.Component = vm.name
	opts.OnTeardown = vm.removeWatcher
	w := vm.rt().UserWatcher(fn, cb, opts)
	vm.watchers = append(vm.watchers, w)
	return w.Teardown
}

func (vm *Instance) removeWatcher(w *reactive.Watcher) {
	if vm.beingDestroyed {
		return
	}
	for i, x := range vm.watchers {
		if x == w {
			vm.watchers = append(vm.watchers[:i], vm.watchers[i+1:]...)
			return
		}
	}
}

func (vm *Instance) pathGetter(path string) (func() any, bool) {
	head, rest, nested := strings.Cut(path, ".")
	if _, ok := reactive.ParsePath(path); !ok {
		return nil, false
	}
	if !nested {
		return func() any { return vm.Get(head) }, true
	}
	walk, _ := reactive.ParsePath(rest)
	return func() any { return walk(vm.Get(head)) }, true
}

// Get reads a prop, data or computed value by name, tracking it.
func (vm *Instance) Get(key string) any {
	switch {
	case vm.props.Contains(key):
		return vm.props.Get(key)
	case vm.data.Contains(key):
		return vm.data.Get(key)
	}
	if c, ok := vm.computed[key]; ok {
		if c.def.NoCache {
			return c.def.Get(vm)
		}
		return c.w.ComputedValue()
	}
	vm.Warn(rerrors.CodeUndefinedField, "property %q is not defined on the instance but referenced during render", key)
	return nil
}

// Set writes a data value, a computed setter or, with a warning, a
// prop. New root keys are refused.
func (vm *Instance) Set(key string, value any) {
	switch {
	case vm.props.Contains(key):
		vm.props.Set(key, value)
		return
	case vm.data.Contains(key):
		vm.data.Set(key, value)
		return
	}
	if c, ok := vm.computed[key]; ok {
		if c.def.Set == nil {
			vm.Warn(rerrors.CodeComputedSetter, "computed property %q was assigned to but it has no setter", key)
			return
		}
		c.def.Set(vm, value)
		return
	}
	vm.Warn(rerrors.CodeRootDataAdd, "cannot add %q to instance %s at runtime", key, vm.name)
}

// String returns Get(key) as a string, or "".
func (vm *Instance) String(key string) string {
	s, _ := vm.Get(key).(string)
	return s
}

// Int returns Get(key) as an int, or 0.
func (vm *Instance) Int(key string) int {
	n, _ := vm.Get(key).(int)
	return n
}

// Bool returns Get(key) as a bool, or false.
func (vm *Instance) Bool(key string) bool {
	b, _ := vm.Get(key).(bool)
	return b
}

// Object returns Get(key) as a tracked Object, or nil.
func (vm *Instance) Object(key string) *reactive.Object {
	o, _ := vm.Get(key).(*reactive.Object)
	return o
}

// Array returns Get(key) as a tracked Array, or nil.
func (vm *Instance) Array(key string) *reactive.Array {
	a, _ := vm.Get(key).(*reactive.Array)
	return a
}

// H creates a VNode in this instance's context.
func (vm *Instance) H(tag any, args ...any) *vdom.VNode {
	return vdom.H(vm, tag, args...)
}

// Slot returns the content the parent passed between the component's
// tags.
func (vm *Instance) Slot() []*vdom.VNode {
	return vm.slot
}

// NextTick queues fn after the next flush.
func (vm *Instance) NextTick(fn func()) {
	vm.rt().NextTick(fn)
}

// ResolveComponent implements vdom.Context.
func (vm *Instance) ResolveComponent(name string) (any, bool) {
	if def, ok := resolveAsset(vm.options.Components, name); ok {
		return def, true
	}
	if def, ok := resolveAsset(vm.app.components, name); ok {
		return def, true
	}
	return nil, false
}

// Platform implements vdom.Context.
func (vm *Instance) Platform() vdom.Platform {
	return vm.app.platform
}

// Warn implements vdom.Context.
func (vm *Instance) Warn(code, format string, args ...any) {
	vm.rt().Warn(code, vm.name, format, args...)
}

// HostNode implements vdom.ComponentInstance.
func (vm *Instance) HostNode() vdom.Node {
	return vm.elm
}

// On registers a listener for event.
func (vm *Instance) On(event string, fn Listener) {
	if vm.events == nil {
		vm.events = make(map[string][]Listener)
	}
	vm.events[event] = append(vm.events[event], fn)
}

// Once registers a listener that runs at most once.
func (vm *Instance) Once(event string, fn Listener) {
	fired := false
	vm.On(event, func(args ...any) {
		if fired {
			return
		}
		fired = true
		fn(args...)
	})
}

// Off removes the listeners for event, or every listener when event is
// empty.
func (vm *Instance) Off(event string) {
	if event == "" {
		vm.events = nil
		return
	}
	delete(vm.events, event)
}

// Emit calls the instance's own listeners for event, then the one the
// parent attached on the placeholder.
func (vm *Instance) Emit(event string, args ...any) {
	rt := vm.rt()
	info := fmt.Sprintf("event handler for %q", event)
	for _, fn := range append([]Listener(nil), vm.events[event]...) {
		rt.Try(reactive.KindUserCallback, vm.name, info, func() { fn(args...) })
	}
	if vm.placeholder != nil && vm.placeholder.Data != nil {
		if fn := vm.placeholder.Data.On[event]; fn != nil {
			rt.Try(reactive.KindUserCallback, vm.name, info, func() { fn(args...) })
		}
	}
}

// Accessors.

func (vm *Instance) Name() string               { return vm.name }
func (vm *Instance) UID() int                   { return vm.uid }
func (vm *Instance) Options() *Options          { return vm.options }
func (vm *Instance) Parent() *Instance          { return vm.parent }
func (vm *Instance) Root() *Instance            { return vm.root }
func (vm *Instance) Props() *reactive.Object    { return vm.props }
func (vm *Instance) Data() *reactive.Object     { return vm.data }
func (vm *Instance) VNode() *vdom.VNode         { return vm.vnode }
func (vm *Instance) Placeholder() *vdom.VNode   { return vm.placeholder }
func (vm *Instance) Elm() vdom.Node             { return vm.elm }
func (vm *Instance) App() *App                  { return vm.app }
func (vm *Instance) Runtime() *reactive.Runtime { return vm.app.rt }
func (vm *Instance) IsMounted() bool            { return vm.mounted }
func (vm *Instance) IsDestroyed() bool          { return vm.destroyed }
func (vm *Instance) IsInactive() bool           { return vm.activity == activityInactive }

// Children returns the direct child instances.
func (vm *Instance) Children() []*Instance {
	return append([]*Instance(nil), vm.children...)
}
