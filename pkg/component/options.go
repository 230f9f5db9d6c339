package component

import "github.com/vango-dev/reactor/pkg/vdom"

// Hook names a lifecycle stage.
type Hook string

const (
	BeforeCreate  Hook = "beforeCreate"
	Created       Hook = "created"
	BeforeMount   Hook = "beforeMount"
	Mounted       Hook = "mounted"
	BeforeUpdate  Hook = "beforeUpdate"
	Updated       Hook = "updated"
	Activated     Hook = "activated"
	Deactivated   Hook = "deactivated"
	BeforeDestroy Hook = "beforeDestroy"
	Destroyed     Hook = "destroyed"
)

// Hooks maps lifecycle stages to callbacks, run in order.
type Hooks map[Hook][]func(vm *Instance)

// Prop declares an input passed down by the parent.
type Prop struct {
	Name string
	// Default is used when the parent passes nothing. A func() any is
	// called for each instance.
	Default any
}

// ComputedDef declares a cached derivation.
type ComputedDef struct {
	Get func(vm *Instance) any
	Set func(vm *Instance, value any)
	// NoCache re-runs Get on every read.
	NoCache bool
}

// WatchDef declares a watch on a dot-delimited instance path.
type WatchDef struct {
	Handler   func(vm *Instance, newValue, oldValue any)
	Deep      bool
	Immediate bool
	Sync      bool
}

// Options defines a component. A *Options is the component's identity:
// two placeholders render the same component when they point to the
// same Options.
type Options struct {
	Name       string
	Props      []Prop
	Data       func(vm *Instance) map[string]any
	Computed   map[string]ComputedDef
	Watch      map[string][]WatchDef
	Render     func(vm *Instance) *vdom.VNode
	Components map[string]*Options
	Hooks      Hooks
}

// On appends a lifecycle callback and returns o.
func (o *Options) On(h Hook, fn func(vm *Instance)) *Options {
	if o.Hooks == nil {
		o.Hooks = make(Hooks)
	}
	o.Hooks[h] = append(o.Hooks[h], fn)
	return o
}

// PropNames declares props without defaults.
func PropNames(names ...string) []Prop {
	props := make([]Prop, len(names))
	for i, n := range names {
		props[i] = Prop{Name: n}
	}
	return props
}
