package component

import (
	"reflect"

	"github.com/vango-dev/reactor/pkg/vdom"
)

// manager creates and maintains the instances behind placeholders.
type manager struct {
	app *App
}

var _ vdom.ComponentManager = (*manager)(nil)

func contextOf(vnode *vdom.VNode) *Instance {
	vm, _ := vnode.Context.(*Instance)
	return vm
}

func instanceOf(vnode *vdom.VNode) *Instance {
	if vnode.Component == nil {
		return nil
	}
	vm, _ := vnode.Component.Instance.(*Instance)
	return vm
}

func keptAlive(vnode *vdom.VNode) bool {
	return vnode.Data != nil && vnode.Data.KeepAlive
}

func (m *manager) Create(vnode *vdom.VNode) {
	cd := vnode.Component
	def, ok := cd.Def.(*Options)
	if !ok || def == nil {
		return
	}
	ctx := contextOf(vnode)

	var key cacheKey
	keep := keptAlive(vnode) && ctx != nil
	if keep {
		key = cacheKey{def: def}
		if vnode.Key != nil && reflect.TypeOf(vnode.Key).Comparable() {
			key.key = vnode.Key
		}
		if cached := ctx.cache[key]; cached != nil && !cached.destroyed {
			cd.Instance = cached
			cached.updateFromParent(vnode)
			return
		}
	}

	child := m.app.newInstance(def, ctx, vnode, m.app.extractProps(def, vnode))
	cd.Instance = child
	if keep {
		if ctx.cache == nil {
			ctx.cache = make(map[cacheKey]*Instance)
		}
		ctx.cache[key] = child
	}
	child.Mount(nil, nil)
}

func (m *manager) Prepatch(old, vnode *vdom.VNode) {
	vm := instanceOf(old)
	if vm == nil {
		return
	}
	vnode.Component.Instance = vm
	vm.updateFromParent(vnode)
}

func (m *manager) Insert(vnode *vdom.VNode) {
	vm := instanceOf(vnode)
	if vm == nil {
		return
	}
	if !vm.mounted {
		vm.mounted = true
		vm.callHook(Mounted)
	}
	if keptAlive(vnode) {
		if ctx := contextOf(vnode); ctx != nil && ctx.mounted {
			vm.activity = activityActive
			m.app.rt.Scheduler().QueueActivated(vm)
		} else {
			vm.activate(true)
		}
	}
}

func (m *manager) Destroy(vnode *vdom.VNode) {
	vm := instanceOf(vnode)
	if vm == nil || vm.destroyed {
		return
	}
	ctx := contextOf(vnode)
	if keptAlive(vnode) && ctx != nil && !ctx.beingDestroyed {
		vm.deactivate(true)
		return
	}
	vm.Destroy()
}

// extractProps collects the declared props of def from the
// placeholder: explicit props first, then attributes under the prop
// name or its hyphenated form.
func (a *App) extractProps(def *Options, vnode *vdom.VNode) map[string]any {
	values := make(map[string]any, len(def.Props))
	var props map[string]any
	var attrs vdom.Props
	if vnode.Component != nil {
		props = vnode.Component.Props
	}
	if vnode.Data != nil {
		attrs = vnode.Data.Attrs
	}
	for _, p := range def.Props {
		if v, ok := props[p.Name]; ok {
			values[p.Name] = v
			continue
		}
		if v, ok := attrs[p.Name]; ok {
			values[p.Name] = v
			continue
		}
		if v, ok := attrs[hyphenate(p.Name)]; ok {
			values[p.Name] = v
		}
	}
	return values
}
