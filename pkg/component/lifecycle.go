package component

import (
	"log/slog"

	rerrors "github.com/vango-dev/reactor/internal/errors"
	"github.com/vango-dev/reactor/pkg/reactive"
	"github.com/vango-dev/reactor/pkg/vdom"
)

func (vm *Instance) callHook(h Hook) {
	handlers := vm.options.Hooks[h]
	if len(handlers) == 0 {
		return
	}
	rt := vm.rt()
	info := string(h) + " hook"
	rt.Untracked(func() {
		for _, fn := range handlers {
			rt.Try(reactive.KindUserCallback, vm.name, info, func() { fn(vm) })
		}
	})
}

// Mount renders the instance and attaches its tree under parent, before
// ref. A root instance gets its mounted hook here; a child gets it once
// the parent's tree is attached.
func (vm *Instance) Mount(parent, ref vdom.Node) *Instance {
	if vm.renderWatcher != nil || vm.destroyed {
		return vm
	}
	if vm.options.Render == nil {
		vm.Warn(rerrors.CodeMissingRender, "component %s has no render function", vm.name)
	}
	vm.callHook(BeforeMount)

	vm.mountParent, vm.mountRef = parent, ref
	vm.renderWatcher = vm.rt().NewWatcher(vm.renderAndPatch, nil, reactive.WatcherOptions{
		Mode:       reactive.ModeRender,
		Component:  vm.name,
		Expression: "render",
		OnUpdated: func() {
			if vm.mounted && !vm.destroyed {
				vm.callHook(Updated)
			}
		},
	})

	if vm.placeholder == nil {
		vm.mounted = true
		vm.callHook(Mounted)
		vm.app.logger.Debug("component mounted", slog.String("component", vm.name))
	}
	return vm
}

func (vm *Instance) renderAndPatch() any {
	vm.update(vm.render())
	return nil
}

func (vm *Instance) render() *vdom.VNode {
	var vnode *vdom.VNode
	if vm.options.Render != nil {
		vnode = vm.options.Render(vm)
	}
	if vnode == nil {
		vnode = vdom.Empty("")
	}
	return vnode
}

func (vm *Instance) update(vnode *vdom.VNode) {
	if vm.mounted {
		vm.callHook(BeforeUpdate)
	}
	prev := vm.vnode
	vm.vnode = vnode

	p := vm.app.patcher
	if prev == nil {
		vm.elm = p.Patch(nil, vnode, vdom.Mount{Parent: vm.mountParent, Ref: vm.mountRef, Placeholder: vm.placeholder})
		vm.mountParent, vm.mountRef = nil, nil
	} else {
		vm.elm = p.Patch(prev, vnode, vdom.Mount{Placeholder: vm.placeholder})
	}

	// A component whose root is another component shares its host node.
	for cur := vm; cur.placeholder != nil; cur = cur.parent {
		cur.placeholder.Elm = cur.elm
		if cur.parent == nil || cur.parent.vnode != cur.placeholder {
			break
		}
		cur.parent.elm = cur.elm
	}
}

// ForceUpdate queues a re-render.
func (vm *Instance) ForceUpdate() {
	if vm.renderWatcher != nil && !vm.destroyed {
		vm.renderWatcher.Update()
	}
}

// updateFromParent passes a new placeholder's props, listeners and
// slot content to an existing instance.
func (vm *Instance) updateFromParent(vnode *vdom.VNode) {
	cd := vnode.Component
	hasSlot := len(cd.Children) > 0 || len(vm.slot) > 0

	vm.placeholder = vnode
	vm.slot = cd.Children

	values := vm.app.extractProps(vm.options, vnode)
	vm.rt().Untracked(func() {
		vm.updatingProps = true
		defer func() { vm.updatingProps = false }()
		for _, p := range vm.options.Props {
			vm.props.Set(p.Name, propValue(p, values))
		}
	})

	if hasSlot {
		vm.ForceUpdate()
	}
}

// Destroy tears the instance down: hooks, watchers and every child.
// The host tree is left in place; its parent removes it.
func (vm *Instance) Destroy() {
	if vm.beingDestroyed {
		return
	}
	vm.callHook(BeforeDestroy)
	vm.beingDestroyed = true

	if p := vm.parent; p != nil && !p.beingDestroyed {
		p.removeChild(vm)
	}
	if vm.renderWatcher != nil {
		vm.renderWatcher.Teardown()
	}
	for i := len(vm.watchers) - 1; i >= 0; i-- {
		vm.watchers[i].Teardown()
	}
	vm.data.Observer().DetachRoot()
	vm.destroyed = true

	vm.app.patcher.Patch(vm.vnode, nil, vdom.Mount{})
	for _, cached := range vm.cache {
		if !cached.destroyed {
			cached.Destroy()
		}
	}
	vm.cache = nil

	vm.callHook(Destroyed)
	vm.events = nil
	vm.app.logger.Debug("component destroyed", slog.String("component", vm.name))
}

func (vm *Instance) removeChild(child *Instance) {
	for i, c := range vm.children {
		if c == child {
			vm.children = append(vm.children[:i], vm.children[i+1:]...)
			return
		}
	}
}

func (vm *Instance) inInactiveTree() bool {
	for p := vm.parent; p != nil; p = p.parent {
		if p.activity == activityInactive {
			return true
		}
	}
	return false
}

func (vm *Instance) activate(direct bool) {
	if direct {
		vm.directInactive = false
		if vm.inInactiveTree() {
			return
		}
	} else if vm.directInactive {
		return
	}
	if vm.activity != activityActive {
		vm.activity = activityActive
		for _, c := range vm.children {
			c.activate(false)
		}
		vm.callHook(Activated)
	}
}

func (vm *Instance) deactivate(direct bool) {
	if direct {
		vm.directInactive = true
		if vm.inInactiveTree() {
			return
		}
	}
	if vm.activity != activityInactive {
		vm.activity = activityInactive
		for _, c := range vm.children {
			c.deactivate(false)
		}
		vm.callHook(Deactivated)
	}
}

// Activate implements reactive.Activatable. It runs the activated hooks
// of a kept-alive instance re-inserted during a flush.
func (vm *Instance) Activate() {
	vm.activity = activityInactive
	vm.activate(true)
}
