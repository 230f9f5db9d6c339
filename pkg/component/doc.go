// Package component turns option definitions into live instances that
// render through a vdom.Patcher and re-render when the reactive state
// they read changes.
//
// An instance initializes in a fixed order: beforeCreate, props, data,
// computed, watch, created. Mounting creates the instance's render
// watcher, whose first run renders and patches; children are mounted
// before their parents. Destroying tears down every watcher and child
// and leaves the host tree for the parent to remove.
//
//	app := component.NewApp(rt, host)
//	counter := &component.Options{
//	    Name: "Counter",
//	    Data: func(*component.Instance) map[string]any {
//	        return map[string]any{"n": 0}
//	    },
//	    Render: func(vm *component.Instance) *vdom.VNode {
//	        return vm.H("span", vm.Int("n"))
//	    },
//	}
//	vm := app.Mount(counter, root, nil)
//	vm.Set("n", 1)
//	rt.Tick()
//
// Placeholders with Data.KeepAlive cache their instance in the
// rendering parent; leaving the tree deactivates it instead of
// destroying it.
package component
