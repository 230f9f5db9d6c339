// Package reactive implements dependency tracking and batched
// re-evaluation.
//
// Values become tracked when converted with Runtime.Reactive,
// Runtime.ReactiveArray or NewRef. A Watcher evaluates a getter and
// records every tracked value it read; when one of them changes the
// watcher is queued on the runtime's Scheduler and re-run on the next
// Tick, once, in creation order.
//
//	rt := reactive.NewRuntime()
//	state := rt.Reactive(map[string]any{"count": 0})
//
//	rt.Watch(func() any { return state.Get("count") }, func(n, o any) {
//	    fmt.Println(o, "->", n)
//	}, reactive.WatchOptions{})
//
//	state.Set("count", 1)
//	state.Set("count", 2)
//	rt.Tick() // prints "0 -> 2"
//
// A Runtime is single-threaded. Run turns it into an event loop that
// accepts work from other goroutines through Dispatch.
package reactive
