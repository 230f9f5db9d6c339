package reactive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRuntime(t *testing.T, opts ...Option) (*Runtime, *[]*Error) {
	t.Helper()
	errs := &[]*Error{}
	opts = append([]Option{WithErrorHandler(func(e *Error) {
		*errs = append(*errs, e)
	})}, opts...)
	return NewRuntime(opts...), errs
}

type change struct {
	New, Old any
}

func TestWatchBatchesWrites(t *testing.T) {
	rt, _ := newTestRuntime(t)
	state := rt.Reactive(map[string]any{"count": 0})

	var calls []change
	rt.Watch(func() any { return state.Get("count") }, func(n, o any) {
		calls = append(calls, change{n, o})
	}, WatchOptions{})

	state.Set("count", 1)
	state.Set("count", 2)
	assert.Empty(t, calls, "callbacks wait for the tick")

	rt.Tick()
	require.Len(t, calls, 1)
	assert.Equal(t, change{2, 0}, calls[0])
}

func TestSameValueWriteDoesNotNotify(t *testing.T) {
	rt, _ := newTestRuntime(t)
	state := rt.Reactive(map[string]any{"name": "a"})

	runs := 0
	rt.Watch(func() any { runs++; return state.Get("name") }, nil, WatchOptions{})
	require.Equal(t, 1, runs)

	state.Set("name", "a")
	assert.False(t, rt.Pending())
	rt.Tick()
	assert.Equal(t, 1, runs)
}

func TestDynamicDependenciesAreDropped(t *testing.T) {
	rt, _ := newTestRuntime(t)
	state := rt.Reactive(map[string]any{"flag": true, "a": 1, "b": 2})

	runs := 0
	w := rt.NewWatcher(func() any {
		runs++
		if state.Get("flag").(bool) {
			return state.Get("a")
		}
		return state.Get("b")
	}, nil, WatcherOptions{Mode: ModeUser})
	assert.Len(t, w.Deps(), 2)

	state.Set("flag", false)
	rt.Tick()
	assert.Equal(t, 2, runs)
	assert.Equal(t, 2, w.Value())

	state.Set("a", 10)
	assert.False(t, rt.Pending(), "a is no longer a dependency")
	assert.Equal(t, 0, state.KeyDep("a").Subscribers())

	state.Set("b", 20)
	rt.Tick()
	assert.Equal(t, 20, w.Value())
}

func TestComputedIsLazyAndCached(t *testing.T) {
	rt, _ := newTestRuntime(t)
	state := rt.Reactive(map[string]any{"n": 2})

	evals := 0
	double := NewComputed(rt, "double", func() int {
		evals++
		return state.Get("n").(int) * 2
	})
	assert.Equal(t, 0, evals, "not evaluated until read")

	assert.Equal(t, 4, double.Get())
	assert.Equal(t, 4, double.Get())
	assert.Equal(t, 1, evals)

	state.Set("n", 5)
	assert.True(t, double.Watcher().Dirty())
	assert.False(t, rt.Pending(), "computed watchers are never queued")
	assert.Equal(t, 1, evals)

	assert.Equal(t, 10, double.Get())
	assert.Equal(t, 2, evals)
}

func TestWatcherDependsThroughComputed(t *testing.T) {
	rt, _ := newTestRuntime(t)
	state := rt.Reactive(map[string]any{"first": "Ada", "last": "Lovelace"})
	full := NewComputed(rt, "full", func() string {
		return state.Get("first").(string) + " " + state.Get("last").(string)
	})

	var got []any
	rt.Watch(func() any { return full.Get() }, func(n, _ any) {
		got = append(got, n)
	}, WatchOptions{})

	state.Set("last", "Byron")
	rt.Tick()
	assert.Equal(t, []any{"Ada Byron"}, got)
}

func TestFlushRunsInCreationOrder(t *testing.T) {
	rt, _ := newTestRuntime(t)
	state := rt.Reactive(map[string]any{"x": 0})

	var order []string
	names := []string{"first", "second", "third"}
	for _, name := range names {
		name := name
		rt.Watch(func() any { return state.Get("x") }, func(_, _ any) {
			order = append(order, name)
		}, WatchOptions{})
	}

	state.Set("x", 1)
	rt.Tick()
	assert.Equal(t, names, order)
}

func TestFlushOrderIgnoresEnqueueOrder(t *testing.T) {
	rt, _ := newTestRuntime(t)
	state := rt.Reactive(map[string]any{"a": 0, "b": 0, "c": 0})

	var order []int
	for i, key := range []string{"a", "b", "c"} {
		i, key := i+1, key
		rt.Watch(func() any { return state.Get(key) }, func(_, _ any) {
			order = append(order, i)
		}, WatchOptions{})
	}

	state.Set("c", 1)
	state.Set("a", 1)
	state.Set("b", 1)
	rt.Tick()
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestWatcherQueuedDuringFlushRunsBeforeHigherIDs(t *testing.T) {
	rt, _ := newTestRuntime(t)
	state := rt.Reactive(map[string]any{"a": 0, "b": 0, "c": 0})

	var order []int
	rt.Watch(func() any { return state.Get("a") }, func(n, _ any) {
		order = append(order, 1)
		state.Set("b", n)
	}, WatchOptions{})
	rt.Watch(func() any { return state.Get("b") }, func(_, _ any) {
		order = append(order, 2)
	}, WatchOptions{})
	rt.Watch(func() any { return state.Get("c") }, func(_, _ any) {
		order = append(order, 3)
	}, WatchOptions{})

	state.Set("c", 1)
	state.Set("a", 1)
	rt.Tick()
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestWatcherQueuedDuringFlushRunsAfterCurrent(t *testing.T) {
	rt, _ := newTestRuntime(t)
	state := rt.Reactive(map[string]any{"a": 0, "b": 0})

	var order []string
	rt.Watch(func() any { return state.Get("a") }, func(_, _ any) {
		order = append(order, "A")
	}, WatchOptions{})
	rt.Watch(func() any { return state.Get("b") }, func(n, _ any) {
		order = append(order, "B")
		state.Set("a", n)
	}, WatchOptions{})

	state.Set("b", 1)
	rt.Tick()
	assert.Equal(t, []string{"B", "A"}, order)
}

func TestUpdateLoopIsBounded(t *testing.T) {
	rt, errs := newTestRuntime(t)
	state := rt.Reactive(map[string]any{"count": 0, "other": 0})

	calls := 0
	rt.Watch(func() any { return state.Get("count") }, func(n, _ any) {
		calls++
		state.Set("count", n.(int)+1)
	}, WatchOptions{Expression: "count"})

	otherRuns := 0
	rt.Watch(func() any { return state.Get("other") }, func(_, _ any) {
		otherRuns++
	}, WatchOptions{})

	state.Set("count", 1)
	state.Set("other", 1)
	rt.Tick()

	assert.Equal(t, DefaultMaxUpdateCount, calls)
	assert.Equal(t, 1, otherRuns, "the flush continues past the looping watcher")
	require.Len(t, *errs, 1)
	assert.Equal(t, KindSchedulerLoop, (*errs)[0].Kind)
	assert.Equal(t, "R003", (*errs)[0].Code)
	assert.False(t, rt.Scheduler().Waiting(), "state is reset after the flush")
}

func TestMaxUpdateCountOption(t *testing.T) {
	rt, errs := newTestRuntime(t, WithMaxUpdateCount(5))
	ref := NewRef(rt, 0)

	calls := 0
	rt.Watch(func() any { return ref.Get() }, func(_, _ any) {
		calls++
		ref.Update(func(v int) int { return v + 1 })
	}, WatchOptions{})

	ref.Set(1)
	rt.Tick()
	assert.Equal(t, 5, calls)
	assert.Len(t, *errs, 1)
}

func TestGetterPanicKeepsPreviousValue(t *testing.T) {
	rt, errs := newTestRuntime(t)
	state := rt.Reactive(map[string]any{"n": 1})

	w := rt.NewWatcher(func() any {
		n := state.Get("n").(int)
		if n < 0 {
			panic("negative")
		}
		return n
	}, nil, WatcherOptions{Mode: ModeUser, Component: "Counter", Expression: "n"})

	state.Set("n", -1)
	rt.Tick()
	assert.Equal(t, 1, w.Value())
	require.Len(t, *errs, 1)
	e := (*errs)[0]
	assert.Equal(t, KindEvaluation, e.Kind)
	assert.Equal(t, "Counter", e.Component)
	assert.Contains(t, e.Error(), "negative")
	assert.Nil(t, rt.Target(), "target stack is restored after a panic")

	state.Set("n", 3)
	rt.Tick()
	assert.Equal(t, 3, w.Value(), "the watcher stays subscribed")
}

func TestCallbackPanicIsIsolated(t *testing.T) {
	rt, errs := newTestRuntime(t)
	state := rt.Reactive(map[string]any{"n": 0})

	rt.Watch(func() any { return state.Get("n") }, func(_, _ any) {
		panic("boom")
	}, WatchOptions{Expression: "n"})
	ok := false
	rt.Watch(func() any { return state.Get("n") }, func(_, _ any) {
		ok = true
	}, WatchOptions{})

	state.Set("n", 1)
	rt.Tick()
	assert.True(t, ok)
	require.Len(t, *errs, 1)
	assert.Equal(t, KindUserCallback, (*errs)[0].Kind)
	assert.Equal(t, `callback for watcher "n"`, (*errs)[0].Info)
}

func TestTeardownFromOwnCallback(t *testing.T) {
	rt, _ := newTestRuntime(t)
	state := rt.Reactive(map[string]any{"n": 0})

	calls := 0
	var stop func()
	stop = rt.Watch(func() any { return state.Get("n") }, func(_, _ any) {
		calls++
		stop()
	}, WatchOptions{})

	state.Set("n", 1)
	rt.Tick()
	state.Set("n", 2)
	rt.Tick()
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, state.KeyDep("n").Subscribers())

	stop()
}

func TestSyncWatcherRunsImmediately(t *testing.T) {
	rt, _ := newTestRuntime(t)
	ref := NewRef(rt, "a")

	var got []any
	rt.Watch(func() any { return ref.Get() }, func(n, _ any) {
		got = append(got, n)
	}, WatchOptions{Sync: true})

	ref.Set("b")
	ref.Set("c")
	assert.Equal(t, []any{"b", "c"}, got)
	assert.False(t, rt.Pending())
}

func TestImmediateWatch(t *testing.T) {
	rt, _ := newTestRuntime(t)
	ref := NewRef(rt, 7)

	var got []change
	rt.Watch(func() any { return ref.Get() }, func(n, o any) {
		got = append(got, change{n, o})
	}, WatchOptions{Immediate: true})

	require.Len(t, got, 1)
	assert.Equal(t, change{7, nil}, got[0])
}

func TestUntracked(t *testing.T) {
	rt, _ := newTestRuntime(t)
	a := NewRef(rt, 1)
	b := NewRef(rt, 1)

	w := rt.NewWatcher(func() any {
		var peeked int
		rt.Untracked(func() { peeked = b.Get() })
		return a.Get() + peeked
	}, nil, WatcherOptions{Mode: ModeUser})

	assert.Len(t, w.Deps(), 1)
	assert.Equal(t, 0, b.Dep().Subscribers())
}

func TestNestedWatcherRestoresTarget(t *testing.T) {
	rt, _ := newTestRuntime(t)
	outer := NewRef(rt, 1)
	inner := NewRef(rt, 1)

	var child *Watcher
	parent := rt.NewWatcher(func() any {
		if child == nil {
			child = rt.NewWatcher(func() any { return inner.Get() }, nil, WatcherOptions{Mode: ModeRender})
		}
		return outer.Get()
	}, nil, WatcherOptions{Mode: ModeRender})

	assert.Len(t, parent.Deps(), 1, "the child's reads do not leak into the parent")
	assert.Equal(t, outer.Dep(), parent.Deps()[0])
	assert.Len(t, child.Deps(), 1)
	assert.Less(t, parent.ID(), child.ID())
}

func TestRefCustomEquals(t *testing.T) {
	rt, _ := newTestRuntime(t)
	ref := NewRef(rt, []int{1}).WithEquals(func(a, b []int) bool { return len(a) == len(b) })

	runs := 0
	rt.Watch(func() any { return ref.Get() }, func(_, _ any) { runs++ }, WatchOptions{})
	ref.Set([]int{2})
	assert.False(t, rt.Pending())
	ref.Set([]int{1, 2})
	rt.Tick()
	assert.Equal(t, 1, runs)
}
