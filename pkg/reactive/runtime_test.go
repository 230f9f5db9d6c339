package reactive

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTickDrainsNestedMicrotasks(t *testing.T) {
	rt, errs := newTestRuntime(t)

	var order []int
	rt.NextTick(func() {
		order = append(order, 1)
		rt.NextTick(func() { order = append(order, 3) })
	})
	rt.NextTick(func() { panic("bad task") })
	rt.NextTick(func() { order = append(order, 2) })

	assert.Equal(t, 4, rt.Tick())
	assert.Equal(t, []int{1, 2, 3}, order)
	require.Len(t, *errs, 1)
	assert.Equal(t, "nextTick", (*errs)[0].Info)
	assert.Equal(t, 0, rt.Tick())
}

func TestWatchPath(t *testing.T) {
	rt, errs := newTestRuntime(t)
	state := rt.Reactive(map[string]any{"user": map[string]any{"name": "ada"}})

	var got []any
	rt.WatchPath(state, "user.name", func(n, _ any) { got = append(got, n) }, WatchOptions{})

	state.Get("user").(*Object).Set("name", "grace")
	rt.Tick()
	state.Set("user", map[string]any{"name": "alan"})
	rt.Tick()
	assert.Equal(t, []any{"grace", "alan"}, got)

	rt.WatchPath(state, "user[0]", func(_, _ any) {}, WatchOptions{})
	require.Len(t, *errs, 1)
	assert.Equal(t, "R012", (*errs)[0].Code)
}

func TestParsePath(t *testing.T) {
	_, ok := ParsePath("a.b.$c_1")
	assert.True(t, ok)
	_, ok = ParsePath("a-b")
	assert.False(t, ok)
	_, ok = ParsePath("")
	assert.False(t, ok)

	get, _ := ParsePath("a.b")
	assert.Nil(t, get(42))
}

func TestRunAndDispatch(t *testing.T) {
	rt, _ := newTestRuntime(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- rt.Run(ctx) }()

	got := make(chan any, 1)
	var count *Ref[int]
	require.NoError(t, rt.Dispatch(ctx, func() {
		count = NewRef(rt, 0)
		rt.Watch(func() any { return count.Get() }, func(n, _ any) {
			got <- n
		}, WatchOptions{})
	}))
	require.NoError(t, rt.Dispatch(ctx, func() { count.Set(5) }))

	select {
	case v := <-got:
		assert.Equal(t, 5, v)
	case <-time.After(5 * time.Second):
		t.Fatal("watch callback did not run")
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.ErrorIs(t, rt.Dispatch(context.Background(), func() {}), ErrStopped)
}

type recordingInstr struct {
	flushes []FlushStats
	runs    map[Mode]int
	errs    int
}

func (r *recordingInstr) Flushed(s FlushStats)             { r.flushes = append(r.flushes, s) }
func (r *recordingInstr) WatcherRan(m Mode, _ time.Duration) { r.runs[m]++ }
func (r *recordingInstr) Reported(*Error)                  { r.errs++ }

func TestInstrumentation(t *testing.T) {
	instr := &recordingInstr{runs: map[Mode]int{}}
	rt, _ := newTestRuntime(t, WithInstrumentation(instr))
	ref := NewRef(rt, 0)

	updated := 0
	rt.NewWatcher(func() any { return ref.Get() }, nil, WatcherOptions{
		Mode:      ModeRender,
		OnUpdated: func() { updated++ },
	})
	rt.Watch(func() any { return ref.Get() }, func(_, _ any) { panic("x") }, WatchOptions{})

	ref.Set(1)
	rt.Tick()

	require.Len(t, instr.flushes, 1)
	s := instr.flushes[0]
	assert.Equal(t, 2, s.Queued)
	assert.Equal(t, 2, s.Runs)
	assert.Equal(t, 1, s.Updated)
	assert.Equal(t, 1, updated)
	assert.Equal(t, 1, instr.runs[ModeRender])
	assert.Equal(t, 1, instr.runs[ModeUser])
	assert.Equal(t, 1, instr.errs)
}

type activation struct{ n *int }

func (a activation) Activate() { *a.n++ }

func TestQueueActivatedRunsAfterFlush(t *testing.T) {
	rt, _ := newTestRuntime(t)
	n := 0
	rt.Scheduler().QueueActivated(activation{&n})
	assert.Equal(t, 0, n)
	rt.Tick()
	assert.Equal(t, 1, n)
}
