package reactive

import (
	"context"
	"errors"
	"log/slog"
	"time"

	rerrors "github.com/vango-dev/reactor/internal/errors"
)

// DefaultMaxUpdateCount bounds how many times one watcher may run
// within a single flush.
const DefaultMaxUpdateCount = 100

// ErrStopped is returned by Dispatch once Run has returned.
var ErrStopped = errors.New("reactive: runtime stopped")

// Runtime is the evaluation context every tracked value, watcher and
// scheduler belongs to. A Runtime is confined to one goroutine: either
// the caller drives it directly (mutate, then Tick), or Run owns it and
// other goroutines hand it work through Dispatch.
type Runtime struct {
	target      *Watcher
	targetStack []*Watcher

	depUID     uint64
	watcherUID uint64

	scheduler  *Scheduler
	microtasks []func()
	dispatch   chan func()
	done       chan struct{}

	logger  *slog.Logger
	onError ErrorHandler
	instr   Instrumentation
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the logger used for runtime diagnostics. Unless an
// ErrorHandler is also supplied, reported errors are logged to it.
func WithLogger(logger *slog.Logger) Option {
	return func(rt *Runtime) {
		rt.logger = logger
	}
}

// WithErrorHandler replaces the default logging error handler.
func WithErrorHandler(h ErrorHandler) Option {
	return func(rt *Runtime) {
		rt.onError = h
	}
}

// WithInstrumentation attaches flush, watcher and error observers.
func WithInstrumentation(instr Instrumentation) Option {
	return func(rt *Runtime) {
		rt.instr = instr
	}
}

// WithMaxUpdateCount overrides DefaultMaxUpdateCount.
func WithMaxUpdateCount(n int) Option {
	return func(rt *Runtime) {
		if n > 0 {
			rt.scheduler.maxUpdateCount = n
		}
	}
}

// WithDispatchBuffer sets the capacity of the Dispatch channel.
func WithDispatchBuffer(n int) Option {
	return func(rt *Runtime) {
		if n >= 0 {
			rt.dispatch = make(chan func(), n)
		}
	}
}

// NewRuntime creates an idle runtime.
func NewRuntime(opts ...Option) *Runtime {
	rt := &Runtime{
		dispatch: make(chan func(), 256),
		done:     make(chan struct{}),
	}
	rt.scheduler = newScheduler(rt)
	for _, opt := range opts {
		opt(rt)
	}
	if rt.logger == nil {
		rt.logger = slog.Default()
	}
	if rt.onError == nil {
		rt.onError = LogHandler(rt.logger)
	}
	return rt
}

// Logger returns the runtime's logger.
func (rt *Runtime) Logger() *slog.Logger {
	return rt.logger
}

// Scheduler returns the runtime's update queue.
func (rt *Runtime) Scheduler() *Scheduler {
	return rt.scheduler
}

// Target returns the watcher currently evaluating, or nil.
func (rt *Runtime) Target() *Watcher {
	return rt.target
}

func (rt *Runtime) pushTarget(w *Watcher) {
	rt.targetStack = append(rt.targetStack, rt.target)
	rt.target = w
}

func (rt *Runtime) popTarget() {
	n := len(rt.targetStack) - 1
	rt.target = rt.targetStack[n]
	rt.targetStack[n] = nil
	rt.targetStack = rt.targetStack[:n]
}

// Untracked runs fn with dependency collection suspended.
func (rt *Runtime) Untracked(fn func()) {
	rt.pushTarget(nil)
	defer rt.popTarget()
	fn()
}

// NextTick queues fn to run on the next Tick.
func (rt *Runtime) NextTick(fn func()) {
	rt.microtasks = append(rt.microtasks, fn)
}

// Pending reports whether microtasks are waiting.
func (rt *Runtime) Pending() bool {
	return len(rt.microtasks) > 0
}

// Tick drains the microtask queue, including tasks queued while
// draining, and returns how many ran. A panicking task is reported and
// the drain continues.
func (rt *Runtime) Tick() int {
	ran := 0
	for len(rt.microtasks) > 0 {
		fn := rt.microtasks[0]
		rt.microtasks[0] = nil
		rt.microtasks = rt.microtasks[1:]
		rt.Try(KindUserCallback, "", "nextTick", fn)
		ran++
	}
	rt.microtasks = nil
	return ran
}

// Run owns the runtime until ctx is done: it executes dispatched tasks
// one at a time and drains the microtask queue after each.
func (rt *Runtime) Run(ctx context.Context) error {
	defer close(rt.done)
	rt.Tick()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-rt.dispatch:
			rt.Try(KindUserCallback, "", "dispatched task", fn)
			rt.Tick()
		}
	}
}

// Dispatch hands fn to the goroutine running Run. It is the only
// Runtime method safe to call from other goroutines.
func (rt *Runtime) Dispatch(ctx context.Context, fn func()) error {
	select {
	case <-rt.done:
		rt.logger.Debug("dispatch after stop", slog.String("code", rerrors.CodeDispatchClosed))
		return ErrStopped
	default:
	}
	select {
	case rt.dispatch <- fn:
		return nil
	case <-rt.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Instrumentation observes scheduler and watcher activity.
type Instrumentation interface {
	// Flushed is called once per completed flush.
	Flushed(stats FlushStats)
	// WatcherRan is called after each scheduled watcher run.
	WatcherRan(mode Mode, d time.Duration)
	// Reported is called for every reported error and warning.
	Reported(err *Error)
}

// FlushStats describes one scheduler flush.
type FlushStats struct {
	Start    time.Time
	Duration time.Duration
	// Queued is the number of distinct watchers that ran.
	Queued int
	// Runs counts every watcher run, re-entries included.
	Runs int
	// Loops counts watchers suppressed by the update bound.
	Loops int
	// Updated counts render watchers whose updated hook fired.
	Updated int
}
