package reactive

import (
	"fmt"
	"log/slog"
	"sort"
	"time"
)

// Activatable is queued by QueueActivated and activated after the flush
// that queued it.
type Activatable interface {
	Activate()
}

// Scheduler batches watcher runs into one flush per tick. Each watcher
// is queued at most once until it runs, and a flush runs watchers in
// ascending id order.
type Scheduler struct {
	rt *Runtime

	queue     []*Watcher
	activated []Activatable
	has       map[uint64]bool
	circular  map[uint64]int
	// suppressed holds watchers that hit the update bound in the
	// current flush.
	suppressed map[uint64]bool

	waiting  bool
	flushing bool
	index    int

	maxUpdateCount int
}

func newScheduler(rt *Runtime) *Scheduler {
	return &Scheduler{
		rt:             rt,
		has:            make(map[uint64]bool),
		circular:       make(map[uint64]int),
		suppressed:     make(map[uint64]bool),
		maxUpdateCount: DefaultMaxUpdateCount,
	}
}

// MaxUpdateCount returns the per-flush run bound.
func (s *Scheduler) MaxUpdateCount() int {
	return s.maxUpdateCount
}

// Flushing reports whether a flush is in progress.
func (s *Scheduler) Flushing() bool {
	return s.flushing
}

// Waiting reports whether a flush is scheduled or running.
func (s *Scheduler) Waiting() bool {
	return s.waiting
}

// Len returns the number of watchers in the queue.
func (s *Scheduler) Len() int {
	return len(s.queue)
}

// Enqueue adds w unless it is already waiting to run. During a flush
// the watcher is spliced in after the last queued watcher with a
// smaller or equal id, but never before the one running.
func (s *Scheduler) Enqueue(w *Watcher) {
	id := w.id
	if s.has[id] || s.suppressed[id] {
		return
	}
	s.has[id] = true
	if !s.flushing {
		s.queue = append(s.queue, w)
	} else {
		i := len(s.queue) - 1
		for i > s.index && s.queue[i].id > id {
			i--
		}
		s.queue = append(s.queue, nil)
		copy(s.queue[i+2:], s.queue[i+1:])
		s.queue[i+1] = w
	}
	if !s.waiting {
		s.waiting = true
		s.rt.NextTick(s.flush)
	}
}

// QueueActivated schedules a for activation after the current flush.
func (s *Scheduler) QueueActivated(a Activatable) {
	s.activated = append(s.activated, a)
	if !s.waiting {
		s.waiting = true
		s.rt.NextTick(s.flush)
	}
}

func (s *Scheduler) flush() {
	rt := s.rt
	stats := FlushStats{Start: time.Now()}
	s.flushing = true

	sort.SliceStable(s.queue, func(i, j int) bool {
		return s.queue[i].id < s.queue[j].id
	})

	ran := make(map[uint64]bool)
	for s.index = 0; s.index < len(s.queue); s.index++ {
		w := s.queue[s.index]
		id := w.id
		s.has[id] = false
		if s.suppressed[id] {
			continue
		}

		start := time.Now()
		rt.Try(KindEvaluation, w.component, w.info(), w.Run)
		if rt.instr != nil {
			rt.instr.WatcherRan(w.mode, time.Since(start))
		}
		stats.Runs++
		ran[id] = true

		if s.has[id] {
			s.circular[id]++
			if s.circular[id] >= s.maxUpdateCount {
				s.suppressed[id] = true
				stats.Loops++
				s.reportLoop(w)
			}
		}
	}
	stats.Queued = len(ran)

	activated := s.activated
	updated := s.queue
	s.reset()

	for _, a := range activated {
		rt.Try(KindUserCallback, "", "activated hook", a.Activate)
	}
	stats.Updated = callUpdated(updated)

	stats.Duration = time.Since(stats.Start)
	if rt.instr != nil {
		rt.instr.Flushed(stats)
	}
	rt.logger.Debug("flush",
		slog.Int("watchers", stats.Queued),
		slog.Int("runs", stats.Runs),
		slog.Duration("duration", stats.Duration),
	)
}

func (s *Scheduler) reportLoop(w *Watcher) {
	what := "in a component render function"
	if w.mode != ModeRender {
		what = fmt.Sprintf("in watcher with expression %q", w.expression)
	}
	s.rt.Report(&Error{
		Kind:      KindSchedulerLoop,
		Component: w.component,
		Info:      what,
		Err:       fmt.Errorf("watcher %d ran %d times in one flush", w.id, s.maxUpdateCount),
	})
}

// callUpdated fires OnUpdated in reverse queue order, once per watcher,
// so children are updated before parents.
func callUpdated(queue []*Watcher) int {
	seen := make(map[uint64]bool, len(queue))
	n := 0
	for i := len(queue) - 1; i >= 0; i-- {
		w := queue[i]
		if seen[w.id] {
			continue
		}
		seen[w.id] = true
		if w.onUpdated != nil && w.active {
			w.onUpdated()
			n++
		}
	}
	return n
}

func (s *Scheduler) reset() {
	s.index = 0
	s.queue = nil
	s.activated = nil
	s.has = make(map[uint64]bool)
	s.circular = make(map[uint64]int)
	s.suppressed = make(map[uint64]bool)
	s.waiting = false
	s.flushing = false
}
