package telemetry

import (
	"time"

	"github.com/vango-dev/reactor/pkg/reactive"
)

type multi []reactive.Instrumentation

// Combine fans instrumentation out to every non-nil argument, in order.
func Combine(insts ...reactive.Instrumentation) reactive.Instrumentation {
	var m multi
	for _, in := range insts {
		if in != nil {
			m = append(m, in)
		}
	}
	if len(m) == 1 {
		return m[0]
	}
	return m
}

func (m multi) Flushed(stats reactive.FlushStats) {
	for _, in := range m {
		in.Flushed(stats)
	}
}

func (m multi) WatcherRan(mode reactive.Mode, d time.Duration) {
	for _, in := range m {
		in.WatcherRan(mode, d)
	}
}

func (m multi) Reported(err *reactive.Error) {
	for _, in := range m {
		in.Reported(err)
	}
}
