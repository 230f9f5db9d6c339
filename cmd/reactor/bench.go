package main

import (
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/vango-dev/reactor/internal/todo"
	"github.com/vango-dev/reactor/pkg/component"
	"github.com/vango-dev/reactor/pkg/reactive"
	"github.com/vango-dev/reactor/pkg/vdom"
)

func benchCmd() *cobra.Command {
	var (
		iters   int
		widths  []int
		heights []int
		sizes   []int
		seed    uint64
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure propagation, reconciliation and component updates",
		Long: `Run three latency benchmarks and print percentile tables:

  propagate  a write fanned out through width chains of height computeds
  reconcile  patching a keyed list after a random shuffle
  component  toggling one todo in a mounted todo app

Examples:
  reactor bench
  reactor bench --iters=1000 --width=1,100 --height=1,10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			rng := rand.New(rand.NewPCG(seed, seed))

			benchPropagate(widths, heights, iters, cfg.MaxUpdateCount)
			benchReconcile(sizes, iters, rng)
			benchComponent(sizes, iters)
			return nil
		},
	}

	cmd.Flags().IntVarP(&iters, "iters", "i", 100, "Iterations per benchmark")
	cmd.Flags().IntSliceVar(&widths, "width", []int{1, 10, 100}, "Propagate widths")
	cmd.Flags().IntSliceVar(&heights, "height", []int{1, 10, 100}, "Propagate heights")
	cmd.Flags().IntSliceVar(&sizes, "size", []int{10, 100, 1000}, "List sizes for reconcile and component")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "Shuffle seed")

	return cmd
}

func newTable(title string) table.Writer {
	tbl := table.NewWriter()
	tbl.SetTitle(title)
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "avg", "min", "p75", "p99", "max", "work"})
	return tbl
}

func appendCalc(tbl table.Writer, name string, tach *tachymeter.Tachymeter, work string) {
	calc := tach.Calc()
	tbl.AppendRow(table.Row{
		name,
		calc.Time.Avg,
		calc.Time.Min,
		calc.Time.P75,
		calc.Time.P99,
		calc.Time.Max,
		work,
	})
}

func quietRuntime(opts ...reactive.Option) *reactive.Runtime {
	return reactive.NewRuntime(append([]reactive.Option{
		reactive.WithErrorHandler(func(*reactive.Error) {}),
	}, opts...)...)
}

func benchPropagate(widths, heights []int, iters, maxUpdates int) {
	tbl := newTable("Propagate")

	for _, w := range widths {
		for _, h := range heights {
			tach := tachymeter.New(&tachymeter.Config{Size: iters})
			rt := quietRuntime(reactive.WithMaxUpdateCount(maxUpdates))
			src := reactive.NewRef(rt, 1)

			runs := 0
			for i := 0; i < w; i++ {
				last := func() int { return src.Get() }
				for j := 0; j < h; j++ {
					prev := last
					c := reactive.NewComputed(rt, "", func() int { return prev() + 1 })
					last = c.Get
				}
				rt.Watch(func() any { return last() }, func(_, _ any) { runs++ }, reactive.WatchOptions{})
			}

			for i := 0; i < iters; i++ {
				start := time.Now()
				src.Update(func(v int) int { return v + 1 })
				rt.Tick()
				tach.AddTime(time.Since(start))
			}

			appendCalc(tbl, fmt.Sprintf("propagate: %d * %d", w, h), tach,
				humanize.Comma(int64(runs))+" callbacks")
		}
	}
	tbl.Render()
}

func keyedList(keys []int) *vdom.VNode {
	children := make([]any, len(keys))
	for i, k := range keys {
		children[i] = vdom.H(nil, "li", &vdom.Data{Key: k}, k)
	}
	return vdom.H(nil, "ul", children)
}

func benchReconcile(sizes []int, iters int, rng *rand.Rand) {
	tbl := newTable("Reconcile")

	for _, n := range sizes {
		tach := tachymeter.New(&tachymeter.Config{Size: iters})
		host := vdom.NewMemoryHost()
		root := host.NewRoot()
		p := vdom.NewPatcher(host, nil)

		keys := make([]int, n)
		for i := range keys {
			keys[i] = i
		}
		old := keyedList(keys)
		p.Patch(nil, old, vdom.Mount{Parent: root})

		ops := 0
		for i := 0; i < iters; i++ {
			rng.Shuffle(len(keys), func(a, b int) { keys[a], keys[b] = keys[b], keys[a] })
			next := keyedList(keys)
			host.Reset()

			start := time.Now()
			p.Patch(old, next, vdom.Mount{})
			tach.AddTime(time.Since(start))

			ops += len(host.Ops())
			old = next
		}

		appendCalc(tbl, fmt.Sprintf("shuffle: %s items", humanize.Comma(int64(n))), tach,
			humanize.Comma(int64(ops))+" ops")
	}
	tbl.Render()
}

func benchComponent(sizes []int, iters int) {
	tbl := newTable("Component")

	for _, n := range sizes {
		if n == 0 {
			continue
		}
		tach := tachymeter.New(&tachymeter.Config{Size: iters})
		rt := quietRuntime()
		host := vdom.NewMemoryHost()
		store := todo.Mount(component.NewApp(rt, host), host.NewRoot(), todo.Seed(n))

		ops := 0
		for i := 0; i < iters; i++ {
			host.Reset()
			start := time.Now()
			store.Toggle(i%n + 1)
			rt.Tick()
			tach.AddTime(time.Since(start))
			ops += len(host.Ops())
		}

		appendCalc(tbl, fmt.Sprintf("toggle: %s todos", humanize.Comma(int64(n))), tach,
			humanize.Comma(int64(ops))+" ops")
	}
	tbl.Render()
}
