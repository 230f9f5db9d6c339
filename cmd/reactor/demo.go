package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vango-dev/reactor/internal/config"
	"github.com/vango-dev/reactor/internal/todo"
	"github.com/vango-dev/reactor/pkg/component"
	"github.com/vango-dev/reactor/pkg/reactive"
	"github.com/vango-dev/reactor/pkg/telemetry"
	"github.com/vango-dev/reactor/pkg/vdom"
	"github.com/vango-dev/reactor/pkg/wire"
)

func demoCmd() *cobra.Command {
	var (
		items int
		serve bool
		addr  string
		auto  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the todo demo against an in-memory host",
		Long: `Mount the todo application on an in-memory host tree, apply a
scripted series of edits and print the host operations each flush
produced.

With --serve the application stays mounted and is driven over HTTP:

  GET    /tree               rendered HTML
  GET    /todos              todo list as JSON
  POST   /todos?title=...    add a todo
  POST   /todos/{id}/toggle  toggle a todo
  DELETE /todos/{id}         remove a todo
  PUT    /filter/{filter}    all, active or done
  GET    /ops                last flush as an encoded wire frame
  GET    /metrics            Prometheus metrics

Examples:
  reactor demo
  reactor demo --items=20
  reactor demo --serve --addr=:9090 --auto=2s`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if items > 0 {
				cfg.Demo.Items = items
			}
			if addr != "" {
				cfg.Metrics.Addr = addr
			}
			if serve {
				cfg.Metrics.Enabled = true
			}

			d, err := newDemo(cfg)
			if err != nil {
				return err
			}
			defer d.logger.Sync() //nolint:errcheck

			if serve {
				ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
				defer stop()
				return d.serve(ctx, cfg.Metrics.Addr, auto)
			}
			d.script()
			return nil
		},
	}

	cmd.Flags().IntVarP(&items, "items", "n", 0, "Initial number of todos (default from config)")
	cmd.Flags().BoolVar(&serve, "serve", false, "Serve the demo over HTTP instead of running the script")
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address for --serve (default from config)")
	cmd.Flags().DurationVar(&auto, "auto", 0, "With --serve, toggle a todo at this interval")

	return cmd
}

type demo struct {
	rt       *reactive.Runtime
	mem      *vdom.MemoryHost
	root     *vdom.MemNode
	store    *todo.Store
	registry *prometheus.Registry
	logger   *zap.Logger

	enc  *wire.Encoder
	seq  uint64
	last []byte
}

func newDemo(cfg *config.Config) (*demo, error) {
	d := &demo{mem: vdom.NewMemoryHost(), enc: wire.NewEncoder()}
	d.root = d.mem.NewRoot()

	var (
		inst reactive.Instrumentation
		host vdom.Host = d.mem
	)
	if cfg.Metrics.Enabled {
		d.registry = prometheus.NewRegistry()
		m := telemetry.NewMetrics(
			telemetry.WithRegistry(d.registry),
			telemetry.WithNamespace(cfg.Metrics.Namespace),
		)
		inst = m
		host = m.Host(d.mem)
	}
	if cfg.Tracing.Enabled {
		inst = telemetry.Combine(inst, telemetry.NewTracer(telemetry.WithTracerName(cfg.Tracing.TracerName)))
	}

	rt, logger, err := newRuntime(cfg, inst)
	if err != nil {
		return nil, err
	}
	d.rt, d.logger = rt, logger
	d.store = todo.Mount(component.NewApp(rt, host), d.root, todo.Seed(cfg.Demo.Items))
	d.frame()
	return d, nil
}

// frame encodes the operations recorded since the last Reset as the
// next wire frame and resets the host log.
func (d *demo) frame() []byte {
	d.seq++
	d.enc.Reset()
	wire.EncodeFrameTo(d.enc, &wire.Frame{
		Seq:     d.seq,
		Digest:  vdom.Digest(d.root),
		Patches: d.mem.Ops(),
	})
	d.last = append(d.last[:0], d.enc.Bytes()...)
	d.mem.Reset()
	return d.last
}

type step struct {
	name string
	fn   func()
}

func (d *demo) script() {
	s := d.store
	steps := []step{
		{"toggle #2", func() { s.Toggle(2) }},
		{"click #1", func() { s.Click(1) }},
		{"add", func() { s.Add("Read the flush table") }},
		{"filter active", func() { s.SetFilter(todo.Active) }},
		{"filter all", func() { s.SetFilter(todo.All) }},
		{"reverse", func() { s.Reverse() }},
		{"clear done", func() { s.ClearDone() }},
		{"remove #3", func() { s.Remove(3) }},
		{"no-op write", func() { s.SetFilter(todo.All) }},
	}

	printBanner()
	info("initial tree: %s, digest %016x", humanize.Bytes(uint64(len(d.last))), vdom.Digest(d.root))
	fmt.Println()

	tbl := table.NewWriter()
	tbl.SetTitle("Host operations per flush")
	tbl.SetOutputMirror(os.Stdout)
	header := table.Row{"step"}
	for _, op := range vdom.AllOps {
		header = append(header, op.String())
	}
	header = append(header, "bytes", "remaining", "digest")
	tbl.AppendHeader(header)

	total, bytes := 0, 0
	for _, st := range steps {
		st.fn()
		d.rt.Tick()

		row := table.Row{st.name}
		counts := d.mem.Counts()
		for _, op := range vdom.AllOps {
			row = append(row, counts[op])
			total += counts[op]
		}
		n := len(d.frame())
		bytes += n
		row = append(row, humanize.Bytes(uint64(n)), d.store.Remaining(), fmt.Sprintf("%016x", vdom.Digest(d.root)))
		tbl.AppendRow(row)
	}
	footer := table.Row{"total", humanize.Comma(int64(total))}
	for range vdom.AllOps[1:] {
		footer = append(footer, "")
	}
	footer = append(footer, humanize.Bytes(uint64(bytes)))
	tbl.AppendFooter(footer)
	tbl.Render()

	fmt.Println()
	fmt.Println(vdom.RenderChildren(d.root))
	fmt.Println()
	success("%s flushes applied", humanize.Comma(int64(len(steps))))
}

// onLoop runs fn on the runtime goroutine and waits for its result.
func onLoop[T any](ctx context.Context, rt *reactive.Runtime, fn func() T) (T, error) {
	ch := make(chan T, 1)
	var zero T
	if err := rt.Dispatch(ctx, func() { ch <- fn() }); err != nil {
		return zero, err
	}
	select {
	case v := <-ch:
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func (d *demo) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	if d.registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.registry, promhttp.HandlerOpts{}))
	}

	r.Get("/tree", func(w http.ResponseWriter, req *http.Request) {
		html, err := onLoop(req.Context(), d.rt, func() string { return vdom.RenderChildren(d.root) })
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintln(w, html)
	})

	r.Get("/ops", func(w http.ResponseWriter, req *http.Request) {
		frame, err := onLoop(req.Context(), d.rt, func() []byte {
			return append([]byte(nil), d.last...)
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write(frame) //nolint:errcheck
	})

	r.Get("/todos", d.mutate(func(*http.Request) bool { return true }))

	r.Post("/todos", d.mutate(func(req *http.Request) bool {
		title := req.FormValue("title")
		if title == "" {
			return false
		}
		d.store.Add(title)
		return true
	}))

	r.Post("/todos/{id}/toggle", d.mutate(func(req *http.Request) bool {
		id, err := strconv.Atoi(chi.URLParam(req, "id"))
		return err == nil && d.store.Toggle(id)
	}))

	r.Delete("/todos/{id}", d.mutate(func(req *http.Request) bool {
		id, err := strconv.Atoi(chi.URLParam(req, "id"))
		return err == nil && d.store.Remove(id)
	}))

	r.Put("/filter/{filter}", d.mutate(func(req *http.Request) bool {
		f, ok := todo.ParseFilter(chi.URLParam(req, "filter"))
		if ok {
			d.store.SetFilter(f)
		}
		return ok
	}))

	return r
}

// mutate runs fn on the runtime goroutine, flushes, and answers with
// the todo list, or 404 when fn reports nothing matched. The flush's
// operations become the frame served by /ops.
func (d *demo) mutate(fn func(*http.Request) bool) http.HandlerFunc {
	type result struct {
		ok    bool
		todos []todo.Todo
	}
	return func(w http.ResponseWriter, req *http.Request) {
		res, err := onLoop(req.Context(), d.rt, func() result {
			ok := fn(req)
			if d.rt.Tick() > 0 {
				d.frame()
			}
			return result{ok: ok, todos: d.store.List()}
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		if !res.ok {
			http.NotFound(w, req)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(res.todos) //nolint:errcheck
	}
}

func (d *demo) serve(ctx context.Context, addr string, auto time.Duration) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	srv := &http.Server{
		Addr:              addr,
		Handler:           d.router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	loopErr := make(chan error, 1)
	go func() { loopErr <- d.rt.Run(ctx) }()

	if auto > 0 {
		go d.autoToggle(ctx, auto)
	}

	srvErr := make(chan error, 1)
	go func() { srvErr <- srv.ListenAndServe() }()

	printBanner()
	success("Serving the todo demo on http://%s", addr)
	info("GET /tree, /todos, /ops, /metrics")

	var serveErr error
	select {
	case err := <-srvErr:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = err
		}
	case <-ctx.Done():
	}
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		d.logger.Warn("shutdown", zap.Error(err))
	}
	<-loopErr
	info("stopped")
	return serveErr
}

func (d *demo) autoToggle(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	next := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := d.rt.Dispatch(ctx, func() {
				list := d.store.List()
				if len(list) == 0 {
					return
				}
				next = (next + 1) % len(list)
				d.store.Click(list[next].ID)
				d.rt.Tick()
				d.frame()
			})
			if err != nil {
				return
			}
		}
	}
}
