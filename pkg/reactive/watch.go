package reactive

import (
	"fmt"
	"regexp"
	"strings"

	rerrors "github.com/vango-dev/reactor/internal/errors"
)

// WatchOptions configures Watch and WatchPath.
type WatchOptions struct {
	Deep      bool
	Immediate bool
	Sync      bool
	// Component names the owner for error reports.
	Component string
	// Expression describes the watch for error reports.
	Expression string
	// OnTeardown is called once when the watch is stopped.
	OnTeardown func(w *Watcher)
}

// Watch runs cb(new, old) whenever the value returned by fn changes. It
// returns a function that stops the watch.
func (rt *Runtime) Watch(fn func() any, cb func(newValue, oldValue any), opts WatchOptions) (unwatch func()) {
	w := rt.UserWatcher(fn, cb, opts)
	return w.Teardown
}

// UserWatcher is Watch returning the watcher itself.
func (rt *Runtime) UserWatcher(fn func() any, cb func(newValue, oldValue any), opts WatchOptions) *Watcher {
	if opts.Expression == "" {
		opts.Expression = "<function>"
	}
	w := rt.NewWatcher(fn, cb, WatcherOptions{
		Mode:       ModeUser,
		Deep:       opts.Deep,
		Sync:       opts.Sync,
		Component:  opts.Component,
		Expression: opts.Expression,
		OnTeardown: opts.OnTeardown,
	})
	if opts.Immediate && cb != nil {
		rt.Try(KindUserCallback, opts.Component, fmt.Sprintf("callback for immediate watcher %q", opts.Expression), func() {
			cb(w.value, nil)
		})
	}
	return w
}

// WatchPath watches a dot-delimited path below root, e.g. "user.name".
func (rt *Runtime) WatchPath(root *Object, path string, cb func(newValue, oldValue any), opts WatchOptions) (unwatch func()) {
	getter, ok := ParsePath(path)
	if !ok {
		rt.Warn(rerrors.CodeBadWatchPath, opts.Component, "failed watching path %q", path)
		getter = func(any) any { return nil }
	}
	if opts.Expression == "" {
		opts.Expression = path
	}
	return rt.Watch(func() any { return getter(root) }, cb, opts)
}

var badPath = regexp.MustCompile(`[^\w.$]`)

// ParsePath compiles a dot-delimited path into a getter that walks
// tracked Objects. Walking stops with nil at the first non-Object.
func ParsePath(path string) (func(root any) any, bool) {
	if path == "" || badPath.MatchString(path) {
		return nil, false
	}
	segments := strings.Split(path, ".")
	return func(root any) any {
		cur := root
		for _, seg := range segments {
			obj, ok := cur.(*Object)
			if !ok || obj == nil {
				return nil
			}
			cur = obj.Get(seg)
		}
		return cur
	}, true
}
