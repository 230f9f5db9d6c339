package component

import (
	"log/slog"
	"strings"
	"unicode"

	"github.com/vango-dev/reactor/pkg/reactive"
	"github.com/vango-dev/reactor/pkg/vdom"
)

// App owns the global component registry and the patcher that renders
// every instance it creates into one host.
type App struct {
	rt         *reactive.Runtime
	host       vdom.Host
	patcher    *vdom.Patcher
	platform   vdom.Platform
	components map[string]*Options
	logger     *slog.Logger
	uid        int
}

// AppOption configures an App.
type AppOption func(*App)

// WithPlatform overrides vdom.DefaultPlatform.
func WithPlatform(p vdom.Platform) AppOption {
	return func(a *App) {
		a.platform = p
	}
}

// WithComponents registers global components.
func WithComponents(defs map[string]*Options) AppOption {
	return func(a *App) {
		for name, def := range defs {
			a.components[name] = def
		}
	}
}

// NewApp creates an App rendering into host.
func NewApp(rt *reactive.Runtime, host vdom.Host, opts ...AppOption) *App {
	a := &App{
		rt:         rt,
		host:       host,
		platform:   vdom.DefaultPlatform,
		components: make(map[string]*Options),
		logger:     rt.Logger(),
	}
	a.patcher = vdom.NewPatcher(host, &manager{app: a})
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Runtime returns the reactive runtime.
func (a *App) Runtime() *reactive.Runtime {
	return a.rt
}

// Host returns the render target.
func (a *App) Host() vdom.Host {
	return a.host
}

// Component registers def globally under name.
func (a *App) Component(name string, def *Options) {
	a.components[name] = def
}

// New creates and initializes a root instance without mounting it.
func (a *App) New(def *Options, props map[string]any) *Instance {
	return a.newInstance(def, nil, nil, props)
}

// Mount creates a root instance and mounts it as the last child of
// parent.
func (a *App) Mount(def *Options, parent vdom.Node, props map[string]any) *Instance {
	return a.New(def, props).Mount(parent, nil)
}

// Unmount destroys a root instance and removes its host tree.
func (a *App) Unmount(vm *Instance) {
	elm := vm.elm
	vm.Destroy()
	if elm != nil {
		a.host.Remove(elm)
	}
}

// resolveAsset looks name up as given, camelized, then capitalized.
func resolveAsset(assets map[string]*Options, name string) (*Options, bool) {
	if assets == nil {
		return nil, false
	}
	if def, ok := assets[name]; ok {
		return def, true
	}
	camel := camelize(name)
	if def, ok := assets[camel]; ok {
		return def, true
	}
	def, ok := assets[capitalize(camel)]
	return def, ok
}

func camelize(s string) string {
	if !strings.Contains(s, "-") {
		return s
	}
	parts := strings.Split(s, "-")
	for i := 1; i < len(parts); i++ {
		parts[i] = capitalize(parts[i])
	}
	return strings.Join(parts, "")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func hyphenate(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
