// Package todo is the demo application behind `reactor demo`: a todo
// list with a filter and a remaining count.
package todo

import (
	"fmt"
	"log/slog"

	"github.com/vango-dev/reactor/pkg/component"
	"github.com/vango-dev/reactor/pkg/reactive"
	"github.com/vango-dev/reactor/pkg/vdom"
)

// Filter selects which todos are visible.
type Filter string

const (
	All    Filter = "all"
	Active Filter = "active"
	Done   Filter = "done"
)

// ParseFilter returns the filter named s.
func ParseFilter(s string) (Filter, bool) {
	switch f := Filter(s); f {
	case All, Active, Done:
		return f, true
	}
	return "", false
}

var titles = []string{
	"Write the scheduler", "Patch the list", "Review props",
	"Profile a flush", "Ship it",
}

// Seed returns n placeholder titles.
func Seed(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = titles[i%len(titles)]
		if i >= len(titles) {
			out[i] = fmt.Sprintf("%s (%d)", out[i], i/len(titles)+1)
		}
	}
	return out
}

var item = &component.Options{
	Name:  "TodoItem",
	Props: component.PropNames("todo"),
	Render: func(vm *component.Instance) *vdom.VNode {
		todo := vm.Object("todo")
		if todo == nil {
			return nil
		}
		attrs := vdom.Props{"data-id": todo.Get("id")}
		if done, _ := todo.Get("done").(bool); done {
			attrs["class"] = "done"
		}
		return vm.H("li", &vdom.Data{Attrs: attrs}, todo.Get("title"))
	},
}

// Options returns the root component, seeded with one undone todo per
// title.
func Options(seed []string) *component.Options {
	return &component.Options{
		Name:       "TodoApp",
		Components: map[string]*component.Options{"todo-item": item},
		Data: func(*component.Instance) map[string]any {
			todos := make([]any, len(seed))
			for i, title := range seed {
				todos[i] = map[string]any{"id": i + 1, "title": title, "done": false}
			}
			return map[string]any{
				"todos":  todos,
				"filter": string(All),
				"nextID": len(seed) + 1,
			}
		},
		Computed: map[string]component.ComputedDef{
			"visible":   {Get: visible},
			"remaining": {Get: remaining},
		},
		Watch: map[string][]component.WatchDef{
			"remaining": {{Handler: func(vm *component.Instance, n, o any) {
				vm.Runtime().Logger().Debug("remaining changed", slog.Any("from", o), slog.Any("to", n))
			}}},
		},
		Render: render,
	}
}

func todos(vm *component.Instance) []*reactive.Object {
	arr := vm.Array("todos")
	if arr == nil {
		return nil
	}
	out := make([]*reactive.Object, 0, arr.Len())
	for _, v := range arr.Items() {
		if t, ok := v.(*reactive.Object); ok {
			out = append(out, t)
		}
	}
	return out
}

func isDone(t *reactive.Object) bool {
	done, _ := t.Get("done").(bool)
	return done
}

func visible(vm *component.Instance) any {
	filter := Filter(vm.String("filter"))
	var out []*reactive.Object
	for _, t := range todos(vm) {
		if filter == All || (filter == Done) == isDone(t) {
			out = append(out, t)
		}
	}
	return out
}

func remaining(vm *component.Instance) any {
	n := 0
	for _, t := range todos(vm) {
		if !isDone(t) {
			n++
		}
	}
	return n
}

func render(vm *component.Instance) *vdom.VNode {
	shown, _ := vm.Get("visible").([]*reactive.Object)
	rows := make([]any, 0, len(shown))
	for _, t := range shown {
		id, _ := t.Get("id").(int)
		rows = append(rows, vm.H("todo-item", &vdom.Data{
			Key:   id,
			Props: map[string]any{"todo": t},
			On: map[string]func(args ...any){
				"toggle": func(...any) { toggle(vm, id) },
			},
		}))
	}

	n := vm.Int("remaining")
	unit := "items"
	if n == 1 {
		unit = "item"
	}
	return vm.H("section", &vdom.Data{Attrs: vdom.Props{"class": "todoapp"}},
		vm.H("h1", "todos"),
		vm.H("ul", &vdom.Data{Attrs: vdom.Props{"class": "todo-list"}}, rows),
		vm.H("footer",
			vm.H("span", fmt.Sprintf("%d %s left", n, unit)),
			vm.H("em", vm.String("filter")),
		),
	)
}

func find(vm *component.Instance, id int) (int, *reactive.Object) {
	for i, t := range todos(vm) {
		if got, _ := t.Peek("id").(int); got == id {
			return i, t
		}
	}
	return -1, nil
}

func toggle(vm *component.Instance, id int) bool {
	_, t := find(vm, id)
	if t == nil {
		return false
	}
	t.Set("done", !isDone(t))
	return true
}

// Store mutates a mounted todo app.
type Store struct {
	vm *component.Instance
}

// Mount creates the app and attaches it under parent.
func Mount(app *component.App, parent vdom.Node, seed []string) *Store {
	return &Store{vm: app.Mount(Options(seed), parent, nil)}
}

// Instance returns the root instance.
func (s *Store) Instance() *component.Instance {
	return s.vm
}

// Add appends a todo and returns its id.
func (s *Store) Add(title string) int {
	id := s.vm.Int("nextID")
	s.vm.Set("nextID", id+1)
	s.vm.Array("todos").Push(map[string]any{"id": id, "title": title, "done": false})
	return id
}

// Toggle flips the done flag of todo id.
func (s *Store) Toggle(id int) bool {
	return toggle(s.vm, id)
}

// Click toggles todo id through its rendered item, as a user event
// would.
func (s *Store) Click(id int) bool {
	for _, c := range s.vm.Children() {
		if t := c.Object("todo"); t != nil {
			if got, _ := t.Peek("id").(int); got == id {
				c.Emit("toggle")
				return true
			}
		}
	}
	return false
}

// Remove deletes todo id.
func (s *Store) Remove(id int) bool {
	i, _ := find(s.vm, id)
	if i < 0 {
		return false
	}
	s.vm.Array("todos").Splice(i, 1)
	return true
}

// ClearDone deletes every finished todo and returns how many went.
func (s *Store) ClearDone() int {
	arr := s.vm.Array("todos")
	n := 0
	for i := arr.Len() - 1; i >= 0; i-- {
		if t, ok := arr.At(i).(*reactive.Object); ok && isDone(t) {
			arr.Splice(i, 1)
			n++
		}
	}
	return n
}

// Reverse reverses the list order.
func (s *Store) Reverse() {
	s.vm.Array("todos").Reverse()
}

// SetFilter changes the visible subset.
func (s *Store) SetFilter(f Filter) {
	s.vm.Set("filter", string(f))
}

// Remaining returns the number of unfinished todos.
func (s *Store) Remaining() int {
	return s.vm.Int("remaining")
}

// Todo is a plain snapshot of one entry.
type Todo struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Done  bool   `json:"done"`
}

// List returns a snapshot of every todo in order.
func (s *Store) List() []Todo {
	var out []Todo
	for _, t := range todos(s.vm) {
		id, _ := t.Peek("id").(int)
		title, _ := t.Peek("title").(string)
		done, _ := t.Peek("done").(bool)
		out = append(out, Todo{ID: id, Title: title, Done: done})
	}
	return out
}
