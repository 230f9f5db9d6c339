package todo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/reactor/pkg/component"
	"github.com/vango-dev/reactor/pkg/reactive"
	"github.com/vango-dev/reactor/pkg/vdom"
)

type fixture struct {
	rt    *reactive.Runtime
	host  *vdom.MemoryHost
	root  *vdom.MemNode
	store *Store
	errs  []*reactive.Error
}

func newFixture(t *testing.T, n int) *fixture {
	t.Helper()
	f := &fixture{}
	f.rt = reactive.NewRuntime(reactive.WithErrorHandler(func(e *reactive.Error) {
		f.errs = append(f.errs, e)
	}))
	f.host = vdom.NewMemoryHost()
	f.root = f.host.NewRoot()
	f.store = Mount(component.NewApp(f.rt, f.host), f.root, Seed(n))
	t.Cleanup(func() { assert.Empty(t, f.errs) })
	return f
}

func (f *fixture) flush() {
	f.host.Reset()
	f.rt.Tick()
}

func (f *fixture) items() []string {
	var out []string
	ul := f.root.Children[0].Children[1]
	for _, li := range ul.Children {
		out = append(out, vdom.Render(li))
	}
	return out
}

func (f *fixture) footer() string {
	return vdom.Render(f.root.Children[0].Children[2])
}

func TestSeed(t *testing.T) {
	seed := Seed(7)
	require.Len(t, seed, 7)
	assert.Equal(t, "Write the scheduler", seed[0])
	assert.Equal(t, "Write the scheduler (2)", seed[5])
	assert.Empty(t, Seed(0))
}

func TestParseFilter(t *testing.T) {
	for _, s := range []string{"all", "active", "done"} {
		f, ok := ParseFilter(s)
		assert.True(t, ok)
		assert.Equal(t, Filter(s), f)
	}
	_, ok := ParseFilter("some")
	assert.False(t, ok)
}

func TestInitialRender(t *testing.T) {
	f := newFixture(t, 3)
	assert.Equal(t,
		`<section class="todoapp"><h1>todos</h1><ul class="todo-list">`+
			`<li data-id="1">Write the scheduler</li>`+
			`<li data-id="2">Patch the list</li>`+
			`<li data-id="3">Review props</li>`+
			`</ul><footer><span>3 items left</span><em>all</em></footer></section>`,
		vdom.RenderChildren(f.root))
	assert.Len(t, f.store.Instance().Children(), 3)
}

func TestToggleTouchesOnlyChangedNodes(t *testing.T) {
	f := newFixture(t, 3)

	require.True(t, f.store.Toggle(2))
	f.flush()

	assert.Equal(t, `<li class="done" data-id="2">Patch the list</li>`, f.items()[1])
	assert.Equal(t, "<footer><span>2 items left</span><em>all</em></footer>", f.footer())
	assert.Equal(t, map[vdom.PatchOp]int{vdom.PatchSetAttr: 1, vdom.PatchSetText: 1}, f.host.Counts())

	assert.False(t, f.store.Toggle(99))
}

func TestClickEmitsToggle(t *testing.T) {
	f := newFixture(t, 2)

	require.True(t, f.store.Click(1))
	f.flush()
	assert.Equal(t, 1, f.store.Remaining())
	assert.Equal(t, "<footer><span>1 item left</span><em>all</em></footer>", f.footer())

	require.True(t, f.store.Click(1))
	f.flush()
	assert.Equal(t, 2, f.store.Remaining())
	assert.False(t, f.store.Click(42))
}

func TestFilter(t *testing.T) {
	f := newFixture(t, 4)
	f.store.Toggle(1)
	f.store.Toggle(3)
	f.store.SetFilter(Done)
	f.flush()

	assert.Equal(t, []string{
		`<li class="done" data-id="1">Write the scheduler</li>`,
		`<li class="done" data-id="3">Review props</li>`,
	}, f.items())
	assert.Len(t, f.store.Instance().Children(), 2)
	assert.Contains(t, f.footer(), "<em>done</em>")

	f.store.SetFilter(Active)
	f.flush()
	assert.Equal(t, []string{
		`<li data-id="2">Patch the list</li>`,
		`<li data-id="4">Profile a flush</li>`,
	}, f.items())

	f.store.SetFilter(All)
	f.flush()
	assert.Len(t, f.items(), 4)
}

func TestAddRemoveClear(t *testing.T) {
	f := newFixture(t, 2)

	id := f.store.Add("Write docs")
	assert.Equal(t, 3, id)
	f.flush()
	assert.Len(t, f.items(), 3)
	assert.Equal(t, 2, f.host.Count(vdom.PatchCreateNode), "the new li and its text")
	assert.Equal(t, `<li data-id="3">Write docs</li>`, f.items()[2])

	require.True(t, f.store.Remove(1))
	assert.False(t, f.store.Remove(1))
	f.flush()
	assert.Equal(t, 1, f.host.Count(vdom.PatchRemoveNode))
	assert.Equal(t, []Todo{
		{ID: 2, Title: "Patch the list"},
		{ID: 3, Title: "Write docs"},
	}, f.store.List())

	f.store.Toggle(2)
	f.store.Toggle(3)
	assert.Equal(t, 2, f.store.ClearDone())
	f.flush()
	assert.Empty(t, f.items())
	assert.Equal(t, "<footer><span>0 items left</span><em>all</em></footer>", f.footer())
}

func TestReverseMovesWithoutCreating(t *testing.T) {
	f := newFixture(t, 5)
	before := f.store.Instance().Children()

	f.store.Reverse()
	f.flush()

	items := f.items()
	assert.True(t, strings.Contains(items[0], `data-id="5"`))
	assert.True(t, strings.Contains(items[4], `data-id="1"`))
	assert.Zero(t, f.host.Count(vdom.PatchCreateNode))
	assert.Positive(t, f.host.Count(vdom.PatchMoveNode))
	assert.ElementsMatch(t, before, f.store.Instance().Children())
}
