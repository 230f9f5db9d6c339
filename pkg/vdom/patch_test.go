package vdom

import (
	"math/rand"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keyedList(keys ...int) *VNode {
	items := make([]any, len(keys))
	for i, k := range keys {
		items[i] = H(nil, "li", Key(k), strconv.Itoa(k))
	}
	return H(nil, "ul", items...)
}

func mount(t *testing.T, v *VNode) (*MemoryHost, *Patcher, *MemNode) {
	t.Helper()
	host := NewMemoryHost()
	p := NewPatcher(host, nil)
	root := host.NewRoot()
	p.Patch(nil, v, Mount{Parent: root})
	return host, p, root
}

func TestPatchMountsTree(t *testing.T) {
	_, _, root := mount(t, H(nil, "div", Attrs(Props{"id": "app", "class": "x"}),
		H(nil, "p", "hello"),
		H(nil, "input", Attrs(Props{"type": "text"})),
	))
	assert.Equal(t, `<div class="x" id="app"><p>hello</p><input type="text"></div>`, RenderChildren(root))
}

func TestInsertSkipsForeignRef(t *testing.T) {
	host := NewMemoryHost()
	p := NewPatcher(host, nil)
	parent, other := host.NewRoot(), host.NewRoot()
	ref := host.CreateText("ref")
	host.Insert(other, ref, nil)
	node := host.CreateText("node")
	host.Reset()

	p.insert(parent, node, ref)
	assert.Empty(t, host.Ops())
	assert.Nil(t, host.ParentOf(node))

	p.insert(other, node, ref)
	assert.Equal(t, "noderef", RenderChildren(other))
}

func TestPatchKeyedRotationIsOneMove(t *testing.T) {
	old := keyedList(1, 2, 3)
	host, p, root := mount(t, old)
	host.Reset()

	next := keyedList(3, 1, 2)
	p.Patch(old, next, Mount{})

	assert.Equal(t, 1, host.Count(PatchMoveNode))
	assert.Equal(t, 0, host.Count(PatchCreateNode))
	assert.Equal(t, 0, host.Count(PatchRemoveNode))
	assert.Equal(t, "<ul><li>3</li><li>1</li><li>2</li></ul>", RenderChildren(root))

	for i, child := range next.Children {
		assert.Same(t, old.Children[(i+2)%3].Elm, child.Elm, "host nodes are reused by key")
	}
}

func TestPatchReverse(t *testing.T) {
	old := keyedList(1, 2, 3, 4, 5)
	host, p, root := mount(t, old)
	host.Reset()

	p.Patch(old, keyedList(5, 4, 3, 2, 1), Mount{})
	assert.Equal(t, 0, host.Count(PatchCreateNode))
	assert.Equal(t, 0, host.Count(PatchRemoveNode))
	assert.Equal(t, "<ul><li>5</li><li>4</li><li>3</li><li>2</li><li>1</li></ul>", RenderChildren(root))
}

func TestPatchIdenticalTreeIsNoop(t *testing.T) {
	build := func() *VNode {
		return H(nil, "div", Attrs(Props{"class": "a"}), H(nil, "span", "x"), keyedList(1, 2))
	}
	old := build()
	host, p, _ := mount(t, old)
	host.Reset()

	p.Patch(old, build(), Mount{})
	assert.Empty(t, host.Ops())
}

func TestPatchTextAndAttrs(t *testing.T) {
	old := H(nil, "div", Attrs(Props{"a": 1, "b": 2}), "one")
	host, p, root := mount(t, old)
	host.Reset()

	p.Patch(old, H(nil, "div", Attrs(Props{"a": 1, "c": 3}), "two"), Mount{})
	assert.Equal(t, []Patch{
		{Op: PatchSetAttr, ID: old.Elm.(*MemNode).ID, Key: "c", Value: "3"},
		{Op: PatchRemoveAttr, ID: old.Elm.(*MemNode).ID, Key: "b"},
		{Op: PatchSetText, ID: old.Children[0].Elm.(*MemNode).ID, Value: "two"},
	}, host.Ops())
	assert.Equal(t, `<div a="1" c="3">two</div>`, RenderChildren(root))
}

func TestPatchReplacesDifferentRoot(t *testing.T) {
	old := H(nil, "div", "a")
	host, p, root := mount(t, old)
	host.Reset()

	elm := p.Patch(old, H(nil, "section", "b"), Mount{})
	assert.Equal(t, "<section>b</section>", RenderChildren(root))
	assert.Equal(t, "section", elm.(*MemNode).Tag)
	assert.Equal(t, 1, host.Count(PatchRemoveNode))
}

func TestPatchUnkeyedInsertAndRemove(t *testing.T) {
	old := H(nil, "ul", H(nil, "li", "a"), H(nil, "li", "b"))
	_, p, root := mount(t, old)

	mid := H(nil, "ul", H(nil, "li", "a"), H(nil, "p", "new"), H(nil, "li", "b"))
	p.Patch(old, mid, Mount{})
	assert.Equal(t, "<ul><li>a</li><p>new</p><li>b</li></ul>", RenderChildren(root))

	p.Patch(mid, H(nil, "ul"), Mount{})
	assert.Equal(t, "<ul></ul>", RenderChildren(root))
}

func TestPatchRandomKeyedPermutations(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 200; round++ {
		oldKeys := randomKeys(rng)
		newKeys := randomKeys(rng)

		old := keyedList(oldKeys...)
		host, p, root := mount(t, old)
		host.Reset()

		next := keyedList(newKeys...)
		p.Patch(old, next, Mount{})

		_, _, freshRoot := mount(t, keyedList(newKeys...))
		require.Equal(t, RenderChildren(freshRoot), RenderChildren(root), "round %d: %v -> %v", round, oldKeys, newKeys)

		added, removed := diffKeys(oldKeys, newKeys)
		assert.Equal(t, 2*added, host.Count(PatchCreateNode), "round %d: only new keys create nodes", round)
		assert.Equal(t, removed, host.Count(PatchRemoveNode), "round %d", round)
	}
}

func randomKeys(rng *rand.Rand) []int {
	perm := rng.Perm(12)
	return perm[:rng.Intn(12)]
}

func diffKeys(old, next []int) (added, removed int) {
	inOld := map[int]bool{}
	for _, k := range old {
		inOld[k] = true
	}
	inNew := map[int]bool{}
	for _, k := range next {
		inNew[k] = true
		if !inOld[k] {
			added++
		}
	}
	for _, k := range old {
		if !inNew[k] {
			removed++
		}
	}
	return added, removed
}

type fakeInstance struct {
	elm Node
}

func (f *fakeInstance) HostNode() Node { return f.elm }

type fakeManager struct {
	p      *Patcher
	events []string
}

func (m *fakeManager) Create(v *VNode) {
	inst := &fakeInstance{}
	v.Component.Instance = inst
	tree := H(nil, "span", v.Component.Props["label"])
	inst.elm = m.p.Patch(nil, tree, Mount{Placeholder: v})
	m.events = append(m.events, "create:"+v.Tag)
}

func (m *fakeManager) Prepatch(old, v *VNode) {
	v.Component.Instance = old.Component.Instance
	m.events = append(m.events, "prepatch:"+v.Tag)
}

func (m *fakeManager) Insert(v *VNode) {
	m.events = append(m.events, "insert:"+v.Tag)
}

func (m *fakeManager) Destroy(v *VNode) {
	m.events = append(m.events, "destroy:"+v.Tag)
}

func TestPatchComponentHooks(t *testing.T) {
	host := NewMemoryHost()
	m := &fakeManager{}
	p := NewPatcher(host, m)
	m.p = p

	ctx := &testCtx{comps: map[string]any{"badge": &fakeDef{}, "pill": &fakeDef{}}}
	build := func(tags ...string) *VNode {
		items := make([]any, len(tags))
		for i, tag := range tags {
			items[i] = H(ctx, tag, &Data{Key: tag, Props: map[string]any{"label": tag}})
		}
		return H(ctx, "div", items...)
	}

	root := host.NewRoot()
	old := build("badge", "pill")
	p.Patch(nil, old, Mount{Parent: root})
	assert.Equal(t, "<div><span>badge</span><span>pill</span></div>", RenderChildren(root))
	assert.Equal(t, []string{"create:badge", "create:pill", "insert:badge", "insert:pill"}, m.events)

	m.events = nil
	p.Patch(old, build("pill"), Mount{})
	assert.Equal(t, []string{"prepatch:pill", "destroy:badge"}, m.events)
	assert.Equal(t, "<div><span>pill</span></div>", RenderChildren(root))
}

func TestPatchNilDestroysWithoutTouchingHost(t *testing.T) {
	host := NewMemoryHost()
	m := &fakeManager{}
	p := NewPatcher(host, m)
	m.p = p

	ctx := &testCtx{comps: map[string]any{"badge": &fakeDef{}}}
	old := H(ctx, "div", H(ctx, "badge"))
	p.Patch(nil, old, Mount{Parent: host.NewRoot()})
	host.Reset()
	m.events = nil

	p.Patch(old, nil, Mount{})
	assert.Equal(t, []string{"destroy:badge"}, m.events)
	assert.Empty(t, host.Ops())
}
