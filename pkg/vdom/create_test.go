package vdom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/reactor/pkg/reactive"
)

type testCtx struct {
	comps    map[string]any
	warnings []string
}

func (c *testCtx) ResolveComponent(name string) (any, bool) {
	d, ok := c.comps[name]
	return d, ok
}

func (c *testCtx) Platform() Platform { return nil }

func (c *testCtx) Warn(code, format string, args ...any) {
	c.warnings = append(c.warnings, code)
}

type fakeDef struct{ name string }

func TestCreateElementDataOmission(t *testing.T) {
	ctx := &testCtx{}

	v := CreateElement(ctx, "div", []any{"a", "b"}, nil, NormalizeNone)
	require.Len(t, v.Children, 1)
	assert.Equal(t, "ab", v.Children[0].Text)
	assert.Nil(t, v.Data)

	v = CreateElement(ctx, "p", "hello", nil, NormalizeNone)
	require.Len(t, v.Children, 1)
	assert.Equal(t, KindText, v.Children[0].Kind)
}

func TestCreateElementEmptyTag(t *testing.T) {
	assert.Equal(t, KindComment, CreateElement(nil, nil, nil, nil, NormalizeFull).Kind)
	assert.Equal(t, KindComment, CreateElement(nil, "", nil, nil, NormalizeFull).Kind)
	assert.Equal(t, KindComment, CreateElement(nil, "div", &Data{Is: ""}, nil, NormalizeFull).Kind)
}

func TestCreateElementIsOverride(t *testing.T) {
	v := CreateElement(nil, "div", &Data{Is: "section"}, nil, NormalizeFull)
	assert.Equal(t, "section", v.Tag)
}

func TestCreateElementResolvesComponents(t *testing.T) {
	def := &fakeDef{name: "todo-item"}
	ctx := &testCtx{comps: map[string]any{"todo-item": def}}

	v := H(ctx, "todo-item", &Data{Key: 3, Props: map[string]any{"text": "x"}}, H(ctx, "span", "slot"))
	assert.Equal(t, KindComponent, v.Kind)
	require.NotNil(t, v.Component)
	assert.Same(t, def, v.Component.Def)
	assert.Equal(t, "x", v.Component.Props["text"])
	assert.Equal(t, 3, v.Key)
	assert.Len(t, v.Component.Children, 1)
	assert.Empty(t, v.Children, "slot content is not rendered by the placeholder")

	div := H(ctx, "div")
	assert.Equal(t, KindElement, div.Kind, "reserved tags never resolve")

	unknown := H(ctx, "my-widget")
	assert.Equal(t, KindElement, unknown.Kind)

	direct := CreateElement(ctx, def, nil, nil, NormalizeFull)
	assert.Equal(t, KindComponent, direct.Kind)
}

func TestCreateElementWarnings(t *testing.T) {
	ctx := &testCtx{}

	H(ctx, "li", &Data{Key: []int{1}})
	rt := reactive.NewRuntime(reactive.WithErrorHandler(func(*reactive.Error) {}))
	v := CreateElement(ctx, "div", rt.Reactive(map[string]any{"a": 1}), nil, NormalizeFull)

	assert.Equal(t, KindComment, v.Kind)
	assert.Equal(t, []string{"R004", "R007"}, ctx.warnings)
}

func TestNamespaces(t *testing.T) {
	v := H(nil, "svg",
		H(nil, "g", H(nil, "circle")),
		H(nil, "foreignObject", H(nil, "div", H(nil, "span"))),
	)

	assert.Equal(t, "svg", v.NS)
	g := v.Children[0]
	assert.Equal(t, "svg", g.NS)
	assert.Equal(t, "svg", g.Children[0].NS)

	fo := v.Children[1]
	assert.Equal(t, "svg", fo.NS)
	assert.Equal(t, "", fo.Children[0].NS)
	assert.Equal(t, "", fo.Children[0].Children[0].NS)
}

func TestNormalizeChildren(t *testing.T) {
	li := func(s string) *VNode { return H(nil, "li", s) }

	kids := NormalizeChildren([]any{
		"a", 1, nil, true,
		[]any{li("x"), li("y")},
		NewText("b"), "c",
	})

	require.Len(t, kids, 4)
	assert.Equal(t, "a1", kids[0].Text)
	assert.Equal(t, "__vlist_4_0__", kids[1].Key)
	assert.Equal(t, "__vlist_4_1__", kids[2].Key)
	assert.Equal(t, "bc", kids[3].Text)
}

func TestNormalizeKeepsExplicitKeys(t *testing.T) {
	kids := NormalizeChildren([]any{[]*VNode{H(nil, "li", Key("k"))}})
	require.Len(t, kids, 1)
	assert.Equal(t, "k", kids[0].Key)
}

func TestSimpleNormalize(t *testing.T) {
	a, b := H(nil, "a"), H(nil, "b")
	kids := SimpleNormalizeChildren([]any{a, []*VNode{b, NewText("x")}, NewText("y")})
	require.Len(t, kids, 3)
	assert.Same(t, a, kids[0])
	assert.Same(t, b, kids[1])
	assert.Equal(t, "xy", kids[2].Text)
	assert.Nil(t, b.Key, "simple normalization does not assign keys")
}

func TestSameNode(t *testing.T) {
	def := &fakeDef{}
	tests := []struct {
		name string
		a, b *VNode
		want bool
	}{
		{"same tag no key", H(nil, "div"), H(nil, "div"), true},
		{"different tag", H(nil, "div"), H(nil, "p"), false},
		{"different key", H(nil, "li", Key(1)), H(nil, "li", Key(2)), false},
		{"key type matters", H(nil, "li", Key(1)), H(nil, "li", Key("1")), false},
		{"text nodes", NewText("a"), NewText("b"), true},
		{"text vs comment", NewText("a"), Empty("a"), false},
		{"input type", Input(Attrs(Props{"type": "text"})), Input(Attrs(Props{"type": "checkbox"})), false},
		{"same component", CreateElement(nil, def, nil, nil, 0), CreateElement(nil, def, nil, nil, 0), true},
		{"other component", CreateElement(nil, def, nil, nil, 0), CreateElement(nil, &fakeDef{}, nil, nil, 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SameNode(tt.a, tt.b))
		})
	}
}
