package vdom

import (
	"fmt"
	"strconv"

	rerrors "github.com/vango-dev/reactor/internal/errors"
	"github.com/vango-dev/reactor/pkg/reactive"
)

// Context is the rendering instance CreateElement builds nodes for.
type Context interface {
	// ResolveComponent looks up a registered component by tag.
	ResolveComponent(name string) (def any, ok bool)
	// Platform returns the host tag rules.
	Platform() Platform
	// Warn reports a structural warning.
	Warn(code, format string, args ...any)
}

// Normalization selects how CreateElement flattens children.
type Normalization uint8

const (
	// NormalizeNone takes children as a flat []*VNode.
	NormalizeNone Normalization = iota
	// NormalizeSimple flattens one level of nesting and merges adjacent
	// text. Compiled templates only need this.
	NormalizeSimple
	// NormalizeFull accepts arbitrary nesting and primitive children,
	// as written by hand in render functions.
	NormalizeFull
)

// CreateElement builds a VNode. data may be omitted: when it is a
// sequence or a primitive it is taken as the children. A nil or empty
// tag yields an empty comment node. String tags that are not reserved
// by the platform are resolved as components through ctx; any other
// non-string tag is used as a component definition directly.
func CreateElement(ctx Context, tag any, data any, children any, mode Normalization) *VNode {
	if isChildren(data) {
		children, data = data, nil
		if mode == NormalizeNone {
			mode = NormalizeFull
		}
	}

	var d *Data
	switch v := data.(type) {
	case nil:
	case *Data:
		d = v
	default:
		if reactive.IsTracked(v) {
			warn(ctx, rerrors.CodeObservedData, "avoid using observed data object as vnode data: %T", v)
		} else {
			warn(ctx, rerrors.CodeInvalidData, "vnode data must be *vdom.Data, got %T", v)
		}
		return Empty("")
	}

	if d != nil && d.Is != nil {
		tag = d.Is
	}
	if tag == nil {
		return Empty("")
	}
	if d != nil && d.Key != nil && !isPrimitive(d.Key) {
		warn(ctx, rerrors.CodeNonPrimitiveKey, "avoid using non-primitive value as key, use string/number value instead: %T", d.Key)
	}

	var kids []*VNode
	switch mode {
	case NormalizeFull:
		kids = NormalizeChildren(children)
	case NormalizeSimple:
		kids = SimpleNormalizeChildren(children)
	default:
		kids, _ = children.([]*VNode)
		if kids == nil {
			kids = NormalizeChildren(children)
		}
	}

	platform := platformOf(ctx)
	var vnode *VNode
	switch t := tag.(type) {
	case string:
		if t == "" {
			return Empty("")
		}
		ns := platform.TagNamespace(t)
		if platform.IsReservedTag(t) {
			vnode = newElement(ctx, t, d, kids)
		} else if def, ok := resolve(ctx, t); ok {
			vnode = newComponent(ctx, t, def, d, kids)
		} else {
			vnode = newElement(ctx, t, d, kids)
		}
		if ns != "" {
			applyNS(vnode, ns, false)
		}
	default:
		vnode = newComponent(ctx, "", t, d, kids)
	}
	return vnode
}

// H is CreateElement with variadic arguments and full normalization. A
// *Data argument becomes the node data; every other argument is a child.
func H(ctx Context, tag any, args ...any) *VNode {
	var data *Data
	children := make([]any, 0, len(args))
	for _, arg := range args {
		if d, ok := arg.(*Data); ok {
			data = d
			continue
		}
		children = append(children, arg)
	}
	if data == nil {
		return CreateElement(ctx, tag, nil, children, NormalizeFull)
	}
	return CreateElement(ctx, tag, data, children, NormalizeFull)
}

func newElement(ctx Context, tag string, d *Data, kids []*VNode) *VNode {
	v := &VNode{Kind: KindElement, Tag: tag, Data: d, Children: kids, Context: ctx}
	if d != nil {
		v.Key = d.Key
	}
	return v
}

func newComponent(ctx Context, name string, def any, d *Data, kids []*VNode) *VNode {
	cd := &ComponentData{Name: name, Def: def, Children: kids}
	v := &VNode{Kind: KindComponent, Tag: name, Data: d, Component: cd, Context: ctx}
	if d != nil {
		v.Key = d.Key
		cd.Props = d.Props
	}
	return v
}

// AsyncPlaceholder creates the comment node rendered while the
// component named name is being resolved.
func AsyncPlaceholder(ctx Context, name string, d *Data) *VNode {
	v := &VNode{Kind: KindAsyncPlaceholder, Tag: name, Data: d, Context: ctx}
	if d != nil {
		v.Key = d.Key
	}
	return v
}

func isChildren(v any) bool {
	switch v.(type) {
	case []*VNode, []any, *VNode:
		return true
	}
	return isPrimitive(v)
}

func platformOf(ctx Context) Platform {
	if ctx != nil {
		if p := ctx.Platform(); p != nil {
			return p
		}
	}
	return DefaultPlatform
}

func resolve(ctx Context, name string) (any, bool) {
	if ctx == nil {
		return nil, false
	}
	return ctx.ResolveComponent(name)
}

func warn(ctx Context, code, format string, args ...any) {
	if ctx != nil {
		ctx.Warn(code, format, args...)
	}
}

// applyNS sets ns on vnode and on every descendant element that does
// not declare its own. A foreignObject resets to the default namespace
// for its children.
func applyNS(vnode *VNode, ns string, force bool) {
	vnode.NS = ns
	if vnode.Tag == "foreignObject" {
		ns = ""
		force = true
	}
	for _, child := range vnode.Children {
		if child.Kind != KindElement {
			continue
		}
		if child.NS == "" || force {
			applyNS(child, ns, force)
		}
	}
}

// NormalizeChildren flattens arbitrarily nested children into a list of
// VNodes. Primitives become text nodes, nil and booleans are dropped,
// adjacent text is merged, and elements from nested lists without a key
// get a positional one.
func NormalizeChildren(children any) []*VNode {
	switch c := children.(type) {
	case nil:
		return nil
	case []*VNode:
		items := make([]any, len(c))
		for i, v := range c {
			items[i] = v
		}
		return normalizeArray(items, "", nil)
	case []any:
		return normalizeArray(c, "", nil)
	case *VNode:
		return []*VNode{c}
	}
	if s, ok := primitiveText(children); ok {
		return []*VNode{NewText(s)}
	}
	return nil
}

func normalizeArray(children []any, nestedIndex string, res []*VNode) []*VNode {
	for i, c := range children {
		var last *VNode
		if len(res) > 0 {
			last = res[len(res)-1]
		}
		switch v := c.(type) {
		case nil, bool:
			continue
		case []any:
			res = normalizeArray(v, nestedIndex+"_"+strconv.Itoa(i), res)
			continue
		case []*VNode:
			items := make([]any, len(v))
			for j, n := range v {
				items[j] = n
			}
			res = normalizeArray(items, nestedIndex+"_"+strconv.Itoa(i), res)
			continue
		case *VNode:
			if v == nil {
				continue
			}
			if v.Kind == KindText && last != nil && last.Kind == KindText {
				res[len(res)-1] = NewText(last.Text + v.Text)
				continue
			}
			if v.Kind == KindElement && v.Key == nil && nestedIndex != "" {
				v.Key = fmt.Sprintf("__vlist%s_%d__", nestedIndex, i)
			}
			res = append(res, v)
			continue
		}
		if s, ok := primitiveText(c); ok {
			if last != nil && last.Kind == KindText {
				res[len(res)-1] = NewText(last.Text + s)
			} else if s != "" {
				res = append(res, NewText(s))
			}
		}
	}
	return res
}

// SimpleNormalizeChildren flattens one level of nested lists and merges
// adjacent text nodes.
func SimpleNormalizeChildren(children any) []*VNode {
	var flat []*VNode
	add := func(v *VNode) {
		if v == nil {
			return
		}
		if v.Kind == KindText && len(flat) > 0 && flat[len(flat)-1].Kind == KindText {
			flat[len(flat)-1] = NewText(flat[len(flat)-1].Text + v.Text)
			return
		}
		flat = append(flat, v)
	}
	switch c := children.(type) {
	case []*VNode:
		for _, v := range c {
			add(v)
		}
	case []any:
		for _, item := range c {
			switch v := item.(type) {
			case *VNode:
				add(v)
			case []*VNode:
				for _, n := range v {
					add(n)
				}
			default:
				if s, ok := primitiveText(v); ok {
					add(NewText(s))
				}
			}
		}
	default:
		return NormalizeChildren(children)
	}
	return flat
}

func primitiveText(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case bool:
		return "", false
	}
	if isPrimitive(v) {
		return fmt.Sprint(v), true
	}
	return "", false
}
