package vdom

import (
	"fmt"
	"html"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// MemNodeType distinguishes MemNode variants.
type MemNodeType uint8

const (
	MemElement MemNodeType = iota
	MemText
	MemComment
)

// MemNode is a node in a MemoryHost tree.
type MemNode struct {
	ID       string
	Type     MemNodeType
	Tag      string
	NS       string
	Text     string
	Attrs    map[string]any
	Parent   *MemNode
	Children []*MemNode
}

func (n *MemNode) indexOf(child *MemNode) int {
	for i, c := range n.Children {
		if c == child {
			return i
		}
	}
	return -1
}

func (n *MemNode) detach() {
	if n.Parent == nil {
		return
	}
	p := n.Parent
	if i := p.indexOf(n); i >= 0 {
		p.Children = append(p.Children[:i], p.Children[i+1:]...)
	}
	n.Parent = nil
}

// MemoryHost is an in-memory Host that records every operation it
// performs. It backs tests, benchmarks and the demo command.
type MemoryHost struct {
	nextID int
	ops    []Patch
}

// NewMemoryHost creates an empty host.
func NewMemoryHost() *MemoryHost {
	return &MemoryHost{}
}

// NewRoot returns a detached container element to mount into.
func (h *MemoryHost) NewRoot() *MemNode {
	h.nextID++
	return &MemNode{ID: "root" + strconv.Itoa(h.nextID), Type: MemElement, Tag: "#root"}
}

func (h *MemoryHost) newNode(t MemNodeType) *MemNode {
	h.nextID++
	return &MemNode{ID: "n" + strconv.Itoa(h.nextID), Type: t}
}

func (h *MemoryHost) record(p Patch) {
	h.ops = append(h.ops, p)
}

func mem(n Node) *MemNode {
	m, _ := n.(*MemNode)
	return m
}

func idOf(n *MemNode) string {
	if n == nil {
		return ""
	}
	return n.ID
}

// CreateElement implements Host.
func (h *MemoryHost) CreateElement(tag, ns string) Node {
	n := h.newNode(MemElement)
	n.Tag, n.NS = tag, ns
	h.record(Patch{Op: PatchCreateNode, ID: n.ID, Tag: tag})
	return n
}

// CreateText implements Host.
func (h *MemoryHost) CreateText(text string) Node {
	n := h.newNode(MemText)
	n.Text = text
	h.record(Patch{Op: PatchCreateNode, ID: n.ID, Tag: "#text", Value: text})
	return n
}

// CreateComment implements Host.
func (h *MemoryHost) CreateComment(text string) Node {
	n := h.newNode(MemComment)
	n.Text = text
	h.record(Patch{Op: PatchCreateNode, ID: n.ID, Tag: "#comment", Value: text})
	return n
}

// Insert implements Host. Inserting an attached node records a move.
func (h *MemoryHost) Insert(parent, node, ref Node) {
	p, n, r := mem(parent), mem(node), mem(ref)
	if p == nil || n == nil {
		return
	}
	op := PatchInsertNode
	if n.Parent != nil {
		op = PatchMoveNode
		n.detach()
	}
	i := len(p.Children)
	if r != nil && r.Parent == p {
		i = p.indexOf(r)
	}
	p.Children = append(p.Children, nil)
	copy(p.Children[i+1:], p.Children[i:])
	p.Children[i] = n
	n.Parent = p
	h.record(Patch{Op: op, ID: n.ID, ParentID: p.ID, RefID: idOf(r)})
}

// Remove implements Host.
func (h *MemoryHost) Remove(node Node) {
	n := mem(node)
	if n == nil || n.Parent == nil {
		return
	}
	parent := n.Parent
	n.detach()
	h.record(Patch{Op: PatchRemoveNode, ID: n.ID, ParentID: parent.ID})
}

// SetText implements Host.
func (h *MemoryHost) SetText(node Node, text string) {
	n := mem(node)
	if n == nil {
		return
	}
	n.Text = text
	h.record(Patch{Op: PatchSetText, ID: n.ID, Value: text})
}

// SetAttr implements Host.
func (h *MemoryHost) SetAttr(node Node, key string, value any) {
	n := mem(node)
	if n == nil {
		return
	}
	if n.Attrs == nil {
		n.Attrs = make(map[string]any)
	}
	n.Attrs[key] = value
	h.record(Patch{Op: PatchSetAttr, ID: n.ID, Key: key, Value: fmt.Sprint(value)})
}

// RemoveAttr implements Host.
func (h *MemoryHost) RemoveAttr(node Node, key string) {
	n := mem(node)
	if n == nil {
		return
	}
	delete(n.Attrs, key)
	h.record(Patch{Op: PatchRemoveAttr, ID: n.ID, Key: key})
}

// ParentOf implements Host.
func (h *MemoryHost) ParentOf(node Node) Node {
	n := mem(node)
	if n == nil || n.Parent == nil {
		return nil
	}
	return n.Parent
}

// NextSibling implements Host.
func (h *MemoryHost) NextSibling(node Node) Node {
	n := mem(node)
	if n == nil || n.Parent == nil {
		return nil
	}
	i := n.Parent.indexOf(n)
	if i < 0 || i+1 >= len(n.Parent.Children) {
		return nil
	}
	return n.Parent.Children[i+1]
}

// Ops returns the operations recorded since the last Reset.
func (h *MemoryHost) Ops() []Patch {
	out := make([]Patch, len(h.ops))
	copy(out, h.ops)
	return out
}

// Reset clears the operation log.
func (h *MemoryHost) Reset() {
	h.ops = h.ops[:0]
}

// Count returns how many operations of kind op were recorded.
func (h *MemoryHost) Count(op PatchOp) int {
	n := 0
	for _, p := range h.ops {
		if p.Op == op {
			n++
		}
	}
	return n
}

// Counts returns recorded operation counts per kind.
func (h *MemoryHost) Counts() map[PatchOp]int {
	m := make(map[PatchOp]int)
	for _, p := range h.ops {
		m[p.Op]++
	}
	return m
}

// Render serializes the subtree under node as HTML. Attributes are
// written in key order, so equal trees render identically.
func Render(node Node) string {
	var b strings.Builder
	renderNode(&b, mem(node))
	return b.String()
}

// RenderChildren serializes only the children of node.
func RenderChildren(node Node) string {
	var b strings.Builder
	if n := mem(node); n != nil {
		for _, c := range n.Children {
			renderNode(&b, c)
		}
	}
	return b.String()
}

func renderNode(b *strings.Builder, n *MemNode) {
	if n == nil {
		return
	}
	switch n.Type {
	case MemText:
		b.WriteString(html.EscapeString(n.Text))
		return
	case MemComment:
		b.WriteString("<!--")
		b.WriteString(n.Text)
		b.WriteString("-->")
		return
	}
	b.WriteByte('<')
	b.WriteString(n.Tag)
	keys := make([]string, 0, len(n.Attrs))
	for k := range n.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteByte(' ')
		b.WriteString(k)
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(fmt.Sprint(n.Attrs[k])))
		b.WriteByte('"')
	}
	b.WriteByte('>')
	if IsVoidElement(n.Tag) {
		return
	}
	for _, c := range n.Children {
		renderNode(b, c)
	}
	b.WriteString("</")
	b.WriteString(n.Tag)
	b.WriteByte('>')
}

// Digest returns a 64-bit hash of the rendered subtree.
func Digest(node Node) uint64 {
	return xxhash.Sum64String(Render(node))
}
