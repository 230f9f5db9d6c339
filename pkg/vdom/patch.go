package vdom

import (
	"reflect"
	"sort"
)

// PatchOp is the type of a recorded host operation.
type PatchOp uint8

const (
	PatchSetText    PatchOp = 0x01 // Update text content
	PatchSetAttr    PatchOp = 0x02 // Set/update attribute
	PatchRemoveAttr PatchOp = 0x03 // Remove attribute
	PatchInsertNode PatchOp = 0x04 // Insert new node
	PatchRemoveNode PatchOp = 0x05 // Remove node
	PatchMoveNode   PatchOp = 0x06 // Move node to new position
	PatchCreateNode PatchOp = 0x07 // Create detached node
)

// String returns the string representation of the PatchOp.
func (op PatchOp) String() string {
	switch op {
	case PatchSetText:
		return "SetText"
	case PatchSetAttr:
		return "SetAttr"
	case PatchRemoveAttr:
		return "RemoveAttr"
	case PatchInsertNode:
		return "InsertNode"
	case PatchRemoveNode:
		return "RemoveNode"
	case PatchMoveNode:
		return "MoveNode"
	case PatchCreateNode:
		return "CreateNode"
	default:
		return "Unknown"
	}
}

// AllOps lists every PatchOp in code order.
var AllOps = []PatchOp{
	PatchSetText, PatchSetAttr, PatchRemoveAttr, PatchInsertNode,
	PatchRemoveNode, PatchMoveNode, PatchCreateNode,
}

// Patch records a single host operation.
type Patch struct {
	Op       PatchOp // Operation type
	ID       string  // Target node
	ParentID string  // Parent for Insert/Move
	RefID    string  // Insert before this node; empty appends
	Tag      string  // Tag for CreateNode
	Key      string  // Attribute key (for SetAttr/RemoveAttr)
	Value    string  // New value
}

// Mount says where a root patch attaches.
type Mount struct {
	// Parent and Ref place a newly created tree. Both nil leaves it
	// detached.
	Parent, Ref Node
	// Placeholder is set when patching a child component's tree. The
	// first patch then defers insert callbacks to the parent's patch.
	Placeholder *VNode
}

// Patcher reconciles VNode trees against a Host.
type Patcher struct {
	host       Host
	components ComponentManager
}

// NewPatcher creates a patcher. components may be nil when no
// component placeholders are rendered.
func NewPatcher(host Host, components ComponentManager) *Patcher {
	return &Patcher{host: host, components: components}
}

// Host returns the patched host.
func (p *Patcher) Host() Host {
	return p.host
}

// Patch brings the host from old to vnode and returns vnode's host
// node. A nil old creates the tree at m; a nil vnode destroys old
// without touching the host.
func (p *Patcher) Patch(old, vnode *VNode, m Mount) Node {
	if vnode == nil {
		if old != nil {
			p.invokeDestroy(old)
		}
		return nil
	}

	var queue []*VNode
	initial := false
	switch {
	case old == nil:
		initial = true
		p.createElm(vnode, &queue, m.Parent, m.Ref)
	case SameNode(old, vnode):
		p.patchVnode(old, vnode, &queue)
	default:
		oldElm := old.Elm
		parent := p.host.ParentOf(oldElm)
		p.createElm(vnode, &queue, parent, p.host.NextSibling(oldElm))
		if parent != nil {
			p.removeVnodes([]*VNode{old}, 0, 0)
		} else {
			p.invokeDestroy(old)
		}
	}

	p.invokeInsert(queue, initial, m.Placeholder)
	return vnode.Elm
}

func (p *Patcher) invokeInsert(queue []*VNode, initial bool, placeholder *VNode) {
	if initial && placeholder != nil && placeholder.Component != nil {
		placeholder.Component.PendingInsert = queue
		return
	}
	if p.components == nil {
		return
	}
	for _, v := range queue {
		p.components.Insert(v)
	}
}

func (p *Patcher) createElm(vnode *VNode, queue *[]*VNode, parent, ref Node) {
	switch vnode.Kind {
	case KindComponent:
		p.createComponent(vnode, queue, parent, ref)
		return
	case KindElement:
		vnode.Elm = p.host.CreateElement(vnode.Tag, vnode.NS)
		for _, child := range vnode.Children {
			p.createElm(child, queue, vnode.Elm, nil)
		}
		p.updateAttrs(nil, vnode)
	case KindText:
		vnode.Elm = p.host.CreateText(vnode.Text)
	default:
		vnode.Elm = p.host.CreateComment(vnode.Text)
	}
	p.insert(parent, vnode.Elm, ref)
}

func (p *Patcher) createComponent(vnode *VNode, queue *[]*VNode, parent, ref Node) {
	cd := vnode.Component
	if p.components != nil {
		p.components.Create(vnode)
	}
	if cd == nil || cd.Instance == nil {
		vnode.Elm = p.host.CreateComment(vnode.Tag)
		p.insert(parent, vnode.Elm, ref)
		return
	}
	*queue = append(*queue, cd.PendingInsert...)
	cd.PendingInsert = nil
	vnode.Elm = cd.Instance.HostNode()
	*queue = append(*queue, vnode)
	p.insert(parent, vnode.Elm, ref)
}

// insert places node under parent before ref. A ref that has moved to
// another parent leaves node where it is.
func (p *Patcher) insert(parent, node, ref Node) {
	if parent == nil || node == nil {
		return
	}
	if ref != nil && p.host.ParentOf(ref) != parent {
		return
	}
	p.host.Insert(parent, node, ref)
}

func (p *Patcher) patchVnode(old, vnode *VNode, queue *[]*VNode) {
	if old == vnode {
		return
	}
	elm := old.Elm
	vnode.Elm = elm

	if vnode.Static && old.Static && sameKey(vnode.Key, old.Key) && (vnode.Cloned || vnode.Once) {
		vnode.Component = old.Component
		return
	}

	switch vnode.Kind {
	case KindComponent:
		if p.components != nil {
			p.components.Prepatch(old, vnode)
		}
		if cd := vnode.Component; cd != nil && cd.Instance != nil {
			vnode.Elm = cd.Instance.HostNode()
		}
		return
	case KindText, KindComment, KindAsyncPlaceholder:
		if old.Text != vnode.Text {
			p.host.SetText(elm, vnode.Text)
		}
		return
	}

	p.updateAttrs(old, vnode)
	oldCh, ch := old.Children, vnode.Children
	switch {
	case len(oldCh) > 0 && len(ch) > 0:
		p.updateChildren(elm, oldCh, ch, queue)
	case len(ch) > 0:
		p.addVnodes(elm, nil, ch, 0, len(ch)-1, queue)
	case len(oldCh) > 0:
		p.removeVnodes(oldCh, 0, len(oldCh)-1)
	}
}

// updateChildren diffs two child lists with four cursors, matching
// the ends against each other before falling back to a key lookup.
func (p *Patcher) updateChildren(parent Node, oldCh, newCh []*VNode, queue *[]*VNode) {
	oldCh = append([]*VNode(nil), oldCh...)

	oldStartIdx, oldEndIdx := 0, len(oldCh)-1
	newStartIdx, newEndIdx := 0, len(newCh)-1
	oldStart, oldEnd := oldCh[oldStartIdx], oldCh[oldEndIdx]
	newStart, newEnd := newCh[newStartIdx], newCh[newEndIdx]
	var keyToIdx map[any]int

	for oldStartIdx <= oldEndIdx && newStartIdx <= newEndIdx {
		switch {
		case oldStart == nil:
			oldStartIdx++
			oldStart = at(oldCh, oldStartIdx)
		case oldEnd == nil:
			oldEndIdx--
			oldEnd = at(oldCh, oldEndIdx)
		case SameNode(oldStart, newStart):
			p.patchVnode(oldStart, newStart, queue)
			oldStartIdx++
			newStartIdx++
			oldStart, newStart = at(oldCh, oldStartIdx), at(newCh, newStartIdx)
		case SameNode(oldEnd, newEnd):
			p.patchVnode(oldEnd, newEnd, queue)
			oldEndIdx--
			newEndIdx--
			oldEnd, newEnd = at(oldCh, oldEndIdx), at(newCh, newEndIdx)
		case SameNode(oldStart, newEnd):
			p.patchVnode(oldStart, newEnd, queue)
			p.insert(parent, oldStart.Elm, p.host.NextSibling(oldEnd.Elm))
			oldStartIdx++
			newEndIdx--
			oldStart, newEnd = at(oldCh, oldStartIdx), at(newCh, newEndIdx)
		case SameNode(oldEnd, newStart):
			p.patchVnode(oldEnd, newStart, queue)
			p.insert(parent, oldEnd.Elm, oldStart.Elm)
			oldEndIdx--
			newStartIdx++
			oldEnd, newStart = at(oldCh, oldEndIdx), at(newCh, newStartIdx)
		default:
			if keyToIdx == nil {
				keyToIdx = keyIndex(oldCh, oldStartIdx, oldEndIdx)
			}
			idx := -1
			if newStart.Key != nil {
				if isComparable(newStart.Key) {
					if i, ok := keyToIdx[newStart.Key]; ok {
						idx = i
					}
				}
			} else {
				idx = findInOld(newStart, oldCh, oldStartIdx, oldEndIdx)
			}

			if idx < 0 {
				p.createElm(newStart, queue, parent, oldStart.Elm)
			} else if toMove := oldCh[idx]; toMove != nil && SameNode(toMove, newStart) {
				p.patchVnode(toMove, newStart, queue)
				oldCh[idx] = nil
				p.insert(parent, toMove.Elm, oldStart.Elm)
			} else {
				// Same key, different element: treat as new.
				p.createElm(newStart, queue, parent, oldStart.Elm)
			}
			newStartIdx++
			newStart = at(newCh, newStartIdx)
		}
	}

	if oldStartIdx > oldEndIdx {
		var ref Node
		if n := at(newCh, newEndIdx+1); n != nil {
			ref = n.Elm
		}
		p.addVnodes(parent, ref, newCh, newStartIdx, newEndIdx, queue)
	} else if newStartIdx > newEndIdx {
		p.removeVnodes(oldCh, oldStartIdx, oldEndIdx)
	}
}

func at(list []*VNode, i int) *VNode {
	if i < 0 || i >= len(list) {
		return nil
	}
	return list[i]
}

func keyIndex(children []*VNode, start, end int) map[any]int {
	m := make(map[any]int)
	for i := start; i <= end; i++ {
		c := children[i]
		if c == nil || c.Key == nil || !isComparable(c.Key) {
			continue
		}
		m[c.Key] = i
	}
	return m
}

func findInOld(node *VNode, oldCh []*VNode, start, end int) int {
	for i := start; i < end+1; i++ {
		if c := oldCh[i]; c != nil && SameNode(node, c) {
			return i
		}
	}
	return -1
}

func (p *Patcher) addVnodes(parent, ref Node, vnodes []*VNode, start, end int, queue *[]*VNode) {
	for i := start; i <= end; i++ {
		p.createElm(vnodes[i], queue, parent, ref)
	}
}

func (p *Patcher) removeVnodes(vnodes []*VNode, start, end int) {
	for i := start; i <= end; i++ {
		ch := vnodes[i]
		if ch == nil {
			continue
		}
		if ch.Elm != nil {
			p.host.Remove(ch.Elm)
		}
		if ch.Kind == KindElement || ch.Kind == KindComponent {
			p.invokeDestroy(ch)
		}
	}
}

func (p *Patcher) invokeDestroy(vnode *VNode) {
	if vnode.Kind == KindComponent {
		if p.components != nil {
			p.components.Destroy(vnode)
		}
		return
	}
	for _, child := range vnode.Children {
		p.invokeDestroy(child)
	}
}

// updateAttrs applies the attribute difference between old and vnode in
// key order.
func (p *Patcher) updateAttrs(old, vnode *VNode) {
	var oldAttrs, attrs Props
	if old != nil && old.Data != nil {
		oldAttrs = old.Data.Attrs
	}
	if vnode.Data != nil {
		attrs = vnode.Data.Attrs
	}
	if len(oldAttrs) == 0 && len(attrs) == 0 {
		return
	}
	for _, k := range sortedKeys(attrs) {
		v := attrs[k]
		if prev, ok := oldAttrs[k]; ok && sameAttr(prev, v) {
			continue
		}
		p.host.SetAttr(vnode.Elm, k, v)
	}
	for _, k := range sortedKeys(oldAttrs) {
		if _, ok := attrs[k]; !ok {
			p.host.RemoveAttr(vnode.Elm, k)
		}
	}
}

func sameAttr(a, b any) bool {
	if isComparable(a) && isComparable(b) {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}

func sortedKeys(m Props) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
