package vdom

import (
	"fmt"
	"reflect"
)

// VKind is the node type discriminator.
type VKind uint8

const (
	KindElement          VKind = iota // <div>, <button>, etc.
	KindText                          // Plain text node
	KindComment                       // Comment; also the empty node
	KindComponent                     // Placeholder for a child component
	KindAsyncPlaceholder              // Comment standing in for an unresolved component
)

// String returns the string representation of the VKind.
func (k VKind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindComment:
		return "Comment"
	case KindComponent:
		return "Component"
	case KindAsyncPlaceholder:
		return "AsyncPlaceholder"
	default:
		return "Unknown"
	}
}

// Node is an opaque host node handle.
type Node = any

// VNode is an immutable description of one node produced by a render.
// After patching, Elm holds the host node it is attached to.
type VNode struct {
	Kind      VKind          // Node type
	Tag       string         // Element tag, or component name
	Data      *Data          // Attributes, key, component props
	Children  []*VNode       // Child nodes (elements only)
	Text      string         // For KindText and comments
	Key       any            // Reconciliation key
	NS        string         // Namespace, e.g. "svg"
	Component *ComponentData // For KindComponent
	Context   Context        // Instance that rendered the node
	Elm       Node           // Host node, set by the patcher

	Static bool // Rendered once and reused verbatim
	Cloned bool // Copy of a static node
	Once   bool // Rendered with a render-once directive
}

// Props holds host attributes and properties.
type Props map[string]any

// Data is the optional second argument of CreateElement.
type Data struct {
	Key any
	// Attrs are applied to the host node.
	Attrs Props
	// Props are passed to a child component.
	Props map[string]any
	// Is overrides the tag.
	Is any
	// On holds listeners a child component reaches through Emit.
	On map[string]func(args ...any)
	// KeepAlive caches the component instance instead of destroying it
	// when the placeholder is removed.
	KeepAlive bool
}

// ComponentData is carried by component placeholders.
type ComponentData struct {
	// Name is the tag the component was resolved from.
	Name string
	// Def is the component definition. It must be comparable.
	Def any
	// Props are the values passed down by the parent.
	Props map[string]any
	// Children is slot content passed by the parent.
	Children []*VNode
	// Instance is set by the ComponentManager once created.
	Instance ComponentInstance
	// PendingInsert holds the child's inserted placeholders until the
	// parent tree is attached.
	PendingInsert []*VNode
}

// ComponentInstance is what a ComponentManager stores on a placeholder.
type ComponentInstance interface {
	// HostNode returns the root host node of the rendered instance.
	HostNode() Node
}

// NewText creates a text node.
func NewText(text string) *VNode {
	return &VNode{Kind: KindText, Text: text}
}

// Empty creates the empty comment node.
func Empty(text string) *VNode {
	return &VNode{Kind: KindComment, Text: text}
}

// IsComment reports whether the node renders as a comment.
func (v *VNode) IsComment() bool {
	return v.Kind == KindComment || v.Kind == KindAsyncPlaceholder
}

// Clone returns a shallow copy marked Cloned, sharing children.
func (v *VNode) Clone() *VNode {
	c := *v
	c.Elm = nil
	c.Cloned = true
	if v.Children != nil {
		c.Children = append([]*VNode(nil), v.Children...)
	}
	return &c
}

// String returns a compact description for debugging.
func (v *VNode) String() string {
	if v == nil {
		return "<nil>"
	}
	switch v.Kind {
	case KindText:
		return fmt.Sprintf("%q", v.Text)
	case KindComment, KindAsyncPlaceholder:
		return "<!--" + v.Text + "-->"
	}
	if v.Key != nil {
		return fmt.Sprintf("<%s key=%v>", v.Tag, v.Key)
	}
	return "<" + v.Tag + ">"
}

// SameNode reports whether b can be patched in place of a: same kind,
// tag and key, the same input type for inputs, and the same definition
// for components.
func SameNode(a, b *VNode) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind || a.Tag != b.Tag || !sameKey(a.Key, b.Key) {
		return false
	}
	switch a.Kind {
	case KindElement:
		if a.Tag == "input" {
			return inputType(a) == inputType(b)
		}
	case KindComponent:
		return a.Component != nil && b.Component != nil && sameDef(a.Component.Def, b.Component.Def)
	}
	return true
}

func inputType(v *VNode) any {
	if v.Data == nil || v.Data.Attrs == nil {
		return nil
	}
	return v.Data.Attrs["type"]
}

func sameKey(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if !isComparable(a) || !isComparable(b) {
		return false
	}
	return a == b
}

func sameDef(a, b any) bool {
	if !isComparable(a) || !isComparable(b) {
		return false
	}
	return a == b
}

func isComparable(v any) bool {
	return v != nil && reflect.TypeOf(v).Comparable()
}

// isPrimitive reports whether v is usable as a key or a text child.
func isPrimitive(v any) bool {
	switch v.(type) {
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	}
	return false
}
