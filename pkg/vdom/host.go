package vdom

// Host is the platform the patcher mutates. Node handles are opaque to
// the patcher; a nil Node means "none".
type Host interface {
	CreateElement(tag, ns string) Node
	CreateText(text string) Node
	CreateComment(text string) Node
	// Insert places node under parent before ref, or last when ref is
	// nil. A node that is already attached is moved.
	Insert(parent, node, ref Node)
	Remove(node Node)
	SetText(node Node, text string)
	SetAttr(node Node, key string, value any)
	RemoveAttr(node Node, key string)
	ParentOf(node Node) Node
	NextSibling(node Node) Node
}

// ComponentManager creates and maintains the instances behind component
// placeholders.
type ComponentManager interface {
	// Create instantiates and renders the component for vnode, setting
	// vnode.Component.Instance. The instance's host tree is not yet
	// attached.
	Create(vnode *VNode)
	// Prepatch moves the instance from old to vnode and passes the new
	// props and slot content down.
	Prepatch(old, vnode *VNode)
	// Insert is called once the placeholder's host node is in the tree.
	Insert(vnode *VNode)
	// Destroy is called when the placeholder leaves the tree.
	Destroy(vnode *VNode)
}
