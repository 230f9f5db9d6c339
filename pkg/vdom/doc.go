// Package vdom describes rendered trees as VNodes and reconciles them
// against a host.
//
// # Core Types
//
// VNode is an immutable description of an element, text, comment or
// component placeholder. Data carries its key, host attributes and, for
// components, the props passed down.
//
// # Creating Nodes
//
// CreateElement resolves a tag against the platform and the rendering
// Context and normalizes children. H is the variadic form used in
// hand-written render functions:
//
//	H(ctx, "ul",
//	    H(ctx, "li", Key(1), "first"),
//	    H(ctx, "li", Key(2), "second"),
//	)
//
// # Patching
//
// Patcher.Patch brings a Host from one tree to the next. Children are
// matched by key with four cursors over the old and new lists, so a
// rotation costs one move. Component placeholders are delegated to a
// ComponentManager.
//
// MemoryHost is an in-memory Host that records each operation as a
// Patch; Render and Digest serialize its trees.
package vdom
