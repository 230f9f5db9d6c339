package vdom

// voidElements are elements that cannot have children.
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// IsVoidElement returns true if the tag is a void element.
func IsVoidElement(tag string) bool {
	return voidElements[tag]
}

// Element factories for contexts that never resolve components.

func Div(args ...any) *VNode    { return H(nil, "div", args...) }
func Span(args ...any) *VNode   { return H(nil, "span", args...) }
func P(args ...any) *VNode      { return H(nil, "p", args...) }
func Ul(args ...any) *VNode     { return H(nil, "ul", args...) }
func Li(args ...any) *VNode     { return H(nil, "li", args...) }
func Button(args ...any) *VNode { return H(nil, "button", args...) }
func Input(args ...any) *VNode  { return H(nil, "input", args...) }
func Svg(args ...any) *VNode    { return H(nil, "svg", args...) }

// Text creates a text node.
func Text(s string) *VNode {
	return NewText(s)
}

// Key returns Data carrying only a key.
func Key(k any) *Data {
	return &Data{Key: k}
}

// Attrs returns Data carrying host attributes.
func Attrs(attrs Props) *Data {
	return &Data{Attrs: attrs}
}
