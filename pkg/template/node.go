// Package template compiles component markup into a static node tree.
//
// The tree is built once per component definition and shared by every
// instance and render of that component. Parsing is permissive: no HTML
// validation is performed and unclosed or mismatched tags are closed on a
// best-effort basis.
package template

// Kind is the node type discriminator.
type Kind uint8

const (
	KindElement  Kind = iota // <div>, <button>, etc.
	KindText                 // Text content
	KindFragment             // Root grouping for multi-root markup
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindFragment:
		return "Fragment"
	default:
		return "Unknown"
	}
}

// Attr is a single attribute as written in the markup.
type Attr struct {
	Key   string `json:"key" yaml:"key" cbor:"1,keyasint"`
	Value string `json:"value" yaml:"value" cbor:"2,keyasint"`
}

// Node is a template AST node.
type Node struct {
	Kind     Kind    `json:"kind" yaml:"kind" cbor:"1,keyasint"`
	Tag      string  `json:"tag,omitempty" yaml:"tag,omitempty" cbor:"2,keyasint,omitempty"`
	Attrs    []Attr  `json:"attrs,omitempty" yaml:"attrs,omitempty" cbor:"3,keyasint,omitempty"`
	Children []*Node `json:"children,omitempty" yaml:"children,omitempty" cbor:"4,keyasint,omitempty"`
	Content  string  `json:"content,omitempty" yaml:"content,omitempty" cbor:"5,keyasint,omitempty"`
}

// Element creates an element node.
func Element(tag string, attrs []Attr, children ...*Node) *Node {
	return &Node{Kind: KindElement, Tag: tag, Attrs: attrs, Children: children}
}

// Text creates a text node.
func Text(content string) *Node {
	return &Node{Kind: KindText, Content: content}
}

// Attr returns the value of the first attribute named key.
func (n *Node) Attr(key string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// AttrMap returns the attributes as a map. Later duplicates win.
func (n *Node) AttrMap() map[string]string {
	m := make(map[string]string, len(n.Attrs))
	for _, a := range n.Attrs {
		m[a.Key] = a.Value
	}
	return m
}

// Walk visits n and its descendants depth-first in document order.
// Returning false from fn skips the children of that node.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Count returns the number of element and text nodes in the tree.
// Fragment roots are not counted.
func Count(n *Node) (elements, texts int) {
	n.Walk(func(x *Node) bool {
		switch x.Kind {
		case KindElement:
			elements++
		case KindText:
			texts++
		}
		return true
	})
	return elements, texts
}
