package vdom

// VKind is the node type discriminator.
type VKind uint8

const (
	KindElement  VKind = iota // <div>, <button>, etc.
	KindText                  // Plain text node
	KindFragment              // Grouping without wrapper
)

// String returns the string representation of the VKind.
func (k VKind) String() string {
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

// Attr represents a single plain attribute.
type Attr struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// VNode is the virtual DOM node.
type VNode struct {
	Kind     VKind             `json:"kind"`               // Node type
	Tag      string            `json:"tag,omitempty"`      // Element tag name (e.g., "div")
	Attrs    []Attr            `json:"attrs,omitempty"`    // Plain attributes in template order
	Events   map[string]string `json:"events,omitempty"`   // Event name -> action name
	Children []*VNode          `json:"children,omitempty"` // Child nodes
	Text     string            `json:"text,omitempty"`     // For KindText
	Key      string            `json:"key,omitempty"`      // Reconciliation key
}

// Element creates an element node.
func Element(tag string, attrs []Attr, children ...*VNode) *VNode {
	return &VNode{Kind: KindElement, Tag: tag, Attrs: attrs, Children: children}
}

// Text creates a text node.
func Text(content string) *VNode {
	return &VNode{Kind: KindText, Text: content}
}

// Fragment creates a fragment node.
func Fragment(children ...*VNode) *VNode {
	return &VNode{Kind: KindFragment, Children: children}
}

// Attr returns the value of the attribute named key.
func (v *VNode) Attr(key string) (string, bool) {
	if v == nil {
		return "", false
	}
	for _, a := range v.Attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// IsInteractive returns true if this node has event bindings.
func (v *VNode) IsInteractive() bool {
	return v != nil && v.Kind == KindElement && len(v.Events) > 0
}

// At returns the node reached by following path from v, or nil.
func (v *VNode) At(path []int) *VNode {
	n := v
	for _, i := range path {
		if n == nil || i < 0 || i >= len(n.Children) {
			return nil
		}
		n = n.Children[i]
	}
	return n
}

// Walk visits v and its descendants depth-first in document order.
func (v *VNode) Walk(fn func(n *VNode, path []int)) {
	walk(v, nil, fn)
}

func walk(v *VNode, path []int, fn func(*VNode, []int)) {
	if v == nil {
		return
	}
	fn(v, path)
	for i, c := range v.Children {
		walk(c, append(path[:len(path):len(path)], i), fn)
	}
}
