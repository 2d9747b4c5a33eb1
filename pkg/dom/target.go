package dom

// Node is a materialized node owned by a Target.
type Node interface {
	NodeName() string
}

// Element is a materialized element.
type Element interface {
	Node
	SetAttribute(key, value string)
	AddEventListener(event string, listener func())
	AppendChild(child Node)
}

// Target is the container a component renders into.
type Target interface {
	CreateElement(tag string) Element
	CreateTextNode(text string) Node
	ClearChildren()
	AppendChild(child Node)
}

// Patcher is implemented by targets that can be mutated in place.
//
// Paths are child indices starting at the target's own children: [0] is the
// first top-level node.
type Patcher interface {
	Target
	Lookup(path []int) (Node, bool)
	SetText(n Node, text string)
	RemoveAttribute(el Element, key string)
	ReplaceNode(old, replacement Node)
	RemoveNode(n Node)
}
