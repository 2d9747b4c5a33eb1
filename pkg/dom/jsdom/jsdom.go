//go:build js && wasm

package jsdom

import (
	"syscall/js"

	"github.com/vango-dev/wcdk/pkg/dom"
)

// listenerProp is the JS property holding an element's listener id.
const listenerProp = "__wcdkListeners"

// Root is a render target backed by a DOM node, normally a shadow root.
type Root struct {
	doc    js.Value
	root   js.Value
	nextID int
	funcs  map[int][]js.Func
}

var _ dom.Patcher = (*Root)(nil)

// New wraps an existing container node.
func New(container js.Value) *Root {
	return &Root{
		doc:   js.Global().Get("document"),
		root:  container,
		funcs: make(map[int][]js.Func),
	}
}

// AttachShadow opens a shadow root on host, or reuses the open one, and
// returns a Root over a container element inside it. Styles injected next to
// the container survive renders.
func AttachShadow(host js.Value) *Root {
	shadow := host.Get("shadowRoot")
	if shadow.IsNull() || shadow.IsUndefined() {
		opts := js.Global().Get("Object").New()
		opts.Set("mode", "open")
		shadow = host.Call("attachShadow", opts)
	}
	doc := js.Global().Get("document")
	container := doc.Call("createElement", "div")
	container.Call("setAttribute", "part", "root")
	shadow.Call("appendChild", container)
	return New(container)
}

// InjectStyle inserts a <style> element before the container, outside the
// nodes Render replaces. It does nothing for a detached container.
func (r *Root) InjectStyle(css string) {
	el := r.doc.Call("createElement", "style")
	el.Set("textContent", css)
	r.root.Call("before", el)
}

// Container returns the node renders go into.
func (r *Root) Container() js.Value { return r.root }

// Node wraps a DOM node.
type Node struct {
	r *Root
	v js.Value
}

// Value returns the underlying JS value.
func (n *Node) Value() js.Value { return n.v }

// NodeName returns the DOM nodeName.
func (n *Node) NodeName() string { return n.v.Get("nodeName").String() }

// SetAttribute sets an attribute.
func (n *Node) SetAttribute(key, value string) { n.v.Call("setAttribute", key, value) }

// AddEventListener binds listener to event.
func (n *Node) AddEventListener(event string, listener func()) {
	id := n.v.Get(listenerProp)
	if id.IsUndefined() {
		n.r.nextID++
		n.v.Set(listenerProp, n.r.nextID)
		id = n.v.Get(listenerProp)
	}
	fn := js.FuncOf(func(this js.Value, args []js.Value) any {
		listener()
		return nil
	})
	n.r.funcs[id.Int()] = append(n.r.funcs[id.Int()], fn)
	n.v.Call("addEventListener", event, fn)
}

// AppendChild appends child.
func (n *Node) AppendChild(child dom.Node) { n.v.Call("appendChild", unwrap(child)) }

// CreateElement creates a detached element.
func (r *Root) CreateElement(tag string) dom.Element {
	return &Node{r: r, v: r.doc.Call("createElement", tag)}
}

// CreateTextNode creates a detached text node.
func (r *Root) CreateTextNode(text string) dom.Node {
	return &Node{r: r, v: r.doc.Call("createTextNode", text)}
}

// ClearChildren removes every child and releases all listeners.
func (r *Root) ClearChildren() {
	r.root.Set("textContent", "")
	for id, fns := range r.funcs {
		for _, fn := range fns {
			fn.Release()
		}
		delete(r.funcs, id)
	}
}

// AppendChild appends a top-level node.
func (r *Root) AppendChild(child dom.Node) { r.root.Call("appendChild", unwrap(child)) }

// Lookup resolves a path of childNodes indices.
func (r *Root) Lookup(path []int) (dom.Node, bool) {
	if len(path) == 0 {
		return nil, false
	}
	v := r.root
	for _, i := range path {
		kids := v.Get("childNodes")
		if i < 0 || i >= kids.Length() {
			return nil, false
		}
		v = kids.Index(i)
	}
	return &Node{r: r, v: v}, true
}

// SetText sets the data of a text node.
func (r *Root) SetText(n dom.Node, text string) { unwrap(n).Set("data", text) }

// RemoveAttribute removes an attribute.
func (r *Root) RemoveAttribute(el dom.Element, key string) { unwrap(el).Call("removeAttribute", key) }

// ReplaceNode swaps old for replacement.
func (r *Root) ReplaceNode(old, replacement dom.Node) {
	o := unwrap(old)
	r.release(o)
	o.Call("replaceWith", unwrap(replacement))
}

// RemoveNode removes n from its parent.
func (r *Root) RemoveNode(n dom.Node) {
	v := unwrap(n)
	r.release(v)
	v.Call("remove")
}

// release frees the listener funcs bound in the subtree rooted at v.
func (r *Root) release(v js.Value) {
	if v.Get("nodeType").Int() != 1 {
		return
	}
	r.releaseOne(v)
	all := v.Call("querySelectorAll", "*")
	for i := 0; i < all.Length(); i++ {
		r.releaseOne(all.Index(i))
	}
}

func (r *Root) releaseOne(v js.Value) {
	id := v.Get(listenerProp)
	if id.IsUndefined() {
		return
	}
	for _, fn := range r.funcs[id.Int()] {
		fn.Release()
	}
	delete(r.funcs, id.Int())
}

func unwrap(n dom.Node) js.Value {
	return n.(*Node).v
}
