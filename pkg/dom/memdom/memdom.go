// Package memdom is an in-memory render target.
//
// Documents are backed by golang.org/x/net/html nodes, so the rendered tree
// can be serialized with HTML and inspected or driven without a browser:
// Dispatch fires the listeners registered on an element exactly as a browser
// event would. memdom is used for server-side previews, the CLI and tests.
package memdom

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/vango-dev/wcdk/pkg/dom"
)

var (
	// ErrNoNode is returned when a path does not address a node.
	ErrNoNode = errors.New("memdom: no node at path")
	// ErrNoListener is returned when a dispatched event has no listener.
	ErrNoListener = errors.New("memdom: no listener for event")
)

// Document is an in-memory render target. It is not safe for concurrent use.
type Document struct {
	root      *html.Node
	listeners map[*html.Node]map[string][]func()
	clears    int
}

// New creates an empty document.
func New() *Document {
	return &Document{
		root:      &html.Node{Type: html.DocumentNode},
		listeners: make(map[*html.Node]map[string][]func()),
	}
}

var (
	_ dom.Patcher = (*Document)(nil)
	_ dom.Element = (*Node)(nil)
)

// Node is a node in a Document.
type Node struct {
	doc *Document
	n   *html.Node
}

// NodeName returns the tag name for elements and "#text" for text.
func (n *Node) NodeName() string {
	if n.n.Type == html.TextNode {
		return "#text"
	}
	return n.n.Data
}

// Tag returns the element tag, or "" for text.
func (n *Node) Tag() string {
	if n.n.Type != html.ElementNode {
		return ""
	}
	return n.n.Data
}

// Text returns the concatenated text content of n.
func (n *Node) Text() string {
	if n.n.Type == html.TextNode {
		return n.n.Data
	}
	var b strings.Builder
	var visit func(*html.Node)
	visit = func(h *html.Node) {
		if h.Type == html.TextNode {
			b.WriteString(h.Data)
		}
		for c := h.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n.n)
	return b.String()
}

// Attr returns the value of an attribute.
func (n *Node) Attr(key string) (string, bool) {
	for _, a := range n.n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// Children returns the child nodes of n.
func (n *Node) Children() []*Node {
	return n.doc.wrapChildren(n.n)
}

// SetAttribute sets or replaces an attribute.
func (n *Node) SetAttribute(key, value string) {
	for i := range n.n.Attr {
		if n.n.Attr[i].Key == key {
			n.n.Attr[i].Val = value
			return
		}
	}
	n.n.Attr = append(n.n.Attr, html.Attribute{Key: key, Val: value})
}

// AddEventListener registers listener for event on n.
func (n *Node) AddEventListener(event string, listener func()) {
	byEvent := n.doc.listeners[n.n]
	if byEvent == nil {
		byEvent = make(map[string][]func())
		n.doc.listeners[n.n] = byEvent
	}
	byEvent[event] = append(byEvent[event], listener)
}

// AppendChild appends child to n.
func (n *Node) AppendChild(child dom.Node) {
	n.n.AppendChild(n.doc.unwrap(child))
}

// HTML serializes n and its subtree.
func (n *Node) HTML() string {
	var b strings.Builder
	_ = html.Render(&b, n.n)
	return b.String()
}

// CreateElement creates a detached element.
func (d *Document) CreateElement(tag string) dom.Element {
	return &Node{doc: d, n: &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}}
}

// CreateTextNode creates a detached text node.
func (d *Document) CreateTextNode(text string) dom.Node {
	return &Node{doc: d, n: &html.Node{Type: html.TextNode, Data: text}}
}

// ClearChildren removes every top-level node and its listeners.
func (d *Document) ClearChildren() {
	d.clears++
	for c := d.root.FirstChild; c != nil; {
		next := c.NextSibling
		d.detach(c)
		c = next
	}
}

// AppendChild appends a top-level node.
func (d *Document) AppendChild(child dom.Node) {
	d.root.AppendChild(d.unwrap(child))
}

// Lookup resolves a path of child indices from the document root.
func (d *Document) Lookup(path []int) (dom.Node, bool) {
	h := d.find(path)
	if h == nil {
		return nil, false
	}
	return &Node{doc: d, n: h}, true
}

// SetText replaces the data of a text node.
func (d *Document) SetText(n dom.Node, text string) {
	d.unwrap(n).Data = text
}

// RemoveAttribute removes an attribute from el.
func (d *Document) RemoveAttribute(el dom.Element, key string) {
	h := d.unwrap(el)
	attrs := h.Attr[:0]
	for _, a := range h.Attr {
		if a.Key != key {
			attrs = append(attrs, a)
		}
	}
	h.Attr = attrs
}

// ReplaceNode swaps old for replacement in old's parent.
func (d *Document) ReplaceNode(old, replacement dom.Node) {
	o := d.unwrap(old)
	if o.Parent == nil {
		return
	}
	o.Parent.InsertBefore(d.unwrap(replacement), o)
	d.detach(o)
}

// RemoveNode detaches n and drops its listeners.
func (d *Document) RemoveNode(n dom.Node) {
	if h := d.unwrap(n); h.Parent != nil {
		d.detach(h)
	}
}

// Children returns the top-level nodes.
func (d *Document) Children() []*Node {
	return d.wrapChildren(d.root)
}

// HTML serializes the whole document.
func (d *Document) HTML() string {
	var b strings.Builder
	_ = html.Render(&b, d.root)
	return b.String()
}

// rawText lists the elements whose text html.Render writes unescaped.
var rawText = map[string]bool{
	"iframe": true, "noembed": true, "noframes": true, "noscript": true,
	"plaintext": true, "script": true, "style": true, "xmp": true,
}

// EmbedHTML serializes the document like HTML but writes "</" inside raw
// text elements as "<\/", so text from component state cannot close a
// script or style element when the markup is embedded in a page.
func (d *Document) EmbedHTML() string {
	type saved struct {
		n    *html.Node
		data string
	}
	var changed []saved
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode && n.Parent != nil && n.Parent.Type == html.ElementNode &&
			rawText[n.Parent.Data] && strings.Contains(n.Data, "</") {
			changed = append(changed, saved{n, n.Data})
			n.Data = strings.ReplaceAll(n.Data, "</", `<\/`)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(d.root)
	out := d.HTML()
	for _, s := range changed {
		s.n.Data = s.data
	}
	return out
}

// Text returns the text content of the whole document.
func (d *Document) Text() string {
	return (&Node{doc: d, n: d.root}).Text()
}

// Clears reports how many times the document was fully cleared.
func (d *Document) Clears() int {
	return d.clears
}

// Listeners reports how many listeners are registered on live nodes.
func (d *Document) Listeners() int {
	total := 0
	for _, byEvent := range d.listeners {
		for _, fns := range byEvent {
			total += len(fns)
		}
	}
	return total
}

// Find returns the path of the first element with the given tag in document
// order.
func (d *Document) Find(tag string) ([]int, bool) {
	var walk func(h *html.Node, path []int) ([]int, bool)
	walk = func(h *html.Node, path []int) ([]int, bool) {
		i := 0
		for c := h.FirstChild; c != nil; c = c.NextSibling {
			p := append(path[:len(path):len(path)], i)
			if c.Type == html.ElementNode && c.Data == tag {
				return p, true
			}
			if found, ok := walk(c, p); ok {
				return found, true
			}
			i++
		}
		return nil, false
	}
	return walk(d.root, nil)
}

// Dispatch fires event on the node at path, calling its listeners in
// registration order.
func (d *Document) Dispatch(path []int, event string) error {
	h := d.find(path)
	if h == nil {
		return fmt.Errorf("%w %v", ErrNoNode, path)
	}
	fns := append([]func(){}, d.listeners[h][event]...)
	if len(fns) == 0 {
		return fmt.Errorf("%w %q at %v", ErrNoListener, event, path)
	}
	for _, fn := range fns {
		fn()
	}
	return nil
}

func (d *Document) find(path []int) *html.Node {
	h := d.root
	for _, idx := range path {
		if idx < 0 {
			return nil
		}
		c := h.FirstChild
		for i := 0; c != nil && i < idx; i++ {
			c = c.NextSibling
		}
		if c == nil {
			return nil
		}
		h = c
	}
	if h == d.root {
		return nil
	}
	return h
}

func (d *Document) detach(h *html.Node) {
	if h.Parent != nil {
		h.Parent.RemoveChild(h)
	}
	var drop func(*html.Node)
	drop = func(x *html.Node) {
		delete(d.listeners, x)
		for c := x.FirstChild; c != nil; c = c.NextSibling {
			drop(c)
		}
	}
	drop(h)
}

func (d *Document) wrapChildren(h *html.Node) []*Node {
	var out []*Node
	for c := h.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, &Node{doc: d, n: c})
	}
	return out
}

func (d *Document) unwrap(n dom.Node) *html.Node {
	mn, ok := n.(*Node)
	if !ok || mn.doc != d {
		panic(fmt.Sprintf("memdom: node %T does not belong to this document", n))
	}
	return mn.n
}
