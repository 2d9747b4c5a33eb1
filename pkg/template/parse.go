package template

import (
	"strings"

	"golang.org/x/net/html"
)

// voidElements cannot have children and have no closing tag.
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

// IsVoid reports whether tag is a void element.
func IsVoid(tag string) bool {
	return voidElements[tag]
}

// Parse compiles markup into a node tree.
//
// Element and attribute order are preserved. Text is trimmed; whitespace-only
// text is kept as an empty text node so positions line up with the markup.
// Comments and doctypes are dropped. When the markup has a single top-level
// node it is returned directly, otherwise the nodes are wrapped in a fragment.
func Parse(markup string) *Node {
	root := &Node{Kind: KindFragment}
	stack := []*Node{root}
	top := func() *Node { return stack[len(stack)-1] }

	z := html.NewTokenizer(strings.NewReader(strings.TrimSpace(markup)))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			// io.EOF or a tokenizer error; whatever was read so far is the tree.
			return finish(root)

		case html.TextToken:
			p := top()
			p.Children = append(p.Children, Text(strings.TrimSpace(string(z.Text()))))

		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			el := &Node{Kind: KindElement, Tag: tok.Data, Attrs: convertAttrs(tok.Attr)}
			p := top()
			p.Children = append(p.Children, el)
			if tt == html.StartTagToken && !IsVoid(el.Tag) {
				stack = append(stack, el)
			}

		case html.EndTagToken:
			tok := z.Token()
			// Close the nearest open element with this tag, implicitly closing
			// anything opened after it. Unmatched end tags are ignored.
			for i := len(stack) - 1; i > 0; i-- {
				if stack[i].Tag == tok.Data {
					stack = stack[:i]
					break
				}
			}
		}
	}
}

func convertAttrs(attrs []html.Attribute) []Attr {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]Attr, len(attrs))
	for i, a := range attrs {
		key := a.Key
		if a.Namespace != "" {
			key = a.Namespace + ":" + a.Key
		}
		out[i] = Attr{Key: key, Value: a.Val}
	}
	return out
}

func finish(root *Node) *Node {
	if len(root.Children) == 1 {
		return root.Children[0]
	}
	return root
}
