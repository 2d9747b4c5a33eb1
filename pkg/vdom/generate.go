package vdom

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/vango-dev/wcdk/pkg/expr"
	"github.com/vango-dev/wcdk/pkg/template"
)

// EventPrefix marks a template attribute as an event binding.
const EventPrefix = "@"

// KeyAttr is the template attribute copied into VNode.Key.
const KeyAttr = "key"

// Generator turns template trees into VNode trees.
type Generator struct {
	eval *expr.Evaluator
}

// NewGenerator creates a Generator that evaluates placeholders with ev.
// A nil ev gets a fresh evaluator.
func NewGenerator(ev *expr.Evaluator) *Generator {
	if ev == nil {
		ev = expr.New()
	}
	return &Generator{eval: ev}
}

var defaultGenerator = sync.OnceValue(func() *Generator {
	return NewGenerator(nil)
})

// Generate builds a VNode tree from ast using the default Generator.
func Generate(ast *template.Node, state map[string]any) (*VNode, error) {
	return defaultGenerator().Generate(ast, state)
}

// Generate builds a VNode tree from ast, resolving {{expr}} placeholders in
// text and attribute values against state.
//
// The result always has the same shape as ast. A placeholder that cannot be
// evaluated renders as the empty string; all such failures are joined into
// the returned error alongside the complete tree. Event bindings are copied
// without checking that the named action exists.
func (g *Generator) Generate(ast *template.Node, state map[string]any) (*VNode, error) {
	if ast == nil {
		return nil, nil
	}
	var errs []error
	v := g.node(ast, state, &errs)
	return v, errors.Join(errs...)
}

func (g *Generator) node(n *template.Node, state map[string]any, errs *[]error) *VNode {
	switch n.Kind {
	case template.KindText:
		return &VNode{Kind: KindText, Text: g.interpolate(n.Content, state, "text", errs)}

	case template.KindElement:
		v := &VNode{Kind: KindElement, Tag: n.Tag}
		for _, a := range n.Attrs {
			switch {
			case strings.HasPrefix(a.Key, EventPrefix):
				if v.Events == nil {
					v.Events = make(map[string]string)
				}
				v.Events[a.Key[len(EventPrefix):]] = actionName(a.Value)
			case a.Key == KeyAttr:
				v.Key = g.interpolate(a.Value, state, "<"+n.Tag+" key>", errs)
			default:
				v.Attrs = append(v.Attrs, Attr{
					Key:   a.Key,
					Value: g.interpolate(a.Value, state, "<"+n.Tag+" "+a.Key+">", errs),
				})
			}
		}
		v.Children = g.children(n.Children, state, errs)
		return v

	default:
		return &VNode{Kind: KindFragment, Children: g.children(n.Children, state, errs)}
	}
}

func (g *Generator) children(in []*template.Node, state map[string]any, errs *[]error) []*VNode {
	if len(in) == 0 {
		return nil
	}
	out := make([]*VNode, len(in))
	for i, c := range in {
		out[i] = g.node(c, state, errs)
	}
	return out
}

func (g *Generator) interpolate(text string, state map[string]any, where string, errs *[]error) string {
	if !expr.HasPlaceholder(text) {
		return text
	}
	out, err := g.eval.Interpolate(text, state)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", where, err))
	}
	return out
}

// actionName strips an empty call suffix so @click="inc()" binds "inc".
func actionName(v string) string {
	v = strings.TrimSpace(v)
	return strings.TrimSpace(strings.TrimSuffix(v, "()"))
}
