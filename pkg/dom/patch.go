package dom

import (
	"errors"

	"github.com/vango-dev/wcdk/pkg/vdom"
)

// Patch transforms the target from prev to next by applying vdom.Diff.
//
// It falls back to Render when the target does not implement Patcher, when
// either tree is nil, when the root itself must be replaced, or when any node
// addressed by the diff cannot be found. Like Render, the result reports every
// binding in next whose action is missing. All target nodes are resolved before
// the first mutation so removals never shift later paths.
func Patch(target Target, prev, next *vdom.VNode, actions Actions) error {
	p, ok := target.(Patcher)
	if !ok || prev == nil || next == nil || nestedFragment(prev) || nestedFragment(next) {
		return Render(next, target, actions)
	}

	patches := vdom.Diff(prev, next)
	type step struct {
		patch vdom.Patch
		node  Node // nil for an insert at the target itself
	}
	steps := make([]step, 0, len(patches))
	for _, pt := range patches {
		if len(pt.Path) == 0 && pt.Op != vdom.PatchInsertNode &&
			(prev.Kind == vdom.KindFragment || pt.Op == vdom.PatchReplaceNode || pt.Op == vdom.PatchRemoveNode) {
			return Render(next, target, actions)
		}
		if pt.Op == vdom.PatchInsertNode && len(pt.Path) == 0 && prev.Kind == vdom.KindFragment {
			steps = append(steps, step{patch: pt})
			continue
		}
		n, found := p.Lookup(targetPath(prev, pt.Path))
		if !found {
			return Render(next, target, actions)
		}
		steps = append(steps, step{patch: pt, node: n})
	}

	// Missing bindings are collected from all of next below, including nodes
	// the diff left untouched, so build's own reports are dropped.
	var dropped []error
	for _, s := range steps {
		switch s.patch.Op {
		case vdom.PatchSetText:
			p.SetText(s.node, s.patch.Value)
		case vdom.PatchSetAttr:
			if el, ok := s.node.(Element); ok {
				el.SetAttribute(s.patch.Key, s.patch.Value)
			}
		case vdom.PatchRemoveAttr:
			if el, ok := s.node.(Element); ok {
				p.RemoveAttribute(el, s.patch.Key)
			}
		case vdom.PatchRemoveNode:
			p.RemoveNode(s.node)
		case vdom.PatchInsertNode:
			built := build(s.patch.Node, target, actions, &dropped)
			for _, n := range built {
				if s.node == nil {
					p.AppendChild(n)
				} else if el, ok := s.node.(Element); ok {
					el.AppendChild(n)
				}
			}
		case vdom.PatchReplaceNode:
			built := build(s.patch.Node, target, actions, &dropped)
			if len(built) == 1 {
				p.ReplaceNode(s.node, built[0])
			}
		}
	}
	return errors.Join(unbound(next, actions)...)
}

// targetPath maps a VNode path to a path among the target's children.
// A fragment root contributes its children directly to the target.
func targetPath(root *vdom.VNode, path []int) []int {
	if root.Kind == vdom.KindFragment {
		return path
	}
	return append([]int{0}, path...)
}

func nestedFragment(root *vdom.VNode) bool {
	found := false
	root.Walk(func(n *vdom.VNode, path []int) {
		if len(path) > 0 && n.Kind == vdom.KindFragment {
			found = true
		}
	})
	return found
}
