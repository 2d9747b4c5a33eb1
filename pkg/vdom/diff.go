package vdom

// Diff compares two VNode trees and returns the patches needed to transform prev into next.
//
// Children are matched by position. A node whose kind, tag, key or event
// bindings changed is replaced wholesale so renderers never have to rebind
// listeners. Extra trailing children in next are appended; extra trailing
// children in prev are removed, highest index first.
func Diff(prev, next *VNode) []Patch {
	var patches []Patch
	switch {
	case prev == nil && next == nil:
	case prev == nil:
		patches = append(patches, Patch{Op: PatchReplaceNode, Node: next})
	case next == nil:
		patches = append(patches, Patch{Op: PatchRemoveNode})
	default:
		diff(prev, next, nil, &patches)
	}
	return patches
}

// diff recursively compares nodes and appends patches.
func diff(prev, next *VNode, path []int, patches *[]Patch) {
	if needsReplace(prev, next) {
		*patches = append(*patches, Patch{Op: PatchReplaceNode, Path: path, Node: next})
		return
	}

	switch prev.Kind {
	case KindText:
		if prev.Text != next.Text {
			*patches = append(*patches, Patch{Op: PatchSetText, Path: path, Value: next.Text})
		}
	case KindElement:
		diffAttrs(prev, next, path, patches)
		diffChildren(prev, next, path, patches)
	case KindFragment:
		diffChildren(prev, next, path, patches)
	}
}

func needsReplace(prev, next *VNode) bool {
	if prev.Kind != next.Kind || prev.Tag != next.Tag || prev.Key != next.Key {
		return true
	}
	if len(prev.Events) != len(next.Events) {
		return true
	}
	for ev, action := range prev.Events {
		if next.Events[ev] != action {
			return true
		}
	}
	return false
}

// diffAttrs compares and patches attributes.
func diffAttrs(prev, next *VNode, path []int, patches *[]Patch) {
	nextVals := make(map[string]string, len(next.Attrs))
	for _, a := range next.Attrs {
		nextVals[a.Key] = a.Value
	}
	prevVals := make(map[string]string, len(prev.Attrs))
	for _, a := range prev.Attrs {
		prevVals[a.Key] = a.Value
		if _, ok := nextVals[a.Key]; !ok {
			*patches = append(*patches, Patch{Op: PatchRemoveAttr, Path: path, Key: a.Key})
		}
	}
	for _, a := range next.Attrs {
		if old, ok := prevVals[a.Key]; !ok || old != a.Value {
			*patches = append(*patches, Patch{Op: PatchSetAttr, Path: path, Key: a.Key, Value: a.Value})
			prevVals[a.Key] = a.Value
		}
	}
}

// diffChildren handles children using positional matching.
func diffChildren(prev, next *VNode, path []int, patches *[]Patch) {
	common := min(len(prev.Children), len(next.Children))
	for i := 0; i < common; i++ {
		diff(prev.Children[i], next.Children[i], childPath(path, i), patches)
	}
	for i := common; i < len(next.Children); i++ {
		*patches = append(*patches, Patch{Op: PatchInsertNode, Path: path, Node: next.Children[i]})
	}
	for i := len(prev.Children) - 1; i >= common; i-- {
		*patches = append(*patches, Patch{Op: PatchRemoveNode, Path: childPath(path, i)})
	}
}

func childPath(path []int, i int) []int {
	out := make([]int, len(path)+1)
	copy(out, path)
	out[len(path)] = i
	return out
}
