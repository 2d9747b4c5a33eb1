package vdom

import (
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestDiffBothNil(t *testing.T) {
	if patches := Diff(nil, nil); len(patches) != 0 {
		t.Errorf("Expected 0 patches, got %d", len(patches))
	}
}

func TestDiffRootAddedRemoved(t *testing.T) {
	next := Text("x")
	patches := Diff(nil, next)
	if len(patches) != 1 || patches[0].Op != PatchReplaceNode || patches[0].Node != next {
		t.Errorf("Diff(nil, next) = %v", patches)
	}

	patches = Diff(next, nil)
	if len(patches) != 1 || patches[0].Op != PatchRemoveNode || len(patches[0].Path) != 0 {
		t.Errorf("Diff(prev, nil) = %v", patches)
	}
}

func TestDiffTextChange(t *testing.T) {
	prev := Element("p", nil, Text("Hello"))
	next := Element("p", nil, Text("World"))

	patches := Diff(prev, next)

	if len(patches) != 1 {
		t.Fatalf("Expected 1 patch, got %d", len(patches))
	}
	want := Patch{Op: PatchSetText, Path: []int{0}, Value: "World"}
	if !reflect.DeepEqual(patches[0], want) {
		t.Errorf("patch = %v, want %v", patches[0], want)
	}
}

func TestDiffTextUnchanged(t *testing.T) {
	if patches := Diff(Text("Hello"), Text("Hello")); len(patches) != 0 {
		t.Errorf("Expected 0 patches for unchanged text, got %v", patches)
	}
}

func TestDiffKindChange(t *testing.T) {
	prev := Element("div", nil, Text("a"))
	next := Element("div", nil, Element("b", nil))

	patches := Diff(prev, next)
	if len(patches) != 1 || patches[0].Op != PatchReplaceNode {
		t.Fatalf("patches = %v, want one ReplaceNode", patches)
	}
	if !reflect.DeepEqual(patches[0].Path, []int{0}) {
		t.Errorf("Path = %v, want [0]", patches[0].Path)
	}
}

func TestDiffTagAndKeyChange(t *testing.T) {
	if p := Diff(Element("div", nil), Element("span", nil)); len(p) != 1 || p[0].Op != PatchReplaceNode {
		t.Errorf("tag change = %v", p)
	}

	a := Element("li", nil)
	a.Key = "1"
	b := Element("li", nil)
	b.Key = "2"
	if p := Diff(a, b); len(p) != 1 || p[0].Op != PatchReplaceNode {
		t.Errorf("key change = %v", p)
	}
}

func TestDiffEventChangeReplaces(t *testing.T) {
	prev := Element("button", nil)
	prev.Events = map[string]string{"click": "inc"}
	next := Element("button", nil)
	next.Events = map[string]string{"click": "dec"}

	p := Diff(prev, next)
	if len(p) != 1 || p[0].Op != PatchReplaceNode {
		t.Errorf("patches = %v, want one ReplaceNode", p)
	}
}

func TestDiffAttrs(t *testing.T) {
	prev := Element("div", []Attr{{"id", "a"}, {"class", "x"}, {"title", "t"}})
	next := Element("div", []Attr{{"id", "a"}, {"class", "y"}, {"lang", "en"}})

	patches := Diff(prev, next)
	want := []Patch{
		{Op: PatchRemoveAttr, Key: "title"},
		{Op: PatchSetAttr, Key: "class", Value: "y"},
		{Op: PatchSetAttr, Key: "lang", Value: "en"},
	}
	if !reflect.DeepEqual(patches, want) {
		t.Errorf("patches = %v, want %v", patches, want)
	}
}

func TestDiffChildrenInsertRemove(t *testing.T) {
	prev := Element("ul", nil, Element("li", nil), Element("li", nil), Element("li", nil))
	next := Element("ul", nil, Element("li", nil))

	patches := Diff(prev, next)
	want := []Patch{
		{Op: PatchRemoveNode, Path: []int{2}},
		{Op: PatchRemoveNode, Path: []int{1}},
	}
	if !reflect.DeepEqual(patches, want) {
		t.Errorf("remove patches = %v, want %v", patches, want)
	}

	patches = Diff(next, prev)
	if len(patches) != 2 {
		t.Fatalf("insert patches = %v", patches)
	}
	for _, p := range patches {
		if p.Op != PatchInsertNode || len(p.Path) != 0 {
			t.Errorf("patch = %v, want InsertNode at root", p)
		}
	}
}

func TestPatchString(t *testing.T) {
	p := Patch{Op: PatchSetAttr, Path: []int{0, 2}, Key: "class", Value: "x"}
	if got := p.String(); got != `SetAttr /0/2 class="x"` {
		t.Errorf("String() = %s", got)
	}
}

func TestAtAndWalk(t *testing.T) {
	tree := Element("div", nil, Text("a"), Element("p", nil, Text("b")))

	if got := tree.At([]int{1, 0}); got == nil || got.Text != "b" {
		t.Errorf("At([1 0]) = %v", got)
	}
	if tree.At([]int{5}) != nil {
		t.Error("At out of range should be nil")
	}

	var paths [][]int
	tree.Walk(func(n *VNode, path []int) {
		paths = append(paths, append([]int(nil), path...))
	})
	want := [][]int{nil, {0}, {1}, {1, 0}}
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("paths = %v, want %v", paths, want)
	}
}

func TestDiffSelfIsEmpty(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("diff of a tree with itself is empty", prop.ForAll(
		func(texts []string) bool {
			children := make([]*VNode, len(texts))
			for i, s := range texts {
				children[i] = Element("li", []Attr{{"data-i", s}}, Text(s))
			}
			tree := Element("ul", nil, children...)
			return len(Diff(tree, tree)) == 0
		},
		gen.SliceOf(gen.AlphaString()),
	))

	properties.TestingRun(t)
}
