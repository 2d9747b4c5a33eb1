package dom_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/wcdk/pkg/dom"
	"github.com/vango-dev/wcdk/pkg/dom/memdom"
	"github.com/vango-dev/wcdk/pkg/vdom"
)

func button(event, action string, children ...*vdom.VNode) *vdom.VNode {
	b := vdom.Element("button", nil, children...)
	b.Events = map[string]string{event: action}
	return b
}

func TestRenderTree(t *testing.T) {
	doc := memdom.New()
	tree := vdom.Element("div", []vdom.Attr{{Key: "id", Value: "app"}},
		vdom.Element("h1", nil, vdom.Text("Title")),
		vdom.Text(""),
		vdom.Element("p", []vdom.Attr{{Key: "class", Value: "body"}}, vdom.Text("x")),
	)

	require.NoError(t, dom.Render(tree, doc, nil))
	assert.Equal(t, `<div id="app"><h1>Title</h1><p class="body">x</p></div>`, doc.HTML())
}

func TestRenderReplacesPreviousChildren(t *testing.T) {
	doc := memdom.New()
	require.NoError(t, dom.Render(vdom.Text("one"), doc, nil))
	require.NoError(t, dom.Render(vdom.Text("two"), doc, nil))
	assert.Equal(t, "two", doc.HTML())

	require.NoError(t, dom.Render(nil, doc, nil))
	assert.Equal(t, "", doc.HTML())
}

func TestRenderFragmentRoot(t *testing.T) {
	doc := memdom.New()
	tree := vdom.Fragment(vdom.Element("h1", nil), vdom.Element("p", nil))

	require.NoError(t, dom.Render(tree, doc, nil))
	assert.Len(t, doc.Children(), 2)
	assert.Equal(t, `<h1></h1><p></p>`, doc.HTML())
}

func TestRenderBindsActions(t *testing.T) {
	doc := memdom.New()
	clicks := 0
	actions := dom.Actions{"inc": func() { clicks++ }}

	require.NoError(t, dom.Render(button("click", "inc", vdom.Text("+")), doc, actions))

	require.NoError(t, doc.Dispatch([]int{0}, "click"))
	require.NoError(t, doc.Dispatch([]int{0}, "click"))
	assert.Equal(t, 2, clicks)
}

func TestRenderEventIsolation(t *testing.T) {
	doc := memdom.New()
	ok := 0
	actions := dom.Actions{"ok": func() { ok++ }}
	tree := vdom.Element("section", []vdom.Attr{{Key: "class", Value: "s"}},
		button("click", "missing", vdom.Text("broken")),
		button("click", "ok", vdom.Text("works")),
		vdom.Element("p", nil, vdom.Text("after")),
	)

	err := dom.Render(tree, doc, actions)
	require.Error(t, err)

	missing := dom.MissingActions(err)
	require.Len(t, missing, 1)
	assert.Equal(t, &dom.ActionNotFoundError{Tag: "button", Event: "click", Action: "missing"}, missing[0])
	assert.Contains(t, err.Error(), `action "missing" not found`)

	// The failing element, its siblings and its ancestor all rendered.
	assert.Equal(t,
		`<section class="s"><button>broken</button><button>works</button><p>after</p></section>`,
		doc.HTML())

	require.NoError(t, doc.Dispatch([]int{0, 1}, "click"))
	assert.Equal(t, 1, ok)
	assert.ErrorIs(t, doc.Dispatch([]int{0, 0}, "click"), memdom.ErrNoListener)
}

func TestMissingActionsNil(t *testing.T) {
	assert.Empty(t, dom.MissingActions(nil))
}
