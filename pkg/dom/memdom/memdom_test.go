package memdom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentBuildAndSerialize(t *testing.T) {
	d := New()
	div := d.CreateElement("div")
	div.SetAttribute("class", "card")
	div.SetAttribute("title", `a "quoted" <value>`)
	div.AppendChild(d.CreateTextNode("1 < 2 & 3"))
	br := d.CreateElement("br")
	div.AppendChild(br)
	d.AppendChild(div)

	assert.Equal(t,
		`<div class="card" title="a &#34;quoted&#34; &lt;value&gt;">1 &lt; 2 &amp; 3<br/></div>`,
		d.HTML())
	assert.Equal(t, "1 < 2 & 3", d.Text())
}

func TestSetAttributeReplaces(t *testing.T) {
	d := New()
	el := d.CreateElement("p")
	el.SetAttribute("id", "a")
	el.SetAttribute("id", "b")
	d.AppendChild(el)

	n := d.Children()[0]
	v, ok := n.Attr("id")
	require.True(t, ok)
	assert.Equal(t, "b", v)
	assert.Equal(t, `<p id="b"></p>`, d.HTML())
}

func TestDispatch(t *testing.T) {
	d := New()
	outer := d.CreateElement("div")
	btn := d.CreateElement("button")
	var calls []string
	btn.AddEventListener("click", func() { calls = append(calls, "first") })
	btn.AddEventListener("click", func() { calls = append(calls, "second") })
	outer.AppendChild(d.CreateTextNode(""))
	outer.AppendChild(btn)
	d.AppendChild(outer)

	path, ok := d.Find("button")
	require.True(t, ok)
	assert.Equal(t, []int{0, 1}, path)

	require.NoError(t, d.Dispatch(path, "click"))
	assert.Equal(t, []string{"first", "second"}, calls)

	assert.ErrorIs(t, d.Dispatch(path, "input"), ErrNoListener)
	assert.ErrorIs(t, d.Dispatch([]int{3}, "click"), ErrNoNode)
	assert.ErrorIs(t, d.Dispatch(nil, "click"), ErrNoNode)
}

func TestClearDropsListeners(t *testing.T) {
	d := New()
	btn := d.CreateElement("button")
	btn.AddEventListener("click", func() {})
	d.AppendChild(btn)
	require.Equal(t, 1, d.Listeners())

	d.ClearChildren()
	assert.Equal(t, 0, d.Listeners())
	assert.Equal(t, 1, d.Clears())
	assert.Empty(t, d.Children())
	assert.Equal(t, "", d.HTML())
}

func TestPatchOperations(t *testing.T) {
	d := New()
	ul := d.CreateElement("ul")
	ul.SetAttribute("class", "x")
	for _, s := range []string{"a", "b"} {
		li := d.CreateElement("li")
		li.AppendChild(d.CreateTextNode(s))
		ul.AppendChild(li)
	}
	d.AppendChild(ul)

	text, ok := d.Lookup([]int{0, 0, 0})
	require.True(t, ok)
	assert.Equal(t, "#text", text.NodeName())
	d.SetText(text, "A")

	root, _ := d.Lookup([]int{0})
	d.RemoveAttribute(root.(*Node), "class")

	second, _ := d.Lookup([]int{0, 1})
	d.ReplaceNode(second, d.CreateElement("hr"))

	assert.Equal(t, `<ul><li>A</li><hr/></ul>`, d.HTML())

	first, _ := d.Lookup([]int{0, 0})
	d.RemoveNode(first)
	assert.Equal(t, `<ul><hr/></ul>`, d.HTML())

	_, ok = d.Lookup([]int{0, 5})
	assert.False(t, ok)
}

func TestForeignNodePanics(t *testing.T) {
	a, b := New(), New()
	el := a.CreateElement("div")
	assert.Panics(t, func() { b.AppendChild(el) })
}

func TestEmbedHTMLEscapesRawTextClose(t *testing.T) {
	d := New()
	script := d.CreateElement("script")
	script.AppendChild(d.CreateTextNode(`x = "</script><img src=x>"`))
	p := d.CreateElement("p")
	p.AppendChild(d.CreateTextNode("</p>"))
	d.AppendChild(script)
	d.AppendChild(p)

	assert.Equal(t, `<script>x = "<\/script><img src=x>"</script><p>&lt;/p&gt;</p>`, d.EmbedHTML())
	assert.Equal(t, `<script>x = "</script><img src=x>"</script><p>&lt;/p&gt;</p>`, d.HTML())
}
