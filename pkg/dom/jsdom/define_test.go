//go:build js && wasm

package jsdom_test

import (
	"syscall/js"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/wcdk/pkg/component"
	"github.com/vango-dev/wcdk/pkg/dom/jsdom"
)

const counterSource = `---
<button @click="increment">{{count}}</button>
---
---
export default {
  name: 'js-counter',
  props: {
    step: (Number, default 1)
  },
  state: {
    count: 0
  },
  methods: {
    increment() { count += step }
  }
}
`

func requireBrowser(t *testing.T) js.Value {
	t.Helper()
	if js.Global().Get("customElements").IsUndefined() || js.Global().Get("document").IsUndefined() {
		t.Skip("no browser DOM")
	}
	return js.Global().Get("document")
}

func TestDefineMountsOnConnect(t *testing.T) {
	doc := requireBrowser(t)

	c, err := component.Load(counterSource)
	require.NoError(t, err)
	reg := component.NewRegistry()
	require.NoError(t, reg.Define("js-counter", c))
	require.NoError(t, jsdom.Define(reg, map[string]string{"js-counter": "button { color: red; }"}))

	el := doc.Call("createElement", "js-counter")
	el.Call("setAttribute", "step", "2")
	doc.Get("body").Call("appendChild", el)

	shadow := el.Get("shadowRoot")
	require.False(t, shadow.IsNull())
	style := shadow.Call("querySelector", "style")
	require.False(t, style.IsNull())
	assert.Equal(t, "button { color: red; }", style.Get("textContent").String())

	inst, ok := jsdom.Instance(el)
	require.True(t, ok)
	assert.Equal(t, component.Mounted, inst.Phase())

	button := shadow.Call("querySelector", "button")
	require.False(t, button.IsNull())
	assert.Equal(t, "0", button.Get("textContent").String())

	button.Call("click")
	assert.Equal(t, "2", shadow.Call("querySelector", "button").Get("textContent").String())
	// The style sits outside the render container, so updates keep it.
	assert.False(t, shadow.Call("querySelector", "style").IsNull())

	el.Call("remove")
	assert.True(t, inst.Destroyed())
	_, ok = jsdom.Instance(el)
	assert.False(t, ok)
	assert.True(t, shadow.Call("querySelector", "button").IsNull())
	assert.False(t, shadow.Call("querySelector", "style").IsNull())

	// Reconnecting mounts a fresh instance into the same shadow root.
	doc.Get("body").Call("appendChild", el)
	again, ok := jsdom.Instance(el)
	require.True(t, ok)
	assert.NotSame(t, inst, again)
	assert.Equal(t, 1, shadow.Call("querySelectorAll", "style").Length())
	assert.Equal(t, "0", shadow.Call("querySelector", "button").Get("textContent").String())
	el.Call("remove")
}

func TestDefineRejectsKnownNames(t *testing.T) {
	requireBrowser(t)

	c, err := component.Load(counterSource)
	require.NoError(t, err)
	reg := component.NewRegistry()
	require.NoError(t, reg.Define("js-twice", c))
	require.NoError(t, jsdom.Define(reg, nil))
	assert.ErrorContains(t, jsdom.Define(reg, nil), `"js-twice" is already defined`)
}

func TestInjectStyleSurvivesRender(t *testing.T) {
	doc := requireBrowser(t)

	host := doc.Call("createElement", "div")
	doc.Get("body").Call("appendChild", host)
	defer host.Call("remove")

	root := jsdom.AttachShadow(host)
	root.InjectStyle("p { margin: 0; }")
	root.AppendChild(root.CreateTextNode("a"))
	root.ClearChildren()

	shadow := host.Get("shadowRoot")
	assert.False(t, shadow.Call("querySelector", "style").IsNull())
	assert.Equal(t, "", root.Container().Get("textContent").String())
}
