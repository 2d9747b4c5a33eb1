//go:build js && wasm

package jsdom

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"syscall/js"

	"github.com/vango-dev/wcdk/pkg/component"
)

// hostProp is the JS property holding a custom element's host id.
const hostProp = "__wcdkHost"

// hostClass builds the element class. cb receives the element and the
// callback name; observed lists the attributes that remount the instance.
const hostClass = `return class extends HTMLElement {
  static get observedAttributes() { return observed; }
  connectedCallback() { cb(this, "connect"); }
  disconnectedCallback() { cb(this, "disconnect"); }
  attributeChangedCallback() { if (this.isConnected) cb(this, "attributes"); }
};`

// host is one live custom element.
type host struct {
	root *Root
	inst *component.Instance
}

// hosts holds every custom element that has connected, by host id. Wasm
// callbacks run on the single JS thread.
var (
	hosts    = make(map[int]*host)
	nextHost int
)

// elements is one defined custom element name.
type elements struct {
	comp *component.Component
	name string
	css  string
	opts []component.Option
}

// Define registers every component in reg with customElements. styles maps
// element names to CSS injected into each element's shadow root. Props are
// read from the element's attributes when it connects, and a change to a
// declared prop attribute remounts the instance. Names the browser already
// knows are skipped and reported.
func Define(reg *component.Registry, styles map[string]string, opts ...component.Option) error {
	customElements := js.Global().Get("customElements")
	if customElements.IsUndefined() {
		return errors.New("jsdom: customElements is not available")
	}
	factory := js.Global().Get("Function").New("cb", "observed", hostClass)

	var errs []error
	for _, name := range reg.Names() {
		if !customElements.Call("get", name).IsUndefined() {
			errs = append(errs, fmt.Errorf("jsdom: %q is already defined", name))
			continue
		}
		c, _ := reg.Lookup(name)
		e := &elements{comp: c, name: name, css: styles[name], opts: opts}

		observed := make([]any, 0, len(c.Definition().Props))
		for _, p := range c.Definition().PropNames() {
			observed = append(observed, strings.ToLower(p))
		}
		cb := js.FuncOf(func(this js.Value, args []js.Value) any {
			e.callback(args[0], args[1].String())
			return nil
		})
		customElements.Call("define", name, factory.Invoke(cb, js.ValueOf(observed)))
	}
	return errors.Join(errs...)
}

func (e *elements) callback(el js.Value, event string) {
	switch event {
	case "connect":
		e.mount(el)
	case "disconnect":
		e.unmount(el)
	case "attributes":
		e.unmount(el)
		e.mount(el)
	}
}

func (e *elements) mount(el js.Value) {
	id := el.Get(hostProp)
	if id.IsUndefined() {
		nextHost++
		el.Set(hostProp, nextHost)
		id = el.Get(hostProp)
	}
	h := hosts[id.Int()]
	if h == nil {
		h = &host{root: AttachShadow(el)}
		if e.css != "" {
			h.root.InjectStyle(e.css)
		}
		hosts[id.Int()] = h
	}
	if h.inst != nil {
		return
	}

	props := make(map[string]any)
	for _, p := range e.comp.Definition().PropNames() {
		if v := el.Call("getAttribute", strings.ToLower(p)); !v.IsNull() {
			props[p] = v.String()
		}
	}
	inst, err := e.comp.NewInstance(h.root, props, e.opts...)
	if err != nil {
		slog.Error("custom element mount failed", "element", e.name, "error", err)
		return
	}
	h.inst = inst
	if err := inst.Mount(); err != nil {
		slog.Warn("custom element mounted with errors", "element", e.name, "error", err)
	}
}

// unmount destroys the instance and empties the container. The shadow root,
// its style and the container stay for a later reconnect.
func (e *elements) unmount(el js.Value) {
	id := el.Get(hostProp)
	if id.IsUndefined() {
		return
	}
	h := hosts[id.Int()]
	if h == nil || h.inst == nil {
		return
	}
	h.inst.Unmount()
	h.inst = nil
	h.root.ClearChildren()
}

// Instance returns the instance mounted on a custom element, if any.
func Instance(el js.Value) (*component.Instance, bool) {
	id := el.Get(hostProp)
	if id.IsUndefined() {
		return nil, false
	}
	h := hosts[id.Int()]
	if h == nil || h.inst == nil {
		return nil, false
	}
	return h.inst, true
}
