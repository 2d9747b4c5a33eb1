package vtest

import (
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"github.com/vango-dev/wcdk/pkg/component"
	"github.com/vango-dev/wcdk/pkg/dom/memdom"
)

// Builder allows fluent construction of a mounted component.
type Builder struct {
	source string
	comp   *component.Component
	props  map[string]any
	opts   []component.Option
	setup  func(*component.SetupContext)
}

// New creates a builder for a component source.
func New(source string) *Builder {
	return &Builder{source: source, props: make(map[string]any)}
}

// FromComponent creates a builder for an already compiled component.
func FromComponent(c *component.Component) *Builder {
	return &Builder{comp: c, props: make(map[string]any)}
}

// WithProp sets a host prop, as an attribute string or a typed value.
func (b *Builder) WithProp(key string, value any) *Builder {
	b.props[key] = value
	return b
}

// WithOptions adds instance options. Logging is discarded unless an option
// sets a logger.
func (b *Builder) WithOptions(opts ...component.Option) *Builder {
	b.opts = append(b.opts, opts...)
	return b
}

// WithSetup registers Go actions and hooks on the component before mounting.
func (b *Builder) WithSetup(fn func(*component.SetupContext)) *Builder {
	b.setup = fn
	return b
}

// Mount compiles, instantiates and mounts the component. Compile and
// instantiation failures stop the test; a mount binding failure is reported
// but the harness is still returned.
func (b *Builder) Mount(t testing.TB) *Harness {
	t.Helper()

	c := b.comp
	if c == nil {
		var err error
		c, err = component.Load(b.source)
		if err != nil {
			t.Fatalf("vtest: compile: %v", err)
		}
	}
	if b.setup != nil {
		c.Setup(b.setup)
	}

	opts := append([]component.Option{component.WithLogger(quietLogger())}, b.opts...)
	doc := memdom.New()
	inst, err := c.NewInstance(doc, b.props, opts...)
	if err != nil {
		t.Fatalf("vtest: new instance: %v", err)
	}

	h := &Harness{t: t, Doc: doc, Instance: inst}
	t.Cleanup(func() {
		if !inst.Destroyed() {
			inst.Unmount()
		}
	})
	if err := inst.Mount(); err != nil {
		t.Errorf("vtest: mount: %v", err)
	}
	return h
}

// Mount is a shorthand for New(source).Mount(t).
func Mount(t testing.TB, source string) *Harness {
	t.Helper()
	return New(source).Mount(t)
}

// Harness is a mounted component under test.
type Harness struct {
	t        testing.TB
	Doc      *memdom.Document
	Instance *component.Instance
}

// HTML returns the current markup.
func (h *Harness) HTML() string { return h.Doc.HTML() }

// State returns the current value of a state field.
func (h *Harness) State(key string) any { return h.Instance.State().Value(key) }

// Dispatch runs an action by name. An unknown action stops the test.
func (h *Harness) Dispatch(action string) *Harness {
	h.t.Helper()
	if err := h.Instance.Dispatch(action); err != nil {
		h.t.Fatalf("vtest: dispatch %s: %v", action, err)
	}
	return h
}

// Click fires a click on the first element with the given tag.
func (h *Harness) Click(tag string) *Harness {
	h.t.Helper()
	return h.Fire(tag, "click")
}

// Fire fires event on the first element with the given tag.
func (h *Harness) Fire(tag, event string) *Harness {
	h.t.Helper()
	path, ok := h.Doc.Find(tag)
	if !ok {
		h.t.Fatalf("vtest: no <%s> element in:\n%s", tag, truncate(h.HTML(), 500))
	}
	if err := h.Doc.Dispatch(path, event); err != nil {
		h.t.Fatalf("vtest: %s <%s>: %v", event, tag, err)
	}
	return h
}

// SetState writes a state field, which re-renders the mounted instance.
func (h *Harness) SetState(key string, value any) *Harness {
	h.Instance.State().Set(key, value)
	return h
}

// ExpectContains asserts that the markup contains expected.
func (h *Harness) ExpectContains(expected string) *Harness {
	h.t.Helper()
	if html := h.HTML(); !strings.Contains(html, expected) {
		h.t.Errorf("expected rendered output to contain %q, got:\n%s", expected, truncate(html, 500))
	}
	return h
}

// ExpectNotContains asserts that the markup does not contain unexpected.
func (h *Harness) ExpectNotContains(unexpected string) *Harness {
	h.t.Helper()
	if html := h.HTML(); strings.Contains(html, unexpected) {
		h.t.Errorf("expected rendered output to NOT contain %q, got:\n%s", unexpected, truncate(html, 500))
	}
	return h
}

// ExpectElement asserts that the markup contains a tag.
func (h *Harness) ExpectElement(tag string) *Harness {
	h.t.Helper()
	if _, ok := h.Doc.Find(tag); !ok {
		h.t.Errorf("expected rendered output to contain <%s> element, got:\n%s", tag, truncate(h.HTML(), 500))
	}
	return h
}

// ExpectAttribute asserts that the markup contains attr="value".
func (h *Harness) ExpectAttribute(attr, value string) *Harness {
	h.t.Helper()
	needle := attr + `="` + value + `"`
	if html := h.HTML(); !strings.Contains(html, needle) {
		h.t.Errorf("expected attribute %s=%q not found, got:\n%s", attr, value, truncate(html, 500))
	}
	return h
}

// ExpectState asserts the value of a state field. Numbers compare by value
// regardless of their Go type.
func (h *Harness) ExpectState(key string, want any) *Harness {
	h.t.Helper()
	got, ok := h.Instance.State().Get(key)
	if !ok {
		h.t.Errorf("state has no field %q", key)
		return h
	}
	if !equal(got, want) {
		h.t.Errorf("state %s = %#v, want %#v", key, got, want)
	}
	return h
}

func equal(got, want any) bool {
	if gf, ok := number(got); ok {
		if wf, ok := number(want); ok {
			return gf == wf
		}
	}
	return reflect.DeepEqual(got, want)
}

func number(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// truncate truncates a string to max length with ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + fmt.Sprintf("... (%d more bytes)", len(s)-max)
}
