package vtest_test

import (
	"testing"

	"github.com/vango-dev/wcdk/pkg/component"
	"github.com/vango-dev/wcdk/pkg/vtest"
)

const counterSource = `---
<div class="counter"><button @click="increment">+</button><output>{{count}}</output></div>
---
---
export default {
  name: 'my-counter',
  props: {
    step: (Number, default 1)
  },
  state: {
    count: 0
  },
  methods: {
    increment() { count += step },
    reset() { count = 0 }
  }
}
`

func TestMount(t *testing.T) {
	h := vtest.Mount(t, counterSource)

	h.ExpectElement("button").
		ExpectAttribute("class", "counter").
		ExpectContains("<output>0</output>").
		ExpectState("count", 0)

	if h.Instance.Phase() != component.Mounted {
		t.Errorf("Phase = %s, want Mounted", h.Instance.Phase())
	}
}

func TestClick(t *testing.T) {
	h := vtest.Mount(t, counterSource)

	h.Click("button").Click("button")
	h.ExpectContains("<output>2</output>").ExpectState("count", 2)

	h.Dispatch("reset").ExpectContains("<output>0</output>")
}

func TestBuilder_WithProp(t *testing.T) {
	h := vtest.New(counterSource).WithProp("step", "5").Mount(t)

	h.Click("button")
	h.ExpectState("count", 5).ExpectNotContains("<output>0</output>")
}

func TestBuilder_WithSetup(t *testing.T) {
	calls := 0
	h := vtest.New(counterSource).
		WithSetup(func(s *component.SetupContext) {
			s.Action("bump", func() {
				calls++
				s.State().Set("count", calls*10)
			})
		}).
		Mount(t)

	h.Dispatch("bump").Dispatch("bump")
	h.ExpectState("count", 20).ExpectContains("<output>20</output>")
}

func TestSetState(t *testing.T) {
	h := vtest.Mount(t, counterSource)

	h.SetState("count", 41).ExpectContains("<output>41</output>")
	if h.State("count") != 41 {
		t.Errorf("State(count) = %#v", h.State("count"))
	}
}

func TestFromComponent(t *testing.T) {
	c, err := component.Load(counterSource)
	if err != nil {
		t.Fatal(err)
	}

	a := vtest.FromComponent(c).Mount(t)
	b := vtest.FromComponent(c).Mount(t)
	a.Click("button")

	a.ExpectState("count", 1)
	b.ExpectState("count", 0)
}

func TestUnmountedOnCleanup(t *testing.T) {
	var h *vtest.Harness
	t.Run("inner", func(t *testing.T) {
		h = vtest.Mount(t, counterSource)
	})
	if !h.Instance.Destroyed() {
		t.Error("instance should be unmounted when the test finishes")
	}
}
