// Package vtest provides testing helpers for single-file components.
//
// A Harness mounts a component on an in-memory document and exposes its
// markup and state, so tests can fire events and assert on the result
// without a browser.
//
// # Quick Start
//
//	func TestCounter(t *testing.T) {
//	    h := vtest.Mount(t, counterSource)
//	    h.Click("button").Click("button")
//	    h.ExpectContains("2")
//	    h.ExpectState("count", 2)
//	}
//
// # Fluent Builder
//
// The builder allows chaining props, options and Go setup before mounting:
//
//	h := vtest.New(counterSource).
//	    WithProp("step", "5").
//	    WithSetup(func(s *component.SetupContext) {
//	        s.Action("double", func() { ... })
//	    }).
//	    Mount(t)
//
// # Assertions
//
// Assertions report through t.Errorf and return the harness for chaining:
//
//	h.Dispatch("reset").
//	    ExpectContains("<output>0</output>").
//	    ExpectAttribute("class", "counter")
//
// The instance is unmounted when the test finishes.
package vtest
