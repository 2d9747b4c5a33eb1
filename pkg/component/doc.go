// Package component ties a compiled single-file component to a render target.
//
// A Component is compiled once per Definition: its template is parsed and its
// method bodies are compiled into statements. Each Instance created from it
// owns its own reactive state, lifecycle registry, action table and target,
// and moves through the phases
//
//	Unattached → Mounting → Mounted ⇄ Updating → Unmounting → Unattached
//
// Everything runs synchronously on the caller's goroutine. State writes made
// while a render or an action is in progress are coalesced into a single
// update that runs once the render or action completes. An Instance is not
// safe for concurrent use.
//
// # Basic Usage
//
//	def, err := sfc.Parse(source)
//	comp, err := component.Compile(def, nil)
//	inst, err := comp.NewInstance(doc, map[string]any{"start": 5})
//	err = inst.Mount()
//	err = inst.Dispatch("increment")
package component
