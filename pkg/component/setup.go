package component

import (
	"github.com/vango-dev/wcdk/pkg/lifecycle"
	"github.com/vango-dev/wcdk/pkg/reactive"
)

// SetupContext is passed to a Component's Setup function once per instance.
type SetupContext struct {
	inst *Instance
}

// State returns the new instance's reactive state.
func (s *SetupContext) State() *reactive.Handle { return s.inst.state }

// Props returns the resolved props.
func (s *SetupContext) Props() map[string]any { return s.inst.props }

// Hooks returns the instance's lifecycle registry.
func (s *SetupContext) Hooks() *lifecycle.Registry { return s.inst.hooks }

// Action registers a Go action under name. It takes precedence over a source
// method with the same name, both for event bindings and for calls made from
// other methods.
func (s *SetupContext) Action(name string, fn func()) {
	if fn != nil {
		s.inst.goFuncs[name] = fn
	}
}

// OnMounted registers fn for the Mounted hook.
func (s *SetupContext) OnMounted(fn func()) { s.inst.hooks.OnMounted(fn) }

// OnBeforeDestroy registers fn for the BeforeDestroy hook.
func (s *SetupContext) OnBeforeDestroy(fn func()) { s.inst.hooks.OnBeforeDestroy(fn) }
