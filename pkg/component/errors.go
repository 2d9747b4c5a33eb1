package component

import "errors"

var (
	// ErrPhase is returned when a transition is not valid in the current phase.
	ErrPhase = errors.New("component: invalid lifecycle transition")
	// ErrDestroyed is returned when an unmounted instance is used.
	ErrDestroyed = errors.New("component: instance destroyed")
	// ErrUnknownAction is returned when dispatching an action that does not exist.
	ErrUnknownAction = errors.New("component: unknown action")
	// ErrUnsupportedStatement is returned for method statements outside the
	// supported forms.
	ErrUnsupportedStatement = errors.New("unsupported statement")
	// ErrUnknownField is returned when assigning to a name that is not a state field.
	ErrUnknownField = errors.New("unknown state field")
	// ErrCallDepth is returned when method calls nest too deeply.
	ErrCallDepth = errors.New("component: method call depth exceeded")
	// ErrRenderBudget is returned when writes keep invalidating the instance
	// faster than it can settle.
	ErrRenderBudget = errors.New("component: re-render budget exceeded")
	// ErrInvalidName is returned for names that are not valid custom element names.
	ErrInvalidName = errors.New("component: invalid element name")
	// ErrDuplicate is returned when defining a name twice.
	ErrDuplicate = errors.New("component: element already defined")
)
