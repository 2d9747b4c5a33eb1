// Package wcdk provides the public API for single-file web components.
//
// This is the recommended import for Go hosts:
//
//	import "github.com/vango-dev/wcdk"
//
// Usage:
//
//	c, err := wcdk.Load(source)
//	reg := wcdk.NewRegistry()
//	reg.Define("my-counter", c)
//	html, err := wcdk.RenderHTML(c, map[string]any{"step": "2"})
package wcdk

import (
	"github.com/vango-dev/wcdk/internal/build"
	"github.com/vango-dev/wcdk/pkg/component"
	"github.com/vango-dev/wcdk/pkg/dom"
	"github.com/vango-dev/wcdk/pkg/dom/memdom"
	"github.com/vango-dev/wcdk/pkg/lifecycle"
	"github.com/vango-dev/wcdk/pkg/reactive"
	"github.com/vango-dev/wcdk/pkg/sfc"
)

// =============================================================================
// Components (re-export from pkg/component)
// =============================================================================

// Component is a compiled component definition shared by its instances.
type Component = component.Component

// Instance is one live occurrence of a Component bound to a render target.
type Instance = component.Instance

// SetupContext registers Go actions and hooks on a new instance.
type SetupContext = component.SetupContext

// Definition is a parsed component source.
type Definition = sfc.Definition

// State is an instance's reactive state.
type State = reactive.Handle

// Target is anything a component can render into.
type Target = dom.Target

// Load parses and compiles a component source.
var Load = component.Load

// Compile compiles a parsed definition.
var Compile = component.Compile

// Parse parses a component source without compiling it.
var Parse = sfc.Parse

// =============================================================================
// Instance options
// =============================================================================

// Option configures an instance.
type Option = component.Option

// Recorder observes renders and action dispatches.
type Recorder = component.Recorder

var (
	// WithLogger sets the instance logger.
	WithLogger = component.WithLogger

	// WithIncrementalRendering patches the target instead of re-rendering it.
	WithIncrementalRendering = component.WithIncrementalRendering

	// WithRecorder reports render and action timings.
	WithRecorder = component.WithRecorder

	// WithRenderBudget bounds re-renders caused by one change.
	WithRenderBudget = component.WithRenderBudget
)

// =============================================================================
// Lifecycle
// =============================================================================

// Hook identifies a lifecycle hook.
type Hook = lifecycle.Hook

const (
	BeforeMount   = lifecycle.BeforeMount
	Mounted       = lifecycle.Mounted
	BeforeUpdate  = lifecycle.BeforeUpdate
	Updated       = lifecycle.Updated
	BeforeDestroy = lifecycle.BeforeDestroy
)

// =============================================================================
// Registry and bundles
// =============================================================================

// Registry maps custom element names to components.
type Registry = component.Registry

// NewRegistry creates an empty Registry.
var NewRegistry = component.NewRegistry

// ElementName derives the element name for a component.
var ElementName = component.ElementName

// ValidateName reports whether a name can be registered.
var ValidateName = component.ValidateName

// Module is the compiled form of one component source.
type Module = build.Module

// Transform compiles one component source into a Module.
var Transform = build.Transform

// LoadBundle reads a compiled bundle and registers its modules.
func LoadBundle(path string, reg *Registry) error {
	_, err := build.LoadBundle(path, reg)
	return err
}

// =============================================================================
// Errors
// =============================================================================

var (
	ErrUnknownAction = component.ErrUnknownAction
	ErrInvalidName   = component.ErrInvalidName
	ErrDuplicate     = component.ErrDuplicate
	ErrRenderBudget  = component.ErrRenderBudget
	ErrDestroyed     = component.ErrDestroyed
)

// =============================================================================
// Rendering
// =============================================================================

// RenderHTML mounts c on an in-memory document, runs actions in order and
// returns the markup. The instance is unmounted before returning.
func RenderHTML(c *Component, props map[string]any, actions ...string) (string, error) {
	doc := memdom.New()
	inst, err := c.NewInstance(doc, props)
	if err != nil {
		return "", err
	}
	defer inst.Unmount()

	if err := inst.Mount(); err != nil {
		return "", err
	}
	for _, a := range actions {
		if err := inst.Dispatch(a); err != nil {
			return "", err
		}
	}
	return doc.HTML(), nil
}
