package dev

import (
	"errors"
	"fmt"

	"github.com/vango-dev/wcdk/pkg/component"
	"github.com/vango-dev/wcdk/pkg/dom/memdom"
)

// Preview is a server-side render of one component instance.
type Preview struct {
	Name     string         `json:"name" yaml:"name"`
	HTML     string         `json:"html" yaml:"html"`
	State    map[string]any `json:"state" yaml:"state"`
	Props    map[string]any `json:"props" yaml:"props"`
	Actions  []string       `json:"actions" yaml:"actions"`
	Warnings []string       `json:"warnings,omitempty" yaml:"warnings,omitempty"`

	embed string // HTML with raw text elements made safe to embed
}

// RenderPreview mounts c on an in-memory document with props, dispatches
// actions in order and returns the resulting markup and state. Binding and
// evaluation failures are reported as warnings; an unknown action is an
// error.
func RenderPreview(name string, c *component.Component, props map[string]any, actions []string, opts ...component.Option) (*Preview, error) {
	doc := memdom.New()
	inst, err := c.NewInstance(doc, props, opts...)
	if err != nil {
		return nil, err
	}

	p := &Preview{Name: name, Actions: inst.Actions()}
	if err := inst.Mount(); err != nil {
		p.Warnings = append(p.Warnings, err.Error())
	}
	for _, action := range actions {
		if err := inst.Dispatch(action); err != nil {
			if errors.Is(err, component.ErrUnknownAction) {
				inst.Unmount()
				return nil, fmt.Errorf("dispatch %s: %w", action, err)
			}
			p.Warnings = append(p.Warnings, err.Error())
		}
	}

	p.HTML = doc.HTML()
	p.embed = doc.EmbedHTML()
	p.State = inst.State().Snapshot()
	p.Props = inst.Props()
	inst.Unmount()
	return p, nil
}
