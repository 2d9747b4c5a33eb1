package sfc

import (
	"regexp"
	"sort"
)

// PropSpec declares a component prop.
type PropSpec struct {
	// Type is the declared type name (Number, String, Boolean, Array, Object).
	Type string `json:"type" yaml:"type" cbor:"1,keyasint"`

	// Default is the raw default expression. It is evaluated when an instance
	// is constructed, never at parse time.
	Default string `json:"default,omitempty" yaml:"default,omitempty" cbor:"2,keyasint,omitempty"`

	// HasDefault distinguishes an absent default from an empty one.
	HasDefault bool `json:"hasDefault,omitempty" yaml:"hasDefault,omitempty" cbor:"3,keyasint,omitempty"`
}

// Definition is the structured form of a single-file component.
// It is created once per source and is not modified afterwards.
type Definition struct {
	// Name is the component name declared in the script, if any.
	Name string `json:"name,omitempty" yaml:"name,omitempty" cbor:"1,keyasint,omitempty"`

	// Props are the declared props.
	Props map[string]PropSpec `json:"props" yaml:"props" cbor:"2,keyasint"`

	// State holds the evaluated initial state.
	State map[string]any `json:"state" yaml:"state" cbor:"3,keyasint"`

	// Methods maps method names to their raw bodies.
	Methods map[string]string `json:"methods" yaml:"methods" cbor:"4,keyasint"`

	// TemplateText is the trimmed template section.
	TemplateText string `json:"template" yaml:"template" cbor:"5,keyasint"`

	// Style is the trimmed style section. Loading it is left to the host.
	Style string `json:"style,omitempty" yaml:"style,omitempty" cbor:"6,keyasint,omitempty"`
}

var styleSrcRe = regexp.MustCompile(`\bsrc\s*=\s*["']([^"']+)["']`)

// StyleSrc returns the src reference of the style section, if present.
func (d *Definition) StyleSrc() string {
	m := styleSrcRe.FindStringSubmatch(d.Style)
	if m == nil {
		return ""
	}
	return m[1]
}

// PropNames returns the declared prop names in sorted order.
func (d *Definition) PropNames() []string {
	return sortedKeys(d.Props)
}

// MethodNames returns the method names in sorted order.
func (d *Definition) MethodNames() []string {
	return sortedKeys(d.Methods)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
