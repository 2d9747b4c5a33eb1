package build

import (
	"fmt"
	"path/filepath"

	"github.com/cespare/xxhash/v2"

	"github.com/vango-dev/wcdk/pkg/component"
	"github.com/vango-dev/wcdk/pkg/sfc"
	"github.com/vango-dev/wcdk/pkg/template"
)

// Module is the compiled form of one component source.
type Module struct {
	// Name is the custom element name the module registers under.
	Name string `json:"name" yaml:"name" cbor:"1,keyasint"`

	// File is the source path relative to the source directory.
	File string `json:"file" yaml:"file" cbor:"2,keyasint"`

	// Hash is the xxhash of the source text.
	Hash uint64 `json:"-" yaml:"-" cbor:"3,keyasint"`

	Definition *sfc.Definition `json:"definition" yaml:"definition" cbor:"4,keyasint"`
	Template   *template.Node  `json:"template" yaml:"template" cbor:"5,keyasint"`
}

// Transform compiles one component source. fileID identifies the source,
// usually its path; its base name supplies the element name when the script
// declares none.
func Transform(source, fileID string) (*Module, error) {
	def, err := sfc.Parse(source)
	if err != nil {
		return nil, err
	}

	name := component.ElementName(def.Name, fileID)
	if err := component.ValidateName(name); err != nil {
		return nil, err
	}

	tmpl := template.Parse(def.TemplateText)

	// Compile once so that unsupported method statements fail the build
	// rather than the first instance.
	if _, err := component.Compile(def, tmpl); err != nil {
		return nil, err
	}

	return &Module{
		Name:       name,
		File:       filepath.ToSlash(fileID),
		Hash:       hashSource(source),
		Definition: def,
		Template:   tmpl,
	}, nil
}

// Component compiles the module into a runnable component.
func (m *Module) Component() (*component.Component, error) {
	c, err := component.Compile(m.Definition, m.Template)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", m.Name, err)
	}
	return c, nil
}

// HashString returns Hash as fixed-width hex.
func (m *Module) HashString() string {
	return fmt.Sprintf("%016x", m.Hash)
}

func hashSource(source string) uint64 {
	return xxhash.Sum64String(source)
}
