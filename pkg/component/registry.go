package component

import (
	"fmt"
	"maps"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"sync"
	"unicode"
)

var validName = regexp.MustCompile(`^[a-z][a-z0-9._]*-[a-z0-9._-]*$`)

// reservedNames cannot be used as custom element names.
var reservedNames = map[string]bool{
	"annotation-xml":   true,
	"color-profile":    true,
	"font-face":        true,
	"font-face-src":    true,
	"font-face-uri":    true,
	"font-face-format": true,
	"font-face-name":   true,
	"missing-glyph":    true,
}

// ValidateName reports whether name can be registered as a custom element.
func ValidateName(name string) error {
	if !validName.MatchString(name) || reservedNames[name] {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// ElementName derives the element name for a component: its declared name
// when set, otherwise the base name of fileID. The result is kebab-cased and
// gets a "wc-" prefix when it would have no hyphen.
func ElementName(declared, fileID string) string {
	name := declared
	if name == "" {
		base := filepath.Base(fileID)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	name = kebab(name)
	if name == "" {
		name = "component"
	}
	if !strings.Contains(name, "-") {
		name = "wc-" + name
	}
	if name[0] < 'a' || name[0] > 'z' {
		name = "wc-" + name
	}
	return name
}

func kebab(s string) string {
	var b strings.Builder
	prevLower := false
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			if prevLower {
				b.WriteByte('-')
			}
			b.WriteRune(unicode.ToLower(r))
			prevLower = false
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prevLower = true
		case r == '-' || r == '_' || r == ' ' || r == '.':
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "-") {
				b.WriteByte('-')
			}
			prevLower = false
		}
	}
	return strings.Trim(b.String(), "-")
}

// Registry maps custom element names to components.
type Registry struct {
	mu         sync.RWMutex
	components map[string]*Component
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{components: make(map[string]*Component)}
}

// Define registers c under name. Names must be valid custom element names
// and may only be defined once.
func (r *Registry) Define(name string, c *Component) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.components[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicate, name)
	}
	r.components[name] = c
	return nil
}

// Lookup returns the component registered under name.
func (r *Registry) Lookup(name string) (*Component, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.components[name]
	return c, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.components))
}

// Len returns the number of registered components.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.components)
}
