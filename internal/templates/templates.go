package templates

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"text/template"

	"github.com/vango-dev/wcdk/internal/config"
	"github.com/vango-dev/wcdk/internal/errors"
	"github.com/vango-dev/wcdk/pkg/component"
)

// Config contains template configuration.
type Config struct {
	// Name is the project name.
	Name string

	// Description is a short project description.
	Description string

	// Port is the dev server port. Zero uses config.DefaultPort.
	Port int
}

// data is what template files are executed against.
type data struct {
	Name        string
	Prefix      string
	Description string
	Port        int
}

// Template represents a project template.
type Template struct {
	// Name is the template name.
	Name string

	// Description describes the template.
	Description string

	// Files is a map of relative paths to file contents.
	Files map[string]string
}

// Available templates.
var templates = map[string]*Template{
	"minimal": minimalTemplate(),
	"starter": starterTemplate(),
}

// Get returns a template by name.
func Get(name string) (*Template, error) {
	tmpl, ok := templates[name]
	if !ok {
		return nil, errors.New("W060").
			WithDetail("Template '" + name + "' not found").
			WithSuggestion("Available templates: " + strings.Join(List(), ", "))
	}
	return tmpl, nil
}

// List returns all available template names in sorted order.
func List() []string {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Paths returns the template's file paths in sorted order.
func (t *Template) Paths() []string {
	paths := make([]string, 0, len(t.Files))
	for p := range t.Files {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return paths
}

// Create generates a project from the template and returns the written
// paths. Nothing is written when any target file already exists.
func (t *Template) Create(dir string, cfg Config) ([]string, error) {
	d := data{
		Name:        cfg.Name,
		Prefix:      Prefix(cfg.Name),
		Description: cfg.Description,
		Port:        cfg.Port,
	}
	if d.Name == "" {
		d.Name = filepath.Base(dir)
		d.Prefix = Prefix(d.Name)
	}
	if d.Port == 0 {
		d.Port = config.DefaultPort
	}

	paths := t.Paths()
	for _, rel := range paths {
		full := filepath.Join(dir, filepath.FromSlash(rel))
		if _, err := os.Stat(full); err == nil {
			return nil, errors.New("W062").WithLocation(full, 0, 0)
		}
	}

	written := make([]string, 0, len(paths))
	for _, rel := range paths {
		tmpl, err := template.New(rel).Parse(t.Files[rel])
		if err != nil {
			return written, errors.Newf(errors.CategoryCLI, "invalid template %s: %v", rel, err)
		}

		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, d); err != nil {
			return written, errors.Newf(errors.CategoryCLI, "template execute error %s: %v", rel, err)
		}

		full := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			return written, err
		}
		if err := os.WriteFile(full, buf.Bytes(), 0644); err != nil {
			return written, err
		}
		written = append(written, full)
	}
	return written, nil
}

// Prefix derives an element name prefix from a project name. An empty name
// yields "wc".
func Prefix(name string) string {
	if strings.TrimSpace(name) == "" {
		return "wc"
	}
	el := component.ElementName("", name)
	if rest, ok := strings.CutPrefix(el, "wc-"); ok && rest != "" && rest[0] >= 'a' && rest[0] <= 'z' {
		el = rest
	}
	return el
}

const configFile = `# {{.Name}}{{if .Description}}: {{.Description}}{{end}}
name: {{.Name}}

source:
  dir: components
  extension: .wcdk

dev:
  port: {{.Port}}
  hot_reload: true

build:
  output: dist

log:
  level: info
  format: text
`

const gitignore = `dist/
`

// minimalTemplate returns the minimal template.
func minimalTemplate() *Template {
	return &Template{
		Name:        "minimal",
		Description: "wcdk.yaml and one component",
		Files: map[string]string{
			config.ConfigName + ".yaml": configFile,
			".gitignore":                gitignore,
			"components/hello.wcdk": `---
<p>Hello from {{"{{"}}project{{"}}"}}!</p>
---
---
export default {
  name: '{{.Prefix}}-hello',
  props: {
    project: (String, default '{{.Name}}')
  }
}
`,
		},
	}
}

// starterTemplate returns the starter template with examples.
func starterTemplate() *Template {
	return &Template{
		Name:        "starter",
		Description: "A counter and a greeting component with a stylesheet",
		Files: map[string]string{
			config.ConfigName + ".yaml": configFile,
			".gitignore":                gitignore,
			"components/counter.wcdk": `<!-- A counter with a configurable step. -->
---
<div class="counter">
  <button @click="decrement">-</button>
  <output>{{"{{"}}count{{"}}"}}</output>
  <button @click="increment">+</button>
</div>
---
<style src="counter.css"></style>
---
export default {
  name: '{{.Prefix}}-counter',
  props: {
    step: (Number, default 1)
  },
  state: {
    count: 0
  },
  methods: {
    increment() { count += step },
    decrement() { count -= step }
  }
}
`,
			"components/counter.css": `.counter { display: inline-flex; gap: 0.5rem; align-items: center; }
`,
			"components/greeting.wcdk": `---
<p class="greeting">Hello, {{"{{"}}name{{"}}"}}!</p>
---
---
export default {
  name: '{{.Prefix}}-greeting',
  props: {
    name: (String, default 'world')
  }
}
`,
		},
	}
}

// String returns the template name and description.
func (t *Template) String() string {
	return fmt.Sprintf("%-10s %s", t.Name, t.Description)
}
