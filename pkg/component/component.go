package component

import (
	"fmt"

	"github.com/vango-dev/wcdk/pkg/expr"
	"github.com/vango-dev/wcdk/pkg/lifecycle"
	"github.com/vango-dev/wcdk/pkg/sfc"
	"github.com/vango-dev/wcdk/pkg/template"
	"github.com/vango-dev/wcdk/pkg/vdom"
)

// Component is a compiled component definition. It is immutable once Setup
// has been configured and may be shared by any number of instances.
type Component struct {
	def     *sfc.Definition
	tmpl    *template.Node
	methods map[string][]statement
	hooks   map[lifecycle.Hook]string // hook -> method name
	setup   func(*SetupContext)
	eval    *expr.Evaluator
	gen     *vdom.Generator
}

// Compile compiles def. When tmpl is nil the definition's template text is
// parsed. Method bodies are compiled up front; an unsupported statement fails
// the whole component with an *expr.EvaluationError.
func Compile(def *sfc.Definition, tmpl *template.Node) (*Component, error) {
	if tmpl == nil {
		tmpl = template.Parse(def.TemplateText)
	}
	ev := expr.New()
	c := &Component{
		def:     def,
		tmpl:    tmpl,
		methods: make(map[string][]statement, len(def.Methods)),
		hooks:   make(map[lifecycle.Hook]string),
		eval:    ev,
		gen:     vdom.NewGenerator(ev),
	}
	for _, name := range def.MethodNames() {
		stmts, err := compileMethod(def.Methods[name])
		if err != nil {
			return nil, fmt.Errorf("method %s: %w", name, err)
		}
		c.methods[name] = stmts
		if h, ok := lifecycle.ParseHook(name); ok {
			c.hooks[h] = name
		}
	}
	return c, nil
}

// Load parses source and compiles the resulting definition.
func Load(source string) (*Component, error) {
	def, err := sfc.Parse(source)
	if err != nil {
		return nil, err
	}
	return Compile(def, nil)
}

// Setup registers fn to run for every new instance, after the instance's
// state, props and source methods are in place and before it can mount.
func (c *Component) Setup(fn func(*SetupContext)) *Component {
	c.setup = fn
	return c
}

// Name returns the component name declared in its script.
func (c *Component) Name() string { return c.def.Name }

// Definition returns the parsed definition.
func (c *Component) Definition() *sfc.Definition { return c.def }

// Template returns the compiled template tree.
func (c *Component) Template() *template.Node { return c.tmpl }

// Methods returns the names of the compiled source methods.
func (c *Component) Methods() []string { return c.def.MethodNames() }

// HookMethods returns the source methods registered as lifecycle hooks.
func (c *Component) HookMethods() map[lifecycle.Hook]string {
	out := make(map[lifecycle.Hook]string, len(c.hooks))
	for h, m := range c.hooks {
		out[h] = m
	}
	return out
}
