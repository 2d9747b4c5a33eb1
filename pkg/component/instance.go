package component

import (
	"errors"
	"fmt"
	"maps"
	"runtime/debug"
	"slices"
	"time"

	"github.com/vango-dev/wcdk/pkg/dom"
	"github.com/vango-dev/wcdk/pkg/lifecycle"
	"github.com/vango-dev/wcdk/pkg/reactive"
	"github.com/vango-dev/wcdk/pkg/vdom"
)

// maxCallDepth bounds nested method calls inside one action.
const maxCallDepth = 32

// Phase is an instance lifecycle phase.
type Phase uint8

const (
	Unattached Phase = iota
	Mounting
	Mounted
	Updating
	Unmounting
)

// String returns the string representation of the Phase.
func (p Phase) String() string {
	switch p {
	case Unattached:
		return "Unattached"
	case Mounting:
		return "Mounting"
	case Mounted:
		return "Mounted"
	case Updating:
		return "Updating"
	case Unmounting:
		return "Unmounting"
	default:
		return "Unknown"
	}
}

// Instance is one live occurrence of a Component bound to a render target.
type Instance struct {
	comp    *Component
	target  dom.Target
	state   *reactive.Handle
	props   map[string]any
	hooks   *lifecycle.Registry
	goFuncs map[string]func()
	actions dom.Actions
	opts    options
	unsub   func()

	phase     Phase
	destroyed bool
	vnode     *vdom.VNode
	renders   int

	// Coalescing: writes while busy only mark the instance dirty.
	dirty       bool
	rendering   bool
	actionDepth int
	batchDepth  int
	err         error
}

// NewInstance creates an unattached instance of c rendering into target.
//
// The initial state is a copy of the definition's state. Declared props are
// resolved from props (coercing attribute strings and evaluating defaults)
// and override state fields of the same name. A prop with no host value and
// no default keeps the state value.
func (c *Component) NewInstance(target dom.Target, props map[string]any, opts ...Option) (*Instance, error) {
	state := cloneMap(c.def.State)
	resolved, err := resolveProps(c.eval, c.def, props, state)
	if err != nil {
		if c.def.Name == "" {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", c.def.Name, err)
	}
	for name := range c.def.Props {
		state[name] = resolved[name]
	}

	inst := &Instance{
		comp:    c,
		target:  target,
		state:   reactive.Wrap(state),
		props:   resolved,
		hooks:   lifecycle.New(),
		goFuncs: make(map[string]func()),
		opts:    buildOptions(opts),
	}
	inst.unsub = inst.state.Subscribe(inst.onChange)

	for h, method := range c.hooks {
		name := method
		inst.hooks.Register(h, func() { inst.runHookMethod(name) })
	}
	if c.setup != nil {
		c.setup(&SetupContext{inst: inst})
	}
	inst.actions = inst.buildActions()
	return inst, nil
}

// State returns the instance's reactive state.
func (i *Instance) State() *reactive.Handle { return i.state }

// Props returns the resolved props.
func (i *Instance) Props() map[string]any { return i.props }

// Hooks returns the instance's lifecycle registry.
func (i *Instance) Hooks() *lifecycle.Registry { return i.hooks }

// Phase returns the current lifecycle phase.
func (i *Instance) Phase() Phase { return i.phase }

// Destroyed reports whether the instance has been unmounted.
func (i *Instance) Destroyed() bool { return i.destroyed }

// VNode returns the tree produced by the last render.
func (i *Instance) VNode() *vdom.VNode { return i.vnode }

// Renders returns how many times the instance has rendered.
func (i *Instance) Renders() int { return i.renders }

// Err returns the error of the most recent render.
func (i *Instance) Err() error { return i.err }

// Component returns the component this instance was created from.
func (i *Instance) Component() *Component { return i.comp }

// Mount performs the first render: onBeforeMount, generate and render,
// onMounted. Binding failures are logged and returned but do not abort the
// transition.
func (i *Instance) Mount() error {
	if i.destroyed {
		return ErrDestroyed
	}
	if i.phase != Unattached {
		return fmt.Errorf("%w: mount while %s", ErrPhase, i.phase)
	}

	i.phase = Mounting
	i.hooks.Run(lifecycle.BeforeMount)
	err := i.render(Mounting)
	i.hooks.Run(lifecycle.Mounted)
	i.phase = Mounted

	return errors.Join(err, i.flush())
}

// Update re-renders a mounted instance: onBeforeUpdate, regenerate, render,
// onUpdated.
func (i *Instance) Update() error {
	if i.destroyed {
		return ErrDestroyed
	}
	if i.phase != Mounted {
		return fmt.Errorf("%w: update while %s", ErrPhase, i.phase)
	}
	err := i.update()
	return errors.Join(err, i.flush())
}

// Unmount runs onBeforeDestroy, drops the state observer and releases the
// instance's own registry. The instance cannot be mounted again.
func (i *Instance) Unmount() error {
	if i.destroyed {
		return ErrDestroyed
	}
	if i.phase != Mounted {
		return fmt.Errorf("%w: unmount while %s", ErrPhase, i.phase)
	}

	i.phase = Unmounting
	i.hooks.Run(lifecycle.BeforeDestroy)
	i.unsub()
	i.hooks.Release()
	i.dirty = false
	i.phase = Unattached
	i.destroyed = true
	return nil
}

// Dispatch runs the named action. Writes made by the action are rendered
// once, after it completes.
func (i *Instance) Dispatch(name string) error {
	if i.destroyed {
		return ErrDestroyed
	}
	start := time.Now()
	i.actionDepth++
	err := i.call(name, 0)
	i.actionDepth--
	i.opts.recorder.ActionDispatched(i.comp.def.Name, name, time.Since(start), err)
	if i.actionDepth > 0 {
		return err
	}
	return errors.Join(err, i.flush())
}

// Batch runs fn and renders its writes once, after it returns.
func (i *Instance) Batch(fn func()) error {
	i.batchDepth++
	func() {
		defer func() { i.batchDepth-- }()
		fn()
	}()
	if i.batchDepth > 0 {
		return nil
	}
	return i.flush()
}

// Actions returns the names of every dispatchable action.
func (i *Instance) Actions() []string {
	return slices.Sorted(maps.Keys(i.actions))
}

// onChange is the instance's single state observer.
func (i *Instance) onChange(string, any) {
	if i.destroyed {
		return
	}
	if i.phase == Mounted && !i.busy() {
		// Errors are kept on the instance; there is no caller to return them to.
		_ = i.update()
		_ = i.flush()
		return
	}
	i.dirty = true
}

func (i *Instance) busy() bool {
	return i.rendering || i.actionDepth > 0 || i.batchDepth > 0
}

// flush re-renders while pending writes remain, up to the render budget.
func (i *Instance) flush() error {
	var errs []error
	for n := 0; i.dirty; n++ {
		if i.phase != Mounted || i.busy() {
			return errors.Join(errs...)
		}
		if n >= i.opts.renderBudget {
			i.dirty = false
			i.err = ErrRenderBudget
			i.opts.logger.Error("re-render budget exceeded",
				"component", i.comp.def.Name,
				"budget", i.opts.renderBudget)
			return errors.Join(append(errs, ErrRenderBudget)...)
		}
		if err := i.update(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (i *Instance) update() error {
	i.phase = Updating
	i.hooks.Run(lifecycle.BeforeUpdate)
	err := i.render(Updating)
	i.hooks.Run(lifecycle.Updated)
	i.phase = Mounted
	return err
}

func (i *Instance) render(phase Phase) error {
	start := time.Now()
	i.rendering = true
	i.dirty = false
	defer func() { i.rendering = false }()

	next, genErr := i.comp.gen.Generate(i.comp.tmpl, i.state.Snapshot())
	var renderErr error
	if i.opts.incremental && i.vnode != nil {
		renderErr = dom.Patch(i.target, i.vnode, next, i.actions)
	} else {
		renderErr = dom.Render(next, i.target, i.actions)
	}
	i.vnode = next
	i.renders++

	err := errors.Join(genErr, renderErr)
	i.err = err
	if err != nil {
		i.opts.logger.Warn("render binding failed",
			"component", i.comp.def.Name,
			"phase", phase.String(),
			"error", err)
	}
	i.opts.recorder.RenderCompleted(i.comp.def.Name, phase, time.Since(start), err)
	return err
}

func (i *Instance) buildActions() dom.Actions {
	actions := make(dom.Actions, len(i.comp.methods)+len(i.goFuncs))
	add := func(name string) {
		actions[name] = func() {
			if err := i.Dispatch(name); err != nil {
				i.opts.logger.Warn("action failed",
					"component", i.comp.def.Name,
					"action", name,
					"error", err)
			}
		}
	}
	for name := range i.comp.methods {
		add(name)
	}
	for name := range i.goFuncs {
		add(name)
	}
	return actions
}

// call runs a Go action or a compiled method by name.
func (i *Instance) call(name string, depth int) (err error) {
	if depth >= maxCallDepth {
		return fmt.Errorf("%w calling %s", ErrCallDepth, name)
	}
	if fn, ok := i.goFuncs[name]; ok {
		defer func() {
			if r := recover(); r != nil {
				i.opts.logger.Error("action panic",
					"component", i.comp.def.Name,
					"action", name,
					"panic", r,
					"stack", string(debug.Stack()))
				err = fmt.Errorf("action %s panicked: %v", name, r)
			}
		}()
		fn()
		return nil
	}
	stmts, ok := i.comp.methods[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAction, name)
	}
	return i.exec(stmts, depth)
}

func (i *Instance) exec(stmts []statement, depth int) error {
	for _, st := range stmts {
		switch st.kind {
		case stmtReturn:
			if st.expr != "" {
				if _, err := i.comp.eval.Eval(st.expr, i.scope()); err != nil {
					return err
				}
			}
			return nil

		case stmtCall:
			if err := i.call(st.callee, depth+1); err != nil {
				return err
			}

		case stmtStep:
			if err := i.assign(st.target, st.target+" "+st.op+" 1", st.src); err != nil {
				return err
			}

		case stmtAssign:
			src := st.expr
			if st.op != "" {
				src = st.target + " " + st.op + " (" + st.expr + ")"
			}
			if err := i.assign(st.target, src, st.src); err != nil {
				return err
			}
		}
	}
	return nil
}

func (i *Instance) assign(field, src, stmt string) error {
	if _, ok := i.state.Get(field); !ok {
		return fmt.Errorf("%s: %w %q", stmt, ErrUnknownField, field)
	}
	v, err := i.comp.eval.Eval(src, i.scope())
	if err != nil {
		return err
	}
	i.state.Set(field, v)
	return nil
}

// scope exposes state fields directly and as state/this, plus props.
func (i *Instance) scope() map[string]any {
	snap := i.state.Snapshot()
	scope := make(map[string]any, len(snap)+3)
	for k, v := range snap {
		scope[k] = v
	}
	scope["state"] = snap
	scope["this"] = snap
	scope["props"] = i.props
	return scope
}

func (i *Instance) runHookMethod(name string) {
	i.actionDepth++
	err := i.call(name, 0)
	i.actionDepth--
	if err != nil {
		i.opts.logger.Warn("lifecycle method failed",
			"component", i.comp.def.Name,
			"method", name,
			"error", err)
	}
}
