// Package lifecycle holds per-instance lifecycle hook callbacks.
//
// Every component instance owns its own Registry. Nothing is shared between
// instances, so mounting or destroying one instance never runs another's
// callbacks.
package lifecycle

import "sync"

// Hook identifies a lifecycle point.
type Hook uint8

const (
	BeforeMount Hook = iota + 1
	Mounted
	BeforeUpdate
	Updated
	BeforeDestroy
)

// Hooks lists every hook in lifecycle order.
var Hooks = []Hook{BeforeMount, Mounted, BeforeUpdate, Updated, BeforeDestroy}

// String returns the method name that registers the hook in component source.
func (h Hook) String() string {
	switch h {
	case BeforeMount:
		return "onBeforeMount"
	case Mounted:
		return "onMounted"
	case BeforeUpdate:
		return "onBeforeUpdate"
	case Updated:
		return "onUpdated"
	case BeforeDestroy:
		return "onBeforeDestroy"
	default:
		return "unknown"
	}
}

// ParseHook maps a hook method name such as "onMounted" to its Hook.
func ParseHook(name string) (Hook, bool) {
	for _, h := range Hooks {
		if h.String() == name {
			return h, true
		}
	}
	return 0, false
}

// Registry stores ordered callbacks per hook.
type Registry struct {
	mu        sync.Mutex
	callbacks map[Hook][]func()
	released  bool
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{callbacks: make(map[Hook][]func())}
}

// Register appends fn to the callbacks of hook. It reports false, and drops
// fn, once the registry has been released.
func (r *Registry) Register(hook Hook, fn func()) bool {
	if fn == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return false
	}
	r.callbacks[hook] = append(r.callbacks[hook], fn)
	return true
}

// OnBeforeMount registers fn for BeforeMount.
func (r *Registry) OnBeforeMount(fn func()) { r.Register(BeforeMount, fn) }

// OnMounted registers fn for Mounted.
func (r *Registry) OnMounted(fn func()) { r.Register(Mounted, fn) }

// OnBeforeUpdate registers fn for BeforeUpdate.
func (r *Registry) OnBeforeUpdate(fn func()) { r.Register(BeforeUpdate, fn) }

// OnUpdated registers fn for Updated.
func (r *Registry) OnUpdated(fn func()) { r.Register(Updated, fn) }

// OnBeforeDestroy registers fn for BeforeDestroy.
func (r *Registry) OnBeforeDestroy(fn func()) { r.Register(BeforeDestroy, fn) }

// Run calls the callbacks of hook in registration order. Callbacks added
// while running are not called until the next Run.
func (r *Registry) Run(hook Hook) {
	r.mu.Lock()
	fns := make([]func(), len(r.callbacks[hook]))
	copy(fns, r.callbacks[hook])
	r.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Count returns the number of callbacks registered for hook.
func (r *Registry) Count(hook Hook) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.callbacks[hook])
}

// Release drops every callback. Later registrations are ignored.
func (r *Registry) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.callbacks = make(map[Hook][]func())
	r.released = true
}

// Released reports whether Release has been called.
func (r *Registry) Released() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.released
}
