package reactive

import (
	"sort"
	"sync"
)

// Observer is notified after a write has been applied.
type Observer func(key string, value any)

// subscription pairs an observer with the id used to remove it.
type subscription struct {
	id       uint64
	observer Observer
}

// Handle is a reactive view over a state map.
type Handle struct {
	mu     sync.RWMutex
	values map[string]any

	// subMu protects subs and nextID.
	subMu  sync.RWMutex
	subs   []subscription
	nextID uint64
}

// Wrap returns a Handle over initial. The map is used in place, not copied.
// A nil map is replaced by an empty one.
func Wrap(initial map[string]any) *Handle {
	if initial == nil {
		initial = make(map[string]any)
	}
	return &Handle{values: initial}
}

// Get returns the value stored under key.
func (h *Handle) Get(key string) (any, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	v, ok := h.values[key]
	return v, ok
}

// Value returns the value stored under key, or nil.
func (h *Handle) Value(key string) any {
	v, _ := h.Get(key)
	return v
}

// Set stores value under key and then notifies every observer.
// Observers run synchronously, in subscription order, after the value is stored.
func (h *Handle) Set(key string, value any) {
	h.mu.Lock()
	h.values[key] = value
	h.mu.Unlock()

	// Copy subscribers so observers may subscribe or unsubscribe while running.
	h.subMu.RLock()
	subs := make([]subscription, len(h.subs))
	copy(subs, h.subs)
	h.subMu.RUnlock()

	for _, s := range subs {
		s.observer(key, value)
	}
}

// Subscribe registers fn and returns a function that removes it.
// Calling the returned function more than once is a no-op.
func (h *Handle) Subscribe(fn Observer) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}

	h.subMu.Lock()
	h.nextID++
	id := h.nextID
	h.subs = append(h.subs, subscription{id: id, observer: fn})
	h.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { h.remove(id) })
	}
}

// remove deletes the subscription with id, keeping the order of the others.
func (h *Handle) remove(id uint64) {
	h.subMu.Lock()
	defer h.subMu.Unlock()

	for i, s := range h.subs {
		if s.id == id {
			h.subs = append(h.subs[:i], h.subs[i+1:]...)
			return
		}
	}
}

// Observers returns the number of subscribed observers.
func (h *Handle) Observers() int {
	h.subMu.RLock()
	defer h.subMu.RUnlock()
	return len(h.subs)
}

// Len returns the number of keys.
func (h *Handle) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.values)
}

// Keys returns the keys in sorted order.
func (h *Handle) Keys() []string {
	h.mu.RLock()
	keys := make([]string, 0, len(h.values))
	for k := range h.values {
		keys = append(keys, k)
	}
	h.mu.RUnlock()

	sort.Strings(keys)
	return keys
}

// Snapshot returns a shallow copy of the state map.
func (h *Handle) Snapshot() map[string]any {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make(map[string]any, len(h.values))
	for k, v := range h.values {
		out[k] = v
	}
	return out
}
