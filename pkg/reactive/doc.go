// Package reactive provides the observable state container used by component
// instances.
//
// A Handle wraps a plain map. Reads behave exactly like reading the map; every
// write stores the value and then synchronously notifies each subscribed
// Observer, in subscription order, with the written key and value.
//
//	state := reactive.Wrap(map[string]any{"count": 0})
//	unsubscribe := state.Subscribe(func(key string, value any) {
//	    fmt.Println(key, "=", value)
//	})
//	defer unsubscribe()
//
//	state.Set("count", 1) // prints "count = 1"
//
// Component instances subscribe exactly one observer per instance, which drives
// the instance's update transition.
package reactive
