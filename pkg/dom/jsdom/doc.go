// Package jsdom renders into a browser shadow root through syscall/js.
//
// It is only built for GOOS=js GOARCH=wasm. Define registers every component
// of a registry as a custom element: each element gets a shadow root holding
// its style and a render container, mounts an instance when connected and
// unmounts it when disconnected. Hosts that manage elements themselves call
// AttachShadow and pass the returned Root to component.NewInstance.
package jsdom
