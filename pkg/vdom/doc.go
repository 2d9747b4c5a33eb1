// Package vdom provides the virtual node tree rendered by components.
//
// A VNode tree is produced fresh on every render by Generate, which walks a
// compiled template.Node and resolves {{expr}} placeholders against the
// component's live state. The tree mirrors the template's shape exactly:
// interpolation never adds or removes nodes.
//
// # Events
//
// Template attributes prefixed with "@" are not copied as attributes. They
// become entries in VNode.Events mapping the event name to an action name.
// Actions are resolved by the renderer, not here.
//
// # Diffing
//
// Diff compares two trees positionally and returns path-addressed Patch
// operations. Renderers that can mutate in place apply them; the others
// re-render the whole subtree.
package vdom
