// Package dom materializes VNode trees against a render target.
//
// A Target is anything that can create elements and text leaves and hold an
// ordered list of children: a browser shadow root (see package jsdom), an
// in-memory document (see package memdom), or a test double. Render is the
// baseline full-subtree replacement; Patch applies a vdom.Diff in place when
// the target also implements Patcher.
package dom
