package vdom

import (
	"fmt"
	"strconv"
	"strings"
)

// PatchOp is the type of patch operation.
type PatchOp uint8

const (
	PatchSetText     PatchOp = 0x01 // Update text content
	PatchSetAttr     PatchOp = 0x02 // Set/update attribute
	PatchRemoveAttr  PatchOp = 0x03 // Remove attribute
	PatchInsertNode  PatchOp = 0x04 // Append new node to a parent
	PatchRemoveNode  PatchOp = 0x05 // Remove node
	PatchReplaceNode PatchOp = 0x07 // Replace node entirely
)

// String returns the string representation of the PatchOp.
func (op PatchOp) String() string {
	switch op {
	case PatchSetText:
		return "SetText"
	case PatchSetAttr:
		return "SetAttr"
	case PatchRemoveAttr:
		return "RemoveAttr"
	case PatchInsertNode:
		return "InsertNode"
	case PatchRemoveNode:
		return "RemoveNode"
	case PatchReplaceNode:
		return "ReplaceNode"
	default:
		return "Unknown"
	}
}

// Patch represents a single DOM operation to apply.
//
// Path addresses a node in the previous tree by child indices from its root.
// For PatchInsertNode, Path is the parent and Node is appended to it.
type Patch struct {
	Op    PatchOp // Operation type
	Path  []int   // Target node in the previous tree
	Key   string  // Attribute key (for SetAttr/RemoveAttr)
	Value string  // New text or attribute value
	Node  *VNode  // For InsertNode/ReplaceNode
}

// String formats the patch for logs and test failures.
func (p Patch) String() string {
	var b strings.Builder
	b.WriteString(p.Op.String())
	b.WriteString(" /")
	for i, idx := range p.Path {
		if i > 0 {
			b.WriteByte('/')
		}
		b.WriteString(strconv.Itoa(idx))
	}
	switch p.Op {
	case PatchSetText:
		fmt.Fprintf(&b, " %q", p.Value)
	case PatchSetAttr:
		fmt.Fprintf(&b, " %s=%q", p.Key, p.Value)
	case PatchRemoveAttr:
		fmt.Fprintf(&b, " %s", p.Key)
	case PatchInsertNode, PatchReplaceNode:
		if p.Node != nil {
			fmt.Fprintf(&b, " <%s>", p.Node.Kind)
		}
	}
	return b.String()
}
