// Package inspect provides read-only views over a live registry tree
// for interactive shells and debugging output.
package inspect

import (
	"github.com/statefs-project/statefs-go/pkg/registry"
)

// Inspector walks a registry and snapshots its node tree.
type Inspector struct {
	reg *registry.Registry
}

// NewInspector creates an Inspector for the given registry.
func NewInspector(reg *registry.Registry) *Inspector {
	return &Inspector{reg: reg}
}

// Registry returns the underlying registry.
func (i *Inspector) Registry() *registry.Registry {
	return i.reg
}

// TreeInfo is a snapshot of the whole registry for display.
type TreeInfo struct {
	RegistryID string
	Name       string
	Roots      []NodeInfo
}

// NodeInfo is a snapshot of one node for display.
type NodeInfo struct {
	Name       string
	Type       string
	RefCount   int64
	Attributes []AttributeInfo
	Children   []NodeInfo
}

// AttributeInfo is a snapshot of one attribute for display. Value
// holds the show callback result; Err the callback failure, if any.
type AttributeInfo struct {
	Name   string
	Access string
	Value  string
	Err    string
}

// InspectTree snapshots the full registry tree, reading every
// readable attribute.
func (i *Inspector) InspectTree() *TreeInfo {
	tree := &TreeInfo{
		RegistryID: i.reg.ID(),
		Name:       i.reg.Name(),
	}
	for _, root := range i.reg.Roots() {
		tree.Roots = append(tree.Roots, i.inspectNode(root))
	}
	return tree
}

// InspectNode snapshots a single node and its descendants.
func (i *Inspector) InspectNode(n *registry.Node) NodeInfo {
	return i.inspectNode(n)
}

func (i *Inspector) inspectNode(n *registry.Node) NodeInfo {
	info := NodeInfo{
		Name:     n.Name(),
		Type:     n.Type().Name(),
		RefCount: n.RefCount(),
	}

	// Pin the node while its attributes are read. A node that went
	// away under us is reported bare.
	if err := n.Get(); err == nil {
		for _, attr := range n.Type().Attributes() {
			info.Attributes = append(info.Attributes, readAttribute(n, attr))
		}
		_ = n.Put()
	}

	for _, child := range n.Children() {
		info.Children = append(info.Children, i.inspectNode(child))
	}
	return info
}

func readAttribute(n *registry.Node, attr registry.Attribute) AttributeInfo {
	info := AttributeInfo{
		Name:   attr.Name,
		Access: attr.Access.String(),
	}
	if !attr.Access.CanRead() || attr.Show == nil {
		return info
	}

	data, err := attr.Show(n)
	if err != nil {
		info.Err = err.Error()
		return info
	}
	info.Value = string(data)
	return info
}
