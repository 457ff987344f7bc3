package registry

import (
	"fmt"
)

// ReleaseFunc is the one-time cleanup callback of a NodeType, invoked
// when a node's reference count reaches zero.
type ReleaseFunc func(n *Node)

// NodeType is the immutable schema shared by all nodes of a kind: a
// named, ordered attribute table plus a release callback. NodeTypes are
// declared once (typically as package-level values) and live for the
// process lifetime.
type NodeType struct {
	name       string
	attributes []Attribute
	index      map[string]int
	release    ReleaseFunc
}

// NewNodeType builds and validates a NodeType. Declaration is pure:
// nothing is registered anywhere, and a malformed declaration fails
// here rather than at dispatch time. Attribute order is display order.
// release may be nil when no per-node cleanup is needed.
func NewNodeType(name string, attrs []Attribute, release ReleaseFunc) (*NodeType, error) {
	if name == "" {
		return nil, fmt.Errorf("node type: %w", ErrInvalidName)
	}

	index := make(map[string]int, len(attrs))
	for i := range attrs {
		a := &attrs[i]
		if err := a.validate(); err != nil {
			return nil, fmt.Errorf("node type %q, attribute %q: %w", name, a.Name, err)
		}
		if _, exists := index[a.Name]; exists {
			return nil, fmt.Errorf("node type %q, attribute %q: %w", name, a.Name, ErrDuplicateAttribute)
		}
		index[a.Name] = i
	}

	t := &NodeType{
		name:       name,
		attributes: make([]Attribute, len(attrs)),
		index:      index,
		release:    release,
	}
	copy(t.attributes, attrs)
	return t, nil
}

// MustNodeType is like NewNodeType but panics on a malformed
// declaration. Intended for static, package-level type tables.
func MustNodeType(name string, attrs []Attribute, release ReleaseFunc) *NodeType {
	t, err := NewNodeType(name, attrs, release)
	if err != nil {
		panic(err)
	}
	return t
}

// Name returns the node type name.
func (t *NodeType) Name() string {
	return t.name
}

// Attributes returns the attribute table in declaration order.
// The returned slice is a copy; the type itself stays immutable.
func (t *NodeType) Attributes() []Attribute {
	attrs := make([]Attribute, len(t.attributes))
	copy(attrs, t.attributes)
	return attrs
}

// Attribute returns the attribute with the given name. The result is
// a copy; like Attributes, the lookup never aliases the type's own
// table, so callers cannot mutate the declared descriptors.
func (t *NodeType) Attribute(name string) (*Attribute, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	a := t.attributes[i]
	return &a, true
}

// AttributeNames returns the attribute names in declaration order.
func (t *NodeType) AttributeNames() []string {
	names := make([]string, len(t.attributes))
	for i := range t.attributes {
		names[i] = t.attributes[i].Name
	}
	return names
}
