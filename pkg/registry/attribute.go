package registry

import (
	"errors"
)

// Access flags for attributes.
type Access uint8

const (
	// AccessRead allows reading the attribute through its show callback.
	AccessRead Access = 1 << iota

	// AccessWrite allows writing the attribute through its store callback.
	AccessWrite

	// Common access combinations.

	// AccessReadOnly is read access only.
	AccessReadOnly = AccessRead

	// AccessReadWrite is read and write access.
	AccessReadWrite = AccessRead | AccessWrite

	// AccessWriteOnly is write access only. Legal but unusual.
	AccessWriteOnly = AccessWrite
)

// CanRead returns true if reading is allowed.
func (a Access) CanRead() bool { return a&AccessRead != 0 }

// CanWrite returns true if writing is allowed.
func (a Access) CanWrite() bool { return a&AccessWrite != 0 }

// String returns the access flags as a string.
func (a Access) String() string {
	var s string
	if a.CanRead() {
		s += "r"
	} else {
		s += "-"
	}
	if a.CanWrite() {
		s += "w"
	} else {
		s += "-"
	}
	return s
}

// ShowFunc produces the current value bytes of an attribute on a node.
type ShowFunc func(n *Node) ([]byte, error)

// StoreFunc consumes new value bytes for an attribute on a node.
type StoreFunc func(n *Node, data []byte) error

// Attribute capability errors, returned by dispatch when the requested
// operation is not backed by a callback.
var (
	ErrNotReadable = errors.New("attribute is not readable")
	ErrNotWritable = errors.New("attribute is not writable")
)

// NodeType declaration errors, detected by NewNodeType before any node
// of the type can exist.
var (
	ErrInvalidName        = errors.New("invalid name")
	ErrDuplicateAttribute = errors.New("duplicate attribute name")
	ErrMissingStore       = errors.New("writable attribute without store callback")
)

// Attribute declares one named, typed read/write capability on a
// NodeType. Attributes are plain data: the registry never interprets
// the value bytes, it only routes them between the rendering layer and
// the callbacks.
type Attribute struct {
	// Name is the attribute name, unique within its NodeType.
	Name string

	// Access defines the allowed operations.
	Access Access

	// Show produces the value. May be nil for write-only attributes.
	Show ShowFunc

	// Store consumes a new value. Required when Access allows writing.
	Store StoreFunc
}

// validate checks the declaration invariants for a single attribute.
func (a *Attribute) validate() error {
	if a.Name == "" {
		return ErrInvalidName
	}
	if a.Access.CanWrite() && a.Store == nil {
		return ErrMissingStore
	}
	return nil
}
