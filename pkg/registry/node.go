package registry

import (
	"errors"
	"sort"
	"sync"
	"sync/atomic"
)

// Node lifecycle errors.
var (
	ErrNodeDestroyed  = errors.New("node already destroyed")
	ErrDuplicateChild = errors.New("duplicate node name under parent")
)

// Node is a single registry entry: a named instance of a NodeType with
// a reference count, a position in the tree, and an opaque payload for
// type-specific state.
//
// A node is live from Create until its reference count reaches zero.
// At zero it is finalized exactly once (unpublish, detach, release) and
// no further operations are valid on it.
type Node struct {
	name string
	typ  *NodeType

	refs atomic.Int64

	mu       sync.Mutex
	parent   *Node
	children map[string]*Node
	payload  any

	reg *Registry
}

// Name returns the node name. Names are unique among siblings, not
// globally.
func (n *Node) Name() string {
	return n.name
}

// Type returns the node's NodeType.
func (n *Node) Type() *NodeType {
	return n.typ
}

// Payload returns the opaque type-specific state attached at creation.
// Returns nil after the node has been released.
func (n *Node) Payload() any {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.payload
}

// SetPayload replaces the node's payload.
func (n *Node) SetPayload(p any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.payload = p
}

// Parent returns the parent node, or nil for roots and detached nodes.
func (n *Node) Parent() *Node {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.parent
}

// Child returns the live child with the given name.
func (n *Node) Child(name string) (*Node, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	c, ok := n.children[name]
	return c, ok
}

// Children returns the live children sorted by name.
func (n *Node) Children() []*Node {
	n.mu.Lock()
	defer n.mu.Unlock()

	result := make([]*Node, 0, len(n.children))
	for _, c := range n.children {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].name < result[j].name })
	return result
}

// ChildCount returns the number of live children.
func (n *Node) ChildCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.children)
}

// RefCount returns the current reference count. Exposed for inspection
// and tests; treat it as advisory under concurrency.
func (n *Node) RefCount() int64 {
	return n.refs.Load()
}

// Get acquires an additional reference on the node, preventing its
// destruction until the matching Put. Fails once the count has reached
// zero: a destroyed node can never be resurrected.
func (n *Node) Get() error {
	for {
		c := n.refs.Load()
		if c <= 0 {
			return ErrNodeDestroyed
		}
		if n.refs.CompareAndSwap(c, c+1) {
			return nil
		}
	}
}

// Put drops one reference. The caller must not touch the node after
// Put returns; if this was the last reference the node has been
// finalized. Put on an already-destroyed node reports underflow as
// ErrNodeDestroyed.
func (n *Node) Put() error {
	for {
		c := n.refs.Load()
		if c <= 0 {
			return ErrNodeDestroyed
		}
		if n.refs.CompareAndSwap(c, c-1) {
			if c == 1 {
				n.finalize()
			}
			return nil
		}
	}
}

// finalize runs the one-time destruction sequence after the count hit
// zero: unpublish from the renderer, detach from the container, orphan
// surviving children, fire Release, clear the payload. Only the single
// goroutine that decremented 1 -> 0 ever gets here.
func (n *Node) finalize() {
	if n.reg != nil {
		n.reg.unpublish(n)
	}

	n.mu.Lock()
	parent := n.parent
	n.parent = nil
	kids := make([]*Node, 0, len(n.children))
	for _, c := range n.children {
		kids = append(kids, c)
	}
	n.children = nil
	n.mu.Unlock()

	if parent != nil {
		parent.removeChild(n)
	} else if n.reg != nil {
		n.reg.removeRoot(n)
	}

	// Children are detached, never destroyed transitively. Teardown
	// order is the orchestrator's responsibility.
	for _, c := range kids {
		c.detach()
	}

	if n.typ != nil && n.typ.release != nil {
		n.typ.release(n)
	}

	n.mu.Lock()
	n.payload = nil
	n.mu.Unlock()

	if n.reg != nil {
		n.reg.noteReleased(n)
	}
}

// addChild inserts c under n. Fails if n has been finalized or a
// sibling already carries the name.
func (n *Node) addChild(c *Node) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.children == nil {
		return ErrNodeDestroyed
	}
	if _, exists := n.children[c.name]; exists {
		return ErrDuplicateChild
	}
	n.children[c.name] = c
	return nil
}

// removeChild drops c from n's child map if it is still present.
func (n *Node) removeChild(c *Node) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.children == nil {
		return
	}
	if cur, ok := n.children[c.name]; ok && cur == c {
		delete(n.children, c.name)
	}
}

// detach clears the parent link. Called on surviving children when
// their parent is finalized.
func (n *Node) detach() {
	n.mu.Lock()
	n.parent = nil
	n.mu.Unlock()
}
