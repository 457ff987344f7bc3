package render

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/statefs-project/statefs-go/pkg/registry"
)

// Renderer errors.
var (
	ErrParentNotPublished = errors.New("parent not published")
	ErrPathInUse          = errors.New("path already published")
)

// attrEntry binds a published attribute path to its node and
// attribute descriptor.
type attrEntry struct {
	node *registry.Node
	attr *registry.Attribute
}

// PublishHook can veto a publish, used to exercise rollback paths in
// tests and fault drills. Return nil to allow the publish.
type PublishHook func(n *registry.Node) error

// MemoryRenderer is an in-memory rendering layer: it tracks published
// paths and resolves read/write path tokens to (node, attribute)
// pairs for the dispatcher. Safe for concurrent use.
type MemoryRenderer struct {
	mu        sync.RWMutex
	nodePaths map[*registry.Node]string
	dirs      map[string]*registry.Node
	attrs     map[string]attrEntry
	hook      PublishHook
}

// NewMemoryRenderer creates an empty renderer.
func NewMemoryRenderer() *MemoryRenderer {
	return &MemoryRenderer{
		nodePaths: make(map[*registry.Node]string),
		dirs:      make(map[string]*registry.Node),
		attrs:     make(map[string]attrEntry),
	}
}

// SetPublishHook installs a publish veto hook.
func (m *MemoryRenderer) SetPublishHook(hook PublishHook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hook = hook
}

// Publish makes the node visible under its parent's published path.
// Implements registry.Renderer.
func (m *MemoryRenderer) Publish(n *registry.Node, attributeNames []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.hook != nil {
		if err := m.hook(n); err != nil {
			return err
		}
	}

	path := n.Name()
	if parent := n.Parent(); parent != nil {
		parentPath, ok := m.nodePaths[parent]
		if !ok {
			return fmt.Errorf("%w: %q", ErrParentNotPublished, parent.Name())
		}
		path = parentPath + "/" + n.Name()
	}

	if _, exists := m.dirs[path]; exists {
		return fmt.Errorf("%w: %q", ErrPathInUse, path)
	}

	m.nodePaths[n] = path
	m.dirs[path] = n
	for _, name := range attributeNames {
		attr, ok := n.Type().Attribute(name)
		if !ok {
			continue
		}
		m.attrs[path+"/"+name] = attrEntry{node: n, attr: attr}
	}
	return nil
}

// Unpublish removes the node's own entries. Idempotent. Entries of
// children published beneath the node are left alone; a detached child
// remains resolvable until it is unpublished itself.
// Implements registry.Renderer.
func (m *MemoryRenderer) Unpublish(n *registry.Node) {
	m.mu.Lock()
	defer m.mu.Unlock()

	path, ok := m.nodePaths[n]
	if !ok {
		return
	}
	delete(m.nodePaths, n)
	delete(m.dirs, path)
	for p, e := range m.attrs {
		if e.node == n {
			delete(m.attrs, p)
		}
	}
}

// Resolve maps a published attribute path to its (node, attribute)
// pair. Implements the dispatcher's Resolver contract.
func (m *MemoryRenderer) Resolve(path string) (*registry.Node, *registry.Attribute, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.attrs[path]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", registry.ErrNotFound, path)
	}
	return e.node, e.attr, nil
}

// NodePath returns the publish-time path of a node.
func (m *MemoryRenderer) NodePath(n *registry.Node) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	path, ok := m.nodePaths[n]
	return path, ok
}

// Lookup returns the node published at the given path.
func (m *MemoryRenderer) Lookup(path string) (*registry.Node, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.dirs[path]
	return n, ok
}

// List enumerates the published names directly under a node path:
// the node's attributes, then child node names. The empty path lists
// the published roots.
func (m *MemoryRenderer) List(path string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if path == "" {
		var roots []string
		for p := range m.dirs {
			if !strings.Contains(p, "/") {
				roots = append(roots, p)
			}
		}
		sort.Strings(roots)
		return roots, nil
	}

	n, ok := m.dirs[path]
	if !ok {
		return nil, fmt.Errorf("%w: %q", registry.ErrNotFound, path)
	}

	names := n.Type().AttributeNames()

	var kids []string
	prefix := path + "/"
	for p := range m.dirs {
		if rest, ok := strings.CutPrefix(p, prefix); ok && !strings.Contains(rest, "/") {
			kids = append(kids, rest)
		}
	}
	sort.Strings(kids)
	return append(names, kids...), nil
}
