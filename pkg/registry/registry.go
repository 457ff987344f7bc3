package registry

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/statefs-project/statefs-go/pkg/log"
)

// Registry errors.
var (
	ErrPublishFailed = errors.New("renderer publish failed")
	ErrNilType       = errors.New("nil node type")
	ErrDuplicateRoot = errors.New("duplicate root name")
	ErrNotFound      = errors.New("path not found")
)

// Renderer is the external rendering layer the registry publishes
// nodes to: a virtual-filesystem-like facade that makes nodes and
// their attributes visible under browsable paths. The registry
// consumes this interface; it never renders anything itself.
type Renderer interface {
	// Publish makes the node and its attributes visible under its
	// parent's published location, keyed by the node name.
	Publish(n *Node, attributeNames []string) error

	// Unpublish removes visibility. Must be idempotent.
	Unpublish(n *Node)
}

// noopRenderer is used when no renderer is configured.
type noopRenderer struct{}

func (noopRenderer) Publish(*Node, []string) error { return nil }
func (noopRenderer) Unpublish(*Node)               {}

// Action identifies a node lifecycle transition reported to the event
// hook.
type Action uint8

const (
	// ActionAdd is reported after a node is created and published.
	ActionAdd Action = 0
	// ActionRemove is reported after a node is released.
	ActionRemove Action = 1
)

// String returns the action name.
func (a Action) String() string {
	switch a {
	case ActionAdd:
		return "ADD"
	case ActionRemove:
		return "REMOVE"
	default:
		return "UNKNOWN"
	}
}

// EventHook is notified of node additions and removals, the uevent
// analogue for external observers. The default hook is a no-op.
// Hooks run synchronously inside Create/finalize and must not call
// back into the registry.
type EventHook func(n *Node, action Action)

// RootDecl declares one root node for Initialize.
type RootDecl struct {
	Name    string
	Type    *NodeType
	Payload any
}

// InitError reports which declared root aborted the bootstrap.
// By the time Initialize returns an InitError, every previously
// created root has been destroyed again: partial initialization is
// never left visible.
type InitError struct {
	Root string
	Err  error
}

// Error returns the error message.
func (e *InitError) Error() string {
	return fmt.Sprintf("bootstrap failed at root %q: %v", e.Root, e.Err)
}

// Unwrap returns the underlying error.
func (e *InitError) Unwrap() error {
	return e.Err
}

// Registry owns the root-level node collection and mediates node
// creation and destruction. It is a passive, call-driven structure:
// all operations execute synchronously in the calling goroutine.
type Registry struct {
	id       string
	name     string
	renderer Renderer
	logger   log.Logger

	mu        sync.Mutex
	roots     map[string]*Node
	rootOrder []*Node
	hook      EventHook
}

// New creates a registry publishing to the given renderer. A nil
// renderer disables rendering; a nil logger disables logging.
func New(name string, renderer Renderer, logger log.Logger) *Registry {
	if renderer == nil {
		renderer = noopRenderer{}
	}
	if logger == nil {
		logger = log.NoopLogger{}
	}
	return &Registry{
		id:       uuid.New().String(),
		name:     name,
		renderer: renderer,
		logger:   logger,
		roots:    make(map[string]*Node),
	}
}

// ID returns the registry instance ID.
func (r *Registry) ID() string {
	return r.id
}

// Name returns the registry name.
func (r *Registry) Name() string {
	return r.name
}

// Logger returns the registry's event logger.
func (r *Registry) Logger() log.Logger {
	return r.logger
}

// SetEventHook installs the add/remove notification hook.
func (r *Registry) SetEventHook(h EventHook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hook = h
}

// Root returns a root node by name.
func (r *Registry) Root(name string) (*Node, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.roots[name]
	return n, ok
}

// Roots returns the root nodes in creation order.
func (r *Registry) Roots() []*Node {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]*Node, len(r.rootOrder))
	copy(result, r.rootOrder)
	return result
}

// Create allocates a node of the given type, wires it into the tree
// (under parent, or as a root when parent is nil) and publishes it to
// the renderer. The returned node holds one reference, owned by the
// caller; drop it with Destroy.
//
// On renderer failure the insertion is rolled back, Release is NOT
// invoked (the node never reached a live state), and the error wraps
// ErrPublishFailed.
func (r *Registry) Create(name string, typ *NodeType, parent *Node, payload any) (*Node, error) {
	if name == "" || strings.Contains(name, "/") {
		return nil, fmt.Errorf("node %q: %w", name, ErrInvalidName)
	}
	if typ == nil {
		return nil, fmt.Errorf("node %q: %w", name, ErrNilType)
	}

	n := &Node{
		name:     name,
		typ:      typ,
		parent:   parent,
		children: make(map[string]*Node),
		payload:  payload,
		reg:      r,
	}
	n.refs.Store(1)

	if parent == nil {
		if err := r.addRoot(n); err != nil {
			r.logLifecycle(log.OpCreate, n, err)
			return nil, fmt.Errorf("node %q: %w", name, err)
		}
	} else {
		if err := parent.addChild(n); err != nil {
			r.logLifecycle(log.OpCreate, n, err)
			return nil, fmt.Errorf("node %q under %q: %w", name, parent.Name(), err)
		}
	}

	if err := r.renderer.Publish(n, typ.AttributeNames()); err != nil {
		// Roll back the insertion. The node never went live, so the
		// release callback must not fire.
		if parent == nil {
			r.removeRoot(n)
		} else {
			parent.removeChild(n)
		}
		n.refs.Store(0)
		wrapped := fmt.Errorf("node %q: %w: %w", name, ErrPublishFailed, err)
		r.logLifecycle(log.OpPublish, n, wrapped)
		return nil, wrapped
	}

	r.logLifecycle(log.OpCreate, n, nil)
	r.notify(n, ActionAdd)
	return n, nil
}

// Destroy relinquishes the caller's handle on the node. If this was
// the last reference the node is finalized: unpublished, detached,
// released. Destroying an already-destroyed node is an error.
func (r *Registry) Destroy(n *Node) error {
	err := n.Put()
	r.logLifecycle(log.OpDestroy, n, err)
	return err
}

// Initialize builds the declared root set in order, all or nothing.
// On the first failure every previously created root is destroyed in
// reverse creation order and an *InitError names the failed root.
func (r *Registry) Initialize(decls []RootDecl) error {
	created := make([]*Node, 0, len(decls))

	for _, d := range decls {
		n, err := r.Create(d.Name, d.Type, nil, d.Payload)
		if err != nil {
			for i := len(created) - 1; i >= 0; i-- {
				_ = r.Destroy(created[i])
			}
			initErr := &InitError{Root: d.Name, Err: err}
			r.logger.Log(log.Event{
				Timestamp:  time.Now(),
				RegistryID: r.id,
				Category:   log.CategoryLifecycle,
				Op:         log.OpInit,
				Node:       d.Name,
				Err:        initErr.Error(),
			})
			return initErr
		}
		created = append(created, n)
	}

	r.logger.Log(log.Event{
		Timestamp:  time.Now(),
		RegistryID: r.id,
		Category:   log.CategoryLifecycle,
		Op:         log.OpInit,
	})
	return nil
}

// Exit drops the registry's handle on every remaining root, in reverse
// creation order. Roots with additional live references survive until
// those references are dropped.
func (r *Registry) Exit() {
	r.mu.Lock()
	roots := make([]*Node, len(r.rootOrder))
	copy(roots, r.rootOrder)
	r.mu.Unlock()

	for i := len(roots) - 1; i >= 0; i-- {
		_ = roots[i].Put()
	}

	r.logger.Log(log.Event{
		Timestamp:  time.Now(),
		RegistryID: r.id,
		Category:   log.CategoryLifecycle,
		Op:         log.OpExit,
	})
}

// addRoot inserts a new root node.
func (r *Registry) addRoot(n *Node) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.roots[n.name]; exists {
		return ErrDuplicateRoot
	}
	r.roots[n.name] = n
	r.rootOrder = append(r.rootOrder, n)
	return nil
}

// removeRoot drops a root node if it is still registered.
func (r *Registry) removeRoot(n *Node) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cur, ok := r.roots[n.name]; ok && cur == n {
		delete(r.roots, n.name)
	}
	for i, cur := range r.rootOrder {
		if cur == n {
			r.rootOrder = append(r.rootOrder[:i], r.rootOrder[i+1:]...)
			break
		}
	}
}

// unpublish removes the node from the renderer. Called once from
// finalize.
func (r *Registry) unpublish(n *Node) {
	r.renderer.Unpublish(n)
	r.logLifecycle(log.OpUnpublish, n, nil)
}

// noteReleased records the one-time release and fires the remove
// notification. Called once from finalize, after Release ran.
func (r *Registry) noteReleased(n *Node) {
	r.logLifecycle(log.OpRelease, n, nil)
	r.notify(n, ActionRemove)
}

// notify invokes the event hook if one is installed.
func (r *Registry) notify(n *Node, action Action) {
	r.mu.Lock()
	hook := r.hook
	r.mu.Unlock()

	if hook != nil {
		hook(n, action)
	}
}

// logLifecycle emits a lifecycle event.
func (r *Registry) logLifecycle(op log.Op, n *Node, err error) {
	event := log.Event{
		Timestamp:  time.Now(),
		RegistryID: r.id,
		Category:   log.CategoryLifecycle,
		Op:         op,
		Node:       n.Name(),
	}
	if err != nil {
		event.Err = err.Error()
	}
	r.logger.Log(event)
}
