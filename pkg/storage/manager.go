package storage

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/statefs-project/statefs-go/pkg/persistence"
	"github.com/statefs-project/statefs-go/pkg/registry"
)

// Version is reported by the info root.
const Version = "1.0"

// Manager errors.
var (
	ErrNotInitialized = errors.New("storage manager not initialized")
	ErrDeviceExists   = errors.New("device already registered")
	ErrDeviceNotFound = errors.New("device not registered")
)

// Manager owns the storage root set and the device lifecycle. All
// methods are safe for concurrent use.
type Manager struct {
	reg *registry.Registry

	mu       sync.Mutex
	devices  *registry.Node
	health   *registry.Node
	info     *registry.Node
	degraded bool
}

// NewManager creates a manager over the given registry. Call
// Initialize to build the root set.
func NewManager(reg *registry.Registry) *Manager {
	return &Manager{reg: reg}
}

// RootSpec names one configured root and the type backing it.
type RootSpec struct {
	Name string
	Type string
}

// DefaultRoots is the standard root set in bootstrap order.
func DefaultRoots() []RootSpec {
	return []RootSpec{
		{Name: "devices", Type: "devices"},
		{Name: "health", Type: "health"},
		{Name: "info", Type: "info"},
	}
}

// Initialize builds the devices, health and info roots in that order,
// all or nothing. On failure no root remains.
func (m *Manager) Initialize() error {
	return m.InitializeRoots(DefaultRoots())
}

// InitializeRoots builds a configured root set, all or nothing. Type
// names resolve through TypeTable; the "device" type is reserved for
// children of the devices container.
func (m *Manager) InitializeRoots(specs []RootSpec) error {
	table := m.TypeTable()

	decls := make([]registry.RootDecl, 0, len(specs))
	for _, spec := range specs {
		if spec.Type == "device" {
			return fmt.Errorf("root %q: type device cannot be a root", spec.Name)
		}
		typ, ok := table[spec.Type]
		if !ok {
			return fmt.Errorf("root %q: unknown type %q", spec.Name, spec.Type)
		}
		decls = append(decls, registry.RootDecl{Name: spec.Name, Type: typ, Payload: m})
	}

	if err := m.reg.Initialize(decls); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, spec := range specs {
		n, _ := m.reg.Root(spec.Name)
		switch spec.Type {
		case "devices":
			m.devices = n
		case "health":
			m.health = n
		case "info":
			m.info = n
		}
	}
	return nil
}

// Exit drops the manager's roots in reverse creation order.
func (m *Manager) Exit() {
	m.mu.Lock()
	m.devices, m.health, m.info = nil, nil, nil
	m.mu.Unlock()

	m.reg.Exit()
}

// AddDevice registers a device under the devices root and returns its
// record. Labels are unique.
func (m *Manager) AddDevice(label string, capacity uint64) (*DeviceRecord, error) {
	m.mu.Lock()
	parent := m.devices
	m.mu.Unlock()

	if parent == nil {
		return nil, ErrNotInitialized
	}
	if _, exists := parent.Child(label); exists {
		return nil, fmt.Errorf("device %q: %w", label, ErrDeviceExists)
	}

	record := newDeviceRecord(label, capacity)
	if _, err := m.reg.Create(label, DeviceType(), parent, record); err != nil {
		return nil, err
	}
	return record, nil
}

// RemoveDevice drops the manager's handle on a device node. With no
// other references outstanding the device is released immediately.
func (m *Manager) RemoveDevice(label string) error {
	m.mu.Lock()
	parent := m.devices
	m.mu.Unlock()

	if parent == nil {
		return ErrNotInitialized
	}
	n, ok := parent.Child(label)
	if !ok {
		return fmt.Errorf("device %q: %w", label, ErrDeviceNotFound)
	}
	return m.reg.Destroy(n)
}

// Device returns the record of a registered device.
func (m *Manager) Device(label string) (*DeviceRecord, bool) {
	m.mu.Lock()
	parent := m.devices
	m.mu.Unlock()

	if parent == nil {
		return nil, false
	}
	n, ok := parent.Child(label)
	if !ok {
		return nil, false
	}
	record, ok := n.Payload().(*DeviceRecord)
	return record, ok
}

// DeviceCount returns the number of registered devices.
func (m *Manager) DeviceCount() int {
	m.mu.Lock()
	parent := m.devices
	m.mu.Unlock()

	if parent == nil {
		return 0
	}
	return parent.ChildCount()
}

// Degraded reports the array degraded flag.
func (m *Manager) Degraded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.degraded
}

// SetDegraded sets the array degraded flag.
func (m *Manager) SetDegraded(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.degraded = v
}

// Snapshot captures the persistable array state: the degraded flag
// and one entry per registered device.
func (m *Manager) Snapshot() *persistence.ArrayState {
	state := &persistence.ArrayState{
		Registry: m.reg.Name(),
		Degraded: m.Degraded(),
	}

	m.mu.Lock()
	parent := m.devices
	m.mu.Unlock()

	if parent == nil {
		return state
	}
	for _, n := range parent.Children() {
		record, ok := n.Payload().(*DeviceRecord)
		if !ok {
			continue
		}
		state.Devices = append(state.Devices, persistence.DeviceEntry{
			Label:    record.Label,
			Capacity: record.Capacity,
			Online:   record.Online(),
		})
	}
	return state
}

// Restore re-registers the devices and flags from a saved state.
// Devices already registered under the same label keep their node;
// only their online flag is applied. A nil state is a no-op.
func (m *Manager) Restore(state *persistence.ArrayState) error {
	if state == nil {
		return nil
	}

	m.SetDegraded(state.Degraded)
	for _, entry := range state.Devices {
		record, err := m.AddDevice(entry.Label, entry.Capacity)
		if errors.Is(err, ErrDeviceExists) {
			if existing, ok := m.Device(entry.Label); ok {
				existing.SetOnline(entry.Online)
			}
			continue
		}
		if err != nil {
			return err
		}
		record.SetOnline(entry.Online)
	}
	return nil
}

// totalCapacity sums the capacity of all registered devices.
func (m *Manager) totalCapacity() uint64 {
	m.mu.Lock()
	parent := m.devices
	m.mu.Unlock()

	if parent == nil {
		return 0
	}
	var total uint64
	for _, n := range parent.Children() {
		if record, ok := n.Payload().(*DeviceRecord); ok {
			total += record.Capacity
		}
	}
	return total
}

// DevicesType builds the node type for the devices container root.
func (m *Manager) DevicesType() *registry.NodeType {
	return registry.MustNodeType("devices", []registry.Attribute{
		{
			Name:   "summary",
			Access: registry.AccessReadOnly,
			Show: func(n *registry.Node) ([]byte, error) {
				mgr := managerOf(n)
				s := fmt.Sprintf("%d devices, %d bytes", mgr.DeviceCount(), mgr.totalCapacity())
				return []byte(s), nil
			},
		},
	}, nil)
}

// HealthType builds the node type for the health root. The degraded
// attribute is writable; status derives from it.
func (m *Manager) HealthType() *registry.NodeType {
	return registry.MustNodeType("health", []registry.Attribute{
		{
			Name:   "status",
			Access: registry.AccessReadOnly,
			Show: func(n *registry.Node) ([]byte, error) {
				if managerOf(n).Degraded() {
					return []byte("degraded"), nil
				}
				return []byte("ok"), nil
			},
		},
		{
			Name:   "degraded",
			Access: registry.AccessReadWrite,
			Show: func(n *registry.Node) ([]byte, error) {
				return []byte(formatBool(managerOf(n).Degraded())), nil
			},
			Store: func(n *registry.Node, data []byte) error {
				v, err := parseBool(data)
				if err != nil {
					return err
				}
				managerOf(n).SetDegraded(v)
				return nil
			},
		},
	}, nil)
}

// InfoType builds the node type for the info root.
func (m *Manager) InfoType() *registry.NodeType {
	return registry.MustNodeType("info", []registry.Attribute{
		{
			Name:   "num_devices",
			Access: registry.AccessReadOnly,
			Show: func(n *registry.Node) ([]byte, error) {
				return []byte(strconv.Itoa(managerOf(n).DeviceCount())), nil
			},
		},
		{
			Name:   "version",
			Access: registry.AccessReadOnly,
			Show: func(*registry.Node) ([]byte, error) {
				return []byte(Version), nil
			},
		},
	}, nil)
}

// TypeTable maps configuration type names to node types, used to
// resolve configured root declarations.
func (m *Manager) TypeTable() map[string]*registry.NodeType {
	return map[string]*registry.NodeType{
		"devices": m.DevicesType(),
		"health":  m.HealthType(),
		"info":    m.InfoType(),
		"device":  DeviceType(),
	}
}

func managerOf(n *registry.Node) *Manager {
	return n.Payload().(*Manager)
}
