package storage

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/statefs-project/statefs-go/pkg/registry"
)

// DeviceRecord is the state behind one device node.
type DeviceRecord struct {
	UID      string
	Label    string
	Capacity uint64

	mu     sync.Mutex
	online bool
	closed bool
}

// newDeviceRecord allocates a record with a fresh instance UID.
// Devices start online.
func newDeviceRecord(label string, capacity uint64) *DeviceRecord {
	return &DeviceRecord{
		UID:      uuid.New().String(),
		Label:    label,
		Capacity: capacity,
		online:   true,
	}
}

// Online reports whether the device is marked online.
func (r *DeviceRecord) Online() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.online
}

// SetOnline marks the device online or offline.
func (r *DeviceRecord) SetOnline(v bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.online = v
}

// Closed reports whether the device node has been released.
func (r *DeviceRecord) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

func (r *DeviceRecord) close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
}

// DeviceType builds the node type for individual devices.
func DeviceType() *registry.NodeType {
	return registry.MustNodeType("device", []registry.Attribute{
		{
			Name:   "label",
			Access: registry.AccessReadOnly,
			Show: func(n *registry.Node) ([]byte, error) {
				return []byte(deviceOf(n).Label), nil
			},
		},
		{
			Name:   "uid",
			Access: registry.AccessReadOnly,
			Show: func(n *registry.Node) ([]byte, error) {
				return []byte(deviceOf(n).UID), nil
			},
		},
		{
			Name:   "capacity",
			Access: registry.AccessReadOnly,
			Show: func(n *registry.Node) ([]byte, error) {
				return []byte(strconv.FormatUint(deviceOf(n).Capacity, 10)), nil
			},
		},
		{
			Name:   "online",
			Access: registry.AccessReadWrite,
			Show: func(n *registry.Node) ([]byte, error) {
				return []byte(formatBool(deviceOf(n).Online())), nil
			},
			Store: func(n *registry.Node, data []byte) error {
				v, err := parseBool(data)
				if err != nil {
					return err
				}
				deviceOf(n).SetOnline(v)
				return nil
			},
		},
	}, func(n *registry.Node) {
		deviceOf(n).close()
	})
}

func deviceOf(n *registry.Node) *DeviceRecord {
	return n.Payload().(*DeviceRecord)
}

// formatBool renders a flag the way attribute files expect it.
func formatBool(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

// parseBool accepts "0" and "1", with optional trailing whitespace.
func parseBool(data []byte) (bool, error) {
	switch trimmed(data) {
	case "0":
		return false, nil
	case "1":
		return true, nil
	default:
		return false, fmt.Errorf("invalid flag value %q, want 0 or 1", string(data))
	}
}

func trimmed(data []byte) string {
	s := string(data)
	for len(s) > 0 {
		last := s[len(s)-1]
		if last != '\n' && last != '\r' && last != ' ' && last != '\t' {
			break
		}
		s = s[:len(s)-1]
	}
	return s
}
