// Package persistence provides runtime state persistence for storage
// arrays.
//
// This package handles the JSON serialization of array state (the
// degraded flag and the registered device set) that survives shell
// restarts. Event logs are handled separately by the log package's
// FileLogger.
package persistence

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// StateVersion is the current version of the state file format.
const StateVersion = 1

// ArrayState contains the persisted state for one storage array.
type ArrayState struct {
	// Version is the state file format version.
	Version int `json:"version"`

	// SavedAt is when the state was last saved.
	SavedAt time.Time `json:"saved_at"`

	// Registry is the registry name the state belongs to.
	Registry string `json:"registry,omitempty"`

	// Degraded is the array degraded flag.
	Degraded bool `json:"degraded,omitempty"`

	// Devices contains one entry per registered device.
	Devices []DeviceEntry `json:"devices,omitempty"`
}

// DeviceEntry contains the persisted state of one device.
type DeviceEntry struct {
	// Label is the device name under the devices container.
	Label string `json:"label"`

	// Capacity is the device capacity in bytes.
	Capacity uint64 `json:"capacity"`

	// Online is the device online flag.
	Online bool `json:"online"`
}

// StateStore manages persistence of array state to a JSON file.
type StateStore struct {
	mu   sync.Mutex
	path string
}

// NewStateStore creates a new array state store.
func NewStateStore(path string) *StateStore {
	return &StateStore{path: path}
}

// Save persists the array state to disk.
func (s *StateStore) Save(state *ArrayState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Ensure parent directory exists
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	state.Version = StateVersion
	if state.SavedAt.IsZero() {
		state.SavedAt = time.Now()
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0644)
}

// Load reads the array state from disk.
// Returns nil, nil if the file doesn't exist (empty state).
func (s *StateStore) Load() (*ArrayState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	state := &ArrayState{}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, err
	}

	return state, nil
}

// Clear removes the state file.
func (s *StateStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
