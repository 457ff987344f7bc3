package log

import (
	"time"
)

// Event represents a registry log event captured at any layer.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// RegistryID uniquely identifies the registry instance (UUID).
	RegistryID string `cbor:"2,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"3,keyasint"`

	// Op is the registry operation that produced the event.
	Op Op `cbor:"4,keyasint"`

	// Path is the published path involved, if any.
	Path string `cbor:"5,keyasint,omitempty"`

	// Node is the node name involved, if any.
	Node string `cbor:"6,keyasint,omitempty"`

	// Attribute is the attribute name involved, if any.
	Attribute string `cbor:"7,keyasint,omitempty"`

	// Err is the error text for failed operations (empty on success).
	Err string `cbor:"8,keyasint,omitempty"`

	// Duration is how long the operation took (dispatch events only).
	// Stored as nanoseconds.
	Duration *time.Duration `cbor:"9,keyasint,omitempty"`
}

// OK returns true if the event recorded a successful operation.
func (e Event) OK() bool { return e.Err == "" }

// Category classifies the event type.
type Category uint8

const (
	// CategoryLifecycle covers node creation, destruction, release and
	// renderer publish/unpublish.
	CategoryLifecycle Category = 0

	// CategoryDispatch covers attribute reads and writes.
	CategoryDispatch Category = 1

	// CategoryError covers failures not tied to a single operation.
	CategoryError Category = 2
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryLifecycle:
		return "LIFECYCLE"
	case CategoryDispatch:
		return "DISPATCH"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Op identifies the registry operation behind an event.
type Op uint8

const (
	// OpCreate records a node creation.
	OpCreate Op = 0
	// OpDestroy records a handle release via Registry.Destroy.
	OpDestroy Op = 1
	// OpRelease records the one-time release of a node at refcount zero.
	OpRelease Op = 2
	// OpPublish records a renderer publish.
	OpPublish Op = 3
	// OpUnpublish records a renderer unpublish.
	OpUnpublish Op = 4
	// OpRead records an attribute read dispatch.
	OpRead Op = 5
	// OpWrite records an attribute write dispatch.
	OpWrite Op = 6
	// OpInit records a bootstrap run.
	OpInit Op = 7
	// OpExit records a registry teardown.
	OpExit Op = 8
)

// String returns the operation name.
func (o Op) String() string {
	switch o {
	case OpCreate:
		return "CREATE"
	case OpDestroy:
		return "DESTROY"
	case OpRelease:
		return "RELEASE"
	case OpPublish:
		return "PUBLISH"
	case OpUnpublish:
		return "UNPUBLISH"
	case OpRead:
		return "READ"
	case OpWrite:
		return "WRITE"
	case OpInit:
		return "INIT"
	case OpExit:
		return "EXIT"
	default:
		return "UNKNOWN"
	}
}
