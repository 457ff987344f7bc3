package wire

// Operation represents a registry front-end operation.
type Operation uint8

const (
	// OpRead gets the current value of one attribute.
	OpRead Operation = 1

	// OpWrite sets the value of one attribute (full replace).
	OpWrite Operation = 2

	// OpList enumerates the entries published under a node path.
	OpList Operation = 3
)

// String returns the operation name.
func (o Operation) String() string {
	switch o {
	case OpRead:
		return "Read"
	case OpWrite:
		return "Write"
	case OpList:
		return "List"
	default:
		return "Unknown"
	}
}

// IsValid returns true if the operation is a known operation.
func (o Operation) IsValid() bool {
	return o >= OpRead && o <= OpList
}
