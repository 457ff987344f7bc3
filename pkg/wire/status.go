package wire

// Status represents a response status code.
type Status uint8

const (
	// StatusSuccess indicates the operation completed successfully.
	StatusSuccess Status = 0

	// StatusNotFound indicates the path resolved to no published entry.
	StatusNotFound Status = 1

	// StatusNotReadable indicates a read against an attribute without a
	// show callback.
	StatusNotReadable Status = 2

	// StatusNotWritable indicates a write against an attribute without
	// write access.
	StatusNotWritable Status = 3

	// StatusCallbackFailed indicates the attribute callback itself
	// returned an error. The error text is carried in Response.Error.
	StatusCallbackFailed Status = 4

	// StatusUnsupported indicates the operation is not supported.
	StatusUnsupported Status = 5

	// StatusInternal indicates a dispatcher-side failure (for example a
	// node destroyed between resolution and pinning).
	StatusInternal Status = 6
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "SUCCESS"
	case StatusNotFound:
		return "NOT_FOUND"
	case StatusNotReadable:
		return "NOT_READABLE"
	case StatusNotWritable:
		return "NOT_WRITABLE"
	case StatusCallbackFailed:
		return "CALLBACK_FAILED"
	case StatusUnsupported:
		return "UNSUPPORTED"
	case StatusInternal:
		return "INTERNAL"
	default:
		return "UNKNOWN"
	}
}

// IsSuccess returns true if the status indicates success.
func (s Status) IsSuccess() bool {
	return s == StatusSuccess
}

// IsError returns true if the status indicates an error.
func (s Status) IsError() bool {
	return s != StatusSuccess
}
