package wire

import (
	"fmt"
)

// CBOR map keys for message encoding.
// All messages use integer keys for efficiency.
const (
	// Common message keys
	KeyMessageID  = 1
	KeyOpOrStatus = 2 // Operation (request) or Status (response)
	KeyPath       = 3
	KeyPayload    = 4
	KeyError      = 5 // Response only
)

// Request represents a front-end request to the dispatcher.
//
// CBOR encoding:
//
//	{
//	  1: messageId,  // uint32, nonzero
//	  2: operation,  // uint8: 1=Read, 2=Write, 3=List
//	  3: path,       // string: published attribute or node path
//	  4: payload     // bytes: value to store (write only)
//	}
type Request struct {
	MessageID uint32    `cbor:"1,keyasint"`
	Operation Operation `cbor:"2,keyasint"`
	Path      string    `cbor:"3,keyasint"`
	Payload   []byte    `cbor:"4,keyasint,omitempty"`
}

// Validate checks if the request is valid.
func (r *Request) Validate() error {
	if r.MessageID == 0 {
		return fmt.Errorf("messageId 0 is reserved")
	}
	if !r.Operation.IsValid() {
		return fmt.Errorf("invalid operation: %d", r.Operation)
	}
	if r.Path == "" {
		return fmt.Errorf("empty path")
	}
	return nil
}

// Response represents a dispatcher response to the front end.
//
// CBOR encoding:
//
//	{
//	  1: messageId,  // uint32: matches request
//	  2: status,     // uint8: 0=success, or error code
//	  4: payload,    // bytes: attribute value (read) or entry list (list)
//	  5: error       // string: human-readable error detail (errors only)
//	}
type Response struct {
	MessageID uint32 `cbor:"1,keyasint"`
	Status    Status `cbor:"2,keyasint"`
	Payload   []byte `cbor:"4,keyasint,omitempty"`
	Error     string `cbor:"5,keyasint,omitempty"`
}

// IsSuccess returns true if the response indicates success.
func (r *Response) IsSuccess() bool {
	return r.Status.IsSuccess()
}

// ListPayload represents the payload of a successful List response.
//
// CBOR encoding:
//
//	{
//	  1: entries  // array of strings: published names under the path
//	}
type ListPayload struct {
	Entries []string `cbor:"1,keyasint,omitempty"`
}
