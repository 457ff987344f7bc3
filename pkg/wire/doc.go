// Package wire implements the CBOR framing used between a rendering
// front end and the registry dispatcher.
//
// # Message Types
//
// Three message shapes exist:
//   - Request: front end -> dispatcher (read, write, list)
//   - Response: dispatcher -> front end (status + payload)
//
// All messages are CBOR maps with integer keys for compactness.
// Encoding is deterministic (canonical key order); decoding is lenient
// for forward compatibility.
//
// # Addressing
//
// Requests address an attribute by its published path, the slash-joined
// chain of node names ending in the attribute name:
//
//	devices/sda/label
//
// Path resolution itself is owned by the rendering layer; wire only
// carries the token.
package wire
