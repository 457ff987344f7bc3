// Package dispatch routes attribute read and write requests from the
// rendering layer into node callbacks.
//
// Every dispatch pins the target node with a reference for the whole
// callback invocation, so a concurrent destroy cannot release the node
// mid-call. Callback panics are contained and surface as errors.
package dispatch
