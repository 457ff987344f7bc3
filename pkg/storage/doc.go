// Package storage instantiates the registry for a storage array: a
// devices container holding one node per registered device, a health
// root with a writable degraded flag, and an info root exposing array
// counters.
//
// The Manager owns the root set and the device lifecycle. Container
// roots carry the Manager itself as payload; device nodes carry their
// DeviceRecord.
package storage
