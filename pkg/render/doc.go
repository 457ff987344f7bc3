// Package render provides an in-memory rendering layer for the
// registry: the reference implementation of the facade a host
// virtual filesystem would otherwise supply.
//
// MemoryRenderer implements registry.Renderer (publish/unpublish) and
// the dispatcher's path resolution. Published nodes get slash-joined
// paths derived from their parent chain at publish time:
//
//	devices            node path
//	devices/sda        node path
//	devices/sda/label  attribute path
//
// Unpublish removes a node's own entries only. A child that outlives
// its parent (the registry's detachment policy) stays resolvable under
// its publish-time path.
package render
