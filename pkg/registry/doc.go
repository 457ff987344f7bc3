// Package registry implements a hierarchical, reference-counted
// attribute registry: live system state exposed as a tree of named
// nodes, each carrying the fixed attribute set of its NodeType.
//
// # Object Model
//
// The hierarchy is:
//
//	Registry > Node > Attribute
//
// A Registry owns the root-level node collection and mediates creation
// and destruction. Every Node is an instance of an immutable NodeType,
// which bundles an ordered attribute table and a one-time Release
// callback. Attributes are declarative: name, access flags, and the
// show/store callbacks that produce or consume the value bytes.
//
//	Registry "statefs"
//	├── devices            (NodeType "devices")
//	│   └── sda            (NodeType "device", payload *DeviceRecord)
//	│       ├── label      r--
//	│       └── online     rw-
//	├── health             (NodeType "health")
//	└── info               (NodeType "info")
//
// # Lifecycle
//
// Create returns a node holding one reference (the creator's handle).
// Additional references are acquired with Get, for example by the
// dispatcher for the duration of an in-flight read or write. When the
// last reference is dropped, the node is unpublished from the renderer,
// detached from its container, its NodeType's Release fires exactly
// once, and the payload is cleared. Destroying a node that still has
// live children detaches them; children are never destroyed
// transitively.
//
// # Rendering
//
// The registry does not render anything itself. A Renderer (typically
// pkg/render.MemoryRenderer, or a host virtual-filesystem facade) is
// told about every node via Publish/Unpublish and owns path resolution
// for the dispatcher.
//
// # Concurrency
//
// Reference counts are atomic. Structural edits (two creates under the
// same parent, create racing a destroy) are serialized per parent, not
// globally. Show/store callbacks are not serialized against each other;
// a NodeType whose callbacks mutate shared payload state must bring its
// own locking.
package registry
