package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/statefs-project/statefs-go/pkg/log"
	"github.com/statefs-project/statefs-go/pkg/registry"
	"github.com/statefs-project/statefs-go/pkg/wire"
)

// ErrCallbackPanic wraps a recovered panic from an attribute callback.
var ErrCallbackPanic = errors.New("attribute callback panicked")

// Resolver maps a published path to the node and attribute behind it.
// The rendering layer implements this.
type Resolver interface {
	Resolve(path string) (*registry.Node, *registry.Attribute, error)
}

// Lister enumerates the entries under a published node path.
// Resolvers that support directory-style listing implement it.
type Lister interface {
	List(path string) ([]string, error)
}

// Dispatcher executes attribute reads and writes against resolved
// nodes. It holds no state of its own beyond its collaborators and is
// safe for concurrent use.
type Dispatcher struct {
	resolver   Resolver
	logger     log.Logger
	registryID string
}

// New creates a dispatcher for the given resolver. A nil logger
// disables dispatch logging.
func New(resolver Resolver, logger log.Logger) *Dispatcher {
	if logger == nil {
		logger = log.NoopLogger{}
	}
	return &Dispatcher{resolver: resolver, logger: logger}
}

// SetRegistryID tags emitted dispatch events with the registry
// instance they belong to.
func (d *Dispatcher) SetRegistryID(id string) {
	d.registryID = id
}

// OnRead resolves the path, pins the node and invokes the attribute's
// show callback. The callback result is returned verbatim.
func (d *Dispatcher) OnRead(ctx context.Context, path string) ([]byte, error) {
	start := time.Now()

	node, attr, err := d.resolver.Resolve(path)
	if err != nil {
		d.logDispatch(log.OpRead, path, start, err)
		return nil, err
	}

	if err := node.Get(); err != nil {
		d.logDispatch(log.OpRead, path, start, err)
		return nil, err
	}
	defer func() { _ = node.Put() }()

	if !attr.Access.CanRead() || attr.Show == nil {
		err := fmt.Errorf("%q: %w", path, registry.ErrNotReadable)
		d.logDispatch(log.OpRead, path, start, err)
		return nil, err
	}

	data, err := safeShow(attr, node)
	d.logDispatch(log.OpRead, path, start, err)
	return data, err
}

// OnWrite resolves the path, pins the node and invokes the attribute's
// store callback with the given data.
func (d *Dispatcher) OnWrite(ctx context.Context, path string, data []byte) error {
	start := time.Now()

	node, attr, err := d.resolver.Resolve(path)
	if err != nil {
		d.logDispatch(log.OpWrite, path, start, err)
		return err
	}

	if err := node.Get(); err != nil {
		d.logDispatch(log.OpWrite, path, start, err)
		return err
	}
	defer func() { _ = node.Put() }()

	if !attr.Access.CanWrite() || attr.Store == nil {
		err := fmt.Errorf("%q: %w", path, registry.ErrNotWritable)
		d.logDispatch(log.OpWrite, path, start, err)
		return err
	}

	err = safeStore(attr, node, data)
	d.logDispatch(log.OpWrite, path, start, err)
	return err
}

// HandleRequest is the framed entry point: it decodes the operation,
// runs the dispatch and maps the outcome onto a wire status.
func (d *Dispatcher) HandleRequest(ctx context.Context, req *wire.Request) *wire.Response {
	if req == nil {
		return &wire.Response{Status: wire.StatusInternal, Error: "nil request"}
	}

	switch req.Operation {
	case wire.OpRead:
		data, err := d.OnRead(ctx, req.Path)
		if err != nil {
			return errorResponse(req.MessageID, err)
		}
		return &wire.Response{MessageID: req.MessageID, Status: wire.StatusSuccess, Payload: data}

	case wire.OpWrite:
		if err := d.OnWrite(ctx, req.Path, req.Payload); err != nil {
			return errorResponse(req.MessageID, err)
		}
		return &wire.Response{MessageID: req.MessageID, Status: wire.StatusSuccess}

	case wire.OpList:
		lister, ok := d.resolver.(Lister)
		if !ok {
			return &wire.Response{MessageID: req.MessageID, Status: wire.StatusUnsupported, Error: "resolver does not support listing"}
		}
		entries, err := lister.List(req.Path)
		if err != nil {
			return errorResponse(req.MessageID, err)
		}
		payload, err := wire.Marshal(wire.ListPayload{Entries: entries})
		if err != nil {
			return &wire.Response{MessageID: req.MessageID, Status: wire.StatusInternal, Error: err.Error()}
		}
		return &wire.Response{MessageID: req.MessageID, Status: wire.StatusSuccess, Payload: payload}

	default:
		return &wire.Response{
			MessageID: req.MessageID,
			Status:    wire.StatusUnsupported,
			Error:     fmt.Sprintf("operation %d not supported", req.Operation),
		}
	}
}

// statusFor maps a dispatch error onto its wire status.
func statusFor(err error) wire.Status {
	switch {
	case errors.Is(err, registry.ErrNotFound):
		return wire.StatusNotFound
	case errors.Is(err, registry.ErrNodeDestroyed):
		return wire.StatusNotFound
	case errors.Is(err, registry.ErrNotReadable):
		return wire.StatusNotReadable
	case errors.Is(err, registry.ErrNotWritable):
		return wire.StatusNotWritable
	case errors.Is(err, ErrCallbackPanic):
		return wire.StatusInternal
	default:
		return wire.StatusCallbackFailed
	}
}

func errorResponse(messageID uint32, err error) *wire.Response {
	return &wire.Response{
		MessageID: messageID,
		Status:    statusFor(err),
		Error:     err.Error(),
	}
}

// safeShow invokes the show callback with panic containment.
func safeShow(attr *registry.Attribute, node *registry.Node) (data []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			data = nil
			err = fmt.Errorf("%w: %v", ErrCallbackPanic, r)
		}
	}()
	return attr.Show(node)
}

// safeStore invokes the store callback with panic containment.
func safeStore(attr *registry.Attribute, node *registry.Node, data []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrCallbackPanic, r)
		}
	}()
	return attr.Store(node, data)
}

// logDispatch emits one dispatch event with the call duration.
func (d *Dispatcher) logDispatch(op log.Op, path string, start time.Time, err error) {
	elapsed := time.Since(start)
	event := log.Event{
		Timestamp:  start,
		RegistryID: d.registryID,
		Category:   log.CategoryDispatch,
		Op:         op,
		Path:       path,
		Duration:   &elapsed,
	}
	if err != nil {
		event.Err = err.Error()
	}
	d.logger.Log(event)
}
