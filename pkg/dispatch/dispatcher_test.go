package dispatch_test

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statefs-project/statefs-go/pkg/dispatch"
	"github.com/statefs-project/statefs-go/pkg/log"
	"github.com/statefs-project/statefs-go/pkg/registry"
	"github.com/statefs-project/statefs-go/pkg/render"
	"github.com/statefs-project/statefs-go/pkg/wire"
)

// counterState is a mutable payload driven by show/store callbacks.
type counterState struct {
	mu    sync.Mutex
	count int
}

func counterType(t *testing.T) *registry.NodeType {
	t.Helper()
	typ, err := registry.NewNodeType("counter", []registry.Attribute{
		{
			Name:   "value",
			Access: registry.AccessReadWrite,
			Show: func(n *registry.Node) ([]byte, error) {
				s := n.Payload().(*counterState)
				s.mu.Lock()
				defer s.mu.Unlock()
				return []byte(strconv.Itoa(s.count)), nil
			},
			Store: func(n *registry.Node, data []byte) error {
				v, err := strconv.Atoi(string(data))
				if err != nil {
					return err
				}
				s := n.Payload().(*counterState)
				s.mu.Lock()
				defer s.mu.Unlock()
				s.count = v
				return nil
			},
		},
		{
			Name:   "frozen",
			Access: registry.AccessReadOnly,
			Show: func(*registry.Node) ([]byte, error) {
				return []byte("yes"), nil
			},
		},
	}, nil)
	require.NoError(t, err)
	return typ
}

func newFixture(t *testing.T) (*registry.Registry, *render.MemoryRenderer, *dispatch.Dispatcher) {
	t.Helper()
	renderer := render.NewMemoryRenderer()
	reg := registry.New("test", renderer, nil)
	d := dispatch.New(renderer, nil)
	d.SetRegistryID(reg.ID())
	return reg, renderer, d
}

func TestReadReturnsShowResult(t *testing.T) {
	reg, _, d := newFixture(t)

	_, err := reg.Create("counter", counterType(t), nil, &counterState{})
	require.NoError(t, err)

	data, err := d.OnRead(context.Background(), "counter/value")
	require.NoError(t, err)
	assert.Equal(t, "0", string(data))
}

func TestWriteUpdatesState(t *testing.T) {
	reg, _, d := newFixture(t)

	state := &counterState{}
	_, err := reg.Create("counter", counterType(t), nil, state)
	require.NoError(t, err)

	require.NoError(t, d.OnWrite(context.Background(), "counter/value", []byte("42")))

	data, err := d.OnRead(context.Background(), "counter/value")
	require.NoError(t, err)
	assert.Equal(t, "42", string(data))
}

func TestWriteReadOnlyAttribute(t *testing.T) {
	reg, _, d := newFixture(t)

	_, err := reg.Create("counter", counterType(t), nil, &counterState{})
	require.NoError(t, err)

	err = d.OnWrite(context.Background(), "counter/frozen", []byte("no"))
	assert.ErrorIs(t, err, registry.ErrNotWritable)
}

func TestReadWriteOnlyAttribute(t *testing.T) {
	renderer := render.NewMemoryRenderer()
	reg := registry.New("test", renderer, nil)
	d := dispatch.New(renderer, nil)

	typ, err := registry.NewNodeType("ctl", []registry.Attribute{
		{Name: "trigger", Access: registry.AccessWriteOnly, Store: func(*registry.Node, []byte) error { return nil }},
	}, nil)
	require.NoError(t, err)

	_, err = reg.Create("ctl", typ, nil, nil)
	require.NoError(t, err)

	_, err = d.OnRead(context.Background(), "ctl/trigger")
	assert.ErrorIs(t, err, registry.ErrNotReadable)
}

func TestCallbackErrorPassedThrough(t *testing.T) {
	renderer := render.NewMemoryRenderer()
	reg := registry.New("test", renderer, nil)
	d := dispatch.New(renderer, nil)

	broken := errors.New("sensor offline")
	typ, err := registry.NewNodeType("sensor", []registry.Attribute{
		{Name: "reading", Access: registry.AccessReadOnly, Show: func(*registry.Node) ([]byte, error) {
			return nil, broken
		}},
	}, nil)
	require.NoError(t, err)

	_, err = reg.Create("sensor", typ, nil, nil)
	require.NoError(t, err)

	_, err = d.OnRead(context.Background(), "sensor/reading")
	assert.ErrorIs(t, err, broken)
}

func TestCallbackPanicContained(t *testing.T) {
	renderer := render.NewMemoryRenderer()
	reg := registry.New("test", renderer, nil)
	d := dispatch.New(renderer, nil)

	var released atomic.Int32
	typ, err := registry.NewNodeType("sensor", []registry.Attribute{
		{Name: "reading", Access: registry.AccessReadOnly, Show: func(*registry.Node) ([]byte, error) {
			panic("bad state")
		}},
	}, func(*registry.Node) { released.Add(1) })
	require.NoError(t, err)

	n, err := reg.Create("sensor", typ, nil, nil)
	require.NoError(t, err)

	_, err = d.OnRead(context.Background(), "sensor/reading")
	require.ErrorIs(t, err, dispatch.ErrCallbackPanic)
	assert.Contains(t, err.Error(), "bad state")

	// The pin was still dropped on the panic path.
	assert.Equal(t, int64(1), n.RefCount())
	require.NoError(t, reg.Destroy(n))
	assert.Equal(t, int32(1), released.Load())
}

func TestResolveFailure(t *testing.T) {
	_, _, d := newFixture(t)

	_, err := d.OnRead(context.Background(), "nope/missing")
	assert.ErrorIs(t, err, registry.ErrNotFound)
}

func TestDestroyDuringDispatchDefersRelease(t *testing.T) {
	renderer := render.NewMemoryRenderer()
	reg := registry.New("test", renderer, nil)
	d := dispatch.New(renderer, nil)

	var released atomic.Int32
	entered := make(chan struct{})
	proceed := make(chan struct{})

	typ, err := registry.NewNodeType("slow", []registry.Attribute{
		{Name: "value", Access: registry.AccessReadOnly, Show: func(*registry.Node) ([]byte, error) {
			close(entered)
			<-proceed
			return []byte("done"), nil
		}},
	}, func(*registry.Node) { released.Add(1) })
	require.NoError(t, err)

	n, err := reg.Create("slow", typ, nil, nil)
	require.NoError(t, err)

	done := make(chan struct{})
	var data []byte
	var readErr error
	go func() {
		defer close(done)
		data, readErr = d.OnRead(context.Background(), "slow/value")
	}()

	<-entered

	// The owner drops its handle while the callback is still running.
	// The dispatch pin keeps the node alive until the read returns.
	require.NoError(t, reg.Destroy(n))
	assert.Equal(t, int32(0), released.Load(), "released while dispatch in flight")

	close(proceed)
	<-done

	require.NoError(t, readErr)
	assert.Equal(t, "done", string(data))
	assert.Equal(t, int32(1), released.Load())
}

func TestReadAfterDestroy(t *testing.T) {
	reg, renderer, d := newFixture(t)

	n, err := reg.Create("counter", counterType(t), nil, &counterState{})
	require.NoError(t, err)
	require.NoError(t, reg.Destroy(n))

	_, ok := renderer.Lookup("counter")
	require.False(t, ok)

	_, err = d.OnRead(context.Background(), "counter/value")
	assert.ErrorIs(t, err, registry.ErrNotFound)
}

func TestHandleRequest(t *testing.T) {
	reg, _, d := newFixture(t)

	_, err := reg.Create("counter", counterType(t), nil, &counterState{})
	require.NoError(t, err)

	ctx := context.Background()

	t.Run("read success", func(t *testing.T) {
		resp := d.HandleRequest(ctx, &wire.Request{MessageID: 1, Operation: wire.OpRead, Path: "counter/value"})
		require.Equal(t, wire.StatusSuccess, resp.Status)
		assert.Equal(t, uint32(1), resp.MessageID)
		assert.Equal(t, "0", string(resp.Payload))
	})

	t.Run("write success", func(t *testing.T) {
		resp := d.HandleRequest(ctx, &wire.Request{MessageID: 2, Operation: wire.OpWrite, Path: "counter/value", Payload: []byte("7")})
		require.Equal(t, wire.StatusSuccess, resp.Status)

		resp = d.HandleRequest(ctx, &wire.Request{MessageID: 3, Operation: wire.OpRead, Path: "counter/value"})
		assert.Equal(t, "7", string(resp.Payload))
	})

	t.Run("unknown path", func(t *testing.T) {
		resp := d.HandleRequest(ctx, &wire.Request{MessageID: 4, Operation: wire.OpRead, Path: "ghost/value"})
		assert.Equal(t, wire.StatusNotFound, resp.Status)
		assert.NotEmpty(t, resp.Error)
	})

	t.Run("write read-only", func(t *testing.T) {
		resp := d.HandleRequest(ctx, &wire.Request{MessageID: 5, Operation: wire.OpWrite, Path: "counter/frozen", Payload: []byte("no")})
		assert.Equal(t, wire.StatusNotWritable, resp.Status)
	})

	t.Run("list", func(t *testing.T) {
		resp := d.HandleRequest(ctx, &wire.Request{MessageID: 6, Operation: wire.OpList, Path: "counter"})
		require.Equal(t, wire.StatusSuccess, resp.Status)

		var listing wire.ListPayload
		require.NoError(t, wire.Unmarshal(resp.Payload, &listing))
		assert.Equal(t, []string{"value", "frozen"}, listing.Entries)
	})

	t.Run("unsupported operation", func(t *testing.T) {
		resp := d.HandleRequest(ctx, &wire.Request{MessageID: 7, Operation: 99, Path: "counter/value"})
		assert.Equal(t, wire.StatusUnsupported, resp.Status)
	})
}

// captureLogger records events for assertions.
type captureLogger struct {
	mu     sync.Mutex
	events []log.Event
}

func (c *captureLogger) Log(e log.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

func (c *captureLogger) snapshot() []log.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]log.Event, len(c.events))
	copy(out, c.events)
	return out
}

func TestDispatchEventsLogged(t *testing.T) {
	renderer := render.NewMemoryRenderer()
	reg := registry.New("test", renderer, nil)

	logger := &captureLogger{}
	d := dispatch.New(renderer, logger)
	d.SetRegistryID(reg.ID())

	_, err := reg.Create("counter", counterType(t), nil, &counterState{})
	require.NoError(t, err)

	_, err = d.OnRead(context.Background(), "counter/value")
	require.NoError(t, err)
	err = d.OnWrite(context.Background(), "counter/frozen", []byte("x"))
	require.Error(t, err)

	events := logger.snapshot()
	require.Len(t, events, 2)

	read := events[0]
	assert.Equal(t, log.CategoryDispatch, read.Category)
	assert.Equal(t, log.OpRead, read.Op)
	assert.Equal(t, "counter/value", read.Path)
	assert.Equal(t, reg.ID(), read.RegistryID)
	require.NotNil(t, read.Duration)
	assert.True(t, read.OK())

	write := events[1]
	assert.Equal(t, log.OpWrite, write.Op)
	assert.False(t, write.OK())
}
