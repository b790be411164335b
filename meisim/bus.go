package meisim

import (
	"os"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/arloliu/go-mei/logger"
	"github.com/arloliu/go-mei/mei"
)

// Bus is a simulated MEI device. It is safe for concurrent use.
type Bus struct {
	clients *xsync.MapOf[uuid.UUID, *Client]
	handles *xsync.MapOf[uint64, *Handle]
	nextID  atomic.Uint64

	mu      sync.Mutex
	path    string
	openErr error

	logger logger.Logger
}

var _ mei.Driver = (*Bus)(nil)

// Option configures a Bus.
type Option func(*Bus)

// WithDevicePath restricts Open to path; other paths fail with ENOENT.
// By default any path is accepted.
func WithDevicePath(path string) Option {
	return func(b *Bus) { b.path = path }
}

// WithLogger sets the logger of the bus. Default is logger.GetLogger().
func WithLogger(l logger.Logger) Option {
	return func(b *Bus) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBus creates an empty bus.
func NewBus(opts ...Option) *Bus {
	b := &Bus{
		clients: xsync.NewMapOf[uuid.UUID, *Client](),
		handles: xsync.NewMapOf[uint64, *Handle](),
		logger:  logger.GetLogger(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.With("component", "meisim")

	return b
}

// AddClient registers a firmware client with the given properties and returns it. An existing client
// with the same id is replaced.
func (b *Bus) AddClient(id uuid.UUID, props mei.ClientProperties) *Client {
	c := newClient(id, props)
	if prev, loaded := b.clients.LoadAndStore(id, c); loaded {
		prev.remove()
	}
	b.logger.Debug("client added", "client", id.String(),
		"max_message_length", props.MaxMessageLength,
		"protocol_version", props.ProtocolVersion,
	)

	return c
}

// Client returns the registered client with the given id.
func (b *Bus) Client(id uuid.UUID) (*Client, bool) {
	return b.clients.Load(id)
}

// RemoveClient unregisters a client. Handles connected to it fail subsequent reads and writes with ENODEV.
func (b *Bus) RemoveClient(id uuid.UUID) {
	if c, ok := b.clients.LoadAndDelete(id); ok {
		c.remove()
		b.logger.Debug("client removed", "client", id.String())
	}
}

// FailOpen makes every following Open fail with err. A nil err restores normal operation.
func (b *Bus) FailOpen(err error) {
	b.mu.Lock()
	b.openErr = err
	b.mu.Unlock()
}

// Open opens a new handle on the bus.
func (b *Bus) Open(path string) (mei.Handle, error) {
	b.mu.Lock()
	openErr, allowed := b.openErr, b.path
	b.mu.Unlock()

	if openErr != nil {
		return nil, &os.PathError{Op: "open", Path: path, Err: openErr}
	}
	if allowed != "" && path != allowed {
		return nil, &os.PathError{Op: "open", Path: path, Err: syscall.ENOENT}
	}

	h := &Handle{bus: b, id: b.nextID.Add(1)}
	b.handles.Store(h.id, h)
	b.logger.Debug("handle opened", "handle", h.id, "path", path)

	return h, nil
}

// OpenHandles returns the number of handles opened and not yet closed.
func (b *Bus) OpenHandles() int {
	return b.handles.Size()
}

func (b *Bus) release(h *Handle) {
	b.handles.Delete(h.id)
	b.logger.Debug("handle closed", "handle", h.id)
}
