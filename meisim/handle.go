package meisim

import (
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/arloliu/go-mei/internal/pool"
	"github.com/arloliu/go-mei/mei"
)

// Handle is a handle opened on a Bus.
type Handle struct {
	bus *Bus
	id  uint64

	mu     sync.Mutex
	client *Client
	closed bool
	// drained is closed when the last write completes; nil when no write is outstanding.
	drained chan struct{}
}

var _ mei.Handle = (*Handle)(nil)

// ConnectClient binds the handle to the client identified by id.
func (h *Handle) ConnectClient(id uuid.UUID) (mei.ClientProperties, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return mei.ClientProperties{}, syscall.EBADF
	}
	if h.client != nil {
		return mei.ClientProperties{}, syscall.EBUSY
	}

	c, ok := h.bus.clients.Load(id)
	if !ok {
		return mei.ClientProperties{}, syscall.ENOTTY
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connectErr != nil {
		return mei.ClientProperties{}, c.connectErr
	}
	if c.owner != nil || c.removed {
		return mei.ClientProperties{}, syscall.EBUSY
	}
	c.owner = h
	h.client = c

	return c.props, nil
}

// Read blocks until the connected client has a message for the host and copies up to len(p) bytes of
// it into p. The part of a message that does not fit is returned by the next Read.
func (h *Handle) Read(p []byte) (int, error) {
	c, err := h.connectedClient()
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for {
		switch {
		case c.owner != h:
			return 0, syscall.EBADF
		case c.removed:
			return 0, syscall.ENODEV
		case c.readErr != nil:
			return 0, c.readErr
		}

		if n, ok := c.nextMessageLocked(p); ok {
			return n, nil
		}
		c.cond.Wait()
	}
}

// Write queues p for the connected client.
func (h *Handle) Write(p []byte) (int, error) {
	c, err := h.connectedClient()
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	switch {
	case c.removed:
		c.mu.Unlock()
		return 0, syscall.ENODEV
	case c.writeErr != nil:
		c.mu.Unlock()
		return 0, c.writeErr
	case uint32(len(p)) > c.props.MaxMessageLength:
		c.mu.Unlock()
		return 0, syscall.EFBIG
	}

	c.received.Enqueue(append([]byte{}, p...))
	drained := make(chan struct{})
	if c.drainMode == DrainImmediate {
		close(drained)
	} else {
		c.undrained = append(c.undrained, drained)
	}
	c.mu.Unlock()

	h.mu.Lock()
	h.drained = drained
	h.mu.Unlock()

	return len(p), nil
}

// WaitReady waits up to timeout for the last write to complete.
func (h *Handle) WaitReady(timeout time.Duration) (bool, error) {
	h.mu.Lock()
	closed, c, drained := h.closed, h.client, h.drained
	h.mu.Unlock()

	if closed {
		return false, syscall.EBADF
	}
	if c != nil {
		c.mu.Lock()
		waitErr := c.waitErr
		c.mu.Unlock()
		if waitErr != nil {
			return false, waitErr
		}
	}
	if drained == nil {
		return true, nil
	}

	return pool.WaitSignal(drained, timeout), nil
}

// Close releases the handle and disconnects it from its client. Closing twice returns EBADF.
func (h *Handle) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return syscall.EBADF
	}
	h.closed = true
	c := h.client
	h.client = nil
	h.mu.Unlock()

	if c != nil {
		c.mu.Lock()
		if c.owner == h {
			c.owner = nil
		}
		c.mu.Unlock()
		c.cond.Broadcast()
	}
	h.bus.release(h)

	return nil
}

func (h *Handle) connectedClient() (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, syscall.EBADF
	}
	if h.client == nil {
		return nil, syscall.ENODEV
	}

	return h.client, nil
}
