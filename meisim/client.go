package meisim

import (
	"sync"

	"github.com/google/uuid"

	"github.com/arloliu/go-mei/internal/queue"
	"github.com/arloliu/go-mei/mei"
)

// DrainMode controls when a write to a client is reported as completed.
type DrainMode int

const (
	// DrainImmediate completes every write as soon as it is queued.
	DrainImmediate DrainMode = iota
	// DrainNever never completes writes, so every send completion wait times out.
	DrainNever
	// DrainManual completes writes when Client.Complete is called.
	DrainManual
)

// String returns string representation of the drain mode.
func (m DrainMode) String() string {
	switch m {
	case DrainImmediate:
		return "immediate"
	case DrainNever:
		return "never"
	case DrainManual:
		return "manual"
	default:
		return "unknown"
	}
}

// Client is a simulated firmware client.
type Client struct {
	id    uuid.UUID
	props mei.ClientProperties

	mu   sync.Mutex
	cond *sync.Cond

	// inbound holds whole messages for the host; pending is the unread remainder of a message
	// that did not fit the reader's buffer.
	inbound queue.Queue[[]byte]
	pending []byte

	// received holds messages written by the host, in order.
	received queue.Queue[[]byte]

	owner   *Handle
	removed bool

	drainMode DrainMode
	undrained []chan struct{}

	connectErr error
	readErr    error
	writeErr   error
	waitErr    error
}

func newClient(id uuid.UUID, props mei.ClientProperties) *Client {
	c := &Client{
		id:       id,
		props:    props,
		inbound:  queue.NewSliceQueue[[]byte](8),
		received: queue.NewLockFreeQueue[[]byte](),
	}
	c.cond = sync.NewCond(&c.mu)

	return c
}

// ID returns the client UUID.
func (c *Client) ID() uuid.UUID { return c.id }

// Properties returns the properties reported to connecting handles.
func (c *Client) Properties() mei.ClientProperties { return c.props }

// Connected returns if a handle is connected to the client.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.owner != nil
}

// Push queues msg for the host. A copy of msg is stored.
func (c *Client) Push(msg []byte) {
	c.mu.Lock()
	c.inbound.Enqueue(append([]byte{}, msg...))
	c.mu.Unlock()
	c.cond.Broadcast()
}

// Received removes and returns the messages the host has written, oldest first.
func (c *Client) Received() [][]byte {
	var msgs [][]byte
	for {
		msg, ok := c.received.Dequeue()
		if !ok {
			return msgs
		}
		msgs = append(msgs, msg)
	}
}

// SetDrainMode sets when writes are completed. Switching to DrainImmediate completes pending writes.
func (c *Client) SetDrainMode(mode DrainMode) {
	c.mu.Lock()
	c.drainMode = mode
	if mode == DrainImmediate {
		c.completeLocked()
	}
	c.mu.Unlock()
}

// Complete completes all pending writes.
func (c *Client) Complete() {
	c.mu.Lock()
	c.completeLocked()
	c.mu.Unlock()
}

// FailConnect makes connect requests to the client fail with err. A nil err restores normal operation.
func (c *Client) FailConnect(err error) { c.setFault(&c.connectErr, err) }

// FailRead makes reads fail with err. A nil err restores normal operation.
func (c *Client) FailRead(err error) {
	c.setFault(&c.readErr, err)
	c.cond.Broadcast()
}

// FailWrite makes writes fail with err. A nil err restores normal operation.
func (c *Client) FailWrite(err error) { c.setFault(&c.writeErr, err) }

// FailWait makes completion waits fail with err. A nil err restores normal operation.
func (c *Client) FailWait(err error) { c.setFault(&c.waitErr, err) }

func (c *Client) setFault(field *error, err error) {
	c.mu.Lock()
	*field = err
	c.mu.Unlock()
}

func (c *Client) completeLocked() {
	for _, ch := range c.undrained {
		close(ch)
	}
	c.undrained = nil
}

func (c *Client) remove() {
	c.mu.Lock()
	c.removed = true
	c.mu.Unlock()
	c.cond.Broadcast()
}

// nextMessageLocked copies the next inbound message, or its unread remainder, into p.
func (c *Client) nextMessageLocked(p []byte) (int, bool) {
	msg := c.pending
	c.pending = nil
	if msg == nil {
		var ok bool
		if msg, ok = c.inbound.Dequeue(); !ok {
			return 0, false
		}
	}

	n := copy(p, msg)
	if n < len(msg) {
		c.pending = msg[n:]
	}

	return n, true
}
