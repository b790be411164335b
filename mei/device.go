package mei

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// ClientProperties are the parameters negotiated with a firmware client by the connect-client request.
type ClientProperties struct {
	// MaxMessageLength is the largest message, in bytes, the client accepts or produces.
	MaxMessageLength uint32
	// ProtocolVersion is the protocol version the client speaks.
	ProtocolVersion uint8
}

// Driver opens handles to an MEI device.
type Driver interface {
	// Open acquires a new read/write handle to the device at path. A nil handle with a nil error is
	// treated by Session as an unavailable device.
	Open(path string) (Handle, error)
}

// Handle is an open MEI device handle.
//
// Read and Write transfer whole messages. Errors are reported as returned errors, never as negative counts.
type Handle interface {
	// ConnectClient binds the handle to the firmware client identified by id and returns the negotiated
	// client properties. It blocks until the driver answers.
	ConnectClient(id uuid.UUID) (ClientProperties, error)
	// Read blocks until a message is available and copies up to len(p) bytes of it into p.
	Read(p []byte) (int, error)
	// Write queues one message for the firmware client.
	Write(p []byte) (int, error)
	// WaitReady waits up to timeout for the device to report that the last write has completed.
	// It returns false, with a nil error, when the timeout elapses first.
	WaitReady(timeout time.Duration) (bool, error)
	// Close releases the handle.
	Close() error
}

// DriverFunc adapts an ordinary function to the Driver interface.
type DriverFunc func(path string) (Handle, error)

// Open calls f(path).
func (f DriverFunc) Open(path string) (Handle, error) { return f(path) }

// DeviceDriver is the Driver for the operating system MEI character device.
//
// On Linux it opens the device node and drives it with the mei ioctl interface. On other platforms Open
// fails with ErrNotSupported.
type DeviceDriver struct{}

var _ Driver = DeviceDriver{}

// Open opens the device node at path.
//
// On Linux, when path is DefaultDevicePath and that node does not exist, the legacy LegacyDevicePath
// node is tried instead.
func (DeviceDriver) Open(path string) (Handle, error) {
	return openDevice(path)
}

// pollTimeout converts a timeout into the millisecond argument of poll(2), rounding up so a wait never
// ends before the timeout. Non-positive timeouts poll without blocking.
func pollTimeout(timeout time.Duration) int {
	if timeout <= 0 {
		return 0
	}

	ms := (timeout + time.Millisecond - 1) / time.Millisecond
	if ms > math.MaxInt32 {
		return math.MaxInt32
	}

	return int(ms)
}
