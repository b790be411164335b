package mei

import (
	"errors"
	"syscall"
)

// Session error kinds. Every error returned by Session operations matches exactly one of these with errors.Is.
var (
	// ErrHandleUnavailable indicates that the MEI device could not be opened.
	ErrHandleUnavailable = errors.New("mei: cannot establish a handle to the MEI driver")

	// ErrNegotiationFailed indicates that the connect-client request was rejected by the driver or firmware.
	ErrNegotiationFailed = errors.New("mei: connect client failed")

	// ErrVersionMismatch indicates that the firmware client negotiated a protocol version other than the
	// one required by the caller.
	ErrVersionMismatch = errors.New("mei: protocol version not supported")

	// ErrIO indicates that a read, write or completion wait on the device failed.
	ErrIO = errors.New("mei: I/O error")

	// ErrTimeout indicates that a sent message was not completed within the send timeout.
	ErrTimeout = errors.New("mei: send completion timeout")

	// ErrNotConnected indicates that the operation requires a connected session.
	ErrNotConnected = errors.New("mei: session is not connected")
)

var (
	// ErrNotSupported indicates that the MEI device driver is not available on this platform.
	ErrNotSupported = errors.New("mei: device driver not supported on this platform")

	// ErrConfigNil indicates that a nil SessionConfig was provided.
	ErrConfigNil = errors.New("mei: session config is nil")

	// ErrNilClientUUID indicates that the nil UUID was given as the firmware client identifier.
	ErrNilClientUUID = errors.New("mei: client UUID is nil")
)

// errNilHandle is the cause reported when a Driver returns neither a handle nor an error.
var errNilHandle = errors.New("mei: driver returned a nil handle")

// Error describes a failed session operation.
//
// Kind is one of the session error kinds; Err is the underlying cause reported by the device, if any.
// Both are reachable through errors.Is and errors.As.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	msg := e.Kind.Error() + ": " + e.Op
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}

	return []error{e.Kind, e.Err}
}

// Errno returns the operating system error code carried by the error, if any.
func (e *Error) Errno() (syscall.Errno, bool) {
	var errno syscall.Errno
	if errors.As(e.Err, &errno) {
		return errno, true
	}

	return 0, false
}

// ErrorKind returns the session error kind of err, or nil if err is not a session error.
func ErrorKind(err error) error {
	var sessErr *Error
	if errors.As(err, &sessErr) {
		return sessErr.Kind
	}

	for _, kind := range []error{
		ErrHandleUnavailable, ErrNegotiationFailed, ErrVersionMismatch, ErrIO, ErrTimeout, ErrNotConnected,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}

	return nil
}

func newError(op string, kind error, err error) *Error {
	return &Error{Op: op, Kind: kind, Err: err}
}
