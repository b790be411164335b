package mei

import (
	"fmt"
	"io"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/arloliu/go-mei/logger"
	"github.com/google/uuid"
)

// Session is a client session with one firmware client on the MEI device.
//
// A Session owns at most one device handle. The handle is held exactly while the session is in
// ConnectedState; every failed operation releases it before returning.
//
// Session methods must not be called concurrently; see SyncSession. State, ProtocolVersion,
// MaxMessageLength and GetMetrics are safe to call from any goroutine.
type Session struct {
	cfg      *SessionConfig
	logger   logger.Logger
	clientID uuid.UUID
	verbose  bool

	dev *deviceRef

	state           atomic.Uint32
	protocolVersion atomic.Uint32
	maxMsgLength    atomic.Uint32

	handlers []StateChangeHandler
	metrics  SessionMetrics
}

// Compile-time check: Session is usable as a message reader/writer.
var _ io.ReadWriteCloser = (*Session)(nil)

// deviceRef holds the session's device handle. It is kept apart from Session so that a cleanup
// attached to the Session can release a handle the caller never disconnected.
type deviceRef struct {
	handle Handle
}

func (r *deviceRef) take() Handle {
	h := r.handle
	r.handle = nil

	return h
}

func releaseLeakedHandle(r *deviceRef) {
	if h := r.take(); h != nil {
		_ = h.Close()
	}
}

// NewSession creates a disconnected Session with the given configuration.
func NewSession(cfg *SessionConfig) (*Session, error) {
	if cfg == nil {
		return nil, ErrConfigNil
	}

	s := &Session{
		cfg:      cfg,
		logger:   cfg.logger.With("client", cfg.clientID.String()),
		clientID: cfg.clientID,
		verbose:  cfg.verbose,
		dev:      &deviceRef{},
	}
	s.state.Store(uint32(DisconnectedState))

	runtime.AddCleanup(s, releaseLeakedHandle, s.dev)

	return s, nil
}

// New creates a disconnected Session for the firmware client clientID.
// It is a shorthand for NewSessionConfig followed by NewSession.
func New(clientID uuid.UUID, verbose bool, opts ...SessionOption) (*Session, error) {
	cfg, err := NewSessionConfig(clientID, append([]SessionOption{WithVerbose(verbose)}, opts...)...)
	if err != nil {
		return nil, err
	}

	return NewSession(cfg)
}

// ClientID returns the firmware client UUID the session targets.
func (s *Session) ClientID() uuid.UUID { return s.clientID }

// Verbose returns whether verbose tracing is enabled.
func (s *Session) Verbose() bool { return s.verbose }

// Config returns the session configuration.
func (s *Session) Config() *SessionConfig { return s.cfg }

// GetLogger returns the logger associated with the session.
func (s *Session) GetLogger() logger.Logger { return s.logger }

// GetMetrics returns the metrics associated with the session.
func (s *Session) GetMetrics() *SessionMetrics { return &s.metrics }

// State returns the current session state.
func (s *Session) State() State { return State(s.state.Load()) }

// IsConnected returns if the session is connected.
func (s *Session) IsConnected() bool { return s.State().IsConnected() }

// ProtocolVersion returns the negotiated protocol version, 0 when disconnected.
func (s *Session) ProtocolVersion() uint8 { return uint8(s.protocolVersion.Load()) }

// MaxMessageLength returns the negotiated maximum message length in bytes, 0 when disconnected.
func (s *Session) MaxMessageLength() uint32 { return s.maxMsgLength.Load() }

// AddStateChangeHandler adds one or more StateChangeHandler functions to be invoked when the
// session state changes.
func (s *Session) AddStateChangeHandler(handlers ...StateChangeHandler) {
	s.handlers = append(s.handlers, handlers...)
}

// Connect opens the device and connects it to the firmware client.
//
// A connected session is disconnected first. If requiredVersion is not 0, the negotiated protocol
// version must equal it, otherwise the session is disconnected again and ErrVersionMismatch is returned.
//
// On success exactly one device handle is held; on any failure none is.
func (s *Session) Connect(requiredVersion uint8) error {
	if s.dev.handle != nil {
		s.trace("reconnect requested, disconnecting first")
		s.Disconnect()
	}

	path := s.cfg.devicePath
	h, err := s.cfg.driver.Open(path)
	if err == nil && h == nil {
		err = errNilHandle
	}
	if err != nil {
		s.metrics.incConnectErrCount()
		s.traceErr("cannot establish a handle to the MEI driver", "path", path, "error", err)

		return newError("open", ErrHandleUnavailable, err)
	}
	s.dev.handle = h
	s.trace("connected to MEI driver", "path", path)

	props, err := h.ConnectClient(s.clientID)
	if err != nil {
		s.metrics.incConnectErrCount()
		s.traceErr("connect client request failed", "error", err)
		s.teardown()

		return newError("connect", ErrNegotiationFailed, err)
	}
	s.trace("client properties",
		"max_message_length", props.MaxMessageLength,
		"protocol_version", props.ProtocolVersion,
	)

	if requiredVersion > 0 && props.ProtocolVersion != requiredVersion {
		s.metrics.incConnectErrCount()
		s.traceErr("protocol version not supported",
			"required_version", requiredVersion,
			"protocol_version", props.ProtocolVersion,
		)
		s.teardown()

		return newError("connect", ErrVersionMismatch,
			fmt.Errorf("required version %d, client version %d", requiredVersion, props.ProtocolVersion))
	}

	s.protocolVersion.Store(uint32(props.ProtocolVersion))
	s.maxMsgLength.Store(props.MaxMessageLength)
	s.metrics.incConnectCount()
	s.setState(ConnectedState)

	return nil
}

// Open connects the session, requiring the protocol version from the session configuration.
func (s *Session) Open() error {
	return s.Connect(s.cfg.requiredVersion)
}

// Receive reads one message into buf and returns the number of bytes read. A zero-length message
// yields 0 and no error.
//
// Receive blocks until a message arrives; timeout is accepted but not enforced. If the message is
// longer than buf, the remainder is left to the device's truncation behaviour, so callers should size
// buf to MaxMessageLength.
//
// A read failure disconnects the session and returns an error of kind ErrIO.
func (s *Session) Receive(buf []byte, timeout time.Duration) (int, error) {
	h := s.dev.handle
	if h == nil {
		return 0, newError("receive", ErrNotConnected, nil)
	}

	s.trace("call read", "length", len(buf), "timeout", timeout)
	n, err := h.Read(buf)
	if err != nil {
		s.metrics.incIOErrCount()
		s.traceErr("read failed", "error", err)
		s.teardown()

		return 0, newError("receive", ErrIO, err)
	}

	s.metrics.addRecv(n)
	s.trace("read succeeded", "result", n)

	return n, nil
}

// Send writes msg as one message and waits up to timeout for the device to report that the write
// completed. It returns the number of bytes written.
//
// A write or wait failure disconnects the session and returns an error of kind ErrIO. If the
// completion is not reported in time, the session is disconnected and an error of kind ErrTimeout
// is returned.
func (s *Session) Send(msg []byte, timeout time.Duration) (int, error) {
	h := s.dev.handle
	if h == nil {
		return 0, newError("send", ErrNotConnected, nil)
	}

	s.trace("call write", "length", len(msg))
	n, err := h.Write(msg)
	if err != nil {
		s.metrics.incIOErrCount()
		s.traceErr("write failed", "error", err)
		s.teardown()

		return 0, newError("send", ErrIO, err)
	}

	ready, err := h.WaitReady(timeout)
	if err != nil {
		s.metrics.incIOErrCount()
		s.traceErr("write failed on completion wait", "error", err)
		s.teardown()

		return 0, newError("send", ErrIO, err)
	}
	if !ready {
		s.metrics.incSendTimeoutCount()
		s.traceErr("write failed on timeout", "timeout", timeout)
		s.teardown()

		return 0, newError("send", ErrTimeout, nil)
	}

	s.metrics.addSent(n)
	s.trace("write success", "result", n)

	return n, nil
}

// Read implements io.Reader by receiving one message into p.
func (s *Session) Read(p []byte) (int, error) {
	return s.Receive(p, 0)
}

// Write implements io.Writer by sending p as one message with the configured send timeout.
func (s *Session) Write(p []byte) (int, error) {
	return s.Send(p, s.cfg.sendTimeout)
}

// Disconnect releases the device handle, if any, and resets the session to DisconnectedState.
// It is safe to call on a disconnected session.
func (s *Session) Disconnect() {
	s.teardown()
}

// Close implements io.Closer. It disconnects the session and always returns nil.
func (s *Session) Close() error {
	s.Disconnect()
	return nil
}

// teardown is the single exit path out of ConnectedState.
func (s *Session) teardown() {
	if h := s.dev.take(); h != nil {
		if err := h.Close(); err != nil {
			s.logger.Warn("failed to close MEI handle", "error", err)
		}
		s.metrics.incHandleReleaseCount()
		s.trace("MEI handle released")
	}

	s.protocolVersion.Store(0)
	s.maxMsgLength.Store(0)
	s.setState(DisconnectedState)
}

func (s *Session) setState(newState State) {
	prevState := State(s.state.Swap(uint32(newState)))
	if prevState == newState {
		return
	}

	s.logger.Debug("session state changed", "prevState", prevState, "newState", newState)

	for _, handler := range s.handlers {
		if handler != nil {
			handler(s, prevState, newState)
		}
	}
}

func (s *Session) trace(msg string, keysAndValues ...any) {
	if s.verbose {
		s.logger.Info(msg, keysAndValues...)
	} else {
		s.logger.Debug(msg, keysAndValues...)
	}
}

func (s *Session) traceErr(msg string, keysAndValues ...any) {
	if s.verbose {
		s.logger.Error(msg, keysAndValues...)
	} else {
		s.logger.Debug(msg, keysAndValues...)
	}
}
