package mei

import (
	"sync"
	"time"
)

// SyncSession serializes access to a Session with a mutex so it can be shared between goroutines.
//
// Every call holds the lock for its full duration. In particular a blocked Receive holds the lock until a
// message arrives or the read fails, so Send and Disconnect from other goroutines wait behind it.
type SyncSession struct {
	mu      sync.Mutex
	session *Session
}

// NewSyncSession wraps s. The caller must not use s directly afterwards.
func NewSyncSession(s *Session) *SyncSession {
	return &SyncSession{session: s}
}

// Session returns the wrapped session. Only its goroutine-safe accessors may be used while the
// SyncSession is shared.
func (ss *SyncSession) Session() *Session { return ss.session }

// Connect calls Session.Connect under the lock.
func (ss *SyncSession) Connect(requiredVersion uint8) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	return ss.session.Connect(requiredVersion)
}

// Send calls Session.Send under the lock.
func (ss *SyncSession) Send(msg []byte, timeout time.Duration) (int, error) {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	return ss.session.Send(msg, timeout)
}

// Receive calls Session.Receive under the lock.
func (ss *SyncSession) Receive(buf []byte, timeout time.Duration) (int, error) {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	return ss.session.Receive(buf, timeout)
}

// Transact sends req and receives the reply into buf without letting another caller interleave.
func (ss *SyncSession) Transact(req []byte, buf []byte, timeout time.Duration) (int, error) {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if _, err := ss.session.Send(req, timeout); err != nil {
		return 0, err
	}

	return ss.session.Receive(buf, timeout)
}

// Disconnect calls Session.Disconnect under the lock.
func (ss *SyncSession) Disconnect() {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	ss.session.Disconnect()
}

// Close disconnects the session and always returns nil.
func (ss *SyncSession) Close() error {
	ss.Disconnect()
	return nil
}

// IsConnected returns if the wrapped session is connected.
func (ss *SyncSession) IsConnected() bool { return ss.session.IsConnected() }

// ProtocolVersion returns the negotiated protocol version of the wrapped session.
func (ss *SyncSession) ProtocolVersion() uint8 { return ss.session.ProtocolVersion() }

// MaxMessageLength returns the negotiated maximum message length of the wrapped session.
func (ss *SyncSession) MaxMessageLength() uint32 { return ss.session.MaxMessageLength() }
