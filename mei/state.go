package mei

// State represents the connection state of a Session.
type State uint32

// Session states.
const (
	// DisconnectedState indicates that no device handle is held. It is both the initial and the final state.
	DisconnectedState State = iota
	// ConnectedState indicates that a device handle is held and bound to the firmware client.
	ConnectedState
)

// IsConnected returns if the state is connected.
func (st State) IsConnected() bool { return st == ConnectedState }

// IsDisconnected returns if the state is disconnected.
func (st State) IsDisconnected() bool { return st == DisconnectedState }

// String returns string representation of the state.
func (st State) String() string {
	switch st {
	case DisconnectedState:
		return "disconnected"
	case ConnectedState:
		return "connected"
	default:
		return "unknown"
	}
}

// StateChangeHandler is a function type that represents a handler for session state changes.
//
// Note: the handler is invoked synchronously on the goroutine driving the session, after the state
// has changed. It may read the session but should not block.
type StateChangeHandler func(s *Session, prevState State, newState State)
