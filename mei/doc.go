// Package mei provides a client session for the Intel Management Engine Interface (MEI, formerly HECI).
//
// A firmware application on the management engine is addressed by a 128-bit client UUID. The host talks to
// it through a character device (/dev/mei0): the device is opened, the connect-client control request binds
// the handle to one firmware client and returns the negotiated protocol version and maximum message length,
// and whole messages are then exchanged with read and write. The device delivers message boundaries; this
// package adds no framing on top of them.
//
// Session Lifecycle:
//   - Build a SessionConfig with NewSessionConfig (or LoadSessionConfig for a TOML file).
//   - Create a Session with NewSession and call Connect, optionally requiring a protocol version.
//   - Exchange messages with Send and Receive.
//   - Call Disconnect (or Close) to release the device handle.
//
// Failure Policy:
//
// The session never stays connected after an anomaly. Any read, write or completion-wait failure, and a send
// whose completion does not arrive within its timeout, closes the device handle and resets the session to the
// disconnected state before the error is returned. Nothing is retried internally; callers reconnect.
//
// Timeouts:
//
// Send writes the message and then waits, bounded by its timeout, for the device to report the write
// completed. Receive accepts a timeout for symmetry but blocks until a message arrives.
//
// Concurrency:
//
// A Session is meant for serialized use by one goroutine. Use SyncSession when several goroutines share one
// channel. State, negotiated parameters and metrics may be read from any goroutine.
package mei
