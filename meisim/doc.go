// Package meisim provides an in-memory MEI bus that satisfies mei.Driver.
//
// A Bus holds a set of simulated firmware clients keyed by UUID. Handles opened on the bus behave like
// handles on the Linux mei character device:
//
//   - ConnectClient binds a handle to one client; a client accepts only one handle at a time.
//   - Read blocks until the client has an inbound message.
//   - Write records the message and starts a completion that WaitReady observes.
//
// Completion of writes is controlled per client with DrainMode, and each client can be told to fail
// any of its operations. The bus counts open handles so tests can check that sessions release them.
//
// Errors are reported with the errno values the Linux driver uses:
//
//   - ENOTTY: connect to an unknown client
//   - EBUSY: connect to a client owned by another handle, or connect twice on one handle
//   - ENODEV: read or write on an unconnected handle, or on a client removed from the bus
//   - EFBIG: write longer than the client's maximum message length
//   - EBADF: any operation on a closed handle
package meisim
