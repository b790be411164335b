package mei

import (
	"sync/atomic"
)

// SessionMetrics contains atomic metrics for a session.
// Metrics can be used as the value of a prometheus CounterFunc or GaugeFunc; see package meiprom.
type SessionMetrics struct {
	// ConnectCount indicates the number of successful connects.
	ConnectCount atomic.Uint64
	// ConnectErrCount indicates the number of failed connects, version mismatches included.
	ConnectErrCount atomic.Uint64

	// MsgSendCount indicates the number of messages sent and completed.
	MsgSendCount atomic.Uint64
	// MsgRecvCount indicates the number of messages received.
	MsgRecvCount atomic.Uint64
	// BytesSent indicates the number of payload bytes sent and completed.
	BytesSent atomic.Uint64
	// BytesRecv indicates the number of payload bytes received.
	BytesRecv atomic.Uint64

	// SendTimeoutCount indicates the number of sends whose completion timed out.
	SendTimeoutCount atomic.Uint64
	// IOErrCount indicates the number of read, write and completion wait failures.
	IOErrCount atomic.Uint64

	// HandleReleaseCount indicates the number of device handles released.
	HandleReleaseCount atomic.Uint64
}

func (m *SessionMetrics) incConnectCount() {
	m.ConnectCount.Add(1)
}

func (m *SessionMetrics) incConnectErrCount() {
	m.ConnectErrCount.Add(1)
}

func (m *SessionMetrics) addSent(n int) {
	m.MsgSendCount.Add(1)
	m.BytesSent.Add(uint64(n))
}

func (m *SessionMetrics) addRecv(n int) {
	m.MsgRecvCount.Add(1)
	m.BytesRecv.Add(uint64(n))
}

func (m *SessionMetrics) incSendTimeoutCount() {
	m.SendTimeoutCount.Add(1)
}

func (m *SessionMetrics) incIOErrCount() {
	m.IOErrCount.Add(1)
}

func (m *SessionMetrics) incHandleReleaseCount() {
	m.HandleReleaseCount.Add(1)
}
