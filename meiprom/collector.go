// Package meiprom exports the metrics and state of a mei.Session to Prometheus.
//
// Metrics collected, with the default "mei" namespace:
//   - mei_connects_total: successful connects
//   - mei_connect_errors_total: failed connects, version mismatches included
//   - mei_messages_sent_total / mei_messages_received_total: completed messages
//   - mei_sent_bytes_total / mei_received_bytes_total: payload bytes
//   - mei_send_timeouts_total: sends whose completion timed out
//   - mei_io_errors_total: read, write and completion wait failures
//   - mei_handle_releases_total: device handles released
//   - mei_connected: 1 while the session is connected
//   - mei_protocol_version / mei_max_message_length: negotiated parameters, 0 when disconnected
//
// Every metric carries a "client" label with the session's client UUID.
//
// Example:
//
//	reg := prometheus.NewRegistry()
//	if err := meiprom.Register(reg, session); err != nil {
//	    return err
//	}
package meiprom

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/arloliu/go-mei/mei"
)

// Config configures the session collector.
type Config struct {
	// Namespace is the metrics namespace (default: "mei").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics, in addition to "client".
	ConstLabels prometheus.Labels
}

// Option configures the session collector.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

func defaultConfig() Config {
	return Config{Namespace: "mei"}
}

// Collector is a prometheus.Collector reading a session's metrics at scrape time.
type Collector struct {
	metrics []prometheus.Collector
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector creates a collector for s.
func NewCollector(s *mei.Session, opts ...Option) *Collector {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	labels := prometheus.Labels{"client": s.ClientID().String()}
	for k, v := range cfg.ConstLabels {
		labels[k] = v
	}

	m := s.GetMetrics()
	counter := func(name, help string, v *atomic.Uint64) prometheus.Collector {
		return prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: labels,
		}, func() float64 { return float64(v.Load()) })
	}
	gauge := func(name, help string, f func() float64) prometheus.Collector {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: labels,
		}, f)
	}

	return &Collector{
		metrics: []prometheus.Collector{
			counter("connects_total", "Total number of successful connects", &m.ConnectCount),
			counter("connect_errors_total", "Total number of failed connects", &m.ConnectErrCount),
			counter("messages_sent_total", "Total number of messages sent and completed", &m.MsgSendCount),
			counter("messages_received_total", "Total number of messages received", &m.MsgRecvCount),
			counter("sent_bytes_total", "Total number of payload bytes sent", &m.BytesSent),
			counter("received_bytes_total", "Total number of payload bytes received", &m.BytesRecv),
			counter("send_timeouts_total", "Total number of send completion timeouts", &m.SendTimeoutCount),
			counter("io_errors_total", "Total number of device I/O errors", &m.IOErrCount),
			counter("handle_releases_total", "Total number of device handles released", &m.HandleReleaseCount),
			gauge("connected", "Whether the session is connected", func() float64 {
				if s.IsConnected() {
					return 1
				}
				return 0
			}),
			gauge("protocol_version", "Negotiated protocol version", func() float64 {
				return float64(s.ProtocolVersion())
			}),
			gauge("max_message_length", "Negotiated maximum message length in bytes", func() float64 {
				return float64(s.MaxMessageLength())
			}),
		},
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, m := range c.metrics {
		m.Describe(ch)
	}
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, m := range c.metrics {
		m.Collect(ch)
	}
}

// Register creates a collector for s and registers it with reg.
func Register(reg prometheus.Registerer, s *mei.Session, opts ...Option) error {
	return reg.Register(NewCollector(s, opts...))
}
