package mei

import (
	"errors"
	"fmt"
	"time"

	"github.com/arloliu/go-mei/logger"
	"github.com/google/uuid"
)

const (
	// DefaultDevicePath is the MEI character device created by the Linux mei driver.
	DefaultDevicePath = "/dev/mei0"
	// LegacyDevicePath is the device node used by older Linux kernels.
	LegacyDevicePath = "/dev/mei"

	// DefaultSendTimeout bounds the completion wait of Session.Write.
	DefaultSendTimeout = 2 * time.Second

	// MaxSendTimeout is the largest accepted send timeout.
	MaxSendTimeout = 10 * time.Minute
)

// SessionConfig holds the configuration of a Session.
type SessionConfig struct {
	clientID uuid.UUID

	devicePath string
	verbose    bool

	// requiredVersion is the protocol version Session.Open requires; 0 accepts any version.
	requiredVersion uint8

	// sendTimeout bounds the completion wait for Session.Write.
	sendTimeout time.Duration

	driver Driver
	logger logger.Logger
}

// NewSessionConfig creates a session configuration for the firmware client identified by clientID.
//
// opts are functional options applied in order; see the With* functions.
func NewSessionConfig(clientID uuid.UUID, opts ...SessionOption) (*SessionConfig, error) {
	if clientID == uuid.Nil {
		return nil, ErrNilClientUUID
	}

	cfg := &SessionConfig{
		clientID:    clientID,
		devicePath:  DefaultDevicePath,
		sendTimeout: DefaultSendTimeout,
		driver:      DeviceDriver{},
		logger:      logger.GetLogger(),
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// ClientID returns the firmware client UUID.
func (cfg *SessionConfig) ClientID() uuid.UUID { return cfg.clientID }

// DevicePath returns the MEI device path.
func (cfg *SessionConfig) DevicePath() string { return cfg.devicePath }

// Verbose returns whether verbose session tracing is enabled.
func (cfg *SessionConfig) Verbose() bool { return cfg.verbose }

// RequiredVersion returns the protocol version required by Session.Open, 0 if any version is accepted.
func (cfg *SessionConfig) RequiredVersion() uint8 { return cfg.requiredVersion }

// SendTimeout returns the completion timeout used by Session.Write.
func (cfg *SessionConfig) SendTimeout() time.Duration { return cfg.sendTimeout }

// Driver returns the device driver.
func (cfg *SessionConfig) Driver() Driver { return cfg.driver }

// GetLogger returns the configured logger.
func (cfg *SessionConfig) GetLogger() logger.Logger { return cfg.logger }

// SessionOption is a functional option for configuring a SessionConfig.
type SessionOption interface {
	apply(*SessionConfig) error
}

type sessionOptFunc func(*SessionConfig) error

func (f sessionOptFunc) apply(cfg *SessionConfig) error { return f(cfg) }

// WithDevicePath sets the MEI device path. Default is DefaultDevicePath.
func WithDevicePath(path string) SessionOption {
	return sessionOptFunc(func(cfg *SessionConfig) error {
		if path == "" {
			return errors.New("mei: device path must not be empty")
		}
		cfg.devicePath = path

		return nil
	})
}

// WithVerbose enables or disables verbose tracing. When enabled, every protocol step is logged at
// info level instead of debug level, and failures are logged as errors.
func WithVerbose(verbose bool) SessionOption {
	return sessionOptFunc(func(cfg *SessionConfig) error {
		cfg.verbose = verbose
		return nil
	})
}

// WithRequiredVersion sets the protocol version Session.Open requires. 0 accepts any version.
func WithRequiredVersion(version uint8) SessionOption {
	return sessionOptFunc(func(cfg *SessionConfig) error {
		cfg.requiredVersion = version
		return nil
	})
}

// WithSendTimeout sets the completion timeout used by Session.Write.
// It must be in (0, MaxSendTimeout].
func WithSendTimeout(d time.Duration) SessionOption {
	return sessionOptFunc(func(cfg *SessionConfig) error {
		if d <= 0 || d > MaxSendTimeout {
			return fmt.Errorf("mei: send timeout %v out of range (0, %v]", d, MaxSendTimeout)
		}
		cfg.sendTimeout = d

		return nil
	})
}

// WithDriver sets the device driver. Default is DeviceDriver.
func WithDriver(d Driver) SessionOption {
	return sessionOptFunc(func(cfg *SessionConfig) error {
		if d == nil {
			return errors.New("mei: driver must not be nil")
		}
		cfg.driver = d

		return nil
	})
}

// WithLogger sets the logger for the session.
func WithLogger(l logger.Logger) SessionOption {
	return sessionOptFunc(func(cfg *SessionConfig) error {
		if l == nil {
			return errors.New("mei: logger must not be nil")
		}
		cfg.logger = l

		return nil
	})
}
