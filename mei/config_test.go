package mei

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/go-mei/logger"
)

func TestNewSessionConfig(t *testing.T) {
	require := require.New(t)

	t.Run("Defaults", func(t *testing.T) {
		cfg, err := NewSessionConfig(AMTHIClientUUID)
		require.NoError(err)
		require.Equal(AMTHIClientUUID, cfg.ClientID())
		require.Equal(DefaultDevicePath, cfg.DevicePath())
		require.False(cfg.Verbose())
		require.Equal(uint8(0), cfg.RequiredVersion())
		require.Equal(DefaultSendTimeout, cfg.SendTimeout())
		require.Equal(DeviceDriver{}, cfg.Driver())
		require.NotNil(cfg.GetLogger())
	})

	t.Run("Valid Configuration", func(t *testing.T) {
		drv := &MockDriver{}
		l := logger.NewSlog(logger.DebugLevel, false)

		cfg, err := NewSessionConfig(LMEClientUUID,
			WithDevicePath("/dev/mei1"),
			WithVerbose(true),
			WithRequiredVersion(2),
			WithSendTimeout(5*time.Second),
			WithDriver(drv),
			WithLogger(l),
		)
		require.NoError(err)
		require.Equal("/dev/mei1", cfg.DevicePath())
		require.True(cfg.Verbose())
		require.Equal(uint8(2), cfg.RequiredVersion())
		require.Equal(5*time.Second, cfg.SendTimeout())
		require.Same(drv, cfg.Driver())
		require.Same(l, cfg.GetLogger())
	})

	t.Run("Nil client UUID", func(t *testing.T) {
		_, err := NewSessionConfig(uuid.Nil)
		require.ErrorIs(err, ErrNilClientUUID)
	})

	t.Run("Invalid options", func(t *testing.T) {
		_, err := NewSessionConfig(AMTHIClientUUID, WithDevicePath(""))
		require.EqualError(err, "mei: device path must not be empty")

		_, err = NewSessionConfig(AMTHIClientUUID, WithSendTimeout(0))
		require.ErrorContains(err, "send timeout 0s out of range")

		_, err = NewSessionConfig(AMTHIClientUUID, WithSendTimeout(MaxSendTimeout+time.Second))
		require.ErrorContains(err, "out of range")

		_, err = NewSessionConfig(AMTHIClientUUID, WithDriver(nil))
		require.EqualError(err, "mei: driver must not be nil")

		_, err = NewSessionConfig(AMTHIClientUUID, WithLogger(nil))
		require.EqualError(err, "mei: logger must not be nil")
	})
}

func TestParseSessionConfig(t *testing.T) {
	require := require.New(t)

	t.Run("Full file", func(t *testing.T) {
		doc := `
client_uuid      = "amthi"
device_path      = "/dev/mei1"
verbose          = true
required_version = 1
send_timeout     = "1500ms"
log_level        = "debug"
`
		cfg, err := ParseSessionConfig(strings.NewReader(doc))
		require.NoError(err)
		require.Equal(AMTHIClientUUID, cfg.ClientID())
		require.Equal("/dev/mei1", cfg.DevicePath())
		require.True(cfg.Verbose())
		require.Equal(uint8(1), cfg.RequiredVersion())
		require.Equal(1500*time.Millisecond, cfg.SendTimeout())
		require.Equal(logger.DebugLevel, cfg.GetLogger().Level())
	})

	t.Run("Minimal file", func(t *testing.T) {
		cfg, err := ParseSessionConfig(strings.NewReader(`client_uuid = "8e6a6715-9abc-4043-88ef-9e39c6f63e0f"`))
		require.NoError(err)
		require.Equal(MKHIClientUUID, cfg.ClientID())
		require.Equal(DefaultDevicePath, cfg.DevicePath())
		require.Equal(DefaultSendTimeout, cfg.SendTimeout())
	})

	t.Run("Options override file", func(t *testing.T) {
		drv := &MockDriver{}
		cfg, err := ParseSessionConfig(
			strings.NewReader("client_uuid = \"lme\"\ndevice_path = \"/dev/mei1\"\n"),
			WithDevicePath("/dev/mei2"),
			WithDriver(drv),
		)
		require.NoError(err)
		require.Equal("/dev/mei2", cfg.DevicePath())
		require.Same(drv, cfg.Driver())
	})

	t.Run("Errors", func(t *testing.T) {
		tests := []struct {
			name    string
			doc     string
			wantErr string
		}{
			{"missing client", `verbose = true`, "client_uuid is required"},
			{"unknown key", "client_uuid = \"amthi\"\nrecv_timeout = \"1s\"", "unknown config keys: recv_timeout"},
			{"bad duration", "client_uuid = \"amthi\"\nsend_timeout = \"soon\"", "invalid duration"},
			{"zero duration", "client_uuid = \"amthi\"\nsend_timeout = \"0s\"", "out of range"},
			{"bad level", "client_uuid = \"amthi\"\nlog_level = \"loud\"", "unknown level"},
			{"bad uuid", `client_uuid = "nope"`, "invalid client UUID"},
			{"bad syntax", `client_uuid = `, ""},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := ParseSessionConfig(strings.NewReader(tt.doc))
				require.Error(err)
				if tt.wantErr != "" {
					require.ErrorContains(err, tt.wantErr)
				}
			})
		}
	})
}

func TestLoadSessionConfig(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "mei.toml")
	require.NoError(os.WriteFile(path, []byte("client_uuid = \"watchdog\"\nverbose = true\n"), 0o600))

	cfg, err := LoadSessionConfig(path)
	require.NoError(err)
	require.Equal(WatchdogClientUUID, cfg.ClientID())
	require.True(cfg.Verbose())

	_, err = LoadSessionConfig(filepath.Join(dir, "missing.toml"))
	require.ErrorIs(err, os.ErrNotExist)
	require.ErrorContains(err, "config load failed")
}
