package mei

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/arloliu/go-mei/logger"
)

// fileConfig is the TOML representation of a session configuration.
//
//	client_uuid      = "amthi"            # well-known name or UUID, required
//	device_path      = "/dev/mei0"
//	verbose          = true
//	required_version = 1
//	send_timeout     = "2s"
//	log_level        = "debug"
type fileConfig struct {
	ClientUUID      string   `toml:"client_uuid"`
	DevicePath      string   `toml:"device_path"`
	Verbose         bool     `toml:"verbose"`
	RequiredVersion uint8    `toml:"required_version"`
	SendTimeout     duration `toml:"send_timeout"`
	LogLevel        string   `toml:"log_level"`
}

type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v

	return nil
}

// LoadSessionConfig reads a TOML session configuration from path.
//
// Options in opts are applied after the file's settings and take precedence over them.
func LoadSessionConfig(path string, opts ...SessionOption) (*SessionConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mei: config load failed (%s): %w", path, err)
	}
	defer f.Close()

	cfg, err := ParseSessionConfig(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("mei: config parse failed (%s): %w", path, err)
	}

	return cfg, nil
}

// ParseSessionConfig decodes a TOML session configuration from r. See LoadSessionConfig.
func ParseSessionConfig(r io.Reader, opts ...SessionOption) (*SessionConfig, error) {
	var fc fileConfig
	md, err := toml.NewDecoder(r).Decode(&fc)
	if err != nil {
		return nil, err
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}

		return nil, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}

	if fc.ClientUUID == "" {
		return nil, fmt.Errorf("client_uuid is required")
	}

	clientID, err := ParseClientUUID(fc.ClientUUID)
	if err != nil {
		return nil, err
	}

	fileOpts := []SessionOption{
		WithVerbose(fc.Verbose),
		WithRequiredVersion(fc.RequiredVersion),
	}
	if fc.DevicePath != "" {
		fileOpts = append(fileOpts, WithDevicePath(fc.DevicePath))
	}
	if md.IsDefined("send_timeout") {
		fileOpts = append(fileOpts, WithSendTimeout(fc.SendTimeout.Duration))
	}
	if fc.LogLevel != "" {
		level, err := logger.ParseLevel(fc.LogLevel)
		if err != nil {
			return nil, err
		}
		fileOpts = append(fileOpts, WithLogger(logger.NewSlog(level, false)))
	}

	return NewSessionConfig(clientID, append(fileOpts, opts...)...)
}
