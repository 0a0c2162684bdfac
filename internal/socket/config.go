package socket

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config groups all socket tunables. Values are taken from environment
// variables with the prefix "PW_SOCKET_". Example: PW_SOCKET_ACK_TIMEOUT=5s .
type Config struct {
	// AckTimeout bounds how long EmitWithAck waits for the server's
	// acknowledgement before failing the call with a transport error.
	AckTimeout       time.Duration `envconfig:"ACK_TIMEOUT"       default:"12s"`
	HandshakeTimeout time.Duration `envconfig:"HANDSHAKE_TIMEOUT" default:"10s"`
	WriteTimeout     time.Duration `envconfig:"WRITE_TIMEOUT"     default:"10s"`
	PingInterval     time.Duration `envconfig:"PING_INTERVAL"     default:"25s"`

	// Reconnect backoff bounds. The reconnect loop starts at
	// ReconnectInitial and doubles up to ReconnectMax.
	ReconnectInitial time.Duration `envconfig:"RECONNECT_INITIAL" default:"500ms"`
	ReconnectMax     time.Duration `envconfig:"RECONNECT_MAX"     default:"30s"`
}

// LoadConfig populates Config from environment variables (prefix PW_SOCKET).
func LoadConfig() (Config, error) {
	var c Config
	return c, envconfig.Process("PW_SOCKET", &c)
}

// withDefaults fills zero values so a zero Config is usable in tests.
func (c Config) withDefaults() Config {
	if c.AckTimeout <= 0 {
		c.AckTimeout = 12 * time.Second
	}
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = 10 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.PingInterval <= 0 {
		c.PingInterval = 25 * time.Second
	}
	if c.ReconnectInitial <= 0 {
		c.ReconnectInitial = 500 * time.Millisecond
	}
	if c.ReconnectMax <= 0 {
		c.ReconnectMax = 30 * time.Second
	}
	return c
}
