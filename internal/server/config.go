package server

import "time"

// Default values applied by the accessor methods below whenever the
// corresponding Config field is left at its zero value.
const (
	DefaultListenAddr  = ":50000"
	DefaultIdleTimeout = 30 * time.Second
)

// Config holds the listener-level settings for graphd's TCP server.
// Fields are left exported and zero-valuable so a Config can be
// populated directly from decoded YAML; callers read values back
// through the unexported accessor methods, which apply defaults the
// way internal/relay/config.go does for GroupCacheSize/FrameCapacity.
type Config struct {
	// ListenAddr is the TCP address the session listener binds.
	ListenAddr string

	// IdleTimeout is the per-session inactivity timeout.
	IdleTimeout time.Duration

	// MetricsAddr is the address for the optional /healthz and
	// /metrics HTTP listener. Empty disables it.
	MetricsAddr string
}

func (c *Config) listenAddr() string {
	if c != nil && c.ListenAddr != "" {
		return c.ListenAddr
	}
	return DefaultListenAddr
}

func (c *Config) idleTimeout() time.Duration {
	if c != nil && c.IdleTimeout > 0 {
		return c.IdleTimeout
	}
	return DefaultIdleTimeout
}

func (c *Config) metricsAddr() string {
	if c == nil {
		return ""
	}
	return c.MetricsAddr
}
