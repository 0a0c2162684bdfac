package client

// This file defines functional options that configure the Client during
// construction. Keeping them in a standalone file avoids cluttering
// client.go and makes it easy to discover all available knobs at a glance.

import (
	"fmt"
	"time"
)

// Option configures a Client during construction in New.
//
// Options are applied before any network component is built, so they may
// adjust the HTTP client, socket tunables and storage location freely.
// Options must be deterministic and side-effect free.
type Option func(*Client) error

// WithHTTPTimeout sets the underlying http.Client Timeout used for the
// login exchange.
//
// Prefer per-request context deadlines where possible; this timeout is a
// coarse safety net that bounds the total time spent on a single HTTP
// request. The value must be greater than zero.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("http timeout must be > 0")
		}
		c.http.Timeout = d
		return nil
	}
}

// WithDebugLogging wraps the HTTP client's transport so each request and
// response is logged when enabled is true.
//
// Do not enable this option in production environments as it increases
// verbosity and may include headers and tokens in logs.
func WithDebugLogging(enabled bool) Option {
	return func(c *Client) error {
		if enabled {
			c.http.Transport = &debugTransport{base: c.http.Transport}
		}
		return nil
	}
}

// WithAckTimeout overrides how long an emit waits for the server's
// acknowledgement before failing with a transport error. The environment
// variable PW_SOCKET_ACK_TIMEOUT serves the same purpose without a code
// change.
func WithAckTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("ack timeout must be > 0")
		}
		c.socketCfg.AckTimeout = d
		return nil
	}
}

// WithCredentialsDir sets the directory holding the persisted session file.
// Defaults to a "platewise" directory under the user config dir.
func WithCredentialsDir(dir string) Option {
	return func(c *Client) error {
		if dir == "" {
			return fmt.Errorf("credentials dir must not be empty")
		}
		c.credsDir = dir
		return nil
	}
}

// WithPreferredHousehold biases household resolution toward the household
// with this name (case-insensitive) when the user belongs to several.
func WithPreferredHousehold(name string) Option {
	return func(c *Client) error {
		c.preferredHousehold = name
		return nil
	}
}
