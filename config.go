package portalauth

import (
	"errors"
	"net/url"
	"time"
)

// Config groups the portal client's tunable settings by concern: remote
// API transport, session persistence and restore, audit dispatch, and
// metrics. Values are read once at [Builder.Build]; mutating a Config
// after handing it to a Builder has no effect on the built Manager.
type Config struct {
	API     APIConfig
	Session SessionConfig
	Audit   AuditConfig
	Metrics MetricsConfig
}

/*
====================================
API CONFIG
====================================
*/

// APIConfig configures the remote authentication API transport.
type APIConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig configures durable session persistence and restore.
//
// InspectTokenExpiry enables a pre-flight unverified parse of the access
// token before authenticated calls: a token already past its exp claim
// (minus ExpirySkew) triggers a refresh without waiting for the server's
// 401. Off by default — the stored token is trusted until the first 401,
// matching the portal's historical behavior.
type SessionConfig struct {
	RedisPrefix        string
	InspectTokenExpiry bool
	ExpirySkew         time.Duration
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig controls the async audit event dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig controls the in-process metrics counters.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the configuration used by the portal deployment:
// sessions under the "litspark" prefix, lazy token validation, audit and
// metrics enabled with a drop-if-full audit buffer.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			RequestTimeout: 15 * time.Second,
		},
		Session: SessionConfig{
			RedisPrefix:        "litspark",
			InspectTokenExpiry: false,
			ExpirySkew:         30 * time.Second,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate checks the configuration for values Build cannot work with.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("API.BaseURL is required")
	}
	if _, err := url.ParseRequestURI(c.API.BaseURL); err != nil {
		return errors.New("API.BaseURL is not a valid URL")
	}
	if c.API.RequestTimeout < 0 {
		return errors.New("API.RequestTimeout must not be negative")
	}
	if c.Session.RedisPrefix == "" {
		return errors.New("Session.RedisPrefix is required")
	}
	if c.Session.ExpirySkew < 0 {
		return errors.New("Session.ExpirySkew must not be negative")
	}
	if c.Audit.Enabled && c.Audit.BufferSize < 0 {
		return errors.New("Audit.BufferSize must not be negative")
	}
	return nil
}

func cloneConfig(cfg Config) Config {
	// All fields are value types; a shallow copy is a full copy.
	return cfg
}
