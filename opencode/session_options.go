package opencode

import (
	"log/slog"
	"net/http"
	"time"
)

// SessionConfig holds configuration for an event stream session.
type SessionConfig struct {
	HTTPClient      *http.Client
	Logger          *slog.Logger
	EventPath       string // stream endpoint path (default: "/event")
	EventBufferSize int
	Reconnect       bool
	ReconnectDelay  time.Duration
	MaxReconnects   int // 0 means unlimited once Reconnect is enabled
}

// SessionOption is a functional option for configuring a Session.
type SessionOption func(*SessionConfig)

// WithHTTPClient sets the HTTP client used to open the stream. The client
// must not carry a request timeout; the stream stays open indefinitely.
func WithHTTPClient(client *http.Client) SessionOption {
	return func(c *SessionConfig) {
		c.HTTPClient = client
	}
}

// WithLogger sets the logger for stream diagnostics.
func WithLogger(logger *slog.Logger) SessionOption {
	return func(c *SessionConfig) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// WithEventPath overrides the stream endpoint path (default: "/event").
func WithEventPath(path string) SessionOption {
	return func(c *SessionConfig) {
		c.EventPath = path
	}
}

// WithEventBufferSize sets the event channel buffer size.
func WithEventBufferSize(size int) SessionOption {
	return func(c *SessionConfig) {
		c.EventBufferSize = size
	}
}

// WithReconnect enables reconnecting after the stream drops, with a fixed
// delay between attempts. maxAttempts of 0 retries without bound.
func WithReconnect(delay time.Duration, maxAttempts int) SessionOption {
	return func(c *SessionConfig) {
		c.Reconnect = true
		c.ReconnectDelay = delay
		c.MaxReconnects = maxAttempts
	}
}

// defaultConfig returns the default configuration.
func defaultConfig() SessionConfig {
	return SessionConfig{
		HTTPClient:      &http.Client{},
		Logger:          nopLogger,
		EventPath:       "/event",
		EventBufferSize: 100,
		ReconnectDelay:  2 * time.Second,
	}
}
