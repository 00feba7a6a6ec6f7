package config

import "time"

// Default values for optional configuration fields. The URL defaults
// point at a local backend for development.
const (
	DefaultAPIBaseURL    = "http://127.0.0.1:8000/api"
	DefaultAPITimeout    = 30 * time.Second
	DefaultFeedURL       = "ws://127.0.0.1:8000/ws/market-data"
	DefaultReconnectWait = 5 * time.Second
	DefaultBufferSize    = 100
	DefaultPingTimeout   = 60 * time.Second
	DefaultWriteTimeout  = 5 * time.Second
	DefaultDataDir       = "data"
	DefaultTokenTTL      = 7 * 24 * time.Hour
)

func (c *Config) applyDefaults() {
	// API defaults
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultAPIBaseURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}

	// Feed defaults
	if c.Feed.URL == "" {
		c.Feed.URL = DefaultFeedURL
	}
	if c.Feed.ReconnectWait == 0 {
		c.Feed.ReconnectWait = DefaultReconnectWait
	}
	if c.Feed.BufferSize == 0 {
		c.Feed.BufferSize = DefaultBufferSize
	}
	if c.Feed.PingTimeout == 0 {
		c.Feed.PingTimeout = DefaultPingTimeout
	}
	if c.Feed.WriteTimeout == 0 {
		c.Feed.WriteTimeout = DefaultWriteTimeout
	}

	// Credential store defaults
	if c.Credentials.DataDir == "" {
		c.Credentials.DataDir = DefaultDataDir
	}
	if c.Credentials.TokenTTL == 0 {
		c.Credentials.TokenTTL = DefaultTokenTTL
	}
}
