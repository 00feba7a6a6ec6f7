package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("api.base_url is required")
	}
	if _, err := url.Parse(c.API.BaseURL); err != nil {
		return fmt.Errorf("api.base_url is not a valid URL: %w", err)
	}
	if c.API.Timeout <= 0 {
		return errors.New("api.timeout must be positive")
	}

	if c.Feed.URL == "" {
		return errors.New("feed.url is required")
	}
	u, err := url.Parse(c.Feed.URL)
	if err != nil {
		return fmt.Errorf("feed.url is not a valid URL: %w", err)
	}
	if !strings.HasPrefix(u.Scheme, "ws") {
		return fmt.Errorf("feed.url scheme must be ws or wss, got %q", u.Scheme)
	}
	if c.Feed.ReconnectWait <= 0 {
		return errors.New("feed.reconnect_wait must be positive")
	}
	if c.Feed.BufferSize < 1 {
		return errors.New("feed.buffer_size must be >= 1")
	}

	if c.Credentials.DataDir == "" {
		return errors.New("credentials.data_dir is required")
	}
	if c.Credentials.TokenTTL <= 0 {
		return errors.New("credentials.token_ttl must be positive")
	}

	return nil
}
