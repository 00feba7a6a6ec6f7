package config

import "time"

// Config is the top-level client configuration.
type Config struct {
	API         APIConfig         `yaml:"api"`
	Feed        FeedConfig        `yaml:"feed"`
	Credentials CredentialsConfig `yaml:"credentials"`
}

// APIConfig configures the Account Service REST client.
type APIConfig struct {
	BaseURL string        `yaml:"base_url"` // e.g., http://127.0.0.1:8000/api
	Timeout time.Duration `yaml:"timeout"`
}

// FeedConfig configures the market-data push channel.
type FeedConfig struct {
	URL           string        `yaml:"url"`            // e.g., ws://127.0.0.1:8000/ws/market-data
	ReconnectWait time.Duration `yaml:"reconnect_wait"` // Fixed delay between reconnect attempts
	BufferSize    int           `yaml:"buffer_size"`    // Inbound message channel buffer
	PingTimeout   time.Duration `yaml:"ping_timeout"`   // Max silence before the connection is considered stale
	WriteTimeout  time.Duration `yaml:"write_timeout"`
}

// CredentialsConfig configures the local credential store.
type CredentialsConfig struct {
	DataDir  string        `yaml:"data_dir"`  // Badger directory for the credential store
	TokenTTL time.Duration `yaml:"token_ttl"` // Stored token expiry window
}
