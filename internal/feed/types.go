package feed

import (
	"encoding/json"
	"errors"
	"time"
)

// Errors
var (
	ErrStaleConnection = errors.New("connection stale (no ping)")
	ErrAlreadyClosed   = errors.New("already closed")
)

// TimestampedMessage wraps raw message data with receive timestamp.
type TimestampedMessage struct {
	Data       []byte    // Raw message bytes from WebSocket
	ReceivedAt time.Time // Local timestamp when ReadMessage() returned
}

// Envelope is the inbound frame format. Only type "update" carries an
// opportunity list; anything else is dropped.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// MessageUpdate is the Envelope.Type that replaces the opportunity set.
const MessageUpdate = "update"

// ClientConfig configures a WebSocket client.
type ClientConfig struct {
	URL          string        // WebSocket URL (e.g., ws://127.0.0.1:8000/ws/market-data)
	PingTimeout  time.Duration // Max time without ping before considering connection stale
	WriteTimeout time.Duration // Write deadline for control frames
	BufferSize   int           // Message channel buffer size
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		PingTimeout:  60 * time.Second,
		WriteTimeout: 5 * time.Second,
		BufferSize:   100,
	}
}

// ManagerConfig configures the Feed Manager.
type ManagerConfig struct {
	URL           string        // WebSocket URL of the Market Data Service
	ReconnectWait time.Duration // Fixed delay between reconnect attempts
	BufferSize    int           // Inbound message channel buffer size
	PingTimeout   time.Duration // Passed through to the client
	WriteTimeout  time.Duration // Passed through to the client
}

// DefaultManagerConfig returns sensible defaults.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		ReconnectWait: 5 * time.Second,
		BufferSize:    100,
		PingTimeout:   60 * time.Second,
		WriteTimeout:  5 * time.Second,
	}
}
