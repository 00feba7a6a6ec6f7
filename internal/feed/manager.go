package feed

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/bvkgo/topic"
	"github.com/google/uuid"

	"github.com/b-akash-krishna/crypto-arbitrage-tracker/internal/model"
)

// Manager owns the current opportunity snapshot. It wraps one feed
// connection at a time and republishes state to subscribers. The view
// layer holds read-only snapshots and never mutates them.
type Manager struct {
	cfg    ManagerConfig
	logger *slog.Logger

	updates *topic.Topic[model.Snapshot]

	// newClient is replaceable in tests.
	newClient func(ClientConfig, *slog.Logger) Client

	mu            sync.Mutex
	running       bool
	cancel        context.CancelFunc
	opportunities []model.Opportunity
	connected     bool

	wg sync.WaitGroup
}

// NewManager creates a Feed Manager. Call Start to open the channel.
func NewManager(cfg ManagerConfig, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		cfg:       cfg,
		logger:    logger,
		updates:   topic.New[model.Snapshot](),
		newClient: NewClient,
	}
}

// Start opens the feed connection and begins the reconnect loop.
// Calling Start while the manager is running is a no-op.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return nil
	}
	m.running = true

	ctx, m.cancel = context.WithCancel(ctx)
	m.wg.Add(1)
	go m.run(ctx)

	return nil
}

// Stop closes the active connection and cancels any pending reconnect
// attempt. Used at process teardown.
func (m *Manager) Stop() error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return nil
	}
	m.running = false
	cancel := m.cancel
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
	return nil
}

// Snapshot returns the current opportunity set and channel liveness.
func (m *Manager) Snapshot() model.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return model.Snapshot{
		Opportunities: slices.Clone(m.opportunities),
		Connected:     m.connected,
	}
}

// Subscribe returns a channel of snapshot updates and a cancel
// function. The most recent snapshot is delivered first.
func (m *Manager) Subscribe() (<-chan model.Snapshot, func()) {
	sub, ch, _ := m.updates.Subscribe(1, true /* includeRecent */)
	return ch, sub.Unsubscribe
}

// run is the reconnect loop: one connection attempt outstanding at a
// time, a fixed wait after every failure or close, forever until the
// context is cancelled.
func (m *Manager) run(ctx context.Context) {
	defer m.wg.Done()

	for ctx.Err() == nil {
		// Short attempt id to correlate log lines across reconnects.
		logger := m.logger.With("conn_id", uuid.NewString()[:8])

		client := m.newClient(ClientConfig{
			URL:          m.cfg.URL,
			PingTimeout:  m.cfg.PingTimeout,
			WriteTimeout: m.cfg.WriteTimeout,
			BufferSize:   m.cfg.BufferSize,
		}, logger)

		if err := client.Connect(ctx); err != nil {
			logger.Warn("feed connect failed", "url", m.cfg.URL, "error", err)
			if !m.waitReconnect(ctx) {
				return
			}
			continue
		}

		logger.Info("feed connected", "url", m.cfg.URL)
		m.setConnected(true)

		m.consume(ctx, client, logger)

		client.Close()
		m.setConnected(false)

		if ctx.Err() != nil {
			return
		}
		logger.Info("feed disconnected, will reconnect", "wait", m.cfg.ReconnectWait)
		if !m.waitReconnect(ctx) {
			return
		}
	}
}

// waitReconnect blocks for the fixed reconnect delay. Returns false
// when the wait was cancelled by Stop.
func (m *Manager) waitReconnect(ctx context.Context) bool {
	timer := time.NewTimer(m.cfg.ReconnectWait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// consume processes inbound messages until the connection errors,
// closes, or the context is cancelled. Messages are handled strictly in
// arrival order.
func (m *Manager) consume(ctx context.Context, client Client, logger *slog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return

		case err := <-client.Errors():
			logger.Warn("feed connection error", "error", err)
			return

		case msg, ok := <-client.Messages():
			if !ok {
				return
			}
			m.handleMessage(msg, logger)
		}
	}
}

// handleMessage decodes one inbound frame. Only "update" messages
// mutate the opportunity set, by wholesale replacement. Unrecognized
// kinds and undecodable payloads are dropped and logged; they never
// tear down the channel or leave partial state.
func (m *Manager) handleMessage(msg TimestampedMessage, logger *slog.Logger) {
	var env Envelope
	if err := json.Unmarshal(msg.Data, &env); err != nil {
		logger.Warn("dropping undecodable feed message", "error", err)
		return
	}

	if env.Type != MessageUpdate {
		logger.Debug("ignoring feed message", "type", env.Type)
		return
	}

	var opportunities []model.Opportunity
	if err := json.Unmarshal(env.Data, &opportunities); err != nil {
		logger.Warn("dropping malformed update payload", "error", err)
		return
	}

	m.mu.Lock()
	m.opportunities = opportunities
	snapshot := model.Snapshot{
		Opportunities: slices.Clone(opportunities),
		Connected:     m.connected,
	}
	m.mu.Unlock()

	logger.Debug("opportunity set replaced",
		"count", len(opportunities),
		"received_at", msg.ReceivedAt,
	)
	m.updates.Send(snapshot)
}

// setConnected updates channel liveness and republishes.
func (m *Manager) setConnected(connected bool) {
	m.mu.Lock()
	if m.connected == connected {
		m.mu.Unlock()
		return
	}
	m.connected = connected
	snapshot := model.Snapshot{
		Opportunities: slices.Clone(m.opportunities),
		Connected:     connected,
	}
	m.mu.Unlock()

	m.updates.Send(snapshot)
}
