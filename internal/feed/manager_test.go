package feed

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/b-akash-krishna/crypto-arbitrage-tracker/internal/model"
)

const testReconnectWait = 50 * time.Millisecond

func testManagerConfig(url string) ManagerConfig {
	return ManagerConfig{
		URL:           url,
		ReconnectWait: testReconnectWait,
		BufferSize:    100,
		PingTimeout:   30 * time.Second,
		WriteTimeout:  5 * time.Second,
	}
}

// feedServer is a controllable Market Data Service stub. Each accepted
// connection is handed to the test through Conns.
type feedServer struct {
	t     *testing.T
	Conns chan *websocket.Conn

	mu    sync.Mutex
	dials int
}

func newFeedServer(t *testing.T) (*feedServer, ManagerConfig) {
	fs := &feedServer{t: t, Conns: make(chan *websocket.Conn, 8)}
	server := mockWSServer(t, func(conn *websocket.Conn) {
		fs.mu.Lock()
		fs.dials++
		fs.mu.Unlock()

		fs.Conns <- conn
		// Keep the connection open until a peer closes it.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
	t.Cleanup(server.Close)
	return fs, testManagerConfig(wsURL(server))
}

func (fs *feedServer) Dials() int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.dials
}

func (fs *feedServer) NextConn(t *testing.T) *websocket.Conn {
	t.Helper()
	select {
	case conn := <-fs.Conns:
		return conn
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for feed connection")
		return nil
	}
}

func push(t *testing.T, conn *websocket.Conn, payload string) {
	t.Helper()
	if err := conn.WriteMessage(websocket.TextMessage, []byte(payload)); err != nil {
		t.Fatalf("push failed: %v", err)
	}
}

func opportunityJSON(pair string) string {
	return fmt.Sprintf(`{
		"pair": %q,
		"buy_exchange": "Kraken",
		"sell_exchange": "Binance",
		"buy_price": 100.0,
		"sell_price": 101.0,
		"spread_percentage": 1.0,
		"potential_profit": 1.0,
		"confidence_score": 80.0,
		"timestamp": "2024-01-15T12:30:00Z"
	}`, pair)
}

func waitForSnapshot(t *testing.T, m *Manager, cond func(model.Snapshot) bool, desc string) model.Snapshot {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		snap := m.Snapshot()
		if cond(snap) {
			return snap
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timeout waiting for snapshot: %s (last: %+v)", desc, m.Snapshot())
	return model.Snapshot{}
}

func TestManager_UpdateReplacesSnapshot(t *testing.T) {
	fs, cfg := newFeedServer(t)

	m := NewManager(cfg, nil)
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer m.Stop()

	conn := fs.NextConn(t)

	push(t, conn, `{"type":"update","data":[`+opportunityJSON("BTC/USDT")+`,`+opportunityJSON("ETH/USDT")+`]}`)
	waitForSnapshot(t, m, func(s model.Snapshot) bool {
		return len(s.Opportunities) == 2 && s.Connected
	}, "two opportunities")

	// A later update replaces the whole set, never merges.
	push(t, conn, `{"type":"update","data":[`+opportunityJSON("BNB/USDT")+`]}`)
	snap := waitForSnapshot(t, m, func(s model.Snapshot) bool {
		return len(s.Opportunities) == 1
	}, "replaced set")

	if snap.Opportunities[0].Pair != "BNB/USDT" {
		t.Errorf("Pair = %q, want BNB/USDT", snap.Opportunities[0].Pair)
	}
}

func TestManager_DropsUnknownAndMalformed(t *testing.T) {
	fs, cfg := newFeedServer(t)

	m := NewManager(cfg, nil)
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer m.Stop()

	conn := fs.NextConn(t)

	push(t, conn, `{"type":"update","data":[`+opportunityJSON("BTC/USDT")+`]}`)
	waitForSnapshot(t, m, func(s model.Snapshot) bool {
		return len(s.Opportunities) == 1
	}, "initial update")

	// None of these may mutate the set or drop the connection.
	push(t, conn, `{"type":"ping"}`)
	push(t, conn, `this is not json`)
	push(t, conn, `{"type":"update","data":"not-a-list"}`)
	push(t, conn, `{"type":"heartbeat","data":[]}`)

	// A subsequent valid update still goes through on the same connection.
	push(t, conn, `{"type":"update","data":[`+opportunityJSON("ETH/USDT")+`,`+opportunityJSON("BNB/USDT")+`]}`)
	snap := waitForSnapshot(t, m, func(s model.Snapshot) bool {
		return len(s.Opportunities) == 2
	}, "update after junk")

	if !snap.Connected {
		t.Error("connection must stay up across malformed payloads")
	}
	if fs.Dials() != 1 {
		t.Errorf("dials = %d, want 1 (junk must not trigger reconnects)", fs.Dials())
	}
}

func TestManager_ReconnectAfterClose(t *testing.T) {
	fs, cfg := newFeedServer(t)

	m := NewManager(cfg, nil)
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer m.Stop()

	conn := fs.NextConn(t)
	push(t, conn, `{"type":"update","data":[`+opportunityJSON("BTC/USDT")+`]}`)
	waitForSnapshot(t, m, func(s model.Snapshot) bool { return s.Connected }, "connected")

	// Server drops the connection.
	conn.Close()

	waitForSnapshot(t, m, func(s model.Snapshot) bool { return !s.Connected }, "disconnected gap")

	// After the fixed delay there is exactly one new attempt.
	fs.NextConn(t)
	waitForSnapshot(t, m, func(s model.Snapshot) bool { return s.Connected }, "reconnected")

	// The new connection is stable: no extra attempts pile up.
	time.Sleep(4 * testReconnectWait)
	if got := fs.Dials(); got != 2 {
		t.Errorf("dials = %d, want exactly 2 (one reconnect per close)", got)
	}

	// The snapshot survives the reconnect until the next update.
	snap := m.Snapshot()
	if len(snap.Opportunities) != 1 {
		t.Errorf("len(opportunities) = %d, want 1", len(snap.Opportunities))
	}
}

func TestManager_StopCancelsPendingReconnect(t *testing.T) {
	fs, cfg := newFeedServer(t)

	m := NewManager(cfg, nil)
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	conn := fs.NextConn(t)
	waitForSnapshot(t, m, func(s model.Snapshot) bool { return s.Connected }, "connected")

	// Drop the connection, then stop while the reconnect timer is pending.
	conn.Close()
	waitForSnapshot(t, m, func(s model.Snapshot) bool { return !s.Connected }, "disconnected")

	if err := m.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	// No zombie attempt may fire after Stop.
	time.Sleep(4 * testReconnectWait)
	if got := fs.Dials(); got != 1 {
		t.Errorf("dials = %d, want 1 (Stop must cancel the pending retry)", got)
	}
}

func TestManager_StopSuppressesLatePush(t *testing.T) {
	fs, cfg := newFeedServer(t)

	m := NewManager(cfg, nil)
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	conn := fs.NextConn(t)
	push(t, conn, `{"type":"update","data":[`+opportunityJSON("BTC/USDT")+`]}`)
	waitForSnapshot(t, m, func(s model.Snapshot) bool {
		return len(s.Opportunities) == 1
	}, "initial update")

	if err := m.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	// A push after Stop must never mutate the opportunity set.
	conn.WriteMessage(websocket.TextMessage,
		[]byte(`{"type":"update","data":[`+opportunityJSON("ETH/USDT")+`,`+opportunityJSON("BNB/USDT")+`]}`))
	time.Sleep(2 * testReconnectWait)

	snap := m.Snapshot()
	if len(snap.Opportunities) != 1 || snap.Opportunities[0].Pair != "BTC/USDT" {
		t.Errorf("snapshot mutated after Stop: %+v", snap.Opportunities)
	}
	if snap.Connected {
		t.Error("Connected must be false after Stop")
	}
}

func TestManager_StartIdempotent(t *testing.T) {
	fs, cfg := newFeedServer(t)

	m := NewManager(cfg, nil)
	ctx := context.Background()
	if err := m.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := m.Start(ctx); err != nil {
		t.Fatalf("second Start failed: %v", err)
	}
	defer m.Stop()

	fs.NextConn(t)
	time.Sleep(2 * testReconnectWait)

	if got := fs.Dials(); got != 1 {
		t.Errorf("dials = %d, want 1 (Start while active is a no-op)", got)
	}
}

func TestManager_RetriesWhenServerUnavailable(t *testing.T) {
	// Point at a closed port: every attempt fails, and the manager keeps
	// retrying on the fixed delay without giving up.
	cfg := testManagerConfig("ws://127.0.0.1:1")

	m := NewManager(cfg, nil)
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	time.Sleep(5 * testReconnectWait)

	if m.Snapshot().Connected {
		t.Error("Connected must be false while the server is unreachable")
	}

	// Stop while an attempt/wait cycle is in flight must return promptly.
	done := make(chan struct{})
	go func() {
		m.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return while retrying")
	}
}
