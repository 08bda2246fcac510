package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thenoetrevino/handla/internal/events"
)

// ============================================================================
// TEST HELPERS
// ============================================================================

func getTestSocketPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "test-handla.sock")
}

func setupTestDaemon(t *testing.T, cfg Config) (*Server, string) {
	t.Helper()
	socketPath := getTestSocketPath(t)

	server, err := NewServer(socketPath, cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = server.Start(ctx)
	}()

	t.Cleanup(func() {
		cancel()
		_ = server.Shutdown()
		<-done
		server.Wait()
	})

	return server, socketPath
}

func connectRawClient(t *testing.T, socketPath string) (net.Conn, *json.Encoder, *json.Decoder) {
	t.Helper()

	conn, err := (&net.Dialer{}).DialContext(context.Background(), "unix", socketPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn, json.NewEncoder(conn), json.NewDecoder(conn)
}

func sendSubscribeMessage(t *testing.T, encoder *json.Encoder, listID string) {
	t.Helper()
	msg := events.Message{
		Version:   events.ProtocolVersion,
		Type:      events.MsgSubscribe,
		Subscribe: &events.SubscribeMessage{ListID: listID},
	}
	require.NoError(t, encoder.Encode(msg))
}

// waitForSubscribers blocks until n connected clients are subscribed to listID.
func waitForSubscribers(t *testing.T, s *Server, listID string, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		s.mu.RLock()
		defer s.mu.RUnlock()
		count := 0
		for c := range s.clients {
			c.mu.Lock()
			if c.subscription == listID {
				count++
			}
			c.mu.Unlock()
		}
		return count == n
	}, 2*time.Second, 5*time.Millisecond)
}

// readEvent returns the next event message, skipping pings.
func readEvent(t *testing.T, conn net.Conn, dec *json.Decoder) events.Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var msg events.Message
		require.NoError(t, dec.Decode(&msg))
		if msg.Type == events.MsgEvent {
			require.NotNil(t, msg.Event)
			return *msg.Event
		}
	}
}

// expectNoEvent fails if an event arrives within wait.
func expectNoEvent(t *testing.T, conn net.Conn, dec *json.Decoder, wait time.Duration) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(wait)))
	for {
		var msg events.Message
		err := dec.Decode(&msg)
		if err != nil {
			var netErr net.Error
			require.True(t, errors.As(err, &netErr) && netErr.Timeout(), "unexpected error: %v", err)
			return
		}
		if msg.Type == events.MsgEvent {
			t.Fatalf("unexpected event: %+v", msg.Event)
		}
	}
}

func sendListChanged(t *testing.T, enc *json.Encoder, listID string) {
	t.Helper()
	ev := events.ListChanged(listID)
	require.NoError(t, enc.Encode(events.Message{
		Version: events.ProtocolVersion,
		Type:    events.MsgEvent,
		Event:   &ev,
	}))
}

// ============================================================================
// SERVER LIFECYCLE
// ============================================================================

func TestNewServer_CreatesSocket(t *testing.T) {
	server, socketPath := setupTestDaemon(t, Config{})

	_, err := os.Stat(socketPath)
	require.NoError(t, err)
	assert.Equal(t, socketPath, server.SocketPath())
	assert.Equal(t, 100, server.cfg.BroadcastBuffer)
	assert.Equal(t, 10, server.cfg.ClientBuffer)
	assert.Equal(t, 30*time.Second, server.cfg.PingInterval)
	assert.Equal(t, 90*time.Second, server.cfg.StaleAfter)
}

func TestNewServer_DirectoryCreation(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "nested", "dir", "handla.sock")

	server, err := NewServer(socketPath, Config{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = server.Shutdown() })

	info, err := os.Stat(filepath.Dir(socketPath))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestNewServer_StaleSocketCleanup(t *testing.T) {
	socketPath := getTestSocketPath(t)
	require.NoError(t, os.WriteFile(socketPath, []byte("stale"), 0o600))

	server, err := NewServer(socketPath, Config{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = server.Shutdown() })

	info, err := os.Stat(socketPath)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&os.ModeSocket, "stale file replaced by socket")
}

func TestDefaultConfig_EnvOverrides(t *testing.T) {
	t.Setenv("HANDLA_DAEMON_BROADCAST_BUFFER", "250")
	t.Setenv("HANDLA_DAEMON_CLIENT_BUFFER", "not-a-number")

	cfg := DefaultConfig()
	assert.Equal(t, 250, cfg.BroadcastBuffer)
	assert.Equal(t, 10, cfg.ClientBuffer)
}

func TestShutdown_RemovesSocketAndIsIdempotent(t *testing.T) {
	server, socketPath := setupTestDaemon(t, Config{})
	conn, _, dec := connectRawClient(t, socketPath)
	require.Eventually(t, func() bool { return server.clientCount() == 1 }, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, server.Shutdown())
	require.NoError(t, server.Shutdown())

	_, err := os.Stat(socketPath)
	assert.True(t, os.IsNotExist(err))

	// the client sees its connection closed
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg events.Message
	assert.Error(t, dec.Decode(&msg))

	assert.ErrorIs(t, server.Broadcast(events.ListChanged("a")), events.ErrClosed)
	assert.Equal(t, 0, server.clientCount())
}

func TestStart_StopsOnContextCancel(t *testing.T) {
	server, err := NewServer(getTestSocketPath(t), Config{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Start(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Start did not return after cancel")
	}
	server.Wait()
}

// ============================================================================
// CLIENTS
// ============================================================================

func TestClientConnection_CountsAndDisconnects(t *testing.T) {
	server, socketPath := setupTestDaemon(t, Config{})

	c1, _, _ := connectRawClient(t, socketPath)
	connectRawClient(t, socketPath)
	require.Eventually(t, func() bool {
		return server.Metrics().ConnectedClients.Load() == 2
	}, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, c1.Close())
	require.Eventually(t, func() bool {
		return server.clientCount() == 1 && server.Metrics().ConnectedClients.Load() == 1
	}, 2*time.Second, 5*time.Millisecond)
}

// ============================================================================
// BROADCAST
// ============================================================================

func TestBroadcast_SubscriptionFiltering(t *testing.T) {
	server, socketPath := setupTestDaemon(t, Config{})

	connA, encA, decA := connectRawClient(t, socketPath)
	connB, encB, decB := connectRawClient(t, socketPath)
	connAll, _, decAll := connectRawClient(t, socketPath)
	sendSubscribeMessage(t, encA, "list-a")
	sendSubscribeMessage(t, encB, "list-b")
	waitForSubscribers(t, server, "list-a", 1)
	waitForSubscribers(t, server, "list-b", 1)
	waitForSubscribers(t, server, "", 1)

	require.NoError(t, server.Broadcast(events.ListChanged("list-a")))

	got := readEvent(t, connA, decA)
	assert.Equal(t, "list-a", got.ListID)
	assert.Equal(t, events.EventListChanged, got.Type)

	got = readEvent(t, connAll, decAll)
	assert.Equal(t, "list-a", got.ListID)

	expectNoEvent(t, connB, decB, 100*time.Millisecond)
}

func TestBroadcast_NoEchoToSender(t *testing.T) {
	server, socketPath := setupTestDaemon(t, Config{})

	sender, encS, decS := connectRawClient(t, socketPath)
	peer, encP, decP := connectRawClient(t, socketPath)
	sendSubscribeMessage(t, encS, "list-a")
	sendSubscribeMessage(t, encP, "list-a")
	waitForSubscribers(t, server, "list-a", 2)

	sendListChanged(t, encS, "list-a")

	got := readEvent(t, peer, decP)
	assert.Equal(t, "list-a", got.ListID)
	assert.NotZero(t, got.SequenceID)
	expectNoEvent(t, sender, decS, 100*time.Millisecond)

	snap := server.Metrics().Snapshot()
	assert.Equal(t, int64(1), snap.EventsReceived)
	assert.Equal(t, int64(1), snap.Broadcasts)
}

func TestBroadcast_IgnoresNonListEvents(t *testing.T) {
	server, socketPath := setupTestDaemon(t, Config{})

	_, encS, _ := connectRawClient(t, socketPath)
	peer, encP, decP := connectRawClient(t, socketPath)
	sendSubscribeMessage(t, encP, "")
	sendSubscribeMessage(t, encS, "list-a")
	waitForSubscribers(t, server, "list-a", 1)

	require.NoError(t, encS.Encode(events.Message{
		Version: events.ProtocolVersion,
		Type:    events.MsgEvent,
		Event:   &events.Event{Type: events.EventPing, ListID: "list-a"},
	}))
	require.NoError(t, encS.Encode(events.Message{Version: events.ProtocolVersion, Type: events.MsgEvent}))

	expectNoEvent(t, peer, decP, 100*time.Millisecond)
	assert.Zero(t, server.Metrics().EventsReceived.Load())
}

func TestBroadcast_SequenceNumbersIncrease(t *testing.T) {
	server, socketPath := setupTestDaemon(t, Config{})

	conn, enc, dec := connectRawClient(t, socketPath)
	sendSubscribeMessage(t, enc, "")
	waitForSubscribers(t, server, "", 1)

	for range 5 {
		require.NoError(t, server.Broadcast(events.ListChanged("list-a")))
	}

	var last int64
	for range 5 {
		got := readEvent(t, conn, dec)
		assert.Greater(t, got.SequenceID, last)
		assert.False(t, got.Timestamp.IsZero())
		last = got.SequenceID
	}
}

func TestBroadcast_QueueFull(t *testing.T) {
	server, err := NewServer(getTestSocketPath(t), Config{BroadcastBuffer: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = server.Shutdown() })

	// not started, so nothing drains the channel
	require.NoError(t, server.Broadcast(events.ListChanged("a")))
	assert.ErrorIs(t, server.Broadcast(events.ListChanged("a")), events.ErrQueueFull)
	assert.Equal(t, int64(1), server.Metrics().EventsDropped.Load())
}

// ============================================================================
// HEALTH
// ============================================================================

func TestHealth_PingsClients(t *testing.T) {
	_, socketPath := setupTestDaemon(t, Config{PingInterval: 20 * time.Millisecond, StaleAfter: time.Minute})

	conn, _, dec := connectRawClient(t, socketPath)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var msg events.Message
	require.NoError(t, dec.Decode(&msg))
	assert.Equal(t, events.MsgPing, msg.Type)
	assert.Nil(t, msg.Event)
}

func TestHealth_RemovesStaleClients(t *testing.T) {
	server, socketPath := setupTestDaemon(t, Config{PingInterval: 20 * time.Millisecond, StaleAfter: 50 * time.Millisecond})

	// never answers
	connectRawClient(t, socketPath)
	require.Eventually(t, func() bool { return server.clientCount() == 1 }, 2*time.Second, 5*time.Millisecond)

	require.Eventually(t, func() bool {
		return server.clientCount() == 0 && server.Metrics().StaleRemoved.Load() == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHealth_KeepsRespondingClients(t *testing.T) {
	server, socketPath := setupTestDaemon(t, Config{PingInterval: 20 * time.Millisecond, StaleAfter: 100 * time.Millisecond})

	client := events.NewClient(socketPath)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Connect(context.Background()))

	require.Eventually(t, func() bool { return server.clientCount() == 1 }, 2*time.Second, 5*time.Millisecond)
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, 1, server.clientCount())
	assert.Zero(t, server.Metrics().StaleRemoved.Load())
}

// ============================================================================
// END TO END
// ============================================================================

func TestEventClients_RelayThroughDaemon(t *testing.T) {
	t.Setenv("HANDLA_EVENT_DEBOUNCE_MS", "10")
	server, socketPath := setupTestDaemon(t, Config{})

	writer := events.NewClient(socketPath)
	reader := events.NewClient(socketPath)
	t.Cleanup(func() {
		_ = writer.Close()
		_ = reader.Close()
	})

	var writerSeen, readerSeen atomic.Int32
	writer.Subscribe("list-a", func() { writerSeen.Add(1) })
	reader.Subscribe("list-a", func() { readerSeen.Add(1) })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, writer.Connect(ctx))
	require.NoError(t, reader.Connect(ctx))
	waitForSubscribers(t, server, "list-a", 2)

	require.NoError(t, writer.SendEvent(events.ListChanged("list-a")))

	require.Eventually(t, func() bool { return readerSeen.Load() == 1 }, 2*time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, writerSeen.Load())
}
