package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/thenoetrevino/handla/internal/daemon"
	"github.com/thenoetrevino/handla/internal/events"
)

// GetTestSocketPath generates a unique temporary socket path for testing.
// The socket is guaranteed to not exist and will be cleaned up by test cleanup.
func GetTestSocketPath(t *testing.T) string {
	t.Helper()

	// unix socket paths are limited to ~100 bytes, t.TempDir can be longer
	dir, err := os.MkdirTemp("", "handla")
	if err != nil {
		t.Fatalf("Failed to create socket dir: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	return filepath.Join(dir, "test.sock")
}

// SetupTestDaemon creates a test daemon server on a temporary socket.
// It starts the server in a goroutine and waits for it to be ready.
// Returns the server and socket path. Cleanup is automatic via t.Cleanup().
func SetupTestDaemon(t *testing.T) (*daemon.Server, string) {
	t.Helper()

	socketPath := GetTestSocketPath(t)

	server, err := daemon.NewServer(socketPath, daemon.DefaultConfig())
	if err != nil {
		t.Fatalf("Failed to create test daemon: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := server.Start(ctx); err != nil {
			t.Logf("Server error: %v", err)
		}
	}()

	t.Cleanup(func() {
		cancel()
		if err := server.Shutdown(); err != nil {
			t.Logf("Warning: daemon shutdown error during cleanup: %v", err)
		}
		<-done
		server.Wait()
	})

	// Wait for socket to be created (max 2 seconds)
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(socketPath); err == nil {
			return server, socketPath
		}
		time.Sleep(10 * time.Millisecond)
	}

	t.Fatal("Timeout waiting for daemon socket to be created")
	return nil, ""
}

// SetupTestClient creates a test event client connected to the given socket path.
// Cleanup is automatic via t.Cleanup().
func SetupTestClient(t *testing.T, socketPath string) *events.Client {
	t.Helper()

	client := events.NewClient(socketPath)
	t.Cleanup(func() {
		if err := client.Close(); err != nil {
			t.Logf("Warning: client close error during cleanup: %v", err)
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Connect(ctx); err != nil {
		t.Fatalf("Failed to connect test client: %v", err)
	}

	return client
}

// WatchList subscribes to listID on feed and returns a channel that receives
// a value for every notification.
func WatchList(t *testing.T, feed events.ChangeFeed, listID string) <-chan struct{} {
	t.Helper()

	ch := make(chan struct{}, 16)
	unsubscribe := feed.Subscribe(listID, func() {
		select {
		case ch <- struct{}{}:
		default:
		}
	})
	t.Cleanup(unsubscribe)
	return ch
}

// WaitForChange waits for a notification on ch or fails the test.
func WaitForChange(t *testing.T, ch <-chan struct{}, timeout time.Duration) {
	t.Helper()

	select {
	case <-ch:
	case <-time.After(timeout):
		t.Fatalf("Timeout waiting for change notification after %v", timeout)
	}
}
