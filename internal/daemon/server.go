// Package daemon implements the handla event daemon: a unix socket server
// that relays list change notifications between every process working on
// the same database.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/thenoetrevino/handla/internal/events"
)

// client represents a connected client to the daemon
type client struct {
	id           int64
	conn         net.Conn
	send         chan events.Message
	subscription string     // list id, "" = every list
	lastPong     time.Time  //
	mu           sync.Mutex // Protects subscription and lastPong
	closeOnce    sync.Once  // Ensures send channel is closed only once
}

func (c *client) subscribedTo(listID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return events.Matches(c.subscription, listID)
}

// envelope is an event on its way to the broadcast loop
type envelope struct {
	event  events.Event
	origin *client // nil when raised by the daemon itself
}

// Config tunes buffer sizes and the health check cadence.
type Config struct {
	BroadcastBuffer int
	ClientBuffer    int
	PingInterval    time.Duration
	StaleAfter      time.Duration // clients silent for longer are dropped
}

// DefaultConfig reads buffer sizes from HANDLA_DAEMON_BROADCAST_BUFFER and
// HANDLA_DAEMON_CLIENT_BUFFER.
func DefaultConfig() Config {
	return Config{
		BroadcastBuffer: getEnvInt("HANDLA_DAEMON_BROADCAST_BUFFER", 100),
		ClientBuffer:    getEnvInt("HANDLA_DAEMON_CLIENT_BUFFER", 10),
		PingInterval:    30 * time.Second,
		StaleAfter:      90 * time.Second,
	}
}

// Server represents the handla event daemon
type Server struct {
	socketPath   string
	cfg          Config
	listener     net.Listener
	clients      map[*client]struct{}
	mu           sync.RWMutex
	ctx          context.Context
	cancel       context.CancelFunc
	broadcast    chan envelope
	metrics      *Metrics
	sequence     atomic.Int64
	nextClientID atomic.Int64
	shutdownOnce sync.Once
	wg           sync.WaitGroup
}

// getEnvInt reads an integer from an environment variable, returning defaultVal if not set or invalid
func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultVal
}

// NewServer creates the socket and returns a server ready to Start.
func NewServer(socketPath string, cfg Config) (*Server, error) {
	def := DefaultConfig()
	if cfg.BroadcastBuffer <= 0 {
		cfg.BroadcastBuffer = def.BroadcastBuffer
	}
	if cfg.ClientBuffer <= 0 {
		cfg.ClientBuffer = def.ClientBuffer
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = def.PingInterval
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = def.StaleAfter
	}

	if dir := filepath.Dir(socketPath); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create socket directory: %w", err)
		}
	}

	// Remove stale socket file if it exists
	if _, err := os.Stat(socketPath); err == nil {
		if err := os.Remove(socketPath); err != nil {
			return nil, fmt.Errorf("failed to remove stale socket: %w", err)
		}
	}

	lc := net.ListenConfig{}
	listener, err := lc.Listen(context.Background(), "unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create socket listener: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Server{
		socketPath: socketPath,
		cfg:        cfg,
		listener:   listener,
		clients:    make(map[*client]struct{}),
		ctx:        ctx,
		cancel:     cancel,
		broadcast:  make(chan envelope, cfg.BroadcastBuffer),
		metrics:    NewMetrics(),
	}, nil
}

// Metrics returns the live counters of the server.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Start runs the daemon until ctx is cancelled or Shutdown is called.
// It starts three main goroutines: accept, broadcast, and health monitoring
func (s *Server) Start(ctx context.Context) error {
	slog.Info("daemon starting", "socket", s.socketPath)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(s.ctx, cancel)
	defer stop()

	acceptErr := make(chan error, 1)
	s.wg.Add(3)
	go func() {
		defer s.wg.Done()
		acceptErr <- s.acceptLoop(runCtx)
	}()
	go func() {
		defer s.wg.Done()
		s.broadcastLoop(runCtx)
	}()
	go func() {
		defer s.wg.Done()
		s.monitorHealth(runCtx)
	}()

	var runErr error
	select {
	case <-runCtx.Done():
		slog.Info("daemon context cancelled, shutting down")
	case err := <-acceptErr:
		if err != nil {
			slog.Error("accept loop failed", "error", err)
			runErr = err
		}
	}

	if err := s.Shutdown(); err != nil {
		return err
	}
	return runErr
}

// acceptLoop accepts incoming client connections
func (s *Server) acceptLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		// Set a deadline so we can check for context cancellation
		if ul, ok := s.listener.(*net.UnixListener); ok {
			if err := ul.SetDeadline(time.Now().Add(1 * time.Second)); err != nil {
				slog.Debug("error setting listener deadline", "error", err)
			}
		}

		conn, err := s.listener.Accept()
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accept error: %w", err)
		}

		c := &client{
			id:       s.nextClientID.Add(1),
			conn:     conn,
			send:     make(chan events.Message, s.cfg.ClientBuffer),
			lastPong: time.Now(),
		}

		s.mu.Lock()
		if s.ctx.Err() != nil {
			// Shutdown already collected the clients
			s.mu.Unlock()
			_ = conn.Close()
			return nil
		}
		s.clients[c] = struct{}{}
		count := len(s.clients)
		s.mu.Unlock()
		s.metrics.ConnectedClients.Store(int32(count))

		slog.Debug("client connected", "client", c.id, "clients", count)

		s.wg.Add(2)
		go func() {
			defer s.wg.Done()
			s.handleClient(c)
		}()
		go func() {
			defer s.wg.Done()
			s.clientWriter(c)
		}()
	}
}

// broadcastLoop distributes events to subscribed clients
func (s *Server) broadcastLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case env := <-s.broadcast:
			event := env.event
			event.SequenceID = s.sequence.Add(1)
			if event.Timestamp.IsZero() {
				event.Timestamp = time.Now()
			}
			s.metrics.Broadcasts.Add(1)

			msg := events.Message{
				Version: events.ProtocolVersion,
				Type:    events.MsgEvent,
				Event:   &event,
			}

			s.mu.RLock()
			for c := range s.clients {
				// the writer already has its own change
				if c == env.origin || !c.subscribedTo(event.ListID) {
					continue
				}
				// Non-blocking send - if client is slow, skip
				if !s.sendToClient(c, msg) {
					slog.Warn("client send queue full, event dropped", "client", c.id, "list_id", event.ListID)
				}
			}
			s.mu.RUnlock()
		}
	}
}

// handleClient reads messages from a connected client
func (s *Server) handleClient(c *client) {
	defer func() {
		s.removeClient(c)
		slog.Debug("client disconnected", "client", c.id, "clients", s.clientCount())
	}()

	decoder := json.NewDecoder(c.conn)

	for {
		var msg events.Message
		if err := decoder.Decode(&msg); err != nil {
			return
		}

		if msg.Version != 0 && msg.Version != events.ProtocolVersion {
			slog.Warn("protocol version mismatch", "client", c.id, "got", msg.Version, "want", events.ProtocolVersion)
		}

		// any message proves the client is alive
		c.mu.Lock()
		c.lastPong = time.Now()
		c.mu.Unlock()

		switch msg.Type {
		case events.MsgEvent:
			if msg.Event == nil || msg.Event.Type != events.EventListChanged {
				continue
			}
			s.metrics.EventsReceived.Add(1)
			select {
			case s.broadcast <- envelope{event: *msg.Event, origin: c}:
			default:
				s.metrics.EventsDropped.Add(1)
				slog.Warn("broadcast channel full", "list_id", msg.Event.ListID)
			}

		case events.MsgSubscribe:
			if msg.Subscribe != nil {
				c.mu.Lock()
				c.subscription = msg.Subscribe.ListID
				c.mu.Unlock()
				slog.Debug("client subscribed", "client", c.id, "list_id", msg.Subscribe.ListID)
			}

		case events.MsgPong:
		}
	}
}

// clientWriter sends messages to a client
func (s *Server) clientWriter(c *client) {
	encoder := json.NewEncoder(c.conn)

	for msg := range c.send {
		if err := encoder.Encode(msg); err != nil {
			slog.Debug("write to client failed", "client", c.id, "error", err)
			// keep draining so senders never block on a dead client
			continue
		}
	}
}

// monitorHealth sends ping messages and removes stale clients
func (s *Server) monitorHealth(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer ticker.Stop()

	ping := events.Message{Version: events.ProtocolVersion, Type: events.MsgPing}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		now := time.Now()
		var stale []*client
		s.mu.RLock()
		for c := range s.clients {
			c.mu.Lock()
			silent := now.Sub(c.lastPong)
			c.mu.Unlock()
			if silent > s.cfg.StaleAfter {
				stale = append(stale, c)
				continue
			}
			if !s.sendToClient(c, ping) {
				slog.Debug("failed to send ping, queue full", "client", c.id)
			}
		}
		s.mu.RUnlock()

		// Remove stale clients outside of the server lock
		for _, c := range stale {
			slog.Info("removing stale client", "client", c.id)
			s.metrics.StaleRemoved.Add(1)
			s.removeClient(c)
		}
	}
}

// Broadcast announces a list change to every subscribed client (non-blocking).
func (s *Server) Broadcast(event events.Event) error {
	if s.ctx.Err() != nil {
		return events.ErrClosed
	}
	select {
	case s.broadcast <- envelope{event: event}:
		return nil
	default:
		s.metrics.EventsDropped.Add(1)
		return events.ErrQueueFull
	}
}

// Shutdown closes the listener and every client and removes the socket file.
func (s *Server) Shutdown() error {
	var err error
	s.shutdownOnce.Do(func() {
		slog.Info("shutting down daemon")

		s.cancel()

		if closeErr := s.listener.Close(); closeErr != nil && !errors.Is(closeErr, net.ErrClosed) {
			err = fmt.Errorf("closing listener: %w", closeErr)
		}

		s.mu.Lock()
		clients := make([]*client, 0, len(s.clients))
		for c := range s.clients {
			clients = append(clients, c)
		}
		s.mu.Unlock()
		for _, c := range clients {
			s.removeClient(c)
		}

		if removeErr := os.Remove(s.socketPath); removeErr != nil && !os.IsNotExist(removeErr) {
			slog.Warn("failed to remove socket file", "error", removeErr)
		}
	})
	return err
}

// Wait blocks until every goroutine started by Start has exited.
func (s *Server) Wait() {
	s.wg.Wait()
}

// Helper methods

func (s *Server) clientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// removeClient safely removes a client from the server
func (s *Server) removeClient(c *client) {
	s.mu.Lock()
	delete(s.clients, c)
	count := len(s.clients)
	c.closeOnce.Do(func() {
		if err := c.conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			slog.Debug("error closing client connection", "client", c.id, "error", err)
		}
		close(c.send)
	})
	s.mu.Unlock()

	s.metrics.ConnectedClients.Store(int32(count))
}

// sendToClient attempts to send a message to a client (non-blocking).
// Callers hold s.mu, which keeps removeClient from closing c.send meanwhile.
// Returns true if successful, false if the queue is full
func (s *Server) sendToClient(c *client, msg events.Message) bool {
	select {
	case c.send <- msg:
		s.metrics.EventsSent.Add(1)
		return true
	default:
		s.metrics.EventsDropped.Add(1)
		return false
	}
}
