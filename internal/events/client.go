package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Client is a connection to the handla daemon. It batches outgoing change
// events, dispatches incoming ones to list subscribers, answers pings and
// reconnects with exponential backoff when the daemon goes away.
type Client struct {
	socketPath string
	conn       net.Conn
	encoder    *json.Encoder
	decoder    *json.Decoder
	mu         sync.Mutex

	// Batching configuration
	eventQueue chan Event
	debounce   time.Duration

	// Reconnection configuration
	maxRetries int
	baseDelay  time.Duration

	subs         *registry
	lastSequence int64

	closed  bool
	started bool

	// Context for graceful shutdown
	ctx    context.Context
	cancel context.CancelFunc

	batcherDone chan struct{}
	listenDone  chan struct{}
}

// NewClient creates a new event client but does not connect.
// The debounce window defaults to 100ms and can be tuned with
// HANDLA_EVENT_DEBOUNCE_MS.
func NewClient(socketPath string) *Client {
	debounceMs := 100
	if envVal := os.Getenv("HANDLA_EVENT_DEBOUNCE_MS"); envVal != "" {
		if parsed, err := strconv.Atoi(envVal); err == nil && parsed > 0 {
			debounceMs = parsed
		}
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		socketPath:  socketPath,
		eventQueue:  make(chan Event, 100),
		debounce:    time.Duration(debounceMs) * time.Millisecond,
		maxRetries:  5,
		baseDelay:   1 * time.Second,
		subs:        newRegistry(),
		ctx:         ctx,
		cancel:      cancel,
		batcherDone: make(chan struct{}),
		listenDone:  make(chan struct{}),
	}
}

// Connect dials the daemon and starts the batching and listening goroutines.
func (c *Client) Connect(ctx context.Context) error {
	if err := c.dial(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	start := !c.started
	c.started = true
	c.mu.Unlock()

	if start {
		go c.runBatcher()
		go c.listenLoop()
	}
	return nil
}

// dial opens the socket and announces the current subscription.
func (c *Client) dial(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	dialer := net.Dialer{}
	conn, err := dialer.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return fmt.Errorf("failed to dial daemon socket: %w", err)
	}

	c.conn = conn
	c.encoder = json.NewEncoder(conn)
	c.decoder = json.NewDecoder(conn)
	// a restarted daemon counts from zero again
	c.lastSequence = 0

	if err := c.encoder.Encode(c.subscriptionLocked()); err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			slog.Debug("error closing connection", "error", closeErr)
		}
		c.conn = nil
		return fmt.Errorf("failed to send subscription: %w", err)
	}
	return nil
}

// subscriptionLocked narrows the daemon subscription to a single list when
// only one list is watched; otherwise it asks for everything and filters
// locally.
func (c *Client) subscriptionLocked() Message {
	listID := ""
	if lists := c.subs.lists(); len(lists) == 1 {
		listID = lists[0]
	}
	return Message{
		Version:   ProtocolVersion,
		Type:      MsgSubscribe,
		Subscribe: &SubscribeMessage{ListID: listID},
	}
}

func (c *Client) resubscribe() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return
	}
	if err := c.encoder.Encode(c.subscriptionLocked()); err != nil && !isConnectionError(err) {
		slog.Warn("failed to update daemon subscription", "error", err)
	}
}

// SendEvent queues an event to be sent to the daemon.
// Events are batched and sent in bursts within the debounce window.
func (c *Client) SendEvent(event Event) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return ErrClosed
	}

	select {
	case c.eventQueue <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

// runBatcher collects queued events and sends one event per changed list
// every debounce tick.
func (c *Client) runBatcher() {
	defer close(c.batcherDone)

	ticker := time.NewTicker(c.debounce)
	defer ticker.Stop()

	pending := make(map[string]struct{})

	flushPending := func() {
		for listID := range pending {
			if err := c.sendToSocket(Message{
				Type:  MsgEvent,
				Event: &Event{Type: EventListChanged, ListID: listID, Timestamp: time.Now()},
			}); err != nil && !isConnectionError(err) {
				slog.Warn("failed to send batched event", "list_id", listID, "error", err)
			}
		}
		clear(pending)
	}

	for {
		select {
		case <-c.ctx.Done():
			// drain what is already queued, then flush
			for {
				select {
				case event := <-c.eventQueue:
					pending[event.ListID] = struct{}{}
					continue
				default:
				}
				break
			}
			flushPending()
			return

		case event := <-c.eventQueue:
			if event.Type == EventListChanged {
				pending[event.ListID] = struct{}{}
			}

		case <-ticker.C:
			flushPending()
		}
	}
}

// sendToSocket writes one message to the daemon.
func (c *Client) sendToSocket(msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return ErrNotConnected
	}

	// Short write deadline to detect dead connections
	if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
		return fmt.Errorf("connection error: %w", err)
	}

	msg.Version = ProtocolVersion
	return c.encoder.Encode(msg)
}

// listenLoop reads from the daemon and reconnects when the connection drops.
func (c *Client) listenLoop() {
	defer close(c.listenDone)

	for {
		err := c.readEvents()
		if c.ctx.Err() != nil {
			return
		}
		slog.Warn("daemon connection lost, reconnecting", "error", err)

		if !c.reconnect() {
			if c.ctx.Err() == nil {
				slog.Error("failed to reconnect to daemon, giving up", "attempts", c.maxRetries)
			}
			return
		}
		slog.Info("reconnected to daemon")
		// changes may have been missed while disconnected
		c.subs.dispatch("")
	}
}

// readEvents decodes messages until the connection fails.
func (c *Client) readEvents() error {
	for {
		var msg Message

		c.mu.Lock()
		if c.conn == nil {
			c.mu.Unlock()
			return errors.New("connection closed")
		}
		// The daemon pings every 30 seconds
		if err := c.conn.SetReadDeadline(time.Now().Add(60 * time.Second)); err != nil {
			c.mu.Unlock()
			return fmt.Errorf("failed to set read deadline: %w", err)
		}
		decoder := c.decoder
		c.mu.Unlock()

		if err := decoder.Decode(&msg); err != nil {
			return fmt.Errorf("failed to decode message: %w", err)
		}

		switch msg.Type {
		case MsgEvent:
			if msg.Event == nil || msg.Event.Type != EventListChanged {
				continue
			}
			// basic duplicate detection
			if msg.Event.SequenceID != 0 && msg.Event.SequenceID <= c.lastSequence {
				continue
			}
			c.lastSequence = msg.Event.SequenceID
			c.subs.dispatch(msg.Event.ListID)

		case MsgPing:
			if err := c.sendToSocket(Message{Type: MsgPong}); err != nil && !isConnectionError(err) {
				slog.Warn("failed to send pong", "error", err)
			}
		}
	}
}

// isConnectionError checks if an error is a network connection error
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, net.ErrClosed) || errors.Is(err, ErrNotConnected) {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "broken pipe") ||
		strings.Contains(errStr, "connection reset")
}

// reconnect retries the connection with exponential backoff: 1s, 2s, 4s, 8s, 16s.
func (c *Client) reconnect() bool {
	delay := c.baseDelay

	for i := 0; i < c.maxRetries; i++ {
		select {
		case <-c.ctx.Done():
			return false
		case <-time.After(delay):
			c.mu.Lock()
			if c.conn != nil {
				if err := c.conn.Close(); err != nil && !isConnectionError(err) {
					slog.Debug("error closing connection during reconnect", "error", err)
				}
				c.conn = nil
			}
			c.mu.Unlock()

			if err := c.dial(c.ctx); err == nil {
				slog.Debug("reconnected to daemon", "attempt", i+1, "max_retries", c.maxRetries)
				return true
			} else if errors.Is(err, ErrClosed) {
				return false
			}

			slog.Debug("reconnection attempt failed", "attempt", i+1, "max_retries", c.maxRetries, "retry_in", delay)
			delay *= 2
		}
	}

	return false
}

// Subscribe registers onChange for notifications about listID.
func (c *Client) Subscribe(listID string, onChange func()) func() {
	id := c.subs.add(listID, onChange)
	c.resubscribe()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.subs.remove(listID, id)
			c.resubscribe()
		})
	}
}

// Close flushes pending events, closes the connection and stops all goroutines.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	started := c.started
	c.mu.Unlock()

	c.cancel()

	// the batcher flushes over the still open connection
	if started {
		<-c.batcherDone
	}

	c.mu.Lock()
	var err error
	if c.conn != nil {
		err = c.conn.Close()
		c.conn = nil
	}
	c.mu.Unlock()

	if started {
		<-c.listenDone
	}
	return err
}
