package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ChannelPrefix namespaces the redis channels of list notifications.
const ChannelPrefix = "handla:list:"

// Channel returns the redis channel carrying notifications for listID.
func Channel(listID string) string {
	return ChannelPrefix + listID
}

// RedisFeed carries list change notifications over redis pub/sub, so that
// processes on different machines sharing one database see each other's
// writes. It does not own the redis client.
type RedisFeed struct {
	rdb     *redis.Client
	timeout time.Duration

	mu     sync.Mutex
	closed bool
	subs   map[*redis.PubSub]struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRedisFeed wraps an existing redis client.
func NewRedisFeed(rdb *redis.Client) *RedisFeed {
	ctx, cancel := context.WithCancel(context.Background())
	return &RedisFeed{
		rdb:     rdb,
		timeout: 2 * time.Second,
		subs:    make(map[*redis.PubSub]struct{}),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// SendEvent publishes the event as JSON on the list's channel.
func (f *RedisFeed) SendEvent(event Event) error {
	f.mu.Lock()
	closed := f.closed
	f.mu.Unlock()
	if closed {
		return ErrClosed
	}
	if event.Type != EventListChanged {
		return nil
	}
	if event.ListID == "" {
		return fmt.Errorf("redis feed: event without list id")
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	ctx, cancel := context.WithTimeout(f.ctx, f.timeout)
	defer cancel()
	if err := f.rdb.Publish(ctx, Channel(event.ListID), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Subscribe listens on the list's channel, or on every list channel when
// listID is empty. It returns once redis has confirmed the subscription.
func (f *RedisFeed) Subscribe(listID string, onChange func()) func() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return func() {}
	}

	var ps *redis.PubSub
	if listID == "" {
		ps = f.rdb.PSubscribe(f.ctx, ChannelPrefix+"*")
	} else {
		ps = f.rdb.Subscribe(f.ctx, Channel(listID))
	}
	f.subs[ps] = struct{}{}
	f.mu.Unlock()

	ctx, cancel := context.WithTimeout(f.ctx, f.timeout)
	if _, err := ps.Receive(ctx); err != nil {
		slog.Warn("redis subscription not confirmed", "list_id", listID, "error", err)
	}
	cancel()

	ch := ps.Channel()
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		for msg := range ch {
			if !strings.HasPrefix(msg.Channel, ChannelPrefix) {
				continue
			}
			onChange()
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, ps)
			f.mu.Unlock()
			if err := ps.Close(); err != nil {
				slog.Debug("closing redis subscription", "list_id", listID, "error", err)
			}
		})
	}
}

// Close ends every subscription and waits for their goroutines.
func (f *RedisFeed) Close() error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	f.closed = true
	subs := make([]*redis.PubSub, 0, len(f.subs))
	for ps := range f.subs {
		subs = append(subs, ps)
	}
	f.subs = nil
	f.mu.Unlock()

	f.cancel()
	var firstErr error
	for _, ps := range subs {
		if err := ps.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	f.wg.Wait()
	return firstErr
}
