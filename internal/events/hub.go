package events

import (
	"sync"
	"sync/atomic"
)

// Hub is an in-process change feed. Every event sent through it reaches the
// callbacks subscribed to the event's list, synchronously.
type Hub struct {
	subs   *registry
	closed atomic.Bool
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: newRegistry()}
}

// SendEvent delivers a list change to the matching subscribers.
func (h *Hub) SendEvent(event Event) error {
	if h.closed.Load() {
		return ErrClosed
	}
	if event.Type != EventListChanged {
		return nil
	}
	h.subs.dispatch(event.ListID)
	return nil
}

// Subscribe registers onChange for listID.
func (h *Hub) Subscribe(listID string, onChange func()) func() {
	id := h.subs.add(listID, onChange)
	var once sync.Once
	return func() {
		once.Do(func() { h.subs.remove(listID, id) })
	}
}

// Close stops delivery. Later sends fail with ErrClosed.
func (h *Hub) Close() error {
	h.closed.Store(true)
	return nil
}
