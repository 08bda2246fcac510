package events

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHub_DeliversPerList(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	var a, b, all atomic.Int32

	unsubA := hub.Subscribe("a", func() { a.Add(1) })
	hub.Subscribe("b", func() { b.Add(1) })
	hub.Subscribe("", func() { all.Add(1) })

	assert.NoError(t, hub.SendEvent(ListChanged("a")))
	assert.NoError(t, hub.SendEvent(ListChanged("a")))
	assert.NoError(t, hub.SendEvent(ListChanged("b")))
	assert.NoError(t, hub.SendEvent(Event{Type: EventPing, ListID: "a"}))

	assert.Equal(t, int32(2), a.Load())
	assert.Equal(t, int32(1), b.Load())
	assert.Equal(t, int32(3), all.Load())

	unsubA()
	unsubA() // second call is harmless
	assert.NoError(t, hub.SendEvent(ListChanged("a")))
	assert.Equal(t, int32(2), a.Load())
	assert.Equal(t, int32(4), all.Load())
}

func TestHub_Closed(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	var calls atomic.Int32
	hub.Subscribe("a", func() { calls.Add(1) })

	assert.NoError(t, hub.Close())
	err := hub.SendEvent(ListChanged("a"))
	assert.True(t, errors.Is(err, ErrClosed))
	assert.Zero(t, calls.Load())
}
