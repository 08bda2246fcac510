package daemon

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics(t *testing.T) {
	m := NewMetrics()

	snap := m.Snapshot()
	assert.Zero(t, snap.EventsReceived)
	assert.Zero(t, snap.EventsSent)
	assert.Zero(t, snap.EventsDropped)
	assert.Zero(t, snap.Broadcasts)
	assert.Zero(t, snap.StaleRemoved)
	assert.Zero(t, snap.ConnectedClients)
	assert.WithinDuration(t, time.Now(), m.StartTime, time.Second)
}

func TestMetricsSnapshot_IsImmutable(t *testing.T) {
	m := NewMetrics()
	m.EventsSent.Add(3)
	m.ConnectedClients.Store(2)

	snap := m.Snapshot()
	m.EventsSent.Add(10)
	m.ConnectedClients.Store(0)

	assert.Equal(t, int64(3), snap.EventsSent)
	assert.Equal(t, int32(2), snap.ConnectedClients)
	assert.Equal(t, int64(13), m.Snapshot().EventsSent)
}

func TestMetricsSnapshot_JSON(t *testing.T) {
	m := NewMetrics()
	m.Broadcasts.Add(4)
	m.StaleRemoved.Add(1)

	data, err := json.Marshal(m.Snapshot())
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.EqualValues(t, 4, got["broadcasts"])
	assert.EqualValues(t, 1, got["stale_removed"])
	assert.Equal(t, "0s", got["uptime"])
	assert.Contains(t, got, "start_time")
}

func TestMetricsSnapshot_LogAttrs(t *testing.T) {
	m := NewMetrics()
	m.EventsDropped.Add(2)

	attrs := m.Snapshot().LogAttrs()
	require.Len(t, attrs, 14)

	byKey := make(map[string]any)
	for i := 0; i < len(attrs); i += 2 {
		key, ok := attrs[i].(string)
		require.True(t, ok, "key at %d", i)
		byKey[key] = attrs[i+1]
	}
	assert.Equal(t, int64(2), byKey["events_dropped"])
	assert.Contains(t, byKey, "connected_clients")
}

func TestMetricsConcurrency(t *testing.T) {
	m := NewMetrics()

	const goroutines = 20
	const perGoroutine = 500

	var wg sync.WaitGroup
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perGoroutine {
				m.EventsSent.Add(1)
				m.EventsReceived.Add(1)
				m.Broadcasts.Add(1)
				_ = m.Snapshot()
			}
		}()
	}
	wg.Wait()

	snap := m.Snapshot()
	assert.Equal(t, int64(goroutines*perGoroutine), snap.EventsSent)
	assert.Equal(t, int64(goroutines*perGoroutine), snap.EventsReceived)
	assert.Equal(t, int64(goroutines*perGoroutine), snap.Broadcasts)
}
