package daemon

import (
	"sync/atomic"
	"time"
)

// Metrics tracks daemon statistics using atomic operations for thread-safety
type Metrics struct {
	EventsReceived   atomic.Int64 // list changes announced by clients
	EventsSent       atomic.Int64 // messages queued to clients, pings included
	EventsDropped    atomic.Int64 // messages skipped because a queue was full
	Broadcasts       atomic.Int64
	StaleRemoved     atomic.Int64
	ConnectedClients atomic.Int32
	StartTime        time.Time
}

// NewMetrics creates a new Metrics instance
func NewMetrics() *Metrics {
	return &Metrics{
		StartTime: time.Now(),
	}
}

// MetricsSnapshot represents a point-in-time snapshot of metrics
type MetricsSnapshot struct {
	EventsReceived   int64     `json:"events_received"`
	EventsSent       int64     `json:"events_sent"`
	EventsDropped    int64     `json:"events_dropped"`
	Broadcasts       int64     `json:"broadcasts"`
	StaleRemoved     int64     `json:"stale_removed"`
	ConnectedClients int32     `json:"connected_clients"`
	StartTime        time.Time `json:"start_time"`
	Uptime           string    `json:"uptime"`
}

// Snapshot returns the current counter values
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		EventsReceived:   m.EventsReceived.Load(),
		EventsSent:       m.EventsSent.Load(),
		EventsDropped:    m.EventsDropped.Load(),
		Broadcasts:       m.Broadcasts.Load(),
		StaleRemoved:     m.StaleRemoved.Load(),
		ConnectedClients: m.ConnectedClients.Load(),
		StartTime:        m.StartTime,
		Uptime:           time.Since(m.StartTime).Round(time.Second).String(),
	}
}

// LogAttrs returns the snapshot as slog key/value pairs.
func (s MetricsSnapshot) LogAttrs() []any {
	return []any{
		"events_received", s.EventsReceived,
		"events_sent", s.EventsSent,
		"events_dropped", s.EventsDropped,
		"broadcasts", s.Broadcasts,
		"stale_removed", s.StaleRemoved,
		"connected_clients", s.ConnectedClients,
		"uptime", s.Uptime,
	}
}
