package events

import "time"

// ProtocolVersion is carried by every message on the daemon socket.
const ProtocolVersion = 1

// EventType indicates what kind of change occurred
type EventType string

const (
	EventListChanged EventType = "list_changed"
	EventPing        EventType = "ping"
	EventPong        EventType = "pong"
)

// Message types on the daemon socket
const (
	MsgEvent     = "event"
	MsgSubscribe = "subscribe"
	MsgPing      = "ping"
	MsgPong      = "pong"
)

// Event is a change notification. It carries no payload beyond the list id:
// receivers refetch the list.
type Event struct {
	Type       EventType `json:"type"`
	ListID     string    `json:"list_id,omitempty"` // Empty means every list
	Timestamp  time.Time `json:"timestamp"`
	SequenceID int64     `json:"sequence_id,omitempty"` // Assigned by the daemon, monotonically increasing
}

// SubscribeMessage is sent by clients to choose which list they hear about
type SubscribeMessage struct {
	ListID string `json:"list_id"` // "" = all lists
}

// Message wraps events and control messages for the wire protocol
type Message struct {
	Version   int               `json:"version,omitempty"`
	Type      string            `json:"type"` // "event", "subscribe", "ping", "pong"
	Event     *Event            `json:"event,omitempty"`
	Subscribe *SubscribeMessage `json:"subscribe,omitempty"`
}

// Matches reports whether an event for eventList should reach a subscriber
// of subscribedList. Empty ids on either side match everything.
func Matches(subscribedList, eventList string) bool {
	return subscribedList == "" || eventList == "" || subscribedList == eventList
}
