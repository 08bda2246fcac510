package events

// EventPublisher sends change notifications for lists.
type EventPublisher interface {
	SendEvent(event Event) error
}

// ChangeFeed delivers "refetch now" callbacks for a list. An empty list id
// subscribes to every list. Callbacks run on the feed's goroutine and must
// not block. The returned function unsubscribes and is safe to call twice.
type ChangeFeed interface {
	Subscribe(listID string, onChange func()) (unsubscribe func())
}

// Bus is both ends of a change notification transport.
type Bus interface {
	EventPublisher
	ChangeFeed
	Close() error
}

// Compile-time verification that every transport implements Bus
var (
	_ Bus = (*Client)(nil)
	_ Bus = (*Hub)(nil)
	_ Bus = (*RedisFeed)(nil)
)
