package events

import (
	"errors"
	"log/slog"
	"time"
)

// PublishWithRetry attempts to publish an event with retry logic.
// It makes up to maxRetries attempts with exponential backoff and returns
// the error from the final attempt if all of them fail.
// A nil publisher is a no-op.
func PublishWithRetry(pub EventPublisher, event Event, maxRetries int) error {
	if pub == nil {
		return nil
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	var lastErr error
	baseDelay := 50 * time.Millisecond

	for attempt := 0; attempt < maxRetries; attempt++ {
		err := pub.SendEvent(event)
		if err == nil {
			if attempt > 0 {
				slog.Debug("event published after retry",
					"attempt", attempt+1,
					"event_type", event.Type,
					"list_id", event.ListID)
			}
			return nil
		}

		lastErr = err
		if errors.Is(err, ErrClosed) {
			break
		}

		// Don't sleep after the last attempt
		if attempt < maxRetries-1 {
			// 50ms, 100ms, 200ms
			delay := baseDelay * (1 << attempt)
			slog.Debug("event publish failed, retrying",
				"attempt", attempt+1,
				"max_retries", maxRetries,
				"retry_delay", delay,
				"error", err)
			time.Sleep(delay)
		}
	}

	slog.Warn("event publish failed after all retries",
		"attempts", maxRetries,
		"event_type", event.Type,
		"list_id", event.ListID,
		"error", lastErr)

	return lastErr
}

// ListChanged builds the notification for a write to listID.
func ListChanged(listID string) Event {
	return Event{Type: EventListChanged, ListID: listID, Timestamp: time.Now()}
}
