package events

import (
	"errors"
	"testing"
)

// mockRetryPublisher fails a configurable number of times before succeeding
type mockRetryPublisher struct {
	sendAttempts int
	failUntil    int // Fail until this attempt number (0-indexed)
	failWith     error
	lastEvent    Event
}

func (m *mockRetryPublisher) SendEvent(event Event) error {
	m.lastEvent = event
	currentAttempt := m.sendAttempts
	m.sendAttempts++

	if currentAttempt < m.failUntil {
		if m.failWith != nil {
			return m.failWith
		}
		return errors.New("simulated send failure")
	}
	return nil
}

func TestPublishWithRetry_Success(t *testing.T) {
	mock := &mockRetryPublisher{}

	err := PublishWithRetry(mock, Event{Type: EventListChanged, ListID: "abc"}, 3)
	if err != nil {
		t.Errorf("Expected success, got error: %v", err)
	}
	if mock.sendAttempts != 1 {
		t.Errorf("Expected 1 attempt, got %d", mock.sendAttempts)
	}
	if mock.lastEvent.ListID != "abc" {
		t.Errorf("Expected list id abc, got %s", mock.lastEvent.ListID)
	}
	if mock.lastEvent.Timestamp.IsZero() {
		t.Error("Expected timestamp to be filled in")
	}
}

func TestPublishWithRetry_SuccessAfterRetries(t *testing.T) {
	mock := &mockRetryPublisher{failUntil: 2}

	err := PublishWithRetry(mock, ListChanged("abc"), 3)
	if err != nil {
		t.Errorf("Expected success after retries, got error: %v", err)
	}
	if mock.sendAttempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", mock.sendAttempts)
	}
}

func TestPublishWithRetry_AllRetriesFail(t *testing.T) {
	mock := &mockRetryPublisher{failUntil: 10}

	err := PublishWithRetry(mock, ListChanged("abc"), 3)
	if err == nil {
		t.Error("Expected error after all retries failed")
	}
	if mock.sendAttempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", mock.sendAttempts)
	}
}

func TestPublishWithRetry_ClosedStopsEarly(t *testing.T) {
	mock := &mockRetryPublisher{failUntil: 10, failWith: ErrClosed}

	err := PublishWithRetry(mock, ListChanged("abc"), 3)
	if !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed, got %v", err)
	}
	if mock.sendAttempts != 1 {
		t.Errorf("Expected a single attempt, got %d", mock.sendAttempts)
	}
}

func TestPublishWithRetry_NilPublisher(t *testing.T) {
	if err := PublishWithRetry(nil, ListChanged("abc"), 3); err != nil {
		t.Errorf("Expected nil publisher to be a no-op, got %v", err)
	}
}
