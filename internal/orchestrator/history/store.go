// Package history keeps recent cycle outcomes in memory and fans them out to subscribers
package history

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind describes what a cycle did.
type Kind string

const (
	KindSent       Kind = "sent"
	KindRestHour   Kind = "rest_hour"
	KindSendFailed Kind = "send_failed"
	KindOnDemand   Kind = "on_demand"
)

// Event is one recorded cycle outcome.
type Event struct {
	ID      string    `json:"id"`
	Time    time.Time `json:"time"`
	Kind    Kind      `json:"kind"`
	Message string    `json:"message,omitempty"`
	Error   string    `json:"error,omitempty"`
}

// Store is a bounded in-memory event log.
type Store struct {
	mu       sync.RWMutex
	entries  []Event
	maxSize  int
	eventsCh chan Event
}

// NewStore creates a store keeping at most maxEntries events.
func NewStore(maxEntries, eventBuffer int) *Store {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Store{
		entries:  make([]Event, 0, maxEntries),
		maxSize:  maxEntries,
		eventsCh: make(chan Event, eventBuffer),
	}
}

// Record stamps, stores and emits an event. Returns the stored copy.
func (s *Store) Record(kind Kind, at time.Time, message string, err error) Event {
	e := Event{ID: uuid.NewString(), Time: at, Kind: kind, Message: message}
	if err != nil {
		e.Error = err.Error()
	}

	s.mu.Lock()
	s.entries = append(s.entries, e)
	if len(s.entries) > s.maxSize {
		s.entries = s.entries[len(s.entries)-s.maxSize:]
	}
	s.mu.Unlock()

	s.emit(e)
	return e
}

// Recent returns up to n most recent events, oldest first. n <= 0 returns all.
func (s *Store) Recent(n int) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n <= 0 || n > len(s.entries) {
		n = len(s.entries)
	}
	result := make([]Event, n)
	copy(result, s.entries[len(s.entries)-n:])
	return result
}

// Events returns the channel of recorded events.
func (s *Store) Events() <-chan Event {
	return s.eventsCh
}

// emit sends without blocking; events are dropped when nobody drains the channel.
func (s *Store) emit(e Event) {
	select {
	case s.eventsCh <- e:
	default:
	}
}
