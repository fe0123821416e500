package events

import (
	"log"
	"sync"
)

// DefaultRunRetention is the number of planning runs whose events a store keeps
const DefaultRunRetention = 50

// InMemoryEventStore keeps pipeline events in memory, one stream per planning run.
// Once more than maxRuns runs have been recorded the oldest run is forgotten, so a
// long lived dashboard does not grow without bound. Positions passed to ReadAllEvents
// stay stable across evictions.
//
// Subscribers are notified synchronously, in append order, before AppendEvent returns.
// Handlers must not block and must not append events themselves. Handlers passed to
// Unsubscribe must be comparable.
type InMemoryEventStore struct {
	deliver     sync.Mutex // held across append and delivery, so subscribers see Seq order
	mu          sync.RWMutex
	maxRuns     int
	runs        []string // oldest first
	streams     map[string][]Event
	log         []Event
	evicted     int // events dropped from the front of log
	subscribers map[string][]EventHandler
}

// NewInMemoryEventStore creates a store that retains DefaultRunRetention runs
func NewInMemoryEventStore() *InMemoryEventStore {
	return NewBoundedEventStore(DefaultRunRetention)
}

// NewBoundedEventStore creates a store that retains at most maxRuns runs.
// A non-positive maxRuns keeps every run.
func NewBoundedEventStore(maxRuns int) *InMemoryEventStore {
	return &InMemoryEventStore{
		maxRuns:     maxRuns,
		streams:     make(map[string][]Event),
		subscribers: make(map[string][]EventHandler),
	}
}

// AppendEvent stamps the event with its run and version, stores it and notifies subscribers
func (s *InMemoryEventStore) AppendEvent(runID string, event Event) error {
	s.deliver.Lock()
	defer s.deliver.Unlock()

	s.mu.Lock()

	stream, known := s.streams[runID]
	if !known {
		s.runs = append(s.runs, runID)
	}

	stamped := BaseEvent{
		Kind:    event.Type(),
		Run:     runID,
		Payload: event.Data(),
		At:      event.Timestamp(),
		Seq:     len(stream) + 1,
	}
	s.streams[runID] = append(stream, stamped)
	s.log = append(s.log, stamped)

	if !known {
		s.evictLocked()
	}
	handlers := s.subscribers[stamped.Kind]
	s.mu.Unlock()

	for _, h := range handlers {
		if !h.CanHandle(stamped.Kind) {
			continue
		}
		if err := h.Handle(stamped); err != nil {
			log.Printf("⚠️  Error handling event %s for run %s: %v", stamped.Kind, runID, err)
		}
	}
	return nil
}

// evictLocked forgets the oldest runs beyond the retention limit
func (s *InMemoryEventStore) evictLocked() {
	if s.maxRuns <= 0 {
		return
	}
	for len(s.runs) > s.maxRuns {
		oldest := s.runs[0]
		s.runs = s.runs[1:]
		delete(s.streams, oldest)

		kept := s.log[:0]
		for _, e := range s.log {
			if e.RunID() == oldest {
				s.evicted++
				continue
			}
			kept = append(kept, e)
		}
		s.log = kept
	}
}

// ReadEvents returns the events of one run starting at fromVersion (1 based)
func (s *InMemoryEventStore) ReadEvents(runID string, fromVersion int) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stream := s.streams[runID]
	if fromVersion < 1 {
		fromVersion = 1
	}
	if fromVersion > len(stream) {
		return []Event{}, nil
	}
	return append([]Event(nil), stream[fromVersion-1:]...), nil
}

// ReadAllEvents returns every retained event from an absolute position onwards.
// Positions that were evicted are skipped.
func (s *InMemoryEventStore) ReadAllEvents(fromPosition int) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := fromPosition - s.evicted
	if i < 0 {
		i = 0
	}
	if i >= len(s.log) {
		return []Event{}, nil
	}
	return append([]Event(nil), s.log[i:]...), nil
}

// Runs lists the retained run IDs, oldest first
func (s *InMemoryEventStore) Runs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.runs...)
}

func (s *InMemoryEventStore) Subscribe(eventTypes []string, handler EventHandler) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, eventType := range eventTypes {
		s.subscribers[eventType] = append(s.subscribers[eventType], handler)
	}
	return nil
}

func (s *InMemoryEventStore) Unsubscribe(handler EventHandler) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for eventType, handlers := range s.subscribers {
		kept := make([]EventHandler, 0, len(handlers))
		for _, h := range handlers {
			if h != handler {
				kept = append(kept, h)
			}
		}
		s.subscribers[eventType] = kept
	}
	return nil
}
