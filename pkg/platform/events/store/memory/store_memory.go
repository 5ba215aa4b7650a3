package memory

import (
	"context"
	"sync"

	id "paylane/pkg/domain"
	"paylane/pkg/platform/events"
)

// InMemorySink retains delivered events in memory. It is the default sink in
// development and the assertion point in tests.
type InMemorySink struct {
	mu     sync.RWMutex
	events map[id.ClientID][]events.Event
}

func NewInMemorySink() *InMemorySink {
	return &InMemorySink{events: make(map[id.ClientID][]events.Event)}
}

func (s *InMemorySink) Deliver(_ context.Context, event events.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.ClientID] = append(s.events[event.ClientID], event)
	return nil
}

// ListByClient returns the events delivered for one client.
func (s *InMemorySink) ListByClient(_ context.Context, clientID id.ClientID) ([]events.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]events.Event{}, s.events[clientID]...), nil
}

// ListAll returns all delivered events across clients.
func (s *InMemorySink) ListAll(_ context.Context) ([]events.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var all []events.Event
	for _, clientEvents := range s.events {
		all = append(all, clientEvents...)
	}
	return all, nil
}

// Clear removes all retained events. Use between tests to ensure isolation.
func (s *InMemorySink) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[id.ClientID][]events.Event)
}
