package store

import (
	"context"
	"sync"

	"paylane/internal/client/models"
	id "paylane/pkg/domain"
	"paylane/pkg/platform/sentinel"
)

// InMemory is the development and test store for the client aggregate.
// It guards itself with a mutex because the HTTP surface is concurrent even
// though each entity has a single logical writer.
type InMemory struct {
	mu      sync.RWMutex
	clients map[id.ClientID]*models.Client
}

func NewInMemory() *InMemory {
	return &InMemory{clients: make(map[id.ClientID]*models.Client)}
}

func (s *InMemory) Create(_ context.Context, client *models.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.clients[client.ID]; exists {
		return sentinel.ErrConflict
	}
	s.clients[client.ID] = client.Clone()
	return nil
}

func (s *InMemory) FindByID(_ context.Context, clientID id.ClientID) (*models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	client, ok := s.clients[clientID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return client.Clone(), nil
}

func (s *InMemory) List(_ context.Context) ([]*models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Client, 0, len(s.clients))
	for _, c := range s.clients {
		out = append(out, c.Clone())
	}
	return out, nil
}

// Execute atomically validates and mutates one client. The lock is held for
// both steps so no concurrent writer can interleave between them.
func (s *InMemory) Execute(_ context.Context, clientID id.ClientID, validate func(*models.Client) error, apply func(*models.Client)) (*models.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	client, ok := s.clients[clientID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if err := validate(client); err != nil {
		return nil, err
	}
	apply(client)
	return client.Clone(), nil
}
