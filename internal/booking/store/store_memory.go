package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"paylane/internal/booking/models"
	id "paylane/pkg/domain"
	"paylane/pkg/platform/sentinel"
)

// InMemory keeps advisory sessions in a map with copy-on-read semantics.
type InMemory struct {
	mu       sync.RWMutex
	sessions map[id.SessionID]*models.AdvisorySession
}

func NewInMemory() *InMemory {
	return &InMemory{sessions: make(map[id.SessionID]*models.AdvisorySession)}
}

func (s *InMemory) Create(_ context.Context, session *models.AdvisorySession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[session.ID]; ok {
		return sentinel.ErrConflict
	}
	cp := *session
	s.sessions[session.ID] = &cp
	return nil
}

func (s *InMemory) FindByID(_ context.Context, sessionID id.SessionID) (*models.AdvisorySession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *session
	return &cp, nil
}

func (s *InMemory) ListByClient(_ context.Context, clientID id.ClientID) ([]*models.AdvisorySession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.AdvisorySession
	for _, session := range s.sessions {
		if session.ClientID != clientID {
			continue
		}
		cp := *session
		out = append(out, &cp)
	}
	sortSessions(out)
	return out, nil
}

func (s *InMemory) ListAll(_ context.Context) ([]*models.AdvisorySession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.AdvisorySession, 0, len(s.sessions))
	for _, session := range s.sessions {
		cp := *session
		out = append(out, &cp)
	}
	sortSessions(out)
	return out, nil
}

// ListBetween returns sessions starting in [from, to).
func (s *InMemory) ListBetween(_ context.Context, from, to time.Time) ([]*models.AdvisorySession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.AdvisorySession
	for _, session := range s.sessions {
		at := session.At()
		if at.Before(from) || !at.Before(to) {
			continue
		}
		cp := *session
		out = append(out, &cp)
	}
	sortSessions(out)
	return out, nil
}

// Execute validates and mutates one session while holding the store lock.
func (s *InMemory) Execute(_ context.Context, sessionID id.SessionID, validate func(*models.AdvisorySession) error, apply func(*models.AdvisorySession)) (*models.AdvisorySession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	working := *session
	if err := validate(&working); err != nil {
		return nil, err
	}
	apply(&working)
	s.sessions[sessionID] = &working
	cp := working
	return &cp, nil
}

func sortSessions(sessions []*models.AdvisorySession) {
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].At().Before(sessions[j].At()) })
}
