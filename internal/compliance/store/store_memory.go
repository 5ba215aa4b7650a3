package store

import (
	"context"
	"sort"
	"sync"

	"paylane/internal/compliance/models"
	id "paylane/pkg/domain"
	"paylane/pkg/platform/sentinel"
)

// InMemory keeps compliance issues in a map with copy-on-read semantics.
type InMemory struct {
	mu     sync.RWMutex
	issues map[id.IssueID]*models.ComplianceIssue
}

func NewInMemory() *InMemory {
	return &InMemory{issues: make(map[id.IssueID]*models.ComplianceIssue)}
}

func (s *InMemory) Create(_ context.Context, issue *models.ComplianceIssue) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.issues[issue.ID]; ok {
		return sentinel.ErrConflict
	}
	cp := *issue
	s.issues[issue.ID] = &cp
	return nil
}

func (s *InMemory) FindByID(_ context.Context, issueID id.IssueID) (*models.ComplianceIssue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	issue, ok := s.issues[issueID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *issue
	return &cp, nil
}

// ListOpen returns non-resolved issues, oldest detection first. When
// clientID is non-zero the listing is scoped to that client.
func (s *InMemory) ListOpen(_ context.Context, clientID id.ClientID) ([]*models.ComplianceIssue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.ComplianceIssue
	for _, issue := range s.issues {
		if issue.Status == models.IssueResolved {
			continue
		}
		if !clientID.IsZero() && issue.ClientID != clientID {
			continue
		}
		cp := *issue
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DetectedAt.Before(out[j].DetectedAt) })
	return out, nil
}

func (s *InMemory) ListAll(_ context.Context) ([]*models.ComplianceIssue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.ComplianceIssue, 0, len(s.issues))
	for _, issue := range s.issues {
		cp := *issue
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DetectedAt.Before(out[j].DetectedAt) })
	return out, nil
}

// Execute validates and mutates one issue while holding the store lock.
func (s *InMemory) Execute(_ context.Context, issueID id.IssueID, validate func(*models.ComplianceIssue) error, apply func(*models.ComplianceIssue)) (*models.ComplianceIssue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	issue, ok := s.issues[issueID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	working := *issue
	if err := validate(&working); err != nil {
		return nil, err
	}
	apply(&working)
	s.issues[issueID] = &working
	cp := working
	return &cp, nil
}
