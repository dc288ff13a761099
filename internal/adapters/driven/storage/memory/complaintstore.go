package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/whistle-cli/internal/core/domain"
	"github.com/custodia-labs/whistle-cli/internal/core/ports/driven"
)

// Ensure ComplaintStore implements the interface.
var _ driven.ComplaintStore = (*ComplaintStore)(nil)

// ComplaintStore is an in-memory implementation of driven.ComplaintStore.
type ComplaintStore struct {
	mu         sync.RWMutex
	complaints []domain.Complaint
	index      map[string]int
	history    map[string][]domain.StatusChange
}

// NewComplaintStore creates a new in-memory complaint store.
func NewComplaintStore() *ComplaintStore {
	return &ComplaintStore{
		index:   make(map[string]int),
		history: make(map[string][]domain.StatusChange),
	}
}

// Append stores a new complaint.
func (s *ComplaintStore) Append(_ context.Context, c *domain.Complaint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.index[c.ID]; exists {
		return domain.ErrAlreadyExists
	}
	s.index[c.ID] = len(s.complaints)
	s.complaints = append(s.complaints, *c)
	return nil
}

// Get retrieves a complaint by id.
func (s *ComplaintStore) Get(_ context.Context, id string) (*domain.Complaint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := s.complaints[i]
	return &c, nil
}

// UpdateStatus changes the status of a complaint and records the change.
func (s *ComplaintStore) UpdateStatus(_ context.Context, change domain.StatusChange) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[change.ComplaintID]
	if !ok {
		return domain.ErrNotFound
	}
	s.complaints[i].Status = change.To
	s.history[change.ComplaintID] = append(s.history[change.ComplaintID], change)
	return nil
}

// All returns a copy of every complaint in insertion order.
func (s *ComplaintStore) All(_ context.Context) ([]domain.Complaint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Complaint, len(s.complaints))
	copy(out, s.complaints)
	return out, nil
}

// History returns the status changes of a complaint.
func (s *ComplaintStore) History(_ context.Context, id string) ([]domain.StatusChange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.index[id]; !ok {
		return nil, domain.ErrNotFound
	}
	out := make([]domain.StatusChange, len(s.history[id]))
	copy(out, s.history[id])
	return out, nil
}

// Close is a no-op for the memory store.
func (s *ComplaintStore) Close() error {
	return nil
}
