// Package history records completed evaluations so they can be listed and
// exported later.
package history

import (
	"context"
	"sync"

	"github.com/davidbz/judgepanel/internal/domain"
)

// MemoryStore keeps evaluations in process memory, oldest first.
type MemoryStore struct {
	mu         sync.RWMutex
	entries    []domain.Evaluation
	maxEntries int
}

// NewMemoryStore creates an in-memory store. A non-positive maxEntries
// disables the cap.
func NewMemoryStore(maxEntries int) *MemoryStore {
	return &MemoryStore{
		mu:         sync.RWMutex{},
		entries:    make([]domain.Evaluation, 0),
		maxEntries: maxEntries,
	}
}

// Append records an evaluation, dropping the oldest entries beyond the cap.
func (s *MemoryStore) Append(_ context.Context, evaluation domain.Evaluation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, evaluation)
	if s.maxEntries > 0 && len(s.entries) > s.maxEntries {
		s.entries = append([]domain.Evaluation(nil), s.entries[len(s.entries)-s.maxEntries:]...)
	}

	return nil
}

// List returns a copy of all recorded evaluations.
func (s *MemoryStore) List(_ context.Context) ([]domain.Evaluation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Evaluation, len(s.entries))
	copy(out, s.entries)

	return out, nil
}
