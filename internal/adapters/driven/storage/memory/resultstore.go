// Package memory provides in-memory implementations of driven port
// interfaces, used in tests and for runs that do not need persistence.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/redline-cli/internal/core/domain"
	"github.com/custodia-labs/redline-cli/internal/core/ports/driven"
)

// Ensure ResultStore implements the interface.
var _ driven.ResultStore = (*ResultStore)(nil)

// ResultStore is an in-memory implementation of driven.ResultStore.
type ResultStore struct {
	mu      sync.RWMutex
	results map[string]domain.ReviewResult
}

// NewResultStore creates a new in-memory result store.
func NewResultStore() *ResultStore {
	return &ResultStore{
		results: make(map[string]domain.ReviewResult),
	}
}

// Save stores or updates a review result.
func (s *ResultStore) Save(_ context.Context, result domain.ReviewResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[result.ID] = result
	return nil
}

// Get retrieves a review result by run ID.
func (s *ResultStore) Get(_ context.Context, id string) (*domain.ReviewResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.results[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &result, nil
}

// List returns all review results, newest first.
func (s *ResultStore) List(_ context.Context) ([]domain.ReviewResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	results := make([]domain.ReviewResult, 0, len(s.results))
	for _, result := range s.results {
		results = append(results, result)
	}
	sort.Slice(results, func(i, j int) bool {
		if !results[i].CreatedAt.Equal(results[j].CreatedAt) {
			return results[i].CreatedAt.After(results[j].CreatedAt)
		}
		return results[i].ID < results[j].ID
	})
	return results, nil
}

// Close is a no-op for the in-memory store.
func (s *ResultStore) Close() error {
	return nil
}
