package services

import (
	"context"

	"github.com/custodia-labs/redline-cli/internal/core/domain"
	"github.com/custodia-labs/redline-cli/internal/core/ports/driven"
	"github.com/custodia-labs/redline-cli/internal/core/ports/driving"
)

// Ensure ResultService implements the interface.
var _ driving.ResultService = (*ResultService)(nil)

// ResultService exposes the persisted review ledgers.
type ResultService struct {
	store driven.ResultStore
}

// NewResultService creates a new result service.
func NewResultService(store driven.ResultStore) *ResultService {
	return &ResultService{store: store}
}

// List returns all stored review results, newest first.
func (s *ResultService) List(ctx context.Context) ([]domain.ReviewResult, error) {
	return s.store.List(ctx)
}

// Get retrieves one review result by run ID.
func (s *ResultService) Get(ctx context.Context, id string) (*domain.ReviewResult, error) {
	return s.store.Get(ctx, id)
}
