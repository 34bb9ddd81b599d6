package driving

import (
	"context"

	"github.com/custodia-labs/redline-cli/internal/core/domain"
)

// ResultService exposes the persisted review ledgers.
type ResultService interface {
	// List returns all stored review results, newest first.
	List(ctx context.Context) ([]domain.ReviewResult, error)

	// Get retrieves one review result by run ID.
	Get(ctx context.Context, id string) (*domain.ReviewResult, error)
}
