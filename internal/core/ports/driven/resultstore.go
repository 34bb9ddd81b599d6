package driven

import (
	"context"

	"github.com/custodia-labs/redline-cli/internal/core/domain"
)

// ResultStore persists the per-run outcome ledger so past reviews can
// be listed after the fact. The ledger is the only artifact that
// outlives a document pass.
type ResultStore interface {
	// Save stores a finished review result.
	Save(ctx context.Context, result domain.ReviewResult) error

	// Get retrieves a review result by run ID.
	// Returns domain.ErrNotFound if no such run exists.
	Get(ctx context.Context, id string) (*domain.ReviewResult, error)

	// List returns all review results, newest first.
	List(ctx context.Context) ([]domain.ReviewResult, error)

	// Close releases the underlying storage.
	Close() error
}
