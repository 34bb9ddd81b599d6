package driven

import (
	"context"

	"github.com/custodia-labs/redline-cli/internal/core/domain"
)

// FindingLoader reads a batch of findings from an external source
// (the analysis layer's JSON export). Implementations validate every
// finding at the boundary and fail the whole load on the first
// malformed record, wrapping domain.ErrInvalidFinding.
type FindingLoader interface {
	// Load parses findings from raw bytes.
	Load(ctx context.Context, content []byte) ([]domain.Finding, error)

	// LoadFile reads and parses the findings file at path.
	LoadFile(ctx context.Context, path string) ([]domain.Finding, error)
}
