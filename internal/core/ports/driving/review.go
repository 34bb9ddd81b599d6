package driving

import (
	"context"

	"github.com/custodia-labs/redline-cli/internal/core/domain"
)

// ReviewService drives findings through the mutation engine.
type ReviewService interface {
	// Review applies the findings to a clone of the document in the
	// given mode and returns the mutated clone with the per-finding
	// outcome ledger. The input document is never modified, so the
	// tracked and clean variants of one document may be produced
	// concurrently from the same loaded model.
	Review(ctx context.Context, doc *domain.Document, findings []domain.Finding, mode domain.Mode, policy domain.Policy) (*domain.Document, []domain.EditOutcome, error)

	// ReviewFiles loads the document and findings from disk, produces
	// the requested output variants next to each other, persists one
	// ledger per variant, and reports what was written.
	ReviewFiles(ctx context.Context, req ReviewFilesRequest) (*ReviewFilesReport, error)
}

// ReviewFilesRequest names the inputs for a file-level review run.
type ReviewFilesRequest struct {
	// DocumentPath is the .docx to review.
	DocumentPath string

	// FindingsPath is the findings JSON export.
	FindingsPath string

	// OutputDir receives the output documents. Empty means the
	// document's own directory.
	OutputDir string

	// Modes lists the variants to produce, in order.
	Modes []domain.Mode

	// Policy carries the matching and attribution options.
	Policy domain.Policy
}

// ReviewFilesReport summarises a file-level review run.
type ReviewFilesReport struct {
	// Results holds one ledger per produced variant.
	Results []domain.ReviewResult

	// OutputPaths holds the written document paths, parallel to
	// Results.
	OutputPaths []string
}
