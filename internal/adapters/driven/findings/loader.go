// Package findings loads the analysis layer's JSON export into typed,
// validated domain findings. The export's shape is fixed here at the
// boundary: a malformed record fails the whole load immediately rather
// than surfacing as a missing-field error deep inside matching.
package findings

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/custodia-labs/redline-cli/internal/core/domain"
	"github.com/custodia-labs/redline-cli/internal/core/ports/driven"
)

// Ensure Loader implements the interface.
var _ driven.FindingLoader = (*Loader)(nil)

// Loader reads findings from JSON.
type Loader struct{}

// New creates a new findings loader.
func New() *Loader {
	return &Loader{}
}

// findingJSON mirrors one record of the export.
type findingJSON struct {
	ID                   int    `json:"id"`
	Priority             string `json:"priority"`
	Section              string `json:"section"`
	Issue                string `json:"issue"`
	Problem              string `json:"problem"`
	Citation             string `json:"citation"`
	SuggestedReplacement string `json:"suggested_replacement"`
}

// envelopeJSON is the wrapped export form: {"findings": [...]}.
type envelopeJSON struct {
	Findings []findingJSON `json:"findings"`
}

// Load parses findings from raw JSON. Both a bare array and the
// {"findings": [...]} envelope are accepted.
func (l *Loader) Load(_ context.Context, content []byte) ([]domain.Finding, error) {
	var records []findingJSON
	if err := json.Unmarshal(content, &records); err != nil {
		var envelope envelopeJSON
		if err := json.Unmarshal(content, &envelope); err != nil {
			return nil, fmt.Errorf("%w: findings are not valid JSON: %v", domain.ErrInvalidInput, err)
		}
		records = envelope.Findings
	}

	out := make([]domain.Finding, 0, len(records))
	for i, rec := range records {
		f := domain.Finding{
			ID:                   rec.ID,
			Priority:             domain.Priority(rec.Priority),
			Section:              rec.Section,
			Issue:                rec.Issue,
			Problem:              rec.Problem,
			Citation:             rec.Citation,
			SuggestedReplacement: rec.SuggestedReplacement,
		}
		if err := f.Validate(); err != nil {
			return nil, fmt.Errorf("finding %d of %d: %w", i+1, len(records), err)
		}
		out = append(out, f)
	}
	return out, nil
}

// LoadFile reads and parses the findings file at path.
func (l *Loader) LoadFile(ctx context.Context, path string) ([]domain.Finding, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading findings: %w", err)
	}
	return l.Load(ctx, content)
}
