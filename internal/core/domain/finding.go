package domain

import "fmt"

// CitationNotFound is the literal citation emitted by the analysis layer
// when it could not quote the offending text. Findings carrying it are
// never locatable by design and are skipped without a resolution attempt.
const CitationNotFound = "Not Found"

// Priority is the severity the analysis layer assigned to a finding.
type Priority string

// Finding priorities.
const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Valid reports whether the priority is one of the known values.
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Finding is a single policy-compliance finding against a document.
// Findings are produced by the external analysis layer and are
// immutable once handed to the engine.
type Finding struct {
	// ID is the analysis layer's identifier for the finding.
	ID int

	// Priority is the assigned severity.
	Priority Priority

	// Section names the document section the finding concerns.
	Section string

	// Issue is the short policy-rule label.
	Issue string

	// Problem is the human-readable explanation.
	Problem string

	// Citation is the quoted excerpt claimed to exist in the document,
	// or CitationNotFound when the analysis layer could not quote one.
	Citation string

	// SuggestedReplacement is the proposed replacement text. Empty
	// means the cited text should be deleted outright.
	SuggestedReplacement string
}

// Validate checks the finding's required fields. It returns
// ErrInvalidFinding wrapped with the offending field so the caller can
// fail fast before any document work starts.
func (f Finding) Validate() error {
	if f.ID <= 0 {
		return fmt.Errorf("%w: id must be positive, got %d", ErrInvalidFinding, f.ID)
	}
	if !f.Priority.Valid() {
		return fmt.Errorf("%w: finding %d has unknown priority %q", ErrInvalidFinding, f.ID, f.Priority)
	}
	if f.Citation == "" {
		return fmt.Errorf("%w: finding %d has an empty citation", ErrInvalidFinding, f.ID)
	}
	return nil
}

// Locatable reports whether the finding can ever be matched against a
// document. Findings whose citation is the CitationNotFound sentinel
// are short-circuited by the orchestrator.
func (f Finding) Locatable() bool {
	return f.Citation != CitationNotFound
}
