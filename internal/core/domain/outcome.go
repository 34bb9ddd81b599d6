package domain

import "time"

// Confidence classifies how a span was matched.
type Confidence string

// Match confidences, strongest first.
const (
	ConfidenceExact           Confidence = "exact"
	ConfidenceCaseInsensitive Confidence = "case-insensitive"
	ConfidenceFuzzy           Confidence = "fuzzy"
)

// Rank orders confidences for comparison; higher is stronger.
func (c Confidence) Rank() int {
	switch c {
	case ConfidenceExact:
		return 3
	case ConfidenceCaseInsensitive:
		return 2
	case ConfidenceFuzzy:
		return 1
	}
	return 0
}

// MatchSpan addresses the matched text for one finding. Offsets are
// byte offsets into the owning paragraph's flat text. A span is created
// by the resolver, consumed immediately by the splitter, and discarded
// once the edit is applied; it is never valid across mutations.
type MatchSpan struct {
	// ParagraphIndex is the paragraph's position in document order,
	// counting paragraphs inside table cells.
	ParagraphIndex int

	// Start and End delimit the matched text, half-open.
	Start int
	End   int

	// Confidence records which matching stage produced the span.
	Confidence Confidence

	// Score is the similarity score; 1.0 for non-fuzzy matches.
	Score float64
}

// OutcomeStatus is the per-finding result of a review pass.
type OutcomeStatus string

// Outcome statuses.
const (
	// StatusApplied means the edit was written into the document.
	StatusApplied OutcomeStatus = "applied"

	// StatusSkippedNotFound means no span cleared the matching floor,
	// or the citation was the CitationNotFound sentinel.
	StatusSkippedNotFound OutcomeStatus = "skipped-not-found"

	// StatusSkippedUnchanged means the matched text already equalled
	// the replacement under the skip-if-same policy.
	StatusSkippedUnchanged OutcomeStatus = "skipped-unchanged"

	// StatusSkippedAmbiguous means fuzzy matching found two or more
	// equally-scored, non-overlapping candidates and declined to guess.
	StatusSkippedAmbiguous OutcomeStatus = "skipped-ambiguous"
)

// EditOutcome records what happened to one finding.
type EditOutcome struct {
	// FindingID identifies the finding.
	FindingID int

	// Status is the result.
	Status OutcomeStatus

	// Span is the applied span, nil unless Status is StatusApplied.
	Span *MatchSpan
}

// ReviewResult is the ledger for one whole review run. It is the only
// artifact that outlives a document pass.
type ReviewResult struct {
	// ID is the unique identifier for the run.
	ID string

	// DocumentName is the reviewed document's file name.
	DocumentName string

	// Mode is the review mode the run used.
	Mode Mode

	// Author is the tracked-changes author the run used.
	Author string

	// Outcomes holds one entry per finding, in processing order.
	Outcomes []EditOutcome

	// CreatedAt is when the run finished.
	CreatedAt time.Time
}

// Counts tallies outcomes by status.
func (r ReviewResult) Counts() (applied, notFound, unchanged, ambiguous int) {
	for _, o := range r.Outcomes {
		switch o.Status {
		case StatusApplied:
			applied++
		case StatusSkippedNotFound:
			notFound++
		case StatusSkippedUnchanged:
			unchanged++
		case StatusSkippedAmbiguous:
			ambiguous++
		}
	}
	return applied, notFound, unchanged, ambiguous
}
