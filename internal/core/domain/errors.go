package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidFinding indicates a finding failed boundary validation.
	// Findings are validated before any matching runs; a malformed
	// finding fails the whole batch rather than surfacing deep inside
	// the engine as a missing-field error.
	ErrInvalidFinding = errors.New("invalid finding")

	// ErrDocumentParse indicates the document could not be loaded or
	// its structure could not be parsed. This is fatal for the batch:
	// no partial output is ever written.
	ErrDocumentParse = errors.New("document parse failed")

	// ErrSpanOutOfRange indicates a match span does not fall inside the
	// paragraph it claims to address. The resolver never produces such
	// spans; the splitter rejects them rather than corrupting runs.
	ErrSpanOutOfRange = errors.New("match span out of range")

	// ErrUnsupportedMode indicates an unknown review mode.
	ErrUnsupportedMode = errors.New("unsupported review mode")
)
