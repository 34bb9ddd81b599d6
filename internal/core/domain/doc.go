// Package domain defines the core business entities for Redline.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Finding: A policy-compliance finding against a document
//   - Document: The in-memory model of a Word document
//   - Paragraph, Run, Table: The document's structural tree
//   - EditOutcome: The per-finding result of a review pass
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
