package driven

import (
	"context"
	"io"

	"github.com/custodia-labs/redline-cli/internal/core/domain"
)

// DocumentCodec loads a Word document into the domain model and writes
// a mutated model back out in the same file family.
//
// Load and Save are bracketed, fully in-memory operations: the codec
// never holds a file handle across a mutation, and a failed Save never
// leaves a partial file behind.
type DocumentCodec interface {
	// Load parses document bytes into the domain model.
	// Returns domain.ErrDocumentParse if the bytes are not a readable
	// document; this aborts the whole batch.
	Load(ctx context.Context, content []byte) (*domain.Document, error)

	// LoadFile reads and parses the document at path.
	LoadFile(ctx context.Context, path string) (*domain.Document, error)

	// Save serialises the document model to w, re-emitting every
	// package part the engine did not touch byte-for-byte.
	Save(ctx context.Context, doc *domain.Document, w io.Writer) error

	// SaveFile serialises the document model to a new file at path.
	SaveFile(ctx context.Context, doc *domain.Document, path string) error
}
