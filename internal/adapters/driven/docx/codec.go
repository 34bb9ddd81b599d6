// Package docx reads and writes Word documents for the review engine.
//
// A .docx file is a ZIP package; the document body lives in
// word/document.xml. Load parses the body into the domain model,
// keeping unrecognised constructs as raw source slices. Save rebuilds
// only word/document.xml and copies every other package part from the
// original bytes, so styles, images, headers and footers survive
// untouched.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/custodia-labs/redline-cli/internal/core/domain"
	"github.com/custodia-labs/redline-cli/internal/core/ports/driven"
)

// documentPart is the package part holding the document body.
const documentPart = "word/document.xml"

// Ensure Codec implements the interface.
var _ driven.DocumentCodec = (*Codec)(nil)

// Codec is the .docx implementation of driven.DocumentCodec.
type Codec struct{}

// New creates a new .docx codec.
func New() *Codec {
	return &Codec{}
}

// Load parses document bytes into the domain model.
func (c *Codec) Load(_ context.Context, content []byte) (*domain.Document, error) {
	reader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("%w: not a zip package: %v", domain.ErrDocumentParse, err)
	}

	body, err := readPart(reader, documentPart)
	if err != nil {
		return nil, err
	}

	doc, err := parseDocument(body)
	if err != nil {
		return nil, err
	}
	doc.Source = content
	return doc, nil
}

// LoadFile reads and parses the document at path.
func (c *Codec) LoadFile(ctx context.Context, path string) (*domain.Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}
	return c.Load(ctx, content)
}

// Save serialises the document model to w. Every package part other
// than the document body is copied verbatim from the loaded source.
func (c *Codec) Save(_ context.Context, doc *domain.Document, w io.Writer) error {
	if len(doc.Source) == 0 {
		return fmt.Errorf("%w: document has no source package", domain.ErrInvalidInput)
	}
	reader, err := zip.NewReader(bytes.NewReader(doc.Source), int64(len(doc.Source)))
	if err != nil {
		return fmt.Errorf("%w: source package unreadable: %v", domain.ErrDocumentParse, err)
	}

	body := writeDocument(doc)

	zw := zip.NewWriter(w)
	for _, file := range reader.File {
		if file.Name == documentPart {
			part, err := zw.Create(documentPart)
			if err != nil {
				return fmt.Errorf("writing %s: %w", documentPart, err)
			}
			if _, err := part.Write(body); err != nil {
				return fmt.Errorf("writing %s: %w", documentPart, err)
			}
			continue
		}
		if err := copyPart(zw, file); err != nil {
			return err
		}
	}
	return zw.Close()
}

// SaveFile serialises the document model to a new file at path. The
// file is written fully in memory first; a failed save never leaves a
// partial file behind.
func (c *Codec) SaveFile(ctx context.Context, doc *domain.Document, path string) error {
	var buf bytes.Buffer
	if err := c.Save(ctx, doc, &buf); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// readPart extracts one package part by name.
func readPart(reader *zip.Reader, name string) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: opening %s: %v", domain.ErrDocumentParse, name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: reading %s: %v", domain.ErrDocumentParse, name, err)
		}
		return content, nil
	}
	return nil, fmt.Errorf("%w: package has no %s", domain.ErrDocumentParse, name)
}

// copyPart copies one package part into the output archive unchanged.
func copyPart(zw *zip.Writer, file *zip.File) error {
	header := file.FileHeader
	part, err := zw.CreateHeader(&header)
	if err != nil {
		return fmt.Errorf("copying %s: %w", file.Name, err)
	}
	rc, err := file.Open()
	if err != nil {
		return fmt.Errorf("copying %s: %w", file.Name, err)
	}
	defer rc.Close()
	if _, err := io.Copy(part, rc); err != nil {
		return fmt.Errorf("copying %s: %w", file.Name, err)
	}
	return nil
}
