package docx

import (
	"encoding/xml"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/redline-cli/internal/core/domain"
)

// defaultRootTag is used for documents built in memory rather than
// loaded from a package.
const defaultRootTag = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
	`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">`

// writeDocument serialises the document model back to body XML.
// Raw blocks and nodes are emitted verbatim; everything else is
// regenerated in the main wordprocessingml namespace, which the
// preserved root tag is guaranteed to declare.
func writeDocument(doc *domain.Document) []byte {
	var b strings.Builder
	root := doc.RootTag
	if root == "" {
		root = defaultRootTag
	}
	b.WriteString(root)
	b.WriteString("<w:body>")
	writeBlocks(&b, doc.Blocks)
	b.WriteString("</w:body></w:document>")
	return []byte(b.String())
}

func writeBlocks(b *strings.Builder, blocks []domain.Block) {
	for _, block := range blocks {
		switch bl := block.(type) {
		case *domain.Paragraph:
			writeParagraph(b, bl)
		case *domain.Table:
			writeTable(b, bl)
		case *domain.RawBlock:
			b.WriteString(bl.XML)
		}
	}
}

func writeParagraph(b *strings.Builder, p *domain.Paragraph) {
	b.WriteString(openTag(p.StartTag, "<w:p>"))
	b.WriteString(p.Props)
	for _, n := range p.Nodes {
		switch node := n.(type) {
		case *domain.Run:
			writeRun(b, node, false)
		case *domain.Revision:
			writeRevision(b, node)
		case *domain.RawNode:
			b.WriteString(node.XML)
		}
	}
	b.WriteString("</w:p>")
}

func writeTable(b *strings.Builder, t *domain.Table) {
	b.WriteString(openTag(t.StartTag, "<w:tbl>"))
	b.WriteString(t.Props)
	for _, row := range t.Rows {
		b.WriteString(openTag(row.StartTag, "<w:tr>"))
		b.WriteString(row.Props)
		for _, cell := range row.Cells {
			b.WriteString(openTag(cell.StartTag, "<w:tc>"))
			b.WriteString(cell.Props)
			writeBlocks(b, cell.Blocks)
			b.WriteString("</w:tc>")
		}
		b.WriteString("</w:tr>")
	}
	b.WriteString(t.Trailing)
	b.WriteString("</w:tbl>")
}

// writeRevision emits a tracked-changes mark. Runs inside a deletion
// carry w:delText instead of w:t, as the format requires.
func writeRevision(b *strings.Builder, rev *domain.Revision) {
	name := "w:ins"
	deleted := false
	if rev.Kind == domain.RevisionDeleted {
		name = "w:del"
		deleted = true
	}

	b.WriteString("<")
	b.WriteString(name)
	b.WriteString(` w:id="`)
	b.WriteString(strconv.Itoa(rev.ID))
	b.WriteString(`" w:author="`)
	writeEscaped(b, rev.Author)
	b.WriteString(`" w:date="`)
	writeEscaped(b, rev.Date.UTC().Format(time.RFC3339))
	b.WriteString(`">`)
	for _, run := range rev.Runs {
		writeRun(b, run, deleted)
	}
	b.WriteString("</")
	b.WriteString(name)
	b.WriteString(">")
}

// writeRun emits one run, mapping '\t' and '\n' in the run text back
// to w:tab and w:br elements.
func writeRun(b *strings.Builder, r *domain.Run, deleted bool) {
	b.WriteString(openTag(r.StartTag, "<w:r>"))
	b.WriteString(r.Props)

	textElem := "w:t"
	if deleted {
		textElem = "w:delText"
	}

	flush := func(segment string) {
		if segment == "" {
			return
		}
		b.WriteString("<")
		b.WriteString(textElem)
		b.WriteString(` xml:space="preserve">`)
		writeEscaped(b, segment)
		b.WriteString("</")
		b.WriteString(textElem)
		b.WriteString(">")
	}

	start := 0
	for i := 0; i < len(r.Text); i++ {
		switch r.Text[i] {
		case '\t':
			flush(r.Text[start:i])
			b.WriteString("<w:tab/>")
			start = i + 1
		case '\n':
			flush(r.Text[start:i])
			b.WriteString("<w:br/>")
			start = i + 1
		}
	}
	flush(r.Text[start:])

	b.WriteString("</w:r>")
}

// openTag returns the preserved start tag or the default for elements
// created in memory.
func openTag(preserved, def string) string {
	if preserved == "" {
		return def
	}
	return preserved
}

// writeEscaped XML-escapes s into the builder.
func writeEscaped(b *strings.Builder, s string) {
	// EscapeText on a strings.Builder cannot fail.
	_ = xml.EscapeText(b, []byte(s))
}
