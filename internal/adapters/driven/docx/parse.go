package docx

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/redline-cli/internal/core/domain"
)

// parser walks word/document.xml with one decoder, using the decoder's
// input offsets to slice raw source bytes for every construct the
// engine does not interpret. Raw slices are written back verbatim, so
// bookmarks, fields, drawings and section properties survive a round
// trip untouched.
type parser struct {
	dec      *xml.Decoder
	src      []byte
	maxRevID int
}

// parseDocument parses the document body XML into the domain model.
func parseDocument(src []byte) (*domain.Document, error) {
	p := &parser{dec: xml.NewDecoder(bytes.NewReader(src)), src: src}
	doc := &domain.Document{}

	// Locate w:document; everything up to and including its start tag
	// (XML declaration, namespace declarations) is preserved verbatim.
	for {
		tok, err := p.dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: no document element: %v", domain.ErrDocumentParse, err)
		}
		if se, ok := tok.(xml.StartElement); ok {
			if se.Name.Local != "document" {
				return nil, fmt.Errorf("%w: unexpected root element %q", domain.ErrDocumentParse, se.Name.Local)
			}
			doc.RootTag = string(p.src[:p.dec.InputOffset()])
			break
		}
	}

	// Locate w:body, keeping any preceding siblings.
	var pre []domain.Block
	for {
		start := p.dec.InputOffset()
		tok, err := p.dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: no body element: %v", domain.ErrDocumentParse, err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if se.Name.Local != "body" {
			raw, err := p.skipRaw(start)
			if err != nil {
				return nil, err
			}
			pre = append(pre, &domain.RawBlock{XML: raw})
			continue
		}
		blocks, err := p.parseBlocks()
		if err != nil {
			return nil, err
		}
		doc.Blocks = append(pre, blocks...)
		break
	}

	doc.SeedRevisionID(p.maxRevID)
	return doc, nil
}

// parseBlocks parses block-level children until the parent's end tag.
func (p *parser) parseBlocks() ([]domain.Block, error) {
	var blocks []domain.Block
	for {
		start := p.dec.InputOffset()
		tok, err := p.dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: truncated body: %v", domain.ErrDocumentParse, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				para, err := p.parseParagraph(start)
				if err != nil {
					return nil, err
				}
				blocks = append(blocks, para)
			case "tbl":
				tbl, err := p.parseTable(start)
				if err != nil {
					return nil, err
				}
				blocks = append(blocks, tbl)
			default:
				raw, err := p.skipRaw(start)
				if err != nil {
					return nil, err
				}
				blocks = append(blocks, &domain.RawBlock{XML: raw})
			}
		case xml.EndElement:
			return blocks, nil
		}
	}
}

// parseParagraph parses one w:p element. The start element token has
// already been consumed; start is its byte offset.
func (p *parser) parseParagraph(start int64) (*domain.Paragraph, error) {
	para := &domain.Paragraph{StartTag: p.startTag(start)}
	for {
		cstart := p.dec.InputOffset()
		tok, err := p.dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: truncated paragraph: %v", domain.ErrDocumentParse, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			raw, err := p.skipRaw(cstart)
			if err != nil {
				return nil, err
			}
			switch t.Name.Local {
			case "pPr":
				para.Props = raw
			case "r":
				if run, ok := parseRun(raw); ok {
					para.Nodes = append(para.Nodes, run)
				} else {
					para.Nodes = append(para.Nodes, &domain.RawNode{XML: raw})
				}
			case "ins":
				para.Nodes = append(para.Nodes, p.parseRevisionNode(raw, domain.RevisionInserted))
			case "del":
				para.Nodes = append(para.Nodes, p.parseRevisionNode(raw, domain.RevisionDeleted))
			default:
				para.Nodes = append(para.Nodes, &domain.RawNode{XML: raw})
			}
		case xml.EndElement:
			return para, nil
		}
	}
}

// parseRevisionNode parses a w:ins or w:del element, falling back to a
// raw node when the element holds anything beyond plain runs.
func (p *parser) parseRevisionNode(raw string, kind domain.RevisionKind) domain.ParagraphNode {
	rev, ok := parseRevision(raw, kind)
	if !ok {
		return &domain.RawNode{XML: raw}
	}
	if rev.ID > p.maxRevID {
		p.maxRevID = rev.ID
	}
	return rev
}

// parseTable parses one w:tbl element.
func (p *parser) parseTable(start int64) (*domain.Table, error) {
	tbl := &domain.Table{StartTag: p.startTag(start)}
	for {
		cstart := p.dec.InputOffset()
		tok, err := p.dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: truncated table: %v", domain.ErrDocumentParse, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "tr" {
				row, err := p.parseRow(cstart)
				if err != nil {
					return nil, err
				}
				tbl.Rows = append(tbl.Rows, row)
				continue
			}
			raw, err := p.skipRaw(cstart)
			if err != nil {
				return nil, err
			}
			// tblPr and tblGrid precede the rows; anything after the
			// rows is kept in place at the end.
			if len(tbl.Rows) == 0 {
				tbl.Props += raw
			} else {
				tbl.Trailing += raw
			}
		case xml.EndElement:
			return tbl, nil
		}
	}
}

// parseRow parses one w:tr element.
func (p *parser) parseRow(start int64) (*domain.TableRow, error) {
	row := &domain.TableRow{StartTag: p.startTag(start)}
	for {
		cstart := p.dec.InputOffset()
		tok, err := p.dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: truncated table row: %v", domain.ErrDocumentParse, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "tc" {
				cell, err := p.parseCell(cstart)
				if err != nil {
					return nil, err
				}
				row.Cells = append(row.Cells, cell)
				continue
			}
			raw, err := p.skipRaw(cstart)
			if err != nil {
				return nil, err
			}
			row.Props += raw
		case xml.EndElement:
			return row, nil
		}
	}
}

// parseCell parses one w:tc element; its content is block-level, so
// cells nest paragraphs and further tables.
func (p *parser) parseCell(start int64) (*domain.TableCell, error) {
	cell := &domain.TableCell{StartTag: p.startTag(start)}
	for {
		cstart := p.dec.InputOffset()
		tok, err := p.dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: truncated table cell: %v", domain.ErrDocumentParse, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tcPr":
				raw, err := p.skipRaw(cstart)
				if err != nil {
					return nil, err
				}
				cell.Props += raw
			case "p":
				para, err := p.parseParagraph(cstart)
				if err != nil {
					return nil, err
				}
				cell.Blocks = append(cell.Blocks, para)
			case "tbl":
				tbl, err := p.parseTable(cstart)
				if err != nil {
					return nil, err
				}
				cell.Blocks = append(cell.Blocks, tbl)
			default:
				raw, err := p.skipRaw(cstart)
				if err != nil {
					return nil, err
				}
				cell.Blocks = append(cell.Blocks, &domain.RawBlock{XML: raw})
			}
		case xml.EndElement:
			return cell, nil
		}
	}
}

// startTag returns the raw start tag the decoder just consumed,
// normalised so self-closing forms can take children on write.
func (p *parser) startTag(start int64) string {
	return normaliseStartTag(string(p.src[start:p.dec.InputOffset()]))
}

// skipRaw consumes the rest of the element whose start tag was just
// read and returns the element's full raw source.
func (p *parser) skipRaw(start int64) (string, error) {
	if err := p.dec.Skip(); err != nil {
		return "", fmt.Errorf("%w: truncated element: %v", domain.ErrDocumentParse, err)
	}
	return string(p.src[start:p.dec.InputOffset()]), nil
}

// normaliseStartTag rewrites a self-closing start tag to an open one.
func normaliseStartTag(tag string) string {
	if strings.HasSuffix(tag, "/>") {
		return tag[:len(tag)-2] + ">"
	}
	return tag
}

// parseRun parses one w:r element from its raw source. It reports
// false when the run holds anything beyond formatting properties and
// text content (drawings, field chars, footnote refs); such runs are
// kept raw and stay invisible to matching.
func parseRun(raw string) (*domain.Run, bool) {
	dec := xml.NewDecoder(strings.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, false
	}
	if se, ok := tok.(xml.StartElement); !ok || se.Name.Local != "r" {
		return nil, false
	}

	run := &domain.Run{StartTag: normaliseStartTag(raw[:dec.InputOffset()])}
	var text strings.Builder
	for {
		cstart := dec.InputOffset()
		tok, err := dec.Token()
		if err != nil {
			return nil, false
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "rPr":
				if dec.Skip() != nil {
					return nil, false
				}
				run.Props = raw[cstart:dec.InputOffset()]
			case "t", "delText":
				content, ok := readText(dec)
				if !ok {
					return nil, false
				}
				text.WriteString(content)
			case "tab":
				if dec.Skip() != nil {
					return nil, false
				}
				text.WriteByte('\t')
			case "br", "cr":
				if dec.Skip() != nil {
					return nil, false
				}
				text.WriteByte('\n')
			default:
				return nil, false
			}
		case xml.EndElement:
			run.Text = text.String()
			return run, true
		}
	}
}

// parseRevision parses a w:ins or w:del element from its raw source.
// It reports false when the element holds anything beyond plain runs.
func parseRevision(raw string, kind domain.RevisionKind) (*domain.Revision, bool) {
	dec := xml.NewDecoder(strings.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, false
	}
	se, ok := tok.(xml.StartElement)
	if !ok {
		return nil, false
	}

	rev := &domain.Revision{Kind: kind}
	for _, attr := range se.Attr {
		switch attr.Name.Local {
		case "id":
			rev.ID, _ = strconv.Atoi(attr.Value)
		case "author":
			rev.Author = attr.Value
		case "date":
			if t, err := time.Parse(time.RFC3339, attr.Value); err == nil {
				rev.Date = t
			}
		}
	}

	for {
		cstart := dec.InputOffset()
		tok, err := dec.Token()
		if err != nil {
			return nil, false
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "r" {
				return nil, false
			}
			if dec.Skip() != nil {
				return nil, false
			}
			run, ok := parseRun(raw[cstart:dec.InputOffset()])
			if !ok {
				return nil, false
			}
			rev.Runs = append(rev.Runs, run)
		case xml.EndElement:
			return rev, true
		}
	}
}

// readText collects the character data of a w:t or w:delText element.
func readText(dec *xml.Decoder) (string, bool) {
	var b strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", false
		}
		switch t := tok.(type) {
		case xml.CharData:
			b.Write(t)
		case xml.EndElement:
			return b.String(), true
		default:
			return "", false
		}
	}
}
