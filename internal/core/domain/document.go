package domain

import (
	"strings"
	"time"
)

// Document is the in-memory model of a Word document body. It is the
// sole mutable object in the review pipeline and is exclusively owned
// by one orchestrator invocation at a time.
//
// Structural fidelity rule: everything the engine does not understand
// (bookmarks, drawings, section properties, ...) is carried as raw
// source XML in RawBlock/RawNode values and written back verbatim, so
// content the engine never touches survives byte-for-byte.
type Document struct {
	// Blocks is the ordered body content.
	Blocks []Block

	// Source holds the original .docx package bytes. The codec reuses
	// them to re-emit every package part other than the document body.
	Source []byte

	// RootTag is the raw start tag of the w:document element,
	// preserved so namespace declarations survive a round trip.
	RootTag string

	nextRevisionID int
}

// NextRevisionID hands out monotonically increasing revision mark IDs.
func (d *Document) NextRevisionID() int {
	d.nextRevisionID++
	return d.nextRevisionID
}

// SeedRevisionID ensures future IDs start above the given value.
// The codec calls this with the highest revision ID found in the source.
func (d *Document) SeedRevisionID(id int) {
	if id > d.nextRevisionID {
		d.nextRevisionID = id
	}
}

// Block is one body-level element: a Paragraph, a Table, or an opaque
// RawBlock. The union is closed; consumers switch on the concrete type.
type Block interface {
	isBlock()
}

// ParagraphNode is one paragraph-level element: a Run, a Revision
// wrapping runs, or an opaque RawNode.
type ParagraphNode interface {
	isParagraphNode()
}

// Paragraph is an ordered sequence of runs and revision marks.
type Paragraph struct {
	// StartTag is the raw source start tag, empty for new paragraphs.
	StartTag string

	// Props is the raw w:pPr element, empty if absent.
	Props string

	// Nodes is the ordered paragraph content.
	Nodes []ParagraphNode
}

func (*Paragraph) isBlock() {}

// Run is a contiguous span of text sharing one formatting definition.
// Props is the raw w:rPr element and acts as the opaque formatting
// handle: splitting a run clones Props so every piece keeps the
// original formatting.
type Run struct {
	// StartTag is the raw source start tag, empty for new runs.
	StartTag string

	// Props is the raw w:rPr element, empty if absent.
	Props string

	// Text is the run's visible text. Tabs and line breaks appear as
	// '\t' and '\n'; the codec maps them back to w:tab and w:br.
	Text string
}

func (*Run) isParagraphNode() {}

// Clone returns a copy of the run sharing the same formatting handle.
func (r *Run) Clone() *Run {
	c := *r
	return &c
}

// RevisionKind distinguishes insertion from deletion marks.
type RevisionKind int

// Revision kinds.
const (
	RevisionInserted RevisionKind = iota
	RevisionDeleted
)

// Revision is a tracked-changes mark (w:ins or w:del) wrapping runs.
// Inserted text is part of the paragraph's visible text; deleted text
// is not.
type Revision struct {
	Kind   RevisionKind
	ID     int
	Author string
	Date   time.Time
	Runs   []*Run
}

func (*Revision) isParagraphNode() {}

// Text returns the concatenated text of the revision's runs.
func (rev *Revision) Text() string {
	var b strings.Builder
	for _, r := range rev.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// RawNode is paragraph content the engine does not interpret,
// preserved verbatim.
type RawNode struct {
	XML string
}

func (*RawNode) isParagraphNode() {}

// RawBlock is body content the engine does not interpret,
// preserved verbatim.
type RawBlock struct {
	XML string
}

func (*RawBlock) isBlock() {}

// Table is a block holding rows of cells; each cell is an independent
// paragraph scope, so matches never cross cell boundaries.
type Table struct {
	// StartTag is the raw source start tag.
	StartTag string

	// Props holds the raw non-row table children (w:tblPr, w:tblGrid)
	// that precede the first row.
	Props string

	// Rows is the ordered row content.
	Rows []*TableRow

	// Trailing holds raw non-row children that follow the rows.
	Trailing string
}

func (*Table) isBlock() {}

// TableRow is an ordered sequence of cells.
type TableRow struct {
	StartTag string

	// Props holds raw non-cell children preceding the first cell.
	Props string

	Cells []*TableCell
}

// TableCell nests blocks, including further tables.
type TableCell struct {
	StartTag string

	// Props holds the raw w:tcPr element.
	Props string

	Blocks []Block
}

// VisibleRuns returns the paragraph's runs in document order: plain
// runs and runs inside insertion marks. Runs inside deletion marks are
// not part of the visible text and are excluded.
func (p *Paragraph) VisibleRuns() []*Run {
	var runs []*Run
	for _, n := range p.Nodes {
		switch node := n.(type) {
		case *Run:
			runs = append(runs, node)
		case *Revision:
			if node.Kind == RevisionInserted {
				runs = append(runs, node.Runs...)
			}
		}
	}
	return runs
}

// Text returns the paragraph's visible text: the concatenation of all
// visible run texts in order.
func (p *Paragraph) Text() string {
	var b strings.Builder
	for _, r := range p.VisibleRuns() {
		b.WriteString(r.Text)
	}
	return b.String()
}

// NodeIndex returns the index in Nodes of the node containing the
// given run, or -1 if the run is not in this paragraph.
func (p *Paragraph) NodeIndex(run *Run) int {
	for i, n := range p.Nodes {
		switch node := n.(type) {
		case *Run:
			if node == run {
				return i
			}
		case *Revision:
			for _, r := range node.Runs {
				if r == run {
					return i
				}
			}
		}
	}
	return -1
}

// ReplaceRun splices replacement runs into the position held by old,
// whether old sits at the top level or inside a revision mark. It
// reports whether old was found.
func (p *Paragraph) ReplaceRun(old *Run, repl ...*Run) bool {
	for i, n := range p.Nodes {
		switch node := n.(type) {
		case *Run:
			if node != old {
				continue
			}
			nodes := make([]ParagraphNode, 0, len(repl))
			for _, r := range repl {
				nodes = append(nodes, r)
			}
			p.Nodes = append(p.Nodes[:i], append(nodes, p.Nodes[i+1:]...)...)
			return true
		case *Revision:
			for j, r := range node.Runs {
				if r != old {
					continue
				}
				node.Runs = append(node.Runs[:j], append(append([]*Run(nil), repl...), node.Runs[j+1:]...)...)
				return true
			}
		}
	}
	return false
}

// RemoveRun removes the run from the paragraph. A revision mark left
// empty by the removal is removed as well. It reports whether the run
// was found.
func (p *Paragraph) RemoveRun(run *Run) bool {
	for i, n := range p.Nodes {
		switch node := n.(type) {
		case *Run:
			if node != run {
				continue
			}
			p.Nodes = append(p.Nodes[:i], p.Nodes[i+1:]...)
			return true
		case *Revision:
			for j, r := range node.Runs {
				if r != run {
					continue
				}
				node.Runs = append(node.Runs[:j], node.Runs[j+1:]...)
				if len(node.Runs) == 0 {
					p.Nodes = append(p.Nodes[:i], p.Nodes[i+1:]...)
				}
				return true
			}
		}
	}
	return false
}

// InsertNodes inserts nodes at index i, shifting later nodes right.
func (p *Paragraph) InsertNodes(i int, nodes ...ParagraphNode) {
	if i < 0 {
		i = 0
	}
	if i > len(p.Nodes) {
		i = len(p.Nodes)
	}
	p.Nodes = append(p.Nodes[:i], append(nodes, p.Nodes[i:]...)...)
}

// EachParagraph visits every paragraph in document order, recursing
// into table cells (and tables nested within them).
func (d *Document) EachParagraph(fn func(*Paragraph)) {
	eachParagraph(d.Blocks, fn)
}

func eachParagraph(blocks []Block, fn func(*Paragraph)) {
	for _, b := range blocks {
		switch block := b.(type) {
		case *Paragraph:
			fn(block)
		case *Table:
			for _, row := range block.Rows {
				for _, cell := range row.Cells {
					eachParagraph(cell.Blocks, fn)
				}
			}
		}
	}
}

// Paragraphs returns every paragraph in document order.
func (d *Document) Paragraphs() []*Paragraph {
	var out []*Paragraph
	d.EachParagraph(func(p *Paragraph) {
		out = append(out, p)
	})
	return out
}

// Text returns the document's visible text, paragraphs joined by
// newlines. Used by tests and the skip-if-same property checks.
func (d *Document) Text() string {
	var parts []string
	d.EachParagraph(func(p *Paragraph) {
		parts = append(parts, p.Text())
	})
	return strings.Join(parts, "\n")
}

// Clone deep-copies the document model. The two output variants of a
// review run operate on separate clones, so they may be produced
// concurrently. Source bytes are shared; they are never mutated.
func (d *Document) Clone() *Document {
	c := &Document{
		Blocks:         cloneBlocks(d.Blocks),
		Source:         d.Source,
		RootTag:        d.RootTag,
		nextRevisionID: d.nextRevisionID,
	}
	return c
}

func cloneBlocks(blocks []Block) []Block {
	if blocks == nil {
		return nil
	}
	out := make([]Block, len(blocks))
	for i, b := range blocks {
		switch block := b.(type) {
		case *Paragraph:
			out[i] = cloneParagraph(block)
		case *Table:
			out[i] = cloneTable(block)
		case *RawBlock:
			c := *block
			out[i] = &c
		}
	}
	return out
}

func cloneParagraph(p *Paragraph) *Paragraph {
	c := &Paragraph{StartTag: p.StartTag, Props: p.Props}
	if p.Nodes != nil {
		c.Nodes = make([]ParagraphNode, len(p.Nodes))
		for i, n := range p.Nodes {
			switch node := n.(type) {
			case *Run:
				c.Nodes[i] = node.Clone()
			case *Revision:
				rev := &Revision{Kind: node.Kind, ID: node.ID, Author: node.Author, Date: node.Date}
				rev.Runs = make([]*Run, len(node.Runs))
				for j, r := range node.Runs {
					rev.Runs[j] = r.Clone()
				}
				c.Nodes[i] = rev
			case *RawNode:
				raw := *node
				c.Nodes[i] = &raw
			}
		}
	}
	return c
}

func cloneTable(t *Table) *Table {
	c := &Table{StartTag: t.StartTag, Props: t.Props, Trailing: t.Trailing}
	c.Rows = make([]*TableRow, len(t.Rows))
	for i, row := range t.Rows {
		cr := &TableRow{StartTag: row.StartTag, Props: row.Props}
		cr.Cells = make([]*TableCell, len(row.Cells))
		for j, cell := range row.Cells {
			cr.Cells[j] = &TableCell{
				StartTag: cell.StartTag,
				Props:    cell.Props,
				Blocks:   cloneBlocks(cell.Blocks),
			}
		}
		c.Rows[i] = cr
	}
	return c
}
