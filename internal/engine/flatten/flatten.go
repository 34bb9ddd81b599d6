// Package flatten builds the addressable character stream for one
// paragraph. Word fragments a paragraph's text unpredictably across
// formatting runs; matching happens against the concatenated stream,
// and the index maps stream offsets back to the owning runs.
//
// A Flat is a read-only snapshot. Any structural mutation of the
// paragraph (run splitting, edit application) invalidates it, so the
// orchestrator re-flattens before every resolution attempt instead of
// patching offsets incrementally.
package flatten

import (
	"strings"

	"github.com/custodia-labs/redline-cli/internal/core/domain"
)

// Segment maps one contiguous range of the flat text to its owning run.
type Segment struct {
	// Run is the owning run.
	Run *domain.Run

	// Start and End delimit the run's text within the flat text,
	// half-open, in bytes.
	Start int
	End   int
}

// Flat is the flattened view of a single paragraph.
type Flat struct {
	text     string
	segments []Segment
}

// Paragraph flattens a paragraph's visible runs in order. Runs inside
// deletion marks carry no visible text and are excluded; runs inside
// insertion marks are included, so text added by an earlier tracked
// edit is visible to later findings. Table cells are flattened as
// independent paragraph scopes by the caller; a Flat never crosses a
// cell boundary.
func Paragraph(p *domain.Paragraph) *Flat {
	var b strings.Builder
	f := &Flat{}
	for _, run := range p.VisibleRuns() {
		if run.Text == "" {
			continue
		}
		start := b.Len()
		b.WriteString(run.Text)
		f.segments = append(f.segments, Segment{Run: run, Start: start, End: b.Len()})
	}
	f.text = b.String()
	return f
}

// Text returns the concatenated visible text.
func (f *Flat) Text() string {
	return f.text
}

// Len returns the flat text length in bytes.
func (f *Flat) Len() int {
	return len(f.text)
}

// Overlapping returns the segments overlapping [start, end) in order.
// It returns nil when the range is empty or out of bounds.
func (f *Flat) Overlapping(start, end int) []Segment {
	if start < 0 || end > len(f.text) || start >= end {
		return nil
	}
	var out []Segment
	for _, seg := range f.segments {
		if seg.End <= start {
			continue
		}
		if seg.Start >= end {
			break
		}
		out = append(out, seg)
	}
	return out
}
