// Package splitter isolates a matched span onto whole runs.
//
// A resolved span usually starts or ends mid-run. Before an edit can be
// applied, the boundary runs are split so the matched text occupies
// whole, isolated runs; every piece keeps the original run's formatting
// handle, and the paragraph's visible text is unchanged by the split.
package splitter

import (
	"fmt"

	"github.com/custodia-labs/redline-cli/internal/core/domain"
	"github.com/custodia-labs/redline-cli/internal/engine/flatten"
)

// Isolate splits the paragraph's runs at the span boundaries and
// returns the whole runs carrying exactly the matched text, in order.
//
// The flat view must have been built from the same paragraph and must
// not be reused afterwards: splitting shifts run granularity, so the
// caller re-flattens before the next resolution.
func Isolate(p *domain.Paragraph, f *flatten.Flat, start, end int) ([]*domain.Run, error) {
	segments := f.Overlapping(start, end)
	if len(segments) == 0 {
		return nil, fmt.Errorf("%w: [%d,%d) in paragraph of length %d", domain.ErrSpanOutOfRange, start, end, f.Len())
	}

	matched := make([]*domain.Run, 0, len(segments))
	for _, seg := range segments {
		run := seg.Run

		// Matched portion of this run, in run-local byte offsets.
		local := run.Text
		localStart := 0
		if start > seg.Start {
			localStart = start - seg.Start
		}
		localEnd := len(local)
		if end < seg.End {
			localEnd = end - seg.Start
		}

		if localStart == 0 && localEnd == len(local) {
			matched = append(matched, run)
			continue
		}

		pieces := make([]*domain.Run, 0, 3)
		if localStart > 0 {
			prefix := run.Clone()
			prefix.Text = local[:localStart]
			pieces = append(pieces, prefix)
		}
		middle := run.Clone()
		middle.Text = local[localStart:localEnd]
		pieces = append(pieces, middle)
		if localEnd < len(local) {
			suffix := run.Clone()
			suffix.Text = local[localEnd:]
			pieces = append(pieces, suffix)
		}

		if !p.ReplaceRun(run, pieces...) {
			return nil, fmt.Errorf("%w: run not present in paragraph", domain.ErrSpanOutOfRange)
		}
		matched = append(matched, middle)
	}
	return matched, nil
}
