// Package apply performs the actual mutation for one resolved finding.
//
// In tracked mode the matched runs are wrapped in a deletion mark and
// the replacement is added in an insertion mark alongside, both
// attributed to the configured author. In clean mode the matched runs
// are collapsed into a single run holding the replacement. Either way,
// side effects are confined to the runs the splitter isolated; all
// other document content is untouched.
package apply

import (
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/redline-cli/internal/core/domain"
	"github.com/custodia-labs/redline-cli/internal/engine/normalise"
)

// Options carries the mode and policy for one edit.
type Options struct {
	Mode   domain.Mode
	Policy domain.Policy

	// Now is the revision timestamp; the zero value means time.Now.
	Now time.Time
}

func (o Options) now() time.Time {
	if o.Now.IsZero() {
		return time.Now().UTC()
	}
	return o.Now
}

// Edit applies the replacement to the isolated matched runs. The runs
// must all belong to the paragraph and must have been produced by the
// splitter for a single span.
func Edit(doc *domain.Document, p *domain.Paragraph, matched []*domain.Run, replacement string, opts Options) (domain.OutcomeStatus, error) {
	if !opts.Mode.Valid() {
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedMode, opts.Mode)
	}
	if len(matched) == 0 {
		return "", fmt.Errorf("%w: no matched runs", domain.ErrInvalidInput)
	}

	var b strings.Builder
	for _, r := range matched {
		b.WriteString(r.Text)
	}
	matchedText := b.String()

	// A replacement identical to the matched text is a no-op in either
	// mode; tracked marks for it would be pure noise.
	if opts.Policy.SkipIfSame && normalise.Equal(matchedText, replacement) {
		return domain.StatusSkippedUnchanged, nil
	}

	switch opts.Mode {
	case domain.ModeTracked:
		applyTracked(doc, p, matched, matchedText, replacement, opts)
	case domain.ModeClean:
		applyClean(p, matched, replacement)
	}
	return domain.StatusApplied, nil
}

// applyTracked replaces the matched runs with a deletion mark wrapping
// them, immediately followed by an insertion mark holding the
// replacement. A pure insertion (no matched text) omits the deletion
// mark; an empty replacement omits the insertion mark.
func applyTracked(doc *domain.Document, p *domain.Paragraph, matched []*domain.Run, matchedText, replacement string, opts Options) {
	idx := splitHostMarks(p, matched)
	author := opts.Policy.EffectiveAuthor()
	date := opts.now()

	for _, r := range matched {
		p.RemoveRun(r)
	}
	if idx < 0 || idx > len(p.Nodes) {
		idx = len(p.Nodes)
	}

	var nodes []domain.ParagraphNode
	if matchedText != "" {
		nodes = append(nodes, &domain.Revision{
			Kind:   domain.RevisionDeleted,
			ID:     doc.NextRevisionID(),
			Author: author,
			Date:   date,
			Runs:   matched,
		})
	}
	if replacement != "" {
		ins := matched[0].Clone()
		ins.Text = replacement
		nodes = append(nodes, &domain.Revision{
			Kind:   domain.RevisionInserted,
			ID:     doc.NextRevisionID(),
			Author: author,
			Date:   date,
			Runs:   []*domain.Run{ins},
		})
	}
	p.InsertNodes(idx, nodes...)
}

// splitHostMarks prepares the paragraph so the matched runs can be
// lifted out cleanly, and returns the node index where the replacement
// nodes belong. When a boundary run sits part-way inside an existing
// insertion mark, that mark is cut at the boundary into two marks
// sharing its identity; without the cut the new marks would land before
// the whole host mark rather than at the matched text itself.
func splitHostMarks(p *domain.Paragraph, matched []*domain.Run) int {
	first := matched[0]
	idx := p.NodeIndex(first)
	if idx < 0 {
		return len(p.Nodes)
	}
	if rev, ok := p.Nodes[idx].(*domain.Revision); ok {
		if j := revisionRunIndex(rev, first); j > 0 {
			head := &domain.Revision{
				Kind:   rev.Kind,
				ID:     rev.ID,
				Author: rev.Author,
				Date:   rev.Date,
				Runs:   append([]*domain.Run(nil), rev.Runs[:j]...),
			}
			rev.Runs = append([]*domain.Run(nil), rev.Runs[j:]...)
			p.InsertNodes(idx, head)
			idx++
		}
	}

	last := matched[len(matched)-1]
	if li := p.NodeIndex(last); li >= 0 {
		if rev, ok := p.Nodes[li].(*domain.Revision); ok {
			if k := revisionRunIndex(rev, last); k >= 0 && k < len(rev.Runs)-1 {
				tail := &domain.Revision{
					Kind:   rev.Kind,
					ID:     rev.ID,
					Author: rev.Author,
					Date:   rev.Date,
					Runs:   append([]*domain.Run(nil), rev.Runs[k+1:]...),
				}
				rev.Runs = rev.Runs[:k+1]
				p.InsertNodes(li+1, tail)
			}
		}
	}
	return idx
}

func revisionRunIndex(rev *domain.Revision, run *domain.Run) int {
	for i, r := range rev.Runs {
		if r == run {
			return i
		}
	}
	return -1
}

// applyClean overwrites the matched runs with a single run holding the
// replacement, keeping the first matched run's formatting. An empty
// replacement deletes the matched text outright.
func applyClean(p *domain.Paragraph, matched []*domain.Run, replacement string) {
	if replacement == "" {
		for _, r := range matched {
			p.RemoveRun(r)
		}
		return
	}

	merged := matched[0].Clone()
	merged.Text = replacement
	p.ReplaceRun(matched[0], merged)
	for _, r := range matched[1:] {
		p.RemoveRun(r)
	}
}
