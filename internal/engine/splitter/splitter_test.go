package splitter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/redline-cli/internal/core/domain"
	"github.com/custodia-labs/redline-cli/internal/engine/flatten"
)

func paragraph(texts ...string) *domain.Paragraph {
	p := &domain.Paragraph{}
	for _, t := range texts {
		p.Nodes = append(p.Nodes, &domain.Run{Text: t, Props: "<w:rPr><w:b/></w:rPr>"})
	}
	return p
}

func matchedText(runs []*domain.Run) string {
	var b strings.Builder
	for _, r := range runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

func TestIsolate_MidRunSpan(t *testing.T) {
	p := paragraph("The Recipient shall pay €50,000 per breach.")
	f := flatten.Paragraph(p)
	start := strings.Index(f.Text(), "pay €50,000 per breach")
	end := start + len("pay €50,000 per breach")

	before := p.Text()
	matched, err := Isolate(p, f, start, end)
	require.NoError(t, err)

	assert.Equal(t, "pay €50,000 per breach", matchedText(matched))
	assert.Equal(t, before, p.Text(), "splitting must not change paragraph text")
	assert.Len(t, p.Nodes, 3, "prefix, matched middle, suffix")
}

func TestIsolate_WholeRunSpan(t *testing.T) {
	p := paragraph("prefix ", "matched", " suffix")
	f := flatten.Paragraph(p)

	matched, err := Isolate(p, f, len("prefix "), len("prefix matched"))
	require.NoError(t, err)

	require.Len(t, matched, 1)
	assert.Same(t, p.Nodes[1], matched[0], "a fully covered run is not split")
	assert.Len(t, p.Nodes, 3)
}

func TestIsolate_AcrossRunBoundary(t *testing.T) {
	// A bold toggle mid-phrase: the citation spans two runs.
	p := paragraph("The Recipient shall ", "pay €50,000 per breach.")
	f := flatten.Paragraph(p)
	start := strings.Index(f.Text(), "shall pay")
	end := strings.Index(f.Text(), " per breach")

	before := p.Text()
	matched, err := Isolate(p, f, start, end)
	require.NoError(t, err)

	assert.Equal(t, "shall pay €50,000", matchedText(matched))
	assert.Equal(t, before, p.Text())
	require.Len(t, matched, 2)
	assert.Equal(t, "shall ", matched[0].Text)
	assert.Equal(t, "pay €50,000", matched[1].Text)
}

func TestIsolate_PreservesFormattingHandle(t *testing.T) {
	p := &domain.Paragraph{Nodes: []domain.ParagraphNode{
		&domain.Run{Text: "abcdef", Props: "<w:rPr><w:i/></w:rPr>", StartTag: `<w:r w:rsidR="00AB">`},
	}}
	f := flatten.Paragraph(p)

	matched, err := Isolate(p, f, 2, 4)
	require.NoError(t, err)

	require.Len(t, matched, 1)
	assert.Equal(t, "cd", matched[0].Text)
	for _, n := range p.Nodes {
		run := n.(*domain.Run)
		assert.Equal(t, "<w:rPr><w:i/></w:rPr>", run.Props)
		assert.Equal(t, `<w:r w:rsidR="00AB">`, run.StartTag)
	}
}

func TestIsolate_SpanAtParagraphEdges(t *testing.T) {
	p := paragraph("start middle end")
	f := flatten.Paragraph(p)

	matched, err := Isolate(p, f, 0, len("start"))
	require.NoError(t, err)
	assert.Equal(t, "start", matchedText(matched))
	assert.Equal(t, "start middle end", p.Text())

	// Re-flatten after the mutation; old offsets are invalid.
	f = flatten.Paragraph(p)
	matched, err = Isolate(p, f, len("start middle "), f.Len())
	require.NoError(t, err)
	assert.Equal(t, "end", matchedText(matched))
	assert.Equal(t, "start middle end", p.Text())
}

func TestIsolate_OutOfRange(t *testing.T) {
	p := paragraph("short")
	f := flatten.Paragraph(p)

	tests := []struct {
		name       string
		start, end int
	}{
		{"beyond end", 2, 99},
		{"negative start", -1, 3},
		{"empty span", 3, 3},
		{"inverted", 4, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Isolate(p, f, tt.start, tt.end)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrSpanOutOfRange)
		})
	}
}

func TestIsolate_InsideInsertedRevision(t *testing.T) {
	// Text added by an earlier tracked edit is visible and splittable.
	p := &domain.Paragraph{Nodes: []domain.ParagraphNode{
		&domain.Run{Text: "lead "},
		&domain.Revision{Kind: domain.RevisionInserted, Runs: []*domain.Run{{Text: "inserted words here"}}},
	}}
	f := flatten.Paragraph(p)
	start := strings.Index(f.Text(), "words")
	end := start + len("words")

	matched, err := Isolate(p, f, start, end)
	require.NoError(t, err)
	assert.Equal(t, "words", matchedText(matched))
	assert.Equal(t, "lead inserted words here", p.Text())

	rev := p.Nodes[1].(*domain.Revision)
	assert.Len(t, rev.Runs, 3, "split happens inside the revision mark")
}
