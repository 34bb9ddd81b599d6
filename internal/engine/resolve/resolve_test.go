package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/redline-cli/internal/core/domain"
)

func TestResolve_Exact(t *testing.T) {
	text := "The Recipient shall pay €50,000 per breach."

	span, ok := Resolve(text, "pay €50,000 per breach", Options{FuzzyFloor: 0.8})
	require.True(t, ok)
	assert.Equal(t, domain.ConfidenceExact, span.Confidence)
	assert.Equal(t, 1.0, span.Score)
	assert.Equal(t, "pay €50,000 per breach", text[span.Start:span.End])
}

func TestResolve_ExactThroughTypographicVariants(t *testing.T) {
	// The document uses curly quotes and an em dash; the citation
	// arrives re-typed in ASCII.
	text := "the “Confidential Information” — as defined below"

	span, ok := Resolve(text, `the "Confidential Information" - as defined`, Options{})
	require.True(t, ok)
	assert.Equal(t, domain.ConfidenceExact, span.Confidence)
	assert.Equal(t, "the “Confidential Information” — as defined", text[span.Start:span.End])
}

func TestResolve_CaseInsensitive(t *testing.T) {
	text := "The Receiving Party SHALL NOT disclose."

	_, ok := Resolve(text, "shall not disclose", Options{})
	assert.False(t, ok, "case-insensitive fallback must be policy-gated")

	span, ok := Resolve(text, "shall not disclose", Options{IgnoreCase: true})
	require.True(t, ok)
	assert.Equal(t, domain.ConfidenceCaseInsensitive, span.Confidence)
	assert.Equal(t, "SHALL NOT disclose", text[span.Start:span.End])
}

func TestResolve_ExactPreferredOverCaseInsensitive(t *testing.T) {
	text := "shall not disclose, and SHALL NOT disclose"

	span, ok := Resolve(text, "SHALL NOT disclose", Options{IgnoreCase: true})
	require.True(t, ok)
	assert.Equal(t, domain.ConfidenceExact, span.Confidence)
	assert.Equal(t, "SHALL NOT disclose", text[span.Start:span.End])
}

func TestResolve_Fuzzy(t *testing.T) {
	text := "The Recipient shall promptly pay all liquidated damages incurred."

	// One token of five differs ("immediately" vs "promptly").
	span, ok := Resolve(text, "shall immediately pay all liquidated damages", Options{FuzzyFloor: 0.8})
	require.True(t, ok)
	assert.Equal(t, domain.ConfidenceFuzzy, span.Confidence)
	assert.InDelta(t, 5.0/6.0, span.Score, 1e-9)
	assert.False(t, span.Ambiguous)
	assert.Equal(t, "shall promptly pay all liquidated damages", text[span.Start:span.End])
}

func TestResolve_FuzzyFloorNotMet(t *testing.T) {
	text := "This Agreement is governed by the laws of England."

	_, ok := Resolve(text, "payment of royalties within thirty days", Options{FuzzyFloor: 0.8})
	assert.False(t, ok)
}

func TestResolve_FuzzyDisabledByZeroFloor(t *testing.T) {
	text := "shall promptly pay all damages"

	_, ok := Resolve(text, "shall immediately pay all damages", Options{})
	assert.False(t, ok)
}

func TestResolve_FuzzyIgnoresTrailingPunctuation(t *testing.T) {
	text := "The term is five (5) years, unless renewed."

	span, ok := Resolve(text, "term is five (5) years unless", Options{FuzzyFloor: 0.8})
	require.True(t, ok)
	assert.Equal(t, 1.0, span.Score)
}

func TestResolve_LeftmostWins(t *testing.T) {
	text := "pay the fee. Later, pay the fee."

	span, ok := Resolve(text, "pay the fee", Options{FuzzyFloor: 0.8})
	require.True(t, ok)
	assert.Equal(t, domain.ConfidenceExact, span.Confidence)
	assert.Equal(t, 0, span.Start)
}

func TestResolve_FuzzyAmbiguous(t *testing.T) {
	// Two equally-scored windows, neither exact (one token differs in
	// both occurrences).
	text := "recipient must pay the fine today and recipient must pay the fine tomorrow"

	span, ok := Resolve(text, "recipient shall pay the fine", Options{FuzzyFloor: 0.7})
	require.True(t, ok)
	assert.Equal(t, domain.ConfidenceFuzzy, span.Confidence)
	assert.True(t, span.Ambiguous)
	// Leftmost candidate is still the one reported.
	assert.Equal(t, 0, span.Start)
}

func TestResolve_Unmatchable(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		citation string
	}{
		{"empty citation", "some text", ""},
		{"whitespace citation", "some text", "   "},
		{"empty text", "", "some text"},
		{"citation longer than text", "two words", "three whole words here"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := Resolve(tt.text, tt.citation, Options{IgnoreCase: true, FuzzyFloor: 0.5})
			assert.False(t, ok)
		})
	}
}

func TestResolve_Deterministic(t *testing.T) {
	text := "recipient must pay the fine today and recipient must pay the fine tomorrow"
	citation := "recipient shall pay the fine"

	first, ok := Resolve(text, citation, Options{FuzzyFloor: 0.7})
	require.True(t, ok)
	for i := 0; i < 20; i++ {
		again, ok := Resolve(text, citation, Options{FuzzyFloor: 0.7})
		require.True(t, ok)
		assert.Equal(t, first, again)
	}
}

func TestResolve_NormalisedCitationWhitespace(t *testing.T) {
	text := "shall pay proven damages"

	span, ok := Resolve(text, "  shall   pay\tproven damages ", Options{})
	require.True(t, ok)
	assert.Equal(t, domain.ConfidenceExact, span.Confidence)
	assert.Equal(t, text, text[span.Start:span.End])
}

func TestFold_OffsetMap(t *testing.T) {
	s := "a“b" // folded: a"b with the quote shrinking 3 bytes to 1
	f := fold(s, false)

	assert.Equal(t, `a"b`, f.text)
	start, end := f.span(1, 2)
	assert.Equal(t, "“", s[start:end])
}
