// Package resolve locates the best matching span for a citation inside
// a paragraph's flat text.
//
// Matching runs three stages in order of preference: exact substring,
// case-insensitive substring (policy-gated), then fuzzy token overlap
// with a similarity floor. Typographic variants (curly quotes, long
// dashes, non-breaking spaces) are folded on both sides through an
// offset-preserving map, so a citation the analysis layer re-typed in
// ASCII still matches the document's typographic original exactly.
//
// Ties are broken deterministically: the leftmost occurrence wins.
package resolve

import (
	"strings"
	"unicode"

	"github.com/custodia-labs/redline-cli/internal/core/domain"
	"github.com/custodia-labs/redline-cli/internal/engine/normalise"
)

// Options gates the matching stages.
type Options struct {
	// IgnoreCase permits the case-insensitive fallback.
	IgnoreCase bool

	// FuzzyFloor is the minimum token-overlap similarity for a fuzzy
	// match. Zero disables fuzzy matching entirely.
	FuzzyFloor float64
}

// Span is the resolver's result, addressed in bytes of the original
// flat text.
type Span struct {
	Start      int
	End        int
	Confidence domain.Confidence
	Score      float64

	// Ambiguous is set when fuzzy matching found a second
	// non-overlapping window with the same best score. The caller
	// records such findings as skipped rather than guessing.
	Ambiguous bool
}

// Resolve finds the citation in the flat text. The citation is
// normalised internally; an empty normalised citation never matches.
func Resolve(flatText, citation string, opts Options) (Span, bool) {
	needle := normalise.Text(citation)
	if needle == "" || flatText == "" {
		return Span{}, false
	}

	// Stage 1: exact, over the typographically folded text.
	folded := fold(flatText, false)
	if idx := strings.Index(folded.text, needle); idx >= 0 {
		start, end := folded.span(idx, idx+len(needle))
		return Span{Start: start, End: end, Confidence: domain.ConfidenceExact, Score: 1.0}, true
	}

	// Stage 2: case-insensitive.
	if opts.IgnoreCase {
		lowered := fold(flatText, true)
		lowNeedle := strings.ToLower(needle)
		if idx := strings.Index(lowered.text, lowNeedle); idx >= 0 {
			start, end := lowered.span(idx, idx+len(lowNeedle))
			return Span{Start: start, End: end, Confidence: domain.ConfidenceCaseInsensitive, Score: 1.0}, true
		}
	}

	// Stage 3: fuzzy token overlap.
	if opts.FuzzyFloor > 0 {
		return resolveFuzzy(flatText, needle, opts.FuzzyFloor)
	}
	return Span{}, false
}

// foldedText is a comparison form of a string whose every byte maps
// back to a byte offset in the original, so matches found in the
// folded form address the original text.
type foldedText struct {
	text string
	// back[i] is the original byte offset owning folded byte i;
	// back[len(text)] is len(original).
	back []int
}

// fold maps typographic variants to ASCII one rune at a time,
// optionally lowercasing, and records the offset map.
func fold(s string, lower bool) foldedText {
	var b strings.Builder
	b.Grow(len(s))
	back := make([]int, 0, len(s)+1)

	for i, r := range s {
		folded := foldRune(r)
		if lower {
			folded = strings.ToLower(folded)
		}
		for j := 0; j < len(folded); j++ {
			back = append(back, i)
		}
		b.WriteString(folded)
	}
	back = append(back, len(s))
	return foldedText{text: b.String(), back: back}
}

// span maps a half-open range in the folded text back to the original.
func (f foldedText) span(start, end int) (int, int) {
	return f.back[start], f.back[end]
}

func foldRune(r rune) string {
	switch r {
	case '‘', '’', '‚':
		return "'"
	case '“', '”', '„':
		return `"`
	case '–', '—', '−':
		return "-"
	case '…':
		return "..."
	}
	if unicode.IsSpace(r) {
		return " "
	}
	return string(r)
}

// token is a whitespace-delimited word with its byte range in the
// original text. The comparison form is folded and lowercased.
type token struct {
	text  string
	start int
	end   int
}

func tokenize(s string) []token {
	var tokens []token
	start := -1
	for i, r := range s {
		if unicode.IsSpace(r) {
			if start >= 0 {
				tokens = append(tokens, newToken(s, start, i))
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		tokens = append(tokens, newToken(s, start, len(s)))
	}
	return tokens
}

func newToken(s string, start, end int) token {
	folded := fold(s[start:end], true)
	return token{text: trimTokenPunct(folded.text), start: start, end: end}
}

// trimTokenPunct strips leading and trailing punctuation so that
// "breach." and "breach" count as the same token during fuzzy scoring.
func trimTokenPunct(s string) string {
	trimmed := strings.TrimFunc(s, unicode.IsPunct)
	if trimmed == "" {
		return s // pure punctuation tokens compare as themselves
	}
	return trimmed
}

// resolveFuzzy slides a window of the citation's token count across the
// flat text's tokens and scores each window by token multiset overlap.
// The best window is accepted only if its score clears the floor; among
// equal scores the leftmost wins, and a second non-overlapping window
// at the same score marks the result ambiguous.
func resolveFuzzy(flatText, needle string, floor float64) (Span, bool) {
	cTokens := tokenize(needle)
	tTokens := tokenize(flatText)
	if len(cTokens) == 0 || len(tTokens) < len(cTokens) {
		return Span{}, false
	}

	want := make(map[string]int, len(cTokens))
	for _, tok := range cTokens {
		want[tok.text]++
	}

	best := Span{}
	found := false
	for i := 0; i+len(cTokens) <= len(tTokens); i++ {
		window := tTokens[i : i+len(cTokens)]
		score := overlapScore(want, window)
		if score < floor {
			continue
		}
		switch {
		case !found || score > best.Score:
			best = Span{
				Start:      window[0].start,
				End:        window[len(window)-1].end,
				Confidence: domain.ConfidenceFuzzy,
				Score:      score,
			}
			found = true
		case score == best.Score && window[0].start >= best.End:
			// A second equally-good candidate beyond the chosen span.
			best.Ambiguous = true
		}
	}
	return best, found
}

// overlapScore computes the multiset intersection of window and
// citation tokens divided by the window length. Window length equals
// the citation's token count, so the score is symmetric in the two
// sides.
func overlapScore(want map[string]int, window []token) float64 {
	remaining := make(map[string]int, len(want))
	for k, v := range want {
		remaining[k] = v
	}
	matched := 0
	for _, tok := range window {
		if remaining[tok.text] > 0 {
			remaining[tok.text]--
			matched++
		}
	}
	return float64(matched) / float64(len(window))
}
