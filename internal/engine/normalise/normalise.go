// Package normalise canonicalises citation and replacement strings
// before matching. LLM-produced citations routinely arrive with curly
// quotes, typographic dashes, non-breaking spaces and stray emphasis
// markers that the document itself does not contain; folding both sides
// to one canonical form is what makes exact matching viable at all.
package normalise

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// replacer folds typographic variants to their ASCII equivalents.
var replacer = strings.NewReplacer(
	"‘", "'", // left single quote
	"’", "'", // right single quote
	"‚", "'", // single low quote
	"“", `"`, // left double quote
	"”", `"`, // right double quote
	"„", `"`, // double low quote
	"–", "-", // en dash
	"—", "-", // em dash
	"−", "-", // minus sign
	" ", " ", // non-breaking space
	" ", " ", // figure space
	" ", " ", // narrow non-breaking space
	"​", "", // zero-width space
	"\uFEFF", "", // byte order mark
	"…", "...", // ellipsis
)

// Text canonicalises a citation or replacement string. It is pure and
// never fails; empty or whitespace-only input normalises to the empty
// string, which the resolver treats as unmatchable.
func Text(s string) string {
	if s == "" {
		return ""
	}

	s = norm.NFC.String(s)
	s = replacer.Replace(s)
	s = stripMarkup(s)
	return collapseWhitespace(s)
}

// stripMarkup removes stray emphasis markers the analysis layer
// sometimes leaves around quoted phrases. Only markers hugging a word
// boundary are removed; asterisks or underscores inside a token
// (e.g. "5*6", "snake_case") are real content and kept.
func stripMarkup(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	runes := []rune(s)
	for i, r := range runes {
		if r != '*' && r != '_' {
			b.WriteRune(r)
			continue
		}
		prevBoundary := i == 0 || unicode.IsSpace(runes[i-1]) || runes[i-1] == r
		nextBoundary := i == len(runes)-1 || unicode.IsSpace(runes[i+1]) || runes[i+1] == r
		if prevBoundary || nextBoundary {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// collapseWhitespace folds every run of whitespace to a single space
// and trims the ends.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Equal reports whether two strings are identical after normalisation.
// The skip-if-same policy and the unchanged-edit check use this.
func Equal(a, b string) bool {
	return Text(a) == Text(b)
}

// EqualFold reports whether two strings are identical after
// normalisation, ignoring case.
func EqualFold(a, b string) bool {
	return strings.EqualFold(Text(a), Text(b))
}
