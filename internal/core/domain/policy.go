package domain

// Mode selects how accepted findings are written into the document.
type Mode string

// Review modes.
const (
	// ModeTracked produces Word-native tracked changes: the cited text
	// is wrapped in a deletion marker and the replacement is inserted
	// alongside it, both attributed to the configured author.
	ModeTracked Mode = "tracked"

	// ModeClean overwrites the cited text directly, leaving no markup.
	ModeClean Mode = "clean"
)

// Valid reports whether the mode is one of the known values.
func (m Mode) Valid() bool {
	return m == ModeTracked || m == ModeClean
}

// DefaultFuzzyFloor is the minimum token-overlap similarity a fuzzy
// match must reach before it is accepted.
const DefaultFuzzyFloor = 0.8

// DefaultAuthor is used for tracked-changes attribution when no author
// is configured.
const DefaultAuthor = "Redline"

// Policy carries the per-run matching and editing options.
type Policy struct {
	// IgnoreCase permits the case-insensitive match fallback in clean
	// mode. Tracked mode always attempts the fallback regardless.
	IgnoreCase bool

	// SkipIfSame suppresses clean-mode edits whose matched text already
	// equals the replacement after normalisation.
	SkipIfSame bool

	// Author is the name tracked changes are attributed to.
	Author string

	// FuzzyFloor is the minimum similarity for fuzzy matches.
	// Zero means DefaultFuzzyFloor.
	FuzzyFloor float64
}

// EffectiveAuthor returns the configured author or the default.
func (p Policy) EffectiveAuthor() string {
	if p.Author == "" {
		return DefaultAuthor
	}
	return p.Author
}

// EffectiveFuzzyFloor returns the configured floor or the default.
func (p Policy) EffectiveFuzzyFloor() float64 {
	if p.FuzzyFloor <= 0 {
		return DefaultFuzzyFloor
	}
	return p.FuzzyFloor
}
