package postal

import (
	"github.com/postalkit/postalkit/internal/ffi"
)

// NormalizationLevel selects how aggressively input is transformed.
type NormalizationLevel int

const (
	// LevelLight lowercases and trims without transliteration.
	LevelLight NormalizationLevel = iota
	// LevelMedium adds transliteration and unicode decomposition.
	LevelMedium
	// LevelAggressive additionally strips possessives, apostrophes, and
	// expands numeric expressions.
	LevelAggressive
)

// Normalizer is a stateless normalization configuration. With* methods
// return a new configured copy.
type Normalizer struct {
	options ffi.ExpandOptions
}

// NewNormalizer returns a normalizer with libpostal's default expansion
// behavior.
func NewNormalizer() Normalizer {
	return Normalizer{options: ffi.DefaultExpandOptions()}
}

// WithLanguages returns a copy restricted to the given languages instead
// of automatic detection.
func (n Normalizer) WithLanguages(languages ...Language) Normalizer {
	codes := make([]string, len(languages))
	for i, lang := range languages {
		codes[i] = string(lang)
	}
	n.options.Languages = codes
	return n
}

// WithLevel returns a copy configured for the given normalization level.
func (n Normalizer) WithLevel(level NormalizationLevel) Normalizer {
	switch level {
	case LevelLight:
		n.options.Lowercase = true
		n.options.TrimString = true
		n.options.DeleteFinalPeriods = true
		n.options.Transliterate = false
		n.options.Decompose = false
	case LevelMedium:
		n.options.Lowercase = true
		n.options.TrimString = true
		n.options.DeleteFinalPeriods = true
		n.options.DeleteAcronymPeriods = true
		n.options.Transliterate = true
		n.options.Decompose = true
	case LevelAggressive:
		n.options.Lowercase = true
		n.options.TrimString = true
		n.options.DeleteFinalPeriods = true
		n.options.DeleteAcronymPeriods = true
		n.options.DropEnglishPossessives = true
		n.options.DeleteApostrophes = true
		n.options.Transliterate = true
		n.options.Decompose = true
		n.options.ExpandNumex = true
	}
	return n
}

// WithLatinASCII returns a copy with Latin-to-ASCII transliteration
// toggled.
func (n Normalizer) WithLatinASCII(enabled bool) Normalizer {
	n.options.LatinASCII = enabled
	return n
}

// WithLowercase returns a copy with lowercasing toggled.
func (n Normalizer) WithLowercase(enabled bool) Normalizer {
	n.options.Lowercase = enabled
	return n
}

// WithOptions returns a copy using the full expansion option set directly.
func (n Normalizer) WithOptions(options ffi.ExpandOptions) Normalizer {
	n.options = options
	return n
}

// Normalize expands an address string into its normalized variants. Zero
// expansions is a valid result, not an error.
func (n Normalizer) Normalize(input string) (*NormalizedAddress, error) {
	expansions, err := ffi.ExpandAddress(input, n.options)
	if err != nil {
		return nil, err
	}
	return &NormalizedAddress{Original: input, Expansions: expansions}, nil
}

// NormalizeBatch normalizes inputs sequentially, preserving input order.
// The first failure aborts the batch.
func (n Normalizer) NormalizeBatch(inputs []string) ([]*NormalizedAddress, error) {
	results := make([]*NormalizedAddress, len(inputs))
	for i, input := range inputs {
		normalized, err := n.Normalize(input)
		if err != nil {
			return nil, err
		}
		results[i] = normalized
	}
	return results, nil
}

// NormalizedAddress holds an input string and its expansions in the order
// the native library produced them. The order is significant and never
// re-sorted.
type NormalizedAddress struct {
	Original   string
	Expansions []string
}

// Primary returns the first expansion, or "" when there are none.
func (a *NormalizedAddress) Primary() string {
	if len(a.Expansions) == 0 {
		return ""
	}
	return a.Expansions[0]
}

// Alternatives returns every expansion after the primary one.
func (a *NormalizedAddress) Alternatives() []string {
	if len(a.Expansions) <= 1 {
		return nil
	}
	return a.Expansions[1:]
}

// IsEmpty reports whether normalization produced no expansions.
func (a *NormalizedAddress) IsEmpty() bool {
	return len(a.Expansions) == 0
}

// Len returns the number of expansions.
func (a *NormalizedAddress) Len() int {
	return len(a.Expansions)
}
