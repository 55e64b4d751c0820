package ffi

// Address component bits for ExpandOptions.AddressComponents, matching the
// native libpostal_normalize_components enum.
const (
	AddressNone        uint16 = 0
	AddressAny         uint16 = 1 << 0
	AddressName        uint16 = 1 << 1
	AddressHouseNumber uint16 = 1 << 2
	AddressStreet      uint16 = 1 << 3
	AddressUnit        uint16 = 1 << 4
	AddressLevel       uint16 = 1 << 5
	AddressStaircase   uint16 = 1 << 6
	AddressEntrance    uint16 = 1 << 7
	AddressCategory    uint16 = 1 << 8
	AddressNear        uint16 = 1 << 9
	AddressToponym     uint16 = 1 << 13
	AddressPostalCode  uint16 = 1 << 14
	AddressPOBox       uint16 = 1 << 15
	AddressAll         uint16 = 1<<16 - 1
)

// ParseOptions carries optional hints for address parsing. Empty fields
// leave libpostal in automatic detection mode.
type ParseOptions struct {
	// Language is an ISO 639-1 code hint, e.g. "en".
	Language string

	// Country is an ISO 3166-1 alpha-2 code hint, e.g. "US".
	Country string
}

// ExpandOptions controls address normalization. Field names follow the
// native option struct.
type ExpandOptions struct {
	// Languages restricts expansion to the given ISO 639-1 codes. Empty
	// means automatic detection.
	Languages []string

	AddressComponents      uint16
	LatinASCII             bool
	Transliterate          bool
	StripAccents           bool
	Decompose              bool
	Lowercase              bool
	TrimString             bool
	ReplaceWordHyphens     bool
	DeleteWordHyphens      bool
	ReplaceNumericHyphens  bool
	DeleteNumericHyphens   bool
	SplitAlphaFromNumeric  bool
	DeleteFinalPeriods     bool
	DeleteAcronymPeriods   bool
	DropEnglishPossessives bool
	DeleteApostrophes      bool
	ExpandNumex            bool
	RomanNumerals          bool
}

// DefaultExpandOptions mirrors libpostal's own defaults.
func DefaultExpandOptions() ExpandOptions {
	return ExpandOptions{
		AddressComponents: AddressName | AddressHouseNumber | AddressStreet |
			AddressPOBox | AddressUnit | AddressLevel | AddressEntrance |
			AddressStaircase | AddressPostalCode,
		LatinASCII:             true,
		Transliterate:          true,
		StripAccents:           true,
		Decompose:              true,
		Lowercase:              true,
		TrimString:             true,
		ReplaceWordHyphens:     true,
		DeleteWordHyphens:      true,
		ReplaceNumericHyphens:  false,
		DeleteNumericHyphens:   false,
		SplitAlphaFromNumeric:  true,
		DeleteFinalPeriods:     true,
		DeleteAcronymPeriods:   true,
		DropEnglishPossessives: true,
		DeleteApostrophes:      true,
		ExpandNumex:            true,
		RomanNumerals:          true,
	}
}
