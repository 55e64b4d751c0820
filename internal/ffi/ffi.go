package ffi

/*
#cgo pkg-config: libpostal
#include <stdlib.h>
#include <libpostal/libpostal.h>
*/
import "C"

import (
	"unsafe"

	"github.com/postalkit/postalkit/pkg/errors"
)

// AddressComponent is one labeled piece of a parsed address. Both fields
// own their memory; nothing here borrows from the native side.
type AddressComponent struct {
	Label string
	Value string
}

// ParseAddress invokes the native parser and converts its output into
// owned components. Safe for concurrent use once initialization has
// succeeded.
func ParseAddress(address string, options ParseOptions) ([]AddressComponent, error) {
	if err := checkNulBytes("address", address); err != nil {
		return nil, err
	}
	if err := ensureInitialized(); err != nil {
		return nil, err
	}

	cAddress := C.CString(address)
	defer C.free(unsafe.Pointer(cAddress))

	// The hint strings referenced by opts must stay alive until the native
	// call returns; the deferred frees guarantee that.
	opts := C.libpostal_get_address_parser_default_options()
	if options.Language != "" {
		if err := checkNulBytes("language hint", options.Language); err != nil {
			return nil, err
		}
		cLanguage := C.CString(options.Language)
		defer C.free(unsafe.Pointer(cLanguage))
		opts.language = cLanguage
	}
	if options.Country != "" {
		if err := checkNulBytes("country hint", options.Country); err != nil {
			return nil, err
		}
		cCountry := C.CString(options.Country)
		defer C.free(unsafe.Pointer(cCountry))
		opts.country = cCountry
	}

	response := C.libpostal_parse_address(cAddress, opts)
	if response == nil {
		return nil, errors.New(errors.ErrCodeParseFailed,
			"native parser returned no result").WithComponent("ffi").WithOperation("parse")
	}
	defer C.libpostal_address_parser_response_destroy(response)

	n := int(response.num_components)
	labels := unsafe.Slice(response.labels, n)
	values := unsafe.Slice(response.components, n)

	components := make([]AddressComponent, 0, n)
	for i := 0; i < n; i++ {
		if labels[i] == nil || values[i] == nil {
			continue
		}
		components = append(components, AddressComponent{
			Label: lossy(C.GoString(labels[i])),
			Value: lossy(C.GoString(values[i])),
		})
	}
	return components, nil
}

// ExpandAddress invokes the native expander and returns the expansions in
// native order. A null native result means zero expansions, not an error.
func ExpandAddress(input string, options ExpandOptions) ([]string, error) {
	if err := checkNulBytes("input", input); err != nil {
		return nil, err
	}
	if err := ensureInitialized(); err != nil {
		return nil, err
	}

	cInput := C.CString(input)
	defer C.free(unsafe.Pointer(cInput))

	opts := C.libpostal_get_default_options()
	// The language array and its strings must stay alive until the native
	// call returns; the deferred frees guarantee that.
	var cLanguages []*C.char
	if len(options.Languages) > 0 {
		for _, lang := range options.Languages {
			if err := checkNulBytes("language", lang); err != nil {
				return nil, err
			}
			cLang := C.CString(lang)
			defer C.free(unsafe.Pointer(cLang))
			cLanguages = append(cLanguages, cLang)
		}
		opts.languages = &cLanguages[0]
		opts.num_languages = C.size_t(len(cLanguages))
	}
	opts.address_components = C.uint16_t(options.AddressComponents)
	opts.latin_ascii = C.bool(options.LatinASCII)
	opts.transliterate = C.bool(options.Transliterate)
	opts.strip_accents = C.bool(options.StripAccents)
	opts.decompose = C.bool(options.Decompose)
	opts.lowercase = C.bool(options.Lowercase)
	opts.trim_string = C.bool(options.TrimString)
	opts.replace_word_hyphens = C.bool(options.ReplaceWordHyphens)
	opts.delete_word_hyphens = C.bool(options.DeleteWordHyphens)
	opts.replace_numeric_hyphens = C.bool(options.ReplaceNumericHyphens)
	opts.delete_numeric_hyphens = C.bool(options.DeleteNumericHyphens)
	opts.split_alpha_from_numeric = C.bool(options.SplitAlphaFromNumeric)
	opts.delete_final_periods = C.bool(options.DeleteFinalPeriods)
	opts.delete_acronym_periods = C.bool(options.DeleteAcronymPeriods)
	opts.drop_english_possessives = C.bool(options.DropEnglishPossessives)
	opts.delete_apostrophes = C.bool(options.DeleteApostrophes)
	opts.expand_numex = C.bool(options.ExpandNumex)
	opts.roman_numerals = C.bool(options.RomanNumerals)

	var count C.size_t
	expansions := C.libpostal_expand_address(cInput, opts, &count)
	if expansions == nil {
		return []string{}, nil
	}
	defer C.libpostal_expansion_array_destroy(expansions, count)

	raw := unsafe.Slice(expansions, int(count))
	out := make([]string, 0, int(count))
	for _, p := range raw {
		if p == nil {
			continue
		}
		out = append(out, lossy(C.GoString(p)))
	}
	return out, nil
}
