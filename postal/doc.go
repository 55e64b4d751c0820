// Package postal is the public API for address parsing and normalization
// over libpostal.
//
// The cheapest entry points are the stateless Parser and Normalizer
// facades; Client adds managed data acquisition, metrics, and profiling on
// top of them. All of them share one process-wide native initialization:
// the first parse or normalize call triggers setup, and every later call
// observes the same outcome.
//
//	parser := postal.NewParser().WithCountry(postal.CountryUS)
//	parsed, err := parser.Parse("123 Main St, New York, NY 10001")
package postal
