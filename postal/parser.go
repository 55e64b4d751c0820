package postal

import (
	"golang.org/x/sync/errgroup"

	"github.com/postalkit/postalkit/internal/ffi"
)

// Parser is a stateless parse configuration. With* methods return a new
// configured copy, so a Parser can be shared freely across goroutines.
type Parser struct {
	options ffi.ParseOptions
}

// NewParser returns a parser with automatic language and country
// detection.
func NewParser() Parser {
	return Parser{}
}

// WithLanguage returns a copy of the parser hinted to the given language.
func (p Parser) WithLanguage(language Language) Parser {
	p.options.Language = string(language)
	return p
}

// WithCountry returns a copy of the parser hinted to the given country.
func (p Parser) WithCountry(country Country) Parser {
	p.options.Country = string(country)
	return p
}

// WithHints returns a copy of the parser with both hints set at once.
func (p Parser) WithHints(language Language, country Country) Parser {
	p.options.Language = string(language)
	p.options.Country = string(country)
	return p
}

// Parse parses a single address into its named components.
func (p Parser) Parse(address string) (*ParsedAddress, error) {
	components, err := ffi.ParseAddress(address, p.options)
	if err != nil {
		return nil, err
	}
	return FromComponents(components), nil
}

// ParseBatch parses addresses sequentially, preserving input order. The
// first failure aborts the batch.
func (p Parser) ParseBatch(addresses []string) ([]*ParsedAddress, error) {
	results := make([]*ParsedAddress, len(addresses))
	for i, address := range addresses {
		parsed, err := p.Parse(address)
		if err != nil {
			return nil, err
		}
		results[i] = parsed
	}
	return results, nil
}

// ParseBatchParallel parses addresses concurrently with at most workers
// goroutines, preserving input order in the results. Native parse calls
// are independent and thread-safe once initialization has succeeded, so
// they can run in parallel. workers < 1 means one goroutine per address.
func (p Parser) ParseBatchParallel(addresses []string, workers int) ([]*ParsedAddress, error) {
	results := make([]*ParsedAddress, len(addresses))

	var g errgroup.Group
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, address := range addresses {
		i, address := i, address
		g.Go(func() error {
			parsed, err := p.Parse(address)
			if err != nil {
				return err
			}
			results[i] = parsed
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// ParsedAddress holds the named component slots libpostal can label, plus
// an overflow list for values with unrecognized labels.
type ParsedAddress struct {
	HouseNumber   string
	Road          string
	Unit          string
	Level         string
	Staircase     string
	Entrance      string
	POBox         string
	Postcode      string
	Suburb        string
	City          string
	CityDistrict  string
	Island        string
	State         string
	StateDistrict string
	CountryRegion string
	Country       string
	WorldRegion   string
	Category      string
	Near          string
	Toponym       string

	// Other collects values whose labels match no named slot.
	Other []string
}

// FromComponents folds labeled components into the named slots. A repeated
// label overwrites the slot, so the last occurrence wins.
func FromComponents(components []ffi.AddressComponent) *ParsedAddress {
	parsed := &ParsedAddress{}
	for _, c := range components {
		switch c.Label {
		case "house_number":
			parsed.HouseNumber = c.Value
		case "road":
			parsed.Road = c.Value
		case "unit":
			parsed.Unit = c.Value
		case "level":
			parsed.Level = c.Value
		case "staircase":
			parsed.Staircase = c.Value
		case "entrance":
			parsed.Entrance = c.Value
		case "po_box":
			parsed.POBox = c.Value
		case "postcode":
			parsed.Postcode = c.Value
		case "suburb":
			parsed.Suburb = c.Value
		case "city":
			parsed.City = c.Value
		case "city_district":
			parsed.CityDistrict = c.Value
		case "island":
			parsed.Island = c.Value
		case "state":
			parsed.State = c.Value
		case "state_district":
			parsed.StateDistrict = c.Value
		case "country_region":
			parsed.CountryRegion = c.Value
		case "country":
			parsed.Country = c.Value
		case "world_region":
			parsed.WorldRegion = c.Value
		case "category":
			parsed.Category = c.Value
		case "near":
			parsed.Near = c.Value
		case "toponym":
			parsed.Toponym = c.Value
		default:
			parsed.Other = append(parsed.Other, c.Value)
		}
	}
	return parsed
}

// Components returns the populated named slots as a label-to-value map.
// Overflow values are not included since their labels are unknown.
func (a *ParsedAddress) Components() map[string]string {
	out := map[string]string{}
	for label, value := range a.slots() {
		if value != "" {
			out[label] = value
		}
	}
	return out
}

// IsEmpty reports whether no slot is set and the overflow list is empty.
func (a *ParsedAddress) IsEmpty() bool {
	if len(a.Other) > 0 {
		return false
	}
	for _, value := range a.slots() {
		if value != "" {
			return false
		}
	}
	return true
}

func (a *ParsedAddress) slots() map[string]string {
	return map[string]string{
		"house_number":   a.HouseNumber,
		"road":           a.Road,
		"unit":           a.Unit,
		"level":          a.Level,
		"staircase":      a.Staircase,
		"entrance":       a.Entrance,
		"po_box":         a.POBox,
		"postcode":       a.Postcode,
		"suburb":         a.Suburb,
		"city":           a.City,
		"city_district":  a.CityDistrict,
		"island":         a.Island,
		"state":          a.State,
		"state_district": a.StateDistrict,
		"country_region": a.CountryRegion,
		"country":        a.Country,
		"world_region":   a.WorldRegion,
		"category":       a.Category,
		"near":           a.Near,
		"toponym":        a.Toponym,
	}
}
