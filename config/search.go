package config

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// SearchParams holds every filter of one catalog search.
type SearchParams struct {
	Province  string
	MinPrice  int
	MaxPrice  int
	Currency  string
	Operation string
	Bedrooms  int

	// Optional filters; empty means unset.
	City             string
	NeighborhoodType string
	Neighborhood     string
	UnitType         string
}

// Key returns the deterministic identifier of the search. Two searches with
// the same filter values always produce the same key.
func (p SearchParams) Key() string {
	parts := []string{
		p.Province,
		strconv.Itoa(p.MinPrice),
		strconv.Itoa(p.MaxPrice),
		p.Currency,
		p.Operation,
		strconv.Itoa(p.Bedrooms),
	}
	for _, opt := range []string{p.City, p.NeighborhoodType, p.Neighborhood, p.UnitType} {
		if opt != "" {
			parts = append(parts, opt)
		}
	}
	return strings.Join(parts, "_")
}

// NormalizeName turns a place name into its catalog slug: spaces become
// dashes, letters are lower-cased and diacritics are dropped.
func NormalizeName(name string) string {
	if name == "" {
		return ""
	}
	slug := strings.ToLower(strings.ReplaceAll(name, " ", "-"))
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(t, slug)
	if err != nil {
		return slug
	}
	return out
}
