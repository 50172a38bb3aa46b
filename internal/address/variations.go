// Package address generates bounded textual variations of street
// addresses to retry against the geocoding provider when the verbatim
// query returns no match.
package address

import (
	"regexp"
	"strings"
)

var (
	suitePattern  = regexp.MustCompile(`(?i),?\s*(Suite|Ste|Unit|Apt|#)\s*[\w-]+`)
	leadingNumber = regexp.MustCompile(`^\d+\s+`)
)

type abbreviation struct {
	pattern     *regexp.Regexp
	replacement string
}

// Expansions apply in declaration order.
var abbreviations = []abbreviation{
	{regexp.MustCompile(`(?i)\bSt\b\.?`), "Street"},
	{regexp.MustCompile(`(?i)\bAve\b\.?`), "Avenue"},
	{regexp.MustCompile(`(?i)\bBlvd\b\.?`), "Boulevard"},
	{regexp.MustCompile(`(?i)\bDr\b\.?`), "Drive"},
	{regexp.MustCompile(`(?i)\bLn\b\.?`), "Lane"},
	{regexp.MustCompile(`(?i)\bRd\b\.?`), "Road"},
	{regexp.MustCompile(`(?i)\bCt\b\.?`), "Court"},
	{regexp.MustCompile(`(?i)\bPl\b\.?`), "Place"},
	{regexp.MustCompile(`(?i)\bPkwy\b\.?`), "Parkway"},
	{regexp.MustCompile(`(?i)\bHwy\b\.?`), "Highway"},
}

// Normalize collapses whitespace so equivalent inputs produce the same
// query and cache key.
func Normalize(addr string) string {
	return strings.Join(strings.Fields(addr), " ")
}

// ExpandAbbreviations rewrites common street-type abbreviations to
// their full form.
func ExpandAbbreviations(addr string) string {
	out := addr
	for _, a := range abbreviations {
		out = a.pattern.ReplaceAllString(out, a.replacement)
	}
	return Normalize(out)
}

// StripUnit removes suite, unit and apartment qualifiers.
func StripUnit(addr string) string {
	return Normalize(suitePattern.ReplaceAllString(addr, ""))
}

// Variations returns the query strings to attempt for one address, in
// fixed priority order starting with the verbatim input. The list is
// bounded and deduplicated; an empty input yields no variations.
func Variations(addr string) []string {
	addr = Normalize(addr)
	if addr == "" {
		return nil
	}

	noUnit := StripUnit(addr)
	candidates := []string{
		addr,
		noUnit,
		ExpandAbbreviations(addr),
		ExpandAbbreviations(noUnit),
		addr + ", USA",
		noUnit + ", USA",
		Normalize(leadingNumber.ReplaceAllString(noUnit, "")),
	}

	seen := make(map[string]struct{}, len(candidates))
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}

	return out
}
