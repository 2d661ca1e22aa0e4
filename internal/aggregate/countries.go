package aggregate

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

var regionNamer = display.English.Regions()

// NormalizeCountry maps a two-letter ISO country code to its English
// display name ("SA" -> "Saudi Arabia"). Anything that is not a known
// two-letter code passes through untouched, so free-text country guesses
// survive aggregation as-is.
func NormalizeCountry(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if len(trimmed) != 2 {
		return trimmed
	}

	region, err := language.ParseRegion(strings.ToUpper(trimmed))
	if err != nil || !region.IsCountry() {
		return trimmed
	}
	if name := regionNamer.Name(region); name != "" {
		return name
	}
	return trimmed
}
