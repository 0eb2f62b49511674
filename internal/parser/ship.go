package parser

import (
	"regexp"
	"strings"
)

// Zone strings encode the ship or location an event happened in, e.g.
// 'ORIG_890Jump_6166775878721' or 'AEGS_Gladius_1234567890123'.
var shipPatterns = []*regexp.Regexp{
	// Manufacturer_ShipName_ID format
	regexp.MustCompile(`(?i)(?:ORIG|AEGS|ANVL|CRUS|MISC|RSI|DRAK|ARGO|ESPR)_([A-Za-z0-9]+)_\d+`),
	// ShipName_ID format, where the id is a long entity id
	regexp.MustCompile(`([A-Za-z][A-Za-z0-9]+)_\d{10,}`),
	// Bare location names
	regexp.MustCompile(`(?i)(Crusader|Hurston|microTech|ArcCorp|Pyro)`),
}

var (
	digitUpperBoundary = regexp.MustCompile(`(\d)([A-Z])`)
	lowerUpperBoundary = regexp.MustCompile(`([a-z])([A-Z])`)
)

// ShipFromZone extracts a readable ship/location name from a zone string.
//
// Examples:
//
//	'ORIG_890Jump_6166775878721' -> '890 Jump'
//	'AEGS_Gladius_1234567890123' -> 'Gladius'
//	'Crusader_4567890'           -> 'Crusader'
//
// Returns "" when nothing readable can be extracted.
func ShipFromZone(zone string) string {
	if zone == "" {
		return ""
	}

	for _, p := range shipPatterns {
		if m := p.FindStringSubmatch(zone); m != nil {
			return formatShipName(m[1])
		}
	}

	// No known pattern; fall back to the first non-numeric underscore token
	// after the leading one.
	parts := strings.Split(zone, "_")
	if len(parts) >= 2 {
		potential := parts[1]
		if potential != "" && !isAllDigits(potential) {
			return potential
		}
	}
	return ""
}

// formatShipName inserts spaces at digit/letter and camel-case boundaries:
// "890Jump" -> "890 Jump", "StarRunner" -> "Star Runner".
func formatShipName(name string) string {
	s := digitUpperBoundary.ReplaceAllString(name, "$1 $2")
	return lowerUpperBoundary.ReplaceAllString(s, "$1 $2")
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
