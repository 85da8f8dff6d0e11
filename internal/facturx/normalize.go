package facturx

import (
	"strconv"
	"strings"
	"time"
)

// countryCodes maps common French-market country names (lowercased, trimmed)
// to ISO-3166 alpha-2 codes. The seller market is French, so anything
// unrecognized deliberately falls back to FR.
var countryCodes = map[string]string{
	"france":      "FR",
	"allemagne":   "DE",
	"belgique":    "BE",
	"espagne":     "ES",
	"italie":      "IT",
	"luxembourg":  "LU",
	"pays-bas":    "NL",
	"portugal":    "PT",
	"royaume-uni": "GB",
	"suisse":      "CH",
}

// NormalizeCountryCode turns a 2-letter code or a French country name into an
// ISO-3166 alpha-2 code. Missing or unrecognized input yields "FR"; that is
// business policy, not an error.
func NormalizeCountryCode(country string) string {
	c := strings.TrimSpace(country)
	if c == "" {
		return "FR"
	}
	if len(c) == 2 {
		return strings.ToUpper(c)
	}
	if code, ok := countryCodes[strings.ToLower(c)]; ok {
		return code
	}
	return "FR"
}

// dateLayouts are tried in order for non-epoch date strings.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// FormatDateXML normalizes a date input to the UN/CEFACT format-102 string
// YYYYMMDD. Digit-only input is an epoch timestamp in milliseconds (the web
// client sends JS Date.getTime() values). The second return value is false
// only when a non-empty input could not be parsed; empty input is not an
// error and yields an empty string.
func FormatDateXML(d DateInput) (string, bool) {
	s := strings.TrimSpace(string(d))
	if s == "" {
		return "", true
	}

	if isDigits(s) {
		ms, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return "", false
		}
		return time.UnixMilli(ms).UTC().Format("20060102"), true
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("20060102"), true
		}
	}
	return "", false
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// SIRENFromSIRET derives the 9-digit SIREN from a 14-digit SIRET. An absent
// SIRET yields an absent SIREN, which suppresses the legal-organization and
// electronic-address blocks for that party.
func SIRENFromSIRET(siret string) string {
	if len(siret) < 9 {
		return ""
	}
	return siret[:9]
}
