package facturx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCountryCode(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty defaults to FR", "", "FR"},
		{"whitespace defaults to FR", "   ", "FR"},
		{"two-letter code uppercased", "fr", "FR"},
		{"two-letter code kept", "DE", "DE"},
		{"french name", "France", "FR"},
		{"french name lowercase", "allemagne", "DE"},
		{"name with surrounding spaces", "  Belgique  ", "BE"},
		{"royaume-uni", "Royaume-Uni", "GB"},
		{"unknown name falls back to FR", "Atlantide", "FR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeCountryCode(tt.input))
		})
	}
}

func TestFormatDateXML(t *testing.T) {
	tests := []struct {
		name  string
		input DateInput
		want  string
		ok    bool
	}{
		{"empty is not an error", "", "", true},
		{"blank is not an error", "  ", "", true},
		{"iso date", "2026-01-15", "20260115", true},
		{"rfc3339", "2026-01-15T10:30:00Z", "20260115", true},
		{"iso datetime without zone", "2026-01-15T10:30:00", "20260115", true},
		{"sql datetime", "2026-01-15 10:30:00", "20260115", true},
		{"epoch milliseconds", "1767225600000", "20260101", true},
		{"garbage", "pas-une-date", "", false},
		{"french format unsupported", "15/01/2026", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FormatDateXML(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestSIRENFromSIRET(t *testing.T) {
	assert.Equal(t, "123456789", SIRENFromSIRET("12345678900012"))
	assert.Equal(t, "123456789", SIRENFromSIRET("123456789"))
	assert.Equal(t, "", SIRENFromSIRET("1234"))
	assert.Equal(t, "", SIRENFromSIRET(""))
}
