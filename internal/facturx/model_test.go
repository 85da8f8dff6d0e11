package facturx

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmount_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Amount
	}{
		{"number", `12.5`, 12.5},
		{"numeric string", `"12.5"`, 12.5},
		{"integer string", `"1200"`, 1200},
		{"null becomes zero", `null`, 0},
		{"garbage becomes zero", `"n/a"`, 0},
		{"empty string becomes zero", `""`, 0},
		{"negative", `-3.2`, -3.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a Amount
			require.NoError(t, json.Unmarshal([]byte(tt.input), &a))
			assert.Equal(t, tt.want, a)
		})
	}
}

func TestDateInput_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  DateInput
	}{
		{"string kept as-is", `"2026-01-15"`, "2026-01-15"},
		{"epoch number becomes digit string", `1767225600000`, "1767225600000"},
		{"null becomes empty", `null`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d DateInput
			require.NoError(t, json.Unmarshal([]byte(tt.input), &d))
			assert.Equal(t, tt.want, d)
		})
	}
}

func TestDocumentType(t *testing.T) {
	assert.Equal(t, "380", DocumentTypeInvoice.TypeCode())
	assert.Equal(t, "381", DocumentTypeCreditNote.TypeCode())
	assert.Equal(t, "380", DocumentType("unknown").TypeCode())

	assert.Equal(t, "Facture", DocumentTypeInvoice.Title())
	assert.Equal(t, "Avoir", DocumentTypeCreditNote.Title())
}

func TestInvoice_DecodesLooselyTypedPayload(t *testing.T) {
	payload := `{
		"number": "F-2026-003",
		"issueDate": 1767225600000,
		"companyInfo": {"name": "Ma Société", "siret": "12345678900012"},
		"client": {"name": "Client"},
		"items": [
			{"description": "Conseil", "quantity": "2", "unitPrice": "150.50", "vatRate": 20}
		],
		"finalTotalHT": "301",
		"totalVAT": 60.2,
		"finalTotalTTC": null
	}`

	var inv Invoice
	require.NoError(t, json.Unmarshal([]byte(payload), &inv))

	assert.Equal(t, "F-2026-003", inv.Number)
	assert.Equal(t, DateInput("1767225600000"), inv.IssueDate)
	require.Len(t, inv.Items, 1)
	assert.Equal(t, Amount(2), inv.Items[0].Quantity)
	assert.Equal(t, Amount(150.50), inv.Items[0].UnitPrice)
	require.NotNil(t, inv.Items[0].VATRate)
	assert.Equal(t, 20.0, inv.Items[0].VATRate.Float64())
	assert.Equal(t, Amount(301), inv.FinalTotalHT)
	assert.Equal(t, Amount(60.2), inv.TotalVAT)
	assert.Equal(t, Amount(0), inv.FinalTotalTTC)
}
