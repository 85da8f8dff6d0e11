// Package facturx generates EN16931-profile Factur-X (CII) XML documents
// from invoice and credit-note data, for embedding into PDF invoices as
// required by the French 2026 B2B e-invoicing reform.
package facturx

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// DocumentType selects the UNTDID 1001 type code of the generated document.
type DocumentType string

const (
	DocumentTypeInvoice    DocumentType = "invoice"
	DocumentTypeCreditNote DocumentType = "creditNote"
)

// TypeCode returns "381" for credit notes and "380" for everything else.
func (t DocumentType) TypeCode() string {
	if t == DocumentTypeCreditNote {
		return "381"
	}
	return "380"
}

// Title returns the French document label used for PDF metadata.
func (t DocumentType) Title() string {
	if t == DocumentTypeCreditNote {
		return "Avoir"
	}
	return "Facture"
}

// Amount is a monetary or numeric value that tolerates the loosely typed
// payloads sent by the web client: JSON numbers, numeric strings, null and
// garbage all decode without error (invalid input becomes 0).
type Amount float64

// UnmarshalJSON implements the parse-or-zero policy for numeric input.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*a = 0
		return nil
	}
	s = strings.Trim(s, `"`)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*a = 0
		return nil
	}
	*a = Amount(f)
	return nil
}

// Float64 returns the underlying value.
func (a Amount) Float64() float64 { return float64(a) }

// DateInput carries a date in whatever representation the caller used: an
// ISO string, a digit-only epoch-millisecond string, or an epoch-millisecond
// number. Normalization to YYYYMMDD happens at build time so that invalid
// input degrades to an empty XML field instead of a decode error.
type DateInput string

// UnmarshalJSON keeps strings as-is and renders numbers as digit strings.
func (d *DateInput) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		*d = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*d = DateInput(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*d = DateInput(n.String())
	return nil
}

// IsZero reports whether no date was supplied.
func (d DateInput) IsZero() bool { return strings.TrimSpace(string(d)) == "" }

// Address is a postal address. Country accepts either an ISO-3166 alpha-2
// code or a free-text French-market country name.
type Address struct {
	Street     string `json:"street,omitempty"`
	City       string `json:"city,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country,omitempty"`
}

// Party is either the seller (companyInfo) or the buyer (client).
// VATPaymentCondition is only meaningful on the seller side.
type Party struct {
	Name                string   `json:"name"`
	Address             *Address `json:"address,omitempty"`
	SIRET               string   `json:"siret,omitempty"`
	VATNumber           string   `json:"vatNumber,omitempty"`
	VATPaymentCondition string   `json:"vatPaymentCondition,omitempty"`
}

// BankDetails identifies the seller's account for credit-transfer payment.
type BankDetails struct {
	IBAN string `json:"iban,omitempty"`
	BIC  string `json:"bic,omitempty"`
}

// Shipping controls the optional ship-to block.
type Shipping struct {
	BillShipping    bool     `json:"billShipping"`
	ShippingAddress *Address `json:"shippingAddress,omitempty"`
}

// Discount type values.
const DiscountTypePercentage = "PERCENTAGE"

// Operation type codes surfaced as a labeled document note.
const (
	OperationTypeGoods    = "LB"
	OperationTypeServices = "PS"
	OperationTypeMixed    = "LBPS"
)

// LineItem is one invoice line. VATRate defaults to 20 and
// ProgressPercentage to 100 when absent.
type LineItem struct {
	Description        string  `json:"description"`
	Quantity           Amount  `json:"quantity"`
	UnitPrice          Amount  `json:"unitPrice"`
	VATRate            *Amount `json:"vatRate,omitempty"`
	ProgressPercentage *Amount `json:"progressPercentage,omitempty"`
	Discount           Amount  `json:"discount,omitempty"`
	DiscountType       string  `json:"discountType,omitempty"`
	VATExemptionText   string  `json:"vatExemptionText,omitempty"`
}

// EffectiveVATRate returns the line's VAT rate, defaulting to 20%.
func (li *LineItem) EffectiveVATRate() float64 {
	if li.VATRate == nil {
		return 20
	}
	return li.VATRate.Float64()
}

// EffectiveProgress returns the progress percentage, defaulting to 100.
func (li *LineItem) EffectiveProgress() float64 {
	if li.ProgressPercentage == nil {
		return 100
	}
	return li.ProgressPercentage.Float64()
}

// Invoice is the input record for one generation call. Header totals are
// taken verbatim from the caller; the builder never recomputes them from
// the lines.
type Invoice struct {
	Number              string       `json:"number"`
	IssueDate           DateInput    `json:"issueDate"`
	DueDate             DateInput    `json:"dueDate,omitempty"`
	CompanyInfo         Party        `json:"companyInfo"`
	Client              Party        `json:"client"`
	Items               []LineItem   `json:"items"`
	FinalTotalHT        Amount       `json:"finalTotalHT"`
	TotalVAT            Amount       `json:"totalVAT"`
	FinalTotalTTC       Amount       `json:"finalTotalTTC"`
	BankDetails         *BankDetails `json:"bankDetails,omitempty"`
	Shipping            *Shipping    `json:"shipping,omitempty"`
	HeaderNotes         string       `json:"headerNotes,omitempty"`
	FooterNotes         string       `json:"footerNotes,omitempty"`
	PurchaseOrderNumber string       `json:"purchaseOrderNumber,omitempty"`
	OperationType       string       `json:"operationType,omitempty"`
}

// ValidationResult is the outcome of the pre-flight check.
type ValidationResult struct {
	IsValid bool     `json:"is_valid"`
	Errors  []string `json:"errors"`
}
