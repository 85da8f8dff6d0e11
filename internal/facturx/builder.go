package facturx

import (
	"encoding/xml"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Mandatory French legal notes (BR-FR-05/06/07), always emitted in this order.
const (
	noteLatePenalty = "En cas de retard de paiement, application d'une pénalité égale à 3 fois le taux d'intérêt légal (article L441-10 du Code de commerce)."
	noteRecoveryFee = "Indemnité forfaitaire pour frais de recouvrement en cas de retard de paiement : 40 euros (article D441-5 du Code de commerce)."
	noteNoDiscount  = "Pas d'escompte accordé pour paiement anticipé."

	noteVATOnDebits = "Option pour le paiement de la TVA d'après les débits."

	// Seller flag that triggers the VAT-on-debits note.
	VATPaymentConditionDebits = "DEBITS"
)

// operationTypeLabels resolves operation codes to the human note label.
// Unknown codes pass their raw value through.
var operationTypeLabels = map[string]string{
	OperationTypeGoods:    "Livraison de biens",
	OperationTypeServices: "Prestation de services",
	OperationTypeMixed:    "Mixte - Livraison de biens et prestation de services",
}

var hundred = decimal.NewFromInt(100)

// Builder produces Factur-X CII XML. It is stateless apart from the logger
// and safe for concurrent use; Build is deterministic for identical input.
type Builder struct {
	logger *zap.Logger
}

// NewBuilder creates a Builder.
func NewBuilder(logger *zap.Logger) *Builder {
	return &Builder{logger: logger}
}

// Build renders the invoice as an EN16931-profile CrossIndustryInvoice
// document. Missing optional fields degrade to empty elements; required
// fields are the pre-flight validator's concern, not this function's.
func (b *Builder) Build(inv *Invoice, docType DocumentType) (string, error) {
	doc := &ciiDocument{
		NsRSM:   nsRSM,
		NsQDT:   nsQDT,
		NsRAM:   nsRAM,
		NsUDT:   nsUDT,
		Context: ciiExchangedDocumentContext{GuidelineID: guidelineEN16931},
		Document: ciiExchangedDocument{
			ID:            inv.Number,
			TypeCode:      docType.TypeCode(),
			IssueDateTime: b.formatDate(inv.IssueDate),
			IncludedNotes: buildNotes(inv),
		},
	}

	breakdown := computeVATBreakdown(inv.Items)

	doc.Transaction = ciiTradeTransaction{
		LineItems: buildLineItems(inv.Items),
		Agreement: ciiTradeAgreement{
			BuyerReference: inv.PurchaseOrderNumber,
			Seller:         buildTradeParty(inv.CompanyInfo),
			Buyer:          buildTradeParty(inv.Client),
		},
		Delivery:   buildDelivery(inv.Shipping),
		Settlement: b.buildSettlement(inv, breakdown),
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal cross industry invoice: %w", err)
	}
	return xml.Header + string(out), nil
}

// formatDate wraps normalization with the operator-facing warning hook.
// Invalid input produces an empty field, never an error.
func (b *Builder) formatDate(d DateInput) ciiDate {
	value, ok := FormatDateXML(d)
	if !ok {
		b.logger.Warn("invalid date in Factur-X input, emitting empty field",
			zap.String("value", string(d)))
	}
	return ciiDate{DateTimeString: ciiDateTimeString{Format: "102", Value: value}}
}

// buildNotes assembles the document-level notes: the three mandatory legal
// clauses first, then the conditional ones in fixed order.
func buildNotes(inv *Invoice) []ciiNote {
	notes := []ciiNote{
		{Content: noteLatePenalty},
		{Content: noteRecoveryFee},
		{Content: noteNoDiscount},
	}

	if inv.CompanyInfo.VATPaymentCondition == VATPaymentConditionDebits {
		notes = append(notes, ciiNote{Content: noteVATOnDebits})
	}
	if inv.HeaderNotes != "" {
		notes = append(notes, ciiNote{Content: inv.HeaderNotes})
	}
	if inv.FooterNotes != "" {
		notes = append(notes, ciiNote{Content: inv.FooterNotes})
	}
	if inv.OperationType != "" {
		label, ok := operationTypeLabels[inv.OperationType]
		if !ok {
			label = inv.OperationType
		}
		notes = append(notes, ciiNote{Content: "Type d'opération : " + label})
	}
	return notes
}

// lineNetTotal computes one line's net total: quantity × unit price, scaled
// by the progress percentage, then discounted. Percentage discounts are
// clamped at 100 and fixed discounts floored at zero, so the result is never
// negative. The VAT breakdown reuses this exact computation.
func lineNetTotal(li *LineItem) decimal.Decimal {
	total := decimal.NewFromFloat(li.Quantity.Float64()).
		Mul(decimal.NewFromFloat(li.UnitPrice.Float64()))

	total = total.Mul(decimal.NewFromFloat(li.EffectiveProgress())).Div(hundred)

	if li.Discount > 0 {
		discount := decimal.NewFromFloat(li.Discount.Float64())
		if li.DiscountType == DiscountTypePercentage {
			if discount.GreaterThan(hundred) {
				discount = hundred
			}
			total = total.Mul(hundred.Sub(discount)).Div(hundred)
		} else {
			total = total.Sub(discount)
			if total.IsNegative() {
				total = decimal.Zero
			}
		}
	}
	return total
}

// vatCategoryCode is "Z" (zero-rated) when the rate is 0, "S" otherwise.
func vatCategoryCode(rate decimal.Decimal) string {
	if rate.IsZero() {
		return "Z"
	}
	return "S"
}

func buildLineItems(items []LineItem) []ciiLineItem {
	lines := make([]ciiLineItem, 0, len(items))
	for i := range items {
		li := &items[i]
		rate := decimal.NewFromFloat(li.EffectiveVATRate())

		lines = append(lines, ciiLineItem{
			LineID:       fmt.Sprintf("%d", i+1),
			ProductName:  li.Description,
			ChargeAmount: decimal.NewFromFloat(li.UnitPrice.Float64()).StringFixed(2),
			BilledQuantity: ciiQuantity{
				UnitCode: "C62",
				Value:    decimal.NewFromFloat(li.Quantity.Float64()).StringFixed(2),
			},
			Settlement: ciiLineSettlement{
				TradeTax: ciiTradeTax{
					TypeCode:              "VAT",
					CategoryCode:          vatCategoryCode(rate),
					RateApplicablePercent: rate.String(),
				},
				LineTotalAmount: lineNetTotal(li).StringFixed(2),
			},
		})
	}
	return lines
}

// vatBucket aggregates the taxable base for one distinct VAT rate.
type vatBucket struct {
	rate            decimal.Decimal
	base            decimal.Decimal
	exemptionReason string
}

// computeVATBreakdown buckets line net totals by distinct VAT rate, in order
// of first appearance. For a zero rate, the exemption reason comes from the
// first zero-rated item carrying a non-empty exemption text; differing texts
// on later lines are ignored (known limitation, kept from the source).
func computeVATBreakdown(items []LineItem) []*vatBucket {
	var buckets []*vatBucket
	index := make(map[string]*vatBucket)

	for i := range items {
		li := &items[i]
		rate := decimal.NewFromFloat(li.EffectiveVATRate())
		key := rate.String()

		bucket, ok := index[key]
		if !ok {
			bucket = &vatBucket{rate: rate}
			index[key] = bucket
			buckets = append(buckets, bucket)
		}
		bucket.base = bucket.base.Add(lineNetTotal(li))

		if rate.IsZero() && bucket.exemptionReason == "" && li.VATExemptionText != "" {
			bucket.exemptionReason = li.VATExemptionText
		}
	}
	return buckets
}

// amount is always base × rate / 100; no independent rounding beyond the
// final 2-decimal rendering.
func (v *vatBucket) amount() decimal.Decimal {
	return v.base.Mul(v.rate).Div(hundred)
}

// buildTradeParty maps a seller or buyer onto a CII trade party. A present
// SIRET switches on the legal-organization (SIREN, scheme 0002) and
// electronic-address (SIRET, scheme 0009) blocks.
func buildTradeParty(p Party) ciiTradeParty {
	tp := ciiTradeParty{Name: p.Name}

	if p.SIRET != "" {
		tp.LegalOrganization = &ciiLegalOrg{
			ID: ciiSchemedID{SchemeID: "0002", Value: SIRENFromSIRET(p.SIRET)},
		}
		tp.URICommunication = &ciiURICommunication{
			URIID: ciiSchemedID{SchemeID: "0009", Value: p.SIRET},
		}
	}

	addr := p.Address
	if addr == nil {
		addr = &Address{}
	}
	tp.PostalAddress = ciiAddress{
		PostcodeCode: addr.PostalCode,
		LineOne:      addr.Street,
		CityName:     addr.City,
		CountryID:    NormalizeCountryCode(addr.Country),
	}

	if p.VATNumber != "" {
		tp.TaxRegistration = &ciiTaxRegistration{
			ID: ciiSchemedID{SchemeID: "VA", Value: p.VATNumber},
		}
	}
	return tp
}

// buildDelivery emits the ship-to block only when shipping is billed and an
// address was supplied.
func buildDelivery(s *Shipping) ciiTradeDelivery {
	if s == nil || !s.BillShipping || s.ShippingAddress == nil {
		return ciiTradeDelivery{}
	}
	a := s.ShippingAddress
	return ciiTradeDelivery{
		ShipTo: &ciiShipToParty{
			PostalAddress: ciiShipToAddress{
				PostcodeCode: a.PostalCode,
				LineOne:      a.Street,
				CityName:     a.City,
				CountryID:    NormalizeCountryCode(a.Country),
			},
		},
	}
}

func (b *Builder) buildSettlement(inv *Invoice, breakdown []*vatBucket) ciiTradeSettlement {
	settlement := ciiTradeSettlement{
		InvoiceCurrencyCode: "EUR",
		PaymentMeans:        buildPaymentMeans(inv.BankDetails),
	}

	for _, bucket := range breakdown {
		settlement.TradeTaxes = append(settlement.TradeTaxes, ciiTradeTax{
			CalculatedAmount:      bucket.amount().StringFixed(2),
			TypeCode:              "VAT",
			ExemptionReason:       bucket.exemptionReason,
			BasisAmount:           bucket.base.StringFixed(2),
			CategoryCode:          vatCategoryCode(bucket.rate),
			RateApplicablePercent: bucket.rate.String(),
		})
	}

	if !inv.DueDate.IsZero() {
		settlement.PaymentTerms = &ciiPaymentTerms{DueDateDateTime: b.formatDate(inv.DueDate)}
	}

	// Header totals are the caller's figures, passed through verbatim.
	totalHT := decimal.NewFromFloat(inv.FinalTotalHT.Float64()).StringFixed(2)
	settlement.Summation = ciiMonetarySummary{
		LineTotalAmount:     totalHT,
		TaxBasisTotalAmount: totalHT,
		TaxTotalAmount: ciiCurrencyAmount{
			CurrencyID: "EUR",
			Value:      decimal.NewFromFloat(inv.TotalVAT.Float64()).StringFixed(2),
		},
		GrandTotalAmount: decimal.NewFromFloat(inv.FinalTotalTTC.Float64()).StringFixed(2),
		DuePayableAmount: decimal.NewFromFloat(inv.FinalTotalTTC.Float64()).StringFixed(2),
	}
	return settlement
}

// buildPaymentMeans always emits type code 30 (credit transfer); the account
// block appears only with an IBAN, the BIC only alongside it.
func buildPaymentMeans(bank *BankDetails) ciiPaymentMeans {
	means := ciiPaymentMeans{TypeCode: "30"}
	if bank != nil && bank.IBAN != "" {
		means.PayeeAccount = &ciiCreditorAccount{
			IBANID:        bank.IBAN,
			ProprietaryID: bank.BIC,
		}
	}
	return means
}
