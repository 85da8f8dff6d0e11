package facturx

import "encoding/xml"

// UN/CEFACT Cross Industry Invoice namespaces and the Factur-X EN16931
// guideline identifier.
const (
	nsRSM = "urn:un:unece:uncefact:data:standard:CrossIndustryInvoice:100"
	nsQDT = "urn:un:unece:uncefact:data:standard:QualifiedDataType:100"
	nsRAM = "urn:un:unece:uncefact:data:standard:ReusableAggregateBusinessInformationEntity:100"
	nsUDT = "urn:un:unece:uncefact:data:standard:UnqualifiedDataType:100"

	guidelineEN16931 = "urn:cen.eu:en16931:2017#compliant#urn:factur-x.eu:1p0:en16931"
)

// Typed mirror of the CII document. Field order follows the schema sequence;
// reordering fields here changes the wire output.
type ciiDocument struct {
	XMLName xml.Name `xml:"rsm:CrossIndustryInvoice"`
	NsRSM   string   `xml:"xmlns:rsm,attr"`
	NsQDT   string   `xml:"xmlns:qdt,attr"`
	NsRAM   string   `xml:"xmlns:ram,attr"`
	NsUDT   string   `xml:"xmlns:udt,attr"`

	Context     ciiExchangedDocumentContext `xml:"rsm:ExchangedDocumentContext"`
	Document    ciiExchangedDocument        `xml:"rsm:ExchangedDocument"`
	Transaction ciiTradeTransaction         `xml:"rsm:SupplyChainTradeTransaction"`
}

type ciiExchangedDocumentContext struct {
	GuidelineID string `xml:"ram:GuidelineSpecifiedDocumentContextParameter>ram:ID"`
}

type ciiExchangedDocument struct {
	ID            string    `xml:"ram:ID"`
	TypeCode      string    `xml:"ram:TypeCode"`
	IssueDateTime ciiDate   `xml:"ram:IssueDateTime"`
	IncludedNotes []ciiNote `xml:"ram:IncludedNote"`
}

type ciiNote struct {
	Content string `xml:"ram:Content"`
}

type ciiDate struct {
	DateTimeString ciiDateTimeString `xml:"udt:DateTimeString"`
}

type ciiDateTimeString struct {
	Format string `xml:"format,attr"`
	Value  string `xml:",chardata"`
}

type ciiTradeTransaction struct {
	LineItems  []ciiLineItem      `xml:"ram:IncludedSupplyChainTradeLineItem"`
	Agreement  ciiTradeAgreement  `xml:"ram:ApplicableHeaderTradeAgreement"`
	Delivery   ciiTradeDelivery   `xml:"ram:ApplicableHeaderTradeDelivery"`
	Settlement ciiTradeSettlement `xml:"ram:ApplicableHeaderTradeSettlement"`
}

type ciiLineItem struct {
	LineID         string            `xml:"ram:AssociatedDocumentLineDocument>ram:LineID"`
	ProductName    string            `xml:"ram:SpecifiedTradeProduct>ram:Name"`
	ChargeAmount   string            `xml:"ram:SpecifiedLineTradeAgreement>ram:NetPriceProductTradePrice>ram:ChargeAmount"`
	BilledQuantity ciiQuantity       `xml:"ram:SpecifiedLineTradeDelivery>ram:BilledQuantity"`
	Settlement     ciiLineSettlement `xml:"ram:SpecifiedLineTradeSettlement"`
}

type ciiQuantity struct {
	UnitCode string `xml:"unitCode,attr"`
	Value    string `xml:",chardata"`
}

type ciiLineSettlement struct {
	TradeTax        ciiTradeTax `xml:"ram:ApplicableTradeTax"`
	LineTotalAmount string      `xml:"ram:SpecifiedTradeSettlementLineMonetarySummation>ram:LineTotalAmount"`
}

// ciiTradeTax serves both the per-line tax block (no amounts) and the header
// VAT breakdown (with amounts). Schema element order: CalculatedAmount,
// TypeCode, ExemptionReason, BasisAmount, CategoryCode, RateApplicablePercent.
type ciiTradeTax struct {
	CalculatedAmount      string `xml:"ram:CalculatedAmount,omitempty"`
	TypeCode              string `xml:"ram:TypeCode"`
	ExemptionReason       string `xml:"ram:ExemptionReason,omitempty"`
	BasisAmount           string `xml:"ram:BasisAmount,omitempty"`
	CategoryCode          string `xml:"ram:CategoryCode"`
	RateApplicablePercent string `xml:"ram:RateApplicablePercent"`
}

type ciiTradeAgreement struct {
	BuyerReference string        `xml:"ram:BuyerReference,omitempty"`
	Seller         ciiTradeParty `xml:"ram:SellerTradeParty"`
	Buyer          ciiTradeParty `xml:"ram:BuyerTradeParty"`
}

type ciiTradeParty struct {
	Name              string               `xml:"ram:Name"`
	LegalOrganization *ciiLegalOrg         `xml:"ram:SpecifiedLegalOrganization,omitempty"`
	PostalAddress     ciiAddress           `xml:"ram:PostalTradeAddress"`
	URICommunication  *ciiURICommunication `xml:"ram:URIUniversalCommunication,omitempty"`
	TaxRegistration   *ciiTaxRegistration  `xml:"ram:SpecifiedTaxRegistration,omitempty"`
}

type ciiLegalOrg struct {
	ID ciiSchemedID `xml:"ram:ID"`
}

type ciiURICommunication struct {
	URIID ciiSchemedID `xml:"ram:URIID"`
}

type ciiTaxRegistration struct {
	ID ciiSchemedID `xml:"ram:ID"`
}

type ciiSchemedID struct {
	SchemeID string `xml:"schemeID,attr"`
	Value    string `xml:",chardata"`
}

type ciiAddress struct {
	PostcodeCode string `xml:"ram:PostcodeCode"`
	LineOne      string `xml:"ram:LineOne"`
	CityName     string `xml:"ram:CityName"`
	CountryID    string `xml:"ram:CountryID"`
}

type ciiTradeDelivery struct {
	ShipTo *ciiShipToParty `xml:"ram:ShipToTradeParty,omitempty"`
}

type ciiShipToParty struct {
	PostalAddress ciiShipToAddress `xml:"ram:PostalTradeAddress"`
}

// Ship-to fields are individually optional; country is always rendered.
type ciiShipToAddress struct {
	PostcodeCode string `xml:"ram:PostcodeCode,omitempty"`
	LineOne      string `xml:"ram:LineOne,omitempty"`
	CityName     string `xml:"ram:CityName,omitempty"`
	CountryID    string `xml:"ram:CountryID"`
}

type ciiTradeSettlement struct {
	InvoiceCurrencyCode string             `xml:"ram:InvoiceCurrencyCode"`
	PaymentMeans        ciiPaymentMeans    `xml:"ram:SpecifiedTradeSettlementPaymentMeans"`
	TradeTaxes          []ciiTradeTax      `xml:"ram:ApplicableTradeTax"`
	PaymentTerms        *ciiPaymentTerms   `xml:"ram:SpecifiedTradePaymentTerms,omitempty"`
	Summation           ciiMonetarySummary `xml:"ram:SpecifiedTradeSettlementHeaderMonetarySummation"`
}

// The payment means element is always present, even without bank data;
// downstream consumers rely on its existence.
type ciiPaymentMeans struct {
	TypeCode     string              `xml:"ram:TypeCode"`
	PayeeAccount *ciiCreditorAccount `xml:"ram:PayeePartyCreditorFinancialAccount,omitempty"`
}

type ciiCreditorAccount struct {
	IBANID        string `xml:"ram:IBANID"`
	ProprietaryID string `xml:"ram:ProprietaryID,omitempty"`
}

type ciiPaymentTerms struct {
	DueDateDateTime ciiDate `xml:"ram:DueDateDateTime"`
}

type ciiMonetarySummary struct {
	LineTotalAmount     string            `xml:"ram:LineTotalAmount"`
	TaxBasisTotalAmount string            `xml:"ram:TaxBasisTotalAmount"`
	TaxTotalAmount      ciiCurrencyAmount `xml:"ram:TaxTotalAmount"`
	GrandTotalAmount    string            `xml:"ram:GrandTotalAmount"`
	DuePayableAmount    string            `xml:"ram:DuePayableAmount"`
}

type ciiCurrencyAmount struct {
	CurrencyID string `xml:"currencyID,attr"`
	Value      string `xml:",chardata"`
}
