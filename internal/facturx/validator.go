package facturx

import "go.uber.org/zap"

// Fixed French error messages, in check order.
const (
	errMissingNumber          = "Numéro de facture manquant"
	errMissingIssueDate       = "Date d'émission manquante"
	errMissingCompanyName     = "Nom de l'entreprise manquant"
	errMissingCompanyVAT      = "Numéro de TVA manquant"
	errMissingCompanySIRET    = "Numéro SIRET manquant"
	errMissingCompanyPostcode = "Code postal de l'entreprise manquant"
	errMissingClientName      = "Nom du client manquant"
	errMissingClientPostcode  = "Code postal du client manquant"
	errMissingItems           = "Aucun article dans la facture"
)

// Validator runs the pre-flight mandatory-field check before Factur-X
// generation. All checks run independently; errors accumulate rather than
// short-circuit, so the caller can surface the complete list at once.
type Validator struct {
	logger *zap.Logger
}

// NewValidator creates a Validator.
func NewValidator(logger *zap.Logger) *Validator {
	return &Validator{logger: logger}
}

// Validate reports every missing mandatory business field. It never mutates
// its input and is safe to call repeatedly.
func (v *Validator) Validate(inv *Invoice) ValidationResult {
	var errs []string

	if inv.Number == "" {
		errs = append(errs, errMissingNumber)
	}
	if inv.IssueDate.IsZero() {
		errs = append(errs, errMissingIssueDate)
	}
	if inv.CompanyInfo.Name == "" {
		errs = append(errs, errMissingCompanyName)
	}
	if inv.CompanyInfo.VATNumber == "" {
		errs = append(errs, errMissingCompanyVAT)
	}
	if inv.CompanyInfo.SIRET == "" {
		errs = append(errs, errMissingCompanySIRET)
	}
	if inv.CompanyInfo.Address == nil || inv.CompanyInfo.Address.PostalCode == "" {
		errs = append(errs, errMissingCompanyPostcode)
	}
	if inv.Client.Name == "" {
		errs = append(errs, errMissingClientName)
	}
	if inv.Client.Address == nil || inv.Client.Address.PostalCode == "" {
		errs = append(errs, errMissingClientPostcode)
	}
	if len(inv.Items) == 0 {
		errs = append(errs, errMissingItems)
	}

	if len(errs) > 0 {
		v.logger.Warn("Factur-X pre-flight validation failed",
			zap.String("number", inv.Number),
			zap.Strings("errors", errs))
	} else {
		v.logger.Debug("Factur-X pre-flight validation passed",
			zap.String("number", inv.Number))
	}

	return ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}
