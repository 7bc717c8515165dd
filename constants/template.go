package constants

// Known template identifiers. They name profile entries, exemplar
// directories and extraction rule sets.
const (
	TemplateHotSprings     = "invoice_hot_springs"
	TemplateRosePetal      = "invoice_rose_petal"
	TemplateWhitePetal     = "invoice_white_petal"
	TemplateOccupational   = "consent_occupational"
	TemplateHIPAA          = "consent_hipaa"
	TemplateHMGS           = "intake_hmgs"
	TemplateStMarks        = "intake_stmarks"
	TemplateGenericInvoice = "generic_invoice"
	TemplateGenericConsent = "generic_consent"
	TemplateGenericIntake  = "generic_intake"

	// TemplateUnknown is reported when no profile could be scored.
	TemplateUnknown = "unknown"
)

var templateClass = map[string]DocClass{
	TemplateHotSprings:     ClassInvoice,
	TemplateRosePetal:      ClassInvoice,
	TemplateWhitePetal:     ClassInvoice,
	TemplateOccupational:   ClassConsent,
	TemplateHIPAA:          ClassConsent,
	TemplateHMGS:           ClassIntake,
	TemplateStMarks:        ClassIntake,
	TemplateGenericInvoice: ClassInvoice,
	TemplateGenericConsent: ClassConsent,
	TemplateGenericIntake:  ClassIntake,
}

// ClassOfTemplate returns the class of a known template ID.
func ClassOfTemplate(id string) (DocClass, bool) {
	c, ok := templateClass[id]
	return c, ok
}

// GenericTemplate returns the fallback rule set name of a class.
func GenericTemplate(c DocClass) string {
	switch c {
	case ClassConsent:
		return TemplateGenericConsent
	case ClassIntake:
		return TemplateGenericIntake
	default:
		return TemplateGenericInvoice
	}
}
