package textnorm

import (
	"github.com/joseph-ayodele/docparse/constants"
)

var templateRules = map[string]struct {
	joins, canonical []Rule
}{
	constants.TemplateHotSprings: {
		joins: []Rule{
			Join("HOT", "SPRINGS", "GENERAL", "HOSPITAL"),
			Join("Patient", "Age"),
			Join("Hospital", "No"),
			Join("Bed", "No"),
		},
	},
	constants.TemplateRosePetal: {
		joins: []Rule{Join("ROSE", "PETAL", "CLINIC")},
		canonical: []Rule{
			Replace(`(?i)\b(?:attending[ \t]+)?physician[ \t]*:`, `Doctor:`),
		},
	},
	constants.TemplateWhitePetal: {
		joins: []Rule{
			Join("WHITE", "PETAL", "HOSPITAL"),
			Join("CODE", "DESCRIPTION", "AMOUNT"),
		},
		canonical: []Rule{
			Replace(`(?i)\bbilled[ \t]+to[ \t]*:`, `BILLED TO:`),
		},
	},
	constants.TemplateOccupational: {
		joins: []Rule{
			Join("PRINT", "NAME", "OF", "PATIENT"),
			Join("SIGNATURE", "OF", "PATIENT"),
			Join("DATE", "OF", "SIGNATURE"),
			Join("POWER", "OF", "ATTORNEY"),
		},
	},
	constants.TemplateHIPAA: {
		joins: []Rule{
			Join("Relationship", "to", "Patient/Plan", "Member:"),
			Join("Expiration", "Event"),
			Join("Expiration", "Date"),
		},
		canonical: []Rule{
			Replace(`(?i)\bcity[ \t]*/[ \t]*state[ \t]*/[ \t]*zip(?:[ \t]*code)?\b`, `City/State/ZIP`),
		},
	},
	constants.TemplateHMGS: {
		joins: []Rule{
			Join("Referring", "Physician", "Name:"),
			Join("Primary", "Care", "Physician", "Name:"),
		},
	},
	constants.TemplateStMarks: {
		joins: []Rule{
			Join("Interventional", "Pain", "Clinic"),
		},
	},
}

var templateNormalizers = func() map[string]*Normalizer {
	out := make(map[string]*Normalizer, len(templateRules))
	for id, r := range templateRules {
		out[id] = defaultNormalizer.With(r.joins, r.canonical)
	}
	return out
}()

// ForTemplate returns the normalizer variant for a template. Unknown IDs get
// the generic normalizer.
func ForTemplate(id string) *Normalizer {
	if n, ok := templateNormalizers[id]; ok {
		return n
	}
	return defaultNormalizer
}
