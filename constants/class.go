package constants

import (
	"strings"
)

// DocClass is the document family a record schema belongs to.
type DocClass string

const (
	ClassInvoice DocClass = "invoice"
	ClassConsent DocClass = "consent"
	ClassIntake  DocClass = "intake"
	// ClassAuto lets the classifier pick the class.
	ClassAuto DocClass = "auto"
)

var allClasses = []DocClass{
	ClassInvoice,
	ClassConsent,
	ClassIntake,
}

// Classes returns the concrete classes, without ClassAuto.
func Classes() []DocClass {
	out := make([]DocClass, len(allClasses))
	copy(out, allClasses)
	return out
}

func AsStringSlice() []string {
	result := make([]string, len(allClasses))
	for i, c := range allClasses {
		result[i] = string(c)
	}
	return result
}

// Canonicalize maps user input (flags, config, queue payloads) onto a class.
// Empty input means ClassAuto.
func Canonicalize(input string) (DocClass, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return ClassAuto, true
	}

	synonyms := map[string]DocClass{
		"invoices":      ClassInvoice,
		"bill":          ClassInvoice,
		"consents":      ClassConsent,
		"authorization": ClassConsent,
		"hipaa":         ClassConsent,
		"intakes":       ClassIntake,
		"intake_form":   ClassIntake,
		"registration":  ClassIntake,
		"detect":        ClassAuto,
	}
	if c, ok := synonyms[normalized]; ok {
		return c, true
	}

	if normalized == string(ClassAuto) {
		return ClassAuto, true
	}
	for _, c := range allClasses {
		if normalized == string(c) {
			return c, true
		}
	}
	return ClassAuto, false
}
