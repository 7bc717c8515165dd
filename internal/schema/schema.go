// Package schema defines the versioned output schemas of each document class
// and normalizes raw extraction results into schema-conformant records.
package schema

import (
	"github.com/joseph-ayodele/docparse/constants"
)

// Kind selects the coercion applied to a field.
type Kind int

const (
	KindString Kind = iota
	KindDate
	KindMoney
	KindInteger
	KindPhone
	KindAddress
	KindLineItems
)

func (k Kind) String() string {
	switch k {
	case KindDate:
		return "date"
	case KindMoney:
		return "money"
	case KindInteger:
		return "integer"
	case KindPhone:
		return "phone"
	case KindAddress:
		return "address"
	case KindLineItems:
		return "line_items"
	default:
		return "string"
	}
}

type Field struct {
	Name string
	Kind Kind
}

// Schema is a fixed, ordered field set. Every field is nullable except
// line_items, which is always a list.
type Schema struct {
	Name   string
	Class  constants.DocClass
	Fields []Field
}

// FieldNames lists the fields in schema order.
func (s Schema) FieldNames() []string {
	out := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		out[i] = f.Name
	}
	return out
}

// Field returns the definition of name.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

func str(names ...string) []Field {
	out := make([]Field, len(names))
	for i, n := range names {
		out[i] = Field{Name: n, Kind: KindString}
	}
	return out
}

func fields(groups ...[]Field) []Field {
	var out []Field
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

var (
	Invoice = Schema{
		Name:  "invoice.v1",
		Class: constants.ClassInvoice,
		Fields: fields(
			str("invoice_number", "patient_id"),
			[]Field{{"invoice_date", KindDate}, {"due_date", KindDate}},
			str("patient_name"),
			[]Field{
				{"patient_age", KindInteger},
				{"patient_address", KindAddress},
				{"patient_phone", KindPhone},
			},
			str("patient_email"),
			[]Field{
				{"admission_date", KindDate},
				{"discharge_date", KindDate},
				{"subtotal_amount", KindMoney},
				{"discount_amount", KindMoney},
				{"total_amount", KindMoney},
			},
			str("provider_name", "bed_id"),
			[]Field{{"line_items", KindLineItems}},
		),
	}

	Consent = Schema{
		Name:  "consent.v1",
		Class: constants.ClassConsent,
		Fields: fields(
			str("patient_name", "patient_first_name", "patient_middle_name", "patient_last_name",
				"patient_address_name", "patient_id"),
			[]Field{{"patient_dob", KindDate}},
			str("patient_signature", "patient_state", "patient_city", "patient_zip_code",
				"provider_name", "provider_address_name"),
			[]Field{{"provider_phone", KindPhone}, {"provider_fax", KindPhone}},
			str("provider_state", "provider_city", "provider_zip_code",
				"family_name", "family_relation"),
			[]Field{{"family_phone", KindPhone}},
			str("family_address_name", "family_state", "family_city", "family_zip_code",
				"guardian_name", "guardian_signature", "guardian_relation"),
			[]Field{{"date", KindDate}, {"expiration_date", KindDate}},
			str("expiration_event", "translator_name", "translator_signature"),
		),
	}

	Intake = Schema{
		Name:  "intake.v1",
		Class: constants.ClassIntake,
		Fields: fields(
			str("patient_name"),
			[]Field{{"patient_dob", KindDate}, {"patient_phone", KindPhone}},
			str("referral_name", "provider_name"),
		),
	}
)

// ForClass returns the schema of a document class; ClassAuto and unknown
// classes get the invoice schema.
func ForClass(c constants.DocClass) Schema {
	switch c {
	case constants.ClassConsent:
		return Consent
	case constants.ClassIntake:
		return Intake
	default:
		return Invoice
	}
}

// All returns every schema.
func All() []Schema {
	return []Schema{Invoice, Consent, Intake}
}
