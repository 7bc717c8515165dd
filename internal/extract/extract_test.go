package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/docparse/constants"
	"github.com/joseph-ayodele/docparse/internal/layout"
)

type resolution struct {
	field    string
	strategy int
	value    any
}

type recorder struct {
	resolved []resolution
	missed   []string
}

func (r *recorder) FieldResolved(field string, strategy int, value any) {
	r.resolved = append(r.resolved, resolution{field, strategy, value})
}

func (r *recorder) FieldMissed(field string) { r.missed = append(r.missed, field) }

func (r *recorder) strategyOf(field string) int {
	for _, res := range r.resolved {
		if res.field == field {
			return res.strategy
		}
	}
	return -1
}

func run(t *testing.T, name, text string, pages []layout.Page) map[string]any {
	t.Helper()
	rs, ok := NewRegistry().Get(name)
	require.True(t, ok, name)
	return NewPipeline(nil).Run(rs, text, pages)
}

func TestLinePatternFallback(t *testing.T) {
	out := run(t, constants.TemplateGenericInvoice, "Invoice\nLP12 Lab Panel $120.00\nSubtotal $120.00", nil)

	assert.Equal(t, []LineItem{{Code: "LP12", Description: "Lab Panel", Amount: "120.00"}}, out["line_items"])
	assert.Equal(t, "120.00", out["subtotal_amount"])
	assert.Equal(t, "120.00", out["total_amount"])
}

func TestLinePatternDescriptionFirst(t *testing.T) {
	got := LinePatternItems()(Input{Lines: []string{
		"Lab Panel LP12 $120.00",
		"TOTAL DUE $120.00",
		"Discount CODE1 $5.00",
	}})
	assert.Equal(t, []LineItem{{Code: "LP12", Description: "Lab Panel", Amount: "120.00"}}, got)
}

const hotSpringsText = `HOT SPRINGS GENERAL HOSPITAL
Invoice # INV-001 Date: 2024-01-05 2024-02-04 P-778
Patient Name: John Smith Hospital No: H-1
Patient Age: 45 Bed No: B12
12 Main St
Address: Admission Date: 2024-01-01
Springfield, IL 62701
Discharge Date: 2024-01-04
Dr. Alice Brown
CT01 CT Scan $1,200.00
LB02 Blood Work $80.00
Subtotal $1,280.00
Discount $80.00
Total $1,200.00`

func TestHotSprings(t *testing.T) {
	out := run(t, constants.TemplateHotSprings, hotSpringsText, nil)

	assert.Equal(t, "Dr. Alice Brown", out["provider_name"])
	assert.Equal(t, "INV-001", out["invoice_number"])
	assert.Equal(t, "2024-01-05", out["invoice_date"])
	assert.Equal(t, "2024-02-04", out["due_date"])
	assert.Equal(t, "P-778", out["patient_id"])
	assert.Equal(t, "John Smith", out["patient_name"])
	assert.Equal(t, "45", out["patient_age"])
	assert.Equal(t, "B12", out["bed_id"])
	assert.Equal(t, "12 Main St, Springfield, IL 62701", out["patient_address"])
	assert.Equal(t, "2024-01-01", out["admission_date"])
	assert.Equal(t, "2024-01-04", out["discharge_date"])
	assert.Equal(t, "1,280.00", out["subtotal_amount"])
	assert.Equal(t, "80.00", out["discount_amount"])
	assert.Equal(t, "1,200.00", out["total_amount"])
	assert.Equal(t, []LineItem{
		{Code: "CT01", Description: "CT Scan", Amount: "1,200.00"},
		{Code: "LB02", Description: "Blood Work", Amount: "80.00"},
	}, out["line_items"])
}

func TestHotSpringsProviderFallsBackToHospital(t *testing.T) {
	out := run(t, constants.TemplateHotSprings, "HOT SPRINGS GENERAL HOSPITAL\nInvoice # 7", nil)
	assert.Equal(t, "Hot Springs General Hospital", out["provider_name"])
	assert.Equal(t, "7", out["invoice_number"])
}

func tok(text string, x0, top float64) layout.Token {
	return layout.Token{Text: text, X0: x0, X1: x0 + 8*float64(len(text)), Top: top, Bottom: top + 10}
}

func addressPage() layout.Page {
	return layout.Page{Width: 600, Height: 800, Tokens: []layout.Token{
		tok("12", 50, 100), tok("Main", 62, 100), tok("St", 90, 100),
		tok("Address:", 50, 115), tok("Admission", 150, 115), tok("Date:", 200, 115), tok("2024-01-01", 240, 115),
		tok("Springfield,", 50, 130), tok("IL", 110, 130), tok("62701", 125, 130), tok("Discharge", 160, 130),
		tok("Patient", 50, 145), tok("Name:", 100, 145), tok("Ann", 150, 145), tok("Lee", 180, 145), tok("Age:", 220, 145), tok("45", 260, 145),
	}}
}

func TestHotSpringsAddressFromLayout(t *testing.T) {
	obs := &recorder{}
	rs, _ := NewRegistry().Get(constants.TemplateHotSprings)
	out := NewPipeline(obs).Run(rs, "HOT SPRINGS GENERAL HOSPITAL", []layout.Page{addressPage()})

	assert.Equal(t, "12 Main St, Springfield, IL 62701", out["patient_address"])
	assert.Equal(t, 1, obs.strategyOf("patient_address"))
	assert.Equal(t, "Ann Lee", out["patient_name"])
	assert.Equal(t, 1, obs.strategyOf("patient_name"))
}

func TestPositionalStrategies(t *testing.T) {
	in := Input{Pages: []layout.Page{addressPage()}}

	assert.Equal(t, "Admission", RightOf("Address:")(in), "stops at the next label")
	assert.Equal(t, "2024-01-01", RightOf("Admission Date:")(in))
	assert.Equal(t, "Springfield, IL 62701", Below("Address:")(in))
	assert.Nil(t, Below("Missing:")(in))
	assert.Nil(t, AroundLabel("Address:")(Input{}))
}

func TestTableItems(t *testing.T) {
	page := layout.Page{Tokens: []layout.Token{
		tok("Code", 50, 100), tok("Description", 100, 100), tok("Amount", 300, 100),
		tok("LP12", 50, 115), tok("Lab", 100, 115), tok("Panel", 125, 115), tok("$120.00", 300, 115),
		tok("Note", 100, 130),
		tok("Subtotal", 100, 145), tok("$120.00", 300, 145),
		tok("XR01", 50, 160), tok("X-Ray", 100, 160), tok("$90.00", 300, 160),
	}}
	got := TableItems()(Input{Pages: []layout.Page{page}})
	assert.Equal(t, []LineItem{{Code: "LP12", Description: "Lab Panel", Amount: "120.00"}}, got)

	assert.Nil(t, TableItems()(Input{Pages: []layout.Page{{Tokens: []layout.Token{tok("Code", 50, 100)}}}}))
}

const rosePetalText = `ROSE PETAL CLINIC
123 Flower Rd
Jane Doe
Invoice No: RP-100
Due Date: 2024-03-01
Date: 2024-02-01
Doctor: Dr. Emily Stone
Phone: (555) 123-4567
Email: jane@example.com
Description Code Total
Consultation CON1 $150.00
Lab Panel LP12 $120.00
Subtotal $270.00
Discount $20.00
Total $250.00`

func TestRosePetal(t *testing.T) {
	out := run(t, constants.TemplateRosePetal, rosePetalText, nil)

	assert.Equal(t, "Dr. Emily Stone", out["provider_name"])
	assert.Equal(t, "RP-100", out["invoice_number"])
	assert.Equal(t, "2024-03-01", out["due_date"])
	assert.Equal(t, "2024-02-01", out["invoice_date"])
	assert.Equal(t, "Jane Doe", out["patient_name"])
	assert.Equal(t, "(555) 123-4567", out["patient_phone"])
	assert.Equal(t, "jane@example.com", out["patient_email"])
	assert.Equal(t, []LineItem{
		{Code: "CON1", Description: "Consultation", Amount: "150.00"},
		{Code: "LP12", Description: "Lab Panel", Amount: "120.00"},
	}, out["line_items"])
	assert.Equal(t, "270.00", out["subtotal_amount"])
	assert.Equal(t, "20.00", out["discount_amount"])
	assert.Equal(t, "250.00", out["total_amount"])
}

func TestWhitePetal(t *testing.T) {
	text := `WHITE PETAL HOSPITAL
Invoice # WP-9
Invoice Date 2024-04-01
Due Date 2024-05-01
BILLED TO: Mark Twain
9 River Rd
Hannibal, MO 63401
CODE DESCRIPTION AMOUNT
XR1 Chest X-Ray $300.00
Subtotal $300.00
TOTAL $300.00`
	out := run(t, constants.TemplateWhitePetal, text, nil)

	assert.Equal(t, "WP-9", out["invoice_number"])
	assert.Equal(t, "2024-04-01", out["invoice_date"])
	assert.Equal(t, "2024-05-01", out["due_date"])
	assert.Equal(t, "Mark Twain", out["patient_name"])
	assert.Equal(t, "9 River Rd Hannibal, MO 63401", out["patient_address"])
	assert.Equal(t, []LineItem{{Code: "XR1", Description: "Chest X-Ray", Amount: "300.00"}}, out["line_items"])
	assert.Equal(t, "300.00", out["total_amount"])
}

const hipaaText = `HIPAA Authorization Form
Section 1 - Patient
First Name: Courtney
Middle Name: N/A
Last Name: Thomas
Date of Birth: 1990-05-12
Reference No: MRN7994
Address: 12 Oak Lane
City/State/ZIP: Leeland/Montana/14249
Section 2 - Discloser
Name: Mercy Clinic
Address: 1 Main St
City/State/ZIP: Helena/Montana/59601
Section 3 - Receiver
Name: Robert Thomas
Relationship to Patient/Plan Member: Spouse
Telephone No: 406-555-0101
Section 4 - Expiration
Expiration Date: 2026-10-27
Expiration Event: N/A
Section 5 - Purpose
Section 6 - Signatures
Signature: Courtney Thomas Date: 2025-10-27`

func TestHIPAA(t *testing.T) {
	out := run(t, constants.TemplateHIPAA, hipaaText, nil)

	for field, want := range map[string]any{
		"patient_first_name":    "Courtney",
		"patient_middle_name":   nil,
		"patient_last_name":     "Thomas",
		"patient_name":          "Courtney Thomas",
		"patient_dob":           "1990-05-12",
		"patient_id":            "MRN7994",
		"patient_address_name":  "12 Oak Lane",
		"patient_city":          "Leeland",
		"patient_state":         "Montana",
		"patient_zip_code":      "14249",
		"provider_name":         "Mercy Clinic",
		"provider_address_name": "1 Main St",
		"provider_city":         "Helena",
		"provider_zip_code":     "59601",
		"family_name":           "Robert Thomas",
		"family_relation":       "Spouse",
		"family_phone":          "406-555-0101",
		"expiration_date":       "2026-10-27",
		"expiration_event":      nil,
		"patient_signature":     "Courtney Thomas",
		"date":                  "2025-10-27",
	} {
		assert.Equal(t, want, out[field], field)
	}
}

func TestOccupational(t *testing.T) {
	text := `The Occupational Medical Service will only utilize a signed authorization
NAME Dr. Steven Walker PHONE 406-647-6837
FAX 406-647-6838
ADDRESS 10 Elm St CITY Butte STATE MT ZIP 59701
FROM 2025-10-27 TO 2026-10-27
5. PRINT NAME OF PATIENT Courtney Wilcox
7. SIGNATURE OF PATIENT Courtney Wilcox
8. SIGNATURE OF PARENT/GUARDIAN/POWER OF ATTORNEY N/A
9. DATE OF SIGNATURE 2025-10-27`
	out := run(t, constants.TemplateOccupational, text, nil)

	assert.Equal(t, "Courtney Wilcox", out["patient_name"])
	assert.Equal(t, "Courtney", out["patient_first_name"])
	assert.Equal(t, "Wilcox", out["patient_last_name"])
	assert.Equal(t, "Courtney Wilcox", out["patient_signature"])
	assert.Equal(t, "Dr. Steven Walker", out["provider_name"])
	assert.Equal(t, "406-647-6837", out["provider_phone"])
	assert.Equal(t, "406-647-6838", out["provider_fax"])
	assert.Equal(t, "10 Elm St", out["provider_address_name"])
	assert.Equal(t, "Butte", out["provider_city"])
	assert.Equal(t, "MT", out["provider_state"])
	assert.Equal(t, "59701", out["provider_zip_code"])
	assert.Equal(t, "2026-10-27", out["expiration_date"])
	assert.Equal(t, "2025-10-27", out["date"])
	assert.Equal(t, "Six months from date of signature", out["expiration_event"])
	assert.Nil(t, out["guardian_signature"])
}

func TestStMarksPhoneCascade(t *testing.T) {
	text := `St. Mark's Hospital Interventional Pain Clinic
Name: Mary Jones DOB: 1980-01-02
(C): N/A
(H): 555-222-3333
Referring Physician: Dr. Paul Allen
Primary Care Physician: Dr. Lee Wong
Please list medications`
	obs := &recorder{}
	rs, _ := NewRegistry().Get(constants.TemplateStMarks)
	out := NewPipeline(obs).Run(rs, text, nil)

	assert.Equal(t, "Mary Jones", out["patient_name"])
	assert.Equal(t, "1980-01-02", out["patient_dob"])
	assert.Equal(t, "555-222-3333", out["patient_phone"])
	assert.Equal(t, 1, obs.strategyOf("patient_phone"))
	assert.Equal(t, "Dr. Paul Allen", out["referral_name"])
	assert.Equal(t, "Dr. Lee Wong", out["provider_name"])
	assert.Empty(t, obs.missed)
}

func TestHMGS(t *testing.T) {
	text := `HMGS Dermatology
Patient Name: Ana Ruiz Date of Birth: 1975-07-07
Cell Phone: 555-444-1212
Referring Physician Name: Dr. Omar Said City Austin
Primary Care Physician Name: Dr. Kim Park
Insurance`
	out := run(t, constants.TemplateHMGS, text, nil)

	assert.Equal(t, "Ana Ruiz", out["patient_name"])
	assert.Equal(t, "1975-07-07", out["patient_dob"])
	assert.Equal(t, "555-444-1212", out["patient_phone"])
	assert.Equal(t, "Dr. Omar Said", out["referral_name"])
	assert.Equal(t, "Dr. Kim Park", out["provider_name"])
}

func TestEmptyDocumentIsAllNull(t *testing.T) {
	reg := NewRegistry()
	for _, name := range reg.Names() {
		t.Run(name, func(t *testing.T) {
			obs := &recorder{}
			rs, _ := reg.Get(name)
			out := NewPipeline(obs).Run(rs, "", nil)
			require.Len(t, out, len(rs.Rules()))
			for field, v := range out {
				assert.Nil(t, v, field)
			}
			assert.Empty(t, obs.resolved)
			assert.Len(t, obs.missed, len(rs.Rules()))
		})
	}
}

func TestPipelineCascade(t *testing.T) {
	rs := &ruleSet{name: "test", class: constants.ClassInvoice, rules: []FieldRule{
		{"a", []Strategy{
			func(Input) any { panic("boom") },
			func(Input) any { return "  " },
			func(Input) any { return []LineItem{} },
			func(Input) any { return "hit" },
			func(Input) any { return "never" },
		}},
		{"b", []Strategy{FromField("a")}},
		{"c", nil},
	}}
	obs := &recorder{}
	out := NewPipeline(obs).Run(rs, "text", nil)

	assert.Equal(t, map[string]any{"a": "hit", "b": "hit", "c": nil}, out)
	assert.Equal(t, 3, obs.strategyOf("a"))
	assert.Equal(t, []string{"c"}, obs.missed)
}

func TestInference(t *testing.T) {
	rs := &ruleSet{name: "test", rules: []FieldRule{
		{"invoice_date", []Strategy{Match(`Invoice Date: (\S+)`, 1)}},
		{"due_date", []Strategy{DueDateFromTerms()}},
		{"subtotal_amount", []Strategy{Match(`Subtotal \$(\S+)`, 1)}},
		{"discount_amount", []Strategy{Match(`Discount \$(\S+)`, 1)}},
		{"total_amount", []Strategy{TotalFromSubtotal()}},
	}}
	out := NewPipeline(nil).Run(rs, "Invoice Date: 2024-01-10\nTerms: Net 30\nSubtotal $1,280.00\nDiscount $80.00", nil)
	assert.Equal(t, "2024-02-09", out["due_date"])
	assert.Equal(t, "1200.00", out["total_amount"])

	for _, issued := range []string{"03/30/2020", "30/03/2020", "3/30/20", "March 30, 2020"} {
		out = NewPipeline(nil).Run(rs, "Invoice Date: "+issued+"\nTerms: Net 30", nil)
		if issued == "March 30, 2020" {
			// the test rule captures one token only
			assert.Nil(t, out["due_date"], issued)
			continue
		}
		assert.Equal(t, "2020-04-29", out["due_date"], issued)
	}

	out = NewPipeline(nil).Run(rs, "Subtotal $10.00\nDiscount $80.00", nil)
	assert.Nil(t, out["due_date"])
	assert.Nil(t, out["total_amount"])

	due := DueDateSecondISO(`(?i)Patient`)
	assert.Equal(t, "2024-02-04", due(Input{Text: "Issued 2024-01-05 2024-02-04\nPatient 2024-03-01"}))
	assert.Nil(t, due(Input{Text: "Issued 2024-01-05\nPatient 2024-03-01"}))
}

func TestGenericInvoiceDueDateFromNonISOInvoiceDate(t *testing.T) {
	out := run(t, constants.TemplateGenericInvoice, "Invoice Date: 03/30/2020\nTerms: Net 30", nil)
	assert.Equal(t, "03/30/2020", out["invoice_date"])
	assert.Equal(t, "2020-04-29", out["due_date"])
}

func TestLineItemsKeepDescriptionsStartingWithSummaryWords(t *testing.T) {
	out := run(t, constants.TemplateGenericInvoice,
		"TK01 Total Knee Replacement $9,000.00\nTX2 Taxi voucher $20.00\nTAX $1.00\nTOTAL: $9,021.00", nil)
	assert.Equal(t, []LineItem{
		{Code: "TK01", Description: "Total Knee Replacement", Amount: "9,000.00"},
		{Code: "TX2", Description: "Taxi voucher", Amount: "20.00"},
	}, out["line_items"])

	assert.True(t, isSummary("Sub-Total:"))
	assert.True(t, isSummary("total due"))
	assert.False(t, isSummary("Total Knee Replacement"))
	assert.False(t, isSummary("Taxi voucher"))
	assert.True(t, isSummaryRow("Sales Tax $4.50"))
}

func TestMatchNotAfter(t *testing.T) {
	s := MatchNotAfter(`(?i)Date[:\s]*(\d{4}-\d{2}-\d{2})`, 1, "Due")
	assert.Equal(t, "2024-02-01", s(Input{Text: "Due Date: 2024-03-01\nDate: 2024-02-01"}))
	assert.Nil(t, s(Input{Text: "Due Date: 2024-03-01"}))
}

func TestRegistrySelect(t *testing.T) {
	reg := NewRegistry()
	cases := []struct {
		template   string
		class      constants.DocClass
		unforeseen bool
		want       string
	}{
		{constants.TemplateRosePetal, constants.ClassAuto, false, constants.TemplateRosePetal},
		{constants.TemplateRosePetal, constants.ClassInvoice, false, constants.TemplateRosePetal},
		{constants.TemplateRosePetal, constants.ClassAuto, true, constants.TemplateGenericInvoice},
		{constants.TemplateHIPAA, constants.ClassAuto, true, constants.TemplateGenericConsent},
		{constants.TemplateHIPAA, constants.ClassInvoice, false, constants.TemplateGenericInvoice},
		{constants.TemplateStMarks, "", false, constants.TemplateStMarks},
		{constants.TemplateUnknown, constants.ClassAuto, true, constants.TemplateGenericInvoice},
		{constants.TemplateUnknown, constants.ClassIntake, true, constants.TemplateGenericIntake},
		{"custom_template", constants.ClassConsent, false, constants.TemplateGenericConsent},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, reg.Select(tc.template, tc.class, tc.unforeseen).Name(), "%+v", tc)
	}
}

func TestIdentifierHint(t *testing.T) {
	reg := NewRegistry()
	assert.Equal(t, constants.TemplateHIPAA, reg.IdentifierHint("Patient copy\nhipaa authorization form"))
	assert.Equal(t, constants.TemplateStMarks, reg.IdentifierHint("ST. MARK'S HOSPITAL"))
	assert.Equal(t, "", reg.IdentifierHint("plain letter"))
}
