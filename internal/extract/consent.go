package extract

import (
	"fmt"
	"regexp"

	"github.com/joseph-ayodele/docparse/constants"
)

// occupational reads the Occupational Medical Service authorization. Its
// labels are numbered boxes printed in capitals.
func occupational() *ruleSet {
	const f = `(?ims)`
	return &ruleSet{
		name:        constants.TemplateOccupational,
		class:       constants.ClassConsent,
		identifiers: []string{"The Occupational Medical Service will only utilize a signed"},
		rules: []FieldRule{
			{"patient_name", []Strategy{Match(f+`5\.\s*PRINT\s*NAME\s*OF\s*PATIENT\s*(\w+[ \t]*\w+)`, 1)}},
			{"patient_first_name", []Strategy{Word(FromField("patient_name"), 0)}},
			{"patient_last_name", []Strategy{Word(FromField("patient_name"), -1)}},
			{"patient_signature", []Strategy{Match(f+`7\.\s*SIGNATURE\s*OF\s*PATIENT\s*(\w+[ \t]*\w+)`, 1)}},
			{"patient_dob", []Strategy{Match(f+`DATE\s*OF\s*BIRTH[:\s]*(`+anyDate+`)`, 1)}},
			{"provider_name", []Strategy{Match(f+`NAME\s+([^\n]+?)\s+PHONE`, 1)}},
			{"provider_phone", []Strategy{Match(f+`PHONE\s+([\d \-\(\)]+)`, 1)}},
			{"provider_fax", []Strategy{Match(f+`FAX\s+([\d \-\(\)]+)`, 1)}},
			{"provider_address_name", []Strategy{Match(f+`ADDRESS\s+([^\n]+?)CITY`, 1)}},
			{"provider_city", []Strategy{Match(f+`CITY\s+([^\n]+?)STATE`, 1)}},
			{"provider_state", []Strategy{Match(f+`STATE\s+([^\n]+?)ZIP`, 1)}},
			{"provider_zip_code", []Strategy{Match(f+`ZIP\s+(\d+)`, 1)}},
			{"date", []Strategy{Match(f+`9\.\s*DATE\s*OF\s*SIGNATURE\s*(`+isoDate+`)`, 1)}},
			{"expiration_date", []Strategy{Match(f+`\bTO\s*(`+isoDate+`)`, 1)}},
			{"expiration_event", []Strategy{ConstIfText("Six months from date of signature")}},
			{"guardian_signature", []Strategy{
				NotNA(Match(f+`8\.\s*SIGNATURE\s*OF\s*PARENT/GUARDIAN/POWER\s*OF\s*ATTORNEY[ \t]+([^\n]+)`, 1)),
			}},
		},
	}
}

// section returns the text from the "Section n -" heading up to the
// "Section n+1 -" heading. The last sections run to the end of the text when
// no next heading exists.
func section(n int) func(string) string {
	start := regexp.MustCompile(fmt.Sprintf(`(?i)Section\s*%d\s*-`, n))
	end := regexp.MustCompile(fmt.Sprintf(`(?i)Section\s*%d\s*-`, n+1))
	return func(text string) string {
		loc := start.FindStringIndex(text)
		if loc == nil {
			return ""
		}
		rest := text[loc[0]:]
		if e := end.FindStringIndex(rest[loc[1]-loc[0]:]); e != nil {
			return rest[:loc[1]-loc[0]+e[0]]
		}
		if n+1 > 4 {
			return rest
		}
		return ""
	}
}

// labelLine reads the rest of the line after label inside a section.
func labelLine(sec func(string) string, label string) Strategy {
	return Within(sec, Match(`(?i)`+label+`\s*:[ \t]*([^\n]+)`, 1))
}

func cityStateZip(sec func(string) string, idx int) Strategy {
	return Part(labelLine(sec, `City/State/ZIP`), "/", 3, idx)
}

func hipaa() *ruleSet {
	sec1, sec2, sec3, sec4, sec6 := section(1), section(2), section(3), section(4), section(6)
	signature := `(?s)Signature:\s*(\S+)\s+(\S+)\s*Date:\s*(` + isoDate + `)`
	return &ruleSet{
		name:        constants.TemplateHIPAA,
		class:       constants.ClassConsent,
		identifiers: []string{"HIPAA Authorization Form"},
		rules: []FieldRule{
			{"patient_first_name", []Strategy{labelLine(sec1, `First\s*Name`)}},
			{"patient_middle_name", []Strategy{NotNA(labelLine(sec1, `Middle\s*Name`))}},
			{"patient_last_name", []Strategy{labelLine(sec1, `Last\s*Name`)}},
			{"patient_name", []Strategy{JoinFields(" ", "patient_first_name", "patient_last_name")}},
			{"patient_dob", []Strategy{labelLine(sec1, `Date\s*of\s*Birth`)}},
			{"patient_id", []Strategy{labelLine(sec1, `Reference\s*No\.?`)}},
			{"patient_address_name", []Strategy{labelLine(sec1, `\bAddress`)}},
			{"patient_city", []Strategy{cityStateZip(sec1, 0)}},
			{"patient_state", []Strategy{cityStateZip(sec1, 1)}},
			{"patient_zip_code", []Strategy{cityStateZip(sec1, 2)}},
			{"patient_signature", []Strategy{Within(sec6, MatchGroups(signature, " ", 1, 2))}},
			{"date", []Strategy{Within(sec6, Match(signature, 3))}},
			{"provider_name", []Strategy{labelLine(sec2, `\bName`)}},
			{"provider_address_name", []Strategy{labelLine(sec2, `\bAddress`)}},
			{"provider_city", []Strategy{cityStateZip(sec2, 0)}},
			{"provider_state", []Strategy{cityStateZip(sec2, 1)}},
			{"provider_zip_code", []Strategy{cityStateZip(sec2, 2)}},
			{"family_name", []Strategy{labelLine(sec3, `\bName`)}},
			{"family_relation", []Strategy{labelLine(sec3, `Relationship\s*to\s*Patient/Plan\s*Member`)}},
			{"family_phone", []Strategy{labelLine(sec3, `Telephone\s*No\.?`)}},
			{"family_address_name", []Strategy{labelLine(sec3, `\bAddress`)}},
			{"family_city", []Strategy{cityStateZip(sec3, 0)}},
			{"family_state", []Strategy{cityStateZip(sec3, 1)}},
			{"family_zip_code", []Strategy{cityStateZip(sec3, 2)}},
			{"expiration_event", []Strategy{NotNA(labelLine(sec4, `Expiration\s*Event`))}},
			{"expiration_date", []Strategy{NotNA(labelLine(sec4, `Expiration\s*Date`))}},
		},
	}
}

func genericConsent() *ruleSet {
	const f = `(?i)`
	label := func(l string) Strategy {
		return NotLabel(Match(f+l+`\s*:[ \t]*([^\n]+)`, 1))
	}
	return &ruleSet{
		name:  constants.TemplateGenericConsent,
		class: constants.ClassConsent,
		rules: []FieldRule{
			{"patient_name", []Strategy{
				label(`Patient\s*Name`),
				Match(f+`PRINT\s*NAME\s*OF\s*PATIENT[ \t]*(\w+[ \t]+\w+)`, 1),
			}},
			{"patient_first_name", []Strategy{label(`First\s*Name`), Word(FromField("patient_name"), 0)}},
			{"patient_middle_name", []Strategy{NotNA(label(`Middle\s*Name`))}},
			{"patient_last_name", []Strategy{label(`Last\s*Name`), Word(FromField("patient_name"), -1)}},
			{"patient_dob", []Strategy{Match(f+`(?:Date\s*of\s*Birth|DOB)\s*:?\s*(`+anyDate+`)`, 1)}},
			{"patient_id", []Strategy{Match(f+`(?:Reference\s*No|Patient\s*ID|MRN)\.?\s*:?\s*([A-Z0-9][A-Z0-9-]*)`, 1)}},
			{"patient_signature", []Strategy{label(`Signature\s*of\s*Patient`)}},
			{"patient_address_name", []Strategy{label(`\bAddress`)}},
			{"patient_city", []Strategy{Part(label(`City/State/ZIP`), "/", 3, 0)}},
			{"patient_state", []Strategy{Part(label(`City/State/ZIP`), "/", 3, 1)}},
			{"patient_zip_code", []Strategy{Part(label(`City/State/ZIP`), "/", 3, 2)}},
			{"provider_name", []Strategy{
				label(`(?:Provider|Physician|Doctor)(?:\s*Name)?`),
				Match(`Dr\.\s+[A-Z][a-zA-Z'-]+(?:\s+[A-Z][a-zA-Z'-]+)?`, 0),
			}},
			{"provider_phone", []Strategy{Match(f+`\b(?:Phone|Telephone)[^\n\d]{0,12}(\+?\d[\d ().-]{8,}\d)`, 1)}},
			{"provider_fax", []Strategy{Match(f+`\bFax[^\n\d]{0,12}(\+?\d[\d ().-]{8,}\d)`, 1)}},
			{"family_relation", []Strategy{label(`Relationship\s*to\s*Patient(?:/Plan\s*Member)?`)}},
			{"guardian_name", []Strategy{NotNA(label(`(?:Guardian|Legal\s*Representative)\s*Name`))}},
			{"guardian_signature", []Strategy{NotNA(label(`Signature\s*of\s*(?:Parent/)?Guardian`))}},
			{"date", []Strategy{
				Match(f+`Date\s*of\s*Signature\s*:?\s*(`+anyDate+`)`, 1),
				MatchNotAfter(f+`\bDate\s*:\s*(`+anyDate+`)`, 1, "Expiration"),
			}},
			{"expiration_date", []Strategy{Match(f+`Expiration\s*Date\s*:?\s*(`+anyDate+`)`, 1)}},
			{"expiration_event", []Strategy{NotNA(label(`Expiration\s*Event`))}},
			{"translator_name", []Strategy{label(`Translator(?:'s)?\s*Name`)}},
			{"translator_signature", []Strategy{label(`Translator(?:'s)?\s*Signature`)}},
		},
	}
}
