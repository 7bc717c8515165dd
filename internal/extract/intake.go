package extract

import (
	"github.com/joseph-ayodele/docparse/constants"
)

const (
	personName = `[A-Za-z\s\-']+`
	phoneRun   = `\+?\d[\d\-\(\)\s]{8,}`
)

func hmgs() *ruleSet {
	return &ruleSet{
		name:        constants.TemplateHMGS,
		class:       constants.ClassIntake,
		identifiers: []string{"HMGS Dermatology", "Heymann, Manders"},
		rules: []FieldRule{
			{"patient_name", []Strategy{
				CutAt(Match(`Patient Name:\s*(`+personName+`)`, 1), `\bDate of Birth\b`, `\n`),
			}},
			{"patient_dob", []Strategy{Match(`Date of Birth:\s*(`+isoDate+`)`, 1)}},
			{"patient_phone", []Strategy{
				CutAt(Match(`(?:Cell Phone|Phone(?: Number)?):?\s*(?:YES\s*NO\s*YES\s*NO\s*)?(`+phoneRun+`)`, 1), `\n`),
			}},
			{"referral_name", []Strategy{
				CutAt(Match(`Referring Physician Name:\s*(Dr\.\s*`+personName+`)`, 1), `\bCity\b`, `\n`),
			}},
			{"provider_name", []Strategy{
				CutAt(Match(`Primary Care Physician Name:\s*(Dr\.\s*`+personName+`)`, 1), `\bCity\b`, `\n`),
			}},
		},
	}
}

// stMarksPhone reads one of the (C)/(H)/(W) phone boxes.
func stMarksPhone(box string) Strategy {
	return Strip(Match(`\(`+box+`\):\s*(`+phoneRun+`)`, 1), `[^0-9\-\+]`)
}

func stMarks() *ruleSet {
	return &ruleSet{
		name:        constants.TemplateStMarks,
		class:       constants.ClassIntake,
		identifiers: []string{"St. Mark", "Interventional Pain Clinic"},
		rules: []FieldRule{
			{"patient_name", []Strategy{Match(`Name:\s*(`+personName+`)\s+DOB:`, 1)}},
			{"patient_dob", []Strategy{Match(`DOB:\s*(`+isoDate+`)`, 1)}},
			{"patient_phone", []Strategy{
				stMarksPhone("C"),
				stMarksPhone("H"),
				stMarksPhone("W"),
			}},
			{"referral_name", []Strategy{
				CutAt(Match(`Referring Physician:\s*(Dr\.\s*`+personName+`)`, 1), `\n`, `Please list`, `Primary Care`),
			}},
			{"provider_name", []Strategy{
				CutAt(Match(`Primary Care Physician:\s*(Dr\.\s*`+personName+`)`, 1), `\n`, `Please list`, `Referring Physician`),
			}},
		},
	}
}

func genericIntake() *ruleSet {
	physician := func(label string) Strategy {
		return CutAt(
			Match(`(?i)`+label+`(?:\s*Name)?\s*:\s*(Dr\.?\s*[A-Za-z .'\-]+)`, 1),
			`\n`, `\bCity\b`, `Please list`, `(?i)Primary Care`, `(?i)Referring`,
		)
	}
	return &ruleSet{
		name:  constants.TemplateGenericIntake,
		class: constants.ClassIntake,
		rules: []FieldRule{
			{"patient_name", []Strategy{
				NotLabel(CutAt(
					Match(`(?i)(?:Patient\s*)?Name\s*:[ \t]*([A-Za-z][A-Za-z '\-.]*)`, 1),
					`(?i)\s+(?:DOB|Date of Birth)\b`,
				)),
			}},
			{"patient_dob", []Strategy{Match(`(?i)(?:Date\s*of\s*Birth|DOB)\s*:?\s*(`+anyDate+`)`, 1)}},
			{"patient_phone", []Strategy{
				Strip(Match(`(?i)(?:Cell Phone|Phone(?: Number)?|\([CHW]\))\s*:?\s*(`+phoneRun+`)`, 1), `[^0-9\-\+]`),
			}},
			{"referral_name", []Strategy{physician(`Referring\s*Physician`)}},
			{"provider_name", []Strategy{physician(`Primary\s*Care\s*Physician`)}},
		},
	}
}
