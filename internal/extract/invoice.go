package extract

import (
	"github.com/joseph-ayodele/docparse/constants"
)

const (
	emailPattern = `[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`
	phonePattern = `\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`
	doctorName   = `Dr\.\s+[A-Z][a-zA-Z'-]+\s+[A-Z][a-zA-Z'-]+`

	// Hot Springs prints "Invoice # N Date: <issued> <due> <patient id>".
	hotSpringsHeader = `Invoice #\s*(\S+)\s*Date:\s*([\d-]+)\s+([\d-]+)\s+(\S+)`
	// Its address straddles the "Address:" label line.
	hotSpringsAddress = `\n([0-9].+)\nAddress:\s*Admission Date:\s*[\d-]+\n([A-Za-z\s]+, [A-Z]{2,} \d{5})`
)

func hotSprings() *ruleSet {
	return &ruleSet{
		name:        constants.TemplateHotSprings,
		class:       constants.ClassInvoice,
		identifiers: []string{"HOT SPRINGS GENERAL"},
		rules: []FieldRule{
			{"provider_name", []Strategy{
				MatchAll(doctorName, ", "),
				ConstIfText("Hot Springs General Hospital"),
			}},
			{"invoice_number", []Strategy{
				Match(hotSpringsHeader, 1),
				Match(`Invoice #\s*(\S+)`, 1),
			}},
			{"invoice_date", []Strategy{
				Match(hotSpringsHeader, 2),
				Match(`(?i)Invoice Date:?\s*(`+isoDate+`)`, 1),
			}},
			{"due_date", []Strategy{
				Match(hotSpringsHeader, 3),
				Match(`(?i)Due Date:?\s*(`+isoDate+`)`, 1),
				DueDateSecondISO(`(?i)Patient Name`),
				DueDateFromTerms(),
			}},
			{"patient_id", []Strategy{
				Match(hotSpringsHeader, 4),
				Match(`Hospital No:\s*(\S+)`, 1),
			}},
			{"patient_name", []Strategy{
				Match(`Patient Name:\s*(.+?)\s*Hospital No:`, 1),
				RightOf("Patient Name:"),
			}},
			{"patient_age", []Strategy{Match(`Patient Age:\s*(\d+)`, 1)}},
			{"bed_id", []Strategy{Match(`Bed No:\s*(\S+)`, 1)}},
			{"patient_address", []Strategy{
				MatchGroups(hotSpringsAddress, ", ", 1, 2),
				AroundLabel("Address:"),
			}},
			{"admission_date", []Strategy{Match(`Admission Date:\s*([\d-]+)`, 1)}},
			{"discharge_date", []Strategy{Match(`Discharge Date:\s*([\d-]+)`, 1)}},
			{"subtotal_amount", []Strategy{Match(`(?mi)^\s*Subtotal\s*\$?(`+money+`)\s*$`, 1)}},
			{"discount_amount", []Strategy{Match(`(?mi)^\s*Discount\s*\$?(`+money+`)\s*$`, 1)}},
			{"total_amount", []Strategy{
				MatchLast(`(?mi)^\s*Total(?:\s*:)?\s*\$?(`+money+`)\s*$`, 1),
				TotalFromSubtotal(),
			}},
			{"line_items", []Strategy{
				TableItems(),
				LinePatternItems(),
			}},
		},
	}
}

func rosePetal() *ruleSet {
	return &ruleSet{
		name:        constants.TemplateRosePetal,
		class:       constants.ClassInvoice,
		identifiers: []string{"ROSE PETAL CLINIC"},
		rules: []FieldRule{
			{"provider_name", []Strategy{
				Match(`(?i)Doctor[:\s]*(Dr\.\s+[A-Z][a-z]+(?:\s+[A-Z][a-z]+)?)`, 1),
			}},
			{"invoice_number", []Strategy{Match(`Invoice\s*No[:\s]*([A-Z0-9-]+)`, 1)}},
			{"due_date", []Strategy{Match(`(?i)Due\s*Date[:\s]*(`+isoDate+`)`, 1)}},
			{"invoice_date", []Strategy{
				MatchNotAfter(`(?i)Date[:\s]*(`+isoDate+`)`, 1, "Due"),
			}},
			{"patient_name", []Strategy{LineAfter("ROSE PETAL CLINIC", 2)}},
			{"patient_phone", []Strategy{Match(phonePattern, 0)}},
			{"patient_email", []Strategy{Match(emailPattern, 0)}},
			{"line_items", []Strategy{
				SectionItems(
					NewSection(`(?si)Description\s*Code\s*Total(.*?)(?:Subtotal|Sub\s*Total)`),
					`^([A-Za-z\s]+)\s+([A-Z0-9]+)\s*\$?(`+money+`)`, 2, 1, 3,
				),
				LinePatternItems(),
			}},
			{"subtotal_amount", []Strategy{Match(`Subtotal[:\s]*\$?(`+money+`)`, 1)}},
			{"discount_amount", []Strategy{Match(`Discount[:\s]*\$?(`+money+`)`, 1)}},
			{"total_amount", []Strategy{
				MatchLast(`Total[:\s]*\$?(`+money+`)`, 1),
				TotalFromSubtotal(),
			}},
		},
	}
}

func whitePetal() *ruleSet {
	return &ruleSet{
		name:        constants.TemplateWhitePetal,
		class:       constants.ClassInvoice,
		identifiers: []string{"WHITE PETAL HOSPITAL"},
		rules: []FieldRule{
			{"invoice_number", []Strategy{
				Match(`Invoice #\s*(\S+)`, 1),
				Match(`Invoice No[:\s]*([A-Z0-9-]+)`, 1),
			}},
			{"invoice_date", []Strategy{Match(`Invoice Date:?\s*(`+isoDate+`)`, 1)}},
			{"due_date", []Strategy{
				Match(`Due Date:?\s*(`+isoDate+`)`, 1),
				DueDateFromTerms(),
			}},
			{"patient_name", []Strategy{Match(`BILLED TO:\s*(.+)`, 1)}},
			{"patient_address", []Strategy{LinesAfter(`BILLED TO:`, 2, " ")}},
			{"line_items", []Strategy{
				SectionItems(
					NewSection(`(?s)CODE DESCRIPTION AMOUNT(.*?)(?:Subtotal|Discount|TOTAL)`),
					`^([A-Z0-9]+)\s+(.+?)\s+\$(`+money+`)`, 1, 2, 3,
				),
				TableItems(),
				LinePatternItems(),
			}},
			{"subtotal_amount", []Strategy{Match(`Subtotal\s*\$(`+money+`)`, 1)}},
			{"discount_amount", []Strategy{Match(`Discount\s*\$(`+money+`)`, 1)}},
			{"total_amount", []Strategy{
				Match(`TOTAL\s*\$(`+money+`)`, 1),
				TotalFromSubtotal(),
			}},
		},
	}
}

// genericInvoice reads the union of labels seen across invoice templates.
// Generic rule sets are text patterns only; layout rules are per template.
func genericInvoice() *ruleSet {
	return &ruleSet{
		name:  constants.TemplateGenericInvoice,
		class: constants.ClassInvoice,
		rules: []FieldRule{
			{"invoice_number", []Strategy{
				Match(`(?i)Invoice\s*(?:#|No\b\.?)[:\s]*([A-Z0-9][A-Z0-9-]*)`, 1),
			}},
			{"invoice_date", []Strategy{
				Match(`(?i)Invoice Date[:\s]*(`+anyDate+`)`, 1),
				MatchNotAfter(`(?i)\bDate[:\s]*(`+anyDate+`)`, 1, "Due"),
			}},
			{"due_date", []Strategy{
				Match(`(?i)Due Date[:\s]*(`+anyDate+`)`, 1),
				DueDateFromTerms(),
			}},
			{"patient_name", []Strategy{
				NotLabel(Match(`(?i)(?:Patient Name|BILLED TO|Bill To)\s*:[ \t]*([^\n]+)`, 1)),
			}},
			{"patient_id", []Strategy{
				Match(`(?i)(?:Patient ID|Hospital No|MRN|Account No)[:\s#]*([A-Z0-9][A-Z0-9-]*)`, 1),
			}},
			{"patient_age", []Strategy{Match(`(?i)\bAge[:\s]*(\d{1,3})\b`, 1)}},
			{"patient_address", []Strategy{
				NotLabel(Match(`(?i)\bAddress\s*:[ \t]*([^\n]+)`, 1)),
			}},
			{"patient_phone", []Strategy{
				Match(`(?i)(?:Phone|Tel)[^\n\d]{0,12}(\+?1?[\s.-]?`+phonePattern+`)`, 1),
				Match(phonePattern, 0),
			}},
			{"patient_email", []Strategy{Match(emailPattern, 0)}},
			{"admission_date", []Strategy{Match(`(?i)Admission Date[:\s]*(`+anyDate+`)`, 1)}},
			{"discharge_date", []Strategy{Match(`(?i)Discharge Date[:\s]*(`+anyDate+`)`, 1)}},
			{"subtotal_amount", []Strategy{Match(`(?i)\bSubtotal[:\s]*\$?(`+money+`)`, 1)}},
			{"discount_amount", []Strategy{Match(`(?i)\bDiscount[:\s]*\$?(`+money+`)`, 1)}},
			{"total_amount", []Strategy{
				MatchLast(`(?mi)^\s*(?:Total|Amount Due|Balance Due)\b[:\s]*\$?(`+money+`)`, 1),
				TotalFromSubtotal(),
			}},
			{"provider_name", []Strategy{
				NotLabel(Match(`(?i)(?:Doctor|Physician|Provider)\s*:[ \t]*([^\n]+)`, 1)),
				MatchAll(doctorName, ", "),
			}},
			{"bed_id", []Strategy{Match(`(?i)Bed\s*(?:No|#)[:\s]*(\S+)`, 1)}},
			{"line_items", []Strategy{LinePatternItems()}},
		},
	}
}
