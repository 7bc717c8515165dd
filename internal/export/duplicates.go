package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/docparse/internal/core"
)

// DuplicateKey identifies a patient visit across documents.
type DuplicateKey struct {
	PatientName  string
	PatientID    string
	ProviderName string
}

// DuplicateGroup is two or more documents sharing one key.
type DuplicateGroup struct {
	Key    DuplicateKey
	DocIDs []string
}

// Duplicates groups outcomes whose records share (patient_name, patient_id,
// provider_name). Records without a patient name never match. Comparison
// ignores case and surrounding space; a field missing from the schema
// compares as empty. Groups come back in first-seen order.
func Duplicates(outs []*core.Outcome) []DuplicateGroup {
	index := map[DuplicateKey]int{}
	var groups []DuplicateGroup
	for _, o := range outs {
		if o == nil {
			continue
		}
		k := DuplicateKey{
			PatientName:  keyPart(o.Record.Get("patient_name")),
			PatientID:    keyPart(o.Record.Get("patient_id")),
			ProviderName: keyPart(o.Record.Get("provider_name")),
		}
		if k.PatientName == "" {
			continue
		}
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, DuplicateGroup{Key: k})
		}
		groups[i].DocIDs = append(groups[i].DocIDs, o.DocID)
	}

	out := groups[:0]
	for _, g := range groups {
		if len(g.DocIDs) > 1 {
			out = append(out, g)
		}
	}
	return out
}

func keyPart(v any) string {
	if v == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(fmt.Sprint(v)))
}

func writeDuplicates(f *excelize.File, groups []DuplicateGroup) error {
	headers := []string{"Patient Name", "Patient ID", "Provider", "Count", "Documents"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(duplicatesSheet, cell, h); err != nil {
			return err
		}
	}
	for r, g := range groups {
		vals := []any{g.Key.PatientName, g.Key.PatientID, g.Key.ProviderName, len(g.DocIDs), strings.Join(g.DocIDs, ", ")}
		for c, v := range vals {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(duplicatesSheet, cell, v); err != nil {
				return err
			}
		}
	}
	_ = f.SetColWidth(duplicatesSheet, "A", "C", 24)
	_ = f.SetColWidth(duplicatesSheet, "E", "E", 60)
	return nil
}
