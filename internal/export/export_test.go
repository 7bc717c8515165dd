package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/docparse/constants"
	"github.com/joseph-ayodele/docparse/internal/classify"
	"github.com/joseph-ayodele/docparse/internal/core"
	"github.com/joseph-ayodele/docparse/internal/extract"
	"github.com/joseph-ayodele/docparse/internal/schema"
)

func outcome(docID, template string, s schema.Schema, raw map[string]any) *core.Outcome {
	return &core.Outcome{
		DocID: docID,
		Path:  "/in/" + docID + ".pdf",
		Detection: core.Detection{Result: classify.Result{
			TemplateID: template, Score: 0.97,
		}},
		Record: schema.Normalize(raw, s, template),
	}
}

func batch() []*core.Outcome {
	return []*core.Outcome{
		outcome("inv1", constants.TemplateHotSprings, schema.Invoice, map[string]any{
			"patient_name":  "John Doe",
			"patient_id":    "P-9",
			"provider_name": "Dr. Who",
			"total_amount":  "$1,200.50",
			"line_items":    []extract.LineItem{{Code: "LP12", Description: "Lab Panel", Amount: "120.00"}},
		}),
		outcome("inv2", constants.TemplateRosePetal, schema.Invoice, map[string]any{
			"patient_name":  " john doe",
			"patient_id":    "p-9",
			"provider_name": "DR. WHO",
		}),
		outcome("in1", constants.TemplateHMGS, schema.Intake, map[string]any{
			"patient_name": "Ana Ruiz",
		}),
		nil,
	}
}

func TestDuplicates(t *testing.T) {
	groups := Duplicates(batch())
	require.Len(t, groups, 1)
	assert.Equal(t, []string{"inv1", "inv2"}, groups[0].DocIDs)
	assert.Equal(t, DuplicateKey{PatientName: "john doe", PatientID: "p-9", ProviderName: "dr. who"}, groups[0].Key)
}

func TestDuplicatesIgnoresRecordsWithoutName(t *testing.T) {
	outs := []*core.Outcome{
		outcome("a", constants.TemplateHMGS, schema.Intake, nil),
		outcome("b", constants.TemplateHMGS, schema.Intake, nil),
	}
	assert.Empty(t, Duplicates(outs))
}

func TestWorkbookXLSX(t *testing.T) {
	b, err := NewService(nil).WorkbookXLSX(batch())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Invoices", "Intakes", "Duplicates"}, f.GetSheetList())

	rows, err := f.GetRows("Invoices")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, metaHeaders, rows[0][:len(metaHeaders)])
	assert.Equal(t, schema.Invoice.FieldNames(), rows[0][len(metaHeaders):])
	assert.Equal(t, "inv1", rows[1][0])
	assert.Equal(t, constants.TemplateHotSprings, rows[1][5])
	assert.Equal(t, "5", rows[1][6])

	items := len(metaHeaders) + len(schema.Invoice.FieldNames()) - 1
	assert.Equal(t, "LP12 Lab Panel 120.00", rows[1][items])

	dups, err := f.GetRows("Duplicates")
	require.NoError(t, err)
	require.Len(t, dups, 2)
	assert.Equal(t, "inv1, inv2", dups[1][4])
}

func TestWorkbookXLSXEmptyBatch(t *testing.T) {
	b, err := NewService(nil).WorkbookXLSX(nil)
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Invoices"}, f.GetSheetList())
}

func TestWriteRecordJSON(t *testing.T) {
	dir := t.TempDir()
	o := batch()[2]
	path, err := WriteRecordJSON(filepath.Join(dir, "out"), o)
	require.NoError(t, err)
	assert.Equal(t, "in1_intake_hmgs.json", filepath.Base(path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "intake_hmgs", got["template"])
	assert.Equal(t, "Ana Ruiz", got["patient_name"])
	assert.Contains(t, got, "referral_name")
	assert.Nil(t, got["referral_name"])
}
