package export

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/docparse/constants"
	"github.com/joseph-ayodele/docparse/internal/core"
	"github.com/joseph-ayodele/docparse/internal/schema"
)

const duplicatesSheet = "Duplicates"

// Service renders batches of processed documents as XLSX workbooks.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

var metaHeaders = []string{
	"Document",
	"File",
	"Detected Template",
	"Similarity",
	"Unforeseen",
	"Rule Set",
	"Fields Extracted",
}

// SheetName is the worksheet holding records of class c.
func SheetName(c constants.DocClass) string {
	switch c {
	case constants.ClassConsent:
		return "Consents"
	case constants.ClassIntake:
		return "Intakes"
	default:
		return "Invoices"
	}
}

// WorkbookXLSX returns a workbook with one sheet per document class that
// occurs in outs, plus a Duplicates sheet when any records collide.
// Nil outcomes are skipped.
func (s *Service) WorkbookXLSX(outs []*core.Outcome) ([]byte, error) {
	start := time.Now()

	byClass := map[constants.DocClass][]*core.Outcome{}
	for _, o := range outs {
		if o == nil {
			continue
		}
		c, ok := constants.ClassOfTemplate(o.Record.Template)
		if !ok {
			c = constants.ClassInvoice
		}
		byClass[c] = append(byClass[c], o)
	}

	f := excelize.NewFile()
	defer f.Close()

	first := true
	rows := 0
	for _, c := range constants.Classes() {
		list := byClass[c]
		if len(list) == 0 {
			continue
		}
		sheet := SheetName(c)
		if first {
			// reuse the default sheet so the workbook has no empty tab
			if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
				return nil, err
			}
			first = false
		} else if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
		if err := writeClassSheet(f, sheet, schema.ForClass(c), list); err != nil {
			return nil, fmt.Errorf("sheet %s: %w", sheet, err)
		}
		rows += len(list)
	}
	if first {
		if err := f.SetSheetName(f.GetSheetName(0), SheetName(constants.ClassInvoice)); err != nil {
			return nil, err
		}
		if err := writeClassSheet(f, SheetName(constants.ClassInvoice), schema.ForClass(constants.ClassInvoice), nil); err != nil {
			return nil, err
		}
	}

	groups := Duplicates(outs)
	if len(groups) > 0 {
		if _, err := f.NewSheet(duplicatesSheet); err != nil {
			return nil, err
		}
		if err := writeDuplicates(f, groups); err != nil {
			return nil, fmt.Errorf("sheet %s: %w", duplicatesSheet, err)
		}
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", rows,
		"duplicate_groups", len(groups),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func writeClassSheet(f *excelize.File, sheet string, sch schema.Schema, outs []*core.Outcome) error {
	headers := append(append([]string(nil), metaHeaders...), sch.FieldNames()...)
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}

	for r, o := range outs {
		row := r + 2
		write := func(col int, v any) error {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			return f.SetCellValue(sheet, cell, v)
		}
		meta := []any{
			o.DocID,
			o.Path,
			o.Detection.TemplateID,
			o.Detection.Score,
			o.Detection.IsUnforeseen,
			o.Record.Template,
			o.Record.FieldsExtracted(),
		}
		for i, v := range meta {
			if err := write(i+1, v); err != nil {
				return err
			}
		}
		for i, name := range sch.FieldNames() {
			if err := write(len(meta)+i+1, cellValue(o.Record.Get(name))); err != nil {
				return err
			}
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 22) // document
	_ = f.SetColWidth(sheet, "B", "B", 48) // file
	_ = f.SetColWidth(sheet, "C", "C", 24) // template
	_ = f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
	return nil
}

// cellValue flattens a record value; nulls become empty cells.
func cellValue(v any) any {
	switch x := v.(type) {
	case nil:
		return ""
	case []schema.LineItem:
		parts := make([]string, 0, len(x))
		for _, it := range x {
			p := fmt.Sprintf("%s %.2f", it.Description, it.Amount)
			if it.Code != nil {
				p = *it.Code + " " + p
			}
			parts = append(parts, p)
		}
		return truncate(strings.Join(parts, "; "), 32000)
	default:
		return x
	}
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
