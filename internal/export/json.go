package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joseph-ayodele/docparse/internal/core"
)

// RecordFileName is "<doc_id>_<template>.json".
func RecordFileName(o *core.Outcome) string {
	return fmt.Sprintf("%s_%s.json", o.DocID, o.Record.Template)
}

// WriteRecordJSON writes the record of o into dir and returns the file path.
func WriteRecordJSON(dir string, o *core.Outcome) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	b, err := json.MarshalIndent(o.Record, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal %s: %w", o.DocID, err)
	}
	path := filepath.Join(dir, RecordFileName(o))
	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
