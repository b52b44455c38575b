// Package report writes training results as an XLSX workbook
package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"reviewpipe/internal/core/metrics"

	"github.com/xuri/excelize/v2"
)

// Sheet is one worksheet: a bold header row followed by data rows
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]any
}

// maxSheetName is the Excel limit on worksheet names
const maxSheetName = 31

// ClassificationSheet lays a classification report out as a sheet
func ClassificationSheet(name string, r metrics.ClassificationReport) Sheet {
	s := Sheet{Name: name, Header: []string{"label", "precision", "recall", "f1", "support"}}
	for _, c := range append(append([]metrics.ClassStats{}, r.Classes...), r.Macro, r.Weighted) {
		s.Rows = append(s.Rows, []any{c.Label, c.Precision, c.Recall, c.F1, c.Support})
	}
	s.Rows = append(s.Rows, []any{"accuracy", nil, nil, r.Accuracy, r.Total})
	return s
}

// WriteXLSX writes sheets to path in order, replacing any existing file
func WriteXLSX(path string, sheets ...Sheet) (err error) {
	if len(sheets) == 0 {
		return errors.New("report: no sheets")
	}
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("report: style: %w", err)
	}

	const defaultSheet = "Sheet1"
	for i, s := range sheets {
		name := sheetName(s.Name, i)
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, name); err != nil {
				return fmt.Errorf("report: rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("report: new sheet %q: %w", name, err)
		}
		if err := writeSheet(f, name, s, bold); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("report: mkdir: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("report: save %s: %w", path, err)
	}
	return nil
}

func writeSheet(f *excelize.File, name string, s Sheet, bold int) error {
	header := make([]any, len(s.Header))
	for i, h := range s.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("report: header %q: %w", name, err)
	}
	if len(s.Header) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(s.Header), 1)
		if err := f.SetCellStyle(name, "A1", last, bold); err != nil {
			return fmt.Errorf("report: header style %q: %w", name, err)
		}
	}
	for r, row := range s.Rows {
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		vals := append([]any(nil), row...)
		if err := f.SetSheetRow(name, cell, &vals); err != nil {
			return fmt.Errorf("report: row %d of %q: %w", r+1, name, err)
		}
	}
	return nil
}

func sheetName(name string, i int) string {
	if name == "" {
		name = fmt.Sprintf("sheet%d", i+1)
	}
	if r := []rune(name); len(r) > maxSheetName {
		name = string(r[:maxSheetName])
	}
	return name
}
