package records

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WriteCSV writes a header row then one line per record; no index column
func WriteCSV(w io.Writer, s Set) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(s.Columns); err != nil {
		return fmt.Errorf("records: write header: %w", err)
	}
	line := make([]string, len(s.Columns))
	for i, r := range s.Rows {
		for j, c := range s.Columns {
			line[j] = FormatValue(r[c])
		}
		if err := cw.Write(line); err != nil {
			return fmt.Errorf("records: write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a header-first CSV; empty cells read as missing (nil)
func ReadCSV(r io.Reader) (Set, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err == io.EOF {
		return New(), nil
	}
	if err != nil {
		return Set{}, fmt.Errorf("records: read header: %w", err)
	}
	out := New(header...)
	for line := 2; ; line++ {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Set{}, fmt.Errorf("records: read line %d: %w", line, err)
		}
		rec := make(Record, len(header))
		for i, col := range header {
			if i < len(fields) && fields[i] != "" {
				rec[col] = fields[i]
			} else {
				rec[col] = nil
			}
		}
		out.Rows = append(out.Rows, rec)
	}
	return out, nil
}

// SaveCSV writes s to path, creating parent directories
func SaveCSV(path string, s Set) (err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("records: create dir %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("records: create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return WriteCSV(f, s)
}

// LoadCSV reads the CSV at path
func LoadCSV(path string) (Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return Set{}, fmt.Errorf("records: open %s: %w", path, err)
	}
	defer f.Close()
	return ReadCSV(f)
}
