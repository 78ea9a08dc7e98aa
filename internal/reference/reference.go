// Copyright The Crosscheck Authors
// SPDX-License-Identifier: Apache-2.0

// Package reference loads the base table of records the documents are
// checked against.
package reference

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	textextractsheetlib "crosscheck/internal/preprocessors/text-extractors/text-extract-sheetlib"
)

var (
	// ErrEmptyTable is returned when the source has no header row
	ErrEmptyTable = errors.New("reference table has no header row")

	// Encrypted workbook errors, wrapped by Load
	ErrPasswordRequired = textextractsheetlib.ErrPasswordRequired
	ErrWrongPassword    = textextractsheetlib.ErrWrongPassword
)

// Record is one row of the base table. A missing or blank cell is nil.
type Record map[string]*string

// Value returns the raw value of column, or "" when it is absent
func (r Record) Value(column string) string {
	if v := r[column]; v != nil {
		return *v
	}
	return ""
}

// Table is a loaded reference table. Records keep the source row order.
type Table struct {
	Source  string
	Sheet   string
	Headers []string
	Records []Record
}

// Options controls how a reference file is read
type Options struct {
	// Sheet selects a worksheet by name; the first sheet is used when empty
	Sheet string
	// Password opens an encrypted workbook
	Password string
}

// MissingColumnError names every required column the table lacks
type MissingColumnError struct {
	Source    string
	Columns   []string
	Available []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("reference %s is missing required column(s) %s (available: %s)",
		filepath.Base(e.Source), quoteAll(e.Columns), quoteAll(e.Available))
}

func quoteAll(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = fmt.Sprintf("%q", n)
	}
	return strings.Join(quoted, ", ")
}

// Load reads a reference table from an .xlsx/.xlsm/.xls workbook or a .csv/.tsv file
func Load(path string, opts Options) (*Table, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".xlsm", ".xls":
		return loadWorkbook(path, opts)
	case ".csv", ".tsv":
		f, err := os.Open(filepath.Clean(path))
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
		}
		defer f.Close()
		comma := ','
		if ext == ".tsv" {
			comma = '\t'
		}
		t, err := ReadDelimited(f, comma)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
		}
		t.Source = path
		return t, nil
	default:
		return nil, fmt.Errorf("unsupported reference file type %q", ext)
	}
}

func loadWorkbook(path string, opts Options) (*Table, error) {
	sheets, err := textextractsheetlib.ReadSheets(path, opts.Password)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	if len(sheets) == 0 {
		return nil, ErrEmptyTable
	}

	selected := &sheets[0]
	if opts.Sheet != "" {
		selected = nil
		for i := range sheets {
			if sheets[i].Name == opts.Sheet {
				selected = &sheets[i]
				break
			}
		}
		if selected == nil {
			return nil, fmt.Errorf("sheet %q not found in %s", opts.Sheet, filepath.Base(path))
		}
	}

	t, err := FromRows(selected.Rows)
	if err != nil {
		return nil, err
	}
	t.Source = path
	t.Sheet = selected.Name
	return t, nil
}

// ReadDelimited reads a delimited table whose first row is the header
func ReadDelimited(r io.Reader, comma rune) (*Table, error) {
	reader := csv.NewReader(r)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	return FromRows(rows)
}

// FromRows builds a table from a header row followed by data rows. Header
// names are trimmed, blank headers are ignored and a repeated header keeps
// its first column. Rows without any value are dropped.
func FromRows(rows [][]string) (*Table, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyTable
	}

	t := &Table{}
	columns := make(map[string]int)
	for i, cell := range rows[0] {
		name := cleanHeader(cell)
		if name == "" {
			continue
		}
		if _, dup := columns[name]; dup {
			continue
		}
		columns[name] = i
		t.Headers = append(t.Headers, name)
	}
	if len(t.Headers) == 0 {
		return nil, ErrEmptyTable
	}

	for _, row := range rows[1:] {
		rec := make(Record, len(t.Headers))
		present := false
		for _, name := range t.Headers {
			i := columns[name]
			if i >= len(row) || strings.TrimSpace(row[i]) == "" {
				rec[name] = nil
				continue
			}
			v := row[i]
			rec[name] = &v
			present = true
		}
		if present {
			t.Records = append(t.Records, rec)
		}
	}

	return t, nil
}

func cleanHeader(v string) string {
	v = strings.TrimPrefix(v, "\ufeff")
	return strings.TrimSpace(v)
}

// HasColumn reports whether the table has a column named name
func (t *Table) HasColumn(name string) bool {
	for _, h := range t.Headers {
		if h == name {
			return true
		}
	}
	return false
}

// Require returns a *MissingColumnError when any of columns is absent
func (t *Table) Require(columns ...string) error {
	var missing []string
	for _, c := range columns {
		if !t.HasColumn(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &MissingColumnError{
		Source:    t.Source,
		Columns:   missing,
		Available: append([]string(nil), t.Headers...),
	}
}
