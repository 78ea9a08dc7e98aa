// Copyright The Crosscheck Authors
// SPDX-License-Identifier: Apache-2.0

package textextractsheetlib

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	// ErrPasswordRequired means the workbook is encrypted and no password was given
	ErrPasswordRequired = errors.New("workbook is password protected")
	// ErrWrongPassword means the given password does not open the workbook
	ErrWrongPassword = errors.New("workbook password is incorrect")
	// ErrEncryptedLegacy means a binary (BIFF) workbook carries a FILEPASS record
	ErrEncryptedLegacy = errors.New("encrypted binary .xls workbooks are not supported")
)

// cfbMagic starts every compound file: encrypted OOXML packages and legacy
// binary workbooks
var cfbMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// Cell is one non-empty cell of a workbook
type Cell struct {
	Sheet string
	Name  string // A1 style reference
	Row   int    // 1-based
	Col   int    // 1-based
	Text  string // Displayed value
	Value any    // float64, bool or string
}

// Location returns the Sheet!A1 label of the cell
func (c Cell) Location() string {
	return c.Sheet + "!" + c.Name
}

// Sheet holds the rows of one worksheet
type Sheet struct {
	Name string
	Rows [][]string
}

// SheetContent represents the extracted content of a workbook
type SheetContent struct {
	Filename   string
	Text       string
	Cells      []Cell
	SheetCount int
}

// workbook is an opened OOXML file or the decoded sheets of a binary one
type workbook struct {
	file   *excelize.File
	legacy []Sheet
}

func (w *workbook) Close() error {
	if w.file != nil {
		return w.file.Close()
	}
	return nil
}

// open reads a workbook, decrypting it with password when it is an
// encrypted package
func open(filePath, password string) (*workbook, error) {
	data, err := os.ReadFile(filepath.Clean(filePath))
	if err != nil {
		return nil, err
	}

	if bytes.HasPrefix(data, cfbMagic) {
		kind, err := inspectCompound(data)
		if err != nil {
			return nil, fmt.Errorf("error reading compound file: %w", err)
		}
		switch kind {
		case compoundWorkbook:
			sheets, err := readLegacy(data)
			if err != nil {
				return nil, fmt.Errorf("error reading binary workbook: %w", err)
			}
			return &workbook{legacy: sheets}, nil
		case compoundEncryptedWorkbook:
			return nil, ErrEncryptedLegacy
		case compoundUnknown:
			return nil, errors.New("compound file holds no workbook")
		}

		if password == "" {
			return nil, ErrPasswordRequired
		}
		f, err := excelize.OpenReader(bytes.NewReader(data), excelize.Options{Password: password})
		if err != nil {
			return nil, ErrWrongPassword
		}
		return &workbook{file: f}, nil
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("error opening workbook: %w", err)
	}
	return &workbook{file: f}, nil
}

// ReadSheets returns the raw cell values of every worksheet in workbook
// order. Numeric OOXML cells keep their stored digits.
func ReadSheets(filePath, password string) ([]Sheet, error) {
	wb, err := open(filePath, password)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	if wb.file == nil {
		return wb.legacy, nil
	}

	names := wb.file.GetSheetList()
	sheets := make([]Sheet, 0, len(names))
	for _, name := range names {
		rows, err := wb.file.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("error reading sheet %q: %w", name, err)
		}
		sheets = append(sheets, Sheet{Name: name, Rows: rows})
	}
	return sheets, nil
}

// ExtractText reads every sheet of the workbook. The text rendering lists
// each sheet's rows with cells separated by tabs; Cells holds every non-empty
// cell in sheet, row, column order.
func ExtractText(filePath, password string) (*SheetContent, error) {
	content := &SheetContent{
		Filename: filepath.Base(filePath),
	}

	wb, err := open(filePath, password)
	if err != nil {
		return content, err
	}
	defer wb.Close()

	var text strings.Builder
	if wb.file == nil {
		content.SheetCount = len(wb.legacy)
		for _, sheet := range wb.legacy {
			appendSheet(content, &text, sheet.Name, sheet.Rows, nil)
		}
		content.Text = text.String()
		return content, nil
	}

	f := wb.file
	sheets := f.GetSheetList()
	content.SheetCount = len(sheets)
	for _, sheet := range sheets {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return content, fmt.Errorf("error reading sheet %q: %w", sheet, err)
		}
		appendSheet(content, &text, sheet, rows, f)
	}
	content.Text = text.String()

	return content, nil
}

// appendSheet renders rows into text and records their non-empty cells.
// Typed values come from f when it is set.
func appendSheet(content *SheetContent, text *strings.Builder, sheet string, rows [][]string, f *excelize.File) {
	for r, row := range rows {
		text.WriteString(strings.Join(row, "\t"))
		text.WriteString("\n")

		for c, value := range row {
			if strings.TrimSpace(value) == "" {
				continue
			}
			name, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				continue
			}
			var typed any = value
			if f != nil {
				typed = typedValue(f, sheet, name, value)
			}
			content.Cells = append(content.Cells, Cell{
				Sheet: sheet,
				Name:  name,
				Row:   r + 1,
				Col:   c + 1,
				Text:  value,
				Value: typed,
			})
		}
	}
}

// typedValue returns the cell's value as float64 or bool when the cell is
// stored that way, display text otherwise
func typedValue(f *excelize.File, sheet, name, display string) any {
	cellType, err := f.GetCellType(sheet, name)
	if err != nil {
		return display
	}

	switch cellType {
	case excelize.CellTypeNumber, excelize.CellTypeDate, excelize.CellTypeUnset:
		raw, err := f.GetCellValue(sheet, name, excelize.Options{RawCellValue: true})
		if err != nil {
			return display
		}
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			return v
		}
	case excelize.CellTypeBool:
		raw, err := f.GetCellValue(sheet, name, excelize.Options{RawCellValue: true})
		if err == nil {
			return raw == "1" || strings.EqualFold(raw, "true")
		}
	}
	return display
}
