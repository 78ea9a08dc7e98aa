// Copyright The Crosscheck Authors
// SPDX-License-Identifier: Apache-2.0

package xlsx

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"crosscheck/internal/detector"
	"crosscheck/internal/formatters"
)

// SheetName is the worksheet holding the results
const SheetName = "Results"

// Formatter writes results into an Excel workbook
type Formatter struct{}

// NewFormatter creates a new xlsx formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "xlsx"
}

func (f *Formatter) Description() string {
	return "Excel workbook with a Results sheet"
}

func (f *Formatter) FileExtension() string {
	return ".xlsx"
}

func (f *Formatter) Format(table *detector.ResultTable, options formatters.FormatterOptions) ([]byte, error) {
	wb := excelize.NewFile()
	defer wb.Close()

	// Rename the default sheet so the workbook holds exactly one
	if err := wb.SetSheetName(wb.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("create results sheet: %w", err)
	}

	headers := table.Schema.Headers()
	if options.Verbose {
		headers = append(headers, "Filename")
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = wb.SetCellValue(SheetName, cell, h)
	}

	for r, m := range table.Matches {
		row := r + 2
		values := make([]interface{}, 0, len(headers))
		for _, v := range table.Schema.Row(m) {
			values = append(values, v)
		}
		// Keep the ratio numeric so it can be sorted and filtered
		if m.Ratio != nil && table.Schema == detector.SchemaScored {
			values[len(values)-1] = *m.Ratio
		}
		if options.Verbose {
			values = append(values, m.Filename)
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = wb.SetCellValue(SheetName, cell, v)
		}
	}

	_ = wb.SetColWidth(SheetName, "A", "A", 16)
	_ = wb.SetColWidth(SheetName, "B", "B", 32)
	_ = wb.SetColWidth(SheetName, "C", "C", 48)
	_ = wb.SetColWidth(SheetName, "D", "E", 14)

	buf, err := wb.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
