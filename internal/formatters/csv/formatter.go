// Copyright The Crosscheck Authors
// SPDX-License-Identifier: Apache-2.0

package csv

import (
	"fmt"
	"strconv"
	"strings"

	"crosscheck/internal/detector"
	"crosscheck/internal/formatters"
)

// Formatter implements CSV output formatting
type Formatter struct{}

// NewFormatter creates a new CSV formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "csv"
}

func (f *Formatter) Description() string {
	return "Comma-separated values for spreadsheet import"
}

func (f *Formatter) FileExtension() string {
	return ".csv"
}

func (f *Formatter) Format(table *detector.ResultTable, options formatters.FormatterOptions) ([]byte, error) {
	headers := table.Schema.Headers()
	if options.Verbose {
		headers = append(headers, "Filename", "Record")
	}

	escaped := make([]string, len(headers))
	for i, h := range headers {
		escaped[i] = f.escapeCSVField(h)
	}
	csvRows := []string{strings.Join(escaped, ",")}

	for _, match := range table.Matches {
		csvRows = append(csvRows, f.createCSVRow(table.Schema, match, options))
	}

	return []byte(strings.Join(csvRows, "\n") + "\n"), nil
}

// createCSVRow creates a CSV row for a match
func (f *Formatter) createCSVRow(schema detector.Schema, match detector.Match, options formatters.FormatterOptions) string {
	fields := schema.Row(match)
	if options.Verbose {
		fields = append(fields, match.Filename, strconv.Itoa(match.Record+1))
	}

	row := make([]string, len(fields))
	for i, field := range fields {
		row[i] = f.escapeCSVField(field)
	}
	return strings.Join(row, ",")
}

// escapeCSVField properly escapes a field for CSV format and prevents CSV injection
func (f *Formatter) escapeCSVField(field string) string {
	field = f.sanitizeFormulaInjection(field)

	// Quote fields holding a separator, quote or line break
	if strings.ContainsAny(field, ",\"\n\r") {
		escaped := strings.ReplaceAll(field, "\"", "\"\"")
		return fmt.Sprintf("\"%s\"", escaped)
	}
	return field
}

// sanitizeFormulaInjection prefixes values a spreadsheet would evaluate as a
// formula with a single quote
func (f *Formatter) sanitizeFormulaInjection(field string) string {
	if len(field) == 0 {
		return field
	}

	switch field[0] {
	case '=', '+', '-', '@':
		return "'" + field
	}
	return field
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
