// Copyright The Crosscheck Authors
// SPDX-License-Identifier: Apache-2.0

package json

import (
	"encoding/json"
	"fmt"

	"crosscheck/internal/detector"
	"crosscheck/internal/formatters"
	"crosscheck/internal/formatters/shared"
)

// Formatter implements JSON output formatting
type Formatter struct{}

// NewFormatter creates a new JSON formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "json"
}

func (f *Formatter) Description() string {
	return "Structured JSON output for programmatic consumption"
}

func (f *Formatter) FileExtension() string {
	return ".json"
}

func (f *Formatter) Format(table *detector.ResultTable, options formatters.FormatterOptions) ([]byte, error) {
	response := shared.ConvertTable(table, options)

	data, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("error formatting JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
