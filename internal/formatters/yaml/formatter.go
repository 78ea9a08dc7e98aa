// Copyright The Crosscheck Authors
// SPDX-License-Identifier: Apache-2.0

package yaml

import (
	"fmt"

	"crosscheck/internal/detector"
	"crosscheck/internal/formatters"
	"crosscheck/internal/formatters/shared"

	"gopkg.in/yaml.v3"
)

// Formatter implements YAML output formatting
type Formatter struct{}

// NewFormatter creates a new YAML formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "yaml"
}

func (f *Formatter) Description() string {
	return "YAML output with the same structure as JSON"
}

func (f *Formatter) FileExtension() string {
	return ".yaml"
}

func (f *Formatter) Format(table *detector.ResultTable, options formatters.FormatterOptions) ([]byte, error) {
	// Same structure as the JSON formatter
	response := shared.ConvertTable(table, options)

	data, err := yaml.Marshal(response)
	if err != nil {
		return nil, fmt.Errorf("error formatting YAML: %w", err)
	}
	return data, nil
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
