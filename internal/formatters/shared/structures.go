// Copyright The Crosscheck Authors
// SPDX-License-Identifier: Apache-2.0

package shared

import (
	"crosscheck/internal/detector"
	"crosscheck/internal/formatters"
)

// JSONResponse represents the top-level response structure for JSON/YAML output
type JSONResponse struct {
	Schema  string                       `json:"schema" yaml:"schema"`
	Headers []string                     `json:"headers" yaml:"headers"`
	Results []JSONMatch                  `json:"results" yaml:"results"`
	Skipped []formatters.SkippedDocument `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// JSONMatch represents a single match in JSON/YAML format
type JSONMatch struct {
	Type     string   `json:"type" yaml:"type"`
	Text     string   `json:"text" yaml:"text"`
	Context  string   `json:"context,omitempty" yaml:"context,omitempty"`
	Location string   `json:"location,omitempty" yaml:"location,omitempty"`
	Phrase   string   `json:"phrase,omitempty" yaml:"phrase,omitempty"`
	Ratio    *float64 `json:"ratio,omitempty" yaml:"ratio,omitempty"`
	Filename string   `json:"filename,omitempty" yaml:"filename,omitempty"`
	Record   *int     `json:"record,omitempty" yaml:"record,omitempty"`
	Start    *int     `json:"start,omitempty" yaml:"start,omitempty"`
	End      *int     `json:"end,omitempty" yaml:"end,omitempty"`
}

// SchemaName returns the name used for a schema in structured output
func SchemaName(s detector.Schema) string {
	if s == detector.SchemaScored {
		return "scored"
	}
	return "simple"
}

// ConvertTable converts a result table to the JSON/YAML structure. Record
// numbers and offsets are only included in verbose mode.
func ConvertTable(table *detector.ResultTable, options formatters.FormatterOptions) JSONResponse {
	results := make([]JSONMatch, 0, len(table.Matches))
	for _, m := range table.Matches {
		jm := JSONMatch{
			Type:     m.Type,
			Text:     m.Text,
			Context:  m.Context,
			Location: m.Location,
			Phrase:   m.Phrase,
			Ratio:    m.Ratio,
			Filename: m.Filename,
		}
		if options.Verbose {
			record, start, end := m.Record, m.Start, m.End
			jm.Record, jm.Start, jm.End = &record, &start, &end
		}
		results = append(results, jm)
	}

	return JSONResponse{
		Schema:  SchemaName(table.Schema),
		Headers: table.Schema.Headers(),
		Results: results,
		Skipped: options.Skipped,
	}
}
