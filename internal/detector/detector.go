// Copyright The Crosscheck Authors
// SPDX-License-Identifier: Apache-2.0

package detector

import (
	"fmt"
	"strconv"
)

// LocatedValue is one non-empty spreadsheet cell
type LocatedValue struct {
	Value    string // Cell text as displayed
	Location string // Sheet!A1 style label
	Original any    // Typed cell value (float64, bool or string)
}

// Query is one normalized reference value to look for
type Query struct {
	Type    string // Match type reported for hits (Phone, Email, or a column name)
	Column  string // Reference column the value came from
	Value   string // Normalized value, never empty when handed to a matcher
	Literal bool   // Treat Value as a search pattern rather than escaped text (phone)
	Record  int    // Zero-based index of the reference record
}

// Match represents a reference value found in a document
type Match struct {
	Type     string   `json:"type" yaml:"type"`
	Text     string   `json:"text" yaml:"text"`                             // Matched string (exact) or base value (fuzzy)
	Context  string   `json:"context,omitempty" yaml:"context,omitempty"`   // Text surrounding the hit
	Location string   `json:"location,omitempty" yaml:"location,omitempty"` // Cell location for spreadsheet entries
	Phrase   string   `json:"phrase,omitempty" yaml:"phrase,omitempty"`     // Document text the value matched
	Ratio    *float64 `json:"ratio,omitempty" yaml:"ratio,omitempty"`       // Similarity ratio, nil for exact matches
	Filename string   `json:"filename,omitempty" yaml:"filename,omitempty"`
	Record   int      `json:"record" yaml:"record"`
	Start    int      `json:"start" yaml:"start"` // Rune offset of the hit in the searched text
	End      int      `json:"end" yaml:"end"`
}

// LocationOrContext returns the value shown in the scored schema's location column
func (m Match) LocationOrContext() string {
	if m.Location != "" {
		return fmt.Sprintf("%s (%s)", m.Location, m.Phrase)
	}
	return m.Context
}

// RatioString renders the ratio with two decimals, or "" for exact matches
func (m Match) RatioString() string {
	if m.Ratio == nil {
		return ""
	}
	return strconv.FormatFloat(*m.Ratio, 'f', 2, 64)
}

// Schema selects the column layout of a result table
type Schema int

const (
	// SchemaSimple is [Match Type, Match String, File Context]
	SchemaSimple Schema = iota
	// SchemaScored is [Match Type, Base Value, File Context/Cell Location, Match Ratio]
	SchemaScored
)

// Headers returns the column names of the schema
func (s Schema) Headers() []string {
	if s == SchemaScored {
		return []string{"Match Type", "Base Value", "File Context/Cell Location", "Match Ratio"}
	}
	return []string{"Match Type", "Match String", "File Context"}
}

// Row renders a match as a row of the schema
func (s Schema) Row(m Match) []string {
	if s == SchemaScored {
		return []string{m.Type, m.Text, m.LocationOrContext(), m.RatioString()}
	}
	return []string{m.Type, m.Text, m.Context}
}

// ResultTable is the ordered output of a comparison run
type ResultTable struct {
	Schema  Schema
	Matches []Match
}

// Rows renders every match in order
func (t *ResultTable) Rows() [][]string {
	rows := make([][]string, 0, len(t.Matches))
	for _, m := range t.Matches {
		rows = append(rows, t.Schema.Row(m))
	}
	return rows
}

// Matcher finds occurrences of one reference value in a document
type Matcher interface {
	// Name identifies the strategy in logs
	Name() string

	// Find returns every reportable hit of q in doc, in document order
	Find(q Query, doc *Document) []Match
}
