// Copyright The Crosscheck Authors
// SPDX-License-Identifier: Apache-2.0

package formatters

import (
	"fmt"
	"sort"
	"strings"

	"crosscheck/internal/detector"
)

// SkippedDocument is a document that contributed nothing to the results
type SkippedDocument struct {
	Filename string `json:"filename" yaml:"filename"`
	Reason   string `json:"reason" yaml:"reason"`
}

// FormatterOptions defines configuration options for formatters
type FormatterOptions struct {
	Verbose bool              // Whether to display offsets and record numbers
	NoColor bool              // Whether to disable colored output
	Skipped []SkippedDocument // Documents reported after the results
}

// Formatter interface defines methods that all output formatters must implement
type Formatter interface {
	// Format renders the result table in the formatter's specific output format
	Format(table *detector.ResultTable, options FormatterOptions) ([]byte, error)

	// Name returns the name of the formatter (e.g., "json", "text", "csv")
	Name() string

	// Description returns a brief description of what this formatter outputs
	Description() string

	// FileExtension returns the recommended file extension for this format (e.g., ".json", ".txt", ".csv")
	FileExtension() string
}

// Registry holds all registered formatters
type Registry struct {
	formatters map[string]Formatter
}

// NewRegistry creates a new formatter registry
func NewRegistry() *Registry {
	return &Registry{
		formatters: make(map[string]Formatter),
	}
}

// Register adds a formatter to the registry
func (r *Registry) Register(formatter Formatter) {
	r.formatters[formatter.Name()] = formatter
}

// Get retrieves a formatter by name
func (r *Registry) Get(name string) (Formatter, bool) {
	formatter, exists := r.formatters[name]
	return formatter, exists
}

// List returns all registered formatter names in sorted order
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.formatters))
	for name := range r.formatters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global formatter registry
var DefaultRegistry = NewRegistry()

// Register is a convenience function to register a formatter with the default registry
func Register(formatter Formatter) {
	DefaultRegistry.Register(formatter)
}

// Get is a convenience function to get a formatter from the default registry
func Get(name string) (Formatter, bool) {
	return DefaultRegistry.Get(name)
}

// List is a convenience function to list all formatters in the default registry
func List() []string {
	return DefaultRegistry.List()
}

// Export renders table with the named formatter
func Export(format string, table *detector.ResultTable, options FormatterOptions) ([]byte, error) {
	formatter, exists := Get(format)
	if !exists {
		return nil, fmt.Errorf("unsupported format '%s'. Available formats: %s", format, strings.Join(List(), ", "))
	}
	if table == nil {
		table = &detector.ResultTable{}
	}
	return formatter.Format(table, options)
}

// FileExtension returns the recommended extension of a format, or "" when the
// format is unknown
func FileExtension(format string) string {
	if f, ok := Get(format); ok {
		return f.FileExtension()
	}
	return ""
}

// IsBinary reports whether the format produces non-text output that should
// not be written to a terminal
func IsBinary(format string) bool {
	return format == "xlsx"
}
