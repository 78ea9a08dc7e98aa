// Copyright The Crosscheck Authors
// SPDX-License-Identifier: Apache-2.0

package text

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"crosscheck/internal/detector"
	"crosscheck/internal/formatters"
)

const (
	// maxColumnWidth caps the value columns
	maxColumnWidth = 48
	// contextColumn holds the file context or cell location and is never cut
	contextColumn = 2
)

// Formatter implements text-based output formatting
type Formatter struct{}

// NewFormatter creates a new text formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "text"
}

func (f *Formatter) Description() string {
	return "Human-readable table with colors"
}

func (f *Formatter) FileExtension() string {
	return ".txt"
}

type palette struct {
	header *color.Color
	typ    *color.Color
	high   *color.Color
	low    *color.Color
	warn   *color.Color
}

func newPalette(noColor bool) palette {
	p := palette{
		header: color.New(color.FgWhite, color.Bold),
		typ:    color.New(color.FgCyan),
		high:   color.New(color.FgGreen),
		low:    color.New(color.FgYellow),
		warn:   color.New(color.FgRed),
	}
	if noColor {
		for _, c := range []*color.Color{p.header, p.typ, p.high, p.low, p.warn} {
			c.DisableColor()
		}
	}
	return p
}

func (f *Formatter) Format(table *detector.ResultTable, options formatters.FormatterOptions) ([]byte, error) {
	colors := newPalette(options.NoColor)
	var builder strings.Builder

	if len(table.Matches) == 0 {
		builder.WriteString("No matches found.\n")
	} else {
		f.appendTable(&builder, table, options, colors)
	}

	if len(options.Skipped) > 0 {
		builder.WriteString("\n")
		builder.WriteString(colors.warn.Sprintf("Skipped %d document(s):", len(options.Skipped)))
		builder.WriteString("\n")
		for _, s := range options.Skipped {
			fmt.Fprintf(&builder, "  %s: %s\n", s.Filename, s.Reason)
		}
	}

	return []byte(builder.String()), nil
}

func (f *Formatter) appendTable(builder *strings.Builder, table *detector.ResultTable, options formatters.FormatterOptions, colors palette) {
	headers := table.Schema.Headers()
	if options.Verbose {
		headers = append(headers, "Filename")
	}

	rows := make([][]string, 0, len(table.Matches))
	for _, m := range table.Matches {
		row := table.Schema.Row(m)
		if options.Verbose {
			row = append(row, m.Filename)
		}
		for i := range row {
			row[i] = singleLine(row[i])
			if i != contextColumn {
				row[i] = truncate(row[i], maxColumnWidth)
			}
		}
		rows = append(rows, row)
	}

	widths := columnWidths(headers, rows)

	builder.WriteString(colors.header.Sprint(padRow(headers, widths)))
	builder.WriteString("\n")
	total := 0
	for _, w := range widths {
		total += w + 2
	}
	builder.WriteString(colors.header.Sprint(strings.Repeat("-", total-2)))
	builder.WriteString("\n")

	for r, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			padded := pad(cell, widths[i])
			switch {
			case i == 0:
				padded = colors.typ.Sprint(padded)
			case i == 3 && table.Schema == detector.SchemaScored:
				padded = ratioColor(table.Matches[r], colors).Sprint(padded)
			}
			cells[i] = padded
		}
		builder.WriteString(strings.TrimRight(strings.Join(cells, "  "), " "))
		builder.WriteString("\n")
	}

	fmt.Fprintf(builder, "\n%d match(es)\n", len(table.Matches))
}

func ratioColor(m detector.Match, colors palette) *color.Color {
	if m.Ratio != nil && *m.Ratio >= 90 {
		return colors.high
	}
	return colors.low
}

func columnWidths(headers []string, rows [][]string) []int {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len([]rune(h))
	}
	for _, row := range rows {
		for i, cell := range row {
			if n := len([]rune(cell)); n > widths[i] {
				widths[i] = n
			}
		}
	}
	return widths
}

func padRow(cells []string, widths []int) string {
	padded := make([]string, len(cells))
	for i, c := range cells {
		padded[i] = pad(c, widths[i])
	}
	return strings.TrimRight(strings.Join(padded, "  "), " ")
}

func pad(s string, width int) string {
	if n := len([]rune(s)); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

func singleLine(s string) string {
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ").Replace(s)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
