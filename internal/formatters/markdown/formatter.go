// Copyright The Crosscheck Authors
// SPDX-License-Identifier: Apache-2.0

package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/nao1215/markdown"

	"crosscheck/internal/detector"
	"crosscheck/internal/formatters"
)

// Formatter renders results as a GitHub-flavored markdown report
type Formatter struct{}

// NewFormatter creates a new markdown formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "markdown"
}

func (f *Formatter) Description() string {
	return "Markdown report with a results table"
}

func (f *Formatter) FileExtension() string {
	return ".md"
}

func (f *Formatter) Format(table *detector.ResultTable, options formatters.FormatterOptions) ([]byte, error) {
	var buf bytes.Buffer
	md := markdown.NewMarkdown(&buf)

	md.H1("Crosscheck Results")
	md.PlainText("")

	if len(table.Matches) == 0 {
		md.PlainText("No matches found.")
	} else {
		md.PlainTextf("%d match(es) found.", len(table.Matches))
		md.PlainText("")

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
			rows = append(rows, escapeRow(row))
		}
		md.Table(markdown.TableSet{Header: headers, Rows: rows})
	}

	if len(options.Skipped) > 0 {
		md.PlainText("")
		md.H2("Skipped Documents")
		md.PlainText("")
		items := make([]string, 0, len(options.Skipped))
		for _, s := range options.Skipped {
			items = append(items, fmt.Sprintf("`%s`: %s", s.Filename, s.Reason))
		}
		md.BulletList(items...)
	}

	if err := md.Build(); err != nil {
		return nil, fmt.Errorf("error formatting markdown: %w", err)
	}
	return buf.Bytes(), nil
}

// escapeRow keeps cell text on one line and out of the table syntax
func escapeRow(row []string) []string {
	r := strings.NewReplacer("|", "\\|", "\r\n", " ", "\n", " ", "\r", " ")
	out := make([]string, len(row))
	for i, cell := range row {
		out[i] = r.Replace(cell)
	}
	return out
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
