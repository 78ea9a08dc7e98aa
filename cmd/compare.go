// Copyright The Crosscheck Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"crosscheck/internal/config"
	"crosscheck/internal/core"
	"crosscheck/internal/detector"
	"crosscheck/internal/formatters"
	_ "crosscheck/internal/formatters/csv"
	_ "crosscheck/internal/formatters/json"
	_ "crosscheck/internal/formatters/markdown"
	_ "crosscheck/internal/formatters/text"
	_ "crosscheck/internal/formatters/xlsx"
	_ "crosscheck/internal/formatters/yaml"
	"crosscheck/internal/observability"
	"crosscheck/internal/paths"
	"crosscheck/internal/progress"
)

// NewCompareCmd creates the compare command (simple mode)
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare --base REFERENCE DOCUMENT...",
		Short: "Look for phone, e-mail, name and agency values in documents",
		Long: `Compare checks every record of the reference table for its phone number,
e-mail address, passenger name and travel agency in the given documents.
Column names are taken from the configuration (reference.columns).

Examples:
  # Exact matching over all documents joined together
  crosscheck compare --base passengers.xlsx ticket.pdf invoice.html

  # Whitespace-insensitive matching, JSON output
  crosscheck compare --profile whitespace --format json --base passengers.csv notes.txt`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runComparison(cmd, args, nil)
		},
	}
	addComparisonFlags(cmd)
	return cmd
}

// NewMatchCmd creates the match command (column mode)
func NewMatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match --base REFERENCE --columns COLUMNS DOCUMENT...",
		Short: "Look for the values of chosen reference columns in documents",
		Long: `Match checks the values of the chosen reference columns in the given
documents. Fuzzy matching is used unless --mode or a profile says
otherwise, and spreadsheet documents are searched cell by cell.

Examples:
  crosscheck match --base passengers.xlsx --columns "Passenger Name,Travel Agency" booking.xlsx
  crosscheck match --base passengers.xlsx --columns "Mail ID" --mode exact --threshold 90 notes.txt`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := cmd.Flags().GetString("columns")
			if err != nil {
				return err
			}
			columns := core.SplitColumns(list)
			if len(columns) == 0 {
				return errors.New("--columns is required")
			}
			return runComparison(cmd, args, columns)
		},
	}
	addComparisonFlags(cmd)
	cmd.Flags().String("columns", "", "Comma-separated reference columns to look for")
	return cmd
}

func addComparisonFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringP("base", "b", "", "Reference table (.xlsx, .xlsm, .csv, .tsv)")
	f.String("config", "", "Configuration file (default: search crosscheck.yaml, then the config directory)")
	f.StringP("profile", "p", "", "Configuration profile")
	f.StringP("format", "f", "", "Output format: "+fmt.Sprint(formatters.List()))
	f.StringP("output", "o", "", "Write results to a file instead of stdout")
	f.Float64("threshold", config.DefaultThreshold, "Fuzzy match threshold (50-100)")
	f.String("boundary", "", "Threshold comparison: default, strict or inclusive")
	f.String("mode", "", "Matching mode: exact or fuzzy")
	f.String("layout", "", "Document layout: concat or separate")
	f.String("sheet", "", "Reference worksheet (default: first sheet)")
	f.Bool("collapse-whitespace", false, "Ignore whitespace in text values and documents")
	f.Bool("fold-unicode", false, "Apply NFKC folding to text values")
	f.Bool("no-color", false, "Disable colored output")
	f.BoolP("verbose", "v", false, "Include file names, record numbers and offsets")
	f.Bool("debug", false, "Print processing steps to stderr")
	f.String("password", "", "Password for encrypted documents and workbooks")
	_ = cmd.MarkFlagRequired("base")
}

// resolveSettings layers configuration file, profile and flags
func resolveSettings(cmd *cobra.Command, columnMode bool) (config.Settings, error) {
	flags := cmd.Flags()
	configFile, _ := flags.GetString("config")
	profile, _ := flags.GetString("profile")

	cfg, err := config.LoadConfigOrDefault(configFile)
	if err != nil {
		if configFile != "" {
			return config.Settings{}, err
		}
		color.New(color.FgYellow).Fprintf(cmd.ErrOrStderr(), "Warning: %v\nUsing default configuration\n", err)
	}

	settings, err := cfg.Resolve(profile)
	if err != nil {
		return settings, err
	}

	// Column mode defaults to fuzzy matching per document
	if columnMode && profile == "" {
		settings.Mode = config.ModeFuzzy
		settings.Layout = config.LayoutSeparate
	}

	if flags.Changed("format") {
		settings.Format, _ = flags.GetString("format")
	}
	if flags.Changed("mode") {
		mode, _ := flags.GetString("mode")
		settings.Mode = config.Mode(mode)
	}
	if flags.Changed("layout") {
		layout, _ := flags.GetString("layout")
		settings.Layout = config.Layout(layout)
	}
	if flags.Changed("threshold") {
		settings.Threshold, _ = flags.GetFloat64("threshold")
	}
	if flags.Changed("boundary") {
		name, _ := flags.GetString("boundary")
		b, ok := detector.ParseBoundary(name)
		if !ok {
			return settings, fmt.Errorf("invalid --boundary %q: must be default, strict or inclusive", name)
		}
		settings.Boundary = b
	}
	if flags.Changed("sheet") {
		settings.Sheet, _ = flags.GetString("sheet")
	}
	for name, target := range map[string]*bool{
		"collapse-whitespace": &settings.CollapseWhitespace,
		"fold-unicode":        &settings.FoldUnicode,
		"no-color":            &settings.NoColor,
		"verbose":             &settings.Verbose,
		"debug":               &settings.Debug,
	} {
		if flags.Changed(name) {
			*target, _ = flags.GetBool(name)
		}
	}

	if err := settings.Validate(); err != nil {
		return settings, err
	}
	if _, ok := formatters.Get(settings.Format); !ok {
		return settings, fmt.Errorf("unsupported format '%s'. Available formats: %v", settings.Format, formatters.List())
	}
	return settings, nil
}

func runComparison(cmd *cobra.Command, documents []string, columns []string) error {
	settings, err := resolveSettings(cmd, columns != nil)
	if err != nil {
		return err
	}
	if settings.NoColor {
		color.NoColor = true
	}

	base, _ := cmd.Flags().GetString("base")
	outputPath, _ := cmd.Flags().GetString("output")
	password, _ := cmd.Flags().GetString("password")

	if outputPath == "" && formatters.IsBinary(settings.Format) {
		return fmt.Errorf("format %s needs --output", settings.Format)
	}

	stderr := cmd.ErrOrStderr()
	observer := observability.New(settings.Debug, stderr)

	var bar core.Progress
	if f, ok := stderr.(*os.File); ok && isTerminal(f) && !settings.Debug {
		bar = progress.NewBar(f, "comparing")
	}

	var stdin *os.File
	if f, ok := cmd.InOrStdin().(*os.File); ok {
		stdin = f
	}

	docPaths := make([]string, len(documents))
	for i, d := range documents {
		docPaths[i] = paths.NormalizePath(d)
	}

	result, err := core.Run(cmd.Context(), core.RunConfig{
		ReferencePath: paths.NormalizePath(base),
		DocumentPaths: docPaths,
		Columns:       columns,
		Settings:      settings,
		Prompter:      newPrompter(password, stdin, stderr),
		Progress:      bar,
		Observer:      observer,
	})
	if err != nil && result == nil {
		return err
	}

	out, ferr := formatters.Export(settings.Format, &result.Table, formatters.FormatterOptions{
		Verbose: settings.Verbose,
		NoColor: settings.NoColor || outputPath != "",
		Skipped: skippedDocuments(result.Issues),
	})
	if ferr != nil {
		return ferr
	}
	if werr := writeOutput(cmd.OutOrStdout(), outputPath, out); werr != nil {
		return werr
	}
	if outputPath != "" {
		fmt.Fprintf(stderr, "Wrote %d match(es) to %s\n", len(result.Table.Matches), outputPath)
	}

	// A cancelled run still reports its partial results
	return err
}

func skippedDocuments(issues []core.DocumentIssue) []formatters.SkippedDocument {
	skipped := make([]formatters.SkippedDocument, 0, len(issues))
	for _, issue := range issues {
		skipped = append(skipped, formatters.SkippedDocument{Filename: issue.Filename, Reason: issue.Reason})
	}
	return skipped
}

func writeOutput(stdout io.Writer, outputPath string, data []byte) error {
	if outputPath == "" {
		_, err := stdout.Write(data)
		return err
	}

	outputPath = paths.NormalizePath(outputPath)
	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(outputPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
