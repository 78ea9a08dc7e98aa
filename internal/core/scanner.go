// Copyright The Crosscheck Authors
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"context"
	"errors"
	"fmt"
	"os"

	"crosscheck/internal/config"
	"crosscheck/internal/observability"
	"crosscheck/internal/preprocessors"
	"crosscheck/internal/reference"
)

// RunConfig holds configuration for a full comparison run
type RunConfig struct {
	ReferencePath string
	DocumentPaths []string

	// Columns selects column mode; simple mode (the fixed Phone, Email,
	// Name and Agency fields) is used when empty
	Columns []string

	Settings config.Settings

	// Prompter supplies credentials for encrypted documents and reference
	// workbooks; nil means encrypted files are skipped
	Prompter CredentialPrompter

	// Extractor defaults to the preprocessor manager with every built-in
	// preprocessor registered
	Extractor DocumentExtractor

	Progress Progress
	Observer *observability.StandardObserver
}

// Run performs the comparison shared by the compare and match commands:
// load the reference table, check the columns, extract the documents and
// match. A missing reference column aborts the run before any document is
// read.
func Run(ctx context.Context, rc RunConfig) (*CompareResult, error) {
	observer := rc.Observer
	if observer == nil {
		observer = observability.New(rc.Settings.Debug, os.Stderr)
	}

	finishTiming := observer.StartTiming("core", "run", rc.ReferencePath)

	table, err := loadReference(rc.ReferencePath, reference.Options{Sheet: rc.Settings.Sheet}, rc.Prompter, rc.Settings.MaxCredentialAttempts)
	if err != nil {
		finishTiming(false, map[string]interface{}{"error": err.Error()})
		return nil, err
	}

	fields := SimpleFields(rc.Settings.Columns)
	if len(rc.Columns) > 0 {
		fields = ParseFields(rc.Columns, rc.Settings.Columns)
		if len(fields) == 0 {
			finishTiming(false, nil)
			return nil, errors.New("no columns selected")
		}
	}

	if err := table.Require(FieldColumns(fields)...); err != nil {
		finishTiming(false, map[string]interface{}{"error": err.Error()})
		return nil, err
	}

	extractor := rc.Extractor
	if extractor == nil {
		extractor = preprocessors.NewDefaultManager(observer)
	}

	loaded, err := LoadDocuments(ctx, extractor, rc.DocumentPaths, rc.Prompter, rc.Settings.MaxCredentialAttempts, observer)
	if err != nil {
		finishTiming(false, nil)
		return nil, err
	}

	if observer.DebugObserver != nil {
		observer.DebugObserver.LogMetric("core", "records", len(table.Records))
		observer.DebugObserver.LogMetric("core", "fields", len(fields))
		observer.DebugObserver.LogMetric("core", "documents", len(loaded.Documents))
	}

	cfg := NewCompareConfig(rc.Settings)
	cfg.Records = table.Records
	cfg.Fields = fields
	cfg.Documents = loaded.Documents
	cfg.Progress = rc.Progress
	cfg.Observer = observer

	result, err := Compare(ctx, cfg)
	if result != nil {
		result.Issues = loaded.Issues
	}

	finishTiming(err == nil, map[string]interface{}{
		"records":   len(table.Records),
		"documents": len(loaded.Documents),
		"skipped":   len(loaded.Issues),
	})
	return result, err
}

// loadReference opens the reference table, asking for a workbook password
// when the file is encrypted
func loadReference(path string, opts reference.Options, prompter CredentialPrompter, maxAttempts int) (*reference.Table, error) {
	table, err := reference.Load(path, opts)
	for attempt := 1; attempt <= maxAttempts && needsReferencePassword(err) && prompter != nil; attempt++ {
		password, perr := prompter.Credential(path, attempt)
		if perr != nil || password == "" {
			break
		}
		opts.Password = password
		table, err = reference.Load(path, opts)
	}
	if err != nil {
		return nil, fmt.Errorf("load reference: %w", err)
	}
	return table, nil
}

func needsReferencePassword(err error) bool {
	return errors.Is(err, reference.ErrPasswordRequired) || errors.Is(err, reference.ErrWrongPassword)
}
