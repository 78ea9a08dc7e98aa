// Copyright The Crosscheck Authors
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"context"

	"go.uber.org/zap"

	"crosscheck/internal/config"
	"crosscheck/internal/detector"
	"crosscheck/internal/normalize"
	"crosscheck/internal/observability"
	"crosscheck/internal/reference"
)

// Progress receives the completed fraction of a comparison
type Progress interface {
	Report(fraction float64)
	Finish()
}

// CompareConfig holds everything a single comparison needs
type CompareConfig struct {
	Records   []reference.Record
	Fields    []Field
	Documents []*detector.Document

	Mode               config.Mode
	Layout             config.Layout
	Threshold          float64
	Boundary           detector.Boundary
	ContextChars       int
	CollapseWhitespace bool
	FoldUnicode        bool

	// Progress and Observer are optional
	Progress Progress
	Observer *observability.StandardObserver
}

// NewCompareConfig copies the matching settings into a CompareConfig. Records,
// fields and documents are left for the caller.
func NewCompareConfig(s config.Settings) CompareConfig {
	return CompareConfig{
		Mode:               s.Mode,
		Layout:             s.Layout,
		Threshold:          s.Threshold,
		Boundary:           s.Boundary,
		ContextChars:       s.ContextRadius,
		CollapseWhitespace: s.CollapseWhitespace,
		FoldUnicode:        s.FoldUnicode,
	}
}

// CompareResult holds the outcome of a run
type CompareResult struct {
	Table     detector.ResultTable
	Issues    []DocumentIssue
	Records   int
	Documents int
}

// Compare looks for every non-empty field value of every record in the
// documents. Records are visited in order, fields in the order given, and
// matches are appended to a table owned by this call. A cancelled context
// stops the run between records; the matches found so far are returned
// together with ctx.Err().
func Compare(ctx context.Context, cfg CompareConfig) (*CompareResult, error) {
	result := &CompareResult{
		Table:     detector.ResultTable{Schema: SchemaFor(cfg.Mode)},
		Records:   len(cfg.Records),
		Documents: len(cfg.Documents),
	}

	var finishTiming func(bool, map[string]interface{})
	if cfg.Observer != nil {
		finishTiming = cfg.Observer.StartTiming("core", "compare", "")
	}

	targets := compareTargets(cfg)
	tracker := newProgressTracker(cfg.Progress, len(cfg.Records)*len(cfg.Fields)*len(targets))
	defer tracker.finish()

	matcher := BuildMatcher(cfg)
	opts := normalize.Options{
		CollapseWhitespace: cfg.CollapseWhitespace,
		FoldUnicode:        cfg.FoldUnicode,
	}

	for i, record := range cfg.Records {
		if err := ctx.Err(); err != nil {
			cfg.Observer.Logger().Warn("comparison cancelled",
				zap.String("component", "core"),
				zap.Int("records_done", i),
				zap.Int("records_total", len(cfg.Records)))
			if finishTiming != nil {
				finishTiming(false, map[string]interface{}{"matches": len(result.Table.Matches)})
			}
			return result, err
		}

		for _, field := range cfg.Fields {
			value := normalize.Normalize(record[field.Column], field.Kind, opts)
			if value == "" {
				tracker.advance(len(targets))
				continue
			}

			q := detector.Query{
				Type:    field.Label,
				Column:  field.Column,
				Value:   value,
				Literal: field.Kind == normalize.KindPhone,
				Record:  i,
			}
			for _, doc := range targets {
				result.Table.Matches = append(result.Table.Matches, matcher.Find(q, doc)...)
				tracker.advance(1)
			}
		}
	}

	if finishTiming != nil {
		finishTiming(true, map[string]interface{}{
			"matcher":   matcher.Name(),
			"records":   len(cfg.Records),
			"documents": len(cfg.Documents),
			"matches":   len(result.Table.Matches),
		})
	}
	return result, nil
}

// compareTargets applies the layout. Concat always yields a single flat
// document (or none when there is nothing to search), so located entries are
// only searched with the separate layout.
func compareTargets(cfg CompareConfig) []*detector.Document {
	if cfg.Layout == config.LayoutSeparate {
		return cfg.Documents
	}
	if len(cfg.Documents) == 0 {
		return nil
	}
	return []*detector.Document{detector.Concat("combined", cfg.Documents)}
}

// progressTracker turns unit counts into fractions. The last report is
// always exactly 1.0, followed by Finish.
type progressTracker struct {
	progress Progress
	total    int
	done     int
}

func newProgressTracker(p Progress, total int) *progressTracker {
	return &progressTracker{progress: p, total: total}
}

func (t *progressTracker) advance(units int) {
	if t.progress == nil || units == 0 {
		return
	}
	t.done += units
	if t.done < t.total {
		t.progress.Report(float64(t.done) / float64(t.total))
	}
}

func (t *progressTracker) finish() {
	if t.progress == nil {
		return
	}
	t.progress.Report(1.0)
	t.progress.Finish()
}
