// Copyright The Crosscheck Authors
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crosscheck/internal/config"
	"crosscheck/internal/detector"
	"crosscheck/internal/reference"
)

type recordingProgress struct {
	reports  []float64
	finished int
}

func (p *recordingProgress) Report(fraction float64) {
	if p.finished > 0 {
		panic("Report after Finish")
	}
	p.reports = append(p.reports, fraction)
}

func (p *recordingProgress) Finish() { p.finished++ }

func str(s string) *string { return &s }

func sampleRecords() []reference.Record {
	return []reference.Record{
		{
			"Mobile No":      str("+1 (555) 123-4567"),
			"Mail ID":        str("Jane@Example.com"),
			"Passenger Name": str("Jane Doe"),
			"Travel Agency":  str("Best Travel Co"),
		},
		{
			"Mobile No":      nil,
			"Mail ID":        nil,
			"Passenger Name": nil,
			"Travel Agency":  nil,
		},
	}
}

func exactConfig(docs ...*detector.Document) CompareConfig {
	return CompareConfig{
		Records:      sampleRecords(),
		Fields:       SimpleFields(testColumns),
		Documents:    docs,
		Mode:         config.ModeExact,
		Layout:       config.LayoutConcat,
		Threshold:    config.DefaultThreshold,
		ContextChars: 10,
	}
}

func TestCompare_ExactSimple(t *testing.T) {
	doc := detector.NewDocument("a.txt", "Passenger JANE DOE, phone 15551234567, agency best travel co", nil)

	result, err := Compare(context.Background(), exactConfig(doc))
	require.NoError(t, err)

	got := make([]string, 0, len(result.Table.Matches))
	for _, m := range result.Table.Matches {
		got = append(got, m.Type+"="+m.Text)
	}
	assert.Equal(t, []string{"Phone=15551234567", "Name=JANE DOE", "Agency=best travel co"}, got)
	assert.Equal(t, detector.SchemaSimple, result.Table.Schema)
}

func TestCompare_NullRecordProducesNothing(t *testing.T) {
	cfg := exactConfig(detector.NewDocument("a.txt", "anything at all", nil))
	cfg.Records = cfg.Records[1:]

	result, err := Compare(context.Background(), cfg)
	require.NoError(t, err)
	assert.Empty(t, result.Table.Matches)
}

func TestCompare_Idempotent(t *testing.T) {
	docs := []*detector.Document{
		detector.NewDocument("a.txt", "jane doe booked", nil),
		detector.NewDocument("b.txt", "via Best Travel Co", nil),
	}
	cfg := exactConfig(docs...)
	cfg.Layout = config.LayoutSeparate

	first, err := Compare(context.Background(), cfg)
	require.NoError(t, err)
	second, err := Compare(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, first.Table.Matches, second.Table.Matches)
	assert.Len(t, first.Table.Matches, 2)
}

func TestCompare_Layouts(t *testing.T) {
	docs := []*detector.Document{
		detector.NewDocument("a.txt", "agency best travel co and jane", nil),
		detector.NewDocument("b.txt", " doe; best travel co again", nil),
	}

	concat := exactConfig(docs...)
	result, err := Compare(context.Background(), concat)
	require.NoError(t, err)
	// Concatenated text lets "jane doe" span both documents
	var types []string
	for _, m := range result.Table.Matches {
		types = append(types, m.Type)
	}
	assert.Equal(t, []string{"Name", "Agency"}, types)

	separate := exactConfig(docs...)
	separate.Layout = config.LayoutSeparate
	result, err = Compare(context.Background(), separate)
	require.NoError(t, err)

	var files []string
	for _, m := range result.Table.Matches {
		assert.Equal(t, "Agency", m.Type)
		files = append(files, m.Filename)
	}
	assert.Equal(t, []string{"a.txt", "b.txt"}, files)
}

func TestCompare_FuzzyEntries(t *testing.T) {
	doc := detector.NewDocument("book.xlsx", "", []detector.LocatedValue{
		{Value: "Jane Doe", Location: "Sheet1!A2", Original: "Jane Doe"},
		{Value: "Best Travel Company", Location: "Sheet1!B2", Original: "Best Travel Company"},
	})

	cfg := CompareConfig{
		Records:   sampleRecords(),
		Fields:    ParseFields([]string{"Passenger Name", "Travel Agency"}, testColumns),
		Documents: []*detector.Document{doc},
		Mode:      config.ModeFuzzy,
		Layout:    config.LayoutSeparate,
		Threshold: 80,
	}

	result, err := Compare(context.Background(), cfg)
	require.NoError(t, err)
	require.NotEmpty(t, result.Table.Matches)

	assert.Equal(t, detector.SchemaScored, result.Table.Schema)
	first := result.Table.Matches[0]
	assert.Equal(t, "Passenger Name", first.Type)
	assert.Equal(t, "Sheet1!A2", first.Location)
	require.NotNil(t, first.Ratio)
	assert.Equal(t, 100.0, *first.Ratio)
}

func TestCompare_ProgressEndsAtOne(t *testing.T) {
	docs := []*detector.Document{
		detector.NewDocument("a.txt", "x", nil),
		detector.NewDocument("b.txt", "y", nil),
	}
	cfg := exactConfig(docs...)
	cfg.Layout = config.LayoutSeparate
	progress := &recordingProgress{}
	cfg.Progress = progress

	_, err := Compare(context.Background(), cfg)
	require.NoError(t, err)

	require.NotEmpty(t, progress.reports)
	assert.Equal(t, 1.0, progress.reports[len(progress.reports)-1])
	assert.Equal(t, 1, progress.finished)
	for i := 1; i < len(progress.reports); i++ {
		assert.GreaterOrEqual(t, progress.reports[i], progress.reports[i-1])
	}
	for _, f := range progress.reports[:len(progress.reports)-1] {
		assert.Less(t, f, 1.0)
	}
}

func TestCompare_ProgressWithoutWork(t *testing.T) {
	cfg := exactConfig()
	cfg.Records = nil
	progress := &recordingProgress{}
	cfg.Progress = progress

	result, err := Compare(context.Background(), cfg)
	require.NoError(t, err)
	assert.Empty(t, result.Table.Matches)
	assert.Equal(t, []float64{1.0}, progress.reports)
	assert.Equal(t, 1, progress.finished)
}

func TestCompare_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := exactConfig(detector.NewDocument("a.txt", "jane doe", nil))
	progress := &recordingProgress{}
	cfg.Progress = progress

	result, err := Compare(ctx, cfg)
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, result)
	assert.Empty(t, result.Table.Matches)
	assert.Equal(t, 1.0, progress.reports[len(progress.reports)-1])
	assert.Equal(t, 1, progress.finished)
}

// cancellingProgress cancels the run after the first report
type cancellingProgress struct {
	recordingProgress
	cancel context.CancelFunc
}

func (p *cancellingProgress) Report(fraction float64) {
	p.recordingProgress.Report(fraction)
	p.cancel()
}

func TestCompare_CancelledBetweenRecords(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	records := sampleRecords()
	cfg := exactConfig(detector.NewDocument("a.txt", "jane doe and jane doe", nil))
	cfg.Records = []reference.Record{records[0], records[0], records[0]}
	cfg.Fields = ParseFields([]string{"Passenger Name"}, testColumns)
	progress := &cancellingProgress{cancel: cancel}
	cfg.Progress = progress

	result, err := Compare(ctx, cfg)
	require.ErrorIs(t, err, context.Canceled)
	// The first record completes before cancellation is observed
	require.Len(t, result.Table.Matches, 1)
	assert.Equal(t, 0, result.Table.Matches[0].Record)
	assert.Equal(t, 1, progress.finished)
}
