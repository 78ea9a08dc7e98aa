// Copyright The Crosscheck Authors
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crosscheck/internal/preprocessors"
)

// lockedExtractor opens "locked.pdf" only with the right credential and
// reads everything else as plain text
type lockedExtractor struct {
	mu          sync.Mutex
	password    string
	credentials []string
}

func (e *lockedExtractor) Extract(path, credential string) *preprocessors.ProcessedContent {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.credentials = append(e.credentials, credential)
	content := &preprocessors.ProcessedContent{
		OriginalPath: path,
		Filename:     filepath.Base(path),
	}
	switch {
	case filepath.Base(path) != "locked.pdf":
		content.Text = "plain " + filepath.Base(path)
	case credential == "":
		content.Status = preprocessors.StatusNeedsCredential
		content.Error = preprocessors.ErrCredentialRequired
	case credential != e.password:
		content.Status = preprocessors.StatusInvalidCredential
		content.Error = preprocessors.ErrInvalidCredential
	default:
		content.Text = "unlocked"
	}
	return content
}

// countingExtractor fails every document
type countingExtractor struct {
	mu    sync.Mutex
	calls int
}

func (e *countingExtractor) Extract(path, _ string) *preprocessors.ProcessedContent {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	return &preprocessors.ProcessedContent{
		OriginalPath: path,
		Filename:     filepath.Base(path),
		Status:       preprocessors.StatusFailed,
		Error:        preprocessors.ErrMalformedDocument,
	}
}

type scriptedPrompter struct {
	answers  []string
	attempts []int
}

func (p *scriptedPrompter) Credential(_ string, attempt int) (string, error) {
	p.attempts = append(p.attempts, attempt)
	if len(p.answers) == 0 {
		return "", ErrNoCredential
	}
	answer := p.answers[0]
	p.answers = p.answers[1:]
	return answer, nil
}

func TestLoadDocuments_RetriesWithCredential(t *testing.T) {
	extractor := &lockedExtractor{password: "open"}
	prompter := &scriptedPrompter{answers: []string{"nope", "open"}}

	loaded, err := LoadDocuments(context.Background(), extractor, []string{"/docs/locked.pdf"}, prompter, 3, nil)
	require.NoError(t, err)

	require.Len(t, loaded.Documents, 1)
	assert.Equal(t, "unlocked", loaded.Documents[0].Text)
	assert.Empty(t, loaded.Issues)
	assert.Equal(t, []string{"", "nope", "open"}, extractor.credentials)
	assert.Equal(t, []int{1, 2}, prompter.attempts)
}

func TestLoadDocuments_GivesUpAfterMaxAttempts(t *testing.T) {
	extractor := &lockedExtractor{password: "open"}
	prompter := &scriptedPrompter{answers: []string{"a", "b", "c", "open"}}

	loaded, err := LoadDocuments(context.Background(), extractor,
		[]string{"/docs/locked.pdf", "/docs/notes.txt"}, prompter, 2, nil)
	require.NoError(t, err)

	require.Len(t, loaded.Documents, 1)
	assert.Equal(t, "notes.txt", loaded.Documents[0].Name)

	require.Len(t, loaded.Issues, 1)
	issue := loaded.Issues[0]
	assert.Equal(t, "locked.pdf", issue.Filename)
	assert.Equal(t, preprocessors.StatusInvalidCredential, issue.Status)
	assert.Equal(t, "incorrect password", issue.Reason)
	assert.Equal(t, 2, issue.Attempts)
}

func TestLoadDocuments_NoPrompter(t *testing.T) {
	extractor := &lockedExtractor{password: "open"}

	loaded, err := LoadDocuments(context.Background(), extractor, []string{"/docs/locked.pdf"}, nil, 3, nil)
	require.NoError(t, err)

	assert.Empty(t, loaded.Documents)
	require.Len(t, loaded.Issues, 1)
	assert.Equal(t, preprocessors.StatusNeedsCredential, loaded.Issues[0].Status)
	assert.Equal(t, "password required", loaded.Issues[0].Reason)
	assert.Zero(t, loaded.Issues[0].Attempts)
}

func TestLoadDocuments_PrompterDeclines(t *testing.T) {
	extractor := &lockedExtractor{password: "open"}

	loaded, err := LoadDocuments(context.Background(), extractor, []string{"/docs/locked.pdf"}, StaticCredential(""), 3, nil)
	require.NoError(t, err)
	require.Len(t, loaded.Issues, 1)
	assert.Equal(t, []string{""}, extractor.credentials)
}

func TestLoadDocuments_StaticCredential(t *testing.T) {
	extractor := &lockedExtractor{password: "open"}

	loaded, err := LoadDocuments(context.Background(), extractor, []string{"/docs/locked.pdf"}, StaticCredential("open"), 3, nil)
	require.NoError(t, err)
	require.Len(t, loaded.Documents, 1)
	require.Len(t, loaded.Contents, 1)
	assert.True(t, loaded.Contents[0].OK())
}

func TestLoadDocuments_FailuresDoNotStopTheRest(t *testing.T) {
	extractor := &countingExtractor{}

	loaded, err := LoadDocuments(context.Background(), extractor, []string{"a.pdf", "b.html", "c.txt"}, nil, 3, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, extractor.calls)
	assert.Len(t, loaded.Issues, 3)
	assert.Equal(t, preprocessors.ErrMalformedDocument.Error(), loaded.Issues[0].Reason)
}

func TestLoadDocuments_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	extractor := &countingExtractor{}
	_, err := LoadDocuments(ctx, extractor, []string{"a.txt"}, nil, 3, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, extractor.calls)
}

func TestStaticCredential_OfferedOnce(t *testing.T) {
	extractor := &lockedExtractor{password: "open"}

	loaded, err := LoadDocuments(context.Background(), extractor, []string{"/docs/locked.pdf"}, StaticCredential("wrong"), 3, nil)
	require.NoError(t, err)
	require.Len(t, loaded.Issues, 1)
	assert.Equal(t, []string{"", "wrong"}, extractor.credentials)
	assert.Equal(t, 1, loaded.Issues[0].Attempts)
}
