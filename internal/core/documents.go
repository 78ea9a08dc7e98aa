// Copyright The Crosscheck Authors
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"crosscheck/internal/detector"
	"crosscheck/internal/observability"
	"crosscheck/internal/parallel"
	"crosscheck/internal/preprocessors"
)

// ErrNoCredential is returned by a prompter that has nothing to offer
var ErrNoCredential = errors.New("no credential available")

// DocumentExtractor turns a file into processed content.
// *preprocessors.PreprocessorManager satisfies it.
type DocumentExtractor interface {
	Extract(filePath, credential string) *preprocessors.ProcessedContent
}

// CredentialPrompter supplies a credential for an encrypted file. attempt
// starts at 1 and grows after each rejected credential.
type CredentialPrompter interface {
	Credential(path string, attempt int) (string, error)
}

// StaticCredential offers one credential for every file. It is only offered
// on the first attempt; a rejected static credential is not retried.
type StaticCredential string

// Credential implements CredentialPrompter
func (s StaticCredential) Credential(_ string, attempt int) (string, error) {
	if s == "" || attempt > 1 {
		return "", ErrNoCredential
	}
	return string(s), nil
}

// DocumentIssue records a document that contributes nothing to the run
type DocumentIssue struct {
	Path     string               `json:"path" yaml:"path"`
	Filename string               `json:"filename" yaml:"filename"`
	Status   preprocessors.Status `json:"-" yaml:"-"`
	Reason   string               `json:"reason" yaml:"reason"`
	Err      error                `json:"-" yaml:"-"`
	Attempts int                  `json:"attempts,omitempty" yaml:"attempts,omitempty"`
}

// LoadedDocuments holds the documents that can be searched and the issues of
// those that cannot
type LoadedDocuments struct {
	Documents []*detector.Document
	Contents  []*preprocessors.ProcessedContent
	Issues    []DocumentIssue
}

// LoadDocuments extracts every path. The first pass runs without credentials
// on a worker pool; encrypted documents are then retried one at a time, in
// path order, with credentials from prompter until they open, the prompter
// gives up or maxAttempts credentials have been rejected. Failures never stop
// the remaining documents; only a cancelled context does.
func LoadDocuments(ctx context.Context, extractor DocumentExtractor, paths []string, prompter CredentialPrompter, maxAttempts int, observer *observability.StandardObserver) (*LoadedDocuments, error) {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	loaded := &LoadedDocuments{}
	if err := ctx.Err(); err != nil {
		return loaded, err
	}

	contents, stats, err := parallel.NewParallelProcessor(observer).ExtractAll(ctx, extractor, paths)
	if err != nil {
		return loaded, err
	}
	if observer != nil && observer.DebugObserver != nil {
		observer.DebugObserver.LogMetric("core", "extracted", stats.ProcessedFiles)
		observer.DebugObserver.LogMetric("core", "extraction_failures", stats.FailedFiles)
	}

	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return loaded, err
		}

		content, attempts := retryWithCredentials(extractor, path, contents[i], prompter, maxAttempts)
		if content.OK() {
			loaded.Documents = append(loaded.Documents, content.Document())
			loaded.Contents = append(loaded.Contents, content)
			continue
		}

		issue := DocumentIssue{
			Path:     path,
			Filename: filepath.Base(path),
			Status:   content.Status,
			Reason:   issueReason(content),
			Err:      content.Error,
			Attempts: attempts,
		}
		loaded.Issues = append(loaded.Issues, issue)

		// Credentials never reach the log
		observer.Logger().Warn("document skipped",
			zap.String("component", "core"),
			zap.String("file", issue.Filename),
			zap.String("status", content.Status.String()),
			zap.Int("attempts", attempts),
			zap.Error(content.Error))
	}

	return loaded, nil
}

// retryWithCredentials finishes the two-phase protocol for one document and
// returns the final content together with the number of credentials tried
func retryWithCredentials(extractor DocumentExtractor, path string, content *preprocessors.ProcessedContent, prompter CredentialPrompter, maxAttempts int) (*preprocessors.ProcessedContent, int) {
	attempts := 0

	for needsCredential(content) && prompter != nil && attempts < maxAttempts {
		credential, err := prompter.Credential(path, attempts+1)
		if err != nil || credential == "" {
			break
		}
		attempts++
		content = extractor.Extract(path, credential)
	}

	return content, attempts
}

func needsCredential(content *preprocessors.ProcessedContent) bool {
	return content.Status == preprocessors.StatusNeedsCredential ||
		content.Status == preprocessors.StatusInvalidCredential
}

func issueReason(content *preprocessors.ProcessedContent) string {
	switch content.Status {
	case preprocessors.StatusNeedsCredential:
		return "password required"
	case preprocessors.StatusInvalidCredential:
		return "incorrect password"
	case preprocessors.StatusUnsupported:
		return "unsupported file type"
	}
	if content.Error != nil {
		return content.Error.Error()
	}
	return fmt.Sprintf("extraction %s", content.Status)
}
