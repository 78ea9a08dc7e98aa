// Copyright The Crosscheck Authors
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"crosscheck/internal/detector"
	"crosscheck/internal/observability"
)

// Status tags the outcome of a document extraction
type Status int

const (
	// StatusOK means the text (and entries) were extracted
	StatusOK Status = iota
	// StatusNeedsCredential means the document is encrypted and no credential was given
	StatusNeedsCredential
	// StatusInvalidCredential means the supplied credential was rejected
	StatusInvalidCredential
	// StatusFailed means the document could not be read; Error says why
	StatusFailed
	// StatusUnsupported means no preprocessor handles the file type
	StatusUnsupported
)

// String returns the status name used in logs and reports
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNeedsCredential:
		return "needs_credential"
	case StatusInvalidCredential:
		return "invalid_credential"
	case StatusFailed:
		return "failed"
	case StatusUnsupported:
		return "unsupported"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// ProcessedContent represents content that has been processed by a preprocessor
type ProcessedContent struct {
	// Original file information
	OriginalPath string
	Filename     string

	// Extracted content
	Text    string
	Entries []detector.LocatedValue

	// Content metadata
	Format    string
	PageCount int
	WordCount int
	CharCount int
	LineCount int

	// Processing information
	ProcessorType string
	Status        Status
	Error         error
}

// OK reports whether extraction succeeded
func (pc *ProcessedContent) OK() bool {
	return pc != nil && pc.Status == StatusOK
}

// Document converts the extracted content into a searchable document
func (pc *ProcessedContent) Document() *detector.Document {
	return detector.NewDocument(pc.Filename, pc.Text, pc.Entries)
}

// Preprocessor interface defines methods for preprocessing files
type Preprocessor interface {
	// CanProcess checks if this preprocessor can handle the given file
	CanProcess(filePath string) bool

	// Process extracts content from the file. credential is empty unless the
	// caller has been asked for one.
	Process(filePath, credential string) (*ProcessedContent, error)

	// GetName returns the name of this preprocessor
	GetName() string

	// GetSupportedExtensions returns the file extensions this preprocessor supports
	GetSupportedExtensions() []string

	// SetObserver sets the observability component
	SetObserver(observer *observability.StandardObserver)
}

// PreprocessorManager manages all available preprocessors
type PreprocessorManager struct {
	preprocessors []Preprocessor
	observer      *observability.StandardObserver
}

// NewPreprocessorManager creates a new preprocessor manager
func NewPreprocessorManager() *PreprocessorManager {
	return &PreprocessorManager{
		preprocessors: make([]Preprocessor, 0),
	}
}

// NewDefaultManager creates a manager with every built-in document type registered
func NewDefaultManager(observer *observability.StandardObserver) *PreprocessorManager {
	pm := NewPreprocessorManager()
	pm.SetObserver(observer)
	pm.RegisterPreprocessor(NewPlainTextPreprocessor())
	pm.RegisterPreprocessor(NewHTMLPreprocessor())
	pm.RegisterPreprocessor(NewPDFPreprocessor())
	pm.RegisterPreprocessor(NewSpreadsheetPreprocessor())
	return pm
}

// SetObserver sets the observer on the manager and every registered preprocessor
func (pm *PreprocessorManager) SetObserver(observer *observability.StandardObserver) {
	pm.observer = observer
	for _, p := range pm.preprocessors {
		p.SetObserver(observer)
	}
}

// RegisterPreprocessor adds a preprocessor to the manager
func (pm *PreprocessorManager) RegisterPreprocessor(p Preprocessor) {
	if pm.observer != nil {
		p.SetObserver(pm.observer)
	}
	pm.preprocessors = append(pm.preprocessors, p)
}

// GetPreprocessor returns the appropriate preprocessor for a file, or nil if none found
func (pm *PreprocessorManager) GetPreprocessor(filePath string) Preprocessor {
	for _, p := range pm.preprocessors {
		if p.CanProcess(filePath) {
			return p
		}
	}
	return nil
}

// GetAvailablePreprocessors returns all registered preprocessors
func (pm *PreprocessorManager) GetAvailablePreprocessors() []Preprocessor {
	return pm.preprocessors
}

// SupportedExtensions returns the sorted set of extensions any preprocessor handles
func (pm *PreprocessorManager) SupportedExtensions() []string {
	seen := make(map[string]bool)
	var exts []string
	for _, p := range pm.preprocessors {
		for _, ext := range p.GetSupportedExtensions() {
			if !seen[ext] {
				seen[ext] = true
				exts = append(exts, ext)
			}
		}
	}
	sort.Strings(exts)
	return exts
}

// Extract routes the file to its preprocessor and always returns a tagged
// result; failures are reported through Status and Error.
func (pm *PreprocessorManager) Extract(filePath, credential string) *ProcessedContent {
	p := pm.GetPreprocessor(filePath)
	if p == nil {
		ext := strings.ToLower(filepath.Ext(filePath))
		return &ProcessedContent{
			OriginalPath:  filePath,
			Filename:      filepath.Base(filePath),
			ProcessorType: "none",
			Status:        StatusUnsupported,
			Error:         NewProcessingError(filePath, ext, ErrorTypeUnsupportedFormat, "no preprocessor for file type", ErrUnsupportedFormat),
		}
	}

	result, err := p.Process(filePath, credential)
	if result == nil {
		result = newContent(filePath, p.GetName())
	}
	if err != nil {
		result.Status = StatusFor(err)
		result.Error = err
	}
	return result
}

// newContent creates an empty result for filePath
func newContent(filePath, processorType string) *ProcessedContent {
	return &ProcessedContent{
		OriginalPath:  filePath,
		Filename:      filepath.Base(filePath),
		ProcessorType: processorType,
		Status:        StatusFailed,
	}
}

// setText stores the extracted text and its metrics and marks the content OK
func (pc *ProcessedContent) setText(text string) {
	pc.Text = text
	pc.WordCount, pc.CharCount, pc.LineCount = CalculateTextMetrics(text)
	pc.Status = StatusOK
	pc.Error = nil
}

// CalculateTextMetrics calculates word count, character count, and line count for text
func CalculateTextMetrics(text string) (wordCount, charCount, lineCount int) {
	wordCount = len(strings.Fields(text))
	charCount = len([]rune(text))
	if text != "" {
		lineCount = strings.Count(text, "\n") + 1
	}
	return
}

// hasExtension reports whether filePath ends with one of exts, case-insensitively
func hasExtension(filePath string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(filePath))
	for _, supported := range exts {
		if ext == supported {
			return true
		}
	}
	return false
}

// traceProcessing starts timing and a debug step for one file and returns the
// function that closes both
func traceProcessing(observer *observability.StandardObserver, component, filePath string) func(*ProcessedContent, error) {
	if observer == nil {
		return func(*ProcessedContent, error) {}
	}

	finishTiming := observer.StartTiming(component, "process_file", filePath)
	var finishStep func(bool, string)
	if observer.DebugObserver != nil {
		finishStep = observer.DebugObserver.StartStep(component, "process_file", filePath)
	}

	return func(result *ProcessedContent, err error) {
		success := err == nil && result.OK()
		metadata := map[string]interface{}{
			"file_ext": strings.ToLower(filepath.Ext(filePath)),
		}
		if success {
			metadata["word_count"] = result.WordCount
			metadata["char_count"] = result.CharCount
			metadata["entries"] = len(result.Entries)
		}
		if err != nil {
			metadata["error_type"] = string(ClassifyError(err))
		}
		finishTiming(success, metadata)

		if finishStep != nil {
			switch {
			case success:
				finishStep(true, fmt.Sprintf("Extracted text: %d words, %d entries", result.WordCount, len(result.Entries)))
			case err != nil:
				finishStep(false, fmt.Sprintf("Extraction stopped: %s", ClassifyError(err)))
			default:
				finishStep(false, "Extraction failed")
			}
		}
	}
}
