// Copyright The Crosscheck Authors
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"crosscheck/internal/observability"
)

// maxTextFileSize bounds the size of text and HTML documents
const maxTextFileSize = 100 * 1024 * 1024 // 100MB

// PlainTextPreprocessor reads text documents. UTF-8 is expected; a UTF-16 or
// UTF-8 byte order mark selects the encoding and is dropped.
type PlainTextPreprocessor struct {
	observer *observability.StandardObserver
}

// NewPlainTextPreprocessor creates a new plain text preprocessor
func NewPlainTextPreprocessor() *PlainTextPreprocessor {
	return &PlainTextPreprocessor{}
}

// SetObserver sets the observability component
func (ptp *PlainTextPreprocessor) SetObserver(observer *observability.StandardObserver) {
	ptp.observer = observer
}

// GetName returns the name of this preprocessor
func (ptp *PlainTextPreprocessor) GetName() string {
	return "plaintext"
}

// GetSupportedExtensions returns the file extensions this preprocessor supports
func (ptp *PlainTextPreprocessor) GetSupportedExtensions() []string {
	return []string{".txt", ".text", ".log"}
}

// CanProcess checks if this preprocessor can handle the given file
func (ptp *PlainTextPreprocessor) CanProcess(filePath string) bool {
	return hasExtension(filePath, ptp.GetSupportedExtensions())
}

// Process reads the file; text documents are never encrypted so the
// credential is ignored
func (ptp *PlainTextPreprocessor) Process(filePath, _ string) (result *ProcessedContent, err error) {
	finish := traceProcessing(ptp.observer, "plaintext_preprocessor", filePath)
	defer func() { finish(result, err) }()

	result = newContent(filePath, ptp.GetName())
	result.Format = "Plain Text"

	data, err := readLimited(filePath, "txt")
	if err != nil {
		return result, err
	}

	text, err := DecodeText(data)
	if err != nil {
		return result, malformed(filePath, "txt", "text is not valid UTF-8", err)
	}

	result.setText(text)
	return result, nil
}

// DecodeText converts raw file bytes to a string. Input with a UTF-16 byte
// order mark is transcoded; anything else must be valid UTF-8.
func DecodeText(data []byte) (string, error) {
	utf16BOM := bytes.HasPrefix(data, []byte{0xFF, 0xFE}) || bytes.HasPrefix(data, []byte{0xFE, 0xFF})
	if !utf16BOM && !utf8.Valid(data) {
		return "", fmt.Errorf("%w: invalid UTF-8 sequence", ErrMalformedDocument)
	}

	decoded, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformedDocument, err)
	}
	return string(decoded), nil
}

// readLimited reads a whole file after checking it against maxTextFileSize
func readLimited(filePath, fileType string) ([]byte, error) {
	cleanPath := filepath.Clean(filePath)
	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fileAccess(filePath, fileType, err)
	}
	if info.Size() > maxTextFileSize {
		return nil, NewProcessingError(filePath, fileType, ErrorTypeFileAccess,
			fmt.Sprintf("file too large: %d bytes (max: %d bytes)", info.Size(), maxTextFileSize), nil)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fileAccess(filePath, fileType, err)
	}
	return data, nil
}
