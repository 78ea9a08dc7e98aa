// Copyright The Crosscheck Authors
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

// ErrorType represents different types of processing errors
type ErrorType string

const (
	// File-related errors
	ErrorTypeFileAccess ErrorType = "file_access"

	// Format-related errors
	ErrorTypeUnsupportedFormat ErrorType = "unsupported_format"
	ErrorTypeMalformedDocument ErrorType = "malformed_document"

	// Credential-related errors
	ErrorTypeCredentialRequired ErrorType = "credential_required"
	ErrorTypeInvalidCredential  ErrorType = "invalid_credential"
)

var (
	// ErrUnsupportedFormat is returned for file types no preprocessor handles
	ErrUnsupportedFormat = errors.New("unsupported document format")
	// ErrCredentialRequired is returned for encrypted documents opened without a credential
	ErrCredentialRequired = errors.New("document is encrypted and needs a credential")
	// ErrInvalidCredential is returned when the credential does not open the document
	ErrInvalidCredential = errors.New("credential rejected")
	// ErrMalformedDocument is returned when the content cannot be parsed
	ErrMalformedDocument = errors.New("malformed document")
)

// ProcessingError describes why a document could not be extracted
type ProcessingError struct {
	FilePath  string
	FileType  string
	ErrorType ErrorType
	Message   string
	Cause     error
}

// Error implements the error interface
func (pe *ProcessingError) Error() string {
	var parts []string

	parts = append(parts, fmt.Sprintf("processing failed for %s", pe.FilePath))

	if pe.FileType != "" {
		parts = append(parts, fmt.Sprintf("type=%s", pe.FileType))
	}

	parts = append(parts, fmt.Sprintf("error=%s", pe.ErrorType))

	if pe.Message != "" {
		parts = append(parts, fmt.Sprintf("message=%s", pe.Message))
	}

	if pe.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause=%v", pe.Cause))
	}

	return strings.Join(parts, " ")
}

// Unwrap returns the underlying error
func (pe *ProcessingError) Unwrap() error {
	return pe.Cause
}

// NewProcessingError creates a new processing error
func NewProcessingError(filePath, fileType string, errorType ErrorType, message string, cause error) *ProcessingError {
	return &ProcessingError{
		FilePath:  filePath,
		FileType:  fileType,
		ErrorType: errorType,
		Message:   message,
		Cause:     cause,
	}
}

// malformed wraps a parser failure so it matches ErrMalformedDocument
func malformed(filePath, fileType, message string, cause error) *ProcessingError {
	if cause == nil {
		cause = ErrMalformedDocument
	} else if !errors.Is(cause, ErrMalformedDocument) {
		cause = fmt.Errorf("%w: %w", ErrMalformedDocument, cause)
	}
	return NewProcessingError(filePath, fileType, ErrorTypeMalformedDocument, message, cause)
}

// fileAccess wraps an I/O failure
func fileAccess(filePath, fileType string, cause error) *ProcessingError {
	return NewProcessingError(filePath, fileType, ErrorTypeFileAccess, "cannot read file", cause)
}

// ClassifyError classifies an error into an appropriate ErrorType
func ClassifyError(err error) ErrorType {
	var pe *ProcessingError
	if errors.As(err, &pe) {
		return pe.ErrorType
	}

	switch {
	case errors.Is(err, ErrUnsupportedFormat):
		return ErrorTypeUnsupportedFormat
	case errors.Is(err, ErrCredentialRequired):
		return ErrorTypeCredentialRequired
	case errors.Is(err, ErrInvalidCredential):
		return ErrorTypeInvalidCredential
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrPermission):
		return ErrorTypeFileAccess
	default:
		return ErrorTypeMalformedDocument
	}
}

// StatusFor maps an extraction error to the tagged status reported to callers
func StatusFor(err error) Status {
	if err == nil {
		return StatusOK
	}
	switch ClassifyError(err) {
	case ErrorTypeCredentialRequired:
		return StatusNeedsCredential
	case ErrorTypeInvalidCredential:
		return StatusInvalidCredential
	case ErrorTypeUnsupportedFormat:
		return StatusUnsupported
	default:
		return StatusFailed
	}
}
