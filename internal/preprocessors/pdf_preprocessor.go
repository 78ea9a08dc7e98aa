// Copyright The Crosscheck Authors
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"errors"
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"crosscheck/internal/observability"
	textextractpdftextlib "crosscheck/internal/preprocessors/text-extractors/text-extract-pdftextlib"
)

func init() {
	// pdfcpu would otherwise create a configuration directory on first use
	api.DisableConfigDir()
}

// PDFPreprocessor extracts the text layer of PDF documents
type PDFPreprocessor struct {
	observer *observability.StandardObserver
}

// NewPDFPreprocessor creates a new PDF preprocessor
func NewPDFPreprocessor() *PDFPreprocessor {
	return &PDFPreprocessor{}
}

// SetObserver sets the observability component
func (pp *PDFPreprocessor) SetObserver(observer *observability.StandardObserver) {
	pp.observer = observer
}

// GetName returns the name of this preprocessor
func (pp *PDFPreprocessor) GetName() string {
	return "pdf"
}

// GetSupportedExtensions returns the file extensions this preprocessor supports
func (pp *PDFPreprocessor) GetSupportedExtensions() []string {
	return []string{".pdf"}
}

// CanProcess checks if this preprocessor can handle the given file
func (pp *PDFPreprocessor) CanProcess(filePath string) bool {
	return hasExtension(filePath, pp.GetSupportedExtensions())
}

// Process extracts the text of every page, using credential as the user
// password when the document is encrypted
func (pp *PDFPreprocessor) Process(filePath, credential string) (result *ProcessedContent, err error) {
	finish := traceProcessing(pp.observer, "pdf_preprocessor", filePath)
	defer func() { finish(result, err) }()

	result = newContent(filePath, pp.GetName())
	result.Format = "PDF Document"

	if _, err := os.Stat(filePath); err != nil {
		return result, fileAccess(filePath, "pdf", err)
	}

	pdfContent, err := textextractpdftextlib.ExtractText(filePath, credential)
	switch {
	case errors.Is(err, textextractpdftextlib.ErrPasswordRequired):
		return result, NewProcessingError(filePath, "pdf", ErrorTypeCredentialRequired, "document is encrypted", ErrCredentialRequired)
	case errors.Is(err, textextractpdftextlib.ErrWrongPassword):
		return result, NewProcessingError(filePath, "pdf", ErrorTypeInvalidCredential, "password rejected", ErrInvalidCredential)
	case err != nil:
		return result, malformed(filePath, "pdf", pp.diagnose(filePath, credential, err), err)
	}

	result.PageCount = pdfContent.PageCount
	result.setText(pdfContent.Text)

	if pp.observer != nil && pp.observer.DebugObserver != nil && pdfContent.FailedPages > 0 {
		pp.observer.DebugObserver.LogDetail("pdf_preprocessor",
			fmt.Sprintf("%d of %d pages could not be read", pdfContent.FailedPages, pdfContent.PageCount))
	}

	return result, nil
}

// diagnose runs a structural validation to explain why text extraction failed
func (pp *PDFPreprocessor) diagnose(filePath, credential string, extractErr error) string {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if credential != "" {
		conf.UserPW = credential
	}

	if err := api.ValidateFile(filePath, conf); err != nil {
		return fmt.Sprintf("invalid PDF structure: %v", err)
	}
	return fmt.Sprintf("cannot extract text: %v", extractErr)
}
