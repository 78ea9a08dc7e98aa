// Copyright The Crosscheck Authors
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"errors"
	"os"

	"crosscheck/internal/detector"
	"crosscheck/internal/observability"
	textextractsheetlib "crosscheck/internal/preprocessors/text-extractors/text-extract-sheetlib"
)

// SpreadsheetPreprocessor reads workbooks into a tab-separated text rendering
// plus one located entry per non-empty cell
type SpreadsheetPreprocessor struct {
	observer *observability.StandardObserver
}

// NewSpreadsheetPreprocessor creates a new spreadsheet preprocessor
func NewSpreadsheetPreprocessor() *SpreadsheetPreprocessor {
	return &SpreadsheetPreprocessor{}
}

// SetObserver sets the observability component
func (sp *SpreadsheetPreprocessor) SetObserver(observer *observability.StandardObserver) {
	sp.observer = observer
}

// GetName returns the name of this preprocessor
func (sp *SpreadsheetPreprocessor) GetName() string {
	return "spreadsheet"
}

// GetSupportedExtensions returns the file extensions this preprocessor supports
func (sp *SpreadsheetPreprocessor) GetSupportedExtensions() []string {
	return []string{".xlsx", ".xlsm", ".xls"}
}

// CanProcess checks if this preprocessor can handle the given file
func (sp *SpreadsheetPreprocessor) CanProcess(filePath string) bool {
	return hasExtension(filePath, sp.GetSupportedExtensions())
}

// Process reads every sheet, decrypting the workbook with credential when it
// is password protected
func (sp *SpreadsheetPreprocessor) Process(filePath, credential string) (result *ProcessedContent, err error) {
	finish := traceProcessing(sp.observer, "spreadsheet_preprocessor", filePath)
	defer func() { finish(result, err) }()

	result = newContent(filePath, sp.GetName())
	result.Format = "Spreadsheet"

	if _, err := os.Stat(filePath); err != nil {
		return result, fileAccess(filePath, "xlsx", err)
	}

	sheets, err := textextractsheetlib.ExtractText(filePath, credential)
	switch {
	case errors.Is(err, textextractsheetlib.ErrPasswordRequired):
		return result, NewProcessingError(filePath, "xlsx", ErrorTypeCredentialRequired, "workbook is encrypted", ErrCredentialRequired)
	case errors.Is(err, textextractsheetlib.ErrWrongPassword):
		return result, NewProcessingError(filePath, "xlsx", ErrorTypeInvalidCredential, "password rejected", ErrInvalidCredential)
	case errors.Is(err, textextractsheetlib.ErrEncryptedLegacy):
		return result, NewProcessingError(filePath, "xls", ErrorTypeUnsupportedFormat, err.Error(), ErrUnsupportedFormat)
	case err != nil:
		return result, malformed(filePath, "xlsx", "cannot read workbook", err)
	}

	result.PageCount = sheets.SheetCount
	result.Entries = make([]detector.LocatedValue, 0, len(sheets.Cells))
	for _, cell := range sheets.Cells {
		result.Entries = append(result.Entries, detector.LocatedValue{
			Value:    cell.Text,
			Location: cell.Location(),
			Original: cell.Value,
		})
	}
	result.setText(sheets.Text)

	return result, nil
}
