// Copyright The Crosscheck Authors
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"crosscheck/internal/preprocessors/text-extractors/text-extract-pdftextlib/pdftest"
	"crosscheck/internal/preprocessors/text-extractors/text-extract-sheetlib/sheettest"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func writeWorkbook(t *testing.T, name string, opts ...excelize.Options) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Agency: Best Travel Co"))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", 5551234567))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", "john@example.com"))
	_, err := f.NewSheet("Other")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Other", "C3", true))

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, f.SaveAs(path, opts...))
	return path
}

func TestExtract_PlainText(t *testing.T) {
	path := writeFile(t, "notes.txt", []byte("call 5551234567\nthanks"))

	result := NewDefaultManager(nil).Extract(path, "")

	require.True(t, result.OK(), "status %s: %v", result.Status, result.Error)
	assert.Equal(t, "call 5551234567\nthanks", result.Text)
	assert.Equal(t, "notes.txt", result.Filename)
	assert.Equal(t, 3, result.WordCount)
	assert.Equal(t, 2, result.LineCount)
	assert.Empty(t, result.Entries)
}

func TestExtract_PlainTextUTF16WithBOM(t *testing.T) {
	// "hi" in UTF-16LE with a byte order mark
	path := writeFile(t, "utf16.txt", []byte{0xFF, 0xFE, 'h', 0, 'i', 0})

	result := NewDefaultManager(nil).Extract(path, "")

	require.True(t, result.OK())
	assert.Equal(t, "hi", result.Text)
}

func TestExtract_PlainTextInvalidUTF8Fails(t *testing.T) {
	path := writeFile(t, "bad.txt", []byte{'o', 'k', 0xC3, 0x28})

	result := NewDefaultManager(nil).Extract(path, "")

	assert.Equal(t, StatusFailed, result.Status)
	assert.ErrorIs(t, result.Error, ErrMalformedDocument)
	assert.Equal(t, ErrorTypeMalformedDocument, ClassifyError(result.Error))
}

func TestExtract_HTMLSkipsScriptAndStyle(t *testing.T) {
	page := `<html><head><title>Ticket</title><style>p{color:red}</style></head>
<body><p>Passenger: <b>John Smith</b></p><script>var x = "hidden";</script><!-- note --></body></html>`
	path := writeFile(t, "ticket.html", []byte(page))

	result := NewDefaultManager(nil).Extract(path, "")

	require.True(t, result.OK())
	assert.Contains(t, result.Text, "Passenger: John Smith")
	assert.Contains(t, result.Text, "Ticket")
	assert.NotContains(t, result.Text, "hidden")
	assert.NotContains(t, result.Text, "color")
	assert.NotContains(t, result.Text, "note")
}

func TestExtract_Spreadsheet(t *testing.T) {
	path := writeWorkbook(t, "bookings.xlsx")

	result := NewDefaultManager(nil).Extract(path, "")

	require.True(t, result.OK(), "status %s: %v", result.Status, result.Error)
	assert.Equal(t, 2, result.PageCount)
	assert.Contains(t, result.Text, "Agency: Best Travel Co\t5551234567\n")

	locations := make(map[string]any)
	for _, e := range result.Entries {
		locations[e.Location] = e.Original
	}
	assert.Equal(t, "Agency: Best Travel Co", locations["Sheet1!A1"])
	assert.Equal(t, float64(5551234567), locations["Sheet1!B1"])
	assert.Equal(t, "john@example.com", locations["Sheet1!B2"])
	assert.Equal(t, true, locations["Other!C3"])
	assert.Len(t, result.Entries, 4)
	assert.Equal(t, "Sheet1!A1", result.Entries[0].Location)
}

func TestExtract_EncryptedSpreadsheetCredentialProtocol(t *testing.T) {
	path := writeWorkbook(t, "locked.xlsx", excelize.Options{Password: "s3cret"})
	pm := NewDefaultManager(nil)

	missing := pm.Extract(path, "")
	assert.Equal(t, StatusNeedsCredential, missing.Status)
	assert.ErrorIs(t, missing.Error, ErrCredentialRequired)

	wrong := pm.Extract(path, "guess")
	assert.Equal(t, StatusInvalidCredential, wrong.Status)
	assert.ErrorIs(t, wrong.Error, ErrInvalidCredential)

	right := pm.Extract(path, "s3cret")
	require.True(t, right.OK(), "status %s: %v", right.Status, right.Error)
	assert.NotEmpty(t, right.Entries)
}

func TestExtract_LegacySpreadsheet(t *testing.T) {
	rows := [][]string{{"Agency: Best Travel Co", "5551234567"}, {"", "john@example.com"}}
	path := writeFile(t, "old.xls", sheettest.XLS("Sheet1", rows, false))

	result := NewDefaultManager(nil).Extract(path, "")

	require.True(t, result.OK(), "status %s: %v", result.Status, result.Error)
	assert.Equal(t, "spreadsheet", result.ProcessorType)
	assert.Contains(t, result.Text, "Agency: Best Travel Co\t5551234567")
	require.Len(t, result.Entries, 3)
	assert.Equal(t, "Sheet1!B2", result.Entries[2].Location)
	assert.Equal(t, "john@example.com", result.Entries[2].Value)
}

func TestExtract_EncryptedLegacySpreadsheetUnsupported(t *testing.T) {
	path := writeFile(t, "locked.xls", sheettest.XLS("Sheet1", [][]string{{"x"}}, true))

	result := NewDefaultManager(nil).Extract(path, "pw")

	assert.Equal(t, StatusUnsupported, result.Status)
	assert.ErrorIs(t, result.Error, ErrUnsupportedFormat)
}

func TestExtract_PDF(t *testing.T) {
	path := writeFile(t, "itinerary.pdf", pdftest.Document("Passenger: Jane Doe", "Phone 5551234567"))

	result := NewDefaultManager(nil).Extract(path, "")

	require.True(t, result.OK(), "status %s: %v", result.Status, result.Error)
	assert.Equal(t, "pdf", result.ProcessorType)
	assert.Equal(t, 2, result.PageCount)
	assert.Equal(t, "Passenger: Jane DoePhone 5551234567", result.Text)
	assert.Empty(t, result.Entries)
}

func TestExtract_EncryptedPDFCredentialProtocol(t *testing.T) {
	plain := writeFile(t, "plain.pdf", pdftest.Document("Jane Doe"))
	conf := model.NewRC4Configuration("s3cret", "owner", 128)
	path := filepath.Join(t.TempDir(), "locked.pdf")
	require.NoError(t, api.EncryptFile(plain, path, conf))
	pm := NewDefaultManager(nil)

	missing := pm.Extract(path, "")
	assert.Equal(t, StatusNeedsCredential, missing.Status)
	assert.ErrorIs(t, missing.Error, ErrCredentialRequired)

	wrong := pm.Extract(path, "guess")
	assert.Equal(t, StatusInvalidCredential, wrong.Status)
	assert.ErrorIs(t, wrong.Error, ErrInvalidCredential)

	right := pm.Extract(path, "s3cret")
	require.True(t, right.OK(), "status %s: %v", right.Status, right.Error)
	assert.Equal(t, "Jane Doe", right.Text)
}

func TestExtract_MalformedPDF(t *testing.T) {
	path := writeFile(t, "broken.pdf", []byte("%PDF-1.4\nthis is not a pdf body"))

	result := NewDefaultManager(nil).Extract(path, "")

	assert.Equal(t, StatusFailed, result.Status)
	assert.Error(t, result.Error)
	assert.Equal(t, ErrorTypeMalformedDocument, ClassifyError(result.Error))
}

func TestExtract_UnsupportedFormat(t *testing.T) {
	path := writeFile(t, "photo.jpg", []byte{0xFF, 0xD8, 0xFF})

	result := NewDefaultManager(nil).Extract(path, "")

	assert.Equal(t, StatusUnsupported, result.Status)
	assert.ErrorIs(t, result.Error, ErrUnsupportedFormat)
	assert.Equal(t, "none", result.ProcessorType)
}

func TestExtract_MissingFile(t *testing.T) {
	result := NewDefaultManager(nil).Extract(filepath.Join(t.TempDir(), "gone.txt"), "")

	assert.Equal(t, StatusFailed, result.Status)
	assert.Equal(t, ErrorTypeFileAccess, ClassifyError(result.Error))
}

func TestSupportedExtensions(t *testing.T) {
	exts := NewDefaultManager(nil).SupportedExtensions()
	for _, ext := range []string{".txt", ".htm", ".html", ".pdf", ".xlsx", ".xls"} {
		assert.Contains(t, exts, ext)
	}
	assert.True(t, NewPDFPreprocessor().CanProcess("A.PDF"))
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want Status
	}{
		{nil, StatusOK},
		{ErrCredentialRequired, StatusNeedsCredential},
		{NewProcessingError("x.pdf", "pdf", ErrorTypeInvalidCredential, "", ErrInvalidCredential), StatusInvalidCredential},
		{ErrUnsupportedFormat, StatusUnsupported},
		{errors.New("boom"), StatusFailed},
	}
	for _, tc := range cases {
		if got := StatusFor(tc.err); got != tc.want {
			t.Errorf("StatusFor(%v) = %s, want %s", tc.err, got, tc.want)
		}
	}
}

func TestProcessingErrorMessage(t *testing.T) {
	err := NewProcessingError("/tmp/a.pdf", "pdf", ErrorTypeCredentialRequired, "document is encrypted", ErrCredentialRequired)

	assert.Equal(t, "processing failed for /tmp/a.pdf type=pdf error=credential_required message=document is encrypted cause=document is encrypted and needs a credential", err.Error())
	assert.True(t, errors.Is(err, ErrCredentialRequired))
}
