// Copyright The Crosscheck Authors
// SPDX-License-Identifier: Apache-2.0

package textextractpdftextlib

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

var (
	// ErrPasswordRequired means the document is encrypted and no password was given
	ErrPasswordRequired = errors.New("pdf is password protected")
	// ErrWrongPassword means the given password does not open the document
	ErrWrongPassword = errors.New("pdf password is incorrect")
)

// TextContent represents the extracted text content from a PDF document
type TextContent struct {
	Filename    string
	Text        string
	PageCount   int
	FailedPages int
}

// ExtractText extracts the text of every page of a PDF document. Pages are
// joined in order without a separator. An encrypted document is opened with
// password; an empty user password is tried first.
func ExtractText(filePath, password string) (content *TextContent, err error) {
	content = &TextContent{
		Filename: filepath.Base(filePath),
	}

	f, err := os.Open(filepath.Clean(filePath))
	if err != nil {
		return content, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return content, err
	}

	// The parser panics on some malformed input
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("error reading PDF: %v", rec)
		}
	}()

	r, err := openReader(f, info.Size(), password)
	if err != nil {
		return content, err
	}

	content.PageCount = r.NumPage()

	type pageResult struct {
		pageNum int
		text    string
		err     error
	}

	resultChan := make(chan pageResult, content.PageCount)
	sem := make(chan struct{}, runtime.NumCPU())

	for i := 1; i <= content.PageCount; i++ {
		go func(pageNum int) {
			sem <- struct{}{}
			defer func() { <-sem }()
			defer func() {
				if rec := recover(); rec != nil {
					resultChan <- pageResult{pageNum: pageNum, err: fmt.Errorf("page %d: %v", pageNum, rec)}
				}
			}()

			p := r.Page(pageNum)
			if p.V.IsNull() {
				resultChan <- pageResult{pageNum: pageNum, err: fmt.Errorf("null page")}
				return
			}

			text, err := extractTextWithProperSpacing(p)
			resultChan <- pageResult{pageNum: pageNum, text: text, err: err}
		}(i)
	}

	pageTexts := make(map[int]string, content.PageCount)
	for i := 0; i < content.PageCount; i++ {
		result := <-resultChan
		if result.err != nil {
			content.FailedPages++
			continue
		}
		pageTexts[result.pageNum] = result.text
	}

	var buf bytes.Buffer
	for i := 1; i <= content.PageCount; i++ {
		buf.WriteString(pageTexts[i])
	}
	content.Text = buf.String()

	if content.PageCount > 0 && content.FailedPages == content.PageCount {
		return content, fmt.Errorf("no readable pages in %d", content.PageCount)
	}
	return content, nil
}

// openReader opens the document, supplying password at most once
func openReader(f *os.File, size int64, password string) (*pdf.Reader, error) {
	asked := false
	r, err := pdf.NewReaderEncrypted(f, size, func() string {
		if asked {
			return ""
		}
		asked = true
		return password
	})
	if errors.Is(err, pdf.ErrInvalidPassword) {
		if password == "" {
			return nil, ErrPasswordRequired
		}
		return nil, ErrWrongPassword
	}
	if err != nil {
		return nil, fmt.Errorf("error opening PDF: %w", err)
	}
	return r, nil
}

// extractTextWithProperSpacing extracts text using row-based positioning for
// better spacing. Rows are separated by newlines; the page text has no
// trailing newline.
func extractTextWithProperSpacing(p pdf.Page) (string, error) {
	rows, err := p.GetTextByRow()
	if err != nil {
		return p.GetPlainText(nil)
	}

	sortedRows := make([]*pdf.Row, 0, len(rows))
	for _, row := range rows {
		if row != nil && len(row.Content) > 0 {
			sortedRows = append(sortedRows, row)
		}
	}

	// PDF y grows upwards, so the top row has the largest y
	sort.SliceStable(sortedRows, func(i, j int) bool {
		return getAverageY(sortedRows[i].Content) > getAverageY(sortedRows[j].Content)
	})

	lines := make([]string, 0, len(sortedRows))
	for _, row := range sortedRows {
		if rowText := reconstructRowText(row.Content); strings.TrimSpace(rowText) != "" {
			lines = append(lines, rowText)
		}
	}

	return strings.Join(lines, "\n"), nil
}

// getAverageY calculates the average Y coordinate for text elements in a row
func getAverageY(textElements []pdf.Text) float64 {
	if len(textElements) == 0 {
		return 0
	}

	var totalY float64
	for _, element := range textElements {
		totalY += element.Y
	}

	return totalY / float64(len(textElements))
}

// reconstructRowText rebuilds a row left to right, inserting a space where
// the gap between two runs is wider than a fifth of the font size
func reconstructRowText(textElements []pdf.Text) string {
	if len(textElements) == 0 {
		return ""
	}

	sortedElements := make([]pdf.Text, len(textElements))
	copy(sortedElements, textElements)
	sort.SliceStable(sortedElements, func(i, j int) bool {
		return sortedElements[i].X < sortedElements[j].X
	})

	var buf bytes.Buffer
	for i, element := range sortedElements {
		buf.WriteString(element.S)

		if i == len(sortedElements)-1 {
			break
		}
		gap := sortedElements[i+1].X - (element.X + element.W)

		fontSize := element.FontSize
		if fontSize <= 0 {
			fontSize = 12
		}
		if gap > fontSize*0.2 {
			buf.WriteString(" ")
		}
	}

	return buf.String()
}
