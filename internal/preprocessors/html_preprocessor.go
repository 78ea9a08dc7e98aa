// Copyright The Crosscheck Authors
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"

	"crosscheck/internal/observability"
)

// HTMLPreprocessor extracts the visible text of an HTML page: the text nodes
// in document order, joined without separators. Script and style bodies and
// comments are not part of the text.
type HTMLPreprocessor struct {
	observer *observability.StandardObserver
}

// NewHTMLPreprocessor creates a new HTML preprocessor
func NewHTMLPreprocessor() *HTMLPreprocessor {
	return &HTMLPreprocessor{}
}

// SetObserver sets the observability component
func (hp *HTMLPreprocessor) SetObserver(observer *observability.StandardObserver) {
	hp.observer = observer
}

// GetName returns the name of this preprocessor
func (hp *HTMLPreprocessor) GetName() string {
	return "html"
}

// GetSupportedExtensions returns the file extensions this preprocessor supports
func (hp *HTMLPreprocessor) GetSupportedExtensions() []string {
	return []string{".htm", ".html"}
}

// CanProcess checks if this preprocessor can handle the given file
func (hp *HTMLPreprocessor) CanProcess(filePath string) bool {
	return hasExtension(filePath, hp.GetSupportedExtensions())
}

// Process parses the page and collects its text
func (hp *HTMLPreprocessor) Process(filePath, _ string) (result *ProcessedContent, err error) {
	finish := traceProcessing(hp.observer, "html_preprocessor", filePath)
	defer func() { finish(result, err) }()

	result = newContent(filePath, hp.GetName())
	result.Format = "HTML Document"

	data, err := readLimited(filePath, "html")
	if err != nil {
		return result, err
	}

	text, err := ExtractHTMLText(data)
	if err != nil {
		return result, malformed(filePath, "html", "cannot parse HTML", err)
	}

	result.setText(text)
	return result, nil
}

// ExtractHTMLText decodes data using the charset the page declares (UTF-8 when
// it declares none) and returns its text content
func ExtractHTMLText(data []byte) (string, error) {
	r, err := charset.NewReader(bytes.NewReader(data), "text/html")
	if err != nil {
		return "", err
	}

	doc, err := html.Parse(r)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			if n.Data == "script" || n.Data == "style" {
				return
			}
		case html.TextNode:
			b.WriteString(n.Data)
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return b.String(), nil
}
