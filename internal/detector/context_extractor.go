// Copyright The Crosscheck Authors
// SPDX-License-Identifier: Apache-2.0

package detector

import "unicode/utf8"

// DefaultContextChars is the number of characters kept on each side of a match
const DefaultContextChars = 10

// ContextExtractor cuts a fixed-radius window of text around a match
type ContextExtractor struct {
	// Number of characters before and after the match to keep
	ContextChars int
}

// NewContextExtractor creates a new context extractor with default settings
func NewContextExtractor() *ContextExtractor {
	return &ContextExtractor{
		ContextChars: DefaultContextChars,
	}
}

// WithContextChars sets the number of context characters
func (ce *ContextExtractor) WithContextChars(chars int) *ContextExtractor {
	if chars < 0 {
		chars = 0
	}
	ce.ContextChars = chars
	return ce
}

// ExtractWindow returns text[start-R : end+R] where start and end are byte
// offsets of the match and R is counted in characters. The window is clamped
// to the bounds of text.
func (ce *ContextExtractor) ExtractWindow(text string, start, end int) string {
	start = max(0, min(start, len(text)))
	end = max(start, min(end, len(text)))

	from := start
	for i := 0; i < ce.ContextChars && from > 0; i++ {
		_, size := utf8.DecodeLastRuneInString(text[:from])
		from -= size
	}

	to := end
	for i := 0; i < ce.ContextChars && to < len(text); i++ {
		_, size := utf8.DecodeRuneInString(text[to:])
		to += size
	}

	return text[from:to]
}

// ExtractRuneWindow is ExtractWindow for text already split into runes, with
// start and end given as rune offsets
func (ce *ContextExtractor) ExtractRuneWindow(text []rune, start, end int) string {
	from := max(0, start-ce.ContextChars)
	to := min(len(text), end+ce.ContextChars)
	if from >= to {
		return ""
	}
	return string(text[from:to])
}
