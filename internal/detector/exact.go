// Copyright The Crosscheck Authors
// SPDX-License-Identifier: Apache-2.0

package detector

import (
	"regexp"
	"unicode/utf8"

	"crosscheck/internal/normalize"
)

// ExactOptions configures the exact matcher
type ExactOptions struct {
	// CaseInsensitive applies to text (non literal) queries
	CaseInsensitive bool
	// CollapseWhitespace removes whitespace from the document and text queries
	CollapseWhitespace bool
	// ContextChars is the context radius around a hit
	ContextChars int
}

// ExactMatcher reports the first literal occurrence of a value
type ExactMatcher struct {
	opts    ExactOptions
	context *ContextExtractor
}

// NewExactMatcher creates an exact matcher
func NewExactMatcher(opts ExactOptions) *ExactMatcher {
	return &ExactMatcher{
		opts:    opts,
		context: NewContextExtractor().WithContextChars(opts.ContextChars),
	}
}

// Name returns the strategy name
func (em *ExactMatcher) Name() string {
	return "exact"
}

// Find returns at most one match: the first occurrence of q in doc
func (em *ExactMatcher) Find(q Query, doc *Document) []Match {
	if q.Value == "" {
		return nil
	}

	text := doc.haystack(em.opts.CollapseWhitespace).text
	span, ok := em.FindFirst(em.pattern(q), text, q.Literal)
	if !ok {
		return nil
	}

	return []Match{{
		Type:     q.Type,
		Text:     text[span.Start:span.End],
		Context:  em.context.ExtractWindow(text, span.Start, span.End),
		Filename: doc.Name,
		Record:   q.Record,
		Start:    utf8.RuneCountInString(text[:span.Start]),
		End:      utf8.RuneCountInString(text[:span.End]),
	}}
}

func (em *ExactMatcher) pattern(q Query) string {
	if !q.Literal && em.opts.CollapseWhitespace {
		return normalize.RemoveWhitespace(q.Value)
	}
	return q.Value
}

// Span is a byte range in a haystack
type Span struct {
	Start int
	End   int
}

// FindFirst locates the first occurrence of pattern in haystack. A literal
// pattern is compiled as a regular expression unchanged; any other pattern is
// escaped so every character matches itself, and is matched case-insensitively
// when the matcher is configured so. An empty or invalid pattern never matches.
func (em *ExactMatcher) FindFirst(pattern, haystack string, literal bool) (Span, bool) {
	if pattern == "" {
		return Span{}, false
	}

	expr := pattern
	if !literal {
		expr = regexp.QuoteMeta(pattern)
		if em.opts.CaseInsensitive {
			expr = "(?i)" + expr
		}
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return Span{}, false
	}

	loc := re.FindStringIndex(haystack)
	if loc == nil || loc[0] == loc[1] {
		return Span{}, false
	}
	return Span{Start: loc[0], End: loc[1]}, true
}
