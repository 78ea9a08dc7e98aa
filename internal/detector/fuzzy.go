// Copyright The Crosscheck Authors
// SPDX-License-Identifier: Apache-2.0

package detector

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"crosscheck/internal/normalize"
	"crosscheck/internal/similarity"
)

// Boundary selects how a score is compared with the threshold
type Boundary string

const (
	// BoundaryDefault is strict for flat text and inclusive for spreadsheet entries
	BoundaryDefault Boundary = "default"
	// BoundaryStrict reports a hit only when score > threshold
	BoundaryStrict Boundary = "strict"
	// BoundaryInclusive reports a hit when score >= threshold
	BoundaryInclusive Boundary = "inclusive"
)

// ParseBoundary converts a configuration value to a Boundary
func ParseBoundary(s string) (Boundary, bool) {
	switch b := Boundary(strings.ToLower(strings.TrimSpace(s))); b {
	case "", BoundaryDefault:
		return BoundaryDefault, true
	case BoundaryStrict, BoundaryInclusive:
		return b, true
	default:
		return BoundaryDefault, false
	}
}

// Passes applies the boundary; inclusiveByDefault is the strategy's own rule
func (b Boundary) Passes(score, threshold float64, inclusiveByDefault bool) bool {
	inclusive := inclusiveByDefault
	switch b {
	case BoundaryStrict:
		inclusive = false
	case BoundaryInclusive:
		inclusive = true
	}
	if inclusive {
		return score >= threshold
	}
	return score > threshold
}

// FuzzyOptions configures the fuzzy matcher
type FuzzyOptions struct {
	// Threshold is the score a hit has to reach; the matcher applies no default
	Threshold float64
	// Boundary selects strict or inclusive threshold comparison
	Boundary Boundary
	// CollapseWhitespace removes whitespace from flat-text documents and queries
	CollapseWhitespace bool
	// ContextChars is the context radius around a flat-text hit
	ContextChars int
}

// FuzzyMatcher finds approximate occurrences of a value. Flat text is searched
// with a sliding window; spreadsheet entries are searched phrase by phrase.
type FuzzyMatcher struct {
	opts    FuzzyOptions
	context *ContextExtractor
}

// NewFuzzyMatcher creates a fuzzy matcher
func NewFuzzyMatcher(opts FuzzyOptions) *FuzzyMatcher {
	if opts.Boundary == "" {
		opts.Boundary = BoundaryDefault
	}
	return &FuzzyMatcher{
		opts:    opts,
		context: NewContextExtractor().WithContextChars(opts.ContextChars),
	}
}

// Name returns the strategy name
func (fm *FuzzyMatcher) Name() string {
	return "fuzzy"
}

// Find searches the document's entries when it has any, its flat text otherwise
func (fm *FuzzyMatcher) Find(q Query, doc *Document) []Match {
	if q.Value == "" {
		return nil
	}
	if doc.HasEntries() {
		return fm.FindInEntries(q, doc.Name, doc.Entries)
	}
	if m, ok := fm.FindBestWindow(q, doc); ok {
		return []Match{m}
	}
	return nil
}

// FindBestWindow slides a window of len(value) runes over the lower-cased text
// and keeps the best scoring one. On equal scores the earliest window wins.
// The best window is reported only when it passes the threshold (strict by
// default).
func (fm *FuzzyMatcher) FindBestWindow(q Query, doc *Document) (Match, bool) {
	h := doc.haystack(fm.opts.CollapseWhitespace)

	base := q.Value
	if fm.opts.CollapseWhitespace {
		base = normalize.RemoveWhitespace(base)
	}
	base = lowerString(base)
	width := utf8.RuneCountInString(base)
	if width == 0 || width > len(h.lower) {
		return Match{}, false
	}

	bestStart, bestScore := -1, -1.0
	if idx := strings.Index(h.lstr, base); idx >= 0 {
		// The earliest exact occurrence scores 100 and no earlier window can tie it.
		bestStart, bestScore = utf8.RuneCountInString(h.lstr[:idx]), 100
	} else {
		for start := 0; start <= len(h.lower)-width; start++ {
			score := similarity.Ratio(base, string(h.lower[start:start+width]))
			if score > bestScore {
				bestStart, bestScore = start, score
			}
		}
	}

	if bestStart < 0 || !fm.opts.Boundary.Passes(bestScore, fm.opts.Threshold, false) {
		return Match{}, false
	}

	end := bestStart + width
	score := bestScore
	return Match{
		Type:     q.Type,
		Text:     q.Value,
		Phrase:   string(h.runes[bestStart:end]),
		Context:  fm.context.ExtractRuneWindow(h.runes, bestStart, end),
		Ratio:    &score,
		Filename: doc.Name,
		Record:   q.Record,
		Start:    bestStart,
		End:      end,
	}, true
}

// wordPattern matches the word tokens an entry is split into
var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// FindInEntries scores every contiguous phrase of every entry against the
// value and reports each entry whose best phrase passes the threshold
// (inclusive by default). Entries are independent: one value may be reported
// for several cells.
func (fm *FuzzyMatcher) FindInEntries(q Query, filename string, entries []LocatedValue) []Match {
	base := lowerString(q.Value)
	if base == "" {
		return nil
	}

	var matches []Match
	for _, entry := range entries {
		phrase, score, ok := bestPhrase(base, entry.Value)
		if !ok || !fm.opts.Boundary.Passes(score, fm.opts.Threshold, true) {
			continue
		}

		s := score
		matches = append(matches, Match{
			Type:     q.Type,
			Text:     q.Value,
			Location: entry.Location,
			Phrase:   phrase,
			Ratio:    &s,
			Filename: filename,
			Record:   q.Record,
		})
	}
	return matches
}

// bestPhrase returns the highest scoring space-joined token run of value.
// The first phrase reaching the maximum wins.
func bestPhrase(base, value string) (string, float64, bool) {
	tokens := wordPattern.FindAllString(lowerString(value), -1)
	if len(tokens) == 0 {
		return "", 0, false
	}

	best, bestScore := "", -1.0
	for i := 0; i < len(tokens); i++ {
		for j := i + 1; j <= len(tokens); j++ {
			phrase := strings.Join(tokens[i:j], " ")
			if score := similarity.Ratio(base, phrase); score > bestScore {
				best, bestScore = phrase, score
			}
		}
	}
	return best, bestScore, true
}
