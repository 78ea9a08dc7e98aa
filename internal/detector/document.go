// Copyright The Crosscheck Authors
// SPDX-License-Identifier: Apache-2.0

package detector

import (
	"strings"
	"unicode"

	"crosscheck/internal/normalize"
)

// Document is the searchable form of one extracted document (or of several
// documents concatenated). Derived haystacks are computed on first use and
// cached; a Document belongs to a single comparison run.
type Document struct {
	Name    string
	Text    string
	Entries []LocatedValue

	haystacks map[bool]*haystack
}

// haystack caches the representations the matchers search
type haystack struct {
	text  string // Text, with whitespace removed when collapsing
	runes []rune // text as runes
	lower []rune // runes lower-cased one to one
	lstr  string // string(lower)
}

// NewDocument creates a searchable document
func NewDocument(name, text string, entries []LocatedValue) *Document {
	return &Document{
		Name:    name,
		Text:    text,
		Entries: entries,
	}
}

// HasEntries reports whether the document carries located spreadsheet values
func (d *Document) HasEntries() bool {
	return len(d.Entries) > 0
}

func (d *Document) haystack(collapse bool) *haystack {
	if d.haystacks == nil {
		d.haystacks = make(map[bool]*haystack, 2)
	}
	if h, ok := d.haystacks[collapse]; ok {
		return h
	}

	text := d.Text
	if collapse {
		text = normalize.RemoveWhitespace(text)
	}
	runes := []rune(text)
	lower := lowerRunes(runes)
	h := &haystack{
		text:  text,
		runes: runes,
		lower: lower,
		lstr:  string(lower),
	}
	d.haystacks[collapse] = h
	return h
}

// lowerRunes lower-cases rune by rune so offsets stay aligned with the input
func lowerRunes(runes []rune) []rune {
	out := make([]rune, len(runes))
	for i, r := range runes {
		out[i] = unicode.ToLower(r)
	}
	return out
}

// lowerString lower-cases s rune by rune
func lowerString(s string) string {
	return string(lowerRunes([]rune(s)))
}

// Concat joins documents into one searchable document. Texts are joined with
// no separator, so a value spanning two documents can match across the
// boundary. Entries are not carried over.
func Concat(name string, docs []*Document) *Document {
	var b strings.Builder
	for _, d := range docs {
		b.WriteString(d.Text)
	}
	return NewDocument(name, b.String(), nil)
}
