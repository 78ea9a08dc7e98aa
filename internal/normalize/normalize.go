// Copyright The Crosscheck Authors
// SPDX-License-Identifier: Apache-2.0

// Package normalize canonicalizes reference field values into the form the
// matchers compare against.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Kind selects the normalization applied to a field
type Kind int

const (
	// KindText lower-cases the value (email, name, agency, arbitrary columns)
	KindText Kind = iota
	// KindPhone keeps only the decimal digits before the first '.'
	KindPhone
)

// String returns the configuration name of the kind
func (k Kind) String() string {
	switch k {
	case KindPhone:
		return "phone"
	default:
		return "text"
	}
}

// Options controls the optional text transforms
type Options struct {
	// CollapseWhitespace removes every whitespace rune from text values
	CollapseWhitespace bool
	// FoldUnicode applies NFKC before lower-casing
	FoldUnicode bool
}

// Normalize returns the comparable form of raw. A nil raw value yields "".
func Normalize(raw *string, kind Kind, opts Options) string {
	if raw == nil {
		return ""
	}

	switch kind {
	case KindPhone:
		return Phone(*raw)
	default:
		return Text(*raw, opts)
	}
}

// Phone truncates at the first '.' (numeric cells rendered as "5551234567.0")
// and strips every character that is not an ASCII digit.
func Phone(value string) string {
	if i := strings.IndexByte(value, '.'); i >= 0 {
		value = value[:i]
	}

	var b strings.Builder
	b.Grow(len(value))
	for i := 0; i < len(value); i++ {
		if c := value[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Text lower-cases value and applies the optional transforms
func Text(value string, opts Options) string {
	if opts.FoldUnicode {
		value = norm.NFKC.String(value)
	}
	value = strings.ToLower(value)
	if opts.CollapseWhitespace {
		value = RemoveWhitespace(value)
	}
	return value
}

// RemoveWhitespace drops every unicode whitespace rune
func RemoveWhitespace(value string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, value)
}

// Record normalizes the listed columns of rec into a new map. rec itself is
// not modified; columns that are absent in rec map to "".
func Record(rec map[string]*string, kinds map[string]Kind, opts Options) map[string]string {
	out := make(map[string]string, len(kinds))
	for column, kind := range kinds {
		out[column] = Normalize(rec[column], kind, opts)
	}
	return out
}
