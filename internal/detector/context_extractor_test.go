// Copyright The Crosscheck Authors
// SPDX-License-Identifier: Apache-2.0

package detector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextExtractor_ExtractWindow(t *testing.T) {
	tests := []struct {
		name       string
		chars      int
		text       string
		start, end int
		want       string
	}{
		{"middle", 3, "0123456789", 4, 6, "12345678"},
		{"clamped left", 3, "0123456789", 1, 2, "01234"},
		{"clamped right", 3, "0123456789", 8, 10, "56789"},
		{"zero radius", 0, "0123456789", 4, 6, "45"},
		{"multibyte", 2, "ééXéé", 4, 5, "ééXéé"},
		{"past the end", 3, "abc", 10, 12, "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ce := NewContextExtractor().WithContextChars(tt.chars)
			assert.Equal(t, tt.want, ce.ExtractWindow(tt.text, tt.start, tt.end))
		})
	}
}

func TestContextExtractor_Defaults(t *testing.T) {
	assert.Equal(t, DefaultContextChars, NewContextExtractor().ContextChars)
	assert.Equal(t, 0, NewContextExtractor().WithContextChars(-4).ContextChars)
}

func TestContextExtractor_ExtractRuneWindow(t *testing.T) {
	ce := NewContextExtractor().WithContextChars(2)
	runes := []rune("añbcdéf")

	assert.Equal(t, "ñbcdé", ce.ExtractRuneWindow(runes, 3, 4))
	assert.Equal(t, "añb", ce.ExtractRuneWindow(runes, 0, 1))
	assert.Equal(t, "", ce.ExtractRuneWindow(runes, 9, 9))
}
