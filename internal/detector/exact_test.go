// Copyright The Crosscheck Authors
// SPDX-License-Identifier: Apache-2.0

package detector

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newExact(collapse bool) *ExactMatcher {
	return NewExactMatcher(ExactOptions{
		CaseInsensitive:    true,
		CollapseWhitespace: collapse,
		ContextChars:       DefaultContextChars,
	})
}

func TestExactMatcher_PhoneContextClampedToBounds(t *testing.T) {
	doc := NewDocument("doc.txt", "contact 5551234567 today", nil)

	matches := newExact(false).Find(Query{Type: "Phone", Value: "5551234567", Literal: true}, doc)

	require.Len(t, matches, 1)
	m := matches[0]
	assert.Equal(t, "Phone", m.Type)
	assert.Equal(t, "5551234567", m.Text)
	assert.Equal(t, "contact 5551234567 today", m.Context)
	assert.Equal(t, 8, m.Start)
	assert.Equal(t, 18, m.End)
	assert.Nil(t, m.Ratio)
}

func TestExactMatcher_ContextIsTenCharactersEachSide(t *testing.T) {
	text := strings.Repeat("a", 20) + "5551234567" + strings.Repeat("b", 20)
	doc := NewDocument("doc.txt", text, nil)

	matches := newExact(false).Find(Query{Type: "Phone", Value: "5551234567", Literal: true}, doc)

	require.Len(t, matches, 1)
	assert.Equal(t, strings.Repeat("a", 10)+"5551234567"+strings.Repeat("b", 10), matches[0].Context)
}

func TestExactMatcher_ContextCountsCharactersNotBytes(t *testing.T) {
	text := strings.Repeat("é", 15) + "X" + strings.Repeat("ü", 15)
	doc := NewDocument("doc.txt", text, nil)

	matches := newExact(false).Find(Query{Type: "Name", Value: "x"}, doc)

	require.Len(t, matches, 1)
	assert.Equal(t, strings.Repeat("é", 10)+"X"+strings.Repeat("ü", 10), matches[0].Context)
	assert.Equal(t, 15, matches[0].Start)
}

func TestExactMatcher_EmptyValueNeverMatches(t *testing.T) {
	doc := NewDocument("doc.txt", "anything at all", nil)

	assert.Empty(t, newExact(false).Find(Query{Type: "Email", Value: ""}, doc))
	assert.Empty(t, newExact(false).Find(Query{Type: "Phone", Value: "", Literal: true}, doc))
}

func TestExactMatcher_TextIsEscapedAndCaseInsensitive(t *testing.T) {
	doc := NewDocument("doc.txt", "Mail: JOHN.DOE@EXAMPLE.COM, agent axb", nil)
	em := newExact(false)

	matches := em.Find(Query{Type: "Email", Value: "john.doe@example.com"}, doc)
	require.Len(t, matches, 1)
	assert.Equal(t, "JOHN.DOE@EXAMPLE.COM", matches[0].Text)

	// "." must not behave as a wildcard
	assert.Empty(t, em.Find(Query{Type: "Name", Value: "a.b"}, doc))
	// regex metacharacters in names are harmless
	assert.Empty(t, em.Find(Query{Type: "Name", Value: "o'brien (jr)"}, doc))
}

func TestExactMatcher_OnlyFirstOccurrence(t *testing.T) {
	doc := NewDocument("doc.txt", "Best Travel and best travel again", nil)

	matches := newExact(false).Find(Query{Type: "Agency", Value: "best travel"}, doc)

	require.Len(t, matches, 1)
	assert.Equal(t, "Best Travel", matches[0].Text)
	assert.Equal(t, 0, matches[0].Start)
}

func TestExactMatcher_CollapseWhitespace(t *testing.T) {
	doc := NewDocument("doc.txt", "Passenger: John   Smith\nSeat 4A", nil)

	assert.Empty(t, newExact(false).Find(Query{Type: "Name", Value: "johnsmith"}, doc))

	matches := newExact(true).Find(Query{Type: "Name", Value: "john smith"}, doc)
	require.Len(t, matches, 1)
	assert.Equal(t, "JohnSmith", matches[0].Text)
	assert.Equal(t, "Passenger:JohnSmithSeat4A", matches[0].Context)
}

func TestExactMatcher_FindFirstSpan(t *testing.T) {
	em := newExact(false)

	span, ok := em.FindFirst("123", "ab123cd123", true)
	require.True(t, ok)
	assert.Equal(t, Span{Start: 2, End: 5}, span)

	_, ok = em.FindFirst("", "ab", false)
	assert.False(t, ok)

	_, ok = em.FindFirst("(", "a(b", true)
	assert.False(t, ok, "an invalid literal pattern never matches")
}

func TestConcat_BoundarySpanningIsHarmless(t *testing.T) {
	a := NewDocument("a.txt", "abc", nil)
	b := NewDocument("b.txt", "def", nil)
	joined := Concat("combined", []*Document{a, b})
	single := NewDocument("combined", "abcdef", nil)

	assert.Equal(t, "abcdef", joined.Text)
	em := newExact(false)
	for _, value := range []string{"ab", "ef", "cd", "zz"} {
		q := Query{Type: "Name", Value: value}
		assert.Equal(t, em.Find(q, single), em.Find(q, joined), value)
	}
}
