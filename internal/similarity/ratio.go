// Copyright The Crosscheck Authors
// SPDX-License-Identifier: Apache-2.0

// Package similarity scores how alike two strings are on a 0-100 scale.
package similarity

import (
	"unicode/utf8"

	"github.com/agext/levenshtein"
)

// indelParams prices a substitution as one deletion plus one insertion, which
// turns the Levenshtein distance into the InDel distance used by Ratio.
var indelParams = levenshtein.NewParams().SubCost(2)

// Ratio returns 100 * (1 - d/(len(a)+len(b))) where d is the InDel edit
// distance between a and b. Lengths are counted in runes. Two empty strings
// are identical and score 100.
func Ratio(a, b string) float64 {
	total := utf8.RuneCountInString(a) + utf8.RuneCountInString(b)
	if total == 0 {
		return 100
	}
	if a == b {
		return 100
	}

	d := Distance(a, b)
	return 100 * float64(total-d) / float64(total)
}

// Distance returns the InDel edit distance between a and b
func Distance(a, b string) int {
	return levenshtein.Distance(a, b, indelParams)
}
