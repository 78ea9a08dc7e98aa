// Copyright The Crosscheck Authors
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"crosscheck/internal/config"
	"crosscheck/internal/detector"
)

// BuildMatcher constructs the matcher for the configured mode. The exact
// matcher is always case-insensitive for text values.
func BuildMatcher(cfg CompareConfig) detector.Matcher {
	if cfg.Mode == config.ModeFuzzy {
		return detector.NewFuzzyMatcher(detector.FuzzyOptions{
			Threshold:          cfg.Threshold,
			Boundary:           cfg.Boundary,
			CollapseWhitespace: cfg.CollapseWhitespace,
			ContextChars:       cfg.ContextChars,
		})
	}
	return detector.NewExactMatcher(detector.ExactOptions{
		CaseInsensitive:    true,
		CollapseWhitespace: cfg.CollapseWhitespace,
		ContextChars:       cfg.ContextChars,
	})
}

// SchemaFor returns the result schema of a mode: scored rows for fuzzy
// matching, simple rows otherwise
func SchemaFor(mode config.Mode) detector.Schema {
	if mode == config.ModeFuzzy {
		return detector.SchemaScored
	}
	return detector.SchemaSimple
}
