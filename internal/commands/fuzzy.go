// Copyright (c) 2025 The chatraghu-tui Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// fuzzy.go - "Did you mean" suggestions for unknown commands.
package commands

import (
	"sort"
	"strings"
)

const (
	// DefaultMaxDistance is the largest edit distance still suggested.
	DefaultMaxDistance = 2

	// DefaultLimit caps the number of suggestions.
	DefaultLimit = 3

	// minPrefixLen is the shortest input treated as a name prefix.
	minPrefixLen = 2
)

// Matcher suggests command names close to unknown input.
type Matcher struct {
	table       *Table
	maxDistance int
	limit       int
}

// NewMatcher creates a matcher over table with the default thresholds.
func NewMatcher(table *Table) *Matcher {
	return &Matcher{
		table:       table,
		maxDistance: DefaultMaxDistance,
		limit:       DefaultLimit,
	}
}

type candidate struct {
	name     string
	distance int
}

// Suggest returns up to three command names ordered by edit distance, ties
// kept in table order. A command qualifies when its name or an alias is within
// two edits of input, or when its name starts with input of two or more
// characters. Each command is suggested at most once.
func (m *Matcher) Suggest(input string) []string {
	needle := normalize(input)
	if needle == "" {
		return nil
	}

	var found []candidate
	for _, spec := range m.table.specs {
		name := normalize(spec.Name)

		if d := Levenshtein(needle, name); d <= m.maxDistance {
			found = append(found, candidate{spec.Name, d})
			continue
		}

		hit := false
		for _, alias := range spec.Aliases {
			if d := Levenshtein(needle, normalize(alias)); d <= m.maxDistance {
				found = append(found, candidate{spec.Name, d})
				hit = true
				break
			}
		}
		if hit {
			continue
		}

		if len([]rune(needle)) >= minPrefixLen && strings.HasPrefix(name, needle) {
			found = append(found, candidate{spec.Name, 0})
		}
	}

	sort.SliceStable(found, func(i, j int) bool {
		return found[i].distance < found[j].distance
	})
	if len(found) > m.limit {
		found = found[:m.limit]
	}

	out := make([]string, len(found))
	for i, c := range found {
		out[i] = c.name
	}
	return out
}

// Levenshtein returns the number of single-rune insertions, deletions or
// substitutions needed to turn a into b.
func Levenshtein(a, b string) int {
	s1, s2 := []rune(a), []rune(b)
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	// Two rows instead of the full matrix.
	prev := make([]int, len(s2)+1)
	curr := make([]int, len(s2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(s1); i++ {
		curr[0] = i
		for j := 1; j <= len(s2); j++ {
			cost := 0
			if s1[i-1] != s2[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(s2)]
}
