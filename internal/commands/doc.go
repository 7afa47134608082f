// Copyright (c) 2025 The chatraghu-tui Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the local command table for the terminal.
//
// Commands are looked up by name or alias, case-insensitively. Input that does
// not match exactly can be handed to a Matcher for "did you mean" suggestions.
//
// # Key Types
//
//   - Spec: A command with aliases, description and handler
//   - Result: Handler output plus an optional side effect
//   - Action: Side effect (open URL, copy, clear)
//   - Table: Immutable name/alias index built once
//   - Matcher: Levenshtein-based suggestions
//
// # Usage
//
//	table := commands.Default()
//	if spec, ok := table.Find(input); ok {
//	    result := spec.Handler()
//	    ...
//	}
//
//	suggestions := commands.NewMatcher(table).Suggest("projcts")
//	// ["projects"]
package commands
