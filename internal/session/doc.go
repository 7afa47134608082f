// Copyright (c) 2025 The chatraghu-tui Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session holds per-user state that outlives a single command: the
// submitted-input history and the conversation thread identifier.
//
// # Key Types
//
//   - History: most-recent-first input list with a browse cursor
//
// # Usage
//
//	h := session.NewHistory(0)
//	h.Push("whoami")
//	prev, _ := h.Older(draft)
//	next := h.Newer()
//
// Resolve the thread identifier once per process:
//
//	id := session.ResolveID(ctx, store)
package session
