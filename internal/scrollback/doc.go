// Copyright (c) 2025 The chatraghu-tui Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package scrollback holds the terminal's bounded, line-structured history.
//
// The scrollback is a sequence of lines, each made of segments. A segment is
// either plain text or a structural prefix marker that the presentation layer
// renders as the response label. Keeping the marker structural means the
// persisted lines and the character accounting never depend on how the label
// is styled.
//
// # Key Types
//
//   - Buffer: the line model with a character budget (Cap) and front eviction
//   - Op: a pending mutation (text, prefix or newline)
//   - Scheduler: coalesces bursts of ops into one flush per frame
//   - Snapshot: the published, read-only view of the buffer after a flush
//
// # Usage
//
//	sched := scrollback.NewScheduler(scrollback.NewBuffer(), func(s scrollback.Snapshot) {
//	    program.Send(s)
//	})
//	sched.AppendPrefix()
//	sched.AppendText("hello\nworld")
//	sched.AppendNewline()
//
// All three calls above land in a single published snapshot.
package scrollback
