// Copyright (c) 2025 The chatraghu-tui Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stream ingests chunked chat replies from the remote endpoint.
//
// The endpoint answers a JSON POST with newline-terminated records. Records
// starting with "data:" carry one payload chunk after a single separator
// character; "data: [DONE]" ends the stream; everything else is ignored.
//
// Each Send runs one session through Idle, Requesting, Streaming and a
// terminal state (Completed, Aborted or Failed) before returning to Idle.
// Output goes to a Sink as scrollback mutations:
//
//	> message              echo
//	<prefix> payload...    reply
//	^C                     user abort
//	[request timed out]    idle deadline expired
//	[error: reason]        non-2xx response
//
// Only one session is active at a time. A new Send aborts the previous one
// and waits for its terminal output before writing anything.
package stream
