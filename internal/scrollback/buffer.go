// Copyright (c) 2025 The chatraghu-tui Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package scrollback

import (
	"strings"
)

// Cap is the default character budget for the scrollback (512K characters).
const Cap = 512 * 1024

// =============================================================================
// PENDING OPS
// =============================================================================

// OpKind identifies a pending buffer mutation.
type OpKind uint8

const (
	OpText    OpKind = iota // Append text (may contain newlines)
	OpPrefix                // Append a prefix marker on a fresh line
	OpNewline               // Start a new line
)

// Op is a queued mutation, consumed exactly once by a flush.
type Op struct {
	Kind  OpKind
	Value string
}

// TextOp returns an op that appends s.
func TextOp(s string) Op { return Op{Kind: OpText, Value: s} }

// PrefixOp returns an op that appends a prefix marker.
func PrefixOp() Op { return Op{Kind: OpPrefix} }

// NewlineOp returns an op that starts a new line.
func NewlineOp() Op { return Op{Kind: OpNewline} }

// =============================================================================
// BUFFER
// =============================================================================

// Buffer is the scrollback line model.
//
// The buffer always holds at least one line and the last line is the only one
// that is still appended to. Completed lines are never mutated in place, which
// lets snapshots share them.
//
// Buffer is not safe for concurrent use; Scheduler serializes access.
type Buffer struct {
	lines      []Line
	totalChars int
	cap        int
	evicted    int
}

// NewBuffer creates an empty buffer with the default budget.
func NewBuffer() *Buffer {
	return NewBufferWithCap(Cap)
}

// NewBufferWithCap creates an empty buffer with a custom character budget.
// A non-positive cap falls back to Cap.
func NewBufferWithCap(limit int) *Buffer {
	if limit <= 0 {
		limit = Cap
	}
	return &Buffer{
		lines: []Line{{}},
		cap:   limit,
	}
}

// AppendText appends s to the current line. Each newline in s starts a new
// line, including empty ones.
func (b *Buffer) AppendText(s string) {
	b.appendText(s)
	b.Evict()
}

// AppendPrefix appends a prefix marker, starting a new line first when the
// current line already has content.
func (b *Buffer) AppendPrefix() {
	b.appendPrefix()
	b.Evict()
}

// AppendNewline starts a new line.
func (b *Buffer) AppendNewline() {
	b.newLine()
	b.Evict()
}

// Apply runs a batch of ops in order and evicts once at the end.
func (b *Buffer) Apply(ops ...Op) {
	for _, op := range ops {
		switch op.Kind {
		case OpText:
			b.appendText(op.Value)
		case OpPrefix:
			b.appendPrefix()
		case OpNewline:
			b.newLine()
		}
	}
	b.Evict()
}

// Clear resets the buffer to a single empty line.
func (b *Buffer) Clear() {
	b.lines = []Line{{}}
	b.totalChars = 0
	b.evicted = 0
}

// Evict drops whole lines from the front until the budget is met, keeping at
// least one line. It returns the number of lines removed.
func (b *Buffer) Evict() int {
	removed := 0
	for b.totalChars > b.cap && len(b.lines) > 1 {
		b.totalChars -= b.lines[0].Chars()
		b.lines[0] = nil
		b.lines = b.lines[1:]
		removed++
	}
	b.evicted += removed
	return removed
}

// Restore replaces the contents with lines, recounting characters and
// evicting to the budget. An empty input yields a cleared buffer.
func (b *Buffer) Restore(lines []Line) {
	b.Clear()
	if len(lines) == 0 {
		return
	}
	b.lines = make([]Line, 0, len(lines))
	for _, line := range lines {
		cp := make(Line, len(line))
		copy(cp, line)
		b.lines = append(b.lines, cp)
		b.totalChars += cp.Chars()
	}
	b.Evict()
	b.evicted = 0
}

// Lines returns a copy of the line slice. Line contents are shared.
func (b *Buffer) Lines() []Line {
	out := make([]Line, len(b.lines))
	copy(out, b.lines)
	return out
}

// Len returns the number of lines.
func (b *Buffer) Len() int {
	return len(b.lines)
}

// TotalChars returns the tracked character count.
func (b *Buffer) TotalChars() int {
	return b.totalChars
}

// Cap returns the buffer's character budget.
func (b *Buffer) Cap() int {
	return b.cap
}

// Evicted returns how many lines have been evicted since the last clear.
func (b *Buffer) Evicted() int {
	return b.evicted
}

// IsEmpty reports whether the buffer is a single empty line.
func (b *Buffer) IsEmpty() bool {
	return len(b.lines) == 1 && len(b.lines[0]) == 0
}

// Current returns the line being appended to.
func (b *Buffer) Current() Line {
	return b.lines[len(b.lines)-1]
}

func (b *Buffer) appendText(s string) {
	if !strings.Contains(s, "\n") {
		b.pushText(s)
		return
	}
	parts := strings.Split(s, "\n")
	b.pushText(parts[0])
	for _, part := range parts[1:] {
		b.newLine()
		b.pushText(part)
	}
}

func (b *Buffer) pushText(s string) {
	if s == "" {
		return
	}
	seg := Text(s)
	last := len(b.lines) - 1
	b.lines[last] = append(b.lines[last], seg)
	b.totalChars += seg.Len()
}

func (b *Buffer) appendPrefix() {
	if len(b.Current()) > 0 {
		b.newLine()
	}
	last := len(b.lines) - 1
	b.lines[last] = append(b.lines[last], Prefix())
}

func (b *Buffer) newLine() {
	b.lines = append(b.lines, Line{})
}
