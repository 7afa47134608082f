// Copyright (c) 2025 The chatraghu-tui Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package plain is the line-oriented front end used when stdout is not a
// full-screen terminal or the user asks for it.
//
// Scrollback lines are written once, when they complete. The open line at the
// end of the buffer is held back until a newline closes it.
package plain

import (
	"fmt"
	"io"
	"sync"

	"github.com/raghunandan-r/chatraghu-tui/internal/terminal"
)

// Printer turns published states into appended output.
type Printer struct {
	mu    sync.Mutex
	out   io.Writer
	label string

	gen  uint64
	next int // absolute index of the next line to write
}

// NewPrinter writes to out, rendering prefix markers as label.
func NewPrinter(out io.Writer, label string) *Printer {
	return &Printer{out: out, label: label}
}

// Publish writes the lines completed since the last call. It is safe to use
// as a terminal publish callback.
func (p *Printer) Publish(st terminal.State) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if st.Generation != p.gen {
		p.gen = st.Generation
		p.next = 0
	}
	// Lines evicted before they were written are lost.
	p.next = max(p.next, st.Evicted)

	done := st.Evicted + len(st.Lines) - 1
	for ; p.next < done; p.next++ {
		fmt.Fprintln(p.out, st.Lines[p.next-st.Evicted].Render(p.label))
	}
}

// Skip marks every completed line in st as already written.
func (p *Printer) Skip(st terminal.State) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gen = st.Generation
	p.next = st.Evicted + max(len(st.Lines)-1, 0)
}

// Written returns how many lines have been written in the current
// generation, counting evicted ones.
func (p *Printer) Written() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.next
}
