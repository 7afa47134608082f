// Copyright (c) 2025 The chatraghu-tui Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/raghunandan-r/chatraghu-tui/internal/scrollback"
	"github.com/raghunandan-r/chatraghu-tui/internal/terminal"
)

// renderCache keeps the styled, wrapped form of scrollback lines that can no
// longer change. Within one generation only the last line grows, so an
// update restyles that line alone.
type renderCache struct {
	gen   uint64
	width int
	first int      // absolute index of lines[0]
	lines []string // completed lines, rendered and fitted
	text  string   // lines, each preceded by a newline
	stale bool

	introWidth int
	introYears string
	intro      string
}

// completed returns the rendered completed lines of st, each preceded by a
// newline. render is called once per line per generation and width.
func (c *renderCache) completed(st terminal.State, width int, render func(scrollback.Line) string) string {
	done := max(len(st.Lines)-1, 0)

	if st.Generation != c.gen || width != c.width || st.Evicted < c.first {
		c.reset(st.Generation, width, st.Evicted)
	}
	if drop := st.Evicted - c.first; drop > 0 {
		if drop >= len(c.lines) {
			c.lines = c.lines[:0]
		} else {
			c.lines = c.lines[drop:]
		}
		c.first = st.Evicted
		c.stale = true
	}
	if len(c.lines) > done {
		c.reset(st.Generation, width, st.Evicted)
	}

	for i := len(c.lines); i < done; i++ {
		c.lines = append(c.lines, render(st.Lines[i]))
		c.stale = true
	}
	if c.stale {
		var b strings.Builder
		for _, line := range c.lines {
			b.WriteByte('\n')
			b.WriteString(line)
		}
		c.text = b.String()
		c.stale = false
	}
	return c.text
}

func (c *renderCache) reset(gen uint64, width, first int) {
	c.gen = gen
	c.width = width
	c.first = first
	c.lines = nil
	c.text = ""
	c.stale = false
}

// introFor returns the intro block, rebuilding it when the width or the
// years figure changes.
func (c *renderCache) introFor(width int, years string, render func(int, string) string) string {
	if c.intro == "" || width != c.introWidth || years != c.introYears {
		c.intro = render(width, years)
		c.introWidth = width
		c.introYears = years
	}
	return c.intro
}
