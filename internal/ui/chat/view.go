// Copyright (c) 2025 The chatraghu-tui Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"

	"github.com/raghunandan-r/chatraghu-tui/internal/scrollback"
	"github.com/raghunandan-r/chatraghu-tui/internal/ui/styles"
	"github.com/raghunandan-r/chatraghu-tui/internal/util"
)

// careerStart anchors the "building things for N years" intro line.
var careerStart = time.Date(2013, time.August, 13, 0, 0, 0, 0, time.UTC)

// YearsBuilding returns the experience figure shown in the intro, with one
// decimal.
func YearsBuilding(now time.Time) string {
	const daysPerYear = 365.2425
	years := now.Sub(careerStart).Hours()/24/daysPerYear - 2.5
	return fmt.Sprintf("%.1f", years)
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the screen.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.viewport.View(),
		m.renderShortcuts(),
		m.renderPrompt(),
		m.renderStatusBar(),
	)
}

// renderContent builds the scrollable area: the intro followed by every
// scrollback line. Only the line still being written is styled here; the
// rest come from the cache.
func (m Model) renderContent() string {
	width := max(m.viewport.Width, 1)
	fitted := func(line scrollback.Line) string { return fit(m.renderLine(line), width) }

	var b strings.Builder
	b.WriteString(m.cache.introFor(width, YearsBuilding(m.now()), m.renderIntro))
	b.WriteString(m.cache.completed(m.state, width, fitted))
	if n := len(m.state.Lines); n > 0 {
		b.WriteByte('\n')
		b.WriteString(fitted(m.state.Lines[n-1]))
	}
	return b.String()
}

// renderLine styles one scrollback line. Prefix markers become the reply
// label.
func (m Model) renderLine(line scrollback.Line) string {
	plain := line.Render(m.prefix)
	body := m.theme.Body
	switch {
	case strings.HasPrefix(plain, "> "):
		body = m.theme.Echo
	case styles.IsError(plain):
		body = m.theme.Error
	}

	var sb strings.Builder
	for _, seg := range line {
		if seg.IsPrefix() {
			sb.WriteString(m.theme.Prefix.Render(m.prefix))
			continue
		}
		if seg.Text != "" {
			sb.WriteString(body.Render(seg.Text))
		}
	}
	return sb.String()
}

func (m Model) renderIntro(width int, years string) string {
	t := m.theme
	var parts []string

	if banner := pickBanner(width); banner != "" {
		parts = append(parts, t.Banner.Render(banner), "")
	}

	para := func(s string) string { return t.Intro.Render(fit(s, width)) }
	heading := func(s string) string { return t.Heading.Render(s) }
	item := func(s string) string { return t.Intro.Render(fit("  - "+s, width)) }

	parts = append(parts,
		para("Pronounced like the pasta sauce, just with a different accent."),
		para("I'm based in nyc and I've been building things for "+years+" years."),
		"",
		heading("I'm currently..."),
		item("working at HPN, setting up the data stack for affordable housing"),
		"",
		heading("Previously I..."),
		item("graduated from Rochester Institute of Technology with a MSc in Data Science"),
		item("interned at Micron, where I built data tools"),
		item("worked on b2b SaaS"),
		item("hyperlocal delivery and FinTech"),
		item("started out as a Developer at DXC"),
		"",
		heading("Projects I've worked on..."),
		item("know-your-rights - backend engine with RAG, built with FastAPI, OpenRouter & Pinecone"),
		"",
		heading("Questions? Ask away!"),
		"",
		t.HintKey.Render("Type to start")+"  "+t.Hint.Render("Enter to send")+
			"    "+t.HintKey.Render("↑/↓")+"  "+t.Hint.Render("history"),
	)
	return strings.Join(parts, "\n")
}

// pickBanner returns the widest banner that fits, or nothing.
func pickBanner(width int) string {
	for _, b := range []string{bannerLarge, bannerSmall} {
		if lipgloss.Width(b) <= width {
			return strings.TrimPrefix(b, "\n")
		}
	}
	return ""
}

func (m Model) renderShortcuts() string {
	names := append(m.core.Shortcuts(), "?")
	buttons := make([]string, len(names))
	for i, name := range names {
		buttons[i] = m.theme.Shortcut.Render(name)
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, buttons...)
	if lipgloss.Width(row) > m.width {
		row = m.theme.Hint.Render(util.ClipWidth(strings.Join(names, "  "), m.width))
	}
	return lipgloss.PlaceHorizontal(m.width, lipgloss.Center, row)
}

func (m Model) renderPrompt() string {
	marker := m.theme.Prompt.Render(">")
	if m.Busy() && m.state.Spinner != "" {
		marker = m.theme.Spinner.Render(m.state.Spinner)
	}

	input := m.input
	input.Placeholder = ""
	if m.Busy() {
		input.Placeholder = m.state.StatusText
	}
	return marker + " " + input.View()
}

func (m Model) renderStatusBar() string {
	indicator := m.theme.Offline.Render("●") + " " + m.theme.Hint.Render("offline")
	if m.state.Online() {
		indicator = m.theme.Online.Render("●") + " " + m.theme.Hint.Render("AI")
	}

	var hints []string
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		hints = append(hints, h.Key+" "+h.Desc)
	}
	room := m.width - lipgloss.Width(indicator) - 2
	if room < 8 {
		return indicator
	}
	right := util.ClipWidth(strings.Join(hints, " · "), room)
	gap := m.width - lipgloss.Width(indicator) - util.Width(right)
	return indicator + strings.Repeat(" ", max(gap, 1)) + m.theme.Hint.Render(right)
}

// fit wraps s at word boundaries, breaking words longer than width.
func fit(s string, width int) string {
	if width <= 0 {
		return s
	}
	return wrap.String(wordwrap.String(s, width), width)
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
