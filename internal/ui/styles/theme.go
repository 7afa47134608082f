// Copyright (c) 2025 The chatraghu-tui Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds the styles for every part of the screen.
type Theme struct {
	ColorProfile termenv.Profile
	IsDark       bool

	Banner  lipgloss.Style
	Intro   lipgloss.Style
	Heading lipgloss.Style
	Hint    lipgloss.Style
	HintKey lipgloss.Style

	Echo   lipgloss.Style
	Prefix lipgloss.Style
	Body   lipgloss.Style
	Error  lipgloss.Style

	Prompt      lipgloss.Style
	Spinner     lipgloss.Style
	Placeholder lipgloss.Style

	Online  lipgloss.Style
	Offline lipgloss.Style

	Shortcut lipgloss.Style
}

// NewTheme detects the terminal's color support and builds the styles.
func NewTheme() *Theme {
	return NewThemeFor(termenv.ColorProfile(), termenv.HasDarkBackground())
}

// NewThemeFor builds styles for an explicit profile. Tests use termenv.Ascii
// to get uncolored output.
func NewThemeFor(profile termenv.Profile, dark bool) *Theme {
	r := lipgloss.NewRenderer(io.Discard, termenv.WithProfile(profile))
	r.SetColorProfile(profile)
	r.SetHasDarkBackground(dark)

	t := &Theme{ColorProfile: profile, IsDark: dark}

	t.Banner = r.NewStyle().Foreground(Aqua)
	t.Intro = r.NewStyle().Foreground(Foreground)
	t.Heading = r.NewStyle().Foreground(Foreground).Bold(true)
	t.Hint = r.NewStyle().Foreground(Muted)
	t.HintKey = r.NewStyle().Foreground(Orange)

	t.Echo = r.NewStyle().Foreground(Muted)
	t.Prefix = r.NewStyle().Foreground(Orange).Bold(true)
	t.Body = r.NewStyle().Foreground(Foreground)
	t.Error = r.NewStyle().Foreground(Red)

	t.Prompt = r.NewStyle().Foreground(Orange).Bold(true)
	t.Spinner = r.NewStyle().Foreground(Yellow)
	t.Placeholder = r.NewStyle().Foreground(Muted).Italic(true)

	t.Online = r.NewStyle().Foreground(Green)
	t.Offline = r.NewStyle().Foreground(Red)

	t.Shortcut = r.NewStyle().
		Foreground(Muted).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Surface).
		Padding(0, 1)

	return t
}

// IsError reports whether a rendered scrollback line is a failure marker.
func IsError(line string) bool {
	s := strings.TrimSpace(line)
	return strings.HasPrefix(s, "[error") || s == "[request timed out]" || strings.HasSuffix(s, "^C")
}
