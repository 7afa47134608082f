// Copyright (c) 2025 The chatraghu-tui Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat is the full-screen Bubble Tea front end.
//
// The model owns no conversation state. It forwards input to a Core and draws
// whatever terminal.State the Core last published through a Bridge. Execute
// runs inside a tea.Cmd so a streamed reply never blocks the event loop.
package chat

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/raghunandan-r/chatraghu-tui/internal/router"
	"github.com/raghunandan-r/chatraghu-tui/internal/terminal"
	"github.com/raghunandan-r/chatraghu-tui/internal/ui/styles"
)

// Core is the part of terminal.Terminal the model drives.
type Core interface {
	Execute(ctx context.Context, input string) router.Outcome
	Busy() bool
	CancelActive()
	Clear()
	Older(draft string) string
	Newer() string
	Browsing() bool
	ResetHistory()
	Shortcuts() []string
	State() terminal.State
}

// executeDoneMsg reports that a submitted line has been fully handled.
type executeDoneMsg struct {
	outcome router.Outcome
}

// DefaultPrefix labels reply lines.
const DefaultPrefix = "›"

// =============================================================================
// MODEL
// =============================================================================

// Model is the chat screen.
type Model struct {
	ctx    context.Context
	core   Core
	bridge *Bridge
	theme  *styles.Theme
	keys   KeyMap

	input    textinput.Model
	viewport viewport.Model

	state   terminal.State
	cache   *renderCache
	prefix  string
	now     func() time.Time
	running bool

	width  int
	height int
}

// Option configures a Model.
type Option func(*Model)

// WithPrefix sets the reply label.
func WithPrefix(label string) Option {
	return func(m *Model) {
		if label != "" {
			m.prefix = label
		}
	}
}

// WithClock overrides the clock used for the intro text.
func WithClock(now func() time.Time) Option {
	return func(m *Model) { m.now = now }
}

// WithContext sets the context passed to Execute.
func WithContext(ctx context.Context) Option {
	return func(m *Model) { m.ctx = ctx }
}

// New creates the chat model. bridge must be the publisher the Core was built
// with.
func New(core Core, bridge *Bridge, theme *styles.Theme, opts ...Option) Model {
	input := textinput.New()
	input.Prompt = ""
	input.Focus()

	m := Model{
		ctx:      context.Background(),
		core:     core,
		bridge:   bridge,
		theme:    theme,
		keys:     DefaultKeyMap(),
		input:    input,
		viewport: viewport.New(80, 20),
		state:    core.State(),
		cache:    &renderCache{},
		prefix:   DefaultPrefix,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.input.PlaceholderStyle = theme.Placeholder
	m.input.TextStyle = theme.Body
	m.refresh()
	return m
}

// Init starts the cursor blink and the state loop.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.bridge.Wait())
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case StateMsg:
		m.state = msg.State
		m.refresh()
		return m, m.bridge.Wait()

	case bridgeClosedMsg:
		return m, nil

	case executeDoneMsg:
		m.running = false
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// Busy reports whether a submitted line is still being handled.
func (m Model) Busy() bool {
	return m.running || m.state.Busy
}

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	// prompt, status line and the bordered shortcut row
	const reserved = 1 + 1 + 3
	m.viewport.Width = max(m.width, 1)
	m.viewport.Height = max(m.height-reserved, 1)
	m.input.Width = max(m.width-4, 10)

	m.refresh()
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.core.CancelActive()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Cancel):
		if m.Busy() {
			m.core.CancelActive()
			return m, nil
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.Submit):
		return m.submit()

	case key.Matches(msg, m.keys.Older):
		m.input.SetValue(m.core.Older(m.input.Value()))
		m.input.CursorEnd()
		return m, nil

	case key.Matches(msg, m.keys.Newer):
		if m.core.Browsing() {
			m.input.SetValue(m.core.Newer())
			m.input.CursorEnd()
		}
		return m, nil

	case key.Matches(msg, m.keys.ClearInput):
		m.input.Reset()
		m.core.ResetHistory()
		return m, nil

	case key.Matches(msg, m.keys.ClearView):
		if !m.Busy() {
			m.core.Clear()
		}
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.ViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.ViewDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit sends the input line. Enter is ignored while a reply is in flight.
func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.Busy() {
		return m, nil
	}
	text := m.input.Value()
	m.input.Reset()
	if isBlank(text) {
		return m, nil
	}

	m.running = true
	m.viewport.GotoBottom()
	ctx, core := m.ctx, m.core
	return m, func() tea.Msg {
		return executeDoneMsg{outcome: core.Execute(ctx, text)}
	}
}

// refresh redraws the scrollback, following the bottom unless the user has
// scrolled up.
func (m *Model) refresh() {
	follow := m.viewport.AtBottom()
	m.viewport.SetContent(m.renderContent())
	if follow {
		m.viewport.GotoBottom()
	}
}
