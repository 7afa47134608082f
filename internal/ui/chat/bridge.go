// Copyright (c) 2025 The chatraghu-tui Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/raghunandan-r/chatraghu-tui/internal/terminal"
)

// StateMsg carries the latest terminal state into Update.
type StateMsg struct {
	State terminal.State
}

// bridgeClosedMsg ends the wait loop.
type bridgeClosedMsg struct{}

// Bridge hands terminal states to the Bubble Tea loop without blocking the
// publisher. Only the newest state is kept; intermediate states coalesce.
type Bridge struct {
	mu     sync.Mutex
	latest terminal.State

	notify    chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewBridge creates an empty bridge.
func NewBridge() *Bridge {
	return &Bridge{
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Publish stores st and wakes the waiter. It never blocks, so it is safe to
// call from Update itself.
func (b *Bridge) Publish(st terminal.State) {
	b.mu.Lock()
	b.latest = st
	b.mu.Unlock()

	select {
	case b.notify <- struct{}{}:
	default:
	}
}

// Wait returns a command that delivers the next state. Update must ask for a
// new Wait after every StateMsg.
func (b *Bridge) Wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-b.notify:
		case <-b.done:
			return bridgeClosedMsg{}
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		return StateMsg{State: b.latest}
	}
}

// Close releases a pending Wait.
func (b *Bridge) Close() {
	b.closeOnce.Do(func() { close(b.done) })
}
