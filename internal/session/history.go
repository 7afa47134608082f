// Copyright (c) 2025 The chatraghu-tui Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"strings"
	"sync"
)

// notBrowsing is the cursor value outside history navigation.
const notBrowsing = -1

// History is the list of submitted inputs, most recent first, with a cursor
// for arrow-key navigation. It is safe for concurrent use.
type History struct {
	mu      sync.Mutex
	entries []string
	cursor  int
	draft   string
	limit   int
}

// NewHistory creates an empty history. A limit of zero or less keeps every
// entry.
func NewHistory(limit int) *History {
	return &History{cursor: notBrowsing, limit: limit}
}

// Push records a submitted input and stops browsing. Blank input is ignored.
func (h *History) Push(entry string) {
	if strings.TrimSpace(entry) == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append([]string{entry}, h.entries...)
	if h.limit > 0 && len(h.entries) > h.limit {
		h.entries = h.entries[:h.limit]
	}
	h.cursor = notBrowsing
	h.draft = ""
}

// Older moves one entry back in time and returns it. draft is the text being
// edited; it is kept when browsing starts and handed back by Newer. With no
// entries Older returns draft and false.
func (h *History) Older(draft string) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.entries) == 0 {
		return draft, false
	}
	if h.cursor == notBrowsing {
		h.draft = draft
	}
	h.cursor = min(h.cursor+1, len(h.entries)-1)
	return h.entries[h.cursor], true
}

// Newer moves one entry forward in time. Stepping past the newest entry ends
// browsing and returns the saved draft.
func (h *History) Newer() string {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cursor > 0 {
		h.cursor--
		return h.entries[h.cursor]
	}
	h.cursor = notBrowsing
	draft := h.draft
	h.draft = ""
	return draft
}

// Reset stops browsing without touching the entries.
func (h *History) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cursor = notBrowsing
	h.draft = ""
}

// Cursor returns the browse position, -1 when not browsing.
func (h *History) Cursor() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cursor
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Entries returns a copy of the entries, most recent first.
func (h *History) Entries() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.entries...)
}
