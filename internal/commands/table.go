// Copyright (c) 2025 The chatraghu-tui Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// =============================================================================
// ACTIONS
// =============================================================================

// ActionKind identifies a command side effect.
type ActionKind uint8

const (
	ActionNone    ActionKind = iota // No side effect
	ActionOpenURL                   // Open a URL in the browser
	ActionClear                     // Clear the scrollback
	ActionCopy                      // Copy text to the clipboard
)

// String returns the action kind name.
func (k ActionKind) String() string {
	switch k {
	case ActionOpenURL:
		return "open-url"
	case ActionClear:
		return "clear"
	case ActionCopy:
		return "copy"
	default:
		return "none"
	}
}

// Action is a side effect requested by a command handler.
type Action struct {
	Kind ActionKind
	URL  string
	Text string
}

// OpenURL returns an action that opens url.
func OpenURL(url string) Action { return Action{Kind: ActionOpenURL, URL: url} }

// Copy returns an action that copies text to the clipboard.
func Copy(text string) Action { return Action{Kind: ActionCopy, Text: text} }

// Clear returns an action that clears the scrollback.
func Clear() Action { return Action{Kind: ActionClear} }

// Result is what a handler produces.
type Result struct {
	Output string
	Action Action
}

// Handler produces a command's result. Handlers take no input.
type Handler func() Result

// =============================================================================
// COMMAND SPEC
// =============================================================================

// Spec describes a local command.
type Spec struct {
	// Name is the primary command name (e.g., "whoami")
	Name string

	// Aliases are alternative names (e.g., "about", "bio")
	Aliases []string

	// Description is shown in help
	Description string

	// Shortcut commands are listed under the intro
	Shortcut bool

	Handler Handler
}

// =============================================================================
// TABLE
// =============================================================================

// Table is an immutable index from lower-cased names and aliases to specs.
// It is safe for concurrent use once built.
type Table struct {
	specs []*Spec
	index map[string]*Spec
}

// NewTable indexes specs in order. A later name or alias never overrides an
// earlier one.
func NewTable(specs []Spec) *Table {
	t := &Table{
		specs: make([]*Spec, 0, len(specs)),
		index: make(map[string]*Spec, len(specs)*3),
	}
	for i := range specs {
		spec := specs[i]
		spec.Aliases = append([]string(nil), spec.Aliases...)
		t.specs = append(t.specs, &spec)
		t.register(spec.Name, &spec)
		for _, alias := range spec.Aliases {
			t.register(alias, &spec)
		}
	}
	return t
}

func (t *Table) register(key string, spec *Spec) {
	key = normalize(key)
	if key == "" {
		return
	}
	if _, exists := t.index[key]; exists {
		return
	}
	t.index[key] = spec
}

// Find looks up input by name or alias after trimming and case folding.
// Only exact matches are returned.
func (t *Table) Find(input string) (*Spec, bool) {
	spec, ok := t.index[normalize(input)]
	return spec, ok
}

// All returns the specs in table order.
func (t *Table) All() []*Spec {
	out := make([]*Spec, len(t.specs))
	copy(out, t.specs)
	return out
}

// Shortcuts returns the shortcut-flagged specs in table order.
func (t *Table) Shortcuts() []*Spec {
	var out []*Spec
	for _, spec := range t.specs {
		if spec.Shortcut {
			out = append(out, spec)
		}
	}
	return out
}

// Complete returns the command names starting with prefix, in table order.
// Aliases are not offered.
func (t *Table) Complete(prefix string) []string {
	prefix = normalize(prefix)
	var out []string
	for _, spec := range t.specs {
		if strings.HasPrefix(normalize(spec.Name), prefix) {
			out = append(out, spec.Name)
		}
	}
	return out
}

// HelpText renders the help listing.
func (t *Table) HelpText() string {
	var sb strings.Builder
	sb.WriteString("\n  Available Commands\n\n")
	for _, spec := range t.specs {
		aliases := ""
		if len(spec.Aliases) > 0 {
			aliases = " (" + strings.Join(spec.Aliases, ", ") + ")"
		}
		fmt.Fprintf(&sb, "  › %-12s %s%s\n", spec.Name, spec.Description, aliases)
	}
	return sb.String()
}

// normalize trims and case-folds a command name. A Caser keeps state, so a
// new one is created per call.
func normalize(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}
