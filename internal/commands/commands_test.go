// Copyright (c) 2025 The chatraghu-tui Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"reflect"
	"strings"
	"testing"
)

// =============================================================================
// TABLE TESTS
// =============================================================================

func TestFind(t *testing.T) {
	table := Default()

	tests := []struct {
		input string
		want  string
		found bool
	}{
		{"whoami", "whoami", true},
		{"WHOAMI", "whoami", true},
		{"  bio  ", "whoami", true},
		{"About", "whoami", true},
		{"?", "help", true},
		{"cv", "resume", true},
		{"cls", "clear", true},
		{"exp", "education", true},
		{"mail", "email", true},
		{"who ami", "", false},
		{"projcts", "", false},
		{"", "", false},
	}

	for _, tc := range tests {
		spec, ok := table.Find(tc.input)
		if ok != tc.found {
			t.Errorf("Find(%q) found = %v, want %v", tc.input, ok, tc.found)
			continue
		}
		if ok && spec.Name != tc.want {
			t.Errorf("Find(%q) = %q, want %q", tc.input, spec.Name, tc.want)
		}
	}
}

func TestNewTable_FirstRegistrationWins(t *testing.T) {
	table := NewTable([]Spec{
		{Name: "one", Aliases: []string{"x"}},
		{Name: "two", Aliases: []string{"X", "one"}},
	})

	if spec, _ := table.Find("x"); spec.Name != "one" {
		t.Errorf("alias x resolved to %q, want one", spec.Name)
	}
	if spec, _ := table.Find("one"); spec.Name != "one" {
		t.Errorf("name one resolved to %q, want one", spec.Name)
	}
	if spec, ok := table.Find("two"); !ok || spec.Name != "two" {
		t.Errorf("name two not found")
	}
}

func TestShortcuts(t *testing.T) {
	var names []string
	for _, spec := range Default().Shortcuts() {
		names = append(names, spec.Name)
	}
	want := []string{"whoami", "now", "projects", "contact"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("Shortcuts() = %v, want %v", names, want)
	}
}

func TestComplete(t *testing.T) {
	table := Default()
	tests := []struct {
		prefix string
		want   []string
	}{
		{"", []string{"help", "whoami", "now", "projects", "skills", "contact", "education", "resume", "clear", "github", "linkedin", "email"}},
		{"e", []string{"education", "email"}},
		{" P", []string{"projects"}},
		{"bio", nil},
	}
	for _, tt := range tests {
		if got := table.Complete(tt.prefix); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Complete(%q) = %v, want %v", tt.prefix, got, tt.want)
		}
	}
}

func TestHelpText(t *testing.T) {
	spec, _ := Default().Find("help")
	out := spec.Handler().Output

	if !strings.HasPrefix(out, "\n  Available Commands\n\n") {
		t.Errorf("help output missing header: %q", out)
	}
	wantLines := []string{
		"  › help         Show available commands (?, commands)\n",
		"  › github       Open GitHub profile\n",
		"  › education    Education & experience (edu, experience, exp)\n",
	}
	for _, line := range wantLines {
		if !strings.Contains(out, line) {
			t.Errorf("help output missing %q", line)
		}
	}
	if got := strings.Count(out, "  › "); got != len(Default().All()) {
		t.Errorf("help lists %d commands, want %d", got, len(Default().All()))
	}
}

func TestBuiltinActions(t *testing.T) {
	table := Default()

	tests := []struct {
		input  string
		kind   ActionKind
		output string
	}{
		{"whoami", ActionNone, DefaultContent().Bio},
		{"resume", ActionOpenURL, "  Opening resume..."},
		{"github", ActionOpenURL, "  Opening GitHub..."},
		{"linkedin", ActionOpenURL, "  Opening LinkedIn..."},
		{"clear", ActionClear, ""},
		{"email", ActionCopy, "  Copied raghunandan092@gmail.com to clipboard."},
	}

	for _, tc := range tests {
		spec, ok := table.Find(tc.input)
		if !ok {
			t.Fatalf("Find(%q) failed", tc.input)
		}
		res := spec.Handler()
		if res.Action.Kind != tc.kind {
			t.Errorf("%s action = %s, want %s", tc.input, res.Action.Kind, tc.kind)
		}
		if res.Output != tc.output {
			t.Errorf("%s output = %q, want %q", tc.input, res.Output, tc.output)
		}
	}

	res := mustRun(t, table, "resume")
	if res.Action.URL != "/resume.pdf" {
		t.Errorf("resume URL = %q", res.Action.URL)
	}
	res = mustRun(t, table, "email")
	if res.Action.Text != "raghunandan092@gmail.com" {
		t.Errorf("email copy text = %q", res.Action.Text)
	}
}

func TestBuiltins_CustomContent(t *testing.T) {
	c := DefaultContent()
	c.Bio = "\n  someone else\n"
	table := Builtins(c)

	if got := mustRun(t, table, "bio").Output; got != c.Bio {
		t.Errorf("bio = %q, want %q", got, c.Bio)
	}
	if Default() == table {
		t.Error("Builtins should build a fresh table")
	}
}

func mustRun(t *testing.T, table *Table, name string) Result {
	t.Helper()
	spec, ok := table.Find(name)
	if !ok {
		t.Fatalf("command %q not found", name)
	}
	return spec.Handler()
}

// =============================================================================
// FUZZY MATCHING TESTS
// =============================================================================

func TestSuggest(t *testing.T) {
	m := NewMatcher(Default())

	tests := []struct {
		input string
		want  []string
	}{
		{"projcts", []string{"projects"}},
		{"xyzxyz", nil},
		{"hepl", []string{"help"}},
		{"WHOAMY", []string{"whoami"}},
		{"proj", []string{"projects"}},
		{"sklls", []string{"skills"}},
		{"linkdin", []string{"linkedin"}},
		{"", nil},
	}

	for _, tc := range tests {
		got := m.Suggest(tc.input)
		if len(got) == 0 && len(tc.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("Suggest(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestSuggest_AliasMatchReportsCommandName(t *testing.T) {
	m := NewMatcher(Default())
	got := m.Suggest("portfolo")
	if !reflect.DeepEqual(got, []string{"projects"}) {
		t.Errorf("Suggest(portfolo) = %v, want [projects]", got)
	}
}

func TestSuggest_LimitAndOrdering(t *testing.T) {
	table := NewTable([]Spec{
		{Name: "abcd"},
		{Name: "abce"},
		{Name: "abxx"},
		{Name: "abcf"},
		{Name: "zzzz"},
	})
	m := NewMatcher(table)

	got := m.Suggest("abcz")
	want := []string{"abcd", "abce", "abcf"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Suggest(abcz) = %v, want %v", got, want)
	}
}

func TestSuggest_OneEntryPerCommand(t *testing.T) {
	table := NewTable([]Spec{
		{Name: "stack", Aliases: []string{"stak", "stck"}},
	})
	got := NewMatcher(table).Suggest("stac")
	if !reflect.DeepEqual(got, []string{"stack"}) {
		t.Errorf("Suggest(stac) = %v, want [stack]", got)
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"projcts", "projects", 1},
		{"hepl", "help", 2},
		{"→x", "x", 1},
		{"whoami", "whoami", 0},
	}

	for _, tc := range tests {
		if got := Levenshtein(tc.a, tc.b); got != tc.want {
			t.Errorf("Levenshtein(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}
