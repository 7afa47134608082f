// Copyright (c) 2025 The chatraghu-tui Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"testing"

	"github.com/muesli/termenv"
)

func TestNewThemeFor_AsciiIsUnstyled(t *testing.T) {
	th := NewThemeFor(termenv.Ascii, true)
	if got := th.Prefix.Render("›"); got != "›" {
		t.Errorf("Prefix.Render = %q, want plain text", got)
	}
	if got := th.Online.Render("AI"); got != "AI" {
		t.Errorf("Online.Render = %q, want plain text", got)
	}
}

func TestNewThemeFor_TrueColorAddsEscapes(t *testing.T) {
	th := NewThemeFor(termenv.TrueColor, true)
	if got := th.Error.Render("x"); got == "x" {
		t.Error("expected ANSI styling with a true-color profile")
	}
}

func TestIsError(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"[error: Internal Server Error]", true},
		{"[error connecting to http://x]", true},
		{"[request timed out]", true},
		{"› partial^C", true},
		{"› hello", false},
		{"> whoami", false},
	}
	for _, tt := range tests {
		if got := IsError(tt.line); got != tt.want {
			t.Errorf("IsError(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}
