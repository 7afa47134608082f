// Copyright (c) 2025 The chatraghu-tui Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package plain

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/peterh/liner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raghunandan-r/chatraghu-tui/internal/router"
	"github.com/raghunandan-r/chatraghu-tui/internal/scrollback"
	"github.com/raghunandan-r/chatraghu-tui/internal/terminal"
)

func text(s string) scrollback.Line {
	return scrollback.Line{scrollback.Text(s)}
}

func reply(s string) scrollback.Line {
	return scrollback.Line{scrollback.Prefix(), scrollback.Text(s)}
}

// =============================================================================
// PRINTER
// =============================================================================

func TestPrinter_WritesCompletedLinesOnce(t *testing.T) {
	var out bytes.Buffer
	p := NewPrinter(&out, "›")

	p.Publish(terminal.State{Lines: []scrollback.Line{text(""), text("> hi"), reply(" He")}})
	assert.Equal(t, "\n> hi\n", out.String())

	// The open line grows; nothing new completes.
	p.Publish(terminal.State{Lines: []scrollback.Line{text(""), text("> hi"), reply(" Hello")}})
	assert.Equal(t, "\n> hi\n", out.String())

	p.Publish(terminal.State{Lines: []scrollback.Line{text(""), text("> hi"), reply(" Hello"), text("")}})
	assert.Equal(t, "\n> hi\n› Hello\n", out.String())
	assert.Equal(t, 3, p.Written())
}

func TestPrinter_FollowsEviction(t *testing.T) {
	var out bytes.Buffer
	p := NewPrinter(&out, "›")

	p.Publish(terminal.State{Lines: []scrollback.Line{text("a"), text("b")}})
	assert.Equal(t, "a\n", out.String())

	// "a" and "b" were evicted; "b" was never written and is skipped.
	p.Publish(terminal.State{Evicted: 2, Lines: []scrollback.Line{text("c"), text("d"), text("")}})
	assert.Equal(t, "a\nc\nd\n", out.String())
	assert.Equal(t, 4, p.Written())
}

func TestPrinter_NewGenerationStartsOver(t *testing.T) {
	var out bytes.Buffer
	p := NewPrinter(&out, "›")

	p.Publish(terminal.State{Lines: []scrollback.Line{text("a"), text("b"), text("")}})
	p.Publish(terminal.State{Generation: 1, Lines: []scrollback.Line{text("")}})
	p.Publish(terminal.State{Generation: 1, Lines: []scrollback.Line{text("x"), text("")}})

	assert.Equal(t, "a\nb\nx\n", out.String())
}

func TestPrinter_SkipHidesExistingLines(t *testing.T) {
	var out bytes.Buffer
	p := NewPrinter(&out, "›")

	p.Skip(terminal.State{Generation: 3, Lines: []scrollback.Line{text("old"), text("")}})
	p.Publish(terminal.State{Generation: 3, Lines: []scrollback.Line{text("old"), text("new"), text("")}})

	assert.Equal(t, "new\n", out.String())
}

// =============================================================================
// REPL
// =============================================================================

type scriptReader struct {
	lines   []string
	end     error
	history []string
	closed  bool
}

func (r *scriptReader) Prompt(string) (string, error) {
	if len(r.lines) == 0 {
		return "", r.end
	}
	line := r.lines[0]
	r.lines = r.lines[1:]
	return line, nil
}

func (r *scriptReader) AppendHistory(item string) { r.history = append(r.history, item) }

func (r *scriptReader) Close() error {
	r.closed = true
	return nil
}

type fakeCore struct {
	executed []string
	flushes  int
}

func (c *fakeCore) Execute(_ context.Context, input string) router.Outcome {
	c.executed = append(c.executed, input)
	return router.OutcomeLocal
}

func (c *fakeCore) CancelActive() {}

func (c *fakeCore) Flush() { c.flushes++ }

func (c *fakeCore) Shortcuts() []string { return []string{"whoami", "now"} }

func (c *fakeCore) Complete(string) []string { return nil }

func TestREPL_RunsLinesUntilEOF(t *testing.T) {
	core := &fakeCore{}
	reader := &scriptReader{lines: []string{" whoami ", "", "   ", "what's up?"}, end: io.EOF}
	var out bytes.Buffer

	err := NewWithReader(core, reader, &out).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"whoami", "what's up?"}, core.executed)
	assert.Equal(t, core.executed, reader.history)
	assert.Equal(t, 2, core.flushes)
	assert.True(t, reader.closed)
	assert.Contains(t, out.String(), "Try: whoami, now, help")
}

func TestREPL_ExitWordsAndAbort(t *testing.T) {
	for _, tc := range []struct {
		name   string
		reader *scriptReader
	}{
		{"exit", &scriptReader{lines: []string{"exit", "whoami"}, end: io.EOF}},
		{"quit", &scriptReader{lines: []string{"QUIT", "whoami"}, end: io.EOF}},
		{"ctrl-c", &scriptReader{end: liner.ErrPromptAborted}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			core := &fakeCore{}
			require.NoError(t, NewWithReader(core, tc.reader, io.Discard).Run(context.Background()))
			assert.Empty(t, core.executed)
		})
	}
}

func TestREPL_ReadErrorIsWrapped(t *testing.T) {
	boom := errors.New("tty gone")
	err := NewWithReader(&fakeCore{}, &scriptReader{end: boom}, io.Discard).Run(context.Background())
	require.ErrorIs(t, err, boom)
}
