// Copyright (c) 2025 The chatraghu-tui Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package plain

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/peterh/liner"

	"github.com/raghunandan-r/chatraghu-tui/internal/router"
)

// Prompt is printed before each input line.
const Prompt = "> "

// Core is the part of terminal.Terminal the REPL drives.
type Core interface {
	Execute(ctx context.Context, input string) router.Outcome
	CancelActive()
	Flush()
	Shortcuts() []string
	Complete(prefix string) []string
}

// LineReader reads edited input lines. *liner.State satisfies it.
type LineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
	Close() error
}

// REPL reads lines and hands them to the core until EOF or Ctrl+C at the
// prompt.
type REPL struct {
	core   Core
	reader LineReader
	out    io.Writer
}

// New creates a REPL with a liner-backed reader on the controlling terminal.
func New(core Core, out io.Writer) *REPL {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	line.SetCompleter(core.Complete)
	return NewWithReader(core, line, out)
}

// NewWithReader creates a REPL over an explicit reader.
func NewWithReader(core Core, reader LineReader, out io.Writer) *REPL {
	return &REPL{core: core, reader: reader, out: out}
}

// Run loops until the input ends. It closes the reader before returning.
func (r *REPL) Run(ctx context.Context) error {
	defer r.reader.Close()

	r.greet()
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		input, err := r.reader.Prompt(Prompt)
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			fmt.Fprintln(r.out)
			return nil
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			return nil
		}
		r.reader.AppendHistory(input)
		r.execute(ctx, input)
	}
}

func (r *REPL) greet() {
	names := append(r.core.Shortcuts(), "help")
	fmt.Fprintf(r.out, "Try: %s\n", strings.Join(names, ", "))
	fmt.Fprintln(r.out, "Ctrl+C stops a reply, Ctrl+D exits.")
}

// execute runs one line. An interrupt while it runs aborts the reply instead
// of killing the process.
func (r *REPL) execute(ctx context.Context, input string) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	defer signal.Stop(sig)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-sig:
			r.core.CancelActive()
		case <-done:
		}
	}()

	r.core.Execute(ctx, input)
	r.core.Flush()
}
