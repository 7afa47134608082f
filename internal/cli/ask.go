// Copyright (c) 2025 The chatraghu-tui Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/raghunandan-r/chatraghu-tui/internal/terminal"
	"github.com/raghunandan-r/chatraghu-tui/internal/ui/plain"
)

func newAskCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <message>",
		Short: "Run one command or question and print the reply",
		Example: `  chatraghu ask whoami
  chatraghu ask "what are you working on?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd, opts, strings.Join(args, " "))
		},
	}
}

// runAsk executes message against a fresh terminal and prints only the
// output it produces. Ctrl+C aborts the reply.
func runAsk(cmd *cobra.Command, opts *options, message string) error {
	a, err := openApp(opts)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(a.context(cmd.Context()), os.Interrupt, syscall.SIGTERM)
	defer stop()

	termOpts, err := a.terminalOptions()
	if err != nil {
		return err
	}

	// Restored scrollback is not part of this answer.
	printer := plain.NewPrinter(cmd.OutOrStdout(), a.cfg.UI.PrefixLabel)
	var live atomic.Bool
	t := terminal.New(ctx, func(st terminal.State) {
		if live.Load() {
			printer.Publish(st)
		}
	}, termOpts...)
	printer.Skip(t.State())
	live.Store(true)

	t.Execute(ctx, message)
	t.Flush()
	t.Close()
	return nil
}
