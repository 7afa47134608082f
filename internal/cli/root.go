// Copyright (c) 2025 The chatraghu-tui Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/raghunandan-r/chatraghu-tui/internal/terminal"
	"github.com/raghunandan-r/chatraghu-tui/internal/ui/chat"
	"github.com/raghunandan-r/chatraghu-tui/internal/ui/plain"
	"github.com/raghunandan-r/chatraghu-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// options are the global flags.
type options struct {
	configPath string
	endpoint   string
	noAI       bool
	plain      bool
	store      string
	logLevel   string
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	root := NewRootCmd()
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "chatraghu",
		Short:         "Chat with Raghu's portfolio from the terminal",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInteractive(cmd, opts)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default ~/.chatraghu/config.toml)")
	flags.StringVar(&opts.endpoint, "endpoint", "", "chat endpoint URL")
	flags.BoolVar(&opts.noAI, "no-ai", false, "commands only; never contact the AI backend")
	flags.BoolVar(&opts.plain, "plain", false, "use the line-oriented interface")
	flags.StringVar(&opts.store, "store", "", `state database path, or "memory"`)
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(newAskCmd(opts))
	root.AddCommand(newConfigCmd(opts))
	root.AddCommand(newVersionCmd())
	return root
}

// =============================================================================
// INTERACTIVE SESSION
// =============================================================================

func runInteractive(cmd *cobra.Command, opts *options) error {
	a, err := openApp(opts)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(a.context(cmd.Context()))
	defer cancel()

	if a.cfg.UI.Plain || !isTerminal(os.Stdin) || !isTerminal(os.Stdout) {
		return runPlain(ctx, a, cmd.OutOrStdout())
	}
	return runTUI(ctx, a)
}

func runTUI(ctx context.Context, a *app) error {
	termOpts, err := a.terminalOptions()
	if err != nil {
		return err
	}

	bridge := chat.NewBridge()
	defer bridge.Close()

	t := terminal.New(ctx, bridge.Publish, termOpts...)
	defer t.Close()
	a.watch(ctx, t)

	model := chat.New(t, bridge, styles.NewTheme(),
		chat.WithPrefix(a.cfg.UI.PrefixLabel),
		chat.WithContext(ctx))

	if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}

func runPlain(ctx context.Context, a *app, out io.Writer) error {
	termOpts, err := a.terminalOptions()
	if err != nil {
		return err
	}

	printer := plain.NewPrinter(out, a.cfg.UI.PrefixLabel)
	t := terminal.New(ctx, printer.Publish, termOpts...)
	defer t.Close()
	a.watch(ctx, t)

	return plain.New(t, out).Run(ctx)
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
