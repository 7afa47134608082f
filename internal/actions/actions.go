// Copyright (c) 2025 The chatraghu-tui Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package actions performs the side effects requested by local commands:
// opening a URL in the browser and copying text to the clipboard.
package actions

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/raghunandan-r/chatraghu-tui/internal/commands"
	"github.com/raghunandan-r/chatraghu-tui/internal/logging"
)

var (
	// ErrRelativeURL is returned for a relative URL with no site to resolve it
	// against.
	ErrRelativeURL = errors.New("relative url without site url")

	// ErrUnsupportedScheme is returned for URLs the opener refuses to launch.
	ErrUnsupportedScheme = errors.New("unsupported url scheme")
)

var allowedSchemes = map[string]bool{
	"http":   true,
	"https":  true,
	"mailto": true,
}

// Runner executes command actions.
type Runner struct {
	site     *url.URL
	open     func(string) error
	copyText func(string) error
}

// Option configures a Runner.
type Option func(*Runner)

// WithSiteURL sets the base for relative URLs such as "/resume.pdf".
func WithSiteURL(site string) Option {
	return func(r *Runner) {
		if site == "" {
			return
		}
		if u, err := url.Parse(site); err == nil && u.IsAbs() {
			r.site = u
		}
	}
}

// WithOpener replaces the browser launcher.
func WithOpener(fn func(string) error) Option {
	return func(r *Runner) { r.open = fn }
}

// WithClipboard replaces the clipboard writer.
func WithClipboard(fn func(string) error) Option {
	return func(r *Runner) { r.copyText = fn }
}

// New creates a Runner using the platform browser and system clipboard.
func New(opts ...Option) *Runner {
	r := &Runner{
		open:     OpenBrowser,
		copyText: clipboard.WriteAll,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run performs action. ActionNone and ActionClear are no-ops here.
func (r *Runner) Run(ctx context.Context, action commands.Action) error {
	switch action.Kind {
	case commands.ActionOpenURL:
		target, err := r.Resolve(action.URL)
		if err != nil {
			return err
		}
		logging.Ctx(ctx).Debug("opening url", "url", target)
		if err := r.open(target); err != nil {
			return fmt.Errorf("open %s: %w", target, err)
		}
		return nil

	case commands.ActionCopy:
		if err := r.copyText(action.Text); err != nil {
			return fmt.Errorf("copy to clipboard: %w", err)
		}
		return nil
	}
	return nil
}

// Resolve turns raw into an absolute URL, resolving relative paths against
// the site URL.
func (r *Runner) Resolve(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	if !u.IsAbs() {
		if r.site == nil {
			return "", fmt.Errorf("%w: %s", ErrRelativeURL, raw)
		}
		u = r.site.ResolveReference(u)
	}
	if !allowedSchemes[strings.ToLower(u.Scheme)] {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedScheme, u.Scheme)
	}
	return u.String(), nil
}

// OpenBrowser launches the platform's default handler for target.
func OpenBrowser(target string) error {
	var cmd string
	var args []string
	switch runtime.GOOS {
	case "windows":
		cmd = "rundll32"
		args = []string{"url.dll,FileProtocolHandler", target}
	case "darwin":
		cmd = "open"
		args = []string{target}
	case "linux", "freebsd", "openbsd", "netbsd":
		cmd = "xdg-open"
		args = []string{target}
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	return exec.Command(cmd, args...).Start()
}
