// Copyright (c) 2025 The chatraghu-tui Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package router decides where user input goes: a local command, the remote
// chat stream, or the "command not found" reply with suggestions.
//
// Routing order:
//   - Exact command name or alias: run locally, never touch the network
//   - Remote enabled and reachable: stream the reply
//   - Otherwise: report the miss in-band with up to three suggestions
//
// Routing misses and handler failures are never returned as errors. They are
// written into the scrollback like any other output.
package router

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/raghunandan-r/chatraghu-tui/internal/commands"
	"github.com/raghunandan-r/chatraghu-tui/internal/logging"
	"github.com/raghunandan-r/chatraghu-tui/internal/stream"
)

// =============================================================================
// COLLABORATORS
// =============================================================================

// Sink receives scrollback mutations. scrollback.Scheduler satisfies it.
type Sink interface {
	AppendText(text string)
	AppendPrefix()
	AppendNewline()
	Clear()
}

// Streamer sends input to the remote endpoint. stream.Client satisfies it.
type Streamer interface {
	Send(ctx context.Context, message string) stream.Outcome
}

// Suggester proposes command names for unknown input. commands.Matcher
// satisfies it.
type Suggester interface {
	Suggest(input string) []string
}

// ActionRunner performs command side effects. actions.Runner satisfies it.
type ActionRunner interface {
	Run(ctx context.Context, action commands.Action) error
}

// Availability reports whether the remote endpoint was last seen reachable.
// health.Monitor satisfies it.
type Availability interface {
	Available() bool
}

// Prober re-checks reachability on demand. An Availability that also
// implements Prober is asked again before a miss is reported, so one failed
// send does not keep the remote down.
type Prober interface {
	Check(ctx context.Context) bool
}

// Outcome says which path Execute took.
type Outcome int

const (
	OutcomeIgnored  Outcome = iota // Empty input
	OutcomeLocal                   // Local command handled
	OutcomeRemote                  // Delegated to the stream
	OutcomeNotFound                // Unknown command reported in-band
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeLocal:
		return "local"
	case OutcomeRemote:
		return "remote"
	case OutcomeNotFound:
		return "not-found"
	default:
		return "ignored"
	}
}

// =============================================================================
// ROUTER
// =============================================================================

// Router dispatches input. It is safe for concurrent use; the remote flag can
// be flipped at any time.
type Router struct {
	table    *commands.Table
	sink     Sink
	matcher  Suggester
	streamer Streamer
	actions  ActionRunner
	health   Availability

	remoteEnabled atomic.Bool
}

// Option configures a Router.
type Option func(*Router)

// WithMatcher overrides the suggestion source.
func WithMatcher(m Suggester) Option {
	return func(r *Router) { r.matcher = m }
}

// WithStreamer sets the remote stream client.
func WithStreamer(s Streamer) Option {
	return func(r *Router) { r.streamer = s }
}

// WithActions sets the side-effect runner. Without one, actions are skipped.
func WithActions(a ActionRunner) Option {
	return func(r *Router) { r.actions = a }
}

// WithHealth sets the reachability source. Without one, an enabled remote is
// assumed reachable.
func WithHealth(h Availability) Option {
	return func(r *Router) { r.health = h }
}

// WithRemoteEnabled sets the initial state of the remote feature flag.
func WithRemoteEnabled(enabled bool) Option {
	return func(r *Router) { r.remoteEnabled.Store(enabled) }
}

// New creates a router over table writing to sink.
func New(table *commands.Table, sink Sink, opts ...Option) *Router {
	r := &Router{
		table: table,
		sink:  sink,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.matcher == nil {
		r.matcher = commands.NewMatcher(table)
	}
	return r
}

// SetRemoteEnabled flips the remote feature flag.
func (r *Router) SetRemoteEnabled(enabled bool) {
	r.remoteEnabled.Store(enabled)
}

// RemoteEnabled reports the remote feature flag.
func (r *Router) RemoteEnabled() bool {
	return r.remoteEnabled.Load()
}

// RemoteReady reports whether unknown input would be streamed.
func (r *Router) RemoteReady() bool {
	if !r.remoteEnabled.Load() || r.streamer == nil {
		return false
	}
	return r.health == nil || r.health.Available()
}

// remoteReady is RemoteReady with an on-demand probe while the endpoint is
// marked down.
func (r *Router) remoteReady(ctx context.Context) bool {
	if !r.remoteEnabled.Load() || r.streamer == nil {
		return false
	}
	if r.health == nil || r.health.Available() {
		return true
	}
	if p, ok := r.health.(Prober); ok {
		return p.Check(ctx)
	}
	return false
}

// Execute routes raw input. Remote sends block until the stream ends.
func (r *Router) Execute(ctx context.Context, raw string) Outcome {
	input := strings.TrimSpace(raw)
	if input == "" {
		return OutcomeIgnored
	}
	log := logging.Ctx(ctx)

	if spec, ok := r.table.Find(input); ok {
		r.runLocal(ctx, spec, input)
		log.Debug("command handled", "command", spec.Name)
		return OutcomeLocal
	}

	if r.remoteReady(ctx) {
		out := r.streamer.Send(ctx, input)
		log.Debug("remote send finished", "state", out.State, "chunks", out.Chunks)
		return OutcomeRemote
	}

	r.reportMiss(input)
	log.Debug("command not found", "input", input)
	return OutcomeNotFound
}

func (r *Router) runLocal(ctx context.Context, spec *commands.Spec, input string) {
	r.echo(input)

	res, err := invoke(spec)
	if err != nil {
		logging.Ctx(ctx).Error("command handler failed", "command", spec.Name, "err", err)
		r.sink.AppendPrefix()
		r.sink.AppendText("  command failed: " + spec.Name)
		r.sink.AppendNewline()
		return
	}

	if res.Action.Kind == commands.ActionClear {
		r.sink.Clear()
		return
	}

	if res.Output != "" {
		r.sink.AppendPrefix()
		r.sink.AppendText(res.Output)
		r.sink.AppendNewline()
	}

	if res.Action.Kind != commands.ActionNone && r.actions != nil {
		if err := r.actions.Run(ctx, res.Action); err != nil {
			logging.Ctx(ctx).Warn("command action failed", "command", spec.Name, "action", res.Action.Kind, "err", err)
		}
	}
}

func (r *Router) reportMiss(input string) {
	r.echo(input)
	r.sink.AppendPrefix()

	r.sink.AppendText("  Command not found: \"" + input + "\"\n")
	if suggestions := r.matcher.Suggest(input); len(suggestions) > 0 {
		r.sink.AppendText("  Did you mean: " + strings.Join(suggestions, ", ") + "?\n")
	} else {
		r.sink.AppendText("  Type \"help\" to see available commands.\n")
	}
	if !r.remoteEnabled.Load() {
		r.sink.AppendText("  (AI backend is currently disabled)\n")
	}

	r.sink.AppendNewline()
}

func (r *Router) echo(input string) {
	r.sink.AppendNewline()
	r.sink.AppendText("> " + input)
	r.sink.AppendNewline()
}

// invoke runs the handler, turning a panic into an error.
func invoke(spec *commands.Spec) (res commands.Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("handler panic: %v", p)
		}
	}()
	if spec.Handler == nil {
		return commands.Result{}, nil
	}
	return spec.Handler(), nil
}
