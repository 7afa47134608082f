// Copyright (c) 2025 The chatraghu-tui Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package terminal assembles the chat terminal core and exposes it to the
// presentation layer as a stream of immutable State values.
//
// The UI calls Execute, CancelActive, Clear, Older and Newer; everything it
// needs to draw arrives through the publish callback given to New.
package terminal

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/raghunandan-r/chatraghu-tui/internal/commands"
	"github.com/raghunandan-r/chatraghu-tui/internal/health"
	"github.com/raghunandan-r/chatraghu-tui/internal/logging"
	"github.com/raghunandan-r/chatraghu-tui/internal/router"
	"github.com/raghunandan-r/chatraghu-tui/internal/scrollback"
	"github.com/raghunandan-r/chatraghu-tui/internal/session"
	"github.com/raghunandan-r/chatraghu-tui/internal/status"
	"github.com/raghunandan-r/chatraghu-tui/internal/storage"
	"github.com/raghunandan-r/chatraghu-tui/internal/stream"
)

// historyLimit caps the input history kept in memory.
const historyLimit = 200

// =============================================================================
// STATE
// =============================================================================

// State is everything the presentation layer draws. Lines are shared with
// the scrollback and must not be modified.
type State struct {
	Lines      []scrollback.Line
	TotalChars int
	Generation uint64
	Evicted    int

	Busy       bool
	Streaming  bool
	Spinner    string
	StatusText string

	RemoteEnabled bool
	RemoteOnline  bool
}

// Online reports whether unknown input would reach the AI backend.
func (s State) Online() bool {
	return s.RemoteEnabled && s.RemoteOnline
}

// =============================================================================
// OPTIONS
// =============================================================================

type settings struct {
	table         *commands.Table
	endpoint      string
	httpClient    *http.Client
	timeout       time.Duration
	frame         time.Duration
	remoteEnabled bool
	healthURL     string
	healthEvery   time.Duration
	store         storage.Store
	debounce      time.Duration
	actions       router.ActionRunner
	timing        *status.Timing
	logger        *slog.Logger
}

// Option configures a Terminal.
type Option func(*settings)

// WithTable sets the command table. Defaults to the built-in commands.
func WithTable(t *commands.Table) Option {
	return func(s *settings) { s.table = t }
}

// WithEndpoint sets the chat endpoint. Without one the remote path is off.
func WithEndpoint(url string) Option {
	return func(s *settings) { s.endpoint = url }
}

// WithHTTPClient sets the client used for chat and health requests.
func WithHTTPClient(c *http.Client) Option {
	return func(s *settings) { s.httpClient = c }
}

// WithTimeout sets the stream idle deadline.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) { s.timeout = d }
}

// WithFrameInterval sets the render coalescing window. Zero or less means
// ops are applied only on Flush, which tests use.
func WithFrameInterval(d time.Duration) Option {
	return func(s *settings) { s.frame = d }
}

// WithRemoteEnabled sets the initial AI feature flag.
func WithRemoteEnabled(enabled bool) Option {
	return func(s *settings) { s.remoteEnabled = enabled }
}

// WithHealth enables reachability tracking against url, polled every
// interval.
func WithHealth(url string, interval time.Duration) Option {
	return func(s *settings) {
		s.healthURL = url
		s.healthEvery = interval
	}
}

// WithStore enables scrollback and thread id persistence.
func WithStore(store storage.Store, debounce time.Duration) Option {
	return func(s *settings) {
		s.store = store
		s.debounce = debounce
	}
}

// WithActions sets the side-effect runner for local commands.
func WithActions(a router.ActionRunner) Option {
	return func(s *settings) { s.actions = a }
}

// WithStatusTiming overrides the spinner and loading-text schedule.
func WithStatusTiming(t status.Timing) Option {
	return func(s *settings) { s.timing = &t }
}

// WithLogger sets the logger for background work.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// =============================================================================
// TERMINAL
// =============================================================================

// Terminal is the assembled core. It is safe for concurrent use.
type Terminal struct {
	table     *commands.Table
	sched     *scrollback.Scheduler
	status    *status.Scheduler
	client    *stream.Client
	router    *router.Router
	history   *session.History
	persister *storage.Persister
	monitor   *health.Monitor
	log       *slog.Logger

	threadID string
	running  atomic.Bool

	mu   sync.Mutex
	snap scrollback.Snapshot
	stat status.Status

	publishMu sync.Mutex
	publish   func(State)

	closeOnce sync.Once
}

// New assembles a terminal. publish receives every state change; it is
// called from background goroutines and must not block for long. Persisted
// scrollback, if any, is restored before New returns.
func New(ctx context.Context, publish func(State), opts ...Option) *Terminal {
	s := settings{
		table:       commands.Default(),
		frame:       scrollback.DefaultFrameInterval,
		timeout:     stream.DefaultTimeout,
		healthEvery: health.DefaultInterval,
		debounce:    storage.DefaultDebounce,
		logger:      logging.Ctx(ctx),
	}
	for _, opt := range opts {
		opt(&s)
	}
	if publish == nil {
		publish = func(State) {}
	}

	t := &Terminal{
		table:   s.table,
		history: session.NewHistory(historyLimit),
		log:     s.logger,
		publish: publish,
	}

	t.sched = scrollback.NewScheduler(nil, t.onSnapshot, scrollback.WithFrameInterval(s.frame))

	statusOpts := []status.Option{}
	if s.timing != nil {
		statusOpts = append(statusOpts, status.WithTiming(*s.timing))
	}
	t.status = status.New(t.onStatus, statusOpts...)

	monitorOpts := []health.Option{
		health.WithInterval(s.healthEvery),
		health.WithLogger(s.logger),
		health.WithOnChange(func(bool) { t.emit() }),
	}
	if s.httpClient != nil {
		monitorOpts = append(monitorOpts, health.WithHTTPClient(s.httpClient))
	}
	t.monitor = health.New(s.healthURL, monitorOpts...)

	if s.store != nil {
		t.persister = storage.NewPersister(s.store,
			storage.WithDebounce(s.debounce),
			storage.WithPersisterLogger(s.logger))
		t.threadID = session.ResolveID(logging.WithLogger(ctx, s.logger), s.store)
	} else {
		t.threadID = session.ResolveID(logging.WithLogger(ctx, s.logger), nil)
	}

	routerOpts := []router.Option{
		router.WithRemoteEnabled(s.remoteEnabled),
		router.WithHealth(t.monitor),
	}
	if s.actions != nil {
		routerOpts = append(routerOpts, router.WithActions(s.actions))
	}
	if s.endpoint != "" {
		streamOpts := []stream.Option{
			stream.WithTimeout(s.timeout),
			stream.WithObserver(t.status),
			stream.WithSessionID(t.ThreadID),
			stream.WithHealthReport(t.monitor.Report),
		}
		if s.httpClient != nil {
			streamOpts = append(streamOpts, stream.WithHTTPClient(s.httpClient))
		}
		t.client = stream.New(s.endpoint, t.sched, streamOpts...)
		routerOpts = append(routerOpts, router.WithStreamer(t.client))
	}
	t.router = router.New(s.table, t.sched, routerOpts...)
	t.snap = t.sched.Snapshot()

	if t.persister != nil {
		if lines := t.persister.Load(ctx); len(lines) > 0 {
			t.sched.Restore(lines)
		}
	}
	if s.endpoint != "" {
		t.monitor.Start(context.WithoutCancel(ctx))
	}
	return t
}

// Execute runs one line of input and blocks until it is fully handled,
// including any streamed reply. Input submitted while another Execute is in
// flight is ignored.
func (t *Terminal) Execute(ctx context.Context, input string) router.Outcome {
	if strings.TrimSpace(input) == "" {
		return router.OutcomeIgnored
	}
	if !t.running.CompareAndSwap(false, true) {
		return router.OutcomeIgnored
	}
	defer t.running.Store(false)

	t.history.Push(input)
	return t.router.Execute(logging.WithLogger(ctx, t.log), input)
}

// Busy reports whether an Execute is in flight.
func (t *Terminal) Busy() bool {
	return t.running.Load()
}

// CancelActive aborts the streamed reply in flight, if any.
func (t *Terminal) CancelActive() {
	if t.client != nil {
		t.client.Cancel()
	}
}

// Clear wipes the scrollback.
func (t *Terminal) Clear() {
	t.sched.Clear()
}

// Flush applies queued scrollback ops now.
func (t *Terminal) Flush() {
	t.sched.Flush()
}

// Older returns the previous history entry. draft is the text being edited.
func (t *Terminal) Older(draft string) string {
	entry, _ := t.history.Older(draft)
	return entry
}

// Newer returns the next history entry, or the saved draft past the newest.
func (t *Terminal) Newer() string {
	return t.history.Newer()
}

// Browsing reports whether Older has moved into the history.
func (t *Terminal) Browsing() bool {
	return t.history.Cursor() >= 0
}

// ResetHistory stops history browsing.
func (t *Terminal) ResetHistory() {
	t.history.Reset()
}

// Shortcuts returns the commands shown under the intro banner.
func (t *Terminal) Shortcuts() []string {
	specs := t.table.Shortcuts()
	names := make([]string, len(specs))
	for i, spec := range specs {
		names[i] = spec.Name
	}
	return names
}

// Complete returns command names starting with prefix.
func (t *Terminal) Complete(prefix string) []string {
	return t.table.Complete(prefix)
}

// ThreadID returns the conversation identifier sent with every request.
func (t *Terminal) ThreadID() string {
	return t.threadID
}

// SetRemoteEnabled flips the AI feature flag and publishes the change.
func (t *Terminal) SetRemoteEnabled(enabled bool) {
	if t.router.RemoteEnabled() == enabled {
		return
	}
	t.router.SetRemoteEnabled(enabled)
	t.log.Info("remote toggled", "enabled", enabled)
	t.emit()
}

// State returns the current state.
func (t *Terminal) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stateLocked()
}

// Close aborts any stream, flushes pending output and persistence, and stops
// background work.
func (t *Terminal) Close() {
	t.closeOnce.Do(func() {
		t.CancelActive()
		t.monitor.Stop()
		t.sched.Close()
		t.status.Close()
		if t.persister != nil {
			t.persister.Close()
		}
	})
}

func (t *Terminal) onSnapshot(snap scrollback.Snapshot) {
	t.mu.Lock()
	t.snap = snap
	t.mu.Unlock()

	if t.persister != nil {
		t.persister.Observe(snap)
	}
	t.emit()
}

func (t *Terminal) onStatus(st status.Status) {
	t.mu.Lock()
	t.stat = st
	t.mu.Unlock()
	t.emit()
}

// emit publishes the latest state. publishMu keeps publishes ordered so a
// consumer never sees an older state after a newer one.
func (t *Terminal) emit() {
	t.publishMu.Lock()
	defer t.publishMu.Unlock()

	t.mu.Lock()
	st := t.stateLocked()
	t.mu.Unlock()

	t.publish(st)
}

func (t *Terminal) stateLocked() State {
	return State{
		Lines:         t.snap.Lines,
		TotalChars:    t.snap.TotalChars,
		Generation:    t.snap.Generation,
		Evicted:       t.snap.Evicted,
		Busy:          t.stat.Busy,
		Streaming:     t.stat.Streaming,
		Spinner:       t.stat.Spinner,
		StatusText:    t.stat.Text,
		RemoteEnabled: t.router.RemoteEnabled(),
		RemoteOnline:  t.client != nil && t.monitor.Available(),
	}
}
