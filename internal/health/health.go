// Copyright (c) 2025 The chatraghu-tui Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package health tracks whether the remote chat endpoint is reachable.
package health

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/raghunandan-r/chatraghu-tui/internal/logging"
)

const (
	// DefaultInterval is the background polling period.
	DefaultInterval = 30 * time.Second

	// DefaultProbeTimeout bounds a single probe.
	DefaultProbeTimeout = 3 * time.Second

	// DefaultMinGap is the minimum spacing between on-demand probes.
	DefaultMinGap = 2 * time.Second
)

// Monitor holds the last-known reachability of the remote endpoint. It is
// safe for concurrent use.
type Monitor struct {
	url      string
	client   *http.Client
	interval time.Duration
	timeout  time.Duration
	limiter  *rate.Limiter
	log      *slog.Logger
	onChange func(bool)

	available atomic.Bool

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithHTTPClient sets the probe client.
func WithHTTPClient(c *http.Client) Option {
	return func(m *Monitor) { m.client = c }
}

// WithInterval sets the polling period. Zero or less disables polling.
func WithInterval(d time.Duration) Option {
	return func(m *Monitor) { m.interval = d }
}

// WithProbeTimeout bounds each probe.
func WithProbeTimeout(d time.Duration) Option {
	return func(m *Monitor) { m.timeout = d }
}

// WithMinGap sets the minimum spacing between on-demand checks.
func WithMinGap(d time.Duration) Option {
	return func(m *Monitor) { m.limiter = rate.NewLimiter(rate.Every(d), 1) }
}

// WithOnChange registers a callback for availability transitions.
func WithOnChange(fn func(available bool)) Option {
	return func(m *Monitor) { m.onChange = fn }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Monitor) {
		if l != nil {
			m.log = l
		}
	}
}

// New creates a monitor probing url. The endpoint starts out assumed
// reachable. An empty url disables probing and keeps it that way.
func New(url string, opts ...Option) *Monitor {
	m := &Monitor{
		url:      url,
		client:   &http.Client{},
		interval: DefaultInterval,
		timeout:  DefaultProbeTimeout,
		limiter:  rate.NewLimiter(rate.Every(DefaultMinGap), 1),
		log:      logging.Discard,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.available.Store(true)
	return m
}

// Available reports the last-known state.
func (m *Monitor) Available() bool {
	return m.available.Load()
}

// Report records an observation made elsewhere, e.g. by the stream client.
// Without a probe url nothing could ever mark the endpoint up again, so
// reports are ignored and the endpoint stays reachable.
func (m *Monitor) Report(ok bool) {
	if m.url == "" {
		return
	}
	if m.available.Swap(ok) == ok {
		return
	}
	m.log.Info("remote availability changed", "available", ok)
	if m.onChange != nil {
		m.onChange(ok)
	}
}

// Check probes the endpoint unless a probe ran too recently, and returns the
// resulting state.
func (m *Monitor) Check(ctx context.Context) bool {
	if m.url == "" || !m.limiter.Allow() {
		return m.Available()
	}
	return m.probe(ctx)
}

func (m *Monitor) probe(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.url, nil)
	if err != nil {
		m.log.Warn("bad health url", "url", m.url, "err", err)
		m.Report(false)
		return false
	}

	resp, err := m.client.Do(req)
	if err != nil {
		// A canceled parent says nothing about the remote.
		if errors.Is(ctx.Err(), context.Canceled) {
			return m.Available()
		}
		m.log.Debug("health probe failed", "err", err)
		m.Report(false)
		return false
	}
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	resp.Body.Close()

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	m.Report(ok)
	return ok
}

// Start begins background polling with an immediate first probe. Calling
// Start again restarts the loop.
func (m *Monitor) Start(ctx context.Context) {
	if m.url == "" || m.interval <= 0 {
		return
	}
	m.Stop()

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	m.mu.Lock()
	m.cancel = cancel
	m.done = done
	m.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		m.probe(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.probe(ctx)
			}
		}
	}()
}

// Stop ends background polling and waits for the loop to exit.
func (m *Monitor) Stop() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}
