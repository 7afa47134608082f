// Copyright (c) 2025 The chatraghu-tui Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/raghunandan-r/chatraghu-tui/internal/logging"
	"github.com/raghunandan-r/chatraghu-tui/internal/scrollback"
)

// DefaultDebounce is the quiet period before a snapshot is written.
const DefaultDebounce = 500 * time.Millisecond

// writeTimeout bounds a single store write from the debounce timer.
const writeTimeout = 5 * time.Second

// =============================================================================
// PERSISTER
// =============================================================================

// Persister saves the scrollback under one key. Saves are debounced: a burst
// of snapshots results in one write of the latest. An empty snapshot deletes
// the key. Store failures are logged and never surface to the caller.
type Persister struct {
	store Store
	key   string
	delay time.Duration
	log   *slog.Logger

	mu      sync.Mutex
	timer   *time.Timer
	pending *queued
	seq     uint64
	closed  bool

	// writeMu serializes store writes; written drops snapshots older than
	// the last one stored.
	writeMu sync.Mutex
	written uint64
}

type queued struct {
	snap scrollback.Snapshot
	seq  uint64
}

// PersisterOption configures a Persister.
type PersisterOption func(*Persister)

// WithDebounce sets the quiet period. Zero or less writes synchronously.
func WithDebounce(d time.Duration) PersisterOption {
	return func(p *Persister) { p.delay = d }
}

// WithKey overrides the storage key.
func WithKey(key string) PersisterOption {
	return func(p *Persister) { p.key = key }
}

// WithPersisterLogger sets the logger for swallowed failures.
func WithPersisterLogger(l *slog.Logger) PersisterOption {
	return func(p *Persister) {
		if l != nil {
			p.log = l
		}
	}
}

// NewPersister creates a persister over store.
func NewPersister(store Store, opts ...PersisterOption) *Persister {
	p := &Persister{
		store: store,
		key:   KeyHistory,
		delay: DefaultDebounce,
		log:   logging.Discard,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Load returns the saved lines. A missing value yields nil. A value that does
// not decode is deleted and also yields nil.
func (p *Persister) Load(ctx context.Context) []scrollback.Line {
	raw, err := p.store.Get(ctx, p.key)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		p.log.Warn("history load failed", "key", p.key, "err", err)
		return nil
	}

	var lines []scrollback.Line
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		p.log.Warn("discarding corrupt history", "key", p.key, "err", err)
		if err := p.store.Delete(ctx, p.key); err != nil {
			p.log.Warn("history delete failed", "key", p.key, "err", err)
		}
		return nil
	}
	return lines
}

// Observe schedules snap to be written after the debounce period.
func (p *Persister) Observe(snap scrollback.Snapshot) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.seq++
	q := &queued{snap: snap, seq: p.seq}
	if p.delay <= 0 {
		p.mu.Unlock()
		p.write(q)
		return
	}
	p.pending = q
	if p.timer == nil {
		p.timer = time.AfterFunc(p.delay, p.fire)
	} else {
		p.timer.Reset(p.delay)
	}
	p.mu.Unlock()
}

// Flush writes any pending snapshot now.
func (p *Persister) Flush() {
	p.mu.Lock()
	q := p.takeLocked()
	p.mu.Unlock()
	if q != nil {
		p.write(q)
	}
}

// Close flushes and stops accepting snapshots.
func (p *Persister) Close() {
	p.mu.Lock()
	p.closed = true
	q := p.takeLocked()
	p.mu.Unlock()
	if q != nil {
		p.write(q)
	}
}

func (p *Persister) fire() {
	p.mu.Lock()
	q := p.pending
	p.pending = nil
	p.mu.Unlock()
	if q != nil {
		p.write(q)
	}
}

func (p *Persister) takeLocked() *queued {
	if p.timer != nil {
		p.timer.Stop()
	}
	q := p.pending
	p.pending = nil
	return q
}

func (p *Persister) write(q *queued) {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	if q.seq <= p.written {
		return
	}
	p.written = q.seq
	snap := q.snap

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if snap.IsEmpty() {
		if err := p.store.Delete(ctx, p.key); err != nil {
			p.log.Warn("history delete failed", "key", p.key, "err", err)
		}
		return
	}

	data, err := json.Marshal(snap.Lines)
	if err != nil {
		p.log.Warn("history encode failed", "err", err)
		return
	}
	if err := p.store.Set(ctx, p.key, string(data)); err != nil {
		p.log.Warn("history save failed", "key", p.key, "err", err)
	}
}
