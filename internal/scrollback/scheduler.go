// Copyright (c) 2025 The chatraghu-tui Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package scrollback

import (
	"sync"
	"time"
)

// DefaultFrameInterval is the flush delay used when no display refresh
// callback exists: one frame at roughly 60fps.
const DefaultFrameInterval = 16 * time.Millisecond

// =============================================================================
// SNAPSHOT
// =============================================================================

// Snapshot is the published state of the buffer after a flush.
type Snapshot struct {
	// Lines share segment storage with the buffer and must be treated as
	// read-only.
	Lines      []Line
	TotalChars int

	// Generation increments on every Clear and Restore so consumers can tell
	// replaced contents from ordinary growth. Within one generation only the
	// last line changes.
	Generation uint64

	// Evicted counts lines dropped from the front since the last clear.
	// Evicted+i is a stable index for Lines[i] within one generation.
	Evicted int
}

// IsEmpty reports whether the snapshot is a single empty line.
func (s Snapshot) IsEmpty() bool {
	return len(s.Lines) == 0 || (len(s.Lines) == 1 && len(s.Lines[0]) == 0)
}

// Publisher receives one snapshot per flush.
type Publisher func(Snapshot)

// =============================================================================
// SCHEDULER
// =============================================================================

// Scheduler batches ops that arrive within one frame into a single buffer
// transition and a single publish.
//
// Any number of Enqueue calls between two flushes coalesce; ops are applied in
// FIFO order and are never dropped or reordered. Scheduling is idempotent: a
// pending flush is never duplicated.
//
// Scheduler is the exclusive owner of its Buffer. All goroutines that mutate
// the scrollback must go through it.
type Scheduler struct {
	mu         sync.Mutex
	buf        *Buffer
	pending    []Op
	scheduled  bool
	timer      *time.Timer
	generation uint64
	closed     bool

	// flushMu orders publishes so snapshots arrive in mutation order.
	flushMu sync.Mutex

	frame   time.Duration
	publish Publisher
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithFrameInterval sets the delay between the first enqueue and the flush.
// A non-positive interval disables automatic flushing; callers must call Flush.
func WithFrameInterval(d time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		s.frame = d
	}
}

// NewScheduler creates a scheduler that owns buf and reports to publish.
// A nil buf gets a fresh default buffer; a nil publish discards snapshots.
func NewScheduler(buf *Buffer, publish Publisher, opts ...SchedulerOption) *Scheduler {
	if buf == nil {
		buf = NewBuffer()
	}
	if publish == nil {
		publish = func(Snapshot) {}
	}
	s := &Scheduler{
		buf:     buf,
		frame:   DefaultFrameInterval,
		publish: publish,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enqueue queues op and schedules a flush if none is pending.
func (s *Scheduler) Enqueue(op Op) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.pending = append(s.pending, op)
	if s.scheduled || s.frame <= 0 {
		return
	}
	s.scheduled = true
	s.timer = time.AfterFunc(s.frame, s.Flush)
}

// AppendText queues a text op.
func (s *Scheduler) AppendText(text string) { s.Enqueue(TextOp(text)) }

// AppendPrefix queues a prefix op.
func (s *Scheduler) AppendPrefix() { s.Enqueue(PrefixOp()) }

// AppendNewline queues a newline op.
func (s *Scheduler) AppendNewline() { s.Enqueue(NewlineOp()) }

// Flush drains the queue, applies it to the buffer and publishes the result.
// It does nothing when the queue is empty.
func (s *Scheduler) Flush() {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	s.mu.Lock()
	s.cancelTimerLocked()
	if len(s.pending) == 0 {
		s.mu.Unlock()
		return
	}
	ops := s.pending
	s.pending = nil
	s.buf.Apply(ops...)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(snap)
}

// Clear discards pending ops, resets the buffer and publishes immediately.
func (s *Scheduler) Clear() {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	s.mu.Lock()
	s.cancelTimerLocked()
	s.pending = nil
	s.buf.Clear()
	s.generation++
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(snap)
}

// Restore replaces the buffer contents (e.g. from persistence) and publishes.
func (s *Scheduler) Restore(lines []Line) {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	s.mu.Lock()
	s.buf.Restore(lines)
	s.generation++
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(snap)
}

// Snapshot returns the current buffer state without flushing.
func (s *Scheduler) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Pending returns the number of queued ops.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Close flushes anything queued and rejects further ops.
func (s *Scheduler) Close() {
	s.Flush()
	s.mu.Lock()
	s.closed = true
	s.cancelTimerLocked()
	s.mu.Unlock()
}

func (s *Scheduler) cancelTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.scheduled = false
}

func (s *Scheduler) snapshotLocked() Snapshot {
	return Snapshot{
		Lines:      s.buf.Lines(),
		TotalChars: s.buf.TotalChars(),
		Generation: s.generation,
		Evicted:    s.buf.Evicted(),
	}
}
