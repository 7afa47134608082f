// Copyright (c) 2025 The chatraghu-tui Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package status drives the busy spinner and rotating loading text.
//
// A busy period moves the scheduler from Idle to Pending. After a short delay
// the spinner appears (Active) and rotates; after a longer delay a loading
// text appears and rotates until the first reply chunk arrives. Leaving the
// busy state releases every timer at once.
package status

import (
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
)

// Phase is the scheduler state.
type Phase int

const (
	PhaseIdle    Phase = iota // Not busy
	PhasePending              // Busy, spinner not shown yet
	PhaseActive               // Busy, spinner rotating
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhasePending:
		return "pending"
	case PhaseActive:
		return "active"
	default:
		return "idle"
	}
}

// LoadingTexts rotate in the placeholder while waiting for the first chunk.
var LoadingTexts = []string{
	"Thinking...",
	"Retrieving info...",
	"Processing...",
	"Styling the resp!@#$%^&*...",
}

// Timing controls the spinner and text schedules.
type Timing struct {
	SpinnerDelay    time.Duration
	SpinnerInterval time.Duration
	TextDelay       time.Duration
	TextInterval    time.Duration
}

// DefaultTiming returns the stock schedule.
func DefaultTiming() Timing {
	return Timing{
		SpinnerDelay:    100 * time.Millisecond,
		SpinnerInterval: 80 * time.Millisecond,
		TextDelay:       1000 * time.Millisecond,
		TextInterval:    1500 * time.Millisecond,
	}
}

// Status is the published view of the scheduler.
type Status struct {
	Phase     Phase
	Busy      bool
	Streaming bool
	Spinner   string
	Text      string
}

// =============================================================================
// SCHEDULER
// =============================================================================

const (
	slotSpinner = "spinner"
	slotText    = "text"
)

// Scheduler owns the status timers. Every change is published through the
// callback given to New. It is safe for concurrent use.
type Scheduler struct {
	mu        sync.Mutex
	phase     Phase
	busy      bool
	streaming bool
	frame     int
	textIdx   int
	spinner   string
	text      string

	// generation invalidates timer callbacks from an earlier busy period.
	generation uint64
	timers     map[string]*time.Timer

	// publishMu keeps publishes in mutation order.
	publishMu sync.Mutex
	publish   func(Status)

	frames []string
	texts  []string
	timing Timing
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithTiming overrides the schedule.
func WithTiming(t Timing) Option {
	return func(s *Scheduler) { s.timing = t }
}

// WithFrames overrides the spinner frames.
func WithFrames(frames []string) Option {
	return func(s *Scheduler) {
		if len(frames) > 0 {
			s.frames = frames
		}
	}
}

// WithTexts overrides the loading texts.
func WithTexts(texts []string) Option {
	return func(s *Scheduler) {
		if len(texts) > 0 {
			s.texts = texts
		}
	}
}

// New creates an idle scheduler. A nil publish discards updates.
func New(publish func(Status), opts ...Option) *Scheduler {
	if publish == nil {
		publish = func(Status) {}
	}
	s := &Scheduler{
		timers:  make(map[string]*time.Timer),
		publish: publish,
		frames:  spinner.MiniDot.Frames,
		texts:   LoadingTexts,
		timing:  DefaultTiming(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Status returns the current status.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusLocked()
}

// SetBusy starts or ends a busy period. Repeating the current value is a
// no-op.
func (s *Scheduler) SetBusy(busy bool) {
	s.update(func() bool {
		if busy == s.busy {
			return false
		}
		s.generation++
		s.releaseLocked()
		s.busy = busy
		s.streaming = false
		s.spinner = ""
		s.text = ""
		s.frame = 0
		s.textIdx = 0

		if !busy {
			s.phase = PhaseIdle
			return true
		}
		s.phase = PhasePending
		gen := s.generation
		s.armLocked(slotSpinner, s.timing.SpinnerDelay, gen, s.showSpinner)
		s.armLocked(slotText, s.timing.TextDelay, gen, s.showText)
		return true
	})
}

// StreamStarted clears the loading text and stops its rotation. The spinner
// keeps running until the busy period ends.
func (s *Scheduler) StreamStarted() {
	s.update(func() bool {
		if s.streaming || !s.busy {
			return false
		}
		s.streaming = true
		s.text = ""
		s.stopLocked(slotText)
		return true
	})
}

// Close releases all timers without publishing.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.releaseLocked()
}

// update runs fn under the lock and publishes when it reports a change.
func (s *Scheduler) update(fn func() bool) {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	s.mu.Lock()
	changed := fn()
	st := s.statusLocked()
	s.mu.Unlock()

	if changed {
		s.publish(st)
	}
}

// armLocked schedules fn after d in the given slot, replacing any timer
// already there. fn runs only if no busy transition happened meanwhile.
func (s *Scheduler) armLocked(slot string, d time.Duration, gen uint64, fn func(gen uint64) bool) {
	s.stopLocked(slot)
	s.timers[slot] = time.AfterFunc(d, func() {
		s.update(func() bool {
			if gen != s.generation {
				return false
			}
			return fn(gen)
		})
	})
}

func (s *Scheduler) showSpinner(gen uint64) bool {
	s.phase = PhaseActive
	s.spinner = s.frames[s.frame]
	s.armLocked(slotSpinner, s.timing.SpinnerInterval, gen, s.nextFrame)
	return true
}

func (s *Scheduler) nextFrame(gen uint64) bool {
	s.frame = (s.frame + 1) % len(s.frames)
	s.spinner = s.frames[s.frame]
	s.armLocked(slotSpinner, s.timing.SpinnerInterval, gen, s.nextFrame)
	return true
}

func (s *Scheduler) showText(gen uint64) bool {
	if s.streaming {
		return false
	}
	s.textIdx = 0
	s.text = s.texts[0]
	s.armLocked(slotText, s.timing.TextInterval, gen, s.nextText)
	return true
}

func (s *Scheduler) nextText(gen uint64) bool {
	if s.streaming {
		s.text = ""
		return true
	}
	s.textIdx = (s.textIdx + 1) % len(s.texts)
	s.text = s.texts[s.textIdx]
	s.armLocked(slotText, s.timing.TextInterval, gen, s.nextText)
	return true
}

func (s *Scheduler) stopLocked(slot string) {
	if t, ok := s.timers[slot]; ok {
		t.Stop()
		delete(s.timers, slot)
	}
}

// releaseLocked stops every timer in the set.
func (s *Scheduler) releaseLocked() {
	for slot, t := range s.timers {
		t.Stop()
		delete(s.timers, slot)
	}
}

func (s *Scheduler) statusLocked() Status {
	return Status{
		Phase:     s.phase,
		Busy:      s.busy,
		Streaming: s.streaming,
		Spinner:   s.spinner,
		Text:      s.text,
	}
}
