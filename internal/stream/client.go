// Copyright (c) 2025 The chatraghu-tui Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/raghunandan-r/chatraghu-tui/internal/logging"
	"github.com/raghunandan-r/chatraghu-tui/internal/util"
)

const (
	// DefaultTimeout is the idle deadline: the longest wait for the response
	// or for the next body chunk. It is re-armed on every chunk, so it does
	// not bound the total length of a reply that keeps streaming.
	DefaultTimeout = 15 * time.Second

	// maxReasonLen caps the failure reason shown to the user.
	maxReasonLen = 200

	// maxErrorBody bounds how much of an error response is read.
	maxErrorBody = 4 * 1024

	readBufferSize = 4 * 1024
)

// =============================================================================
// TYPES
// =============================================================================

// State is the per-call ingestion state.
type State int32

const (
	StateIdle State = iota
	StateRequesting
	StateStreaming
	StateCompleted
	StateAborted
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRequesting:
		return "requesting"
	case StateStreaming:
		return "streaming"
	case StateCompleted:
		return "completed"
	case StateAborted:
		return "aborted"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Sink receives scrollback mutations. scrollback.Scheduler satisfies it.
type Sink interface {
	AppendText(text string)
	AppendPrefix()
	AppendNewline()
}

// Observer is told when a send starts and ends and when the first body chunk
// arrives. status.Scheduler satisfies it.
type Observer interface {
	SetBusy(busy bool)
	StreamStarted()
}

// Outcome is the terminal result of one Send.
type Outcome struct {
	State  State
	Err    error
	Chunks int
}

// Session is one in-flight exchange. Only one is active per Client.
type Session struct {
	cancel  context.CancelCauseFunc
	done    chan struct{}
	started atomic.Bool
}

// Started reports whether the first body chunk has arrived.
func (s *Session) Started() bool { return s.started.Load() }

type chatMessage struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	SessionID string `json:"session_id,omitempty"`
}

type chatRequest struct {
	Messages []chatMessage `json:"messages"`
}

// =============================================================================
// CLIENT
// =============================================================================

// Client streams replies from the remote chat endpoint into a Sink.
type Client struct {
	endpoint  string
	http      *http.Client
	timeout   time.Duration
	sink      Sink
	observer  Observer
	sessionID func() string
	report    func(ok bool)

	mu     sync.Mutex
	active *Session
	state  atomic.Int32
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client. It must not impose a total timeout;
// the idle deadline is handled per chunk.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the idle deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithObserver sets the busy/started observer.
func WithObserver(o Observer) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// WithSessionID sets the function that supplies the session identifier.
func WithSessionID(fn func() string) Option {
	return func(c *Client) {
		c.sessionID = fn
	}
}

// WithHealthReport sets a hook told whether the endpoint was reachable.
func WithHealthReport(fn func(ok bool)) Option {
	return func(c *Client) {
		c.report = fn
	}
}

// New creates a client posting to endpoint and writing into sink.
func New(endpoint string, sink Sink, opts ...Option) *Client {
	c := &Client{
		endpoint:  endpoint,
		http:      &http.Client{},
		timeout:   DefaultTimeout,
		sink:      sink,
		sessionID: func() string { return "" },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the configured endpoint URL.
func (c *Client) Endpoint() string { return c.endpoint }

// State returns the current ingestion state.
func (c *Client) State() State { return State(c.state.Load()) }

// Active reports whether a session is in flight.
func (c *Client) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active != nil
}

// Cancel aborts the active session as a user abort. It is a no-op when idle
// and safe to call repeatedly.
func (c *Client) Cancel() {
	c.mu.Lock()
	sess := c.active
	c.mu.Unlock()
	if sess != nil {
		sess.cancel(ErrCanceled)
	}
}

// Send streams the reply to message into the sink and blocks until the
// exchange ends. A session already in flight is aborted, and its terminal
// output is written before this call's first mutation.
func (c *Client) Send(ctx context.Context, message string) Outcome {
	sess, sctx := c.begin(ctx)
	defer c.end(sess)

	log := logging.Ctx(ctx)

	c.sink.AppendNewline()
	c.sink.AppendText("> " + message)
	c.sink.AppendNewline()

	// Idle deadline, re-armed on every chunk.
	timer := time.AfterFunc(c.timeout, func() { sess.cancel(ErrTimeout) })
	defer timer.Stop()

	out := c.exchange(sctx, sess, timer, message)
	out.State = finish(sctx, out.Err)
	if out.State == StateAborted {
		out.Err = context.Cause(sctx)
	}
	c.state.Store(int32(out.State))

	switch out.State {
	case StateCompleted:
		c.sink.AppendNewline()
		log.Debug("stream completed", "chunks", out.Chunks)
	case StateAborted:
		if errors.Is(context.Cause(sctx), ErrTimeout) {
			c.sink.AppendText("[" + ErrTimeout.Error() + "]")
			log.Warn("stream timed out", "timeout", c.timeout, "chunks", out.Chunks)
		} else {
			c.sink.AppendText("^C")
			log.Debug("stream aborted", "chunks", out.Chunks)
		}
		c.sink.AppendNewline()
	case StateFailed:
		c.sink.AppendNewline()
		c.sink.AppendText(c.failureLine(out.Err))
		c.sink.AppendNewline()
		log.Error("stream failed", "endpoint", c.endpoint, "err", out.Err)
	}
	return out
}

// begin cancels any active session, waits for it to finish, and registers a
// new one.
func (c *Client) begin(ctx context.Context) (*Session, context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	for {
		c.mu.Lock()
		prev := c.active
		if prev == nil {
			sctx, cancel := context.WithCancelCause(ctx)
			sess := &Session{cancel: cancel, done: make(chan struct{})}
			c.active = sess
			c.mu.Unlock()

			c.state.Store(int32(StateRequesting))
			if c.observer != nil {
				c.observer.SetBusy(true)
			}
			return sess, sctx
		}
		c.mu.Unlock()

		prev.cancel(ErrCanceled)
		<-prev.done
	}
}

func (c *Client) end(sess *Session) {
	sess.cancel(context.Canceled)

	c.mu.Lock()
	if c.active == sess {
		c.active = nil
	}
	c.mu.Unlock()

	c.state.Store(int32(StateIdle))
	if c.observer != nil {
		c.observer.SetBusy(false)
	}
	close(sess.done)
}

// exchange performs the request and ingests the body. Outcome.Err is nil on a
// clean end of stream.
func (c *Client) exchange(ctx context.Context, sess *Session, timer *time.Timer, message string) Outcome {
	body, err := json.Marshal(chatRequest{
		Messages: []chatMessage{{Role: "user", Content: message, SessionID: c.sessionID()}},
	})
	if err != nil {
		return Outcome{Err: fmt.Errorf("marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Outcome{Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() == nil {
			c.reportHealth(false)
		}
		return Outcome{Err: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()
	c.reportHealth(true)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return Outcome{Err: &HTTPError{Status: resp.StatusCode, Reason: failureReason(resp.StatusCode, data)}}
	}
	if resp.Body == nil || resp.Body == http.NoBody {
		return Outcome{Err: ErrNoBody}
	}

	c.sink.AppendPrefix()
	c.sink.AppendText(" ")

	return c.ingest(ctx, sess, timer, resp.Body)
}

// ingest reads the body until end of stream, the done marker, or
// cancellation. Bytes read after cancellation are discarded.
func (c *Client) ingest(ctx context.Context, sess *Session, timer *time.Timer, body io.Reader) Outcome {
	var out Outcome
	dec := newLineDecoder()
	buf := make([]byte, readBufferSize)

	emit := func(lines []string) (done bool) {
		for _, line := range lines {
			payload, ok, end := parseRecord(line)
			if end {
				return true
			}
			if ok {
				out.Chunks++
				c.sink.AppendText(payload)
			}
		}
		return false
	}

	for {
		n, err := body.Read(buf)
		if ctx.Err() != nil {
			out.Err = context.Cause(ctx)
			return out
		}
		if n > 0 {
			timer.Reset(c.timeout)
			if sess.started.CompareAndSwap(false, true) {
				c.state.Store(int32(StateStreaming))
				if c.observer != nil {
					c.observer.StreamStarted()
				}
			}
			if emit(dec.Write(buf[:n])) {
				return out
			}
		}
		if errors.Is(err, io.EOF) {
			emit(dec.Close())
			return out
		}
		if err != nil {
			out.Err = fmt.Errorf("read body: %w", err)
			return out
		}
	}
}

// finish maps the exchange error onto a terminal state. Any error seen after
// the session context was canceled counts as an abort.
func finish(ctx context.Context, err error) State {
	switch {
	case err == nil:
		return StateCompleted
	case ctx.Err() != nil:
		return StateAborted
	default:
		return StateFailed
	}
}

func (c *Client) failureLine(err error) string {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.Reason != "" {
		return "[error: " + httpErr.Reason + "]"
	}
	return "[error connecting to " + c.endpoint + "]"
}

func (c *Client) reportHealth(ok bool) {
	if c.report != nil {
		c.report(ok)
	}
}

// failureReason extracts a human-readable message from an error body,
// falling back to the status text.
func failureReason(status int, body []byte) string {
	var payload map[string]any
	if json.Unmarshal(body, &payload) == nil {
		for _, key := range []string{"detail", "error", "message"} {
			if s, ok := payload[key].(string); ok && strings.TrimSpace(s) != "" {
				return truncate(strings.TrimSpace(s))
			}
			if nested, ok := payload[key].(map[string]any); ok {
				if s, ok := nested["message"].(string); ok && strings.TrimSpace(s) != "" {
					return truncate(strings.TrimSpace(s))
				}
			}
		}
	} else if text := strings.TrimSpace(string(body)); text != "" && utf8.ValidString(text) {
		return truncate(text)
	}
	return http.StatusText(status)
}

func truncate(s string) string {
	return util.ClipRunes(s, maxReasonLen)
}
