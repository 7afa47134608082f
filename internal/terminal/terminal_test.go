// Copyright (c) 2025 The chatraghu-tui Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package terminal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raghunandan-r/chatraghu-tui/internal/commands"
	"github.com/raghunandan-r/chatraghu-tui/internal/router"
	"github.com/raghunandan-r/chatraghu-tui/internal/status"
	"github.com/raghunandan-r/chatraghu-tui/internal/storage"
)

type states struct {
	mu  sync.Mutex
	all []State
}

func (s *states) publish(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.all = append(s.all, st)
}

func (s *states) list() []State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]State(nil), s.all...)
}

func render(st State) []string {
	out := make([]string, len(st.Lines))
	for i, line := range st.Lines {
		out[i] = line.Render("›")
	}
	return out
}

type nopActions struct{}

func (nopActions) Run(context.Context, commands.Action) error { return nil }

func slowTiming() status.Timing {
	return status.Timing{SpinnerDelay: time.Hour, SpinnerInterval: time.Hour, TextDelay: time.Hour, TextInterval: time.Hour}
}

func newTerminal(t *testing.T, rec *states, opts ...Option) *Terminal {
	t.Helper()
	base := []Option{WithFrameInterval(0), WithActions(nopActions{}), WithStatusTiming(slowTiming())}
	term := New(context.Background(), rec.publish, append(base, opts...)...)
	t.Cleanup(term.Close)
	return term
}

// chatServer replies with one data record per word and records each request.
func chatServer(t *testing.T, words ...string) (*httptest.Server, *[]map[string]any) {
	t.Helper()
	var mu sync.Mutex
	var requests []map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		mu.Lock()
		requests = append(requests, body)
		mu.Unlock()

		flusher := w.(http.Flusher)
		for _, word := range words {
			fmt.Fprintf(w, "data: %s\n", word)
			flusher.Flush()
		}
		fmt.Fprint(w, "data: [DONE]\n")
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

// =============================================================================
// LOCAL COMMANDS
// =============================================================================

func TestExecute_LocalCommandPublishesLines(t *testing.T) {
	rec := &states{}
	term := newTerminal(t, rec)

	out := term.Execute(context.Background(), "whoami")
	term.Flush()

	assert.Equal(t, router.OutcomeLocal, out)
	st := term.State()
	lines := render(st)
	assert.Equal(t, "> whoami", lines[1])
	assert.Contains(t, lines, "  Raghu - Data Engineer based in NYC")
	assert.False(t, st.Busy)

	all := rec.list()
	require.NotEmpty(t, all)
	assert.Equal(t, st.Lines, all[len(all)-1].Lines)
}

func TestExecute_BlankInputIgnored(t *testing.T) {
	term := newTerminal(t, &states{})
	assert.Equal(t, router.OutcomeIgnored, term.Execute(context.Background(), "   "))
	assert.Equal(t, "", term.Older(""))
}

func TestClear(t *testing.T) {
	term := newTerminal(t, &states{})
	term.Execute(context.Background(), "help")
	term.Flush()
	require.Greater(t, len(term.State().Lines), 1)

	term.Clear()
	st := term.State()
	assert.Equal(t, uint64(1), st.Generation)
	assert.Len(t, st.Lines, 1)
	assert.Zero(t, st.TotalChars)
}

func TestHistoryNavigation(t *testing.T) {
	term := newTerminal(t, &states{})
	ctx := context.Background()
	term.Execute(ctx, "whoami")
	term.Execute(ctx, "skills")

	assert.False(t, term.Browsing())
	assert.Equal(t, "skills", term.Older("dra"))
	assert.True(t, term.Browsing())
	assert.Equal(t, "whoami", term.Older(""))
	assert.Equal(t, "whoami", term.Older(""))
	assert.Equal(t, "skills", term.Newer())
	assert.Equal(t, "dra", term.Newer())
	assert.False(t, term.Browsing())
}

func TestShortcuts(t *testing.T) {
	term := newTerminal(t, &states{})
	assert.Equal(t, []string{"whoami", "now", "projects", "contact"}, term.Shortcuts())
	assert.Equal(t, []string{"whoami"}, term.Complete("wh"))
}

// =============================================================================
// REMOTE
// =============================================================================

func TestExecute_RemoteStreamsReply(t *testing.T) {
	srv, requests := chatServer(t, "Hi", "there")
	rec := &states{}
	term := newTerminal(t, rec, WithEndpoint(srv.URL), WithRemoteEnabled(true))

	out := term.Execute(context.Background(), "who are you?")
	term.Flush()

	assert.Equal(t, router.OutcomeRemote, out)
	st := term.State()
	assert.Equal(t, []string{"", "> who are you?", "› Hithere", ""}, render(st))
	assert.True(t, st.Online())

	require.Len(t, *requests, 1)
	msgs := (*requests)[0]["messages"].([]any)
	msg := msgs[0].(map[string]any)
	assert.Equal(t, "who are you?", msg["content"])
	assert.Equal(t, term.ThreadID(), msg["session_id"])
	assert.NotContains(t, msg, "thread_id")

	// Busy was published on and off around the exchange.
	var sawBusy bool
	for _, s := range rec.list() {
		sawBusy = sawBusy || s.Busy
	}
	assert.True(t, sawBusy)
	assert.False(t, st.Busy)
}

func TestExecute_RetryAfterNetworkFailureStaysRemote(t *testing.T) {
	down := httptest.NewServer(http.NotFoundHandler())
	endpoint := down.URL
	down.Close()

	term := newTerminal(t, &states{}, WithEndpoint(endpoint), WithRemoteEnabled(true))

	assert.Equal(t, router.OutcomeRemote, term.Execute(context.Background(), "hello there"))
	assert.True(t, term.State().Online())
	assert.Equal(t, router.OutcomeRemote, term.Execute(context.Background(), "hello again"))
}

func TestExecute_RetryRechecksHealthURL(t *testing.T) {
	down := httptest.NewServer(http.NotFoundHandler())
	endpoint := down.URL
	down.Close()

	var probes atomic.Int32
	healthSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		probes.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(healthSrv.Close)

	term := newTerminal(t, &states{}, WithEndpoint(endpoint), WithRemoteEnabled(true),
		WithHealth(healthSrv.URL, time.Hour))

	assert.Equal(t, router.OutcomeRemote, term.Execute(context.Background(), "hello there"))
	assert.Equal(t, router.OutcomeRemote, term.Execute(context.Background(), "hello again"))
	assert.GreaterOrEqual(t, probes.Load(), int32(1))
}

func TestExecute_RemoteDisabledReportsNotFound(t *testing.T) {
	srv, requests := chatServer(t, "nope")
	term := newTerminal(t, &states{}, WithEndpoint(srv.URL), WithRemoteEnabled(false))

	assert.Equal(t, router.OutcomeNotFound, term.Execute(context.Background(), "asdqwe"))
	assert.Empty(t, *requests)
	assert.False(t, term.State().Online())

	term.SetRemoteEnabled(true)
	assert.True(t, term.State().RemoteEnabled)
	assert.Equal(t, router.OutcomeRemote, term.Execute(context.Background(), "asdqwe"))
}

func TestExecute_IgnoredWhileBusyAndCancel(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "data: partial\n")
		w.(http.Flusher).Flush()
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	term := newTerminal(t, &states{}, WithEndpoint(srv.URL), WithRemoteEnabled(true))

	done := make(chan router.Outcome, 1)
	go func() { done <- term.Execute(context.Background(), "tell me") }()

	require.Eventually(t, term.Busy, time.Second, time.Millisecond)
	assert.Equal(t, router.OutcomeIgnored, term.Execute(context.Background(), "whoami"))

	term.CancelActive()
	select {
	case out := <-done:
		assert.Equal(t, router.OutcomeRemote, out)
	case <-time.After(2 * time.Second):
		t.Fatal("cancel did not end the stream")
	}

	term.Flush()
	lines := render(term.State())
	assert.Contains(t, lines, "› partial^C")
	assert.False(t, term.Busy())
}

// =============================================================================
// PERSISTENCE
// =============================================================================

func TestPersistence_RestoresScrollbackAndThread(t *testing.T) {
	store := storage.NewMemoryStore()

	first := New(context.Background(), nil,
		WithFrameInterval(0), WithStore(store, 0), WithActions(nopActions{}))
	first.Execute(context.Background(), "whoami")
	first.Flush()
	want := render(first.State())
	thread := first.ThreadID()
	first.Close()

	rec := &states{}
	second := newTerminal(t, rec, WithStore(store, 0))
	assert.Equal(t, want, render(second.State()))
	assert.Equal(t, thread, second.ThreadID())
	require.NotEmpty(t, rec.list(), "restore publishes")
}

func TestPersistence_ClearDeletesHistory(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	term := newTerminal(t, &states{}, WithStore(store, 0))

	term.Execute(ctx, "whoami")
	term.Flush()
	_, err := store.Get(ctx, storage.KeyHistory)
	require.NoError(t, err)

	term.Execute(ctx, "clear")
	_, err = store.Get(ctx, storage.KeyHistory)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
