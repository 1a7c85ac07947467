// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jeranaias/parley/internal/assistant"
	"github.com/jeranaias/parley/internal/model"
	"github.com/jeranaias/parley/internal/storage"
)

// fakeCompleter is a scriptable Completer for manager tests.
type fakeCompleter struct {
	mu       sync.Mutex
	reply    string
	err      error
	messages []string
	block    chan struct{} // when non-nil, calls wait until closed
}

func (f *fakeCompleter) call(input string) (string, error) {
	f.mu.Lock()
	f.messages = append(f.messages, input)
	block := f.block
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeCompleter) Chat(ctx context.Context, message string) (string, error) {
	return f.call(message)
}

func (f *fakeCompleter) LookupProcess(ctx context.Context, processName string) (string, error) {
	return f.call(processName)
}

func (f *fakeCompleter) received() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.messages))
	copy(out, f.messages)
	return out
}

func newTestStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open(t.TempDir(), "test")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func newTestManager(t *testing.T, completer Completer) *Manager {
	t.Helper()
	return NewManager(newTestStore(t), completer)
}

// waitFor polls until the condition holds or the deadline expires.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

// =============================================================================
// INITIAL STATE
// =============================================================================

func TestFreshManagerSeedsDefaultSession(t *testing.T) {
	m := newTestManager(t, &fakeCompleter{})

	require.Equal(t, 1, m.Count())

	sess := m.Current()
	require.NotNil(t, sess)
	require.Equal(t, DefaultSessionName, sess.Name)
	require.Equal(t, 1, sess.MessageCount())
	require.Equal(t, model.WelcomeText, sess.Messages[0].Content)
}

func TestCurrentIDAlwaysResolves(t *testing.T) {
	m := newTestManager(t, &fakeCompleter{})

	// Through a create/switch/delete churn, CurrentID must always point at
	// a live session.
	check := func() {
		require.NotNil(t, m.Get(m.CurrentID()), "CurrentID must resolve")
	}

	check()
	a := m.NewChat("A")
	check()
	b := m.NewChat("B")
	check()
	m.Switch(a)
	check()
	m.Delete(a)
	check()
	m.Delete(b)
	check()
}

func TestDeleteLastSessionCreatesReplacement(t *testing.T) {
	m := newTestManager(t, &fakeCompleter{})

	only := m.CurrentID()
	m.Delete(only)

	require.Equal(t, 1, m.Count(), "collection must never be empty")
	require.NotEqual(t, only, m.CurrentID())

	fresh := m.Current()
	require.Equal(t, 1, fresh.MessageCount())
	require.Equal(t, model.WelcomeText, fresh.Messages[0].Content)
}

// =============================================================================
// SESSION OPERATIONS
// =============================================================================

func TestNewChatDefaultNaming(t *testing.T) {
	m := newTestManager(t, &fakeCompleter{})

	id := m.NewChat("")
	require.Equal(t, "Chat 2", m.Get(id).Name)
	require.Equal(t, id, m.CurrentID(), "new session becomes current")

	id2 := m.NewChat("   ")
	require.Equal(t, "Chat 3", m.Get(id2).Name)
}

func TestSwitchUnknownIDIsNoOp(t *testing.T) {
	m := newTestManager(t, &fakeCompleter{})

	before := m.CurrentID()
	m.Switch("no-such-session")
	require.Equal(t, before, m.CurrentID())
}

func TestRename(t *testing.T) {
	m := newTestManager(t, &fakeCompleter{})
	id := m.CurrentID()

	m.Rename(id, "  Renamed  ")
	require.Equal(t, "Renamed", m.Get(id).Name, "name is trimmed")

	m.Rename(id, "   ")
	require.Equal(t, "Renamed", m.Get(id).Name, "blank rename is a no-op")

	m.Rename("no-such-session", "X")
	require.Equal(t, "Renamed", m.Get(id).Name)
}

func TestDeleteNonCurrentKeepsCurrent(t *testing.T) {
	m := newTestManager(t, &fakeCompleter{})
	first := m.CurrentID()
	second := m.NewChat("Second")

	m.Delete(first)

	require.Equal(t, second, m.CurrentID())
	require.Nil(t, m.Get(first))
}

func TestClearChatIsSessionScoped(t *testing.T) {
	m := newTestManager(t, &fakeCompleter{reply: "ok"})

	first := m.CurrentID()
	_, err := m.Send(context.Background(), "question one")
	require.NoError(t, err)

	second := m.NewChat("Second")
	_, err = m.Send(context.Background(), "question two")
	require.NoError(t, err)

	m.Switch(first)
	m.ClearChat()

	require.Equal(t, 1, m.Get(first).MessageCount(), "cleared session resets to welcome")
	require.Equal(t, model.WelcomeText, m.Get(first).Messages[0].Content)
	require.Equal(t, 3, m.Get(second).MessageCount(), "other sessions are untouched")
}

func TestSessionsOrderedByCreation(t *testing.T) {
	m := newTestManager(t, &fakeCompleter{})
	m.NewChat("B")
	m.NewChat("C")

	sessions := m.Sessions()
	require.Len(t, sessions, 3)
	require.Equal(t, DefaultSessionName, sessions[0].Name)
	require.Equal(t, "B", sessions[1].Name)
	require.Equal(t, "C", sessions[2].Name)
}

// =============================================================================
// SEND PIPELINE
// =============================================================================

func TestSendAppendsBothSides(t *testing.T) {
	fake := &fakeCompleter{reply: "the answer"}
	m := newTestManager(t, fake)

	reply, err := m.Send(context.Background(), "  the question  ")
	require.NoError(t, err)
	require.Equal(t, "the answer", reply)

	msgs := m.Messages()
	require.Len(t, msgs, 3) // welcome, user, assistant
	require.Equal(t, model.RoleUser, msgs[1].Role)
	require.Equal(t, "the question", msgs[1].Content, "input is trimmed before append")
	require.Equal(t, model.RoleAssistant, msgs[2].Role)
	require.Equal(t, "the answer", msgs[2].Content)

	require.Equal(t, []string{"the question"}, fake.received())
	require.False(t, m.IsLoading())
}

func TestSendBlankInputIsNoOp(t *testing.T) {
	fake := &fakeCompleter{reply: "never"}
	m := newTestManager(t, fake)

	reply, err := m.Send(context.Background(), "   \n  ")
	require.NoError(t, err)
	require.Empty(t, reply)
	require.Len(t, m.Messages(), 1, "nothing appended")
	require.Empty(t, fake.received(), "service not called")
}

func TestSendFailureAppendsApology(t *testing.T) {
	fake := &fakeCompleter{err: errors.New("connection refused")}
	m := newTestManager(t, fake)

	reply, err := m.Send(context.Background(), "hello")
	require.NoError(t, err, "service failure is absorbed, not returned")
	require.Equal(t, ApologyText, reply)

	msgs := m.Messages()
	require.Len(t, msgs, 3)
	require.Equal(t, "hello", msgs[1].Content, "user message stays in the log")
	require.Equal(t, ApologyText, msgs[2].Content)

	require.False(t, m.IsLoading(), "awaiting flag clears on failure")

	// The store accepts new sends after a failure.
	fake.mu.Lock()
	fake.err = nil
	fake.reply = "recovered"
	fake.mu.Unlock()
	reply, err = m.Send(context.Background(), "again")
	require.NoError(t, err)
	require.Equal(t, "recovered", reply)
}

func TestSendWhileAwaitingIsRejected(t *testing.T) {
	fake := &fakeCompleter{reply: "slow answer", block: make(chan struct{})}
	m := newTestManager(t, fake)

	done := make(chan struct{})
	go func() {
		defer close(done)
		m.Send(context.Background(), "first")
	}()

	waitFor(t, m.IsLoading)

	_, err := m.Send(context.Background(), "second")
	require.ErrorIs(t, err, ErrAwaitingReply)

	close(fake.block)
	<-done

	require.False(t, m.IsLoading())
	require.Equal(t, []string{"first"}, fake.received(), "rejected send never reaches the service")
}

func TestReplyLandsInOriginatingSession(t *testing.T) {
	fake := &fakeCompleter{reply: "late answer", block: make(chan struct{})}
	m := newTestManager(t, fake)
	origin := m.CurrentID()

	done := make(chan struct{})
	go func() {
		defer close(done)
		m.Send(context.Background(), "question")
	}()

	waitFor(t, m.IsLoading)

	// User moves to a new thread while the reply is outstanding.
	other := m.NewChat("Other")

	close(fake.block)
	<-done

	originMsgs := m.Get(origin).Messages
	require.Len(t, originMsgs, 3)
	require.Equal(t, "late answer", originMsgs[2].Content, "reply belongs to the originating session")

	require.Equal(t, 1, m.Get(other).MessageCount(), "new session only holds its welcome message")
}

func TestReplyToDeletedSessionIsDropped(t *testing.T) {
	fake := &fakeCompleter{reply: "orphan answer", block: make(chan struct{})}
	m := newTestManager(t, fake)
	origin := m.CurrentID()

	done := make(chan struct{})
	go func() {
		defer close(done)
		m.Send(context.Background(), "question")
	}()

	waitFor(t, m.IsLoading)

	m.NewChat("Survivor")
	m.Delete(origin)

	close(fake.block)
	<-done

	require.Nil(t, m.Get(origin))
	require.Equal(t, 1, m.Current().MessageCount(), "orphaned reply must not leak anywhere")
	require.False(t, m.IsLoading())
}

// =============================================================================
// PROCESS LOOKUP
// =============================================================================

func TestLookupProcessSynthesizesQuestion(t *testing.T) {
	fake := &fakeCompleter{reply: "1. open settings"}
	m := newTestManager(t, fake)

	reply, err := m.LookupProcess(context.Background(), "  password_reset  ")
	require.NoError(t, err)
	require.Equal(t, "1. open settings", reply)

	msgs := m.Messages()
	require.Len(t, msgs, 3)
	require.Equal(t, "How to password reset?", msgs[1].Content)
	require.Equal(t, []string{"password_reset"}, fake.received(), "service receives the trimmed process name")
}

func TestLookupProcessNotFound(t *testing.T) {
	fake := &fakeCompleter{err: assistant.ErrServiceFailure}
	m := newTestManager(t, fake)

	reply, err := m.LookupProcess(context.Background(), "unknown_thing")
	require.NoError(t, err)
	require.Equal(t, ProcessNotFoundText, reply)
}

func TestLookupProcessTransportFailure(t *testing.T) {
	fake := &fakeCompleter{err: errors.New("dial tcp: connection refused")}
	m := newTestManager(t, fake)

	reply, err := m.LookupProcess(context.Background(), "anything")
	require.NoError(t, err)
	require.Equal(t, ApologyProcessText, reply)
}

// =============================================================================
// PERSISTENCE
// =============================================================================

func TestStateSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.Open(dir, "test")
	require.NoError(t, err)

	m := NewManager(store, &fakeCompleter{reply: "answer"})
	first := m.CurrentID()
	m.Rename(first, "Work")
	_, err = m.Send(context.Background(), "question")
	require.NoError(t, err)
	second := m.NewChat("Second")
	require.NoError(t, store.Close())

	store2, err := storage.Open(dir, "test")
	require.NoError(t, err)
	defer store2.Close()

	m2 := NewManager(store2, &fakeCompleter{})
	require.Equal(t, 2, m2.Count())
	require.Equal(t, second, m2.CurrentID())
	require.Equal(t, "Work", m2.Get(first).Name)
	require.Equal(t, 3, m2.Get(first).MessageCount())
}

func TestCorruptCollectionResetsInIsolation(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.Open(dir, "test")
	require.NoError(t, err)
	defer store.Close()

	// A valid theme next to a corrupt session collection.
	require.NoError(t, store.Put(storage.KeyTheme, "dark"))
	require.NoError(t, store.PutRaw(storage.KeySessions, []byte("{corrupt")))

	m := NewManager(store, &fakeCompleter{})

	require.Equal(t, 1, m.Count(), "corrupt collection resets to the default")
	require.Equal(t, DefaultSessionName, m.Current().Name)
	require.Equal(t, "dark", m.Theme(), "unrelated structures are untouched")
}

func TestDanglingCurrentIDFallsBack(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.Open(dir, "test")
	require.NoError(t, err)
	defer store.Close()

	coll := model.NewCollection("Saved")
	require.NoError(t, store.Put(storage.KeySessions, coll))
	require.NoError(t, store.Put(storage.KeyCurrentID, "points-nowhere"))

	m := NewManager(store, &fakeCompleter{})
	require.NotNil(t, m.Current(), "a dangling pointer must not break the store")
	require.Equal(t, "Saved", m.Current().Name)
}

// =============================================================================
// EVENTS
// =============================================================================

func TestSubscribeReceivesMutations(t *testing.T) {
	m := newTestManager(t, &fakeCompleter{reply: "ok"})

	var mu sync.Mutex
	var events []EventType
	m.Subscribe(func(ev Event) {
		mu.Lock()
		events = append(events, ev.Type)
		mu.Unlock()
	})

	id := m.NewChat("Observed")
	m.Rename(id, "Watched")
	m.ClearChat()

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []EventType{EventCreated, EventRenamed, EventCleared}, events)
}

func TestThemeRoundTrip(t *testing.T) {
	m := newTestManager(t, &fakeCompleter{})

	require.Equal(t, "light", m.Theme(), "default theme")
	m.SetTheme("dark")
	require.Equal(t, "dark", m.Theme())
}
