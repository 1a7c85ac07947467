// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session provides the multi-thread chat session store.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/jeranaias/parley/internal/assistant"
	"github.com/jeranaias/parley/internal/model"
	"github.com/jeranaias/parley/internal/storage"
)

// =============================================================================
// APOLOGY MESSAGES
// =============================================================================

// Transport and service failures are never surfaced to the conversation as
// errors; the assistant "speaks" a fixed apology instead and the underlying
// error goes to the log.
const (
	ApologyText         = "Sorry, I encountered an error. Please try again."
	ApologyProcessText  = "Sorry, I encountered an error while retrieving process instructions."
	ProcessNotFoundText = "Sorry, I couldn't find instructions for that process."
)

// DefaultSessionName is the name of the implicitly created first session.
const DefaultSessionName = "Main Chat"

// ErrAwaitingReply is returned when a send is attempted while a previous
// completion call is still outstanding.
var ErrAwaitingReply = errors.New("a reply is still pending")

// =============================================================================
// COMPLETER INTERFACE
// =============================================================================

// Completer is the consumed contract of the completion service.
type Completer interface {
	Chat(ctx context.Context, message string) (string, error)
	LookupProcess(ctx context.Context, processName string) (string, error)
}

// =============================================================================
// EVENTS
// =============================================================================

// EventType identifies the mutation an observer is being told about.
type EventType string

const (
	EventCreated  EventType = "created"
	EventSwitched EventType = "switched"
	EventRenamed  EventType = "renamed"
	EventDeleted  EventType = "deleted"
	EventCleared  EventType = "cleared"
	EventAppended EventType = "appended"
	EventLoading  EventType = "loading"
)

// Event describes a single store mutation.
type Event struct {
	Type      EventType
	SessionID string
	Loading   bool // set for EventLoading
}

// =============================================================================
// MANAGER
// =============================================================================

// Manager owns the session collection and the current-session pointer.
// It is constructed once at process start; there is no ambient global state.
type Manager struct {
	mu        sync.Mutex
	coll      *model.Collection
	store     *storage.Store
	completer Completer
	awaiting  bool
	observers []func(Event)
}

// NewManager creates the session store, loading persisted state from the
// given key/value store. Deserialization failures are isolated: a structure
// that fails to load is reset to its seeded default and the rest load
// normally.
func NewManager(store *storage.Store, completer Completer) *Manager {
	m := &Manager{
		store:     store,
		completer: completer,
	}
	m.load()
	return m
}

// load restores the three persisted structures, each independently.
func (m *Manager) load() {
	// Session collection first; everything else hangs off it.
	var coll model.Collection
	if err := m.store.Get(storage.KeySessions, &coll); err != nil || !coll.Valid() {
		if err != nil && !errors.Is(err, storage.ErrKeyNotFound) {
			log.Printf("session collection reset: %v", err)
		}
		m.coll = model.NewCollection(DefaultSessionName)
	} else {
		m.coll = &coll
	}

	// Current pointer: only honored when it resolves to a live session.
	var currentID string
	if err := m.store.Get(storage.KeyCurrentID, &currentID); err == nil {
		if m.coll.Get(currentID) != nil {
			m.coll.CurrentID = currentID
		}
	} else if !errors.Is(err, storage.ErrKeyNotFound) {
		log.Printf("current session pointer reset: %v", err)
	}

	// Active log snapshot overrides the collection's copy of the current
	// session, mirroring how the two are persisted separately.
	var messages []model.Message
	if err := m.store.Get(storage.KeyMessages, &messages); err == nil && len(messages) > 0 {
		m.coll.Current().Messages = messages
	} else if err != nil && !errors.Is(err, storage.ErrKeyNotFound) {
		log.Printf("active message log reset: %v", err)
	}
}

// Subscribe registers an observer callback. Callbacks run after the
// mutation completes, outside the Manager's lock.
func (m *Manager) Subscribe(fn func(Event)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, fn)
}

// notify fans an event out to all observers.
func (m *Manager) notify(ev Event) {
	m.mu.Lock()
	observers := make([]func(Event), len(m.observers))
	copy(observers, m.observers)
	m.mu.Unlock()

	for _, fn := range observers {
		fn(ev)
	}
}

// persistLocked writes all three structures synchronously. Callers hold mu.
// Write errors are logged, not propagated: a persistence hiccup must not
// break the in-memory conversation.
func (m *Manager) persistLocked() {
	if err := m.store.Put(storage.KeySessions, m.coll); err != nil {
		log.Printf("persist sessions: %v", err)
	}
	if err := m.store.Put(storage.KeyCurrentID, m.coll.CurrentID); err != nil {
		log.Printf("persist current id: %v", err)
	}
	if err := m.store.Put(storage.KeyMessages, m.coll.Current().Messages); err != nil {
		log.Printf("persist messages: %v", err)
	}
}

// =============================================================================
// SESSION OPERATIONS
// =============================================================================

// NewChat creates a session, makes it current, and persists. When name is
// blank the session gets an ordinal label ("Chat N"). Returns the new
// session's ID.
func (m *Manager) NewChat(name string) string {
	m.mu.Lock()
	name = strings.TrimSpace(name)
	if name == "" {
		name = fmt.Sprintf("Chat %d", m.coll.Len()+1)
	}
	sess := model.NewSession(name)
	m.coll.Sessions[sess.ID] = sess
	m.coll.CurrentID = sess.ID
	m.persistLocked()
	m.mu.Unlock()

	m.notify(Event{Type: EventCreated, SessionID: sess.ID})
	return sess.ID
}

// Switch makes the session with the given ID current. Silent no-op when the
// ID is unknown.
func (m *Manager) Switch(id string) {
	m.mu.Lock()
	if m.coll.Get(id) == nil || id == m.coll.CurrentID {
		m.mu.Unlock()
		return
	}
	m.coll.CurrentID = id
	m.persistLocked()
	m.mu.Unlock()

	m.notify(Event{Type: EventSwitched, SessionID: id})
}

// Rename updates a session's display name. No-op when the ID is unknown or
// the new name is blank after trimming.
func (m *Manager) Rename(id, newName string) {
	m.mu.Lock()
	sess := m.coll.Get(id)
	newName = strings.TrimSpace(newName)
	if sess == nil || newName == "" {
		m.mu.Unlock()
		return
	}
	sess.Name = newName
	m.persistLocked()
	m.mu.Unlock()

	m.notify(Event{Type: EventRenamed, SessionID: id})
}

// Delete removes a session. No-op when the ID is unknown. The collection is
// never left empty: when the deleted session was current, the pointer moves
// to some remaining session, and when none remain a fresh session is
// created in its place.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	if m.coll.Get(id) == nil {
		m.mu.Unlock()
		return
	}
	delete(m.coll.Sessions, id)

	var createdID string
	if m.coll.CurrentID == id {
		if m.coll.Len() > 0 {
			for remaining := range m.coll.Sessions {
				m.coll.CurrentID = remaining
				break
			}
		} else {
			sess := model.NewSession(fmt.Sprintf("Chat %d", m.coll.Len()+1))
			m.coll.Sessions[sess.ID] = sess
			m.coll.CurrentID = sess.ID
			createdID = sess.ID
		}
	}
	m.persistLocked()
	m.mu.Unlock()

	m.notify(Event{Type: EventDeleted, SessionID: id})
	if createdID != "" {
		m.notify(Event{Type: EventCreated, SessionID: createdID})
	}
}

// ClearChat replaces the current session's log with a single fresh welcome
// message. Clear is session-scoped: other sessions are untouched, and the
// collection's copy is updated before the state is persisted.
func (m *Manager) ClearChat() {
	m.mu.Lock()
	sess := m.coll.Current()
	sess.Clear()
	m.persistLocked()
	id := sess.ID
	m.mu.Unlock()

	m.notify(Event{Type: EventCleared, SessionID: id})
}

// AddMessage appends a message to the current session and persists.
// Returns the generated message ID.
func (m *Manager) AddMessage(role model.Role, content string) string {
	m.mu.Lock()
	id := m.coll.CurrentID
	msgID := m.appendLocked(id, role, content)
	m.mu.Unlock()

	m.notify(Event{Type: EventAppended, SessionID: id})
	return msgID
}

// appendLocked appends to the identified session and persists. Callers hold
// mu. Appending to a session that was deleted while a reply was in flight
// is a silent no-op.
func (m *Manager) appendLocked(sessionID string, role model.Role, content string) string {
	sess := m.coll.Get(sessionID)
	if sess == nil {
		return ""
	}
	msg := model.NewMessage(role, content)
	sess.Append(msg)
	m.persistLocked()
	return msg.ID
}

// =============================================================================
// COMPLETION FLOW
// =============================================================================

// Send submits user text to the completion service and appends both sides of
// the exchange to the conversation. On any service failure the assistant
// reply is the fixed apology message and the error is only logged.
//
// The outbound request is tagged with its originating session, and the reply
// is appended to that session even if the user switches threads while the
// call is outstanding.
//
// Returns ErrAwaitingReply when a previous call has not settled yet; the
// awaiting flag is cleared unconditionally when the call completes.
func (m *Manager) Send(ctx context.Context, text string) (string, error) {
	// Trim before the closure captures the text: the service must receive
	// exactly what gets appended to the conversation.
	text = strings.TrimSpace(text)
	return m.complete(ctx, text, func(ctx context.Context) (string, error) {
		return m.completer.Chat(ctx, text)
	}, func(error) string {
		return ApologyText
	})
}

// LookupProcess asks the service for a named process guide. The user-visible
// question is synthesized from the process name, matching the chat flow.
func (m *Manager) LookupProcess(ctx context.Context, processName string) (string, error) {
	processName = strings.TrimSpace(processName)
	question := "How to " + strings.ReplaceAll(processName, "_", " ") + "?"
	return m.complete(ctx, question, func(ctx context.Context) (string, error) {
		return m.completer.LookupProcess(ctx, processName)
	}, func(err error) string {
		// A clean "success: false" means the service looked and found
		// nothing; every other failure shape is a transport problem.
		if errors.Is(err, assistant.ErrServiceFailure) {
			return ProcessNotFoundText
		}
		return ApologyProcessText
	})
}

// complete runs the shared send pipeline: append the user message to the
// originating session, set the awaiting flag for the duration of the call,
// then append the reply (or an apology) to that same session.
func (m *Manager) complete(ctx context.Context, userText string, call func(context.Context) (string, error), apology func(error) string) (string, error) {
	userText = strings.TrimSpace(userText)
	if userText == "" {
		return "", nil
	}

	m.mu.Lock()
	if m.awaiting {
		m.mu.Unlock()
		return "", ErrAwaitingReply
	}
	m.awaiting = true
	originID := m.coll.CurrentID
	m.appendLocked(originID, model.RoleUser, userText)
	m.mu.Unlock()

	m.notify(Event{Type: EventAppended, SessionID: originID})
	m.notify(Event{Type: EventLoading, SessionID: originID, Loading: true})

	// The flag clears no matter how the call ends.
	defer func() {
		m.mu.Lock()
		m.awaiting = false
		m.mu.Unlock()
		m.notify(Event{Type: EventLoading, SessionID: originID, Loading: false})
	}()

	reply, err := call(ctx)
	if err != nil {
		log.Printf("completion failed: %v", err)
		reply = apology(err)
	}

	m.mu.Lock()
	m.appendLocked(originID, model.RoleAssistant, reply)
	m.mu.Unlock()

	m.notify(Event{Type: EventAppended, SessionID: originID})
	return reply, nil
}

// IsLoading reports whether a completion call is outstanding.
func (m *Manager) IsLoading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.awaiting
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Current returns a copy of the current session.
func (m *Manager) Current() *model.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.coll.Current().Clone()
}

// CurrentID returns the current session's ID.
func (m *Manager) CurrentID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.coll.CurrentID
}

// Get returns a copy of the identified session, or nil when unknown.
func (m *Manager) Get(id string) *model.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess := m.coll.Get(id)
	if sess == nil {
		return nil
	}
	return sess.Clone()
}

// Messages returns a copy of the current session's log.
func (m *Manager) Messages() []model.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	msgs := m.coll.Current().Messages
	out := make([]model.Message, len(msgs))
	copy(out, msgs)
	return out
}

// Sessions returns copies of all sessions ordered by creation time.
func (m *Manager) Sessions() []*model.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Session, 0, m.coll.Len())
	for _, sess := range m.coll.Sessions {
		out = append(out, sess.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Count returns the number of sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.coll.Len()
}

// =============================================================================
// THEME PREFERENCE
// =============================================================================

// SetTheme persists the appearance preference. The preference shares the
// storage namespace with conversation state but has no bearing on it.
func (m *Manager) SetTheme(theme string) {
	if err := m.store.Put(storage.KeyTheme, theme); err != nil {
		log.Printf("persist theme: %v", err)
	}
}

// Theme returns the persisted appearance preference, defaulting to "light".
func (m *Manager) Theme() string {
	var theme string
	if err := m.store.Get(storage.KeyTheme, &theme); err != nil || theme == "" {
		return "light"
	}
	return theme
}
