// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions and messages.
package model

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// SESSION TYPE
// =============================================================================

// Session holds one named conversation thread and its message log.
// A session owns its log exclusively: messages are only ever appended or
// replaced wholesale by a clear.
type Session struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
}

// NewSession creates a session seeded with the welcome message so the log
// is never empty.
func NewSession(name string) *Session {
	return &Session{
		ID:        uuid.NewString(),
		Name:      name,
		Messages:  []Message{NewWelcomeMessage()},
		CreatedAt: time.Now(),
	}
}

// Append adds a message to the session's log.
func (s *Session) Append(msg Message) {
	s.Messages = append(s.Messages, msg)
}

// Clear replaces the message log with a single fresh welcome message.
func (s *Session) Clear() {
	s.Messages = []Message{NewWelcomeMessage()}
}

// MessageCount returns the number of messages in the session.
func (s *Session) MessageCount() int {
	return len(s.Messages)
}

// Preview returns a short preview from the first user message, or the
// session name when no user message exists yet.
func (s *Session) Preview() string {
	for _, msg := range s.Messages {
		if msg.Role == RoleUser && msg.Content != "" {
			return msg.Preview(80)
		}
	}
	return s.Name
}

// Clone creates a deep copy of the session.
func (s *Session) Clone() *Session {
	clone := &Session{
		ID:        s.ID,
		Name:      s.Name,
		CreatedAt: s.CreatedAt,
		Messages:  make([]Message, len(s.Messages)),
	}
	copy(clone.Messages, s.Messages)
	return clone
}

// =============================================================================
// COLLECTION TYPE
// =============================================================================

// Collection is the unit of persistence: every session keyed by ID plus the
// pointer to the current one. The session store maintains two invariants on
// it at all times: the map is never empty, and CurrentID always refers to an
// existing entry.
type Collection struct {
	Sessions  map[string]*Session `json:"sessions"`
	CurrentID string              `json:"current_id"`
}

// NewCollection creates a collection holding a single freshly seeded
// session, which becomes current.
func NewCollection(name string) *Collection {
	sess := NewSession(name)
	return &Collection{
		Sessions:  map[string]*Session{sess.ID: sess},
		CurrentID: sess.ID,
	}
}

// Current returns the current session. The never-empty invariant means this
// only returns nil on a corrupted collection.
func (c *Collection) Current() *Session {
	return c.Sessions[c.CurrentID]
}

// Get returns the session with the given ID, or nil.
func (c *Collection) Get(id string) *Session {
	return c.Sessions[id]
}

// Len returns the number of sessions.
func (c *Collection) Len() int {
	return len(c.Sessions)
}

// Valid reports whether the collection invariants hold: at least one
// session, and CurrentID resolving to an existing entry.
func (c *Collection) Valid() bool {
	if c == nil || len(c.Sessions) == 0 {
		return false
	}
	_, ok := c.Sessions[c.CurrentID]
	return ok
}
