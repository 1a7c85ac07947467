// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides namespaced key/value persistence for parley.
package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrKeyNotFound is returned when a key has never been written.
	ErrKeyNotFound = errors.New("key not found")

	// ErrDecode is returned when a stored value cannot be decoded into the
	// target structure. Callers treat this as "corrupt state, reset this
	// structure" without touching any other key.
	ErrDecode = errors.New("stored value could not be decoded")
)

// =============================================================================
// WELL-KNOWN KEYS
// =============================================================================

// Keys of the persisted structures. The three chat structures are written
// independently so that corruption of one never takes down the others.
const (
	KeyMessages  = "chat-messages"   // active message log snapshot
	KeySessions  = "chat-sessions"   // full session collection
	KeyCurrentID = "current-chat-id" // current session pointer
	KeyTheme     = "theme"           // appearance preference
)

// =============================================================================
// STORE
// =============================================================================

// Store is a namespaced key/value store backed by SQLite.
type Store struct {
	db        *sql.DB
	namespace string
}

// schema is created on open; the table is shared by every namespace.
const schema = `
CREATE TABLE IF NOT EXISTS kv (
	ns         TEXT NOT NULL,
	key        TEXT NOT NULL,
	value      BLOB NOT NULL,
	updated_at TEXT NOT NULL,
	PRIMARY KEY (ns, key)
);
`

// Open opens (creating if necessary) the state database at dir/state.db.
// All keys read and written through the returned store are scoped to the
// given namespace.
func Open(dir, namespace string) (*Store, error) {
	if namespace == "" {
		return nil, fmt.Errorf("namespace must not be empty")
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "state.db"))
	if err != nil {
		return nil, fmt.Errorf("open state database: %w", err)
	}

	// Single logical writer; more connections just invite lock contention.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return &Store{db: db, namespace: namespace}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Namespace returns the namespace this store is scoped to.
func (s *Store) Namespace() string {
	return s.namespace
}

// =============================================================================
// READ / WRITE
// =============================================================================

// Put serializes v as JSON and writes it under key. The write is synchronous:
// when Put returns nil the value is durable.
func (s *Store) Put(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}

	_, err = s.db.Exec(
		`INSERT INTO kv (ns, key, value, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (ns, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		s.namespace, key, data, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("write %q: %w", key, err)
	}
	return nil
}

// Get reads the value stored under key into v. Returns ErrKeyNotFound when
// the key has never been written and ErrDecode when the stored bytes do not
// decode into v.
func (s *Store) Get(key string, v any) error {
	var data []byte
	err := s.db.QueryRow(
		`SELECT value FROM kv WHERE ns = ? AND key = ?`,
		s.namespace, key,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	if err != nil {
		return fmt.Errorf("read %q: %w", key, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrDecode, key, err)
	}
	return nil
}

// Delete removes a key. Deleting an absent key is not an error.
func (s *Store) Delete(key string) error {
	_, err := s.db.Exec(
		`DELETE FROM kv WHERE ns = ? AND key = ?`,
		s.namespace, key,
	)
	if err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

// PutRaw writes raw bytes under key without JSON encoding. Used by tests to
// simulate corrupt persisted state.
func (s *Store) PutRaw(key string, data []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO kv (ns, key, value, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (ns, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		s.namespace, key, data, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("write %q: %w", key, err)
	}
	return nil
}
