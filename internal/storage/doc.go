// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides namespaced key/value persistence for parley.
//
// State is kept in a single SQLite database file holding JSON-encoded
// values, one row per key: a handful of small structures, written
// synchronously after every mutation, read back once at startup.
//
// Failures are isolated per key. A value that fails to decode resets only
// that structure; the remaining keys load normally.
package storage
