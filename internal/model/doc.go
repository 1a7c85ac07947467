// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions and messages.
//
// # Key Types
//
//   - Role: Message sender enumeration (user, assistant)
//   - Message: A single immutable chat message
//   - Session: A named conversation thread owning its message log
//   - Collection: The full set of sessions plus the current-session pointer
//
// Messages are append-only: once created they are never edited, only
// appended to a session or replaced wholesale when a session is cleared.
package model
