// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session provides the multi-thread chat session store.
//
// A single Manager is constructed at startup and owns all conversation
// state: the session collection, the current-session pointer, and the
// awaiting-reply flag that gates duplicate submissions. Every mutation is
// mirrored into the persisted key/value store before the operation returns,
// so the durable snapshot always equals the in-memory state.
//
// Lifecycle invariants maintained by the Manager:
//   - the collection is never empty; deleting the last session immediately
//     creates a fresh replacement
//   - the current pointer always resolves to an existing session
//   - a session holds at least one message after create or clear
//
// Observers register callbacks via Subscribe and are notified after each
// mutation, outside the Manager's lock.
package session
