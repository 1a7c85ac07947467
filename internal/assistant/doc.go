// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package assistant provides the client for the completion service.
//
// The service exposes two JSON-over-HTTP endpoints: POST /chat for free-form
// questions and POST /process for looking up a named process guide. Both
// return {"success": bool, "response": string}.
//
// Calls are single shot: there is no retry and no cancellation beyond the
// caller's context. Any failure shape (transport error, non-2xx status,
// malformed body, success=false) surfaces as an error; the session layer
// maps all of them to the same apology message.
package assistant
