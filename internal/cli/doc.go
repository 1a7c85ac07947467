// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides argument parsing and command handlers for parley.
//
// # Commands
//
// The default command (no arguments) starts the interactive chat REPL.
// Everything else is a one-shot subcommand operating on the persisted
// session store:
//
//   - send: submit one message to the current session
//   - process: look up a named process guide
//   - sessions, new, switch, rename, delete, clear: session management
//   - export: render the current session to pdf, docx, or markdown
//   - config: show or set configuration values
//
// # Usage
//
//	cmd, args := cli.Parse()
//	switch cmd {
//	case cli.CmdChat:
//		err = cli.HandleChat(ctx, rt, args)
//	...
//	}
package cli
