// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing for parley.
package cli

import (
	"fmt"
	"os"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdChat Command = iota
	CmdSend
	CmdProcess
	CmdSessions
	CmdNew
	CmdSwitch
	CmdRename
	CmdDelete
	CmdClear
	CmdExport
	CmdConfig
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Query is the message text for send, or the process name for process.
	Query string

	// SessionID targets a session for switch, rename, and delete.
	SessionID string

	// Name is the session name for new and rename.
	Name string

	// Format is the export format: pdf, docx, or markdown.
	Format string

	// Output is the export output directory.
	Output string

	// ConfigKey and ConfigVal drive config get/set.
	ConfigKey string
	ConfigVal string

	// Subcommand holds the first positional arg for commands with verbs.
	Subcommand string

	// Raw holds the remaining arguments after flag parsing.
	Raw []string
}

const usageText = `parley - conversational assistant for the terminal

Parley keeps multiple named chat sessions, talks to a completion
service, and exports conversations as PDF, DOCX, or Markdown.

Usage:
  parley                         Start interactive chat (default)
  parley send "message"          Send one message to the current session
  parley process <name>          Look up a named process guide
  parley sessions                List sessions
  parley new [name]              Create a session and make it current
  parley switch <id>             Make a session current
  parley rename <id> <name>      Rename a session
  parley delete <id>             Delete a session
  parley clear                   Reset the current session to its welcome message
  parley export [--format F]     Export the current session
    --format pdf|docx|markdown   Export format (default from config)
    --output DIR                 Output directory (default from config)
  parley config [show|set K V]   Configuration
  parley version                 Show version
  parley help                    Show this help

Interactive commands (during chat):
  /help            Show available commands
  /new [name]      Create a session
  /sessions        List sessions
  /switch <id>     Switch session
  /rename <name>   Rename the current session
  /clear           Reset the current session
  /export [format] Export the current session
  /quit            Exit chat
`

// PrintUsage writes the usage text to stdout.
func PrintUsage() {
	fmt.Print(usageText)
}

// Parse reads os.Args and returns the command to run plus its arguments.
func Parse() (Command, Args) {
	args := os.Args[1:]
	var parsed Args

	// No arguments means interactive chat.
	if len(args) == 0 {
		return CmdChat, parsed
	}

	cmd := strings.ToLower(args[0])
	remaining := args[1:]
	parsed.Raw = remaining

	switch cmd {
	case "chat":
		return CmdChat, parsed

	case "send", "ask":
		parsed.Query = strings.Join(remaining, " ")
		return CmdSend, parsed

	case "process":
		if len(remaining) > 0 {
			parsed.Query = remaining[0]
		}
		return CmdProcess, parsed

	case "sessions", "session", "list":
		if len(remaining) > 0 {
			parsed.Subcommand = remaining[0]
		}
		return CmdSessions, parsed

	case "new":
		parsed.Name = strings.Join(remaining, " ")
		return CmdNew, parsed

	case "switch":
		if len(remaining) > 0 {
			parsed.SessionID = remaining[0]
		}
		return CmdSwitch, parsed

	case "rename":
		if len(remaining) > 0 {
			parsed.SessionID = remaining[0]
		}
		if len(remaining) > 1 {
			parsed.Name = strings.Join(remaining[1:], " ")
		}
		return CmdRename, parsed

	case "delete":
		if len(remaining) > 0 {
			parsed.SessionID = remaining[0]
		}
		return CmdDelete, parsed

	case "clear":
		return CmdClear, parsed

	case "export":
		parseExportArgs(&parsed, remaining)
		return CmdExport, parsed

	case "config":
		parseConfigArgs(&parsed, remaining)
		return CmdConfig, parsed

	case "version", "-v", "--version":
		return CmdVersion, parsed

	case "help", "-h", "--help":
		return CmdHelp, parsed

	default:
		// Unrecognized first argument: treat it as a message, matching
		// the send command. "parley how do I ..." just works.
		parsed.Query = strings.Join(args, " ")
		return CmdSend, parsed
	}
}

// parseExportArgs handles export flags.
func parseExportArgs(parsed *Args, args []string) {
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--format", "-f":
			if i+1 < len(args) {
				i++
				parsed.Format = args[i]
			}
		case "--output", "-o":
			if i+1 < len(args) {
				i++
				parsed.Output = args[i]
			}
		default:
			// A bare positional is shorthand for the format.
			if parsed.Format == "" && !strings.HasPrefix(args[i], "-") {
				parsed.Format = args[i]
			}
		}
	}
}

// parseConfigArgs handles config subcommands: show (default) and set.
func parseConfigArgs(parsed *Args, args []string) {
	if len(args) == 0 {
		parsed.Subcommand = "show"
		return
	}
	parsed.Subcommand = strings.ToLower(args[0])
	if parsed.Subcommand == "set" {
		if len(args) > 1 {
			parsed.ConfigKey = args[1]
		}
		if len(args) > 2 {
			parsed.ConfigVal = args[2]
		}
	}
}
