// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive chat REPL for parley.
//
// Handles the default command, a line-oriented conversation loop against
// the completion service with slash commands for session management.
//
// Interactive commands:
//   /help              Show available commands
//   /new [name]        Create a session and switch to it
//   /sessions          List sessions
//   /switch <id>       Switch session (unique ID prefixes accepted)
//   /rename <name>     Rename the current session
//   /clear             Reset the current session to its welcome message
//   /export [format]   Export the current session
//   /quit              Exit chat
//   Ctrl+D             Exit chat
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/jeranaias/parley/internal/config"
	"github.com/jeranaias/parley/internal/model"
	"github.com/jeranaias/parley/internal/session"
)

// historyFile stores REPL input history under the parley home directory.
func historyFile() string {
	return filepath.Join(config.BaseDir(), "history")
}

const chatHelpText = `Commands:
  /help              Show this help
  /new [name]        Create a session and switch to it
  /sessions          List sessions
  /switch <id>       Switch session
  /rename <name>     Rename the current session
  /clear             Reset the current session
  /export [format]   Export the current session (pdf, docx, markdown)
  /quit              Exit chat`

// HandleChat runs the interactive conversation loop.
func HandleChat(ctx context.Context, rt *Runtime, args Args) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	loadHistory(line)
	defer saveHistory(line)

	sess := rt.Manager.Current()
	fmt.Printf("parley %s (session %q)\n", Version, sess.Name)
	fmt.Println(dimStyle.Render("Type /help for commands, /quit to exit."))
	printLog(sess.Messages)

	for {
		prompt := promptStyle.Render(rt.Manager.Current().Name + " > ")
		input, err := line.Prompt(prompt)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
				fmt.Println()
				return nil
			}
			return err
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		if strings.HasPrefix(input, "/") {
			if quit := runChatCommand(rt, input); quit {
				return nil
			}
			continue
		}

		reply, err := rt.Manager.Send(ctx, input)
		if err != nil {
			if errors.Is(err, session.ErrAwaitingReply) {
				fmt.Println(infoStyle.Render("Still waiting on the previous reply."))
				continue
			}
			return err
		}
		printReply(reply)
	}
}

// runChatCommand dispatches a slash command. Returns true when the loop
// should exit.
func runChatCommand(rt *Runtime, input string) bool {
	fields := strings.Fields(input)
	cmd := fields[0]
	rest := strings.TrimSpace(strings.TrimPrefix(input, cmd))

	var err error
	switch cmd {
	case "/quit", "/q", "/exit":
		return true

	case "/help", "/h":
		fmt.Println(chatHelpText)

	case "/new":
		err = HandleNew(rt, Args{Name: rest})

	case "/sessions", "/list":
		err = HandleSessions(rt, Args{})

	case "/switch":
		err = HandleSwitch(rt, Args{SessionID: rest})
		if err == nil {
			printLog(rt.Manager.Messages())
		}

	case "/rename":
		err = HandleRename(rt, Args{SessionID: rt.Manager.CurrentID(), Name: rest})

	case "/clear", "/c":
		err = HandleClear(rt, Args{})

	case "/export":
		err = HandleExport(rt, Args{Format: rest})

	default:
		fmt.Println(infoStyle.Render(fmt.Sprintf("Unknown command %s; try /help", cmd)))
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: ")+err.Error())
	}
	return false
}

// printLog replays a session's message log.
func printLog(msgs []model.Message) {
	for _, msg := range msgs {
		style := userStyle
		if msg.Role == model.RoleAssistant {
			style = assistantStyle
		}
		heading := fmt.Sprintf("%s (%s)", msg.Role.DisplayName(), msg.Timestamp)
		fmt.Println(style.Render(heading))
		fmt.Println(msg.Content)
		fmt.Println()
	}
}

// loadHistory restores REPL history. Absence of the file is normal.
func loadHistory(line *liner.State) {
	f, err := os.Open(historyFile())
	if err != nil {
		return
	}
	defer f.Close()
	line.ReadHistory(f)
}

// saveHistory persists REPL history, creating the directory on first run.
func saveHistory(line *liner.State) {
	path := historyFile()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return
	}
	f, err := os.Create(path)
	if err != nil {
		return
	}
	defer f.Close()
	line.WriteHistory(f)
}
