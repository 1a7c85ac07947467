// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// handlers.go - One-shot command handlers for parley.
package cli

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"github.com/jeranaias/parley/internal/config"
	"github.com/jeranaias/parley/internal/export"
	"github.com/jeranaias/parley/internal/model"
	"github.com/jeranaias/parley/internal/session"
)

// Runtime bundles the long-lived components the handlers operate on.
type Runtime struct {
	Config   *config.Config
	Manager  *session.Manager
	Exporter *export.Dispatcher
}

// =============================================================================
// CONVERSATION COMMANDS
// =============================================================================

// HandleSend submits one message to the current session and prints the reply.
func HandleSend(ctx context.Context, rt *Runtime, args Args) error {
	text := strings.TrimSpace(args.Query)
	if text == "" {
		return fmt.Errorf("nothing to send; usage: parley send \"message\"")
	}

	reply, err := rt.Manager.Send(ctx, text)
	if err != nil {
		return err
	}
	printReply(reply)
	return nil
}

// HandleProcess looks up a named process guide and prints it.
func HandleProcess(ctx context.Context, rt *Runtime, args Args) error {
	name := strings.TrimSpace(args.Query)
	if name == "" {
		return fmt.Errorf("missing process name; usage: parley process <name>")
	}

	reply, err := rt.Manager.LookupProcess(ctx, name)
	if err != nil {
		return err
	}
	printReply(reply)
	return nil
}

func printReply(reply string) {
	fmt.Println(assistantStyle.Render(model.RoleAssistant.DisplayName() + ":"))
	fmt.Println(reply)
}

// =============================================================================
// SESSION COMMANDS
// =============================================================================

// HandleSessions lists all sessions, marking the current one.
func HandleSessions(rt *Runtime, args Args) error {
	currentID := rt.Manager.CurrentID()
	for _, sess := range rt.Manager.Sessions() {
		marker := "  "
		name := sess.Name
		if sess.ID == currentID {
			marker = currentStyle.Render("* ")
			name = currentStyle.Render(name)
		}
		meta := dimStyle.Render(fmt.Sprintf("%s  %d messages", sess.ID, sess.MessageCount()))
		fmt.Printf("%s%s\n    %s\n    %s\n", marker, name, meta, dimStyle.Render(sess.Preview()))
	}
	return nil
}

// HandleNew creates a session and makes it current.
func HandleNew(rt *Runtime, args Args) error {
	id := rt.Manager.NewChat(args.Name)
	sess := rt.Manager.Get(id)
	fmt.Printf("Created session %q (%s)\n", sess.Name, dimStyle.Render(id))
	return nil
}

// HandleSwitch makes another session current. Session IDs may be given as a
// unique prefix.
func HandleSwitch(rt *Runtime, args Args) error {
	id, err := resolveSessionID(rt, args.SessionID)
	if err != nil {
		return err
	}
	rt.Manager.Switch(id)
	fmt.Printf("Switched to %q\n", rt.Manager.Current().Name)
	return nil
}

// HandleRename renames a session.
func HandleRename(rt *Runtime, args Args) error {
	if strings.TrimSpace(args.Name) == "" {
		return fmt.Errorf("missing new name; usage: parley rename <id> <name>")
	}
	id, err := resolveSessionID(rt, args.SessionID)
	if err != nil {
		return err
	}
	rt.Manager.Rename(id, args.Name)
	fmt.Printf("Renamed session to %q\n", strings.TrimSpace(args.Name))
	return nil
}

// HandleDelete removes a session. The store guarantees at least one session
// remains afterward.
func HandleDelete(rt *Runtime, args Args) error {
	id, err := resolveSessionID(rt, args.SessionID)
	if err != nil {
		return err
	}
	name := rt.Manager.Get(id).Name
	rt.Manager.Delete(id)
	fmt.Printf("Deleted session %q; current is now %q\n", name, rt.Manager.Current().Name)
	return nil
}

// HandleClear resets the current session to a single welcome message.
func HandleClear(rt *Runtime, args Args) error {
	rt.Manager.ClearChat()
	fmt.Printf("Cleared session %q\n", rt.Manager.Current().Name)
	return nil
}

// resolveSessionID matches full IDs first, then unique prefixes.
func resolveSessionID(rt *Runtime, input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("missing session id")
	}
	if rt.Manager.Get(input) != nil {
		return input, nil
	}

	var match string
	for _, sess := range rt.Manager.Sessions() {
		if strings.HasPrefix(sess.ID, input) {
			if match != "" {
				return "", fmt.Errorf("session id prefix %q is ambiguous", input)
			}
			match = sess.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("no session matches %q", input)
	}
	return match, nil
}

// =============================================================================
// EXPORT COMMAND
// =============================================================================

// HandleExport renders the current session and writes the artifact.
func HandleExport(rt *Runtime, args Args) error {
	formatInput := args.Format
	if formatInput == "" {
		formatInput = rt.Config.Export.DefaultFormat
	}
	outDir := args.Output
	if outDir == "" {
		outDir = rt.Config.Export.OutputDir
	}

	artifact, err := rt.Exporter.Export(rt.Manager.Current(), export.ParseFormat(formatInput))
	if err != nil {
		return err
	}
	if artifact.FellBack {
		fmt.Println(infoStyle.Render(artifact.Warning))
	}

	path, err := export.WriteArtifact(artifact, outDir)
	if err != nil {
		return err
	}
	fmt.Printf("Exported to %s\n", path)
	return nil
}

// =============================================================================
// CONFIG COMMAND
// =============================================================================

// HandleConfig shows or sets configuration values.
func HandleConfig(rt *Runtime, args Args) error {
	switch args.Subcommand {
	case "", "show":
		return showConfig(rt.Config)
	case "set":
		return setConfig(rt, args.ConfigKey, args.ConfigVal)
	case "path":
		fmt.Println(config.Path())
		return nil
	default:
		return fmt.Errorf("unknown config subcommand %q; try show, set, or path", args.Subcommand)
	}
}

func showConfig(cfg *config.Config) error {
	fmt.Printf("config file:            %s\n", config.Path())
	fmt.Printf("service.base_url:       %s\n", cfg.Service.BaseURL)
	fmt.Printf("service.timeout_seconds: %d\n", cfg.Service.TimeoutSeconds)
	fmt.Printf("storage.dir:            %s\n", cfg.Storage.Dir)
	fmt.Printf("export.output_dir:      %s\n", cfg.Export.OutputDir)
	fmt.Printf("export.default_format:  %s\n", cfg.Export.DefaultFormat)
	fmt.Printf("ui.theme:               %s\n", cfg.UI.Theme)
	fmt.Printf("logging.file:           %s\n", cfg.Logging.File)
	return nil
}

func setConfig(rt *Runtime, key, val string) error {
	if key == "" || val == "" {
		return fmt.Errorf("usage: parley config set <key> <value>")
	}

	cfg := rt.Config
	switch key {
	case "service.base_url":
		cfg.Service.BaseURL = val
	case "service.timeout_seconds":
		n, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("service.timeout_seconds: %w", err)
		}
		cfg.Service.TimeoutSeconds = n
	case "export.output_dir":
		cfg.Export.OutputDir = val
	case "export.default_format":
		cfg.Export.DefaultFormat = val
	case "ui.theme":
		cfg.UI.Theme = val
		rt.Manager.SetTheme(val)
	default:
		return fmt.Errorf("unknown config key %q", key)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.Save(); err != nil {
		return err
	}
	fmt.Printf("Set %s = %s\n", key, val)
	return nil
}

// =============================================================================
// VERSION COMMAND
// =============================================================================

// HandleVersion prints version information.
func HandleVersion() {
	fmt.Printf("parley %s\n", Version)
	fmt.Printf("  commit: %s\n", GitCommit)
	fmt.Printf("  built:  %s\n", BuildDate)
	fmt.Printf("  go:     %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
