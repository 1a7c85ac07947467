// parley - conversational assistant for the terminal.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jeranaias/parley/internal/assistant"
	"github.com/jeranaias/parley/internal/cli"
	"github.com/jeranaias/parley/internal/config"
	"github.com/jeranaias/parley/internal/export"
	"github.com/jeranaias/parley/internal/logging"
	"github.com/jeranaias/parley/internal/session"
	"github.com/jeranaias/parley/internal/storage"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	// Help and version need no runtime at all.
	switch cmd {
	case cli.CmdHelp:
		cli.PrintUsage()
		return
	case cli.CmdVersion:
		cli.HandleVersion()
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logging.Setup(cfg.Logging)

	store, err := storage.Open(cfg.Storage.Dir, "parley")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	completer := assistant.NewClient(cfg.Service.BaseURL).
		WithTimeout(cfg.Service.Timeout())

	rt := &cli.Runtime{
		Config:   cfg,
		Manager:  session.NewManager(store, completer),
		Exporter: export.NewDispatcher(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case cli.CmdChat:
		err = cli.HandleChat(ctx, rt, args)
	case cli.CmdSend:
		err = cli.HandleSend(ctx, rt, args)
	case cli.CmdProcess:
		err = cli.HandleProcess(ctx, rt, args)
	case cli.CmdSessions:
		err = cli.HandleSessions(rt, args)
	case cli.CmdNew:
		err = cli.HandleNew(rt, args)
	case cli.CmdSwitch:
		err = cli.HandleSwitch(rt, args)
	case cli.CmdRename:
		err = cli.HandleRename(rt, args)
	case cli.CmdDelete:
		err = cli.HandleDelete(rt, args)
	case cli.CmdClear:
		err = cli.HandleClear(rt, args)
	case cli.CmdExport:
		err = cli.HandleExport(rt, args)
	case cli.CmdConfig:
		err = cli.HandleConfig(rt, args)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
