// Copyright 2026 The Keyfob Authors
// SPDX-License-Identifier: Apache-2.0

// keyfob is a terminal client for passwordless email sign-in. It asks
// the auth service to email a one-time code, collects the code digit
// by digit, and keeps the resulting session across runs in the state
// directory.
//
// Configuration comes from a YAML file (--config, or the KEYFOB_CONFIG
// environment variable); with neither, built-in defaults point at a
// local service. --server and --state-dir override the loaded values.
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/keyfob-foundation/keyfob/authclient"
	"github.com/keyfob-foundation/keyfob/config"
	"github.com/keyfob-foundation/keyfob/lib/version"
	"github.com/keyfob-foundation/keyfob/session"
	"github.com/keyfob-foundation/keyfob/ui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath string
	var serverURL string
	var stateDir string
	var logOutput string

	flagSet := pflag.NewFlagSet("keyfob", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to YAML config file (default: $KEYFOB_CONFIG)")
	flagSet.StringVar(&serverURL, "server", "", "auth service origin (overrides config)")
	flagSet.StringVar(&stateDir, "state-dir", "", "session state directory (overrides config)")
	flagSet.StringVar(&logOutput, "log-output", "", "append JSON log records to this file")
	flagSet.BoolP("help", "h", false, "show help")

	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Printf("keyfob %s\n", version.Full())
		return nil
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}
	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}

	cfg, err := loadConfig(configPath, serverURL, stateDir)
	if err != nil {
		return err
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("keyfob needs an interactive terminal")
	}

	logger, closeLogger, err := newLogger(logOutput)
	if err != nil {
		return err
	}
	defer closeLogger()

	client, err := authclient.NewClient(authclient.ClientConfig{
		BaseURL:    cfg.ServerURL,
		HTTPClient: &http.Client{Timeout: cfg.RequestTimeout()},
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	store, err := session.New(session.Config{
		Client:   client,
		StateDir: cfg.StateDir,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	program := tea.NewProgram(ui.NewApp(store, cfg, nil), tea.WithAltScreen())

	// A 401 on any call drops the local credentials and steers the UI
	// back to sign-in, wherever it currently is.
	client.SetOnUnauthorized(func() {
		store.DropCredentials()
		program.Send(ui.UnauthorizedMsg{})
	})

	_, err = program.Run()
	return err
}

func loadConfig(configPath, serverURL, stateDir string) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if serverURL != "" {
		cfg.ServerURL = serverURL
	}
	if stateDir != "" {
		cfg.StateDir = stateDir
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the process logger. The TUI owns stdout, so records
// go to stderr (warnings and up), or as JSON to --log-output when
// given.
func newLogger(logOutput string) (*slog.Logger, func(), error) {
	if logOutput == "" {
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})
		return slog.New(handler), func() {}, nil
	}

	file, err := os.OpenFile(logOutput, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	handler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(handler), func() { file.Close() }, nil
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `keyfob — sign in with a one-time code sent to your email.

keyfob opens a terminal UI: enter your email address, the service
emails you a short code, type (or paste) the code, and you are signed
in. The session persists in the state directory until it expires or
you log out.

Usage:
  keyfob [flags]

Flags:
%s
Keys:
  enter      submit the email address / the code
  esc        back to the email form
  ctrl+r     resend the code (verify) / refresh the session (home)
  ctrl+l     log out
  ctrl+c     quit
`, flagSet.FlagUsages())
}
