// usbai - portable offline AI assistant.
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

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/usbai/internal/cli"
	"github.com/jeranaias/usbai/internal/config"
	"github.com/jeranaias/usbai/internal/engine"
	"github.com/jeranaias/usbai/internal/logging"
	"github.com/jeranaias/usbai/internal/model"
	"github.com/jeranaias/usbai/internal/ollama"
	"github.com/jeranaias/usbai/internal/security"
	"github.com/jeranaias/usbai/internal/storage"
	"github.com/jeranaias/usbai/internal/ui/chat"
	"github.com/jeranaias/usbai/internal/voice"
)

// Version information (set at build time)
var (
	Version   = "1.0.0"
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

	// Commands that need no runtime at all.
	switch cmd {
	case cli.CmdHelp:
		cli.Usage()
		return
	case cli.CmdVersion:
		(&cli.App{}).HandleVersion()
		return
	}

	if err := run(cmd, args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd cli.Command, args cli.Args) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if args.Model != "" {
		cfg.General.Model = args.Model
	}

	baseDir, err := config.BaseDir()
	if err != nil {
		return err
	}
	closeLog, err := logging.Setup(baseDir, args.Verbose)
	if err != nil {
		return err
	}
	defer closeLog()

	// PIN gate before anything touches transcripts or the model.
	if err := security.Authenticate(cfg); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, cleanup, err := buildApp(ctx, cfg, baseDir, cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	// A bare "usbai" follows general.interface. Explicit commands do not.
	if cmd == cli.CmdChat && !args.CommandGiven {
		switch cfg.General.Interface {
		case "gui":
			cmd = cli.CmdGUI
		case "voice":
			cmd = cli.CmdVoice
		}
	}

	switch cmd {
	case cli.CmdChat:
		return app.HandleChat(ctx, args)
	case cli.CmdAsk:
		return app.HandleAsk(ctx, args)
	case cli.CmdGUI:
		return runGUI(ctx, app)
	case cli.CmdVoice:
		return runVoice(ctx, app, args)
	case cli.CmdModels:
		return app.HandleModels(ctx)
	case cli.CmdStatus:
		return app.HandleStatus(ctx)
	case cli.CmdConfig:
		return app.HandleConfig(args)
	case cli.CmdConvert:
		return app.HandleConvert(args)
	case cli.CmdWipe:
		return app.HandleWipe(ctx)
	default:
		cli.Usage()
		return nil
	}
}

// needsBackend reports whether a command talks to the model server.
func needsBackend(cmd cli.Command) bool {
	switch cmd {
	case cli.CmdConfig, cli.CmdConvert, cli.CmdWipe:
		return false
	}
	return true
}

// buildApp wires config, Ollama, engine and transcript store into the
// handler bundle. The returned cleanup closes the store.
func buildApp(ctx context.Context, cfg *config.Config, baseDir string, cmd cli.Command) (*cli.App, func(), error) {
	client := ollama.NewClientWithConfig(&ollama.ClientConfig{BaseURL: cfg.Local.OllamaURL})

	if needsBackend(cmd) && cfg.Local.AutoStart {
		if err := client.EnsureRunning(ctx); err != nil {
			return nil, nil, fmt.Errorf("could not reach Ollama at %s: %w", client.BaseURL(), err)
		}
	}

	profile := model.Resolve(cfg.General.Model)
	backend := ollama.NewBackend(client, profile)
	eng := engine.New(backend, profile, engine.Options{
		MaxRetries:    cfg.Engine.MaxRetries,
		TruncateLimit: cfg.Engine.TruncateLimit,
	})

	app := &cli.App{
		Cfg:     cfg,
		Engine:  eng,
		Client:  client,
		BaseDir: baseDir,
	}
	cleanup := func() {}

	if cfg.History.Enabled {
		store, err := storage.Open(storage.DefaultPath(baseDir))
		if err != nil {
			// Chat still works without transcripts.
			fmt.Fprintf(os.Stderr, "Warning: transcript store unavailable: %v\n", err)
		} else {
			app.Store = store
			cleanup = func() { store.Close() }
		}
	}
	return app, cleanup, nil
}

// runGUI starts the bubbletea chat surface with config hot reload.
func runGUI(ctx context.Context, app *cli.App) error {
	path, err := config.Path()
	if err != nil {
		return err
	}
	watch, stopWatch, err := chat.WatchConfig(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: config watch disabled: %v\n", err)
		watch = nil
		stopWatch = func() {}
	}
	defer stopWatch()

	switcher := func(name string) (chat.Processor, string, error) {
		if err := app.SwitchModel(ctx, name); err != nil {
			return nil, "", err
		}
		return guiProcessor{app}, name, nil
	}

	m := chat.New(guiProcessor{app}, app.Engine.Profile().Name, app.Cfg, switcher, watch)
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

// guiProcessor routes GUI turns through the engine and the transcript
// store. Indirection through App keeps model switches visible.
type guiProcessor struct {
	app *cli.App
}

func (g guiProcessor) Process(ctx context.Context, text string) engine.Result {
	res := g.app.Engine.Process(ctx, text)
	if g.app.Store != nil {
		if err := g.app.Store.Record(ctx, text, res.Answer, res.Kind.String(),
			res.Attempts, res.Cached, res.Duration); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not record transcript: %v\n", err)
		}
	}
	return res
}

// runVoice starts the wake-word loop on the terminal audio stand-ins.
func runVoice(ctx context.Context, app *cli.App, args cli.Args) error {
	if !args.Quiet {
		fmt.Printf("Voice mode. Say %q to wake. Ctrl+C to exit.\n", voice.WakeWord)
	}
	loop := voice.NewLoop(
		voice.NewTerminalRecognizer(os.Stdin),
		voice.NewTerminalSpeaker(os.Stdout),
		app.Engine,
	)
	err := loop.Run(ctx)
	if err == context.Canceled {
		return nil
	}
	return err
}
