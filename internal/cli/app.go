// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// app.go - command handlers for the usbai CLI.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jeranaias/usbai/internal/config"
	"github.com/jeranaias/usbai/internal/convert"
	"github.com/jeranaias/usbai/internal/engine"
	"github.com/jeranaias/usbai/internal/logging"
	"github.com/jeranaias/usbai/internal/model"
	"github.com/jeranaias/usbai/internal/ollama"
	"github.com/jeranaias/usbai/internal/security"
	"github.com/jeranaias/usbai/internal/storage"
)

// App bundles the wired-up runtime the handlers operate on. main.go
// constructs it once and dispatches.
type App struct {
	Cfg     *config.Config
	Engine  *engine.Engine
	Client  *ollama.Client
	Store   *storage.TranscriptStore // nil when history is disabled
	BaseDir string
}

// record persists one turn when history is enabled.
func (a *App) record(ctx context.Context, question string, res engine.Result) {
	if a.Store == nil {
		return
	}
	if err := a.Store.Record(ctx, question, res.Answer, res.Kind.String(),
		res.Attempts, res.Cached, res.Duration); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not record transcript: %v\n", err)
	}
}

// SwitchModel rebuilds the engine around a different model and persists
// the choice. The response cache starts empty for the new model.
func (a *App) SwitchModel(ctx context.Context, name string) error {
	if !a.Client.ModelExists(ctx, name) {
		return fmt.Errorf("model %q is not installed (try: ollama pull %s)", name, name)
	}

	profile := model.Resolve(name)
	backend := ollama.NewBackend(a.Client, profile)
	a.Engine = engine.New(backend, profile, engine.Options{
		MaxRetries:    a.Cfg.Engine.MaxRetries,
		TruncateLimit: a.Cfg.Engine.TruncateLimit,
	})

	a.Cfg.General.Model = name
	return config.Save(a.Cfg)
}

// HandleAsk answers a single question and exits.
func (a *App) HandleAsk(ctx context.Context, args Args) error {
	question := strings.TrimSpace(args.Query)
	if question == "" {
		return fmt.Errorf("usage: usbai ask \"question\"")
	}

	res := a.Engine.Process(ctx, question)
	a.record(ctx, question, res)

	fmt.Println(Answer(res.Answer))
	if args.Verbose {
		fmt.Println(Dim(fmt.Sprintf("(%s, %d attempt(s), %s)",
			res.Kind, res.Attempts, res.Duration.Round(time.Millisecond))))
	}
	return nil
}

// HandleModels lists models available on the Ollama server.
func (a *App) HandleModels(ctx context.Context) error {
	models, err := a.Client.ListModels(ctx)
	if err != nil {
		if ollama.IsNotRunning(err) {
			return fmt.Errorf("Ollama is not running at %s", a.Client.BaseURL())
		}
		return err
	}

	if len(models) == 0 {
		fmt.Println("No models installed. Pull one with: ollama pull gemma3:1b")
		return nil
	}

	active := a.Engine.Profile().Name
	fmt.Println(Accent("Available models:"))
	for _, m := range models {
		marker := "  "
		if m.Name == active {
			marker = Good("* ")
		}
		fmt.Printf("%s%s  %s\n", marker, m.Name, Dim(fmt.Sprintf("%.1f GB", float64(m.Size)/1e9)))
	}
	return nil
}

// HandleStatus prints engine, cache and server state.
func (a *App) HandleStatus(ctx context.Context) error {
	profile := a.Engine.Profile()

	fmt.Println(Accent("USB-AI status"))
	fmt.Printf("  Model:     %s (%s family, %d token context)\n",
		profile.Name, profile.Family, profile.ContextLength)
	fmt.Printf("  Server:    %s ", a.Client.BaseURL())
	if err := a.Client.CheckRunning(ctx); err != nil {
		fmt.Println(Bad("unreachable"))
	} else {
		fmt.Println(Good("running"))
	}

	stats := a.Engine.CacheStats()
	fmt.Printf("  Cache:     %d entries, %d hits, %d misses\n",
		stats.Entries, stats.Hits, stats.Misses)

	if a.Store != nil {
		fmt.Printf("  Session:   %s\n", a.Store.SessionID())
	}
	fmt.Printf("  PIN:       %v\n", security.PINSet(a.Cfg))
	return nil
}

// HandleConfig implements config show/get/set.
func (a *App) HandleConfig(args Args) error {
	switch args.Subcommand {
	case "", "show":
		fmt.Printf("general.model        = %s\n", a.Cfg.General.Model)
		fmt.Printf("general.interface    = %s\n", a.Cfg.General.Interface)
		fmt.Printf("local.ollama_url     = %s\n", a.Cfg.Local.OllamaURL)
		fmt.Printf("engine.max_retries   = %d\n", a.Cfg.Engine.MaxRetries)
		fmt.Printf("engine.truncate_limit = %d\n", a.Cfg.Engine.TruncateLimit)
		fmt.Printf("ui.theme             = %s\n", a.Cfg.UI.Theme)
		fmt.Printf("ui.markdown          = %v\n", a.Cfg.UI.Markdown)
		fmt.Printf("history.enabled      = %v\n", a.Cfg.History.Enabled)
		return nil

	case "get":
		if args.ConfigKey == "" {
			return fmt.Errorf("usage: usbai config get KEY")
		}
		val, err := configGet(a.Cfg, args.ConfigKey)
		if err != nil {
			return err
		}
		fmt.Println(val)
		return nil

	case "set":
		if args.ConfigKey == "" || args.ConfigVal == "" {
			return fmt.Errorf("usage: usbai config set KEY VALUE")
		}
		if err := configSet(a.Cfg, args.ConfigKey, args.ConfigVal); err != nil {
			return err
		}
		if err := a.Cfg.Validate(); err != nil {
			return fmt.Errorf("invalid value: %w", err)
		}
		if err := config.Save(a.Cfg); err != nil {
			return err
		}
		fmt.Printf("%s = %s\n", args.ConfigKey, args.ConfigVal)
		return nil

	default:
		return fmt.Errorf("unknown config subcommand: %s", args.Subcommand)
	}
}

// configGet reads one settable key.
func configGet(cfg *config.Config, key string) (string, error) {
	switch key {
	case "general.model":
		return cfg.General.Model, nil
	case "general.interface":
		return cfg.General.Interface, nil
	case "local.ollama_url":
		return cfg.Local.OllamaURL, nil
	case "engine.max_retries":
		return strconv.Itoa(cfg.Engine.MaxRetries), nil
	case "engine.truncate_limit":
		return strconv.Itoa(cfg.Engine.TruncateLimit), nil
	case "ui.theme":
		return cfg.UI.Theme, nil
	case "ui.markdown":
		return strconv.FormatBool(cfg.UI.Markdown), nil
	case "history.enabled":
		return strconv.FormatBool(cfg.History.Enabled), nil
	default:
		return "", fmt.Errorf("unknown config key: %s", key)
	}
}

// configSet writes one settable key.
func configSet(cfg *config.Config, key, value string) error {
	switch key {
	case "general.model":
		cfg.General.Model = value
	case "general.interface":
		cfg.General.Interface = value
	case "local.ollama_url":
		cfg.Local.OllamaURL = value
	case "engine.max_retries":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("engine.max_retries must be a number: %w", err)
		}
		cfg.Engine.MaxRetries = n
	case "engine.truncate_limit":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("engine.truncate_limit must be a number: %w", err)
		}
		cfg.Engine.TruncateLimit = n
	case "ui.theme":
		cfg.UI.Theme = value
	case "ui.markdown":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("ui.markdown must be true or false: %w", err)
		}
		cfg.UI.Markdown = b
	case "history.enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("history.enabled must be true or false: %w", err)
		}
		cfg.History.Enabled = b
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

// HandleConvert runs the UAMF converter.
func (a *App) HandleConvert(args Args) error {
	if args.SourcePath == "" || args.ModelName == "" || args.SourceFormat == "" {
		return fmt.Errorf("usage: usbai convert SRC NAME --format {huggingface|pytorch|onnx}")
	}
	format, err := convert.ParseFormat(args.SourceFormat)
	if err != nil {
		return err
	}

	fmt.Printf("Converting %s from %s format...\n", args.ModelName, format)
	conv := convert.NewConverter(a.modelsDir())
	dir, err := conv.Convert(args.SourcePath, args.ModelName, format)
	if err != nil {
		return fmt.Errorf("conversion failed: %w", err)
	}
	fmt.Println(Good("Successfully converted " + args.ModelName + " to UAMF format"))
	fmt.Println(Dim("  " + dir))
	return nil
}

func (a *App) modelsDir() string {
	return filepath.Join(a.BaseDir, "models")
}

// HandleWipe removes logs and transcripts after PIN verification.
func (a *App) HandleWipe(ctx context.Context) error {
	if err := security.Authenticate(a.Cfg); err != nil {
		return err
	}

	if err := logging.Wipe(a.BaseDir); err != nil {
		return err
	}
	if a.Store != nil {
		if err := a.Store.Clear(ctx); err != nil {
			return err
		}
	}
	fmt.Println(Good("Logs and transcripts wiped."))
	return nil
}

// HandleVersion prints build information.
func (a *App) HandleVersion() {
	fmt.Printf("usbai v%s (%s, built %s)\n", Version, GitCommit, BuildDate)
}
