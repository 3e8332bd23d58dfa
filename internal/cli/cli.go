// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - command parsing for usbai.
package cli

import (
	"fmt"
	"os"
	"strings"
)

// Version information (can be overridden at build time).
var (
	Version   = "1.0.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdChat Command = iota // interactive REPL (default)
	CmdAsk
	CmdGUI
	CmdVoice
	CmdModels
	CmdStatus
	CmdConfig
	CmdConvert
	CmdWipe
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Model   string
	Quiet   bool
	Verbose bool

	// Command-specific
	Query      string
	Subcommand string
	ConfigKey  string
	ConfigVal  string

	// Convert
	SourcePath   string
	ModelName    string
	SourceFormat string

	// Raw args remaining after flag parsing
	Raw []string

	// CommandGiven is false when no command token was present and chat
	// was chosen by default. The surface from general.interface applies
	// only in that case.
	CommandGiven bool
}

const usageText = `usbai - portable offline AI assistant

USB-AI answers questions with a local language model. Everything runs
on-device: no network beyond the local Ollama server, no telemetry.

Usage:
  usbai                       Interactive chat (default)
  usbai ask "question"        Ask a single question
  usbai gui                   Graphical chat surface
  usbai voice                 Wake-word voice loop ("hey ai")
  usbai models                List models available in Ollama
  usbai status                Show engine and server status
  usbai config [show|get|set] Configuration
  usbai convert SRC NAME --format FMT
                              Convert a model to UAMF format
  usbai wipe                  Wipe logs and transcripts (PIN-gated)
  usbai version               Show version
  usbai help                  Show this help

Global flags:
  -m, --model NAME   Use a specific model (overrides config)
  -q, --quiet        Minimal output
  -v, --verbose      Echo logs to stderr

Config keys:
  general.model, general.interface, local.ollama_url,
  engine.max_retries, ui.theme

Examples:
  usbai ask "What is the capital of France?"
  usbai ask "2+2"
  usbai --model tinyllama
  usbai config set general.model phi-2
  usbai convert ./model.safetensors my-model --format huggingface
`

// Usage prints the help text.
func Usage() {
	fmt.Fprint(os.Stdout, usageText)
}

// Parse reads os.Args and returns the command to run.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses an argument list. Split out for tests.
func ParseArgs(argv []string) (Command, Args) {
	remaining, args := parseGlobalFlags(argv)

	if len(remaining) == 0 {
		return CmdChat, args
	}

	first := remaining[0]
	cmd := strings.ToLower(first)
	remaining = remaining[1:]
	args.Raw = remaining
	args.CommandGiven = true

	switch cmd {
	case "chat":
		return CmdChat, args

	case "ask":
		args.Query = strings.Join(remaining, " ")
		return CmdAsk, args

	case "gui":
		return CmdGUI, args

	case "voice":
		return CmdVoice, args

	case "models", "model":
		return CmdModels, args

	case "status", "s":
		return CmdStatus, args

	case "config":
		parseConfigArgs(&args, remaining)
		return CmdConfig, args

	case "convert":
		parseConvertArgs(&args, remaining)
		return CmdConvert, args

	case "wipe":
		return CmdWipe, args

	case "version", "-V", "--version":
		return CmdVersion, args

	case "help", "-h", "--help":
		return CmdHelp, args

	default:
		// Bare text is treated as a question, matching the original
		// launcher behavior.
		args.CommandGiven = false
		args.Query = strings.Join(append([]string{first}, remaining...), " ")
		return CmdAsk, args
	}
}

// parseGlobalFlags strips global flags from anywhere in the arg list.
func parseGlobalFlags(argv []string) ([]string, Args) {
	var args Args
	var remaining []string

	for i := 0; i < len(argv); i++ {
		switch argv[i] {
		case "-m", "--model":
			if i+1 < len(argv) {
				i++
				args.Model = argv[i]
			}
		case "-q", "--quiet":
			args.Quiet = true
		case "-v", "--verbose":
			args.Verbose = true
		default:
			remaining = append(remaining, argv[i])
		}
	}
	return remaining, args
}

// parseConfigArgs handles: config [show] | config get KEY | config set KEY VALUE
func parseConfigArgs(args *Args, remaining []string) {
	if len(remaining) == 0 {
		args.Subcommand = "show"
		return
	}
	args.Subcommand = strings.ToLower(remaining[0])
	if len(remaining) > 1 {
		args.ConfigKey = remaining[1]
	}
	if len(remaining) > 2 {
		args.ConfigVal = strings.Join(remaining[2:], " ")
	}
}

// parseConvertArgs handles: convert SRC NAME --format FMT
func parseConvertArgs(args *Args, remaining []string) {
	var positional []string
	for i := 0; i < len(remaining); i++ {
		switch remaining[i] {
		case "--format", "-f":
			if i+1 < len(remaining) {
				i++
				args.SourceFormat = remaining[i]
			}
		default:
			positional = append(positional, remaining[i])
		}
	}
	if len(positional) > 0 {
		args.SourcePath = positional[0]
	}
	if len(positional) > 1 {
		args.ModelName = positional[1]
	}
}
