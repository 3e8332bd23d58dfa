// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// text.go - plain text install mode for terminals without TUI support.
package main

import (
	"bufio"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/jeranaias/usbai/internal/config"
	"github.com/jeranaias/usbai/internal/security"
)

func runTextInstaller() error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println()
	fmt.Println("================================================================")
	fmt.Println("                       USB-AI INSTALLER")
	fmt.Println("                Your AI assistant, on a stick")
	fmt.Println("================================================================")
	fmt.Println()
	fmt.Println("This installer will:")
	fmt.Println("  [1] Check your system")
	fmt.Println("  [2] Install the usbai binary")
	fmt.Println("  [3] Create a default configuration")
	fmt.Println("  [4] Optionally set a PIN")
	fmt.Println()
	fmt.Print("Press Enter to continue (or 'q' to quit): ")
	if line, _ := reader.ReadString('\n'); strings.TrimSpace(line) == "q" {
		fmt.Println("Installation cancelled.")
		return nil
	}

	fmt.Println()
	fmt.Printf("  [ok] Operating system: %s/%s\n", runtime.GOOS, runtime.GOARCH)

	installed, running := ollamaState()
	switch {
	case !installed:
		fmt.Println("  [!!] Ollama: not installed")
		fmt.Println("       -> Visit https://ollama.ai, then: ollama pull gemma3:1b")
	case !running:
		fmt.Println("  [!!] Ollama: installed but not running")
		fmt.Println("       -> Run: ollama serve")
	default:
		fmt.Println("  [ok] Ollama: running")
	}

	installedTo, err := installBinary()
	if err != nil {
		return err
	}
	fmt.Printf("  [ok] Installed binary: %s\n", installedTo)

	configPath, created, err := ensureConfig()
	if err != nil {
		return err
	}
	if created {
		fmt.Printf("  [ok] Created config: %s\n", configPath)
	} else {
		fmt.Printf("  [!!] Config already exists: %s\n", configPath)
	}

	if err := maybeSetPIN(reader, configPath); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("Installation complete.")
	if hint := pathHint(installedTo); hint != "" {
		fmt.Println(hint)
	}
	fmt.Println()
	fmt.Println("Start with: usbai")
	return nil
}

// maybeSetPIN offers PIN protection for the config and transcripts.
func maybeSetPIN(reader *bufio.Reader, configPath string) error {
	fmt.Println()
	fmt.Print("Protect usbai with a PIN? [y/N]: ")
	line, _ := reader.ReadString('\n')
	if !strings.EqualFold(strings.TrimSpace(line), "y") {
		return nil
	}

	cfg, err := config.LoadFromPath(configPath)
	if err != nil {
		return err
	}

	pin, err := security.ReadPIN("Choose a PIN (min 4 digits): ")
	if err != nil {
		return err
	}
	confirm, err := security.ReadPIN("Confirm PIN: ")
	if err != nil {
		return err
	}
	if pin != confirm {
		fmt.Println("PINs do not match; skipping PIN setup.")
		return nil
	}
	if err := security.SetPIN(cfg, pin); err != nil {
		return err
	}
	if err := config.SaveTOML(cfg, configPath); err != nil {
		return err
	}
	fmt.Println("PIN set.")
	return nil
}
