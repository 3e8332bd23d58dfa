// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package main provides the usbai installer, a guided setup for the
// portable assistant: system checks, binary placement, a default
// configuration and an optional PIN.
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

const version = "1.0.0"

func main() {
	for _, arg := range os.Args[1:] {
		switch arg {
		case "--text", "-t", "--simple":
			if err := runTextInstaller(); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		case "--uninstall":
			if err := runUninstall(); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		case "--help", "-h":
			printHelp()
			return
		case "--version", "-v":
			fmt.Printf("usbai installer v%s\n", version)
			return
		}
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Println("The usbai installer requires an interactive terminal.")
		fmt.Println("Run with --text for a simple text-based install.")
		os.Exit(1)
	}

	// Mouse capture stays off so terminal text selection keeps working.
	p := tea.NewProgram(NewInstaller(), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running installer: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println(`usbai installer v` + version + `

Usage: usbai-installer [OPTIONS]

Options:
  --text, -t     Run in text mode (copy/paste friendly)
  --uninstall    Remove the installed binary
  --help, -h     Show this help
  --version, -v  Show version

The default mode is an interactive TUI installer. Configuration and
transcripts live under ~/.usbai (or $USBAI_HOME) either way.`)
}
