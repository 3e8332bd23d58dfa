// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// terminal.go - TTY detection and colored output for the usbai CLI.
package cli

import (
	"os"
	"sync"

	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// IsTTY returns true if stdin is a terminal.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// IsStdoutTTY returns true if stdout is a terminal.
func IsStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

const (
	// DefaultTerminalWidth is the fallback when detection fails.
	DefaultTerminalWidth = 80
	// MinTerminalWidth is the floor used for wrapping.
	MinTerminalWidth = 40
)

// TerminalWidth returns the current terminal width.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return DefaultTerminalWidth
	}
	if width < MinTerminalWidth {
		return MinTerminalWidth
	}
	return width
}

var (
	outputOnce sync.Once
	output     *termenv.Output
)

// colorOutput returns the shared termenv output, honoring NO_COLOR and
// non-TTY stdout.
func colorOutput() *termenv.Output {
	outputOnce.Do(func() {
		if os.Getenv("NO_COLOR") != "" || !IsStdoutTTY() {
			output = termenv.NewOutput(os.Stdout, termenv.WithProfile(termenv.Ascii))
			return
		}
		output = termenv.NewOutput(os.Stdout)
	})
	return output
}

// Colors used by the CLI surfaces.
const (
	colorCyan   = "#22D3EE"
	colorPurple = "#A78BFA"
	colorGreen  = "#34D399"
	colorRed    = "#FB7185"
	colorGray   = "#9399B2"
)

// Accent renders brand-colored text.
func Accent(s string) string {
	return colorOutput().String(s).Foreground(colorOutput().Color(colorCyan)).Bold().String()
}

// Answer renders assistant output.
func Answer(s string) string {
	return colorOutput().String(s).Foreground(colorOutput().Color(colorPurple)).String()
}

// Good renders success text.
func Good(s string) string {
	return colorOutput().String(s).Foreground(colorOutput().Color(colorGreen)).String()
}

// Bad renders error text.
func Bad(s string) string {
	return colorOutput().String(s).Foreground(colorOutput().Color(colorRed)).String()
}

// Dim renders secondary text.
func Dim(s string) string {
	return colorOutput().String(s).Foreground(colorOutput().Color(colorGray)).String()
}

// Truncate shortens a string to the given display width, appending an
// ellipsis. Width is measured in terminal cells, not bytes.
func Truncate(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	if width <= 3 {
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.Truncate(s, width, "...")
}
