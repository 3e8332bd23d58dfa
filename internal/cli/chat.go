// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - interactive terminal chat with input history.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/peterh/liner"

	"github.com/jeranaias/usbai/internal/config"
	"github.com/jeranaias/usbai/internal/engine"
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// chatInput wraps liner with a persistent history file.
type chatInput struct {
	line        *liner.State
	historyFile string
}

func newChatInput(baseDir string) *chatInput {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	in := &chatInput{
		line:        line,
		historyFile: filepath.Join(baseDir, "chat_history"),
	}
	in.loadHistory()
	return in
}

func (c *chatInput) loadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// readInput reads one line with history navigation. Non-empty input is
// appended to the in-memory history.
func (c *chatInput) readInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// saveHistory persists history with owner-only permissions.
func (c *chatInput) saveHistory() {
	if err := config.EnsureBaseDir(); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	c.line.WriteHistory(f)
}

func (c *chatInput) Close() {
	c.saveHistory()
	c.line.Close()
}

// =============================================================================
// REPL
// =============================================================================

const chatBanner = `USB-AI interactive chat. Type a question, or /help for commands.`

// HandleChat runs the terminal chat loop.
func (a *App) HandleChat(ctx context.Context, args Args) error {
	input := newChatInput(a.BaseDir)
	defer input.Close()

	if !args.Quiet {
		fmt.Println(Accent(chatBanner))
		fmt.Println(Dim("Model: " + a.Engine.Profile().Name))
	}

	start := time.Now()
	turns := 0

	for {
		text, err := input.readInput(Accent("you> "))
		if err != nil {
			// Ctrl+C or Ctrl+D ends the session.
			if err == liner.ErrPromptAborted {
				fmt.Println()
			}
			printChatSummary(start, turns, args.Quiet)
			return nil
		}

		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		if strings.HasPrefix(text, "/") {
			cont, err := a.chatCommand(ctx, text)
			if err != nil {
				fmt.Fprintln(os.Stderr, Bad("[Error] ")+err.Error())
			}
			if !cont {
				printChatSummary(start, turns, args.Quiet)
				return nil
			}
			continue
		}

		if strings.EqualFold(text, "exit") || strings.EqualFold(text, "quit") {
			printChatSummary(start, turns, args.Quiet)
			return nil
		}

		res := a.Engine.Process(ctx, text)
		a.record(ctx, text, res)
		turns++

		fmt.Println(Answer(res.Answer))
		if args.Verbose {
			fmt.Println(Dim(statusLine(res)))
		}
	}
}

// chatCommand handles slash commands. The bool is false when the session
// should end.
func (a *App) chatCommand(ctx context.Context, text string) (bool, error) {
	fields := strings.Fields(text)
	switch fields[0] {
	case "/quit", "/exit":
		return false, nil

	case "/help":
		fmt.Println("Commands:")
		fmt.Println("  /model [name]  show or switch the active model")
		fmt.Println("  /status        engine and server state")
		fmt.Println("  /clear         clear the response cache")
		fmt.Println("  /quit          end the session")
		return true, nil

	case "/status":
		return true, a.HandleStatus(ctx)

	case "/clear":
		a.Engine.ClearCache()
		fmt.Println(Dim("Cache cleared."))
		return true, nil

	case "/model":
		if len(fields) < 2 {
			fmt.Println("Current model: " + a.Engine.Profile().Name)
			return true, nil
		}
		if err := a.SwitchModel(ctx, fields[1]); err != nil {
			return true, err
		}
		fmt.Println(Good("Switched to " + fields[1]))
		return true, nil

	default:
		return true, fmt.Errorf("unknown command: %s (try /help)", fields[0])
	}
}

func statusLine(res engine.Result) string {
	if res.Cached {
		return "(cached)"
	}
	return fmt.Sprintf("(%s, %d attempt(s), %s)",
		res.Kind, res.Attempts, res.Duration.Round(time.Millisecond))
}

func printChatSummary(start time.Time, turns int, quiet bool) {
	if quiet {
		return
	}
	fmt.Println(Dim(fmt.Sprintf("Session: %d question(s) in %s. Goodbye.",
		turns, time.Since(start).Round(time.Second))))
}
