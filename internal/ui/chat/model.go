// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the graphical chat surface as a Bubble Tea
// program.
//
// One request is in flight at a time: submitting a query flips the
// thinking flag, runs the engine in a command goroutine, and delivers
// the result back to the update loop as a message. Input is ignored
// while thinking.
package chat

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/usbai/internal/config"
	"github.com/jeranaias/usbai/internal/engine"
	"github.com/jeranaias/usbai/internal/ui/styles"
)

// Processor is the slice of the engine the chat surface needs.
type Processor interface {
	Process(ctx context.Context, text string) engine.Result
}

// Switcher rebuilds the processor for a different model. Used by the
// /model command and the config watcher.
type Switcher func(model string) (Processor, string, error)

// turn is one rendered exchange.
type turn struct {
	question string
	answer   string
	err      bool
}

// Model is the Bubble Tea model for the chat surface.
type Model struct {
	processor Processor
	switcher  Switcher
	cfg       *config.Config

	modelName string

	input    textinput.Model
	viewport viewport.Model
	spin     spinner.Model
	renderer *glamour.TermRenderer

	turns    []turn
	thinking bool
	status   string
	width    int
	height   int
	ready    bool

	watch <-chan string
}

// New creates the chat surface. watch may be nil; when set, model names
// received on it switch the active model (config hot reload).
func New(p Processor, modelName string, cfg *config.Config, sw Switcher, watch <-chan string) Model {
	input := textinput.New()
	input.Placeholder = "Ask me anything..."
	input.Prompt = "> "
	input.PromptStyle = styles.UserLabel
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Thinking

	var renderer *glamour.TermRenderer
	if cfg.UI.Markdown {
		renderer, _ = glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(80),
		)
	}

	return Model{
		processor: p,
		switcher:  sw,
		cfg:       cfg,
		modelName: modelName,
		input:     input,
		spin:      sp,
		renderer:  renderer,
		status:    "Ready",
		watch:     watch,
	}
}

// Init starts the spinner tick and the config watch.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if m.watch != nil {
		cmds = append(cmds, waitForModelChange(m.watch))
	}
	return tea.Batch(cmds...)
}

// renderAnswer formats an answer for the transcript view.
func (m Model) renderAnswer(text string) string {
	if m.renderer != nil {
		if out, err := m.renderer.Render(text); err == nil {
			return strings.TrimRight(out, "\n")
		}
	}
	return text
}

// transcript renders all turns for the viewport.
func (m Model) transcript() string {
	var sb strings.Builder
	for i, t := range m.turns {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(styles.UserLabel.Render("You: "))
		sb.WriteString(t.question)
		sb.WriteString("\n")
		sb.WriteString(styles.AssistantLabel.Render("AI: "))
		if t.err {
			sb.WriteString(styles.Error.Render(t.answer))
		} else {
			sb.WriteString(m.renderAnswer(t.answer))
		}
	}
	return sb.String()
}

// statusLine summarizes the session for the footer.
func (m Model) statusLine() string {
	left := "Model: " + m.modelName
	if m.thinking {
		return styles.Status.Render(left+"  |  ") + m.spin.View() + styles.Thinking.Render(" thinking...")
	}
	return styles.Status.Render(left + "  |  " + m.status)
}

// answerMsg delivers one processed turn back to the update loop.
type answerMsg struct {
	question string
	result   engine.Result
}

// modelChangedMsg arrives from the config watcher.
type modelChangedMsg struct{ name string }

// switchedMsg reports the outcome of a model switch.
type switchedMsg struct {
	name      string
	processor Processor
	err       error
}

// processCmd runs one query on the engine in its own goroutine.
func processCmd(p Processor, question string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		return answerMsg{question: question, result: p.Process(ctx, question)}
	}
}

// waitForModelChange blocks on the watch channel.
func waitForModelChange(watch <-chan string) tea.Cmd {
	return func() tea.Msg {
		name, ok := <-watch
		if !ok {
			return nil
		}
		return modelChangedMsg{name: name}
	}
}
