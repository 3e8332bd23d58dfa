// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/usbai/internal/engine"
)

// Update handles one message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		viewportHeight := msg.Height - 4
		if viewportHeight < 1 {
			viewportHeight = 1
		}
		if !m.ready {
			m.viewport = newViewport(msg.Width, viewportHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = viewportHeight
		}
		m.input.Width = msg.Width - 4
		m.viewport.SetContent(m.transcript())
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if m.thinking {
				return m, nil
			}
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return m, nil
			}
			m.input.Reset()

			if cmd, handled := m.handleSlashCommand(text); handled {
				return m, cmd
			}

			m.thinking = true
			m.status = "Ready"
			return m, tea.Batch(m.spin.Tick, processCmd(m.processor, text))
		}

	case answerMsg:
		m.thinking = false
		m.turns = append(m.turns, turn{
			question: msg.question,
			answer:   msg.result.Answer,
		})
		m.status = statusFor(msg.result)
		m.viewport.SetContent(m.transcript())
		m.viewport.GotoBottom()
		return m, nil

	case modelChangedMsg:
		cmds := []tea.Cmd{waitForModelChange(m.watch)}
		if msg.name != m.modelName {
			cmds = append(cmds, m.switchModel(msg.name))
		}
		return m, tea.Batch(cmds...)

	case switchedMsg:
		if msg.err != nil {
			log.Printf("chat: model switch failed: %v", msg.err)
			m.status = "Model switch failed: " + msg.err.Error()
		} else {
			m.processor = msg.processor
			m.modelName = msg.name
			m.status = "Switched to " + msg.name
		}
		return m, nil

	case spinner.TickMsg:
		if !m.thinking {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// handleSlashCommand processes /commands. Returns handled=false for
// plain queries.
func (m *Model) handleSlashCommand(text string) (tea.Cmd, bool) {
	if !strings.HasPrefix(text, "/") {
		return nil, false
	}

	fields := strings.Fields(text)
	switch fields[0] {
	case "/quit", "/q":
		return tea.Quit, true

	case "/clear", "/c":
		m.turns = nil
		m.viewport.SetContent("")
		m.status = "Cleared"
		return nil, true

	case "/model", "/m":
		if len(fields) < 2 {
			m.status = "Model: " + m.modelName
			return nil, true
		}
		return m.switchModel(fields[1]), true

	case "/help", "/h":
		m.status = "/model [name]  /clear  /quit"
		return nil, true

	default:
		m.status = "Unknown command: " + fields[0]
		return nil, true
	}
}

// switchModel rebuilds the processor through the switcher.
func (m *Model) switchModel(name string) tea.Cmd {
	if m.switcher == nil {
		m.status = "Model switching unavailable"
		return nil
	}
	sw := m.switcher
	return func() tea.Msg {
		p, resolved, err := sw(name)
		if err != nil {
			return switchedMsg{name: name, err: err}
		}
		return switchedMsg{name: resolved, processor: p}
	}
}

// statusFor summarizes a result for the footer.
func statusFor(res engine.Result) string {
	switch {
	case res.Cached:
		return "Answered from cache"
	case res.Attempts > 1:
		return fmt.Sprintf("Answered (%d attempts)", res.Attempts)
	default:
		return "Ready"
	}
}
