// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/usbai/internal/ui/styles"
)

var headerStyle = lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true)

func newViewport(width, height int) viewport.Model {
	vp := viewport.New(width, height)
	vp.Style = lipgloss.NewStyle().Padding(0, 1)
	return vp
}

// View renders the full chat surface: header, transcript, input and
// status line.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := headerStyle.Render("USB-AI")
	return header + "\n" +
		m.viewport.View() + "\n" +
		m.input.View() + "\n" +
		m.statusLine()
}
