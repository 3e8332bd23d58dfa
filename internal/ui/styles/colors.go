// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling for the usbai chat surface.
// All colors use Lip Gloss AdaptiveColor for automatic light/dark detection.
package styles

import "github.com/charmbracelet/lipgloss"

// Purple - assistant messages.
var Purple = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"}

// Cyan - brand color, user messages, commands.
var Cyan = lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"}

// Emerald - success states, ready indicator.
var Emerald = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}

// Rose - errors.
var Rose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

// Amber - warnings, thinking indicator.
var Amber = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

// TextPrimary - main text.
var TextPrimary = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#CDD6F4"}

// TextSecondary - dimmed text, status line.
var TextSecondary = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9399B2"}

// =============================================================================
// SHARED STYLES
// =============================================================================

// UserLabel styles the "You" speaker label.
var UserLabel = lipgloss.NewStyle().Foreground(Cyan).Bold(true)

// AssistantLabel styles the "AI" speaker label.
var AssistantLabel = lipgloss.NewStyle().Foreground(Purple).Bold(true)

// Status styles the bottom status line.
var Status = lipgloss.NewStyle().Foreground(TextSecondary)

// Thinking styles the in-flight indicator.
var Thinking = lipgloss.NewStyle().Foreground(Amber).Italic(true)

// Error styles error lines.
var Error = lipgloss.NewStyle().Foreground(Rose)
