// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package prompt

import (
	"regexp"
	"strings"
)

// genericMarkers is the fallback scan order when no style-specific assistant
// marker is present in the raw output.
var genericMarkers = []string{"ASSISTANT:", "Assistant:", "AI:", "Response:", "model"}

// roleLabelRe matches leaked role labels surrounded by whitespace or line
// boundaries so they can be collapsed out of the answer.
var roleLabelRe = regexp.MustCompile(`(^|\s)(user|model|assistant)(\s|$)`)

// blankRunRe collapses runs of horizontal whitespace. Newlines are preserved
// so duplicate-line suppression still has lines to work with.
var blankRunRe = regexp.MustCompile(`[ \t]+`)

// =============================================================================
// STYLE-SPECIFIC EXTRACTION
// =============================================================================

func (gemmaStyle) Extract(prompt, raw string) string {
	if _, after, ok := strings.Cut(raw, gemmaModelTurn); ok {
		answer := strings.TrimSpace(after)
		// Drop the end-of-turn marker and anything after it.
		answer, _, _ = strings.Cut(answer, gemmaEndTurn)
		answer = strings.ReplaceAll(answer, gemmaUserTurn, "")
		return postProcess(strings.TrimSpace(answer))
	}
	return postProcess(genericExtract(prompt, raw))
}

func (llamaStyle) Extract(prompt, raw string) string {
	if _, after, ok := strings.Cut(raw, "Assistant\n"); ok {
		return postProcess(strings.TrimSpace(after))
	}
	return postProcess(genericExtract(prompt, raw))
}

func (phiStyle) Extract(prompt, raw string) string {
	if _, after, ok := strings.Cut(raw, "Assistant: "); ok {
		return postProcess(strings.TrimSpace(after))
	}
	return postProcess(genericExtract(prompt, raw))
}

func (deepseekStyle) Extract(prompt, raw string) string {
	if _, after, ok := strings.Cut(raw, "Assistant: "); ok {
		return postProcess(strings.TrimSpace(after))
	}
	return postProcess(genericExtract(prompt, raw))
}

func (genericStyle) Extract(prompt, raw string) string {
	return postProcess(genericExtract(prompt, raw))
}

// genericExtract is the fallback order shared by every style:
// (a) drop the echoed prompt prefix, (b) scan for a known assistant marker,
// (c) return the whole output trimmed.
func genericExtract(prompt, raw string) string {
	if prompt != "" && strings.HasPrefix(raw, prompt) {
		return strings.TrimSpace(raw[len(prompt):])
	}
	for _, marker := range genericMarkers {
		if _, after, ok := strings.Cut(raw, marker); ok {
			return strings.TrimSpace(after)
		}
	}
	return strings.TrimSpace(raw)
}

// =============================================================================
// POST-PROCESSING
// =============================================================================

// postProcess is applied unconditionally after extraction: leaked role labels
// are collapsed, horizontal whitespace runs become single spaces, and repeated
// lines are suppressed.
func postProcess(s string) string {
	// Collapse role labels repeatedly - a replacement can expose a new match
	// ("user model" -> " model" -> " ").
	for {
		next := roleLabelRe.ReplaceAllString(s, " ")
		if next == s {
			break
		}
		s = next
	}
	s = blankRunRe.ReplaceAllString(s, " ")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return DedupeLines(strings.TrimSpace(strings.Join(lines, "\n")))
}

// DedupeLines keeps only the first occurrence of each distinct trimmed line,
// preserving order.
func DedupeLines(s string) string {
	if s == "" {
		return s
	}
	seen := make(map[string]bool)
	var kept []string
	for _, line := range strings.Split(s, "\n") {
		key := strings.TrimSpace(line)
		if seen[key] {
			continue
		}
		seen[key] = true
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
