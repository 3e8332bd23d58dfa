// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package classify decides how a user query should be answered.
//
// Every query resolves to exactly one Kind. Math is checked first and
// short-circuits; Factual and General follow. The checks are pure text
// heuristics and deterministic for the same input.
package classify

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Kind categorizes a query for prompt and generation parameter selection.
type Kind int

const (
	// KindMath is a pure arithmetic expression (e.g. "2+2", "solve (3*4)^2").
	KindMath Kind = iota
	// KindFactual is an interrogative/explanatory question ("what is ...").
	KindFactual
	// KindGeneral is everything else - open conversation.
	KindGeneral
)

// String returns the human-readable name of the kind.
func (k Kind) String() string {
	switch k {
	case KindMath:
		return "Math"
	case KindFactual:
		return "Factual"
	case KindGeneral:
		return "General"
	default:
		return "Unknown"
	}
}

// factualWords is the fixed interrogative/explanatory vocabulary. A query
// containing any of these (case-insensitive) is treated as factual.
var factualWords = []string{
	"what", "when", "where", "who", "why", "how",
	"tell me", "explain", "define",
}

// mathRunes is the character class allowed in a math query. Any rune outside
// this set disqualifies the math classification.
const mathRunes = "0123456789+-*/^()%.=<>!&| \t\r\n"

// Classify returns the Kind for a query. Math is tested first and wins;
// otherwise the factual vocabulary decides between Factual and General.
func Classify(text string) Kind {
	if IsMath(text) {
		return KindMath
	}
	if IsFactual(text) {
		return KindFactual
	}
	return KindGeneral
}

// IsMath reports whether the query is a bare arithmetic expression.
// A leading "solve" token is ignored, then every remaining rune must fall in
// the arithmetic character class.
func IsMath(text string) bool {
	t := StripSolve(text)
	if t == "" {
		return false
	}
	for _, r := range t {
		if !strings.ContainsRune(mathRunes, r) {
			return false
		}
	}
	return true
}

// IsFactual reports whether the query contains interrogative vocabulary.
func IsFactual(text string) bool {
	lower := strings.ToLower(text)
	for _, w := range factualWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// StripSolve removes a leading case-insensitive "solve" token and surrounding
// whitespace, NFC-normalizing the text first so composed and decomposed forms
// classify identically.
func StripSolve(text string) string {
	t := strings.TrimSpace(norm.NFC.String(text))
	lower := strings.ToLower(t)
	if strings.HasPrefix(lower, "solve") {
		t = strings.TrimSpace(t[len("solve"):])
	}
	return t
}
