// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package validate

import "strings"

// factRule accepts an answer for a matched question pattern.
type factRule struct {
	// matches reports whether the rule applies to a lowercased question.
	matches func(q string) bool
	// accepted literals - the answer must contain at least one.
	accepted []string
}

// factTable is the fixed rule set. First matching rule decides; questions
// matching no rule pass by default.
var factTable = []factRule{
	{
		matches: func(q string) bool {
			return strings.Contains(q, "days") && strings.Contains(q, "week")
		},
		accepted: []string{"7"},
	},
	{
		matches: func(q string) bool {
			return strings.Contains(q, "alphabet")
		},
		accepted: []string{"26"},
	},
	{
		matches: func(q string) bool {
			return strings.Contains(q, "months") && strings.Contains(q, "year")
		},
		accepted: []string{"12"},
	},
	{
		matches: func(q string) bool {
			return strings.Contains(q, "water") && strings.Contains(q, "boil")
		},
		accepted: []string{"100", "212"},
	},
}

// IsFactValid reports whether an answer contains the expected literal value
// for a known factual question pattern. Unknown patterns always pass - this
// is a spot check, not a general truth-checker.
func IsFactValid(question, answer string) bool {
	qLower := strings.ToLower(question)
	aLower := strings.ToLower(answer)

	for _, rule := range factTable {
		if !rule.matches(qLower) {
			continue
		}
		for _, lit := range rule.accepted {
			if strings.Contains(aLower, lit) {
				return true
			}
		}
		return false
	}
	return true
}
