// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestClassify verifies the query categorization heuristics.
// Math short-circuits, factual vocabulary decides the rest.
func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected Kind
	}{
		// Math expressions
		{
			name:     "math_simple_product",
			query:    "7*6",
			expected: KindMath,
		},
		{
			name:     "math_addition",
			query:    "2+2",
			expected: KindMath,
		},
		{
			name:     "math_solve_prefix",
			query:    "solve (3+4)^2",
			expected: KindMath,
		},
		{
			name:     "math_solve_uppercase",
			query:    "SOLVE 10/5",
			expected: KindMath,
		},
		{
			name:     "math_with_comparison",
			query:    "3 > 2",
			expected: KindMath,
		},

		// Factual questions
		{
			name:     "factual_what_is",
			query:    "what is the capital of France",
			expected: KindFactual,
		},
		{
			name:     "factual_tell_me",
			query:    "tell me a joke",
			expected: KindFactual,
		},
		{
			name:     "factual_explain",
			query:    "explain photosynthesis",
			expected: KindFactual,
		},
		{
			name:     "factual_who",
			query:    "who invented the telephone",
			expected: KindFactual,
		},

		// General conversation
		{
			name:     "general_greeting",
			query:    "hello",
			expected: KindGeneral,
		},
		{
			name:     "general_statement",
			query:    "nice weather today",
			expected: KindGeneral,
		},
		{
			name:     "general_thanks",
			query:    "thanks a lot",
			expected: KindGeneral,
		},

		// Math wins over factual when both could apply
		{
			name:     "math_short_circuits",
			query:    "solve 1+1",
			expected: KindMath,
		},
		// A letter disqualifies math
		{
			name:     "letters_disqualify_math",
			query:    "2 apples + 2 apples",
			expected: KindGeneral,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.query))
		})
	}
}

// TestClassifyTotality checks that every input resolves to a known kind.
func TestClassifyTotality(t *testing.T) {
	inputs := []string{"", "   ", "7*6", "what is go", "hello", "solve", "!!??"}
	for _, in := range inputs {
		k := Classify(in)
		assert.Contains(t, []Kind{KindMath, KindFactual, KindGeneral}, k, "input %q", in)
	}
}

// TestStripSolve verifies normalization of the "solve" prefix.
func TestStripSolve(t *testing.T) {
	assert.Equal(t, "2+2", StripSolve("solve 2+2"))
	assert.Equal(t, "2+2", StripSolve("  SOLVE   2+2  "))
	assert.Equal(t, "2+2", StripSolve("2+2"))
	assert.Equal(t, "", StripSolve("solve"))
}

// TestIsMathEdgeCases covers inputs near the character-class boundary.
func TestIsMathEdgeCases(t *testing.T) {
	assert.True(t, IsMath("(1.5 + 2.5) * 10 % 3"))
	assert.False(t, IsMath(""))
	assert.False(t, IsMath("   "))
	assert.False(t, IsMath("x + 2"))
	assert.False(t, IsMath("what is 2+2"))
}
