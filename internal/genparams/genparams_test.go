// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package genparams

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/usbai/internal/classify"
)

// TestSelectMath verifies greedy decoding leaves the sampling knobs unset.
func TestSelectMath(t *testing.T) {
	p := Select(classify.KindMath)

	assert.False(t, p.DoSample)
	assert.Nil(t, p.Temperature)
	assert.Nil(t, p.TopP)
	assert.Nil(t, p.TopK)
	assert.Equal(t, MathMaxNewTokens, p.MaxNewTokens)
	assert.Equal(t, DefaultRepetitionPenalty, p.RepetitionPenalty)
}

// TestSelectFactual verifies the tightened sampling settings.
func TestSelectFactual(t *testing.T) {
	p := Select(classify.KindFactual)

	assert.True(t, p.DoSample)
	require.NotNil(t, p.Temperature)
	assert.Equal(t, FactualTemperature, *p.Temperature)
	require.NotNil(t, p.TopP)
	assert.Equal(t, FactualTopP, *p.TopP)
	require.NotNil(t, p.TopK)
	assert.Equal(t, FactualTopK, *p.TopK)
	assert.Equal(t, FactualRepetitionPenalty, p.RepetitionPenalty)
	assert.Equal(t, DefaultMaxNewTokens, p.MaxNewTokens)
}

// TestSelectGeneral verifies the creative defaults pass through.
func TestSelectGeneral(t *testing.T) {
	p := Select(classify.KindGeneral)

	assert.True(t, p.DoSample)
	require.NotNil(t, p.Temperature)
	assert.Equal(t, DefaultTemperature, *p.Temperature)
	require.NotNil(t, p.TopP)
	assert.Equal(t, DefaultTopP, *p.TopP)
	require.NotNil(t, p.TopK)
	assert.Equal(t, DefaultTopK, *p.TopK)
	assert.Equal(t, DefaultRepetitionPenalty, p.RepetitionPenalty)
}

// TestSelectDoesNotShareState makes sure selections are independent values.
func TestSelectDoesNotShareState(t *testing.T) {
	a := Select(classify.KindGeneral)
	b := Select(classify.KindGeneral)
	*a.Temperature = 0.1
	assert.Equal(t, DefaultTemperature, *b.Temperature)
}
