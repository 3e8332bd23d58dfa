// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package genparams derives generation parameters from a query classification.
//
// The mapping is a pure table: math gets greedy decoding with the sampling
// knobs unset (nil, not zero), factual gets tighter sampling, general gets the
// creative defaults.
package genparams

import "github.com/jeranaias/usbai/internal/classify"

// Parameters holds the sampling configuration passed to the generation
// backend. Temperature, TopP and TopK are pointers so "disabled" is
// distinguishable from zero: when DoSample is false they must be nil.
type Parameters struct {
	MaxNewTokens      int
	MinLength         int
	DoSample          bool
	Temperature       *float64
	TopP              *float64
	TopK              *int
	RepetitionPenalty float64
	NoRepeatNgramSize int
}

// Defaults for the base configuration every selection starts from.
const (
	DefaultMaxNewTokens      = 300
	DefaultMinLength         = 5
	DefaultTemperature       = 0.7
	DefaultTopP              = 0.9
	DefaultTopK              = 50
	DefaultRepetitionPenalty = 1.1
	DefaultNoRepeatNgram     = 3

	// MathMaxNewTokens keeps arithmetic walkthroughs short.
	MathMaxNewTokens = 150

	// Factual decoding reduces randomness without going fully greedy.
	FactualTemperature       = 0.5
	FactualTopP              = 0.85
	FactualTopK              = 40
	FactualRepetitionPenalty = 1.2
)

// Default returns the base configuration before per-kind adjustment.
func Default() Parameters {
	return Parameters{
		MaxNewTokens:      DefaultMaxNewTokens,
		MinLength:         DefaultMinLength,
		DoSample:          true,
		Temperature:       ptr(DefaultTemperature),
		TopP:              ptr(DefaultTopP),
		TopK:              ptrInt(DefaultTopK),
		RepetitionPenalty: DefaultRepetitionPenalty,
		NoRepeatNgramSize: DefaultNoRepeatNgram,
	}
}

// Select derives the parameters for a query kind from the base defaults.
// The selector itself is deterministic - any randomness lives in the backend.
func Select(kind classify.Kind) Parameters {
	p := Default()
	switch kind {
	case classify.KindMath:
		// Greedy decoding: sampling knobs are unset, not zeroed.
		p.DoSample = false
		p.Temperature = nil
		p.TopP = nil
		p.TopK = nil
		p.MaxNewTokens = MathMaxNewTokens
	case classify.KindFactual:
		p.Temperature = ptr(FactualTemperature)
		p.TopP = ptr(FactualTopP)
		p.TopK = ptrInt(FactualTopK)
		p.RepetitionPenalty = FactualRepetitionPenalty
	case classify.KindGeneral:
		// Base defaults already allow creativity.
	}
	return p
}

func ptr(v float64) *float64 { return &v }
func ptrInt(v int) *int      { return &v }
