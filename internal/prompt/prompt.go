// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package prompt wraps user text into each model family's chat-turn syntax
// and extracts the assistant's answer back out of the decoded output.
//
// Each family is a closed variant: one Styler per model.Family, selected once
// through ForFamily at engine construction and never re-branched downstream.
// Format and Extract live on the same value because they must agree - the
// formatter's delimiters are what the extractor locates in the raw output.
package prompt

import (
	"fmt"

	"github.com/jeranaias/usbai/internal/mathexpr"
	"github.com/jeranaias/usbai/internal/model"
)

// mathPreamble states the computed result up front and announces a worked
// solution, so the model justifies the value instead of recomputing it.
// This measurably reduces arithmetic hallucination on small local models.
const mathPreamble = "The result of %s is %s. Following the proper order of operations (PEMDAS/BODMAS), here's how to solve this expression step by step:\n"

// Styler formats prompts for one model family and extracts answers from its
// raw decoded output.
type Styler interface {
	// Format wraps user text into the family's chat-turn envelope.
	Format(text string) string
	// FormatMath embeds an already-computed arithmetic result into the
	// assistant turn so the model continues from the correct value.
	FormatMath(text string, result float64) string
	// Extract isolates the assistant's answer from the raw decoded output.
	Extract(prompt, raw string) string
}

// ForFamily returns the Styler for a model family. Every supported family has
// exactly one implementation; unknown values get the generic style.
func ForFamily(f model.Family) Styler {
	switch f {
	case model.FamilyGemma:
		return gemmaStyle{}
	case model.FamilyLlama:
		return llamaStyle{}
	case model.FamilyPhi:
		return phiStyle{}
	case model.FamilyDeepSeek:
		return deepseekStyle{}
	default:
		return genericStyle{}
	}
}

// =============================================================================
// GEMMA
// =============================================================================

const (
	gemmaUserTurn  = "<start_of_turn>user"
	gemmaModelTurn = "<start_of_turn>model"
	gemmaEndTurn   = "<end_of_turn>"
)

type gemmaStyle struct{}

func (gemmaStyle) Format(text string) string {
	return gemmaUserTurn + "\n" + text + "\n" + gemmaEndTurn + "\n" + gemmaModelTurn + "\n"
}

func (s gemmaStyle) FormatMath(text string, result float64) string {
	return s.Format(text) + fmt.Sprintf(mathPreamble, text, mathexpr.FormatResult(result))
}

// =============================================================================
// LLAMA
// =============================================================================

type llamaStyle struct{}

func (llamaStyle) Format(text string) string {
	return "User\n" + text + "\n\nAssistant\n"
}

func (s llamaStyle) FormatMath(text string, result float64) string {
	return s.Format(text) + fmt.Sprintf(mathPreamble, text, mathexpr.FormatResult(result))
}

// =============================================================================
// PHI
// =============================================================================

type phiStyle struct{}

func (phiStyle) Format(text string) string {
	return "Instruct: Answer the following question accurately, clearly, and helpfully.\n" +
		"Human: " + text + "\n" +
		"Assistant: "
}

func (s phiStyle) FormatMath(text string, result float64) string {
	return s.Format(text) + fmt.Sprintf(mathPreamble, text, mathexpr.FormatResult(result))
}

// =============================================================================
// DEEPSEEK
// =============================================================================

const deepseekBOS = "<｜begin▁of▁sentence｜>"

type deepseekStyle struct{}

func (deepseekStyle) Format(text string) string {
	return deepseekBOS +
		"Human: I need a detailed and accurate answer to the following question.\n" +
		text + "\n\n" +
		"Assistant: "
}

func (s deepseekStyle) FormatMath(text string, result float64) string {
	return s.Format(text) + fmt.Sprintf(mathPreamble, text, mathexpr.FormatResult(result))
}

// =============================================================================
// GENERIC
// =============================================================================

type genericStyle struct{}

func (genericStyle) Format(text string) string {
	return "USER: I need an accurate answer to this question.\n" +
		text + "\n" +
		"ASSISTANT: "
}

func (genericStyle) FormatMath(text string, result float64) string {
	return "User: " + text + "\n" +
		"Assistant: " + fmt.Sprintf(mathPreamble, text, mathexpr.FormatResult(result))
}
