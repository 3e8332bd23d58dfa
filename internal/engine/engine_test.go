// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/usbai/internal/classify"
	"github.com/jeranaias/usbai/internal/genparams"
	"github.com/jeranaias/usbai/internal/model"
)

// fakeBackend scripts decode outputs per attempt and records every
// prompt it was asked to tokenize.
type fakeBackend struct {
	responses []string // consumed per attempt; last entry repeats
	prompts   []string
	generates int

	failGenerate error
	panicOn      bool
}

func (f *fakeBackend) Tokenize(_ context.Context, text string, _ int) ([]int, error) {
	f.prompts = append(f.prompts, text)
	return []int{1, 2, 3}, nil
}

func (f *fakeBackend) Generate(_ context.Context, _ []int, _ genparams.Parameters) ([]int, error) {
	if f.panicOn {
		panic("backend blew up")
	}
	f.generates++
	if f.failGenerate != nil {
		return nil, f.failGenerate
	}
	return []int{4, 5, 6}, nil
}

func (f *fakeBackend) Decode(_ context.Context, _ []int) (string, error) {
	i := f.generates - 1
	if i >= len(f.responses) {
		i = len(f.responses) - 1
	}
	return f.responses[i], nil
}

func newTestEngine(b Backend) *Engine {
	profile := model.Profile{
		Name:          "test-model",
		Family:        model.FamilyGeneric,
		ContextLength: 2048,
	}
	return New(b, profile, Options{})
}

func TestEmptyInputSkipsBackend(t *testing.T) {
	fb := &fakeBackend{responses: []string{"unused"}}
	e := newTestEngine(fb)

	for _, input := range []string{"", "   ", "\t\n"} {
		got := e.ProcessInput(context.Background(), input)
		assert.Equal(t, MsgEmptyInput, got)
	}
	assert.Equal(t, 0, fb.generates, "empty input must not reach the backend")
}

func TestHappyPathAndCacheIdempotence(t *testing.T) {
	fb := &fakeBackend{responses: []string{"The capital of France is Paris."}}
	e := newTestEngine(fb)

	first := e.Process(context.Background(), "What is the capital of France?")
	assert.Equal(t, "The capital of France is Paris.", first.Answer)
	assert.Equal(t, classify.KindFactual, first.Kind)
	assert.Equal(t, 1, first.Attempts)
	assert.False(t, first.Cached)
	assert.Equal(t, 1, fb.generates)

	second := e.Process(context.Background(), "  What is the capital of France?  ")
	assert.Equal(t, first.Answer, second.Answer)
	assert.True(t, second.Cached)
	assert.Equal(t, 1, fb.generates, "cache hit must not call the backend again")
}

func TestMathQuery(t *testing.T) {
	fb := &fakeBackend{responses: []string{
		"The result of 2+2 is 4. Addition combines the two operands.",
	}}
	e := newTestEngine(fb)

	got := e.ProcessInput(context.Background(), "2+2")
	assert.Contains(t, got, "4")

	// The prompt carries the evaluated result, not a request to compute.
	require.NotEmpty(t, fb.prompts)
	assert.Contains(t, fb.prompts[0], "The result of 2+2 is 4.")
	assert.Contains(t, fb.prompts[0], "PEMDAS/BODMAS")
}

func TestMathPromptCarriesFractionalResult(t *testing.T) {
	fb := &fakeBackend{responses: []string{"The result of 7/2 is 3.5."}}
	e := newTestEngine(fb)

	got := e.ProcessInput(context.Background(), "7/2")
	assert.Contains(t, got, "3.5")

	// The evaluated value flows to the styler as a number and is
	// rendered there, so non-integer results keep their fraction.
	require.NotEmpty(t, fb.prompts)
	assert.Contains(t, fb.prompts[0], "The result of 7/2 is 3.5.")
}

func TestMalformedMathIsTerminal(t *testing.T) {
	fb := &fakeBackend{responses: []string{"unused"}}
	e := newTestEngine(fb)

	got := e.ProcessInput(context.Background(), "(((")
	assert.Equal(t, MsgMathFailed, got)
	assert.Equal(t, 0, fb.generates, "a broken expression must not be retried against the model")

	// Determinism: same input, same apology, still no backend traffic.
	assert.Equal(t, MsgMathFailed, e.ProcessInput(context.Background(), "((("))
	assert.Equal(t, 0, fb.generates)
}

func TestRetryBoundOnPersistentFactFailure(t *testing.T) {
	// Relevant but factually wrong every time: days-in-week must say 7.
	fb := &fakeBackend{responses: []string{"There are 5 days in a week."}}
	e := newTestEngine(fb)

	got := e.Process(context.Background(), "How many days are in a week?")
	assert.Equal(t, MsgNoAnswer, got.Answer)
	assert.Equal(t, 3, fb.generates, "maxRetries=2 means exactly three attempts")
	assert.Equal(t, 3, got.Attempts)

	// A failed answer is never cached.
	assert.Equal(t, 0, e.CacheStats().Entries)
}

func TestReformulationWording(t *testing.T) {
	// First attempt is relevant but fact-invalid, second is accepted.
	fb := &fakeBackend{responses: []string{
		"There are 5 days in a week.",
		"There are 7 days in a week.",
	}}
	e := newTestEngine(fb)

	got := e.ProcessInput(context.Background(), "How many days are in a week?")
	assert.Equal(t, "There are 7 days in a week.", got)
	assert.Equal(t, 2, fb.generates)

	require.Len(t, fb.prompts, 2)
	assert.Contains(t, fb.prompts[1], "I need a specific and factual answer to: How many days are in a week?")
}

func TestRelevanceReformulationWording(t *testing.T) {
	// First attempt shares no key terms with the question, second is
	// accepted.
	fb := &fakeBackend{responses: []string{
		"Bananas are yellow.",
		"The capital of France is Paris.",
	}}
	e := newTestEngine(fb)

	got := e.ProcessInput(context.Background(), "What is the capital of France?")
	assert.Equal(t, "The capital of France is Paris.", got)

	require.Len(t, fb.prompts, 2)
	assert.Contains(t, fb.prompts[1], "I need a clear and accurate answer to: What is the capital of France?")
}

func TestBackendErrorIsNotRetried(t *testing.T) {
	fb := &fakeBackend{
		responses:    []string{"unused"},
		failGenerate: errors.New("connection refused"),
	}
	e := newTestEngine(fb)

	got := e.Process(context.Background(), "What is the capital of France?")
	assert.Equal(t, MsgInternal, got.Answer)
	assert.Equal(t, 1, fb.generates, "runtime failures are fatal, not retried")
	assert.Equal(t, 0, e.CacheStats().Entries)
}

func TestPanicRecovery(t *testing.T) {
	fb := &fakeBackend{responses: []string{"unused"}, panicOn: true}
	e := newTestEngine(fb)

	assert.NotPanics(t, func() {
		got := e.ProcessInput(context.Background(), "What is the capital of France?")
		assert.Equal(t, MsgInternal, got)
	})
}

func TestDuplicateLinesSuppressed(t *testing.T) {
	fb := &fakeBackend{responses: []string{
		"The capital of France is Paris.\nThe capital of France is Paris.\nIt sits on the Seine.",
	}}
	e := newTestEngine(fb)

	got := e.ProcessInput(context.Background(), "What is the capital of France?")
	assert.Equal(t, "The capital of France is Paris.\nIt sits on the Seine.", got)
}
