// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"context"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/time/rate"

	"github.com/jeranaias/usbai/internal/genparams"
	"github.com/jeranaias/usbai/internal/model"
)

// =============================================================================
// GENERATION BACKEND
// =============================================================================

// Backend adapts the Ollama HTTP API to the engine's tokenize/generate/
// decode contract.
//
// Ollama tokenizes server-side, so Tokenize here is an approximation: the
// text is split into word and whitespace runs, each interned to an id, and
// the run count is what gets truncated against the token budget. Decode is
// the exact inverse, so prompts survive the round trip byte for byte.
type Backend struct {
	client  *Client
	profile model.Profile
	limiter *rate.Limiter

	mu    sync.Mutex
	vocab map[string]int
	runs  []string
}

// NewBackend creates a generation backend for one model. Requests are
// rate limited to one generation per second burst one; the engine issues
// them sequentially anyway, this guards the surfaces.
func NewBackend(client *Client, profile model.Profile) *Backend {
	return &Backend{
		client:  client,
		profile: profile,
		limiter: rate.NewLimiter(rate.Limit(1), 1),
		vocab:   make(map[string]int),
	}
}

// Tokenize encodes text into run ids, truncated to maxTokens runs.
func (b *Backend) Tokenize(_ context.Context, text string, maxTokens int) ([]int, error) {
	runs := splitRuns(text)
	if maxTokens > 0 && len(runs) > maxTokens {
		runs = runs[:maxTokens]
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	ids := make([]int, len(runs))
	for i, r := range runs {
		ids[i] = b.intern(r)
	}
	return ids, nil
}

// Generate reconstructs the prompt, sends it to /api/generate and encodes
// the completion.
func (b *Backend) Generate(ctx context.Context, tokens []int, params genparams.Parameters) ([]int, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	prompt, err := b.decode(tokens)
	if err != nil {
		return nil, err
	}

	resp, err := b.client.Generate(ctx, &GenerateRequest{
		Model:   b.profile.Name,
		Prompt:  prompt,
		Raw:     true,
		Options: optionsFrom(params, b.profile.ContextLength),
	})
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	var ids []int
	for _, r := range splitRuns(resp.Response) {
		ids = append(ids, b.intern(r))
	}
	return ids, nil
}

// Decode renders token ids back to text.
func (b *Backend) Decode(_ context.Context, tokens []int) (string, error) {
	return b.decode(tokens)
}

func (b *Backend) decode(tokens []int) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var sb strings.Builder
	for _, id := range tokens {
		if id < 0 || id >= len(b.runs) {
			return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "unknown token id"}
		}
		sb.WriteString(b.runs[id])
	}
	return sb.String(), nil
}

// intern must be called with b.mu held.
func (b *Backend) intern(run string) int {
	if id, ok := b.vocab[run]; ok {
		return id
	}
	id := len(b.runs)
	b.vocab[run] = id
	b.runs = append(b.runs, run)
	return id
}

// splitRuns breaks text into alternating runs of whitespace and
// non-whitespace, preserving every byte.
func splitRuns(text string) []string {
	var runs []string
	start := 0
	var inSpace bool
	for i, r := range text {
		isSpace := unicode.IsSpace(r)
		if i == 0 {
			inSpace = isSpace
			continue
		}
		if isSpace != inSpace {
			runs = append(runs, text[start:i])
			start = i
			inSpace = isSpace
		}
	}
	if start < len(text) {
		runs = append(runs, text[start:])
	}
	return runs
}

// optionsFrom maps generation parameters onto Ollama options. Greedy
// decoding sends temperature 0; unset knobs stay omitted so the server
// defaults do not leak into sampled runs.
func optionsFrom(p genparams.Parameters, contextLength int) *Options {
	opts := &Options{
		NumPredict:    p.MaxNewTokens,
		NumCtx:        contextLength,
		RepeatPenalty: p.RepetitionPenalty,
	}
	if p.DoSample {
		opts.Temperature = p.Temperature
		opts.TopP = p.TopP
		opts.TopK = p.TopK
	} else {
		zero := 0.0
		opts.Temperature = &zero
	}
	return opts
}
