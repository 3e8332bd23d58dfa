// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package engine runs a user query through classification, prompt
// formatting, generation, validation and caching, and always returns a
// printable answer. Errors and panics inside the pipeline never escape
// ProcessInput; callers get an apology string instead.
package engine

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jeranaias/usbai/internal/cache"
	"github.com/jeranaias/usbai/internal/classify"
	"github.com/jeranaias/usbai/internal/genparams"
	"github.com/jeranaias/usbai/internal/mathexpr"
	"github.com/jeranaias/usbai/internal/model"
	"github.com/jeranaias/usbai/internal/prompt"
	"github.com/jeranaias/usbai/internal/validate"
)

// ===== USER-FACING MESSAGES =====

// Fixed replies for the failure paths. These are answers, not errors:
// nothing past this boundary reports a Go error to the caller.
const (
	MsgEmptyInput   = "Please enter a valid query. 😊"
	MsgMathFailed   = "I'm sorry, I couldn't evaluate the mathematical expression. Please try again with a valid expression. 😔"
	MsgNoAnswer     = "I'm sorry, I couldn't find an accurate answer to your question. 😔"
	MsgRetriesSpent = "I'm sorry, I couldn't find an accurate answer to your question after multiple attempts. 😔"
	MsgInternal     = "An error occurred while processing your request. Please try again with a different question."
)

// DefaultMaxRetries bounds the regeneration loop: 2 retries after the
// first attempt, three backend calls at most.
const DefaultMaxRetries = 2

// DefaultTruncateLimit caps prompt length in tokens before the model's
// own context length is considered.
const DefaultTruncateLimit = 512

// ===== BACKEND CONTRACT =====

// Backend is the narrow slice of a text-generation runtime the engine
// consumes. Implementations hold the model, device and decoding state;
// the engine only moves token slices through them.
type Backend interface {
	// Tokenize encodes a prompt, truncated to at most maxTokens tokens.
	Tokenize(ctx context.Context, text string, maxTokens int) ([]int, error)

	// Generate produces a completion for the encoded prompt.
	Generate(ctx context.Context, tokens []int, params genparams.Parameters) ([]int, error)

	// Decode renders generated tokens back to text, special tokens
	// stripped.
	Decode(ctx context.Context, tokens []int) (string, error)
}

// ===== ENGINE =====

// Engine orchestrates one query at a time against a Backend.
type Engine struct {
	backend Backend
	profile model.Profile
	styler  prompt.Styler
	cache   *cache.ResponseCache

	maxRetries    int
	truncateLimit int
}

// Options tunes engine construction. Zero values mean defaults.
type Options struct {
	MaxRetries    int // retries after the first attempt; default 2
	TruncateLimit int // prompt token cap; default 512
}

// New builds an engine for the given backend and model profile.
func New(backend Backend, profile model.Profile, opts Options) *Engine {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	if opts.TruncateLimit <= 0 {
		opts.TruncateLimit = DefaultTruncateLimit
	}
	return &Engine{
		backend:       backend,
		profile:       profile,
		styler:        prompt.ForFamily(profile.Family),
		cache:         cache.New(),
		maxRetries:    opts.MaxRetries,
		truncateLimit: opts.TruncateLimit,
	}
}

// Profile returns the model profile the engine was built with.
func (e *Engine) Profile() model.Profile { return e.profile }

// CacheStats exposes response cache counters for the status surface.
func (e *Engine) CacheStats() cache.Stats { return e.cache.Stats() }

// ClearCache drops all cached answers.
func (e *Engine) ClearCache() { e.cache.Clear() }

// Result carries one processed turn, with the bookkeeping the
// transcript store records alongside the answer.
type Result struct {
	Answer   string
	Kind     classify.Kind
	Attempts int
	Cached   bool
	Duration time.Duration
}

// ProcessInput runs a query through the full pipeline and returns the
// answer text. It never returns an error and never panics outward.
func (e *Engine) ProcessInput(ctx context.Context, text string) string {
	return e.Process(ctx, text).Answer
}

// Process is ProcessInput with turn bookkeeping attached.
func (e *Engine) Process(ctx context.Context, text string) (res Result) {
	start := time.Now()
	defer func() {
		res.Duration = time.Since(start)
		if r := recover(); r != nil {
			log.Printf("engine: recovered from panic: %v", r)
			res.Answer = MsgInternal
		}
	}()

	text = strings.TrimSpace(text)
	if text == "" {
		res.Answer = MsgEmptyInput
		return res
	}

	if answer, ok := e.cache.Get(text); ok {
		log.Printf("engine: cache hit for %q", text)
		res.Answer = answer
		res.Cached = true
		res.Kind = classify.Classify(text)
		return res
	}

	kind := classify.Classify(text)
	res.Kind = kind

	// Math short-circuits the pipeline on failure: a malformed
	// expression is terminal, never retried against the model.
	var mathResult float64
	if kind == classify.KindMath {
		value, err := mathexpr.Evaluate(text)
		if err != nil {
			log.Printf("engine: math evaluation failed for %q: %v", text, err)
			res.Answer = MsgMathFailed
			return res
		}
		mathResult = value
	}

	var promptText string
	if kind == classify.KindMath {
		promptText = e.styler.FormatMath(text, mathResult)
	} else {
		promptText = e.styler.Format(text)
	}
	log.Printf("engine: formatted prompt: %q", promptText)

	params := genparams.Select(kind)
	maxTokens := e.truncateLimit
	if e.profile.ContextLength < maxTokens {
		maxTokens = e.profile.ContextLength
	}

	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		res.Attempts = attempt + 1

		response, err := e.generateOnce(ctx, promptText, params, maxTokens)
		if err != nil {
			// Backend failures are not validation failures;
			// retrying the same broken runtime will not help.
			log.Printf("engine: attempt %d failed: %v", attempt+1, err)
			res.Answer = MsgInternal
			return res
		}

		if kind != classify.KindMath {
			if !validate.IsRelevant(text, response) {
				log.Printf("engine: irrelevant response on attempt %d: %q", attempt+1, response)
				if attempt < e.maxRetries {
					promptText = e.styler.Format("I need a clear and accurate answer to: " + text)
					continue
				}
				res.Answer = MsgNoAnswer
				return res
			}
			if !validate.IsFactValid(text, response) {
				log.Printf("engine: response failed validation on attempt %d: %q", attempt+1, response)
				if attempt < e.maxRetries {
					promptText = e.styler.Format("I need a specific and factual answer to: " + text)
					continue
				}
				res.Answer = MsgNoAnswer
				return res
			}
		}

		response = strings.TrimSpace(prompt.DedupeLines(response))
		e.cache.Put(text, response)
		res.Answer = response
		return res
	}

	// Unreachable: the final attempt returns inside the loop either
	// way. Kept so the loop has a defined answer if the guard logic
	// ever changes.
	res.Answer = MsgRetriesSpent
	return res
}

// generateOnce runs one tokenize/generate/decode round trip and cleans
// the decoded text against the prompt.
func (e *Engine) generateOnce(ctx context.Context, promptText string, params genparams.Parameters, maxTokens int) (string, error) {
	tokens, err := e.backend.Tokenize(ctx, promptText, maxTokens)
	if err != nil {
		return "", fmt.Errorf("tokenize: %w", err)
	}

	out, err := e.backend.Generate(ctx, tokens, params)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}

	raw, err := e.backend.Decode(ctx, out)
	if err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}
	log.Printf("engine: raw response: %q", raw)

	return e.styler.Extract(promptText, raw), nil
}
