// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package voice runs the wake-word gated voice loop.
//
// Audio capture, speech recognition and synthesis are external concerns
// behind the Recognizer and Speaker interfaces; this package only
// implements the conversation flow: wait for the wake phrase, take one
// utterance as the query, speak the engine's answer.
package voice

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
)

// WakeWord is the activation phrase, compared case-insensitively.
const WakeWord = "hey ai"

// Greeting is spoken after the wake word is heard.
const Greeting = "How can I help?"

// Recognizer transcribes one utterance. Implementations block until
// speech is recognized or the context is done.
type Recognizer interface {
	Listen(ctx context.Context) (string, error)
}

// Speaker voices a line of text.
type Speaker interface {
	Say(ctx context.Context, text string) error
}

// Processor produces an answer for a spoken query. The engine satisfies
// this.
type Processor interface {
	ProcessInput(ctx context.Context, text string) string
}

// Loop ties a recognizer, a speaker and the engine together.
type Loop struct {
	recognizer Recognizer
	speaker    Speaker
	processor  Processor
}

// NewLoop builds the voice loop.
func NewLoop(r Recognizer, s Speaker, p Processor) *Loop {
	return &Loop{recognizer: r, speaker: s, processor: p}
}

// IsWakeWord reports whether an utterance is the wake phrase.
func IsWakeWord(text string) bool {
	return strings.ToLower(strings.TrimSpace(text)) == WakeWord
}

// Run processes wake-word gated queries until the context is cancelled
// or the recognizer fails.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		heard, err := l.recognizer.Listen(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			// Unrecognized audio is normal; keep listening.
			log.Printf("voice: recognition error: %v", err)
			continue
		}
		if !IsWakeWord(heard) {
			continue
		}

		if err := l.speaker.Say(ctx, Greeting); err != nil {
			return err
		}

		query, err := l.recognizer.Listen(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			log.Printf("voice: recognition error: %v", err)
			continue
		}

		answer := l.processor.ProcessInput(ctx, query)
		if err := l.speaker.Say(ctx, answer); err != nil {
			return err
		}
	}
}
