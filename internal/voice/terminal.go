// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package voice

import (
	"bufio"
	"context"
	"fmt"
	"io"
)

// TerminalRecognizer reads typed utterances one line at a time. It
// stands in for speech recognition on machines without a microphone
// stack, and in tests.
type TerminalRecognizer struct {
	scanner *bufio.Scanner
}

func NewTerminalRecognizer(r io.Reader) *TerminalRecognizer {
	return &TerminalRecognizer{scanner: bufio.NewScanner(r)}
}

func (t *TerminalRecognizer) Listen(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !t.scanner.Scan() {
		if err := t.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return t.scanner.Text(), nil
}

// TerminalSpeaker prints spoken lines instead of synthesizing audio.
type TerminalSpeaker struct {
	w io.Writer
}

func NewTerminalSpeaker(w io.Writer) *TerminalSpeaker {
	return &TerminalSpeaker{w: w}
}

func (t *TerminalSpeaker) Say(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(t.w, text)
	return err
}
