// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package voice

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedRecognizer struct {
	lines []string
	i     int
}

func (r *scriptedRecognizer) Listen(ctx context.Context) (string, error) {
	if r.i >= len(r.lines) {
		return "", context.Canceled
	}
	line := r.lines[r.i]
	r.i++
	return line, nil
}

type recordingSpeaker struct {
	said []string
}

func (s *recordingSpeaker) Say(_ context.Context, text string) error {
	s.said = append(s.said, text)
	return nil
}

type echoProcessor struct{}

func (echoProcessor) ProcessInput(_ context.Context, text string) string {
	return "answer to " + text
}

func TestIsWakeWord(t *testing.T) {
	assert.True(t, IsWakeWord("hey ai"))
	assert.True(t, IsWakeWord("  Hey AI  "))
	assert.False(t, IsWakeWord("hey there"))
	assert.False(t, IsWakeWord(""))
}

func TestLoopIgnoresSpeechBeforeWakeWord(t *testing.T) {
	rec := &scriptedRecognizer{lines: []string{
		"just talking",
		"hey ai",
		"what is the capital of France",
	}}
	spk := &recordingSpeaker{}

	err := NewLoop(rec, spk, echoProcessor{}).Run(context.Background())
	require.ErrorIs(t, err, context.Canceled)

	require.Len(t, spk.said, 2)
	assert.Equal(t, Greeting, spk.said[0])
	assert.Equal(t, "answer to what is the capital of France", spk.said[1])
}

func TestLoopStopsWhenSpeakerFails(t *testing.T) {
	rec := &scriptedRecognizer{lines: []string{"hey ai", "q"}}
	failing := errors.New("audio device gone")

	err := NewLoop(rec, speakerFunc(func(context.Context, string) error { return failing }), echoProcessor{}).
		Run(context.Background())
	assert.ErrorIs(t, err, failing)
}

type speakerFunc func(context.Context, string) error

func (f speakerFunc) Say(ctx context.Context, text string) error { return f(ctx, text) }

func TestLoopHonorsContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := &scriptedRecognizer{lines: []string{"hey ai"}}
	err := NewLoop(rec, &recordingSpeaker{}, echoProcessor{}).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTerminalRecognizerEndsLoopAtEOF(t *testing.T) {
	rec := NewTerminalRecognizer(strings.NewReader("hey ai\n2+2\n"))
	var out bytes.Buffer

	err := NewLoop(rec, NewTerminalSpeaker(&out), echoProcessor{}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Greeting+"\nanswer to 2+2\n", out.String())
}
