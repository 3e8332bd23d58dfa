// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/usbai/internal/config"
)

func TestParseArgsCommands(t *testing.T) {
	tests := []struct {
		name string
		argv []string
		want Command
	}{
		{"no args defaults to chat", nil, CmdChat},
		{"explicit chat", []string{"chat"}, CmdChat},
		{"ask", []string{"ask", "hello"}, CmdAsk},
		{"gui", []string{"gui"}, CmdGUI},
		{"voice", []string{"voice"}, CmdVoice},
		{"models", []string{"models"}, CmdModels},
		{"model alias", []string{"model"}, CmdModels},
		{"status", []string{"status"}, CmdStatus},
		{"status alias", []string{"s"}, CmdStatus},
		{"config", []string{"config"}, CmdConfig},
		{"convert", []string{"convert", "src", "name"}, CmdConvert},
		{"wipe", []string{"wipe"}, CmdWipe},
		{"version", []string{"version"}, CmdVersion},
		{"version flag", []string{"--version"}, CmdVersion},
		{"help", []string{"help"}, CmdHelp},
		{"help flag", []string{"-h"}, CmdHelp},
		{"mixed case", []string{"STATUS"}, CmdStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, _ := ParseArgs(tt.argv)
			assert.Equal(t, tt.want, cmd)
		})
	}
}

func TestParseArgsBareTextIsAQuestion(t *testing.T) {
	cmd, args := ParseArgs([]string{"What", "is", "the", "capital", "of", "France?"})
	assert.Equal(t, CmdAsk, cmd)
	assert.Equal(t, "What is the capital of France?", args.Query)
}

func TestParseArgsAskJoinsQuery(t *testing.T) {
	cmd, args := ParseArgs([]string{"ask", "what", "is", "2+2"})
	require.Equal(t, CmdAsk, cmd)
	assert.Equal(t, "what is 2+2", args.Query)
}

func TestParseArgsGlobalFlags(t *testing.T) {
	tests := []struct {
		name string
		argv []string
		want func(t *testing.T, cmd Command, args Args)
	}{
		{
			name: "model flag before command",
			argv: []string{"--model", "tinyllama", "status"},
			want: func(t *testing.T, cmd Command, args Args) {
				assert.Equal(t, CmdStatus, cmd)
				assert.Equal(t, "tinyllama", args.Model)
			},
		},
		{
			name: "short model flag after command",
			argv: []string{"ask", "hi", "-m", "phi-2"},
			want: func(t *testing.T, cmd Command, args Args) {
				assert.Equal(t, CmdAsk, cmd)
				assert.Equal(t, "phi-2", args.Model)
				assert.Equal(t, "hi", args.Query)
			},
		},
		{
			name: "quiet and verbose",
			argv: []string{"-q", "-v"},
			want: func(t *testing.T, cmd Command, args Args) {
				assert.Equal(t, CmdChat, cmd)
				assert.True(t, args.Quiet)
				assert.True(t, args.Verbose)
			},
		},
		{
			name: "model flag alone stays in chat",
			argv: []string{"-m", "gemma-3-1b-it"},
			want: func(t *testing.T, cmd Command, args Args) {
				assert.Equal(t, CmdChat, cmd)
				assert.Equal(t, "gemma-3-1b-it", args.Model)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, args := ParseArgs(tt.argv)
			tt.want(t, cmd, args)
		})
	}
}

func TestParseConfigArgs(t *testing.T) {
	tests := []struct {
		name string
		argv []string
		sub  string
		key  string
		val  string
	}{
		{"bare config shows", []string{"config"}, "show", "", ""},
		{"get", []string{"config", "get", "general.model"}, "get", "general.model", ""},
		{"set", []string{"config", "set", "general.model", "phi-2"}, "set", "general.model", "phi-2"},
		{"set joins value", []string{"config", "set", "ui.theme", "dark", "mode"}, "set", "ui.theme", "dark mode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, args := ParseArgs(tt.argv)
			require.Equal(t, CmdConfig, cmd)
			assert.Equal(t, tt.sub, args.Subcommand)
			assert.Equal(t, tt.key, args.ConfigKey)
			assert.Equal(t, tt.val, args.ConfigVal)
		})
	}
}

func TestParseConvertArgs(t *testing.T) {
	cmd, args := ParseArgs([]string{"convert", "./model.safetensors", "my-model", "--format", "huggingface"})
	require.Equal(t, CmdConvert, cmd)
	assert.Equal(t, "./model.safetensors", args.SourcePath)
	assert.Equal(t, "my-model", args.ModelName)
	assert.Equal(t, "huggingface", args.SourceFormat)

	_, args = ParseArgs([]string{"convert", "-f", "onnx", "src", "name"})
	assert.Equal(t, "onnx", args.SourceFormat)
	assert.Equal(t, "src", args.SourcePath)
	assert.Equal(t, "name", args.ModelName)
}

func TestConfigGetSetRoundTrip(t *testing.T) {
	cfg := config.Default()

	require.NoError(t, configSet(cfg, "general.model", "phi-2"))
	got, err := configGet(cfg, "general.model")
	require.NoError(t, err)
	assert.Equal(t, "phi-2", got)

	require.NoError(t, configSet(cfg, "engine.max_retries", "5"))
	assert.Equal(t, 5, cfg.Engine.MaxRetries)

	require.NoError(t, configSet(cfg, "ui.markdown", "false"))
	assert.False(t, cfg.UI.Markdown)

	assert.Error(t, configSet(cfg, "engine.max_retries", "lots"))
	assert.Error(t, configSet(cfg, "nope.nope", "x"))
	_, err = configGet(cfg, "nope.nope")
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", Truncate("hello", 10))
	assert.Equal(t, "hel...", Truncate("hello world", 6))
	assert.Equal(t, "", Truncate("", 5))
}
