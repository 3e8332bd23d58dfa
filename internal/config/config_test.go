// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestBaseDirHonorsEnv(t *testing.T) {
	t.Setenv("USBAI_HOME", "/tmp/usbai-test-home")
	dir, err := BaseDir()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/usbai-test-home", dir)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.General.Model = "tinyllama"
	cfg.Engine.MaxRetries = 4
	require.NoError(t, SaveTOML(cfg, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "tinyllama", loaded.General.Model)
	assert.Equal(t, 4, loaded.Engine.MaxRetries)
}

func TestPartialFileFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[general]\nmodel = \"phi-2\"\n"), 0o600))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "phi-2", cfg.General.Model)
	assert.Equal(t, Default().Local.OllamaURL, cfg.Local.OllamaURL)
	assert.Equal(t, Default().Engine.MaxRetries, cfg.Engine.MaxRetries)
}

func TestLoadFixesInsecurePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(""), 0o644))

	_, err := LoadFromPath(path)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad_interface", func(c *Config) { c.General.Interface = "web" }},
		{"bad_url", func(c *Config) { c.Local.OllamaURL = "localhost:11434" }},
		{"negative_retries", func(c *Config) { c.Engine.MaxRetries = -1 }},
		{"excessive_retries", func(c *Config) { c.Engine.MaxRetries = 99 }},
		{"zero_attempts", func(c *Config) { c.Security.MaxAttempts = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("USBAI_MODEL", "deepseek-coder")
	t.Setenv("USBAI_INTERFACE", "gui")
	t.Setenv("USBAI_OLLAMA_URL", "http://10.0.0.5:11434")
	t.Setenv("USBAI_MAX_RETRIES", "5")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	assert.Equal(t, "deepseek-coder", cfg.General.Model)
	assert.Equal(t, "gui", cfg.General.Interface)
	assert.Equal(t, "http://10.0.0.5:11434", cfg.Local.OllamaURL)
	assert.Equal(t, 5, cfg.Engine.MaxRetries)
}

func TestEnvOverrideIgnoresGarbageRetries(t *testing.T) {
	t.Setenv("USBAI_MAX_RETRIES", "lots")

	cfg := Default()
	cfg.ApplyEnvOverrides()
	assert.Equal(t, Default().Engine.MaxRetries, cfg.Engine.MaxRetries)
}
