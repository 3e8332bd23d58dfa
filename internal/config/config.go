// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for usbai.
//
// Configuration lives in TOML at <base>/config.toml, where <base> is
// $USBAI_HOME or ~/.usbai. Missing files fall back to built-in defaults;
// environment variable overrides are applied last.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/usbai/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete usbai configuration.
type Config struct {
	Version string `toml:"version"`

	General  GeneralConfig  `toml:"general"`
	Local    LocalConfig    `toml:"local"`
	Engine   EngineConfig   `toml:"engine"`
	Security SecurityConfig `toml:"security"`
	UI       UIConfig       `toml:"ui"`
	History  HistoryConfig  `toml:"history"`
}

// GeneralConfig selects the model and default surface.
type GeneralConfig struct {
	// Model is the model name resolved against the profile registry.
	Model string `toml:"model"`
	// Interface is the default surface: "cli", "gui" or "voice".
	Interface string `toml:"interface"`
}

// LocalConfig contains the Ollama server settings.
type LocalConfig struct {
	// OllamaURL is the URL of the local Ollama server.
	OllamaURL string `toml:"ollama_url"`
	// AutoStart launches the server when it is not reachable.
	AutoStart bool `toml:"auto_start"`
}

// EngineConfig tunes the processing pipeline.
type EngineConfig struct {
	// MaxRetries is the number of regeneration attempts after the first.
	MaxRetries int `toml:"max_retries"`
	// TruncateLimit caps prompt length in tokens.
	TruncateLimit int `toml:"truncate_limit"`
}

// SecurityConfig holds PIN authentication state.
type SecurityConfig struct {
	// PINHash is the PBKDF2 hash of the access PIN, hex encoded.
	// Empty means no PIN is set and authentication is skipped.
	PINHash string `toml:"pin_hash"`
	// PINSalt is the hex-encoded salt for PINHash.
	PINSalt string `toml:"pin_salt"`
	// MaxAttempts is the failed-PIN limit before the program exits.
	MaxAttempts int `toml:"max_attempts"`
}

// UIConfig contains chat surface settings.
type UIConfig struct {
	Theme string `toml:"theme"`
	// Markdown renders answers through the markdown renderer in the GUI.
	Markdown bool `toml:"markdown"`
}

// HistoryConfig controls transcript persistence.
type HistoryConfig struct {
	// Enabled persists session transcripts to the local database.
	Enabled bool `toml:"enabled"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",

		General: GeneralConfig{
			Model:     "gemma-3-1b-it",
			Interface: "cli",
		},

		Local: LocalConfig{
			OllamaURL: "http://127.0.0.1:11434",
			AutoStart: true,
		},

		Engine: EngineConfig{
			MaxRetries:    2,
			TruncateLimit: 512,
		},

		Security: SecurityConfig{
			PINHash:     "",
			PINSalt:     "",
			MaxAttempts: 3,
		},

		UI: UIConfig{
			Theme:    "dark",
			Markdown: true,
		},

		History: HistoryConfig{
			Enabled: true,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// BaseDir returns the usbai data directory: $USBAI_HOME if set, else
// ~/.usbai.
func BaseDir() (string, error) {
	if dir := os.Getenv("USBAI_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".usbai"), nil
}

// Path returns the path to the TOML config file.
func Path() (string, error) {
	dir, err := BaseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureBaseDir ensures the data directory exists.
func EnsureBaseDir() error {
	dir, err := BaseDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o700)
}

// ensureSecurePermissions fixes overly permissive config files. The file
// carries the PIN hash, so it must stay owner-only.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0o600 {
		if err := os.Chmod(path, 0o600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

// Load reads the config file, fills defaults and applies environment
// overrides. A missing file yields defaults without error.
func Load() (*Config, error) {
	cfg := Default()

	path, err := Path()
	if err != nil {
		return nil, err
	}
	if _, statErr := os.Stat(path); statErr == nil {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML loads configuration from a TOML file into cfg.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return fillDefaults(cfg)
}

// LoadFromPath loads a config from an explicit path, for tests and the
// installer.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if err := LoadTOML(cfg, path); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// fillDefaults replaces zero values with defaults after a partial decode.
func fillDefaults(cfg *Config) error {
	defaults := Default()

	if cfg.Version == "" {
		cfg.Version = defaults.Version
	}

	if cfg.General.Model == "" {
		cfg.General.Model = defaults.General.Model
	}
	if cfg.General.Interface == "" {
		cfg.General.Interface = defaults.General.Interface
	}

	if cfg.Local.OllamaURL == "" {
		cfg.Local.OllamaURL = defaults.Local.OllamaURL
	}

	if cfg.Engine.MaxRetries == 0 {
		cfg.Engine.MaxRetries = defaults.Engine.MaxRetries
	}
	if cfg.Engine.TruncateLimit == 0 {
		cfg.Engine.TruncateLimit = defaults.Engine.TruncateLimit
	}

	if cfg.Security.MaxAttempts == 0 {
		cfg.Security.MaxAttempts = defaults.Security.MaxAttempts
	}

	if cfg.UI.Theme == "" {
		cfg.UI.Theme = defaults.UI.Theme
	}

	return nil
}

// Save writes the configuration to the default TOML path.
func Save(cfg *Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration to a TOML file with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	validInterfaces := map[string]bool{"cli": true, "gui": true, "voice": true}
	if !validInterfaces[strings.ToLower(c.General.Interface)] {
		errs = append(errs, ValidationError{
			Field:   "general.interface",
			Message: fmt.Sprintf("invalid interface '%s', must be one of: cli, gui, voice", c.General.Interface),
		})
	}

	if !strings.HasPrefix(c.Local.OllamaURL, "http://") && !strings.HasPrefix(c.Local.OllamaURL, "https://") {
		errs = append(errs, ValidationError{
			Field:   "local.ollama_url",
			Message: fmt.Sprintf("invalid URL '%s', must start with http:// or https://", c.Local.OllamaURL),
		})
	}

	if c.Engine.MaxRetries < 0 || c.Engine.MaxRetries > 10 {
		errs = append(errs, ValidationError{
			Field:   "engine.max_retries",
			Message: fmt.Sprintf("out of range %d, must be 0-10", c.Engine.MaxRetries),
		})
	}
	if c.Engine.TruncateLimit < 0 {
		errs = append(errs, ValidationError{
			Field:   "engine.truncate_limit",
			Message: "must not be negative",
		})
	}

	if c.Security.MaxAttempts < 1 {
		errs = append(errs, ValidationError{
			Field:   "security.max_attempts",
			Message: "must be at least 1",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - USBAI_MODEL: overrides general.model
//   - USBAI_INTERFACE: overrides general.interface
//   - USBAI_OLLAMA_URL: overrides local.ollama_url
//   - USBAI_MAX_RETRIES: overrides engine.max_retries
func (c *Config) ApplyEnvOverrides() {
	if model := os.Getenv("USBAI_MODEL"); model != "" {
		c.General.Model = model
	}
	if iface := os.Getenv("USBAI_INTERFACE"); iface != "" {
		c.General.Interface = iface
	}
	if url := os.Getenv("USBAI_OLLAMA_URL"); url != "" {
		c.Local.OllamaURL = url
	}
	if retries := os.Getenv("USBAI_MAX_RETRIES"); retries != "" {
		if n, err := strconv.Atoi(retries); err == nil {
			c.Engine.MaxRetries = n
		}
	}
}
