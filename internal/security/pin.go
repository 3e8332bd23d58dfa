// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package security implements PIN authentication for the device and the
// log wipe operation.
//
// The PIN is never stored. The config carries a PBKDF2-SHA-256 hash and
// a random salt; verification re-derives and compares in constant time.
package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/term"

	"github.com/jeranaias/usbai/internal/config"
)

const (
	// KeySize is the derived hash length in bytes.
	KeySize = 32
	// SaltSize is the random salt length in bytes.
	SaltSize = 16
	// PBKDF2Iterations follows current OWASP guidance for SHA-256.
	PBKDF2Iterations = 600000

	// MinPINLength rejects trivially short PINs at set time.
	MinPINLength = 4
)

// ErrLockedOut is returned when the failed-attempt limit is reached.
var ErrLockedOut = errors.New("too many failed PIN attempts")

// ErrPINTooShort is returned by SetPIN for PINs under MinPINLength.
var ErrPINTooShort = errors.New("PIN too short")

// HashPIN derives the storable hash for a PIN with a fresh random salt.
// Both return values are hex encoded for the config file.
func HashPIN(pin string) (hash, salt string, err error) {
	rawSalt := make([]byte, SaltSize)
	if _, err := io.ReadFull(rand.Reader, rawSalt); err != nil {
		return "", "", fmt.Errorf("failed to generate salt: %w", err)
	}
	key := pbkdf2.Key([]byte(pin), rawSalt, PBKDF2Iterations, KeySize, sha256.New)
	return hex.EncodeToString(key), hex.EncodeToString(rawSalt), nil
}

// VerifyPIN checks a candidate PIN against the stored hash and salt.
func VerifyPIN(pin, hashHex, saltHex string) bool {
	storedHash, err := hex.DecodeString(hashHex)
	if err != nil {
		return false
	}
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return false
	}
	derived := pbkdf2.Key([]byte(pin), salt, PBKDF2Iterations, KeySize, sha256.New)
	return subtle.ConstantTimeCompare(derived, storedHash) == 1
}

// SetPIN stores a new PIN hash in the config.
func SetPIN(cfg *config.Config, pin string) error {
	if len(pin) < MinPINLength {
		return fmt.Errorf("%w: need at least %d characters", ErrPINTooShort, MinPINLength)
	}
	hash, salt, err := HashPIN(pin)
	if err != nil {
		return err
	}
	cfg.Security.PINHash = hash
	cfg.Security.PINSalt = salt
	return nil
}

// ClearPIN removes PIN protection from the config.
func ClearPIN(cfg *config.Config) {
	cfg.Security.PINHash = ""
	cfg.Security.PINSalt = ""
}

// PINSet reports whether a PIN is configured.
func PINSet(cfg *config.Config) bool {
	return cfg.Security.PINHash != ""
}

// ReadPIN prompts for a PIN without echoing. When stdin is not a
// terminal (tests, pipes) it falls back to a plain line read.
func ReadPIN(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	defer fmt.Fprintln(os.Stderr)

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		pin, err := term.ReadPassword(fd)
		if err != nil {
			return "", fmt.Errorf("failed to read PIN: %w", err)
		}
		return string(pin), nil
	}

	var pin string
	if _, err := fmt.Fscanln(os.Stdin, &pin); err != nil {
		return "", fmt.Errorf("failed to read PIN: %w", err)
	}
	return pin, nil
}

// Authenticate prompts until the PIN matches or the attempt limit from
// the config is exhausted. A config without a PIN passes immediately.
func Authenticate(cfg *config.Config) error {
	if !PINSet(cfg) {
		return nil
	}

	for attempt := 0; attempt < cfg.Security.MaxAttempts; attempt++ {
		pin, err := ReadPIN("Enter PIN: ")
		if err != nil {
			return err
		}
		if VerifyPIN(pin, cfg.Security.PINHash, cfg.Security.PINSalt) {
			return nil
		}
		fmt.Fprintln(os.Stderr, "Incorrect PIN.")
	}
	return ErrLockedOut
}
