// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging routes the standard log package to a file sink.
//
// Everything in the program logs through stdlib log.Printf; this package
// only decides where those lines land. The sink is logs/usbai.log under
// the base directory, created on first use. The wipe operation removes
// the same file, so FilePath is exported for it.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
)

const (
	logDirName  = "logs"
	logFileName = "usbai.log"
)

// FilePath returns the log file location under baseDir.
func FilePath(baseDir string) string {
	return filepath.Join(baseDir, logDirName, logFileName)
}

// Setup directs the standard logger to the file sink under baseDir and
// returns a close function. Callers that want console logs as well pass
// echo=true.
func Setup(baseDir string, echo bool) (func() error, error) {
	dir := filepath.Join(baseDir, logDirName)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	path := filepath.Join(dir, logFileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}

	var sink io.Writer = f
	if echo {
		sink = io.MultiWriter(f, os.Stderr)
	}
	log.SetOutput(sink)
	log.SetFlags(log.LstdFlags)

	return func() error {
		log.SetOutput(os.Stderr)
		return f.Close()
	}, nil
}

// Wipe removes the log file. Missing files are not an error.
func Wipe(baseDir string) error {
	err := os.Remove(FilePath(baseDir))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing log file: %w", err)
	}
	return nil
}
