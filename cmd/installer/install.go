// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// install.go - the filesystem work shared by the TUI and text modes.
package main

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/jeranaias/usbai/internal/config"
)

// binaryName is the assistant binary expected next to the installer.
func binaryName() string {
	if runtime.GOOS == "windows" {
		return "usbai.exe"
	}
	return "usbai"
}

// installDir is where the binary lands. Per-user so no elevation is
// needed; the directory is commonly on PATH already.
func installDir() (string, error) {
	if runtime.GOOS == "windows" {
		base := os.Getenv("LOCALAPPDATA")
		if base == "" {
			return "", fmt.Errorf("LOCALAPPDATA is not set")
		}
		return filepath.Join(base, "Programs", "USB-AI"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "bin"), nil
}

// sourceBinary locates the usbai binary shipped alongside the installer.
func sourceBinary() (string, error) {
	self, err := os.Executable()
	if err != nil {
		return "", err
	}
	src := filepath.Join(filepath.Dir(self), binaryName())
	if _, err := os.Stat(src); err != nil {
		return "", fmt.Errorf("could not find %s next to the installer: %w", binaryName(), err)
	}
	return src, nil
}

// installBinary copies the assistant into the install directory and
// returns the installed path.
func installBinary() (string, error) {
	src, err := sourceBinary()
	if err != nil {
		return "", err
	}
	dir, err := installDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	dst := filepath.Join(dir, binaryName())
	if err := copyFile(src, dst); err != nil {
		return "", err
	}
	if err := os.Chmod(dst, 0o755); err != nil {
		return "", err
	}
	return dst, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}

// ensureConfig writes the default configuration unless one exists.
// Returns the config path and whether it was created.
func ensureConfig() (string, bool, error) {
	path, err := config.Path()
	if err != nil {
		return "", false, err
	}
	if _, err := os.Stat(path); err == nil {
		return path, false, nil
	}
	if err := config.Save(config.Default()); err != nil {
		return "", false, err
	}
	return path, true, nil
}

// pathHint tells the user how to reach the binary when the install
// directory is not on PATH.
func pathHint(installedTo string) string {
	dir := filepath.Dir(installedTo)
	if onPath(dir) {
		return ""
	}
	if runtime.GOOS == "windows" {
		return fmt.Sprintf("Add %s to your PATH (Settings > Environment Variables).", dir)
	}
	return fmt.Sprintf("Add %s to your PATH, e.g.\n    export PATH=\"$PATH:%s\"", dir, dir)
}

func onPath(dir string) bool {
	for _, p := range filepath.SplitList(os.Getenv("PATH")) {
		if p == dir {
			return true
		}
	}
	return false
}

// ollamaState probes for the model server.
func ollamaState() (installed, running bool) {
	if _, err := exec.LookPath("ollama"); err != nil {
		return false, false
	}
	if err := exec.Command("ollama", "list").Run(); err != nil {
		return true, false
	}
	return true, true
}

// runUninstall removes the installed binary. The data directory with
// config and transcripts is kept.
func runUninstall() error {
	dir, err := installDir()
	if err != nil {
		return err
	}
	path := filepath.Join(dir, binaryName())
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			fmt.Println("usbai is not installed.")
			return nil
		}
		return err
	}
	fmt.Printf("Removed %s\n", path)
	fmt.Println("Configuration and transcripts under ~/.usbai were kept.")
	return nil
}
