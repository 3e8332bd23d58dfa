// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// installer.go - the bubbletea install wizard.
package main

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7C3AED")).
			Bold(true)

	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F43F5E"))
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

const logo = `
 _   _ ____  ____       _    ___
| | | / ___|| __ )     / \  |_ _|
| | | \___ \|  _ \    / _ \  | |
| |_| |___) | |_) |  / ___ \ | |
 \___/|____/|____/  /_/   \_\___|
`

const tagline = "Your AI assistant, on a stick"

// =============================================================================
// MODEL
// =============================================================================

// Phase tracks installer progress.
type Phase int

const (
	PhaseWelcome Phase = iota
	PhaseSystemCheck
	PhaseInstalling
	PhaseComplete
	PhaseFailed
)

// CheckResult holds one system check outcome.
type CheckResult struct {
	Name    string
	Passed  bool
	Warning bool
	Message string
}

// Installer is the bubbletea model for the wizard.
type Installer struct {
	phase       Phase
	spin        spinner.Model
	checks      []CheckResult
	checkIndex  int
	installedTo string
	configPath  string
	err         error
	width       int
	height      int
}

func NewInstaller() *Installer {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#7C3AED"))
	return &Installer{phase: PhaseWelcome, spin: s}
}

func (i *Installer) Init() tea.Cmd {
	return i.spin.Tick
}

// =============================================================================
// MESSAGES
// =============================================================================

type checkCompleteMsg struct {
	index  int
	result CheckResult
}

type installCompleteMsg struct {
	installedTo string
	configPath  string
	err         error
}

func (i *Installer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		i.width = msg.Width
		i.height = msg.Height
		return i, nil

	case tea.KeyMsg:
		return i.handleKey(msg)

	case checkCompleteMsg:
		i.checks = append(i.checks, msg.result)
		i.checkIndex = msg.index + 1
		if i.checkIndex < len(checkNames) {
			return i, i.runCheck(i.checkIndex)
		}
		if i.checksBlocked() {
			i.phase = PhaseFailed
			return i, nil
		}
		i.phase = PhaseInstalling
		return i, runInstallCmd

	case installCompleteMsg:
		if msg.err != nil {
			i.err = msg.err
			i.phase = PhaseFailed
			return i, nil
		}
		i.installedTo = msg.installedTo
		i.configPath = msg.configPath
		i.phase = PhaseComplete
		return i, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		i.spin, cmd = i.spin.Update(msg)
		return i, cmd
	}
	return i, nil
}

func (i *Installer) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return i, tea.Quit
	case "enter":
		switch i.phase {
		case PhaseWelcome:
			i.phase = PhaseSystemCheck
			return i, i.runCheck(0)
		case PhaseComplete, PhaseFailed:
			return i, tea.Quit
		}
	}
	return i, nil
}

// checksBlocked reports whether any hard check failed. Warnings do not
// block the install.
func (i *Installer) checksBlocked() bool {
	for _, c := range i.checks {
		if !c.Passed && !c.Warning {
			return true
		}
	}
	return false
}

// =============================================================================
// CHECKS
// =============================================================================

var checkNames = []string{"Operating system", "Install target", "Ollama", "Disk space"}

func (i *Installer) runCheck(index int) tea.Cmd {
	return func() tea.Msg {
		// Pause briefly so results read as steps rather than a flash.
		time.Sleep(150 * time.Millisecond)
		var result CheckResult
		switch index {
		case 0:
			result = checkOS()
		case 1:
			result = checkInstallTarget()
		case 2:
			result = checkOllama()
		case 3:
			result = checkDisk()
		}
		return checkCompleteMsg{index: index, result: result}
	}
}

func checkOS() CheckResult {
	return CheckResult{
		Name:    "Operating system",
		Passed:  true,
		Message: runtime.GOOS + "/" + runtime.GOARCH,
	}
}

func checkInstallTarget() CheckResult {
	dir, err := installDir()
	if err != nil {
		return CheckResult{Name: "Install target", Message: err.Error()}
	}
	if _, err := sourceBinary(); err != nil {
		return CheckResult{Name: "Install target", Message: err.Error()}
	}
	return CheckResult{Name: "Install target", Passed: true, Message: dir}
}

func checkOllama() CheckResult {
	installed, running := ollamaState()
	switch {
	case !installed:
		return CheckResult{
			Name:    "Ollama",
			Warning: true,
			Message: "not installed; visit https://ollama.ai",
		}
	case !running:
		return CheckResult{
			Name:    "Ollama",
			Warning: true,
			Message: "installed but not running; run: ollama serve",
		}
	default:
		return CheckResult{Name: "Ollama", Passed: true, Message: "running"}
	}
}

const minDiskBytes = 500 * 1024 * 1024

func checkDisk() CheckResult {
	dir, err := installDir()
	if err != nil {
		return CheckResult{Name: "Disk space", Message: err.Error()}
	}
	free, err := getFreeDiskSpace(dir)
	if err != nil {
		// Target may not exist yet; not a blocker.
		return CheckResult{Name: "Disk space", Passed: true, Warning: true, Message: "could not measure"}
	}
	if free < minDiskBytes {
		return CheckResult{
			Name:    "Disk space",
			Message: fmt.Sprintf("%.0f MB free, need 500 MB", float64(free)/1e6),
		}
	}
	return CheckResult{
		Name:    "Disk space",
		Passed:  true,
		Message: fmt.Sprintf("%.1f GB free", float64(free)/1e9),
	}
}

// =============================================================================
// INSTALL
// =============================================================================

func runInstallCmd() tea.Msg {
	installedTo, err := installBinary()
	if err != nil {
		return installCompleteMsg{err: err}
	}
	configPath, _, err := ensureConfig()
	if err != nil {
		return installCompleteMsg{err: err}
	}
	return installCompleteMsg{installedTo: installedTo, configPath: configPath}
}

// =============================================================================
// VIEW
// =============================================================================

func (i *Installer) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(logo))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("  " + tagline))
	b.WriteString("\n\n")

	switch i.phase {
	case PhaseWelcome:
		b.WriteString("  This installer will:\n")
		b.WriteString("    1. Check your system\n")
		b.WriteString("    2. Install the usbai binary\n")
		b.WriteString("    3. Create a default configuration\n\n")
		b.WriteString(dimStyle.Render("  Press Enter to begin, q to quit."))

	case PhaseSystemCheck, PhaseInstalling:
		b.WriteString(i.viewChecks())
		if i.phase == PhaseInstalling {
			b.WriteString(fmt.Sprintf("\n  %s Installing...\n", i.spin.View()))
		}

	case PhaseComplete:
		b.WriteString(i.viewChecks())
		b.WriteString("\n" + okStyle.Render("  Installation complete.") + "\n\n")
		b.WriteString("  Binary:  " + i.installedTo + "\n")
		b.WriteString("  Config:  " + i.configPath + "\n")
		if hint := pathHint(i.installedTo); hint != "" {
			b.WriteString("\n  " + warnStyle.Render(hint) + "\n")
		}
		b.WriteString("\n  Start with: usbai\n")
		b.WriteString(dimStyle.Render("\n  Press Enter to exit."))

	case PhaseFailed:
		b.WriteString(i.viewChecks())
		msg := "a required check failed"
		if i.err != nil {
			msg = i.err.Error()
		}
		b.WriteString("\n" + errStyle.Render("  Installation failed: "+msg) + "\n")
		b.WriteString(dimStyle.Render("\n  Press Enter to exit."))
	}

	return b.String()
}

func (i *Installer) viewChecks() string {
	var b strings.Builder
	b.WriteString("  System check\n")
	for _, c := range i.checks {
		switch {
		case c.Passed && !c.Warning:
			b.WriteString(okStyle.Render("    [ok] "))
		case c.Warning:
			b.WriteString(warnStyle.Render("    [!!] "))
		default:
			b.WriteString(errStyle.Render("    [xx] "))
		}
		b.WriteString(fmt.Sprintf("%-18s %s\n", c.Name, dimStyle.Render(c.Message)))
	}
	if i.phase == PhaseSystemCheck && i.checkIndex < len(checkNames) {
		b.WriteString(fmt.Sprintf("    %s %s\n", i.spin.View(), checkNames[i.checkIndex]))
	}
	return b.String()
}
