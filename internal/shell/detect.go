package shell

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/v4/process"
)

// Detector finds the user's shell.
type Detector struct {
	getenv     func(string) string
	parentName func() (string, error)
}

// NewDetector returns a Detector reading $SHELL through getenv and falling
// back to the parent process name. A nil getenv uses os.Getenv.
func NewDetector(getenv func(string) string) *Detector {
	if getenv == nil {
		getenv = os.Getenv
	}
	return &Detector{getenv: getenv, parentName: parentProcessName}
}

// DetectShell detects the user's shell using multiple methods
func (d *Detector) DetectShell() *DetectionResult {
	// Method 1: $SHELL environment variable
	if shell := d.getenv("SHELL"); shell != "" {
		shellType := parseShellFromPath(shell)
		if shellType.IsValid() {
			return &DetectionResult{
				Shell:      shellType,
				Method:     "$SHELL environment variable",
				ShellPath:  shell,
				Confidence: "high",
			}
		}
	}

	// Method 2: parent process
	if d.parentName != nil {
		if name, err := d.parentName(); err == nil {
			if shellType := parseShellFromPath(name); shellType.IsValid() {
				return &DetectionResult{
					Shell:      shellType,
					Method:     "parent process",
					ShellPath:  name,
					Confidence: "medium",
				}
			}
		}
	}

	return &DetectionResult{
		Shell:      ShellUnknown,
		Method:     "detection failed",
		Confidence: "none",
	}
}

// parseShellFromPath extracts the shell type from a shell binary path
// Examples:
//   - /bin/bash -> bash
//   - /usr/bin/zsh -> zsh
//   - -zsh (login shell) -> zsh
func parseShellFromPath(shellPath string) ShellType {
	baseName := strings.ToLower(filepath.Base(shellPath))
	baseName = strings.TrimPrefix(baseName, "-")

	switch baseName {
	case "bash":
		return ShellBash
	case "zsh":
		return ShellZsh
	case "fish":
		return ShellFish
	default:
		return ShellUnknown
	}
}

// parentProcessName returns the executable name of the parent process.
func parentProcessName() (string, error) {
	p, err := process.NewProcess(int32(os.Getppid()))
	if err != nil {
		return "", err
	}
	return p.Name()
}
