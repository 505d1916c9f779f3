package shell

import (
	"errors"
	"testing"
)

func TestDetectShell(t *testing.T) {
	tests := []struct {
		name           string
		shellEnv       string
		parent         string
		parentErr      error
		wantShell      ShellType
		wantMethod     string
		wantConfidence string
	}{
		{
			name:           "bash_from_shell",
			shellEnv:       "/bin/bash",
			wantShell:      ShellBash,
			wantMethod:     "$SHELL environment variable",
			wantConfidence: "high",
		},
		{
			name:           "zsh_from_shell",
			shellEnv:       "/usr/bin/zsh",
			parent:         "fish",
			wantShell:      ShellZsh,
			wantMethod:     "$SHELL environment variable",
			wantConfidence: "high",
		},
		{
			name:           "fish_from_shell",
			shellEnv:       "/usr/local/bin/fish",
			wantShell:      ShellFish,
			wantMethod:     "$SHELL environment variable",
			wantConfidence: "high",
		},
		{
			name:           "unknown_shell_falls_back_to_parent",
			shellEnv:       "/bin/ksh",
			parent:         "zsh",
			wantShell:      ShellZsh,
			wantMethod:     "parent process",
			wantConfidence: "medium",
		},
		{
			name:           "login_shell_parent",
			parent:         "-bash",
			wantShell:      ShellBash,
			wantMethod:     "parent process",
			wantConfidence: "medium",
		},
		{
			name:           "parent_lookup_fails",
			parentErr:      errors.New("no such process"),
			wantShell:      ShellUnknown,
			wantMethod:     "detection failed",
			wantConfidence: "none",
		},
		{
			name:           "parent_not_a_shell",
			parent:         "go",
			wantShell:      ShellUnknown,
			wantMethod:     "detection failed",
			wantConfidence: "none",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDetector(func(key string) string {
				if key == "SHELL" {
					return tt.shellEnv
				}
				return ""
			})
			d.parentName = func() (string, error) { return tt.parent, tt.parentErr }

			result := d.DetectShell()

			if result.Shell != tt.wantShell {
				t.Errorf("DetectShell() shell = %v, want %v", result.Shell, tt.wantShell)
			}
			if result.Method != tt.wantMethod {
				t.Errorf("DetectShell() method = %v, want %v", result.Method, tt.wantMethod)
			}
			if result.Confidence != tt.wantConfidence {
				t.Errorf("DetectShell() confidence = %v, want %v", result.Confidence, tt.wantConfidence)
			}
		})
	}
}

func TestParseShellFromPath(t *testing.T) {
	tests := []struct {
		path string
		want ShellType
	}{
		{"/bin/bash", ShellBash},
		{"/usr/bin/zsh", ShellZsh},
		{"/opt/homebrew/bin/fish", ShellFish},
		{"ZSH", ShellZsh},
		{"-zsh", ShellZsh},
		{"/bin/sh", ShellUnknown},
		{"", ShellUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := parseShellFromPath(tt.path); got != tt.want {
				t.Errorf("parseShellFromPath(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestShellType_IsValid(t *testing.T) {
	for _, s := range []ShellType{ShellBash, ShellZsh, ShellFish} {
		if !s.IsValid() {
			t.Errorf("%v.IsValid() = false", s)
		}
	}
	if ShellUnknown.IsValid() {
		t.Error("ShellUnknown.IsValid() = true")
	}
}
