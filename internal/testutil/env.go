// Package testutil provides utilities for testing the suntheme bootstrapper in
// isolation.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// Env holds the isolated directories created by SetupTestEnv.
type Env struct {
	Root       string
	Home       string
	ConfigDir  string // $HOME/.config/suntheme
	InstallDir string // value of SUNTHEME_INSTALL_DIR
	TempDir    string // value of TMPDIR
}

// SetupTestEnv creates isolated test directories for each test.
// This ensures tests never interfere with:
// - System installations in /usr/local/bin
// - The user's actual suntheme configuration
// - Staging areas and lock files of a real bootstrapper run
//
// The cleanup function is automatically handled by t.TempDir(),
// so callers don't need to manually clean up.
func SetupTestEnv(t *testing.T) *Env {
	t.Helper()

	tmpDir := t.TempDir()
	env := &Env{
		Root:       tmpDir,
		Home:       filepath.Join(tmpDir, "home"),
		ConfigDir:  filepath.Join(tmpDir, "home", ".config", "suntheme"),
		InstallDir: filepath.Join(tmpDir, "bin"),
		TempDir:    filepath.Join(tmpDir, "tmp"),
	}

	t.Setenv("HOME", env.Home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(env.Home, ".config"))
	t.Setenv("SUNTHEME_INSTALL_DIR", env.InstallDir)
	t.Setenv("TMPDIR", env.TempDir)

	for _, dir := range []string{env.Home, env.ConfigDir, env.InstallDir, env.TempDir} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			t.Fatalf("failed to create test directory %s: %v", dir, err)
		}
	}

	return env
}
