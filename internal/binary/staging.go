package binary

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// stagingPrefix names staging directories: <tmp>/suntheme-install-<uuid>.
const stagingPrefix = "suntheme-install-"

// Staging is the private temporary directory that owns every downloaded and
// extracted byte of one run. Close removes it and may be called any number
// of times.
type Staging struct {
	dir string
}

// NewStaging creates a fresh staging directory (mode 0700) under parent, or
// under os.TempDir() when parent is empty.
func NewStaging(parent string) (*Staging, error) {
	if parent == "" {
		parent = os.TempDir()
	}

	dir := filepath.Join(parent, stagingPrefix+uuid.NewString())
	if err := os.Mkdir(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create staging area: %w", err)
	}

	return &Staging{dir: dir}, nil
}

// Path returns the staging directory.
func (s *Staging) Path() string {
	return s.dir
}

// Join returns a path inside the staging directory.
func (s *Staging) Join(elem ...string) string {
	return filepath.Join(append([]string{s.dir}, elem...)...)
}

// Close removes the staging directory and everything in it. Removing an
// already removed directory is not an error.
func (s *Staging) Close() error {
	if s == nil || s.dir == "" {
		return nil
	}
	if err := os.RemoveAll(s.dir); err != nil {
		return fmt.Errorf("remove staging area %s: %w", s.dir, err)
	}
	return nil
}
