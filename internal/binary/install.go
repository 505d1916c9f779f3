package binary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// installScript copies $1 to a temporary name in $2 and renames it over $2/$3,
// so the elevated path has the same atomicity as the direct one.
const installScript = `set -e
tmp="$2/.$3.new-$$"
trap 'rm -f "$tmp"' EXIT
mkdir -p "$2"
cp "$1" "$tmp"
chmod 0755 "$tmp"
mv -f "$tmp" "$2/$3"
chmod 0755 "$2/$3"`

// InstallResult describes where the executable ended up.
type InstallResult struct {
	Path      string
	Elevated  bool
	Unchanged bool
}

// Installer moves an extracted executable into the install directory.
type Installer struct {
	elevator Elevator
	writable func(dir string) bool
	logger   Logger
}

// InstallerOption configures an Installer.
type InstallerOption func(*Installer)

// WithElevator sets the privilege elevation mechanism.
func WithElevator(e Elevator) InstallerOption {
	return func(i *Installer) {
		i.elevator = e
	}
}

// WithWritableCheck replaces the install directory writability probe.
func WithWritableCheck(fn func(dir string) bool) InstallerOption {
	return func(i *Installer) {
		i.writable = fn
	}
}

// WithInstallerLogger sets the logger.
func WithInstallerLogger(l Logger) InstallerOption {
	return func(i *Installer) {
		i.logger = l
	}
}

// NewInstaller creates an Installer that elevates with the host's mechanism.
func NewInstaller(opts ...InstallerOption) *Installer {
	i := &Installer{
		elevator: NewCommandElevator(),
		writable: isWritable,
		logger:   defaultLogger(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Install places executablePath at installDir/name with mode 0755.
//
// If installDir is writable the file is copied to a temporary name beside
// the target and renamed over it. Otherwise the same copy-and-rename runs once
// through the Elevator; if that is declined or fails, the error is a
// PermissionDeniedError for the target path. The previous executable stays
// intact until the rename.
//
// staging is closed before Install returns, whatever the outcome.
func (i *Installer) Install(ctx context.Context, staging *Staging, executablePath, installDir, name string) (_ *InstallResult, err error) {
	defer func() {
		if cerr := staging.Close(); cerr != nil {
			i.logger.Warn("staging cleanup failed", "dir", staging.Path(), "error", cerr)
		}
	}()

	if name == "" || name != filepath.Base(name) {
		return nil, fmt.Errorf("invalid executable name %q", name)
	}
	if !filepath.IsAbs(installDir) {
		return nil, fmt.Errorf("install directory must be absolute: %s", installDir)
	}

	target := filepath.Join(installDir, name)
	result := &InstallResult{Path: target, Unchanged: sameContents(executablePath, target)}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if i.prepareDir(installDir) && i.writable(installDir) {
		err := installDirect(executablePath, installDir, name)
		if err == nil {
			return result, nil
		}
		if !errors.Is(err, fs.ErrPermission) {
			return nil, err
		}
		i.logger.Debug("direct install denied, elevating", "path", target, "error", err)
	}

	i.logger.Info("install directory not writable, requesting elevated privileges",
		"dir", installDir, "method", i.elevator.Name())

	argv := []string{"/bin/sh", "-c", installScript, "sh", executablePath, installDir, name}
	if err := i.elevator.Run(ctx, argv); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &PermissionDeniedError{Path: target, Err: err}
	}

	result.Elevated = true
	return result, nil
}

// prepareDir makes sure installDir exists. It reports false when the
// directory is missing and cannot be created without elevation.
func (i *Installer) prepareDir(installDir string) bool {
	info, err := os.Stat(installDir)
	if err == nil {
		return info.IsDir()
	}
	if mkErr := os.MkdirAll(installDir, 0o755); mkErr != nil {
		i.logger.Debug("cannot create install directory", "dir", installDir, "error", mkErr)
		return false
	}
	return true
}

// installDirect copies src into dir under a temporary name, then renames it
// to dir/name.
func installDirect(src, dir, name string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open executable: %w", err)
	}
	defer in.Close()

	tmp, err := os.CreateTemp(dir, "."+name+".new-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := io.Copy(tmp, in); err != nil {
		return fmt.Errorf("copy executable: %w", err)
	}
	if err := tmp.Chmod(0o755); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	target := filepath.Join(dir, name)
	if err := os.Rename(tmpPath, target); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}

	return SetExecutable(target)
}

// probeWritable creates and removes a temp file in dir.
func probeWritable(dir string) bool {
	f, err := os.CreateTemp(dir, ".suntheme-probe-*")
	if err != nil {
		return false
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return true
}

// sameContents reports whether both files exist with identical bytes.
func sameContents(a, b string) bool {
	ha, err := calculateSHA256(a)
	if err != nil {
		return false
	}
	hb, err := calculateSHA256(b)
	if err != nil {
		return false
	}
	return ha == hb
}
