package binary

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lucianlavric/suntheme/internal/lockfile"
	"github.com/lucianlavric/suntheme/internal/platform"
	"github.com/lucianlavric/suntheme/internal/release"
)

const (
	// LockName is the run lock file created in the lock directory.
	LockName = "suntheme-install.lock"

	// maxChecksumBytes bounds a downloaded checksum file (1 MB).
	maxChecksumBytes = 1 << 20
)

// Fetcher transfers remote resources. *fetch.Client implements it.
type Fetcher interface {
	Get(ctx context.Context, url, accept string, limit int64) ([]byte, error)
	Download(ctx context.Context, url, destPath string) (int64, error)
}

// Config holds configuration for the manager
type Config struct {
	// Tool is the executable name, also the archive name prefix.
	Tool string
	// Reference names the release to install.
	Reference release.Reference
	// InstallDir is the absolute directory receiving the executable.
	InstallDir string

	Detector  platform.Detector
	Locator   release.Locator
	Fetcher   Fetcher
	Installer *Installer

	// TempDir is the parent of the staging area and the lock file.
	// Defaults to os.TempDir().
	TempDir string

	Logger Logger
}

// Manager orchestrates one bootstrapper run: detect, locate, download,
// verify, extract, install.
type Manager struct {
	tool       string
	ref        release.Reference
	installDir string
	tempDir    string

	detector  platform.Detector
	locator   release.Locator
	fetcher   Fetcher
	verifier  *Verifier
	extractor *Extractor
	installer *Installer
	logger    Logger
}

// NewManager creates a new manager
func NewManager(config Config) (*Manager, error) {
	if config.Tool == "" {
		return nil, fmt.Errorf("Tool is required")
	}
	if config.Detector == nil {
		return nil, fmt.Errorf("Detector is required")
	}
	if config.Locator == nil {
		return nil, fmt.Errorf("Locator is required")
	}
	if config.Fetcher == nil {
		return nil, fmt.Errorf("Fetcher is required")
	}
	if !filepath.IsAbs(config.InstallDir) {
		return nil, fmt.Errorf("InstallDir must be absolute: %q", config.InstallDir)
	}

	logger := config.Logger
	if logger == nil {
		logger = defaultLogger()
	}

	installer := config.Installer
	if installer == nil {
		installer = NewInstaller(WithInstallerLogger(logger))
	}

	tempDir := config.TempDir
	if tempDir == "" {
		tempDir = os.TempDir()
	}

	return &Manager{
		tool:       config.Tool,
		ref:        config.Reference,
		installDir: config.InstallDir,
		tempDir:    tempDir,
		detector:   config.Detector,
		locator:    config.Locator,
		fetcher:    config.Fetcher,
		verifier:   NewVerifier(),
		extractor:  NewExtractor(),
		installer:  installer,
		logger:     logger,
	}, nil
}

// TargetPath returns where the executable will be installed.
func (m *Manager) TargetPath() string {
	return filepath.Join(m.installDir, m.tool)
}

// Run executes the pipeline once. Errors are *StageError values naming the
// failed stage. The staging area is removed before Run returns.
func (m *Manager) Run(ctx context.Context) (_ *Result, err error) {
	start := time.Now()

	info, target, err := platform.ResolveHost(ctx, m.detector)
	if err != nil {
		return nil, &StageError{Stage: StageDetect, Err: err}
	}
	m.logger.Debug("platform detected",
		"os", info.OS, "arch", info.Arch, "arch_raw", info.ArchRaw,
		"distro", info.Platform, "family", info.Family, "version", info.Version)
	m.logger.Info("resolved target", "target", target)

	lock, err := lockfile.Acquire(ctx, m.tempDir, LockName)
	if err != nil {
		return nil, &StageError{Stage: StageLock, Err: err}
	}
	lockPath := lock.Path()
	defer func() {
		if rerr := lock.Release(); rerr != nil {
			m.logger.Warn("lock release failed", "path", lockPath, "error", rerr)
		}
	}()

	desc, err := m.locator.Locate(ctx, m.ref, target)
	if err != nil {
		return nil, &StageError{Stage: StageLocate, Err: err}
	}
	m.logger.Info("located release", "tag", desc.Tag, "asset", desc.Filename)
	m.logger.Debug("asset url", "url", desc.URL, "size", desc.Size)

	staging, err := NewStaging(m.tempDir)
	if err != nil {
		return nil, &StageError{Stage: StageDownload, Err: err}
	}
	defer func() {
		if cerr := staging.Close(); cerr != nil {
			m.logger.Warn("staging cleanup failed", "dir", staging.Path(), "error", cerr)
		}
	}()
	m.logger.Debug("staging area created", "dir", staging.Path())

	archivePath := staging.Join(desc.Filename)
	n, err := m.fetcher.Download(ctx, desc.URL, archivePath)
	if err != nil {
		return nil, &StageError{Stage: StageDownload, Err: err}
	}
	m.logger.Info("downloaded archive", "bytes", n)

	verified, err := m.verify(ctx, desc, archivePath)
	if err != nil {
		return nil, &StageError{Stage: StageVerify, Err: err}
	}

	executable, err := m.extractor.Extract(archivePath, staging.Join("extract"), m.tool)
	if err != nil {
		return nil, &StageError{Stage: StageExtract, Err: err}
	}
	m.logger.Debug("extracted executable", "path", executable)

	installed, err := m.installer.Install(ctx, staging, executable, m.installDir, m.tool)
	if err != nil {
		return nil, &StageError{Stage: StageInstall, Err: err}
	}

	return &Result{
		Target:    target,
		Tag:       desc.Tag,
		Path:      installed.Path,
		Bytes:     n,
		Verified:  verified,
		Elevated:  installed.Elevated,
		Unchanged: installed.Unchanged,
		Duration:  time.Since(start),
	}, nil
}

// verify checks the archive against its published checksum, if any. A
// release without checksums, or whose checksum file does not list the
// archive, installs unverified with a warning.
func (m *Manager) verify(ctx context.Context, desc *release.Descriptor, archivePath string) (bool, error) {
	if desc.ChecksumURL == "" {
		m.logger.Warn("release publishes no checksums, skipping verification", "asset", desc.Filename)
		return false, nil
	}

	sums, err := m.fetcher.Get(ctx, desc.ChecksumURL, "", maxChecksumBytes)
	if err != nil {
		return false, fmt.Errorf("fetch %s: %w", desc.ChecksumFile, err)
	}

	err = m.verifier.VerifySHA256(archivePath, desc.Filename, sums)
	if errors.Is(err, ErrChecksumMissing) {
		m.logger.Warn("checksum file does not cover asset, skipping verification",
			"file", desc.ChecksumFile, "asset", desc.Filename)
		return false, nil
	}
	if err != nil {
		return false, err
	}

	m.logger.Info("checksum verified", "file", desc.ChecksumFile)
	return true, nil
}
