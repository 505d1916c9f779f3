package binary

import (
	"errors"
	"fmt"
	"time"

	"github.com/lucianlavric/suntheme/internal/platform"
)

var (
	// ErrCorruptArchive is returned when an archive cannot be decompressed or
	// unpacked, escapes the staging directory, or fails checksum verification.
	ErrCorruptArchive = errors.New("corrupt archive")

	// ErrExecutableNotFound is returned when the archive has no executable
	// named after the tool.
	ErrExecutableNotFound = errors.New("executable not found in archive")

	// ErrPermissionDenied is returned when the install directory cannot be
	// written, even after privilege elevation.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrChecksumMissing is returned when a checksum file does not list the archive.
	ErrChecksumMissing = errors.New("checksum not listed")

	// ErrMalformedChecksum is returned when the entry for the archive is not a
	// SHA256 hex digest. It also matches ErrCorruptArchive.
	ErrMalformedChecksum = fmt.Errorf("malformed checksum: %w", ErrCorruptArchive)
)

// Stage names a step of the bootstrapper pipeline.
type Stage string

const (
	StageDetect   Stage = "detect platform"
	StageLock     Stage = "acquire lock"
	StageLocate   Stage = "locate release"
	StageDownload Stage = "download"
	StageVerify   Stage = "verify"
	StageExtract  Stage = "extract"
	StageInstall  Stage = "install"
)

// StageError records which pipeline stage failed.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// PermissionDeniedError reports the exact path that could not be written.
type PermissionDeniedError struct {
	Path string
	Err  error
}

func (e *PermissionDeniedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot write %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("cannot write %s", e.Path)
}

func (e *PermissionDeniedError) Unwrap() error { return e.Err }

// Is reports ErrPermissionDenied.
func (e *PermissionDeniedError) Is(target error) bool { return target == ErrPermissionDenied }

// ChecksumError indicates the archive does not match its published SHA256.
type ChecksumError struct {
	Filename string
	Expected string
	Got      string
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("checksum mismatch for %s:\nactual:   %s\nexpected: %s", e.Filename, e.Got, e.Expected)
}

// Is reports ErrCorruptArchive.
func (e *ChecksumError) Is(target error) bool { return target == ErrCorruptArchive }

// Result describes a completed bootstrapper run.
type Result struct {
	Target    platform.Target
	Tag       string
	Path      string // installed executable
	Bytes     int64  // archive size downloaded
	Verified  bool   // archive matched a published checksum
	Elevated  bool   // install needed privilege elevation
	Unchanged bool   // installed bytes were identical to the previous version
	Duration  time.Duration
}
