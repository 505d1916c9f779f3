package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lucianlavric/suntheme/internal/binary"
	"github.com/lucianlavric/suntheme/internal/config"
	"github.com/lucianlavric/suntheme/internal/fetch"
	"github.com/lucianlavric/suntheme/internal/lockfile"
	"github.com/lucianlavric/suntheme/internal/platform"
	"github.com/lucianlavric/suntheme/internal/release"
)

// setupError marks a failure before the pipeline started: bad flags,
// an unreadable config file or invalid settings.
type setupError struct {
	err   error
	usage bool
}

func (e *setupError) Error() string { return e.err.Error() }

func (e *setupError) Unwrap() error { return e.err }

// exitCode maps an error to the process exit code. User-correctable
// failures exit 1, everything else exits 2.
func exitCode(err error) int {
	var setupErr *setupError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &setupErr):
		return 1
	case errors.Is(err, platform.ErrUnsupportedPlatform):
		return 1
	case errors.Is(err, binary.ErrPermissionDenied):
		return 1
	case errors.Is(err, release.ErrReleaseNotFound):
		return 1
	default:
		return 2
	}
}

// formatError produces the user-facing message for err followed by a
// remediation hint where one applies.
func formatError(err error, cfg *config.Config, verbose bool) string {
	if cfg == nil {
		cfg = config.Defaults()
	}
	releasesURL := fmt.Sprintf("%s/%s/releases", strings.TrimRight(cfg.DownloadBaseURL, "/"), cfg.Repository)

	var (
		setupErr    *setupError
		parseErr    *config.ParseError
		platformErr *platform.UnsupportedPlatformError
		checksumErr *binary.ChecksumError
		deniedErr   *binary.PermissionDeniedError
	)

	switch {
	case errors.As(err, &setupErr) && setupErr.usage:
		return fmt.Sprintf("%v\n\nRun '%s --help' for usage.", err, programName)

	case errors.As(err, &parseErr):
		return config.FormatError(err, verbose)

	case errors.As(err, &setupErr):
		return err.Error()

	case errors.Is(err, context.Canceled):
		return "interrupted, the download was discarded"

	case errors.As(err, &platformErr):
		return fmt.Sprintf("%v\n\nPrebuilt %s binaries exist for: %s\nOther platforms must build from source: https://github.com/%s",
			err, cfg.Tool, strings.Join(platform.SupportedPlatforms(), ", "), cfg.Repository)

	case errors.As(err, &checksumErr):
		return fmt.Sprintf("checksum verification failed for %s\n\nExpected: %s\nGot:      %s\n\nThe download may be corrupted. Please try again.\nIf this persists, report at https://github.com/%s/issues",
			checksumErr.Filename, checksumErr.Expected, checksumErr.Got, cfg.Repository)

	case errors.As(err, &deniedErr):
		var b strings.Builder
		fmt.Fprintf(&b, "%v\n\n", err)
		if cfg.Elevate {
			fmt.Fprintf(&b, "Re-run with administrator rights:\n  sudo %s\n", programName)
		} else {
			fmt.Fprintf(&b, "Elevation is disabled (--no-elevate or elevate = false). Re-run without it, or:\n")
		}
		fmt.Fprintf(&b, "Install into a directory you own instead:\n  %s=$HOME/.local/bin %s", config.EnvInstallDir, programName)
		return b.String()

	case errors.Is(err, release.ErrReleaseNotFound):
		return fmt.Sprintf("%v\n\nNo %s release matches this platform. Check the published releases:\n  %s", err, cfg.Reference(), releasesURL)

	case errors.Is(err, lockfile.ErrLockExists):
		return fmt.Sprintf("%v\n\nWait for the other run to finish. A lock older than %s is taken over automatically.", err, lockfile.StaleLockThreshold)

	case errors.Is(err, fetch.ErrNetwork),
		errors.Is(err, fetch.ErrTooManyRedirects),
		errors.Is(err, fetch.ErrIncompleteTransfer):
		return fmt.Sprintf("%v\n\nCheck your network connection and try again.\nManual download: %s", err, releasesURL)

	case errors.Is(err, binary.ErrCorruptArchive),
		errors.Is(err, binary.ErrExecutableNotFound),
		errors.Is(err, release.ErrMalformedResponse):
		return fmt.Sprintf("%v\n\nThe release looks broken. Please report it at https://github.com/%s/issues", err, cfg.Repository)

	default:
		return err.Error()
	}
}

// renderError styles formatError's output for the terminal.
func (st styles) renderError(err error, cfg *config.Config, verbose bool) string {
	msg := formatError(err, cfg, verbose)
	head, hint, found := strings.Cut(msg, "\n\n")
	out := st.err.Render("Error:") + " " + head
	if found {
		out += "\n\n" + st.muted.Render(hint)
	}
	return out
}
