package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/lucianlavric/suntheme/internal/binary"
	"github.com/lucianlavric/suntheme/internal/config"
	"github.com/lucianlavric/suntheme/internal/shell"
)

// printSummary reports a successful run.
func printSummary(w io.Writer, st styles, cfg *config.Config, result *binary.Result) {
	verb := "Installed"
	if result.Unchanged {
		verb = "Reinstalled (unchanged)"
	}
	fmt.Fprintln(w, st.success.Render(fmt.Sprintf("✓ %s %s %s (%s) to %s",
		verb, cfg.Tool, result.Tag, result.Target, result.Path)))

	details := []string{
		fmt.Sprintf("downloaded %s in %s", humanize.Bytes(uint64(result.Bytes)), result.Duration.Round(time.Millisecond)),
	}
	if result.Verified {
		details = append(details, "checksum verified")
	} else {
		details = append(details, "no checksum published")
	}
	if result.Elevated {
		details = append(details, "installed with elevated privileges")
	}
	fmt.Fprintln(w, st.muted.Render("  "+strings.Join(details, ", ")))
}

// pathHint returns instructions for adding dir to PATH in the profile of
// the user's shell, or "" when the search path already contains it.
func pathHint(dir, pathEnv string, sh shell.ShellType) string {
	if shell.InPath(dir, pathEnv) {
		return ""
	}
	ins := shell.Instructions(sh, dir)
	return fmt.Sprintf("%s is not on your PATH. Add this line to %s:\n  %s", dir, ins.RCFile, ins.Line)
}
