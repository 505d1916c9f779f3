package binary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"golang.org/x/term"
)

var (
	// ErrElevationDeclined is returned when the user refuses or fails the
	// privilege prompt, or elevation is disabled.
	ErrElevationDeclined = errors.New("privilege elevation declined")

	// ErrElevationUnavailable is returned when no elevation mechanism exists.
	ErrElevationUnavailable = errors.New("no privilege elevation mechanism available")
)

// Elevator runs a command with elevated privileges. It is the single place
// the installer escalates, whatever the host OS.
type Elevator interface {
	// Name identifies the mechanism for logs and error messages.
	Name() string

	// Run executes argv with elevated privileges exactly once.
	Run(ctx context.Context, argv []string) error
}

// NoElevator never escalates. Run always fails with ErrElevationDeclined.
type NoElevator struct{}

// Name implements Elevator.
func (NoElevator) Name() string { return "none" }

// Run implements Elevator.
func (NoElevator) Run(context.Context, []string) error {
	return fmt.Errorf("%w: elevation disabled", ErrElevationDeclined)
}

// CommandElevator escalates through sudo or doas, and through osascript's
// administrator prompt on macOS when there is no terminal to ask on.
type CommandElevator struct {
	goos       string
	lookPath   func(string) (string, error)
	isTerminal func() bool
	stdin      io.Reader
	stdout     io.Writer
	stderr     io.Writer
}

// NewCommandElevator returns the elevator for the running host.
func NewCommandElevator() *CommandElevator {
	return &CommandElevator{
		goos:       runtime.GOOS,
		lookPath:   exec.LookPath,
		isTerminal: func() bool { return term.IsTerminal(int(os.Stdin.Fd())) },
		stdin:      os.Stdin,
		stdout:     os.Stderr,
		stderr:     os.Stderr,
	}
}

// Name implements Elevator.
func (e *CommandElevator) Name() string {
	name, _, err := e.plan([]string{"true"})
	if err != nil {
		return "none"
	}
	return name
}

// Run implements Elevator.
func (e *CommandElevator) Run(ctx context.Context, argv []string) error {
	name, args, err := e.plan(argv)
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = e.stdin
	cmd.Stdout = e.stdout
	cmd.Stderr = e.stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("%w: %s exited with status %d", ErrElevationDeclined, name, exitErr.ExitCode())
		}
		return fmt.Errorf("run %s: %w", name, err)
	}
	return nil
}

// plan picks the mechanism and builds its command line. Without a terminal,
// sudo and doas run non-interactively so they fail instead of hanging on a
// prompt nobody can answer.
func (e *CommandElevator) plan(argv []string) (string, []string, error) {
	if len(argv) == 0 {
		return "", nil, fmt.Errorf("elevate: empty command")
	}

	interactive := e.isTerminal()

	if e.goos == "darwin" && !interactive {
		if _, err := e.lookPath("osascript"); err == nil {
			script := fmt.Sprintf("do shell script %s with administrator privileges",
				appleScriptString(shellJoin(argv)))
			return "osascript", []string{"-e", script}, nil
		}
	}

	if _, err := e.lookPath("sudo"); err == nil {
		args := []string{}
		if !interactive {
			args = append(args, "-n")
		}
		return "sudo", append(append(args, "--"), argv...), nil
	}

	if _, err := e.lookPath("doas"); err == nil {
		args := []string{}
		if !interactive {
			args = append(args, "-n")
		}
		return "doas", append(append(args, "--"), argv...), nil
	}

	return "", nil, ErrElevationUnavailable
}

// shellQuote quotes s for POSIX sh.
func shellQuote(s string) string {
	if s != "" && strings.IndexFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || strings.ContainsRune("@%+=:,./-_", r))
	}) < 0 {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// shellJoin renders argv as one sh command line.
func shellJoin(argv []string) string {
	quoted := make([]string, len(argv))
	for i, a := range argv {
		quoted[i] = shellQuote(a)
	}
	return strings.Join(quoted, " ")
}

// appleScriptString renders s as an AppleScript string literal.
func appleScriptString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}
