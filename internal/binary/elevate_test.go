package binary

import (
	"context"
	"errors"
	"os/exec"
	"reflect"
	"strings"
	"testing"
)

func fakeLookPath(available ...string) func(string) (string, error) {
	return func(name string) (string, error) {
		for _, a := range available {
			if a == name {
				return "/usr/bin/" + name, nil
			}
		}
		return "", exec.ErrNotFound
	}
}

func TestCommandElevator_Plan(t *testing.T) {
	argv := []string{"/bin/sh", "-c", "echo hi", "sh"}

	tests := []struct {
		name     string
		goos     string
		tools    []string
		tty      bool
		wantName string
		wantArgs []string
		wantErr  error
	}{
		{
			name:     "sudo_interactive",
			goos:     "linux",
			tools:    []string{"sudo", "doas"},
			tty:      true,
			wantName: "sudo",
			wantArgs: append([]string{"--"}, argv...),
		},
		{
			name:     "sudo_non_interactive",
			goos:     "linux",
			tools:    []string{"sudo"},
			wantName: "sudo",
			wantArgs: append([]string{"-n", "--"}, argv...),
		},
		{
			name:     "doas_fallback",
			goos:     "linux",
			tools:    []string{"doas"},
			tty:      true,
			wantName: "doas",
			wantArgs: append([]string{"--"}, argv...),
		},
		{
			name:     "darwin_tty_uses_sudo",
			goos:     "darwin",
			tools:    []string{"sudo", "osascript"},
			tty:      true,
			wantName: "sudo",
			wantArgs: append([]string{"--"}, argv...),
		},
		{
			name:     "darwin_no_tty_uses_osascript",
			goos:     "darwin",
			tools:    []string{"sudo", "osascript"},
			wantName: "osascript",
		},
		{
			name:    "nothing_available",
			goos:    "linux",
			wantErr: ErrElevationUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &CommandElevator{
				goos:       tt.goos,
				lookPath:   fakeLookPath(tt.tools...),
				isTerminal: func() bool { return tt.tty },
			}

			name, args, err := e.plan(argv)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("plan() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("plan() error = %v", err)
			}
			if name != tt.wantName {
				t.Errorf("plan() name = %q, want %q", name, tt.wantName)
			}
			if tt.wantArgs != nil && !reflect.DeepEqual(args, tt.wantArgs) {
				t.Errorf("plan() args = %q, want %q", args, tt.wantArgs)
			}
			if name == "osascript" {
				if len(args) != 2 || args[0] != "-e" {
					t.Fatalf("osascript args = %q", args)
				}
				if !strings.HasSuffix(args[1], "with administrator privileges") {
					t.Errorf("osascript script = %q", args[1])
				}
				if !strings.Contains(args[1], `/bin/sh -c 'echo hi' sh`) {
					t.Errorf("osascript script does not embed command: %q", args[1])
				}
			}
		})
	}
}

func TestCommandElevator_Name(t *testing.T) {
	e := &CommandElevator{goos: "linux", lookPath: fakeLookPath("doas"), isTerminal: func() bool { return true }}
	if got := e.Name(); got != "doas" {
		t.Errorf("Name() = %q, want doas", got)
	}

	e.lookPath = fakeLookPath()
	if got := e.Name(); got != "none" {
		t.Errorf("Name() = %q, want none", got)
	}
}

func TestCommandElevator_RunUnavailable(t *testing.T) {
	e := &CommandElevator{goos: "linux", lookPath: fakeLookPath(), isTerminal: func() bool { return false }}
	if err := e.Run(context.Background(), []string{"true"}); !errors.Is(err, ErrElevationUnavailable) {
		t.Errorf("Run() error = %v, want ErrElevationUnavailable", err)
	}
}

func TestNoElevator(t *testing.T) {
	var e Elevator = NoElevator{}
	if err := e.Run(context.Background(), []string{"true"}); !errors.Is(err, ErrElevationDeclined) {
		t.Errorf("Run() error = %v, want ErrElevationDeclined", err)
	}
}

func TestShellQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "/usr/local/bin", want: "/usr/local/bin"},
		{in: "", want: "''"},
		{in: "two words", want: "'two words'"},
		{in: "it's", want: `'it'\''s'`},
		{in: "$HOME", want: "'$HOME'"},
	}

	for _, tt := range tests {
		if got := shellQuote(tt.in); got != tt.want {
			t.Errorf("shellQuote(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAppleScriptString(t *testing.T) {
	if got := appleScriptString(`say "hi" \ bye`); got != `"say \"hi\" \\ bye"` {
		t.Errorf("appleScriptString() = %s", got)
	}
}
