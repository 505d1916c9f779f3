package shell

import (
	"fmt"
	"path/filepath"
)

// InPath reports whether dir is one of the entries of a PATH value.
func InPath(dir, pathEnv string) bool {
	clean := filepath.Clean(dir)
	for _, entry := range filepath.SplitList(pathEnv) {
		if entry != "" && filepath.Clean(entry) == clean {
			return true
		}
	}
	return false
}

// Instructions returns the profile line that adds dir to PATH for shell.
func Instructions(shell ShellType, dir string) PathInstructions {
	switch shell {
	case ShellBash:
		return PathInstructions{Shell: shell, RCFile: "~/.bashrc", Line: posixExport(dir)}
	case ShellZsh:
		return PathInstructions{Shell: shell, RCFile: "~/.zshrc", Line: posixExport(dir)}
	case ShellFish:
		return PathInstructions{Shell: shell, RCFile: "~/.config/fish/config.fish", Line: fmt.Sprintf("fish_add_path %q", dir)}
	default:
		return PathInstructions{Shell: ShellUnknown, RCFile: "~/.profile", Line: posixExport(dir)}
	}
}

func posixExport(dir string) string {
	return fmt.Sprintf("export PATH=\"%s:$PATH\"", dir)
}
