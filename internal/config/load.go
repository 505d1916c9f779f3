package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/lucianlavric/suntheme/internal/platform"
)

// DefaultFileName is the config file name inside the config directory.
const DefaultFileName = "bootstrap.lua"

// LoadOptions controls Load.
type LoadOptions struct {
	// Path is an explicit config file. It must exist. When empty the default
	// location is read if present.
	Path string

	// Detector feeds the Lua platform table. Nil leaves it undefined.
	Detector platform.Detector

	// Getenv reads environment variables. Defaults to os.Getenv.
	Getenv func(string) string

	Logger Logger
}

// DefaultPath returns $XDG_CONFIG_HOME/suntheme/bootstrap.lua, falling back
// to ~/.config/suntheme/bootstrap.lua. It returns "" if neither can be
// determined.
func DefaultPath(getenv func(string) string) string {
	if getenv == nil {
		getenv = os.Getenv
	}
	if xdg := getenv("XDG_CONFIG_HOME"); xdg != "" && filepath.IsAbs(xdg) {
		return filepath.Join(xdg, DefaultTool, DefaultFileName)
	}
	home := getenv("HOME")
	if home == "" {
		var err error
		if home, err = os.UserHomeDir(); err != nil {
			return ""
		}
	}
	return filepath.Join(home, ".config", DefaultTool, DefaultFileName)
}

// Load layers defaults, the Lua config file and the environment. Flags are
// applied by the caller, followed by Validate.
func Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	logger := opts.Logger
	if logger == nil {
		logger = discardLogger{}
	}

	cfg := Defaults()

	path, required := opts.Path, true
	if path == "" {
		path, required = DefaultPath(getenv), false
	}

	if path != "" {
		code, err := readConfigFile(path)
		switch {
		case err == nil:
			parsed, err := NewParser(opts.Detector).ParseString(ctx, code, cfg)
			if err != nil {
				return nil, fmt.Errorf("load config %s: %w", path, err)
			}
			cfg = parsed
			cfg.Source = path
			logger.Debug("loaded config file", "path", path)
		case errors.Is(err, fs.ErrNotExist) && !required:
			logger.Debug("no config file", "path", path)
		default:
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	if dir := strings.TrimSpace(getenv(EnvInstallDir)); dir != "" {
		cfg.InstallDir = dir
		logger.Debug("install directory from environment", "env", EnvInstallDir, "dir", dir)
	}

	return cfg, nil
}

// readConfigFile reads at most MaxConfigSize bytes from path.
func readConfigFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", path)
	}

	data, err := io.ReadAll(io.LimitReader(f, MaxConfigSize+1))
	if err != nil {
		return "", err
	}
	if len(data) > MaxConfigSize {
		return "", &ParseError{
			Message: "config file too large",
			Detail:  fmt.Sprintf("maximum is %d bytes", MaxConfigSize),
		}
	}
	return string(data), nil
}
