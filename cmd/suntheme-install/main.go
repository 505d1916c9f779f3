package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/lucianlavric/suntheme/internal/binary"
	"github.com/lucianlavric/suntheme/internal/config"
	"github.com/lucianlavric/suntheme/internal/fetch"
	"github.com/lucianlavric/suntheme/internal/platform"
	"github.com/lucianlavric/suntheme/internal/release"
	"github.com/lucianlavric/suntheme/internal/shell"
)

// Version will be set at build time via -ldflags
var Version = "dev"

const programName = "suntheme-install"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := newApp().run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

// app bundles the process dependencies so run can be driven from tests
// without a real host, terminal or sudo.
type app struct {
	stdout io.Writer
	stderr io.Writer
	getenv func(string) string

	detector platform.Detector
	shells   *shell.Detector
	elevator binary.Elevator   // nil selects sudo/doas/osascript
	writable func(string) bool // nil probes the filesystem
}

func newApp() *app {
	return &app{
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		getenv:   os.Getenv,
		detector: platform.NewDetector(),
		shells:   shell.NewDetector(os.Getenv),
	}
}

// options holds the parsed command line.
type options struct {
	configPath string
	installDir string
	repository string
	tag        string
	strategy   string
	noElevate  bool
	verbose    bool
	version    bool
	help       bool

	flags *pflag.FlagSet
}

func newFlagSet(opts *options) *pflag.FlagSet {
	fs := pflag.NewFlagSet(programName, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	fs.SortFlags = false

	fs.StringVar(&opts.installDir, "install-dir", "", "directory receiving the executable (default "+config.DefaultInstallDir+", or $"+config.EnvInstallDir+")")
	fs.StringVar(&opts.repository, "repository", "", "GitHub repository publishing the releases (default "+config.DefaultRepository+")")
	fs.StringVar(&opts.tag, "tag", "", "release tag to install (default latest)")
	fs.StringVar(&opts.strategy, "strategy", "", `release lookup: "asset" scans the release assets, "tag" templates the download URL`)
	fs.StringVar(&opts.configPath, "config", "", "Lua config file (default ~/.config/suntheme/"+config.DefaultFileName+" if present)")
	fs.BoolVar(&opts.noElevate, "no-elevate", false, "never run sudo, doas or osascript")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "show debug output")
	fs.BoolVar(&opts.version, "version", false, "print version and exit")
	fs.BoolVarP(&opts.help, "help", "h", false, "show this help")

	opts.flags = fs
	return fs
}

func parseArgs(args []string) (*options, error) {
	opts := &options{}
	fs := newFlagSet(opts)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			opts.help = true
			return opts, nil
		}
		return nil, &setupError{err: err, usage: true}
	}
	if fs.NArg() > 0 {
		return nil, &setupError{err: fmt.Errorf("unexpected argument %q", fs.Arg(0)), usage: true}
	}
	return opts, nil
}

func printUsage(w io.Writer) {
	opts := &options{}
	fs := newFlagSet(opts)
	fmt.Fprintf(w, "Usage: %s [options]\n\n", programName)
	fmt.Fprintf(w, "Download the %s release for this machine and install it.\n\n", config.DefaultTool)
	fmt.Fprintln(w, "Options:")
	fmt.Fprint(w, fs.FlagUsages())
}

// applyFlags overrides the loaded settings with the flags given on the
// command line. Unset flags leave the file and environment values alone.
func applyFlags(cfg *config.Config, opts *options) error {
	fs := opts.flags
	if fs.Changed("repository") {
		cfg.Repository = strings.TrimSpace(opts.repository)
	}
	if fs.Changed("tag") {
		cfg.Tag = strings.TrimSpace(opts.tag)
	}
	if fs.Changed("install-dir") {
		cfg.InstallDir = strings.TrimSpace(opts.installDir)
	}
	if fs.Changed("strategy") {
		strategy, err := release.ParseStrategy(opts.strategy)
		if err != nil {
			return &config.ValidationError{Field: "strategy", Value: opts.strategy, Message: `must be "asset" or "tag"`}
		}
		cfg.Strategy = strategy
	}
	if opts.noElevate {
		cfg.Elevate = false
	}
	return nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	handler := log.NewWithOptions(w, log.Options{
		Level:  level,
		Prefix: programName,
	})
	return slog.New(handler)
}

// run executes one bootstrapper invocation and returns the process exit code.
func (a *app) run(ctx context.Context, args []string) int {
	st := newStyles(a.stdout)
	errStyles := newStyles(a.stderr)

	opts, err := parseArgs(args)
	if err != nil {
		fmt.Fprintln(a.stderr, errStyles.renderError(err, nil, false))
		return exitCode(err)
	}
	if opts.help {
		printUsage(a.stdout)
		return 0
	}
	if opts.version {
		fmt.Fprintf(a.stdout, "%s %s\n", programName, Version)
		return 0
	}

	logger := newLogger(a.stderr, opts.verbose).With("run", uuid.NewString())
	logger.Debug("starting", "version", Version)

	cfg, err := a.loadConfig(ctx, opts, logger)
	if err != nil {
		fmt.Fprintln(a.stderr, errStyles.renderError(err, nil, opts.verbose))
		return exitCode(err)
	}

	mgr, err := a.newManager(cfg, logger)
	if err != nil {
		err = &setupError{err: err}
		fmt.Fprintln(a.stderr, errStyles.renderError(err, cfg, opts.verbose))
		return exitCode(err)
	}

	fmt.Fprintf(a.stdout, "Installing %s from %s\n", cfg.Tool, st.cmd.Render(cfg.Reference().String()))

	result, err := mgr.Run(ctx)
	if err != nil {
		fmt.Fprintln(a.stderr, errStyles.renderError(err, cfg, opts.verbose))
		return exitCode(err)
	}

	printSummary(a.stdout, st, cfg, result)
	if hint := pathHint(cfg.InstallDir, a.getenv("PATH"), a.shells.DetectShell().Shell); hint != "" {
		fmt.Fprintln(a.stdout)
		fmt.Fprintln(a.stdout, st.warning.Render(hint))
	}
	return 0
}

// loadConfig layers defaults, the Lua file, the environment and the flags,
// then validates the result.
func (a *app) loadConfig(ctx context.Context, opts *options, logger *slog.Logger) (*config.Config, error) {
	cfg, err := config.Load(ctx, config.LoadOptions{
		Path:     opts.configPath,
		Detector: a.detector,
		Getenv:   a.getenv,
		Logger:   logger,
	})
	if err != nil {
		return nil, &setupError{err: err}
	}
	if err := applyFlags(cfg, opts); err != nil {
		return nil, &setupError{err: err}
	}
	if err := cfg.Validate(); err != nil {
		return nil, &setupError{err: err}
	}
	logger.Debug("settings resolved",
		"repository", cfg.Repository, "tag", cfg.Reference().String(), "strategy", cfg.Strategy,
		"install_dir", cfg.InstallDir, "elevate", cfg.Elevate, "source", cfg.Source)
	return cfg, nil
}

func (a *app) newManager(cfg *config.Config, logger *slog.Logger) (*binary.Manager, error) {
	fetcher := fetch.NewClient(
		fetch.WithTimeout(cfg.Timeout),
		fetch.WithMaxRedirects(cfg.MaxRedirects),
		fetch.WithUserAgent(programName+"/"+Version),
	)
	client := release.NewClient(fetcher,
		release.WithAPIBaseURL(cfg.APIBaseURL),
		release.WithDownloadBaseURL(cfg.DownloadBaseURL),
	)
	locator, err := release.NewLocator(cfg.Strategy, client, cfg.Tool)
	if err != nil {
		return nil, err
	}

	var elevator binary.Elevator = binary.NoElevator{}
	if cfg.Elevate {
		elevator = a.elevator
		if elevator == nil {
			elevator = binary.NewCommandElevator()
		}
	}
	installerOpts := []binary.InstallerOption{
		binary.WithElevator(elevator),
		binary.WithInstallerLogger(logger),
	}
	if a.writable != nil {
		installerOpts = append(installerOpts, binary.WithWritableCheck(a.writable))
	}

	return binary.NewManager(binary.Config{
		Tool:       cfg.Tool,
		Reference:  cfg.Reference(),
		InstallDir: cfg.InstallDir,
		Detector:   a.detector,
		Locator:    locator,
		Fetcher:    fetcher,
		Installer:  binary.NewInstaller(installerOpts...),
		Logger:     logger,
	})
}
