package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"time"

	"github.com/lucianlavric/suntheme/internal/fetch"
	"github.com/lucianlavric/suntheme/internal/release"
)

const (
	// DefaultRepository hosts the tool's releases.
	DefaultRepository = "lucianlavric/suntheme"

	// DefaultTool is the executable name and archive prefix.
	DefaultTool = "suntheme"

	// DefaultInstallDir receives the executable.
	DefaultInstallDir = "/usr/local/bin"

	// EnvInstallDir overrides the install directory. It is the only
	// environment variable the bootstrapper reads.
	EnvInstallDir = "SUNTHEME_INSTALL_DIR"

	// MaxRedirectLimit bounds the configurable redirect depth.
	MaxRedirectLimit = 20
)

var toolPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Config holds the resolved bootstrapper settings.
type Config struct {
	Repository      string           `json:"repository"`
	Tool            string           `json:"tool"`
	Tag             string           `json:"tag,omitempty"` // empty or "latest" for the newest release
	InstallDir      string           `json:"install_dir"`
	Strategy        release.Strategy `json:"strategy"`
	APIBaseURL      string           `json:"api_url"`
	DownloadBaseURL string           `json:"download_url"`
	Timeout         time.Duration    `json:"timeout"` // per network call
	MaxRedirects    int              `json:"max_redirects"`
	Elevate         bool             `json:"elevate"`

	// Source is the Lua file the settings were read from, empty if none.
	Source string `json:"-"`
}

// Defaults returns the built-in settings.
func Defaults() *Config {
	return &Config{
		Repository:      DefaultRepository,
		Tool:            DefaultTool,
		InstallDir:      DefaultInstallDir,
		Strategy:        release.StrategyAsset,
		APIBaseURL:      release.DefaultAPIBaseURL,
		DownloadBaseURL: release.DefaultDownloadBaseURL,
		Timeout:         fetch.DefaultTimeout,
		MaxRedirects:    fetch.DefaultMaxRedirects,
		Elevate:         true,
	}
}

// Reference returns the release reference the settings describe.
func (c *Config) Reference() release.Reference {
	return release.Reference{Repository: c.Repository, Tag: c.Tag}
}

// Validate performs validation on a fully layered Config.
func (c *Config) Validate() error {
	if err := c.Reference().Validate(); err != nil {
		return &ValidationError{Field: luaFieldRepository, Value: c.Repository, Message: "must be owner/name"}
	}

	if !toolPattern.MatchString(c.Tool) {
		return &ValidationError{Field: luaFieldTool, Value: c.Tool, Message: "must be a plain file name"}
	}

	if _, err := release.ParseStrategy(string(c.Strategy)); err != nil || c.Strategy == "" {
		return &ValidationError{Field: luaFieldStrategy, Value: string(c.Strategy), Message: `must be "asset" or "tag"`}
	}

	if !filepath.IsAbs(c.InstallDir) {
		return &ValidationError{Field: luaFieldInstallDir, Value: c.InstallDir, Message: "must be an absolute path"}
	}

	for field, raw := range map[string]string{luaFieldAPIURL: c.APIBaseURL, luaFieldDownloadURL: c.DownloadBaseURL} {
		if err := validateBaseURL(raw); err != nil {
			return &ValidationError{Field: field, Value: raw, Message: err.Error()}
		}
	}

	if c.Timeout <= 0 {
		return &ValidationError{Field: luaFieldTimeout, Value: c.Timeout.String(), Message: "must be positive"}
	}

	if c.MaxRedirects < 1 || c.MaxRedirects > MaxRedirectLimit {
		return &ValidationError{
			Field:   luaFieldMaxRedirects,
			Value:   fmt.Sprint(c.MaxRedirects),
			Message: fmt.Sprintf("must be between 1 and %d", MaxRedirectLimit),
		}
	}

	return nil
}

// ValidationError describes an invalid setting.
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Message)
}

// validateBaseURL requires an absolute http(s) URL without query or fragment.
func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("not a URL")
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("must use https:// or http://")
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return fmt.Errorf("must not carry a query or fragment")
	}
	return nil
}
