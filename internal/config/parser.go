package config

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/lucianlavric/suntheme/internal/platform"
	"github.com/lucianlavric/suntheme/internal/release"
	lua "github.com/yuin/gopher-lua"
)

const (
	// MaxConfigSize bounds a config file (1 MB).
	MaxConfigSize = 1 << 20

	// ParseTimeout bounds Lua evaluation.
	ParseTimeout = 5 * time.Second

	maxCallStackSize = 256
	maxRegistrySize  = 8 * 1024
)

// Parser represents a Lua config parser with platform detection.
type Parser struct {
	detector platform.Detector
}

// NewParser creates a new config parser with the given platform detector.
// A nil detector leaves the platform table undefined.
func NewParser(detector platform.Detector) *Parser {
	return &Parser{detector: detector}
}

// ParseString evaluates luaCode and applies its bootstrap table on top of base.
// base is not modified. A missing bootstrap table leaves base unchanged.
func (p *Parser) ParseString(ctx context.Context, luaCode string, base *Config) (*Config, error) {
	if len(luaCode) > MaxConfigSize {
		return nil, &ParseError{
			Message: "config file too large",
			Detail:  fmt.Sprintf("%d bytes, maximum is %d", len(luaCode), MaxConfigSize),
		}
	}

	ctx, cancel := context.WithTimeout(ctx, ParseTimeout)
	defer cancel()

	L := newSandboxedVM()
	defer L.Close()
	L.SetContext(ctx)

	if p.detector != nil {
		platformInfo, err := p.detector.Detect(ctx)
		if err != nil {
			return nil, fmt.Errorf("platform detection failed: %w", err)
		}
		if err := platform.InjectPlatformTable(L, platformInfo); err != nil {
			return nil, fmt.Errorf("inject platform table: %w", err)
		}
	}

	if err := L.DoString(luaCode); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, &ParseError{Message: "config evaluation timed out", Detail: err.Error()}
		}
		return nil, &ParseError{
			Message: "Lua syntax error",
			Detail:  err.Error(),
		}
	}

	cfg := *base
	if err := extractConfig(L, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ParseError represents a config parsing error with friendly message.
type ParseError struct {
	Message string // User-friendly message
	Detail  string // Technical details (raw Lua error)
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Message, e.Detail)
}

// extractConfig copies the fields of the global "bootstrap" table into cfg.
// nil fields (from conditionals like platform.when) keep their prior value.
func extractConfig(L *lua.LState, cfg *Config) error {
	value := L.GetGlobal(luaGlobalBootstrap)
	if value.Type() == lua.LTNil {
		return nil
	}
	table, ok := value.(*lua.LTable)
	if !ok {
		return &ParseError{
			Message: "invalid 'bootstrap' table",
			Detail:  fmt.Sprintf("expected table, got %s", value.Type()),
		}
	}

	var unknown []string
	table.ForEach(func(key, _ lua.LValue) {
		if k, ok := key.(lua.LString); !ok || !knownFields[string(k)] {
			unknown = append(unknown, key.String())
		}
	})
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return &ParseError{
			Message: "unknown field in 'bootstrap' table",
			Detail:  strings.Join(unknown, ", "),
		}
	}

	fields := []struct {
		field string
		dest  *string
	}{
		{luaFieldRepository, &cfg.Repository},
		{luaFieldTool, &cfg.Tool},
		{luaFieldTag, &cfg.Tag},
		{luaFieldInstallDir, &cfg.InstallDir},
		{luaFieldAPIURL, &cfg.APIBaseURL},
		{luaFieldDownloadURL, &cfg.DownloadBaseURL},
	}
	for _, s := range fields {
		if err := getString(table, s.field, s.dest); err != nil {
			return err
		}
	}

	var strategy string
	if err := getString(table, luaFieldStrategy, &strategy); err != nil {
		return err
	}
	if strategy != "" {
		parsed, err := release.ParseStrategy(strategy)
		if err != nil {
			return &ParseError{Message: "invalid 'strategy'", Detail: err.Error()}
		}
		cfg.Strategy = parsed
	}

	if v := table.RawGetString(luaFieldTimeout); v.Type() != lua.LTNil {
		seconds, err := number(luaFieldTimeout, v)
		if err != nil {
			return err
		}
		if seconds <= 0 || seconds > math.MaxInt32 {
			return &ParseError{Message: "invalid 'timeout'", Detail: fmt.Sprintf("%v seconds is out of range", seconds)}
		}
		cfg.Timeout = time.Duration(seconds * float64(time.Second))
	}

	if v := table.RawGetString(luaFieldMaxRedirects); v.Type() != lua.LTNil {
		n, err := number(luaFieldMaxRedirects, v)
		if err != nil {
			return err
		}
		if n != math.Trunc(n) || n < 0 || n > math.MaxInt32 {
			return &ParseError{Message: "invalid 'max_redirects'", Detail: fmt.Sprintf("%v is not a whole number", n)}
		}
		cfg.MaxRedirects = int(n)
	}

	if v := table.RawGetString(luaFieldElevate); v.Type() != lua.LTNil {
		b, ok := v.(lua.LBool)
		if !ok {
			return typeError(luaFieldElevate, "boolean", v)
		}
		cfg.Elevate = bool(b)
	}

	return nil
}

func getString(table *lua.LTable, field string, dest *string) error {
	v := table.RawGetString(field)
	switch v := v.(type) {
	case *lua.LNilType:
		return nil
	case lua.LString:
		*dest = strings.TrimSpace(string(v))
		return nil
	default:
		return typeError(field, "string", v)
	}
}

func number(field string, v lua.LValue) (float64, error) {
	n, ok := v.(lua.LNumber)
	if !ok {
		return 0, typeError(field, "number", v)
	}
	return float64(n), nil
}

func typeError(field, want string, got lua.LValue) error {
	return &ParseError{
		Message: fmt.Sprintf("invalid '%s'", field),
		Detail:  fmt.Sprintf("expected %s, got %s", want, got.Type()),
	}
}

// FormatError formats a ParseError for user display.
// In verbose mode, show the raw Lua error. Otherwise, show friendly message.
func FormatError(err error, verbose bool) string {
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		if verbose {
			return fmt.Sprintf("%s\n\nDetails:\n%s", parseErr.Message, parseErr.Detail)
		}
		// Extract the most relevant part of the error
		detail := parseErr.Detail
		if idx := strings.Index(detail, "stack traceback"); idx > 0 {
			detail = strings.TrimSpace(detail[:idx])
		}
		return fmt.Sprintf("%s: %s", parseErr.Message, detail)
	}
	return err.Error()
}
