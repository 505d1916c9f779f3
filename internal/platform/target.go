package platform

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnsupportedPlatform is returned when the host OS/architecture pair has no
// published release target.
var ErrUnsupportedPlatform = errors.New("unsupported platform")

// Target is the canonical release target identifier (for example
// "x86_64-unknown-linux-gnu"). It selects the asset to download.
type Target string

// String returns the target identifier.
func (t Target) String() string {
	return string(t)
}

// Release targets, one per published asset.
const (
	TargetDarwinAMD64 Target = "x86_64-apple-darwin"
	TargetDarwinARM64 Target = "aarch64-apple-darwin"
	TargetLinuxAMD64  Target = "x86_64-unknown-linux-gnu"
)

// targets is the exhaustive OS/arch to target table. Pairs outside it are not
// inferred.
var targets = map[string]Target{
	"darwin/amd64": TargetDarwinAMD64,
	"darwin/arm64": TargetDarwinARM64,
	"linux/amd64":  TargetLinuxAMD64,
}

// UnsupportedPlatformError reports the OS/arch pair that could not be mapped.
type UnsupportedPlatformError struct {
	OS   string
	Arch string
}

func (e *UnsupportedPlatformError) Error() string {
	return fmt.Sprintf("unsupported platform %s/%s (supported: %s)",
		e.OS, e.Arch, strings.Join(SupportedPlatforms(), ", "))
}

// Is reports whether target is ErrUnsupportedPlatform.
func (e *UnsupportedPlatformError) Is(target error) bool {
	return target == ErrUnsupportedPlatform
}

// Resolve maps detected platform information to its release target.
func Resolve(info *Info) (Target, error) {
	if info == nil {
		return "", fmt.Errorf("platform info is required")
	}

	target, ok := targets[info.OS+"/"+info.Arch]
	if !ok {
		return "", &UnsupportedPlatformError{OS: info.OS, Arch: info.Arch}
	}
	return target, nil
}

// ResolveHost detects the host platform and resolves its release target.
func ResolveHost(ctx context.Context, detector Detector) (*Info, Target, error) {
	if detector == nil {
		return nil, "", fmt.Errorf("platform detector is required")
	}

	info, err := detector.Detect(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("inspect host: %w", err)
	}

	target, err := Resolve(info)
	if err != nil {
		return info, "", err
	}
	return info, target, nil
}

// SupportedPlatforms returns the supported "os/arch" pairs in sorted order.
func SupportedPlatforms() []string {
	pairs := make([]string, 0, len(targets))
	for pair := range targets {
		pairs = append(pairs, pair)
	}
	sort.Strings(pairs)
	return pairs
}
