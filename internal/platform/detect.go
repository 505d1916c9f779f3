package platform

import (
	"context"
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v4/host"
)

// RealDetector implements Detector using actual platform detection.
type RealDetector struct {
	// hostInfo is a seam for gopsutil's host.InfoWithContext.
	hostInfo func(ctx context.Context) (*host.InfoStat, error)
	// distroInfo is a seam for gopsutil's host.PlatformInformationWithContext.
	distroInfo func(ctx context.Context) (string, string, string, error)
	goos       string
	goarch     string
}

// NewDetector creates a new platform detector.
func NewDetector() Detector {
	return &RealDetector{
		hostInfo:   host.InfoWithContext,
		distroInfo: host.PlatformInformationWithContext,
		goos:       runtime.GOOS,
		goarch:     runtime.GOARCH,
	}
}

// Detect performs platform detection and returns platform information.
//
// The architecture is taken from the kernel (gopsutil KernelArch) so that a
// binary built for one architecture still selects the host's native asset.
// If host introspection fails, runtime.GOARCH is used instead. Detection only
// fails when the context is cancelled; unsupported hosts are rejected later by
// Resolve, before any network activity.
func (d *RealDetector) Detect(ctx context.Context) (*Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("platform detection cancelled: %w", err)
	}

	info := &Info{
		OS:      normalizeOS(d.goos),
		ArchRaw: d.goarch,
	}

	if d.hostInfo != nil {
		stat, err := d.hostInfo(ctx)
		if err != nil && ctx.Err() != nil {
			return nil, fmt.Errorf("platform detection cancelled: %w", ctx.Err())
		}
		if err == nil && stat != nil && stat.KernelArch != "" {
			info.ArchRaw = stat.KernelArch
		}
	}
	info.Arch = normalizeArch(info.ArchRaw)

	if info.OS == "linux" && d.distroInfo != nil {
		platform, family, version, err := d.distroInfo(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("platform detection cancelled: %w", ctx.Err())
			}
			// Distro details are diagnostic only.
			return info, nil
		}

		platform = normalizePlatform(platform)
		if platform != "" {
			info.Platform = platform
			info.Family = mapFamily(family)
			info.Version = normalizePlatform(version)
		}
	}

	return info, nil
}
