package testutil

import (
	"context"
	"sync"

	"github.com/lucianlavric/suntheme/internal/platform"
)

// StaticDetector is a platform.Detector returning fixed host information.
type StaticDetector struct {
	Info *platform.Info
	Err  error

	mu    sync.Mutex
	calls int
}

// NewStaticDetector returns a detector reporting goos/goarch.
func NewStaticDetector(goos, goarch string) *StaticDetector {
	return &StaticDetector{Info: &platform.Info{OS: goos, Arch: goarch, ArchRaw: goarch}}
}

// Detect implements platform.Detector.
func (d *StaticDetector) Detect(ctx context.Context) (*platform.Info, error) {
	d.mu.Lock()
	d.calls++
	d.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if d.Err != nil {
		return nil, d.Err
	}
	info := *d.Info
	return &info, nil
}

// Calls returns how many times Detect ran.
func (d *StaticDetector) Calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}
