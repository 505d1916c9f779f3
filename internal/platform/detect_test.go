package platform

import (
	"context"
	"errors"
	"runtime"
	"testing"

	"github.com/shirou/gopsutil/v4/host"
)

func fakeDetector(goos, goarch string, stat *host.InfoStat, hostErr error) *RealDetector {
	return &RealDetector{
		hostInfo: func(ctx context.Context) (*host.InfoStat, error) {
			return stat, hostErr
		},
		distroInfo: func(ctx context.Context) (string, string, string, error) {
			return "Ubuntu", "debian", "22.04", nil
		},
		goos:   goos,
		goarch: goarch,
	}
}

func TestRealDetector_Detect(t *testing.T) {
	detector := NewDetector()

	info, err := detector.Detect(context.Background())
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}

	if info.OS != runtime.GOOS {
		t.Errorf("OS = %v, want %v", info.OS, runtime.GOOS)
	}
	if info.Arch == "" {
		t.Error("Arch should not be empty")
	}
	if info.ArchRaw == "" {
		t.Error("ArchRaw should not be empty")
	}

	// If platform is set, family should also be set
	if info.Platform != "" && info.Family == "" {
		t.Error("Family should be set when Platform is set")
	}
	if runtime.GOOS != "linux" && info.Platform != "" {
		t.Errorf("Platform should be empty on non-Linux, got %v", info.Platform)
	}
}

func TestRealDetector_KernelArch(t *testing.T) {
	tests := []struct {
		name        string
		goos        string
		goarch      string
		stat        *host.InfoStat
		hostErr     error
		wantArch    string
		wantArchRaw string
	}{
		{
			name:        "kernel_arch_wins_over_goarch",
			goos:        "darwin",
			goarch:      "amd64",
			stat:        &host.InfoStat{KernelArch: "arm64"},
			wantArch:    "arm64",
			wantArchRaw: "arm64",
		},
		{
			name:        "linux_x86_64",
			goos:        "linux",
			goarch:      "amd64",
			stat:        &host.InfoStat{KernelArch: "x86_64"},
			wantArch:    "amd64",
			wantArchRaw: "x86_64",
		},
		{
			name:        "falls_back_to_goarch_on_error",
			goos:        "linux",
			goarch:      "arm64",
			hostErr:     errors.New("no /proc"),
			wantArch:    "arm64",
			wantArchRaw: "arm64",
		},
		{
			name:        "falls_back_to_goarch_on_empty_kernel_arch",
			goos:        "linux",
			goarch:      "amd64",
			stat:        &host.InfoStat{},
			wantArch:    "amd64",
			wantArchRaw: "amd64",
		},
		{
			name:        "unknown_arch_is_not_a_detection_error",
			goos:        "linux",
			goarch:      "riscv64",
			stat:        &host.InfoStat{KernelArch: "riscv64"},
			wantArch:    "riscv64",
			wantArchRaw: "riscv64",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := fakeDetector(tt.goos, tt.goarch, tt.stat, tt.hostErr)

			info, err := d.Detect(context.Background())
			if err != nil {
				t.Fatalf("Detect() error = %v", err)
			}
			if info.Arch != tt.wantArch {
				t.Errorf("Arch = %q, want %q", info.Arch, tt.wantArch)
			}
			if info.ArchRaw != tt.wantArchRaw {
				t.Errorf("ArchRaw = %q, want %q", info.ArchRaw, tt.wantArchRaw)
			}
		})
	}
}

func TestRealDetector_Distro(t *testing.T) {
	d := fakeDetector("linux", "amd64", &host.InfoStat{KernelArch: "x86_64"}, nil)

	info, err := d.Detect(context.Background())
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}

	distro := info.GetDistro()
	if distro == nil {
		t.Fatal("GetDistro() = nil, want ubuntu")
	}
	if distro.ID != "ubuntu" || distro.Family != FamilyDebian || distro.Version != "22.04" {
		t.Errorf("GetDistro() = %+v", distro)
	}

	// Distro detection failure is not fatal
	d.distroInfo = func(ctx context.Context) (string, string, string, error) {
		return "", "", "", errors.New("no os-release")
	}
	info, err = d.Detect(context.Background())
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if info.GetDistro() != nil {
		t.Errorf("GetDistro() = %+v, want nil", info.GetDistro())
	}
}

func TestRealDetector_DarwinHasNoDistro(t *testing.T) {
	d := fakeDetector("darwin", "arm64", &host.InfoStat{KernelArch: "arm64"}, nil)

	info, err := d.Detect(context.Background())
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if info.Platform != "" || info.GetDistro() != nil {
		t.Errorf("expected no distro on darwin, got %+v", info)
	}
}

func TestRealDetector_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := fakeDetector("linux", "amd64", &host.InfoStat{KernelArch: "x86_64"}, nil)
	if _, err := d.Detect(ctx); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
