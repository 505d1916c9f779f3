package platform

import (
	"testing"
)

func TestNormalizeArch(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"amd64", "amd64", "amd64"},
		{"x86_64", "x86_64", "amd64"},
		{"x86_64 uppercase", "X86_64", "amd64"},
		{"arm64", "arm64", "arm64"},
		{"aarch64", "aarch64", "arm64"},
		{"i386 passes through", "i386", "i386"},
		{"armv7l passes through", "armv7l", "armv7l"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeArch(tt.input); got != tt.want {
				t.Errorf("normalizeArch(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeOS(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"linux", "linux"},
		{"Darwin", "darwin"},
		{"macos", "darwin"},
		{"windows", "windows"},
		{" freebsd ", "freebsd"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := normalizeOS(tt.input); got != tt.want {
				t.Errorf("normalizeOS(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizePlatform(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"ubuntu", "ubuntu", "ubuntu"},
		{"Ubuntu uppercase", "Ubuntu", "ubuntu"},
		{"with spaces", "  ubuntu  ", "ubuntu"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizePlatform(tt.input); got != tt.want {
				t.Errorf("normalizePlatform() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMapFamily(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"debian", FamilyDebian},
		{"Ubuntu", FamilyDebian},
		{"rhel", FamilyRHEL},
		{"manjaro", FamilyArch},
		{"alpine", FamilyAlpine},
		{"nixos", FamilyUnknown},
		{"", FamilyUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := mapFamily(tt.input); got != tt.want {
				t.Errorf("mapFamily(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
