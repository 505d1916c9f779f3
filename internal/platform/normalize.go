package platform

import (
	"strings"
)

// familyMap maps distribution names to their canonical family names.
// This is used to normalize variations of family strings from gopsutil.
var familyMap = map[string]string{
	"debian":   FamilyDebian,
	"ubuntu":   FamilyDebian, // gopsutil might return ubuntu as family
	"rhel":     FamilyRHEL,
	"centos":   FamilyRHEL,
	"rocky":    FamilyRHEL,
	"fedora":   FamilyFedora,
	"suse":     FamilySUSE,
	"opensuse": FamilySUSE,
	"arch":     FamilyArch,
	"manjaro":  FamilyArch,
	"alpine":   FamilyAlpine,
	"gentoo":   FamilyGentoo,
}

// normalizeOS lowercases an OS name and folds the macOS aliases that host
// introspection may report onto GOOS naming.
func normalizeOS(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "macos", "osx", "macosx":
		return "darwin"
	}
	return name
}

// normalizeArch converts kernel and GOARCH architecture names to GOARCH naming.
// Unrecognized values are returned lowercased so Resolve can report them.
func normalizeArch(arch string) string {
	arch = strings.ToLower(strings.TrimSpace(arch))
	switch arch {
	case "amd64", "x86_64", "x64":
		return "amd64"
	case "arm64", "aarch64", "arm64e":
		return "arm64"
	default:
		return arch
	}
}

// normalizePlatform converts platform IDs to lowercase for consistency.
func normalizePlatform(platform string) string {
	return strings.ToLower(strings.TrimSpace(platform))
}

// mapFamily maps distribution family strings to canonical family names.
func mapFamily(family string) string {
	normalized := strings.ToLower(strings.TrimSpace(family))
	if canonical, ok := familyMap[normalized]; ok {
		return canonical
	}

	return FamilyUnknown
}
