// Package release resolves which archive to download for a target platform
// from the release-hosting API.
//
// Two interchangeable strategies implement Locator:
//   - AssetLocator (default) scans the release's asset listing for the exact
//     archive name and uses the download URL the API reports. It keeps working
//     if the host changes its download URL scheme.
//   - TagLocator reads only the release tag and templates the download URL
//     from it. It needs less of the payload but silently depends on the URL
//     scheme staying stable.
//
// Each lookup is a single request; retry policy belongs to the caller.
package release

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/lucianlavric/suntheme/internal/platform"
)

// Latest is the tag sentinel for the most recent published release.
const Latest = "latest"

var (
	// ErrReleaseNotFound is returned when no release, tag or matching asset exists.
	ErrReleaseNotFound = errors.New("release not found")

	// ErrMalformedResponse is returned when release metadata cannot be parsed.
	ErrMalformedResponse = errors.New("malformed release metadata")

	// ErrInvalidRepository is returned for repository identifiers that are not owner/name.
	ErrInvalidRepository = errors.New("invalid repository identifier")
)

var repositoryPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+/[A-Za-z0-9_.-]+$`)

// Reference names a release: a repository plus a pinned tag or Latest.
type Reference struct {
	Repository string // "owner/name"
	Tag        string // empty or Latest for the newest release
}

// IsLatest reports whether the reference resolves to the newest release.
func (r Reference) IsLatest() bool {
	return r.Tag == "" || r.Tag == Latest
}

// Validate checks the repository identifier.
func (r Reference) Validate() error {
	if !repositoryPattern.MatchString(r.Repository) {
		return fmt.Errorf("%w: %q (expected owner/name)", ErrInvalidRepository, r.Repository)
	}
	for _, part := range strings.Split(r.Repository, "/") {
		if part == "." || part == ".." {
			return fmt.Errorf("%w: %q (expected owner/name)", ErrInvalidRepository, r.Repository)
		}
	}
	return nil
}

// String renders the reference as "owner/name@tag".
func (r Reference) String() string {
	tag := r.Tag
	if r.IsLatest() {
		tag = Latest
	}
	return r.Repository + "@" + tag
}

// Asset is a downloadable file attached to a release.
type Asset struct {
	Name        string
	DownloadURL string
	Size        int64
}

// Release is the subset of release metadata the bootstrapper uses.
type Release struct {
	TagName string
	Assets  []Asset
}

// Descriptor identifies the archive to download.
type Descriptor struct {
	URL      string // download URL
	Filename string // expected archive filename
	Tag      string // resolved release tag
	Size     int64  // size reported by the API, 0 if unknown

	// ChecksumURL and ChecksumFile point at a published SHA256 file for the
	// archive when the release carries one. Both are empty otherwise.
	ChecksumURL  string
	ChecksumFile string
}

// AssetName returns the archive filename for tool on target:
// "<tool>-<target>.tar.gz".
func AssetName(tool string, target platform.Target) string {
	return fmt.Sprintf("%s-%s.tar.gz", tool, target)
}
