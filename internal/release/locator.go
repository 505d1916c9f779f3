package release

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/lucianlavric/suntheme/internal/platform"
)

// Strategy selects how a Locator finds the archive URL.
type Strategy string

const (
	// StrategyAsset scans the release asset listing. This is the default.
	StrategyAsset Strategy = "asset"
	// StrategyTag templates the URL from the release tag.
	StrategyTag Strategy = "tag"
)

// ParseStrategy converts a configuration value to a Strategy. Empty means
// StrategyAsset.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", StrategyAsset:
		return StrategyAsset, nil
	case StrategyTag:
		return StrategyTag, nil
	default:
		return "", fmt.Errorf("unknown release strategy %q (want %q or %q)", s, StrategyAsset, StrategyTag)
	}
}

// Locator resolves the archive for a target.
type Locator interface {
	Locate(ctx context.Context, ref Reference, target platform.Target) (*Descriptor, error)
}

// NewLocator returns the Locator implementing strategy for tool.
func NewLocator(strategy Strategy, client *Client, tool string) (Locator, error) {
	if client == nil {
		return nil, fmt.Errorf("release client is required")
	}
	if tool == "" {
		return nil, fmt.Errorf("tool name is required")
	}

	switch strategy {
	case StrategyAsset, "":
		return &AssetLocator{client: client, tool: tool}, nil
	case StrategyTag:
		return &TagLocator{client: client, tool: tool}, nil
	default:
		return nil, fmt.Errorf("unknown release strategy %q", strategy)
	}
}

// TagLocator resolves the release tag and templates the download URL:
// <download-base>/<repository>/releases/download/<tag>/<tool>-<target>.tar.gz.
// A pinned tag is used as-is without contacting the API.
type TagLocator struct {
	client *Client
	tool   string
}

// Locate implements Locator.
func (l *TagLocator) Locate(ctx context.Context, ref Reference, target platform.Target) (*Descriptor, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}

	tag := ref.Tag
	if ref.IsLatest() {
		body, err := l.client.fetchMetadata(ctx, ref)
		if err != nil {
			return nil, err
		}
		tag, err = parseTag(body)
		if err != nil {
			return nil, err
		}
	}

	name := AssetName(l.tool, target)
	return &Descriptor{
		URL:      l.client.downloadURL(ref.Repository, tag, name),
		Filename: name,
		Tag:      tag,
	}, nil
}

// parseTag extracts tag_name from a release payload.
func parseTag(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("%w: response is not valid JSON", ErrMalformedResponse)
	}

	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return "", fmt.Errorf("%w: expected a release object, got %s", ErrMalformedResponse, root.Type)
	}

	tag := root.Get("tag_name")
	switch {
	case !tag.Exists() || tag.Type == gjson.Null:
		return "", fmt.Errorf("%w: release has no tag", ErrReleaseNotFound)
	case tag.Type != gjson.String:
		return "", fmt.Errorf("%w: tag_name is %s, not a string", ErrMalformedResponse, tag.Type)
	case strings.TrimSpace(tag.Str) == "":
		return "", fmt.Errorf("%w: release has an empty tag", ErrReleaseNotFound)
	}

	return tag.Str, nil
}

// AssetLocator finds the asset named <tool>-<target>.tar.gz in the release
// listing and uses its reported download URL. It also picks up a published
// checksum file for the archive when one exists.
type AssetLocator struct {
	client *Client
	tool   string
}

// Locate implements Locator.
func (l *AssetLocator) Locate(ctx context.Context, ref Reference, target platform.Target) (*Descriptor, error) {
	body, err := l.client.fetchMetadata(ctx, ref)
	if err != nil {
		return nil, err
	}

	rel, err := parseRelease(body)
	if err != nil {
		return nil, err
	}

	name := AssetName(l.tool, target)
	asset, err := findAsset(rel.Assets, name)
	if err != nil {
		if rel.TagName == "" {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", rel.TagName, err)
	}

	desc := &Descriptor{
		URL:      asset.DownloadURL,
		Filename: asset.Name,
		Tag:      rel.TagName,
		Size:     asset.Size,
	}
	if sum := findChecksumAsset(rel.Assets, name); sum != nil {
		desc.ChecksumURL = sum.DownloadURL
		desc.ChecksumFile = sum.Name
	}

	return desc, nil
}

type (
	// githubRelease is the JSON wire format for a release.
	githubRelease struct {
		TagName string        `json:"tag_name"`
		Assets  []githubAsset `json:"assets"`
	}

	// githubAsset is the JSON wire format for a release asset.
	githubAsset struct {
		Name               string `json:"name"`
		BrowserDownloadURL string `json:"browser_download_url"`
		Size               int64  `json:"size"`
	}
)

// parseRelease decodes a release payload.
func parseRelease(body []byte) (*Release, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: expected a release object", ErrMalformedResponse)
	}

	var gr githubRelease
	if err := json.Unmarshal(trimmed, &gr); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	rel := &Release{TagName: gr.TagName, Assets: make([]Asset, 0, len(gr.Assets))}
	for _, ga := range gr.Assets {
		rel.Assets = append(rel.Assets, Asset{
			Name:        ga.Name,
			DownloadURL: ga.BrowserDownloadURL,
			Size:        ga.Size,
		})
	}
	return rel, nil
}

// findAsset returns the single asset named exactly name.
func findAsset(assets []Asset, name string) (*Asset, error) {
	var found *Asset
	for i := range assets {
		if assets[i].Name != name {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf("%w: asset %q listed more than once", ErrMalformedResponse, name)
		}
		found = &assets[i]
	}

	if found == nil {
		return nil, fmt.Errorf("%w: no asset named %q", ErrReleaseNotFound, name)
	}
	if found.DownloadURL == "" {
		return nil, fmt.Errorf("%w: asset %q has no download URL", ErrMalformedResponse, name)
	}
	return found, nil
}

// checksumNames are release-wide checksum files, checked after <asset>.sha256.
var checksumNames = []string{"checksums.txt", "SHA256SUMS", "sha256sums.txt"}

// findChecksumAsset returns the checksum file covering archive, or nil.
func findChecksumAsset(assets []Asset, archive string) *Asset {
	candidates := append([]string{archive + ".sha256"}, checksumNames...)
	for _, want := range candidates {
		for i := range assets {
			if assets[i].Name == want && assets[i].DownloadURL != "" {
				return &assets[i]
			}
		}
	}
	return nil
}
