package release

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/lucianlavric/suntheme/internal/fetch"
)

const (
	// DefaultAPIBaseURL is the release metadata API.
	DefaultAPIBaseURL = "https://api.github.com"

	// DefaultDownloadBaseURL is the host serving templated release downloads.
	DefaultDownloadBaseURL = "https://github.com"

	// maxMetadataBytes bounds the release metadata response (10 MB).
	maxMetadataBytes = 10 << 20

	acceptJSON = "application/vnd.github+json"
)

// Getter fetches a resource into memory. *fetch.Client implements it.
type Getter interface {
	Get(ctx context.Context, url, accept string, limit int64) ([]byte, error)
}

// Client reads release metadata from the release-hosting API.
type Client struct {
	getter          Getter
	apiBaseURL      string
	downloadBaseURL string
}

// ClientOption configures a Client during construction.
type ClientOption func(*Client)

// WithAPIBaseURL overrides the metadata API base URL, primarily for test servers.
func WithAPIBaseURL(base string) ClientOption {
	return func(c *Client) {
		c.apiBaseURL = strings.TrimRight(base, "/")
	}
}

// WithDownloadBaseURL overrides the host used by templated download URLs.
func WithDownloadBaseURL(base string) ClientOption {
	return func(c *Client) {
		c.downloadBaseURL = strings.TrimRight(base, "/")
	}
}

// NewClient creates a Client that performs requests through getter.
func NewClient(getter Getter, opts ...ClientOption) *Client {
	c := &Client{
		getter:          getter,
		apiBaseURL:      DefaultAPIBaseURL,
		downloadBaseURL: DefaultDownloadBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// metadataURL returns the endpoint for ref: /releases/latest or /releases/tags/<tag>.
func (c *Client) metadataURL(ref Reference) string {
	if ref.IsLatest() {
		return fmt.Sprintf("%s/repos/%s/releases/latest", c.apiBaseURL, ref.Repository)
	}
	return fmt.Sprintf("%s/repos/%s/releases/tags/%s", c.apiBaseURL, ref.Repository, url.PathEscape(ref.Tag))
}

// downloadURL templates the download URL for a tag and asset name.
func (c *Client) downloadURL(repository, tag, asset string) string {
	return fmt.Sprintf("%s/%s/releases/download/%s/%s",
		c.downloadBaseURL, repository, url.PathEscape(tag), url.PathEscape(asset))
}

// fetchMetadata returns the raw release JSON for ref. A 404 from the API means
// the repository has no such release.
func (c *Client) fetchMetadata(ctx context.Context, ref Reference) ([]byte, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}

	body, err := c.getter.Get(ctx, c.metadataURL(ref), acceptJSON, maxMetadataBytes)
	if err != nil {
		var netErr *fetch.NetworkError
		if errors.As(err, &netErr) && netErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrReleaseNotFound, ref)
		}
		if errors.Is(err, fetch.ErrResponseTooLarge) {
			return nil, fmt.Errorf("%w: response exceeds %d bytes", ErrMalformedResponse, maxMetadataBytes)
		}
		return nil, fmt.Errorf("fetch release metadata for %s: %w", ref, err)
	}

	return body, nil
}
