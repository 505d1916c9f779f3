// Package fetch transfers remote resources for the bootstrapper: release
// metadata into memory and release archives into the staging area.
//
// Redirects are followed up to a fixed depth, non-2xx responses are
// failures carrying the status code, and a body that does not match its
// declared Content-Length is never handed to the caller. Requests are made
// exactly once; retry policy belongs to the caller.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const (
	// DefaultTimeout bounds a single request, including reading the body.
	DefaultTimeout = 5 * time.Minute
	// DefaultMaxRedirects is the redirect depth followed before giving up.
	DefaultMaxRedirects = 5
	// DefaultUserAgent is the User-Agent header sent with requests.
	DefaultUserAgent = "suntheme-install/1.0"
)

// Client performs single-attempt HTTP GETs with bounded redirects.
type Client struct {
	httpClient   *http.Client
	userAgent    string
	timeout      time.Duration
	maxRedirects int
}

// Option configures a Client during construction.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client. Its CheckRedirect and
// Timeout are overridden by the Client's own settings on a copy.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithMaxRedirects sets the redirect depth.
func WithMaxRedirects(n int) Option {
	return func(c *Client) {
		c.maxRedirects = n
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a Client with DefaultTimeout, DefaultMaxRedirects and
// DefaultUserAgent unless overridden.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient:   http.DefaultClient,
		userAgent:    DefaultUserAgent,
		timeout:      DefaultTimeout,
		maxRedirects: DefaultMaxRedirects,
	}
	for _, opt := range opts {
		opt(c)
	}

	hc := *c.httpClient
	hc.Timeout = c.timeout
	hc.CheckRedirect = c.checkRedirect
	c.httpClient = &hc

	return c
}

// checkRedirect stops following once the redirect chain exceeds maxRedirects.
// via holds the requests already made, so len(via) is the redirect count.
func (c *Client) checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) > c.maxRedirects {
		return &TooManyRedirectsError{URL: redactURL(req.URL.String()), Max: c.maxRedirects}
	}
	return nil
}

// Get fetches url into memory. Bodies larger than limit fail with
// ErrResponseTooLarge. accept may be empty.
func (c *Client) Get(ctx context.Context, url, accept string, limit int64) ([]byte, error) {
	var buf bytes.Buffer
	w := &limitWriter{w: &buf, remaining: limit}

	if _, err := c.fetch(ctx, url, accept, w); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Download fetches url into a new file at destPath and returns the number of
// bytes written. destPath must not exist. On any failure the partial file is
// removed, so a truncated download is never left behind.
func (c *Client) Download(ctx context.Context, url, destPath string) (_ int64, err error) {
	f, err := os.OpenFile(destPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return 0, fmt.Errorf("create download file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close download file: %w", closeErr)
		}
		if err != nil {
			_ = os.Remove(destPath)
		}
	}()

	n, err := c.fetch(ctx, url, "application/octet-stream", f)
	if err != nil {
		return n, err
	}

	if err := f.Sync(); err != nil {
		return n, fmt.Errorf("sync download file: %w", err)
	}
	return n, nil
}

// fetch performs one GET and copies the body into w, enforcing the declared
// Content-Length.
func (c *Client) fetch(ctx context.Context, url, accept string, w io.Writer) (int64, error) {
	safeURL := redactURL(url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	// Keep the transport from gunzipping archives served with Content-Encoding: gzip.
	req.Header.Set("Accept-Encoding", "identity")
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		var redirectErr *TooManyRedirectsError
		if errors.As(err, &redirectErr) {
			return 0, redirectErr
		}
		return 0, &NetworkError{URL: safeURL, Err: err}
	}
	defer func() { _ = resp.Body.Close() }() // read-only response body

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, &NetworkError{URL: safeURL, StatusCode: resp.StatusCode}
	}

	ew := &errWriter{w: w}
	n, copyErr := io.Copy(ew, resp.Body)
	if ew.err != nil {
		return n, ew.err
	}
	if resp.ContentLength >= 0 && n != resp.ContentLength {
		return n, &IncompleteTransferError{URL: safeURL, Expected: resp.ContentLength, Got: n}
	}
	if copyErr != nil {
		return n, &NetworkError{URL: safeURL, Err: copyErr}
	}

	return n, nil
}

// errWriter records the first write error so it can be told apart from a
// failure reading the response body.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	n, err := e.w.Write(p)
	if err != nil && e.err == nil {
		e.err = err
	}
	return n, err
}

// limitWriter fails once more than remaining bytes are written.
type limitWriter struct {
	w         io.Writer
	remaining int64
}

func (l *limitWriter) Write(p []byte) (int, error) {
	if int64(len(p)) > l.remaining {
		return 0, ErrResponseTooLarge
	}
	n, err := l.w.Write(p)
	l.remaining -= int64(n)
	return n, err
}
