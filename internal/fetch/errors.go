package fetch

import (
	"errors"
	"fmt"
	"net/url"
)

var (
	// ErrNetwork classifies transport failures and non-2xx responses.
	ErrNetwork = errors.New("network error")

	// ErrTooManyRedirects is returned when a request exceeds the redirect limit.
	ErrTooManyRedirects = errors.New("too many redirects")

	// ErrIncompleteTransfer is returned when fewer bytes arrive than the
	// response declared in Content-Length.
	ErrIncompleteTransfer = errors.New("incomplete transfer")

	// ErrResponseTooLarge is returned by Get when a body exceeds its limit.
	ErrResponseTooLarge = errors.New("response too large")
)

// NetworkError describes a failed request. StatusCode is zero when the
// failure happened below HTTP (DNS, TLS, timeout, reset).
type NetworkError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("GET %s: %v", e.URL, e.Err)
}

// Unwrap returns the transport error, if any.
func (e *NetworkError) Unwrap() error { return e.Err }

// Is reports whether target is ErrNetwork.
func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

// TooManyRedirectsError reports the URL at which the redirect limit was hit.
type TooManyRedirectsError struct {
	URL string
	Max int
}

func (e *TooManyRedirectsError) Error() string {
	return fmt.Sprintf("stopped after %d redirects at %s", e.Max, e.URL)
}

// Is reports whether target is ErrTooManyRedirects.
func (e *TooManyRedirectsError) Is(target error) bool { return target == ErrTooManyRedirects }

// IncompleteTransferError reports a body shorter (or longer) than declared.
type IncompleteTransferError struct {
	URL      string
	Expected int64
	Got      int64
}

func (e *IncompleteTransferError) Error() string {
	return fmt.Sprintf("incomplete transfer from %s: received %d of %d bytes", e.URL, e.Got, e.Expected)
}

// Is reports whether target is ErrIncompleteTransfer.
func (e *IncompleteTransferError) Is(target error) bool { return target == ErrIncompleteTransfer }

// redactURL strips query parameters and fragments from a URL for safe inclusion
// in error messages. Release CDNs sign download URLs in the query string.
func redactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid-url>"
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
