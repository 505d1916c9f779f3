package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
)

// ReleaseServer is a fake release host. It serves both the metadata API
// (/repos/<repo>/releases/latest and /repos/<repo>/releases/tags/<tag>) and
// the download endpoint (/<repo>/releases/download/<tag>/<asset>), so it can
// stand in for both base URLs.
type ReleaseServer struct {
	*httptest.Server

	Repository string
	Tag        string

	mu           sync.Mutex
	assets       map[string][]byte
	requests     map[string]int
	latestStatus int
	latestBody   []byte
}

// NewReleaseServer starts a ReleaseServer for repository whose latest release
// is tag. The server is closed when the test ends.
func NewReleaseServer(t *testing.T, repository, tag string) *ReleaseServer {
	t.Helper()

	s := &ReleaseServer{
		Repository: repository,
		Tag:        tag,
		assets:     make(map[string][]byte),
		requests:   make(map[string]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)

	return s
}

// AddAsset attaches a file to the release.
func (s *ReleaseServer) AddAsset(name string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assets[name] = data
}

// SetLatestResponse replaces the latest-release response with a fixed status and body.
func (s *ReleaseServer) SetLatestResponse(status int, body []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latestStatus = status
	s.latestBody = body
}

// Requests returns how many times path was requested.
func (s *ReleaseServer) Requests(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[path]
}

// TotalRequests returns the number of requests served.
func (s *ReleaseServer) TotalRequests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.requests {
		total += n
	}
	return total
}

// LatestPath is the API path of the latest-release endpoint.
func (s *ReleaseServer) LatestPath() string {
	return "/repos/" + s.Repository + "/releases/latest"
}

// DownloadPath is the path serving asset.
func (s *ReleaseServer) DownloadPath(asset string) string {
	return "/" + s.Repository + "/releases/download/" + s.Tag + "/" + asset
}

func (s *ReleaseServer) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requests[r.URL.Path]++
	s.mu.Unlock()

	switch {
	case r.URL.Path == s.LatestPath():
		s.mu.Lock()
		status, body := s.latestStatus, s.latestBody
		s.mu.Unlock()
		if status != 0 {
			w.WriteHeader(status)
			_, _ = w.Write(body)
			return
		}
		s.writeRelease(w)

	case r.URL.Path == "/repos/"+s.Repository+"/releases/tags/"+s.Tag:
		s.writeRelease(w)

	case strings.HasPrefix(r.URL.Path, "/"+s.Repository+"/releases/download/"+s.Tag+"/"):
		name := strings.TrimPrefix(r.URL.Path, "/"+s.Repository+"/releases/download/"+s.Tag+"/")
		s.mu.Lock()
		data, ok := s.assets[name]
		s.mu.Unlock()
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write(data)

	default:
		http.NotFound(w, r)
	}
}

func (s *ReleaseServer) writeRelease(w http.ResponseWriter) {
	type asset struct {
		Name               string `json:"name"`
		BrowserDownloadURL string `json:"browser_download_url"`
		Size               int    `json:"size"`
	}

	s.mu.Lock()
	names := make([]string, 0, len(s.assets))
	for name := range s.assets {
		names = append(names, name)
	}
	sort.Strings(names)
	assets := make([]asset, 0, len(names))
	for _, name := range names {
		assets = append(assets, asset{
			Name:               name,
			BrowserDownloadURL: s.URL + s.DownloadPath(name),
			Size:               len(s.assets[name]),
		})
	}
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"tag_name": s.Tag,
		"assets":   assets,
	})
}
